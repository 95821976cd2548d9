package middleware_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/middleware"
)

func TestRequestLogger_SetsRequestID(t *testing.T) {
	router := guardedRouter(middleware.RequestLogger(logger.NewNop()))

	w := get(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}
