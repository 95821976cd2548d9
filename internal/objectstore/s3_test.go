package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ourxmas-backend/internal/config"
)

func s3Config(endpoint string) *config.Config {
	return &config.Config{
		S3Endpoint:  endpoint,
		S3AccessKey: "access",
		S3SecretKey: "secret",
		S3Bucket:    "ourxmas",
		S3Region:    "us-east-1",
	}
}

func TestNewS3StoreFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantNil  bool
		wantHost string
	}{
		{name: "missing access key", mutate: func(c *config.Config) { c.S3AccessKey = "" }, wantNil: true},
		{name: "missing secret key", mutate: func(c *config.Config) { c.S3SecretKey = "" }, wantNil: true},
		{name: "missing bucket", mutate: func(c *config.Config) { c.S3Bucket = "" }, wantNil: true},
		{name: "blank endpoint", mutate: func(c *config.Config) { c.S3Endpoint = "  " }, wantNil: true},
		{name: "https endpoint", mutate: func(c *config.Config) { c.S3Endpoint = "https://minio.local:9000" }, wantHost: "minio.local:9000"},
		{name: "http endpoint", mutate: func(c *config.Config) { c.S3Endpoint = "http://minio.local:9000" }, wantHost: "minio.local:9000"},
		{name: "bare endpoint", mutate: func(*config.Config) {}, wantHost: "s3.amazonaws.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := s3Config("s3.amazonaws.com")
			tt.mutate(cfg)

			store, err := NewS3StoreFromConfig(cfg)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, store)
				return
			}
			require.NotNil(t, store)
			assert.Equal(t, "ourxmas", store.Bucket())
			assert.Equal(t, tt.wantHost, store.client.EndpointURL().Host)
		})
	}
}

func TestS3Store_PutObjectNilStore(t *testing.T) {
	var store *S3Store
	err := store.PutObject(context.Background(), "xmas1/index.html", []byte("x"), "text/html")
	assert.EqualError(t, err, "s3 store not configured")
}

type s3Request struct {
	method       string
	path         string
	contentType  string
	cacheControl string
	body         string
}

func fakeS3(t *testing.T, status int) (*httptest.Server, func() []s3Request) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []s3Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, s3Request{
			method:       r.Method,
			path:         r.URL.Path,
			contentType:  r.Header.Get("Content-Type"),
			cacheControl: r.Header.Get("Cache-Control"),
			body:         string(body),
		})
		mu.Unlock()

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []s3Request {
		mu.Lock()
		defer mu.Unlock()
		return append([]s3Request(nil), reqs...)
	}
}

func TestS3Store_PutObject(t *testing.T) {
	srv, requests := fakeS3(t, http.StatusOK)
	store, err := NewS3StoreFromConfig(s3Config(srv.URL))
	require.NoError(t, err)
	require.NotNil(t, store)

	err = store.PutObject(context.Background(), "xmas1/index.html", []byte("<html></html>"), "text/html; charset=utf-8")
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/ourxmas/xmas1/index.html", reqs[0].path)
	assert.Equal(t, "text/html; charset=utf-8", reqs[0].contentType)
	assert.Equal(t, cacheControl, reqs[0].cacheControl)
	assert.Equal(t, "<html></html>", reqs[0].body)
}

func TestS3Store_PutObjectRejected(t *testing.T) {
	srv, _ := fakeS3(t, http.StatusForbidden)
	store, err := NewS3StoreFromConfig(s3Config(srv.URL))
	require.NoError(t, err)

	err = store.PutObject(context.Background(), "xmas1/image1.jpeg", []byte("jpeg"), "image/jpeg")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "put xmas1/image1.jpeg:"), err.Error())
}
