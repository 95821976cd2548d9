package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/models"
	"ourxmas-backend/internal/services"
)

type WebhookHandler struct {
	transactions *services.TransactionService
	log          *logger.Logger
}

func NewWebhookHandler(transactions *services.TransactionService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{transactions: transactions, log: log.With("component", "WebhookHandler")}
}

// HandleSepay godoc
// @Summary     Sepay webhook endpoint
// @Description Records a bank transfer notification. Replays of a known Sepay id are acknowledged without a new row.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Authorization header string true "Apikey <SEPAY_API_KEY>"
// @Param       payload body models.SepayWebhookPayload true "Sepay transaction"
// @Success     200 {object} models.WebhookResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/webhook/sepay [post]
func (h *WebhookHandler) HandleSepay(c *gin.Context) {
	var payload models.SepayWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_payload",
			Message: err.Error(),
		})
		return
	}

	_, created, err := h.transactions.Ingest(c.Request.Context(), &payload)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransactionDate) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_payload", Message: err.Error()})
			return
		}
		h.log.Error("failed to store webhook transaction", "sepay_id", payload.ID, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to store transaction",
		})
		return
	}

	msg := fmt.Sprintf("Transaction %d processed successfully", payload.ID)
	if !created {
		msg = fmt.Sprintf("Transaction %d already processed", payload.ID)
	}
	c.JSON(http.StatusOK, models.WebhookResponse{Success: true, Message: msg})
}
