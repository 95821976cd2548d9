package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/models"
	"ourxmas-backend/internal/services"
	"ourxmas-backend/internal/supabase"
)

var queryDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", services.SepayDateLayout, "2006-01-02"}

type TransactionsHandler struct {
	transactions *services.TransactionService
	log          *logger.Logger
}

func NewTransactionsHandler(transactions *services.TransactionService, log *logger.Logger) *TransactionsHandler {
	return &TransactionsHandler{transactions: transactions, log: log.With("component", "TransactionsHandler")}
}

func parseQueryDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range queryDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("invalid date: " + raw)
}

// List godoc
// @Summary     List transactions
// @Description Lists recorded transactions, newest first, with optional date and content filters
// @Tags        transactions
// @Produce     json
// @Security    Bearer
// @Param       start_date query string false "Lower bound on transaction date"
// @Param       end_date   query string false "Upper bound on transaction date"
// @Param       content    query string false "Case-insensitive substring of the parsed memo"
// @Param       skip       query int    false "Rows to skip" default(0)
// @Param       limit      query int    false "Page size (1-1000)" default(100)
// @Success     200 {object} models.TransactionListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/v1/transactions [get]
func (h *TransactionsHandler) List(c *gin.Context) {
	var q models.ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_query", Message: err.Error()})
		return
	}

	start, err := parseQueryDate(q.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_query", Message: err.Error()})
		return
	}
	end, err := parseQueryDate(q.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_query", Message: err.Error()})
		return
	}

	list, total, err := h.transactions.List(c.Request.Context(), models.TransactionFilter{
		StartDate: start,
		EndDate:   end,
		Content:   strings.TrimSpace(q.Content),
		Skip:      q.Skip,
		Limit:     q.Limit,
	})
	if err != nil {
		h.log.Error("failed to list transactions", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to list transactions"})
		return
	}

	data := make([]models.TransactionResponse, 0, len(list))
	for i := range list {
		data = append(data, models.NewTransactionResponse(&list[i]))
	}
	c.JSON(http.StatusOK, models.TransactionListResponse{Success: true, Data: data, Total: total})
}

// Get godoc
// @Summary     Get transaction
// @Tags        transactions
// @Produce     json
// @Security    Bearer
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.TransactionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/transactions/{id} [get]
func (h *TransactionsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_id", Message: "transaction id must be an integer"})
		return
	}

	tx, err := h.transactions.Get(c.Request.Context(), id)
	if errors.Is(err, supabase.ErrTransactionNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Message: "Transaction not found"})
		return
	}
	if err != nil {
		h.log.Error("failed to get transaction", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "failed to get transaction"})
		return
	}

	c.JSON(http.StatusOK, models.NewTransactionResponse(tx))
}
