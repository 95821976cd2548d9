package models

import "time"

type ErrorResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	PublicURL string            `json:"publicUrl,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type TransactionResponse struct {
	ID              int64     `json:"id"`
	SepayID         int64     `json:"sepay_id"`
	Gateway         string    `json:"gateway"`
	TransactionDate time.Time `json:"transaction_date"`
	AccountNumber   string    `json:"account_number"`
	Content         string    `json:"content"`
	TransferType    string    `json:"transfer_type"`
	Amount          int64     `json:"amount"`
	ReferenceCode   string    `json:"reference_code"`
	Description     *string   `json:"description"`
	DeploymentURL   *string   `json:"deployment_url"`
	CreatedAt       time.Time `json:"created_at"`
}

type TransactionListResponse struct {
	Success bool                  `json:"success"`
	Data    []TransactionResponse `json:"data"`
	Total   int                   `json:"total"`
}

type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

type GenerateResponse struct {
	Success          bool   `json:"success"`
	ProjectID        string `json:"projectId"`
	PublicURL        string `json:"publicUrl"`
	GenerationTimeMs int64  `json:"generationTimeMs"`
}

func NewTransactionResponse(t *Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID,
		SepayID:         t.SepayID,
		Gateway:         t.Gateway,
		TransactionDate: t.TransactionDate,
		AccountNumber:   t.AccountNumber,
		Content:         t.Content,
		TransferType:    t.TransferType,
		Amount:          t.Amount,
		ReferenceCode:   t.ReferenceCode,
		CreatedAt:       t.CreatedAt,
	}
	if t.Description.Valid {
		resp.Description = &t.Description.String
	}
	if t.DeploymentURL.Valid {
		resp.DeploymentURL = &t.DeploymentURL.String
	}
	return resp
}
