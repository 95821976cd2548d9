package models

// SepayWebhookPayload is the body Sepay posts for every bank transfer.
type SepayWebhookPayload struct {
	ID              int64   `json:"id" binding:"required"`
	Gateway         string  `json:"gateway" binding:"required"`
	TransactionDate string  `json:"transactionDate" binding:"required"`
	AccountNumber   string  `json:"accountNumber"`
	Code            *string `json:"code"`
	Content         string  `json:"content"`
	TransferType    string  `json:"transferType" binding:"required"`
	TransferAmount  int64   `json:"transferAmount"`
	Accumulated     int64   `json:"accumulated"`
	SubAccount      *string `json:"subAccount"`
	ReferenceCode   string  `json:"referenceCode"`
	Description     string  `json:"description"`
}

type ListTransactionsQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Content   string `form:"content"`
	Skip      int    `form:"skip,default=0" binding:"min=0"`
	Limit     int    `form:"limit,default=100" binding:"min=1,max=1000"`
}
