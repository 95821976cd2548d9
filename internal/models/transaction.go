package models

import (
	"database/sql"
	"time"
)

// Transaction is one inbound payment notification. Content holds the memo
// after project-name extraction.
type Transaction struct {
	ID                  int64
	SepayID             int64
	Gateway             string
	TransactionDate     time.Time
	AccountNumber       string
	Content             string
	TransferType        string
	Amount              int64
	ReferenceCode       string
	Description         sql.NullString
	DeploymentURL       sql.NullString
	DeploymentClaimedAt sql.NullTime
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Content   string
	Skip      int
	Limit     int
}
