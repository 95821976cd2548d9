package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/models"
)

// SepayDateLayout is the layout of transactionDate in Sepay webhooks.
const SepayDateLayout = "2006-01-02 15:04:05"

var ErrInvalidTransactionDate = errors.New("invalid transactionDate")

var (
	ourxmasMemoPattern     = regexp.MustCompile(`[Oo]urxmas\s+([A-Za-z0-9]+)`)
	mbvcbMemoPattern       = regexp.MustCompile(`^MBVCB\.\d+\.\d+\.([^.]+)\.CT\s`)
	mbvcbSimpleMemoPattern = regexp.MustCompile(`^MBVCB\.\d+\.\d+\.([^.\s]+)`)
)

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, bool, error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error)
}

type TransactionService struct {
	store TransactionStore
	log   *logger.Logger
}

func NewTransactionService(store TransactionStore, log *logger.Logger) *TransactionService {
	return &TransactionService{store: store, log: log.With("component", "TransactionService")}
}

// ExtractContent pulls the project name out of a bank transfer memo.
//
//	"Ourxmas MyProject123"                    -> "MyProject123"
//	"MBVCB.12243110992.867260.khoi2.CT tu..." -> "khoi2"
//	"BIDV;96247QTKN;beo san"                  -> "beo san"
func ExtractContent(content string) string {
	if m := ourxmasMemoPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := mbvcbMemoPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := mbvcbSimpleMemoPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.Contains(content, ";") {
		parts := strings.Split(content, ";")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	if fields := strings.Fields(content); len(fields) > 1 {
		return fields[len(fields)-1]
	}
	return strings.TrimSpace(content)
}

// Ingest stores a webhook payload. Replays of a known Sepay id return the
// stored row with created == false.
func (s *TransactionService) Ingest(ctx context.Context, p *models.SepayWebhookPayload) (*models.Transaction, bool, error) {
	date, err := time.Parse(SepayDateLayout, strings.TrimSpace(p.TransactionDate))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidTransactionDate, p.TransactionDate)
	}

	t := &models.Transaction{
		SepayID:         p.ID,
		Gateway:         p.Gateway,
		TransactionDate: date,
		AccountNumber:   p.AccountNumber,
		Content:         ExtractContent(p.Content),
		TransferType:    p.TransferType,
		Amount:          p.TransferAmount,
		ReferenceCode:   p.ReferenceCode,
		Description:     sql.NullString{String: p.Description, Valid: p.Description != ""},
	}

	stored, created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("transaction recorded", "sepay_id", p.ID, "content", stored.Content, "amount", stored.Amount)
	} else {
		s.log.Info("duplicate webhook ignored", "sepay_id", p.ID)
	}
	return stored, created, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	return s.store.ListTransactions(ctx, f)
}
