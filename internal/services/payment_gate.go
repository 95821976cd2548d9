package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/models"
)

// Ledger is the part of the transactions store the gate depends on.
type Ledger interface {
	FindLatestPayment(ctx context.Context, projectName string, minAmount int64) (*models.Transaction, error)
	ClaimDeployment(ctx context.Context, id int64, staleBefore time.Time) (bool, error)
	ReleaseDeploymentClaim(ctx context.Context, id int64) error
	SetDeploymentURL(ctx context.Context, id int64, url string) error
}

// PaymentGate allows at most one deployment per paid project.
type PaymentGate struct {
	ledger    Ledger
	minAmount int64
	claimTTL  time.Duration
	log       *logger.Logger
	now       func() time.Time
}

func NewPaymentGate(ledger Ledger, minAmount int64, claimTTL time.Duration, log *logger.Logger) *PaymentGate {
	if claimTTL <= 0 {
		claimTTL = 5 * time.Minute
	}
	return &PaymentGate{
		ledger:    ledger,
		minAmount: minAmount,
		claimTTL:  claimTTL,
		log:       log.With("component", "PaymentGate"),
		now:       time.Now,
	}
}

// Check returns the qualifying payment for project, ErrPaymentRequired when
// there is none, or *AlreadyDeployedError when it already carries a URL.
func (g *PaymentGate) Check(ctx context.Context, project string) (*models.Transaction, error) {
	tx, err := g.ledger.FindLatestPayment(ctx, project, g.minAmount)
	if err != nil {
		return nil, fmt.Errorf("payment lookup: %w", err)
	}
	if tx == nil {
		return nil, ErrPaymentRequired
	}
	if tx.DeploymentURL.Valid && tx.DeploymentURL.String != "" {
		return nil, &AlreadyDeployedError{ProjectID: project, URL: tx.DeploymentURL.String}
	}
	return tx, nil
}

// Claim reserves tx for one deployment. A claim older than the TTL is
// considered abandoned and can be taken over.
func (g *PaymentGate) Claim(ctx context.Context, project string, tx *models.Transaction) error {
	ok, err := g.ledger.ClaimDeployment(ctx, tx.ID, g.now().Add(-g.claimTTL))
	if err != nil {
		return fmt.Errorf("claim deployment: %w", err)
	}
	if ok {
		return nil
	}

	// Lost the race: report the winner's URL if it has already finished.
	var done *AlreadyDeployedError
	if _, err := g.Check(ctx, project); errors.As(err, &done) {
		return done
	}
	return ErrDeploymentInProgress
}

func (g *PaymentGate) Release(ctx context.Context, tx *models.Transaction) {
	if err := g.ledger.ReleaseDeploymentClaim(ctx, tx.ID); err != nil {
		g.log.Warn("failed to release deployment claim", "transaction_id", tx.ID, "error", err)
	}
}

// Complete records url on tx. Failures are logged only since the artifact
// is already public.
func (g *PaymentGate) Complete(ctx context.Context, tx *models.Transaction, url string) {
	if err := g.ledger.SetDeploymentURL(ctx, tx.ID, url); err != nil {
		g.log.Error("failed to record deployment url", "transaction_id", tx.ID, "url", url, "error", err)
	}
}
