package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"ourxmas-backend/internal/models"
)

// ErrTransactionNotFound is returned by lookups that match no row.
var ErrTransactionNotFound = errors.New("transaction not found")

const transactionColumns = `id, sepay_id, gateway, transaction_date, account_number, content,
	transfer_type, amount, reference_code, description, deployment_url,
	deployment_claimed_at, created_at, updated_at`

// DatabaseClient is the transactions ledger backed by Postgres.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an already opened handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.SepayID, &t.Gateway, &t.TransactionDate, &t.AccountNumber, &t.Content,
		&t.TransferType, &t.Amount, &t.ReferenceCode, &t.Description, &t.DeploymentURL,
		&t.DeploymentClaimedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTransaction inserts t unless a row with the same sepay id exists.
// It returns the stored row and whether it was newly created.
func (d *DatabaseClient) CreateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, bool, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO transactions (sepay_id, gateway, transaction_date, account_number, content,
			transfer_type, amount, reference_code, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sepay_id) DO NOTHING
		RETURNING `+transactionColumns,
		t.SepayID, t.Gateway, t.TransactionDate, t.AccountNumber, t.Content,
		t.TransferType, t.Amount, t.ReferenceCode, t.Description,
	)
	created, err := scanTransaction(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create transaction: %w", err)
	}

	existing, err := d.GetTransactionBySepayID(ctx, t.SepayID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (d *DatabaseClient) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (d *DatabaseClient) GetTransactionBySepayID(ctx context.Context, sepayID int64) (*models.Transaction, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE sepay_id = $1`, sepayID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns one page of matching rows, newest first, and the
// total number of matches.
func (d *DatabaseClient) ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("transaction_date <= $%d", len(args)))
	}
	if f.Content != "" {
		args = append(args, "%"+f.Content+"%")
		conds = append(conds, fmt.Sprintf("content ILIKE $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	pageArgs := append(append([]any{}, args...), f.Limit, f.Skip)
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM transactions%s ORDER BY transaction_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)+1, len(args)+2,
	), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}

// FindLatestPayment returns the most recent transaction whose memo contains
// projectName and whose amount is at least minAmount, or nil when none does.
func (d *DatabaseClient) FindLatestPayment(ctx context.Context, projectName string, minAmount int64) (*models.Transaction, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE content ILIKE '%' || $1 || '%' AND amount >= $2
		ORDER BY transaction_date DESC, id DESC
		LIMIT 1
	`, projectName, minAmount)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return t, nil
}

// ClaimDeployment marks the transaction as being deployed. It reports false
// when the row already has a URL or holds a claim newer than staleBefore.
func (d *DatabaseClient) ClaimDeployment(ctx context.Context, id int64, staleBefore time.Time) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE transactions
		SET deployment_claimed_at = NOW(), updated_at = NOW()
		WHERE id = $1
			AND deployment_url IS NULL
			AND (deployment_claimed_at IS NULL OR deployment_claimed_at < $2)
	`, id, staleBefore)
	if err != nil {
		return false, fmt.Errorf("failed to claim deployment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim deployment: %w", err)
	}
	return n == 1, nil
}

func (d *DatabaseClient) ReleaseDeploymentClaim(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE transactions
		SET deployment_claimed_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deployment_url IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to release deployment claim: %w", err)
	}
	return nil
}

// SetDeploymentURL records url once; a row that already has a URL keeps it.
func (d *DatabaseClient) SetDeploymentURL(ctx context.Context, id int64, url string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE transactions
		SET deployment_url = $1, deployment_claimed_at = NULL, updated_at = NOW()
		WHERE id = $2 AND deployment_url IS NULL
	`, url, id)
	if err != nil {
		return fmt.Errorf("failed to set deployment url: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to set deployment url: transaction %d missing or already deployed", id)
	}
	return nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
