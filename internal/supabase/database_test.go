package supabase

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ourxmas-backend/internal/models"
)

var columns = []string{
	"id", "sepay_id", "gateway", "transaction_date", "account_number", "content",
	"transfer_type", "amount", "reference_code", "description", "deployment_url",
	"deployment_claimed_at", "created_at", "updated_at",
}

var txDate = time.Date(2024, 12, 20, 10, 30, 0, 0, time.UTC)

func row(id int64, content string, url driver.Value) []driver.Value {
	return []driver.Value{
		id, id + 1000, "Vietcombank", txDate, "0123456789", content,
		"in", int64(50000), "FT123", nil, url, nil, txDate, txDate,
	}
}

func newMock(t *testing.T) (*DatabaseClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDatabaseClientFromDB(db), mock
}

func sampleTransaction() *models.Transaction {
	return &models.Transaction{
		SepayID:         1001,
		Gateway:         "Vietcombank",
		TransactionDate: txDate,
		AccountNumber:   "0123456789",
		Content:         "xmas1",
		TransferType:    "in",
		Amount:          50000,
		ReferenceCode:   "FT123",
	}
}

func TestCreateTransaction_New(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO transactions .* ON CONFLICT \(sepay_id\) DO NOTHING`).
		WithArgs(int64(1001), "Vietcombank", txDate, "0123456789", "xmas1", "in", int64(50000), "FT123", nil).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row(1, "xmas1", nil)...))

	tx, created, err := client.CreateTransaction(context.Background(), sampleTransaction())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), tx.ID)
	assert.False(t, tx.DeploymentURL.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransaction_Replay(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectQuery(`SELECT .* FROM transactions WHERE sepay_id = \$1`).
		WithArgs(int64(1001)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row(1, "xmas1", nil)...))

	tx, created, err := client.CreateTransaction(context.Background(), sampleTransaction())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), tx.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransaction_NotFound(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(`SELECT .* FROM transactions WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := client.GetTransaction(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestListTransactions_Filters(t *testing.T) {
	client, mock := newMock(t)
	start := txDate.Add(-24 * time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions WHERE transaction_date >= \$1 AND content ILIKE \$2`).
		WithArgs(start, "%xmas%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`ORDER BY transaction_date DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(start, "%xmas%", 2, 1).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(row(3, "xmas3", nil)...).
			AddRow(row(2, "xmas2", "https://xmas2.ourxmas.site")...))

	list, total, err := client.ListTransactions(context.Background(), models.TransactionFilter{
		StartDate: &start,
		Content:   "xmas",
		Skip:      1,
		Limit:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "https://xmas2.ourxmas.site", list[1].DeploymentURL.String)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactions_NoFilters(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows(columns))

	list, total, err := client.ListTransactions(context.Background(), models.TransactionFilter{Limit: 100})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFindLatestPayment(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(`content ILIKE '%' \|\| \$1 \|\| '%' AND amount >= \$2\s+ORDER BY transaction_date DESC, id DESC\s+LIMIT 1`).
		WithArgs("xmas1", int64(20000)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row(7, "xmas1", nil)...))

	tx, err := client.FindLatestPayment(context.Background(), "xmas1", 20000)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, int64(7), tx.ID)
}

func TestFindLatestPayment_None(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(`FROM transactions`).
		WillReturnRows(sqlmock.NewRows(columns))

	tx, err := client.FindLatestPayment(context.Background(), "xmas1", 20000)
	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestFindLatestPayment_Error(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(`FROM transactions`).WillReturnError(errors.New("connection reset"))

	_, err := client.FindLatestPayment(context.Background(), "xmas1", 20000)
	assert.Error(t, err)
}

func TestClaimDeployment(t *testing.T) {
	stale := txDate.Add(-5 * time.Minute)

	t.Run("claimed", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectExec(`UPDATE transactions\s+SET deployment_claimed_at = NOW\(\).*deployment_url IS NULL`).
			WithArgs(int64(7), stale).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := client.ClaimDeployment(context.Background(), 7, stale)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("held elsewhere", func(t *testing.T) {
		client, mock := newMock(t)
		mock.ExpectExec(`UPDATE transactions`).
			WithArgs(int64(7), stale).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := client.ClaimDeployment(context.Background(), 7, stale)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestReleaseDeploymentClaim(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectExec(`SET deployment_claimed_at = NULL`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, client.ReleaseDeploymentClaim(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDeploymentURL(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectExec(`SET deployment_url = \$1`).
		WithArgs("https://xmas1.ourxmas.site", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, client.SetDeploymentURL(context.Background(), 7, "https://xmas1.ourxmas.site"))
}

func TestSetDeploymentURL_AlreadySet(t *testing.T) {
	client, mock := newMock(t)
	mock.ExpectExec(`SET deployment_url = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Error(t, client.SetDeploymentURL(context.Background(), 7, "https://xmas1.ourxmas.site"))
}
