package postgres

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"sharedspace/internal/models"
	"sharedspace/internal/storage"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*PostgresRepo, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return New(mock), mock
}

func columns() []string {
	cols := strings.Split(transactionColumns, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

func transactionRow(id string, status models.PaymentStatus, wallet string) []any {
	completed := createdAt.Add(2 * time.Second)
	return []any{
		id, int64(7), "1", "2026-10-20", "10:00", "12:00", 2, 90.0,
		models.PaymentWallet, status, "0xabc", "", 90.0, "MYR",
		createdAt, &completed, 5, 0, "KL Badminton Arena", "Kuala Lumpur", wallet,
	}
}

func TestTransactionsWalletFilter(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()
	filter := regexp.QuoteMeta(`WHERE user_id = $1 AND ($2::text = '' OR user_wallet_address = $2)`)

	mock.ExpectQuery(filter).
		WithArgs(int64(7), "").
		WillReturnRows(pgxmock.NewRows(columns()).
			AddRow(transactionRow("txn_1", models.PaymentCompleted, "iota1qabc")...).
			AddRow(transactionRow("txn_2", models.PaymentCompleted, "iota1qother")...))

	mock.ExpectQuery(filter).
		WithArgs(int64(7), "iota1qabc").
		WillReturnRows(pgxmock.NewRows(columns()).
			AddRow(transactionRow("txn_1", models.PaymentCompleted, "iota1qabc")...))

	all, err := repo.Transactions(ctx, 7, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "iota1qother", all[1].UserWalletAddress)

	byWallet, err := repo.Transactions(ctx, 7, "iota1qabc")
	require.NoError(t, err)
	require.Len(t, byWallet, 1)
	assert.Equal(t, "iota1qabc", byWallet[0].BookingRequest.UserWallet)
	assert.Equal(t, 2, byWallet[0].BookingRequest.Duration)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2`)).
		WithArgs("txn_missing", int64(7)).
		WillReturnRows(pgxmock.NewRows(columns()))

	_, err := repo.TransactionByID(context.Background(), 7, "txn_missing")
	assert.ErrorIs(t, err, storage.ErrTransactionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTransactionSingleCommit(t *testing.T) {
	repo, mock := newMock(t)

	tx := models.Transaction{ID: "txn_1", UserID: 7, CreatedAt: createdAt}
	h := models.BookingHistory{ID: "txn_1", CreatedAt: createdAt}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO booking_history`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveTransaction(context.Background(), tx, h))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTransactionRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO booking_history`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveTransaction(context.Background(), models.Transaction{ID: "txn_1"}, models.BookingHistory{ID: "txn_1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTransaction(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2 FOR UPDATE`)).
		WithArgs("txn_1", int64(7)).
		WillReturnRows(pgxmock.NewRows(columns()).
			AddRow(transactionRow("txn_1", models.PaymentCompleted, "iota1qabc")...))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE transactions SET payment_status = $1 WHERE id = $2`)).
		WithArgs(models.PaymentCancelled, "txn_1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE booking_history SET status = $1 WHERE id = $2`)).
		WithArgs(models.PaymentCancelled, "txn_1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	cancelled, err := repo.CancelTransaction(context.Background(), 7, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, cancelled.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTransactionNotActive(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("txn_1", int64(7)).
		WillReturnRows(pgxmock.NewRows(columns()).
			AddRow(transactionRow("txn_1", models.PaymentCancelled, "")...))
	mock.ExpectRollback()

	_, err := repo.CancelTransaction(context.Background(), 7, "txn_1")
	assert.ErrorIs(t, err, storage.ErrTransactionNotActive)
	assert.NoError(t, mock.ExpectationsWereMet(), "no update may run on an inactive booking")
}

func TestCancelTransactionNotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("txn_1", int64(8)).
		WillReturnRows(pgxmock.NewRows(columns()))
	mock.ExpectRollback()

	_, err := repo.CancelTransaction(context.Background(), 8, "txn_1")
	assert.ErrorIs(t, err, storage.ErrTransactionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearUserData(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM transactions WHERE user_id = $1`)).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, repo.ClearUserData(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryCascadesFromTransactions(t *testing.T) {
	schema, err := os.ReadFile("../../../migrations/1_init.up.sql")
	require.NoError(t, err)

	assert.Regexp(t,
		`(?s)CREATE TABLE IF NOT EXISTS booking_history.*REFERENCES transactions \(id\) ON DELETE CASCADE`,
		string(schema),
		"history rows are removed with their transaction",
	)
}
