package postgres

import (
	"context"
	"errors"
	"fmt"

	"sharedspace/internal/models"
	"sharedspace/internal/storage"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, user_id, space_id, booking_date, start_time, end_time, duration, total_price,
	payment_method, payment_status, transaction_hash, stripe_payment_intent_id, amount, currency,
	created_at, completed_at, loyalty_tokens_earned, loyalty_tokens_used, space_name, space_location,
	user_wallet_address`

// SaveTransaction stores the transaction together with its booking history entry.
func (r *PostgresRepo) SaveTransaction(ctx context.Context, t models.Transaction, h models.BookingHistory) (err error) {
	const op = "storage.postgres.SaveTransaction"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		t.ID,
		t.UserID,
		t.BookingRequest.SpaceID,
		t.BookingRequest.Date,
		t.BookingRequest.StartTime,
		t.BookingRequest.EndTime,
		t.BookingRequest.Duration,
		t.BookingRequest.TotalPrice,
		t.PaymentMethod,
		t.PaymentStatus,
		t.TransactionHash,
		t.StripePaymentIntentID,
		t.Amount,
		t.Currency,
		t.CreatedAt,
		t.CompletedAt,
		t.LoyaltyTokensEarned,
		t.LoyaltyTokensUsed,
		t.SpaceName,
		t.SpaceLocation,
		t.UserWalletAddress,
	)
	if err != nil {
		return fmt.Errorf("%s: insert transaction: %w", op, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO booking_history (id, user_id, space_name, booking_date, time_range, status, amount,
			payment_method, loyalty_tokens_earned, loyalty_tokens_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		h.ID,
		t.UserID,
		h.SpaceName,
		h.Date,
		h.Time,
		h.Status,
		h.Amount,
		h.PaymentMethod,
		h.LoyaltyTokensEarned,
		h.LoyaltyTokensUsed,
		h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: insert booking history: %w", op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.BookingRequest.SpaceID,
		&t.BookingRequest.Date,
		&t.BookingRequest.StartTime,
		&t.BookingRequest.EndTime,
		&t.BookingRequest.Duration,
		&t.BookingRequest.TotalPrice,
		&t.PaymentMethod,
		&t.PaymentStatus,
		&t.TransactionHash,
		&t.StripePaymentIntentID,
		&t.Amount,
		&t.Currency,
		&t.CreatedAt,
		&t.CompletedAt,
		&t.LoyaltyTokensEarned,
		&t.LoyaltyTokensUsed,
		&t.SpaceName,
		&t.SpaceLocation,
		&t.UserWalletAddress,
	)
	t.BookingRequest.UserWallet = t.UserWalletAddress
	return t, err
}

// Transactions returns the user's transactions, oldest first. A non-empty wallet
// narrows the result to that wallet address.
func (r *PostgresRepo) Transactions(ctx context.Context, userID int64, wallet string) ([]models.Transaction, error) {
	const op = "storage.postgres.Transactions"

	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1 AND ($2::text = '' OR user_wallet_address = $2)
		ORDER BY created_at`,
		userID,
		wallet,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (r *PostgresRepo) TransactionByID(ctx context.Context, userID int64, id string) (models.Transaction, error) {
	const op = "storage.postgres.TransactionByID"

	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, storage.ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// BookingHistory returns the user's booking history, newest first.
func (r *PostgresRepo) BookingHistory(ctx context.Context, userID int64) ([]models.BookingHistory, error) {
	const op = "storage.postgres.BookingHistory"

	rows, err := r.pool.Query(ctx,
		`SELECT id, space_name, booking_date, time_range, status, amount, payment_method,
			loyalty_tokens_earned, loyalty_tokens_used, created_at
		FROM booking_history
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.BookingHistory
	for rows.Next() {
		var h models.BookingHistory
		if err := rows.Scan(
			&h.ID,
			&h.SpaceName,
			&h.Date,
			&h.Time,
			&h.Status,
			&h.Amount,
			&h.PaymentMethod,
			&h.LoyaltyTokensEarned,
			&h.LoyaltyTokensUsed,
			&h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CancelTransaction locks the user's transaction row, checks it is still completed
// and marks it and its history entry cancelled.
func (r *PostgresRepo) CancelTransaction(ctx context.Context, userID int64, id string) (t models.Transaction, err error) {
	const op = "storage.postgres.CancelTransaction"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	t, err = scanTransaction(tx.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, storage.ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	if t.PaymentStatus != models.PaymentCompleted {
		err = storage.ErrTransactionNotActive
		return models.Transaction{}, err
	}

	if _, err = tx.Exec(ctx,
		`UPDATE transactions SET payment_status = $1 WHERE id = $2`,
		models.PaymentCancelled,
		id,
	); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.Exec(ctx,
		`UPDATE booking_history SET status = $1 WHERE id = $2`,
		models.PaymentCancelled,
		id,
	); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	t.PaymentStatus = models.PaymentCancelled
	return t, nil
}

// ClearUserData deletes every transaction of the user; history rows cascade.
func (r *PostgresRepo) ClearUserData(ctx context.Context, userID int64) error {
	const op = "storage.postgres.ClearUserData"

	if _, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
