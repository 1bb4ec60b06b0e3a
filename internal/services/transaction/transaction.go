// Package transaction records simulated payments and the booking history derived from them.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"sharedspace/internal/lib/ids"
	"sharedspace/internal/models"
	"sharedspace/internal/services/catalog"
	"sharedspace/internal/services/loyalty"
)

const (
	CurrencyWallet = "IOTA"
	CurrencyCard   = "MYR"

	unknownSpace    = "Unknown Space"
	unknownLocation = "Unknown Location"
)

type Repository interface {
	SaveTransaction(ctx context.Context, t models.Transaction, h models.BookingHistory) error
	Transactions(ctx context.Context, userID int64, wallet string) ([]models.Transaction, error)
	TransactionByID(ctx context.Context, userID int64, id string) (models.Transaction, error)
	BookingHistory(ctx context.Context, userID int64) ([]models.BookingHistory, error)
	CancelTransaction(ctx context.Context, userID int64, id string) (models.Transaction, error)
	ClearUserData(ctx context.Context, userID int64) error
}

type Service struct {
	log         *slog.Logger
	repo        Repository
	walletDelay time.Duration
	cardDelay   time.Duration
	now         func() time.Time
}

func New(log *slog.Logger, repo Repository, walletDelay, cardDelay time.Duration) *Service {
	return &Service{
		log:         log,
		repo:        repo,
		walletDelay: walletDelay,
		cardDelay:   cardDelay,
		now:         time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SimulateWalletTransaction settles a booking with ledger tokens after the
// simulated network delay.
func (s *Service) SimulateWalletTransaction(
	ctx context.Context,
	userID int64,
	req models.BookingRequest,
	walletAddress string,
) (models.Transaction, error) {
	return s.record(ctx, userID, req, models.PaymentWallet, s.walletDelay, func(t *models.Transaction) {
		t.TransactionHash = ids.TransactionHash()
		t.Currency = CurrencyWallet
		t.UserWalletAddress = walletAddress
		t.BookingRequest.UserWallet = walletAddress
	})
}

// SimulateCardTransaction settles a booking by card. An empty intent id gets a
// generated reference.
func (s *Service) SimulateCardTransaction(
	ctx context.Context,
	userID int64,
	req models.BookingRequest,
	paymentIntentID string,
) (models.Transaction, error) {
	if paymentIntentID == "" {
		paymentIntentID = ids.CardReference()
	}

	return s.record(ctx, userID, req, models.PaymentCard, s.cardDelay, func(t *models.Transaction) {
		t.StripePaymentIntentID = paymentIntentID
		t.Currency = CurrencyCard
	})
}

func (s *Service) record(
	ctx context.Context,
	userID int64,
	req models.BookingRequest,
	method models.PaymentMethod,
	delay time.Duration,
	fill func(t *models.Transaction),
) (models.Transaction, error) {
	const op = "services.transaction.record"

	if err := sleep(ctx, delay); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	history, err := s.repo.BookingHistory(ctx, userID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	spaceName, spaceLocation := spaceDetails(req.SpaceID)

	t := models.Transaction{
		ID:                  ids.TransactionID(now),
		UserID:              userID,
		BookingRequest:      req,
		PaymentMethod:       method,
		PaymentStatus:       models.PaymentCompleted,
		Amount:              req.TotalPrice,
		CreatedAt:           now,
		CompletedAt:         &now,
		LoyaltyTokensEarned: loyalty.TokensForHistory(history),
		LoyaltyTokensUsed:   0,
		SpaceName:           spaceName,
		SpaceLocation:       spaceLocation,
	}
	fill(&t)

	if err := s.repo.SaveTransaction(ctx, t, HistoryEntry(t)); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("transaction completed",
		slog.String("transaction_id", t.ID),
		slog.String("payment_method", string(t.PaymentMethod)),
		slog.Float64("amount", t.Amount),
		slog.Int("loyalty_tokens_earned", t.LoyaltyTokensEarned),
	)

	return t, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func spaceDetails(spaceID string) (string, string) {
	space, err := catalog.Find(spaceID)
	if err != nil {
		return unknownSpace, unknownLocation
	}
	return space.Name, fmt.Sprintf("%s, %s", space.Location.Address, space.Location.City)
}

// HistoryEntry derives the booking history row shown for a transaction.
func HistoryEntry(t models.Transaction) models.BookingHistory {
	return models.BookingHistory{
		ID:                  t.ID,
		SpaceName:           t.SpaceName,
		Date:                t.BookingRequest.Date,
		Time:                fmt.Sprintf("%s - %s", t.BookingRequest.StartTime, t.BookingRequest.EndTime),
		Status:              t.PaymentStatus,
		Amount:              fmt.Sprintf("%s %s", t.Currency, strconv.FormatFloat(t.Amount, 'f', -1, 64)),
		PaymentMethod:       t.PaymentMethod,
		LoyaltyTokensEarned: t.LoyaltyTokensEarned,
		LoyaltyTokensUsed:   t.LoyaltyTokensUsed,
		CreatedAt:           t.CreatedAt,
	}
}

// Transactions lists the user's transactions; a non-empty wallet narrows them to that address.
func (s *Service) Transactions(ctx context.Context, userID int64, wallet string) ([]models.Transaction, error) {
	const op = "services.transaction.Transactions"

	out, err := s.repo.Transactions(ctx, userID, wallet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if out == nil {
		out = []models.Transaction{}
	}
	return out, nil
}

func (s *Service) TransactionByID(ctx context.Context, userID int64, id string) (models.Transaction, error) {
	return s.repo.TransactionByID(ctx, userID, id)
}

func (s *Service) BookingHistory(ctx context.Context, userID int64) ([]models.BookingHistory, error) {
	const op = "services.transaction.BookingHistory"

	out, err := s.repo.BookingHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if out == nil {
		out = []models.BookingHistory{}
	}
	return out, nil
}

// Cancel marks a completed transaction cancelled. The caller frees its slots.
func (s *Service) Cancel(ctx context.Context, userID int64, id string) (models.Transaction, error) {
	return s.repo.CancelTransaction(ctx, userID, id)
}

func (s *Service) ClearAll(ctx context.Context, userID int64) error {
	const op = "services.transaction.ClearAll"

	if err := s.repo.ClearUserData(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("transaction data cleared", slog.Int64("user_id", userID))

	return nil
}

// TokenTotals sums earned and used loyalty tokens over the user's transactions.
type TokenTotals struct {
	Earned    int `json:"earned"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

func (s *Service) LoyaltyTokens(ctx context.Context, userID int64, wallet string) (TokenTotals, error) {
	txs, err := s.Transactions(ctx, userID, wallet)
	if err != nil {
		return TokenTotals{}, err
	}

	var totals TokenTotals
	for _, t := range txs {
		totals.Earned += t.LoyaltyTokensEarned
		totals.Used += t.LoyaltyTokensUsed
	}
	totals.Available = totals.Earned - totals.Used

	return totals, nil
}

func (s *Service) Stats(ctx context.Context, userID int64, wallet string) (models.TransactionStats, error) {
	txs, err := s.Transactions(ctx, userID, wallet)
	if err != nil {
		return models.TransactionStats{}, err
	}
	return Stats(txs), nil
}

func Stats(txs []models.Transaction) models.TransactionStats {
	var st models.TransactionStats

	st.TotalTransactions = len(txs)
	for _, t := range txs {
		st.TotalAmount += t.Amount
		switch t.PaymentMethod {
		case models.PaymentWallet:
			st.IotaTransactions++
		case models.PaymentCard:
			st.StripeTransactions++
		}
	}
	if st.TotalTransactions > 0 {
		st.AverageAmount = st.TotalAmount / float64(st.TotalTransactions)
	}

	return st
}
