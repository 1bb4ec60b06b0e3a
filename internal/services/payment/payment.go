// Package payment simulates card payment intents: created for a booking,
// confirmed by the payer and checked before the booking is settled.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"sharedspace/internal/lib/ids"
	"sharedspace/internal/models"
	"sharedspace/internal/storage"
)

const (
	StatusRequiresConfirmation = "requires_confirmation"
	StatusSucceeded            = "succeeded"
	StatusUsed                 = "used"

	currency = "myr"

	placeholderKeyPrefix = "pk_test_your_"
	sandboxKeyPrefix     = "pk_test_"
)

var (
	ErrInvalidAmount  = errors.New("payment amount must be positive")
	ErrIntentNotOwned = errors.New("payment intent belongs to another user")
	ErrIntentUsed     = errors.New("payment intent has already been used")
)

type Store interface {
	SaveIntent(ctx context.Context, intent models.PaymentIntent, ttl time.Duration) error
	Intent(ctx context.Context, id string) (models.PaymentIntent, error)
	SwapIntentStatus(ctx context.Context, id, from, to string) (models.PaymentIntent, error)
}

type Service struct {
	log            *slog.Logger
	store          Store
	publishableKey string
	ttl            time.Duration
	now            func() time.Time
}

func New(log *slog.Logger, store Store, publishableKey string, ttl time.Duration) *Service {
	return &Service{
		log:            log,
		store:          store,
		publishableKey: publishableKey,
		ttl:            ttl,
		now:            time.Now,
	}
}

// IsDemoMode reports whether no usable publishable key is configured.
func (s *Service) IsDemoMode() bool {
	return s.publishableKey == "" || strings.HasPrefix(s.publishableKey, placeholderKeyPrefix)
}

// IsSandboxMode reports whether a real test-mode key is configured.
func (s *Service) IsSandboxMode() bool {
	return !s.IsDemoMode() && strings.HasPrefix(s.publishableKey, sandboxKeyPrefix)
}

func (s *Service) Mode() string {
	switch {
	case s.IsSandboxMode():
		return "sandbox"
	case s.IsDemoMode():
		return "demo"
	default:
		return "live"
	}
}

// ToCents converts a ringgit amount to the smallest currency unit.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *Service) CreateIntent(ctx context.Context, userID int64, req models.BookingRequest) (models.PaymentIntent, error) {
	const op = "services.payment.CreateIntent"

	if req.TotalPrice <= 0 {
		return models.PaymentIntent{}, ErrInvalidAmount
	}

	id := ids.PaymentIntentID()
	intent := models.PaymentIntent{
		ID:           id,
		ClientSecret: ids.ClientSecret(id),
		Amount:       ToCents(req.TotalPrice),
		Currency:     currency,
		Status:       StatusRequiresConfirmation,
		UserID:       userID,
		SpaceID:      req.SpaceID,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.store.SaveIntent(ctx, intent, s.ttl); err != nil {
		return models.PaymentIntent{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment intent created",
		slog.String("intent_id", intent.ID),
		slog.Int64("amount", intent.Amount),
		slog.String("mode", s.Mode()),
	)

	return intent, nil
}

// RetrieveIntent returns the user's intent.
func (s *Service) RetrieveIntent(ctx context.Context, userID int64, id string) (models.PaymentIntent, error) {
	intent, err := s.store.Intent(ctx, id)
	if err != nil {
		return models.PaymentIntent{}, err
	}
	if intent.UserID != userID {
		return models.PaymentIntent{}, ErrIntentNotOwned
	}
	return intent, nil
}

// ConfirmIntent marks the intent paid, as the hosted checkout page would.
// Confirming an already paid intent returns it unchanged.
func (s *Service) ConfirmIntent(ctx context.Context, userID int64, id string) (models.PaymentIntent, error) {
	const op = "services.payment.ConfirmIntent"

	current, err := s.RetrieveIntent(ctx, userID, id)
	if err != nil {
		return models.PaymentIntent{}, err
	}
	switch current.Status {
	case StatusSucceeded:
		return current, nil
	case StatusUsed:
		return models.PaymentIntent{}, ErrIntentUsed
	}

	intent, err := s.store.SwapIntentStatus(ctx, id, StatusRequiresConfirmation, StatusSucceeded)
	if err != nil {
		return models.PaymentIntent{}, s.swapError(ctx, op, id, err)
	}

	s.log.Info("payment intent confirmed", slog.String("intent_id", id))

	return intent, nil
}

// ClaimIntent consumes a paid intent so it settles exactly one booking.
func (s *Service) ClaimIntent(ctx context.Context, userID int64, id string) (models.PaymentIntent, error) {
	const op = "services.payment.ClaimIntent"

	if _, err := s.RetrieveIntent(ctx, userID, id); err != nil {
		return models.PaymentIntent{}, err
	}

	intent, err := s.store.SwapIntentStatus(ctx, id, StatusSucceeded, StatusUsed)
	if err != nil {
		return models.PaymentIntent{}, s.swapError(ctx, op, id, err)
	}

	s.log.Info("payment intent claimed", slog.String("intent_id", id))

	return intent, nil
}

// ReleaseIntent makes a claimed intent payable again after a failed settlement.
func (s *Service) ReleaseIntent(ctx context.Context, id string) error {
	const op = "services.payment.ReleaseIntent"

	if _, err := s.store.SwapIntentStatus(ctx, id, StatusUsed, StatusSucceeded); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment intent released", slog.String("intent_id", id))

	return nil
}

// swapError tells a consumed intent apart from one that is not paid yet.
func (s *Service) swapError(ctx context.Context, op, id string, err error) error {
	if !errors.Is(err, storage.ErrIntentStatusConflict) {
		if errors.Is(err, storage.ErrPaymentIntentNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	current, gerr := s.store.Intent(ctx, id)
	if gerr == nil && current.Status == StatusUsed {
		return ErrIntentUsed
	}
	return err
}

func IsPaymentSuccessful(intent models.PaymentIntent) bool {
	return intent.Status == StatusSucceeded
}

// FormatAmount renders a ringgit amount for display.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("RM %.2f", amount)
}
