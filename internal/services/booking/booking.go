package bookingsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	"sharedspace/internal/services/availability"
	"sharedspace/internal/services/payment"
	"sharedspace/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidDuration       = errors.New("duration does not match the booked hours")
	ErrPriceMismatch         = errors.New("total price does not match the slot prices")
	ErrWalletRequired        = errors.New("wallet payment requires a connected wallet")
	ErrUnsupportedMethod     = errors.New("unsupported payment method")
	ErrPaymentNotCompleted   = errors.New("payment intent is not confirmed")
	ErrPaymentIntentMismatch = errors.New("payment intent does not match the booking")
)

const priceTolerance = 0.005

type Slots interface {
	Quote(spaceID, date, startTime, endTime string) (availability.Quote, error)
	Reserve(ctx context.Context, q availability.Quote) error
	Release(ctx context.Context, spaceID, date string, startTimes []string) error
}

type Transactions interface {
	TransactionByID(ctx context.Context, userID int64, id string) (models.Transaction, error)
	SimulateWalletTransaction(ctx context.Context, userID int64, req models.BookingRequest, walletAddress string) (models.Transaction, error)
	SimulateCardTransaction(ctx context.Context, userID int64, req models.BookingRequest, paymentIntentID string) (models.Transaction, error)
	Cancel(ctx context.Context, userID int64, id string) (models.Transaction, error)
}

type Intents interface {
	RetrieveIntent(ctx context.Context, userID int64, id string) (models.PaymentIntent, error)
	ClaimIntent(ctx context.Context, userID int64, id string) (models.PaymentIntent, error)
	ReleaseIntent(ctx context.Context, id string) error
}

type Wallets interface {
	ConnectedAddress(ctx context.Context, userID int64) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, event models.BookingEvent) error
}

type UserProvider interface {
	GetUserInformation(ctx context.Context, userID int64) (models.User, error)
}

type BookingService struct {
	log          *slog.Logger
	slots        Slots
	transactions Transactions
	intents      Intents
	wallets      Wallets
	publisher    Publisher
	users        UserProvider
	tracer       trace.Tracer
	now          func() time.Time
}

// NewBookingService wires the booking flow. users may be nil, in which case
// events carry no contact details.
func NewBookingService(
	log *slog.Logger,
	slots Slots,
	transactions Transactions,
	intents Intents,
	wallets Wallets,
	publisher Publisher,
	users UserProvider,
) *BookingService {
	return &BookingService{
		log:          log,
		slots:        slots,
		transactions: transactions,
		intents:      intents,
		wallets:      wallets,
		publisher:    publisher,
		users:        users,
		tracer:       otel.Tracer("sharedspace/booking"),
		now:          time.Now,
	}
}

// Book reserves every hour of the request, settles the payment and announces
// the booking. Slots are released again when the payment fails.
func (s *BookingService) Book(
	ctx context.Context,
	userID int64,
	req models.BookingRequest,
	method models.PaymentMethod,
	paymentIntentID string,
) (models.Transaction, error) {
	const op = "services.booking.Book"

	ctx, span := s.tracer.Start(ctx, "booking.Book", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("space.id", req.SpaceID),
		attribute.String("booking.date", req.Date),
		attribute.String("payment.method", string(method)),
	))
	defer span.End()

	log := s.log.With(slog.String("op", op), slog.Int64("user_id", userID))

	q, err := s.slots.Quote(req.SpaceID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return fail(span, models.Transaction{}, err)
	}

	if req.Duration != 0 && req.Duration != len(q.Slots) {
		return fail(span, models.Transaction{}, ErrInvalidDuration)
	}
	if req.TotalPrice != 0 && math.Abs(req.TotalPrice-q.Total) > priceTolerance {
		return fail(span, models.Transaction{}, ErrPriceMismatch)
	}
	req.Duration = len(q.Slots)
	req.TotalPrice = q.Total

	var walletAddress string
	switch method {
	case models.PaymentWallet:
		walletAddress, err = s.walletAddress(ctx, userID, req.UserWallet)
		if err != nil {
			return fail(span, models.Transaction{}, err)
		}
	case models.PaymentCard:
		if err := s.checkIntent(ctx, userID, paymentIntentID, q); err != nil {
			return fail(span, models.Transaction{}, err)
		}
	default:
		return fail(span, models.Transaction{}, ErrUnsupportedMethod)
	}

	if err := s.slots.Reserve(ctx, q); err != nil {
		return fail(span, models.Transaction{}, err)
	}

	// rollback undoes the reservation and the intent claim.
	rollback := func(intentClaimed bool) {
		bg := context.WithoutCancel(ctx)
		if err := s.slots.Release(bg, q.SpaceID, q.Date, q.StartTimes()); err != nil {
			log.Error("failed to release slots after payment failure", sl.Err(err))
		}
		if intentClaimed {
			if err := s.intents.ReleaseIntent(bg, paymentIntentID); err != nil {
				log.Error("failed to release payment intent", sl.Err(err))
			}
		}
	}

	claimed := false
	if method == models.PaymentCard && paymentIntentID != "" {
		if _, err := s.intents.ClaimIntent(ctx, userID, paymentIntentID); err != nil {
			rollback(false)
			if errors.Is(err, storage.ErrIntentStatusConflict) {
				err = ErrPaymentNotCompleted
			}
			return fail(span, models.Transaction{}, err)
		}
		claimed = true
	}

	var t models.Transaction
	if method == models.PaymentWallet {
		t, err = s.transactions.SimulateWalletTransaction(ctx, userID, req, walletAddress)
	} else {
		t, err = s.transactions.SimulateCardTransaction(ctx, userID, req, paymentIntentID)
	}
	if err != nil {
		rollback(claimed)
		return fail(span, models.Transaction{}, fmt.Errorf("%s: %w", op, err))
	}

	span.SetAttributes(attribute.String("transaction.id", t.ID))

	log.Info("space booked",
		slog.String("transaction_id", t.ID),
		slog.String("space_id", req.SpaceID),
		slog.String("date", req.Date),
		slog.String("time", req.StartTime+"-"+req.EndTime),
	)

	s.notify(ctx, log, models.EventBookingConfirmed, t)

	return t, nil
}

// Cancel cancels the user's completed booking. The slots are freed before the
// transaction is marked cancelled; when marking fails they are taken back, so a
// retry sees the booking still active.
func (s *BookingService) Cancel(ctx context.Context, userID int64, transactionID string) (models.Transaction, error) {
	const op = "services.booking.Cancel"

	ctx, span := s.tracer.Start(ctx, "booking.Cancel", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("transaction.id", transactionID),
	))
	defer span.End()

	log := s.log.With(slog.String("op", op), slog.Int64("user_id", userID))

	current, err := s.transactions.TransactionByID(ctx, userID, transactionID)
	if err != nil {
		return fail(span, models.Transaction{}, err)
	}
	if current.PaymentStatus != models.PaymentCompleted {
		return fail(span, models.Transaction{}, storage.ErrTransactionNotActive)
	}

	req := current.BookingRequest
	starts, err := availability.StartTimesBetween(req.StartTime, req.EndTime)
	if err != nil {
		return fail(span, models.Transaction{}, fmt.Errorf("%s: %w", op, err))
	}

	if err := s.slots.Release(ctx, req.SpaceID, req.Date, starts); err != nil {
		return fail(span, models.Transaction{}, fmt.Errorf("%s: %w", op, err))
	}

	t, err := s.transactions.Cancel(ctx, userID, transactionID)
	if err != nil {
		// ErrTransactionNotActive means a concurrent cancel already committed.
		if !errors.Is(err, storage.ErrTransactionNotActive) {
			s.retake(ctx, log, req, starts)
		}
		if errors.Is(err, storage.ErrTransactionNotActive) || errors.Is(err, storage.ErrTransactionNotFound) {
			return fail(span, models.Transaction{}, err)
		}
		return fail(span, models.Transaction{}, fmt.Errorf("%s: %w", op, err))
	}

	log.Info("booking cancelled", slog.String("transaction_id", t.ID))

	s.notify(ctx, log, models.EventBookingCancelled, t)

	return t, nil
}

// retake books the slots of a booking whose cancellation failed.
func (s *BookingService) retake(ctx context.Context, log *slog.Logger, req models.BookingRequest, starts []string) {
	q := availability.Quote{SpaceID: req.SpaceID, Date: req.Date}
	for _, start := range starts {
		q.Slots = append(q.Slots, models.TimeSlot{Date: req.Date, StartTime: start})
	}

	if err := s.slots.Reserve(context.WithoutCancel(ctx), q); err != nil {
		log.Error("failed to restore slots after failed cancellation", sl.Err(err))
	}
}

func (s *BookingService) walletAddress(ctx context.Context, userID int64, requested string) (string, error) {
	if addr := strings.TrimSpace(requested); addr != "" {
		return addr, nil
	}

	addr, err := s.wallets.ConnectedAddress(ctx, userID)
	if err != nil {
		return "", err
	}
	if addr == "" {
		return "", ErrWalletRequired
	}
	return addr, nil
}

// checkIntent accepts a missing intent id; the card is then charged directly.
func (s *BookingService) checkIntent(ctx context.Context, userID int64, id string, q availability.Quote) error {
	if id == "" {
		return nil
	}

	intent, err := s.intents.RetrieveIntent(ctx, userID, id)
	if err != nil {
		return err
	}
	if intent.Status == payment.StatusUsed {
		return payment.ErrIntentUsed
	}
	if !payment.IsPaymentSuccessful(intent) {
		return ErrPaymentNotCompleted
	}
	if intent.Amount != payment.ToCents(q.Total) || (intent.SpaceID != "" && intent.SpaceID != q.SpaceID) {
		return ErrPaymentIntentMismatch
	}
	return nil
}

// notify publishes the event. A broker outage must not undo a paid booking, so
// errors are only logged.
func (s *BookingService) notify(ctx context.Context, log *slog.Logger, kind string, t models.Transaction) {
	event := models.BookingEvent{
		Kind:                kind,
		TransactionID:       t.ID,
		UserID:              t.UserID,
		SpaceID:             t.BookingRequest.SpaceID,
		SpaceName:           t.SpaceName,
		SpaceLocation:       t.SpaceLocation,
		Date:                t.BookingRequest.Date,
		StartTime:           t.BookingRequest.StartTime,
		EndTime:             t.BookingRequest.EndTime,
		Amount:              t.Amount,
		Currency:            t.Currency,
		PaymentMethod:       t.PaymentMethod,
		LoyaltyTokensEarned: t.LoyaltyTokensEarned,
		OccurredAt:          s.now().UTC(),
	}

	if s.users != nil {
		user, err := s.users.GetUserInformation(ctx, t.UserID)
		if err != nil {
			log.Warn("failed to get user information", sl.Err(err))
		} else {
			event.UserEmail = user.Email
			event.UserName = strings.TrimSpace(user.FirstName + " " + user.LastName)
		}
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error("failed to publish booking event", slog.String("kind", kind), sl.Err(err))
	}
}

func fail(span trace.Span, t models.Transaction, err error) (models.Transaction, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return t, err
}
