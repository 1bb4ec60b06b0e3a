package payment

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"sharedspace/internal/models"
	"sharedspace/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	intents map[string]models.PaymentIntent
}

func (f *fakeStore) SaveIntent(_ context.Context, intent models.PaymentIntent, _ time.Duration) error {
	f.intents[intent.ID] = intent
	return nil
}

func (f *fakeStore) Intent(_ context.Context, id string) (models.PaymentIntent, error) {
	intent, ok := f.intents[id]
	if !ok {
		return models.PaymentIntent{}, storage.ErrPaymentIntentNotFound
	}
	return intent, nil
}

func (f *fakeStore) SwapIntentStatus(_ context.Context, id, from, to string) (models.PaymentIntent, error) {
	intent, ok := f.intents[id]
	if !ok {
		return models.PaymentIntent{}, storage.ErrPaymentIntentNotFound
	}
	if intent.Status != from {
		return models.PaymentIntent{}, storage.ErrIntentStatusConflict
	}
	intent.Status = to
	f.intents[id] = intent
	return intent, nil
}

func newService(key string) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, &fakeStore{intents: map[string]models.PaymentIntent{}}, key, time.Hour)
}

func TestModes(t *testing.T) {
	tests := []struct {
		key     string
		demo    bool
		sandbox bool
		mode    string
	}{
		{"", true, false, "demo"},
		{"pk_test_your_publishable_key_here", true, false, "demo"},
		{"pk_test_51Habc", false, true, "sandbox"},
		{"pk_live_51Habc", false, false, "live"},
	}

	for _, tt := range tests {
		svc := newService(tt.key)
		assert.Equal(t, tt.demo, svc.IsDemoMode(), tt.key)
		assert.Equal(t, tt.sandbox, svc.IsSandboxMode(), tt.key)
		assert.Equal(t, tt.mode, svc.Mode(), tt.key)
	}
}

func TestIntentLifecycle(t *testing.T) {
	svc := newService("")
	ctx := context.Background()

	intent, err := svc.CreateIntent(ctx, 1, models.BookingRequest{SpaceID: "3", TotalPrice: 120.5})
	require.NoError(t, err)
	assert.Equal(t, int64(12050), intent.Amount)
	assert.Equal(t, "myr", intent.Currency)
	assert.Equal(t, StatusRequiresConfirmation, intent.Status)
	assert.Contains(t, intent.ClientSecret, intent.ID+"_secret_")
	assert.False(t, IsPaymentSuccessful(intent))

	_, err = svc.RetrieveIntent(ctx, 2, intent.ID)
	assert.ErrorIs(t, err, ErrIntentNotOwned)

	_, err = svc.ConfirmIntent(ctx, 2, intent.ID)
	assert.ErrorIs(t, err, ErrIntentNotOwned)

	confirmed, err := svc.ConfirmIntent(ctx, 1, intent.ID)
	require.NoError(t, err)
	assert.True(t, IsPaymentSuccessful(confirmed))

	got, err := svc.RetrieveIntent(ctx, 1, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, got.Status)

	_, err = svc.RetrieveIntent(ctx, 1, "pi_demo_missing")
	assert.ErrorIs(t, err, storage.ErrPaymentIntentNotFound)
}

func TestClaimIntentOnce(t *testing.T) {
	svc := newService("")
	ctx := context.Background()

	intent, err := svc.CreateIntent(ctx, 1, models.BookingRequest{SpaceID: "1", TotalPrice: 45})
	require.NoError(t, err)

	_, err = svc.ClaimIntent(ctx, 1, intent.ID)
	assert.ErrorIs(t, err, storage.ErrIntentStatusConflict, "unconfirmed intents cannot be claimed")

	_, err = svc.ConfirmIntent(ctx, 1, intent.ID)
	require.NoError(t, err)

	again, err := svc.ConfirmIntent(ctx, 1, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, again.Status)

	_, err = svc.ClaimIntent(ctx, 2, intent.ID)
	assert.ErrorIs(t, err, ErrIntentNotOwned)

	claimed, err := svc.ClaimIntent(ctx, 1, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUsed, claimed.Status)
	assert.False(t, IsPaymentSuccessful(claimed))

	_, err = svc.ClaimIntent(ctx, 1, intent.ID)
	assert.ErrorIs(t, err, ErrIntentUsed)

	_, err = svc.ConfirmIntent(ctx, 1, intent.ID)
	assert.ErrorIs(t, err, ErrIntentUsed, "a used intent cannot be confirmed again")

	require.NoError(t, svc.ReleaseIntent(ctx, intent.ID))

	_, err = svc.ClaimIntent(ctx, 1, intent.ID)
	require.NoError(t, err)
}

func TestCreateIntentRejectsEmptyAmount(t *testing.T) {
	_, err := newService("").CreateIntent(context.Background(), 1, models.BookingRequest{SpaceID: "1"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "RM 120.00", FormatAmount(120))
	assert.Equal(t, int64(9000), ToCents(90))
}
