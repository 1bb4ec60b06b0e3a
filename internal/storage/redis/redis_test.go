package redis

import (
	"context"
	"testing"
	"time"

	"sharedspace/internal/models"
	"sharedspace/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewWithClient(client), mr
}

func TestReserveRelease(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()
	expire := time.Now().Add(2 * time.Hour)

	ok, err := repo.Reserve(ctx, "1", "2026-10-20", "10:00", expire)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Reserve(ctx, "1", "2026-10-20", "10:00", expire)
	require.NoError(t, err)
	assert.False(t, ok, "second reservation of the same slot must fail")

	assert.True(t, mr.TTL("booked:1:2026-10-20") > 0)

	reserved, err := repo.IsReserved(ctx, "1", "2026-10-20", "10:00")
	require.NoError(t, err)
	assert.True(t, reserved)

	ok, err = repo.Release(ctx, "1", "2026-10-20", "10:00")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Release(ctx, "1", "2026-10-20", "10:00")
	require.NoError(t, err)
	assert.False(t, ok)

	has, err := repo.HasReservations(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestReservedSlotsAndClear(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	expire := time.Now().Add(time.Hour)

	for _, s := range []struct{ space, date, start string }{
		{"1", "2026-10-20", "10:00"},
		{"1", "2026-10-21", "18:00"},
		{"2", "2026-10-20", "09:00"},
	} {
		_, err := repo.Reserve(ctx, s.space, s.date, s.start, expire)
		require.NoError(t, err)
	}

	slots, err := repo.ReservedSlots(ctx, "1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1-2026-10-20-10:00", "1-2026-10-21-18:00"}, slots)

	starts, err := repo.ReservedOn(ctx, "2", "2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, starts)

	require.NoError(t, repo.Clear(ctx))

	has, err := repo.HasReservations(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestWalletState(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	state, err := repo.WalletState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.WalletState{}, state)

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	want := models.WalletState{IsConnected: true, WalletName: "Firefly", WalletAddress: "iota1qabc", ConnectedAt: &now}
	require.NoError(t, repo.SaveWalletState(ctx, 7, want))

	state, err = repo.WalletState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, want.WalletAddress, state.WalletAddress)
	assert.True(t, state.ConnectedAt.Equal(now))

	require.NoError(t, repo.DeleteWalletState(ctx, 7))
	state, err = repo.WalletState(ctx, 7)
	require.NoError(t, err)
	assert.False(t, state.IsConnected)
}

func TestIntents(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	_, err := repo.Intent(ctx, "pi_missing")
	assert.ErrorIs(t, err, storage.ErrPaymentIntentNotFound)

	intent := models.PaymentIntent{ID: "pi_demo_1", Amount: 9000, Currency: "myr", Status: "requires_confirmation"}
	require.NoError(t, repo.SaveIntent(ctx, intent, time.Hour))

	_, err = repo.SwapIntentStatus(ctx, "pi_missing", "requires_confirmation", "succeeded")
	assert.ErrorIs(t, err, storage.ErrPaymentIntentNotFound)

	updated, err := repo.SwapIntentStatus(ctx, "pi_demo_1", "requires_confirmation", "succeeded")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", updated.Status)
	assert.True(t, mr.TTL("payment_intent:pi_demo_1") > 0, "status update must keep the ttl")

	_, err = repo.SwapIntentStatus(ctx, "pi_demo_1", "requires_confirmation", "succeeded")
	assert.ErrorIs(t, err, storage.ErrIntentStatusConflict)

	used, err := repo.SwapIntentStatus(ctx, "pi_demo_1", "succeeded", "used")
	require.NoError(t, err)
	assert.Equal(t, "used", used.Status)

	_, err = repo.SwapIntentStatus(ctx, "pi_demo_1", "succeeded", "used")
	assert.ErrorIs(t, err, storage.ErrIntentStatusConflict, "an intent is consumed only once")

	got, err := repo.Intent(ctx, "pi_demo_1")
	require.NoError(t, err)
	assert.Equal(t, int64(9000), got.Amount)
	assert.Equal(t, "used", got.Status)
}
