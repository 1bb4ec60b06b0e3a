package availability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"sharedspace/internal/services/catalog"
	"sharedspace/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	booked  map[string]map[string]bool
	failOn  string
	expires map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{booked: map[string]map[string]bool{}, expires: map[string]time.Time{}}
}

func (m *memStore) key(spaceID, date string) string { return spaceID + "|" + date }

func (m *memStore) Reserve(_ context.Context, spaceID, date, start string, expireAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if start == m.failOn {
		return false, errors.New("store is down")
	}
	k := m.key(spaceID, date)
	if m.booked[k] == nil {
		m.booked[k] = map[string]bool{}
	}
	if m.booked[k][start] {
		return false, nil
	}
	m.booked[k][start] = true
	m.expires[k] = expireAt
	return true, nil
}

func (m *memStore) Release(_ context.Context, spaceID, date, start string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.key(spaceID, date)
	if !m.booked[k][start] {
		return false, nil
	}
	delete(m.booked[k], start)
	return true, nil
}

func (m *memStore) IsReserved(_ context.Context, spaceID, date, start string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.booked[m.key(spaceID, date)][start], nil
}

func (m *memStore) ReservedOn(_ context.Context, spaceID, date string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for start := range m.booked[m.key(spaceID, date)] {
		out = append(out, start)
	}
	return out, nil
}

func (m *memStore) ReservedSlots(_ context.Context, spaceID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for k, starts := range m.booked {
		space, date, _ := strings.Cut(k, "|")
		if space != spaceID {
			continue
		}
		for start := range starts {
			out = append(out, SlotKey(space, date, start))
		}
	}
	return out, nil
}

func (m *memStore) HasReservations(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, starts := range m.booked {
		if len(starts) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.booked = map[string]map[string]bool{}
	return nil
}

// 2026-10-19 07:30 local time: before opening, so every slot of today is still bookable.
var fixedNow = time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC)

func newService(store Store) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store, time.UTC).WithClock(func() time.Time { return fixedNow })
}

func TestBaseSlots(t *testing.T) {
	slots := BaseSlots([]string{"2026-10-19"}, 45)

	require.Len(t, slots, 14)
	assert.Equal(t, "08:00", slots[0].StartTime)
	assert.Equal(t, "09:00", slots[0].EndTime)
	assert.Equal(t, 45.0, slots[0].Price)
	assert.Equal(t, "17:00", slots[9].StartTime)
	assert.Equal(t, 45.0, slots[9].Price)
	assert.Equal(t, "18:00", slots[10].StartTime)
	assert.Equal(t, 55.0, slots[10].Price)
	assert.Equal(t, "22:00", slots[13].EndTime)
}

func TestDates(t *testing.T) {
	dates := newService(newMemStore()).Dates()

	require.Len(t, dates, Days)
	assert.Equal(t, "2026-10-19", dates[0])
	assert.Equal(t, "2026-10-25", dates[6])
}

func TestAvailabilityMarksBookedSlots(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())

	ok, err := svc.BookSlot(ctx, "1", "2026-10-20", "10:00")
	require.NoError(t, err)
	assert.True(t, ok)

	slots, err := svc.Availability(ctx, "1")
	require.NoError(t, err)
	require.Len(t, slots, Days*14)

	for _, s := range slots {
		booked := s.Date == "2026-10-20" && s.StartTime == "10:00"
		assert.Equal(t, !booked, s.IsAvailable, "%s %s", s.Date, s.StartTime)
	}

	day, err := svc.AvailabilityOn(ctx, "1", "2026-10-20")
	require.NoError(t, err)
	assert.Len(t, day, 14)

	unknown, err := svc.Availability(ctx, "sport-4")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestBookAndCancelSlot(t *testing.T) {
	ctx := context.Background()
	svc := newService(newMemStore())

	ok, err := svc.BookSlot(ctx, "2", "2026-10-19", "09:00")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.BookSlot(ctx, "2", "2026-10-19", "09:00")
	require.NoError(t, err)
	assert.False(t, ok)

	available, err := svc.IsSlotAvailable(ctx, "2", "2026-10-19", "09:00")
	require.NoError(t, err)
	assert.False(t, available)

	keys, err := svc.BookedSlots(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2-2026-10-19-09:00"}, keys)

	ok, err = svc.CancelSlot(ctx, "2", "2026-10-19", "09:00")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CancelSlot(ctx, "2", "2026-10-19", "09:00")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	seeded, err := svc.SeedDemo(ctx, "1")
	require.NoError(t, err)
	assert.True(t, seeded)

	keys, err := svc.BookedSlots(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1-2026-10-19-10:00",
		"1-2026-10-19-11:00",
		"1-2026-10-19-14:00",
		"1-2026-10-19-15:00",
	}, keys)

	seeded, err = svc.SeedDemo(ctx, "1")
	require.NoError(t, err)
	assert.False(t, seeded, "seeding must not run twice")

	require.NoError(t, svc.ClearAll(ctx))
	keys, err = svc.BookedSlots(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestQuote(t *testing.T) {
	svc := newService(newMemStore())

	q, err := svc.Quote("1", "2026-10-20", "17:00", "20:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"17:00", "18:00", "19:00"}, q.StartTimes())
	assert.Equal(t, 45.0+55+55, q.Total)

	tests := []struct {
		name        string
		space, date string
		start, end  string
		wantErr     error
	}{
		{"unknown space", "9", "2026-10-20", "10:00", "11:00", catalog.ErrSpaceNotFound},
		{"bad date", "1", "20-10-2026", "10:00", "11:00", ErrInvalidDate},
		{"past date", "1", "2026-10-18", "10:00", "11:00", storage.ErrPastDate},
		{"beyond window", "1", "2026-10-26", "10:00", "11:00", ErrDateOutOfRange},
		{"before opening", "1", "2026-10-20", "07:00", "09:00", ErrInvalidTimeRange},
		{"after closing", "1", "2026-10-20", "21:00", "23:00", ErrInvalidTimeRange},
		{"end before start", "1", "2026-10-20", "12:00", "11:00", ErrInvalidTimeRange},
		{"not on the hour", "1", "2026-10-20", "10:30", "11:30", ErrInvalidTimeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Quote(tt.space, tt.date, tt.start, tt.end)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestQuoteRejectsStartedSlotsToday(t *testing.T) {
	svc := newService(newMemStore()).WithClock(func() time.Time {
		return time.Date(2026, 10, 19, 12, 15, 0, 0, time.UTC)
	})

	_, err := svc.Quote("1", "2026-10-19", "12:00", "13:00")
	assert.ErrorIs(t, err, storage.ErrPastDate)

	_, err = svc.Quote("1", "2026-10-19", "13:00", "14:00")
	assert.NoError(t, err)
}

func TestReserveIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	_, err := svc.BookSlot(ctx, "3", "2026-10-21", "12:00")
	require.NoError(t, err)

	q, err := svc.Quote("3", "2026-10-21", "10:00", "13:00")
	require.NoError(t, err)

	err = svc.Reserve(ctx, q)
	assert.ErrorIs(t, err, storage.ErrSlotIsBooked)

	keys, err := svc.BookedSlots(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"3-2026-10-21-12:00"}, keys, "partial reservation must be rolled back")

	q, err = svc.Quote("3", "2026-10-21", "09:00", "12:00")
	require.NoError(t, err)
	require.NoError(t, svc.Reserve(ctx, q))

	keys, err = svc.BookedSlots(ctx, "3")
	require.NoError(t, err)
	assert.Len(t, keys, 4)

	require.NoError(t, svc.Release(ctx, "3", "2026-10-21", q.StartTimes()))
	keys, err = svc.BookedSlots(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"3-2026-10-21-12:00"}, keys)
}

func TestReserveWrapsStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.failOn = "11:00"
	svc := newService(store)

	q, err := svc.Quote("3", "2026-10-21", "10:00", "12:00")
	require.NoError(t, err)

	err = svc.Reserve(ctx, q)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrSlotIsBooked)

	booked, err := store.HasReservations(ctx)
	require.NoError(t, err)
	assert.False(t, booked)
}

func TestStartTimesBetween(t *testing.T) {
	starts, err := StartTimesBetween("20:00", "22:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"20:00", "21:00"}, starts)

	_, err = StartTimesBetween("20:00", "20:00")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}
