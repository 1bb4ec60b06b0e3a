// Package availability keeps the hourly slot grid of every space and the set of
// slots already taken.
//
// Each space opens a rolling window of Days days starting today, one slot per hour
// between OpeningHour and ClosingHour. Evening slots carry a surcharge.
package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	"sharedspace/internal/services/catalog"
	"sharedspace/internal/storage"
)

const (
	Days             = 7
	OpeningHour      = 8
	ClosingHour      = 22
	EveningHour      = 18
	EveningSurcharge = 10

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrDateOutOfRange   = errors.New("date is outside of the booking window")
	ErrInvalidTimeRange = errors.New("time range must cover whole hours within opening hours")
)

var demoStartTimes = []string{"10:00", "11:00", "14:00", "15:00"}

type Store interface {
	Reserve(ctx context.Context, spaceID, date, startTime string, expireAt time.Time) (bool, error)
	Release(ctx context.Context, spaceID, date, startTime string) (bool, error)
	IsReserved(ctx context.Context, spaceID, date, startTime string) (bool, error)
	ReservedOn(ctx context.Context, spaceID, date string) ([]string, error)
	ReservedSlots(ctx context.Context, spaceID string) ([]string, error)
	HasReservations(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

type Service struct {
	log   *slog.Logger
	store Store
	loc   *time.Location
	now   func() time.Time
}

// Quote is the priced, validated set of slots covered by a booking request.
type Quote struct {
	SpaceID string
	Date    string
	Slots   []models.TimeSlot
	Total   float64
}

// StartTimes lists the start time of every quoted slot.
func (q Quote) StartTimes() []string {
	out := make([]string, 0, len(q.Slots))
	for _, s := range q.Slots {
		out = append(out, s.StartTime)
	}
	return out
}

func New(log *slog.Logger, store Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		log:   log,
		store: store,
		loc:   loc,
		now:   time.Now,
	}
}

// WithClock replaces the wall clock, used to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SlotKey identifies one slot of one space.
func SlotKey(spaceID, date, startTime string) string {
	return fmt.Sprintf("%s-%s-%s", spaceID, date, startTime)
}

func (s *Service) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

// Dates returns the bookable dates, today first.
func (s *Service) Dates() []string {
	today := s.today()
	out := make([]string, 0, Days)
	for day := 0; day < Days; day++ {
		out = append(out, today.AddDate(0, 0, day).Format(DateLayout))
	}
	return out
}

func hourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

func slotPrice(basePrice float64, hour int) float64 {
	if hour >= EveningHour {
		return basePrice + EveningSurcharge
	}
	return basePrice
}

// BaseSlots builds the full grid for the given dates with every slot available.
func BaseSlots(dates []string, basePrice float64) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, len(dates)*(ClosingHour-OpeningHour))
	for _, date := range dates {
		for hour := OpeningHour; hour < ClosingHour; hour++ {
			slots = append(slots, models.TimeSlot{
				Date:        date,
				StartTime:   hourLabel(hour),
				EndTime:     hourLabel(hour + 1),
				IsAvailable: true,
				Price:       slotPrice(basePrice, hour),
			})
		}
	}
	return slots
}

// Availability returns the whole window for a space with booked slots marked
// unavailable. Unknown spaces have no slots.
func (s *Service) Availability(ctx context.Context, spaceID string) ([]models.TimeSlot, error) {
	return s.availability(ctx, spaceID, s.Dates())
}

// AvailabilityOn returns the slots of a single date within the window.
func (s *Service) AvailabilityOn(ctx context.Context, spaceID, date string) ([]models.TimeSlot, error) {
	if _, err := s.parseDate(date); err != nil {
		return nil, err
	}
	return s.availability(ctx, spaceID, []string{date})
}

func (s *Service) availability(ctx context.Context, spaceID string, dates []string) ([]models.TimeSlot, error) {
	const op = "services.availability.Availability"

	space, err := catalog.Find(spaceID)
	if err != nil {
		return []models.TimeSlot{}, nil
	}

	slots := BaseSlots(dates, space.PricePerHour)

	booked := make(map[string]struct{})
	for _, date := range dates {
		starts, err := s.store.ReservedOn(ctx, spaceID, date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, start := range starts {
			booked[SlotKey(spaceID, date, start)] = struct{}{}
		}
	}

	for i := range slots {
		_, taken := booked[SlotKey(spaceID, slots[i].Date, slots[i].StartTime)]
		slots[i].IsAvailable = !taken
	}

	return slots, nil
}

func (s *Service) expireAt(date string) time.Time {
	d, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return s.today().AddDate(0, 0, Days)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, s.loc)
}

// BookSlot marks a single slot as taken. It reports false when the slot was already booked.
func (s *Service) BookSlot(ctx context.Context, spaceID, date, startTime string) (bool, error) {
	const op = "services.availability.BookSlot"

	ok, err := s.store.Reserve(ctx, spaceID, date, startTime, s.expireAt(date))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// CancelSlot frees a single slot. It reports false when the slot was not booked.
func (s *Service) CancelSlot(ctx context.Context, spaceID, date, startTime string) (bool, error) {
	const op = "services.availability.CancelSlot"

	ok, err := s.store.Release(ctx, spaceID, date, startTime)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

func (s *Service) IsSlotAvailable(ctx context.Context, spaceID, date, startTime string) (bool, error) {
	const op = "services.availability.IsSlotAvailable"

	reserved, err := s.store.IsReserved(ctx, spaceID, date, startTime)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return !reserved, nil
}

// BookedSlots returns the keys of every booked slot of a space, sorted.
func (s *Service) BookedSlots(ctx context.Context, spaceID string) ([]string, error) {
	const op = "services.availability.BookedSlots"

	keys, err := s.store.ReservedSlots(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Service) ClearAll(ctx context.Context) error {
	const op = "services.availability.ClearAll"

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SeedDemo books a handful of today's slots for spaceID, but only while nothing
// is booked anywhere. It reports whether it seeded.
func (s *Service) SeedDemo(ctx context.Context, spaceID string) (bool, error) {
	const op = "services.availability.SeedDemo"

	booked, err := s.store.HasReservations(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if booked {
		return false, nil
	}

	today := s.today().Format(DateLayout)
	for _, start := range demoStartTimes {
		if _, err := s.BookSlot(ctx, spaceID, today, start); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.log.Info("demo slots seeded", slog.String("space_id", spaceID), slog.String("date", today))

	return true, nil
}

func (s *Service) parseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	today := s.today()
	if d.Before(today) {
		return time.Time{}, storage.ErrPastDate
	}
	if !d.Before(today.AddDate(0, 0, Days)) {
		return time.Time{}, ErrDateOutOfRange
	}

	return d, nil
}

func parseHour(v string) (int, bool) {
	t, err := time.Parse(TimeLayout, v)
	if err != nil || t.Minute() != 0 {
		return 0, false
	}
	return t.Hour(), true
}

// Quote validates a booking window and prices every hour it covers.
// The end time "22:00" is parsed as hour 22.
func (s *Service) Quote(spaceID, date, startTime, endTime string) (Quote, error) {
	space, err := catalog.Find(spaceID)
	if err != nil {
		return Quote{}, err
	}

	d, err := s.parseDate(date)
	if err != nil {
		return Quote{}, err
	}

	start, ok := parseHour(startTime)
	if !ok {
		return Quote{}, ErrInvalidTimeRange
	}
	end, ok := parseHour(endTime)
	if !ok {
		return Quote{}, ErrInvalidTimeRange
	}
	if start < OpeningHour || end > ClosingHour || end <= start {
		return Quote{}, ErrInvalidTimeRange
	}

	now := s.now().In(s.loc)
	if d.Equal(s.today()) && start <= now.Hour() {
		return Quote{}, storage.ErrPastDate
	}

	q := Quote{SpaceID: spaceID, Date: date}
	for hour := start; hour < end; hour++ {
		slot := models.TimeSlot{
			Date:        date,
			StartTime:   hourLabel(hour),
			EndTime:     hourLabel(hour + 1),
			IsAvailable: true,
			Price:       slotPrice(space.PricePerHour, hour),
		}
		q.Slots = append(q.Slots, slot)
		q.Total += slot.Price
	}

	return q, nil
}

// StartTimesBetween lists the hourly start times in [startTime, endTime).
func StartTimesBetween(startTime, endTime string) ([]string, error) {
	start, ok := parseHour(startTime)
	if !ok {
		return nil, ErrInvalidTimeRange
	}
	end, ok := parseHour(endTime)
	if !ok || end <= start {
		return nil, ErrInvalidTimeRange
	}

	out := make([]string, 0, end-start)
	for hour := start; hour < end; hour++ {
		out = append(out, hourLabel(hour))
	}
	return out, nil
}

// Reserve takes every slot of the quote or none of them.
func (s *Service) Reserve(ctx context.Context, q Quote) error {
	const op = "services.availability.Reserve"

	taken := make([]string, 0, len(q.Slots))
	for _, start := range q.StartTimes() {
		ok, err := s.BookSlot(ctx, q.SpaceID, q.Date, start)
		if err == nil && !ok {
			err = storage.ErrSlotIsBooked
		}
		if err != nil {
			s.rollback(ctx, q.SpaceID, q.Date, taken)
			if errors.Is(err, storage.ErrSlotIsBooked) {
				return err
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		taken = append(taken, start)
	}

	return nil
}

// Release frees the given slots of a space that are still booked.
func (s *Service) Release(ctx context.Context, spaceID, date string, startTimes []string) error {
	const op = "services.availability.Release"

	for _, start := range startTimes {
		if _, err := s.CancelSlot(ctx, spaceID, date, start); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, spaceID, date string, starts []string) {
	for _, start := range starts {
		if _, err := s.CancelSlot(ctx, spaceID, date, start); err != nil {
			s.log.Error("failed to roll back slot",
				slog.String("slot", SlotKey(spaceID, date, start)),
				sl.Err(err),
			)
		}
	}
}
