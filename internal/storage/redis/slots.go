package redis

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const slotKeyPrefix = "booked:"

// slotsKey holds the booked start times of one space on one date.
func slotsKey(spaceID, date string) string {
	return fmt.Sprintf("%s%s:%s", slotKeyPrefix, spaceID, date)
}

// Reserve adds the start time to the day's set. SADD reports whether the member
// was new, which makes the check and the write a single step.
func (r *RedisRepo) Reserve(ctx context.Context, spaceID, date, startTime string, expireAt time.Time) (bool, error) {
	const op = "storage.redis.Reserve"

	key := slotsKey(spaceID, date)

	added, err := r.client.SAdd(ctx, key, startTime).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if added == 0 {
		return false, nil
	}

	if err := r.client.ExpireAt(ctx, key, expireAt).Err(); err != nil {
		return true, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (r *RedisRepo) Release(ctx context.Context, spaceID, date, startTime string) (bool, error) {
	const op = "storage.redis.Release"

	removed, err := r.client.SRem(ctx, slotsKey(spaceID, date), startTime).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return removed > 0, nil
}

func (r *RedisRepo) IsReserved(ctx context.Context, spaceID, date, startTime string) (bool, error) {
	const op = "storage.redis.IsReserved"

	ok, err := r.client.SIsMember(ctx, slotsKey(spaceID, date), startTime).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (r *RedisRepo) ReservedOn(ctx context.Context, spaceID, date string) ([]string, error) {
	const op = "storage.redis.ReservedOn"

	starts, err := r.client.SMembers(ctx, slotsKey(spaceID, date)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return starts, nil
}

// ReservedSlots returns "<spaceID>-<date>-<startTime>" for every booked slot of the space.
func (r *RedisRepo) ReservedSlots(ctx context.Context, spaceID string) ([]string, error) {
	const op = "storage.redis.ReservedSlots"

	keys, err := r.scan(ctx, slotKeyPrefix+spaceID+":*")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out []string
	for _, key := range keys {
		date := strings.TrimPrefix(key, slotKeyPrefix+spaceID+":")

		starts, err := r.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, start := range starts {
			out = append(out, fmt.Sprintf("%s-%s-%s", spaceID, date, start))
		}
	}

	return out, nil
}

func (r *RedisRepo) HasReservations(ctx context.Context) (bool, error) {
	const op = "storage.redis.HasReservations"

	keys, err := r.scan(ctx, slotKeyPrefix+"*")
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return len(keys) > 0, nil
}

// Clear drops every slot reservation.
func (r *RedisRepo) Clear(ctx context.Context) error {
	const op = "storage.redis.Clear"

	keys, err := r.scan(ctx, slotKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
