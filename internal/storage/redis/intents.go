package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sharedspace/internal/models"
	"sharedspace/internal/storage"

	"github.com/redis/go-redis/v9"
)

func intentKey(id string) string {
	return "payment_intent:" + id
}

func (r *RedisRepo) SaveIntent(ctx context.Context, intent models.PaymentIntent, ttl time.Duration) error {
	const op = "storage.redis.SaveIntent"

	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, intentKey(intent.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Intent(ctx context.Context, id string) (models.PaymentIntent, error) {
	const op = "storage.redis.Intent"

	val, err := r.client.Get(ctx, intentKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return models.PaymentIntent{}, storage.ErrPaymentIntentNotFound
	}
	if err != nil {
		return models.PaymentIntent{}, fmt.Errorf("%s: %w", op, err)
	}

	var intent models.PaymentIntent
	if err := json.Unmarshal([]byte(val), &intent); err != nil {
		return models.PaymentIntent{}, fmt.Errorf("%s: %w", op, err)
	}

	return intent, nil
}

// SwapIntentStatus moves the intent from one status to another in a WATCH
// transaction, keeping the remaining TTL. A status other than from, or a
// concurrent write, yields storage.ErrIntentStatusConflict.
func (r *RedisRepo) SwapIntentStatus(ctx context.Context, id, from, to string) (models.PaymentIntent, error) {
	const op = "storage.redis.SwapIntentStatus"

	key := intentKey(id)

	var intent models.PaymentIntent
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return storage.ErrPaymentIntentNotFound
		}
		if err != nil {
			return err
		}

		if err := json.Unmarshal([]byte(val), &intent); err != nil {
			return err
		}
		if intent.Status != from {
			return storage.ErrIntentStatusConflict
		}
		intent.Status = to

		data, err := json.Marshal(intent)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return intent, nil
	case errors.Is(err, storage.ErrPaymentIntentNotFound), errors.Is(err, storage.ErrIntentStatusConflict):
		return models.PaymentIntent{}, err
	case errors.Is(err, redis.TxFailedErr):
		return models.PaymentIntent{}, storage.ErrIntentStatusConflict
	default:
		return models.PaymentIntent{}, fmt.Errorf("%s: %w", op, err)
	}
}
