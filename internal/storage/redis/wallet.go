package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sharedspace/internal/models"

	"github.com/redis/go-redis/v9"
)

func walletKey(userID int64) string {
	return fmt.Sprintf("wallet:%d", userID)
}

// WalletState returns the stored wallet session, or the zero state when none was saved.
func (r *RedisRepo) WalletState(ctx context.Context, userID int64) (models.WalletState, error) {
	const op = "storage.redis.WalletState"

	val, err := r.client.Get(ctx, walletKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.WalletState{}, nil
	}
	if err != nil {
		return models.WalletState{}, fmt.Errorf("%s: %w", op, err)
	}

	var state models.WalletState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return models.WalletState{}, fmt.Errorf("%s: %w", op, err)
	}

	return state, nil
}

func (r *RedisRepo) SaveWalletState(ctx context.Context, userID int64, state models.WalletState) error {
	const op = "storage.redis.SaveWalletState"

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, walletKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) DeleteWalletState(ctx context.Context, userID int64) error {
	const op = "storage.redis.DeleteWalletState"

	if err := r.client.Del(ctx, walletKey(userID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
