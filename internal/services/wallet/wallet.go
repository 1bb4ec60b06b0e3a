package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sharedspace/internal/models"
)

var ErrInvalidWallet = errors.New("wallet name and address are required")

type Store interface {
	WalletState(ctx context.Context, userID int64) (models.WalletState, error)
	SaveWalletState(ctx context.Context, userID int64, state models.WalletState) error
	DeleteWalletState(ctx context.Context, userID int64) error
}

// Service keeps the wallet connection of each user.
type Service struct {
	log   *slog.Logger
	store Store
	now   func() time.Time
}

func New(log *slog.Logger, store Store) *Service {
	return &Service{log: log, store: store, now: time.Now}
}

func (s *Service) State(ctx context.Context, userID int64) (models.WalletState, error) {
	const op = "services.wallet.State"

	state, err := s.store.WalletState(ctx, userID)
	if err != nil {
		return models.WalletState{}, fmt.Errorf("%s: %w", op, err)
	}
	return state, nil
}

func (s *Service) Connect(ctx context.Context, userID int64, name, address string) (models.WalletState, error) {
	name, address = strings.TrimSpace(name), strings.TrimSpace(address)
	if name == "" || address == "" {
		return models.WalletState{}, ErrInvalidWallet
	}

	now := s.now().UTC()
	state := models.WalletState{
		IsConnected:   true,
		WalletName:    name,
		WalletAddress: address,
		ConnectedAt:   &now,
	}

	if err := s.save(ctx, userID, state); err != nil {
		return models.WalletState{}, err
	}

	s.log.Info("wallet connected", slog.Int64("user_id", userID), slog.String("wallet", name))

	return state, nil
}

// Disconnect drops the connection and remembers that the user chose to, so the
// client does not reconnect on its own.
func (s *Service) Disconnect(ctx context.Context, userID int64) (models.WalletState, error) {
	state := models.WalletState{ManuallyDisconnected: true}

	if err := s.save(ctx, userID, state); err != nil {
		return models.WalletState{}, err
	}

	s.log.Info("wallet disconnected", slog.Int64("user_id", userID))

	return state, nil
}

func (s *Service) SetAutoConnecting(ctx context.Context, userID int64, connecting bool) (models.WalletState, error) {
	return s.update(ctx, userID, func(st *models.WalletState) {
		st.IsAutoConnecting = connecting
	})
}

func (s *Service) SetManuallyDisconnected(ctx context.Context, userID int64, disconnected bool) (models.WalletState, error) {
	return s.update(ctx, userID, func(st *models.WalletState) {
		st.ManuallyDisconnected = disconnected
	})
}

// Clear forgets everything about the user's wallet.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	const op = "services.wallet.Clear"

	if err := s.store.DeleteWalletState(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConnectedAddress returns the address of the connected wallet, or "".
func (s *Service) ConnectedAddress(ctx context.Context, userID int64) (string, error) {
	state, err := s.State(ctx, userID)
	if err != nil {
		return "", err
	}
	if !state.IsConnected {
		return "", nil
	}
	return state.WalletAddress, nil
}

func (s *Service) update(ctx context.Context, userID int64, fn func(st *models.WalletState)) (models.WalletState, error) {
	state, err := s.State(ctx, userID)
	if err != nil {
		return models.WalletState{}, err
	}

	fn(&state)

	if err := s.save(ctx, userID, state); err != nil {
		return models.WalletState{}, err
	}
	return state, nil
}

func (s *Service) save(ctx context.Context, userID int64, state models.WalletState) error {
	const op = "services.wallet.save"

	if err := s.store.SaveWalletState(ctx, userID, state); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
