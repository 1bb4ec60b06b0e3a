package wallet

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	resp "sharedspace/internal/lib/api/response"
	"sharedspace/internal/lib/jwt"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	walletsrv "sharedspace/internal/services/wallet"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
)

type Sessions interface {
	State(ctx context.Context, userID int64) (models.WalletState, error)
	Connect(ctx context.Context, userID int64, name, address string) (models.WalletState, error)
	Disconnect(ctx context.Context, userID int64) (models.WalletState, error)
	SetAutoConnecting(ctx context.Context, userID int64, connecting bool) (models.WalletState, error)
	Clear(ctx context.Context, userID int64) error
}

type ConnectRequest struct {
	WalletName    string `json:"walletName" validate:"required"`
	WalletAddress string `json:"walletAddress" validate:"required"`
}

type AutoConnectRequest struct {
	IsAutoConnecting bool `json:"isAutoConnecting"`
}

type Response struct {
	resp.Response
	Wallet models.WalletState `json:"wallet"`
}

func Get(log *slog.Logger, sessions Sessions) http.HandlerFunc {
	return handle(log, "handlers.wallet.Get", func(r *http.Request, userID int64) (models.WalletState, error) {
		return sessions.State(r.Context(), userID)
	})
}

func Connect(log *slog.Logger, sessions Sessions) http.HandlerFunc {
	return handle(log, "handlers.wallet.Connect", func(r *http.Request, userID int64) (models.WalletState, error) {
		var req ConnectRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return models.WalletState{}, errBadRequest
		}
		if err := validator.New().Struct(req); err != nil {
			return models.WalletState{}, walletsrv.ErrInvalidWallet
		}
		return sessions.Connect(r.Context(), userID, req.WalletName, req.WalletAddress)
	})
}

func Disconnect(log *slog.Logger, sessions Sessions) http.HandlerFunc {
	return handle(log, "handlers.wallet.Disconnect", func(r *http.Request, userID int64) (models.WalletState, error) {
		return sessions.Disconnect(r.Context(), userID)
	})
}

func AutoConnect(log *slog.Logger, sessions Sessions) http.HandlerFunc {
	return handle(log, "handlers.wallet.AutoConnect", func(r *http.Request, userID int64) (models.WalletState, error) {
		var req AutoConnectRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return models.WalletState{}, errBadRequest
		}
		return sessions.SetAutoConnecting(r.Context(), userID, req.IsAutoConnecting)
	})
}

func Clear(log *slog.Logger, sessions Sessions) http.HandlerFunc {
	return handle(log, "handlers.wallet.Clear", func(r *http.Request, userID int64) (models.WalletState, error) {
		return models.WalletState{}, sessions.Clear(r.Context(), userID)
	})
}

var errBadRequest = errors.New("failed to decode request")

func handle(log *slog.Logger, op string, fn func(r *http.Request, userID int64) (models.WalletState, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := jwt.UserID(r.Context())
		if !ok {
			log.Error("unauthorized: no userID in context")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthorized"))

			return
		}

		state, err := fn(r, userID)
		if err != nil {
			if errors.Is(err, errBadRequest) || errors.Is(err, walletsrv.ErrInvalidWallet) {
				log.Warn("invalid wallet request", sl.Err(err))

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(err.Error()))

				return
			}

			log.Error("wallet request failed", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Wallet request failed"))

			return
		}

		render.JSON(w, r, Response{Response: resp.OK(), Wallet: state})
	}
}
