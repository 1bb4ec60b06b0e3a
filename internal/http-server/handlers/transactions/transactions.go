package transactions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	resp "sharedspace/internal/lib/api/response"
	"sharedspace/internal/lib/jwt"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	"sharedspace/internal/services/transaction"
	"sharedspace/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Service interface {
	Transactions(ctx context.Context, userID int64, wallet string) ([]models.Transaction, error)
	TransactionByID(ctx context.Context, userID int64, id string) (models.Transaction, error)
	BookingHistory(ctx context.Context, userID int64) ([]models.BookingHistory, error)
	Stats(ctx context.Context, userID int64, wallet string) (models.TransactionStats, error)
	LoyaltyTokens(ctx context.Context, userID int64, wallet string) (transaction.TokenTotals, error)
	ClearAll(ctx context.Context, userID int64) error
}

type ListResponse struct {
	resp.Response
	Transactions []models.Transaction `json:"transactions"`
}

type HistoryResponse struct {
	resp.Response
	History []models.BookingHistory `json:"history"`
}

type StatsResponse struct {
	resp.Response
	Stats         models.TransactionStats `json:"stats"`
	LoyaltyTokens transaction.TokenTotals `json:"loyaltyTokens"`
}

func List(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, userID, ok := begin(w, r, log, "handlers.transactions.List")
		if !ok {
			return
		}

		txs, err := svc.Transactions(r.Context(), userID, r.URL.Query().Get("wallet"))
		if err != nil {
			internalError(w, r, log, err, "Failed to get transactions")
			return
		}

		render.JSON(w, r, ListResponse{Response: resp.OK(), Transactions: txs})
	}
}

func Get(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, userID, ok := begin(w, r, log, "handlers.transactions.Get")
		if !ok {
			return
		}

		t, err := svc.TransactionByID(r.Context(), userID, chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrTransactionNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Transaction not found"))

			return
		}
		if err != nil {
			internalError(w, r, log, err, "Failed to get transaction")
			return
		}

		render.JSON(w, r, resp.OKWithData(t))
	}
}

func History(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, userID, ok := begin(w, r, log, "handlers.transactions.History")
		if !ok {
			return
		}

		history, err := svc.BookingHistory(r.Context(), userID)
		if err != nil {
			internalError(w, r, log, err, "Failed to get booking history")
			return
		}

		render.JSON(w, r, HistoryResponse{Response: resp.OK(), History: history})
	}
}

func Stats(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, userID, ok := begin(w, r, log, "handlers.transactions.Stats")
		if !ok {
			return
		}

		wallet := r.URL.Query().Get("wallet")

		stats, err := svc.Stats(r.Context(), userID, wallet)
		if err != nil {
			internalError(w, r, log, err, "Failed to get transaction stats")
			return
		}

		tokens, err := svc.LoyaltyTokens(r.Context(), userID, wallet)
		if err != nil {
			internalError(w, r, log, err, "Failed to get transaction stats")
			return
		}

		render.JSON(w, r, StatsResponse{
			Response:      resp.OK(),
			Stats:         stats,
			LoyaltyTokens: tokens,
		})
	}
}

// Clear deletes every transaction and history entry of the user.
func Clear(log *slog.Logger, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, userID, ok := begin(w, r, log, "handlers.transactions.Clear")
		if !ok {
			return
		}

		if err := svc.ClearAll(r.Context(), userID); err != nil {
			internalError(w, r, log, err, "Failed to clear transactions")
			return
		}

		log.Info("transactions cleared")

		render.JSON(w, r, resp.OK())
	}
}

func begin(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string) (*slog.Logger, int64, bool) {
	log = log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := jwt.UserID(r.Context())
	if !ok {
		log.Error("unauthorized: no userID in context")

		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, resp.Error("Unauthorized"))

		return log, 0, false
	}

	return log.With(slog.Int64("user_id", userID)), userID, true
}

func internalError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	log.Error(msg, sl.Err(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, resp.Error(msg))
}
