package cancelbooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	resp "sharedspace/internal/lib/api/response"
	"sharedspace/internal/lib/jwt"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	"sharedspace/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Transaction models.Transaction `json:"transaction"`
}

type Canceller interface {
	Cancel(ctx context.Context, userID int64, transactionID string) (models.Transaction, error)
}

func New(log *slog.Logger, canceller Canceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.cancel-booking.New"

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

		id := chi.URLParam(r, "id")

		t, err := canceller.Cancel(r.Context(), userID, id)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrTransactionNotFound):
				log.Warn("booking not found", slog.String("transaction_id", id))

				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Booking not found"))
			case errors.Is(err, storage.ErrTransactionNotActive):
				log.Warn("booking is not active", slog.String("transaction_id", id))

				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("Booking is already cancelled"))
			default:
				log.Error("failed to cancel booking", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Failed to cancel booking"))
			}

			return
		}

		log.Info("booking cancelled successfully", slog.String("transaction_id", t.ID))

		render.JSON(w, r, Response{
			Response:    resp.OK(),
			Transaction: t,
		})
	}
}
