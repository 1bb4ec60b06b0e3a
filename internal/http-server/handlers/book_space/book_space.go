package bookspace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	resp "sharedspace/internal/lib/api/response"
	"sharedspace/internal/lib/jwt"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	"sharedspace/internal/services/availability"
	bookingsrv "sharedspace/internal/services/booking"
	"sharedspace/internal/services/catalog"
	"sharedspace/internal/services/payment"
	"sharedspace/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
)

type Request struct {
	SpaceID         string  `json:"spaceId" validate:"required"`
	Date            string  `json:"date" validate:"required"`
	StartTime       string  `json:"startTime" validate:"required"`
	EndTime         string  `json:"endTime" validate:"required"`
	Duration        int     `json:"duration" validate:"gte=0"`
	TotalPrice      float64 `json:"totalPrice" validate:"gte=0"`
	UserWallet      string  `json:"userWallet"`
	PaymentMethod   string  `json:"paymentMethod" validate:"required,oneof=iota_wallet stripe"`
	PaymentIntentID string  `json:"paymentIntentId"`
}

type Response struct {
	resp.Response
	Transaction models.Transaction `json:"transaction"`
}

type Booker interface {
	Book(
		ctx context.Context,
		userID int64,
		req models.BookingRequest,
		method models.PaymentMethod,
		paymentIntentID string,
	) (models.Transaction, error)
}

func New(log *slog.Logger, booker Booker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.book-space.New"

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

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		t, err := booker.Book(r.Context(), userID, models.BookingRequest{
			SpaceID:    req.SpaceID,
			Date:       req.Date,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			Duration:   req.Duration,
			TotalPrice: req.TotalPrice,
			UserWallet: req.UserWallet,
		}, models.PaymentMethod(req.PaymentMethod), req.PaymentIntentID)
		if err != nil {
			status, msg := mapError(err)
			if status == http.StatusInternalServerError {
				log.Error("failed to book space", sl.Err(err))
			} else {
				log.Warn("booking rejected", sl.Err(err))
			}

			render.Status(r, status)
			render.JSON(w, r, resp.Error(msg))

			return
		}

		log.Info("space booked successfully", slog.String("transaction_id", t.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response:    resp.OK(),
			Transaction: t,
		})
	}
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrSlotIsBooked):
		return http.StatusConflict, "Selected time slot is not available"
	case errors.Is(err, catalog.ErrSpaceNotFound):
		return http.StatusNotFound, "Space not found"
	case errors.Is(err, storage.ErrPaymentIntentNotFound):
		return http.StatusNotFound, "Payment intent not found"
	case errors.Is(err, payment.ErrIntentNotOwned):
		return http.StatusForbidden, "Payment intent belongs to another user"
	case errors.Is(err, payment.ErrIntentUsed):
		return http.StatusConflict, "Payment intent has already been used"
	case errors.Is(err, bookingsrv.ErrPaymentNotCompleted),
		errors.Is(err, bookingsrv.ErrPaymentIntentMismatch):
		return http.StatusPaymentRequired, err.Error()
	case errors.Is(err, storage.ErrPastDate),
		errors.Is(err, availability.ErrInvalidDate),
		errors.Is(err, availability.ErrDateOutOfRange),
		errors.Is(err, availability.ErrInvalidTimeRange),
		errors.Is(err, bookingsrv.ErrInvalidDuration),
		errors.Is(err, bookingsrv.ErrPriceMismatch),
		errors.Is(err, bookingsrv.ErrWalletRequired),
		errors.Is(err, bookingsrv.ErrUnsupportedMethod):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Failed to book space"
	}
}
