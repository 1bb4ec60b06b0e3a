package paymentintent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	resp "sharedspace/internal/lib/api/response"
	"sharedspace/internal/lib/jwt"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	"sharedspace/internal/services/payment"
	"sharedspace/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
)

type Request struct {
	SpaceID    string  `json:"spaceId" validate:"required"`
	Date       string  `json:"date"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	TotalPrice float64 `json:"totalPrice" validate:"required,gt=0"`
}

type Response struct {
	resp.Response
	Intent          models.PaymentIntent `json:"intent"`
	Mode            string               `json:"mode"`
	FormattedAmount string               `json:"formattedAmount"`
	Succeeded       bool                 `json:"succeeded"`
}

type Payments interface {
	CreateIntent(ctx context.Context, userID int64, req models.BookingRequest) (models.PaymentIntent, error)
	RetrieveIntent(ctx context.Context, userID int64, id string) (models.PaymentIntent, error)
	ConfirmIntent(ctx context.Context, userID int64, id string) (models.PaymentIntent, error)
	Mode() string
}

func Create(log *slog.Logger, payments Payments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payment-intent.Create"

		log, userID, ok := begin(w, r, log, op)
		if !ok {
			return
		}

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		intent, err := payments.CreateIntent(r.Context(), userID, models.BookingRequest{
			SpaceID:    req.SpaceID,
			Date:       req.Date,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			TotalPrice: req.TotalPrice,
		})
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		render.Status(r, http.StatusCreated)
		respond(w, r, payments, intent)
	}
}

func Get(log *slog.Logger, payments Payments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payment-intent.Get"

		log, userID, ok := begin(w, r, log, op)
		if !ok {
			return
		}

		intent, err := payments.RetrieveIntent(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		respond(w, r, payments, intent)
	}
}

func Confirm(log *slog.Logger, payments Payments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payment-intent.Confirm"

		log, userID, ok := begin(w, r, log, op)
		if !ok {
			return
		}

		intent, err := payments.ConfirmIntent(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		log.Info("payment intent confirmed", slog.String("intent_id", intent.ID))

		respond(w, r, payments, intent)
	}
}

func respond(w http.ResponseWriter, r *http.Request, payments Payments, intent models.PaymentIntent) {
	render.JSON(w, r, Response{
		Response:        resp.OK(),
		Intent:          intent,
		Mode:            payments.Mode(),
		FormattedAmount: payment.FormatAmount(float64(intent.Amount) / 100),
		Succeeded:       payment.IsPaymentSuccessful(intent),
	})
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

	return log, userID, true
}

func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrPaymentIntentNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, resp.Error("Payment intent not found"))
	case errors.Is(err, payment.ErrIntentNotOwned):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, resp.Error("Payment intent belongs to another user"))
	case errors.Is(err, payment.ErrIntentUsed), errors.Is(err, storage.ErrIntentStatusConflict):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, resp.Error("Payment intent has already been used"))
	case errors.Is(err, payment.ErrInvalidAmount):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error(err.Error()))
	default:
		log.Error("payment intent request failed", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("Payment processing failed"))
	}
}
