package admin

import (
	"context"
	"log/slog"
	"net/http"

	resp "sharedspace/internal/lib/api/response"
	"sharedspace/internal/lib/jwt"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/services/catalog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
)

type RoleChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

type Slots interface {
	CancelSlot(ctx context.Context, spaceID, date, startTime string) (bool, error)
	BookedSlots(ctx context.Context, spaceID string) ([]string, error)
	ClearAll(ctx context.Context) error
}

type ReleaseRequest struct {
	SpaceID   string `json:"spaceId" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
}

type ReleaseResponse struct {
	resp.Response
	Released bool `json:"released"`
}

type BookedResponse struct {
	resp.Response
	SpaceID string   `json:"spaceId"`
	Slots   []string `json:"slots"`
}

// RequireAdmin lets the request through only for users the SSO service reports as admins.
func RequireAdmin(log *slog.Logger, roles RoleChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "handlers.admin.RequireAdmin"

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

			isAdmin, err := roles.IsAdmin(r.Context(), userID)
			if err != nil {
				log.Error("failed to check user role", sl.Err(err))

				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, resp.Error("Failed to check user role"))

				return
			}

			if !isAdmin {
				log.Warn("customer attempted an admin action", slog.Int64("userID", userID))

				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("permission denied"))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClearSlots frees every booked slot of every space.
func ClearSlots(log *slog.Logger, slots Slots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.ClearSlots"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if err := slots.ClearAll(r.Context()); err != nil {
			log.Error("failed to clear slots", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Failed to clear slots"))

			return
		}

		log.Info("all booked slots cleared")

		render.JSON(w, r, resp.OK())
	}
}

func ReleaseSlot(log *slog.Logger, slots Slots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.ReleaseSlot"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ReleaseRequest
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

		released, err := slots.CancelSlot(r.Context(), req.SpaceID, req.Date, req.StartTime)
		if err != nil {
			log.Error("failed to release slot", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Failed to release slot"))

			return
		}

		log.Info("slot release requested", slog.Any("request", req), slog.Bool("released", released))

		render.JSON(w, r, ReleaseResponse{Response: resp.OK(), Released: released})
	}
}

func Booked(log *slog.Logger, slots Slots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.Booked"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if _, err := catalog.Find(id); err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Space not found"))

			return
		}

		keys, err := slots.BookedSlots(r.Context(), id)
		if err != nil {
			log.Error("failed to get booked slots", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Failed to get booked slots"))

			return
		}
		if keys == nil {
			keys = []string{}
		}

		render.JSON(w, r, BookedResponse{Response: resp.OK(), SpaceID: id, Slots: keys})
	}
}
