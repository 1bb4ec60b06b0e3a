package loyalty

import (
	"context"
	"log/slog"
	"net/http"

	resp "sharedspace/internal/lib/api/response"
	"sharedspace/internal/lib/jwt"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	loyaltysrv "sharedspace/internal/services/loyalty"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type HistoryProvider interface {
	BookingHistory(ctx context.Context, userID int64) ([]models.BookingHistory, error)
}

type ProgressResponse struct {
	resp.Response
	Progress         models.LoyaltyProgress `json:"progress"`
	NextTierProgress *models.TierProgress   `json:"nextTierProgress,omitempty"`
	Benefits         models.TierBenefits    `json:"benefits"`
	CanRedeemTokens  bool                   `json:"canRedeemTokens"`
	AvailableTokens  string                 `json:"availableTokens"`
}

type TiersResponse struct {
	resp.Response
	Tiers []models.LoyaltyTier `json:"tiers"`
}

// Progress reports the user's tier computed from their booking history.
func Progress(log *slog.Logger, history HistoryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.loyalty.Progress"

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

		h, err := history.BookingHistory(r.Context(), userID)
		if err != nil {
			log.Error("failed to get booking history", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Failed to get loyalty progress"))

			return
		}

		p := loyaltysrv.CalculateProgress(h)

		render.JSON(w, r, ProgressResponse{
			Response:         resp.OK(),
			Progress:         p,
			NextTierProgress: loyaltysrv.NextTierProgress(p),
			Benefits:         loyaltysrv.TierBenefits(p.CurrentTier.ID),
			CanRedeemTokens:  loyaltysrv.CanRedeemTokens(p),
			AvailableTokens:  loyaltysrv.FormatTokens(p.AvailableRewardTokens),
		})
	}
}

func Tiers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, TiersResponse{Response: resp.OK(), Tiers: loyaltysrv.Tiers()})
	}
}
