package spaces

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	resp "sharedspace/internal/lib/api/response"
	"sharedspace/internal/lib/logger/sl"
	"sharedspace/internal/models"
	"sharedspace/internal/services/availability"
	"sharedspace/internal/services/catalog"
	"sharedspace/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AvailabilityProvider interface {
	Availability(ctx context.Context, spaceID string) ([]models.TimeSlot, error)
	AvailabilityOn(ctx context.Context, spaceID, date string) ([]models.TimeSlot, error)
}

type ListResponse struct {
	resp.Response
	Label  string         `json:"label"`
	Count  int            `json:"count"`
	Spaces []models.Space `json:"spaces"`
}

type AvailabilityResponse struct {
	resp.Response
	SpaceID string            `json:"spaceId"`
	Slots   []models.TimeSlot `json:"slots"`
}

// List returns the catalog narrowed by the query filters. With a date the
// spaces carry that day's slots.
func List(log *slog.Logger, slots AvailabilityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.spaces.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filters, err := parseFilters(r)
		if err != nil {
			log.Warn("invalid filters", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		found := catalog.Filter(catalog.All(), filters)

		if filters.Date != "" {
			for i := range found {
				day, err := slots.AvailabilityOn(r.Context(), found[i].ID, filters.Date)
				if err != nil {
					writeAvailabilityError(w, r, log, err)
					return
				}
				found[i].Availability = day
			}
		}

		render.JSON(w, r, ListResponse{
			Response: resp.OK(),
			Label:    catalog.TypeLabel(filters.Types),
			Count:    len(found),
			Spaces:   found,
		})
	}
}

// Get returns one space with its availability for the whole booking window.
func Get(log *slog.Logger, slots AvailabilityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.spaces.Get"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		space, err := catalog.Find(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Space not found"))

			return
		}

		space.Availability, err = slots.Availability(r.Context(), space.ID)
		if err != nil {
			log.Error("failed to get availability", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Failed to get availability"))

			return
		}

		render.JSON(w, r, resp.OKWithData(space))
	}
}

func Availability(log *slog.Logger, slots AvailabilityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.spaces.Availability"

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

		var (
			day []models.TimeSlot
			err error
		)
		if date := r.URL.Query().Get("date"); date != "" {
			day, err = slots.AvailabilityOn(r.Context(), id, date)
		} else {
			day, err = slots.Availability(r.Context(), id)
		}
		if err != nil {
			writeAvailabilityError(w, r, log, err)
			return
		}

		render.JSON(w, r, AvailabilityResponse{
			Response: resp.OK(),
			SpaceID:  id,
			Slots:    day,
		})
	}
}

func writeAvailabilityError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidDate),
		errors.Is(err, availability.ErrDateOutOfRange),
		errors.Is(err, storage.ErrPastDate):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error(err.Error()))
	default:
		log.Error("failed to get availability", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("Failed to get availability"))
	}
}

var errInvalidNumber = errors.New("price and capacity filters must be numbers")

func parseFilters(r *http.Request) (models.BookingFilters, error) {
	q := r.URL.Query()

	f := models.BookingFilters{
		Types:     catalog.ParseTypes(q.Get("types")),
		Location:  q.Get("location"),
		Date:      q.Get("date"),
		Amenities: splitList(q.Get("amenities")),
	}

	minRaw, maxRaw := q.Get("minPrice"), q.Get("maxPrice")
	if minRaw != "" || maxRaw != "" {
		pr := models.PriceRange{Min: 0, Max: math.MaxFloat64}
		if minRaw != "" {
			v, err := strconv.ParseFloat(minRaw, 64)
			if err != nil {
				return f, errInvalidNumber
			}
			pr.Min = v
		}
		if maxRaw != "" {
			v, err := strconv.ParseFloat(maxRaw, 64)
			if err != nil {
				return f, errInvalidNumber
			}
			pr.Max = v
		}
		f.PriceRange = &pr
	}

	if raw := q.Get("capacity"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, errInvalidNumber
		}
		f.Capacity = v
	}

	return f, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
