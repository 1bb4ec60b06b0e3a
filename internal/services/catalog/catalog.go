// Package catalog holds the bookable spaces and the search filters applied to them.
package catalog

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"sharedspace/internal/models"
)

var ErrSpaceNotFound = errors.New("space is not found")

// All returns a copy of every space in the catalog.
func All() []models.Space {
	out := make([]models.Space, len(spaces))
	copy(out, spaces)
	return out
}

func Find(id string) (models.Space, error) {
	for _, s := range spaces {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Space{}, ErrSpaceNotFound
}

// Filter narrows spaces by type, location, price range, capacity and amenities.
// Zero-valued filter fields are ignored.
func Filter(in []models.Space, f models.BookingFilters) []models.Space {
	out := make([]models.Space, 0, len(in))

	location := strings.ToLower(strings.TrimSpace(f.Location))

	for _, s := range in {
		if len(f.Types) > 0 && !slices.Contains(f.Types, s.Type) {
			continue
		}
		if location != "" &&
			!strings.Contains(strings.ToLower(s.Location.City), location) &&
			!strings.Contains(strings.ToLower(s.Location.Address), location) {
			continue
		}
		if f.PriceRange != nil && (s.PricePerHour < f.PriceRange.Min || s.PricePerHour > f.PriceRange.Max) {
			continue
		}
		if f.Capacity > 0 && s.Capacity < f.Capacity {
			continue
		}
		if !hasAmenities(s, f.Amenities) {
			continue
		}
		out = append(out, s)
	}

	return out
}

func hasAmenities(s models.Space, wanted []string) bool {
	for _, w := range wanted {
		found := slices.ContainsFunc(s.Amenities, func(a string) bool {
			return strings.EqualFold(a, strings.TrimSpace(w))
		})
		if !found {
			return false
		}
	}
	return true
}

// TypeLabel describes a type selection the way the listing page headers do.
func TypeLabel(types []models.SpaceType) string {
	if len(types) == 0 || len(types) == len(models.SpaceTypes) {
		return "All Spaces"
	}
	if len(types) == 1 {
		switch types[0] {
		case models.SpaceSport:
			return "Sport Venues"
		case models.SpaceMeeting:
			return "Meeting Rooms"
		case models.SpaceCoworking:
			return "Coworking Spaces"
		case models.SpaceEvent:
			return "Event Halls"
		}
	}
	return strconv.Itoa(len(types)) + " Space Types"
}

// ParseTypes keeps the known space types from a comma separated list.
func ParseTypes(raw string) []models.SpaceType {
	var out []models.SpaceType
	for _, part := range strings.Split(raw, ",") {
		t := models.SpaceType(strings.ToLower(strings.TrimSpace(part)))
		if slices.Contains(models.SpaceTypes, t) && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
