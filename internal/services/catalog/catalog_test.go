package catalog

import (
	"testing"

	"sharedspace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(in []models.Space) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.ID)
	}
	return out
}

func TestFind(t *testing.T) {
	s, err := Find("3")
	require.NoError(t, err)
	assert.Equal(t, "TechHub Conference Room", s.Name)

	_, err = Find("sport-4")
	assert.ErrorIs(t, err, ErrSpaceNotFound)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		filters models.BookingFilters
		want    []string
	}{
		{
			name:    "no filters",
			filters: models.BookingFilters{},
			want:    []string{"1", "2", "3", "4", "5", "6"},
		},
		{
			name:    "sport only",
			filters: models.BookingFilters{Types: []models.SpaceType{models.SpaceSport}},
			want:    []string{"1", "2", "6"},
		},
		{
			name:    "location matches city case insensitively",
			filters: models.BookingFilters{Location: "petaling"},
			want:    []string{"2"},
		},
		{
			name:    "location matches address",
			filters: models.BookingFilters{Location: "bangsar"},
			want:    []string{"4"},
		},
		{
			name:    "price range is inclusive",
			filters: models.BookingFilters{PriceRange: &models.PriceRange{Min: 45, Max: 80}},
			want:    []string{"1", "2", "6"},
		},
		{
			name:    "capacity is a minimum",
			filters: models.BookingFilters{Capacity: 12},
			want:    []string{"2", "3", "5"},
		},
		{
			name:    "amenities must all be present",
			filters: models.BookingFilters{Amenities: []string{"parking", "changing rooms"}},
			want:    []string{"1", "2", "6"},
		},
		{
			name: "combined filters with no match",
			filters: models.BookingFilters{
				Types:    []models.SpaceType{models.SpaceEvent},
				Capacity: 500,
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(All(), tt.filters)))
		})
	}
}

func TestAllReturnsCopy(t *testing.T) {
	got := All()
	got[0].Name = "changed"

	s, err := Find("1")
	require.NoError(t, err)
	assert.Equal(t, "KL Badminton Arena", s.Name)
}

func TestParseTypesAndLabel(t *testing.T) {
	types := ParseTypes("Sport, meeting,unknown,sport")
	assert.Equal(t, []models.SpaceType{models.SpaceSport, models.SpaceMeeting}, types)

	assert.Equal(t, "All Spaces", TypeLabel(nil))
	assert.Equal(t, "All Spaces", TypeLabel(models.SpaceTypes))
	assert.Equal(t, "Event Halls", TypeLabel([]models.SpaceType{models.SpaceEvent}))
	assert.Equal(t, "2 Space Types", TypeLabel(types))
}
