package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/pkg/foodscan"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/pkg/timeparse"
)

var testRef = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	return NewNormalizer(foodscan.New(), timeparse.DefaultWindow, func() time.Time { return testRef })
}

func TestNormalizeDefaults(t *testing.T) {
	n := testNormalizer()

	ev, err := n.Normalize(entity.RawRecord{ID: "42"})
	require.NoError(t, err)

	assert.Equal(t, "42", ev.ID)
	assert.Equal(t, "Untitled Event", ev.Title)
	assert.Equal(t, "Unknown Org", ev.OrganizerName)
	assert.Equal(t, "TBA", ev.VenueName)
	assert.Nil(t, ev.Location)
	assert.False(t, ev.HasFood)
	assert.Empty(t, ev.FoodNotes)
	// No structured instants and no text: fallback window on today.
	assert.Equal(t, time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC), ev.StartsAt)
	assert.Equal(t, time.Date(2026, 4, 10, 19, 0, 0, 0, time.UTC), ev.EndsAt)
}

func TestNormalizeMissingID(t *testing.T) {
	n := testNormalizer()

	for _, id := range []string{"", "   "} {
		_, err := n.Normalize(entity.RawRecord{ID: id, Title: "Some Event"})
		assert.ErrorIs(t, err, entity.ErrNoUsableID)
	}
}

func TestNormalizeStructuredInstantsBypassParser(t *testing.T) {
	n := testNormalizer()
	start := time.Date(2026, 4, 11, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 11, 11, 0, 0, 0, time.UTC)

	// DateTimeText would parse to something else entirely; structured
	// instants must win and the text must be ignored.
	ev, err := n.Normalize(entity.RawRecord{
		ID:           "7",
		StartsAt:     &start,
		EndsAt:       &end,
		DateTimeText: "6:00 PM to 7:00 PM",
	})
	require.NoError(t, err)
	assert.Equal(t, start, ev.StartsAt)
	assert.Equal(t, end, ev.EndsAt)
}

func TestNormalizeClampsInvertedStructuredEnd(t *testing.T) {
	n := testNormalizer()
	start := time.Date(2026, 4, 11, 9, 0, 0, 0, time.UTC)
	end := start.Add(-2 * time.Hour)

	ev, err := n.Normalize(entity.RawRecord{ID: "7", StartsAt: &start, EndsAt: &end})
	require.NoError(t, err)
	assert.Equal(t, start, ev.StartsAt)
	assert.Equal(t, start.Add(time.Hour), ev.EndsAt)
}

func TestNormalizeMissingStructuredEnd(t *testing.T) {
	n := testNormalizer()
	start := time.Date(2026, 4, 11, 9, 0, 0, 0, time.UTC)

	ev, err := n.Normalize(entity.RawRecord{ID: "7", StartsAt: &start})
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Hour), ev.EndsAt)
}

func TestNormalizeFreeTextTimes(t *testing.T) {
	n := testNormalizer()

	ev, err := n.Normalize(entity.RawRecord{
		ID:           "9",
		DateTimeText: "Friday at 5:30 PM to 7:00 PM",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 10, 17, 30, 0, 0, time.UTC), ev.StartsAt)
	assert.Equal(t, time.Date(2026, 4, 10, 19, 0, 0, 0, time.UTC), ev.EndsAt)
}

func TestNormalizeLocation(t *testing.T) {
	n := testNormalizer()
	lat, lng := 33.7756, -84.3963

	tests := []struct {
		name string
		lat  *float64
		lng  *float64
		want *entity.GeoPoint
	}{
		{name: "both present", lat: &lat, lng: &lng, want: &entity.GeoPoint{Lat: lat, Lng: lng}},
		{name: "lat only", lat: &lat, want: nil},
		{name: "lng only", lng: &lng, want: nil},
		{name: "neither", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := n.Normalize(entity.RawRecord{ID: "1", Lat: tt.lat, Lng: tt.lng})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Location)
		})
	}
}

func TestNormalizeClassifies(t *testing.T) {
	n := testNormalizer()

	ev, err := n.Normalize(entity.RawRecord{
		ID:          "1",
		Title:       "GBM",
		Description: "free pizza for everyone",
	})
	require.NoError(t, err)
	assert.True(t, ev.HasFood)
	assert.Equal(t, "pizza", ev.FoodNotes)

	ev, err = n.Normalize(entity.RawRecord{
		ID:          "2",
		Title:       "GBM",
		Description: "no food this time",
	})
	require.NoError(t, err)
	assert.False(t, ev.HasFood)
	assert.Empty(t, ev.FoodNotes)
}
