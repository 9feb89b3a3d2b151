package ingest

import (
	"strings"
	"time"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/pkg/foodscan"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/pkg/timeparse"
)

const (
	defaultTitle     = "Untitled Event"
	defaultOrganizer = "Unknown Org"
	defaultVenue     = "TBA"
)

// Normalizer maps one raw upstream record into the canonical Event shape.
type Normalizer struct {
	classifier *foodscan.Classifier
	defWindow  timeparse.Window
	now        func() time.Time
}

// NewNormalizer builds a Normalizer. now supplies the reference date for
// free-text time parsing; nil means time.Now.
func NewNormalizer(classifier *foodscan.Classifier, defWindow timeparse.Window, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{classifier: classifier, defWindow: defWindow, now: now}
}

// Normalize fails only when the record has no usable identifier; every other
// missing field degrades to a default. Structured instants (API strategy)
// are used directly and never run through the free-text parser; records
// carrying only a date/time text block (crawl strategy) are parsed against
// the current date.
func (n *Normalizer) Normalize(raw entity.RawRecord) (entity.Event, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return entity.Event{}, entity.ErrNoUsableID
	}

	ev := entity.Event{
		ID:            id,
		SourceURL:     raw.SourceURL,
		Title:         firstNonEmpty(raw.Title, defaultTitle),
		OrganizerName: firstNonEmpty(raw.OrganizerName, defaultOrganizer),
		VenueName:     firstNonEmpty(raw.VenueName, defaultVenue),
	}

	if raw.StartsAt != nil {
		ev.StartsAt = *raw.StartsAt
		switch {
		case raw.EndsAt == nil, raw.EndsAt.Before(*raw.StartsAt):
			ev.EndsAt = ev.StartsAt.Add(time.Hour)
		default:
			ev.EndsAt = *raw.EndsAt
		}
	} else {
		ev.StartsAt, ev.EndsAt = timeparse.Parse(raw.DateTimeText, n.now(), n.defWindow)
	}

	// Both coordinates or nothing; (0,0) placeholders never appear.
	if raw.Lat != nil && raw.Lng != nil {
		ev.Location = &entity.GeoPoint{Lat: *raw.Lat, Lng: *raw.Lng}
	}

	ev.HasFood, ev.FoodNotes = n.classifier.Classify(raw.Title, raw.Description)
	return ev, nil
}
