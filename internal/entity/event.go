package entity

import "time"

// GeoPoint is a WGS84 coordinate. A nil *GeoPoint means the location is
// unknown; (0,0) is never used as a placeholder.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Event is the canonical normalized event record. It is immutable once
// produced by the normalizer; a changed upstream record yields a new Event
// that replaces the old one by ID in the next batch.
type Event struct {
	ID            string    `json:"id"`
	SourceURL     string    `json:"source_url"`
	Title         string    `json:"title"`
	OrganizerName string    `json:"organizer_name"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	VenueName     string    `json:"venue_name"`
	Location      *GeoPoint `json:"location,omitempty"`
	HasFood       bool      `json:"has_food"`
	FoodNotes     string    `json:"food_notes"`
}

// Batch is the unit of persistence: the full deduplicated event list of one
// successful ingestion run plus its freshness timestamp. It is replaced
// wholesale; readers never see a partial batch.
type Batch struct {
	LastUpdated time.Time `json:"last_updated"`
	Events      []Event   `json:"events"`
}

// WalkEstimate is a query-time walking ETA from the caller's origin to an
// event venue. Never persisted.
type WalkEstimate struct {
	Minutes float64 `json:"minutes"`
	Meters  float64 `json:"meters"`
}

// RankedEvent pairs an event with its walk estimate. Walk is nil when no
// route could be computed for the event.
type RankedEvent struct {
	Event
	Walk *WalkEstimate `json:"walk"`
}

// RawRecord is one upstream event entry in whichever shape the active
// ingestion strategy produced it. The API strategy fills the structured
// StartsAt/EndsAt instants; the crawl strategy fills DateTimeText instead.
type RawRecord struct {
	ID            string
	SourceURL     string
	Title         string
	OrganizerName string
	Description   string
	VenueName     string
	StartsAt      *time.Time
	EndsAt        *time.Time
	DateTimeText  string
	Lat           *float64
	Lng           *float64
}
