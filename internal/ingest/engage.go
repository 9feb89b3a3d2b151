package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/config"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
)

// engageSource is the API strategy: one paginated request against an
// Engage-style discovery search endpoint.
type engageSource struct {
	cfg    config.IngestConfig
	client *http.Client
}

func NewEngageSource(cfg config.IngestConfig) *engageSource {
	to := cfg.Timeout
	if to == 0 {
		to = 15 * time.Second
	}
	return &engageSource{cfg: cfg, client: NewHTTPClient(to)}
}

func (s *engageSource) Name() string { return "api" }

func (s *engageSource) Fetch(ctx context.Context) ([]entity.RawRecord, error) {
	endpoint, err := s.searchURL()
	if err != nil {
		return nil, err
	}

	var body []byte
	attempts := s.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	err = Retry(ctx, attempts, defaultDur(s.cfg.Backoff, 500*time.Millisecond), defaultDur(s.cfg.MaxBackoff, 5*time.Second), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		if ua := s.cfg.UserAgent; ua != "" {
			req.Header.Set("User-Agent", ua)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("engage %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUpstreamUnavailable, err)
	}

	// Upstream is loosely typed: ids arrive as numbers or strings, and
	// coordinates occasionally as quoted strings.
	var payload struct {
		Value []struct {
			ID               any    `json:"id"`
			Name             string `json:"name"`
			Description      string `json:"description"`
			OrganizationName string `json:"organizationName"`
			Location         string `json:"location"`
			StartsOn         string `json:"startsOn"`
			EndsOn           string `json:"endsOn"`
			Latitude         any    `json:"latitude"`
			Longitude        any    `json:"longitude"`
		} `json:"value"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", entity.ErrUpstreamUnavailable, err)
	}

	records := make([]entity.RawRecord, 0, len(payload.Value))
	for _, v := range payload.Value {
		id := idString(v.ID)
		rec := entity.RawRecord{
			ID:            id,
			SourceURL:     s.publicURL(id),
			Title:         v.Name,
			OrganizerName: v.OrganizationName,
			Description:   v.Description,
			VenueName:     v.Location,
			StartsAt:      parseInstant(v.StartsOn),
			EndsAt:        parseInstant(v.EndsOn),
			Lat:           floatPtr(v.Latitude),
			Lng:           floatPtr(v.Longitude),
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *engageSource) searchURL() (string, error) {
	u, err := url.Parse(s.cfg.API.SearchURL)
	if err != nil {
		return "", fmt.Errorf("bad search_url: %w", err)
	}
	take := s.cfg.API.Take
	if take <= 0 {
		take = 200
	}
	q := u.Query()
	q.Set("take", strconv.Itoa(take))
	q.Set("status", defaultStr(s.cfg.API.Status, "Approved"))
	q.Set("orderByField", defaultStr(s.cfg.API.OrderBy, "endsOn"))
	q.Set("orderByDirection", defaultStr(s.cfg.API.OrderDir, "ascending"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *engageSource) publicURL(id string) string {
	if id == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.API.PublicBase, "/") + "/event/" + id
}

func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func parseInstant(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func floatPtr(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return &f
		}
	}
	return nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func defaultDur(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}
