// Package events provides the REST clients for the two event-discovery
// back-ends: the aggregated event-search API and the Ticketmaster Discovery
// API. Both are thin request/response mappers: they issue a single GET,
// reshape the loosely-typed JSON into structured records, and render
// summaries suitable for an LLM prompt.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultSearchBase = "https://event-search-staging.thrugo.com/api/events"

// Venue is where an event takes place.
type Venue struct {
	Name        string
	City        string
	Country     string
	CountryCode string
	Address     string
}

// EventDate holds start/end date and time information.
type EventDate struct {
	StartDate string // ISO date (YYYY-MM-DD)
	StartTime string
	EndDate   string
	EndTime   string
}

// EventImage is an image attached to an event listing.
type EventImage struct {
	URL string
	Alt string
}

// Event is a single event listing returned by the search API.
type Event struct {
	ID          string
	Name        string
	Description string
	URL         string
	Dates       EventDate
	Venues      []Venue
	Images      []EventImage
	Genre       string
}

// FormatSummary renders the event as a single summary line.
func (e Event) FormatSummary() string {
	var venue string
	if len(e.Venues) > 0 {
		v := e.Venues[0]
		parts := []string{v.Name}
		if v.City != "" {
			parts = append(parts, v.City)
		}
		if v.Country != "" {
			parts = append(parts, v.Country)
		}
		venue = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%s at %s on %s %s - %s",
		e.Name, venue, e.Dates.StartDate, e.Dates.StartTime, e.URL)
}

// SearchResponse is the reshaped result of one search call.
type SearchResponse struct {
	Events          []Event
	TotalCount      int
	Page            int
	PageSize        int
	FoundMoreEvents bool
	// Skipped counts listings that could not be parsed. They are logged and
	// counted rather than silently discarded.
	Skipped int
}

// SearchParams are the supported search criteria. Zero values are omitted
// from the request.
type SearchParams struct {
	EventGenre               string // e.g. "Sports - Football"
	EventLocationCity        string
	EventLocationCountryCode string // ISO country code
	EventStartDate           string // YYYY-MM-DD
	EventEndDate             string // YYYY-MM-DD
	EventName                string
	PageSize                 int // clamped to [1, 200]; 0 means the API default of 50
}

// Validate checks the date fields. Other fields are free-form and validated
// upstream by the tool parameter schema.
func (p SearchParams) Validate() error {
	for _, d := range []struct{ name, value string }{
		{"eventStartDate", p.EventStartDate},
		{"eventEndDate", p.EventEndDate},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d.value); err != nil {
			return fmt.Errorf("invalid date format for %s: %q (expected YYYY-MM-DD)", d.name, d.value)
		}
	}
	return nil
}

// Config configures the search API client.
type Config struct {
	// APIKey is sent as the X-API-Key header.
	APIKey string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// Timeout is the HTTP request timeout. Defaults to 10s.
	Timeout time.Duration
}

// Client talks to the aggregated event-search API.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates an event-search client. If logger is nil, the default
// slog logger is used.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSearchBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Search performs one event search. Listings that cannot be reshaped are
// skipped; the skip count is logged and reported on the response.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	pageSize := params.PageSize
	if pageSize == 0 {
		pageSize = 50
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 200 {
		pageSize = 200
	}

	q := url.Values{}
	setIf := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	setIf("eventGenre", params.EventGenre)
	setIf("eventLocationCity", params.EventLocationCity)
	setIf("eventLocationCountryCode", params.EventLocationCountryCode)
	setIf("eventStartDate", params.EventStartDate)
	setIf("eventEndDate", params.EventEndDate)
	setIf("eventName", params.EventName)
	q.Set("pageSize", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("event search: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("event search: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("event search: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("event search: unexpected HTTP status %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("event search: decode response: %w", err)
	}

	events, skipped := c.extractEvents(data)
	if skipped > 0 {
		c.logger.Warn("event search: skipped malformed listings",
			"skipped", skipped, "parsed", len(events))
	}

	return &SearchResponse{
		Events:          events,
		TotalCount:      len(events),
		Page:            1,
		PageSize:        pageSize,
		FoundMoreEvents: boolField(data, "foundMoreEvents"),
		Skipped:         skipped,
	}, nil
}

// extractEvents reshapes the listings array. The API has shipped both an
// "events" and an "items" envelope, venue entries as either objects or bare
// strings, and two different date layouts. Every per-item parse is fallible
// and failures are counted instead of silently dropped.
func (c *Client) extractEvents(data map[string]interface{}) (events []Event, skipped int) {
	var list []interface{}
	if v, ok := data["events"].([]interface{}); ok {
		list = v
	} else if v, ok := data["items"].([]interface{}); ok {
		list = v
	} else {
		return nil, 0
	}

	for i, item := range list {
		raw, ok := item.(map[string]interface{})
		if !ok {
			c.logger.Debug("event search: listing is not an object", "index", i)
			skipped++
			continue
		}
		ev, err := parseEvent(raw)
		if err != nil {
			c.logger.Debug("event search: unparseable listing", "index", i, "err", err)
			skipped++
			continue
		}
		events = append(events, ev)
	}
	return events, skipped
}

// parseEvent converts one raw listing into an Event. It returns an error for
// listings missing the fields a summary needs rather than fabricating them.
func parseEvent(raw map[string]interface{}) (Event, error) {
	ev := Event{
		ID:          stringField(raw, "id"),
		Name:        stringField(raw, "name"),
		Description: stringField(raw, "description"),
		URL:         stringField(raw, "url"),
		Genre:       stringField(raw, "genre"),
	}
	if ev.Name == "" {
		return Event{}, fmt.Errorf("listing has no name")
	}

	dates, err := parseDates(raw)
	if err != nil {
		return Event{}, err
	}
	ev.Dates = dates

	ev.Venues = parseVenues(raw)
	ev.Images = parseImages(raw)

	if ev.Genre == "" {
		ev.Genre = classificationGenre(raw)
	}

	return ev, nil
}

func parseDates(raw map[string]interface{}) (EventDate, error) {
	if iso := stringField(raw, "startDateTime"); iso != "" {
		t, err := time.Parse(time.RFC3339, iso)
		if err != nil {
			// Non-standard timestamps are carried through verbatim: a readable
			// date string still beats dropping the listing.
			return EventDate{StartDate: iso}, nil
		}
		return EventDate{
			StartDate: t.Format(time.DateOnly),
			StartTime: t.Format(time.TimeOnly),
		}, nil
	}

	datesRaw, ok := raw["dates"].(map[string]interface{})
	if !ok {
		return EventDate{}, fmt.Errorf("listing has no start date")
	}
	var d EventDate
	if start, ok := datesRaw["start"].(map[string]interface{}); ok {
		d.StartDate = stringField(start, "localDate")
		d.StartTime = stringField(start, "localTime")
	}
	if end, ok := datesRaw["end"].(map[string]interface{}); ok {
		d.EndDate = stringField(end, "localDate")
		d.EndTime = stringField(end, "localTime")
	}
	if d.StartDate == "" {
		return EventDate{}, fmt.Errorf("listing has no start date")
	}
	return d, nil
}

func parseVenues(raw map[string]interface{}) []Venue {
	list, ok := raw["venues"].([]interface{})
	if !ok {
		return nil
	}
	var venues []Venue
	for _, item := range list {
		switch v := item.(type) {
		case map[string]interface{}:
			venue := Venue{Name: stringField(v, "name")}
			if venue.Name == "" {
				venue.Name = "Unknown Venue"
			}
			venue.City = nestedOrFlat(v, "city", "name")
			venue.Country = nestedOrFlat(v, "country", "name")
			if country, ok := v["country"].(map[string]interface{}); ok {
				venue.CountryCode = stringField(country, "countryCode")
			}
			venue.Address = nestedOrFlat(v, "address", "line1")
			venues = append(venues, venue)
		case string:
			venues = append(venues, Venue{Name: v})
		}
	}
	return venues
}

func parseImages(raw map[string]interface{}) []EventImage {
	if list, ok := raw["images"].([]interface{}); ok {
		var images []EventImage
		for _, item := range list {
			img, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			images = append(images, EventImage{
				URL: stringField(img, "url"),
				Alt: stringField(img, "alt"),
			})
		}
		return images
	}
	if u := stringField(raw, "image"); u != "" {
		return []EventImage{{URL: u}}
	}
	return nil
}

// classificationGenre digs the genre name out of a Ticketmaster-style
// classifications array when the flat "genre" field is absent.
func classificationGenre(raw map[string]interface{}) string {
	list, ok := raw["classifications"].([]interface{})
	if !ok || len(list) == 0 {
		return ""
	}
	first, ok := list[0].(map[string]interface{})
	if !ok {
		return ""
	}
	genre, ok := first["genre"].(map[string]interface{})
	if !ok {
		return ""
	}
	return stringField(genre, "name")
}

// FormatForLLM renders a search response as prompt-friendly text.
func FormatForLLM(resp *SearchResponse) string {
	if resp == nil || len(resp.Events) == 0 {
		return "No events found for the given criteria."
	}

	lines := make([]string, 0, len(resp.Events))
	for _, ev := range resp.Events {
		lines = append(lines, ev.FormatSummary())
	}

	result := fmt.Sprintf("Found %d events. Showing %d:", resp.TotalCount, len(lines))
	if resp.FoundMoreEvents {
		result += " (more events are available)"
	}
	return result + "\n\n" + strings.Join(lines, "\n")
}

// --- loosely-typed JSON helpers ---

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func boolField(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// nestedOrFlat reads m[key][nested] when m[key] is an object, or m[key]
// itself when it is a plain string. The API has shipped both shapes.
func nestedOrFlat(m map[string]interface{}, key, nested string) string {
	switch v := m[key].(type) {
	case map[string]interface{}:
		return stringField(v, nested)
	case string:
		return v
	}
	return ""
}
