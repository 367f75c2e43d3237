package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTicketmasterBase = "https://app.ticketmaster.com/discovery/v2"

// ticketmasterSearchParams is the whitelist of Discovery API search
// parameters passed through from tool arguments. Anything else is ignored.
var ticketmasterSearchParams = []string{
	"countryCode", "keyword", "city", "stateCode", "postalCode",
	"startDateTime", "endDateTime", "classificationName", "radius",
	"unit", "locale", "segmentId", "segmentName", "sort", "size", "page",
}

// TicketmasterConfig configures the Ticketmaster Discovery client.
type TicketmasterConfig struct {
	// APIKey is the Discovery API key, sent as the apikey query parameter.
	APIKey string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// Timeout is the HTTP request timeout. Defaults to 10s.
	Timeout time.Duration
}

// Ticketmaster talks to the Ticketmaster Discovery API for event search and
// per-event detail lookup.
type Ticketmaster struct {
	cfg    TicketmasterConfig
	client *http.Client
}

// NewTicketmaster creates a Discovery API client.
func NewTicketmaster(cfg TicketmasterConfig) *Ticketmaster {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTicketmasterBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Ticketmaster{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// SearchEvents searches the Discovery API and returns one summary line per
// event. params values are passed through the whitelist verbatim.
func (t *Ticketmaster) SearchEvents(ctx context.Context, params map[string]string) (string, error) {
	q := url.Values{"apikey": {t.cfg.APIKey}}
	for _, name := range ticketmasterSearchParams {
		if v := params[name]; v != "" {
			q.Set(name, v)
		}
	}

	data, err := t.get(ctx, "/events.json", q)
	if err != nil {
		return "", err
	}

	embedded, _ := data["_embedded"].(map[string]interface{})
	list, _ := embedded["events"].([]interface{})
	if len(list) == 0 {
		return "No events found for the given criteria.", nil
	}

	var lines []string
	for _, item := range list {
		ev, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := stringField(ev, "name")
		if name == "" {
			name = "Unknown Event"
		}
		date, clock := tmStart(ev)
		lines = append(lines, fmt.Sprintf("%s at %s on %s %s - %s",
			name, tmVenue(ev), date, clock, stringField(ev, "url")))
	}
	return strings.Join(lines, "\n"), nil
}

// EventDetails fetches one event by Discovery API ID and renders its key
// details: name, date, venue, URL, and, when present, the price range, info
// text, and the "please note" advisory.
func (t *Ticketmaster) EventDetails(ctx context.Context, eventID string) (string, error) {
	if eventID == "" {
		return "", fmt.Errorf("ticketmaster: event ID must not be empty")
	}

	q := url.Values{"apikey": {t.cfg.APIKey}}
	data, err := t.get(ctx, "/events/"+url.PathEscape(eventID)+".json", q)
	if err != nil {
		return "", err
	}

	name := stringField(data, "name")
	if name == "" {
		name = "Unknown Event"
	}
	date, clock := tmStart(data)

	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\nDate: %s %s\nVenue: %s\nURL: %s",
		name, date, clock, tmVenue(data), stringField(data, "url"))

	if ranges, ok := data["priceRanges"].([]interface{}); ok && len(ranges) > 0 {
		if pr, ok := ranges[0].(map[string]interface{}); ok {
			fmt.Fprintf(&b, "\nPrice: %v - %v %s", pr["min"], pr["max"], stringField(pr, "currency"))
		}
	}
	if info := stringField(data, "info"); info != "" {
		fmt.Fprintf(&b, "\nInfo: %s", info)
	}
	if note := stringField(data, "pleaseNote"); note != "" {
		fmt.Fprintf(&b, "\nNote: %s", note)
	}
	return b.String(), nil
}

// get performs one Discovery API GET and decodes the JSON body.
func (t *Ticketmaster) get(ctx context.Context, path string, q url.Values) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("ticketmaster: create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ticketmaster: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ticketmaster: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ticketmaster: unexpected HTTP status %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("ticketmaster: decode response: %w", err)
	}
	return data, nil
}

// tmStart extracts the local start date and time from a Discovery event.
func tmStart(ev map[string]interface{}) (date, clock string) {
	dates, _ := ev["dates"].(map[string]interface{})
	start, _ := dates["start"].(map[string]interface{})
	return stringField(start, "localDate"), stringField(start, "localTime")
}

// tmVenue renders "Venue, City, State" from the first embedded venue.
func tmVenue(ev map[string]interface{}) string {
	embedded, _ := ev["_embedded"].(map[string]interface{})
	venues, _ := embedded["venues"].([]interface{})
	if len(venues) == 0 {
		return ""
	}
	v, ok := venues[0].(map[string]interface{})
	if !ok {
		return ""
	}
	parts := make([]string, 0, 3)
	if name := stringField(v, "name"); name != "" {
		parts = append(parts, name)
	}
	if city := nestedOrFlat(v, "city", "name"); city != "" {
		parts = append(parts, city)
	}
	if state := nestedOrFlat(v, "state", "name"); state != "" {
		parts = append(parts, state)
	}
	return strings.Join(parts, ", ")
}
