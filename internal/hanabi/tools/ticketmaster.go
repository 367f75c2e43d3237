package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bdobrica/Hanabi/internal/hanabi/events"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// TicketmasterSearchTool searches the Ticketmaster Discovery API directly.
// It complements search_events with Ticketmaster-specific filters such as
// classification names and market radius.
type TicketmasterSearchTool struct {
	client *events.Ticketmaster
}

// NewTicketmasterSearchTool wraps the given Discovery API client.
func NewTicketmasterSearchTool(client *events.Ticketmaster) *TicketmasterSearchTool {
	return &TicketmasterSearchTool{client: client}
}

func (t *TicketmasterSearchTool) Definition() llm.ToolDefinition {
	str := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	return Definition(
		"search_ticketmaster_events",
		"Search the Ticketmaster Discovery API for events. Supports keyword, location, date window (ISO 8601 with time, e.g. 2026-09-05T00:00:00Z), and classification filters.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"keyword":            str("Keyword to search on, e.g. an artist or team name"),
				"city":               str("Filter by city"),
				"stateCode":          str("Filter by state code, e.g. 'TX'"),
				"countryCode":        str("Filter by ISO country code, e.g. 'US'"),
				"postalCode":         str("Filter by postal code"),
				"startDateTime":      str("Earliest event start, ISO 8601 with time, e.g. 2026-09-05T00:00:00Z"),
				"endDateTime":        str("Latest event start, ISO 8601 with time"),
				"classificationName": str("Segment, genre, or subgenre name, e.g. 'Music' or 'Rock'"),
				"segmentName":        str("Segment name, e.g. 'Music' or 'Sports'"),
				"segmentId":          str("Segment ID from the event categories tool"),
				"radius":             str("Search radius around the location"),
				"unit":               str("Radius unit: 'miles' or 'km'"),
				"locale":             str("Locale, e.g. 'en-us'"),
				"sort":               str("Sort order, e.g. 'date,asc' or 'relevance,desc'"),
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Page size",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
			},
		},
	)
}

func (t *TicketmasterSearchTool) Run(ctx context.Context, args map[string]interface{}) string {
	params := make(map[string]string, len(args))
	for key, value := range args {
		switch v := value.(type) {
		case string:
			params[key] = v
		case float64:
			params[key] = strconv.Itoa(int(v))
		}
	}

	result, err := t.client.SearchEvents(ctx, params)
	if err != nil {
		return fmt.Sprintf("Error contacting Ticketmaster API: %v", err)
	}
	return result
}

var _ Tool = (*TicketmasterSearchTool)(nil)
