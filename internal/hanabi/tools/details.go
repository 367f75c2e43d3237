package tools

import (
	"context"
	"fmt"

	"github.com/bdobrica/Hanabi/internal/hanabi/events"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// EventDetailsTool fetches full details for a single Ticketmaster event by
// its Discovery API ID, including price ranges and venue advisories.
type EventDetailsTool struct {
	client *events.Ticketmaster
}

// NewEventDetailsTool wraps the given Discovery API client.
func NewEventDetailsTool(client *events.Ticketmaster) *EventDetailsTool {
	return &EventDetailsTool{client: client}
}

func (t *EventDetailsTool) Definition() llm.ToolDefinition {
	return Definition(
		"get_ticketmaster_event_details",
		"Fetch full details for one Ticketmaster event by its event ID: date, venue, ticket URL, price range, and venue notes. Event IDs come from search_ticketmaster_events results.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "The Ticketmaster event ID",
				},
			},
			"required": []interface{}{"id"},
		},
	)
}

func (t *EventDetailsTool) Run(ctx context.Context, args map[string]interface{}) string {
	eventID := argString(args, "id")
	if eventID == "" {
		return "Missing required parameter: id (event ID)."
	}

	result, err := t.client.EventDetails(ctx, eventID)
	if err != nil {
		return fmt.Sprintf("Error contacting Ticketmaster API: %v", err)
	}
	return result
}

var _ Tool = (*EventDetailsTool)(nil)
