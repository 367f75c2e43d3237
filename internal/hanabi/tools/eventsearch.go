package tools

import (
	"context"
	"fmt"

	"github.com/bdobrica/Hanabi/internal/hanabi/events"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// EventSearchTool is the primary discovery tool: it searches the aggregated
// event API and renders the results for the model.
type EventSearchTool struct {
	client *events.Client
}

// NewEventSearchTool wraps the given event-search client.
func NewEventSearchTool(client *events.Client) *EventSearchTool {
	return &EventSearchTool{client: client}
}

func (t *EventSearchTool) Definition() llm.ToolDefinition {
	return Definition(
		"search_events",
		"Search for live events (concerts, sports, theatre, festivals) by genre, location, date range, or name. Dates must be ISO formatted (YYYY-MM-DD); use the today_date tool to resolve relative dates first.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"eventGenre": map[string]interface{}{
					"type":        "string",
					"description": "Genre of the event, e.g. 'Sports - Football' or 'Music - Rock'",
				},
				"eventLocationCity": map[string]interface{}{
					"type":        "string",
					"description": "City where the event takes place",
				},
				"eventLocationCountryCode": map[string]interface{}{
					"type":        "string",
					"description": "ISO country code of the event location, e.g. 'US'",
				},
				"eventStartDate": map[string]interface{}{
					"type":        "string",
					"description": "Earliest event date in ISO format (YYYY-MM-DD)",
				},
				"eventEndDate": map[string]interface{}{
					"type":        "string",
					"description": "Latest event date in ISO format (YYYY-MM-DD)",
				},
				"eventName": map[string]interface{}{
					"type":        "string",
					"description": "Name of the event or artist to search for",
				},
				"pageSize": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results per page (min 1, max 200, default 50)",
				},
			},
		},
	)
}

func (t *EventSearchTool) Run(ctx context.Context, args map[string]interface{}) string {
	params := events.SearchParams{
		EventGenre:               argString(args, "eventGenre"),
		EventLocationCity:        argString(args, "eventLocationCity"),
		EventLocationCountryCode: argString(args, "eventLocationCountryCode"),
		EventStartDate:           argString(args, "eventStartDate"),
		EventEndDate:             argString(args, "eventEndDate"),
		EventName:                argString(args, "eventName"),
		PageSize:                 argInt(args, "pageSize"),
	}

	resp, err := t.client.Search(ctx, params)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return events.FormatForLLM(resp)
}

var _ Tool = (*EventSearchTool)(nil)

// argString reads a string argument, tolerating absence.
func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// argInt reads a numeric argument. JSON numbers decode as float64.
func argInt(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
