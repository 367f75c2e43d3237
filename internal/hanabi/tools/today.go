package tools

import (
	"context"

	"github.com/bdobrica/Hanabi/internal/hanabi/clock"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// TodayTool reports today's date so the model can resolve relative phrases
// like "this weekend" into concrete search dates.
type TodayTool struct {
	clk clock.Clock
}

// NewTodayTool creates the date tool. clk may be nil, in which case the
// system wall clock is used.
func NewTodayTool(clk clock.Clock) *TodayTool {
	if clk == nil {
		clk = clock.System{}
	}
	return &TodayTool{clk: clk}
}

func (t *TodayTool) Definition() llm.ToolDefinition {
	return Definition(
		"today_date",
		"Returns today's date in ISO format (YYYY-MM-DD). Use it to resolve relative dates like 'tomorrow' or 'this weekend' before searching for events.",
		map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	)
}

func (t *TodayTool) Run(_ context.Context, _ map[string]interface{}) string {
	return t.clk.Today()
}

var _ Tool = (*TodayTool)(nil)
