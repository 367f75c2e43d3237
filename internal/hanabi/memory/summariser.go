package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/bdobrica/Hanabi/internal/hanabi/clock"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// summariserSystemPrompt instructs the model how to maintain the rolling
// summary. The merge rule is the load-bearing part: the new summary must be
// a superset of the old one, so information survives arbitrarily long
// sessions even though only the summary travels in the prompt.
const summariserSystemPrompt = "You maintain the long-term memory of an " +
	"event-discovery assistant. You are given the current conversation " +
	"summary and the most recent messages. Produce an updated summary that " +
	"keeps every fact from the current summary and adds the new information: " +
	"user preferences (genres, artists, cities), events discussed, and " +
	"decisions made. Never drop a previously recorded fact. Reply with the " +
	"summary text only."

// NoSummaryGenerated is substituted when the model returns an empty reply,
// so an empty completion never erases the summary slot.
const NoSummaryGenerated = "No summary generated."

// Summariser produces the updated rolling summary from the current summary
// plus the memory's raw turn log. Each Summarise call is an isolated
// one-shot exchange: no tools, no conversational context beyond the
// instruction itself.
type Summariser struct {
	provider llm.Provider
	clk      clock.Clock
	model    string
}

// NewSummariser creates a Summariser. model may be empty, in which case the
// provider's configured default model is used.
func NewSummariser(provider llm.Provider, clk clock.Clock, model string) *Summariser {
	if clk == nil {
		clk = clock.System{}
	}
	return &Summariser{provider: provider, clk: clk, model: model}
}

// Summarise returns the updated summary for mem.
//
// When the turn log is empty it short-circuits without calling the provider
// and returns a dated sentinel; there is nothing to summarise and the
// completion call would be wasted cost. Transport and API failures propagate
// to the caller; the agent decides the fallback (it keeps the previous
// summary).
func (s *Summariser) Summarise(ctx context.Context, mem *ChatMemory) (string, error) {
	today := s.clk.Today()

	history := mem.History()
	if history == NoHistory {
		return fmt.Sprintf("Today's date: %s\nMemory is empty. No summary can be created.", today), nil
	}

	current := mem.Summary()
	if current == "" {
		current = NoPreviousSummary
	}

	request := fmt.Sprintf(
		"Here is the current summary and the most recent messages. Create a "+
			"new summary that doesn't exclude any information from the previous "+
			"one and adds information from the new messages. Include today's "+
			"date (%s).\nCurrent Summary:\n%s\nRecent Messages:\n%s",
		today, current, history,
	)

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: summariserSystemPrompt},
			{Role: llm.RoleUser, Content: request},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summariser: %w", err)
	}

	summary := strings.TrimSpace(resp.Message.Content)
	if summary == "" {
		return NoSummaryGenerated, nil
	}
	return summary, nil
}
