// Package memory implements the agent's long-term conversation memory: a
// full turn log kept as text plus a single rolling natural-language summary.
// The log grows without bound for the life of the session; the summary is
// what keeps the completion prompt bounded: it is recomputed after every
// turn by the Summariser and injected into the system prompt in place of
// old conversation history.
package memory

import (
	"fmt"
	"strings"

	"github.com/bdobrica/Hanabi/internal/hanabi/clock"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// Sentinel strings rendered when the corresponding state is absent. These
// are user-visible inside prompts, so they read as natural language.
const (
	// NoHistory is returned by History when no turns have been recorded.
	NoHistory = "No conversation history available."

	// NoPreviousSummary stands in for the rolling summary when none exists
	// yet, so the summarisation prompt always has something to merge from.
	NoPreviousSummary = "No previous summary available."
)

// Turn is one recorded exchange: the date-stamped user text and the
// assistant's final reply.
type Turn struct {
	User      string
	Assistant string
}

// ChatMemory stores the full turn history plus the rolling summary for one
// chat session. It is exclusively owned by one agent instance and is not
// safe for concurrent use.
type ChatMemory struct {
	clk     clock.Clock
	turns   []Turn
	summary string
}

// NewChatMemory creates an empty memory. The initial summary embeds today's
// date so the very first prompt already anchors the model in time.
func NewChatMemory(clk clock.Clock) *ChatMemory {
	if clk == nil {
		clk = clock.System{}
	}
	m := &ChatMemory{clk: clk}
	m.summary = m.initialSummary()
	return m
}

func (m *ChatMemory) initialSummary() string {
	return fmt.Sprintf("Today's date: %s.\nNo summary available.", m.clk.Today())
}

// RecordTurn appends a (user, assistant) pair to the log. The user content
// is stamped with the current date ("[YYYY-MM-DD] text") so the summariser
// can keep track of when things were said. Messages whose role is not user
// are silently ignored; tool and assistant messages never start a turn.
func (m *ChatMemory) RecordTurn(userMsg llm.Message, reply string) {
	if userMsg.Role != llm.RoleUser {
		return
	}
	m.turns = append(m.turns, Turn{
		User:      fmt.Sprintf("[%s] %s", m.clk.Today(), userMsg.Content),
		Assistant: reply,
	})
}

// History renders the full turn log as alternating "User:" / "Assistant:"
// lines, oldest first. An empty log renders the NoHistory sentinel.
func (m *ChatMemory) History() string {
	if len(m.turns) == 0 {
		return NoHistory
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "User: %s\nAssistant: %s", t.User, t.Assistant)
	}
	return b.String()
}

// RestoreTurns replaces the log with turns recorded by a previous process,
// already date-stamped. The rolling summary is left untouched; seed it
// separately with SetSummary.
func (m *ChatMemory) RestoreTurns(turns []Turn) {
	m.turns = append([]Turn(nil), turns...)
}

// Turns returns a copy of the raw turn log.
func (m *ChatMemory) Turns() []Turn {
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Summary returns the current rolling summary.
func (m *ChatMemory) Summary() string {
	return m.summary
}

// SetSummary replaces the rolling summary.
func (m *ChatMemory) SetSummary(summary string) {
	m.summary = summary
}

// Reset clears both the turn log and the rolling summary. The summary is
// re-seeded with the dated initial sentinel: a reset session starts from a
// clean slate rather than carrying facts about conversations it no longer
// remembers.
func (m *ChatMemory) Reset() {
	m.turns = nil
	m.summary = m.initialSummary()
}
