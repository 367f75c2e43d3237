package memory

import (
	"strings"
	"testing"
	"time"

	"github.com/bdobrica/Hanabi/internal/hanabi/clock"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

var testClock = clock.Fixed{Instant: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}

func TestChatMemory_InitialSummary(t *testing.T) {
	m := NewChatMemory(testClock)
	want := "Today's date: 2026-08-31.\nNo summary available."
	if got := m.Summary(); got != want {
		t.Errorf("initial summary = %q, want %q", got, want)
	}
}

func TestChatMemory_RecordTurnStampsDate(t *testing.T) {
	m := NewChatMemory(testClock)
	m.RecordTurn(llm.Message{Role: llm.RoleUser, Content: "any concerts tonight?"}, "A few, yes.")

	turns := m.Turns()
	if len(turns) != 1 {
		t.Fatalf("Turns() = %d entries, want 1", len(turns))
	}
	if turns[0].User != "[2026-08-31] any concerts tonight?" {
		t.Errorf("user text = %q, want date-stamped text", turns[0].User)
	}
	if turns[0].Assistant != "A few, yes." {
		t.Errorf("assistant text = %q", turns[0].Assistant)
	}
}

func TestChatMemory_IgnoresNonUserMessages(t *testing.T) {
	m := NewChatMemory(testClock)

	m.RecordTurn(llm.Message{Role: llm.RoleAssistant, Content: "hello"}, "reply")
	m.RecordTurn(llm.Message{Role: llm.RoleTool, Content: "result", ToolCallID: "call_1"}, "reply")
	m.RecordTurn(llm.Message{Role: llm.RoleSystem, Content: "prompt"}, "reply")

	if got := len(m.Turns()); got != 0 {
		t.Errorf("Turns() = %d entries after non-user messages, want 0", got)
	}
	if got := m.History(); got != NoHistory {
		t.Errorf("History() = %q, want %q", got, NoHistory)
	}
}

func TestChatMemory_HistoryRendering(t *testing.T) {
	m := NewChatMemory(testClock)
	m.RecordTurn(llm.Message{Role: llm.RoleUser, Content: "first"}, "one")
	m.RecordTurn(llm.Message{Role: llm.RoleUser, Content: "second"}, "two")

	got := m.History()
	want := "User: [2026-08-31] first\nAssistant: one\nUser: [2026-08-31] second\nAssistant: two"
	if got != want {
		t.Errorf("History() = %q, want %q", got, want)
	}
}

func TestChatMemory_Reset(t *testing.T) {
	m := NewChatMemory(testClock)
	m.RecordTurn(llm.Message{Role: llm.RoleUser, Content: "remember this"}, "ok")
	m.SetSummary("User likes jazz.")

	m.Reset()

	if got := m.History(); got != NoHistory {
		t.Errorf("History() after Reset = %q, want %q", got, NoHistory)
	}
	if got := m.Summary(); !strings.Contains(got, "No summary available.") {
		t.Errorf("Summary() after Reset = %q, want the initial sentinel", got)
	}
	if got := m.Summary(); !strings.Contains(got, "2026-08-31") {
		t.Errorf("Summary() after Reset = %q, want today's date embedded", got)
	}
}

func TestChatMemory_RestoreTurns(t *testing.T) {
	m := NewChatMemory(testClock)
	m.SetSummary("User likes jazz.")

	restored := []Turn{{User: "[2026-08-30] any concerts?", Assistant: "Two, actually."}}
	m.RestoreTurns(restored)

	if got := m.History(); got != "User: [2026-08-30] any concerts?\nAssistant: Two, actually." {
		t.Errorf("History() = %q", got)
	}
	if got := m.Summary(); got != "User likes jazz." {
		t.Errorf("Summary() = %q, restore must not touch the summary", got)
	}

	// The log must be a copy of the caller's slice.
	restored[0].Assistant = "mutated"
	if m.Turns()[0].Assistant != "Two, actually." {
		t.Error("RestoreTurns aliased the caller's slice")
	}
}

func TestChatMemory_TurnsReturnsCopy(t *testing.T) {
	m := NewChatMemory(testClock)
	m.RecordTurn(llm.Message{Role: llm.RoleUser, Content: "original"}, "reply")

	turns := m.Turns()
	turns[0].Assistant = "mutated"

	if m.Turns()[0].Assistant != "reply" {
		t.Error("Turns() exposed internal state")
	}
}
