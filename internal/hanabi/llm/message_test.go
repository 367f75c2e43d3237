package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{
			name: "plain user message",
			msg:  Message{Role: RoleUser, Content: "find jazz concerts in Austin"},
		},
		{
			name: "assistant tool-call request",
			msg: Message{
				Role:    RoleAssistant,
				Content: "",
				ToolCalls: []ToolCall{{
					ID:   "call_abc",
					Type: "function",
					Function: FunctionCall{
						Name:      "search_events",
						Arguments: `{"city":"Austin","classification":"Jazz"}`,
					},
				}},
			},
		},
		{
			name: "tool result",
			msg:  Message{Role: RoleTool, Content: "Found 3 events.", ToolCallID: "call_abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if got.Role != tt.msg.Role || got.Content != tt.msg.Content || got.ToolCallID != tt.msg.ToolCallID {
				t.Errorf("round trip changed message: got %+v, want %+v", got, tt.msg)
			}
			if len(got.ToolCalls) != len(tt.msg.ToolCalls) {
				t.Fatalf("round trip changed tool calls: got %d, want %d", len(got.ToolCalls), len(tt.msg.ToolCalls))
			}
			for i := range got.ToolCalls {
				if got.ToolCalls[i] != tt.msg.ToolCalls[i] {
					t.Errorf("tool call %d changed: got %+v, want %+v", i, got.ToolCalls[i], tt.msg.ToolCalls[i])
				}
			}
		})
	}
}

func TestMessageAbsentFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(Message{Role: RoleUser, Content: "hello"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s := string(data)
	if strings.Contains(s, "tool_calls") {
		t.Errorf("tool_calls present in plain message: %s", s)
	}
	if strings.Contains(s, "tool_call_id") {
		t.Errorf("tool_call_id present in plain message: %s", s)
	}
	if strings.Contains(s, "null") {
		t.Errorf("null value in wire encoding: %s", s)
	}
	// content is always present, even when empty.
	if !strings.Contains(s, `"content"`) {
		t.Errorf("content missing from wire encoding: %s", s)
	}
}
