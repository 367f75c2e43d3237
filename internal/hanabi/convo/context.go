// Package convo implements the bounded conversation context: the sliding
// window of messages the agent sends to the completion endpoint on every turn.
//
// The window is order-preserving and capped at a configurable maximum.
// Eviction is tool-call-group atomic: an assistant message that requested
// tool invocations and the tool result messages that answer it leave the
// window together, so the endpoint never sees a tool result without the
// assistant message that asked for it.
package convo

import "github.com/bdobrica/Hanabi/internal/hanabi/llm"

// DefaultMaxMessages is the window cap used when none is configured.
const DefaultMaxMessages = 15

// MinMessages is the smallest usable window: one user message, an assistant
// tool-call message, its tool result, and the final assistant reply. Below
// this a single tool-call group could fill the entire window, and evicting
// it would leave the incoming tool result orphaned at the front.
const MinMessages = 4

// Context is a bounded, ordered message buffer for one chat session.
//
// It is not safe for concurrent use: each session owns exactly one Context
// and mutates it synchronously within a turn.
type Context struct {
	maxMessages int
	messages    []llm.Message
}

// New creates a Context capped at maxMessages. Zero or negative values fall
// back to DefaultMaxMessages; positive values below MinMessages are raised
// to it.
func New(maxMessages int) *Context {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	if maxMessages < MinMessages {
		maxMessages = MinMessages
	}
	return &Context{maxMessages: maxMessages}
}

// Add appends a message, evicting from the front when the window is full.
//
// When the evicted message is an assistant message with pending tool calls,
// every tool message immediately following it is evicted too; the group
// entered the window together and leaves together. A tool message is never
// left as the new front of the window.
func (c *Context) Add(msg llm.Message) {
	if len(c.messages) >= c.maxMessages {
		c.evictFront()
	}
	c.messages = append(c.messages, msg)
}

// evictFront removes the oldest message and any tool results paired with it.
func (c *Context) evictFront() {
	if len(c.messages) == 0 {
		return
	}

	front := c.messages[0]
	c.messages = c.messages[1:]

	if front.Role == llm.RoleAssistant && len(front.ToolCalls) > 0 {
		// Drop the whole tool-call group.
		for len(c.messages) > 0 && c.messages[0].Role == llm.RoleTool {
			c.messages = c.messages[1:]
		}
		return
	}

	// A tool result must not become the new front: its assistant tool-call
	// message is already gone.
	for len(c.messages) > 0 && c.messages[0].Role == llm.RoleTool {
		c.messages = c.messages[1:]
	}
}

// Len returns the number of messages currently in the window.
func (c *Context) Len() int {
	return len(c.messages)
}

// Messages returns a copy of the current window, oldest first.
func (c *Context) Messages() []llm.Message {
	out := make([]llm.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// ForAPI produces the view of the window submitted to the completion
// endpoint. Assistant messages with pending tool calls keep the tool_calls
// field; plain assistant, user, and system messages are reduced to role and
// content; tool messages carry their correlation id. Absent optional fields
// are omitted from the wire encoding rather than sent as null.
func (c *Context) ForAPI() []llm.Message {
	out := make([]llm.Message, 0, len(c.messages))
	for _, m := range c.messages {
		switch {
		case m.Role == llm.RoleAssistant && len(m.ToolCalls) > 0:
			out = append(out, llm.Message{
				Role:      m.Role,
				Content:   m.Content,
				ToolCalls: m.ToolCalls,
			})
		case m.Role == llm.RoleTool:
			out = append(out, llm.Message{
				Role:       m.Role,
				Content:    m.Content,
				ToolCallID: m.ToolCallID,
			})
		default:
			out = append(out, llm.Message{
				Role:    m.Role,
				Content: m.Content,
			})
		}
	}
	return out
}

// Clear resets the window to empty.
func (c *Context) Clear() {
	c.messages = nil
}
