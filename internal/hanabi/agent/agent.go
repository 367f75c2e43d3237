// Package agent implements the per-turn state machine of the Hanabi
// assistant: bounded context management, a single tool-dispatch round, and
// the memory update that closes every turn.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bdobrica/Hanabi/internal/hanabi/convo"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
	"github.com/bdobrica/Hanabi/internal/hanabi/memory"
	"github.com/bdobrica/Hanabi/internal/hanabi/tools"
)

// Apology is the fixed reply given to the user when a completion call fails.
// The turn is not retried; the user can simply ask again.
const Apology = "I'm sorry, I encountered an error while processing your request."

// failureMarker is recorded as the assistant side of the memory turn when a
// completion call fails, so the summary reflects that the request was not
// answered rather than pretending the apology was a real reply.
const failureMarker = "Error processing request."

// Agent drives one chat session. It owns the session's long-term memory but
// not its context window: the caller passes the window into Process, which
// lets front-ends persist or inspect it between turns.
//
// An Agent is single-threaded. Concurrent sessions each get their own Agent,
// Context, and ChatMemory (see the session package).
type Agent struct {
	provider   llm.Provider
	registry   *tools.Registry
	memory     *memory.ChatMemory
	summariser *memory.Summariser
	model      string
	logger     *slog.Logger
}

// New assembles an Agent. If logger is nil, the default slog logger is used.
func New(provider llm.Provider, registry *tools.Registry, mem *memory.ChatMemory, summariser *memory.Summariser, model string, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		provider:   provider,
		registry:   registry,
		memory:     mem,
		summariser: summariser,
		model:      model,
		logger:     logger,
	}
}

// Memory exposes the agent's long-term memory for inspection and reset by
// front-ends.
func (a *Agent) Memory() *memory.ChatMemory {
	return a.memory
}

// Process runs one user turn and returns the assistant's reply text.
//
// The sequence is fixed: append msg to the window, run a first completion
// with the full tool catalogue, dispatch at most one round of requested tool
// calls, run a final completion, append the reply, then record the turn in
// memory and refresh the rolling summary. A completion failure on either
// call short-circuits to a fixed apology; tool failures never do, they are
// reported to the model as tool-result text.
func (a *Agent) Process(ctx context.Context, msg llm.Message, cv *convo.Context) string {
	cv.Add(msg)

	system := llm.Message{
		Role:    llm.RoleSystem,
		Content: buildSystemPrompt(a.memory.Summary()),
	}
	defs := a.registry.Definitions()

	resp, err := a.complete(ctx, system, cv, defs)
	if err != nil {
		return a.failTurn(ctx, msg, cv, err)
	}
	assistant := resp.Message

	if len(assistant.ToolCalls) > 0 {
		a.dispatch(ctx, cv, assistant.ToolCalls)

		resp, err = a.complete(ctx, system, cv, defs)
		if err != nil {
			return a.failTurn(ctx, msg, cv, err)
		}
		assistant = resp.Message
	}

	reply := assistant.Content
	cv.Add(llm.Message{Role: llm.RoleAssistant, Content: reply})

	a.memory.RecordTurn(msg, reply)
	a.refreshSummary(ctx)

	return reply
}

// complete submits the system prompt plus the window's API view to the
// provider.
func (a *Agent) complete(ctx context.Context, system llm.Message, cv *convo.Context, defs []llm.ToolDefinition) (*llm.CompletionResponse, error) {
	messages := append([]llm.Message{system}, cv.ForAPI()...)
	return a.provider.Complete(ctx, llm.CompletionRequest{
		Model:    a.model,
		Messages: messages,
		Tools:    defs,
	})
}

// dispatch executes the requested tool calls in model order. Each call adds
// an assistant tool-call message (empty content) followed by the tool result
// message carrying the call's id, so the window stays well-formed even under
// eviction.
func (a *Agent) dispatch(ctx context.Context, cv *convo.Context, calls []llm.ToolCall) {
	for _, call := range calls {
		cv.Add(llm.Message{
			Role:      llm.RoleAssistant,
			Content:   "",
			ToolCalls: []llm.ToolCall{call},
		})

		result := a.invoke(ctx, call)

		cv.Add(llm.Message{
			Role:       llm.RoleTool,
			Content:    result,
			ToolCallID: call.ID,
		})
	}
}

// invoke runs one tool call and always returns result text. Unknown tools
// and malformed arguments produce descriptive error strings the model can
// recover from on the final completion.
func (a *Agent) invoke(ctx context.Context, call llm.ToolCall) string {
	name := call.Function.Name

	tool := a.registry.Get(name)
	if tool == nil {
		a.logger.Warn("model requested unknown tool", "tool", name)
		return fmt.Sprintf("Error: unknown tool %q.", name)
	}

	args, err := a.registry.DecodeArgs(name, call.Function.Arguments)
	if err != nil {
		a.logger.Warn("tool call arguments rejected", "tool", name, "err", err)
		return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
	}

	a.logger.Debug("running tool", "tool", name)
	return tool.Run(ctx, args)
}

// failTurn handles a completion failure: the apology goes into the window
// and to the user, and memory records that the request errored so the
// summary never claims an answer was given.
func (a *Agent) failTurn(ctx context.Context, msg llm.Message, cv *convo.Context, err error) string {
	a.logger.Error("completion call failed", "err", err)

	cv.Add(llm.Message{Role: llm.RoleAssistant, Content: Apology})
	a.memory.RecordTurn(msg, failureMarker)
	a.refreshSummary(ctx)

	return Apology
}

// refreshSummary updates the rolling summary. A summariser failure keeps the
// previous summary: losing one refresh is preferable to erasing what the
// assistant already remembers.
func (a *Agent) refreshSummary(ctx context.Context) {
	summary, err := a.summariser.Summarise(ctx, a.memory)
	if err != nil {
		a.logger.Warn("summary refresh failed, keeping previous summary", "err", err)
		return
	}
	a.memory.SetSummary(summary)
}
