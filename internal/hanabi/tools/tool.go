// Package tools provides the fixed tool registry the agent advertises to the
// completion endpoint and dispatches model-requested invocations against.
//
// The tool set is closed: every tool is registered at startup and the
// registry is immutable afterwards. Tools never return errors across the
// dispatch boundary: each implementation catches its own failures and
// renders them as a human-readable result string, which the model folds into
// its final answer.
package tools

import (
	"context"

	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// Tool is the interface all tools must implement.
type Tool interface {
	// Definition returns the LLM-facing tool definition containing the name,
	// description, and JSON Schema parameter specification. This definition
	// is included in every first-round CompletionRequest's Tools slice.
	Definition() llm.ToolDefinition

	// Run executes the tool with the given (JSON-decoded, schema-validated)
	// arguments and returns a text result for the LLM. Internal failures
	// (bad upstream responses, network errors) are rendered as descriptive
	// error strings, never raised.
	Run(ctx context.Context, args map[string]interface{}) string
}

// Definition is a convenience for building a function tool definition from
// a name, description, and JSON Schema parameters object.
func Definition(name, description string, parameters map[string]interface{}) llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.FunctionDef{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
