package tools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// Registry holds all registered tools and provides name-based lookup plus
// argument decoding. It is not safe to call Register concurrently with Get,
// Definitions, or DecodeArgs; populate the registry at startup before
// serving turns.
type Registry struct {
	tools   map[string]Tool
	order   []string
	schemas map[string]*jsonschema.Schema
}

// NewRegistry returns an empty Registry ready for tool registration.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*jsonschema.Schema),
	}
}

// Register adds t to the registry and compiles its parameter schema for
// argument validation. It panics on a duplicate name or an uncompilable
// schema; both indicate a programming error in a static tool definition.
func (r *Registry) Register(t Tool) {
	def := t.Definition()
	name := def.Function.Name
	if _, dup := r.tools[name]; dup {
		panic("tools: duplicate tool registration: " + name)
	}

	if def.Function.Parameters != nil {
		schema, err := compileSchema(name, def.Function.Parameters)
		if err != nil {
			panic("tools: invalid parameter schema for " + name + ": " + err.Error())
		}
		r.schemas[name] = schema
	}

	r.tools[name] = t
	r.order = append(r.order, name)
}

// Get returns the Tool registered under name, or nil when not found.
func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Definitions returns the LLM tool definitions for all registered tools,
// in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// DecodeArgs parses the raw JSON argument payload of a tool call and
// validates it against the tool's parameter schema. A decode or validation
// failure returns an error the dispatcher converts into a recoverable
// tool-result string; malformed model output must not abort the turn.
func (r *Registry) DecodeArgs(name, rawArgs string) (map[string]interface{}, error) {
	if rawArgs == "" {
		rawArgs = "{}"
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(rawArgs), &decoded); err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}

	args, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("arguments must be a JSON object, got %T", decoded)
	}

	if schema := r.schemas[name]; schema != nil {
		if err := schema.Validate(decoded); err != nil {
			return nil, fmt.Errorf("arguments do not match the %s parameter schema: %w", name, err)
		}
	}

	return args, nil
}

// compileSchema turns a ToolDefinition's Parameters object into a compiled
// JSON Schema. The parameters travel through a JSON round-trip because the
// compiler consumes raw schema documents, not Go values.
func compileSchema(name string, parameters interface{}) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(parameters)
	if err != nil {
		return nil, fmt.Errorf("marshal parameters: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	url := "tool://" + name + "/parameters.json"
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(url)
}
