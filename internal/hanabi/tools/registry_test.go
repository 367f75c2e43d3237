package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bdobrica/Hanabi/internal/hanabi/clock"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

var testClock = clock.Fixed{Instant: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}

// fakeTool is a registry test double with a configurable schema.
type fakeTool struct {
	name   string
	params map[string]interface{}
}

func (f fakeTool) Definition() llm.ToolDefinition {
	return Definition(f.name, "test tool", f.params)
}

func (f fakeTool) Run(context.Context, map[string]interface{}) string {
	return "ran " + f.name
}

func strictSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"city": map[string]interface{}{"type": "string"},
			"size": map[string]interface{}{"type": "integer"},
		},
		"required": []interface{}{"city"},
	}
}

func TestRegistry_DefinitionsInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "bravo", params: strictSchema()})
	r.Register(fakeTool{name: "alpha", params: strictSchema()})
	r.Register(NewTodayTool(testClock))

	defs := r.Definitions()
	want := []string{"bravo", "alpha", "today_date"}
	if len(defs) != len(want) {
		t.Fatalf("Definitions() = %d entries, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Function.Name != name {
			t.Errorf("defs[%d] = %q, want %q", i, defs[i].Function.Name, name)
		}
		if defs[i].Type != "function" {
			t.Errorf("defs[%d].Type = %q", i, defs[i].Type)
		}
	}
}

func TestRegistry_DuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r := NewRegistry()
	r.Register(fakeTool{name: "dup", params: strictSchema()})
	r.Register(fakeTool{name: "dup", params: strictSchema()})
}

func TestRegistry_GetAndHas(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "known", params: strictSchema()})

	if !r.Has("known") {
		t.Error("Has(known) = false")
	}
	if r.Has("unknown") {
		t.Error("Has(unknown) = true")
	}
	if r.Get("unknown") != nil {
		t.Error("Get(unknown) != nil")
	}
	if got := r.Get("known").Run(context.Background(), nil); got != "ran known" {
		t.Errorf("Run via Get = %q", got)
	}
}

func TestDecodeArgs(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "search", params: strictSchema()})

	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "valid", raw: `{"city":"Austin","size":5}`},
		{name: "empty string treated as empty object for schemaless decode", raw: `{"city":"x"}`},
		{name: "invalid json", raw: `{"city":`, wantErr: "not valid JSON"},
		{name: "non-object", raw: `["Austin"]`, wantErr: "must be a JSON object"},
		{name: "missing required", raw: `{"size":5}`, wantErr: "parameter schema"},
		{name: "wrong type", raw: `{"city":42}`, wantErr: "parameter schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := r.DecodeArgs("search", tt.raw)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("DecodeArgs: %v", err)
				}
				if args["city"] == "" {
					t.Error("decoded args missing city")
				}
				return
			}
			if err == nil {
				t.Fatalf("DecodeArgs(%q) succeeded, want error containing %q", tt.raw, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeArgs_EmptyArgumentsMeanEmptyObject(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTodayTool(testClock))

	args, err := r.DecodeArgs("today_date", "")
	if err != nil {
		t.Fatalf("DecodeArgs: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestTodayTool(t *testing.T) {
	tool := NewTodayTool(testClock)
	if got := tool.Run(context.Background(), nil); got != "2026-08-31" {
		t.Errorf("Run() = %q, want 2026-08-31", got)
	}
	if got := tool.Definition().Function.Name; got != "today_date" {
		t.Errorf("name = %q", got)
	}
}

func TestArgHelpers(t *testing.T) {
	args := map[string]interface{}{
		"city": "Austin",
		"size": float64(25), // JSON numbers decode as float64
		"flag": true,
	}
	if got := argString(args, "city"); got != "Austin" {
		t.Errorf("argString(city) = %q", got)
	}
	if got := argString(args, "missing"); got != "" {
		t.Errorf("argString(missing) = %q", got)
	}
	if got := argString(args, "flag"); got != "" {
		t.Errorf("argString(non-string) = %q", got)
	}
	if got := argInt(args, "size"); got != 25 {
		t.Errorf("argInt(size) = %d", got)
	}
	if got := argInt(args, "missing"); got != 0 {
		t.Errorf("argInt(missing) = %d", got)
	}
}
