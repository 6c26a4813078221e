package providers

import (
	"context"
	"encoding/json"
)

// ToolFunc executes a tool call and returns its textual result. Errors
// are returned as text so the model can react to them; transport-level
// failures use the error return.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// ToolDefinition advertises a callable tool to the generation backend
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Invoke      ToolFunc
}

// ToolCall records one tool invocation made during a reasoning run
type ToolCall struct {
	Name   string
	Args   map[string]any
	Result string
}

// GenerationProvider is the LLM backend of the pipeline
type GenerationProvider interface {
	// RunTools drives a tool-calling loop from the given instruction
	// until the model stops requesting tools, returning the calls made
	// and the model's final text
	RunTools(ctx context.Context, instruction string, tools []ToolDefinition) ([]ToolCall, string, error)

	// GenerateStructured produces JSON constrained to the given
	// normalized schema
	GenerateStructured(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error)
}
