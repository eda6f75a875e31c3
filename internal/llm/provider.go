package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider generates structured content from a language model. Template
// drafting is the only consumer; it always sends a Schema and expects the
// returned Content to already satisfy it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is one single-turn or multi-turn generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, switches the backend to its native JSON output mode
	// and the reply is validated before it is returned.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the backend default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema document. Name doubles as the cache key for
// the compiled form, so two schemas must not share a name.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to StopEnd or StopMaxTokens.
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// modelAliases lets configuration use short names across backends.
// Anything not listed is passed to the backend unchanged.
var modelAliases = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"gemini-flash":  "gemini-2.0-flash",
	"gemini-pro":    "gemini-2.0-pro",
}

func resolveModel(name string) string {
	if id, ok := modelAliases[strings.TrimSpace(name)]; ok {
		return id
	}
	return strings.TrimSpace(name)
}

// reply turns raw backend output into a Response. A schema-bound request
// that ran out of tokens fails with ErrMaxTokensExceeded instead of a
// validation error, since the JSON is cut short.
func reply(req Request, raw string, usage Usage, model, stop string) (*Response, error) {
	content := json.RawMessage(strings.TrimSpace(raw))
	if req.Schema != nil {
		if stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
