package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/mathlingo/internal/store"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"templates":[]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "draft"}}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"templates":[]}` || resp.Usage.InputTokens != 10 || resp.StopReason != "end" {
		t.Errorf("first response = %+v", resp)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &rl) {
		t.Errorf("second error = %v, want ErrRateLimit", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &unavail) {
		t.Errorf("empty queue error = %T, want ErrProviderUnavailable", err)
	}

	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Errorf("recorded system = %q, want sys", mock.Calls[0].System)
	}
	if mock.ModelID() != "mock" {
		t.Errorf("ModelID = %q, want mock", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != PurposeUnknown {
		t.Errorf("PurposeFrom(empty) = %q, want %q", p, PurposeUnknown)
	}
	if p := PurposeFrom(WithPurpose(ctx, PurposeDraft)); p != PurposeDraft {
		t.Errorf("PurposeFrom = %q, want %q", p, PurposeDraft)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if tt.cfg.HasKey() == tt.wantErr {
			t.Errorf("%s: HasKey() = %v", tt.name, tt.cfg.HasKey())
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MATHLINGO_LLM_PROVIDER", "openrouter")
	t.Setenv("MATHLINGO_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("MATHLINGO_OPENROUTER_MODEL", "meta-llama/llama-3-8b")
	t.Setenv("MATHLINGO_OPENAI_BASE_URL", "http://localhost:1234/v1")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "sk-or" || cfg.OpenRouter.Model != "meta-llama/llama-3-8b" {
		t.Errorf("ConfigFromEnv = %+v", cfg)
	}
	if cfg.OpenAI.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("OpenAI.BaseURL = %q", cfg.OpenAI.BaseURL)
	}
	if cfg.Anthropic.Model != "claude-haiku" {
		t.Errorf("Anthropic.Model = %q, want default", cfg.Anthropic.Model)
	}
}

func TestConfig_WithOverrides(t *testing.T) {
	cfg := DefaultConfig().WithOverrides("openai", "gpt-4o", 5*time.Second)
	if cfg.Provider != "openai" || cfg.OpenAI.Model != "gpt-4o" || cfg.Timeout != 5*time.Second {
		t.Errorf("WithOverrides = %+v", cfg)
	}
	kept := DefaultConfig().WithOverrides("", "", 0)
	if kept.Provider != "anthropic" || kept.Timeout != 60*time.Second {
		t.Errorf("empty overrides changed config: %+v", kept)
	}
}

type recorder struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recorder) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	r.events = append(r.events, d)
	return r.err
}

func TestLoggingProvider(t *testing.T) {
	rec := &recorder{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, "mock", rec, nil)
	ctx := WithPurpose(context.Background(), PurposeDraft)

	if _, err := p.Generate(ctx, Request{System: "be brief", Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error from second call")
	}

	if len(rec.events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(rec.events))
	}
	ok, failed := rec.events[0], rec.events[1]
	if ok.Provider != "mock" || ok.Purpose != PurposeDraft || !ok.Success || ok.InputTokens != 12 || ok.ResponseBody != `{"ok":true}` {
		t.Errorf("success event = %+v", ok)
	}
	if ok.RequestBody != "[system]\nbe brief\n\n[user]\nhi\n\n" {
		t.Errorf("RequestBody = %q", ok.RequestBody)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("failure event = %+v", failed)
	}
}

func TestLoggingProvider_RecorderFailureIgnored(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), "mock", rec, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Errorf("Generate = %v, want nil", err)
	}

	nilEvents := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), "mock", nil, nil)
	if _, err := nilEvents.Generate(context.Background(), Request{}); err != nil {
		t.Errorf("Generate without recorder = %v, want nil", err)
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "anthropic"}, nil, nil); err == nil {
		t.Error("expected error for missing key")
	}

	p, err := NewProvider(context.Background(), Config{Provider: "mock", Retry: RetryConfig{MaxAttempts: 1}, Timeout: time.Second}, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider(mock): %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q, want mock", p.ModelID())
	}

	or, err := NewProvider(context.Background(), Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "k", Model: "x/y"}}, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider(openrouter): %v", err)
	}
	if or.ModelID() != "x/y" {
		t.Errorf("openrouter ModelID = %q, want x/y", or.ModelID())
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "block" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 10*time.Millisecond)
	if _, err := p.Generate(context.Background(), Request{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Generate = %v, want DeadlineExceeded", err)
	}
}
