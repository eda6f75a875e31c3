package llm

import "testing"

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		wantErr bool
	}{
		{"default base url", OpenRouterConfig{APIKey: "sk-or", Model: "google/gemini-2.0-flash-exp"}, false},
		{"custom base url", OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku", BaseURL: "https://or.example/v1"}, false},
		{"missing key", OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"}, true},
	}
	for _, tt := range tests {
		p, err := NewOpenRouterProvider(tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && p.ModelID() != tt.cfg.Model {
			t.Errorf("%s: ModelID = %q, want %q (passed through)", tt.name, p.ModelID(), tt.cfg.Model)
		}
	}
}
