package problemgen

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Validator: "test-validator",
		Message:   "something went wrong",
		Retryable: true,
	}
	expected := `validator "test-validator": something went wrong`
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestGenerationError_Unwrap(t *testing.T) {
	inner := &DomainError{Variable: "a", Err: ErrDomainExhausted}
	err := &GenerationError{TemplateID: "t1", Err: inner}
	if !errors.Is(err, ErrDomainExhausted) {
		t.Error("errors.Is(GenerationError, ErrDomainExhausted) = false, want true")
	}
}

func TestDefaultConfig_ValidatorChain(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Validators) != 2 {
		t.Fatalf("expected 2 validators, got %d", len(cfg.Validators))
	}
	names := []string{"structural", "answer-set"}
	for i, v := range cfg.Validators {
		if v.Name() != names[i] {
			t.Errorf("validator %d: expected %q, got %q", i, names[i], v.Name())
		}
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.FreeInputEnabled {
		t.Error("expected FreeInputEnabled false")
	}
	if cfg.MaxRegenerateAttempts != 5 {
		t.Errorf("expected MaxRegenerateAttempts 5, got %d", cfg.MaxRegenerateAttempts)
	}
}

func TestAnswerSet(t *testing.T) {
	mc := func(answers ...Answer) *Question {
		return &Question{ID: "q", Type: TypeMultipleChoice, Difficulty: DifficultyMedium, Text: "?", Answers: answers}
	}

	tests := []struct {
		name   string
		q      *Question
		strict bool
		ok     bool
	}{
		{"valid", mc(Answer{"1", true}, Answer{"2", false}, Answer{"3", false}), true, true},
		{"too few", mc(Answer{"1", true}), false, false},
		{"wrong count strict", mc(Answer{"1", true}, Answer{"2", false}), true, false},
		{"wrong count lenient", mc(Answer{"1", true}, Answer{"2", false}), false, true},
		{"no correct", mc(Answer{"1", false}, Answer{"2", false}, Answer{"3", false}), false, false},
		{"two correct", mc(Answer{"1", true}, Answer{"2", true}, Answer{"3", false}), false, false},
		{"duplicate", mc(Answer{"1", true}, Answer{"1", false}, Answer{"3", false}), false, false},
		{"empty text", mc(Answer{"1", true}, Answer{" ", false}), false, false},
		{"free input ok", &Question{Type: TypeFreeInput, CorrectAnswer: "25"}, true, true},
		{"free input empty", &Question{Type: TypeFreeInput}, true, false},
	}

	for _, tc := range tests {
		v := &AnswerSetValidator{Strict: tc.strict}
		err := v.Validate(tc.q, nil)
		if (err == nil) != tc.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tc.name, err, tc.ok)
		}
	}
}
