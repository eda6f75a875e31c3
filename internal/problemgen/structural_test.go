package problemgen

import (
	"strings"
	"testing"
)

func validQuestion() *Question {
	return &Question{
		ID:         "q1_1",
		ChapterID:  "chapter_1",
		Type:       TypeMultipleChoice,
		Difficulty: DifficultyEasy,
		Text:       "Calculez: 3² + 4² = ?",
		Answers:    []Answer{{Text: "25", IsCorrect: true}, {Text: "49"}},
	}
}

func TestStructural_ValidQuestion(t *testing.T) {
	v := &StructuralValidator{}
	if err := v.Validate(validQuestion(), nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStructural_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Question)
	}{
		{"empty id", func(q *Question) { q.ID = "" }},
		{"empty text", func(q *Question) { q.Text = "  " }},
		{"long text", func(q *Question) { q.Text = strings.Repeat("x", 1001) }},
		{"bad type", func(q *Question) { q.Type = "essay" }},
		{"bad difficulty", func(q *Question) { q.Difficulty = "extreme" }},
	}

	v := &StructuralValidator{}
	for _, tc := range tests {
		q := validQuestion()
		tc.mutate(q)
		err := v.Validate(q, nil)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if err.Validator != "structural" {
			t.Errorf("%s: expected validator %q, got %q", tc.name, "structural", err.Validator)
		}
	}
}

func TestStructural_CountsCharactersNotBytes(t *testing.T) {
	q := validQuestion()
	q.Text = strings.Repeat("é", 1000)
	if err := (&StructuralValidator{}).Validate(q, nil); err != nil {
		t.Errorf("1000 accented characters rejected: %v", err)
	}
}
