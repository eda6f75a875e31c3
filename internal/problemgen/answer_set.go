package problemgen

import (
	"fmt"
	"strings"
)

// AnswerSetValidator checks the answer guarantees: a multiple-choice
// question has at least two distinct non-empty options with exactly one
// marked correct, and a free-input question has a non-empty answer.
// With Strict set, the option count must also equal the difficulty's count.
type AnswerSetValidator struct {
	Strict bool
}

func (v *AnswerSetValidator) Name() string { return "answer-set" }

func (v *AnswerSetValidator) Validate(q *Question, _ *Template) *ValidationError {
	if q.Type == TypeFreeInput {
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "free-input question has no correct answer",
				Retryable: true,
			}
		}
		return nil
	}

	if len(q.Answers) < 2 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("multiple choice needs at least 2 answers, got %d", len(q.Answers)),
			Retryable: true,
		}
	}
	if want := q.Difficulty.AnswerCount(); v.Strict && len(q.Answers) != want {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("%s question must have exactly %d answers, got %d", q.Difficulty, want, len(q.Answers)),
			Retryable: true,
		}
	}

	seen := make(map[string]bool, len(q.Answers))
	correct := 0
	for i, a := range q.Answers {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("answer %d is empty", i+1),
			}
		}
		key := strings.ToLower(text)
		if seen[key] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("duplicate answer %q", text),
				Retryable: true,
			}
		}
		seen[key] = true
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("exactly one answer must be correct, got %d", correct),
			Retryable: true,
		}
	}
	return nil
}
