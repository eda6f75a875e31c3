package problemgen

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxQuestionRunes = 1000

// StructuralValidator rejects questions with missing identity or text, or
// with a type or difficulty outside the known sets.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ *Template) *ValidationError {
	var problem string
	switch {
	case q.ID == "":
		problem = "missing id"
	case strings.TrimSpace(q.Text) == "":
		problem = "blank text"
	case utf8.RuneCountInString(q.Text) > maxQuestionRunes:
		problem = fmt.Sprintf("text longer than %d characters", maxQuestionRunes)
	case !knownType(q.Type):
		problem = fmt.Sprintf("unknown question type %q", q.Type)
	case !knownDifficulty(q.Difficulty):
		problem = fmt.Sprintf("unknown difficulty %q", q.Difficulty)
	default:
		return nil
	}
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("question %q: %s", q.ID, problem)}
}

func knownType(t QuestionType) bool {
	return t == TypeMultipleChoice || t == TypeFreeInput || t == TypeTrueFalse
}

func knownDifficulty(d Difficulty) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}
