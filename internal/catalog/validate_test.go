package catalog

import (
	"errors"
	"testing"

	"github.com/abhisek/mathlingo/internal/problemgen"
)

func goodTemplate() *problemgen.Template {
	return &problemgen.Template{
		ID:                   "tpl",
		ChapterID:            "chapter_1",
		Type:                 problemgen.TypeFreeInput,
		Difficulty:           problemgen.DifficultyMedium,
		Variables:            []problemgen.Variable{{Name: "a", Min: 1, Max: 5}},
		QuestionText:         "{a} × 2 = ?",
		Hints:                []string{"Doublez {a}"},
		CorrectAnswerFormula: "{a} * 2",
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*problemgen.Template)
		field  string
	}{
		{"valid", func(*problemgen.Template) {}, ""},
		{"bad type", func(t *problemgen.Template) { t.Type = "essay" }, "type"},
		{"bad difficulty", func(t *problemgen.Template) { t.Difficulty = "insane" }, "difficulty"},
		{"no answer source", func(t *problemgen.Template) { t.CorrectAnswerFormula = "" }, "answersTemplate"},
		{"bad formula", func(t *problemgen.Template) { t.CorrectAnswerFormula = "{a} *" }, "correctAnswerFormula"},
		{"unknown variable in formula", func(t *problemgen.Template) { t.CorrectAnswerFormula = "{a} * {z}" }, "correctAnswerFormula"},
		{"unknown placeholder in hint", func(t *problemgen.Template) { t.Hints = []string{"{b}"} }, "hintsTemplates[0]"},
		{"exhausted domain", func(t *problemgen.Template) { t.Variables[0].Exclude = []int{1, 2, 3, 4, 5} }, "variables[0]"},
		{"duplicate variable", func(t *problemgen.Template) {
			t.Variables = append(t.Variables, problemgen.Variable{Name: "a", Min: 1, Max: 2})
		}, "variables[1]"},
		{"bad answer formula", func(t *problemgen.Template) {
			t.AnswersTemplate = []problemgen.AnswerTemplate{{TextFormula: "{a}", IsCorrectFormula: "eval(1)"}}
		}, "answersTemplate[0].isCorrectFormula"},
	}

	for _, tc := range tests {
		tpl := goodTemplate()
		tc.mutate(tpl)
		err := ValidateTemplate(tpl)
		if tc.field == "" {
			if err != nil {
				t.Errorf("%s: ValidateTemplate() = %v, want nil", tc.name, err)
			}
			continue
		}
		var te *TemplateError
		if !errors.As(err, &te) {
			t.Errorf("%s: ValidateTemplate() = %v, want TemplateError", tc.name, err)
			continue
		}
		if te.Field != tc.field {
			t.Errorf("%s: field = %q, want %q", tc.name, te.Field, tc.field)
		}
	}
}
