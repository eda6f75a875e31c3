package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/mathlingo/internal/formula"
	"github.com/abhisek/mathlingo/internal/problemgen"
)

// TemplateError is one consistency problem found in a template.
type TemplateError struct {
	TemplateID string
	Field      string
	Message    string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %s: %s", e.TemplateID, e.Field, e.Message)
}

// ValidateTemplate checks that a decoded template can be instantiated:
// enum fields, variable domains, every formula parsing with all variables
// bound, and placeholders naming declared variables. All problems are
// returned joined.
func ValidateTemplate(t *problemgen.Template) error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &TemplateError{TemplateID: t.ID, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if t.ID == "" {
		add("id", "must not be empty")
	}
	if t.ChapterID == "" {
		add("chapterId", "must not be empty")
	}
	switch t.Type {
	case problemgen.TypeMultipleChoice, problemgen.TypeFreeInput, problemgen.TypeTrueFalse:
	default:
		add("type", "unknown question type %q", t.Type)
	}
	switch t.Difficulty {
	case problemgen.DifficultyEasy, problemgen.DifficultyMedium, problemgen.DifficultyHard:
	default:
		add("difficulty", "unknown difficulty %q", t.Difficulty)
	}
	if t.QuestionText == "" {
		add("questionTemplate", "must not be empty")
	}

	names := make([]string, 0, len(t.Variables))
	sampler := problemgen.NewSampler(rand.New(rand.NewPCG(1, 1)))
	for i, v := range t.Variables {
		field := fmt.Sprintf("variables[%d]", i)
		if v.Name == "" {
			add(field, "name must not be empty")
			continue
		}
		if slices.Contains(names, v.Name) {
			add(field, "duplicate variable %q", v.Name)
			continue
		}
		names = append(names, v.Name)
		if _, err := sampler.Sample(v); err != nil {
			add(field, "%v", err)
		}
	}

	if len(t.AnswersTemplate) == 0 && t.CorrectAnswerFormula == "" {
		add("answersTemplate", "either answersTemplate or correctAnswerFormula is required")
	}
	checkFormula := func(field, expr string) {
		if err := formula.Check(expr, names); err != nil {
			add(field, "%v", err)
		}
	}
	for i, at := range t.AnswersTemplate {
		checkFormula(fmt.Sprintf("answersTemplate[%d].textFormula", i), at.TextFormula)
		checkFormula(fmt.Sprintf("answersTemplate[%d].isCorrectFormula", i), at.IsCorrectFormula)
	}
	if t.CorrectAnswerFormula != "" {
		checkFormula("correctAnswerFormula", t.CorrectAnswerFormula)
	}

	texts := map[string]string{
		"questionTemplate":            t.QuestionText,
		"realLifeTemplate":            t.RealLifeText,
		"explanationTemplate":         t.Explanation,
		"realLifeExplanationTemplate": t.RealLifeExplanation,
	}
	for i, h := range t.Hints {
		texts[fmt.Sprintf("hintsTemplates[%d]", i)] = h
	}
	fields := make([]string, 0, len(texts))
	for f := range texts {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		for _, p := range formula.Placeholders(texts[f]) {
			if !slices.Contains(names, p) {
				add(f, "placeholder {%s} has no variable", p)
			}
		}
	}

	return errors.Join(errs...)
}
