package problemgen

// QuestionType is the answer modality of a template or question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeFreeInput      QuestionType = "free_input"
	TypeTrueFalse      QuestionType = "true_false"
)

// Difficulty is the template's declared difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// AnswerCount returns how many options a multiple-choice question of this
// difficulty presents: easy 2, medium 3, hard 4. Unknown values use medium.
func (d Difficulty) AnswerCount() int {
	switch d {
	case DifficultyEasy:
		return 2
	case DifficultyHard:
		return 4
	default:
		return 3
	}
}

// Variable defines the domain of one random integer.
type Variable struct {
	Name    string `json:"name" yaml:"name"`
	Min     int    `json:"min" yaml:"min"`
	Max     int    `json:"max" yaml:"max"`
	Step    int    `json:"step,omitempty" yaml:"step,omitempty"`
	Exclude []int  `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// AnswerTemplate is one candidate answer; both fields are formulas.
// The answer is correct when IsCorrectFormula evaluates to exactly 1.
type AnswerTemplate struct {
	TextFormula      string `json:"textFormula" yaml:"textFormula"`
	IsCorrectFormula string `json:"isCorrectFormula" yaml:"isCorrectFormula"`
}

// Template is an immutable, parameterized question definition.
type Template struct {
	ID                   string           `json:"id" yaml:"id"`
	ChapterID            string           `json:"chapterId" yaml:"chapterId"`
	Type                 QuestionType     `json:"type" yaml:"type"`
	Difficulty           Difficulty       `json:"difficulty" yaml:"difficulty"`
	Variables            []Variable       `json:"variables" yaml:"variables"`
	QuestionText         string           `json:"questionTemplate" yaml:"questionTemplate"`
	RealLifeText         string           `json:"realLifeTemplate,omitempty" yaml:"realLifeTemplate,omitempty"`
	AnswersTemplate      []AnswerTemplate `json:"answersTemplate,omitempty" yaml:"answersTemplate,omitempty"`
	CorrectAnswerFormula string           `json:"correctAnswerFormula,omitempty" yaml:"correctAnswerFormula,omitempty"`
	Explanation          string           `json:"explanationTemplate,omitempty" yaml:"explanationTemplate,omitempty"`
	RealLifeExplanation  string           `json:"realLifeExplanationTemplate,omitempty" yaml:"realLifeExplanationTemplate,omitempty"`
	Hints                []string         `json:"hintsTemplates,omitempty" yaml:"hintsTemplates,omitempty"`
	Tags                 []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// VariableNames returns the declared variable names in order.
func (t *Template) VariableNames() []string {
	names := make([]string, len(t.Variables))
	for i, v := range t.Variables {
		names[i] = v.Name
	}
	return names
}

// Answer is one resolved multiple-choice option.
type Answer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is a concrete, presentable question. Instances are ephemeral;
// only ID (the template or static question id) is persisted.
type Question struct {
	// ID is the template id for generated questions, or the static
	// question id. Mistakes and progress are keyed by it.
	ID string `json:"id"`

	// InstanceID identifies this particular draw.
	InstanceID string `json:"instanceId,omitempty"`

	ChapterID  string       `json:"chapterId"`
	Type       QuestionType `json:"type"`
	Difficulty Difficulty   `json:"difficulty"`

	Text         string `json:"question"`
	RealLifeText string `json:"realLifeQuestion,omitempty"`

	// Answers is populated for multiple-choice questions.
	Answers []Answer `json:"answers,omitempty"`

	// CorrectAnswer is populated for free-input questions.
	CorrectAnswer string `json:"correctAnswer,omitempty"`

	Explanation         string   `json:"explanation,omitempty"`
	RealLifeExplanation string   `json:"realLifeExplanation,omitempty"`
	Hints               []string `json:"hints,omitempty"`
	Tags                []string `json:"tags,omitempty"`

	// Variables holds the sampled bindings (nil for static questions).
	Variables map[string]int `json:"variables,omitempty"`

	// FormulaErrors collects non-fatal evaluation failures; each failing
	// formula contributed 0.
	FormulaErrors []error `json:"-"`
}

// IsMultipleChoice reports whether the learner picks from Answers.
func (q *Question) IsMultipleChoice() bool {
	return q.Type != TypeFreeInput
}

// CorrectText returns the text of the correct answer for either modality.
func (q *Question) CorrectText() string {
	if q.Type == TypeFreeInput {
		return q.CorrectAnswer
	}
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a.Text
		}
	}
	return ""
}

// Clone returns a deep copy, so static questions can be handed out without
// sharing slices.
func (q *Question) Clone() *Question {
	c := *q
	c.Answers = append([]Answer(nil), q.Answers...)
	c.Hints = append([]string(nil), q.Hints...)
	c.Tags = append([]string(nil), q.Tags...)
	c.FormulaErrors = append([]error(nil), q.FormulaErrors...)
	if q.Variables != nil {
		c.Variables = make(map[string]int, len(q.Variables))
		for k, v := range q.Variables {
			c.Variables[k] = v
		}
	}
	return &c
}
