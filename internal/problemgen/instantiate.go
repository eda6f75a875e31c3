package problemgen

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/mathlingo/internal/formula"
	"github.com/abhisek/mathlingo/internal/logger"
)

// Instantiator turns templates into concrete questions. Every call samples
// fresh variable values.
type Instantiator struct {
	config  Config
	rng     Random
	sampler *Sampler
	log     *logger.Logger
}

// NewInstantiator creates an Instantiator. rng must not be nil.
func NewInstantiator(cfg Config, rng Random, log *logger.Logger) *Instantiator {
	return &Instantiator{
		config:  cfg,
		rng:     rng,
		sampler: NewSampler(rng),
		log:     logger.OrNop(log),
	}
}

// Random exposes the source so callers shuffle with the same seed.
func (in *Instantiator) Random() Random { return in.rng }

// Config returns the instantiator's configuration.
func (in *Instantiator) Config() Config { return in.config }

// Instantiate produces a question using the template's declared type.
func (in *Instantiator) Instantiate(t *Template) (*Question, error) {
	return in.instantiate(t, -1)
}

// InstantiateAt produces a question whose type follows the learner's
// position in the chapter: indexes 0-1 are multiple-choice, 2-4 alternate
// (even free-input, odd multiple-choice), and from 5 on free-input is drawn
// with probability 0.8. A negative index behaves like Instantiate.
func (in *Instantiator) InstantiateAt(t *Template, sequenceIndex int) (*Question, error) {
	return in.instantiate(t, sequenceIndex)
}

func (in *Instantiator) instantiate(t *Template, seq int) (*Question, error) {
	vars, err := in.sampler.SampleAll(t.Variables)
	if err != nil {
		return nil, &GenerationError{TemplateID: t.ID, Err: err}
	}

	q := &Question{
		ID:         t.ID,
		InstanceID: uuid.NewString(),
		ChapterID:  t.ChapterID,
		Difficulty: t.Difficulty,
		Type:       in.resolveType(t, seq),
		Tags:       append([]string(nil), t.Tags...),
	}

	ev := newEvaluation(t.ID, in.log)
	if q.Type == TypeFreeInput {
		q.CorrectAnswer = in.freeInputAnswer(t, vars, ev)
	} else {
		q.Answers, vars, ev = in.multipleChoice(t, vars)
	}
	q.Variables = vars
	q.FormulaErrors = ev.errs

	q.Text = substituteText(t.QuestionText, vars)
	q.RealLifeText = substituteText(t.RealLifeText, vars)
	q.Explanation = substituteText(t.Explanation, vars)
	q.RealLifeExplanation = substituteText(t.RealLifeExplanation, vars)
	if len(t.Hints) > 0 {
		q.Hints = make([]string, len(t.Hints))
		for i, h := range t.Hints {
			q.Hints[i] = substituteText(h, vars)
		}
	}

	if verr := Validate(q, t, in.config.Validators); verr != nil {
		return nil, &GenerationError{TemplateID: t.ID, Err: verr}
	}
	return q, nil
}

// Present prepares a static question for serving. The copy gets a fresh
// instance id. When free input is disabled, a free-input question with a
// numeric answer is offered as multiple-choice with generated distractors;
// a non-numeric one stays free-input.
func (in *Instantiator) Present(q *Question) *Question {
	c := q.Clone()
	c.InstanceID = uuid.NewString()
	if c.Type != TypeFreeInput || in.config.FreeInputEnabled {
		return c
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(c.CorrectAnswer), 64); err != nil {
		return c
	}
	answers := in.topUp([]Answer{{Text: strings.TrimSpace(c.CorrectAnswer), IsCorrect: true}}, c.Difficulty.AnswerCount())
	Shuffle(in.rng, answers)
	c.Type = TypeMultipleChoice
	c.Answers = answers
	c.CorrectAnswer = ""
	return c
}

func (in *Instantiator) resolveType(t *Template, seq int) QuestionType {
	if !in.config.FreeInputEnabled {
		return TypeMultipleChoice
	}
	if seq >= 0 {
		switch {
		case seq <= 1:
			return TypeMultipleChoice
		case seq <= 4:
			if seq%2 == 0 {
				return TypeFreeInput
			}
			return TypeMultipleChoice
		default:
			if in.rng.Float64() < 0.8 {
				return TypeFreeInput
			}
			return TypeMultipleChoice
		}
	}
	if t.Type == TypeFreeInput {
		return TypeFreeInput
	}
	return TypeMultipleChoice
}

func (in *Instantiator) freeInputAnswer(t *Template, vars map[string]int, ev *evaluation) string {
	if t.CorrectAnswerFormula != "" {
		return formatNumber(ev.eval(t.CorrectAnswerFormula, vars))
	}
	for _, at := range t.AnswersTemplate {
		if ev.eval(at.IsCorrectFormula, vars) == 1 {
			return formatNumber(ev.eval(at.TextFormula, vars))
		}
	}
	return ""
}

// substituteText replaces {name} placeholders with plain integer values.
func substituteText(s string, vars map[string]int) string {
	if s == "" || len(vars) == 0 {
		return s
	}
	pairs := make([]string, 0, 2*len(vars))
	for name, v := range vars {
		pairs = append(pairs, "{"+name+"}", strconv.Itoa(v))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// evaluation collects formula failures for one instantiation attempt.
type evaluation struct {
	templateID string
	log        *logger.Logger
	errs       []error
}

func newEvaluation(templateID string, log *logger.Logger) *evaluation {
	return &evaluation{templateID: templateID, log: log}
}

func (e *evaluation) eval(expr string, vars map[string]int) float64 {
	bindings := make(map[string]float64, len(vars))
	for k, v := range vars {
		bindings[k] = float64(v)
	}
	v, err := formula.Evaluate(expr, bindings)
	if err != nil {
		e.log.Warn("formula evaluation failed", "template_id", e.templateID, "error", err)
		e.errs = append(e.errs, err)
	}
	return v
}
