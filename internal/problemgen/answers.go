package problemgen

import (
	"math"
	"strconv"
)

// multipleChoice builds the option list. When the template's answer set
// collapses (fewer than two distinct options, or none correct) every
// variable is shifted by +1 per attempt, up to MaxRegenerateAttempts; after
// that the best attempt seen is used. It returns the bindings the answers
// were computed from.
func (in *Instantiator) multipleChoice(t *Template, vars map[string]int) ([]Answer, map[string]int, *evaluation) {
	n := t.Difficulty.AnswerCount()

	if len(t.AnswersTemplate) == 0 {
		ev := newEvaluation(t.ID, in.log)
		return in.formulaChoices(t, vars, n, ev), vars, ev
	}

	var (
		best     []Answer
		bestVars = vars
		bestEval *evaluation
	)
	for attempt := 0; attempt <= in.config.MaxRegenerateAttempts; attempt++ {
		cur := vars
		if attempt > 0 {
			cur = shiftVars(vars, attempt)
			in.log.Debug("regenerating answer set", "template_id", t.ID, "attempt", attempt)
		}
		ev := newEvaluation(t.ID, in.log)
		set := in.evaluateAnswers(t, cur, ev)
		if bestEval == nil || betterAnswerSet(set, best) {
			best, bestVars, bestEval = set, cur, ev
		}
		if len(set) >= 2 && countCorrect(set) == 1 {
			break
		}
	}
	if len(best) < 2 || countCorrect(best) != 1 {
		in.log.Warn("answer set still degenerate after regeneration",
			"template_id", t.ID, "answers", len(best), "max_attempts", in.config.MaxRegenerateAttempts)
	}

	answers := in.truncate(best, n)
	answers = in.topUp(answers, n)
	Shuffle(in.rng, answers)
	return answers, bestVars, bestEval
}

// evaluateAnswers resolves each answer template, drops duplicate texts
// (a correct entry replaces an incorrect one with the same text) and keeps
// only the first correct entry.
func (in *Instantiator) evaluateAnswers(t *Template, vars map[string]int, ev *evaluation) []Answer {
	out := make([]Answer, 0, len(t.AnswersTemplate))
	index := make(map[string]int, len(t.AnswersTemplate))
	for _, at := range t.AnswersTemplate {
		a := Answer{
			Text:      formatNumber(ev.eval(at.TextFormula, vars)),
			IsCorrect: ev.eval(at.IsCorrectFormula, vars) == 1,
		}
		if i, dup := index[a.Text]; dup {
			if a.IsCorrect && !out[i].IsCorrect {
				out[i].IsCorrect = true
			}
			continue
		}
		index[a.Text] = len(out)
		out = append(out, a)
	}

	seenCorrect := false
	kept := out[:0]
	for _, a := range out {
		if a.IsCorrect {
			if seenCorrect {
				continue
			}
			seenCorrect = true
		}
		kept = append(kept, a)
	}
	return kept
}

// truncate keeps the correct answer plus the first n-1 incorrect answers
// after shuffling them.
func (in *Instantiator) truncate(set []Answer, n int) []Answer {
	var correct []Answer
	var incorrect []Answer
	for _, a := range set {
		if a.IsCorrect {
			correct = append(correct, a)
		} else {
			incorrect = append(incorrect, a)
		}
	}
	Shuffle(in.rng, incorrect)

	out := make([]Answer, 0, n)
	out = append(out, correct...)
	for _, a := range incorrect {
		if len(out) >= n {
			break
		}
		out = append(out, a)
	}
	return out
}

// topUp fills a short option list with numeric perturbations of the
// correct value. Non-numeric answers are left as they are.
func (in *Instantiator) topUp(answers []Answer, n int) []Answer {
	if len(answers) >= n {
		return answers
	}
	var correct string
	for _, a := range answers {
		if a.IsCorrect {
			correct = a.Text
		}
	}
	c, err := strconv.ParseFloat(correct, 64)
	if err != nil {
		return answers
	}
	present := make(map[string]bool, len(answers))
	for _, a := range answers {
		present[a.Text] = true
	}
	for _, d := range in.distractors(c, present) {
		if len(answers) >= n {
			break
		}
		answers = append(answers, Answer{Text: d})
	}
	return answers
}

// formulaChoices derives options from CorrectAnswerFormula alone: the
// correct value plus n-1 shuffled numeric distractors.
func (in *Instantiator) formulaChoices(t *Template, vars map[string]int, n int, ev *evaluation) []Answer {
	c := ev.eval(t.CorrectAnswerFormula, vars)
	correct := formatNumber(c)

	answers := []Answer{{Text: correct, IsCorrect: true}}
	for _, d := range in.distractors(c, map[string]bool{correct: true}) {
		if len(answers) >= n {
			break
		}
		answers = append(answers, Answer{Text: d})
	}
	Shuffle(in.rng, answers)
	return answers
}

// distractors returns shuffled, distinct texts of c+-1..5, c*2, c/2,
// c*1.5 and c+10, skipping values already in exclude. Non-positive values
// are skipped when c itself is positive.
func (in *Instantiator) distractors(c float64, exclude map[string]bool) []string {
	candidates := make([]float64, 0, 14)
	for d := 1.0; d <= 5; d++ {
		candidates = append(candidates, c+d, c-d)
	}
	candidates = append(candidates, c*2, c/2, c*1.5, c+10)

	seen := make(map[string]bool, len(exclude)+len(candidates))
	for k := range exclude {
		seen[k] = true
	}
	out := make([]string, 0, len(candidates))
	for _, v := range candidates {
		if v == c || (c > 0 && v <= 0) {
			continue
		}
		s := formatNumber(v)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	Shuffle(in.rng, out)
	return out
}

func shiftVars(vars map[string]int, by int) map[string]int {
	out := make(map[string]int, len(vars))
	for k, v := range vars {
		out[k] = v + by
	}
	return out
}

func countCorrect(set []Answer) int {
	n := 0
	for _, a := range set {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// betterAnswerSet prefers sets with a correct answer, then more options.
func betterAnswerSet(a, b []Answer) bool {
	ac, bc := countCorrect(a) > 0, countCorrect(b) > 0
	if ac != bc {
		return ac
	}
	return len(a) > len(b)
}

// formatNumber renders integral values without a fractional part and other
// values rounded to 10 decimal places, so 0.1+0.2 prints as "0.3".
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	r := math.Round(v*1e10) / 1e10
	return strconv.FormatFloat(r, 'f', -1, 64)
}
