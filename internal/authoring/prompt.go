package authoring

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write parameterized exercise templates for a French lycée "seconde" mathematics course.

Rules:
- Write question, explanation and hint texts in French.
- Every random quantity is an integer variable with an inclusive range [min, max], an optional step and optional excluded values.
- Refer to variables as {name} in texts and formulas.
- Formulas use only numbers, {name} references, + - * / ^ ( ) and the functions sqrt, abs, floor, ceil, round and pow(x, y).
- For free_input templates set correctAnswerFormula and leave answersTemplate empty.
- For multiple_choice templates either set correctAnswerFormula (distractors are generated) or list answersTemplate with isCorrectFormula "1" on the correct option and "0" on the others.
- Choose ranges so that answers stay readable (integers or short decimals) and distinct options never collapse.
- Leave optional text fields as empty strings and optional lists empty instead of inventing filler.
- Ids must be unique, lowercase, and start with "tpl_".`

func buildUserMessage(in DraftInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chapter: %s\n", in.ChapterID)
	if in.ChapterTitle != "" {
		fmt.Fprintf(&b, "Chapter title: %s\n", in.ChapterTitle)
	}
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	fmt.Fprintf(&b, "Number of templates: %d\n", in.Count)

	b.WriteString("\nIds already in use (do not reuse):\n")
	if len(in.ExistingIDs) == 0 {
		b.WriteString("None\n")
	}
	for _, id := range in.ExistingIDs {
		fmt.Fprintf(&b, "- %s\n", id)
	}
	return b.String()
}
