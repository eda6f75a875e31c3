// Package ui renders questions, feedback and reports for the terminal.
package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathlingo/internal/chapters"
	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/exam"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/session"
	"github.com/abhisek/mathlingo/internal/ui/theme"
)

// ProgressBar renders a horizontal bar of width cells, label first.
// percent is in [0, 1].
func ProgressBar(label string, percent float64, width int) string {
	var b strings.Builder
	if label != "" {
		b.WriteString(theme.Body.Render(label) + "  ")
	}
	barWidth := max(width-lipgloss.Width(b.String())-6, 4)
	filled := min(max(int(float64(barWidth)*percent), 0), barWidth)

	b.WriteString(theme.ProgressFilled.Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d%%", int(percent*100))))
	return b.String()
}

var categoryLabels = map[session.Category]string{
	session.CategoryMistake: "à revoir",
	session.CategoryNew:     "nouvelle",
	session.CategoryReview:  "révision",
}

// Question renders the n-th of total questions with its numbered choices.
// total <= 0 leaves the count out.
func Question(q *problemgen.Question, n, total int, cat session.Category) string {
	var b strings.Builder
	header := fmt.Sprintf("Question %d", n)
	if total > 0 {
		header += fmt.Sprintf("/%d", total)
	}
	if l, ok := categoryLabels[cat]; ok {
		header += " · " + l
	}
	b.WriteString(theme.Subtitle.Render(header) + "\n")
	b.WriteString(theme.Title.Render(q.Text) + "\n")
	if q.RealLifeText != "" {
		b.WriteString(theme.Hint.Render(q.RealLifeText) + "\n")
	}
	if q.IsMultipleChoice() {
		b.WriteString("\n")
		for i, a := range q.Answers {
			b.WriteString(theme.Choice.Render(fmt.Sprintf("  %d)  %s", i+1, a.Text)) + "\n")
		}
	}
	return theme.Card.Render(strings.TrimRight(b.String(), "\n"))
}

// Feedback renders the result of one answer.
func Feedback(fb *engine.Feedback) string {
	var b strings.Builder
	if fb.Correct {
		b.WriteString(theme.Correct.Render("✓ Correct !"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Incorrect.") + " Réponse : " + theme.Body.Render(fb.Expected))
	}
	if fb.XPGained > 0 {
		b.WriteString("  " + theme.XP.Render(fmt.Sprintf("+%d XP", fb.XPGained)))
	}
	b.WriteString("\n")
	if fb.Explanation != "" {
		b.WriteString(theme.Hint.Render(fb.Explanation) + "\n")
	}
	if fb.Reviewed {
		b.WriteString(theme.Completed.Render("Erreur corrigée.") + "\n")
	}
	if fb.ChapterCompleted {
		msg := "Chapitre terminé !"
		if fb.NextChapterID != "" {
			msg += " Chapitre suivant débloqué : " + fb.NextChapterID
		}
		b.WriteString(theme.XP.Render(msg) + "\n")
	}
	return b.String()
}

func stateStyle(s chapters.State) lipgloss.Style {
	switch s {
	case chapters.StateCompleted:
		return theme.Completed
	case chapters.StateLocked:
		return theme.Locked
	case chapters.StateInProgress:
		return theme.InProgress
	default:
		return theme.Body
	}
}

// Chapters renders the learning path with one progress bar per chapter.
func Chapters(st []chapters.Status, width int) string {
	var b strings.Builder
	for _, s := range st {
		style := stateStyle(s.State)
		b.WriteString(style.Render(fmt.Sprintf("%s %s  %s", s.State.Icon(), s.ID, s.Title)))
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  [%s] score %d%%", s.StateLabel, s.Score)) + "\n")
		if s.Unlocked && s.TotalQuestions > 0 {
			label := fmt.Sprintf("   %d/%d", s.CompletedQuestions, s.TotalQuestions)
			b.WriteString(ProgressBar(label, float64(s.CompletionPercentage)/100, width) + "\n")
		}
	}
	return b.String()
}

// Summary renders the end of a practice or review run.
func Summary(s *session.Summary) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Bilan de la séance") + "\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("%d/%d correctes (%d%%) en %s",
		s.Correct, s.Total, int(s.Accuracy*100+0.5), s.Duration.Round(time.Second))) + "\n")
	if s.XPGained > 0 {
		b.WriteString(theme.XP.Render(fmt.Sprintf("+%d XP", s.XPGained)) + "\n")
	}
	for _, cat := range slices.Sorted(maps.Keys(s.ByCategory)) {
		cr := s.ByCategory[cat]
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %s : %d/%d", categoryLabels[cat], cr.Correct, cr.Attempted)) + "\n")
	}
	return b.String()
}

// ExamResult renders a graded exam, per chapter then per wrong answer.
func ExamResult(r *exam.Result) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Résultat de l'examen") + "\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Score : %d%% (%d/%d) en %s",
		r.Score, r.Correct, r.Total, r.Elapsed.Round(time.Second))) + "\n")
	for _, ch := range slices.Sorted(maps.Keys(r.PerChapter)) {
		cs := r.PerChapter[ch]
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %s : %d/%d (%d%%)", ch, cs.Correct, cs.Total, cs.Score)) + "\n")
	}
	for _, a := range r.Answers {
		if a.Correct {
			continue
		}
		resp := a.Response
		if !a.Answered {
			resp = "sans réponse"
		}
		b.WriteString(theme.Incorrect.Render("  ✗ "+a.QuestionID) +
			theme.Subtitle.Render(fmt.Sprintf("  %s → %s", resp, a.Expected)) + "\n")
	}
	return b.String()
}
