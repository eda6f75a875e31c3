package ui

import (
	"strings"
	"testing"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathlingo/internal/chapters"
	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/exam"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/progress"
	"github.com/abhisek/mathlingo/internal/session"
)

func TestProgressBar_Width(t *testing.T) {
	for _, p := range []float64{0, 0.5, 1, 1.5, -1} {
		got := lipgloss.Width(ProgressBar("", p, 40))
		if got > 40 {
			t.Errorf("ProgressBar(%v) width = %d, want <= 40", p, got)
		}
	}
}

func TestQuestion(t *testing.T) {
	q := &problemgen.Question{
		Type:    problemgen.TypeMultipleChoice,
		Text:    "3² + 4² = ?",
		Answers: []problemgen.Answer{{Text: "25", IsCorrect: true}, {Text: "49"}},
	}
	out := Question(q, 2, 5, session.CategoryMistake)
	for _, want := range []string{"Question 2/5 · à revoir", "3² + 4² = ?", "1)  25", "2)  49"} {
		if !strings.Contains(out, want) {
			t.Errorf("Question() missing %q in:\n%s", want, out)
		}
	}
}

func TestFeedback(t *testing.T) {
	out := Feedback(&engine.Feedback{Correct: false, Expected: "25", Explanation: "9 + 16 = 25"})
	if !strings.Contains(out, "25") || !strings.Contains(out, "9 + 16 = 25") {
		t.Errorf("Feedback() = %q", out)
	}
	out = Feedback(&engine.Feedback{Correct: true, XPGained: 110, ChapterCompleted: true, NextChapterID: "chapter_2"})
	if !strings.Contains(out, "+110 XP") || !strings.Contains(out, "chapter_2") {
		t.Errorf("Feedback() = %q", out)
	}
}

func TestChapters(t *testing.T) {
	path := chapters.Default()
	up := progress.New("alice", path.First(), time.Now())
	out := Chapters(path.Status(up, func(string) int { return 4 }), 60)
	for _, id := range path.IDs() {
		if !strings.Contains(out, id) {
			t.Errorf("Chapters() missing %s", id)
		}
	}
}

func TestSummaryAndExamResult(t *testing.T) {
	s := session.BuildSummary([]session.Result{
		{QuestionID: "a", Category: session.CategoryNew, Correct: true, XPGained: 10},
		{QuestionID: "b", Category: session.CategoryMistake},
	}, 90*time.Second)
	if out := Summary(s); !strings.Contains(out, "1/2 correctes (50%) en 1m30s") {
		t.Errorf("Summary() = %q", out)
	}

	r := &exam.Result{
		Total: 2, Correct: 1, Score: 50,
		PerChapter: map[string]exam.ChapterScore{"chapter_1": {Total: 2, Correct: 1, Score: 50}},
		Answers: []exam.Answer{
			{QuestionID: "q1", Correct: true, Answered: true},
			{QuestionID: "q2", Expected: "7"},
		},
	}
	out := ExamResult(r)
	if !strings.Contains(out, "sans réponse → 7") || strings.Contains(out, "q1") {
		t.Errorf("ExamResult() = %q", out)
	}
}
