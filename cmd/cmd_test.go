package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathlingo/internal/catalog"
	"github.com/abhisek/mathlingo/internal/chapters"
	"github.com/abhisek/mathlingo/internal/config"
	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/progress"
	"github.com/abhisek/mathlingo/internal/session"
	"github.com/abhisek/mathlingo/internal/ui/quiz"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Engine.Seed = 7
	path := chapters.Default()
	return engine.New(engine.Deps{
		Catalog:      catalog.New(catalog.Fallback()),
		Path:         path,
		Instantiator: newInstantiator(cfg, nil),
		Progress:     progress.NewManager(progress.NewMemoryRepo(), path.First(), nil),
	})
}

// typeLine sends text key by key then enter, running the submission the
// enter starts.
func typeLine(m *quiz.Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil && !m.Done() {
		m.Update(cmd())
	}
}

func TestQuiz_AnswersThenQuits(t *testing.T) {
	eng := testEngine(t)
	ctx := context.Background()
	b, err := eng.NextBatch(ctx, "alice", "chapter_1", 3)
	require.NoError(t, err)
	require.GreaterOrEqual(t, b.Len(), 3)

	m := quiz.NewPractice(ctx, b, submitter(eng, "alice", engine.ModePractice))
	typeLine(m, b.Items[0].Question.CorrectText())
	m.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	typeLine(m, "")
	typeLine(m, "q")
	require.True(t, m.Done())
	require.NoError(t, m.Err())

	sum := m.Summary()
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Correct)
	assert.Equal(t, progress.XPPerCorrect, sum.XPGained)

	up, err := eng.Progress(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, progress.XPPerCorrect, up.TotalXP)
}

func TestQuiz_OptionNumberAnswers(t *testing.T) {
	eng := testEngine(t)
	ctx := context.Background()
	b, err := eng.NextBatch(ctx, "dana", "chapter_1", 0)
	require.NoError(t, err)

	// An option whose text is itself a small number would shadow its position.
	number := func(q *problemgen.Question) string {
		i := slices.IndexFunc(q.Answers, func(a problemgen.Answer) bool { return a.IsCorrect })
		return strconv.Itoa(i + 1)
	}
	idx := slices.IndexFunc(b.Items, func(it session.Item) bool {
		q := it.Question
		return q.IsMultipleChoice() && number(q) != "0" &&
			!slices.ContainsFunc(q.Answers, func(a problemgen.Answer) bool { return a.Text == number(q) })
	})
	require.GreaterOrEqual(t, idx, 0, "no suitable multiple-choice question in chapter_1")
	it := b.Items[idx]

	single := &session.Batch{ChapterID: b.ChapterID, Items: []session.Item{it}}
	m := quiz.NewPractice(ctx, single, submitter(eng, "dana", engine.ModePractice))
	typeLine(m, number(it.Question))
	require.NoError(t, m.Err())

	sum := m.Summary()
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Correct, "option %s of %v", number(it.Question), it.Question.Answers)
}

func TestQuiz_EmptyBatch(t *testing.T) {
	eng := testEngine(t)
	m := quiz.NewPractice(context.Background(), &session.Batch{}, submitter(eng, "bob", engine.ModeReview))
	assert.True(t, m.Done())

	sum := m.Summary()
	assert.Zero(t, sum.Total)
	assert.Empty(t, sum.ByCategory[session.CategoryNew])
}

func TestRunQuiz_ScriptedInput(t *testing.T) {
	eng := testEngine(t)
	ctx := context.Background()
	b, err := eng.NextBatch(ctx, "erin", "chapter_1", 2)
	require.NoError(t, err)

	runCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	c := &cobra.Command{}
	c.SetContext(runCtx)
	c.SetIn(bytes.NewBufferString("\x03"))
	c.SetOut(&bytes.Buffer{})

	m, err := runQuiz(c, quiz.NewPractice(ctx, b, submitter(eng, "erin", engine.ModePractice)))
	require.NoError(t, err)
	assert.True(t, m.Done())
	assert.Zero(t, m.Summary().Total)
}

const validFeed = `version: v1.0.0
templates:
  - id: c1_mult
    chapterId: chapter_1
    type: multiple_choice
    difficulty: easy
    variables:
      - {name: a, min: 2, max: 9}
    questionTemplate: "{a} × 3 = ?"
    correctAnswerFormula: "{a} * 3"
  - id: c1_broken
    chapterId: chapter_1
    type: multiple_choice
    difficulty: easy
    variables:
      - {name: a, min: 2, max: 9}
    questionTemplate: "{a} + {b} = ?"
    correctAnswerFormula: "{a} + {b}"
`

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chapter_1-templates.yaml"), []byte(validFeed), 0o644))

	settings.cfg = config.Default()
	settings.cfg.Chapters = []string{"chapter_1", "chapter_2"}
	settings.log = logger.Nop()

	var out bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)
	c.SetContext(context.Background())

	problems := validateDir(c, dir, 5)
	assert.Equal(t, 1, problems, out.String())
	assert.Contains(t, out.String(), "1 template(s) ok")
	assert.Contains(t, out.String(), "c1_broken")
	assert.Contains(t, out.String(), "no questions feed")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"équation", 2, "éq"},
	}
	for _, tc := range tests {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
