package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathlingo/internal/catalog"
	"github.com/abhisek/mathlingo/internal/chapters"
	"github.com/abhisek/mathlingo/internal/exam"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/progress"
	"github.com/abhisek/mathlingo/internal/session"
	"github.com/abhisek/mathlingo/internal/store"
)

type recorder struct {
	mu     sync.Mutex
	events []store.AnswerEventData
}

func (r *recorder) AppendAnswerEvent(_ context.Context, d store.AnswerEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, d)
	return nil
}

func (r *recorder) modes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Mode)
	}
	return out
}

func content() catalog.Content {
	return catalog.Content{
		Templates: []*problemgen.Template{{
			ID:                   "t1",
			ChapterID:            "chapter_1",
			Type:                 problemgen.TypeMultipleChoice,
			Difficulty:           problemgen.DifficultyEasy,
			Variables:            []problemgen.Variable{{Name: "a", Min: 2, Max: 9}},
			QuestionText:         "{a} × 3 = ?",
			CorrectAnswerFormula: "{a} * 3",
		}},
		Questions: []*problemgen.Question{
			{
				ID: "q1_1", ChapterID: "chapter_1", Type: problemgen.TypeMultipleChoice, Difficulty: problemgen.DifficultyEasy,
				Text: "3² + 4² = ?", Answers: []problemgen.Answer{{Text: "25", IsCorrect: true}, {Text: "49"}},
			},
			{
				ID: "q2_1", ChapterID: "chapter_2", Type: problemgen.TypeMultipleChoice, Difficulty: problemgen.DifficultyEasy,
				Text: "2 + 2 = ?", Answers: []problemgen.Answer{{Text: "4", IsCorrect: true}, {Text: "5"}},
			},
		},
	}
}

func newEngine(t *testing.T) (*Engine, *recorder) {
	t.Helper()
	path, err := chapters.FromIDs([]string{"chapter_1", "chapter_2"})
	require.NoError(t, err)
	rec := &recorder{}
	in := problemgen.NewInstantiator(problemgen.DefaultConfig(), rand.New(rand.NewPCG(1, 2)), nil)
	e := New(Deps{
		Catalog:      catalog.New(content()),
		Path:         path,
		Instantiator: in,
		Progress:     progress.NewManager(progress.NewMemoryRepo(), path.First(), nil),
		Events:       rec,
		BatchSize:    5,
	})
	return e, rec
}

func find(b *session.Batch, id string) *problemgen.Question {
	for _, q := range b.Questions() {
		if q.ID == id {
			return q
		}
	}
	return nil
}

func TestNextBatch_Access(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	b, err := e.NextBatch(ctx, "alice", "chapter_1", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 2, b.Count(session.CategoryNew))

	_, err = e.NextBatch(ctx, "alice", "chapter_2", 0)
	assert.ErrorIs(t, err, chapters.ErrChapterLocked)

	_, err = e.NextBatch(ctx, "alice", "chapter_9", 0)
	assert.ErrorIs(t, err, chapters.ErrUnknownChapter)
}

func TestSubmit_MistakeThenReview(t *testing.T) {
	e, rec := newEngine(t)
	ctx := context.Background()

	b, err := e.NextBatch(ctx, "alice", "chapter_1", 0)
	require.NoError(t, err)
	q := find(b, "q1_1")
	require.NotNil(t, q)

	fb, err := e.Submit(ctx, "alice", Submission{Question: q, Response: "49", Mode: ModePractice, Category: session.CategoryNew})
	require.NoError(t, err)
	assert.False(t, fb.Correct)
	assert.Equal(t, "25", fb.Expected)
	assert.Zero(t, fb.XPGained)
	require.NotNil(t, fb.Mistake)
	assert.Equal(t, 1, fb.Mistake.ErrorCount)

	rb, err := e.ReviewBatch(ctx, "alice", "", 0)
	require.NoError(t, err)
	require.Equal(t, 1, rb.Len())
	rq := rb.Items[0].Question
	assert.Equal(t, "q1_1", rq.ID)

	fb, err = e.Submit(ctx, "alice", Submission{Question: rq, Response: "25", Mode: ModeReview, Category: session.CategoryMistake})
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.True(t, fb.Reviewed)
	assert.Equal(t, progress.XPPerCorrect, fb.XPGained)
	assert.Equal(t, 1, fb.Streak)

	_, err = e.ReviewBatch(ctx, "alice", session.ScopeAll, 0)
	assert.ErrorIs(t, err, session.ErrNothingToDo)

	assert.Equal(t, []string{"practice", "review"}, rec.modes())
}

func TestSubmit_CompletesChapter(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	b, err := e.NextBatch(ctx, "bob", "chapter_1", 0)
	require.NoError(t, err)

	var last *Feedback
	for _, q := range b.Questions() {
		last, err = e.Submit(ctx, "bob", Submission{Question: q, Response: q.CorrectText(), Mode: ModePractice})
		require.NoError(t, err)
	}
	require.NotNil(t, last)
	assert.True(t, last.ChapterCompleted)
	assert.Equal(t, "chapter_2", last.NextChapterID)
	assert.Equal(t, progress.XPPerCorrect+progress.XPPerChapter, last.XPGained)
	assert.Equal(t, 2*progress.XPPerCorrect+progress.XPPerChapter, last.TotalXP)

	st, err := e.Chapters(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, st, 2)
	assert.Equal(t, chapters.StateCompleted, st[0].State)
	assert.Equal(t, 100, st[0].CompletionPercentage)
	assert.True(t, st[1].Unlocked)

	up, err := e.Progress(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "chapter_2", up.CurrentChapterID)

	_, err = e.NextBatch(ctx, "bob", "chapter_2", 0)
	assert.NoError(t, err)

	require.NoError(t, e.Reset(ctx, "bob"))
	_, err = e.NextBatch(ctx, "bob", "chapter_2", 0)
	assert.ErrorIs(t, err, chapters.ErrChapterLocked)
}

func TestSubmit_CompletesChapterOnWrongAnswers(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	b, err := e.NextBatch(ctx, "carol", "chapter_1", 0)
	require.NoError(t, err)

	var last *Feedback
	for _, q := range b.Questions() {
		last, err = e.Submit(ctx, "carol", Submission{Question: q, Response: "not it", Mode: ModePractice})
		require.NoError(t, err)
		assert.False(t, last.Correct)
	}
	require.NotNil(t, last)
	assert.True(t, last.ChapterCompleted)
	assert.Equal(t, "chapter_2", last.NextChapterID)
	assert.Equal(t, progress.XPPerChapter, last.XPGained)
}

func TestSubmit_Errors(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	_, err := e.Submit(ctx, "alice", Submission{})
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	_, err = e.Submit(ctx, "alice", Submission{Question: &problemgen.Question{ID: "x", ChapterID: "nowhere"}})
	assert.ErrorIs(t, err, chapters.ErrUnknownChapter)
}

func TestExam(t *testing.T) {
	e, rec := newEngine(t)
	ctx := context.Background()

	ex, err := e.Exam(ctx, nil, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, exam.Durations[0], ex.Duration)
	assert.Len(t, ex.Questions, 3)

	responses := []exam.Response{{InstanceID: ex.Questions[0].InstanceID, Text: ex.Questions[0].CorrectText()}}
	res, err := e.GradeExam(ctx, "carol", ex, responses, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, []string{"exam"}, rec.modes())

	up, err := e.Progress(ctx, "carol")
	require.NoError(t, err)
	assert.Zero(t, up.TotalXP)

	_, err = e.Exam(ctx, []string{"chapter_9"}, 5, time.Minute)
	assert.True(t, errors.Is(err, chapters.ErrUnknownChapter))
}
