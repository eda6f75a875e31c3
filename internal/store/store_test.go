package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathlingo/internal/mistakes"
	"github.com/abhisek/mathlingo/internal/progress"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode stays "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathlingo.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.EventRepo().AppendAnswerEvent(context.Background(), AnswerEventData{LearnerID: "l", ChapterID: "c", QuestionID: "q", Mode: "practice"}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	events, err := s2.EventRepo().QueryAnswerEvents(context.Background(), "l", QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, events, 1)

	var mode string
	require.NoError(t, s2.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendAnswerEvent(ctx, AnswerEventData{LearnerID: "l", ChapterID: "chapter_1", QuestionID: "q1", Mode: "practice"}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "m", Purpose: "draft", Success: true}))
	require.NoError(t, repo.AppendAnswerEvent(ctx, AnswerEventData{LearnerID: "l", ChapterID: "chapter_1", QuestionID: "q2", Mode: "practice"}))

	answers, err := repo.QueryAnswerEvents(ctx, "l", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, answers, 2)
	llm, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, llm, 1)

	// Newest first.
	assert.Equal(t, "q2", answers[0].QuestionID)
	assert.Equal(t, int64(3), answers[0].Sequence)
	assert.Equal(t, int64(2), llm[0].Sequence)
	assert.Equal(t, int64(1), answers[1].Sequence)
}

func TestProgressRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	got, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got, "missing learner loads as nil")

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p := progress.New("alice", "chapter_1", now)
	p.TotalXP = 30
	p.Streak = 2
	p.Chapters = append(p.Chapters, progress.ChapterProgress{
		ChapterID:          "chapter_1",
		CompletedQuestions: []string{"q1_1", "tpl_1_squares"},
		Score:              67,
		Attempts:           3,
		CorrectAnswers:     2,
	})
	p.Mistakes = []mistakes.Record{{QuestionID: "q1_1", ChapterID: "chapter_1", ErrorCount: 2, ReviewScheduled: now.AddDate(0, 0, 2)}}
	require.NoError(t, repo.Save(ctx, p))

	got, err = repo.Load(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 30, got.TotalXP)
	assert.Equal(t, "chapter_1", got.CurrentChapterID)
	require.Len(t, got.Chapters, 1)
	assert.Equal(t, []string{"q1_1", "tpl_1_squares"}, got.Chapters[0].CompletedQuestions)
	require.Len(t, got.Mistakes, 1)
	assert.Equal(t, 2, got.Mistakes[0].ErrorCount)
	assert.True(t, got.Mistakes[0].ReviewScheduled.Equal(now.AddDate(0, 0, 2)))

	// Upsert replaces.
	p.TotalXP = 140
	require.NoError(t, repo.Save(ctx, p))
	got, err = repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 140, got.TotalXP)

	require.NoError(t, repo.Save(ctx, progress.New("bob", "chapter_1", now)))
	ids, err := repo.Learners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, ids)

	require.NoError(t, repo.Delete(ctx, "alice"))
	require.NoError(t, repo.Delete(ctx, "nobody"))
	got, err = repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProgressRepo_WithManager(t *testing.T) {
	s := openTestStore(t)
	m := progress.NewManager(s.ProgressRepo(), "chapter_1", nil)
	ctx := context.Background()

	err := m.Update(ctx, "carol", func(svc *progress.Service) error {
		svc.RecordAnswer("chapter_1", "q1_1", mistakes.Attempt{Response: "25", IsCorrect: true})
		return nil
	})
	require.NoError(t, err)

	p, err := s.ProgressRepo().Load(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, progress.XPPerCorrect, p.TotalXP)
}

func TestQueryAnswerEvents_Filters(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, repo.AppendAnswerEvent(ctx, AnswerEventData{
			LearnerID:  "l1",
			ChapterID:  "chapter_1",
			QuestionID: fmt.Sprintf("q%d", i+1),
			Mode:       "practice",
			Correct:    i%2 == 0,
		}))
	}
	require.NoError(t, repo.AppendAnswerEvent(ctx, AnswerEventData{LearnerID: "l2", ChapterID: "chapter_1", QuestionID: "x", Mode: "exam"}))

	tests := []struct {
		name string
		opts QueryOpts
		want []string
	}{
		{"all", QueryOpts{}, []string{"q5", "q4", "q3", "q2", "q1"}},
		{"limit", QueryOpts{Limit: 2}, []string{"q5", "q4"}},
		{"after", QueryOpts{After: 3}, []string{"q5", "q4"}},
		{"before", QueryOpts{Before: 3}, []string{"q2", "q1"}},
		{"window", QueryOpts{After: 1, Before: 5}, []string{"q4", "q3", "q2"}},
		{"future", QueryOpts{From: time.Now().Add(time.Hour)}, nil},
		{"past", QueryOpts{To: time.Now().Add(-time.Hour)}, nil},
	}
	for _, tt := range tests {
		events, err := repo.QueryAnswerEvents(ctx, "l1", tt.opts)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		var got []string
		for _, e := range events {
			got = append(got, e.QuestionID)
		}
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestChapterAccuracy(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	add := func(chapter string, correct bool) {
		t.Helper()
		require.NoError(t, repo.AppendAnswerEvent(ctx, AnswerEventData{LearnerID: "l", ChapterID: chapter, QuestionID: "q", Mode: "practice", Correct: correct}))
	}
	add("chapter_2", true)
	add("chapter_1", true)
	add("chapter_1", false)
	add("chapter_1", true)

	stats, err := repo.ChapterAccuracy(ctx, "l")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, ChapterStat{ChapterID: "chapter_1", Attempts: 3, Correct: 2}, stats[0])
	assert.Equal(t, ChapterStat{ChapterID: "chapter_2", Attempts: 1, Correct: 1}, stats[1])
	assert.InDelta(t, 2.0/3.0, stats[0].Accuracy(), 1e-9)

	none, err := repo.ChapterAccuracy(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "draft", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "[user]\nhi", ResponseBody: "{}"},
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "draft", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "explain", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "rate limited", list[0].ErrorMessage)
	assert.False(t, list[0].Success)

	first := list[2]
	got, err := repo.GetLLMEvent(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "[user]\nhi", got.RequestBody)
	assert.Equal(t, "{}", got.ResponseBody)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Minute)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, LLMPurposeUsage{Purpose: "draft", Calls: 2, InputTokens: 400, OutputTokens: 200, AvgLatencyMs: 300}, byPurpose[0])
	assert.Equal(t, "explain", byPurpose[1].Purpose)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, LLMModelUsage{Model: "claude-haiku", Calls: 2, InputTokens: 400, OutputTokens: 200}, byModel[0])
	assert.Equal(t, LLMModelUsage{Model: "gpt-4o-mini", Calls: 1, InputTokens: 10, OutputTokens: 5}, byModel[1])
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("MATHLINGO_DB", filepath.Join(dir, "custom", "db.sqlite"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom", "db.sqlite"), p)
	_, err = os.Stat(filepath.Join(dir, "custom"))
	assert.NoError(t, err, "parent directory created")

	t.Setenv("MATHLINGO_DB", "")
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "xdg"))
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "xdg", "mathlingo", "mathlingo.db"), p)
}
