package exam

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abhisek/mathlingo/internal/catalog"
	"github.com/abhisek/mathlingo/internal/problemgen"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	in := problemgen.NewInstantiator(problemgen.DefaultConfig(), rand.New(rand.NewPCG(1, 2)), nil)
	return NewBuilder(catalog.New(catalog.Fallback()), in, nil)
}

func TestBuild(t *testing.T) {
	b := newBuilder(t)
	ex, err := b.Build(context.Background(), []string{"chapter_1", "chapter_3"}, 2, 5*time.Minute)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ex.Questions) != 4 {
		t.Fatalf("questions = %d, want 4", len(ex.Questions))
	}
	perChapter := map[string]int{}
	instances := map[string]bool{}
	for _, q := range ex.Questions {
		perChapter[q.ChapterID]++
		if q.InstanceID == "" || instances[q.InstanceID] {
			t.Errorf("question %s has missing or duplicate instance id", q.ID)
		}
		instances[q.InstanceID] = true
	}
	if perChapter["chapter_1"] != 2 || perChapter["chapter_3"] != 2 {
		t.Errorf("per chapter = %v, want 2 each", perChapter)
	}
	if ex.ID == "" || ex.Duration != 5*time.Minute {
		t.Errorf("exam = %+v", ex)
	}
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	if got := ex.Deadline(start); !got.Equal(start.Add(5 * time.Minute)) {
		t.Errorf("Deadline = %v", got)
	}
}

func TestBuild_AllQuestions(t *testing.T) {
	b := newBuilder(t)
	fb := catalog.Fallback()
	want := 0
	for _, tpl := range fb.Templates {
		if tpl.ChapterID == "chapter_1" {
			want++
		}
	}
	for _, q := range fb.Questions {
		if q.ChapterID == "chapter_1" {
			want++
		}
	}
	ex, err := b.Build(context.Background(), []string{"chapter_1"}, 0, time.Minute)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ex.Questions) != want {
		t.Errorf("questions = %d, want %d", len(ex.Questions), want)
	}
}

func TestBuild_Errors(t *testing.T) {
	b := newBuilder(t)
	if _, err := b.Build(context.Background(), nil, 5, time.Minute); !errors.Is(err, ErrNoChapters) {
		t.Errorf("no chapters: error = %v, want ErrNoChapters", err)
	}
	if _, err := b.Build(context.Background(), []string{"chapter_9"}, 5, time.Minute); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("unknown chapter: error = %v, want ErrNoQuestions", err)
	}
}

func TestGrade(t *testing.T) {
	questions := []*problemgen.Question{
		{ID: "q1_1", InstanceID: "i1", ChapterID: "chapter_1", Type: problemgen.TypeMultipleChoice,
			Answers: []problemgen.Answer{{Text: "25", IsCorrect: true}, {Text: "49"}}},
		{ID: "q3_1", InstanceID: "i2", ChapterID: "chapter_3", Type: problemgen.TypeFreeInput, CorrectAnswer: "6"},
		{ID: "tpl_3_rectangle", InstanceID: "i3", ChapterID: "chapter_3", Type: problemgen.TypeFreeInput, CorrectAnswer: "12"},
	}
	responses := []Response{
		{InstanceID: "i1", Text: "25", TimeTaken: 4 * time.Second},
		{InstanceID: "i2", Text: "7"},
		{InstanceID: "unknown", Text: "12"},
	}

	res := Grade(questions, responses, 90*time.Second)
	if res.Total != 3 || res.Correct != 1 {
		t.Fatalf("Total/Correct = %d/%d, want 3/1", res.Total, res.Correct)
	}
	if res.Score != 33 {
		t.Errorf("Score = %d, want 33", res.Score)
	}
	if res.Elapsed != 90*time.Second {
		t.Errorf("Elapsed = %v", res.Elapsed)
	}
	if got := res.PerChapter["chapter_3"]; got != (ChapterScore{Total: 2, Correct: 0, Score: 0}) {
		t.Errorf("chapter_3 = %+v", got)
	}
	if got := res.PerChapter["chapter_1"]; got != (ChapterScore{Total: 1, Correct: 1, Score: 100}) {
		t.Errorf("chapter_1 = %+v", got)
	}
	if a := res.Answers[2]; a.Answered || a.Correct || a.Expected != "12" {
		t.Errorf("unanswered = %+v", a)
	}
	if a := res.Answers[0]; !a.Answered || a.TimeTaken != 4*time.Second {
		t.Errorf("first answer = %+v", a)
	}
}

func TestGrade_Empty(t *testing.T) {
	res := Grade(nil, nil, 0)
	if res.Total != 0 || res.Score != 0 {
		t.Errorf("empty grade = %+v", res)
	}
}
