package progress

import (
	"testing"
	"time"

	"github.com/abhisek/mathlingo/internal/mistakes"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(start time.Time) (*Service, *clock) {
	c := &clock{t: start}
	p := New("learner-1", "chapter_1", start)
	return NewService(p, WithClock(c.now)), c
}

func answer(correct bool) mistakes.Attempt {
	return mistakes.Attempt{Response: "x", IsCorrect: correct, AttemptsCount: 1}
}

func TestRecordAnswer_ScoreAndXP(t *testing.T) {
	s, _ := newTestService(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	out := s.RecordAnswer("chapter_1", "q1", answer(true))
	if out.XPGained != XPPerCorrect || !out.FirstTime || out.Score != 100 {
		t.Errorf("first answer outcome = %+v", out)
	}
	s.RecordAnswer("chapter_1", "q2", answer(false))
	out = s.RecordAnswer("chapter_1", "q1", answer(true))
	if out.FirstTime {
		t.Error("repeat answer reported as first time")
	}

	cp, ok := s.ChapterProgress("chapter_1")
	if !ok {
		t.Fatal("chapter progress missing")
	}
	if cp.Attempts != 3 || cp.CorrectAnswers != 2 {
		t.Errorf("attempts = %d correct = %d, want 3 and 2", cp.Attempts, cp.CorrectAnswers)
	}
	if cp.Score != 67 {
		t.Errorf("Score = %d, want 67", cp.Score)
	}
	if len(cp.CompletedQuestions) != 2 {
		t.Errorf("CompletedQuestions = %v, want [q1 q2]", cp.CompletedQuestions)
	}
	if got := s.Snapshot().TotalXP; got != 2*XPPerCorrect {
		t.Errorf("TotalXP = %d, want %d", got, 2*XPPerCorrect)
	}
}

func TestRecordAnswer_Mistakes(t *testing.T) {
	s, _ := newTestService(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	s.RecordAnswer("chapter_1", "once", answer(false))
	for range 3 {
		s.RecordAnswer("chapter_1", "thrice", answer(false))
	}
	out := s.RecordAnswer("chapter_1", "thrice", answer(true))
	if out.Mistake != nil {
		t.Error("correct answer produced a mistake")
	}

	review := s.MistakesToReview()
	if len(review) != 2 {
		t.Fatalf("MistakesToReview = %d, want 2", len(review))
	}
	if review[0].QuestionID != "thrice" || review[0].ErrorCount != 3 {
		t.Errorf("first mistake = %s (%d), want thrice (3)", review[0].QuestionID, review[0].ErrorCount)
	}
	if review[1].QuestionID != "once" || review[1].ErrorCount != 1 {
		t.Errorf("second mistake = %s (%d), want once (1)", review[1].QuestionID, review[1].ErrorCount)
	}

	if !s.MarkReviewed("thrice") {
		t.Fatal("MarkReviewed(thrice) = false")
	}
	snap := s.Snapshot()
	if len(snap.Mistakes) != 2 || !snap.Mistakes[1].IsReviewed {
		t.Errorf("snapshot mistakes = %+v", snap.Mistakes)
	}
	if s.MarkReviewed("unknown") {
		t.Error("MarkReviewed(unknown) = true")
	}
}

func TestStreak(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, c := newTestService(start)

	steps := []struct {
		advance time.Duration
		want    int
	}{
		{0, 1},
		{2 * time.Hour, 1},
		{24 * time.Hour, 2},
		{20 * time.Hour, 3},
		{72 * time.Hour, 1},
		{24 * time.Hour, 2},
	}
	for i, st := range steps {
		c.advance(st.advance)
		out := s.RecordAnswer("chapter_1", "q", answer(true))
		if out.Streak != st.want {
			t.Errorf("step %d: streak = %d, want %d", i, out.Streak, st.want)
		}
	}
	if got := s.Snapshot().LastActivityDate; !got.Equal(c.t) {
		t.Errorf("LastActivityDate = %v, want %v", got, c.t)
	}
}

func TestDayDiff(t *testing.T) {
	late := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	early := time.Date(2025, 3, 2, 0, 1, 0, 0, time.UTC)
	if got := dayDiff(late, early); got != 1 {
		t.Errorf("dayDiff across midnight = %d, want 1", got)
	}
	if got := dayDiff(early, early.Add(5*time.Hour)); got != 0 {
		t.Errorf("dayDiff same day = %d, want 0", got)
	}
}

func TestCompleteChapter(t *testing.T) {
	s, _ := newTestService(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	s.RecordAnswer("chapter_1", "q1", answer(true))

	if !s.CompleteChapter("chapter_1", "chapter_2") {
		t.Fatal("CompleteChapter = false on first call")
	}
	if s.CompleteChapter("chapter_1", "chapter_2") {
		t.Error("CompleteChapter = true on second call")
	}

	snap := s.Snapshot()
	if snap.TotalXP != XPPerCorrect+XPPerChapter {
		t.Errorf("TotalXP = %d, want %d", snap.TotalXP, XPPerCorrect+XPPerChapter)
	}
	if snap.CurrentChapterID != "chapter_2" {
		t.Errorf("CurrentChapterID = %s, want chapter_2", snap.CurrentChapterID)
	}
	if !snap.IsChapterCompleted("chapter_1") || !snap.Chapter("chapter_1").IsCompleted {
		t.Error("chapter_1 not marked completed")
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s, _ := newTestService(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	s.RecordAnswer("chapter_1", "q1", answer(false))

	snap := s.Snapshot()
	snap.Chapters[0].CompletedQuestions[0] = "mutated"
	snap.Mistakes[0].ErrorCount = 42

	cp, _ := s.ChapterProgress("chapter_1")
	if cp.CompletedQuestions[0] != "q1" {
		t.Error("snapshot shares CompletedQuestions")
	}
	if s.MistakesToReview()[0].ErrorCount != 1 {
		t.Error("snapshot shares mistakes")
	}
}
