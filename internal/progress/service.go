package progress

import (
	"math"
	"slices"
	"time"

	"github.com/abhisek/mathlingo/internal/mistakes"
)

// Option configures a Service.
type Option func(*options)

type options struct {
	now   func() time.Time
	gated bool
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithScheduleGating only offers mistakes whose review date has passed.
func WithScheduleGating(enabled bool) Option {
	return func(o *options) { o.gated = enabled }
}

// Service mutates one learner's progress. It is not safe for concurrent
// use; Manager serializes access per learner.
type Service struct {
	p       *UserProgress
	tracker *mistakes.Tracker
	now     func() time.Time
}

// NewService wraps p. The service owns p until Snapshot is taken.
func NewService(p *UserProgress, opts ...Option) *Service {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return &Service{
		p:       p,
		tracker: mistakes.NewTracker(p.Mistakes, mistakes.WithClock(o.now), mistakes.WithScheduleGating(o.gated)),
		now:     o.now,
	}
}

// AnswerOutcome summarizes what one recorded answer changed.
type AnswerOutcome struct {
	Correct   bool
	XPGained  int
	Streak    int
	Score     int
	FirstTime bool
	Mistake   *mistakes.Record
}

// RecordAnswer applies one answer to the chapter: marks the question
// completed, updates attempts and score, awards XP on a correct answer,
// records a mistake otherwise, and updates the streak.
func (s *Service) RecordAnswer(chapterID, questionID string, a mistakes.Attempt) AnswerOutcome {
	now := s.now()
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	if a.QuestionID == "" {
		a.QuestionID = questionID
	}

	cp := s.p.chapterOrCreate(chapterID, now)
	out := AnswerOutcome{Correct: a.IsCorrect}
	if !cp.HasCompleted(questionID) {
		cp.CompletedQuestions = append(cp.CompletedQuestions, questionID)
		out.FirstTime = true
	}
	cp.LastAttemptDate = now
	cp.Attempts++
	if a.IsCorrect {
		cp.CorrectAnswers++
		s.p.TotalXP += XPPerCorrect
		out.XPGained = XPPerCorrect
	} else {
		s.tracker.RecordWrongAnswer(chapterID, questionID, a)
		rec, _ := s.tracker.Get(questionID)
		out.Mistake = &rec
	}
	cp.Score = int(math.Round(100 * float64(cp.CorrectAnswers) / float64(cp.Attempts)))

	s.updateStreak(now)
	s.p.LastActivityDate = now
	s.sync()

	out.Streak = s.p.Streak
	out.Score = cp.Score
	return out
}

// updateStreak compares calendar days of the previous activity and now in
// now's location. It runs before LastActivityDate is overwritten.
func (s *Service) updateStreak(now time.Time) {
	days := dayDiff(s.p.LastActivityDate, now)
	switch {
	case s.p.Streak == 0:
		s.p.Streak = 1
	case days == 0:
	case days == 1:
		s.p.Streak++
	default:
		s.p.Streak = 1
	}
}

func dayDiff(from, to time.Time) int {
	loc := to.Location()
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// MarkReviewed flags a mistake as reviewed. It reports whether the mistake
// existed.
func (s *Service) MarkReviewed(questionID string) bool {
	ok := s.tracker.MarkReviewed(questionID)
	if ok {
		s.sync()
	}
	return ok
}

// CompleteChapter marks the chapter completed and moves the current chapter
// to next (when not empty). The XP bonus is granted once. It reports
// whether the chapter was newly completed.
func (s *Service) CompleteChapter(chapterID, next string) bool {
	if cp := s.p.Chapter(chapterID); cp != nil {
		cp.IsCompleted = true
	}
	if slices.Contains(s.p.CompletedChapters, chapterID) {
		return false
	}
	s.p.CompletedChapters = append(s.p.CompletedChapters, chapterID)
	s.p.TotalXP += XPPerChapter
	if next != "" && s.p.CurrentChapterID == chapterID {
		s.p.CurrentChapterID = next
	}
	return true
}

// ChapterProgress returns a copy of a chapter's progress.
func (s *Service) ChapterProgress(chapterID string) (ChapterProgress, bool) {
	cp := s.p.Chapter(chapterID)
	if cp == nil {
		return ChapterProgress{}, false
	}
	c := *cp
	c.CompletedQuestions = slices.Clone(cp.CompletedQuestions)
	return c, true
}

// MistakesToReview returns unreviewed mistakes, most frequent first.
func (s *Service) MistakesToReview() []mistakes.Record {
	return s.tracker.ToReview()
}

// MistakesToReviewInChapter restricts MistakesToReview to one chapter.
func (s *Service) MistakesToReviewInChapter(chapterID string) []mistakes.Record {
	return s.tracker.ToReviewInChapter(chapterID)
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() *UserProgress {
	return s.p.Clone()
}

func (s *Service) sync() {
	s.p.Mistakes = s.tracker.Records()
}
