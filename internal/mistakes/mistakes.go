// Package mistakes tracks wrong answers per question id and decides which of
// them are due for remediation.
package mistakes

import (
	"sort"
	"time"
)

// MaxReviewDelayDays caps how far ahead a review is scheduled.
const MaxReviewDelayDays = 7

// Attempt is one submitted answer.
type Attempt struct {
	QuestionID    string    `json:"questionId"`
	Response      string    `json:"userResponse"`
	IsCorrect     bool      `json:"isCorrect"`
	Timestamp     time.Time `json:"timestamp"`
	AttemptsCount int       `json:"attemptsCount"`
}

// Record is the mistake history of one question id.
type Record struct {
	QuestionID      string    `json:"questionId"`
	ChapterID       string    `json:"chapterId"`
	ErrorCount      int       `json:"errorCount"`
	LastErrorDate   time.Time `json:"lastErrorDate"`
	ReviewScheduled time.Time `json:"reviewScheduled"`
	IsReviewed      bool      `json:"isReviewed"`
	Answers         []Attempt `json:"answers"`
}

// IsDue reports whether the scheduled review time has passed.
func (r *Record) IsDue(now time.Time) bool {
	return !now.Before(r.ReviewScheduled)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithScheduleGating makes ToReview skip records whose ReviewScheduled is
// still in the future.
func WithScheduleGating(enabled bool) Option {
	return func(t *Tracker) { t.gated = enabled }
}

// Tracker holds mistake records in first-error order. It is not safe for
// concurrent use; callers serialize access per learner.
type Tracker struct {
	records []*Record
	index   map[string]*Record
	now     func() time.Time
	gated   bool
}

// NewTracker creates a tracker seeded with previously persisted records.
// Records are copied. A later duplicate id is merged into the first one.
func NewTracker(records []Record, opts ...Option) *Tracker {
	t := &Tracker{
		index: make(map[string]*Record, len(records)),
		now:   time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	for i := range records {
		r := records[i]
		if existing, ok := t.index[r.QuestionID]; ok {
			existing.ErrorCount += r.ErrorCount
			existing.Answers = append(existing.Answers, r.Answers...)
			continue
		}
		r.Answers = append([]Attempt(nil), r.Answers...)
		t.records = append(t.records, &r)
		t.index[r.QuestionID] = &r
	}
	return t
}

// RecordWrongAnswer registers an incorrect answer. It creates the record on
// the first error, bumps ErrorCount, clears IsReviewed and reschedules the
// review min(ErrorCount, 7) days ahead.
func (t *Tracker) RecordWrongAnswer(chapterID, questionID string, a Attempt) *Record {
	now := t.now()
	r, ok := t.index[questionID]
	if !ok {
		r = &Record{QuestionID: questionID, ChapterID: chapterID}
		t.records = append(t.records, r)
		t.index[questionID] = r
	}

	r.ErrorCount++
	r.LastErrorDate = now
	r.IsReviewed = false
	r.Answers = append(r.Answers, a)

	days := min(r.ErrorCount, MaxReviewDelayDays)
	r.ReviewScheduled = now.AddDate(0, 0, days)
	return r
}

// MarkReviewed flags the record as reviewed. It reports whether a record
// existed; unknown ids are a no-op.
func (t *Tracker) MarkReviewed(questionID string) bool {
	r, ok := t.index[questionID]
	if !ok {
		return false
	}
	r.IsReviewed = true
	return true
}

// ToReview returns copies of the unreviewed records, most frequent errors
// first. Equal counts keep first-error order.
func (t *Tracker) ToReview() []Record {
	now := t.now()
	var out []Record
	for _, r := range t.records {
		if r.IsReviewed {
			continue
		}
		if t.gated && !r.IsDue(now) {
			continue
		}
		out = append(out, clone(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ErrorCount > out[j].ErrorCount
	})
	return out
}

// ToReviewInChapter filters ToReview to one chapter.
func (t *Tracker) ToReviewInChapter(chapterID string) []Record {
	all := t.ToReview()
	out := all[:0]
	for _, r := range all {
		if r.ChapterID == chapterID {
			out = append(out, r)
		}
	}
	return out
}

// Get returns a copy of the record for questionID.
func (t *Tracker) Get(questionID string) (Record, bool) {
	r, ok := t.index[questionID]
	if !ok {
		return Record{}, false
	}
	return clone(r), true
}

// Records returns copies of every record in first-error order, for
// persistence.
func (t *Tracker) Records() []Record {
	out := make([]Record, len(t.records))
	for i, r := range t.records {
		out[i] = clone(r)
	}
	return out
}

// Len returns the number of tracked question ids.
func (t *Tracker) Len() int { return len(t.records) }

func clone(r *Record) Record {
	c := *r
	c.Answers = append([]Attempt(nil), r.Answers...)
	return c
}
