// Package engine ties the catalog, the selector, learner progress and the
// learning path together for the CLI and the HTTP API.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/mathlingo/internal/catalog"
	"github.com/abhisek/mathlingo/internal/chapters"
	"github.com/abhisek/mathlingo/internal/exam"
	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/mistakes"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/progress"
	"github.com/abhisek/mathlingo/internal/session"
	"github.com/abhisek/mathlingo/internal/store"
)

// Mode is how a question was served.
type Mode string

const (
	ModePractice Mode = "practice"
	ModeReview   Mode = "review"
	ModeExam     Mode = "exam"
)

// ErrUnknownQuestion is returned when an answer refers to a question the
// engine did not serve.
var ErrUnknownQuestion = errors.New("unknown question")

// AnswerLog records graded answers. store.EventRepo satisfies it.
type AnswerLog interface {
	AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error
}

// Deps are the engine's collaborators. Events may be nil.
type Deps struct {
	Catalog      *catalog.Catalog
	Path         *chapters.Path
	Instantiator *problemgen.Instantiator
	Progress     *progress.Manager
	Events       AnswerLog
	BatchSize    int
	Now          func() time.Time
	Log          *logger.Logger
}

// Engine is safe for concurrent use; per-learner state is serialized by
// the progress manager.
type Engine struct {
	catalog   *catalog.Catalog
	path      *chapters.Path
	selector  *session.Selector
	exams     *exam.Builder
	progress  *progress.Manager
	events    AnswerLog
	batchSize int
	now       func() time.Time
	log       *logger.Logger
}

func New(d Deps) *Engine {
	log := logger.OrNop(d.Log)
	if d.BatchSize <= 0 {
		d.BatchSize = 10
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Engine{
		catalog:   d.Catalog,
		path:      d.Path,
		selector:  session.NewSelector(d.Catalog, d.Instantiator, log),
		exams:     exam.NewBuilder(d.Catalog, d.Instantiator, log),
		progress:  d.Progress,
		events:    d.Events,
		batchSize: d.BatchSize,
		now:       d.Now,
		log:       log,
	}
}

// Catalog returns the question catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Path returns the learning path.
func (e *Engine) Path() *chapters.Path { return e.path }

// NextBatch selects the next practice questions of chapterID. count <= 0
// uses the configured batch size. Locked chapters return
// chapters.ErrChapterLocked.
func (e *Engine) NextBatch(ctx context.Context, learnerID, chapterID string, count int) (*session.Batch, error) {
	if count <= 0 {
		count = e.batchSize
	}
	var l session.Learner
	err := e.progress.View(ctx, learnerID, func(svc *progress.Service) error {
		if err := e.path.CheckAccess(chapterID, svc.Snapshot()); err != nil {
			return err
		}
		l = session.LearnerFrom(svc, chapterID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.selector.SelectBatch(ctx, chapterID, count, l)
}

// ReviewBatch selects unreviewed mistakes of one chapter or of every
// chapter (session.ScopeAll). count <= 0 means all of them.
func (e *Engine) ReviewBatch(ctx context.Context, learnerID, scope string, count int) (*session.Batch, error) {
	if scope == "" {
		scope = session.ScopeAll
	}
	if scope != session.ScopeAll {
		if _, err := e.path.Get(scope); err != nil {
			return nil, err
		}
	}
	var l session.Learner
	err := e.progress.View(ctx, learnerID, func(svc *progress.Service) error {
		l = session.Learner{Mistakes: svc.MistakesToReview()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.selector.SelectReview(ctx, scope, count, l)
}

// Submission is one answer to a served question.
type Submission struct {
	Question *problemgen.Question
	Response string
	Mode     Mode
	Category session.Category
}

// Feedback is what the learner sees after answering.
type Feedback struct {
	Correct     bool   `json:"correct"`
	Expected    string `json:"expected"`
	Explanation string `json:"explanation,omitempty"`

	XPGained int `json:"xpGained"`
	TotalXP  int `json:"totalXP"`
	Streak   int `json:"streak"`
	Score    int `json:"score"`

	// Mistake is the updated record after a wrong answer.
	Mistake *mistakes.Record `json:"mistake,omitempty"`

	// Reviewed is set when a correct review answer cleared a mistake.
	Reviewed bool `json:"reviewed,omitempty"`

	ChapterCompleted bool   `json:"chapterCompleted,omitempty"`
	NextChapterID    string `json:"nextChapterId,omitempty"`
}

// Submit checks the response, records it in the learner's progress and the
// answer log, clears the mistake on a correct review answer and completes
// the chapter once every question of it has been answered at least once.
func (e *Engine) Submit(ctx context.Context, learnerID string, sub Submission) (*Feedback, error) {
	q := sub.Question
	if q == nil {
		return nil, ErrUnknownQuestion
	}
	if _, err := e.path.Get(q.ChapterID); err != nil {
		return nil, err
	}
	size, err := e.catalog.Size(q.ChapterID)
	if err != nil {
		return nil, err
	}

	fb := &Feedback{
		Correct:     problemgen.CheckAnswer(sub.Response, q),
		Expected:    q.CorrectText(),
		Explanation: q.Explanation,
	}
	err = e.progress.Update(ctx, learnerID, func(svc *progress.Service) error {
		out := svc.RecordAnswer(q.ChapterID, q.ID, mistakes.Attempt{
			QuestionID: q.ID,
			Response:   sub.Response,
			IsCorrect:  fb.Correct,
			Timestamp:  e.now(),
		})
		fb.XPGained = out.XPGained
		fb.Streak = out.Streak
		fb.Score = out.Score
		fb.Mistake = out.Mistake

		if sub.Mode == ModeReview && fb.Correct {
			fb.Reviewed = svc.MarkReviewed(q.ID)
		}

		if cp, ok := svc.ChapterProgress(q.ChapterID); ok && size > 0 && len(cp.CompletedQuestions) >= size {
			next := ""
			if ch, ok := e.path.Next(q.ChapterID); ok {
				next = ch.ID
			}
			if svc.CompleteChapter(q.ChapterID, next) {
				fb.ChapterCompleted = true
				fb.NextChapterID = next
				fb.XPGained += progress.XPPerChapter
				e.log.Info("chapter completed", "learner_id", learnerID, "chapter_id", q.ChapterID)
			}
		}
		fb.TotalXP = svc.Snapshot().TotalXP
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.record(ctx, learnerID, sub.Mode, sub.Category, q, sub.Response, fb.Correct, fb.XPGained)
	return fb, nil
}

func (e *Engine) record(ctx context.Context, learnerID string, mode Mode, cat session.Category, q *problemgen.Question, response string, correct bool, xp int) {
	if e.events == nil {
		return
	}
	err := e.events.AppendAnswerEvent(ctx, store.AnswerEventData{
		LearnerID:    learnerID,
		ChapterID:    q.ChapterID,
		QuestionID:   q.ID,
		InstanceID:   q.InstanceID,
		Mode:         string(mode),
		Category:     string(cat),
		QuestionType: string(q.Type),
		Response:     response,
		Correct:      correct,
		XPGained:     xp,
	})
	if err != nil {
		e.log.Warn("record answer event", "learner_id", learnerID, "question_id", q.ID, "error", err)
	}
}

// Progress returns a copy of the learner's progress.
func (e *Engine) Progress(ctx context.Context, learnerID string) (*progress.UserProgress, error) {
	return e.progress.Get(ctx, learnerID)
}

// Chapters returns every chapter's state for the learner.
func (e *Engine) Chapters(ctx context.Context, learnerID string) ([]chapters.Status, error) {
	if err := e.catalog.Wait(ctx); err != nil {
		return nil, err
	}
	up, err := e.progress.Get(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return e.path.Status(up, func(id string) int {
		n, _ := e.catalog.Size(id)
		return n
	}), nil
}

// Reset deletes the learner's progress.
func (e *Engine) Reset(ctx context.Context, learnerID string) error {
	return e.progress.Reset(ctx, learnerID)
}

// Exam builds a timed exam over the given chapters; an empty list means
// every chapter of the path.
func (e *Engine) Exam(ctx context.Context, chapterIDs []string, perChapter int, duration time.Duration) (*exam.Exam, error) {
	if len(chapterIDs) == 0 {
		chapterIDs = e.path.IDs()
	}
	for _, id := range chapterIDs {
		if _, err := e.path.Get(id); err != nil {
			return nil, err
		}
	}
	if duration <= 0 {
		duration = exam.Durations[0]
	}
	return e.exams.Build(ctx, slices.Compact(slices.Clone(chapterIDs)), perChapter, duration)
}

// GradeExam grades an exam and logs every answer. Exams do not change
// progress.
func (e *Engine) GradeExam(ctx context.Context, learnerID string, ex *exam.Exam, responses []exam.Response, elapsed time.Duration) (*exam.Result, error) {
	if ex == nil {
		return nil, fmt.Errorf("grade exam: %w", ErrUnknownQuestion)
	}
	res := exam.Grade(ex.Questions, responses, elapsed)
	for i, a := range res.Answers {
		if a.Answered {
			e.record(ctx, learnerID, ModeExam, "", ex.Questions[i], a.Response, a.Correct, 0)
		}
	}
	e.log.Info("exam graded", "learner_id", learnerID, "score", res.Score, "total", res.Total)
	return res, nil
}
