// Package exam builds timed mixed-chapter tests and grades them.
package exam

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/problemgen"
)

// Durations are the exam lengths offered to learners.
var Durations = []time.Duration{2 * time.Minute, 5 * time.Minute, 10 * time.Minute}

var (
	ErrNoQuestions = errors.New("exam: no questions available for the selected chapters")
	ErrNoChapters  = errors.New("exam: at least one chapter is required")
)

// Content is the part of the catalog an exam draws from.
type Content interface {
	Wait(ctx context.Context) error
	Templates(chapterID string) ([]*problemgen.Template, error)
	Questions(chapterID string) ([]*problemgen.Question, error)
}

// Exam is a built, not yet graded, test.
type Exam struct {
	ID        string                 `json:"id"`
	Chapters  []string               `json:"chapters"`
	Duration  time.Duration          `json:"duration"`
	Questions []*problemgen.Question `json:"questions"`
}

// Deadline returns when an exam started at start runs out.
func (e *Exam) Deadline(start time.Time) time.Time {
	return start.Add(e.Duration)
}

// Builder draws exam questions.
type Builder struct {
	content Content
	in      *problemgen.Instantiator
	log     *logger.Logger
}

func NewBuilder(content Content, in *problemgen.Instantiator, log *logger.Logger) *Builder {
	return &Builder{content: content, in: in, log: logger.OrNop(log)}
}

// Build draws up to perChapter questions from each chapter (every static
// question and one instance per template, shuffled; perChapter <= 0 keeps
// them all) and shuffles the whole set. Templates that fail to generate
// are skipped.
func (b *Builder) Build(ctx context.Context, chapters []string, perChapter int, duration time.Duration) (*Exam, error) {
	if len(chapters) == 0 {
		return nil, ErrNoChapters
	}
	if err := b.content.Wait(ctx); err != nil {
		return nil, err
	}

	rng := b.in.Random()
	var all []*problemgen.Question
	for _, ch := range chapters {
		statics, err := b.content.Questions(ch)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		templates, err := b.content.Templates(ch)
		if err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}

		var pool []*problemgen.Question
		for _, q := range statics {
			pool = append(pool, b.in.Present(q))
		}
		for _, t := range templates {
			q, err := b.in.Instantiate(t)
			if err != nil {
				b.log.Warn("skipping template", "template_id", t.ID, "error", err)
				continue
			}
			pool = append(pool, q)
		}
		problemgen.Shuffle(rng, pool)
		if perChapter > 0 && len(pool) > perChapter {
			pool = pool[:perChapter]
		}
		all = append(all, pool...)
	}
	if len(all) == 0 {
		return nil, ErrNoQuestions
	}
	problemgen.Shuffle(rng, all)

	return &Exam{
		ID:        uuid.NewString(),
		Chapters:  slices.Clone(chapters),
		Duration:  duration,
		Questions: all,
	}, nil
}

// Response is the learner's answer to one question, matched by instance id.
type Response struct {
	InstanceID string        `json:"instanceId"`
	Text       string        `json:"response"`
	TimeTaken  time.Duration `json:"timeTaken"`
}

// Answer is one graded question.
type Answer struct {
	QuestionID string        `json:"questionId"`
	InstanceID string        `json:"instanceId"`
	ChapterID  string        `json:"chapterId"`
	Response   string        `json:"response"`
	Expected   string        `json:"expected"`
	Answered   bool          `json:"answered"`
	Correct    bool          `json:"correct"`
	TimeTaken  time.Duration `json:"timeTaken"`
}

// ChapterScore tallies one chapter of an exam.
type ChapterScore struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Score   int `json:"score"`
}

// Result is a graded exam.
type Result struct {
	Answers    []Answer                `json:"answers"`
	Total      int                     `json:"totalQuestions"`
	Correct    int                     `json:"correctAnswers"`
	Score      int                     `json:"score"`
	PerChapter map[string]ChapterScore `json:"perChapter"`
	Elapsed    time.Duration           `json:"timeElapsed"`
}

// Grade checks responses against questions. Unanswered questions count
// as wrong, so a timed-out exam is scored over every question served.
// Score is the rounded percentage of correct answers.
func Grade(questions []*problemgen.Question, responses []Response, elapsed time.Duration) *Result {
	byInstance := make(map[string]Response, len(responses))
	for _, r := range responses {
		byInstance[r.InstanceID] = r
	}

	res := &Result{
		Answers:    make([]Answer, 0, len(questions)),
		Total:      len(questions),
		PerChapter: make(map[string]ChapterScore),
		Elapsed:    elapsed,
	}
	for _, q := range questions {
		a := Answer{
			QuestionID: q.ID,
			InstanceID: q.InstanceID,
			ChapterID:  q.ChapterID,
			Expected:   q.CorrectText(),
		}
		if r, ok := byInstance[q.InstanceID]; ok {
			a.Answered = true
			a.Response = r.Text
			a.TimeTaken = r.TimeTaken
			a.Correct = problemgen.CheckAnswer(r.Text, q)
		}

		cs := res.PerChapter[q.ChapterID]
		cs.Total++
		if a.Correct {
			res.Correct++
			cs.Correct++
		}
		res.PerChapter[q.ChapterID] = cs
		res.Answers = append(res.Answers, a)
	}

	res.Score = percent(res.Correct, res.Total)
	for ch, cs := range res.PerChapter {
		cs.Score = percent(cs.Correct, cs.Total)
		res.PerChapter[ch] = cs
	}
	return res
}

func percent(n, of int) int {
	if of == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(of)))
}
