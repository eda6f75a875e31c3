// Package session picks the questions a learner should answer next and
// tallies practice results.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/mistakes"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/progress"
)

// ScopeAll selects mistakes of every chapter in SelectReview.
const ScopeAll = "all"

// Content is the read side of the question catalog.
type Content interface {
	Wait(ctx context.Context) error
	Templates(chapterID string) ([]*problemgen.Template, error)
	Template(id string) (*problemgen.Template, error)
	Questions(chapterID string) ([]*problemgen.Question, error)
	Question(id string) (*problemgen.Question, error)
}

// Learner is the part of a learner's state that drives selection.
type Learner struct {
	// Score is the chapter score, 0-100.
	Score int

	// Completed lists question ids answered at least once in the chapter.
	Completed []string

	// Mistakes are the unreviewed mistakes in priority order.
	Mistakes []mistakes.Record
}

// LearnerFrom extracts the selection inputs for chapterID.
func LearnerFrom(svc *progress.Service, chapterID string) Learner {
	l := Learner{Mistakes: svc.MistakesToReview()}
	if cp, ok := svc.ChapterProgress(chapterID); ok {
		l.Score = cp.Score
		l.Completed = cp.CompletedQuestions
	}
	return l
}

// Selector builds adaptive batches.
type Selector struct {
	content Content
	in      *problemgen.Instantiator
	rng     problemgen.Random
	log     *logger.Logger
}

// NewSelector creates a Selector. Shuffling uses the instantiator's source.
func NewSelector(content Content, in *problemgen.Instantiator, log *logger.Logger) *Selector {
	return &Selector{
		content: content,
		in:      in,
		rng:     in.Random(),
		log:     logger.OrNop(log),
	}
}

type candidate struct {
	id       string
	template *problemgen.Template
	static   *problemgen.Question
	category Category
	errors   int
}

// SelectBatch returns up to count questions for chapterID: unreviewed
// mistakes of the chapter first, then shuffled new questions, then shuffled
// already-answered ones, reordered by the chapter score. An empty batch is
// returned with ErrNothingToDo.
func (s *Selector) SelectBatch(ctx context.Context, chapterID string, count int, l Learner) (*Batch, error) {
	batch := &Batch{ChapterID: chapterID, Score: l.Score}
	if err := s.content.Wait(ctx); err != nil {
		return batch, err
	}
	if count <= 0 {
		return batch, ErrNothingToDo
	}

	var mistakeCands []candidate
	excluded := make(map[string]bool)
	for _, r := range l.Mistakes {
		if r.ChapterID != chapterID {
			continue
		}
		excluded[r.QuestionID] = true
		c, ok := s.lookup(r.QuestionID)
		if !ok {
			s.log.Debug("mistake no longer in catalog", "question_id", r.QuestionID)
			continue
		}
		c.category = CategoryMistake
		c.errors = r.ErrorCount
		mistakeCands = append(mistakeCands, c)
	}

	statics, err := s.content.Questions(chapterID)
	if err != nil {
		return batch, fmt.Errorf("list questions: %w", err)
	}
	templates, err := s.content.Templates(chapterID)
	if err != nil {
		return batch, fmt.Errorf("list templates: %w", err)
	}

	var fresh, seen []candidate
	add := func(c candidate) {
		if excluded[c.id] {
			return
		}
		if slices.Contains(l.Completed, c.id) {
			c.category = CategoryReview
			seen = append(seen, c)
		} else {
			c.category = CategoryNew
			fresh = append(fresh, c)
		}
	}
	for _, q := range statics {
		add(candidate{id: q.ID, static: q})
	}
	for _, t := range templates {
		add(candidate{id: t.ID, template: t})
	}
	problemgen.Shuffle(s.rng, fresh)
	problemgen.Shuffle(s.rng, seen)

	ordered := slices.Concat(mistakeCands, fresh, seen)
	batch.Items, batch.Skipped = s.materialize(ordered, count, len(l.Completed))
	if len(batch.Items) == 0 {
		return batch, ErrNothingToDo
	}

	s.adapt(batch.Items, l.Score)
	s.log.Debug("batch selected",
		"chapter_id", chapterID,
		"size", len(batch.Items),
		"mistakes", batch.Count(CategoryMistake),
		"new", batch.Count(CategoryNew),
		"review", batch.Count(CategoryReview),
		"skipped", len(batch.Skipped))
	return batch, nil
}

// SelectReview returns up to count unreviewed mistakes of one chapter, or
// of every chapter when scope is ScopeAll, in priority order. A
// non-positive count means no limit.
func (s *Selector) SelectReview(ctx context.Context, scope string, count int, l Learner) (*Batch, error) {
	batch := &Batch{ChapterID: scope}
	if err := s.content.Wait(ctx); err != nil {
		return batch, err
	}

	var cands []candidate
	for _, r := range l.Mistakes {
		if scope != ScopeAll && r.ChapterID != scope {
			continue
		}
		c, ok := s.lookup(r.QuestionID)
		if !ok {
			continue
		}
		c.category = CategoryMistake
		c.errors = r.ErrorCount
		cands = append(cands, c)
	}
	if count <= 0 {
		count = len(cands)
	}

	batch.Items, batch.Skipped = s.materialize(cands, count, -1)
	if len(batch.Items) == 0 {
		return batch, ErrNothingToDo
	}
	return batch, nil
}

func (s *Selector) lookup(id string) (candidate, bool) {
	if t, err := s.content.Template(id); err == nil {
		return candidate{id: id, template: t}, true
	}
	if q, err := s.content.Question(id); err == nil {
		return candidate{id: id, static: q}, true
	}
	return candidate{}, false
}

// materialize turns candidates into questions until count is reached.
// Templates that fail to generate are skipped. With baseSeq >= 0 the
// sequence index of each generated question is baseSeq plus its position.
func (s *Selector) materialize(cands []candidate, count, baseSeq int) ([]Item, []error) {
	var (
		items   []Item
		skipped []error
	)
	for _, c := range cands {
		if len(items) >= count {
			break
		}
		var q *problemgen.Question
		if c.static != nil {
			q = s.in.Present(c.static)
		} else {
			seq := -1
			if baseSeq >= 0 {
				seq = baseSeq + len(items)
			}
			var err error
			q, err = s.in.InstantiateAt(c.template, seq)
			if err != nil {
				var ge *problemgen.GenerationError
				if !errors.As(err, &ge) {
					err = &problemgen.GenerationError{TemplateID: c.id, Err: err}
				}
				s.log.Warn("skipping template", "template_id", c.id, "error", err)
				skipped = append(skipped, err)
				continue
			}
		}
		items = append(items, Item{Question: q, Category: c.category, ErrorCount: c.errors})
	}
	return items, skipped
}

// adapt reorders items by chapter score: below 50 multiple-choice first,
// 50 to 79 a full shuffle, 80 and above free-input first then hard first.
func (s *Selector) adapt(items []Item, score int) {
	switch {
	case score < 50:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Question.IsMultipleChoice() && !items[j].Question.IsMultipleChoice()
		})
	case score < 80:
		problemgen.Shuffle(s.rng, items)
	default:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i].Question, items[j].Question
			af, bf := !a.IsMultipleChoice(), !b.IsMultipleChoice()
			if af != bf {
				return af
			}
			ah, bh := a.Difficulty == problemgen.DifficultyHard, b.Difficulty == problemgen.DifficultyHard
			return ah && !bh
		})
	}
}
