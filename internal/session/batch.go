package session

import (
	"errors"

	"github.com/abhisek/mathlingo/internal/problemgen"
)

// ErrNothingToDo is returned with an empty batch when no question can be
// served.
var ErrNothingToDo = errors.New("nothing to practice")

// Category is the reason a question was included in a batch.
type Category string

const (
	CategoryMistake Category = "mistake"
	CategoryNew     Category = "new"
	CategoryReview  Category = "review"
)

// Item is one question of a batch.
type Item struct {
	Question *problemgen.Question `json:"question"`
	Category Category             `json:"category"`

	// ErrorCount is set for mistake items.
	ErrorCount int `json:"errorCount,omitempty"`
}

// Batch is the ordered list of questions to serve next.
type Batch struct {
	ChapterID string `json:"chapterId"`
	Score     int    `json:"score"`
	Items     []Item `json:"items"`

	// Skipped holds the generation errors of templates left out.
	Skipped []error `json:"-"`
}

// Len returns the number of items.
func (b *Batch) Len() int { return len(b.Items) }

// Questions returns the questions in serving order.
func (b *Batch) Questions() []*problemgen.Question {
	out := make([]*problemgen.Question, len(b.Items))
	for i, it := range b.Items {
		out[i] = it.Question
	}
	return out
}

// Count returns how many items have the given category.
func (b *Batch) Count(c Category) int {
	n := 0
	for _, it := range b.Items {
		if it.Category == c {
			n++
		}
	}
	return n
}
