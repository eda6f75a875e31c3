package session

import "time"

// Result is the outcome of one served question.
type Result struct {
	QuestionID string
	Category   Category
	Correct    bool
	XPGained   int
}

// Summary aggregates a practice run for display.
type Summary struct {
	Duration   time.Duration
	Total      int
	Correct    int
	Accuracy   float64
	XPGained   int
	ByCategory map[Category]CategoryResult
}

// CategoryResult counts answers of one category.
type CategoryResult struct {
	Attempted int
	Correct   int
}

// BuildSummary tallies results.
func BuildSummary(results []Result, elapsed time.Duration) *Summary {
	s := &Summary{
		Duration:   elapsed,
		ByCategory: make(map[Category]CategoryResult),
	}
	for _, r := range results {
		s.Total++
		s.XPGained += r.XPGained
		cr := s.ByCategory[r.Category]
		cr.Attempted++
		if r.Correct {
			s.Correct++
			cr.Correct++
		}
		s.ByCategory[r.Category] = cr
	}
	if s.Total > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Total)
	}
	return s
}
