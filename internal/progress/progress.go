// Package progress holds a learner's persistent state: per-chapter
// progress, XP, daily streak and mistake records.
package progress

import (
	"slices"
	"time"

	"github.com/abhisek/mathlingo/internal/mistakes"
)

const (
	// XPPerCorrect is awarded for every correct answer.
	XPPerCorrect = 10

	// XPPerChapter is the bonus for completing a chapter.
	XPPerChapter = 100
)

// ChapterProgress is the learner's state in one chapter.
type ChapterProgress struct {
	ChapterID          string    `json:"chapterId"`
	CompletedQuestions []string  `json:"completedQuestions"`
	Score              int       `json:"score"`
	IsCompleted        bool      `json:"isCompleted"`
	LastAttemptDate    time.Time `json:"lastAttemptDate"`
	Attempts           int       `json:"attempts"`
	CorrectAnswers     int       `json:"correctAnswers"`
}

// HasCompleted reports whether questionID was answered at least once.
func (c *ChapterProgress) HasCompleted(questionID string) bool {
	return slices.Contains(c.CompletedQuestions, questionID)
}

// UserProgress is the whole persisted state of one learner.
type UserProgress struct {
	UserID            string            `json:"userId"`
	CurrentChapterID  string            `json:"currentChapterId"`
	CompletedChapters []string          `json:"completedChapters"`
	TotalXP           int               `json:"totalXP"`
	Streak            int               `json:"streak"`
	LastActivityDate  time.Time         `json:"lastActivityDate"`
	Chapters          []ChapterProgress `json:"chapterProgress"`
	Mistakes          []mistakes.Record `json:"mistakes"`
}

// New returns the initial state of a learner.
func New(userID, firstChapterID string, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:           userID,
		CurrentChapterID: firstChapterID,
		LastActivityDate: now,
	}
}

// Chapter returns the progress of a chapter, or nil if it was never
// attempted.
func (p *UserProgress) Chapter(chapterID string) *ChapterProgress {
	for i := range p.Chapters {
		if p.Chapters[i].ChapterID == chapterID {
			return &p.Chapters[i]
		}
	}
	return nil
}

// IsChapterCompleted reports whether the chapter is in CompletedChapters.
func (p *UserProgress) IsChapterCompleted(chapterID string) bool {
	return slices.Contains(p.CompletedChapters, chapterID)
}

// Score returns the chapter score, 0 when never attempted.
func (p *UserProgress) Score(chapterID string) int {
	if c := p.Chapter(chapterID); c != nil {
		return c.Score
	}
	return 0
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	c := *p
	c.CompletedChapters = slices.Clone(p.CompletedChapters)
	c.Chapters = make([]ChapterProgress, len(p.Chapters))
	for i, cp := range p.Chapters {
		cp.CompletedQuestions = slices.Clone(cp.CompletedQuestions)
		c.Chapters[i] = cp
	}
	c.Mistakes = make([]mistakes.Record, len(p.Mistakes))
	for i, m := range p.Mistakes {
		m.Answers = slices.Clone(m.Answers)
		c.Mistakes[i] = m
	}
	return &c
}

func (p *UserProgress) chapterOrCreate(chapterID string, now time.Time) *ChapterProgress {
	if c := p.Chapter(chapterID); c != nil {
		return c
	}
	p.Chapters = append(p.Chapters, ChapterProgress{ChapterID: chapterID, LastAttemptDate: now})
	return &p.Chapters[len(p.Chapters)-1]
}
