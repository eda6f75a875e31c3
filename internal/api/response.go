package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/mathlingo/internal/catalog"
	"github.com/abhisek/mathlingo/internal/chapters"
	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/session"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, errorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// statusFor maps engine errors to HTTP statuses and error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNothingToDo):
		return http.StatusNoContent, "nothing_to_do"
	case errors.Is(err, chapters.ErrUnknownChapter):
		return http.StatusNotFound, "unknown_chapter"
	case errors.Is(err, engine.ErrUnknownQuestion):
		return http.StatusNotFound, "unknown_question"
	case errors.Is(err, chapters.ErrChapterLocked):
		return http.StatusForbidden, "chapter_locked"
	case errors.Is(err, catalog.ErrNotReady), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "not_ready"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// QuestionView is a served question without its solution.
type QuestionView struct {
	InstanceID   string                  `json:"instanceId"`
	ID           string                  `json:"id"`
	ChapterID    string                  `json:"chapterId"`
	Type         problemgen.QuestionType `json:"type"`
	Difficulty   problemgen.Difficulty   `json:"difficulty"`
	Text         string                  `json:"question"`
	RealLifeText string                  `json:"realLifeQuestion,omitempty"`
	Choices      []string                `json:"choices,omitempty"`
	Hints        []string                `json:"hints,omitempty"`
	Category     session.Category        `json:"category"`
	ErrorCount   int                     `json:"errorCount,omitempty"`
}

// BatchView is the response of the batch and review endpoints.
type BatchView struct {
	ChapterID string         `json:"chapterId"`
	Score     int            `json:"score"`
	Questions []QuestionView `json:"questions"`
}

func viewOf(b *session.Batch) BatchView {
	v := BatchView{ChapterID: b.ChapterID, Score: b.Score, Questions: make([]QuestionView, 0, b.Len())}
	for _, it := range b.Items {
		q := it.Question
		qv := QuestionView{
			InstanceID:   q.InstanceID,
			ID:           q.ID,
			ChapterID:    q.ChapterID,
			Type:         q.Type,
			Difficulty:   q.Difficulty,
			Text:         q.Text,
			RealLifeText: q.RealLifeText,
			Hints:        q.Hints,
			Category:     it.Category,
			ErrorCount:   it.ErrorCount,
		}
		for _, a := range q.Answers {
			qv.Choices = append(qv.Choices, a.Text)
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}
