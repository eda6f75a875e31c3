package quiz

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathlingo/internal/engine"
)

// tickMsg is sent every second while a time limit runs.
type tickMsg time.Time

// feedbackMsg carries the graded answer back to the loop.
type feedbackMsg struct {
	fb  *engine.Feedback
	err error
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
