// Package quiz is the interactive question loop shared by practice, review
// and exams.
package quiz

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/exam"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/session"
	"github.com/abhisek/mathlingo/internal/ui"
	"github.com/abhisek/mathlingo/internal/ui/theme"
)

// Submitter grades one answer and records it.
type Submitter func(ctx context.Context, it session.Item, response string) (*engine.Feedback, error)

type phase int

const (
	phaseAsking phase = iota
	phaseWaiting
	phaseFeedback
	phaseDone
)

// Model asks the items one by one. With a Submitter every answer is graded
// as it comes; without one the answers are only collected, as in an exam.
type Model struct {
	ctx    context.Context
	items  []session.Item
	submit Submitter
	limit  time.Duration
	now    func() time.Time

	input    textinput.Model
	index    int
	phase    phase
	start    time.Time
	end      time.Time
	asked    time.Time
	notice   string
	feedback *engine.Feedback

	results   []session.Result
	responses []exam.Response
	timedOut  bool
	err       error
}

var _ tea.Model = (*Model)(nil)

// NewPractice asks the items of b and grades each answer through submit.
func NewPractice(ctx context.Context, b *session.Batch, submit Submitter) *Model {
	return newModel(ctx, b.Items, submit, 0, time.Now)
}

// NewExam asks the questions of ex against its time limit.
func NewExam(ctx context.Context, ex *exam.Exam) *Model {
	items := make([]session.Item, 0, len(ex.Questions))
	for _, q := range ex.Questions {
		items = append(items, session.Item{Question: q})
	}
	return newModel(ctx, items, nil, ex.Duration, time.Now)
}

func newModel(ctx context.Context, items []session.Item, submit Submitter, limit time.Duration, now func() time.Time) *Model {
	ti := textinput.New()
	ti.Placeholder = "Votre réponse"
	ti.CharLimit = 64
	ti.Focus()

	m := &Model{
		ctx:    ctx,
		items:  items,
		submit: submit,
		limit:  limit,
		now:    now,
		input:  ti,
		start:  now(),
	}
	m.asked = m.start
	if len(items) == 0 {
		m.finish()
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.phase == phaseDone {
		return tea.Quit
	}
	if m.limit > 0 {
		return tea.Batch(m.input.Focus(), tickCmd())
	}
	return m.input.Focus()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m.handleTick(time.Time(msg))
	case feedbackMsg:
		return m.handleFeedback(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.phase == phaseAsking {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleTick(t time.Time) (tea.Model, tea.Cmd) {
	if m.phase == phaseDone || m.limit <= 0 {
		return m, nil
	}
	if t.Sub(m.start) >= m.limit {
		m.timedOut = true
		m.finish()
		return m, tea.Quit
	}
	return m, tickCmd()
}

func (m *Model) handleFeedback(msg feedbackMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.finish()
		return m, tea.Quit
	}
	it := m.items[m.index]
	m.feedback = msg.fb
	m.results = append(m.results, session.Result{
		QuestionID: it.Question.ID,
		Category:   it.Category,
		Correct:    msg.fb.Correct,
		XPGained:   msg.fb.XPGained,
	})
	m.phase = phaseFeedback
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.finish()
		return m, tea.Quit
	}

	switch m.phase {
	case phaseFeedback:
		// Any key moves on.
		return m.advance("")
	case phaseAsking:
		if msg.String() == "enter" {
			return m.answer()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// answer handles enter: "q" quits, an empty line skips.
func (m *Model) answer() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	switch text {
	case "q":
		m.finish()
		return m, tea.Quit
	case "":
		return m.advance("(passée)")
	}

	it := m.items[m.index]
	response := ChoiceText(it.Question, text)
	if m.submit == nil {
		m.responses = append(m.responses, exam.Response{
			InstanceID: it.Question.InstanceID,
			Text:       response,
			TimeTaken:  m.now().Sub(m.asked),
		})
		return m.advance("")
	}

	m.phase = phaseWaiting
	ctx, submit := m.ctx, m.submit
	return m, func() tea.Msg {
		fb, err := submit(ctx, it, response)
		return feedbackMsg{fb: fb, err: err}
	}
}

func (m *Model) advance(notice string) (tea.Model, tea.Cmd) {
	m.notice = notice
	m.feedback = nil
	m.input.Reset()
	m.index++
	if m.index >= len(m.items) {
		m.finish()
		return m, tea.Quit
	}
	m.asked = m.now()
	m.phase = phaseAsking
	return m, nil
}

func (m *Model) finish() {
	if m.phase == phaseDone {
		return
	}
	m.phase = phaseDone
	m.end = m.now()
	m.input.Blur()
}

// ChoiceText turns an option number typed for a multiple-choice question
// into the option's text. Input that already matches an option, or that
// names no option, is returned unchanged.
func ChoiceText(q *problemgen.Question, input string) string {
	if !q.IsMultipleChoice() {
		return input
	}
	for _, a := range q.Answers {
		if strings.EqualFold(strings.TrimSpace(a.Text), input) {
			return input
		}
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(q.Answers) {
		return input
	}
	return q.Answers[n-1].Text
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	if m.phase == phaseDone {
		return ""
	}

	var b strings.Builder
	if m.notice != "" {
		b.WriteString(theme.Hint.Render(m.notice) + "\n\n")
	}
	if m.limit > 0 {
		left := max(m.limit-m.now().Sub(m.start), 0)
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Temps restant %s", left.Round(time.Second))) + "\n")
	}
	it := m.items[m.index]
	b.WriteString(ui.Question(it.Question, m.index+1, len(m.items), it.Category) + "\n")

	switch m.phase {
	case phaseFeedback:
		b.WriteString(ui.Feedback(m.feedback))
		b.WriteString(theme.Hint.Render("Une touche pour continuer") + "\n")
	case phaseWaiting:
		b.WriteString(theme.Hint.Render("Correction…") + "\n")
	default:
		b.WriteString(m.input.View() + "\n")
		b.WriteString(theme.Hint.Render("Entrée pour valider · vide pour passer · q ou Échap pour quitter") + "\n")
	}
	return b.String()
}

// Done reports whether the loop has ended.
func (m *Model) Done() bool { return m.phase == phaseDone }

// Err is the submission error that ended the loop, if any.
func (m *Model) Err() error { return m.err }

// TimedOut reports whether the time limit ended the loop.
func (m *Model) TimedOut() bool { return m.timedOut }

// Elapsed is the time from the first question to the end of the loop, or
// to now while it runs.
func (m *Model) Elapsed() time.Duration {
	if m.phase == phaseDone {
		return m.end.Sub(m.start)
	}
	return m.now().Sub(m.start)
}

// Responses are the collected exam answers, skipped questions left out.
func (m *Model) Responses() []exam.Response { return m.responses }

// Summary tallies the graded answers.
func (m *Model) Summary() *session.Summary {
	return session.BuildSummary(m.results, m.Elapsed())
}
