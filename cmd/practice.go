package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/session"
	"github.com/abhisek/mathlingo/internal/ui"
	"github.com/abhisek/mathlingo/internal/ui/quiz"
)

var practiceCmd = &cobra.Command{
	Use:         "practice [chapter]",
	Short:       "Practice a chapter (default: the current one)",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"interactive": "true"},
	RunE:        runPractice,
}

func init() {
	practiceCmd.Flags().IntP("count", "n", 0, "Questions per batch (default from config)")
}

func runPractice(cmd *cobra.Command, args []string) error {
	learner, err := learnerID(cmd)
	if err != nil {
		return err
	}
	count, _ := cmd.Flags().GetInt("count")

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	chapterID := ""
	if len(args) == 1 {
		chapterID = args[0]
	} else {
		up, err := rt.engine.Progress(ctx, learner)
		if err != nil {
			return err
		}
		chapterID = up.CurrentChapterID
	}

	b, err := rt.engine.NextBatch(ctx, learner, chapterID, count)
	if errors.Is(err, session.ErrNothingToDo) {
		fmt.Fprintln(cmd.OutOrStdout(), "Rien à pratiquer dans ce chapitre pour le moment.")
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range b.Skipped {
		rt.log.Warn("template skipped", "chapter_id", chapterID, "error", e)
	}

	m, err := runQuiz(cmd, quiz.NewPractice(ctx, b, submitter(rt.engine, learner, engine.ModePractice)))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Summary(m.Summary()))
	return nil
}

// submitter grades answers through the engine on behalf of one learner.
func submitter(eng *engine.Engine, learner string, mode engine.Mode) quiz.Submitter {
	return func(ctx context.Context, it session.Item, response string) (*engine.Feedback, error) {
		return eng.Submit(ctx, learner, engine.Submission{
			Question: it.Question,
			Response: response,
			Mode:     mode,
			Category: it.Category,
		})
	}
}

// runQuiz drives m on the command's terminal until it ends.
func runQuiz(cmd *cobra.Command, m *quiz.Model) (*quiz.Model, error) {
	p := tea.NewProgram(m,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return m, err
	}
	return m, m.Err()
}
