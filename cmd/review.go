package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/session"
	"github.com/abhisek/mathlingo/internal/ui"
	"github.com/abhisek/mathlingo/internal/ui/quiz"
)

var reviewCmd = &cobra.Command{
	Use:         "review [chapter|all]",
	Short:       "Review past mistakes, most frequent first",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{"interactive": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, err := learnerID(cmd)
		if err != nil {
			return err
		}
		count, _ := cmd.Flags().GetInt("count")
		scope := session.ScopeAll
		if len(args) == 1 {
			scope = args[0]
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		b, err := rt.engine.ReviewBatch(ctx, learner, scope, count)
		if errors.Is(err, session.ErrNothingToDo) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aucune erreur à revoir. Bravo !")
			return nil
		}
		if err != nil {
			return err
		}

		m, err := runQuiz(cmd, quiz.NewPractice(ctx, b, submitter(rt.engine, learner, engine.ModeReview)))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Summary(m.Summary()))
		return nil
	},
}

func init() {
	reviewCmd.Flags().IntP("count", "n", 0, "Maximum mistakes to review (default: all)")
}
