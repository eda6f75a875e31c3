package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/exam"
	"github.com/abhisek/mathlingo/internal/ui"
	"github.com/abhisek/mathlingo/internal/ui/quiz"
)

var examCmd = &cobra.Command{
	Use:         "exam [chapters...]",
	Short:       "Take a timed exam over one or more chapters (default: all)",
	Annotations: map[string]string{"interactive": "true"},
	RunE:        runExam,
}

func init() {
	examCmd.Flags().Int("per-chapter", 5, "Questions drawn from each chapter")
	examCmd.Flags().Duration("duration", exam.Durations[1], "Time limit: 2m, 5m or 10m")
}

func runExam(cmd *cobra.Command, args []string) error {
	learner, err := learnerID(cmd)
	if err != nil {
		return err
	}
	perChapter, _ := cmd.Flags().GetInt("per-chapter")
	duration, _ := cmd.Flags().GetDuration("duration")
	if !slices.Contains(exam.Durations, duration) {
		return fmt.Errorf("invalid duration %s: must be one of 2m, 5m, 10m", duration)
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	ex, err := rt.engine.Exam(ctx, args, perChapter, duration)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Examen : %d questions, %s. Une réponse vide passe la question.\n\n", len(ex.Questions), duration)

	m, err := runQuiz(cmd, quiz.NewExam(ctx, ex))
	if err != nil {
		return err
	}
	if m.TimedOut() {
		fmt.Fprintln(out, "Temps écoulé !")
	}

	res, err := rt.engine.GradeExam(ctx, learner, ex, m.Responses(), m.Elapsed())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, ui.ExamResult(res))
	return nil
}
