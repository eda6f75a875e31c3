package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/store"
	"github.com/abhisek/mathlingo/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, err := learnerID(cmd)
		if err != nil {
			return err
		}
		recent, _ := cmd.Flags().GetInt("recent")

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		up, err := rt.engine.Progress(ctx, learner)
		if err != nil {
			return err
		}
		events := rt.store.EventRepo()
		acc, err := events.ChapterAccuracy(ctx, learner)
		if err != nil {
			return fmt.Errorf("query accuracy: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "XP:         %d\n", up.TotalXP)
		fmt.Fprintf(out, "Série:      %d jour(s)\n", up.Streak)
		fmt.Fprintf(out, "Chapitres:  %d terminé(s), en cours %s\n", len(up.CompletedChapters), up.CurrentChapterID)
		pending := 0
		for _, m := range up.Mistakes {
			if !m.IsReviewed {
				pending++
			}
		}
		fmt.Fprintf(out, "Erreurs:    %d à revoir sur %d\n", pending, len(up.Mistakes))

		if len(acc) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%-14s  %8s  %8s\n", "Chapter", "Answers", "Correct")
			fmt.Fprintln(out, strings.Repeat("─", 60))
			for _, a := range acc {
				fmt.Fprintf(out, "%-14s  %8d  %8d  %s\n", a.ChapterID, a.Attempts, a.Correct, ui.ProgressBar("", a.Accuracy(), 24))
			}
		}

		if recent > 0 {
			answers, err := events.QueryAnswerEvents(ctx, learner, store.QueryOpts{Limit: recent})
			if err != nil {
				return fmt.Errorf("query answers: %w", err)
			}
			fmt.Fprintln(out)
			for _, a := range answers {
				ok := "✓"
				if !a.Correct {
					ok = "✗"
				}
				fmt.Fprintf(out, "%s  %-8s  %-12s  %-24s  %s %q\n",
					a.Timestamp.Local().Format("2006-01-02 15:04"), a.Mode, a.ChapterID, truncate(a.QuestionID, 24), ok, a.Response)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("recent", 10, "Number of recent answers to list")
}
