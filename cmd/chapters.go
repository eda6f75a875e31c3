package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/ui"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "Show the learning path and the learner's progress in each chapter",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, err := learnerID(cmd)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		st, err := rt.engine.Chapters(cmd.Context(), learner)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, rt.path.Title)
		if fb, _ := rt.catalog.UsingFallback(); fb && settings.cfg.TemplatesDir != "" {
			fmt.Fprintln(out, "(aucun modèle chargé, jeu de questions intégré)")
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, ui.Chapters(st, 60))
		return nil
	},
}
