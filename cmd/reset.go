package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the learner's progress and mistakes",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, err := learnerID(cmd)
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(cmd.OutOrStdout(), "Effacer toute la progression de %q ? [o/N] ", learner)
			sc := bufio.NewScanner(cmd.InOrStdin())
			if !sc.Scan() || !strings.EqualFold(strings.TrimSpace(sc.Text()), "o") {
				fmt.Fprintln(cmd.OutOrStdout(), "Annulé.")
				return nil
			}
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.engine.Reset(cmd.Context(), learner); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Progression effacée.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
