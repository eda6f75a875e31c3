package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/session"
	"github.com/abhisek/mathlingo/internal/ui"
	"github.com/abhisek/mathlingo/internal/ui/theme"
)

var previewCmd = &cobra.Command{
	Use:   "preview <chapter>",
	Short: "Print instantiated questions of a chapter with their answers (no database)",
	Long: `Instantiate every template and static question of a chapter and print
them with the expected answer. This is a stateless authoring tool: no
progress is read or recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntP("count", "n", 1, "Instances drawn per template")
}

func runPreview(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	cfg, log := settings.cfg, settings.log
	ctx := cmd.Context()

	cat := loadCatalog(ctx, cfg, log)
	if err := cat.Wait(ctx); err != nil {
		return err
	}
	in := newInstantiator(cfg, log)
	out := cmd.OutOrStdout()
	chapterID := args[0]

	templates, err := cat.Templates(chapterID)
	if err != nil {
		return err
	}
	statics, err := cat.Questions(chapterID)
	if err != nil {
		return err
	}
	if len(templates)+len(statics) == 0 {
		return fmt.Errorf("no content for chapter %q", chapterID)
	}

	n := 0
	for _, t := range templates {
		for range max(count, 1) {
			n++
			q, err := in.InstantiateAt(t, n-1)
			if err != nil {
				fmt.Fprintln(out, theme.Incorrect.Render(fmt.Sprintf("%s: %v", t.ID, err)))
				continue
			}
			fmt.Fprintln(out, ui.Question(q, n, 0, session.CategoryNew))
			fmt.Fprintf(out, "%s %s  %v\n\n", theme.Correct.Render("→ "+q.CorrectText()), theme.Hint.Render(t.ID), q.Variables)
			for _, fe := range q.FormulaErrors {
				fmt.Fprintln(out, theme.Incorrect.Render("  formula: "+fe.Error()))
			}
		}
	}
	for _, s := range statics {
		n++
		q := in.Present(s)
		fmt.Fprintln(out, ui.Question(q, n, 0, session.CategoryNew))
		fmt.Fprintf(out, "%s %s\n\n", theme.Correct.Render("→ "+q.CorrectText()), theme.Hint.Render(s.ID))
	}
	return nil
}
