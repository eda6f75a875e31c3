package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/catalog"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/ui/theme"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect and validate question template feeds",
}

var templatesValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate every chapter feed of a directory and trial-instantiate templates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := settings.cfg.TemplatesDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return errors.New("no templates directory: pass one or set templates_dir")
		}
		draws, _ := cmd.Flags().GetInt("draws")

		problems := validateDir(cmd, dir, draws)
		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.Correct.Render("All feeds valid."))
		return nil
	},
}

func validateDir(cmd *cobra.Command, dir string, draws int) int {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	src := catalog.NewDirSource(dir)
	in := newInstantiator(settings.cfg, nil)

	problems := 0
	report := func(err error) {
		problems++
		fmt.Fprintln(out, theme.Incorrect.Render("  ✗ "+err.Error()))
	}

	for _, ch := range settings.cfg.Chapters {
		fmt.Fprintln(out, theme.Title.Render(ch))

		data, format, err := src.Open(ctx, ch, catalog.KindTemplates)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintln(out, theme.Hint.Render("  no templates feed"))
		case err != nil:
			report(err)
		default:
			templates, itemErrs, err := catalog.DecodeTemplates(ch, data, format)
			if err != nil {
				report(err)
				break
			}
			for _, e := range itemErrs {
				report(e)
			}
			ok := 0
			for _, t := range templates {
				if err := trialTemplate(in, t, draws); err != nil {
					report(err)
					continue
				}
				ok++
			}
			fmt.Fprintf(out, "  %d template(s) ok\n", ok)
		}

		data, format, err = src.Open(ctx, ch, catalog.KindQuestions)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintln(out, theme.Hint.Render("  no questions feed"))
		case err != nil:
			report(err)
		default:
			questions, itemErrs, err := catalog.DecodeQuestions(ch, data, format)
			if err != nil {
				report(err)
				break
			}
			for _, e := range itemErrs {
				report(e)
			}
			fmt.Fprintf(out, "  %d static question(s) ok\n", len(questions))
		}
	}
	return problems
}

// trialTemplate instantiates t draws times and fails on the first
// generation error or formula error.
func trialTemplate(in *problemgen.Instantiator, t *problemgen.Template, draws int) error {
	for i := range max(draws, 1) {
		q, err := in.InstantiateAt(t, i)
		if err != nil {
			return err
		}
		if len(q.FormulaErrors) > 0 {
			return fmt.Errorf("template %s: %w", t.ID, q.FormulaErrors[0])
		}
	}
	return nil
}

var templatesListCmd = &cobra.Command{
	Use:   "list [chapter]",
	Short: "List the templates and static questions being served",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cat := loadCatalog(ctx, settings.cfg, settings.log)
		if err := cat.Wait(ctx); err != nil {
			return err
		}
		ids, err := cat.Chapters()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			ids = []string{args[0]}
		}
		out := cmd.OutOrStdout()
		if fb, _ := cat.UsingFallback(); fb {
			fmt.Fprintln(out, theme.Hint.Render("(built-in set)"))
		}
		for _, ch := range ids {
			if err := listChapter(out, cat, ch); err != nil {
				return err
			}
		}
		return nil
	},
}

func listChapter(out io.Writer, cat *catalog.Catalog, chapterID string) error {
	templates, err := cat.Templates(chapterID)
	if err != nil {
		return err
	}
	questions, err := cat.Questions(chapterID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("%s (%d)", chapterID, len(templates)+len(questions))))
	for _, t := range templates {
		fmt.Fprintf(out, "  %-28s  %-8s  %-16s  %s\n", truncate(t.ID, 28), t.Difficulty, t.Type, truncate(t.QuestionText, 48))
	}
	for _, q := range questions {
		fmt.Fprintf(out, "  %-28s  %-8s  %-16s  %s\n", truncate(q.ID, 28), q.Difficulty, q.Type, truncate(q.Text, 48))
	}
	return nil
}

var templatesSchemaCmd = &cobra.Command{
	Use:       "schema <templates|questions>",
	Short:     "Print the JSON schema of a feed",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(catalog.KindTemplates), string(catalog.KindQuestions)},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := catalog.Kind(args[0])
		if kind != catalog.KindTemplates && kind != catalog.KindQuestions {
			return fmt.Errorf("unknown feed kind %q", args[0])
		}
		data, err := catalog.SchemaJSON(kind)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	},
}

func init() {
	templatesValidateCmd.Flags().Int("draws", 20, "Trial instantiations per template")

	templatesCmd.AddCommand(templatesValidateCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSchemaCmd)
}
