package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/authoring"
	"github.com/abhisek/mathlingo/internal/llm"
	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/ui/theme"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft new question templates for a chapter with an LLM",
	Long: `Ask the configured LLM provider for question templates, validate each one
against the template schema and a series of trial instantiations, and write
the accepted ones as a templates feed. Rejected templates are listed with the
reason.`,
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().String("chapter", "", "Chapter id the templates belong to (required)")
	draftCmd.Flags().String("topic", "", "Topic to cover, e.g. \"identités remarquables\" (required)")
	draftCmd.Flags().String("difficulty", string(problemgen.DifficultyMedium), "easy, medium or hard")
	draftCmd.Flags().IntP("count", "n", 5, fmt.Sprintf("Templates to request (max %d)", authoring.MaxCount))
	draftCmd.Flags().StringP("out", "o", "", "Write the feed to this file instead of stdout")
	draftCmd.Flags().String("provider", "", "LLM provider override: anthropic, openai, gemini, openrouter or mock")
	draftCmd.Flags().String("model", "", "Model override")
	_ = draftCmd.MarkFlagRequired("chapter")
	_ = draftCmd.MarkFlagRequired("topic")
}

func runDraft(cmd *cobra.Command, args []string) error {
	chapterID, _ := cmd.Flags().GetString("chapter")
	topic, _ := cmd.Flags().GetString("topic")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")
	outPath, _ := cmd.Flags().GetString("out")

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	ch, err := rt.path.Get(chapterID)
	if err != nil {
		return err
	}
	if err := rt.catalog.Wait(ctx); err != nil {
		return err
	}
	existing, err := rt.catalog.Templates(chapterID)
	if err != nil {
		return err
	}
	ids := make([]string, len(existing))
	for i, t := range existing {
		ids[i] = t.ID
	}

	provider, err := draftProvider(ctx, cmd, rt.store.EventRepo(), rt.log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	d := authoring.NewDrafter(provider, newInstantiator(settings.cfg, rt.log), authoring.DefaultConfig(), rt.log)
	res, err := d.Draft(ctx, authoring.DraftInput{
		ChapterID:    chapterID,
		ChapterTitle: ch.Title,
		Topic:        topic,
		Difficulty:   problemgen.Difficulty(difficulty),
		Count:        count,
		ExistingIDs:  ids,
	})
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	for _, r := range res.Rejected {
		fmt.Fprintln(errOut, theme.Incorrect.Render(fmt.Sprintf("✗ #%d %s: %v", r.Index, r.TemplateID, r.Err)))
	}
	fmt.Fprintf(errOut, "%d accepted, %d rejected\n", len(res.Templates), len(res.Rejected))
	if len(res.Templates) == 0 {
		return nil
	}

	data, err := authoring.EncodeYAML(res.Templates)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}

// draftProvider resolves the provider from the environment and the llm
// config section, falling back to the vendors' own key variables.
func draftProvider(ctx context.Context, cmd *cobra.Command, events llm.EventRecorder, log *logger.Logger) (llm.Provider, error) {
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	lc := settings.cfg.LLM
	if provider == "" {
		provider = lc.Provider
	}
	if model == "" {
		model = lc.Model
	}

	cfg := llm.ConfigFromEnv().WithOverrides(provider, model, lc.Timeout)
	if !cfg.HasKey() {
		if found, ok := llm.DiscoverConfig(); ok {
			cfg = found.WithOverrides("", model, lc.Timeout)
		}
	}
	return llm.NewProvider(ctx, cfg, events, log)
}
