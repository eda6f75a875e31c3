package cmd

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/catalog"
	"github.com/abhisek/mathlingo/internal/chapters"
	"github.com/abhisek/mathlingo/internal/config"
	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/progress"
	"github.com/abhisek/mathlingo/internal/store"
)

// runtime is the wired application behind a command.
type runtime struct {
	store   *store.Store
	engine  *engine.Engine
	catalog *catalog.Catalog
	path    *chapters.Path
	log     *logger.Logger
}

func (r *runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// newRuntime opens the store and builds the engine over the configured
// content.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, log := settings.cfg, settings.log
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	path, err := learningPath(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	cat := loadCatalog(cmd.Context(), cfg, log)
	eng := engine.New(engine.Deps{
		Catalog:      cat,
		Path:         path,
		Instantiator: newInstantiator(cfg, log),
		Progress:     progress.NewManager(st.ProgressRepo(), path.First(), log, progress.WithScheduleGating(cfg.Engine.GateReviewSchedule)),
		Events:       st.EventRepo(),
		BatchSize:    cfg.Engine.BatchSize,
		Log:          log,
	})
	return &runtime{store: st, engine: eng, catalog: cat, path: path, log: log}, nil
}

func learningPath(cfg *config.Config) (*chapters.Path, error) {
	def := chapters.Default()
	if slices.Equal(cfg.Chapters, def.IDs()) {
		return def, nil
	}
	return chapters.FromIDs(cfg.Chapters)
}

// loadCatalog serves the templates directory when one is configured and
// the built-in set otherwise.
func loadCatalog(ctx context.Context, cfg *config.Config, log *logger.Logger) *catalog.Catalog {
	if cfg.TemplatesDir == "" {
		return catalog.New(catalog.Fallback())
	}
	return catalog.Load(ctx, catalog.NewDirSource(cfg.TemplatesDir), cfg.Chapters, log)
}

func newInstantiator(cfg *config.Config, log *logger.Logger) *problemgen.Instantiator {
	pc := problemgen.DefaultConfig()
	pc.FreeInputEnabled = cfg.Engine.FreeInputEnabled
	pc.MaxRegenerateAttempts = cfg.Engine.MaxRegenerateAttempts
	return problemgen.NewInstantiator(pc, problemgen.NewRandom(cfg.Engine.Seed), log)
}
