package cmd

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/config"
	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mathlingo",
	Short: "Adaptive maths practice for the French seconde",
	Long: `Mathlingo serves practice questions drawn from parameterized templates,
tracks mistakes and progress per learner, and unlocks chapters along the
seconde learning path.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if settings.log != nil {
			settings.log.Sync()
		}
	},
}

// settings are resolved once per invocation from flags, the config file
// and the environment.
var settings struct {
	cfg *config.Config
	log *logger.Logger
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHLINGO_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a mathlingo.yaml config file")
	rootCmd.PersistentFlags().String("learner", defaultLearner(), "Learner id progress is recorded under")
	rootCmd.PersistentFlags().String("log", "", "Log mode: dev, prod or quiet (default from config)")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(chaptersCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadSettings(cmd *cobra.Command) error {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return err
	}
	mode := cfg.LogMode
	if m, _ := cmd.Flags().GetString("log"); m != "" {
		mode = m
	} else if cmd.Annotations["interactive"] == "true" {
		mode = "quiet"
	}
	log, err := logger.New(mode)
	if err != nil {
		return err
	}
	settings.cfg = cfg
	settings.log = log
	return nil
}

func defaultLearner() string {
	if id := os.Getenv("MATHLINGO_LEARNER"); id != "" {
		return id
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

func learnerID(cmd *cobra.Command) (string, error) {
	id, _ := cmd.Flags().GetString("learner")
	if id == "" {
		return "", fmt.Errorf("--learner must not be empty")
	}
	return id, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db_path from the config, then MATHLINGO_DB or the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if settings.cfg != nil && settings.cfg.DBPath != "" {
		return settings.cfg.DBPath, store.EnsureDir(settings.cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
