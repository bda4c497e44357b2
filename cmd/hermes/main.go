// Package main implements the hermes CLI — the entry point for running
// and resuming agentic research campaigns.
//
// # File Index
//
//   - main.go        - Entry point, rootCmd, global flags, init()
//   - cmd_research.go - researchCmd, runResearch() — drives the engine loop
//   - cmd_resume.go   - resumeCmd, runResume()
//   - cmd_status.go   - statusCmd, runStatus(), renderTreeStatus()
//   - cmd_config.go   - configCmd, configInitCmd, runConfigInit()
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hermes/internal/config"
	"hermes/internal/logging"
)

var (
	// Global flags
	verbose   bool
	workspace string
	backupDir string
	budget    int
	maxTurns  int

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hermes",
	Short: "hermes - an agentic research engine",
	Long: `hermes decomposes a research problem into a tree of subproblems and
works them one focused node at a time, driven by an LLM collaborator
through a small command language.

Run "hermes research <problem>" to start a new campaign, or
"hermes resume" to continue one already on disk.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "", "Directory for pre-write backups (default: <workspace>/.hermes/backup)")
	rootCmd.PersistentFlags().IntVar(&budget, "budget", 0, "Total turn budget (0 = unbounded)")
	rootCmd.PersistentFlags().IntVar(&maxTurns, "max-turns", 0, "Hard cap on engine turns regardless of budget (0 = unbounded)")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(
		researchCmd,
		resumeCmd,
		statusCmd,
		configCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the absolute workspace directory, defaulting
// to the current directory.
func resolveWorkspace() (string, error) {
	ws := workspace
	if ws == "" {
		return os.Getwd()
	}
	return filepath.Abs(ws)
}

// loadConfig loads <workspace>/.hermes/config.yaml, applying the
// command-line overrides a caller has set.
func loadConfig(ws string) (*config.Config, error) {
	cfgPath := filepath.Join(ws, ".hermes", "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg.RootDir = filepath.Join(ws, ".hermes")
	if backupDir != "" {
		cfg.BackupDir = backupDir
	} else if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(ws, ".hermes", "backup")
	}
	if budget > 0 {
		cfg.BudgetTotal = budget
	}
	return cfg, nil
}
