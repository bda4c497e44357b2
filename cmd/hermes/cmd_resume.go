package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hermes/internal/store"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume an existing research campaign",
	Long: `Loads the problem tree already on disk under <workspace>/.hermes and
drives the engine loop again with the focus on the root problem; the focus
stack of the earlier run is not restored.`,
	RunE: runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	cfg, err := loadConfig(ws)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	st := store.New(cfg.RootDir, cfg.BackupDir)
	root, err := st.LoadExisting()
	if err != nil {
		return fmt.Errorf("load existing campaign: %w", err)
	}
	if root == nil {
		return fmt.Errorf("no existing campaign found under %s; run 'hermes research' first", cfg.RootDir)
	}

	return runEngine(cmd.Context(), st, root, cfg)
}
