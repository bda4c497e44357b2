package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hermes/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hermes configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml into the workspace",
	Long:  `Writes <workspace>/.hermes/config.yaml with the default settings, without overwriting one that already exists unless --force is passed.`,
	RunE:  runConfigInit,
}

var forceConfigInit bool

func init() {
	configInitCmd.Flags().BoolVarP(&forceConfigInit, "force", "f", false, "Overwrite an existing config.yaml")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	cfgPath := filepath.Join(ws, ".hermes", "config.yaml")

	if !forceConfigInit {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", cfgPath)
		}
	}

	cfg := config.DefaultConfig()
	cfg.RootDir = filepath.Join(ws, ".hermes")
	cfg.BackupDir = filepath.Join(ws, ".hermes", "backup")
	if err := cfg.Save(cfgPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("wrote default config to %s\n", cfgPath)
	return nil
}
