package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hermes/internal/chat"
	"hermes/internal/command"
	"hermes/internal/config"
	"hermes/internal/engine"
	"hermes/internal/knowledge"
	"hermes/internal/llmclient"
	"hermes/internal/problem"
	"hermes/internal/scheduler"
	"hermes/internal/store"
)

var researchCmd = &cobra.Command{
	Use:   "research [problem]",
	Short: "Start a new research campaign",
	Long: `Defines a new root problem and drives the engine loop to completion,
or until the budget / max-turns cap is hit.

Example:
  hermes research "Survey the tradeoffs of consensus protocols for a multi-region cache"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	definition := strings.Join(args, " ")

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
	root, err := st.CreateRoot("Root", definition)
	if err != nil {
		return fmt.Errorf("create root: %w", err)
	}

	return runEngine(cmd.Context(), st, root, cfg)
}

// runEngine wires one Engine around root and drives it to completion,
// shared by both "research" (fresh root) and "resume" (loaded root).
func runEngine(ctx context.Context, st *store.Store, root *problem.Node, cfg *config.Config) error {
	if err := st.LoadExternalFiles(); err != nil {
		return fmt.Errorf("load external files: %w", err)
	}
	if w, err := store.NewExternalWatcher(st); err == nil {
		if err := w.Start(ctx); err == nil {
			defer w.Stop()
		}
	}

	kb := knowledge.New(st)
	if entries, err := st.LoadKnowledgeBase(); err == nil {
		kb.Seed(entries)
	}

	chatReg := chat.NewRegistry()
	sch := scheduler.New(chatReg.Deliver)
	sch.Initialize(root)

	collaborator, err := llmclient.NewGenAICollaborator(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return fmt.Errorf("create LLM collaborator: %w", err)
	}
	defer collaborator.Close()

	e := engine.New(st, sch, chatReg, kb, command.Global, collaborator, root, engine.ConfigFromFile(cfg))
	return e.RunN(ctx, maxTurns)
}
