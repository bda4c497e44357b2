package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hermes/internal/problem"
	"hermes/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current campaign's problem tree",
	Long:  `Prints the problem tree on disk, one line per node, with a status emoji and criteria completion count.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	cfg, err := loadConfig(ws)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st := store.New(cfg.RootDir, cfg.BackupDir)
	root, err := st.LoadExisting()
	if err != nil {
		return fmt.Errorf("load existing campaign: %w", err)
	}
	if root == nil {
		fmt.Println("no campaign found; run 'hermes research' to start one")
		return nil
	}

	fmt.Print(renderTreeStatus(root, 0))
	return nil
}

// renderTreeStatus renders node and its descendants as an indented,
// emoji-prefixed status listing.
func renderTreeStatus(node *problem.Node, depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)
	criteria, done := node.CriteriaSnapshot()
	met := 0
	for _, d := range done {
		if d {
			met++
		}
	}
	fmt.Fprintf(&sb, "%s%s %s [%d/%d criteria]\n", indent, problem.StatusEmoji(node.GetStatus()), node.Title, met, len(criteria))
	for _, child := range node.Subproblems() {
		sb.WriteString(renderTreeStatus(child, depth+1))
	}
	return sb.String()
}
