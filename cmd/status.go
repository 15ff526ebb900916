package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/devcli/devcli/code_analyzer"
	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/context_store"
	"github.com/devcli/devcli/utils"
	"github.com/spf13/cobra"
)

// statusCmd: devcli status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which files changed since the context was stored.",
	Long: `The 'status' command rescans the project and compares it with the stored context,
listing added, modified and removed files. Use --diff to print unified diffs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		showDiff, _ := cmd.Flags().GetBool("diff")
		return handleStatusCommand(rootDependencies, showDiff)
	},
}

func init() {
	statusCmd.Flags().BoolP("diff", "d", false, "Print a unified diff for every changed file.")
	rootCmd.AddCommand(statusCmd)
}

func handleStatusCommand(rootDependencies *RootDependencies, showDiff bool) error {
	stored, err := context_store.Load(context_store.Locate(rootDependencies.Cwd))
	if err != nil {
		return err
	}

	cfg := rootDependencies.Config
	rules, err := cfg.IgnoreRules(stored.Root)
	if err != nil {
		return err
	}

	spinner, _ := newSpinner().Start("Comparing with the stored context...")
	scan, err := code_analyzer.Scan(stored.Root, rules, cfg.PerFileByteCap,
		code_analyzer.WithMaxFileSize(cfg.MaxFileSize),
		code_analyzer.WithExtensions(cfg.Extensions),
		code_analyzer.WithLogger(rootDependencies.Logger),
	)
	_ = spinner.Stop()
	if err != nil {
		return err
	}

	changes := code_analyzer.DetectChanges(stored, scan)
	if !changes.HasChanges() {
		fmt.Println(lipgloss.Green.Render("✔ The stored context is up to date."))
	} else {
		for _, change := range changes.Changes {
			fmt.Println(formatChange(change))
		}
	}
	if changes.Untracked > 0 {
		fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("%d file(s) were not part of the truncated context and were not compared.", changes.Untracked)))
	}

	if showDiff {
		for _, change := range changes.Changes {
			diff, err := code_analyzer.UnifiedDiff(change)
			if err != nil {
				return err
			}
			fmt.Println()
			if err := utils.RenderMarkdown(context.Background(), os.Stdout, "```diff\n"+diff+"```\n", cfg.Theme); err != nil {
				return fmt.Errorf("error rendering diff: %w", err)
			}
		}
	}

	if changes.HasChanges() {
		fmt.Println(lipgloss.Yellow.Render("Run 'devcli init --force' to refresh the context."))
	}
	return nil
}

func formatChange(change models.FileChange) string {
	switch change.Kind {
	case models.ChangeAdded:
		return lipgloss.Green.Render("  added:    " + change.Path)
	case models.ChangeRemoved:
		return lipgloss.Red.Render("  removed:  " + change.Path)
	default:
		return lipgloss.Yellow.Render("  modified: " + change.Path)
	}
}
