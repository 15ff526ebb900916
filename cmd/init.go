package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/devcli/devcli/code_analyzer"
	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/context_store"
	"github.com/devcli/devcli/token_management"
	"github.com/spf13/cobra"
)

// initCmd: devcli init
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Scan the project and store a size-bounded context for later questions.",
	Long: `The 'init' command walks the project (the current directory by default), skipping ignored,
binary and oversized files, and writes the files that fit the token budget to .devcli/context.yaml.
Files that do not fit are left out; the last file that partially fits is cut.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		maxTokens, _ := cmd.Flags().GetInt("max-tokens")

		root := rootDependencies.Cwd
		if len(args) == 1 {
			root = args[0]
		}
		return handleInitCommand(rootDependencies, root, force, maxTokens)
	},
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing stored context.")
	initCmd.Flags().Int("max-tokens", 0, "Token budget of the context (defaults to max_tokens from the configuration).")
	rootCmd.AddCommand(initCmd)
}

func handleInitCommand(rootDependencies *RootDependencies, root string, force bool, maxTokens int) error {
	cfg := rootDependencies.Config

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", root, err)
	}

	destination := context_store.DefaultPath(absRoot)
	if context_store.Exists(destination) && !force {
		return fmt.Errorf("a context already exists at %s (use --force to overwrite it)", destination)
	}

	if maxTokens <= 0 {
		maxTokens = cfg.MaxTokens
	}
	budget := token_management.BudgetChars(maxTokens, cfg.CharsPerToken)

	rules, err := cfg.IgnoreRules(absRoot)
	if err != nil {
		return err
	}

	spinner, _ := newSpinner().Start("Scanning project...")

	scan, err := code_analyzer.Scan(absRoot, rules, cfg.PerFileByteCap,
		code_analyzer.WithMaxFileSize(cfg.MaxFileSize),
		code_analyzer.WithExtensions(cfg.Extensions),
		code_analyzer.WithLogger(rootDependencies.Logger),
	)
	if err != nil {
		_ = spinner.Stop()
		return err
	}

	spinner.UpdateText("Building context...")
	projectContext, err := code_analyzer.Build(scan, budget)
	if err != nil {
		_ = spinner.Stop()
		return fmt.Errorf("cannot build a context within %d tokens (%d characters): %w", maxTokens, budget, err)
	}

	if err := context_store.Save(projectContext, destination); err != nil {
		_ = spinner.Stop()
		return err
	}
	_ = spinner.Stop()

	rootDependencies.Logger.Debug("context saved",
		rootDependencies.Logger.Args("path", destination, "scan_id", projectContext.ScanID, "budget_chars", budget))

	fmt.Println(lipgloss.BoxStyle.Render(formatInitSummary(destination, scan, projectContext, maxTokens)))
	if projectContext.Truncated {
		fmt.Println(lipgloss.Yellow.Render("The project does not fit the token budget; raise --max-tokens or ignore more paths to include everything."))
	}
	return nil
}

func formatInitSummary(destination string, scan *models.ScanResult, projectContext *models.ProjectContext, maxTokens int) string {
	truncatedFiles := 0
	for _, file := range projectContext.Files {
		if file.Truncated {
			truncatedFiles++
		}
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.Green.Render("✔ Context saved to "+destination) + "\n\n")
	sb.WriteString(fmt.Sprintf("Files scanned:  %d (%d lines)\n", projectContext.TotalFiles, projectContext.TotalLines))
	sb.WriteString(fmt.Sprintf("Files included: %d (%d lines)\n", len(projectContext.Files), projectContext.IncludedLines()))
	sb.WriteString(fmt.Sprintf("Truncated:      %d\n", truncatedFiles))
	sb.WriteString(fmt.Sprintf("Skipped:        %d\n", len(scan.Skipped)))
	sb.WriteString(fmt.Sprintf("Token budget:   %d", maxTokens))
	return sb.String()
}
