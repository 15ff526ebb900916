package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/context_store"
	"github.com/devcli/devcli/utils"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the stored project context.",
	Long: `The 'reset' command deletes .devcli/context.yaml from the project, and the .devcli directory
when nothing else is left in it. Use --stats to inspect the stored context instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")
		return handleResetCommand(rootDependencies, force, stats)
	},
}

func init() {
	resetCmd.Flags().BoolP("force", "f", false, "Remove the context without confirmation")
	resetCmd.Flags().BoolP("stats", "s", false, "Show statistics of the stored context and keep it")
	rootCmd.AddCommand(resetCmd)
}

func handleResetCommand(rootDependencies *RootDependencies, force bool, showStats bool) error {
	path := context_store.Locate(rootDependencies.Cwd)

	if showStats {
		stats, err := context_store.Stats(path)
		if err != nil {
			if errors.Is(err, context_store.ErrContextNotFound) {
				fmt.Println(lipgloss.Yellow.Render("No stored context."))
				return nil
			}
			return err
		}
		fmt.Println(lipgloss.Info.Render("Context Statistics:"))
		fmt.Printf("  Path:       %s\n", stats.Path)
		fmt.Printf("  Size:       %.2f KB\n", float64(stats.SizeBytes)/1024)
		fmt.Printf("  Scan ID:    %s\n", stats.ScanID)
		fmt.Printf("  Scanned At: %s\n", stats.ScannedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("  Files:      %d of %d included\n", stats.IncludedFiles, stats.TotalFiles)
		fmt.Printf("  Lines:      %d\n", stats.TotalLines)
		fmt.Printf("  Truncated:  %t\n", stats.Truncated)
		return nil
	}

	if !context_store.Exists(path) {
		fmt.Println(lipgloss.Yellow.Render("No stored context to remove."))
		return nil
	}

	if !force {
		confirmed, err := utils.ConfirmPrompt("Remove the stored project context?", bufio.NewReader(os.Stdin))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Reset cancelled."))
			return nil
		}
	}

	if err := context_store.Remove(path); err != nil {
		return err
	}
	rootDependencies.Logger.Debug("context removed", rootDependencies.Logger.Args("path", path))
	fmt.Println(lipgloss.Green.Render("✓ Project context has been removed."))
	return nil
}
