package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/devcli/devcli/code_analyzer"
	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/spf13/cobra"
)

// treeCmd: devcli tree
var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Print the files a scan would include.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		root := rootDependencies.Cwd
		if len(args) == 1 {
			root = args[0]
		}
		return handleTreeCommand(rootDependencies, root)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func handleTreeCommand(rootDependencies *RootDependencies, root string) error {
	cfg := rootDependencies.Config

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", root, err)
	}
	rules, err := cfg.IgnoreRules(absRoot)
	if err != nil {
		return err
	}

	scan, err := code_analyzer.Scan(absRoot, rules, cfg.PerFileByteCap,
		code_analyzer.WithMaxFileSize(cfg.MaxFileSize),
		code_analyzer.WithExtensions(cfg.Extensions),
		code_analyzer.WithLogger(rootDependencies.Logger),
	)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(scan.Files))
	for _, file := range scan.Files {
		paths = append(paths, file.Path)
	}
	fmt.Print(code_analyzer.GetFileTree(filepath.Base(absRoot), paths))
	fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("%d files, %d lines, %d skipped", len(scan.Files), scan.TotalLines(), len(scan.Skipped))))
	return nil
}
