package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/providers/ollama"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// modelsCmd: devcli models
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models installed in Ollama and the models configured for devcli.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		return handleModelsCommand(cmd.Context(), rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func handleModelsCommand(ctx context.Context, rootDependencies *RootDependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := rootDependencies.Config

	provider := ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
		BaseURL: cfg.OllamaURL(),
		Timeout: cfg.RequestTimeout,
	})

	installed := map[string]bool{}
	if !provider.IsAvailable(ctx) {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("✗ Ollama is not reachable at %s (start it with 'ollama serve').", provider.BaseURL())))
	} else {
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔ Ollama is running at %s", provider.BaseURL())))

		list, err := provider.ListModels(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println(lipgloss.Yellow.Render("No models installed; pull one with 'ollama pull llama3.1'."))
		} else {
			rows := pterm.TableData{{"Name", "Family", "Parameters", "Quantization", "Size"}}
			for _, m := range list {
				installed[m.Name] = true
				installed[strings.TrimSuffix(m.Name, ":latest")] = true
				rows = append(rows, []string{m.Name, m.Details.Family, m.Details.ParameterSize, m.Details.QuantizationLevel, formatSize(m.Size)})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
				return err
			}
		}
	}

	fmt.Println()
	fmt.Println(lipgloss.Info.Render("Configured models:"))
	for _, name := range cfg.ModelNames() {
		model := cfg.Models[name]
		marker := " "
		if name == strings.ToLower(cfg.DefaultModel) {
			marker = "*"
		}
		line := fmt.Sprintf(" %s %s (%s, %s)", marker, name, model.Provider, model.ModelName)
		if len(installed) > 0 && !installed[model.ModelName] {
			line += lipgloss.Yellow.Render(" not installed")
		}
		fmt.Println(line)
	}
	return nil
}

func formatSize(bytes int64) string {
	const gb = 1 << 30
	const mb = 1 << 20
	if bytes >= gb {
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	}
	return fmt.Sprintf("%.0f MB", float64(bytes)/mb)
}
