package cmd

import (
	"fmt"
	"strings"

	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/providers"
	"github.com/spf13/cobra"
)

// configCmd: devcli config
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration.",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		fmt.Println(lipgloss.BoxStyle.Render(formatConfig(rootDependencies)))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save it to the configuration file.",
	Long: `The 'config set' command changes one setting and writes the configuration back to the file it
was loaded from, or to ~/.devcli/config.yaml. Lists such as project_ignore take comma separated values.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		if err := rootDependencies.Config.UpdateConfig(args[0], args[1]); err != nil {
			return err
		}
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔ %s updated in %s", args[0], rootDependencies.Config.ConfigFile)))
		return nil
	},
}

// modelCmd: devcli model
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage configured models.",
}

var modelAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a model under a short name.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, false)
		if err != nil {
			return err
		}
		provider, _ := cmd.Flags().GetString("provider")
		modelName, _ := cmd.Flags().GetString("model")
		apiKey, _ := cmd.Flags().GetString("api-key")

		if err := rootDependencies.Config.AddModel(args[0], provider, modelName, apiKey); err != nil {
			return err
		}
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔ model %s added to %s", args[0], rootDependencies.Config.ConfigFile)))
		return nil
	},
}

func init() {
	modelAddCmd.Flags().String("provider", "ollama", "Provider serving the model ("+strings.Join(providers.SupportedProviders, ", ")+").")
	modelAddCmd.Flags().String("model", "", "Model name as the provider knows it, e.g. qwen2.5-coder:7b.")
	modelAddCmd.Flags().String("api-key", "", "API key, if the provider needs one.")
	_ = modelAddCmd.MarkFlagRequired("model")

	configCmd.AddCommand(configShowCmd, configSetCmd)
	modelCmd.AddCommand(modelAddCmd)
	rootCmd.AddCommand(configCmd, modelCmd)
}

func formatConfig(rootDependencies *RootDependencies) string {
	cfg := rootDependencies.Config

	source := cfg.ConfigFile
	if source == "" {
		source = "(defaults)"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("config file:       %s\n", source))
	sb.WriteString(fmt.Sprintf("theme:             %s\n", cfg.Theme))
	sb.WriteString(fmt.Sprintf("log_level:         %s\n", cfg.LogLevel))
	sb.WriteString(fmt.Sprintf("default_model:     %s\n", cfg.DefaultModel))
	sb.WriteString(fmt.Sprintf("ollama_base_url:   %s\n", cfg.OllamaURL()))
	sb.WriteString(fmt.Sprintf("request_timeout:   %s\n", cfg.RequestTimeout))
	sb.WriteString(fmt.Sprintf("max_tokens:        %d (%d characters)\n", cfg.MaxTokens, cfg.BudgetChars()))
	sb.WriteString(fmt.Sprintf("chars_per_token:   %g\n", cfg.CharsPerToken))
	sb.WriteString(fmt.Sprintf("per_file_byte_cap: %d\n", cfg.PerFileByteCap))
	sb.WriteString(fmt.Sprintf("max_file_size:     %d\n", cfg.MaxFileSize))
	sb.WriteString(fmt.Sprintf("project_ignore:    %s\n", strings.Join(cfg.ProjectIgnore, ", ")))
	sb.WriteString(fmt.Sprintf("extensions:        %s\n", strings.Join(cfg.Extensions, ", ")))
	sb.WriteString("models:")
	for _, name := range cfg.ModelNames() {
		model := cfg.Models[name]
		line := fmt.Sprintf("\n  %s: %s/%s", name, model.Provider, model.ModelName)
		if model.ApiKey != "" {
			line += " (api key set)"
		}
		sb.WriteString(line)
	}
	return sb.String()
}
