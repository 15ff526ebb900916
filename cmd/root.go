package cmd

import (
	"fmt"
	"os"

	"github.com/devcli/devcli/chat_history"
	contracts_history "github.com/devcli/devcli/chat_history/contracts"
	"github.com/devcli/devcli/code_analyzer"
	contracts_analyzer "github.com/devcli/devcli/code_analyzer/contracts"
	"github.com/devcli/devcli/config"
	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/providers"
	contracts_provider "github.com/devcli/devcli/providers/contracts"
	"github.com/devcli/devcli/token_management"
	contracts_token "github.com/devcli/devcli/token_management/contracts"
	"github.com/devcli/devcli/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// RootDependencies is what every subcommand needs, assembled once per invocation.
type RootDependencies struct {
	Cwd                 string
	Config              *config.Config
	Logger              *pterm.Logger
	Analyzer            contracts_analyzer.ICodeAnalyzer
	ChatHistory         contracts_history.IChatHistory
	TokenManagement     contracts_token.ITokenManagement
	ModelConfig         *providers.AIProviderConfig
	CurrentChatProvider contracts_provider.IChatAIProvider
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devcli",
	Short: "Ask questions about your code base, answered by a local language model.",
	Long: `devcli scans a project into a size-bounded context document, stores it under .devcli/
and sends it along with your questions to a model served by Ollama.

Start with 'devcli init' in the project root, then use 'devcli ask' or 'devcli chat'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("devcli version %s", config.DefaultConfig.Version)))
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}

// handleRootCommand loads the configuration and builds the shared dependencies.
// The chat provider is only created when withProvider is set.
func handleRootCommand(cmd *cobra.Command, withProvider bool) (*RootDependencies, error) {
	rootDependencies := &RootDependencies{}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}
	rootDependencies.Cwd = cwd

	rootDependencies.Config, err = config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		return nil, err
	}

	logLevel := rootDependencies.Config.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = "debug"
	}
	rootDependencies.Logger = utils.NewLogger(logLevel, nil)
	rootDependencies.Logger.Debug("configuration loaded",
		rootDependencies.Logger.Args("config_file", rootDependencies.Config.ConfigFile, "max_tokens", rootDependencies.Config.MaxTokens))

	rootDependencies.TokenManagement = token_management.NewTokenManager(rootDependencies.Config.CharsPerToken)
	rootDependencies.ChatHistory = chat_history.NewChatHistory(chat_history.DefaultMaxEntries)
	rootDependencies.Analyzer = code_analyzer.NewCodeAnalyzer(cwd)

	if !withProvider {
		return rootDependencies, nil
	}

	rootDependencies.ModelConfig, err = rootDependencies.Config.ResolveModel(rootDependencies.Config.DefaultModel)
	if err != nil {
		return nil, err
	}

	rootDependencies.CurrentChatProvider, err = providers.ChatProviderFactory(rootDependencies.ModelConfig, rootDependencies.TokenManagement)
	if err != nil {
		return nil, err
	}
	rootDependencies.Logger.Debug("chat provider ready",
		rootDependencies.Logger.Args("provider", rootDependencies.ModelConfig.Provider, "model", rootDependencies.ModelConfig.ModelName, "base_url", rootDependencies.ModelConfig.BaseURL))

	return rootDependencies, nil
}

// newSpinner is the spinner style shared by long-running commands.
func newSpinner() *pterm.SpinnerPrinter {
	return pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
}
