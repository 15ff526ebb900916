package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/context_store"
	providerModels "github.com/devcli/devcli/providers/models"
	"github.com/devcli/devcli/utils"
	"github.com/spf13/cobra"
)

const gitCommitLimit = 5

// askCmd: devcli ask "<question>"
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question about the project.",
	Long: `The 'ask' command sends your question to the configured model together with the stored project
context. Without a stored context (see 'devcli init') the question is sent on its own.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, true)
		if err != nil {
			return err
		}
		withGit, _ := cmd.Flags().GetBool("git")

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleAskCommand(ctx, rootDependencies, strings.Join(args, " "), withGit)
	},
}

func init() {
	askCmd.Flags().BoolP("git", "g", false, "Include the branch, uncommitted changes and recent commits in the request.")
	rootCmd.AddCommand(askCmd)
}

func handleAskCommand(ctx context.Context, rootDependencies *RootDependencies, question string, withGit bool) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return errors.New("the question is empty")
	}

	projectContext := loadProjectContext(rootDependencies)

	requestedContext := ""
	if withGit {
		requestedContext = gitContext(ctx, rootDependencies)
	}

	if err := sendQuestion(ctx, rootDependencies, projectContext, question, requestedContext); err != nil {
		return err
	}
	rootDependencies.TokenManagement.DisplayTokens(rootDependencies.ModelConfig.ModelName)
	return nil
}

// loadProjectContext returns the stored context, or nil with a warning when it cannot be loaded.
func loadProjectContext(rootDependencies *RootDependencies) *models.ProjectContext {
	path := context_store.Locate(rootDependencies.Cwd)
	projectContext, err := context_store.Load(path)
	if err != nil {
		if errors.Is(err, context_store.ErrContextNotFound) {
			fmt.Println(lipgloss.Yellow.Render("No project context found; run 'devcli init' first. Answering without it."))
		} else {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: %v. Answering without project context.", err)))
		}
		rootDependencies.Logger.Debug("context not loaded", rootDependencies.Logger.Args("path", path, "error", err))
		return nil
	}
	return projectContext
}

func gitContext(ctx context.Context, rootDependencies *RootDependencies) string {
	git := utils.NewGitOperations(rootDependencies.Cwd, nil)
	gitInfo, err := git.FormatGitContext(ctx, gitCommitLimit)
	if err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: git context unavailable: %v", err)))
		return ""
	}
	return gitInfo
}

// sendQuestion composes the request, waits for the answer, renders it and records the exchange.
func sendQuestion(ctx context.Context, rootDependencies *RootDependencies, projectContext *models.ProjectContext, question string, requestedContext string) error {
	systemPrompt, userPrompt := rootDependencies.Analyzer.GeneratePrompt(projectContext, rootDependencies.ChatHistory.GetHistory(), question, requestedContext)

	warnContextWindow(rootDependencies, systemPrompt+userPrompt)

	spinner, _ := newSpinner().Start(fmt.Sprintf("%s is thinking...", rootDependencies.ModelConfig.ModelName))
	response, err := rootDependencies.CurrentChatProvider.ChatCompletionRequest(ctx, userPrompt, systemPrompt)
	_ = spinner.Stop()
	if err != nil {
		if hint := retryHint(err, rootDependencies.ModelConfig.BaseURL); hint != "" {
			fmt.Println(lipgloss.Yellow.Render(hint))
		}
		return err
	}

	fmt.Println()
	if err := utils.RenderMarkdown(ctx, os.Stdout, response.Content, rootDependencies.Config.Theme); err != nil {
		return fmt.Errorf("error rendering answer: %w", err)
	}
	fmt.Println()

	rootDependencies.ChatHistory.AddToHistory(question, response.Content)
	return nil
}

// retryHint returns advice for transient provider failures and "" for anything else.
func retryHint(err error, baseURL string) string {
	if !providerModels.IsRetryable(err) {
		return ""
	}
	if errors.Is(err, providerModels.ErrUnavailable) {
		return fmt.Sprintf("Is Ollama running at %s? Start it with 'ollama serve' and try again.", baseURL)
	}
	return "The model did not answer in time; try again or raise --request_timeout."
}

func warnContextWindow(rootDependencies *RootDependencies, prompt string) {
	estimated := rootDependencies.TokenManagement.EstimateTokens(prompt)
	window, known := rootDependencies.TokenManagement.ContextWindow(rootDependencies.ModelConfig.ModelName)
	if rootDependencies.ModelConfig.NumCtx > 0 {
		window, known = rootDependencies.ModelConfig.NumCtx, true
	}
	rootDependencies.Logger.Debug("request composed",
		rootDependencies.Logger.Args("estimated_tokens", estimated, "context_window", window))

	if known && estimated > window {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf(
			"Warning: the request is about %d tokens but %s has a context window of %d; the model may not see all of it.",
			estimated, rootDependencies.ModelConfig.ModelName, window)))
	}
}
