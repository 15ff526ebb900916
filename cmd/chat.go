package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/utils"
	"github.com/spf13/cobra"
)

const chatHelp = `/help           Show this help
/exit           Leave the session
/clear          Clear the screen
/history        Show the conversation kept for follow-up questions
/clear-history  Forget the conversation
/token          Token usage of the session
/context        Summary of the loaded project context`

// chatCmd: devcli chat
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session about the project.",
	Long: `The 'chat' command opens a session in which each question is sent with the stored project
context and the most recent exchanges, so follow-up questions can refer to earlier answers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, true)
		if err != nil {
			return err
		}
		withGit, _ := cmd.Flags().GetBool("git")
		return handleChatCommand(rootDependencies, withGit)
	},
}

func init() {
	chatCmd.Flags().BoolP("git", "g", false, "Include the branch, uncommitted changes and recent commits in every request.")
	rootCmd.AddCommand(chatCmd)
}

func handleChatCommand(rootDependencies *RootDependencies, withGit bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go utils.GracefulShutdown(ctx, cancel, func() {
		rootDependencies.ChatHistory.ClearHistory()
		rootDependencies.TokenManagement.ClearToken()
	})

	fmt.Println(lipgloss.BoxStyle.Render("/help  Help for chat commands"))

	spinner, _ := newSpinner().Start("Loading context...")
	projectContext := loadProjectContext(rootDependencies)
	_ = spinner.Stop()

	reader := bufio.NewReader(os.Stdin)
	for {
		userInput, err := utils.InputPromptWithContext(ctx, reader)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, utils.ErrInputClosed) {
				fmt.Println(lipgloss.Yellow.Render("Exiting..."))
				return nil
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			continue
		}

		if userInput == "" {
			continue
		}

		if strings.HasPrefix(userInput, "/") {
			handled, exit := handleChatSubCommand(userInput, rootDependencies, projectContext)
			if exit {
				return nil
			}
			if handled {
				continue
			}
		}

		requestedContext := ""
		if withGit {
			requestedContext = gitContext(ctx, rootDependencies)
		}

		if err := sendQuestion(ctx, rootDependencies, projectContext, userInput, requestedContext); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println(lipgloss.Yellow.Render("Request cancelled."))
				return nil
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		}
		rootDependencies.TokenManagement.DisplayTokens(rootDependencies.ModelConfig.ModelName)
	}
}

// handleChatSubCommand runs a slash command. Unknown commands are reported and not sent to the model.
func handleChatSubCommand(command string, rootDependencies *RootDependencies, projectContext *models.ProjectContext) (handled bool, exit bool) {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "/help":
		fmt.Println(lipgloss.BoxStyle.Render(chatHelp))
	case "/exit", "/quit":
		return true, true
	case "/clear":
		fmt.Print("\033[2J\033[H")
	case "/history":
		history := rootDependencies.ChatHistory.GetHistory()
		if len(history) == 0 {
			fmt.Println(lipgloss.Gray.Render("No conversation yet."))
			break
		}
		for i, entry := range history {
			fmt.Println(lipgloss.Info.Render(fmt.Sprintf("#%d", i+1)))
			fmt.Println(entry)
			fmt.Println()
		}
	case "/clear-history":
		rootDependencies.ChatHistory.ClearHistory()
		fmt.Println(lipgloss.Green.Render("Conversation cleared."))
	case "/token":
		rootDependencies.TokenManagement.DisplayTokens(rootDependencies.ModelConfig.ModelName)
	case "/context":
		fmt.Println(lipgloss.BoxStyle.Render(formatContextSummary(projectContext, rootDependencies.Analyzer.CacheStats())))
	default:
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Unknown command %s, type /help for the list.", command)))
	}
	return true, false
}

func formatContextSummary(projectContext *models.ProjectContext, cacheStats models.CacheStats) string {
	if projectContext == nil {
		return "No project context loaded."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Root:       %s\n", projectContext.Root))
	sb.WriteString(fmt.Sprintf("Scanned at: %s\n", projectContext.ScannedAt.Local().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Files:      %d of %d (%d of %d lines)\n",
		len(projectContext.Files), projectContext.TotalFiles, projectContext.IncludedLines(), projectContext.TotalLines))
	sb.WriteString(fmt.Sprintf("Truncated:  %t\n", projectContext.Truncated))
	sb.WriteString(fmt.Sprintf("Symbols:    %d files cached, %.1f%% hit rate", cacheStats.Entries, cacheStats.HitRate()))
	return sb.String()
}
