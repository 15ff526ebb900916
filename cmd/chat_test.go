package cmd

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devcli/devcli/chat_history"
	"github.com/devcli/devcli/code_analyzer"
	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/providers"
	providerModels "github.com/devcli/devcli/providers/models"
	"github.com/devcli/devcli/token_management"
	"github.com/stretchr/testify/assert"
)

func testDependencies(t *testing.T) *RootDependencies {
	return &RootDependencies{
		Cwd:             t.TempDir(),
		Analyzer:        code_analyzer.NewCodeAnalyzer(t.TempDir()),
		ChatHistory:     chat_history.NewChatHistory(chat_history.DefaultMaxEntries),
		TokenManagement: token_management.NewTokenManager(token_management.DefaultCharsPerToken),
		ModelConfig:     &providers.AIProviderConfig{Provider: "ollama", ModelName: "llama3.1"},
	}
}

func TestHandleChatSubCommand(t *testing.T) {
	deps := testDependencies(t)
	deps.ChatHistory.AddToHistory("q", "a")

	handled, exit := handleChatSubCommand("/exit", deps, nil)
	assert.True(t, handled)
	assert.True(t, exit)

	handled, exit = handleChatSubCommand("/clear-history", deps, nil)
	assert.True(t, handled)
	assert.False(t, exit)
	assert.Empty(t, deps.ChatHistory.GetHistory())

	// unknown commands are swallowed instead of being sent to the model
	handled, exit = handleChatSubCommand("/frobnicate", deps, nil)
	assert.True(t, handled)
	assert.False(t, exit)
}

func TestFormatContextSummary(t *testing.T) {
	assert.Equal(t, "No project context loaded.", formatContextSummary(nil, models.CacheStats{}))

	summary := formatContextSummary(&models.ProjectContext{
		Root:       "/work/shop",
		ScannedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalFiles: 10,
		TotalLines: 500,
		Truncated:  true,
		Files:      []models.FileSummary{{Path: "a.go", Lines: 20}, {Path: "b.go", Lines: 30}},
	}, models.CacheStats{Entries: 2, Hits: 3, Misses: 1})

	assert.Contains(t, summary, "Root:       /work/shop\n")
	assert.Contains(t, summary, "Files:      2 of 10 (50 of 500 lines)\n")
	assert.Contains(t, summary, "Truncated:  true\n")
	assert.Contains(t, summary, "2 files cached, 75.0% hit rate")
}

func TestFormatInitSummary(t *testing.T) {
	scan := &models.ScanResult{Skipped: []*models.FileReadError{{Path: "logo.png", Err: models.ErrBinaryFile}}}
	ctx := &models.ProjectContext{
		TotalFiles: 3,
		TotalLines: 60,
		Files:      []models.FileSummary{{Path: "a.go", Lines: 10}, {Path: "b.go", Lines: 20, Truncated: true}},
	}

	summary := formatInitSummary("/p/.devcli/context.yaml", scan, ctx, 2000)

	assert.Contains(t, summary, "/p/.devcli/context.yaml")
	assert.Contains(t, summary, "Files scanned:  3 (60 lines)\n")
	assert.Contains(t, summary, "Files included: 2 (30 lines)\n")
	assert.Contains(t, summary, "Truncated:      1\n")
	assert.Contains(t, summary, "Skipped:        1\n")
	assert.True(t, strings.HasSuffix(summary, "Token budget:   2000"))
}

func TestFormatChange(t *testing.T) {
	assert.Contains(t, formatChange(models.FileChange{Path: "a.go", Kind: models.ChangeAdded}), "added:    a.go")
	assert.Contains(t, formatChange(models.FileChange{Path: "b.go", Kind: models.ChangeModified}), "modified: b.go")
	assert.Contains(t, formatChange(models.FileChange{Path: "c.go", Kind: models.ChangeRemoved}), "removed:  c.go")
}

func TestRetryHint(t *testing.T) {
	unavailable := &providerModels.ProviderError{Provider: "ollama", Op: "chat", Err: providerModels.ErrUnavailable}
	assert.Contains(t, retryHint(unavailable, "http://localhost:11434"), "ollama serve")
	assert.Contains(t, retryHint(unavailable, "http://localhost:11434"), "http://localhost:11434")

	timeout := &providerModels.ProviderError{Provider: "ollama", Op: "chat", Err: providerModels.ErrTimeout}
	assert.Contains(t, retryHint(timeout, ""), "--request_timeout")

	assert.Empty(t, retryHint(providerModels.ErrEmptyResponse, ""))
	assert.Empty(t, retryHint(errors.New("boom"), ""))
}
