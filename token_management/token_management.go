package token_management

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/devcli/devcli/constants/lipgloss"
	"github.com/devcli/devcli/embed_data"
	"github.com/devcli/devcli/token_management/contracts"
)

// DefaultCharsPerToken approximates the tokenizer of most local models on source code and English.
const DefaultCharsPerToken = 4.0

// TokenManager implementation
type tokenManager struct {
	mu              sync.Mutex
	charsPerToken   float64
	usedToken       int
	usedInputToken  int
	usedOutputToken int
}

type details struct {
	ContextWindow int    `json:"context_window"`
	Family        string `json:"family"`
}

type Models struct {
	ModelDetails map[string]details `json:"models"`
}

var (
	modelDetailsOnce sync.Once
	modelDetails     Models
	modelDetailsErr  error
)

// NewTokenManager creates a new token manager. Non-positive ratios fall back to DefaultCharsPerToken.
func NewTokenManager(charsPerToken float64) contracts.ITokenManagement {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &tokenManager{charsPerToken: charsPerToken}
}

// UsedTokens accumulates the token count for the session.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

// EstimateTokens counts runes, not bytes, and rounds to the nearest token.
func (tm *tokenManager) EstimateTokens(text string) int {
	return EstimateTokens(text, tm.charsPerToken)
}

func (tm *tokenManager) ContextWindow(model string) (int, bool) {
	d, err := getModelDetails(model)
	if err != nil {
		return 0, false
	}
	return d.ContextWindow, true
}

func (tm *tokenManager) DisplayTokens(chatModel string) {
	fmt.Println(lipgloss.BoxStyle.Render(tm.formatTokens(chatModel)))
}

func (tm *tokenManager) formatTokens(chatModel string) string {
	total, input, output := tm.GetCurrentTokenUsage()
	return fmt.Sprintf("Token Used: %d (input %d, output %d) - Chat Model: %s", total, input, output, chatModel)
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) ClearToken() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}

// EstimateTokens converts a character count into an approximate token count.
func EstimateTokens(text string, charsPerToken float64) int {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return int(float64(utf8.RuneCountInString(text))/charsPerToken + 0.5)
}

// BudgetChars converts a token budget into the character budget of the context document.
func BudgetChars(maxTokens int, charsPerToken float64) int {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return int(float64(maxTokens) * charsPerToken)
}

// getModelDetails looks up a model by name, ignoring its ":tag" suffix and namespace.
func getModelDetails(modelName string) (details, error) {
	modelDetailsOnce.Do(func() {
		modelDetails = Models{ModelDetails: make(map[string]details)}
		modelDetailsErr = json.Unmarshal(embed_data.ModelDetails, &modelDetails)
	})
	if modelDetailsErr != nil {
		return details{}, fmt.Errorf("error unmarshaling model details: %w", modelDetailsErr)
	}

	name := strings.ToLower(strings.TrimSpace(modelName))
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, ":"); i >= 0 {
		name = name[:i]
	}

	model, exists := modelDetails.ModelDetails[name]
	if !exists {
		return details{}, fmt.Errorf("model details with name '%s' not found", modelName)
	}
	return model, nil
}
