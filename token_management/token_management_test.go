package token_management

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens("", 4))
	assert.Equal(t, 3, EstimateTokens("hello world!", 4))
	// runes, not bytes
	assert.Equal(t, 1, EstimateTokens("日本語", 4))
	// non-positive ratio falls back to the default
	assert.Equal(t, 3, EstimateTokens("hello world!", 0))
}

func TestBudgetChars(t *testing.T) {
	assert.Equal(t, 8000, BudgetChars(2000, 4))
	assert.Equal(t, 7000, BudgetChars(2000, 3.5))
	assert.Equal(t, 400, BudgetChars(100, -1))
}

func TestUsedTokensAccumulatesAndClears(t *testing.T) {
	tm := NewTokenManager(4)
	tm.UsedTokens(100, 20)
	tm.UsedTokens(50, 5)

	total, input, output := tm.GetCurrentTokenUsage()
	assert.Equal(t, 175, total)
	assert.Equal(t, 150, input)
	assert.Equal(t, 25, output)

	tm.ClearToken()
	total, input, output = tm.GetCurrentTokenUsage()
	assert.Zero(t, total)
	assert.Zero(t, input)
	assert.Zero(t, output)
}

func TestContextWindow(t *testing.T) {
	tm := NewTokenManager(4)

	window, ok := tm.ContextWindow("llama3.1")
	assert.True(t, ok)
	assert.Equal(t, 131072, window)

	window, ok = tm.ContextWindow("deepseek-r1:7b")
	assert.True(t, ok)
	assert.Equal(t, 131072, window)

	window, ok = tm.ContextWindow("library/Mistral:latest")
	assert.True(t, ok)
	assert.Equal(t, 32768, window)

	_, ok = tm.ContextWindow("no-such-model")
	assert.False(t, ok)
}

func TestFormatTokens(t *testing.T) {
	tm := &tokenManager{charsPerToken: 4}
	tm.UsedTokens(10, 2)
	assert.Equal(t, "Token Used: 12 (input 10, output 2) - Chat Model: llama3.1", tm.formatTokens("llama3.1"))
}
