package chat_history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToHistory(t *testing.T) {
	h := NewChatHistory(0)
	h.AddToHistory("what does main do?", "It starts the server.")

	history := h.GetHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "User: what does main do?\n\nAssistant: It starts the server.", history[0])
}

func TestHistoryKeepsMostRecentEntries(t *testing.T) {
	h := NewChatHistory(2)
	h.AddToHistory("q1", "a1")
	h.AddToHistory("q2", "a2")
	h.AddToHistory("q3", "a3")

	history := h.GetHistory()
	require.Len(t, history, 2)
	assert.Contains(t, history[0], "q2")
	assert.Contains(t, history[1], "q3")
}

func TestGetHistoryReturnsCopy(t *testing.T) {
	h := NewChatHistory(5)
	h.AddToHistory("q", "a")

	history := h.GetHistory()
	history[0] = "changed"
	assert.Contains(t, h.GetHistory()[0], "User: q")
}

func TestClearHistory(t *testing.T) {
	h := NewChatHistory(5)
	h.AddToHistory("q", "a")
	h.ClearHistory()
	assert.Empty(t, h.GetHistory())
}
