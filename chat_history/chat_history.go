package chat_history

import (
	"fmt"

	"github.com/devcli/devcli/chat_history/contracts"
)

// DefaultMaxEntries bounds how many exchanges are replayed into a prompt.
const DefaultMaxEntries = 10

type chatHistory struct {
	history    []string
	maxEntries int
}

// NewChatHistory keeps the most recent maxEntries exchanges. Non-positive values use DefaultMaxEntries.
func NewChatHistory(maxEntries int) contracts.IChatHistory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &chatHistory{maxEntries: maxEntries}
}

func (ch *chatHistory) AddToHistory(userInput string, aiResponse string) {
	ch.history = append(ch.history, fmt.Sprintf("User: %s\n\nAssistant: %s", userInput, aiResponse))
	if over := len(ch.history) - ch.maxEntries; over > 0 {
		ch.history = append([]string(nil), ch.history[over:]...)
	}
}

// GetHistory returns a copy of the retained exchanges, oldest first.
func (ch *chatHistory) GetHistory() []string {
	return append([]string(nil), ch.history...)
}

func (ch *chatHistory) ClearHistory() {
	ch.history = nil
}
