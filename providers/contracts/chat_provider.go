package contracts

import (
	"context"

	"github.com/devcli/devcli/providers/models"
)

// IChatAIProvider sends one composed request to a model and returns the full answer.
type IChatAIProvider interface {
	ChatCompletionRequest(ctx context.Context, userInput string, prompt string) (*models.ChatResponse, error)
}
