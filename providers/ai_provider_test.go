package providers

import (
	"errors"
	"testing"

	"github.com/devcli/devcli/providers/models"
	"github.com/devcli/devcli/providers/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatProviderFactory_Ollama(t *testing.T) {
	provider, err := ChatProviderFactory(&AIProviderConfig{
		Provider:  "Ollama",
		ModelName: "llama3.1",
		BaseURL:   "http://127.0.0.1:9999",
	}, nil)
	require.NoError(t, err)

	ollamaProvider, ok := provider.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:9999", ollamaProvider.BaseURL())
}

func TestChatProviderFactory_UnknownProvider(t *testing.T) {
	_, err := ChatProviderFactory(&AIProviderConfig{Provider: "openai", ModelName: "gpt-4o"}, nil)
	assert.True(t, errors.Is(err, models.ErrUnknownProvider))
	assert.Contains(t, err.Error(), "openai")
}

func TestChatProviderFactory_MissingModel(t *testing.T) {
	_, err := ChatProviderFactory(nil, nil)
	assert.True(t, errors.Is(err, models.ErrModelNotConfigured))

	_, err = ChatProviderFactory(&AIProviderConfig{Provider: "ollama"}, nil)
	assert.True(t, errors.Is(err, models.ErrModelNotConfigured))
}
