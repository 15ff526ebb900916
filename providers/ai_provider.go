package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/devcli/devcli/providers/contracts"
	"github.com/devcli/devcli/providers/models"
	"github.com/devcli/devcli/providers/ollama"
	contracts2 "github.com/devcli/devcli/token_management/contracts"
)

// AIProviderConfig holds the resolved settings of one configured model.
type AIProviderConfig struct {
	Provider    string        `mapstructure:"provider"`
	ModelName   string        `mapstructure:"model_name"`
	BaseURL     string        `mapstructure:"base_url"`
	ApiKey      string        `mapstructure:"api_key"`
	Temperature *float32      `mapstructure:"temperature"`
	NumCtx      int           `mapstructure:"num_ctx"`
	Timeout     time.Duration `mapstructure:"-"`
}

// SupportedProviders lists the provider names ChatProviderFactory accepts.
var SupportedProviders = []string{"ollama"}

// ChatProviderFactory creates the chat provider named by config.Provider.
func ChatProviderFactory(config *AIProviderConfig, tokenManagement contracts2.ITokenManagement) (contracts.IChatAIProvider, error) {
	if config == nil {
		return nil, models.ErrModelNotConfigured
	}
	if strings.TrimSpace(config.ModelName) == "" {
		return nil, fmt.Errorf("%w: provider %q has no model name", models.ErrModelNotConfigured, config.Provider)
	}

	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "ollama", "":
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Model:           config.ModelName,
			Temperature:     config.Temperature,
			NumCtx:          config.NumCtx,
			Timeout:         config.Timeout,
			TokenManagement: tokenManagement,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s)", models.ErrUnknownProvider, config.Provider, strings.Join(SupportedProviders, ", "))
	}
}
