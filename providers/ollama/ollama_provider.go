package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/devcli/devcli/providers/models"
	ollama_models "github.com/devcli/devcli/providers/ollama/models"
	contracts2 "github.com/devcli/devcli/token_management/contracts"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultTimeout = 120 * time.Second

	providerName = "ollama"
	maxErrorBody = 64 * 1024
)

// OllamaConfig configures an OllamaProvider.
type OllamaConfig struct {
	BaseURL         string
	Model           string
	Temperature     *float32
	NumCtx          int
	Timeout         time.Duration
	HTTPClient      *http.Client
	TokenManagement contracts2.ITokenManagement
}

// OllamaProvider talks to a local Ollama server over its REST API.
type OllamaProvider struct {
	baseURL         string
	model           string
	temperature     *float32
	numCtx          int
	client          *http.Client
	tokenManagement contracts2.ITokenManagement
}

// NewOllamaChatProvider initializes a new OllamaProvider.
func NewOllamaChatProvider(config *OllamaConfig) *OllamaProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// Accept base URLs that already carry the /api suffix.
	baseURL = strings.TrimSuffix(baseURL, "/api")

	client := config.HTTPClient
	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &OllamaProvider{
		baseURL:         baseURL,
		model:           config.Model,
		temperature:     config.Temperature,
		numCtx:          config.NumCtx,
		client:          client,
		tokenManagement: config.TokenManagement,
	}
}

// BaseURL returns the server address requests are sent to.
func (ollamaProvider *OllamaProvider) BaseURL() string {
	return ollamaProvider.baseURL
}

// ChatCompletionRequest sends the system prompt and the user input as one non-streamed chat.
func (ollamaProvider *OllamaProvider) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) (*models.ChatResponse, error) {
	if ollamaProvider.model == "" {
		return nil, &models.ProviderError{Provider: providerName, Op: "chat", Err: models.ErrModelNotConfigured}
	}

	reqBody := ollama_models.OllamaChatCompletionRequest{
		Model: ollamaProvider.model,
		Messages: []ollama_models.Message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: userInput},
		},
		Stream: false,
	}
	if ollamaProvider.temperature != nil || ollamaProvider.numCtx > 0 {
		reqBody.Options = &ollama_models.Options{
			Temperature: ollamaProvider.temperature,
			NumCtx:      ollamaProvider.numCtx,
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &models.ProviderError{Provider: providerName, Op: "chat", Err: fmt.Errorf("error marshalling request body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ollamaProvider.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, &models.ProviderError{Provider: providerName, Op: "chat", Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ollamaProvider.client.Do(req)
	if err != nil {
		return nil, &models.ProviderError{Provider: providerName, Op: "chat", Err: ollamaProvider.transportError(ctx, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.ProviderError{Provider: providerName, Op: "chat", Err: statusError(resp)}
	}

	var response ollama_models.OllamaChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &models.ProviderError{Provider: providerName, Op: "chat", Err: fmt.Errorf("error decoding response: %w", err)}
	}

	if ollamaProvider.tokenManagement != nil && (response.PromptEvalCount > 0 || response.EvalCount > 0) {
		ollamaProvider.tokenManagement.UsedTokens(response.PromptEvalCount, response.EvalCount)
	}

	if strings.TrimSpace(response.Message.Content) == "" {
		return nil, &models.ProviderError{Provider: providerName, Op: "chat", Err: models.ErrEmptyResponse}
	}

	model := response.Model
	if model == "" {
		model = ollamaProvider.model
	}

	return &models.ChatResponse{
		Content:          response.Message.Content,
		Model:            model,
		PromptTokens:     response.PromptEvalCount,
		CompletionTokens: response.EvalCount,
	}, nil
}

// IsAvailable reports whether the server answers on its root endpoint.
func (ollamaProvider *OllamaProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ollamaProvider.baseURL, nil)
	if err != nil {
		return false
	}
	resp, err := ollamaProvider.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// ListModels returns the models installed on the server.
func (ollamaProvider *OllamaProvider) ListModels(ctx context.Context) ([]ollama_models.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ollamaProvider.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, &models.ProviderError{Provider: providerName, Op: "list models", Err: fmt.Errorf("error creating request: %w", err)}
	}

	resp, err := ollamaProvider.client.Do(req)
	if err != nil {
		return nil, &models.ProviderError{Provider: providerName, Op: "list models", Err: ollamaProvider.transportError(ctx, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.ProviderError{Provider: providerName, Op: "list models", Err: statusError(resp)}
	}

	var tags ollama_models.OllamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, &models.ProviderError{Provider: providerName, Op: "list models", Err: fmt.Errorf("error decoding response: %w", err)}
	}
	if tags.Models == nil {
		tags.Models = []ollama_models.ModelInfo{}
	}
	return tags.Models, nil
}

func (ollamaProvider *OllamaProvider) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: no answer from %s: %v", models.ErrTimeout, ollamaProvider.baseURL, err)
	}

	return fmt.Errorf("%w: cannot connect to Ollama at %s, make sure it is running (start it with 'ollama serve'): %v",
		models.ErrUnavailable, ollamaProvider.baseURL, err)
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(body))
	var apiError models.AIError
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error != "" {
		message = apiError.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return fmt.Errorf("%w: status code '%d' - %s", models.ErrRequestFailed, resp.StatusCode, message)
}
