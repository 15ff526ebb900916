package models

// ChatResponse is the complete, non-streamed answer of a chat provider.
type ChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// AIError is the error body returned by the model server.
type AIError struct {
	Error string `json:"error"`
}
