package llm

import (
	"net/http"

	"github.com/promptforge/generation-api/internal/model"
)

// NewGrokClient creates an xAI Grok adapter over the OpenAI wire format.
func NewGrokClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.x.ai/v1"
	}
	return &OpenAIClient{
		provider:   model.ProviderGrok,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}
