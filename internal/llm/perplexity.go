package llm

import (
	"net/http"

	"github.com/promptforge/generation-api/internal/model"
)

// NewPerplexityClient creates a Perplexity adapter. Perplexity speaks the
// OpenAI wire format; usage is always estimated client-side.
func NewPerplexityClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.perplexity.ai"
	}
	return &OpenAIClient{
		provider:      model.ProviderPerplexity,
		baseURL:       baseURL,
		httpClient:    &http.Client{},
		estimateUsage: true,
	}
}
