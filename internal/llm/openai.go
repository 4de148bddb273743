package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/promptforge/generation-api/internal/model"
)

// OpenAIClient calls OpenAI-compatible chat completion endpoints. The same
// wire format serves OpenAI, Perplexity and Grok.
type OpenAIClient struct {
	provider   model.Provider
	baseURL    string
	httpClient *http.Client

	// estimateUsage ignores reported usage and always estimates client-side.
	estimateUsage bool
}

// NewOpenAIClient creates an OpenAI adapter. An empty baseURL uses the
// public OpenAI endpoint.
func NewOpenAIClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		provider:   model.ProviderOpenAI,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() model.Provider {
	return c.provider
}

// Call sends a chat completion request.
func (c *OpenAIClient) Call(ctx context.Context, params CallParams) (*Result, error) {
	if err := validateParams(c.provider, params); err != nil {
		return nil, err
	}

	cfg := openai.DefaultConfig(params.APIKey)
	cfg.BaseURL = strings.TrimRight(c.baseURL, "/")
	cfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(cfg)

	// Convert messages to OpenAI format
	messages := make([]openai.ChatCompletionMessage, len(params.Messages))
	for i, msg := range params.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	callCtx, cancel := withTimeout(ctx, params.Timeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       params.Model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: float32(params.Temperature),
	})
	if err != nil {
		return nil, c.mapError(callCtx, err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	tokens := resp.Usage.CompletionTokens
	if c.estimateUsage || tokens <= 0 {
		tokens = EstimateTokens(content)
	}

	return &Result{
		OutputText: content,
		TokenCount: tokens,
	}, nil
}

func (c *OpenAIClient) mapError(callCtx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(c.provider, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusError(c.provider, reqErr.HTTPStatusCode, "")
	}

	return transportError(c.provider, callCtx, err)
}
