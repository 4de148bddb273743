// Package llm provides the provider adapter contract and one implementation
// per upstream text-generation service.
package llm

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/promptforge/generation-api/internal/model"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 60 * time.Second

// openingUserMessage is sent when a conversation has only a system prompt.
// Anthropic and Gemini both require at least one non-system turn.
const openingUserMessage = "Please respond according to the instructions."

// CallParams is the canonical request shape passed to every adapter.
type CallParams struct {
	APIKey      string
	Model       string
	Messages    []model.TurnMessage
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Result is the canonical success shape returned by every adapter.
type Result struct {
	OutputText string
	TokenCount int
}

// Adapter translates canonical calls to and from one provider's wire format.
// Errors returned by Call are always *model.Error.
type Adapter interface {
	// Call issues exactly one outbound request bound to params.Timeout.
	Call(ctx context.Context, params CallParams) (*Result, error)

	// Name returns the provider name.
	Name() model.Provider
}

// Registry selects an adapter by the provider tag on a model configuration.
type Registry struct {
	adapters map[model.Provider]Adapter
}

// NewRegistry creates a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[model.Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// BaseURLs overrides provider endpoints. Empty fields use the public endpoint.
type BaseURLs struct {
	OpenAI     string
	Anthropic  string
	Google     string
	Perplexity string
	Grok       string
}

// NewDefaultRegistry registers all five providers.
func NewDefaultRegistry(urls BaseURLs) *Registry {
	return NewRegistry(
		NewOpenAIClient(urls.OpenAI),
		NewAnthropicClient(urls.Anthropic),
		NewGeminiClient(urls.Google),
		NewPerplexityClient(urls.Perplexity),
		NewGrokClient(urls.Grok),
	)
}

// Get returns the adapter for provider.
func (r *Registry) Get(provider model.Provider) (Adapter, error) {
	a, ok := r.adapters[provider]
	if !ok {
		return nil, model.Errorf(model.ErrInternal, "no adapter registered for provider %q", provider)
	}
	return a, nil
}

// EstimateTokens approximates token usage as ceil(characters / 4).
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / 4))
}

// withTimeout derives the per-call context.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func validateParams(provider model.Provider, params CallParams) error {
	if params.APIKey == "" {
		return model.Errorf(model.ErrModelAuth, "%s credential is not configured", provider)
	}
	if len(params.Messages) == 0 {
		return model.NewError(model.ErrInvalidRequest, "no messages to send")
	}
	return nil
}

func describe(provider model.Provider, what string) string {
	return fmt.Sprintf("%s: %s", provider, what)
}
