package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/promptforge/generation-api/internal/model"
)

// AnthropicClient is the Anthropic Messages API adapter.
type AnthropicClient struct {
	baseURL string
}

// NewAnthropicClient creates a new Anthropic adapter. An empty baseURL uses
// the SDK default endpoint.
func NewAnthropicClient(baseURL string) *AnthropicClient {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &AnthropicClient{baseURL: baseURL}
}

// Name returns the provider name.
func (c *AnthropicClient) Name() model.Provider {
	return model.ProviderAnthropic
}

// Call sends a message creation request. System messages travel in the
// top-level system field instead of the message list.
func (c *AnthropicClient) Call(ctx context.Context, params CallParams) (*Result, error) {
	if err := validateParams(model.ProviderAnthropic, params); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(params.APIKey),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	client := anthropic.NewClient(opts...)

	system, messages := splitSystem(params.Messages)

	body := anthropic.MessageNewParams{
		Model:       anthropic.F(params.Model),
		MaxTokens:   anthropic.F(int64(params.MaxTokens)),
		Messages:    anthropic.F(messages),
		Temperature: anthropic.F(params.Temperature),
	}
	if system != "" {
		body.System = anthropic.F([]anthropic.TextBlockParam{
			{
				Type: anthropic.F(anthropic.TextBlockParamTypeText),
				Text: anthropic.F(system),
			},
		})
	}

	callCtx, cancel := withTimeout(ctx, params.Timeout)
	defer cancel()

	resp, err := client.Messages.New(callCtx, body)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
			// The SDK error string ends with the raw response body.
			return nil, statusError(model.ProviderAnthropic, apiErr.StatusCode, upstreamMessage(apiErr.Error()))
		}
		return nil, transportError(model.ProviderAnthropic, callCtx, err)
	}

	// Extract content
	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content.WriteString(block.Text)
		}
	}
	out := content.String()

	tokens := int(resp.Usage.OutputTokens)
	if tokens <= 0 {
		tokens = EstimateTokens(out)
	}

	return &Result{
		OutputText: out,
		TokenCount: tokens,
	}, nil
}

// splitSystem separates system text from the conversational turns and
// synthesizes an opening user turn when none remain.
func splitSystem(msgs []model.TurnMessage) (string, []anthropic.MessageParam) {
	var system []string
	messages := make([]anthropic.MessageParam, 0, len(msgs))

	for _, msg := range msgs {
		if msg.Role == model.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		messages = append(messages, textMessage(msg.Role, msg.Content))
	}

	if len(messages) == 0 {
		messages = append(messages, textMessage(model.RoleUser, openingUserMessage))
	}

	return strings.Join(system, "\n\n"), messages
}

func textMessage(role model.Role, text string) anthropic.MessageParam {
	return anthropic.MessageParam{
		Role: anthropic.F(anthropic.MessageParamRole(role)),
		Content: anthropic.F([]anthropic.ContentBlockParamUnion{
			anthropic.TextBlockParam{
				Type: anthropic.F(anthropic.TextBlockParamTypeText),
				Text: anthropic.F(text),
			},
		}),
	}
}
