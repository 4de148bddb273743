// Package model defines data structures for the generation pipeline.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Provider identifies an upstream text-generation service.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderGoogle     Provider = "google"
	ProviderPerplexity Provider = "perplexity"
	ProviderGrok       Provider = "grok"
)

// ModelStatus is the lifecycle status of a configured model.
type ModelStatus string

const (
	ModelStatusActive     ModelStatus = "active"
	ModelStatusDeprecated ModelStatus = "deprecated"
	ModelStatusDisabled   ModelStatus = "disabled"
)

// ModelConfig is a stored model configuration.
type ModelConfig struct {
	ID                string      `json:"id"`
	Provider          Provider    `json:"provider"`
	ProviderModelName string      `json:"provider_model_name"`
	Status            ModelStatus `json:"status"`
	Credential        string      `json:"-"`
	MaxTokens         int         `json:"max_tokens"`
}

// VariableSpec describes one template input declared by a draft.
type VariableSpec struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// ResolvedDraft is a snapshot of a stored prompt definition.
type ResolvedDraft struct {
	ID                string         `json:"id"`
	PromptText        string         `json:"prompt_text"`
	ModelID           string         `json:"model_id"`
	RequiredVariables []VariableSpec `json:"required_variables"`
}

// GenerationRequest is the request-scoped input to the pipeline.
type GenerationRequest struct {
	PromptText      string
	Variables       map[string]string
	ModelID         string
	ModelOverrideID string
	Conversation    []TurnMessage
	DraftRef        string
	Files           []json.RawMessage
}

// GenerateRequest is the inbound HTTP body for POST /api/v1/generate.
type GenerateRequest struct {
	Prompt          string            `json:"prompt,omitempty"`
	Variables       map[string]any    `json:"variables,omitempty"`
	ModelID         string            `json:"model_id,omitempty"`
	Files           []json.RawMessage `json:"files,omitempty"`
	PromptDraftID   string            `json:"prompt_draft_id,omitempty"`
	ModelOverrideID string            `json:"model_override_id,omitempty"`
	Conversation    json.RawMessage   `json:"conversation,omitempty"`
}

// ToGenerationRequest converts the wire body into a pipeline request.
// Variable values are stringified; null values are dropped so they count as
// missing during validation.
func (r *GenerateRequest) ToGenerationRequest() *GenerationRequest {
	vars := make(map[string]string, len(r.Variables))
	for k, v := range r.Variables {
		if s, ok := stringifyVariable(v); ok {
			vars[k] = s
		}
	}

	return &GenerationRequest{
		PromptText:      r.Prompt,
		Variables:       vars,
		ModelID:         strings.TrimSpace(r.ModelID),
		ModelOverrideID: strings.TrimSpace(r.ModelOverrideID),
		Conversation:    decodeConversation(r.Conversation),
		DraftRef:        strings.TrimSpace(r.PromptDraftID),
		Files:           r.Files,
	}
}

// decodeConversation keeps the history entries that are objects with string
// role and content. Anything else, including a non-array value, is dropped.
func decodeConversation(raw json.RawMessage) []TurnMessage {
	if len(raw) == 0 {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	turns := make([]TurnMessage, 0, len(entries))
	for _, entry := range entries {
		var fields struct {
			Role    json.RawMessage `json:"role"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(entry, &fields); err != nil {
			continue
		}

		var role, content string
		if json.Unmarshal(fields.Role, &role) != nil || json.Unmarshal(fields.Content, &content) != nil {
			continue
		}
		turns = append(turns, TurnMessage{Role: Role(role), Content: content})
	}
	return turns
}

func stringifyVariable(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case float64, bool:
		return fmt.Sprint(val), true
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// GenerationResult is the pipeline's success shape.
type GenerationResult struct {
	Output     string
	TokenCount int
}

// Usage is the usage block of a generate response.
type Usage struct {
	Tokens int `json:"tokens"`
}

// GenerateResponse is the success body for POST /api/v1/generate.
type GenerateResponse struct {
	Output string `json:"output"`
	Usage  Usage  `json:"usage"`
}
