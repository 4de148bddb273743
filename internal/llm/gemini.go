package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/promptforge/generation-api/internal/model"
)

// GeminiClient is the Google Gemini generateContent adapter.
type GeminiClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini adapter. An empty baseURL uses the public
// Generative Language endpoint.
func NewGeminiClient(baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &GeminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Name returns the provider name.
func (c *GeminiClient) Name() model.Provider {
	return model.ProviderGoogle
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"system_instruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func buildGeminiRequest(params CallParams) geminiRequest {
	contents := make([]geminiContent, 0, len(params.Messages))
	var system []string
	for _, m := range params.Messages {
		if m.Role == model.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		role := "user"
		if m.Role == model.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	if len(contents) == 0 {
		contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: openingUserMessage}}})
	}

	req := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: params.MaxTokens,
			Temperature:     params.Temperature,
		},
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: strings.Join(system, "\n\n")}}}
	}
	return req
}

// Call sends a generateContent request.
func (c *GeminiClient) Call(ctx context.Context, params CallParams) (*Result, error) {
	if err := validateParams(model.ProviderGoogle, params); err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(buildGeminiRequest(params))
	if err != nil {
		return nil, model.WrapError(model.ErrInternal, "failed to encode gemini request", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(params.Model), url.QueryEscape(params.APIKey))

	callCtx, cancel := withTimeout(ctx, params.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, model.WrapError(model.ErrInternal, "failed to build gemini request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(model.ProviderGoogle, callCtx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(model.ProviderGoogle, callCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(model.ProviderGoogle, resp.StatusCode, upstreamMessage(string(body)))
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, model.WrapError(model.ErrProvider, describe(model.ProviderGoogle, "malformed response"), err)
	}

	var content strings.Builder
	if len(result.Candidates) > 0 {
		for _, p := range result.Candidates[0].Content.Parts {
			content.WriteString(p.Text)
		}
	}
	out := content.String()

	tokens := 0
	if result.UsageMetadata != nil {
		tokens = result.UsageMetadata.CandidatesTokenCount
	}
	if tokens <= 0 {
		tokens = EstimateTokens(out)
	}

	return &Result{
		OutputText: out,
		TokenCount: tokens,
	}, nil
}
