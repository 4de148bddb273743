package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/promptforge/generation-api/internal/model"
)

// statusError maps an upstream HTTP status to the canonical taxonomy.
func statusError(provider model.Provider, status int, upstreamMessage string) *model.Error {
	var kind model.ErrorKind
	var msg string

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind, msg = model.ErrModelAuth, "provider rejected the credential"
	case status == http.StatusTooManyRequests:
		kind, msg = model.ErrModelRateLimited, "provider rate limit exceeded"
	case status == http.StatusNotFound:
		kind, msg = model.ErrModelNotFound, "provider does not know the requested model"
	case status >= 500:
		kind, msg = model.ErrModelUnavailable, "provider is unavailable"
	default:
		kind, msg = model.ErrProvider, "provider request failed"
		if upstreamMessage != "" {
			msg = upstreamMessage
		}
	}

	return model.NewError(kind, describe(provider, msg)).WithDetails(map[string]any{
		"provider":        provider,
		"upstream_status": status,
	})
}

// transportError maps a failure that produced no HTTP status. callCtx is the
// per-call context carrying the timeout.
func transportError(provider model.Provider, callCtx context.Context, err error) *model.Error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return model.WrapError(model.ErrModelTimeout, describe(provider, "request timed out"), err)
	}
	if errors.Is(err, context.Canceled) {
		return model.WrapError(model.ErrInternal, describe(provider, "request canceled"), err)
	}
	return model.WrapError(model.ErrModelUnavailable, describe(provider, "provider could not be reached"), err)
}

// upstreamMessage pulls error.message out of a provider error body. The body
// may be preceded by other text, as in SDK error strings.
func upstreamMessage(body string) string {
	i := strings.IndexByte(body, '{')
	if i < 0 {
		return ""
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(strings.NewReader(body[i:])).Decode(&payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error.Message)
}
