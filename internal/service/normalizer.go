package service

import (
	"context"
	"errors"
	"strings"

	"github.com/promptforge/generation-api/internal/model"
	"github.com/promptforge/generation-api/internal/store"
)

// NormalizedRequest is a request whose prompt text and model id are known.
type NormalizedRequest struct {
	PromptText string
	ModelID    string

	// Draft is set when the request referenced a stored draft.
	Draft *model.ResolvedDraft
}

// Normalizer resolves optional draft references into concrete prompt text
// and model id.
type Normalizer struct {
	drafts DraftGetter
}

// NewNormalizer creates a new request normalizer.
func NewNormalizer(drafts DraftGetter) *Normalizer {
	return &Normalizer{drafts: drafts}
}

// Normalize backfills empty fields from the referenced draft. An explicit
// model override wins over both the request and the draft.
func (n *Normalizer) Normalize(ctx context.Context, req *model.GenerationRequest) (*NormalizedRequest, error) {
	out := &NormalizedRequest{
		PromptText: req.PromptText,
		ModelID:    req.ModelID,
	}

	if req.DraftRef != "" {
		draft, err := n.drafts.GetDraft(ctx, req.DraftRef)
		if errors.Is(err, store.ErrNotFound) {
			return nil, model.Errorf(model.ErrPromptNotFound, "prompt draft %q not found", req.DraftRef)
		}
		if err != nil {
			return nil, model.WrapError(model.ErrInternal, "failed to load prompt draft", err)
		}

		out.Draft = draft
		if strings.TrimSpace(out.PromptText) == "" {
			out.PromptText = draft.PromptText
		}
		if out.ModelID == "" {
			out.ModelID = draft.ModelID
		}
	}

	if req.ModelOverrideID != "" {
		out.ModelID = req.ModelOverrideID
	}

	if strings.TrimSpace(out.PromptText) == "" {
		return nil, model.NewError(model.ErrInvalidRequest, "prompt is required").
			WithDetails(map[string]string{"field": "prompt"})
	}
	if out.ModelID == "" {
		return nil, model.NewError(model.ErrInvalidRequest, "model_id is required").
			WithDetails(map[string]string{"field": "model_id"})
	}

	return out, nil
}
