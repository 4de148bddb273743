package service

import (
	"context"
	"testing"

	"github.com/promptforge/generation-api/internal/model"
)

func TestNormalizer_Normalize(t *testing.T) {
	st := newMemStore()
	st.drafts["d1"] = &model.ResolvedDraft{ID: "d1", PromptText: "Draft prompt", ModelID: "draft-model"}
	st.drafts["blank"] = &model.ResolvedDraft{ID: "blank"}

	tests := []struct {
		name       string
		req        model.GenerationRequest
		wantKind   model.ErrorKind
		wantPrompt string
		wantModel  string
		wantDraft  bool
	}{
		{
			name:       "explicit fields",
			req:        model.GenerationRequest{PromptText: "Hi", ModelID: "m1"},
			wantPrompt: "Hi",
			wantModel:  "m1",
		},
		{
			name:       "backfill from draft",
			req:        model.GenerationRequest{DraftRef: "d1"},
			wantPrompt: "Draft prompt",
			wantModel:  "draft-model",
			wantDraft:  true,
		},
		{
			name:       "request fields win over draft",
			req:        model.GenerationRequest{DraftRef: "d1", PromptText: "Mine", ModelID: "m2"},
			wantPrompt: "Mine",
			wantModel:  "m2",
			wantDraft:  true,
		},
		{
			name:       "override wins over everything",
			req:        model.GenerationRequest{DraftRef: "d1", ModelID: "m2", ModelOverrideID: "m3"},
			wantPrompt: "Draft prompt",
			wantModel:  "m3",
			wantDraft:  true,
		},
		{
			name:     "unknown draft",
			req:      model.GenerationRequest{DraftRef: "nope"},
			wantKind: model.ErrPromptNotFound,
		},
		{
			name:     "missing prompt",
			req:      model.GenerationRequest{ModelID: "m1", PromptText: "   "},
			wantKind: model.ErrInvalidRequest,
		},
		{
			name:     "missing model",
			req:      model.GenerationRequest{PromptText: "Hi"},
			wantKind: model.ErrInvalidRequest,
		},
		{
			name:     "draft without content",
			req:      model.GenerationRequest{DraftRef: "blank"},
			wantKind: model.ErrInvalidRequest,
		},
	}

	n := NewNormalizer(st)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(context.Background(), &tt.req)
			if tt.wantKind != "" {
				if !model.IsKind(err, tt.wantKind) {
					t.Fatalf("Normalize() error = %v, want %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got.PromptText != tt.wantPrompt || got.ModelID != tt.wantModel {
				t.Errorf("Normalize() = %q/%q, want %q/%q", got.PromptText, got.ModelID, tt.wantPrompt, tt.wantModel)
			}
			if (got.Draft != nil) != tt.wantDraft {
				t.Errorf("Draft = %v, wantDraft %v", got.Draft, tt.wantDraft)
			}
		})
	}
}

func TestNormalizer_NamesMissingField(t *testing.T) {
	n := NewNormalizer(newMemStore())

	_, err := n.Normalize(context.Background(), &model.GenerationRequest{PromptText: "Hi"})
	e := model.AsError(err)
	details, ok := e.Details.(map[string]string)
	if !ok || details["field"] != "model_id" {
		t.Errorf("Details = %v, want field=model_id", e.Details)
	}
}

func TestNormalizer_StoreFailure(t *testing.T) {
	n := NewNormalizer(failingDrafts{})

	_, err := n.Normalize(context.Background(), &model.GenerationRequest{DraftRef: "d1"})
	if !model.IsKind(err, model.ErrInternal) {
		t.Errorf("Normalize() error = %v, want INTERNAL_ERROR", err)
	}
}

type failingDrafts struct{}

func (failingDrafts) GetDraft(ctx context.Context, id string) (*model.ResolvedDraft, error) {
	return nil, errStoreDown
}
