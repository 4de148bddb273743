package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/promptforge/generation-api/internal/model"
	"github.com/promptforge/generation-api/internal/store"
	"github.com/promptforge/generation-api/pkg/logger"
)

// MaxTokensCap is the platform ceiling on tokens per call.
const MaxTokensCap = 2048

// ResolvedModel is a validated model configuration plus its effective
// token ceiling.
type ResolvedModel struct {
	Config    *model.ModelConfig
	MaxTokens int
}

// ModelResolver loads and validates model configurations.
type ModelResolver struct {
	models ModelGetter
	logger *logger.Logger
}

// NewModelResolver creates a new model resolver.
func NewModelResolver(models ModelGetter, log *logger.Logger) *ModelResolver {
	return &ModelResolver{models: models, logger: log}
}

// Resolve loads the model and rejects disabled or credential-less configs.
func (r *ModelResolver) Resolve(ctx context.Context, modelID string) (*ResolvedModel, error) {
	cfg, err := r.models.GetModel(ctx, modelID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, model.Errorf(model.ErrModelNotFound, "model %q not found", modelID)
	}
	if err != nil {
		return nil, model.WrapError(model.ErrInternal, "failed to load model", err)
	}

	switch cfg.Status {
	case model.ModelStatusDisabled:
		return nil, model.Errorf(model.ErrModelDisabled, "model %q is disabled", modelID)
	case model.ModelStatusDeprecated:
		r.logger.Warn("model is deprecated",
			zap.String("model_id", modelID),
			zap.String("provider", string(cfg.Provider)),
		)
	}

	if cfg.Credential == "" {
		return nil, model.Errorf(model.ErrModelAuth, "model %q has no credential configured", modelID)
	}

	return &ResolvedModel{
		Config:    cfg,
		MaxTokens: EffectiveMaxTokens(cfg.MaxTokens),
	}, nil
}

// EffectiveMaxTokens applies the platform cap; unset values use the cap.
func EffectiveMaxTokens(configured int) int {
	if configured <= 0 || configured > MaxTokensCap {
		return MaxTokensCap
	}
	return configured
}
