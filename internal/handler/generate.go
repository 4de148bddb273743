// Package handler provides the HTTP handlers for the API server.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/promptforge/generation-api/internal/middleware"
	"github.com/promptforge/generation-api/internal/model"
	"github.com/promptforge/generation-api/pkg/logger"
)

// Generator runs one generation for an authenticated user.
type Generator interface {
	Generate(ctx context.Context, userID, requestID string, req *model.GenerationRequest) (*model.GenerationResult, error)
}

// GenerateHandler handles the generation endpoint.
type GenerateHandler struct {
	generator Generator
	logger    *logger.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(generator Generator, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		logger:    log,
	}
}

// Generate handles POST /api/v1/generate
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		middleware.WriteError(w, r, model.NewError(model.ErrUnauthorized, "authentication required"))
		return
	}

	var body model.GenerateRequest
	if err := decodeBody(w, r, &body); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	result, err := h.generator.Generate(ctx, userID, middleware.GetRequestID(ctx), body.ToGenerationRequest())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	h.logger.Debug("generation completed",
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.Int("tokens", result.TokenCount),
	)

	writeJSON(w, http.StatusOK, model.GenerateResponse{
		Output: result.Output,
		Usage:  model.Usage{Tokens: result.TokenCount},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return model.NewError(model.ErrInvalidRequest, "request body is empty")
		case errors.As(err, &tooLarge):
			return model.NewError(model.ErrInvalidRequest, "request body too large")
		default:
			return model.WrapError(model.ErrInvalidRequest, "invalid request body", err)
		}
	}
	return nil
}
