// Package service provides the generation pipeline.
package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/promptforge/generation-api/internal/llm"
	"github.com/promptforge/generation-api/internal/model"
	"github.com/promptforge/generation-api/internal/prompt"
	"github.com/promptforge/generation-api/pkg/logger"
	"github.com/promptforge/generation-api/pkg/metrics"
)

// DraftGetter loads prompt drafts.
type DraftGetter interface {
	GetDraft(ctx context.Context, id string) (*model.ResolvedDraft, error)
}

// ModelGetter loads model configurations.
type ModelGetter interface {
	GetModel(ctx context.Context, id string) (*model.ModelConfig, error)
}

// UsageCounter counts usage rows for the rate limiter.
type UsageCounter interface {
	CountUsageSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// UsageWriter stores usage rows.
type UsageWriter interface {
	InsertUsage(ctx context.Context, entry *model.UsageLogEntry) error
}

// Store is every persistence touchpoint the pipeline needs.
type Store interface {
	DraftGetter
	ModelGetter
	UsageCounter
	UsageWriter
}

// UsagePublisher fans usage events out to downstream consumers.
type UsagePublisher interface {
	PublishUsage(ctx context.Context, event *model.UsageEvent) error
}

// AdapterSource selects the adapter for a provider.
type AdapterSource interface {
	Get(provider model.Provider) (llm.Adapter, error)
}

// Options tunes the pipeline.
type Options struct {
	RateLimit       int
	RateWindow      time.Duration
	ProviderTimeout time.Duration
	Temperature     float64
}

// GenerationService runs the generation pipeline: normalize, rate limit,
// resolve the model, validate and interpolate variables, assemble the
// conversation, dispatch to the provider and record usage.
type GenerationService struct {
	normalizer *Normalizer
	limiter    *RateLimiter
	resolver   *ModelResolver
	adapters   AdapterSource
	usage      *UsageRecorder
	opts       Options
	logger     *logger.Logger
	tracer     trace.Tracer
}

// NewGenerationService creates a new generation service. publisher may be
// nil; a nil log uses the global logger.
func NewGenerationService(
	st Store,
	adapters AdapterSource,
	publisher UsagePublisher,
	opts Options,
	log *logger.Logger,
) *GenerationService {
	if log == nil {
		log = logger.Global()
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = llm.DefaultTimeout
	}

	return &GenerationService{
		normalizer: NewNormalizer(st),
		limiter:    NewRateLimiter(st, opts.RateLimit, opts.RateWindow),
		resolver:   NewModelResolver(st, log),
		adapters:   adapters,
		usage:      NewUsageRecorder(st, publisher, log),
		opts:       opts,
		logger:     log,
		tracer:     otel.Tracer("github.com/promptforge/generation-api/internal/service"),
	}
}

// Generate runs the pipeline for one request. Every returned error is a
// *model.Error. No stage is retried.
func (s *GenerationService) Generate(ctx context.Context, userID, requestID string, req *model.GenerationRequest) (*model.GenerationResult, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "generation.generate",
		trace.WithAttributes(
			attribute.String("request_id", requestID),
			attribute.String("user_id", userID),
		),
	)
	defer span.End()

	provider := model.Provider("")
	res, err := s.run(ctx, userID, requestID, req, &provider)

	code := "OK"
	if err != nil {
		e := model.AsError(err)
		err = e
		code = string(e.Kind)
		span.SetStatus(codes.Error, code)
		span.SetAttributes(attribute.String("error_code", code))

		log := s.logger.WithRequest(requestID, userID)
		fields := []zap.Field{
			zap.String("code", code),
			zap.String("provider", string(provider)),
		}
		if e.Cause != nil {
			fields = append(fields, zap.Error(e.Cause))
		}
		if e.Kind == model.ErrInternal {
			log.Error("generation failed", fields...)
		} else {
			log.Info("generation rejected", fields...)
		}
	}

	tokens := 0
	if res != nil {
		tokens = res.TokenCount
	}
	metrics.RecordGeneration(string(provider), code, time.Since(start).Seconds(), tokens)

	return res, err
}

func (s *GenerationService) run(ctx context.Context, userID, requestID string, req *model.GenerationRequest, provider *model.Provider) (*model.GenerationResult, error) {
	norm, err := s.normalizer.Normalize(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Check(ctx, userID); err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, norm.ModelID)
	if err != nil {
		return nil, err
	}
	*provider = resolved.Config.Provider

	if norm.Draft != nil {
		if err := prompt.RequireVariables(req.Variables, norm.Draft.RequiredVariables); err != nil {
			return nil, err
		}
	}

	system := prompt.Interpolate(norm.PromptText, req.Variables)

	messages, err := prompt.AssembleConversation(system, req.Conversation, req.Variables[prompt.CurrentTurnVariable])
	if err != nil {
		return nil, err
	}

	adapter, err := s.adapters.Get(resolved.Config.Provider)
	if err != nil {
		return nil, err
	}

	if len(req.Files) > 0 {
		s.logger.Debug("request files are not forwarded upstream",
			zap.String("request_id", requestID),
			zap.Int("files", len(req.Files)),
		)
	}

	callStart := time.Now()
	result, err := adapter.Call(ctx, llm.CallParams{
		APIKey:      resolved.Config.Credential,
		Model:       resolved.Config.ProviderModelName,
		Messages:    messages,
		MaxTokens:   resolved.MaxTokens,
		Temperature: s.opts.Temperature,
		Timeout:     s.opts.ProviderTimeout,
	})
	latency := time.Since(callStart)
	metrics.RecordProviderCall(string(resolved.Config.Provider), latency.Seconds(), err == nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.usage.Record(ctx, &model.UsageLogEntry{
		UserID:     userID,
		ModelID:    resolved.Config.ID,
		DraftRef:   req.DraftRef,
		TokenCount: result.TokenCount,
		Timestamp:  now,
	}, &model.UsageEvent{
		RequestID:  requestID,
		UserID:     userID,
		ModelID:    resolved.Config.ID,
		Provider:   resolved.Config.Provider,
		DraftRef:   req.DraftRef,
		TokenCount: result.TokenCount,
		LatencyMs:  latency.Milliseconds(),
		CreatedAt:  now,
	})

	return &model.GenerationResult{
		Output:     result.OutputText,
		TokenCount: result.TokenCount,
	}, nil
}

// Wait blocks until pending usage writes finish.
func (s *GenerationService) Wait() {
	s.usage.Wait()
}

// UsageRecorder writes usage rows and events without blocking the caller.
type UsageRecorder struct {
	writer    UsageWriter
	publisher UsagePublisher
	logger    *logger.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewUsageRecorder creates a usage recorder. publisher may be nil.
func NewUsageRecorder(writer UsageWriter, publisher UsagePublisher, log *logger.Logger) *UsageRecorder {
	return &UsageRecorder{
		writer:    writer,
		publisher: publisher,
		logger:    log,
		timeout:   10 * time.Second,
	}
}

// Record stores the entry and publishes the event in the background. The
// write outlives the request context; failures are logged and dropped.
func (u *UsageRecorder) Record(ctx context.Context, entry *model.UsageLogEntry, event *model.UsageEvent) {
	bg := context.WithoutCancel(ctx)

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.UsageLogFailures.Inc()
				u.logger.Error("usage write panicked", zap.Any("panic", r))
			}
		}()

		writeCtx, cancel := context.WithTimeout(bg, u.timeout)
		defer cancel()

		if err := u.writer.InsertUsage(writeCtx, entry); err != nil {
			metrics.UsageLogFailures.Inc()
			u.logger.Warn("failed to write usage log",
				zap.String("user_id", entry.UserID),
				zap.String("model_id", entry.ModelID),
				zap.Error(err),
			)
			return
		}

		if u.publisher == nil || event == nil {
			return
		}
		event.ID = entry.ID
		if err := u.publisher.PublishUsage(writeCtx, event); err != nil {
			u.logger.Warn("failed to publish usage event",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until pending writes finish.
func (u *UsageRecorder) Wait() {
	u.wg.Wait()
}
