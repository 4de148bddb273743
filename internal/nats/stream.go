package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/promptforge/generation-api/internal/model"
)

const (
	// StreamName is the name of the usage stream.
	StreamName = "USAGE"

	// SubjectPrefix is the prefix for all usage subjects.
	SubjectPrefix = "usage"
)

// StreamManager handles the usage stream.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream creates the usage stream if it does not exist.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Duplicates:  2 * time.Minute,
		Description: "Generation usage events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// UsageSubject returns the subject for a user's usage of a model.
func UsageSubject(userID, modelID string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, subjectToken(userID), subjectToken(modelID))
}

// subjectToken makes an id safe to use as a single subject token.
func subjectToken(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, id)
}

// PublishUsage publishes a usage event. The event id doubles as the
// JetStream message id so retried publishes are deduplicated.
func (m *StreamManager) PublishUsage(ctx context.Context, event *model.UsageEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal usage event: %w", err)
	}

	_, err = m.client.JetStream().Publish(ctx, UsageSubject(event.UserID, event.ModelID), data,
		jetstream.WithMsgID(event.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to publish usage event: %w", err)
	}

	return nil
}
