package model

import (
	"time"
)

// UsageLogEntry records one successful generation. Rows back the per-user
// sliding-window rate limit.
type UsageLogEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ModelID    string    `json:"model_id"`
	DraftRef   string    `json:"draft_ref,omitempty"`
	TokenCount int       `json:"token_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// UsageEvent is published to the usage stream after a usage row is stored.
type UsageEvent struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	UserID     string    `json:"user_id"`
	ModelID    string    `json:"model_id"`
	Provider   Provider  `json:"provider"`
	DraftRef   string    `json:"draft_ref,omitempty"`
	TokenCount int       `json:"token_count"`
	LatencyMs  int64     `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
