package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/promptforge/generation-api/internal/model"
)

// GetDraft loads a prompt draft by id.
func (db *DB) GetDraft(ctx context.Context, id string) (*model.ResolvedDraft, error) {
	query := `SELECT id, prompt_text, model_id, variables FROM prompt_drafts WHERE id = ?`

	var d model.ResolvedDraft
	var vars string
	err := db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.PromptText, &d.ModelID, &vars)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}

	if vars != "" {
		if err := json.Unmarshal([]byte(vars), &d.RequiredVariables); err != nil {
			return nil, fmt.Errorf("failed to decode draft variables: %w", err)
		}
	}

	return &d, nil
}

// UpsertDraft inserts or replaces a prompt draft.
func (db *DB) UpsertDraft(ctx context.Context, d *model.ResolvedDraft) error {
	vars, err := json.Marshal(d.RequiredVariables)
	if err != nil {
		return fmt.Errorf("failed to encode draft variables: %w", err)
	}

	query := `
		INSERT INTO prompt_drafts (id, prompt_text, model_id, variables)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			prompt_text = excluded.prompt_text,
			model_id = excluded.model_id,
			variables = excluded.variables
	`
	if _, err := db.ExecContext(ctx, query, d.ID, d.PromptText, d.ModelID, string(vars)); err != nil {
		return fmt.Errorf("failed to upsert draft: %w", err)
	}
	return nil
}

// GetModel loads a model configuration by id.
func (db *DB) GetModel(ctx context.Context, id string) (*model.ModelConfig, error) {
	query := `
		SELECT id, provider, provider_model_name, status, credential, max_tokens
		FROM model_configs WHERE id = ?
	`

	var m model.ModelConfig
	err := db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.Provider,
		&m.ProviderModelName,
		&m.Status,
		&m.Credential,
		&m.MaxTokens,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query model: %w", err)
	}

	return &m, nil
}

// UpsertModel inserts or replaces a model configuration.
func (db *DB) UpsertModel(ctx context.Context, m *model.ModelConfig) error {
	query := `
		INSERT INTO model_configs (id, provider, provider_model_name, status, credential, max_tokens)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider = excluded.provider,
			provider_model_name = excluded.provider_model_name,
			status = excluded.status,
			credential = excluded.credential,
			max_tokens = excluded.max_tokens
	`
	_, err := db.ExecContext(ctx, query,
		m.ID,
		string(m.Provider),
		m.ProviderModelName,
		string(m.Status),
		m.Credential,
		m.MaxTokens,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert model: %w", err)
	}
	return nil
}

// CountUsageSince counts usage rows for userID at or after since.
func (db *DB) CountUsageSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM usage_logs WHERE user_id = ? AND created_at >= ?`

	var count int
	if err := db.QueryRowContext(ctx, query, userID, since.UnixMilli()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count usage: %w", err)
	}
	return count, nil
}

// InsertUsage stores a usage row. Missing id and timestamp are filled in.
func (db *DB) InsertUsage(ctx context.Context, entry *model.UsageLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	query := `
		INSERT INTO usage_logs (id, user_id, model_id, draft_ref, token_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ModelID,
		nullString(entry.DraftRef),
		entry.TokenCount,
		entry.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
