package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/promptforge/generation-api/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_CreatesTables(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"model_configs", "prompt_drafts", "usage_logs"} {
		var name string
		err := db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s does not exist: %v", table, err)
		}
	}
}

func TestModel_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m := &model.ModelConfig{
		ID:                "m1",
		Provider:          model.ProviderAnthropic,
		ProviderModelName: "claude-3-5-haiku-20241022",
		Status:            model.ModelStatusDeprecated,
		Credential:        "secret",
		MaxTokens:         4096,
	}
	if err := db.UpsertModel(ctx, m); err != nil {
		t.Fatalf("UpsertModel() failed: %v", err)
	}

	got, err := db.GetModel(ctx, "m1")
	if err != nil {
		t.Fatalf("GetModel() failed: %v", err)
	}
	if *got != *m {
		t.Errorf("GetModel() = %+v, want %+v", got, m)
	}

	m.Status = model.ModelStatusDisabled
	if err := db.UpsertModel(ctx, m); err != nil {
		t.Fatalf("UpsertModel() update failed: %v", err)
	}
	got, _ = db.GetModel(ctx, "m1")
	if got.Status != model.ModelStatusDisabled {
		t.Errorf("Status = %s, want disabled", got.Status)
	}
}

func TestGetModel_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetModel(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetModel() error = %v, want ErrNotFound", err)
	}
}

func TestDraft_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := &model.ResolvedDraft{
		ID:         "d1",
		PromptText: "Summarize {{topic}} for {{audience}}",
		ModelID:    "m1",
		RequiredVariables: []model.VariableSpec{
			{Name: "topic", Required: true},
			{Name: "audience", Required: false},
		},
	}
	if err := db.UpsertDraft(ctx, d); err != nil {
		t.Fatalf("UpsertDraft() failed: %v", err)
	}

	got, err := db.GetDraft(ctx, "d1")
	if err != nil {
		t.Fatalf("GetDraft() failed: %v", err)
	}
	if got.PromptText != d.PromptText || got.ModelID != "m1" {
		t.Errorf("GetDraft() = %+v", got)
	}
	if len(got.RequiredVariables) != 2 || !got.RequiredVariables[0].Required || got.RequiredVariables[1].Required {
		t.Errorf("RequiredVariables = %+v", got.RequiredVariables)
	}

	if _, err := db.GetDraft(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDraft(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCountUsageSince(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	entries := []model.UsageLogEntry{
		{UserID: "u1", ModelID: "m1", TokenCount: 10, Timestamp: now.Add(-1 * time.Minute)},
		{UserID: "u1", ModelID: "m1", TokenCount: 10, Timestamp: now.Add(-9 * time.Minute)},
		{UserID: "u1", ModelID: "m1", TokenCount: 10, Timestamp: now.Add(-11 * time.Minute)},
		{UserID: "u2", ModelID: "m1", TokenCount: 10, Timestamp: now.Add(-1 * time.Minute)},
	}
	for i := range entries {
		if err := db.InsertUsage(ctx, &entries[i]); err != nil {
			t.Fatalf("InsertUsage() failed: %v", err)
		}
		if entries[i].ID == "" {
			t.Error("InsertUsage() should set ID")
		}
	}

	count, err := db.CountUsageSince(ctx, "u1", now.Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("CountUsageSince() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountUsageSince() = %d, want 2", count)
	}
}

func TestInsertUsage_DefaultsTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entry := &model.UsageLogEntry{UserID: "u1", ModelID: "m1", DraftRef: "d1"}
	if err := db.InsertUsage(ctx, entry); err != nil {
		t.Fatalf("InsertUsage() failed: %v", err)
	}
	if entry.Timestamp.IsZero() {
		t.Error("InsertUsage() should set Timestamp")
	}

	var draftRef string
	if err := db.QueryRowContext(ctx, "SELECT draft_ref FROM usage_logs WHERE id = ?", entry.ID).Scan(&draftRef); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if draftRef != "d1" {
		t.Errorf("draft_ref = %q, want d1", draftRef)
	}
}

func TestLoadSeed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	t.Setenv("SEED_TEST_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{
		"models": [
			{"id": "m1", "provider": "openai", "provider_model_name": "gpt-4o-mini", "credential_env": "SEED_TEST_KEY", "max_tokens": 1024}
		],
		"drafts": [
			{"id": "d1", "prompt_text": "Hello {{name}}", "model_id": "m1", "required_variables": [{"name": "name", "required": true}]}
		]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	models, drafts, err := db.LoadSeed(ctx, path)
	if err != nil {
		t.Fatalf("LoadSeed() failed: %v", err)
	}
	if models != 1 || drafts != 1 {
		t.Errorf("LoadSeed() = %d models, %d drafts", models, drafts)
	}

	m, err := db.GetModel(ctx, "m1")
	if err != nil {
		t.Fatalf("GetModel() failed: %v", err)
	}
	if m.Credential != "from-env" || m.Status != model.ModelStatusActive {
		t.Errorf("seeded model = %+v", m)
	}
}
