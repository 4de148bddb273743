package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/promptforge/generation-api/internal/model"
)

// SeedFile is the on-disk format accepted by LoadSeed.
type SeedFile struct {
	Models []struct {
		ID                string            `json:"id"`
		Provider          model.Provider    `json:"provider"`
		ProviderModelName string            `json:"provider_model_name"`
		Status            model.ModelStatus `json:"status"`
		Credential        string            `json:"credential"`
		CredentialEnv     string            `json:"credential_env"`
		MaxTokens         int               `json:"max_tokens"`
	} `json:"models"`
	Drafts []model.ResolvedDraft `json:"drafts"`
}

// LoadSeed upserts the models and drafts listed in a JSON seed file. A model
// may name an environment variable holding its credential instead of
// embedding it.
func (db *DB) LoadSeed(ctx context.Context, path string) (models, drafts int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, m := range seed.Models {
		cred := m.Credential
		if cred == "" && m.CredentialEnv != "" {
			cred = os.Getenv(m.CredentialEnv)
		}
		status := m.Status
		if status == "" {
			status = model.ModelStatusActive
		}
		if err := db.UpsertModel(ctx, &model.ModelConfig{
			ID:                m.ID,
			Provider:          m.Provider,
			ProviderModelName: m.ProviderModelName,
			Status:            status,
			Credential:        cred,
			MaxTokens:         m.MaxTokens,
		}); err != nil {
			return models, drafts, err
		}
		models++
	}

	for i := range seed.Drafts {
		if err := db.UpsertDraft(ctx, &seed.Drafts[i]); err != nil {
			return models, drafts, err
		}
		drafts++
	}

	return models, drafts, nil
}
