package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/promptforge/generation-api/internal/llm"
	"github.com/promptforge/generation-api/internal/model"
	"github.com/promptforge/generation-api/internal/store"
)

// memStore is an in-memory Store.
type memStore struct {
	mu        sync.Mutex
	drafts    map[string]*model.ResolvedDraft
	models    map[string]*model.ModelConfig
	usage     []model.UsageLogEntry
	insertErr error
	countErr  error
	since     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		drafts: make(map[string]*model.ResolvedDraft),
		models: make(map[string]*model.ModelConfig),
	}
}

func (s *memStore) GetDraft(ctx context.Context, id string) (*model.ResolvedDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (s *memStore) GetModel(ctx context.Context, id string) (*model.ModelConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m, nil
}

func (s *memStore) CountUsageSince(ctx context.Context, userID string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since = since
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, u := range s.usage {
		if u.UserID == userID && !u.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) InsertUsage(ctx context.Context, entry *model.UsageLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if entry.ID == "" {
		entry.ID = "usage-" + entry.UserID
	}
	s.usage = append(s.usage, *entry)
	return nil
}

func (s *memStore) addUsage(userID string, n int, at time.Time) {
	for i := 0; i < n; i++ {
		s.usage = append(s.usage, model.UsageLogEntry{UserID: userID, ModelID: "m1", Timestamp: at})
	}
}

func (s *memStore) usageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.usage)
}

// fakeAdapter records calls and echoes the assembled messages unless err is set.
type fakeAdapter struct {
	mu       sync.Mutex
	provider model.Provider
	calls    []llm.CallParams
	err      error
}

func (a *fakeAdapter) Name() model.Provider {
	return a.provider
}

func (a *fakeAdapter) Call(ctx context.Context, params llm.CallParams) (*llm.Result, error) {
	a.mu.Lock()
	a.calls = append(a.calls, params)
	a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}

	parts := make([]string, len(params.Messages))
	for i, m := range params.Messages {
		parts[i] = m.Content
	}
	out := strings.Join(parts, "\n")
	return &llm.Result{OutputText: out, TokenCount: llm.EstimateTokens(out)}, nil
}

func (a *fakeAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

// fakePublisher collects published usage events.
type fakePublisher struct {
	mu     sync.Mutex
	events []model.UsageEvent
	err    error
}

func (p *fakePublisher) PublishUsage(ctx context.Context, event *model.UsageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *event)
	return nil
}

var errStoreDown = errors.New("store down")
