package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
)

// SummaryRepository holds finished-match summaries, listed newest first.
type SummaryRepository struct {
	mu    sync.RWMutex
	items map[string]game.MatchSummary
}

func NewSummaryRepository() *SummaryRepository {
	return &SummaryRepository{items: make(map[string]game.MatchSummary)}
}

func (r *SummaryRepository) Upsert(_ context.Context, summary game.MatchSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[summary.MatchID] = summary
	return nil
}

func (r *SummaryRepository) Remove(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, matchID)
	return nil
}

func (r *SummaryRepository) List(_ context.Context) ([]game.MatchSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.MatchSummary, 0, len(r.items))
	for _, summary := range r.items {
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndedAt.After(out[j].EndedAt)
	})
	return out, nil
}
