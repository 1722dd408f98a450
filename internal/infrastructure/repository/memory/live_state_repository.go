package memory

import (
	"context"
	"sync"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
)

// LiveStateRepository holds in-flight match snapshots keyed by match id.
type LiveStateRepository struct {
	mu    sync.RWMutex
	items map[string]game.Snapshot
}

func NewLiveStateRepository() *LiveStateRepository {
	return &LiveStateRepository{items: make(map[string]game.Snapshot)}
}

func (r *LiveStateRepository) Save(_ context.Context, snapshot game.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[snapshot.Match.ID] = snapshot
	return nil
}

func (r *LiveStateRepository) Load(_ context.Context, matchID string) (game.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.items[matchID]
	return snapshot, ok, nil
}

func (r *LiveStateRepository) Clear(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, matchID)
	return nil
}
