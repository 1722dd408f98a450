package memory

import (
	"context"
	"sync"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
)

// ArchiveRepository holds finished-match histories keyed by match id, with
// insertion order preserved per tournament.
type ArchiveRepository struct {
	mu           sync.RWMutex
	items        map[string]game.Snapshot
	byTournament map[string][]string
}

func NewArchiveRepository() *ArchiveRepository {
	return &ArchiveRepository{
		items:        make(map[string]game.Snapshot),
		byTournament: make(map[string][]string),
	}
}

func (r *ArchiveRepository) Save(_ context.Context, snapshot game.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	matchID := snapshot.Match.ID
	if _, ok := r.items[matchID]; !ok {
		tournamentID := snapshot.Match.TournamentID
		r.byTournament[tournamentID] = append(r.byTournament[tournamentID], matchID)
	}
	r.items[matchID] = snapshot
	return nil
}

func (r *ArchiveRepository) Load(_ context.Context, matchID string) (game.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.items[matchID]
	return snapshot, ok, nil
}

func (r *ArchiveRepository) ListByTournament(_ context.Context, tournamentID string) ([]game.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Snapshot, 0, len(r.byTournament[tournamentID]))
	for _, matchID := range r.byTournament[tournamentID] {
		out = append(out, r.items[matchID])
	}
	return out, nil
}

func (r *ArchiveRepository) Delete(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, ok := r.items[matchID]
	if !ok {
		return nil
	}
	delete(r.items, matchID)

	tournamentID := snapshot.Match.TournamentID
	ordered := r.byTournament[tournamentID]
	for i, id := range ordered {
		if id == matchID {
			r.byTournament[tournamentID] = append(ordered[:i], ordered[i+1:]...)
			break
		}
	}
	return nil
}
