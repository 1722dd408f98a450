package memory

import (
	"context"
	"sync"

	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
)

// TournamentRepository keeps tournaments with their players, matches and
// results in process memory. Insertion order is preserved for listings.
type TournamentRepository struct {
	mu          sync.RWMutex
	items       map[string]tournament.Tournament
	order       []string
	players     map[string][]tournament.Player
	matches     map[string]tournament.Match
	matchOrder  map[string][]string
	results     map[string]tournament.MatchResult
	resultOrder map[string][]string
}

func NewTournamentRepository() *TournamentRepository {
	return &TournamentRepository{
		items:       make(map[string]tournament.Tournament),
		players:     make(map[string][]tournament.Player),
		matches:     make(map[string]tournament.Match),
		matchOrder:  make(map[string][]string),
		results:     make(map[string]tournament.MatchResult),
		resultOrder: make(map[string][]string),
	}
}

func (r *TournamentRepository) Save(_ context.Context, t tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[t.ID]; !ok {
		r.order = append(r.order, t.ID)
	}
	r.items[t.ID] = t
	return nil
}

func (r *TournamentRepository) GetByID(_ context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[tournamentID]
	return item, ok, nil
}

func (r *TournamentRepository) List(_ context.Context) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *TournamentRepository) Delete(_ context.Context, tournamentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, tournamentID)
	for i, id := range r.order {
		if id == tournamentID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	delete(r.players, tournamentID)
	for _, matchID := range r.matchOrder[tournamentID] {
		delete(r.matches, matchID)
	}
	delete(r.matchOrder, tournamentID)
	for _, matchID := range r.resultOrder[tournamentID] {
		delete(r.results, matchID)
	}
	delete(r.resultOrder, tournamentID)
	return nil
}

func (r *TournamentRepository) ReplacePlayers(_ context.Context, tournamentID string, players []tournament.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players[tournamentID] = append([]tournament.Player(nil), players...)
	return nil
}

func (r *TournamentRepository) ListPlayers(_ context.Context, tournamentID string) ([]tournament.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]tournament.Player(nil), r.players[tournamentID]...), nil
}

func (r *TournamentRepository) SaveMatch(_ context.Context, m tournament.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[m.ID]; !ok {
		r.matchOrder[m.TournamentID] = append(r.matchOrder[m.TournamentID], m.ID)
	}
	r.matches[m.ID] = m
	return nil
}

func (r *TournamentRepository) ReplaceMatches(_ context.Context, tournamentID string, phase tournament.Phase, matches []tournament.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]string, 0, len(r.matchOrder[tournamentID]))
	for _, matchID := range r.matchOrder[tournamentID] {
		if r.matches[matchID].Phase == phase {
			delete(r.matches, matchID)
			continue
		}
		kept = append(kept, matchID)
	}
	for _, m := range matches {
		r.matches[m.ID] = m
		kept = append(kept, m.ID)
	}
	r.matchOrder[tournamentID] = kept
	return nil
}

func (r *TournamentRepository) GetMatch(_ context.Context, matchID string) (tournament.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchID]
	return m, ok, nil
}

func (r *TournamentRepository) ListMatches(_ context.Context, tournamentID string) ([]tournament.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Match, 0, len(r.matchOrder[tournamentID]))
	for _, matchID := range r.matchOrder[tournamentID] {
		out = append(out, r.matches[matchID])
	}
	return out, nil
}

func (r *TournamentRepository) SaveResult(_ context.Context, result tournament.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.results[result.MatchID]; !ok {
		r.resultOrder[result.TournamentID] = append(r.resultOrder[result.TournamentID], result.MatchID)
	}
	r.results[result.MatchID] = result
	return nil
}

func (r *TournamentRepository) DeleteResult(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, ok := r.results[matchID]
	if !ok {
		return nil
	}
	delete(r.results, matchID)
	ordered := r.resultOrder[result.TournamentID]
	for i, id := range ordered {
		if id == matchID {
			r.resultOrder[result.TournamentID] = append(ordered[:i], ordered[i+1:]...)
			break
		}
	}
	return nil
}

func (r *TournamentRepository) ListResults(_ context.Context, tournamentID string) ([]tournament.MatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.MatchResult, 0, len(r.resultOrder[tournamentID]))
	for _, matchID := range r.resultOrder[tournamentID] {
		out = append(out, r.results[matchID])
	}
	return out, nil
}
