package game

import (
	"fmt"
	"time"
)

// Snapshot is the full serializable state of a live match. It is the shape
// exchanged with whatever store the orchestrator uses; restoring it yields an
// Engine identical to the one it was taken from.
type Snapshot struct {
	Match          Match
	Players        []Player
	Legs           []Leg
	Turns          []Turn
	Scores         map[string]int
	ActivePlayerID string
	Pending        PendingCheckout
	LegWinnerID    string
	LegWins        map[string]int
	SetWins        map[string]int
	SetLegWins     map[string]int
	UpdatedAt      time.Time
}

// Snapshot captures the engine state at this moment.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Match:          e.Match(),
		Players:        e.Players(),
		Legs:           e.Legs(),
		Turns:          e.Turns(),
		Scores:         e.Scores(),
		ActivePlayerID: e.activePlayerID,
		Pending:        e.pending,
		LegWinnerID:    e.legWinnerID,
		LegWins:        e.LegWins(),
		SetWins:        e.SetWins(),
		SetLegWins:     e.SetLegWins(),
		UpdatedAt:      e.now().UTC(),
	}
}

// Restore rebuilds an Engine from a saved snapshot.
func Restore(s Snapshot, ids IDGenerator, now func() time.Time) (*Engine, error) {
	if ids == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	if now == nil {
		now = time.Now
	}
	if len(s.Players) != 2 {
		return nil, ErrPlayerCount
	}
	if len(s.Legs) == 0 {
		return nil, fmt.Errorf("snapshot has no legs for match %s", s.Match.ID)
	}

	e := &Engine{
		match:          s.Match,
		players:        append([]Player(nil), s.Players...),
		legs:           append([]Leg(nil), s.Legs...),
		turns:          append([]Turn(nil), s.Turns...),
		scores:         copyCounters(s.Scores),
		activePlayerID: s.ActivePlayerID,
		pending:        s.Pending,
		legWinnerID:    s.LegWinnerID,
		legWins:        copyCounters(s.LegWins),
		setWins:        copyCounters(s.SetWins),
		setLegWins:     copyCounters(s.SetLegWins),
		ids:            ids,
		now:            now,
	}

	return e, nil
}
