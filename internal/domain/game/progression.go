package game

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrMatchFinished        = errors.New("match already finished")
	ErrAwaitingConfirmation = errors.New("visit awaiting checkout confirmation")
	ErrNoPendingCheckout    = errors.New("no pending checkout to confirm")
	ErrNoTurns              = errors.New("no turns to undo")
	ErrInvalidPoints        = errors.New("visit points out of range")
	ErrPlayerCount          = errors.New("match requires exactly two distinct players")
)

// IDGenerator creates opaque identifiers for matches, legs and turns.
type IDGenerator interface {
	NewID() (string, error)
}

// EngineConfig describes the match an Engine is started for.
type EngineConfig struct {
	MatchID          string
	TournamentID     string
	Players          []Player
	StartingScore    int
	DoubleOut        bool
	Format           *MatchFormat
	StartingPlayerID string
}

// Engine drives one live match. It owns the match record, the leg and turn
// arenas, and every derived counter. Counters are never adjusted by inverse
// deltas: undo rebuilds them by replaying the surviving turn history.
//
// An Engine is not safe for concurrent use; callers serialize access per
// match.
type Engine struct {
	match          Match
	players        []Player
	legs           []Leg
	turns          []Turn
	scores         map[string]int
	activePlayerID string
	pending        PendingCheckout
	legWinnerID    string
	legWins        map[string]int
	setWins        map[string]int
	setLegWins     map[string]int

	ids IDGenerator
	now func() time.Time
}

// VisitResult reports what one submitted visit did. Pending true means the
// visit was parked for double confirmation and nothing else happened.
type VisitResult struct {
	Pending   bool
	Turn      Turn
	NextScore int
	LegWon    bool
	MatchWon  bool
}

// UndoResult reports the removed turn and whether removing it reopened a
// finished match.
type UndoResult struct {
	Turn          Turn
	ReopenedMatch bool
}

func NewEngine(cfg EngineConfig, ids IDGenerator, now func() time.Time) (*Engine, error) {
	if ids == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	if now == nil {
		now = time.Now
	}
	if len(cfg.Players) != 2 || cfg.Players[0].ID == cfg.Players[1].ID {
		return nil, ErrPlayerCount
	}
	for _, p := range cfg.Players {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: empty player id", ErrPlayerCount)
		}
	}

	matchID := cfg.MatchID
	if matchID == "" {
		generated, err := ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate match id: %w", err)
		}
		matchID = generated
	}
	legID, err := ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate leg id: %w", err)
	}

	startingScore := cfg.StartingScore
	if startingScore <= 0 {
		startingScore = 501
	}
	starter := cfg.StartingPlayerID
	if starter == "" {
		starter = cfg.Players[0].ID
	}

	var legsToWin int
	if cfg.Format != nil {
		legsToWin = cfg.Format.LegsToWin
	}

	startedAt := now().UTC()
	e := &Engine{
		match: Match{
			ID:            matchID,
			CreatedAt:     startedAt,
			Mode:          ModeForScore(startingScore),
			StartingScore: startingScore,
			DoubleOut:     cfg.DoubleOut,
			PlayerIDs:     []string{cfg.Players[0].ID, cfg.Players[1].ID},
			TournamentID:  cfg.TournamentID,
			LegsToWin:     legsToWin,
			Format:        cfg.Format,
			Status:        MatchInProgress,
		},
		players: append([]Player(nil), cfg.Players...),
		legs: []Leg{{
			ID:               legID,
			MatchID:          matchID,
			LegNumber:        1,
			StartingPlayerID: starter,
		}},
		scores:         map[string]int{cfg.Players[0].ID: startingScore, cfg.Players[1].ID: startingScore},
		activePlayerID: starter,
		legWins:        map[string]int{cfg.Players[0].ID: 0, cfg.Players[1].ID: 0},
		setWins:        map[string]int{cfg.Players[0].ID: 0, cfg.Players[1].ID: 0},
		setLegWins:     map[string]int{cfg.Players[0].ID: 0, cfg.Players[1].ID: 0},
		ids:            ids,
		now:            now,
	}

	return e, nil
}

// RequestVisit records a visit scoring points for the active player. When
// double-out is on and the points would bring the score to exactly zero, the
// visit is parked instead: the numeric total alone cannot prove the final
// dart was a double, so ConfirmCheckout must follow.
func (e *Engine) RequestVisit(points int) (VisitResult, error) {
	if err := e.acceptingVisits(); err != nil {
		return VisitResult{}, err
	}
	if err := validatePoints(points); err != nil {
		return VisitResult{}, err
	}

	started := e.scores[e.activePlayerID]
	if e.match.DoubleOut && started-points == 0 {
		e.pending = PendingCheckout{Awaiting: true, Points: points}
		return VisitResult{Pending: true}, nil
	}

	return e.applyVisit(points, false)
}

// ConfirmCheckout finalizes a parked visit once the thrower has answered
// whether the final dart was a double.
func (e *Engine) ConfirmCheckout(doubleHit bool) (VisitResult, error) {
	if !e.pending.Awaiting {
		return VisitResult{}, ErrNoPendingCheckout
	}

	points := e.pending.Points
	e.pending = PendingCheckout{}
	return e.applyVisit(points, doubleHit)
}

// CancelPendingCheckout drops a parked visit without recording anything.
func (e *Engine) CancelPendingCheckout() {
	e.pending = PendingCheckout{}
}

// SubmitVisit records a visit whose finishing dart is already known, skipping
// the confirmation phase.
func (e *Engine) SubmitVisit(points int, checkoutDouble bool) (VisitResult, error) {
	if e.match.Status == MatchFinished {
		return VisitResult{}, ErrMatchFinished
	}
	if err := validatePoints(points); err != nil {
		return VisitResult{}, err
	}

	e.pending = PendingCheckout{}
	return e.applyVisit(points, checkoutDouble)
}

func (e *Engine) acceptingVisits() error {
	if e.match.Status == MatchFinished {
		return ErrMatchFinished
	}
	if e.pending.Awaiting {
		return ErrAwaitingConfirmation
	}
	return nil
}

func validatePoints(points int) error {
	if points < 0 || points > 180 {
		return fmt.Errorf("%w: %d", ErrInvalidPoints, points)
	}
	return nil
}

func (e *Engine) applyVisit(points int, checkoutDouble bool) (VisitResult, error) {
	turnID, err := e.ids.NewID()
	if err != nil {
		return VisitResult{}, fmt.Errorf("generate turn id: %w", err)
	}

	leg := &e.legs[len(e.legs)-1]
	outcome := EvaluateVisit(VisitParams{
		TurnID:         turnID,
		LegID:          leg.ID,
		PlayerID:       e.activePlayerID,
		TurnIndex:      len(e.turns) + 1,
		StartedScore:   e.scores[e.activePlayerID],
		Points:         points,
		DoubleOut:      e.match.DoubleOut,
		CheckoutDouble: checkoutDouble,
	})

	e.turns = append(e.turns, outcome.Turn)
	e.scores[e.activePlayerID] = outcome.NextScore

	result := VisitResult{
		Turn:      outcome.Turn,
		NextScore: outcome.NextScore,
		LegWon:    outcome.LegWon,
	}

	if !outcome.LegWon {
		e.activePlayerID = e.otherPlayer(e.activePlayerID)
		return result, nil
	}

	winnerID := e.activePlayerID
	endedAt := e.now().UTC()
	e.legWinnerID = winnerID
	leg.WinnerID = winnerID
	leg.EndedAt = &endedAt

	e.updateLegCounters(winnerID)

	if e.isMatchWon(winnerID) {
		e.match.Status = MatchFinished
		e.match.WinnerID = winnerID
		result.MatchWon = true
		return result, nil
	}

	if err := e.startNextLeg(); err != nil {
		return VisitResult{}, err
	}
	return result, nil
}

func (e *Engine) updateLegCounters(winnerID string) {
	e.legWins[winnerID]++

	if e.match.Format == nil || !e.match.Format.UseSets {
		return
	}
	e.setLegWins[winnerID]++
	if e.setLegWins[winnerID] >= e.match.Format.legsPerSet() {
		e.setLegWins = e.zeroCounters()
		e.setWins[winnerID]++
	}
}

func (e *Engine) isMatchWon(winnerID string) bool {
	if e.match.Format != nil && e.match.Format.UseSets {
		return e.setWins[winnerID] >= e.match.Format.setsToWin()
	}
	return e.legWins[winnerID] >= e.match.targetLegs()
}

func (e *Engine) startNextLeg() error {
	previous := e.legs[len(e.legs)-1]
	legID, err := e.ids.NewID()
	if err != nil {
		return fmt.Errorf("generate leg id: %w", err)
	}

	starter := e.otherPlayer(previous.StartingPlayerID)
	e.legs = append(e.legs, Leg{
		ID:               legID,
		MatchID:          e.match.ID,
		LegNumber:        previous.LegNumber + 1,
		StartingPlayerID: starter,
	})
	for _, p := range e.players {
		e.scores[p.ID] = e.match.StartingScore
	}
	e.activePlayerID = starter
	e.pending = PendingCheckout{}
	e.legWinnerID = ""
	return nil
}

// UndoLastVisit removes the most recent turn and rebuilds all derived state
// from the remaining history. Inverse counter deltas are deliberately not
// used: they cannot account for set rollovers.
func (e *Engine) UndoLastVisit() (UndoResult, error) {
	if len(e.turns) == 0 {
		return UndoResult{}, ErrNoTurns
	}

	last := e.turns[len(e.turns)-1]
	e.turns = e.turns[:len(e.turns)-1]
	e.pending = PendingCheckout{}

	reopened := false
	if last.CheckoutHit {
		reopened = e.match.Status == MatchFinished
		e.legWinnerID = ""
		e.match.Status = MatchInProgress
		e.match.WinnerID = ""
	}

	e.recomputeCounters()
	e.syncLegAfterUndo(last.LegID)

	return UndoResult{Turn: last, ReopenedMatch: reopened}, nil
}

// recomputeCounters replays the surviving turn history in turn order against
// zeroed counters.
func (e *Engine) recomputeCounters() {
	e.legWins = e.zeroCounters()
	e.setWins = e.zeroCounters()
	e.setLegWins = e.zeroCounters()

	ordered := append([]Turn(nil), e.turns...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].TurnIndex < ordered[j].TurnIndex })

	useSets := e.match.Format != nil && e.match.Format.UseSets
	legsPerSet := 1
	if e.match.Format != nil {
		legsPerSet = e.match.Format.legsPerSet()
	}

	for _, turn := range ordered {
		if !turn.CheckoutHit {
			continue
		}
		winnerID := turn.PlayerID
		e.legWins[winnerID]++

		if useSets {
			e.setLegWins[winnerID]++
			if e.setLegWins[winnerID] >= legsPerSet {
				e.setLegWins = e.zeroCounters()
				e.setWins[winnerID]++
			}
		}
	}
}

// syncLegAfterUndo restores the active leg, per-player scores and active
// player after a turn was removed. A freshly started leg left without any
// turns is dropped so play resumes inside the leg the removed turn belonged
// to.
func (e *Engine) syncLegAfterUndo(targetLegID string) {
	currentID := e.legs[len(e.legs)-1].ID
	if currentID != targetLegID && !e.legHasTurns(currentID) {
		e.legs = e.legs[:len(e.legs)-1]
	}

	activeIdx := len(e.legs) - 1
	for i := range e.legs {
		if e.legs[i].ID == targetLegID {
			activeIdx = i
			break
		}
	}
	leg := &e.legs[activeIdx]

	for _, p := range e.players {
		e.scores[p.ID] = e.match.StartingScore
		for i := len(e.turns) - 1; i >= 0; i-- {
			turn := e.turns[i]
			if turn.LegID != leg.ID || turn.PlayerID != p.ID {
				continue
			}
			if turn.Bust {
				e.scores[p.ID] = turn.StartedScore
			} else {
				e.scores[p.ID] = turn.StartedScore - turn.Points
			}
			break
		}
	}

	e.activePlayerID = leg.StartingPlayerID
	for i := len(e.turns) - 1; i >= 0; i-- {
		if e.turns[i].LegID == leg.ID {
			e.activePlayerID = e.otherPlayer(e.turns[i].PlayerID)
			break
		}
	}

	leg.WinnerID = ""
	leg.EndedAt = nil
}

func (e *Engine) legHasTurns(legID string) bool {
	for _, turn := range e.turns {
		if turn.LegID == legID {
			return true
		}
	}
	return false
}

func (e *Engine) otherPlayer(playerID string) string {
	for _, p := range e.players {
		if p.ID != playerID {
			return p.ID
		}
	}
	return playerID
}

func (e *Engine) zeroCounters() map[string]int {
	counters := make(map[string]int, len(e.players))
	for _, p := range e.players {
		counters[p.ID] = 0
	}
	return counters
}

func (e *Engine) Match() Match {
	m := e.match
	m.PlayerIDs = append([]string(nil), e.match.PlayerIDs...)
	return m
}

func (e *Engine) Players() []Player {
	return append([]Player(nil), e.players...)
}

func (e *Engine) Legs() []Leg {
	return append([]Leg(nil), e.legs...)
}

func (e *Engine) Turns() []Turn {
	return append([]Turn(nil), e.turns...)
}

// CurrentLeg returns the leg visits are currently recorded into.
func (e *Engine) CurrentLeg() Leg {
	return e.legs[len(e.legs)-1]
}

func (e *Engine) Scores() map[string]int {
	return copyCounters(e.scores)
}

func (e *Engine) ActivePlayerID() string {
	return e.activePlayerID
}

func (e *Engine) Pending() PendingCheckout {
	return e.pending
}

func (e *Engine) LegWinnerID() string {
	return e.legWinnerID
}

func (e *Engine) LegWins() map[string]int {
	return copyCounters(e.legWins)
}

func (e *Engine) SetWins() map[string]int {
	return copyCounters(e.setWins)
}

func (e *Engine) SetLegWins() map[string]int {
	return copyCounters(e.setLegWins)
}

func copyCounters(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
