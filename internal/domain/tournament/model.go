package tournament

import (
	"fmt"
	"time"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
)

type Mode string

const (
	ModeRoundRobin Mode = "round_robin"
	ModeKnockout   Mode = "knockout"
	ModeCombined   Mode = "combined"
)

// Phase is one stage of a tournament. PhaseAll is a query value meaning "do
// not filter".
type Phase string

const (
	PhaseRoundRobin Phase = "round_robin"
	PhaseKnockout   Phase = "knockout"
	PhaseAll        Phase = "all"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
)

// PhaseFormats customizes the match format per phase; knockout rounds may be
// overridden individually (finals are often longer).
type PhaseFormats struct {
	RoundRobin     *game.MatchFormat
	Knockout       *game.MatchFormat
	KnockoutRounds map[int]*game.MatchFormat
}

// Settings are the play parameters every match of the tournament inherits.
type Settings struct {
	StartingScore int
	DoubleOut     bool
	Format        *game.MatchFormat
	FormatByPhase *PhaseFormats
	GroupCount    int
}

type Tournament struct {
	ID       string
	Name     string
	Date     time.Time
	Mode     Mode
	Settings Settings
	Status   Status
}

func (t Tournament) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tournament name is required")
	}
	switch t.Mode {
	case ModeRoundRobin, ModeKnockout, ModeCombined:
	default:
		return fmt.Errorf("unknown tournament mode %q", t.Mode)
	}
	return nil
}

// Player is one tournament participant with their group assignment.
type Player struct {
	TournamentID string
	PlayerID     string
	Name         string
	GroupIndex   int
}

// Match is one scheduled pairing. A bye is stored as an already-finished
// self-pairing so bracket slots stay dense.
type Match struct {
	ID           string
	TournamentID string
	Phase        Phase
	Round        int
	Order        int
	GroupIndex   int
	PlayerAID    string
	PlayerBID    string
	Status       MatchStatus
	StartedAt    *time.Time
	EndedAt      *time.Time
	WinnerID     string
}

// IsBye reports whether this match is a bye placeholder rather than a real
// pairing.
func (m Match) IsBye() bool {
	return m.PlayerAID == m.PlayerBID
}

// PlayerLine is one player's aggregated stats in a finished match result.
type PlayerLine struct {
	PlayerID         string
	Name             string
	IsWinner         bool
	Average          float64
	CheckoutRate     float64
	CheckoutAttempts int
	CheckoutHits     int
	DoubleDarts      int
	Count100Plus     int
	Count140Plus     int
	Count180         int
	TotalDarts       int
	TotalPoints      int
	HighestCheckout  int
	LegsWon          int
	LegsLost         int
}

// MatchResult is the per-player stat record attached to a finished match.
type MatchResult struct {
	MatchID      string
	TournamentID string
	Lines        []PlayerLine
}

// Winner returns the player id flagged as winner in the result lines.
func (r MatchResult) Winner() string {
	for _, line := range r.Lines {
		if line.IsWinner {
			return line.PlayerID
		}
	}
	return ""
}
