package game

import "time"

// Mode selects the score every leg counts down from.
type Mode string

const (
	Mode301 Mode = "301"
	Mode501 Mode = "501"
	Mode701 Mode = "701"
)

// ModeForScore maps a starting score onto its mode, defaulting to 501.
func ModeForScore(startingScore int) Mode {
	switch startingScore {
	case 301:
		return Mode301
	case 701:
		return Mode701
	default:
		return Mode501
	}
}

// StartingScore returns the score a leg of this mode begins at.
func (m Mode) StartingScore() int {
	switch m {
	case Mode301:
		return 301
	case Mode701:
		return 701
	default:
		return 501
	}
}

type MatchStatus string

const (
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
)

type FormatType string

const (
	FormatFirstTo FormatType = "first_to"
	FormatBestOf  FormatType = "best_of"
)

// MatchFormat describes how a match is decided. Zero fields mean "unset":
// accessor methods apply the defaults.
type MatchFormat struct {
	Type       FormatType
	LegsToWin  int
	BestOf     int
	UseSets    bool
	SetsToWin  int
	LegsPerSet int
}

func (f MatchFormat) legsPerSet() int {
	if f.LegsPerSet > 0 {
		return f.LegsPerSet
	}
	if f.LegsToWin > 0 {
		return f.LegsToWin
	}
	return 1
}

func (f MatchFormat) setsToWin() int {
	if f.SetsToWin > 0 {
		return f.SetsToWin
	}
	return 1
}

// Player identifies one match participant.
type Player struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Match is the full contest, decided by legs or sets per its format.
type Match struct {
	ID            string
	CreatedAt     time.Time
	Mode          Mode
	StartingScore int
	DoubleOut     bool
	PlayerIDs     []string
	TournamentID  string
	LegsToWin     int
	Format        *MatchFormat
	Status        MatchStatus
	WinnerID      string
}

func (m Match) targetLegs() int {
	if m.Format != nil && m.Format.LegsToWin > 0 {
		return m.Format.LegsToWin
	}
	if m.LegsToWin > 0 {
		return m.LegsToWin
	}
	return 1
}

// Leg is one game played down to exactly zero. The winner and end time are
// derived from the turn history and cleared again when an undo reopens the
// leg.
type Leg struct {
	ID               string
	MatchID          string
	LegNumber        int
	StartingPlayerID string
	WinnerID         string
	EndedAt          *time.Time
}

// Turn records one visit of up to three darts. Turns are created by the rule
// evaluator and never mutated afterwards; undo removes them wholesale.
type Turn struct {
	ID            string
	LegID         string
	PlayerID      string
	TurnIndex     int
	StartedScore  int
	Points        int
	Bust          bool
	DartsThrown   int
	CheckoutHit   bool
	CheckoutValue int
}

// PendingCheckout marks a visit that would finish the leg but still needs the
// thrower to confirm the final dart was a double. Awaiting false is the none
// state.
type PendingCheckout struct {
	Awaiting bool
	Points   int
}
