package game

import "time"

// PlayerStats aggregates one player's turns within a match. Every field is a
// pure fold over the turn history.
type PlayerStats struct {
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
}

// CalculateStats folds one player's turns into their match stats. Busted
// visits contribute darts but no points; a checkout attempt is any visit
// started from a finishable score (170 or below); double-zone darts are those
// thrown from a score a double could end (40 or below, or exactly 50).
func CalculateStats(turns []Turn) PlayerStats {
	var s PlayerStats
	for _, turn := range turns {
		if !turn.Bust {
			s.TotalPoints += turn.Points
			if turn.Points == 180 {
				s.Count180++
			}
			if turn.Points >= 140 {
				s.Count140Plus++
			}
			if turn.Points >= 100 {
				s.Count100Plus++
			}
		}
		s.TotalDarts += turn.DartsThrown

		if turn.StartedScore <= 170 {
			s.CheckoutAttempts++
		}
		if turn.CheckoutHit {
			s.CheckoutHits++
		}
		if turn.StartedScore <= 40 || turn.StartedScore == 50 {
			s.DoubleDarts += turn.DartsThrown
		}
		if turn.CheckoutValue > s.HighestCheckout {
			s.HighestCheckout = turn.CheckoutValue
		}
	}

	if s.TotalDarts > 0 {
		s.Average = float64(s.TotalPoints) / float64(s.TotalDarts) * 3
	}
	if s.CheckoutAttempts > 0 {
		s.CheckoutRate = float64(s.CheckoutHits) / float64(s.CheckoutAttempts) * 100
	}

	return s
}

// PlayerSummary is one player's line in a finished match summary.
type PlayerSummary struct {
	PlayerID string
	Name     string
	IsWinner bool
	LegsWon  int
	LegsLost int
	Stats    PlayerStats
}

// MatchSummary is the durable record of a finished match.
type MatchSummary struct {
	MatchID       string
	EndedAt       time.Time
	Mode          Mode
	StartingScore int
	DoubleOut     bool
	Format        *MatchFormat
	WinnerID      string
	Players       []Player
	Lines         []PlayerSummary
}

// Summary assembles the finished-match record from the leg and turn history.
// Leg win counts are re-derived from the legs rather than read from the live
// counters so the summary stays a function of the history alone.
func (e *Engine) Summary() MatchSummary {
	legWinsByPlayer := make(map[string]int, len(e.players))
	totalLegs := 0
	for _, leg := range e.legs {
		if leg.WinnerID == "" {
			continue
		}
		totalLegs++
		legWinsByPlayer[leg.WinnerID]++
	}

	lines := make([]PlayerSummary, 0, len(e.players))
	for _, p := range e.players {
		playerTurns := make([]Turn, 0, len(e.turns))
		for _, turn := range e.turns {
			if turn.PlayerID == p.ID {
				playerTurns = append(playerTurns, turn)
			}
		}

		legsWon := legWinsByPlayer[p.ID]
		legsLost := totalLegs - legsWon
		if legsLost < 0 {
			legsLost = 0
		}

		lines = append(lines, PlayerSummary{
			PlayerID: p.ID,
			Name:     p.Name,
			IsWinner: p.ID == e.match.WinnerID,
			LegsWon:  legsWon,
			LegsLost: legsLost,
			Stats:    CalculateStats(playerTurns),
		})
	}

	return MatchSummary{
		MatchID:       e.match.ID,
		EndedAt:       e.now().UTC(),
		Mode:          e.match.Mode,
		StartingScore: e.match.StartingScore,
		DoubleOut:     e.match.DoubleOut,
		Format:        e.match.Format,
		WinnerID:      e.match.WinnerID,
		Players:       e.Players(),
		Lines:         lines,
	}
}
