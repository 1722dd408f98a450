package game

// IsBust reports whether a visit scoring points from startedScore busts.
// A visit busts when it overshoots, leaves the unfinishable remainder 1, or
// reaches exactly zero without a confirmed double under double-out.
func IsBust(startedScore, points int, doubleOut, checkoutDouble bool) bool {
	remaining := startedScore - points
	if remaining < 0 {
		return true
	}
	if remaining == 1 {
		return true
	}
	if remaining == 0 && doubleOut && !checkoutDouble {
		return true
	}
	return false
}

// VisitParams carries everything needed to evaluate one visit.
type VisitParams struct {
	TurnID         string
	LegID          string
	PlayerID       string
	TurnIndex      int
	StartedScore   int
	Points         int
	DoubleOut      bool
	DartsThrown    int
	CheckoutDouble bool
}

// VisitOutcome is the evaluated visit: the immutable turn record, the score
// the player is left on, and whether the visit won the leg.
type VisitOutcome struct {
	Turn      Turn
	NextScore int
	LegWon    bool
}

// EvaluateVisit applies the bust and checkout rules to a single visit. It is
// a pure function; recording the outcome is the caller's concern.
func EvaluateVisit(p VisitParams) VisitOutcome {
	remaining := p.StartedScore - p.Points
	bust := IsBust(p.StartedScore, p.Points, p.DoubleOut, p.CheckoutDouble)
	checkoutHit := !bust && remaining == 0

	nextScore := remaining
	if bust {
		nextScore = p.StartedScore
	}

	dartsThrown := p.DartsThrown
	if dartsThrown <= 0 {
		dartsThrown = 3
	}

	checkoutValue := 0
	if checkoutHit {
		checkoutValue = p.StartedScore
	}

	return VisitOutcome{
		Turn: Turn{
			ID:            p.TurnID,
			LegID:         p.LegID,
			PlayerID:      p.PlayerID,
			TurnIndex:     p.TurnIndex,
			StartedScore:  p.StartedScore,
			Points:        p.Points,
			Bust:          bust,
			DartsThrown:   dartsThrown,
			CheckoutHit:   checkoutHit,
			CheckoutValue: checkoutValue,
		},
		NextScore: nextScore,
		LegWon:    checkoutHit,
	}
}
