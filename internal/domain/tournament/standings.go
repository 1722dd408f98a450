package tournament

import "sort"

// StandingsRow is one line of a phase table, already ranked.
type StandingsRow struct {
	PlayerID        string
	Played          int
	Wins            int
	Losses          int
	LegsWon         int
	LegsLost        int
	LegsDiff        int
	Average         float64
	Count180        int
	HighestCheckout int
}

// LeaderboardRow is one player's tournament-wide totals. Rates are recomputed
// from the summed counters, never averaged across matches.
type LeaderboardRow struct {
	PlayerID         string
	Name             string
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

// StandingsInput scopes a standings computation. GroupIndex nil means all
// groups; Phase PhaseAll means all phases.
type StandingsInput struct {
	PlayerIDs  []string
	Matches    []Match
	Results    []MatchResult
	Phase      Phase
	GroupIndex *int
}

// CalculateStandings folds finished matches into a ranked table. Only
// finished, non-bye matches count; a match without an attached result is
// skipped rather than failing the whole table. Ranking is wins desc, leg
// difference desc, average desc; unresolved ties keep player input order.
func CalculateStandings(input StandingsInput) []StandingsRow {
	type tally struct {
		wins, losses, played      int
		legsWon, legsLost         int
		totalPoints, totalDarts   int
		count180, highestCheckout int
	}

	stats := make(map[string]*tally, len(input.PlayerIDs))
	for _, playerID := range input.PlayerIDs {
		stats[playerID] = &tally{}
	}

	resultByMatch := make(map[string]MatchResult, len(input.Results))
	for _, result := range input.Results {
		resultByMatch[result.MatchID] = result
	}

	for _, match := range input.Matches {
		if match.Status != MatchFinished || match.IsBye() {
			continue
		}
		if input.GroupIndex != nil && match.GroupIndex != *input.GroupIndex {
			continue
		}
		if input.Phase != PhaseAll && match.Phase != input.Phase {
			continue
		}

		result, ok := resultByMatch[match.ID]
		if !ok {
			continue
		}
		winnerID := match.WinnerID
		if winnerID == "" {
			winnerID = result.Winner()
		}
		if winnerID == "" {
			continue
		}
		loserID := match.PlayerBID
		if winnerID == match.PlayerBID {
			loserID = match.PlayerAID
		}

		if row, ok := stats[winnerID]; ok {
			row.wins++
			row.played++
		}
		if row, ok := stats[loserID]; ok {
			row.losses++
			row.played++
		}

		for _, line := range result.Lines {
			row, ok := stats[line.PlayerID]
			if !ok {
				continue
			}
			row.legsWon += line.LegsWon
			row.legsLost += line.LegsLost
			row.totalPoints += line.TotalPoints
			row.totalDarts += line.TotalDarts
			row.count180 += line.Count180
			if line.HighestCheckout > row.highestCheckout {
				row.highestCheckout = line.HighestCheckout
			}
		}
	}

	rows := make([]StandingsRow, 0, len(input.PlayerIDs))
	for _, playerID := range input.PlayerIDs {
		row := stats[playerID]
		average := 0.0
		if row.totalDarts > 0 {
			average = float64(row.totalPoints) / float64(row.totalDarts) * 3
		}
		rows = append(rows, StandingsRow{
			PlayerID:        playerID,
			Played:          row.played,
			Wins:            row.wins,
			Losses:          row.losses,
			LegsWon:         row.legsWon,
			LegsLost:        row.legsLost,
			LegsDiff:        row.legsWon - row.legsLost,
			Average:         average,
			Count180:        row.count180,
			HighestCheckout: row.highestCheckout,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		if rows[i].LegsDiff != rows[j].LegsDiff {
			return rows[i].LegsDiff > rows[j].LegsDiff
		}
		return rows[i].Average > rows[j].Average
	})

	return rows
}

// CalculateLeaderboards accumulates every result line per player across the
// whole tournament, then derives average and checkout rate from the summed
// totals so players with few darts are not over-weighted. The returned order
// is unspecified beyond first-appearance; callers sort for display.
func CalculateLeaderboards(results []MatchResult) []LeaderboardRow {
	totals := make(map[string]*LeaderboardRow)
	order := make([]string, 0)

	for _, result := range results {
		for _, line := range result.Lines {
			row, ok := totals[line.PlayerID]
			if !ok {
				row = &LeaderboardRow{PlayerID: line.PlayerID, Name: line.Name}
				totals[line.PlayerID] = row
				order = append(order, line.PlayerID)
			}
			row.CheckoutAttempts += line.CheckoutAttempts
			row.CheckoutHits += line.CheckoutHits
			row.DoubleDarts += line.DoubleDarts
			row.Count100Plus += line.Count100Plus
			row.Count140Plus += line.Count140Plus
			row.Count180 += line.Count180
			row.TotalDarts += line.TotalDarts
			row.TotalPoints += line.TotalPoints
			if line.HighestCheckout > row.HighestCheckout {
				row.HighestCheckout = line.HighestCheckout
			}
		}
	}

	rows := make([]LeaderboardRow, 0, len(order))
	for _, playerID := range order {
		row := *totals[playerID]
		if row.TotalDarts > 0 {
			row.Average = float64(row.TotalPoints) / float64(row.TotalDarts) * 3
		}
		if row.CheckoutAttempts > 0 {
			row.CheckoutRate = float64(row.CheckoutHits) / float64(row.CheckoutAttempts) * 100
		}
		rows = append(rows, row)
	}

	return rows
}
