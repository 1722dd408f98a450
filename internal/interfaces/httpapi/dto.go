package httpapi

import (
	"context"
	"time"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/usecase"
)

type matchFormatDTO struct {
	Type       string `json:"type"`
	LegsToWin  int    `json:"legsToWin,omitempty"`
	BestOf     int    `json:"bestOf,omitempty"`
	UseSets    bool   `json:"useSets,omitempty"`
	SetsToWin  int    `json:"setsToWin,omitempty"`
	LegsPerSet int    `json:"legsPerSet,omitempty"`
}

type gamePlayerDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type liveMatchDTO struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"createdAt"`
	Mode          string          `json:"mode"`
	StartingScore int             `json:"startingScore"`
	DoubleOut     bool            `json:"doubleOut"`
	PlayerIDs     []string        `json:"playerIds"`
	TournamentID  string          `json:"tournamentId,omitempty"`
	Format        *matchFormatDTO `json:"format,omitempty"`
	Status        string          `json:"status"`
	WinnerID      string          `json:"winnerId,omitempty"`
}

type legDTO struct {
	ID               string     `json:"id"`
	LegNumber        int        `json:"legNumber"`
	StartingPlayerID string     `json:"startingPlayerId"`
	WinnerID         string     `json:"winnerId,omitempty"`
	EndedAt          *time.Time `json:"endedAt,omitempty"`
}

type turnDTO struct {
	ID            string `json:"id"`
	LegID         string `json:"legId"`
	PlayerID      string `json:"playerId"`
	TurnIndex     int    `json:"turnIndex"`
	StartedScore  int    `json:"startedScore"`
	Points        int    `json:"points"`
	Bust          bool   `json:"bust"`
	DartsThrown   int    `json:"dartsThrown"`
	CheckoutHit   bool   `json:"checkoutHit"`
	CheckoutValue int    `json:"checkoutValue,omitempty"`
}

type pendingCheckoutDTO struct {
	Points int `json:"points"`
}

type matchStateDTO struct {
	Match           liveMatchDTO        `json:"match"`
	Players         []gamePlayerDTO     `json:"players"`
	Legs            []legDTO            `json:"legs"`
	Turns           []turnDTO           `json:"turns"`
	Scores          map[string]int      `json:"scores"`
	ActivePlayerID  string              `json:"activePlayerId"`
	PendingCheckout *pendingCheckoutDTO `json:"pendingCheckout,omitempty"`
	LegWinnerID     string              `json:"legWinnerId,omitempty"`
	LegWins         map[string]int      `json:"legWins"`
	SetWins         map[string]int      `json:"setWins,omitempty"`
	SetLegWins      map[string]int      `json:"setLegWins,omitempty"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	Suggestion      []string            `json:"suggestion,omitempty"`
}

type visitDTO struct {
	Pending   bool          `json:"pending"`
	Turn      turnDTO       `json:"turn"`
	NextScore int           `json:"nextScore"`
	LegWon    bool          `json:"legWon"`
	MatchWon  bool          `json:"matchWon"`
	State     matchStateDTO `json:"state"`
}

type undoDTO struct {
	Removed  turnDTO       `json:"removed"`
	Reopened bool          `json:"reopened"`
	State    matchStateDTO `json:"state"`
}

type playerStatsDTO struct {
	Average          float64 `json:"average"`
	CheckoutRate     float64 `json:"checkoutRate"`
	CheckoutAttempts int     `json:"checkoutAttempts"`
	CheckoutHits     int     `json:"checkoutHits"`
	DoubleDarts      int     `json:"doubleDarts"`
	Count100Plus     int     `json:"count100Plus"`
	Count140Plus     int     `json:"count140Plus"`
	Count180         int     `json:"count180"`
	TotalDarts       int     `json:"totalDarts"`
	TotalPoints      int     `json:"totalPoints"`
	HighestCheckout  int     `json:"highestCheckout"`
}

type summaryLineDTO struct {
	PlayerID string         `json:"playerId"`
	Name     string         `json:"name"`
	IsWinner bool           `json:"isWinner"`
	LegsWon  int            `json:"legsWon"`
	LegsLost int            `json:"legsLost"`
	Stats    playerStatsDTO `json:"stats"`
}

type matchSummaryDTO struct {
	MatchID       string           `json:"matchId"`
	EndedAt       time.Time        `json:"endedAt"`
	Mode          string           `json:"mode"`
	StartingScore int              `json:"startingScore"`
	DoubleOut     bool             `json:"doubleOut"`
	Format        *matchFormatDTO  `json:"format,omitempty"`
	WinnerID      string           `json:"winnerId"`
	Players       []gamePlayerDTO  `json:"players"`
	Lines         []summaryLineDTO `json:"lines"`
}

type checkoutSuggestionDTO struct {
	Target   int      `json:"target"`
	Darts    []string `json:"darts"`
	Possible bool     `json:"possible"`
}

type tournamentDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Date          time.Time       `json:"date"`
	Mode          string          `json:"mode"`
	Status        string          `json:"status"`
	StartingScore int             `json:"startingScore"`
	DoubleOut     bool            `json:"doubleOut"`
	GroupCount    int             `json:"groupCount"`
	Format        *matchFormatDTO  `json:"format,omitempty"`
	FormatByPhase *phaseFormatsDTO `json:"formatByPhase,omitempty"`
}

type phaseFormatsDTO struct {
	RoundRobin     *matchFormatDTO         `json:"roundRobin,omitempty"`
	Knockout       *matchFormatDTO         `json:"knockout,omitempty"`
	KnockoutRounds map[int]*matchFormatDTO `json:"knockoutRounds,omitempty"`
}

type tournamentPlayerDTO struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	GroupIndex int    `json:"groupIndex"`
}

type tournamentMatchDTO struct {
	ID         string     `json:"id"`
	Phase      string     `json:"phase"`
	Round      int        `json:"round"`
	Order      int        `json:"order"`
	GroupIndex int        `json:"groupIndex"`
	PlayerAID  string     `json:"playerAId"`
	PlayerBID  string     `json:"playerBId"`
	Status     string     `json:"status"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	WinnerID   string     `json:"winnerId,omitempty"`
	Bye        bool       `json:"bye"`
}

type resultLineDTO struct {
	PlayerID         string  `json:"playerId"`
	Name             string  `json:"name"`
	IsWinner         bool    `json:"isWinner"`
	Average          float64 `json:"average"`
	CheckoutRate     float64 `json:"checkoutRate"`
	CheckoutAttempts int     `json:"checkoutAttempts"`
	CheckoutHits     int     `json:"checkoutHits"`
	DoubleDarts      int     `json:"doubleDarts"`
	Count100Plus     int     `json:"count100Plus"`
	Count140Plus     int     `json:"count140Plus"`
	Count180         int     `json:"count180"`
	TotalDarts       int     `json:"totalDarts"`
	TotalPoints      int     `json:"totalPoints"`
	HighestCheckout  int     `json:"highestCheckout"`
	LegsWon          int     `json:"legsWon"`
	LegsLost         int     `json:"legsLost"`
}

type matchResultDTO struct {
	MatchID  string          `json:"matchId"`
	WinnerID string          `json:"winnerId"`
	Lines    []resultLineDTO `json:"lines"`
}

type tournamentDetailDTO struct {
	Tournament tournamentDTO         `json:"tournament"`
	Players    []tournamentPlayerDTO `json:"players"`
	Matches    []tournamentMatchDTO  `json:"matches"`
	Results    []matchResultDTO      `json:"results"`
}

type standingsRowDTO struct {
	PlayerID        string  `json:"playerId"`
	Played          int     `json:"played"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	LegsWon         int     `json:"legsWon"`
	LegsLost        int     `json:"legsLost"`
	LegsDiff        int     `json:"legsDiff"`
	Average         float64 `json:"average"`
	Count180        int     `json:"count180"`
	HighestCheckout int     `json:"highestCheckout"`
}

type leaderboardRowDTO struct {
	PlayerID         string  `json:"playerId"`
	Name             string  `json:"name"`
	Average          float64 `json:"average"`
	CheckoutRate     float64 `json:"checkoutRate"`
	CheckoutAttempts int     `json:"checkoutAttempts"`
	CheckoutHits     int     `json:"checkoutHits"`
	DoubleDarts      int     `json:"doubleDarts"`
	Count100Plus     int     `json:"count100Plus"`
	Count140Plus     int     `json:"count140Plus"`
	Count180         int     `json:"count180"`
	TotalDarts       int     `json:"totalDarts"`
	TotalPoints      int     `json:"totalPoints"`
	HighestCheckout  int     `json:"highestCheckout"`
}

type groupStandingsDTO struct {
	GroupIndex int               `json:"groupIndex"`
	Rows       []standingsRowDTO `json:"rows"`
}

type overviewDTO struct {
	Tournament  tournamentDTO         `json:"tournament"`
	Players     []tournamentPlayerDTO `json:"players"`
	Matches     []tournamentMatchDTO  `json:"matches"`
	Standings   []groupStandingsDTO   `json:"standings"`
	Leaderboard []leaderboardRowDTO   `json:"leaderboard"`
}

func formatToDTO(f *game.MatchFormat) *matchFormatDTO {
	if f == nil {
		return nil
	}
	return &matchFormatDTO{
		Type:       string(f.Type),
		LegsToWin:  f.LegsToWin,
		BestOf:     f.BestOf,
		UseSets:    f.UseSets,
		SetsToWin:  f.SetsToWin,
		LegsPerSet: f.LegsPerSet,
	}
}

func turnToDTO(t game.Turn) turnDTO {
	return turnDTO{
		ID:            t.ID,
		LegID:         t.LegID,
		PlayerID:      t.PlayerID,
		TurnIndex:     t.TurnIndex,
		StartedScore:  t.StartedScore,
		Points:        t.Points,
		Bust:          t.Bust,
		DartsThrown:   t.DartsThrown,
		CheckoutHit:   t.CheckoutHit,
		CheckoutValue: t.CheckoutValue,
	}
}

func matchStateToDTO(ctx context.Context, state usecase.MatchState) matchStateDTO {
	ctx, span := startSpan(ctx, "httpapi.matchStateToDTO")
	defer span.End()

	snap := state.Snapshot

	players := make([]gamePlayerDTO, 0, len(snap.Players))
	for _, p := range snap.Players {
		players = append(players, gamePlayerDTO{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt})
	}

	legs := make([]legDTO, 0, len(snap.Legs))
	for _, leg := range snap.Legs {
		legs = append(legs, legDTO{
			ID:               leg.ID,
			LegNumber:        leg.LegNumber,
			StartingPlayerID: leg.StartingPlayerID,
			WinnerID:         leg.WinnerID,
			EndedAt:          leg.EndedAt,
		})
	}

	turns := make([]turnDTO, 0, len(snap.Turns))
	for _, t := range snap.Turns {
		turns = append(turns, turnToDTO(t))
	}

	var pending *pendingCheckoutDTO
	if snap.Pending.Awaiting {
		pending = &pendingCheckoutDTO{Points: snap.Pending.Points}
	}

	return matchStateDTO{
		Match: liveMatchDTO{
			ID:            snap.Match.ID,
			CreatedAt:     snap.Match.CreatedAt,
			Mode:          string(snap.Match.Mode),
			StartingScore: snap.Match.StartingScore,
			DoubleOut:     snap.Match.DoubleOut,
			PlayerIDs:     snap.Match.PlayerIDs,
			TournamentID:  snap.Match.TournamentID,
			Format:        formatToDTO(snap.Match.Format),
			Status:        string(snap.Match.Status),
			WinnerID:      snap.Match.WinnerID,
		},
		Players:         players,
		Legs:            legs,
		Turns:           turns,
		Scores:          snap.Scores,
		ActivePlayerID:  snap.ActivePlayerID,
		PendingCheckout: pending,
		LegWinnerID:     snap.LegWinnerID,
		LegWins:         snap.LegWins,
		SetWins:         snap.SetWins,
		SetLegWins:      snap.SetLegWins,
		UpdatedAt:       snap.UpdatedAt,
		Suggestion:      state.Suggestion,
	}
}

func visitToDTO(ctx context.Context, out usecase.VisitOutput) visitDTO {
	ctx, span := startSpan(ctx, "httpapi.visitToDTO")
	defer span.End()

	return visitDTO{
		Pending:   out.Result.Pending,
		Turn:      turnToDTO(out.Result.Turn),
		NextScore: out.Result.NextScore,
		LegWon:    out.Result.LegWon,
		MatchWon:  out.Result.MatchWon,
		State:     matchStateToDTO(ctx, out.State),
	}
}

func undoToDTO(ctx context.Context, out usecase.UndoOutput) undoDTO {
	ctx, span := startSpan(ctx, "httpapi.undoToDTO")
	defer span.End()

	return undoDTO{
		Removed:  turnToDTO(out.Removed),
		Reopened: out.Reopened,
		State:    matchStateToDTO(ctx, out.State),
	}
}

func summaryToDTO(ctx context.Context, s game.MatchSummary) matchSummaryDTO {
	ctx, span := startSpan(ctx, "httpapi.summaryToDTO")
	defer span.End()

	players := make([]gamePlayerDTO, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, gamePlayerDTO{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt})
	}

	lines := make([]summaryLineDTO, 0, len(s.Lines))
	for _, line := range s.Lines {
		lines = append(lines, summaryLineDTO{
			PlayerID: line.PlayerID,
			Name:     line.Name,
			IsWinner: line.IsWinner,
			LegsWon:  line.LegsWon,
			LegsLost: line.LegsLost,
			Stats: playerStatsDTO{
				Average:          line.Stats.Average,
				CheckoutRate:     line.Stats.CheckoutRate,
				CheckoutAttempts: line.Stats.CheckoutAttempts,
				CheckoutHits:     line.Stats.CheckoutHits,
				DoubleDarts:      line.Stats.DoubleDarts,
				Count100Plus:     line.Stats.Count100Plus,
				Count140Plus:     line.Stats.Count140Plus,
				Count180:         line.Stats.Count180,
				TotalDarts:       line.Stats.TotalDarts,
				TotalPoints:      line.Stats.TotalPoints,
				HighestCheckout:  line.Stats.HighestCheckout,
			},
		})
	}

	return matchSummaryDTO{
		MatchID:       s.MatchID,
		EndedAt:       s.EndedAt,
		Mode:          string(s.Mode),
		StartingScore: s.StartingScore,
		DoubleOut:     s.DoubleOut,
		Format:        formatToDTO(s.Format),
		WinnerID:      s.WinnerID,
		Players:       players,
		Lines:         lines,
	}
}

func tournamentToDTO(ctx context.Context, t tournament.Tournament) tournamentDTO {
	ctx, span := startSpan(ctx, "httpapi.tournamentToDTO")
	defer span.End()

	var phases *phaseFormatsDTO
	if t.Settings.FormatByPhase != nil {
		phases = &phaseFormatsDTO{
			RoundRobin: formatToDTO(t.Settings.FormatByPhase.RoundRobin),
			Knockout:   formatToDTO(t.Settings.FormatByPhase.Knockout),
		}
		if len(t.Settings.FormatByPhase.KnockoutRounds) > 0 {
			phases.KnockoutRounds = make(map[int]*matchFormatDTO, len(t.Settings.FormatByPhase.KnockoutRounds))
			for round, f := range t.Settings.FormatByPhase.KnockoutRounds {
				phases.KnockoutRounds[round] = formatToDTO(f)
			}
		}
	}

	return tournamentDTO{
		ID:            t.ID,
		Name:          t.Name,
		Date:          t.Date,
		Mode:          string(t.Mode),
		Status:        string(t.Status),
		StartingScore: t.Settings.StartingScore,
		DoubleOut:     t.Settings.DoubleOut,
		GroupCount:    t.Settings.GroupCount,
		Format:        formatToDTO(t.Settings.Format),
		FormatByPhase: phases,
	}
}

func tournamentMatchToDTO(m tournament.Match) tournamentMatchDTO {
	return tournamentMatchDTO{
		ID:         m.ID,
		Phase:      string(m.Phase),
		Round:      m.Round,
		Order:      m.Order,
		GroupIndex: m.GroupIndex,
		PlayerAID:  m.PlayerAID,
		PlayerBID:  m.PlayerBID,
		Status:     string(m.Status),
		StartedAt:  m.StartedAt,
		EndedAt:    m.EndedAt,
		WinnerID:   m.WinnerID,
		Bye:        m.IsBye(),
	}
}

func resultToDTO(r tournament.MatchResult) matchResultDTO {
	lines := make([]resultLineDTO, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, resultLineDTO{
			PlayerID:         line.PlayerID,
			Name:             line.Name,
			IsWinner:         line.IsWinner,
			Average:          line.Average,
			CheckoutRate:     line.CheckoutRate,
			CheckoutAttempts: line.CheckoutAttempts,
			CheckoutHits:     line.CheckoutHits,
			DoubleDarts:      line.DoubleDarts,
			Count100Plus:     line.Count100Plus,
			Count140Plus:     line.Count140Plus,
			Count180:         line.Count180,
			TotalDarts:       line.TotalDarts,
			TotalPoints:      line.TotalPoints,
			HighestCheckout:  line.HighestCheckout,
			LegsWon:          line.LegsWon,
			LegsLost:         line.LegsLost,
		})
	}
	return matchResultDTO{MatchID: r.MatchID, WinnerID: r.Winner(), Lines: lines}
}

func detailToDTO(ctx context.Context, detail usecase.TournamentDetail) tournamentDetailDTO {
	ctx, span := startSpan(ctx, "httpapi.detailToDTO")
	defer span.End()

	players := make([]tournamentPlayerDTO, 0, len(detail.Players))
	for _, p := range detail.Players {
		players = append(players, tournamentPlayerDTO{PlayerID: p.PlayerID, Name: p.Name, GroupIndex: p.GroupIndex})
	}

	matches := make([]tournamentMatchDTO, 0, len(detail.Matches))
	for _, m := range detail.Matches {
		matches = append(matches, tournamentMatchToDTO(m))
	}

	results := make([]matchResultDTO, 0, len(detail.Results))
	for _, r := range detail.Results {
		results = append(results, resultToDTO(r))
	}

	return tournamentDetailDTO{
		Tournament: tournamentToDTO(ctx, detail.Tournament),
		Players:    players,
		Matches:    matches,
		Results:    results,
	}
}

func standingsRowToDTO(row tournament.StandingsRow) standingsRowDTO {
	return standingsRowDTO{
		PlayerID:        row.PlayerID,
		Played:          row.Played,
		Wins:            row.Wins,
		Losses:          row.Losses,
		LegsWon:         row.LegsWon,
		LegsLost:        row.LegsLost,
		LegsDiff:        row.LegsDiff,
		Average:         row.Average,
		Count180:        row.Count180,
		HighestCheckout: row.HighestCheckout,
	}
}

func leaderboardRowToDTO(row tournament.LeaderboardRow) leaderboardRowDTO {
	return leaderboardRowDTO{
		PlayerID:         row.PlayerID,
		Name:             row.Name,
		Average:          row.Average,
		CheckoutRate:     row.CheckoutRate,
		CheckoutAttempts: row.CheckoutAttempts,
		CheckoutHits:     row.CheckoutHits,
		DoubleDarts:      row.DoubleDarts,
		Count100Plus:     row.Count100Plus,
		Count140Plus:     row.Count140Plus,
		Count180:         row.Count180,
		TotalDarts:       row.TotalDarts,
		TotalPoints:      row.TotalPoints,
		HighestCheckout:  row.HighestCheckout,
	}
}

func overviewToDTO(ctx context.Context, overview usecase.Overview) overviewDTO {
	ctx, span := startSpan(ctx, "httpapi.overviewToDTO")
	defer span.End()

	players := make([]tournamentPlayerDTO, 0, len(overview.Players))
	for _, p := range overview.Players {
		players = append(players, tournamentPlayerDTO{PlayerID: p.PlayerID, Name: p.Name, GroupIndex: p.GroupIndex})
	}

	matches := make([]tournamentMatchDTO, 0, len(overview.Matches))
	for _, m := range overview.Matches {
		matches = append(matches, tournamentMatchToDTO(m))
	}

	standings := make([]groupStandingsDTO, 0, len(overview.Standings))
	for _, group := range overview.Standings {
		rows := make([]standingsRowDTO, 0, len(group.Rows))
		for _, row := range group.Rows {
			rows = append(rows, standingsRowToDTO(row))
		}
		standings = append(standings, groupStandingsDTO{GroupIndex: group.GroupIndex, Rows: rows})
	}

	leaderboard := make([]leaderboardRowDTO, 0, len(overview.Leaderboard))
	for _, row := range overview.Leaderboard {
		leaderboard = append(leaderboard, leaderboardRowToDTO(row))
	}

	return overviewDTO{
		Tournament:  tournamentToDTO(ctx, overview.Tournament),
		Players:     players,
		Matches:     matches,
		Standings:   standings,
		Leaderboard: leaderboard,
	}
}
