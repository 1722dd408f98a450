package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/infrastructure/repository/memory"
)

func newTournamentService() (*TournamentService, *memory.ArchiveRepository) {
	archive := memory.NewArchiveRepository()
	return NewTournamentService(memory.NewTournamentRepository(), archive, &seqIDs{}, nil, nil), archive
}

func fourPlayers() []tournament.Player {
	return []tournament.Player{
		{PlayerID: "p1", Name: "Alice"},
		{PlayerID: "p2", Name: "Bob"},
		{PlayerID: "p3", Name: "Cara"},
		{PlayerID: "p4", Name: "Dan"},
	}
}

// winResult builds a minimal 2-0 result in winnerID's favor.
func winResult(m tournament.Match, winnerID string) tournament.MatchResult {
	loserID := m.PlayerBID
	if winnerID == m.PlayerBID {
		loserID = m.PlayerAID
	}
	return tournament.MatchResult{
		MatchID:      m.ID,
		TournamentID: m.TournamentID,
		Lines: []tournament.PlayerLine{
			{PlayerID: winnerID, IsWinner: true, LegsWon: 2, LegsLost: 0, TotalPoints: 1002, TotalDarts: 36},
			{PlayerID: loserID, LegsWon: 0, LegsLost: 2, TotalPoints: 800, TotalDarts: 36},
		},
	}
}

func pendingMatches(t *testing.T, svc *TournamentService, tournamentID string, phase tournament.Phase) []tournament.Match {
	t.Helper()
	detail, err := svc.Get(context.Background(), tournamentID)
	if err != nil {
		t.Fatalf("get tournament: %v", err)
	}
	var out []tournament.Match
	for _, m := range detail.Matches {
		if m.Phase == phase && m.Status != tournament.MatchFinished {
			out = append(out, m)
		}
	}
	return out
}

func TestTournamentServiceRoundRobinSchedule(t *testing.T) {
	t.Parallel()

	svc, _ := newTournamentService()
	detail, err := svc.Create(context.Background(), CreateTournamentInput{
		Name:    "Club Night",
		Mode:    tournament.ModeRoundRobin,
		Players: fourPlayers(),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	if detail.Tournament.Status != tournament.StatusActive {
		t.Fatalf("unexpected status: got=%s want=%s", detail.Tournament.Status, tournament.StatusActive)
	}
	if len(detail.Matches) != 6 {
		t.Fatalf("4 players should give 6 matches, got %d", len(detail.Matches))
	}
	maxRound := 0
	for _, m := range detail.Matches {
		if m.Phase != tournament.PhaseRoundRobin {
			t.Fatalf("unexpected phase: %s", m.Phase)
		}
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}
	if maxRound != 3 {
		t.Fatalf("4 players should give 3 rounds, got %d", maxRound)
	}
}

func TestTournamentServiceKnockoutWithByes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTournamentService()
	players := append(fourPlayers(), tournament.Player{PlayerID: "p5", Name: "Eve"})
	detail, err := svc.Create(ctx, CreateTournamentInput{
		Name:     "Cup",
		Mode:     tournament.ModeKnockout,
		Settings: tournament.Settings{GroupCount: 3},
		Players:  players,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	// Knockout never has groups regardless of the requested count.
	if got := detail.Tournament.Settings.GroupCount; got != 1 {
		t.Fatalf("knockout group count: got=%d want=1", got)
	}
	if len(detail.Matches) != 4 {
		t.Fatalf("5 seeds should give a bracket of 8 with 4 pairings, got %d", len(detail.Matches))
	}

	byes := 0
	var open []tournament.Match
	for _, m := range detail.Matches {
		if m.IsBye() {
			byes++
			if m.Status != tournament.MatchFinished || m.WinnerID != m.PlayerAID {
				t.Fatalf("bye must be stored finished in favor of its player: %+v", m)
			}
			continue
		}
		open = append(open, m)
	}
	if byes != 3 || len(open) != 1 {
		t.Fatalf("unexpected bracket: byes=%d open=%d", byes, len(open))
	}

	// Deciding the only real pairing advances the bracket to its semifinals.
	if err := svc.RecordResult(ctx, detail.Tournament.ID, winResult(open[0], open[0].PlayerAID)); err != nil {
		t.Fatalf("record result: %v", err)
	}
	next := pendingMatches(t, svc, detail.Tournament.ID, tournament.PhaseKnockout)
	if len(next) != 2 {
		t.Fatalf("expected 2 semifinal matches, got %d", len(next))
	}
	for _, m := range next {
		if m.Round != 2 {
			t.Fatalf("expected round 2, got %d", m.Round)
		}
	}
}

func TestTournamentServiceCombinedTransitionAndFinish(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTournamentService()
	detail, err := svc.Create(ctx, CreateTournamentInput{
		Name:    "League + Cup",
		Mode:    tournament.ModeCombined,
		Players: fourPlayers(),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	tournamentID := detail.Tournament.ID

	// Player A wins every group match they play; everything else goes to
	// the alphabetically earlier player.
	for {
		open := pendingMatches(t, svc, tournamentID, tournament.PhaseRoundRobin)
		if len(open) == 0 {
			break
		}
		m := open[0]
		winnerID := m.PlayerAID
		if m.PlayerBID < winnerID {
			winnerID = m.PlayerBID
		}
		if err := svc.RecordResult(ctx, tournamentID, winResult(m, winnerID)); err != nil {
			t.Fatalf("record group result: %v", err)
		}
	}

	// Finishing the group stage must have spawned the knockout phase.
	knockout := pendingMatches(t, svc, tournamentID, tournament.PhaseKnockout)
	if len(knockout) != 2 {
		t.Fatalf("expected 2 first-round knockout matches, got %d", len(knockout))
	}

	current, err := svc.Get(ctx, tournamentID)
	if err != nil {
		t.Fatalf("get tournament: %v", err)
	}
	if current.Tournament.Status != tournament.StatusActive {
		t.Fatal("tournament must stay active while the bracket runs")
	}

	for _, m := range knockout {
		if err := svc.RecordResult(ctx, tournamentID, winResult(m, m.PlayerAID)); err != nil {
			t.Fatalf("record semifinal result: %v", err)
		}
	}
	final := pendingMatches(t, svc, tournamentID, tournament.PhaseKnockout)
	if len(final) != 1 {
		t.Fatalf("expected a single final, got %d", len(final))
	}
	if err := svc.RecordResult(ctx, tournamentID, winResult(final[0], final[0].PlayerAID)); err != nil {
		t.Fatalf("record final result: %v", err)
	}

	current, err = svc.Get(ctx, tournamentID)
	if err != nil {
		t.Fatalf("get tournament: %v", err)
	}
	if current.Tournament.Status != tournament.StatusFinished {
		t.Fatalf("unexpected status: got=%s want=%s", current.Tournament.Status, tournament.StatusFinished)
	}

	overview, err := svc.GetOverview(ctx, tournamentID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.Standings) != 1 || len(overview.Standings[0].Rows) != 4 {
		t.Fatalf("unexpected overview standings: %+v", overview.Standings)
	}
	if len(overview.Leaderboard) != 4 {
		t.Fatalf("unexpected leaderboard size: %d", len(overview.Leaderboard))
	}
}

func TestTournamentServiceRevertRules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTournamentService()
	players := append(fourPlayers(), tournament.Player{PlayerID: "p5", Name: "Eve"})
	detail, err := svc.Create(ctx, CreateTournamentInput{
		Name:    "Cup",
		Mode:    tournament.ModeKnockout,
		Players: players,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	tournamentID := detail.Tournament.ID

	// Byes are finished self-pairings; reopening one would leave a match
	// nothing can start.
	var bye tournament.Match
	for _, m := range detail.Matches {
		if m.IsBye() {
			bye = m
			break
		}
	}
	if bye.ID == "" {
		t.Fatal("expected a bye in a 5 player bracket")
	}
	if err := svc.RevertResult(ctx, tournamentID, bye.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for bye revert, got %v", err)
	}

	open := pendingMatches(t, svc, tournamentID, tournament.PhaseKnockout)
	decided := open[0]
	if err := svc.RecordResult(ctx, tournamentID, winResult(decided, decided.PlayerAID)); err != nil {
		t.Fatalf("record result: %v", err)
	}

	// The winner is already seeded into round 2, so the result is locked.
	err = svc.RevertResult(ctx, tournamentID, decided.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for advanced winner, got %v", err)
	}

	// A not-yet-advanced semifinal result can be reverted.
	semis := pendingMatches(t, svc, tournamentID, tournament.PhaseKnockout)
	semi := semis[0]
	if err := svc.RecordResult(ctx, tournamentID, winResult(semi, semi.PlayerAID)); err != nil {
		t.Fatalf("record semifinal: %v", err)
	}
	if err := svc.RevertResult(ctx, tournamentID, semi.ID); err != nil {
		t.Fatalf("revert semifinal: %v", err)
	}

	reverted, _, err := svc.repo.GetMatch(ctx, semi.ID)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if reverted.Status != tournament.MatchInProgress || reverted.WinnerID != "" || reverted.EndedAt != nil {
		t.Fatalf("revert left stale state: %+v", reverted)
	}

	results, err := svc.repo.ListResults(ctx, tournamentID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	for _, r := range results {
		if r.MatchID == semi.ID {
			t.Fatal("reverted result must be deleted")
		}
	}
}

func TestTournamentServiceValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newTournamentService()

	if _, err := svc.Create(ctx, CreateTournamentInput{
		Mode:    tournament.ModeRoundRobin,
		Players: fourPlayers(),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateTournamentInput{
		Name:    "Too Small",
		Mode:    tournament.ModeRoundRobin,
		Players: fourPlayers()[:1],
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for one player, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateTournamentInput{
		Name:    "Bad Mode",
		Mode:    tournament.Mode("ladder"),
		Players: fourPlayers(),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown mode, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNormalizeGroupCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mode        tournament.Mode
		requested   int
		playerCount int
		want        int
	}{
		{name: "knockout forces single group", mode: tournament.ModeKnockout, requested: 4, playerCount: 8, want: 1},
		{name: "clamped to half the field", mode: tournament.ModeRoundRobin, requested: 5, playerCount: 6, want: 3},
		{name: "zero defaults to one", mode: tournament.ModeCombined, requested: 0, playerCount: 4, want: 1},
		{name: "requested within bounds", mode: tournament.ModeCombined, requested: 2, playerCount: 8, want: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := normalizeGroupCount(tc.mode, tc.requested, tc.playerCount); got != tc.want {
				t.Fatalf("got=%d want=%d", got, tc.want)
			}
		})
	}
}
