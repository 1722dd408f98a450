package usecase

import (
	"context"
	"testing"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/infrastructure/repository/memory"
)

func TestRecomputeRebuildsResultsFromArchive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewTournamentRepository()
	archive := memory.NewArchiveRepository()
	live := memory.NewLiveStateRepository()
	summaries := memory.NewSummaryRepository()

	tournaments := NewTournamentService(repo, archive, &seqIDs{}, nil, nil)
	matches := NewMatchService(live, archive, summaries, tournaments, &seqIDs{}, nil)
	recompute := NewRecomputeService(tournaments, repo, archive, summaries, &seqIDs{}, nil)

	detail, err := tournaments.Create(ctx, CreateTournamentInput{
		Name: "Duel",
		Mode: tournament.ModeRoundRobin,
		Players: []tournament.Player{
			{PlayerID: "alice", Name: "Alice"},
			{PlayerID: "bob", Name: "Bob"},
		},
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	tournamentID := detail.Tournament.ID
	if len(detail.Matches) != 1 {
		t.Fatalf("expected a single pairing, got %d", len(detail.Matches))
	}
	scheduled := detail.Matches[0]

	// Play the scheduled pairing to completion through the live engine.
	state, err := matches.Start(ctx, StartMatchInput{
		MatchID:       scheduled.ID,
		TournamentID:  tournamentID,
		Players:       testPlayers(),
		StartingScore: 301,
		Format:        &game.MatchFormat{Type: game.FormatFirstTo, LegsToWin: 1},
	})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	matchID := state.Snapshot.Match.ID
	mustVisit(t, matches, matchID, 180)
	mustVisit(t, matches, matchID, 60)
	out := mustVisit(t, matches, matchID, 121)
	if !out.Result.MatchWon {
		t.Fatal("expected match to finish")
	}

	before, err := repo.ListResults(ctx, tournamentID)
	if err != nil || len(before) != 1 {
		t.Fatalf("expected recorded result, got %v (%v)", before, err)
	}

	// Wipe the derived records, then rebuild them from the archive.
	if err := repo.DeleteResult(ctx, matchID); err != nil {
		t.Fatalf("delete result: %v", err)
	}
	if err := summaries.Remove(ctx, matchID); err != nil {
		t.Fatalf("remove summary: %v", err)
	}

	report, err := recompute.Recompute(ctx, RecomputeInput{TournamentID: tournamentID, MaxWorkers: 1})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if report.MatchCount != 1 || report.SuccessCount != 1 || report.FailedCount != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	rebuilt, err := repo.ListResults(ctx, tournamentID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(rebuilt) != 1 {
		t.Fatalf("expected rebuilt result, got %d", len(rebuilt))
	}
	if got := rebuilt[0].Winner(); got != "alice" {
		t.Fatalf("unexpected rebuilt winner: got=%s want=alice", got)
	}
	var winnerLine tournament.PlayerLine
	for _, line := range rebuilt[0].Lines {
		if line.PlayerID == "alice" {
			winnerLine = line
		}
	}
	if winnerLine.TotalPoints != 301 || winnerLine.LegsWon != 1 {
		t.Fatalf("unexpected rebuilt line: %+v", winnerLine)
	}

	restored, err := summaries.List(ctx)
	if err != nil || len(restored) != 1 {
		t.Fatalf("expected rebuilt summary, got %v (%v)", restored, err)
	}
}

func TestRecomputeDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewTournamentRepository()
	archive := memory.NewArchiveRepository()
	live := memory.NewLiveStateRepository()
	summaries := memory.NewSummaryRepository()

	tournaments := NewTournamentService(repo, archive, &seqIDs{}, nil, nil)
	matches := NewMatchService(live, archive, summaries, tournaments, &seqIDs{}, nil)
	recompute := NewRecomputeService(tournaments, repo, archive, summaries, &seqIDs{}, nil)

	detail, err := tournaments.Create(ctx, CreateTournamentInput{
		Name: "Duel",
		Mode: tournament.ModeRoundRobin,
		Players: []tournament.Player{
			{PlayerID: "alice", Name: "Alice"},
			{PlayerID: "bob", Name: "Bob"},
		},
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	state, err := matches.Start(ctx, StartMatchInput{
		MatchID:       detail.Matches[0].ID,
		TournamentID:  detail.Tournament.ID,
		Players:       testPlayers(),
		StartingScore: 301,
		Format:        &game.MatchFormat{Type: game.FormatFirstTo, LegsToWin: 1},
	})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	mustVisit(t, matches, state.Snapshot.Match.ID, 180)
	mustVisit(t, matches, state.Snapshot.Match.ID, 60)
	mustVisit(t, matches, state.Snapshot.Match.ID, 121)

	if err := repo.DeleteResult(ctx, state.Snapshot.Match.ID); err != nil {
		t.Fatalf("delete result: %v", err)
	}

	report, err := recompute.Recompute(ctx, RecomputeInput{
		TournamentID: detail.Tournament.ID,
		MaxWorkers:   1,
		DryRun:       true,
	})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if report.SuccessCount != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	results, err := repo.ListResults(ctx, detail.Tournament.ID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("dry run must not write results, got %d", len(results))
	}
}
