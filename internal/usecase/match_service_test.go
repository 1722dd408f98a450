package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/infrastructure/repository/memory"
)

type seqIDs struct {
	n int
}

func (g *seqIDs) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("id-%03d", g.n), nil
}

type matchHarness struct {
	service   *MatchService
	live      *memory.LiveStateRepository
	archive   *memory.ArchiveRepository
	summaries *memory.SummaryRepository
}

func newMatchHarness(sink ResultSink) *matchHarness {
	live := memory.NewLiveStateRepository()
	archive := memory.NewArchiveRepository()
	summaries := memory.NewSummaryRepository()
	return &matchHarness{
		service:   NewMatchService(live, archive, summaries, sink, &seqIDs{}, nil),
		live:      live,
		archive:   archive,
		summaries: summaries,
	}
}

func testPlayers() []game.Player {
	return []game.Player{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob"},
	}
}

func mustVisit(t *testing.T, service *MatchService, matchID string, points int) VisitOutput {
	t.Helper()
	out, err := service.RecordVisit(context.Background(), matchID, points)
	if err != nil {
		t.Fatalf("record visit %d: %v", points, err)
	}
	return out
}

func TestMatchServiceLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newMatchHarness(nil)

	state, err := h.service.Start(ctx, StartMatchInput{
		Players:       testPlayers(),
		StartingScore: 501,
		DoubleOut:     true,
		Format:        &game.MatchFormat{Type: game.FormatFirstTo, LegsToWin: 1},
	})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	matchID := state.Snapshot.Match.ID
	if matchID == "" {
		t.Fatal("expected generated match id")
	}
	if state.Suggestion != nil {
		t.Fatalf("501 is not finishable, got suggestion %v", state.Suggestion)
	}

	mustVisit(t, h.service, matchID, 180)
	mustVisit(t, h.service, matchID, 60)
	mustVisit(t, h.service, matchID, 180)
	out := mustVisit(t, h.service, matchID, 60)

	// Alice sits on 141 now; the service should surface a finishing route.
	if out.State.Snapshot.ActivePlayerID != "alice" {
		t.Fatalf("unexpected active player: got=%s want=alice", out.State.Snapshot.ActivePlayerID)
	}
	if len(out.State.Suggestion) == 0 {
		t.Fatal("expected checkout suggestion for 141")
	}

	out = mustVisit(t, h.service, matchID, 141)
	if !out.Result.Pending {
		t.Fatal("double-out checkout must await confirmation")
	}

	out, err = h.service.ConfirmCheckout(ctx, matchID, true)
	if err != nil {
		t.Fatalf("confirm checkout: %v", err)
	}
	if !out.Result.MatchWon {
		t.Fatal("confirming the winning double should finish the match")
	}
	if got := out.State.Snapshot.Match.WinnerID; got != "alice" {
		t.Fatalf("unexpected winner: got=%s want=alice", got)
	}

	if _, found, _ := h.live.Load(ctx, matchID); found {
		t.Fatal("finished match must leave the live store")
	}
	if _, found, _ := h.archive.Load(ctx, matchID); !found {
		t.Fatal("finished match must be archived")
	}
	summaries, err := h.service.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].WinnerID != "alice" {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}

func TestMatchServiceUndoReopensFinishedMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newMatchHarness(nil)

	state, err := h.service.Start(ctx, StartMatchInput{
		Players:       testPlayers(),
		StartingScore: 301,
		Format:        &game.MatchFormat{Type: game.FormatFirstTo, LegsToWin: 1},
	})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	matchID := state.Snapshot.Match.ID

	mustVisit(t, h.service, matchID, 180)
	mustVisit(t, h.service, matchID, 45)
	out := mustVisit(t, h.service, matchID, 121)
	if !out.Result.MatchWon {
		t.Fatal("expected match to finish")
	}

	undo, err := h.service.Undo(ctx, matchID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !undo.Reopened {
		t.Fatal("undoing the winning visit must reopen the match")
	}
	if undo.Removed.Points != 121 {
		t.Fatalf("unexpected removed turn: %+v", undo.Removed)
	}
	if got := undo.State.Snapshot.Scores["alice"]; got != 121 {
		t.Fatalf("unexpected replayed score: got=%d want=121", got)
	}

	if _, found, _ := h.archive.Load(ctx, matchID); found {
		t.Fatal("reopened match must leave the archive")
	}
	if _, found, _ := h.live.Load(ctx, matchID); !found {
		t.Fatal("reopened match must be live again")
	}
	summaries, _ := h.service.ListSummaries(ctx)
	if len(summaries) != 0 {
		t.Fatalf("reopened match should have no summary, got %+v", summaries)
	}
}

func TestMatchServiceCancelCheckout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newMatchHarness(nil)

	state, err := h.service.Start(ctx, StartMatchInput{
		Players:       testPlayers(),
		StartingScore: 301,
		DoubleOut:     true,
	})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	matchID := state.Snapshot.Match.ID

	mustVisit(t, h.service, matchID, 180)
	mustVisit(t, h.service, matchID, 100)
	out := mustVisit(t, h.service, matchID, 121)
	if !out.Result.Pending {
		t.Fatal("expected pending checkout")
	}

	reset, err := h.service.CancelCheckout(ctx, matchID)
	if err != nil {
		t.Fatalf("cancel checkout: %v", err)
	}
	if reset.Snapshot.Pending.Awaiting {
		t.Fatal("cancel must clear the pending checkout")
	}
	if got := reset.Snapshot.Scores["alice"]; got != 121 {
		t.Fatalf("cancel must not consume the visit: got=%d want=121", got)
	}
	if got := reset.Snapshot.ActivePlayerID; got != "alice" {
		t.Fatalf("cancel must keep the thrower active: got=%s", got)
	}
}

func TestMatchServiceErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newMatchHarness(nil)

	if _, err := h.service.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := h.service.Get(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	state, err := h.service.Start(ctx, StartMatchInput{Players: testPlayers(), StartingScore: 501})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	matchID := state.Snapshot.Match.ID

	if _, err := h.service.RecordVisit(ctx, matchID, 181); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 181, got %v", err)
	}
	if _, err := h.service.ConfirmCheckout(ctx, matchID, true); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict without pending checkout, got %v", err)
	}
	if _, err := h.service.Undo(ctx, matchID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict with no turns, got %v", err)
	}

	if _, err := h.service.Start(ctx, StartMatchInput{
		Players: []game.Player{{ID: "solo", Name: "Solo"}},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for one player, got %v", err)
	}
}

func TestMatchServiceAbandon(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newMatchHarness(nil)

	state, err := h.service.Start(ctx, StartMatchInput{Players: testPlayers(), StartingScore: 501})
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	matchID := state.Snapshot.Match.ID

	if err := h.service.Abandon(ctx, matchID); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if _, err := h.service.Get(ctx, matchID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("abandoned match should be gone, got %v", err)
	}
}
