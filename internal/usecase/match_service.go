package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oneeighty-app/oneeighty/internal/domain/dart"
	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/platform/logging"
)

// ResultSink receives tournament-facing side effects of live matches. A nil
// sink is valid for casual matches played outside any tournament.
type ResultSink interface {
	MatchStarted(ctx context.Context, tournamentID, matchID string) error
	MatchFinished(ctx context.Context, tournamentID string, result tournament.MatchResult) error
	MatchReopened(ctx context.Context, tournamentID, matchID string) error
}

// MatchService orchestrates live matches: it owns engine persistence and the
// finished-match side effects (archive, summary, tournament result). The
// engine itself stays pure; every mutation here is load, apply, save.
type MatchService struct {
	live      game.LiveStateRepository
	archive   game.ArchiveRepository
	summaries game.SummaryRepository
	sink      ResultSink
	ids       game.IDGenerator
	now       func() time.Time
	logger    *logging.Logger
}

func NewMatchService(
	live game.LiveStateRepository,
	archive game.ArchiveRepository,
	summaries game.SummaryRepository,
	sink ResultSink,
	ids game.IDGenerator,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		live:      live,
		archive:   archive,
		summaries: summaries,
		sink:      sink,
		ids:       ids,
		now:       time.Now,
		logger:    logger,
	}
}

type StartMatchInput struct {
	MatchID       string
	TournamentID  string
	Players       []game.Player
	StartingScore int
	DoubleOut     bool
	Format        *game.MatchFormat
	StarterID     string
}

// MatchState is the live view handed to transports: the raw snapshot plus the
// recommended checkout for whoever throws next.
type MatchState struct {
	Snapshot   game.Snapshot
	Suggestion []string
}

// VisitOutput reports one visit plus the state it produced.
type VisitOutput struct {
	State  MatchState
	Result game.VisitResult
}

// UndoOutput reports the removed turn and the state after replay.
type UndoOutput struct {
	State    MatchState
	Removed  game.Turn
	Reopened bool
}

func (s *MatchService) Start(ctx context.Context, input StartMatchInput) (MatchState, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.Start")
	defer span.End()

	for i := range input.Players {
		input.Players[i].Name = strings.TrimSpace(input.Players[i].Name)
	}

	engine, err := game.NewEngine(game.EngineConfig{
		MatchID:          input.MatchID,
		TournamentID:     input.TournamentID,
		Players:          input.Players,
		StartingScore:    input.StartingScore,
		DoubleOut:        input.DoubleOut,
		Format:           input.Format,
		StartingPlayerID: input.StarterID,
	}, s.ids, s.now)
	if err != nil {
		return MatchState{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	snapshot := engine.Snapshot()
	if err := s.live.Save(ctx, snapshot); err != nil {
		return MatchState{}, fmt.Errorf("save live match: %w", err)
	}

	if s.sink != nil && input.TournamentID != "" && snapshot.Match.ID != "" {
		if err := s.sink.MatchStarted(ctx, input.TournamentID, snapshot.Match.ID); err != nil {
			s.logger.WarnContext(ctx, "mark tournament match in progress failed",
				"tournament_id", input.TournamentID, "match_id", snapshot.Match.ID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "match started",
		"match_id", snapshot.Match.ID, "starting_score", snapshot.Match.StartingScore,
		"double_out", snapshot.Match.DoubleOut)

	return stateFrom(snapshot), nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (MatchState, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.Get")
	defer span.End()

	snapshot, err := s.loadLive(ctx, matchID)
	if err != nil {
		return MatchState{}, err
	}
	return stateFrom(snapshot), nil
}

// RecordVisit scores one visit for the active player. When double-out is on
// and the visit would finish the leg, the result comes back Pending and the
// caller must follow with ConfirmCheckout or CancelCheckout.
func (s *MatchService) RecordVisit(ctx context.Context, matchID string, points int) (VisitOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.RecordVisit")
	defer span.End()

	engine, err := s.loadEngine(ctx, matchID)
	if err != nil {
		return VisitOutput{}, err
	}

	result, err := engine.RequestVisit(points)
	if err != nil {
		return VisitOutput{}, mapEngineError(err)
	}

	return s.persistVisit(ctx, engine, result)
}

// ConfirmCheckout resolves a parked checkout. doubleHit false turns the visit
// into a bust.
func (s *MatchService) ConfirmCheckout(ctx context.Context, matchID string, doubleHit bool) (VisitOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.ConfirmCheckout")
	defer span.End()

	engine, err := s.loadEngine(ctx, matchID)
	if err != nil {
		return VisitOutput{}, err
	}

	result, err := engine.ConfirmCheckout(doubleHit)
	if err != nil {
		return VisitOutput{}, mapEngineError(err)
	}

	return s.persistVisit(ctx, engine, result)
}

// CancelCheckout discards a parked checkout without recording a turn.
func (s *MatchService) CancelCheckout(ctx context.Context, matchID string) (MatchState, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.CancelCheckout")
	defer span.End()

	engine, err := s.loadEngine(ctx, matchID)
	if err != nil {
		return MatchState{}, err
	}

	engine.CancelPendingCheckout()

	snapshot := engine.Snapshot()
	if err := s.live.Save(ctx, snapshot); err != nil {
		return MatchState{}, fmt.Errorf("save live match: %w", err)
	}
	return stateFrom(snapshot), nil
}

// Undo removes the most recent turn and rebuilds all derived state by
// replaying what is left. Undoing the winning visit of a finished match pulls
// the match back out of the archive into live play.
func (s *MatchService) Undo(ctx context.Context, matchID string) (UndoOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.Undo")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return UndoOutput{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	snapshot, found, err := s.live.Load(ctx, matchID)
	if err != nil {
		return UndoOutput{}, fmt.Errorf("load live match: %w", err)
	}
	fromArchive := false
	if !found {
		snapshot, found, err = s.archive.Load(ctx, matchID)
		if err != nil {
			return UndoOutput{}, fmt.Errorf("load archived match: %w", err)
		}
		if !found {
			return UndoOutput{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
		}
		fromArchive = true
	}

	engine, err := game.Restore(snapshot, s.ids, s.now)
	if err != nil {
		return UndoOutput{}, fmt.Errorf("restore match %s: %w", matchID, err)
	}

	undone, err := engine.UndoLastVisit()
	if err != nil {
		return UndoOutput{}, mapEngineError(err)
	}

	next := engine.Snapshot()
	if err := s.live.Save(ctx, next); err != nil {
		return UndoOutput{}, fmt.Errorf("save live match: %w", err)
	}

	if fromArchive {
		if err := s.archive.Delete(ctx, matchID); err != nil {
			return UndoOutput{}, fmt.Errorf("unarchive match: %w", err)
		}
		if err := s.summaries.Remove(ctx, matchID); err != nil {
			return UndoOutput{}, fmt.Errorf("remove match summary: %w", err)
		}
		if s.sink != nil && next.Match.TournamentID != "" {
			if err := s.sink.MatchReopened(ctx, next.Match.TournamentID, matchID); err != nil {
				return UndoOutput{}, fmt.Errorf("reopen tournament match: %w", err)
			}
		}
		s.logger.InfoContext(ctx, "finished match reopened by undo", "match_id", matchID)
	}

	return UndoOutput{
		State:    stateFrom(next),
		Removed:  undone.Turn,
		Reopened: undone.ReopenedMatch,
	}, nil
}

// Abandon discards a live match without recording anything.
func (s *MatchService) Abandon(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "MatchService.Abandon")
	defer span.End()

	if _, err := s.loadLive(ctx, matchID); err != nil {
		return err
	}
	if err := s.live.Clear(ctx, matchID); err != nil {
		return fmt.Errorf("clear live match: %w", err)
	}

	s.logger.InfoContext(ctx, "match abandoned", "match_id", matchID)
	return nil
}

func (s *MatchService) ListSummaries(ctx context.Context) ([]game.MatchSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.ListSummaries")
	defer span.End()

	items, err := s.summaries.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list match summaries: %w", err)
	}
	return items, nil
}

// persistVisit saves the post-visit snapshot and, when the visit decided the
// match, runs the finish sequence: archive the history, store the summary,
// clear live state, and report the result to the tournament.
func (s *MatchService) persistVisit(ctx context.Context, engine *game.Engine, result game.VisitResult) (VisitOutput, error) {
	snapshot := engine.Snapshot()

	if !result.MatchWon {
		if err := s.live.Save(ctx, snapshot); err != nil {
			return VisitOutput{}, fmt.Errorf("save live match: %w", err)
		}
		return VisitOutput{State: stateFrom(snapshot), Result: result}, nil
	}

	if err := s.archive.Save(ctx, snapshot); err != nil {
		return VisitOutput{}, fmt.Errorf("archive match: %w", err)
	}

	summary := engine.Summary()
	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return VisitOutput{}, fmt.Errorf("save match summary: %w", err)
	}

	if err := s.live.Clear(ctx, snapshot.Match.ID); err != nil {
		return VisitOutput{}, fmt.Errorf("clear live match: %w", err)
	}

	if s.sink != nil && snapshot.Match.TournamentID != "" {
		result := resultFromSummary(snapshot.Match.TournamentID, summary)
		if err := s.sink.MatchFinished(ctx, snapshot.Match.TournamentID, result); err != nil {
			return VisitOutput{}, fmt.Errorf("record tournament result: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "match finished",
		"match_id", snapshot.Match.ID, "winner_id", snapshot.Match.WinnerID)

	return VisitOutput{State: stateFrom(snapshot), Result: result}, nil
}

func (s *MatchService) loadEngine(ctx context.Context, matchID string) (*game.Engine, error) {
	snapshot, err := s.loadLive(ctx, matchID)
	if err != nil {
		return nil, err
	}

	engine, err := game.Restore(snapshot, s.ids, s.now)
	if err != nil {
		return nil, fmt.Errorf("restore match %s: %w", matchID, err)
	}
	return engine, nil
}

func (s *MatchService) loadLive(ctx context.Context, matchID string) (game.Snapshot, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return game.Snapshot{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	snapshot, found, err := s.live.Load(ctx, matchID)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load live match: %w", err)
	}
	if !found {
		return game.Snapshot{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return snapshot, nil
}

func stateFrom(snapshot game.Snapshot) MatchState {
	state := MatchState{Snapshot: snapshot}
	if snapshot.Match.Status != game.MatchInProgress || snapshot.Pending.Awaiting {
		return state
	}
	if remaining, ok := snapshot.Scores[snapshot.ActivePlayerID]; ok {
		if darts, possible := dart.Suggest(remaining); possible {
			state.Suggestion = darts
		}
	}
	return state
}

// resultFromSummary flattens a finished-match summary into the per-player
// result record standings and leaderboards are built from.
func resultFromSummary(tournamentID string, summary game.MatchSummary) tournament.MatchResult {
	lines := make([]tournament.PlayerLine, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		lines = append(lines, tournament.PlayerLine{
			PlayerID:         line.PlayerID,
			Name:             line.Name,
			IsWinner:         line.IsWinner,
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
			LegsWon:          line.LegsWon,
			LegsLost:         line.LegsLost,
		})
	}
	return tournament.MatchResult{
		MatchID:      summary.MatchID,
		TournamentID: tournamentID,
		Lines:        lines,
	}
}

func mapEngineError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, game.ErrInvalidPoints) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}
