package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/platform/logging"
)

const (
	recomputeStatusSuccess = "success"
	recomputeStatusFailed  = "failed"
	recomputeStatusSkipped = "skipped"

	defaultRecomputeWorkers = 4
	maxRecomputeWorkers     = 16
)

// RecomputeService rebuilds every derived tournament record from the
// archived turn histories. Because results, summaries and standings are all
// functions of the turn log, a recompute is a full repair tool: whatever
// drifted gets overwritten with what the history says.
type RecomputeService struct {
	tournaments    *TournamentService
	repo           tournament.Repository
	archive        game.ArchiveRepository
	summaries      game.SummaryRepository
	ids            game.IDGenerator
	now            func() time.Time
	logger         *logging.Logger
	defaultWorkers int
}

func NewRecomputeService(
	tournaments *TournamentService,
	repo tournament.Repository,
	archive game.ArchiveRepository,
	summaries game.SummaryRepository,
	ids game.IDGenerator,
	logger *logging.Logger,
) *RecomputeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecomputeService{
		tournaments: tournaments,
		repo:        repo,
		archive:     archive,
		summaries:   summaries,
		ids:         ids,
		now:         time.Now,
		logger:      logger,
	}
}

// SetDefaultMaxWorkers overrides the built-in worker count used when a
// recompute request does not specify one. Values below one are ignored.
func (s *RecomputeService) SetDefaultMaxWorkers(workers int) {
	if workers >= 1 {
		s.defaultWorkers = workers
	}
}

type RecomputeInput struct {
	TournamentID string
	MaxWorkers   int
	// DryRun replays the archives and reports what would change without
	// writing anything.
	DryRun bool
}

type RecomputeResult struct {
	TournamentID string                `json:"tournament_id"`
	MatchCount   int                   `json:"match_count"`
	SuccessCount int                   `json:"success_count"`
	FailedCount  int                   `json:"failed_count"`
	SkippedCount int                   `json:"skipped_count"`
	WorkerCount  int                   `json:"worker_count"`
	Matches      []RecomputeTaskResult `json:"matches"`
}

type RecomputeTaskResult struct {
	MatchID    string `json:"match_id"`
	Status     string `json:"status"`
	WinnerID   string `json:"winner_id,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// Recompute replays every archived match of the tournament through the
// engine and rewrites the stored results and summaries from the replay.
func (s *RecomputeService) Recompute(ctx context.Context, input RecomputeInput) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "RecomputeService.Recompute")
	defer span.End()

	if _, err := s.tournaments.loadTournament(ctx, input.TournamentID); err != nil {
		return RecomputeResult{}, err
	}

	snapshots, err := s.archive.ListByTournament(ctx, input.TournamentID)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("list archived matches: %w", err)
	}

	workerCount := input.MaxWorkers
	if workerCount < 1 {
		workerCount = s.defaultWorkers
	}
	if workerCount < 1 {
		workerCount = defaultRecomputeWorkers
	}
	if workerCount > maxRecomputeWorkers {
		workerCount = maxRecomputeWorkers
	}
	if workerCount > len(snapshots) && len(snapshots) > 0 {
		workerCount = len(snapshots)
	}

	result := RecomputeResult{
		TournamentID: input.TournamentID,
		MatchCount:   len(snapshots),
		WorkerCount:  workerCount,
	}
	if len(snapshots) == 0 {
		return result, nil
	}

	rows := make(chan RecomputeTaskResult, len(snapshots))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var wg sync.WaitGroup
	for _, snapshot := range snapshots {
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			start := time.Now()
			row := s.recomputeMatch(ctx, input, snapshot)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case recomputeStatusSuccess:
				successCount.Add(1)
			case recomputeStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}
			rows <- row
		}); err != nil {
			wg.Done()
			return RecomputeResult{}, fmt.Errorf("submit match to worker pool: %w", err)
		}
	}

	wg.Wait()
	close(rows)

	for row := range rows {
		result.Matches = append(result.Matches, row)
	}
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].MatchID < result.Matches[j].MatchID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())

	if !input.DryRun {
		s.tournaments.invalidate(ctx, input.TournamentID)
		if err := s.tournaments.updateTournamentStatus(ctx, input.TournamentID); err != nil {
			return RecomputeResult{}, err
		}
	}

	s.logger.InfoContext(ctx, "tournament recompute finished",
		"tournament_id", input.TournamentID, "matches", result.MatchCount,
		"success", result.SuccessCount, "failed", result.FailedCount,
		"skipped", result.SkippedCount, "dry_run", input.DryRun)

	return result, nil
}

func (s *RecomputeService) recomputeMatch(ctx context.Context, input RecomputeInput, snapshot game.Snapshot) RecomputeTaskResult {
	row := RecomputeTaskResult{MatchID: snapshot.Match.ID}

	engine, err := game.Restore(snapshot, s.ids, s.now)
	if err != nil {
		row.Status = recomputeStatusFailed
		row.Message = fmt.Sprintf("restore archive: %v", err)
		return row
	}

	summary := engine.Summary()
	if summary.WinnerID == "" {
		row.Status = recomputeStatusSkipped
		row.Message = "archived match has no winner"
		return row
	}
	row.WinnerID = summary.WinnerID

	if input.DryRun {
		row.Status = recomputeStatusSuccess
		return row
	}

	if err := s.summaries.Upsert(ctx, summary); err != nil {
		row.Status = recomputeStatusFailed
		row.Message = fmt.Sprintf("save summary: %v", err)
		return row
	}

	rebuilt := resultFromSummary(input.TournamentID, summary)
	if err := s.repo.SaveResult(ctx, rebuilt); err != nil {
		row.Status = recomputeStatusFailed
		row.Message = fmt.Sprintf("save result: %v", err)
		return row
	}

	match, found, err := s.repo.GetMatch(ctx, snapshot.Match.ID)
	if err != nil {
		row.Status = recomputeStatusFailed
		row.Message = fmt.Sprintf("get match: %v", err)
		return row
	}
	if found && match.WinnerID != summary.WinnerID {
		match.WinnerID = summary.WinnerID
		match.Status = tournament.MatchFinished
		if err := s.repo.SaveMatch(ctx, match); err != nil {
			row.Status = recomputeStatusFailed
			row.Message = fmt.Sprintf("save match: %v", err)
			return row
		}
	}

	row.Status = recomputeStatusSuccess
	return row
}
