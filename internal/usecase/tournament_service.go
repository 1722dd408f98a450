package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/platform/cache"
	"github.com/oneeighty-app/oneeighty/internal/platform/logging"
)

// TournamentService owns the tournament lifecycle: creation, scheduling,
// result bookkeeping, phase transitions and the derived tables. It also acts
// as the ResultSink live matches report into.
// ResultPublisher pushes finished-match results to an external feed. Delivery
// failures never fail the originating operation.
type ResultPublisher interface {
	PublishResult(ctx context.Context, tournamentID string, result tournament.MatchResult) error
}

type TournamentService struct {
	repo      tournament.Repository
	archive   game.ArchiveRepository
	ids       game.IDGenerator
	store     *cache.Store
	now       func() time.Time
	logger    *logging.Logger
	publisher ResultPublisher
}

func NewTournamentService(
	repo tournament.Repository,
	archive game.ArchiveRepository,
	ids game.IDGenerator,
	store *cache.Store,
	logger *logging.Logger,
) *TournamentService {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore(30 * time.Second)
	}
	return &TournamentService{
		repo:    repo,
		archive: archive,
		ids:     ids,
		store:   store,
		now:     time.Now,
		logger:  logger,
	}
}

// SetResultPublisher enables best-effort publishing of recorded results to an
// external results feed.
func (s *TournamentService) SetResultPublisher(publisher ResultPublisher) {
	s.publisher = publisher
}

type CreateTournamentInput struct {
	Name     string
	Date     time.Time
	Mode     tournament.Mode
	Settings tournament.Settings
	Players  []tournament.Player
}

// TournamentDetail bundles a tournament with its scheduled content.
type TournamentDetail struct {
	Tournament tournament.Tournament
	Players    []tournament.Player
	Matches    []tournament.Match
	Results    []tournament.MatchResult
}

// GroupStandings is one group's table in an overview.
type GroupStandings struct {
	GroupIndex int
	Rows       []tournament.StandingsRow
}

// Overview is the aggregate view a tournament page renders from.
type Overview struct {
	Tournament  tournament.Tournament
	Players     []tournament.Player
	Matches     []tournament.Match
	Standings   []GroupStandings
	Leaderboard []tournament.LeaderboardRow
}

// Create validates the field, assigns groups, persists the tournament and
// schedules its first phase in one go. Scheduling is part of creation, not a
// separate step, so a created tournament is always playable.
func (s *TournamentService) Create(ctx context.Context, input CreateTournamentInput) (TournamentDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return TournamentDetail{}, fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}
	if len(input.Players) < 2 {
		return TournamentDetail{}, fmt.Errorf("%w: at least two players are required", ErrInvalidInput)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return TournamentDetail{}, fmt.Errorf("generate tournament id: %w", err)
	}

	date := input.Date
	if date.IsZero() {
		date = s.now().UTC()
	}

	settings := input.Settings
	if settings.StartingScore <= 0 {
		settings.StartingScore = 501
	}
	settings.GroupCount = normalizeGroupCount(input.Mode, settings.GroupCount, len(input.Players))

	item := tournament.Tournament{
		ID:       id,
		Name:     input.Name,
		Date:     date,
		Mode:     input.Mode,
		Settings: settings,
		Status:   tournament.StatusActive,
	}
	if err := item.Validate(); err != nil {
		return TournamentDetail{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	players := make([]tournament.Player, 0, len(input.Players))
	playerIDs := make([]string, 0, len(input.Players))
	for _, p := range input.Players {
		p.TournamentID = id
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return TournamentDetail{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
		}
		if p.PlayerID == "" {
			playerID, err := s.ids.NewID()
			if err != nil {
				return TournamentDetail{}, fmt.Errorf("generate player id: %w", err)
			}
			p.PlayerID = playerID
		}
		players = append(players, p)
		playerIDs = append(playerIDs, p.PlayerID)
	}

	groups := tournament.DistributeGroups(playerIDs, settings.GroupCount)
	groupOf := make(map[string]int, len(playerIDs))
	for groupIndex, members := range groups {
		for _, playerID := range members {
			groupOf[playerID] = groupIndex
		}
	}
	for i := range players {
		players[i].GroupIndex = groupOf[players[i].PlayerID]
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return TournamentDetail{}, fmt.Errorf("save tournament: %w", err)
	}
	if err := s.repo.ReplacePlayers(ctx, id, players); err != nil {
		return TournamentDetail{}, fmt.Errorf("save tournament players: %w", err)
	}

	matches, err := s.generateMatches(ctx, item, players)
	if err != nil {
		return TournamentDetail{}, err
	}

	s.logger.InfoContext(ctx, "tournament created",
		"tournament_id", id, "mode", string(input.Mode),
		"players", len(players), "groups", settings.GroupCount, "matches", len(matches))

	return TournamentDetail{Tournament: item, Players: players, Matches: matches}, nil
}

// normalizeGroupCount clamps the requested group count: knockout has no
// groups, and no group may have fewer than two players.
func normalizeGroupCount(mode tournament.Mode, requested, playerCount int) int {
	if mode == tournament.ModeKnockout {
		return 1
	}
	maxGroups := playerCount / 2
	if maxGroups < 1 {
		maxGroups = 1
	}
	if requested < 1 {
		return 1
	}
	if requested > maxGroups {
		return maxGroups
	}
	return requested
}

// generateMatches schedules the opening phase. It is idempotent: a
// tournament that already has matches is left untouched.
func (s *TournamentService) generateMatches(ctx context.Context, item tournament.Tournament, players []tournament.Player) ([]tournament.Match, error) {
	existing, err := s.repo.ListMatches(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	playerIDs := make([]string, 0, len(players))
	for _, p := range players {
		playerIDs = append(playerIDs, p.PlayerID)
	}

	switch item.Mode {
	case tournament.ModeRoundRobin, tournament.ModeCombined:
		matches := make([]tournament.Match, 0)
		order := 1
		groups := tournament.DistributeGroups(playerIDs, item.Settings.GroupCount)
		for groupIndex, members := range groups {
			if len(members) < 2 {
				continue
			}
			for _, round := range tournament.RoundRobinRounds(members) {
				for _, pair := range round.Pairs {
					matchID, err := s.ids.NewID()
					if err != nil {
						return nil, fmt.Errorf("generate match id: %w", err)
					}
					matches = append(matches, tournament.Match{
						ID:           matchID,
						TournamentID: item.ID,
						Phase:        tournament.PhaseRoundRobin,
						Round:        round.Round,
						Order:        order,
						GroupIndex:   groupIndex,
						PlayerAID:    pair[0],
						PlayerBID:    pair[1],
						Status:       tournament.MatchPending,
					})
					order++
				}
			}
		}
		if err := s.repo.ReplaceMatches(ctx, item.ID, tournament.PhaseRoundRobin, matches); err != nil {
			return nil, fmt.Errorf("save round robin matches: %w", err)
		}
		return matches, nil

	case tournament.ModeKnockout:
		return s.createKnockoutRound(ctx, item.ID, playerIDs, 1, 0)

	default:
		return nil, fmt.Errorf("%w: unknown tournament mode %q", ErrInvalidInput, item.Mode)
	}
}

// createKnockoutRound seeds one bracket round. Byes are stored as finished
// self-pairings so the next round can be derived from winners alone.
func (s *TournamentService) createKnockoutRound(ctx context.Context, tournamentID string, seeded []string, round, orderBase int) ([]tournament.Match, error) {
	now := s.now().UTC()
	matches := make([]tournament.Match, 0)
	order := orderBase + 1

	for _, pair := range tournament.KnockoutSeedPairs(seeded) {
		matchID, err := s.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate match id: %w", err)
		}
		item := tournament.Match{
			ID:           matchID,
			TournamentID: tournamentID,
			Phase:        tournament.PhaseKnockout,
			Round:        round,
			Order:        order,
			PlayerAID:    pair.A,
			PlayerBID:    pair.B,
			Status:       tournament.MatchPending,
		}
		if pair.B == "" {
			item.PlayerBID = pair.A
			item.Status = tournament.MatchFinished
			item.StartedAt = &now
			item.EndedAt = &now
			item.WinnerID = pair.A
		}
		matches = append(matches, item)
		order++
	}

	for _, m := range matches {
		if err := s.repo.SaveMatch(ctx, m); err != nil {
			return nil, fmt.Errorf("save knockout match: %w", err)
		}
	}
	return matches, nil
}

func (s *TournamentService) Get(ctx context.Context, tournamentID string) (TournamentDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.Get")
	defer span.End()

	return s.loadDetail(ctx, tournamentID)
}

func (s *TournamentService) List(ctx context.Context) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return items, nil
}

// Delete removes the tournament with its matches, results and archived match
// histories.
func (s *TournamentService) Delete(ctx context.Context, tournamentID string) error {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.Delete")
	defer span.End()

	if _, err := s.loadTournament(ctx, tournamentID); err != nil {
		return err
	}

	snapshots, err := s.archive.ListByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list archived matches: %w", err)
	}
	for _, snapshot := range snapshots {
		if err := s.archive.Delete(ctx, snapshot.Match.ID); err != nil {
			return fmt.Errorf("delete archived match %s: %w", snapshot.Match.ID, err)
		}
	}

	if err := s.repo.Delete(ctx, tournamentID); err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}

	s.invalidate(ctx, tournamentID)
	s.logger.InfoContext(ctx, "tournament deleted", "tournament_id", tournamentID)
	return nil
}

// MatchSetup resolves everything a scheduled match needs to go live: the
// paired players with their roster names, the tournament's play settings and
// the format for the match's phase and round. Byes and finished matches
// cannot be set up.
func (s *TournamentService) MatchSetup(ctx context.Context, tournamentID, matchID string) (StartMatchInput, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.MatchSetup")
	defer span.End()

	item, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return StartMatchInput{}, err
	}
	match, err := s.loadMatch(ctx, tournamentID, matchID)
	if err != nil {
		return StartMatchInput{}, err
	}
	if match.IsBye() {
		return StartMatchInput{}, fmt.Errorf("%w: match %s is a bye", ErrConflict, matchID)
	}
	if match.Status == tournament.MatchFinished {
		return StartMatchInput{}, fmt.Errorf("%w: match %s already finished", ErrConflict, matchID)
	}

	roster, err := s.repo.ListPlayers(ctx, tournamentID)
	if err != nil {
		return StartMatchInput{}, fmt.Errorf("list players: %w", err)
	}
	nameByID := make(map[string]string, len(roster))
	for _, p := range roster {
		nameByID[p.PlayerID] = p.Name
	}

	players := make([]game.Player, 0, 2)
	for _, playerID := range []string{match.PlayerAID, match.PlayerBID} {
		name, ok := nameByID[playerID]
		if !ok {
			return StartMatchInput{}, fmt.Errorf("%w: player %s is not in tournament %s", ErrNotFound, playerID, tournamentID)
		}
		players = append(players, game.Player{ID: playerID, Name: name})
	}

	return StartMatchInput{
		MatchID:       match.ID,
		TournamentID:  tournamentID,
		Players:       players,
		StartingScore: item.Settings.StartingScore,
		DoubleOut:     item.Settings.DoubleOut,
		Format:        tournament.ResolveMatchFormat(item, match),
	}, nil
}

// MatchStarted marks a scheduled match live. Part of the ResultSink contract.
func (s *TournamentService) MatchStarted(ctx context.Context, tournamentID, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.MatchStarted")
	defer span.End()

	match, err := s.loadMatch(ctx, tournamentID, matchID)
	if err != nil {
		return err
	}
	if match.Status == tournament.MatchFinished {
		return fmt.Errorf("%w: match %s already finished", ErrConflict, matchID)
	}

	now := s.now().UTC()
	match.Status = tournament.MatchInProgress
	match.StartedAt = &now
	if err := s.repo.SaveMatch(ctx, match); err != nil {
		return fmt.Errorf("save match: %w", err)
	}

	s.invalidate(ctx, tournamentID)
	return nil
}

// MatchFinished records a result. Part of the ResultSink contract.
func (s *TournamentService) MatchFinished(ctx context.Context, tournamentID string, result tournament.MatchResult) error {
	return s.RecordResult(ctx, tournamentID, result)
}

// RecordResult attaches the result to its match and runs the downstream
// bookkeeping: combined tournaments may spawn their knockout phase, brackets
// may advance a round, and the tournament may finish.
func (s *TournamentService) RecordResult(ctx context.Context, tournamentID string, result tournament.MatchResult) error {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.RecordResult")
	defer span.End()

	match, err := s.loadMatch(ctx, tournamentID, result.MatchID)
	if err != nil {
		return err
	}

	winnerID := result.Winner()
	if winnerID == "" {
		return fmt.Errorf("%w: result has no winner", ErrInvalidInput)
	}
	if winnerID != match.PlayerAID && winnerID != match.PlayerBID {
		return fmt.Errorf("%w: winner %s is not in match %s", ErrInvalidInput, winnerID, match.ID)
	}

	now := s.now().UTC()
	match.Status = tournament.MatchFinished
	match.EndedAt = &now
	match.WinnerID = winnerID
	if err := s.repo.SaveMatch(ctx, match); err != nil {
		return fmt.Errorf("save match: %w", err)
	}

	result.TournamentID = tournamentID
	if err := s.repo.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("save match result: %w", err)
	}

	if err := s.ensureKnockoutPhase(ctx, tournamentID); err != nil {
		return err
	}
	if err := s.advanceKnockoutIfReady(ctx, tournamentID); err != nil {
		return err
	}
	if err := s.updateTournamentStatus(ctx, tournamentID); err != nil {
		return err
	}

	s.invalidate(ctx, tournamentID)
	s.logger.InfoContext(ctx, "match result recorded",
		"tournament_id", tournamentID, "match_id", match.ID, "winner_id", winnerID)

	if s.publisher != nil {
		if err := s.publisher.PublishResult(ctx, tournamentID, result); err != nil {
			s.logger.WarnContext(ctx, "results feed publish failed",
				"tournament_id", tournamentID, "match_id", match.ID, "error", err)
		}
	}
	return nil
}

// MatchReopened reverts a recorded result. Part of the ResultSink contract.
func (s *TournamentService) MatchReopened(ctx context.Context, tournamentID, matchID string) error {
	return s.RevertResult(ctx, tournamentID, matchID)
}

// RevertResult clears a recorded result and puts the match back in play. A
// match whose winner already advanced into a scheduled knockout round can no
// longer be reverted.
func (s *TournamentService) RevertResult(ctx context.Context, tournamentID, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.RevertResult")
	defer span.End()

	match, err := s.loadMatch(ctx, tournamentID, matchID)
	if err != nil {
		return err
	}
	if match.Status != tournament.MatchFinished {
		return fmt.Errorf("%w: match %s has no result to revert", ErrConflict, matchID)
	}
	if match.IsBye() {
		return fmt.Errorf("%w: match %s is a bye", ErrConflict, matchID)
	}

	if match.Phase == tournament.PhaseKnockout && match.WinnerID != "" {
		matches, err := s.repo.ListMatches(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list tournament matches: %w", err)
		}
		for _, other := range matches {
			if other.Phase != tournament.PhaseKnockout || other.Round <= match.Round {
				continue
			}
			if other.PlayerAID == match.WinnerID || other.PlayerBID == match.WinnerID {
				return fmt.Errorf("%w: winner of match %s already advanced", ErrConflict, matchID)
			}
		}
	}

	match.Status = tournament.MatchInProgress
	match.WinnerID = ""
	match.EndedAt = nil
	if err := s.repo.SaveMatch(ctx, match); err != nil {
		return fmt.Errorf("save match: %w", err)
	}
	if err := s.repo.DeleteResult(ctx, matchID); err != nil {
		return fmt.Errorf("delete match result: %w", err)
	}
	if err := s.updateTournamentStatus(ctx, tournamentID); err != nil {
		return err
	}

	s.invalidate(ctx, tournamentID)
	s.logger.InfoContext(ctx, "match result reverted",
		"tournament_id", tournamentID, "match_id", matchID)
	return nil
}

// ensureKnockoutPhase moves a combined tournament into its bracket once every
// group match is finished. With multiple groups the top two of each group
// qualify, pooled and re-seeded on the usual keys; a single group seeds its
// full table order.
func (s *TournamentService) ensureKnockoutPhase(ctx context.Context, tournamentID string) error {
	item, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if item.Mode != tournament.ModeCombined {
		return nil
	}

	matches, err := s.repo.ListMatches(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list tournament matches: %w", err)
	}
	roundRobinDone := false
	lastOrder := 0
	for _, m := range matches {
		if m.Order > lastOrder {
			lastOrder = m.Order
		}
		switch m.Phase {
		case tournament.PhaseKnockout:
			return nil
		case tournament.PhaseRoundRobin:
			if m.Status != tournament.MatchFinished {
				return nil
			}
			roundRobinDone = true
		}
	}
	if !roundRobinDone {
		return nil
	}

	players, err := s.repo.ListPlayers(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list tournament players: %w", err)
	}
	results, err := s.repo.ListResults(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list tournament results: %w", err)
	}

	groupCount := item.Settings.GroupCount
	var seeded []string
	if groupCount <= 1 {
		playerIDs := make([]string, 0, len(players))
		for _, p := range players {
			playerIDs = append(playerIDs, p.PlayerID)
		}
		rows := tournament.CalculateStandings(tournament.StandingsInput{
			PlayerIDs: playerIDs,
			Matches:   matches,
			Results:   results,
			Phase:     tournament.PhaseRoundRobin,
		})
		for _, row := range rows {
			seeded = append(seeded, row.PlayerID)
		}
	} else {
		var qualifiers []tournament.StandingsRow
		for groupIndex := 0; groupIndex < groupCount; groupIndex++ {
			var memberIDs []string
			for _, p := range players {
				if p.GroupIndex == groupIndex {
					memberIDs = append(memberIDs, p.PlayerID)
				}
			}
			rows := tournament.CalculateStandings(tournament.StandingsInput{
				PlayerIDs:  memberIDs,
				Matches:    matches,
				Results:    results,
				Phase:      tournament.PhaseRoundRobin,
				GroupIndex: &groupIndex,
			})
			if len(rows) > 2 {
				rows = rows[:2]
			}
			qualifiers = append(qualifiers, rows...)
		}
		sort.SliceStable(qualifiers, func(i, j int) bool {
			if qualifiers[i].Wins != qualifiers[j].Wins {
				return qualifiers[i].Wins > qualifiers[j].Wins
			}
			if qualifiers[i].LegsDiff != qualifiers[j].LegsDiff {
				return qualifiers[i].LegsDiff > qualifiers[j].LegsDiff
			}
			return qualifiers[i].Average > qualifiers[j].Average
		})
		for _, row := range qualifiers {
			seeded = append(seeded, row.PlayerID)
		}
	}

	if len(seeded) < 2 {
		return nil
	}
	if _, err := s.createKnockoutRound(ctx, tournamentID, seeded, 1, lastOrder); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "knockout phase generated",
		"tournament_id", tournamentID, "seeds", len(seeded))
	return nil
}

// advanceKnockoutIfReady schedules the next bracket round when the current
// one is fully decided and more than one winner remains.
func (s *TournamentService) advanceKnockoutIfReady(ctx context.Context, tournamentID string) error {
	matches, err := s.repo.ListMatches(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list tournament matches: %w", err)
	}

	var knockout []tournament.Match
	lastOrder := 0
	for _, m := range matches {
		if m.Order > lastOrder {
			lastOrder = m.Order
		}
		if m.Phase == tournament.PhaseKnockout {
			knockout = append(knockout, m)
		}
	}
	if len(knockout) == 0 {
		return nil
	}

	sort.SliceStable(knockout, func(i, j int) bool {
		if knockout[i].Round != knockout[j].Round {
			return knockout[i].Round < knockout[j].Round
		}
		return knockout[i].Order < knockout[j].Order
	})

	currentRound := knockout[len(knockout)-1].Round
	var winners []string
	for _, m := range knockout {
		if m.Round != currentRound {
			continue
		}
		if m.Status != tournament.MatchFinished {
			return nil
		}
		if m.WinnerID != "" {
			winners = append(winners, m.WinnerID)
		}
	}
	if len(winners) <= 1 {
		return nil
	}

	if _, err := s.createKnockoutRound(ctx, tournamentID, winners, currentRound+1, lastOrder); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "knockout round advanced",
		"tournament_id", tournamentID, "round", currentRound+1, "players", len(winners))
	return nil
}

// updateTournamentStatus flips between active and finished based on whether
// any match is still open. Reverting a result reactivates a finished
// tournament through the same rule.
func (s *TournamentService) updateTournamentStatus(ctx context.Context, tournamentID string) error {
	item, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return err
	}

	matches, err := s.repo.ListMatches(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list tournament matches: %w", err)
	}

	status := tournament.StatusFinished
	for _, m := range matches {
		if m.Status != tournament.MatchFinished {
			status = tournament.StatusActive
			break
		}
	}
	if status == item.Status {
		return nil
	}

	item.Status = status
	if err := s.repo.Save(ctx, item); err != nil {
		return fmt.Errorf("save tournament: %w", err)
	}
	return nil
}

// Standings computes the ranked table for one phase, optionally scoped to a
// group.
func (s *TournamentService) Standings(ctx context.Context, tournamentID string, phase tournament.Phase, groupIndex *int) ([]tournament.StandingsRow, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.Standings")
	defer span.End()

	key := standingsCacheKey(tournamentID, phase, groupIndex)
	value, err := s.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		detail, err := s.loadDetail(ctx, tournamentID)
		if err != nil {
			return nil, err
		}

		playerIDs := make([]string, 0, len(detail.Players))
		for _, p := range detail.Players {
			if groupIndex != nil && p.GroupIndex != *groupIndex {
				continue
			}
			playerIDs = append(playerIDs, p.PlayerID)
		}

		return tournament.CalculateStandings(tournament.StandingsInput{
			PlayerIDs:  playerIDs,
			Matches:    detail.Matches,
			Results:    detail.Results,
			Phase:      phase,
			GroupIndex: groupIndex,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	rows, ok := value.([]tournament.StandingsRow)
	if !ok {
		return nil, fmt.Errorf("unexpected standings cache entry for %s", key)
	}
	return rows, nil
}

// Leaderboard aggregates every recorded result of the tournament into
// per-player career lines, ranked by average.
func (s *TournamentService) Leaderboard(ctx context.Context, tournamentID string) ([]tournament.LeaderboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.Leaderboard")
	defer span.End()

	key := "tournament:" + tournamentID + ":leaderboard"
	value, err := s.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		if _, err := s.loadTournament(ctx, tournamentID); err != nil {
			return nil, err
		}
		results, err := s.repo.ListResults(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("list tournament results: %w", err)
		}

		rows := tournament.CalculateLeaderboards(results)
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Average > rows[j].Average
		})
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	rows, ok := value.([]tournament.LeaderboardRow)
	if !ok {
		return nil, fmt.Errorf("unexpected leaderboard cache entry for %s", key)
	}
	return rows, nil
}

// GetOverview assembles the full tournament page: detail, per-group tables
// and the leaderboard, fetched concurrently.
func (s *TournamentService) GetOverview(ctx context.Context, tournamentID string) (Overview, error) {
	ctx, span := startUsecaseSpan(ctx, "TournamentService.GetOverview")
	defer span.End()

	detail, err := s.loadDetail(ctx, tournamentID)
	if err != nil {
		return Overview{}, err
	}

	overview := Overview{
		Tournament: detail.Tournament,
		Players:    detail.Players,
		Matches:    detail.Matches,
	}

	groupCount := detail.Tournament.Settings.GroupCount
	if groupCount < 1 {
		groupCount = 1
	}
	overview.Standings = make([]GroupStandings, groupCount)

	workers := pool.New().WithContext(ctx).WithCancelOnError()
	for groupIndex := 0; groupIndex < groupCount; groupIndex++ {
		workers.Go(func(ctx context.Context) error {
			scope := &groupIndex
			if groupCount == 1 {
				scope = nil
			}
			rows, err := s.Standings(ctx, tournamentID, tournament.PhaseRoundRobin, scope)
			if err != nil {
				return err
			}
			overview.Standings[groupIndex] = GroupStandings{GroupIndex: groupIndex, Rows: rows}
			return nil
		})
	}
	workers.Go(func(ctx context.Context) error {
		rows, err := s.Leaderboard(ctx, tournamentID)
		if err != nil {
			return err
		}
		overview.Leaderboard = rows
		return nil
	})
	if err := workers.Wait(); err != nil {
		return Overview{}, err
	}

	return overview, nil
}

func (s *TournamentService) loadDetail(ctx context.Context, tournamentID string) (TournamentDetail, error) {
	item, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return TournamentDetail{}, err
	}

	players, err := s.repo.ListPlayers(ctx, tournamentID)
	if err != nil {
		return TournamentDetail{}, fmt.Errorf("list tournament players: %w", err)
	}
	matches, err := s.repo.ListMatches(ctx, tournamentID)
	if err != nil {
		return TournamentDetail{}, fmt.Errorf("list tournament matches: %w", err)
	}
	results, err := s.repo.ListResults(ctx, tournamentID)
	if err != nil {
		return TournamentDetail{}, fmt.Errorf("list tournament results: %w", err)
	}

	return TournamentDetail{Tournament: item, Players: players, Matches: matches, Results: results}, nil
}

func (s *TournamentService) loadTournament(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	item, found, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}
	return item, nil
}

func (s *TournamentService) loadMatch(ctx context.Context, tournamentID, matchID string) (tournament.Match, error) {
	if _, err := s.loadTournament(ctx, tournamentID); err != nil {
		return tournament.Match{}, err
	}

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return tournament.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	match, found, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return tournament.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !found || match.TournamentID != tournamentID {
		return tournament.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return match, nil
}

func (s *TournamentService) invalidate(ctx context.Context, tournamentID string) {
	if s.store == nil {
		return
	}
	s.store.DeletePrefix(ctx, "tournament:"+tournamentID+":")
}

func standingsCacheKey(tournamentID string, phase tournament.Phase, groupIndex *int) string {
	key := "tournament:" + tournamentID + ":standings:" + string(phase)
	if groupIndex != nil {
		key = fmt.Sprintf("%s:group:%d", key, *groupIndex)
	}
	return key
}
