package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	qb "github.com/oneeighty-app/oneeighty/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

// tournamentFormats is the JSONB shape holding the optional format layers.
type tournamentFormats struct {
	Format        *game.MatchFormat        `json:"format,omitempty"`
	FormatByPhase *tournament.PhaseFormats `json:"formatByPhase,omitempty"`
}

func (r *TournamentRepository) Save(ctx context.Context, t tournament.Tournament) error {
	formats, err := sonic.MarshalString(tournamentFormats{
		Format:        t.Settings.Format,
		FormatByPhase: t.Settings.FormatByPhase,
	})
	if err != nil {
		return fmt.Errorf("encode tournament formats: %w", err)
	}

	model := tournamentInsertModel{
		ID:            t.ID,
		Name:          t.Name,
		Date:          t.Date,
		Mode:          string(t.Mode),
		Status:        string(t.Status),
		StartingScore: t.Settings.StartingScore,
		DoubleOut:     t.Settings.DoubleOut,
		GroupCount:    t.Settings.GroupCount,
		Formats:       formats,
	}
	query, args, err := qb.InsertModel("tournaments", model, `ON CONFLICT (id)
DO UPDATE SET
    name = EXCLUDED.name,
    date = EXCLUDED.date,
    mode = EXCLUDED.mode,
    status = EXCLUDED.status,
    starting_score = EXCLUDED.starting_score,
    double_out = EXCLUDED.double_out,
    group_count = EXCLUDED.group_count,
    formats = EXCLUDED.formats,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert tournament query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tournament %s: %w", t.ID, err)
	}
	return nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("*").From("tournaments").
		Where(qb.Eq("id", tournamentID)).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament %s: %w", tournamentID, err)
	}

	item, err := tournamentFromRow(row)
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return item, true, nil
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	query, args, err := qb.Select("*").From("tournaments").
		OrderBy("date DESC", "created_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournaments query: %w", err)
	}

	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		item, err := tournamentFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Delete removes the tournament row; players, matches and results go with it
// through ON DELETE CASCADE.
func (r *TournamentRepository) Delete(ctx context.Context, tournamentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, tournamentID); err != nil {
		return fmt.Errorf("delete tournament %s: %w", tournamentID, err)
	}
	return nil
}

func (r *TournamentRepository) ReplacePlayers(ctx context.Context, tournamentID string, players []tournament.Player) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace tournament players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tournament_players WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("clear tournament players: %w", err)
	}

	for _, p := range players {
		model := tournamentPlayerTableModel{
			TournamentID: tournamentID,
			PlayerID:     p.PlayerID,
			Name:         p.Name,
			GroupIndex:   p.GroupIndex,
		}
		query, args, err := qb.InsertModel("tournament_players", model, "")
		if err != nil {
			return fmt.Errorf("build insert tournament player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert tournament player %s: %w", p.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tournament players tx: %w", err)
	}
	return nil
}

func (r *TournamentRepository) ListPlayers(ctx context.Context, tournamentID string) ([]tournament.Player, error) {
	query, args, err := qb.Select("*").From("tournament_players").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("group_index", "name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournament players query: %w", err)
	}

	var rows []tournamentPlayerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tournament players: %w", err)
	}

	out := make([]tournament.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournament.Player{
			TournamentID: row.TournamentID,
			PlayerID:     row.PlayerID,
			Name:         row.Name,
			GroupIndex:   row.GroupIndex,
		})
	}
	return out, nil
}

func (r *TournamentRepository) SaveMatch(ctx context.Context, m tournament.Match) error {
	query, args, err := qb.InsertModel("tournament_matches", matchInsertFrom(m), `ON CONFLICT (id)
DO UPDATE SET
    phase = EXCLUDED.phase,
    round = EXCLUDED.round,
    sort_order = EXCLUDED.sort_order,
    group_index = EXCLUDED.group_index,
    player_a_id = EXCLUDED.player_a_id,
    player_b_id = EXCLUDED.player_b_id,
    status = EXCLUDED.status,
    started_at = EXCLUDED.started_at,
    ended_at = EXCLUDED.ended_at,
    winner_id = EXCLUDED.winner_id`)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match %s: %w", m.ID, err)
	}
	return nil
}

func (r *TournamentRepository) ReplaceMatches(ctx context.Context, tournamentID string, phase tournament.Phase, matches []tournament.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tournament_matches WHERE tournament_id = $1 AND phase = $2`,
		tournamentID, string(phase)); err != nil {
		return fmt.Errorf("clear %s matches: %w", phase, err)
	}

	for _, m := range matches {
		query, args, err := qb.InsertModel("tournament_matches", matchInsertFrom(m), "")
		if err != nil {
			return fmt.Errorf("build insert match query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert match %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace matches tx: %w", err)
	}
	return nil
}

func (r *TournamentRepository) GetMatch(ctx context.Context, matchID string) (tournament.Match, bool, error) {
	query, args, err := qb.Select("*").From("tournament_matches").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return tournament.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row tournamentMatchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Match{}, false, nil
		}
		return tournament.Match{}, false, fmt.Errorf("get match %s: %w", matchID, err)
	}
	return matchFromRow(row), true, nil
}

func (r *TournamentRepository) ListMatches(ctx context.Context, tournamentID string) ([]tournament.Match, error) {
	query, args, err := qb.Select("*").From("tournament_matches").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("sort_order", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []tournamentMatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]tournament.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *TournamentRepository) SaveResult(ctx context.Context, result tournament.MatchResult) error {
	lines, err := sonic.MarshalString(result.Lines)
	if err != nil {
		return fmt.Errorf("encode result lines: %w", err)
	}

	model := matchResultTableModel{
		MatchID:      result.MatchID,
		TournamentID: result.TournamentID,
		Lines:        lines,
	}
	query, args, err := qb.InsertModel("match_results", model, `ON CONFLICT (match_id)
DO UPDATE SET
    tournament_id = EXCLUDED.tournament_id,
    lines = EXCLUDED.lines`)
	if err != nil {
		return fmt.Errorf("build upsert result query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert result for match %s: %w", result.MatchID, err)
	}
	return nil
}

func (r *TournamentRepository) DeleteResult(ctx context.Context, matchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM match_results WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete result for match %s: %w", matchID, err)
	}
	return nil
}

func (r *TournamentRepository) ListResults(ctx context.Context, tournamentID string) ([]tournament.MatchResult, error) {
	query, args, err := qb.Select("*").From("match_results").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list results query: %w", err)
	}

	var rows []matchResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	out := make([]tournament.MatchResult, 0, len(rows))
	for _, row := range rows {
		var lines []tournament.PlayerLine
		if err := sonic.UnmarshalString(row.Lines, &lines); err != nil {
			return nil, fmt.Errorf("decode result lines for match %s: %w", row.MatchID, err)
		}
		out = append(out, tournament.MatchResult{
			MatchID:      row.MatchID,
			TournamentID: row.TournamentID,
			Lines:        lines,
		})
	}
	return out, nil
}

func tournamentFromRow(row tournamentTableModel) (tournament.Tournament, error) {
	var formats tournamentFormats
	if row.Formats != "" {
		if err := sonic.UnmarshalString(row.Formats, &formats); err != nil {
			return tournament.Tournament{}, fmt.Errorf("decode tournament formats for %s: %w", row.ID, err)
		}
	}

	return tournament.Tournament{
		ID:   row.ID,
		Name: row.Name,
		Date: row.Date,
		Mode: tournament.Mode(row.Mode),
		Settings: tournament.Settings{
			StartingScore: row.StartingScore,
			DoubleOut:     row.DoubleOut,
			Format:        formats.Format,
			FormatByPhase: formats.FormatByPhase,
			GroupCount:    row.GroupCount,
		},
		Status: tournament.Status(row.Status),
	}, nil
}

func matchInsertFrom(m tournament.Match) tournamentMatchInsertModel {
	return tournamentMatchInsertModel{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		Phase:        string(m.Phase),
		Round:        m.Round,
		SortOrder:    m.Order,
		GroupIndex:   m.GroupIndex,
		PlayerAID:    m.PlayerAID,
		PlayerBID:    m.PlayerBID,
		Status:       string(m.Status),
		StartedAt:    m.StartedAt,
		EndedAt:      m.EndedAt,
		WinnerID:     m.WinnerID,
	}
}

func matchFromRow(row tournamentMatchTableModel) tournament.Match {
	return tournament.Match{
		ID:           row.ID,
		TournamentID: row.TournamentID,
		Phase:        tournament.Phase(row.Phase),
		Round:        row.Round,
		Order:        row.SortOrder,
		GroupIndex:   row.GroupIndex,
		PlayerAID:    row.PlayerAID,
		PlayerBID:    row.PlayerBID,
		Status:       tournament.MatchStatus(row.Status),
		StartedAt:    nullTimeToTimePtr(row.StartedAt),
		EndedAt:      nullTimeToTimePtr(row.EndedAt),
		WinnerID:     row.WinnerID,
	}
}
