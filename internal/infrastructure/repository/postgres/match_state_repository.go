package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	qb "github.com/oneeighty-app/oneeighty/internal/platform/querybuilder"
)

type matchSnapshotTableModel struct {
	MatchID      string    `db:"match_id"`
	TournamentID string    `db:"tournament_id"`
	Snapshot     string    `db:"snapshot"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type matchSnapshotInsertModel struct {
	MatchID      string    `db:"match_id"`
	TournamentID string    `db:"tournament_id"`
	Snapshot     string    `db:"snapshot"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// LiveStateRepository persists in-flight match snapshots so live matches
// survive a restart. The whole snapshot goes into one JSONB column; the only
// query shapes are by match id and by tournament, so there is nothing to gain
// from exploding the turn log into rows here. The archive keeps history the
// same way.
type LiveStateRepository struct {
	db *sqlx.DB
}

func NewLiveStateRepository(db *sqlx.DB) *LiveStateRepository {
	return &LiveStateRepository{db: db}
}

func (r *LiveStateRepository) Save(ctx context.Context, snapshot game.Snapshot) error {
	return saveSnapshot(ctx, r.db, "live_matches", snapshot)
}

func (r *LiveStateRepository) Load(ctx context.Context, matchID string) (game.Snapshot, bool, error) {
	return loadSnapshot(ctx, r.db, "live_matches", matchID)
}

func (r *LiveStateRepository) Clear(ctx context.Context, matchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM live_matches WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("clear live match %s: %w", matchID, err)
	}
	return nil
}

// ArchiveRepository persists finished-match histories.
type ArchiveRepository struct {
	db *sqlx.DB
}

func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

func (r *ArchiveRepository) Save(ctx context.Context, snapshot game.Snapshot) error {
	return saveSnapshot(ctx, r.db, "match_archives", snapshot)
}

func (r *ArchiveRepository) Load(ctx context.Context, matchID string) (game.Snapshot, bool, error) {
	return loadSnapshot(ctx, r.db, "match_archives", matchID)
}

func (r *ArchiveRepository) ListByTournament(ctx context.Context, tournamentID string) ([]game.Snapshot, error) {
	query, args, err := qb.Select("*").From("match_archives").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("updated_at", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list archives query: %w", err)
	}

	var rows []matchSnapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}

	out := make([]game.Snapshot, 0, len(rows))
	for _, row := range rows {
		var snapshot game.Snapshot
		if err := sonic.UnmarshalString(row.Snapshot, &snapshot); err != nil {
			return nil, fmt.Errorf("decode archive snapshot for match %s: %w", row.MatchID, err)
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func (r *ArchiveRepository) Delete(ctx context.Context, matchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM match_archives WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete archive for match %s: %w", matchID, err)
	}
	return nil
}

func saveSnapshot(ctx context.Context, db *sqlx.DB, table string, snapshot game.Snapshot) error {
	encoded, err := sonic.MarshalString(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot for match %s: %w", snapshot.Match.ID, err)
	}

	model := matchSnapshotInsertModel{
		MatchID:      snapshot.Match.ID,
		TournamentID: snapshot.Match.TournamentID,
		Snapshot:     encoded,
		UpdatedAt:    snapshot.UpdatedAt,
	}
	query, args, err := qb.InsertModel(table, model, `ON CONFLICT (match_id)
DO UPDATE SET
    tournament_id = EXCLUDED.tournament_id,
    snapshot = EXCLUDED.snapshot,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert %s query: %w", table, err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s for match %s: %w", table, snapshot.Match.ID, err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sqlx.DB, table string, matchID string) (game.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From(table).
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return game.Snapshot{}, false, fmt.Errorf("build get %s query: %w", table, err)
	}

	var row matchSnapshotTableModel
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Snapshot{}, false, nil
		}
		return game.Snapshot{}, false, fmt.Errorf("get %s for match %s: %w", table, matchID, err)
	}

	var snapshot game.Snapshot
	if err := sonic.UnmarshalString(row.Snapshot, &snapshot); err != nil {
		return game.Snapshot{}, false, fmt.Errorf("decode snapshot for match %s: %w", matchID, err)
	}
	return snapshot, true, nil
}
