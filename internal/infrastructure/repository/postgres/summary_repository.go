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

type matchSummaryTableModel struct {
	MatchID string    `db:"match_id"`
	EndedAt time.Time `db:"ended_at"`
	Summary string    `db:"summary"`
}

// SummaryRepository persists finished-match summaries, newest first.
type SummaryRepository struct {
	db *sqlx.DB
}

func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Upsert(ctx context.Context, summary game.MatchSummary) error {
	encoded, err := sonic.MarshalString(summary)
	if err != nil {
		return fmt.Errorf("encode summary for match %s: %w", summary.MatchID, err)
	}

	model := matchSummaryTableModel{
		MatchID: summary.MatchID,
		EndedAt: summary.EndedAt,
		Summary: encoded,
	}
	query, args, err := qb.InsertModel("match_summaries", model, `ON CONFLICT (match_id)
DO UPDATE SET
    ended_at = EXCLUDED.ended_at,
    summary = EXCLUDED.summary`)
	if err != nil {
		return fmt.Errorf("build upsert summary query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert summary for match %s: %w", summary.MatchID, err)
	}
	return nil
}

func (r *SummaryRepository) Remove(ctx context.Context, matchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM match_summaries WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("remove summary for match %s: %w", matchID, err)
	}
	return nil
}

func (r *SummaryRepository) List(ctx context.Context) ([]game.MatchSummary, error) {
	query, args, err := qb.Select("*").From("match_summaries").
		OrderBy("ended_at DESC", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list summaries query: %w", err)
	}

	var rows []matchSummaryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}

	out := make([]game.MatchSummary, 0, len(rows))
	for _, row := range rows {
		var summary game.MatchSummary
		if err := sonic.UnmarshalString(row.Summary, &summary); err != nil {
			return nil, fmt.Errorf("decode summary for match %s: %w", row.MatchID, err)
		}
		out = append(out, summary)
	}
	return out, nil
}
