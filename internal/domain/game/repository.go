package game

import "context"

// LiveStateRepository stores in-flight match snapshots so a match survives a
// process restart. The core never talks to it directly; services persist a
// snapshot after every mutation.
type LiveStateRepository interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context, matchID string) (Snapshot, bool, error)
	Clear(ctx context.Context, matchID string) error
}

// ArchiveRepository keeps the full history of finished matches. The archive
// is what makes every derived stat recomputable from scratch.
type ArchiveRepository interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context, matchID string) (Snapshot, bool, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]Snapshot, error)
	Delete(ctx context.Context, matchID string) error
}

// SummaryRepository stores finished-match summaries for match history views.
type SummaryRepository interface {
	Upsert(ctx context.Context, summary MatchSummary) error
	Remove(ctx context.Context, matchID string) error
	List(ctx context.Context) ([]MatchSummary, error)
}
