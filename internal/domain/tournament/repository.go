package tournament

import "context"

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	Save(ctx context.Context, t Tournament) error
	GetByID(ctx context.Context, tournamentID string) (Tournament, bool, error)
	List(ctx context.Context) ([]Tournament, error)
	Delete(ctx context.Context, tournamentID string) error

	ReplacePlayers(ctx context.Context, tournamentID string, players []Player) error
	ListPlayers(ctx context.Context, tournamentID string) ([]Player, error)

	SaveMatch(ctx context.Context, m Match) error
	ReplaceMatches(ctx context.Context, tournamentID string, phase Phase, matches []Match) error
	GetMatch(ctx context.Context, matchID string) (Match, bool, error)
	ListMatches(ctx context.Context, tournamentID string) ([]Match, error)

	SaveResult(ctx context.Context, r MatchResult) error
	DeleteResult(ctx context.Context, matchID string) error
	ListResults(ctx context.Context, tournamentID string) ([]MatchResult, error)
}
