package postgres

import (
	"database/sql"
	"time"
)

type tournamentTableModel struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Date          time.Time `db:"date"`
	Mode          string    `db:"mode"`
	Status        string    `db:"status"`
	StartingScore int       `db:"starting_score"`
	DoubleOut     bool      `db:"double_out"`
	GroupCount    int       `db:"group_count"`
	Formats       string    `db:"formats"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type tournamentInsertModel struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Date          time.Time `db:"date"`
	Mode          string    `db:"mode"`
	Status        string    `db:"status"`
	StartingScore int       `db:"starting_score"`
	DoubleOut     bool      `db:"double_out"`
	GroupCount    int       `db:"group_count"`
	Formats       string    `db:"formats"`
}

type tournamentPlayerTableModel struct {
	TournamentID string `db:"tournament_id"`
	PlayerID     string `db:"player_id"`
	Name         string `db:"name"`
	GroupIndex   int    `db:"group_index"`
}

type tournamentMatchTableModel struct {
	ID           string       `db:"id"`
	TournamentID string       `db:"tournament_id"`
	Phase        string       `db:"phase"`
	Round        int          `db:"round"`
	SortOrder    int          `db:"sort_order"`
	GroupIndex   int          `db:"group_index"`
	PlayerAID    string       `db:"player_a_id"`
	PlayerBID    string       `db:"player_b_id"`
	Status       string       `db:"status"`
	StartedAt    sql.NullTime `db:"started_at"`
	EndedAt      sql.NullTime `db:"ended_at"`
	WinnerID     string       `db:"winner_id"`
}

type tournamentMatchInsertModel struct {
	ID           string     `db:"id"`
	TournamentID string     `db:"tournament_id"`
	Phase        string     `db:"phase"`
	Round        int        `db:"round"`
	SortOrder    int        `db:"sort_order"`
	GroupIndex   int        `db:"group_index"`
	PlayerAID    string     `db:"player_a_id"`
	PlayerBID    string     `db:"player_b_id"`
	Status       string     `db:"status"`
	StartedAt    *time.Time `db:"started_at"`
	EndedAt      *time.Time `db:"ended_at"`
	WinnerID     string     `db:"winner_id"`
}

type matchResultTableModel struct {
	MatchID      string `db:"match_id"`
	TournamentID string `db:"tournament_id"`
	Lines        string `db:"lines"`
}
