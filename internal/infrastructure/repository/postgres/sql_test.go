package postgres

import (
	"database/sql"
	"testing"
	"time"
)

func TestNullTimeToTimePtr(t *testing.T) {
	t.Parallel()

	if got := nullTimeToTimePtr(sql.NullTime{}); got != nil {
		t.Fatalf("expected nil for null time, got %v", got)
	}

	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	got := nullTimeToTimePtr(sql.NullTime{Time: at, Valid: true})
	if got == nil || !got.Equal(at) {
		t.Fatalf("unexpected time: got=%v want=%v", got, at)
	}
}
