package sqlite

import (
	"database/sql"
	"time"

	"github.com/mprates/dailylesson/internal/models"
)

// Helper functions shared across repository implementations

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullGrade stores NULL for cards that were never reviewed.
func nullGrade(c models.Flashcard) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(c.LastGrade), Valid: !c.LastReviewedAt.IsZero()}
}
