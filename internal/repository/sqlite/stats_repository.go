package sqlite

import (
	"context"
	"database/sql"

	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates an SQLite-backed StatsRepository.
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Get(ctx context.Context) (models.Stats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	var s models.Stats
	err := r.db.QueryRowContext(ctx, `
SELECT streak, last_lesson_date, total_lessons, total_flashcards_reviewed
FROM stats WHERE id = 1
`).Scan(&s.Streak, &s.LastLessonDate, &s.TotalLessons, &s.TotalFlashcardsReviewed)
	if err != nil {
		log.Error("failed to get stats: %v", err)
		return models.Stats{}, err
	}
	return s, nil
}

func (r *statsRepository) Save(ctx context.Context, s models.Stats) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("saving stats: streak=%d, total_lessons=%d", s.Streak, s.TotalLessons)

	_, err := r.db.ExecContext(ctx, `
UPDATE stats
SET streak = ?, last_lesson_date = ?, total_lessons = ?, total_flashcards_reviewed = ?
WHERE id = 1
`, s.Streak, s.LastLessonDate, s.TotalLessons, s.TotalFlashcardsReviewed)
	if err != nil {
		log.Error("failed to save stats: %v", err)
	}
	return err
}

func (r *statsRepository) IncrementReviewed(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	_, err := r.db.ExecContext(ctx, `UPDATE stats SET total_flashcards_reviewed = total_flashcards_reviewed + 1 WHERE id = 1`)
	if err != nil {
		log.Error("failed to increment reviewed counter: %v", err)
	}
	return err
}
