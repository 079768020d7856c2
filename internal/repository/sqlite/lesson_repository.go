package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/repository"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates an SQLite-backed LessonRepository.
func NewLessonRepository(db *sql.DB) repository.LessonRepository {
	return &lessonRepository{db: db}
}

const lessonColumns = "id, date, title, summary, body, sources, exercise, mode, generated_at"

func (r *lessonRepository) GetByDate(ctx context.Context, date string) (*models.Lesson, error) {
	log := logger.FromContext(ctx).WithPrefix("lesson_repo")

	query, args, err := sq.Select(lessonColumns).From("lessons").Where(sq.Eq{"date": date}).ToSql()
	if err != nil {
		return nil, err
	}

	lesson, err := scanLesson(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get lesson for %s: %v", date, err)
		return nil, err
	}
	return lesson, nil
}

func (r *lessonRepository) Recent(ctx context.Context, limit int) ([]models.Lesson, error) {
	log := logger.FromContext(ctx).WithPrefix("lesson_repo")

	query, args, err := sq.Select(lessonColumns).
		From("lessons").
		OrderBy("date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query recent lessons: %v", err)
		return nil, err
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			log.Error("failed to scan lesson row: %v", err)
			return nil, err
		}
		lessons = append(lessons, *lesson)
	}
	return lessons, rows.Err()
}

func (r *lessonRepository) Upsert(ctx context.Context, l models.Lesson) error {
	log := logger.FromContext(ctx).WithPrefix("lesson_repo")
	log.Debug("upserting lesson: date=%s, title=%q", l.Date, l.Title)

	summary, err := json.Marshal(l.Summary)
	if err != nil {
		return err
	}
	sources, err := json.Marshal(l.Sources)
	if err != nil {
		return err
	}

	// The date key is unique; a later generation for the same day replaces
	// the earlier record wholesale.
	_, err = r.db.ExecContext(ctx, `
INSERT INTO lessons (id, date, title, summary, body, sources, exercise, mode, generated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
    id = excluded.id,
    title = excluded.title,
    summary = excluded.summary,
    body = excluded.body,
    sources = excluded.sources,
    exercise = excluded.exercise,
    mode = excluded.mode,
    generated_at = excluded.generated_at
`, l.ID, l.Date, l.Title, string(summary), l.Body, string(sources), l.Exercise, string(l.Mode), l.GeneratedAt)
	if err != nil {
		log.Error("failed to upsert lesson: %v", err)
	}
	return err
}

func (r *lessonRepository) TrimTo(ctx context.Context, keep int) error {
	log := logger.FromContext(ctx).WithPrefix("lesson_repo")

	res, err := r.db.ExecContext(ctx, `
DELETE FROM lessons
WHERE date NOT IN (SELECT date FROM lessons ORDER BY date DESC LIMIT ?)
`, keep)
	if err != nil {
		log.Error("failed to trim lessons: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Debug("evicted %d old lessons", n)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (*models.Lesson, error) {
	var l models.Lesson
	var summary, sources, mode string
	if err := row.Scan(&l.ID, &l.Date, &l.Title, &summary, &l.Body, &sources, &l.Exercise, &mode, &l.GeneratedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &l.Summary); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sources), &l.Sources); err != nil {
		return nil, err
	}
	l.Mode = models.Mode(mode)
	return &l, nil
}
