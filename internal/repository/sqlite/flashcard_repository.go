package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/repository"
)

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates an SQLite-backed FlashcardRepository.
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

const cardColumns = "id, question, answer, interval_days, ease_factor, repetitions, due_at, last_reviewed_at, last_grade, source_lesson_id, created_at"

func (r *flashcardRepository) Get(ctx context.Context, id string) (*models.Flashcard, error) {
	return r.getWhere(ctx, sq.Eq{"id": id})
}

func (r *flashcardRepository) GetByQuestion(ctx context.Context, question string) (*models.Flashcard, error) {
	return r.getWhere(ctx, sq.Eq{"question": question})
}

func (r *flashcardRepository) getWhere(ctx context.Context, cond sq.Eq) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	query, args, err := sq.Select(cardColumns).From("flashcards").Where(cond).ToSql()
	if err != nil {
		return nil, err
	}

	card, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	return card, nil
}

func (r *flashcardRepository) List(ctx context.Context) ([]models.Flashcard, error) {
	query, args, err := sq.Select(cardColumns).From("flashcards").OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryCards(ctx, query, args...)
}

func (r *flashcardRepository) Due(ctx context.Context, now time.Time) ([]models.Flashcard, error) {
	// A card with no due date has never been scheduled and is always due.
	query, args, err := sq.Select(cardColumns).
		From("flashcards").
		Where(sq.Or{sq.Eq{"due_at": nil}, sq.LtOrEq{"due_at": now}}).
		OrderBy("due_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryCards(ctx, query, args...)
}

func (r *flashcardRepository) queryCards(ctx context.Context, query string, args ...any) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: id=%s", c.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards (id, question, answer, interval_days, ease_factor, repetitions, due_at, last_reviewed_at, last_grade, source_lesson_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.ID, c.Question, c.Answer, c.IntervalDays, c.EaseFactor, c.Repetitions,
		nullTime(c.DueAt), nullTime(c.LastReviewedAt), nullGrade(c), nullString(c.SourceLessonID), c.CreatedAt)
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
	}
	return err
}

func (r *flashcardRepository) Update(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard: id=%s, interval=%d, ease=%.2f", c.ID, c.IntervalDays, c.EaseFactor)

	_, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET question = ?, answer = ?, interval_days = ?, ease_factor = ?, repetitions = ?,
    due_at = ?, last_reviewed_at = ?, last_grade = ?, source_lesson_id = ?
WHERE id = ?
`, c.Question, c.Answer, c.IntervalDays, c.EaseFactor, c.Repetitions,
		nullTime(c.DueAt), nullTime(c.LastReviewedAt), nullGrade(c), nullString(c.SourceLessonID), c.ID)
	if err != nil {
		log.Error("failed to update flashcard: %v", err)
	}
	return err
}

func scanCard(row rowScanner) (*models.Flashcard, error) {
	var c models.Flashcard
	var dueAt, reviewedAt sql.NullTime
	var lastGrade sql.NullInt64
	var sourceLessonID sql.NullString
	if err := row.Scan(&c.ID, &c.Question, &c.Answer, &c.IntervalDays, &c.EaseFactor, &c.Repetitions,
		&dueAt, &reviewedAt, &lastGrade, &sourceLessonID, &c.CreatedAt); err != nil {
		return nil, err
	}
	if dueAt.Valid {
		c.DueAt = dueAt.Time
	}
	if reviewedAt.Valid {
		c.LastReviewedAt = reviewedAt.Time
	}
	if lastGrade.Valid {
		c.LastGrade = int(lastGrade.Int64)
	} else {
		c.LastGrade = -1
	}
	c.SourceLessonID = sourceLessonID.String
	return &c, nil
}
