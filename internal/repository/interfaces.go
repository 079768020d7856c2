package repository

import (
	"context"
	"time"

	"github.com/mprates/dailylesson/internal/models"
)

// LessonRepository handles lesson data access. At most one lesson exists
// per calendar day key.
type LessonRepository interface {
	GetByDate(ctx context.Context, date string) (*models.Lesson, error)
	Recent(ctx context.Context, limit int) ([]models.Lesson, error)
	Upsert(ctx context.Context, lesson models.Lesson) error
	// TrimTo evicts the oldest lessons until at most keep remain.
	TrimTo(ctx context.Context, keep int) error
}

// FlashcardRepository handles flashcard data access.
type FlashcardRepository interface {
	Get(ctx context.Context, id string) (*models.Flashcard, error)
	GetByQuestion(ctx context.Context, question string) (*models.Flashcard, error)
	List(ctx context.Context) ([]models.Flashcard, error)
	// Due returns cards with no due date or a due date at or before now.
	Due(ctx context.Context, now time.Time) ([]models.Flashcard, error)
	Insert(ctx context.Context, card models.Flashcard) error
	Update(ctx context.Context, card models.Flashcard) error
}

// StatsRepository handles the single aggregate stats row.
type StatsRepository interface {
	Get(ctx context.Context) (models.Stats, error)
	Save(ctx context.Context, stats models.Stats) error
	IncrementReviewed(ctx context.Context) error
}

// SettingsRepository persists the user's generation preferences.
type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
	// Seed stores settings only when none have been saved yet.
	Seed(ctx context.Context, settings models.Settings) error
}
