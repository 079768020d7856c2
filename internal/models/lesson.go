package models

import "time"

// SourceRef attributes lesson content to a source.
type SourceRef struct {
	Title     string `json:"title"`
	Reference string `json:"reference"`
}

// Lesson is one generated lesson. Date is the calendar day key
// (YYYY-MM-DD); at most one lesson exists per day and a later generation
// for the same day replaces the earlier one.
type Lesson struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	Title       string      `json:"title"`
	Summary     []string    `json:"summary"`
	Body        string      `json:"body"`
	Sources     []SourceRef `json:"sources"`
	Exercise    string      `json:"exercise"`
	Mode        Mode        `json:"mode"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// DayKey formats t as a lesson date key in t's location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// LessonResult is the canonical shape every generation backend (and the
// offline fallback) converges to. It is the contract boundary between the
// connectors/orchestrator and the scheduler's persistence step.
type LessonResult struct {
	Title      string      `json:"title"`
	Summary    []string    `json:"summary"`
	Lesson     string      `json:"lesson"`
	Flashcards []CardDraft `json:"flashcards"`
	Sources    []SourceRef `json:"sources"`
	Exercise   string      `json:"exercise"`
}

// GenerationContext is built per pipeline run and handed to the backends.
// It is never persisted.
type GenerationContext struct {
	Settings      Settings
	RecentLessons []Lesson
	DueFlashcards []Flashcard
	CuratedChunks []SourceChunk
}
