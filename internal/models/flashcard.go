package models

import "time"

// Flashcard is a reviewable question/answer item scheduled with SM-2.
// EaseFactor never drops below 1.3 and IntervalDays never drops below 1;
// a zero DueAt means the card has never been scheduled and is always due.
type Flashcard struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	IntervalDays   int       `json:"interval_days"`
	EaseFactor     float64   `json:"ease_factor"`
	Repetitions    int       `json:"repetitions"`
	DueAt          time.Time `json:"due_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	LastGrade      int       `json:"last_grade"`
	SourceLessonID string    `json:"source_lesson_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CardDraft is a question/answer pair produced by a generation backend
// before it is merged into the persistent card list.
type CardDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
