package srs

import (
	"math"
	"time"

	"github.com/mprates/dailylesson/internal/models"
)

const (
	// MinEase is the SM-2 floor for the ease factor.
	MinEase = 1.3
	// DefaultEase is applied to cards that have never been reviewed.
	DefaultEase = 2.5
	// PassingGrade is the lowest grade counted as successful recall.
	PassingGrade = 3
)

// Apply updates a flashcard's scheduling state for a recall grade in [0,5]
// using SM-2. Grades below PassingGrade reset repetitions and the interval;
// passing grades grow the interval and adjust the ease factor. The input
// card is not mutated.
func Apply(card models.Flashcard, grade int, now time.Time) models.Flashcard {
	if grade < 0 {
		grade = 0
	}
	if grade > 5 {
		grade = 5
	}

	// Lazy defaults for cards created before any review happened.
	ease := card.EaseFactor
	if ease <= 0 {
		ease = DefaultEase
	}
	interval := card.IntervalDays
	if interval <= 0 {
		interval = 1
	}
	reps := card.Repetitions
	if reps < 0 {
		reps = 0
	}

	if grade < PassingGrade {
		reps = 0
		interval = 1
	} else {
		switch reps {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = int(math.Round(float64(interval) * ease))
		}
		reps++
		q := float64(5 - grade)
		ease += 0.1 - q*(0.08+q*0.02)
		if ease < MinEase {
			ease = MinEase
		}
	}

	card.EaseFactor = ease
	card.IntervalDays = interval
	card.Repetitions = reps
	card.DueAt = now.Add(time.Duration(interval) * 24 * time.Hour)
	card.LastReviewedAt = now
	card.LastGrade = grade
	return card
}

// IsDue reports whether a card should be reviewed. A card that has never
// been scheduled is always due.
func IsDue(card models.Flashcard, now time.Time) bool {
	if card.DueAt.IsZero() {
		return true
	}
	return !card.DueAt.After(now)
}
