package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mprates/dailylesson/internal/backend"
	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
)

// DefaultOrder is used when the configured backend order is empty or
// contains no known backend.
var DefaultOrder = []string{backend.NameOnDevice, backend.NameLocal, backend.NameCloud}

// Attempt records one failed backend invocation.
type Attempt struct {
	Backend string `json:"backend"`
	Err     string `json:"error"`
}

// Orchestrator tries backends in the configured priority order, first
// success wins. If every backend fails it synthesizes an offline result,
// so Generate always yields a usable lesson.
type Orchestrator struct {
	backends map[string]backend.Generator
}

func New(generators ...backend.Generator) *Orchestrator {
	backends := make(map[string]backend.Generator, len(generators))
	for _, g := range generators {
		backends[g.Name()] = g
	}
	return &Orchestrator{backends: backends}
}

// Generate invokes backends sequentially in priority order and returns the
// first successful canonical result. Failures are recorded per backend and
// the attempt list is returned alongside the result.
func (o *Orchestrator) Generate(ctx context.Context, gc models.GenerationContext) (*models.LessonResult, []Attempt) {
	log := logger.FromContext(ctx).WithPrefix("orchestrator")

	var attempts []Attempt
	for _, name := range o.order(gc.Settings.BackendOrder) {
		gen := o.backends[name]
		log.Debug("trying backend %s", name)
		start := time.Now()

		result, err := gen.Generate(ctx, gc)
		if err != nil {
			log.Warn("backend %s failed after %v: %v", name, time.Since(start), err)
			attempts = append(attempts, Attempt{Backend: name, Err: err.Error()})
			continue
		}

		log.Info("backend %s succeeded in %v", name, time.Since(start))
		return result, attempts
	}

	log.Warn("all %d backends failed, falling back to offline lesson", len(attempts))
	return offlineResult(gc, attempts), attempts
}

// order filters the configured priority list down to known backends,
// falling back to DefaultOrder when nothing valid remains.
func (o *Orchestrator) order(configured []string) []string {
	var order []string
	for _, name := range configured {
		if _, ok := o.backends[strings.ToLower(strings.TrimSpace(name))]; ok {
			order = append(order, strings.ToLower(strings.TrimSpace(name)))
		}
	}
	if len(order) > 0 {
		return order
	}
	for _, name := range DefaultOrder {
		if _, ok := o.backends[name]; ok {
			order = append(order, name)
		}
	}
	return order
}

// offlineResult builds the deterministic lesson used when no backend is
// reachable. Flashcards are drawn from currently due items, capped at 5,
// with one synthetic self-check card if none are due.
func offlineResult(gc models.GenerationContext, attempts []Attempt) *models.LessonResult {
	var body strings.Builder
	fmt.Fprintf(&body, "<p>No generation backend was reachable today (%d attempts failed), so here is a self-study session instead.</p>", len(attempts))
	if len(gc.RecentLessons) > 0 {
		fmt.Fprintf(&body, "<p>Start by revisiting your last lesson: <strong>%s</strong>.</p>", gc.RecentLessons[0].Title)
	}
	body.WriteString("<ul>" +
		"<li>Review the flashcards below from memory before flipping them.</li>" +
		"<li>Re-read your notes on the topic for ten minutes.</li>" +
		"<li>Write a short summary of the most difficult concept so far.</li>" +
		"<li>Note one question to put to tomorrow's lesson.</li>" +
		"</ul>")

	var cards []models.CardDraft
	for _, c := range gc.DueFlashcards {
		cards = append(cards, models.CardDraft{Question: c.Question, Answer: c.Answer})
		if len(cards) == 5 {
			break
		}
	}
	if len(cards) == 0 {
		cards = []models.CardDraft{{
			Question: fmt.Sprintf("Self-check: what do you remember best about %s?", gc.Settings.Topic),
			Answer:   "Compare your recollection against your latest notes.",
		}}
	}

	return &models.LessonResult{
		Title: "Offline review session",
		Summary: []string{
			"No backend was available, so today is a review day.",
			"Work through the due flashcards and your own notes.",
			"Generation will be retried on the next run.",
		},
		Lesson:     body.String(),
		Flashcards: cards,
		Exercise:   "Pick the flashcard you found hardest and explain its answer out loud as if teaching someone else.",
	}
}
