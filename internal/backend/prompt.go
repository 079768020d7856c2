package backend

import (
	"fmt"
	"strings"

	"github.com/mprates/dailylesson/internal/models"
)

// allowedTags is the safe-tag allowlist for the rich-text lesson body.
var allowedTags = []string{"p", "h2", "h3", "ul", "ol", "li", "strong", "em", "b", "i", "code", "pre", "br", "blockquote"}

// BuildPrompt renders the deterministic generation prompt for a context.
// All connectors share it; the transport differs per backend.
func BuildPrompt(gc models.GenerationContext) string {
	s := gc.Settings

	var b strings.Builder
	b.WriteString("You are a daily micro-lesson tutor.\n")
	fmt.Fprintf(&b, "Mode: %s\nTopic: %s\nLesson length: %s\nFlashcards wanted: %d\n",
		s.Mode, s.Topic, s.LessonLength, s.CardsPerLesson)

	if len(gc.RecentLessons) > 0 {
		b.WriteString("\nRecent lessons (do not repeat, but reintroduce exactly one prior concept for reinforcement):\n")
		for _, l := range gc.RecentLessons {
			fmt.Fprintf(&b, "- %s: %s\n", l.Date, l.Title)
		}
	}

	if len(gc.DueFlashcards) > 0 {
		b.WriteString("\nFlashcards currently due for review:\n")
		for _, c := range gc.DueFlashcards {
			fmt.Fprintf(&b, "- Q: %s / A: %s\n", c.Question, c.Answer)
		}
	}

	if s.Mode == models.ModeCurated && len(gc.CuratedChunks) > 0 {
		b.WriteString("\nCurated source excerpts. Restrict the lesson STRICTLY to these excerpts; do not introduce outside material:\n")
		for i, ch := range gc.CuratedChunks {
			fmt.Fprintf(&b, "[%d] (%s, %s) %s\n", i+1, ch.SourceTitle, ch.Reference, ch.Text)
		}
	}

	fmt.Fprintf(&b, `
Respond with a single JSON object and nothing else:
{
  "title": "lesson title",
  "summary": ["bullet 1", "bullet 2", "bullet 3"],
  "lesson": "lesson body as HTML restricted to these tags: %s",
  "flashcards": [{"question": "...", "answer": "..."}],
  "sources": [{"title": "...", "reference": "..."}],
  "exercise": "one short practice exercise"
}
The summary must contain exactly 3 bullets.
`, strings.Join(allowedTags, ", "))

	return b.String()
}
