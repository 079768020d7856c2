package backend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mprates/dailylesson/internal/models"
)

// ParseResponse turns a raw model reply into a canonical lesson result.
// It never fails: malformed payloads are recovered with a heuristic parser
// and missing fields are back-filled from the generation context.
func ParseResponse(raw string, gc models.GenerationContext) *models.LessonResult {
	text := stripFence(raw)

	result, ok := parseJSON(text)
	if !ok {
		result = heuristicParse(text)
	}
	result.Lesson = sanitizeBody(result.Lesson)
	backfill(&result, gc)
	return &result
}

// parseJSON attempts the strict reading: an embedded JSON object carrying
// at least one canonical field. Replies with no object, an unparseable
// object, or an object contributing nothing are handed to the heuristic
// parser instead.
func parseJSON(text string) (models.LessonResult, bool) {
	payload, ok := extractJSON(text)
	if !ok {
		return models.LessonResult{}, false
	}
	var result models.LessonResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return models.LessonResult{}, false
	}
	if result.Title == "" && len(result.Summary) == 0 && result.Lesson == "" && len(result.Flashcards) == 0 {
		return models.LessonResult{}, false
	}
	return result, true
}

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// stripFence removes a wrapping markdown code fence if present.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// extractJSON narrows a reply to its outermost JSON object, reporting
// whether one was found at all.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || start >= end {
		return "", false
	}
	return s[start : end+1], true
}

// heuristicParse is the last-resort reading of a non-JSON reply: first line
// becomes the title, remaining lines become summary bullets.
func heuristicParse(text string) models.LessonResult {
	var result models.LessonResult
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*# "))
		if line == "" {
			continue
		}
		if result.Title == "" {
			result.Title = line
			continue
		}
		result.Summary = append(result.Summary, line)
	}
	result.Lesson = "<p>" + strings.TrimSpace(text) + "</p>"
	return result
}

// backfill fills any missing canonical fields with deterministic defaults
// so the persistence step always receives a complete result.
func backfill(r *models.LessonResult, gc models.GenerationContext) {
	s := gc.Settings

	if strings.TrimSpace(r.Title) == "" {
		r.Title = syntheticTitle(s)
	}
	if len(r.Summary) == 0 {
		r.Summary = []string{fmt.Sprintf("A short %s lesson on %s.", s.Mode, s.Topic)}
	}
	if len(r.Flashcards) == 0 {
		r.Flashcards = []models.CardDraft{{
			Question: fmt.Sprintf("What is one thing you learned about %s today?", s.Topic),
			Answer:   "Recall the key point of today's lesson in your own words.",
		}}
	}
	if len(r.Sources) == 0 && len(gc.CuratedChunks) > 0 {
		for _, ch := range gc.CuratedChunks {
			r.Sources = append(r.Sources, models.SourceRef{Title: ch.SourceTitle, Reference: ch.Reference})
			if len(r.Sources) == 3 {
				break
			}
		}
	}
	if strings.TrimSpace(r.Exercise) == "" {
		r.Exercise = "Write three sentences in your journal about what you learned today and one question you still have."
	}
}

func syntheticTitle(s models.Settings) string {
	if s.Mode == models.ModeCurated {
		return fmt.Sprintf("Curated lesson: %s", s.Topic)
	}
	return fmt.Sprintf("Daily lesson: %s", s.Topic)
}

var bodyTagRe = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)

// sanitizeBody drops any tag outside the fixed safe-tag allowlist.
func sanitizeBody(body string) string {
	return bodyTagRe.ReplaceAllStringFunc(body, func(tag string) string {
		m := bodyTagRe.FindStringSubmatch(tag)
		name := strings.ToLower(m[1])
		for _, allowed := range allowedTags {
			if name == allowed {
				return tag
			}
		}
		return ""
	})
}
