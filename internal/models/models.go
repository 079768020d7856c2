package models

// Mode selects how lesson content is sourced.
type Mode string

const (
	// ModeAutonomous lets the backend pick content for the configured topic.
	ModeAutonomous Mode = "autonomous"
	// ModeCurated restricts generation strictly to user-provided materials.
	ModeCurated Mode = "curated"
)

// SourceKind tags a user-provided source descriptor.
type SourceKind string

const (
	SourceText SourceKind = "text"
	SourceURL  SourceKind = "url"
	SourceFile SourceKind = "file"
)

// SourceDescriptor is a user-provided study material: inline text, a remote
// URL, or an uploaded file payload.
type SourceDescriptor struct {
	ID        string     `json:"id"`
	Kind      SourceKind `json:"kind"`
	Title     string     `json:"title"`
	Reference string     `json:"reference"`
	URL       string     `json:"url,omitempty"`
	Text      string     `json:"text,omitempty"`
	Data      []byte     `json:"data,omitempty"`
	MimeType  string     `json:"mime_type,omitempty"`
}

// SourceChunk is a normalized, attributed text fragment produced by the
// chunker. Chunks are bounded in size and keep their source attribution.
type SourceChunk struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	SourceTitle string `json:"source_title"`
	Reference   string `json:"reference"`
	URL         string `json:"url,omitempty"`
}

// Settings holds the user-configurable generation preferences.
type Settings struct {
	Mode           Mode               `json:"mode"`
	Topic          string             `json:"topic"`
	LessonLength   string             `json:"lesson_length"`
	CardsPerLesson int                `json:"cards_per_lesson"`
	BackendOrder   []string           `json:"backend_order"`
	GenerationHour int                `json:"generation_hour"`
	Sources        []SourceDescriptor `json:"sources,omitempty"`
}

// DefaultSettings returns the settings used before the user configures
// anything.
func DefaultSettings() Settings {
	return Settings{
		Mode:           ModeAutonomous,
		Topic:          "general knowledge",
		LessonLength:   "medium",
		CardsPerLesson: 5,
		BackendOrder:   []string{"ondevice", "local", "cloud"},
		GenerationHour: 8,
	}
}

// Stats tracks aggregate learning progress.
type Stats struct {
	Streak                  int    `json:"streak"`
	LastLessonDate          string `json:"last_lesson_date"`
	TotalLessons            int    `json:"total_lessons"`
	TotalFlashcardsReviewed int    `json:"total_flashcards_reviewed"`
}
