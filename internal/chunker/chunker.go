package chunker

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
)

// WindowSize is the fixed character-count chunk window. Splitting is not
// sentence-aware; a source shorter than the window yields exactly one chunk.
const WindowSize = 900

// Fetcher retrieves the raw body of a remote source.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Chunker turns heterogeneous source descriptors into normalized,
// attributed text fragments. A single source failing never aborts the
// pass; the failed source simply contributes no chunks.
type Chunker struct {
	fetcher Fetcher
}

func New(fetcher Fetcher) *Chunker {
	return &Chunker{fetcher: fetcher}
}

// Chunk processes sources in order and returns their chunks in order.
// Chunks are never deduplicated across sources.
func (c *Chunker) Chunk(ctx context.Context, sources []models.SourceDescriptor) []models.SourceChunk {
	log := logger.FromContext(ctx).WithPrefix("chunker")

	var chunks []models.SourceChunk
	for _, src := range sources {
		text, err := c.extract(ctx, src)
		if err != nil {
			log.Warn("skipping source %q: %v", src.Title, err)
			continue
		}
		text = Normalize(text)
		if text == "" {
			log.Debug("source %q produced no text", src.Title)
			continue
		}
		for i, window := range split(text, WindowSize) {
			chunks = append(chunks, models.SourceChunk{
				ID:          fmt.Sprintf("%s-%d", src.ID, i),
				Text:        window,
				SourceTitle: src.Title,
				Reference:   src.Reference,
				URL:         src.URL,
			})
		}
	}
	log.Debug("produced %d chunks from %d sources", len(chunks), len(sources))
	return chunks
}

func (c *Chunker) extract(ctx context.Context, src models.SourceDescriptor) (string, error) {
	switch src.Kind {
	case models.SourceText:
		return src.Text, nil
	case models.SourceURL:
		if c.fetcher == nil {
			return "", fmt.Errorf("no fetcher configured")
		}
		body, err := c.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			return "", err
		}
		return StripMarkup(body), nil
	case models.SourceFile:
		return decodeFile(src), nil
	default:
		return "", fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// decodeFile converts a stored file payload to plain text. Unsupported
// encodings fall through to a best-effort identity read.
func decodeFile(src models.SourceDescriptor) string {
	if len(src.Data) > 0 {
		if isPDF(src) {
			if text, err := extractPDF(src.Data); err == nil {
				return text
			}
		}
		return string(src.Data)
	}
	if strings.HasPrefix(src.Text, "data:") {
		if idx := strings.Index(src.Text, ";base64,"); idx >= 0 {
			if decoded, err := base64.StdEncoding.DecodeString(src.Text[idx+len(";base64,"):]); err == nil {
				return string(decoded)
			}
		}
	}
	return src.Text
}

func isPDF(src models.SourceDescriptor) bool {
	return src.MimeType == "application/pdf" || strings.HasPrefix(string(src.Data), "%PDF")
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// StripMarkup removes script and style blocks and replaces any remaining
// tags with whitespace.
func StripMarkup(s string) string {
	s = scriptRe.ReplaceAllString(s, " ")
	s = styleRe.ReplaceAllString(s, " ")
	return tagRe.ReplaceAllString(s, " ")
}

// Normalize collapses whitespace runs and non-breaking spaces.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// split cuts text into fixed character-count windows. Windows count runes,
// not bytes, so multi-byte text is never cut mid-rune.
func split(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
