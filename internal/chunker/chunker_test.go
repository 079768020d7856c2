package chunker_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mprates/dailylesson/internal/chunker"
	"github.com/mprates/dailylesson/internal/models"
)

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	if body, ok := f.pages[url]; ok {
		return body, nil
	}
	return "", fmt.Errorf("connection refused")
}

func TestChunk_TextSourceVerbatim(t *testing.T) {
	c := chunker.New(nil)

	chunks := c.Chunk(context.Background(), []models.SourceDescriptor{
		{ID: "s1", Kind: models.SourceText, Title: "Notes", Reference: "notes.txt", Text: "alpha beta gamma"},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha beta gamma", chunks[0].Text)
	assert.Equal(t, "Notes", chunks[0].SourceTitle)
	assert.Equal(t, "notes.txt", chunks[0].Reference)
	assert.Equal(t, "s1-0", chunks[0].ID)
}

func TestChunk_SplitsAtWindowSize(t *testing.T) {
	c := chunker.New(nil)
	long := strings.Repeat("x", chunker.WindowSize*2+10)

	chunks := c.Chunk(context.Background(), []models.SourceDescriptor{
		{ID: "s1", Kind: models.SourceText, Title: "Long", Text: long},
	})

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0].Text, chunker.WindowSize)
	assert.Len(t, chunks[1].Text, chunker.WindowSize)
	assert.Len(t, chunks[2].Text, 10)
}

func TestChunk_WindowsCountRunesNotBytes(t *testing.T) {
	c := chunker.New(nil)
	long := "a" + strings.Repeat("é", chunker.WindowSize)

	chunks := c.Chunk(context.Background(), []models.SourceDescriptor{
		{ID: "s1", Kind: models.SourceText, Title: "Accented", Text: long},
	})

	require.Len(t, chunks, 2)
	for i, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Text), "chunk %d must stay valid UTF-8", i)
	}
	assert.Equal(t, chunker.WindowSize, utf8.RuneCountInString(chunks[0].Text))
	assert.Equal(t, 1, utf8.RuneCountInString(chunks[1].Text))
}

func TestChunk_FailedURLIsIsolated(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://ok.example/a": "<html><body><p>kept text</p></body></html>",
	}}
	c := chunker.New(fetcher)

	chunks := c.Chunk(context.Background(), []models.SourceDescriptor{
		{ID: "bad", Kind: models.SourceURL, Title: "Down", URL: "https://down.example"},
		{ID: "good", Kind: models.SourceURL, Title: "Up", URL: "https://ok.example/a"},
	})

	require.Len(t, chunks, 1, "failed source contributes nothing, the rest survives")
	assert.Equal(t, "kept text", chunks[0].Text)
}

func TestChunk_StripsScriptsAndTags(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://ok.example": `<html><head><script>var x = "<p>no</p>";</script><style>p { color: red; }</style></head>` +
			`<body><h1>Title</h1><p>one&nbsp;two</p></body></html>`,
	}}
	c := chunker.New(fetcher)

	chunks := c.Chunk(context.Background(), []models.SourceDescriptor{
		{ID: "s", Kind: models.SourceURL, Title: "Page", URL: "https://ok.example"},
	})

	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Text, "var x")
	assert.NotContains(t, chunks[0].Text, "color")
	assert.NotContains(t, chunks[0].Text, "<")
	assert.Contains(t, chunks[0].Text, "Title")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", chunker.Normalize("a\n\n  b\t  c "))
	assert.Equal(t, "", chunker.Normalize(" \n\t "))
}

func TestChunk_FileFallsBackToIdentityRead(t *testing.T) {
	c := chunker.New(nil)

	chunks := c.Chunk(context.Background(), []models.SourceDescriptor{
		{ID: "f", Kind: models.SourceFile, Title: "Upload", Data: []byte("plain upload body")},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "plain upload body", chunks[0].Text)
}

func TestChunk_FileBase64DataURL(t *testing.T) {
	c := chunker.New(nil)

	chunks := c.Chunk(context.Background(), []models.SourceDescriptor{
		{ID: "f", Kind: models.SourceFile, Title: "Upload", Text: "data:text/plain;base64,aGVsbG8gd29ybGQ="},
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0].Text)
}

func TestChunk_OrderingPreserved(t *testing.T) {
	c := chunker.New(nil)

	chunks := c.Chunk(context.Background(), []models.SourceDescriptor{
		{ID: "a", Kind: models.SourceText, Title: "A", Text: "first"},
		{ID: "b", Kind: models.SourceText, Title: "B", Text: "second"},
	})

	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Text)
	assert.Equal(t, "second", chunks[1].Text)
}
