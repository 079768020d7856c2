package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
)

// LocalConfig configures the local inference server connector.
type LocalConfig struct {
	URL   string
	Model string
}

// Local talks to an Ollama-compatible server. Transport failures surface
// the raw status and body as error context.
type Local struct {
	cfg    LocalConfig
	client *http.Client
}

func NewLocal(cfg LocalConfig) *Local {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	return &Local{
		cfg:    LocalConfig{URL: strings.TrimSuffix(cfg.URL, "/"), Model: cfg.Model},
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (l *Local) Name() string { return NameLocal }

func (l *Local) Generate(ctx context.Context, gc models.GenerationContext) (*models.LessonResult, error) {
	log := logger.FromContext(ctx).WithPrefix("local")

	prompt := BuildPrompt(gc)
	log.Debug("requesting generation: model=%s, prompt_len=%d", l.cfg.Model, len(prompt))

	reqBody, err := json.Marshal(map[string]any{
		"model":  l.cfg.Model,
		"prompt": prompt,
		"stream": false,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.cfg.URL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local backend: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("local backend status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("local backend: decoding response: %w", err)
	}

	return ParseResponse(payload.Response, gc), nil
}
