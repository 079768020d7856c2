package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
)

// CloudConfig configures the hosted chat-completions connector.
type CloudConfig struct {
	APIKey string
	Model  string
	URL    string
}

// Cloud calls a hosted chat-completions style API. A missing credential is
// an immediate error; the network is never touched without one.
type Cloud struct {
	cfg    CloudConfig
	client *http.Client
}

func NewCloud(cfg CloudConfig) *Cloud {
	if cfg.URL == "" {
		cfg.URL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Cloud{
		cfg:    cfg,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *Cloud) Name() string { return NameCloud }

func (c *Cloud) Generate(ctx context.Context, gc models.GenerationContext) (*models.LessonResult, error) {
	log := logger.FromContext(ctx).WithPrefix("cloud")

	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("cloud backend: credential missing")
	}

	prompt := BuildPrompt(gc)
	log.Debug("requesting completion: model=%s, prompt_len=%d", c.cfg.Model, len(prompt))

	reqBody, err := json.Marshal(map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud backend: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("cloud backend status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cloud backend: decoding response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return nil, fmt.Errorf("cloud backend: empty completion")
	}

	return ParseResponse(payload.Choices[0].Message.Content, gc), nil
}
