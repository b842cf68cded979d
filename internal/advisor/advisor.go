package advisor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

// Fixed user-facing messages.
const (
	EmptyMessage      = "There is not enough data for an analysis yet. Record your rides and daily expenses so I can help!"
	NoAnalysisMessage = "A strategic analysis could not be generated right now."
	FailureMessage    = "I ran into an error while processing your driver data. Please try again soon."
)

// Config for the advisory client.
type Config struct {
	BaseURL string // default https://api.openai.com/v1
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client turns an expense list into free-text financial advice using an
// OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.SugaredLogger
}

// NewClient applies defaults and builds a client.
func NewClient(cfg Config, log *zap.SugaredLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// Advise returns an analysis of expenses. It never returns an error: an empty
// list yields EmptyMessage without any network call, and every failure is
// replaced by FailureMessage.
func (c *Client) Advise(ctx context.Context, expenses []models.Expense) string {
	if len(expenses) == 0 {
		return EmptyMessage
	}

	rid := uuid.New().String()
	start := time.Now()
	c.log.Infow("advisor.start", "req_id", rid, "model", c.cfg.Model, "expenses", len(expenses))

	body := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]any{
			{"role": "user", "content": BuildPrompt(expenses)},
		},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Errorw("advisor.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return FailureMessage
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Errorw("advisor.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return FailureMessage
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		c.log.Warnw("advisor.empty_response", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return NoAnalysisMessage
	}

	c.log.Infow("advisor.ok", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
	return strings.TrimSpace(cc.Choices[0].Message.Content)
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.log.Warnw("llm response body close error", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("llm status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
