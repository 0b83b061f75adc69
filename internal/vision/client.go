// Package vision names images by sending them to an OpenAI-compatible
// chat-completion endpoint with a vision-capable model.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/halvard/ansuz/internal/apperr"
	"github.com/halvard/ansuz/internal/naming"
)

const (
	nameMaxTokens = 100
	testMaxTokens = 5
	maxErrBody    = 200
)

// Known failure signatures, each still matching apperr.ErrRemote so
// generic handling keeps working while surfaces can special-case them.
var (
	ErrUnauthorized = fmt.Errorf("unauthorized: %w", apperr.ErrRemote)
	ErrRateLimited  = fmt.Errorf("rate limited: %w", apperr.ErrRemote)
)

// Config holds the naming-service connection settings.
type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	Prompt   string
	Compress bool
}

// Client issues naming requests against one configured endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	engine naming.Engine
	log    *slog.Logger
}

// New creates a Client. logger may be nil.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 60 * time.Second},
		engine: naming.Engine{},
		log:    logger,
	}
}

// NormalizeEndpoint rewrites endpoint so it ends in /v1/chat/completions:
// a bare base URL gets the whole suffix, a .../v1 URL gets
// /chat/completions appended. Trailing slashes are stripped first.
func NormalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return endpoint
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(endpoint, "/v1/chat/completions") {
		return endpoint
	}
	if strings.HasSuffix(endpoint, "/v1") {
		return endpoint + "/chat/completions"
	}
	return endpoint + "/v1/chat/completions"
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateName asks the model to describe the image as a file name and
// returns the sanitized slug (no extension). existingImages is offered to
// the prompt so names in one document stay consistent.
func (c *Client) GenerateName(ctx context.Context, data []byte, existingImages []string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("vision: api key: %w", apperr.ErrConfig)
	}
	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("vision: endpoint: %w", apperr.ErrConfig)
	}

	payload := data
	if c.cfg.Compress {
		if small, err := Downscale(data); err != nil {
			// Compression failure must never abort the naming request.
			c.log.Debug("vision: downscale failed, sending original bytes",
				slog.String("error", err.Error()))
		} else {
			c.log.Debug("vision: image downscaled",
				slog.Int("original_bytes", len(data)),
				slog.Int("payload_bytes", len(small)))
			payload = small
		}
	}

	prompt := c.engine.Render(c.cfg.Prompt, naming.Context{ExistingImages: existingImages})
	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL: fmt.Sprintf("data:image/%s;base64,%s",
						SniffFormat(payload), base64.StdEncoding.EncodeToString(payload)),
				}},
			},
		}},
		MaxTokens: nameMaxTokens,
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("vision: invalid JSON response: %w", apperr.ErrRemote)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("vision: no choices in response: %w", apperr.ErrEmptyResult)
	}

	name := naming.Slugify(naming.StripWrapping(parsed.Choices[0].Message.Content))
	if name == "" {
		return "", fmt.Errorf("vision: model returned no usable name: %w", apperr.ErrEmptyResult)
	}
	return name, nil
}

// TestConnection sends a minimal text-only prompt and reports success by
// HTTP status alone.
func (c *Client) TestConnection(ctx context.Context) bool {
	if c.cfg.APIKey == "" || c.cfg.Endpoint == "" {
		return false
	}
	body := chatRequest{
		Model:     c.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: "test"}},
		MaxTokens: testMaxTokens,
	}
	_, err := c.post(ctx, body)
	if err != nil {
		c.log.Debug("vision: connection test failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// post issues the chat-completion request and returns the raw body of a
// 200 response. Non-200 statuses are classified into the apperr taxonomy.
func (c *Client) post(ctx context.Context, body chatRequest) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("vision: encode request: %w", err)
	}

	endpoint := NormalizeEndpoint(c.cfg.Endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: %v: %w", err, apperr.ErrNetwork)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vision: read response: %w", apperr.ErrNetwork)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// classifyStatus maps a non-200 reply to an error whose text prefers the
// JSON error.message field and truncates raw bodies for diagnostics.
func classifyStatus(status int, body []byte) error {
	msg := fmt.Sprintf("status %d", status)
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	} else if len(body) > 0 {
		text := string(body)
		if len(text) > maxErrBody {
			text = text[:maxErrBody]
		}
		msg = fmt.Sprintf("%d: %s", status, text)
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("vision: %s: %w", msg, ErrUnauthorized)
	case http.StatusTooManyRequests:
		return fmt.Errorf("vision: %s: %w", msg, ErrRateLimited)
	default:
		return fmt.Errorf("vision: %s: %w", msg, apperr.ErrRemote)
	}
}
