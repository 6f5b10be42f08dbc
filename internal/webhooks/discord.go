package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/phantomlabs/phantom-backend/pkg/config"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
)

const (
	responseBodyReadLimit int64 = 1024

	// Embed accent colors.
	ColorNewProduct = 0x2ECC71
	ColorRestock    = 0x3498DB
	ColorPriceDrop  = 0xE67E22
)

var errWebhookURLRequired = errors.New("webhook url is required")

// Message is a Discord webhook payload.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed is a single Discord rich embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is a name/value pair rendered inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the small print under an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Sender delivers webhook messages to a destination URL.
type Sender interface {
	Send(ctx context.Context, webhookURL string, msg Message) error
}

// Client posts messages to Discord webhooks with bounded retries.
type Client struct {
	httpClient *http.Client
	defaultURL string
	maxRetries int
	sleep      func(time.Duration)
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func withSleep(sleep func(time.Duration)) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient builds a webhook client from config.
func NewClient(cfg config.WebhookConfig, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		defaultURL: strings.TrimSpace(cfg.DiscordURL),
		maxRetries: cfg.MaxRetries,
		sleep:      time.Sleep,
	}
	if client.httpClient.Timeout <= 0 {
		client.httpClient.Timeout = 10 * time.Second
	}
	if client.maxRetries < 0 {
		client.maxRetries = 0
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client
}

// SendDefault posts to the URL configured at startup.
func (c *Client) SendDefault(ctx context.Context, msg Message) error {
	return c.Send(ctx, c.defaultURL, msg)
}

// Send posts the message to the given webhook URL. It retries on 429 and
// 5xx responses up to the configured retry limit, honoring Retry-After.
func (c *Client) Send(ctx context.Context, webhookURL string, msg Message) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "webhook client not configured")
	}
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errWebhookURLRequired, "send webhook")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal webhook payload")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "send webhook")
			default:
			}
		}

		retryAfter, err := c.post(ctx, webhookURL, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		if retryAfter < 0 {
			break
		}
		if attempt < c.maxRetries {
			c.sleep(retryAfter)
		}
	}

	return pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "send webhook")
}

// post performs one delivery attempt. A negative retry delay means the
// failure is permanent and should not be retried.
func (c *Client) post(ctx context.Context, webhookURL string, payload []byte) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return -1, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Second, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return parseRetryAfter(resp.Header.Get("Retry-After")), statusError(resp)
	case resp.StatusCode >= 500:
		return time.Second, statusError(resp)
	default:
		return -1, statusError(resp)
	}
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func parseRetryAfter(header string) time.Duration {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || seconds <= 0 {
		return time.Second
	}
	return time.Duration(seconds * float64(time.Second))
}
