package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultAPIBase = "https://api.telegram.org"

// Client talks to the Telegram Bot API. It implements the distribution
// engine's Transport contract: SendMessage plus the error classification the
// engine branches on.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
}

type Config struct {
	BotToken string
	APIBase  string
	Timeout  time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		token:   cfg.BotToken,
		apiBase: strings.TrimRight(cfg.APIBase, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Parameters struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// SendMessage delivers an HTML-formatted message to a chat and returns the
// message id as the delivery receipt.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (string, error) {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to build telegram request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "telegram request failed")
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "failed to decode telegram response")
	}

	if !body.OK {
		return "", classifyError(resp.StatusCode, &body)
	}

	return strconv.FormatInt(body.Result.MessageID, 10), nil
}

func classifyError(status int, body *apiResponse) error {
	desc := body.Description
	switch {
	case status == http.StatusTooManyRequests || body.ErrorCode == 429:
		return &RateLimitedError{RetryAfter: body.Parameters.RetryAfter, Description: desc}
	case isUnreachableDescription(status, body.ErrorCode, desc):
		return &UnreachableError{Description: desc}
	default:
		return fmt.Errorf("telegram error %d: %s", body.ErrorCode, desc)
	}
}

// isUnreachableDescription matches the Bot API responses that mean the chat
// can never be delivered to again, as opposed to a transient failure.
func isUnreachableDescription(status, code int, desc string) bool {
	if status != http.StatusForbidden && code != 403 && status != http.StatusBadRequest && code != 400 {
		return false
	}
	desc = strings.ToLower(desc)
	for _, marker := range []string{
		"bot was blocked by the user",
		"user is deactivated",
		"chat not found",
		"bot was kicked",
	} {
		if strings.Contains(desc, marker) {
			return true
		}
	}
	return false
}

// UnreachableError means the recipient can no longer be delivered to.
type UnreachableError struct {
	Description string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("recipient unreachable: %s", e.Description)
}

// RateLimitedError means the whole channel is throttled.
type RateLimitedError struct {
	RetryAfter  int // seconds, as reported by the API
	Description string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (retry after %ds): %s", e.RetryAfter, e.Description)
}

// IsUnreachable reports whether err is the "recipient unreachable" class.
func IsUnreachable(err error) bool {
	var target *UnreachableError
	return errors.As(err, &target)
}

// IsRateLimited reports whether err is the rate-limit class.
func IsRateLimited(err error) bool {
	var target *RateLimitedError
	return errors.As(err, &target)
}

// Classification methods satisfying the distribution Transport contract.
func (c *Client) IsUnreachable(err error) bool { return IsUnreachable(err) }
func (c *Client) IsRateLimited(err error) bool { return IsRateLimited(err) }
