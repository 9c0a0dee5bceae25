package gmail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/atea-seattle/memberd/internal/domain"
)

// SendOptions adjusts a single send. Zero values fall back to the configured
// defaults.
type SendOptions struct {
	IsHTML    bool
	FromEmail string
	FromName  string
}

// Client sends mail through the Gmail API using tokens from a TokenManager.
type Client struct {
	config     Config
	tokens     *TokenManager
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Gmail API client.
func NewClient(config Config, tokens *TokenManager, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config:     config,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type sendRequest struct {
	Raw string `json:"raw"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers a message through the Gmail API and returns the provider
// message ID.
func (c *Client) Send(ctx context.Context, to, subject, body string, opts SendOptions) (string, error) {
	if to == "" || subject == "" || body == "" {
		return "", errors.New("missing required fields: to, subject, or body")
	}

	fromEmail := opts.FromEmail
	if fromEmail == "" {
		fromEmail = c.config.FromEmail
	}
	fromName := opts.FromName
	if fromName == "" {
		fromName = c.config.FromName
	}

	accessToken, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	raw := Compose(to, fromEmail, fromName, subject, body, opts.IsHTML)
	payload, err := json.Marshal(sendRequest{Raw: raw})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.sendURL(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gmail send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrProviderRejected, resp.StatusCode, respBody)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode send response: %w", err)
	}

	c.logger.Info("email sent via gmail api", "to", to, "message_id", result.ID)
	return result.ID, nil
}
