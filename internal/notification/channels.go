package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atea-seattle/memberd/internal/gmail"
)

// GmailChannel adapts the Gmail API client to the Channel interface.
type GmailChannel struct {
	client *gmail.Client
}

// NewGmailChannel wraps a Gmail client as a delivery channel.
func NewGmailChannel(client *gmail.Client) *GmailChannel {
	return &GmailChannel{client: client}
}

func (c *GmailChannel) Send(ctx context.Context, to, subject, body string, opts SendOptions) (string, error) {
	return c.client.Send(ctx, to, subject, body, gmail.SendOptions{
		IsHTML:    opts.IsHTML,
		FromEmail: opts.FromEmail,
		FromName:  opts.FromName,
	})
}

// LogChannel records messages to a durable sink instead of sending them. It
// never touches live credentials, which is what makes it a safe fallback.
type LogChannel struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLogChannel creates a log channel writing to w, typically an append-only
// file.
func NewLogChannel(w io.Writer) *LogChannel {
	return &LogChannel{w: w, now: time.Now}
}

type loggedMessage struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	HTML    bool      `json:"html"`
	Body    string    `json:"body"`
}

func (c *LogChannel) Send(_ context.Context, to, subject, body string, opts SendOptions) (string, error) {
	id := "logged-" + uuid.NewString()

	line, err := json.Marshal(loggedMessage{
		ID:      id,
		Time:    c.now(),
		To:      to,
		Subject: subject,
		HTML:    opts.IsHTML,
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode logged message: %w", err)
	}
	line = append(line, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(line); err != nil {
		return "", fmt.Errorf("failed to record message: %w", err)
	}
	return id, nil
}
