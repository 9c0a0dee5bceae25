package notification

import (
	"context"
	"log/slog"

	"github.com/atea-seattle/memberd/internal/domain"
)

// Channel identifiers reported to callers.
const (
	ChannelOAuthAPI       = "oauth-api"
	ChannelFallbackLogged = "fallback-logged"
)

// SendOptions adjusts a single delivery.
type SendOptions struct {
	IsHTML    bool
	FromEmail string
	FromName  string
}

// Result reports which channel carried the message. fallback-logged means the
// intent to send was durably recorded but no live delivery happened; callers
// should surface that to operators without failing the triggering workflow.
type Result struct {
	Channel   string
	MessageID string
}

// Channel is a single delivery path.
type Channel interface {
	Send(ctx context.Context, to, subject, body string, opts SendOptions) (string, error)
}

// Mailer attempts the primary channel and falls back to the secondary on any
// failure. Construct with NewMailer; a nil primary means the OAuth channel is
// not configured and every delivery goes straight to the fallback.
type Mailer struct {
	primary  Channel
	fallback Channel
	logger   *slog.Logger
}

// NewMailer creates a mailer. primary may be nil; fallback must not be.
func NewMailer(primary, fallback Channel, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{primary: primary, fallback: fallback, logger: logger}
}

// Deliver sends a message, preferring the primary channel. Primary failures
// are recovered locally by logging the message through the fallback; only a
// failure of both channels returns an error, a DeliveryError carrying both
// causes.
func (m *Mailer) Deliver(ctx context.Context, to, subject, body string, opts SendOptions) (*Result, error) {
	var primaryErr error

	if m.primary != nil {
		id, err := m.primary.Send(ctx, to, subject, body, opts)
		if err == nil {
			return &Result{Channel: ChannelOAuthAPI, MessageID: id}, nil
		}
		primaryErr = err
		m.logger.Warn("primary delivery channel failed, using fallback",
			"to", to, "error", err)
	}

	id, err := m.fallback.Send(ctx, to, subject, body, opts)
	if err != nil {
		return nil, &domain.DeliveryError{Primary: primaryErr, Fallback: err}
	}
	return &Result{Channel: ChannelFallbackLogged, MessageID: id}, nil
}
