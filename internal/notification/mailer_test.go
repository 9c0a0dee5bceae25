package notification

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/atea-seattle/memberd/internal/domain"
)

type stubChannel struct {
	id    string
	err   error
	calls int
	last  struct {
		to, subject, body string
		opts              SendOptions
	}
}

func (s *stubChannel) Send(_ context.Context, to, subject, body string, opts SendOptions) (string, error) {
	s.calls++
	s.last.to, s.last.subject, s.last.body, s.last.opts = to, subject, body, opts
	return s.id, s.err
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMailer_PrimarySucceeds(t *testing.T) {
	primary := &stubChannel{id: "msg-1"}
	fallback := &stubChannel{id: "logged-x"}
	m := NewMailer(primary, fallback, nil)

	res, err := m.Deliver(context.Background(), "a@b.c", "s", "body", SendOptions{IsHTML: true})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if res.Channel != ChannelOAuthAPI {
		t.Errorf("channel = %q, want %q", res.Channel, ChannelOAuthAPI)
	}
	if res.MessageID != "msg-1" {
		t.Errorf("message id = %q, want msg-1", res.MessageID)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestMailer_PrimaryFailureFallsBack(t *testing.T) {
	primary := &stubChannel{err: domain.ErrRefreshFailed}
	fallback := &stubChannel{id: "logged-1"}
	m := NewMailer(primary, fallback, nil)

	res, err := m.Deliver(context.Background(), "a@b.c", "s", "body", SendOptions{})
	if err != nil {
		t.Fatalf("Deliver() error = %v, refresh failure must not surface", err)
	}
	if res.Channel != ChannelFallbackLogged {
		t.Errorf("channel = %q, want %q", res.Channel, ChannelFallbackLogged)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback called %d times, want 1", fallback.calls)
	}
}

func TestMailer_UnconfiguredPrimarySkipsToFallback(t *testing.T) {
	fallback := &stubChannel{id: "logged-1"}
	m := NewMailer(nil, fallback, nil)

	res, err := m.Deliver(context.Background(), "a@b.c", "s", "body", SendOptions{})
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if res.Channel != ChannelFallbackLogged {
		t.Errorf("channel = %q, want %q", res.Channel, ChannelFallbackLogged)
	}
}

func TestMailer_BothChannelsFail(t *testing.T) {
	primaryErr := domain.ErrProviderRejected
	fallbackErr := errors.New("log sink unavailable")
	m := NewMailer(&stubChannel{err: primaryErr}, &stubChannel{err: fallbackErr}, nil)

	_, err := m.Deliver(context.Background(), "a@b.c", "s", "body", SendOptions{})
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("Deliver() error = %v, want ErrDeliveryFailed", err)
	}

	var dErr *domain.DeliveryError
	if !errors.As(err, &dErr) {
		t.Fatalf("error is not a *DeliveryError: %v", err)
	}
	if !errors.Is(dErr.Primary, primaryErr) {
		t.Errorf("primary cause = %v, want %v", dErr.Primary, primaryErr)
	}
	if !errors.Is(dErr.Fallback, fallbackErr) {
		t.Errorf("fallback cause = %v, want %v", dErr.Fallback, fallbackErr)
	}
}

func TestLogChannel_RecordsMessage(t *testing.T) {
	var buf bytes.Buffer
	ch := NewLogChannel(&buf)

	id, err := ch.Send(context.Background(), "a@b.c", "Welcome", "<p>hi</p>", SendOptions{IsHTML: true})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.HasPrefix(id, "logged-") {
		t.Errorf("id = %q, want logged- prefix", id)
	}

	line, err := bufio.NewReader(&buf).ReadBytes('\n')
	if err != nil {
		t.Fatalf("reading logged line: %v", err)
	}
	var msg loggedMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		t.Fatalf("logged line is not JSON: %v", err)
	}
	if msg.To != "a@b.c" || msg.Subject != "Welcome" || !msg.HTML {
		t.Errorf("logged message = %+v", msg)
	}
}

func TestLogChannel_SinkFailure(t *testing.T) {
	ch := NewLogChannel(failingWriter{})
	if _, err := ch.Send(context.Background(), "a@b.c", "s", "b", SendOptions{}); err == nil {
		t.Error("Send() with failing sink should error")
	}
}

func TestInvitationEmail_ContainsEssentials(t *testing.T) {
	expires := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	body := InvitationEmail("Jamie", "https://app.example.org/member-signup/tok", "ATEA0007", "ATEA Admin", expires)

	for _, want := range []string{"Jamie", "https://app.example.org/member-signup/tok", "ATEA0007", "ATEA Admin", "August 15, 2025"} {
		if !strings.Contains(body, want) {
			t.Errorf("invitation body missing %q", want)
		}
	}
}
