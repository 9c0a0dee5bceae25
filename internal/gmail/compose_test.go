package gmail

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestCompose_RoundTrip(t *testing.T) {
	body := "<html><body><p>Welcome aboard, José!</p></body></html>"
	raw := Compose("member@example.com", "noreply@example.org", "ATEA Seattle", "Welcome", body, true)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not unpadded base64url: %v", err)
	}

	headers, gotBody, found := strings.Cut(string(decoded), "\r\n\r\n")
	if !found {
		t.Fatal("missing blank line between headers and body")
	}
	if gotBody != body {
		t.Errorf("body = %q, want byte-identical %q", gotBody, body)
	}

	wantHeaders := []string{
		"To: member@example.com",
		"From: ATEA Seattle <noreply@example.org>",
		"Subject: Welcome",
		"Content-Type: text/html; charset=utf-8",
		"MIME-Version: 1.0",
	}
	gotHeaders := strings.Split(headers, "\r\n")
	if len(gotHeaders) != len(wantHeaders) {
		t.Fatalf("header count = %d, want %d: %q", len(gotHeaders), len(wantHeaders), headers)
	}
	for i, want := range wantHeaders {
		if gotHeaders[i] != want {
			t.Errorf("header[%d] = %q, want %q", i, gotHeaders[i], want)
		}
	}
}

func TestCompose_PlainTextWithoutFromName(t *testing.T) {
	raw := Compose("a@b.c", "from@b.c", "", "Hi", "plain body", false)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	msg := string(decoded)

	if !strings.Contains(msg, "From: from@b.c\r\n") {
		t.Errorf("bare from address not used: %q", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/plain; charset=utf-8\r\n") {
		t.Errorf("plain text content type missing: %q", msg)
	}
}

func TestCompose_URLSafeAlphabet(t *testing.T) {
	// A body with bytes that force +, / and padding under standard base64.
	body := strings.Repeat("\xfb\xff\xfe???>>>", 64) + "x"
	raw := Compose("a@b.c", "f@b.c", "N", "S", body, false)

	if strings.ContainsAny(raw, "+/=") {
		t.Errorf("raw message contains non-URL-safe characters")
	}
}

func TestCompose_Deterministic(t *testing.T) {
	a := Compose("a@b.c", "f@b.c", "N", "S", "body", true)
	b := Compose("a@b.c", "f@b.c", "N", "S", "body", true)
	if a != b {
		t.Error("Compose is not deterministic for identical inputs")
	}
}
