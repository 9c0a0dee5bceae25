package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Compose builds the transport envelope the Gmail API expects: RFC 5322
// headers, a blank line, the body, all base64url-encoded without padding.
// Deterministic and free of I/O.
func Compose(to, fromEmail, fromName, subject, body string, isHTML bool) string {
	from := fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}

	contentType := "text/plain; charset=utf-8"
	if isHTML {
		contentType = "text/html; charset=utf-8"
	}

	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.RawURLEncoding.EncodeToString([]byte(b.String()))
}
