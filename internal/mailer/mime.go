package mailer

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"
)

var (
	errNoRecipient = errors.New("mailer: at least one recipient required")
	errNoFrom      = errors.New("mailer: from address required")
	errNoSubject   = errors.New("mailer: subject required")
	errNoBody      = errors.New("mailer: text or html body required")
)

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), addr)
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// buildMIMEMessage renders e as an RFC 5322 message. Both bodies produce
// multipart/alternative.
func buildMIMEMessage(e Email, messageIDDomain string, now time.Time) (string, error) {
	if err := e.validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", randomHex(12), messageIDDomain))
	header("From", formatAddress(e.FromName, e.From))
	header("To", strings.Join(e.To, ", "))
	if len(e.Cc) > 0 {
		header("Cc", strings.Join(e.Cc, ", "))
	}
	header("Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	header("MIME-Version", "1.0")
	for k, v := range e.Headers {
		if k != "" && v != "" {
			header(k, v)
		}
	}

	part := func(contentType, body string) {
		header("Content-Type", contentType+"; charset=UTF-8")
		header("Content-Transfer-Encoding", "8bit")
		b.WriteString("\r\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\r\n")
		}
	}

	switch {
	case e.TextBody != "" && e.HTMLBody != "":
		boundary := "alt-" + randomHex(12)
		header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
		b.WriteString("\r\n")
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		part("text/plain", e.TextBody)
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		part("text/html", e.HTMLBody)
		fmt.Fprintf(&b, "--%s--\r\n", boundary)
	case e.HTMLBody != "":
		part("text/html", e.HTMLBody)
	default:
		part("text/plain", e.TextBody)
	}
	return b.String(), nil
}
