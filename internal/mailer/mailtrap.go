package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Mailtrap posts mail to the Mailtrap sending (or sandbox) API.
type Mailtrap struct {
	APIURL string
	Token  string
	Client *http.Client
}

func NewMailtrap(apiURL, token string) *Mailtrap {
	return &Mailtrap{APIURL: apiURL, Token: token, Client: &http.Client{Timeout: 10 * time.Second}}
}

type mailtrapAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailtrapPayload struct {
	From     mailtrapAddress   `json:"from"`
	To       []mailtrapAddress `json:"to"`
	Cc       []mailtrapAddress `json:"cc,omitempty"`
	Bcc      []mailtrapAddress `json:"bcc,omitempty"`
	Subject  string            `json:"subject"`
	Text     string            `json:"text,omitempty"`
	HTML     string            `json:"html,omitempty"`
	Category string            `json:"category,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

func addresses(in []string) []mailtrapAddress {
	out := make([]mailtrapAddress, 0, len(in))
	for _, a := range in {
		out = append(out, mailtrapAddress{Email: a})
	}
	return out
}

func (m *Mailtrap) Send(ctx context.Context, e Email) error {
	if m.APIURL == "" || m.Token == "" {
		return fmt.Errorf("mailtrap credentials not configured")
	}
	if err := e.validate(); err != nil {
		return err
	}

	category := e.Category
	if category == "" {
		category = "Transactional"
	}
	body, err := json.Marshal(mailtrapPayload{
		From:     mailtrapAddress{Email: e.From, Name: e.FromName},
		To:       addresses(e.To),
		Cc:       addresses(e.Cc),
		Bcc:      addresses(e.Bcc),
		Subject:  e.Subject,
		Text:     e.TextBody,
		HTML:     e.HTMLBody,
		Category: category,
		Headers:  e.Headers,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.Token)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("mailtrap: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("mailtrap API error: %d %s", res.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
