package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/config"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
)

func sample() Email {
	return Email{
		FromName: "Hello Crackers",
		From:     "orders@hellocrackers.in",
		To:       []string{"meena@example.com"},
		Subject:  "Order HC-251021-ABCDEF confirmed",
		TextBody: "Thanks for your order",
		HTMLBody: "<p>Thanks for your order</p>",
	}
}

func TestBuildMIMEMessageAlternative(t *testing.T) {
	raw, err := buildMIMEMessage(sample(), "example.test", time.Date(2025, 10, 21, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, raw, "From: Hello Crackers <orders@hellocrackers.in>\r\n")
	assert.Contains(t, raw, "To: meena@example.com\r\n")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	assert.Regexp(t, `Message-ID: <[0-9a-f]{24}@example\.test>`, raw)
}

func TestBuildMIMEMessageValidates(t *testing.T) {
	e := sample()
	e.To = nil
	_, err := buildMIMEMessage(e, "x", time.Now())
	assert.ErrorIs(t, err, errNoRecipient)

	e = sample()
	e.TextBody, e.HTMLBody = "", ""
	_, err = buildMIMEMessage(e, "x", time.Now())
	assert.ErrorIs(t, err, errNoBody)
}

func TestMailtrapSend(t *testing.T) {
	var got mailtrapPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewMailtrap(srv.URL, "tok").Send(context.Background(), sample()))
	assert.Equal(t, "orders@hellocrackers.in", got.From.Email)
	assert.Equal(t, "meena@example.com", got.To[0].Email)
	assert.Equal(t, "Transactional", got.Category)
}

func TestMailtrapErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["bad token"]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewMailtrap(srv.URL, "tok").Send(context.Background(), sample())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "401"))
}

func TestFromConfig(t *testing.T) {
	log := logging.Discard()

	s, err := FromConfig(config.MailConfig{Driver: "none"}, config.SMTPConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, s)

	s, err = FromConfig(config.MailConfig{Driver: "smtp"}, config.SMTPConfig{Host: "mail"}, log)
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, s)

	s, err = FromConfig(config.MailConfig{Driver: "mailtrap", MailtrapAPIURL: "u", MailtrapAPIToken: "t"}, config.SMTPConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, &Mailtrap{}, s)

	_, err = FromConfig(config.MailConfig{Driver: "pigeon"}, config.SMTPConfig{}, log)
	assert.Error(t, err)
}
