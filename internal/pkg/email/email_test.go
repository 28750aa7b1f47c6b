package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/mail.v2"
)

type flakyDialer struct {
	failures int
	calls    int
}

func (d *flakyDialer) DialAndSend(_ ...*mail.Message) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("421 service not available")
	}
	return nil
}

func newTestSMTPSender(d dialer) *smtpSender {
	return &smtpSender{
		cfg:     SMTPConfig{Host: "smtp.test", Port: 587, From: "no-reply@test", FromName: "HRIS"},
		dialer:  d,
		backoff: func(int) time.Duration { return time.Millisecond },
	}
}

func TestSMTPSender_RetriesThenSucceeds(t *testing.T) {
	d := &flakyDialer{failures: 2}
	s := newTestSMTPSender(d)

	id, err := s.Send(context.Background(), Message{To: "a@b.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, 3, d.calls)
	assert.Contains(t, id, "@smtp.test>")
}

func TestSMTPSender_GivesUp(t *testing.T) {
	d := &flakyDialer{failures: 10}
	s := newTestSMTPSender(d)

	_, err := s.Send(context.Background(), Message{To: "a@b.com"})
	assert.Error(t, err)
	assert.Equal(t, maxRetries, d.calls)
}

func TestSMTPSender_NotConfigured(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{}).Send(context.Background(), Message{To: "a@b.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGraphSender_Send(t *testing.T) {
	var got sendMailRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/users/sender@corp.com/sendMail", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("request-id", "req-42")
		w.WriteHeader(http.StatusAccepted)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewGraphSender(context.Background(), GraphConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		SenderUser:   "sender@corp.com",
		TokenURL:     srv.URL + "/token",
		BaseURL:      srv.URL,
	})

	id, err := s.Send(context.Background(), Message{To: "hr@corp.com", Subject: "New request", HTML: "<b>hi</b>"})
	require.NoError(t, err)
	assert.Equal(t, "req-42", id)
	assert.Equal(t, "New request", got.Message.Subject)
	assert.Equal(t, "HTML", got.Message.Body.ContentType)
	require.Len(t, got.Message.ToRecipients, 1)
	assert.Equal(t, "hr@corp.com", got.Message.ToRecipients[0].EmailAddress.Address)
}

func TestGraphSender_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/users/s/sendMail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"ErrorAccessDenied"}}`, http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewGraphSender(context.Background(), GraphConfig{
		ClientID: "c", ClientSecret: "s", SenderUser: "s",
		TokenURL: srv.URL + "/token", BaseURL: srv.URL,
	})

	_, err := s.Send(context.Background(), Message{To: "x@y.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ErrorAccessDenied")
}
