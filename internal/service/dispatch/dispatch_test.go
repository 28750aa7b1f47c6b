package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/channel"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/email"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/fcm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	email    *channel.EmailProfile
	gateway  *channel.WhatsAppGateway
	telegram *channel.TelegramSettings
	err      error
}

func (f *fakeSettings) GetActiveEmailProfile(context.Context) (channel.EmailProfile, error) {
	if f.err != nil {
		return channel.EmailProfile{}, f.err
	}
	if f.email == nil {
		return channel.EmailProfile{}, channel.ErrNoActiveProfile
	}
	return *f.email, nil
}

func (f *fakeSettings) SaveEmailProfile(context.Context, channel.EmailProfile) error { return nil }

func (f *fakeSettings) GetActiveWhatsAppGateway(context.Context) (channel.WhatsAppGateway, error) {
	if f.err != nil {
		return channel.WhatsAppGateway{}, f.err
	}
	if f.gateway == nil {
		return channel.WhatsAppGateway{}, channel.ErrNoActiveProfile
	}
	return *f.gateway, nil
}

func (f *fakeSettings) SaveWhatsAppGateway(context.Context, channel.WhatsAppGateway) error { return nil }

func (f *fakeSettings) GetTelegramSettings(context.Context) (channel.TelegramSettings, error) {
	if f.err != nil {
		return channel.TelegramSettings{}, f.err
	}
	if f.telegram == nil {
		return channel.TelegramSettings{}, channel.ErrNoActiveProfile
	}
	return *f.telegram, nil
}

func (f *fakeSettings) SaveTelegramSettings(context.Context, channel.TelegramSettings) error {
	return nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
	fail map[string]bool
}

func (r *recordingSender) Send(_ context.Context, msg email.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[msg.To] {
		return "", errors.New("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return "<id-" + msg.To + ">", nil
}

var testMessage = notify.Message{
	Event:    notification.TypeReconciliationRequested,
	Rendered: template.Rendered{Subject: "New request", Body: "Bob needs review"},
	Data:     map[string]string{"reconciliation_id": "R1"},
}

func TestFanOut_IsolatesFailuresAndPanics(t *testing.T) {
	got := fanOut(context.Background(), template.ChannelEmail, 2, []string{"a", "b", "c"}, func(_ context.Context, to string) (string, error) {
		switch to {
		case "b":
			return "", errors.New("boom")
		case "c":
			panic("bad target")
		}
		return "id-" + to, nil
	})

	require.Len(t, got, 3)
	assert.True(t, got[0].Success)
	assert.Equal(t, "id-a", got[0].MessageID)
	assert.False(t, got[1].Success)
	assert.Equal(t, "boom", got[1].Error)
	assert.False(t, got[2].Success)
	assert.Contains(t, got[2].Error, "panic")
}

func TestEmailDispatcher_UsesActiveProfile(t *testing.T) {
	sender := &recordingSender{fail: map[string]bool{"b@x.com": true}}
	settings := &fakeSettings{email: &channel.EmailProfile{Name: "primary", Provider: channel.EmailProviderSMTP, Host: "smtp.x.com"}}

	d := NewEmailDispatcher(settings, email.SMTPConfig{}, time.Minute, 4).(*emailDispatcher)
	var built channel.EmailProfile
	d.build = func(p channel.EmailProfile) (email.Sender, error) {
		built = p
		return sender, nil
	}

	assert.Equal(t, []string{"a@x.com"}, d.Targets(notify.RecipientSet{Emails: []string{"a@x.com"}, Phones: []string{"+1"}}))

	got := d.Dispatch(context.Background(), []string{"a@x.com", "b@x.com"}, testMessage)
	require.Len(t, got, 2)
	assert.True(t, got[0].Success)
	assert.Equal(t, "<id-a@x.com>", got[0].MessageID)
	assert.False(t, got[1].Success)
	assert.Equal(t, "primary", built.Name)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "New request", sender.sent[0].Subject)
	assert.Equal(t, "Bob needs review", sender.sent[0].HTML)
}

func TestEmailDispatcher_FallsBackWhenNoActiveProfile(t *testing.T) {
	fallback := &recordingSender{}
	d := NewEmailDispatcher(&fakeSettings{}, email.SMTPConfig{}, time.Minute, 4).(*emailDispatcher)
	d.fallback = fallback

	got := d.Dispatch(context.Background(), []string{"a@x.com"}, testMessage)
	require.Len(t, got, 1)
	assert.True(t, got[0].Success)
	assert.Len(t, fallback.sent, 1)
}

func TestEmailDispatcher_UnconfiguredSkips(t *testing.T) {
	d := NewEmailDispatcher(&fakeSettings{}, email.SMTPConfig{}, time.Minute, 4)
	assert.Empty(t, d.Dispatch(context.Background(), []string{"a@x.com"}, testMessage))
}

func TestSenderForProfile_RejectsUnknownProvider(t *testing.T) {
	_, err := senderForProfile(channel.EmailProfile{Name: "x", Provider: "carrier-pigeon"})
	assert.ErrorIs(t, err, channel.ErrInvalidEmailProvider)

	s, err := senderForProfile(channel.EmailProfile{Provider: channel.EmailProviderGraph, ClientID: "c", FromAddress: "hr@x.com"})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func newGateway(t *testing.T, failFor string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				To   string `json:"to"`
				Text string `json:"text"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		to := req.Messages[0].To
		w.Header().Set("Content-Type", "application/json")
		if to == failFor {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"success":false,"message":"upstream down"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"results": []map[string]string{{"to": to, "message_id": "wa-" + to, "status": "queued"}},
		})
	}))
}

func TestWhatsAppDispatcher_OneFailureDoesNotStopOthers(t *testing.T) {
	srv := newGateway(t, "+62822")
	defer srv.Close()

	settings := &fakeSettings{gateway: &channel.WhatsAppGateway{BaseURL: srv.URL, APIKey: "k"}}
	d := NewWhatsAppDispatcher(settings, time.Minute, 2)

	got := d.Dispatch(context.Background(), []string{"+62811", "+62822", "+62833"}, testMessage)
	require.Len(t, got, 3)
	assert.True(t, got[0].Success)
	assert.Equal(t, "wa-+62811", got[0].MessageID)
	assert.False(t, got[1].Success)
	assert.NotEmpty(t, got[1].Error)
	assert.True(t, got[2].Success)
}

func TestWhatsAppDispatcher_NoGatewaySkips(t *testing.T) {
	d := NewWhatsAppDispatcher(&fakeSettings{}, time.Minute, 2)
	assert.Empty(t, d.Dispatch(context.Background(), []string{"+62811"}, testMessage))
}

func TestTelegramDispatcher_PostsOneAggregatedMessage(t *testing.T) {
	var calls int
	var text string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/botT0K/sendMessage", r.URL.Path)
		var req struct {
			ChatID string `json:"chat_id"`
			Text   string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		text = req.Text
		assert.Equal(t, "-100", req.ChatID)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":77}}`))
	}))
	defer srv.Close()

	settings := &fakeSettings{telegram: &channel.TelegramSettings{BotToken: "T0K", GroupChatID: "-100", Enabled: true}}
	d := NewTelegramDispatcher(settings, channel.TelegramSettings{}, time.Minute).(*telegramDispatcher)
	d.baseURL = srv.URL

	targets := d.Targets(notify.RecipientSet{Emails: []string{"a@x.com", "b@x.com"}})
	require.Equal(t, []string{"group"}, targets)

	got := d.Dispatch(context.Background(), targets, testMessage)
	require.Len(t, got, 1)
	assert.True(t, got[0].Success)
	assert.Equal(t, "77", got[0].MessageID)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "*New request*\n\nBob needs review", text)
}

func TestTelegramDispatcher_DisabledAndEmpty(t *testing.T) {
	settings := &fakeSettings{telegram: &channel.TelegramSettings{BotToken: "T", GroupChatID: "-1", Enabled: false}}
	d := NewTelegramDispatcher(settings, channel.TelegramSettings{BotToken: "env", GroupChatID: "-2", Enabled: true}, time.Minute)

	assert.Nil(t, d.Targets(notify.RecipientSet{}))
	assert.Empty(t, d.Dispatch(context.Background(), []string{"group"}, testMessage))
}

type fakeInbox struct {
	notification.Service
	mu     sync.Mutex
	queued []notification.CreateNotificationRequest
	fail   map[string]bool
}

func (f *fakeInbox) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[req.RecipientID] {
		return errors.New("inbox unavailable")
	}
	f.queued = append(f.queued, req)
	return nil
}

type fakeDevices struct {
	devices []notification.Device
	deleted []string
}

func (f *fakeDevices) Register(context.Context, notification.Device) error { return nil }

func (f *fakeDevices) GetTokensByUserIDs(_ context.Context, userIDs []string) ([]notification.Device, error) {
	var out []notification.Device
	for _, d := range f.devices {
		for _, id := range userIDs {
			if d.UserID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (f *fakeDevices) DeleteByTokens(_ context.Context, tokens []string) error {
	f.deleted = append(f.deleted, tokens...)
	return nil
}

type fakePush struct {
	result fcm.Result
	got    []string
}

func (f *fakePush) Send(_ context.Context, tokens []string, _ fcm.Notification) fcm.Result {
	f.got = tokens
	return f.result
}

func TestPushDispatcher_InboxAndDevices(t *testing.T) {
	inbox := &fakeInbox{fail: map[string]bool{"u2": true}}
	devices := &fakeDevices{devices: []notification.Device{
		{UserID: "u1", Token: "t1"},
		{UserID: "u2", Token: "t2"},
		{UserID: "u3", Token: "t3"},
	}}
	push := &fakePush{result: fcm.Result{
		Sent:         1,
		MessageIDs:   map[string]string{"t1": "m1"},
		Failed:       map[string]error{"t2": errors.New("unregistered"), "t3": errors.New("unregistered")},
		Unregistered: []string{"t2", "t3"},
	}}

	d := NewPushDispatcher(inbox, devices, push)
	got := d.Dispatch(context.Background(), []string{"u1", "u2", "u3"}, testMessage)

	require.Len(t, got, 3)
	assert.True(t, got[0].Success)
	assert.False(t, got[0].Queued, "a device accepted the push")
	assert.Equal(t, "m1", got[0].MessageID)
	assert.False(t, got[1].Success, "inbox failed and no device accepted")
	assert.False(t, got[1].Queued)
	assert.Contains(t, got[1].Error, "inbox")
	assert.True(t, got[2].Success, "inbox entry counts as delivered")
	assert.True(t, got[2].Queued, "only the inbox writer accepted it")

	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, push.got)
	assert.ElementsMatch(t, []string{"t2", "t3"}, devices.deleted)
	require.Len(t, inbox.queued, 2)
	assert.Equal(t, notification.TypeReconciliationRequested, inbox.queued[0].Type)
	assert.Equal(t, "R1", inbox.queued[0].Data["reconciliation_id"])
}

func TestPushDispatcher_WithoutFCM(t *testing.T) {
	inbox := &fakeInbox{}
	d := NewPushDispatcher(inbox, &fakeDevices{}, nil)

	got := d.Dispatch(context.Background(), []string{"u1"}, testMessage)
	require.Len(t, got, 1)
	assert.True(t, got[0].Success)
	assert.True(t, got[0].Queued)
	assert.Equal(t, []string{"u1"}, d.Targets(notify.RecipientSet{UserIDs: []string{"u1"}}))
}
