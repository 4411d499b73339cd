package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoheirhassoun/Telegram-bot/internal/bot"
	"github.com/zoheirhassoun/Telegram-bot/internal/config"
	"github.com/zoheirhassoun/Telegram-bot/internal/web/middleware"
)

type fakeQueue struct {
	mu   sync.Mutex
	msgs []bot.Message
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, m bot.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, m)
	return nil
}

func (q *fakeQueue) Status() bot.DispatcherStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	return bot.DispatcherStatus{Pending: len(q.msgs), Queued: len(q.msgs), QueueSize: 10}
}

func testConfig() config.WebhookConfig {
	return config.WebhookConfig{
		Host:         "127.0.0.1",
		Port:         0,
		Path:         "/telegram/webhook",
		SecretToken:  "s3cret",
		MaxBodyBytes: 1 << 10,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}
}

const textUpdate = `{"update_id":7,"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"ann"}}`

func post(t *testing.T, s *Server, body, secret string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(middleware.SecretTokenHeader, secret)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Update(t *testing.T) {
	q := &fakeQueue{}
	s := NewServer(testConfig(), q)

	rec := post(t, s, textUpdate, "s3cret")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, q.msgs, 1)
	assert.Equal(t, bot.Message{UpdateID: 7, ChatID: 42, Text: "ann"}, q.msgs[0])
}

func TestServer_UpdateRejected(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		secret string
		queue  *fakeQueue
		want   int
	}{
		{"missing secret", textUpdate, "", &fakeQueue{}, http.StatusUnauthorized},
		{"wrong secret", textUpdate, "nope", &fakeQueue{}, http.StatusForbidden},
		{"malformed", `{"update_id":`, "s3cret", &fakeQueue{}, http.StatusBadRequest},
		{"too large", `{"update_id":1,"x":"` + strings.Repeat("a", 2048) + `"}`, "s3cret", &fakeQueue{}, http.StatusRequestEntityTooLarge},
		{"queue full", textUpdate, "s3cret", &fakeQueue{err: bot.ErrQueueFull}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(testConfig(), tt.queue)
			rec := post(t, s, tt.body, tt.secret)

			assert.Equal(t, tt.want, rec.Code)
			assert.Empty(t, tt.queue.msgs)
		})
	}
}

func TestServer_UpdateWithoutMessage(t *testing.T) {
	q := &fakeQueue{}
	s := NewServer(testConfig(), q)

	rec := post(t, s, `{"update_id":8,"edited_message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"x"}}`, "s3cret")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, q.msgs)
}

func TestServer_NoSecretConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.SecretToken = ""
	q := &fakeQueue{}

	rec := post(t, NewServer(cfg, q), textUpdate, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, q.msgs, 1)
}

func TestServer_Health(t *testing.T) {
	q := &fakeQueue{msgs: []bot.Message{{UpdateID: 1}}}
	s := NewServer(testConfig(), q)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 1, got.Queue.Pending)
	assert.Equal(t, 10, got.Queue.QueueSize)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	q := &fakeQueue{}
	s := NewServer(testConfig(), q)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	req, err := http.NewRequest(http.MethodPost, "http://"+ln.Addr().String()+"/telegram/webhook", strings.NewReader(textUpdate))
	require.NoError(t, err)
	req.Header.Set(middleware.SecretTokenHeader, "s3cret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
	assert.Len(t, q.msgs, 1)
}
