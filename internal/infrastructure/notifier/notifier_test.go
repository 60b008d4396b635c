package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoNotifier_Send(t *testing.T) {
	var got brevoEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	n := NewBrevoNotifier(srv.URL, "key-123", "no-reply@market.local", "Campus Market", time.Second)
	ok := n.Send(context.Background(), "seller@campus.edu", "Delivery code", "<p>123456</p>")

	assert.True(t, ok)
	assert.Equal(t, "Delivery code", got.Subject)
	assert.Equal(t, "no-reply@market.local", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "seller@campus.edu", got.To[0].Email)
}

func TestBrevoNotifier_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewBrevoNotifier(srv.URL, "bad", "a@b.c", "", time.Second)
	assert.False(t, n.Send(context.Background(), "x@y.z", "s", "b"))
	assert.False(t, n.Send(context.Background(), "", "s", "b"))

	down := NewBrevoNotifier("http://127.0.0.1:1", "k", "a@b.c", "", 100*time.Millisecond)
	assert.False(t, down.Send(context.Background(), "x@y.z", "s", "b"))
}

func TestLogNotifier(t *testing.T) {
	assert.True(t, NewLogNotifier().Send(context.Background(), "x@y.z", "s", "b"))
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	delay time.Duration
	ok    bool
}

func (r *recordingSender) Send(ctx context.Context, to, subject, body string) bool {
	time.Sleep(r.delay)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to)
	return r.ok
}

func TestAsync_DoesNotBlock(t *testing.T) {
	rec := &recordingSender{delay: 50 * time.Millisecond, ok: false}
	a := NewAsync(rec, time.Second)

	start := time.Now()
	assert.True(t, a.Send(context.Background(), "one@x.y", "s", "b"))
	assert.True(t, a.Send(context.Background(), "two@x.y", "s", "b"))
	assert.Less(t, time.Since(start), 40*time.Millisecond)

	a.Wait()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.ElementsMatch(t, []string{"one@x.y", "two@x.y"}, rec.sent)
}
