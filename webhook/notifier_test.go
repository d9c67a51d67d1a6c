package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyDeliversEvent(t *testing.T) {
	received := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- body
		received <- r
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "hunter2")
	n.Notify("attendance.created", map[string]any{"attendanceId": "att-1"})

	select {
	case r := <-received:
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "attendance.created", r.Header.Get("X-Webhook-Event"))
		assert.Equal(t, "hunter2", r.Header.Get("X-Webhook-Secret"))
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
	}

	var payload struct {
		Event     string         `json:"event"`
		Data      map[string]any `json:"data"`
		Timestamp string         `json:"timestamp"`
		Source    string         `json:"source"`
	}
	require.NoError(t, json.Unmarshal(<-bodies, &payload))
	assert.Equal(t, "attendance.created", payload.Event)
	assert.Equal(t, "att-1", payload.Data["attendanceId"])
	assert.Equal(t, "smartattend-api", payload.Source)
	assert.NotEmpty(t, payload.Timestamp)
}

func TestNotifyWithoutURLIsNoOp(t *testing.T) {
	n := NewNotifier("", "")
	// Must not panic or block.
	n.Notify("attendance.created", map[string]any{"attendanceId": "att-1"})
}

func TestNotifySwallowsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "")
	// Failure is logged, never surfaced.
	n.Notify("attendance.created", nil)
	time.Sleep(100 * time.Millisecond)
}
