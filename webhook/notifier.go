// Package webhook delivers creation events to an external automation
// endpoint. Delivery is fire-and-forget: the caller's request never waits on
// it and never sees its failures.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

const notifyTimeout = 5 * time.Second

type Notifier struct {
	url    string
	secret string
	client *http.Client
}

// NewNotifier returns a notifier posting to url. An empty url yields a
// notifier that logs and skips every event.
func NewNotifier(url, secret string) *Notifier {
	return &Notifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: notifyTimeout},
	}
}

// Notify dispatches the event on a detached goroutine and returns
// immediately. Errors are logged, never surfaced.
func (n *Notifier) Notify(event string, data map[string]any) {
	if n == nil || n.url == "" {
		log.Printf("Webhook URL not configured, skipping event %s", event)
		return
	}
	go n.send(event, data)
}

func (n *Notifier) send(event string, data map[string]any) {
	payload, err := json.Marshal(map[string]any{
		"event":     event,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"source":    "smartattend-api",
	})
	if err != nil {
		log.Printf("Webhook payload error for %s: %v", event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Webhook request error for %s: %v", event, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", event)
	if n.secret != "" {
		req.Header.Set("X-Webhook-Secret", n.secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("Webhook delivery error for %s: %v", event, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("Webhook for %s returned %d", event, resp.StatusCode)
	}
}
