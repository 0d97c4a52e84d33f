package notify

import (
	"context"
	"fmt"
	"time"

	"auction-hub/utils"

	"resty.dev/v3"
)

// WebhookSender delivers notifications to the voice agent's webhook
// endpoint, authenticated with a bearer credential.
type WebhookSender struct {
	client *resty.Client
	url    string
}

// NewWebhookSender creates a sender posting to the given endpoint.
func NewWebhookSender(url, apiKey string) *WebhookSender {
	client := resty.New().SetAuthToken(apiKey)
	return &WebhookSender{
		client: client,
		url:    url,
	}
}

// Send posts one notification for one session. The context bounds the
// request; callers decide the timeout.
func (w *WebhookSender) Send(ctx context.Context, sessionID, message string, payload map[string]any) error {
	body := map[string]any{
		"session_id": sessionID,
		"message":    message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"data":       payload,
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("send webhook to session %s: %w", sessionID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("send webhook to session %s: status %d", sessionID, resp.StatusCode())
	}

	utils.Info("webhook delivered", map[string]any{
		"session_id": sessionID,
		"status":     resp.StatusCode(),
	})
	return nil
}
