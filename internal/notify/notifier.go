package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	model "auction-hub/internal/models"
	"auction-hub/utils"
)

// SessionSource supplies the sessions currently listening for events.
type SessionSource interface {
	Active() []model.Session
}

// Sender delivers one formatted message to one listener.
type Sender interface {
	Send(ctx context.Context, sessionID, message string, payload map[string]any) error
}

// Notifier fans auction events out to every active session. Deliveries run
// asynchronously with a bounded per-listener timeout; a slow or failing
// listener never blocks the others or the operation that raised the event.
type Notifier struct {
	sessions SessionSource
	sender   Sender
	timeout  time.Duration
	inflight sync.WaitGroup
	failures atomic.Int64
}

// NewNotifier creates a fan-out notifier. A nil sender disables delivery.
func NewNotifier(sessions SessionSource, sender Sender, timeout time.Duration) *Notifier {
	return &Notifier{
		sessions: sessions,
		sender:   sender,
		timeout:  timeout,
	}
}

// Publish dispatches the event to all active sessions and returns without
// waiting for deliveries to finish. Failures are logged and counted, never
// returned.
func (n *Notifier) Publish(event Event) {
	if n.sender == nil {
		return
	}

	message := event.Message()
	payload := event.Payload()

	for _, sess := range n.sessions.Active() {
		n.inflight.Add(1)
		go func(sessionID string) {
			defer n.inflight.Done()

			ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
			defer cancel()

			if err := n.sender.Send(ctx, sessionID, message, payload); err != nil {
				n.failures.Add(1)
				utils.Error("failed to notify session", map[string]any{
					"session_id": sessionID,
					"event":      string(event.Kind),
					"error":      err.Error(),
				})
				return
			}
			utils.Debug("notified session", map[string]any{
				"session_id": sessionID,
				"event":      string(event.Kind),
			})
		}(sess.SessionID)
	}
}

// Wait blocks until all dispatched deliveries have completed. Used on
// shutdown and in tests.
func (n *Notifier) Wait() {
	n.inflight.Wait()
}

// Failures returns the number of deliveries that have failed so far.
func (n *Notifier) Failures() int64 {
	return n.failures.Load()
}
