// Package notify publishes build and deploy outcome events to NATS so other
// tooling (dashboards, chat bots) can react to mesh changes.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/storefront-tools/meshbuild/internal/config"
)

// Event is the JSON payload published for each finished run.
type Event struct {
	RunID       string    `json:"runId"`
	Kind        string    `json:"kind"` // build|deploy
	Environment string    `json:"environment"`
	Success     bool      `json:"success"`
	Warning     bool      `json:"warning,omitempty"`
	Outcome     string    `json:"outcome"`
	At          time.Time `json:"at"`
}

// Notifier publishes run events.
type Notifier interface {
	Publish(event Event) error
	Close()
}

// NoopNotifier drops all events. Used when notifications are disabled.
type NoopNotifier struct{}

func (NoopNotifier) Publish(Event) error { return nil }
func (NoopNotifier) Close()              {}

// NATSNotifier publishes run events to a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// New returns a notifier for the given configuration. A nil or disabled
// configuration yields a NoopNotifier; connection failures are reported so
// the caller can decide whether to continue without notifications.
func New(cfg *config.NotificationsConfig) (Notifier, error) {
	if cfg == nil || !cfg.Enabled {
		return NoopNotifier{}, nil
	}

	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("meshbuild"),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "meshbuild.runs"
	}

	slog.Info("Notifications enabled", "url", cfg.NATSURL, "subject", subject)
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Publish sends one event. Publishing is fire-and-forget: a notification
// failure never fails the run it describes.
func (n *NATSNotifier) Publish(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close flushes and drops the connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		_ = n.conn.Flush()
		n.conn.Close()
	}
}
