// Package notify delivers the simulated ticket email, SMS and cancellation
// messages.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"selambus/internal/utils"
)

type Kind string

const (
	KindEmail        Kind = "email"
	KindSMS          Kind = "sms"
	KindCancellation Kind = "cancellation"
)

type Notification struct {
	Kind      Kind   `json:"kind"`
	Reference string `json:"reference"`
	Recipient string `json:"recipient,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log only.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	utils.LogEventf("", "notify", string(n.Kind), "reference=%s recipient=%s msg=%s", n.Reference, n.Recipient, n.Message)
	return nil
}

const DefaultSubject = "selambus.notifications"

// NATSNotifier publishes each notification as JSON on <Subject>.<kind>.
type NATSNotifier struct {
	Conn    *nats.Conn
	Subject string
}

func (n NATSNotifier) Notify(ctx context.Context, msg Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	subject := n.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	if err := n.Conn.Publish(subject+"."+string(msg.Kind), data); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Kind, err)
	}
	return nil
}

// ConnectNATS dials url with reconnect handling.
func ConnectNATS(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("selambus"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Printf("[NATS] disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] reconnected to %s", nc.ConnectedUrl())
		}),
	}
	return nats.Connect(url, opts...)
}
