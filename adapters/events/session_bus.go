package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// SessionTopic carries client session lifecycle transitions.
const SessionTopic = "herald.session"

// SessionEvent is one session state transition.
type SessionEvent struct {
	Kind    string    `json:"kind"` // "login" | "logout"
	Address string    `json:"address"`
	Role    core.Role `json:"role,omitempty"`
}

// SessionBus is an in-process pub/sub for session transitions. UI layers
// subscribe instead of polling the coordinator.
type SessionBus struct {
	pubsub *gochannel.GoChannel
}

// NewSessionBus creates a session bus backed by watermill's gochannel pub/sub.
func NewSessionBus(log *slog.Logger) *SessionBus {
	return &SessionBus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 16},
			watermill.NewSlogLogger(log),
		),
	}
}

// Subscribe returns a stream of session events. The stream ends when ctx is
// cancelled or the bus closes.
func (b *SessionBus) Subscribe(ctx context.Context) (<-chan SessionEvent, error) {
	msgs, err := b.pubsub.Subscribe(ctx, SessionTopic)
	if err != nil {
		return nil, fmt.Errorf("subscribe session events: %w", err)
	}

	out := make(chan SessionEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev SessionEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// PublishLogin announces a successful login.
func (b *SessionBus) PublishLogin(ctx context.Context, address string, role core.Role) error {
	return b.publish(SessionEvent{Kind: "login", Address: address, Role: role})
}

// PublishLogout announces a logout.
func (b *SessionBus) PublishLogout(ctx context.Context, address string) error {
	return b.publish(SessionEvent{Kind: "logout", Address: address})
}

func (b *SessionBus) publish(ev SessionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.pubsub.Publish(SessionTopic, message.NewMessage(uuid.New().String(), payload))
}

// Close shuts the bus down, ending all subscriptions.
func (b *SessionBus) Close() error {
	return b.pubsub.Close()
}

var _ ports.SessionEvents = (*SessionBus)(nil)
