package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shilldao/herald/ports"
)

// LogoutTopic carries server-side logout notifications across instances.
const LogoutTopic = "herald.auth.logout"

// LogoutEvent is the revocation fan-out payload: each devserver instance
// that sees it treats the token as invalidated.
type LogoutEvent struct {
	Address string `json:"address"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher pushes logout events onto a watermill publisher
// (redisstream in production, gochannel in tests).
type WatermillPublisher struct {
	pub   message.Publisher
	topic string
}

func NewWatermillPublisher(pub message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{pub: pub, topic: LogoutTopic}
}

// PublishLogout announces that the refresh token with the given ID was
// revoked for the address.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address, tokenID string) error {
	msg, err := logoutMessage(address, tokenID)
	if err != nil {
		return err
	}
	if err := p.pub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish logout event: %w", err)
	}
	return nil
}

// logoutMessage keys the message by token ID so redelivery of the same
// revocation is idempotent downstream; anonymous logouts get a random ID.
func logoutMessage(address, tokenID string) (*message.Message, error) {
	payload, err := json.Marshal(LogoutEvent{Address: address, TokenID: tokenID})
	if err != nil {
		return nil, fmt.Errorf("marshal logout event: %w", err)
	}
	id := tokenID
	if id == "" {
		id = uuid.New().String()
	}
	return message.NewMessage(id, payload), nil
}
