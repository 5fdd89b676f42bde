package ports

import (
	"context"

	"github.com/shilldao/herald/core"
)

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishLogout(ctx context.Context, address string, tokenID string) error
}

// SessionEvents publishes client session lifecycle transitions so callers can
// observe login/logout without polling the coordinator.
type SessionEvents interface {
	PublishLogin(ctx context.Context, address string, role core.Role) error
	PublishLogout(ctx context.Context, address string) error
}
