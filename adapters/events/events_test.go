package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoutEventRoundTrip(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := pubsub.Subscribe(ctx, LogoutTopic)
	require.NoError(t, err)

	pub := NewWatermillPublisher(pubsub)
	require.NoError(t, pub.PublishLogout(ctx, "0xabc", "jti-1"))

	select {
	case msg := <-msgs:
		msg.Ack()
		// Keyed by token ID so redelivery dedupes downstream.
		assert.Equal(t, "jti-1", msg.UUID)
		var ev LogoutEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, "0xabc", ev.Address)
		assert.Equal(t, "jti-1", ev.TokenID)
	case <-time.After(2 * time.Second):
		t.Fatal("no logout event arrived")
	}
}

func TestLogoutMessageIDFallback(t *testing.T) {
	msg, err := logoutMessage("0xabc", "")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.UUID)
}
