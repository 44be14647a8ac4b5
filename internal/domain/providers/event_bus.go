package providers

import (
	"context"
	"fmt"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to slot events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.SlotEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SlotEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelSlotUpdates is the channel carrying every surfaced slot
	EventChannelSlotUpdates = "slots:updates"

	// EventChannelUserPrefix is the prefix for per-user channels
	EventChannelUserPrefix = "slots:user:"
)

// GetUserChannel returns the channel name for a specific user
func GetUserChannel(userID int64) string {
	return fmt.Sprintf("%s%d", EventChannelUserPrefix, userID)
}
