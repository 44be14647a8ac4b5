package providers

import "context"

// MessageDispatcher defines the interface for delivering a formatted message
// to a user on the chat platform. Delivery errors are reported, not retried.
type MessageDispatcher interface {
	// Send delivers the message and returns the platform message id
	Send(ctx context.Context, userID int64, text string) (string, error)
}
