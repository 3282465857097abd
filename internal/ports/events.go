package ports

import "context"

// Port: publishes domain events after their transaction has committed.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
