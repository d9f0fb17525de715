// Package messaging defines the queue abstraction used to deliver journal
// records to subscribers. Implementations exist for in-memory delivery
// (service/messaging/memory) and filesystem backed delivery
// (service/messaging/fs).
package messaging

import (
	"context"
)

// Vendor identifies a queue implementation.
type Vendor string

const (
	// VendorMemory selects the in-process channel backed queue.
	VendorMemory Vendor = "memory"

	// VendorFS selects the filesystem backed queue.
	VendorFS Vendor = "fs"
)

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}

// QueueConfig defines standard configuration options for queue implementations
type QueueConfig struct {
	// MaxRetries specifies how many times a message can be redelivered
	MaxRetries int

	// RetryDelay specifies the time in milliseconds to wait before redelivery
	RetryDelay int

	// AdditionalConfig allows implementation-specific configurations
	AdditionalConfig map[string]interface{}
}
