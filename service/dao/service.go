// Package dao defines the generic persistence contract shared by the
// engine's stores: confirmation records and journal records both live behind
// this interface so memory and filesystem backings stay interchangeable.
package dao

import (
	"context"
)

// Service is a generic keyed store. Load returns (nil, nil) when the key is
// absent; callers treat a missing entity as domain state (for example, a
// missing confirmation record means "not confirmed").
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
