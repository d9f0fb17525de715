package executor

import (
	"context"
	"reflect"

	"github.com/viant/quorly/model/proposal"
)

// ProposalKey keys the proposal being dispatched.
var ProposalKey = KeyOf[*proposal.Proposal]()

// KeyOf returns the reflect.Type of the provided type
func KeyOf[T any]() reflect.Type {
	var a T
	return reflect.TypeOf(a)
}

// ContextValue returns the value of the provided type from the context
func ContextValue[T any](ctx context.Context) T {
	key := KeyOf[T]()
	if value := ctx.Value(key); value != nil {
		return value.(T)
	}
	var t T
	return t
}

// ContextWithProposal attaches the proposal under dispatch, so action
// handlers can read its id, value and timestamps.
func ContextWithProposal(ctx context.Context, p *proposal.Proposal) context.Context {
	return context.WithValue(ctx, ProposalKey, p)
}

// ProposalFromContext returns the proposal under dispatch, or nil when the
// handler is invoked outside a dispatch.
func ProposalFromContext(ctx context.Context) *proposal.Proposal {
	return ContextValue[*proposal.Proposal](ctx)
}
