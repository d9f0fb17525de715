// Package policy provides a simple, optional target filter that can be
// attached to proposal submission via context. It is deliberately decoupled
// from the rest of quorly so that using it is entirely opt-in – engines that
// do not embed the Policy in their context keep the original "every
// well-formed target is proposable" behaviour.

package policy

import (
	"context"
	"errors"
	"strings"
)

// ErrTargetBlocked indicates the policy rejected the proposal's target.
var ErrTargetBlocked = errors.New("policy: target blocked")

// Policy restricts which targets the parties may propose.
//
//   - BlockList rejects listed targets outright and wins over AllowList.
//   - AllowList, when non-empty, restricts proposals to the listed targets.
//
// A nil *Policy means "every target is proposable" and is therefore the
// zero-cost default.
type Policy struct {
	AllowList []string // whitelist (empty => all)
	BlockList []string // blacklist
}

// Config represents the declarative, serialisable form of a Policy.
type Config struct {
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
}

// FromConfig converts a stored Config back to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// IsAllowed evaluates AllowList / BlockList. Both lists match by exact
// string comparison (case-insensitive) of the fully-qualified target name
// "service.method".
func (p *Policy) IsAllowed(target string) bool {
	if p == nil {
		return true
	}

	normalized := strings.ToLower(target)

	// BlockList has priority.
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return false
		}
	}

	// AllowList – if empty everything is allowed, otherwise only the listed
	// entries.
	if len(p.AllowList) == 0 {
		return true
	}

	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}

	return false
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy, or nil when none is attached.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
