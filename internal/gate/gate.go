// Package gate marks a context as originating from an engine's own action
// dispatch. Registry mutations (owner add/remove/replace, threshold change)
// are refused unless the calling context carries the engine's token, so the
// only path to them is a proposal that cleared the confirmation threshold.
//
// The package is internal on purpose: code outside this module cannot mint
// an armed context, which is what makes the restriction enforceable.
package gate

import "context"

// Token identifies one engine instance. Tokens compare by pointer identity,
// so a context armed by one engine never authorises governance on another.
type Token struct{ _ byte }

// NewToken allocates a fresh engine identity.
func NewToken() *Token { return &Token{} }

type ctxKeyT struct{}

var ctxKey ctxKeyT

// Arm returns a context that authorises governance calls on the engine
// holding token. The engine arms the context only for the duration of a
// dispatch.
func Arm(ctx context.Context, token *Token) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, token)
}

// Armed reports whether ctx was armed with exactly this token.
func Armed(ctx context.Context, token *Token) bool {
	if ctx == nil || token == nil {
		return false
	}
	held, ok := ctx.Value(ctxKey).(*Token)
	return ok && held == token
}
