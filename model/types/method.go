package types

import (
	"context"
	"reflect"
	"strings"
)

type Signatures []Signature

// Lookup returns the signature with the given name (case-insensitive), or
// nil when the service does not expose it.
func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if strings.EqualFold(sig.Name, name) {
			return sig
		}
	}
	return nil
}

// Signature describes one dispatchable method: its name and the Go types the
// payload is converted into and out of.
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
}

// Executable is a function that can be dispatched. Input and output are
// pointers to the types declared in the method's Signature.
type Executable func(ctx context.Context, input, output interface{}) error
