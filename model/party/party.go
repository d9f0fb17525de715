// Package party defines the identifier type for the parties that share
// control of an engine. Identifiers are opaque strings; the engine never
// interprets them beyond equality.
package party

// ID identifies a single party. The zero value is the null identifier and is
// never admitted to a board.
type ID string

// Zero is the null identifier.
const Zero ID = ""

// IsZero reports whether the identifier is the null identifier.
func (i ID) IsZero() bool { return i == Zero }

// String returns the identifier as a plain string.
func (i ID) String() string { return string(i) }

// List is an ordered collection of party identifiers.
type List []ID

// Contains reports whether id is present in the list.
func (l List) Contains(id ID) bool { return l.Index(id) != -1 }

// Index returns the position of id in the list, or -1 when absent.
func (l List) Index(id ID) int {
	for i, candidate := range l {
		if candidate == id {
			return i
		}
	}
	return -1
}

// Remove drops the element at position i by moving the last element into its
// slot. Order is not preserved. The shortened list is returned.
func (l List) Remove(i int) List {
	last := len(l) - 1
	l[i] = l[last]
	l[last] = Zero
	return l[:last]
}

// Clone returns an independent copy of the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Strings returns the identifiers as plain strings, preserving order.
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, id := range l {
		out[i] = string(id)
	}
	return out
}

// IDs converts plain strings to a list of identifiers, preserving order.
func IDs(values []string) List {
	out := make(List, len(values))
	for i, value := range values {
		out[i] = ID(value)
	}
	return out
}
