// Package board implements the owner registry: the set of parties that
// jointly control an engine, together with the confirmation threshold a
// proposal must reach before it may execute.
package board

import (
	"fmt"

	"github.com/viant/quorly/model/party"
)

// Board holds the authorized parties and the execution threshold. A board
// performs no locking of its own; the owning engine serializes access, and
// every mutation reaches it only through the engine's governance dispatch.
type Board struct {
	members  party.List
	required int
}

// New creates a board from the supplied members and threshold. The member
// list must be non-empty, free of duplicates and null identifiers, and the
// threshold must satisfy 1 <= required <= len(members).
func New(members []party.ID, required int) (*Board, error) {
	if len(members) == 0 {
		return nil, ErrNoOwners
	}
	if required < 1 || required > len(members) {
		return nil, fmt.Errorf("required %v of %v: %w", required, len(members), ErrInvalidThreshold)
	}
	result := &Board{
		members:  make(party.List, 0, len(members)),
		required: required,
	}
	for _, id := range members {
		if id.IsZero() {
			return nil, ErrInvalidParty
		}
		if result.members.Contains(id) {
			return nil, fmt.Errorf("%v: %w", id, ErrDuplicateParty)
		}
		result.members = append(result.members, id)
	}
	return result, nil
}

// Authorized reports whether id is a current member.
func (b *Board) Authorized(id party.ID) bool {
	return b.members.Contains(id)
}

// Owners returns a copy of the member list. Order is insertion order except
// after removals, which relocate the last member into the vacated slot.
func (b *Board) Owners() []party.ID {
	return b.members.Clone()
}

// Threshold returns the number of confirmations required to execute a proposal.
func (b *Board) Threshold() int {
	return b.required
}

// Size returns the current member count.
func (b *Board) Size() int {
	return len(b.members)
}

// AddOwner admits a new member.
func (b *Board) AddOwner(id party.ID) error {
	if id.IsZero() {
		return ErrInvalidParty
	}
	if b.members.Contains(id) {
		return fmt.Errorf("%v: %w", id, ErrAlreadyAuthorized)
	}
	b.members = append(b.members, id)
	return nil
}

// RemoveOwner removes a member using swap-with-last semantics. Removing the
// sole member fails, the board never empties. When the member count drops
// below the threshold, the threshold lowers to the new count.
func (b *Board) RemoveOwner(id party.ID) error {
	index := b.members.Index(id)
	if index == -1 {
		return fmt.Errorf("%v: %w", id, ErrNotAuthorized)
	}
	if len(b.members) == 1 {
		return fmt.Errorf("cannot remove last owner %v: %w", id, ErrNoOwners)
	}
	b.members = b.members.Remove(index)
	if b.required > len(b.members) {
		b.required = len(b.members)
	}
	return nil
}

// ReplaceOwner substitutes newID for oldID in place, leaving the threshold
// and every other member untouched.
func (b *Board) ReplaceOwner(oldID, newID party.ID) error {
	index := b.members.Index(oldID)
	if index == -1 {
		return fmt.Errorf("%v: %w", oldID, ErrNotAuthorized)
	}
	if newID.IsZero() {
		return ErrInvalidParty
	}
	if b.members.Contains(newID) {
		return fmt.Errorf("%v: %w", newID, ErrAlreadyAuthorized)
	}
	b.members[index] = newID
	return nil
}

// SetThreshold changes the number of confirmations required to execute.
func (b *Board) SetThreshold(required int) error {
	if required < 1 || required > len(b.members) {
		return fmt.Errorf("required %v of %v: %w", required, len(b.members), ErrInvalidThreshold)
	}
	b.required = required
	return nil
}
