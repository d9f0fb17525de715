package board

import "errors"

var (
	// ErrInvalidParty indicates a null party identifier
	ErrInvalidParty = errors.New("board: invalid party")

	// ErrDuplicateParty indicates a repeated identifier in a member list
	ErrDuplicateParty = errors.New("board: duplicate party")

	// ErrNoOwners indicates an empty member list
	ErrNoOwners = errors.New("board: no owners")

	// ErrInvalidThreshold indicates a threshold below one or above the member count
	ErrInvalidThreshold = errors.New("board: invalid threshold")

	// ErrAlreadyAuthorized indicates the party is already a member
	ErrAlreadyAuthorized = errors.New("board: party already authorized")

	// ErrNotAuthorized indicates the party is not a member
	ErrNotAuthorized = errors.New("board: party not authorized")
)
