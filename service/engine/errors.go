package engine

import (
	"errors"

	"github.com/viant/quorly/service/board"
	"github.com/viant/quorly/service/ledger"
)

var (
	// ErrThresholdNotMet indicates the proposal's confirmation count was
	// below the board threshold at the moment of the execute call
	ErrThresholdNotMet = errors.New("engine: threshold not met")

	// ErrForbidden indicates a governance mutation reached from outside the
	// engine's own dispatch path
	ErrForbidden = errors.New("engine: forbidden")

	// ErrExecutionFailed wraps the dispatch failure of an executed proposal
	ErrExecutionFailed = errors.New("engine: execution failed")
)

// Sentinels of the underlying services, re-exported so callers can match the
// full failure taxonomy without importing every subsystem package.
var (
	ErrNotAuthorized     = board.ErrNotAuthorized
	ErrInvalidParty      = board.ErrInvalidParty
	ErrDuplicateParty    = board.ErrDuplicateParty
	ErrAlreadyAuthorized = board.ErrAlreadyAuthorized
	ErrNoOwners          = board.ErrNoOwners
	ErrInvalidThreshold  = board.ErrInvalidThreshold

	ErrNotFound         = ledger.ErrNotFound
	ErrAlreadyExecuted  = ledger.ErrAlreadyExecuted
	ErrAlreadyConfirmed = ledger.ErrAlreadyConfirmed
	ErrNotConfirmed     = ledger.ErrNotConfirmed
)
