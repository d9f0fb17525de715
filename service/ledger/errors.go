package ledger

import "errors"

var (
	// ErrNotFound indicates the proposal id was never issued
	ErrNotFound = errors.New("ledger: proposal not found")

	// ErrAlreadyExecuted indicates the proposal's executed flag is set
	ErrAlreadyExecuted = errors.New("ledger: proposal already executed")

	// ErrAlreadyConfirmed indicates the party already holds a true record
	ErrAlreadyConfirmed = errors.New("ledger: already confirmed")

	// ErrNotConfirmed indicates the party holds no true record to revoke
	ErrNotConfirmed = errors.New("ledger: not confirmed")
)
