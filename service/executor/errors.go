package executor

import "errors"

var (
	// ErrInvalidTarget indicates a target selector not of the form service.method
	ErrInvalidTarget = errors.New("executor: invalid target")

	// ErrInvalidPayload indicates a payload the method input could not be built from
	ErrInvalidPayload = errors.New("executor: invalid payload")
)
