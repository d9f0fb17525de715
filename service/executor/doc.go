// Package executor turns an approved proposal's target and payload into a
// typed call on a registered action service.  It is effectively a glue layer
// between the engine's state machine and the action implementations.
package executor
