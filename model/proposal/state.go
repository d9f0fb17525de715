package proposal

// State represents the lifecycle state of a proposal.
type State string

const (
	// StatePending accepts confirmations, revocations and execution attempts.
	StatePending State = "pending"

	// StateExecuted is terminal; no operation ever succeeds on an executed
	// proposal again.
	StateExecuted State = "executed"
)

// IsExecuted reports whether the state is terminal.
func (s State) IsExecuted() bool { return s == StateExecuted }
