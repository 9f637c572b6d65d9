package executors

import "fmt"

// NotFoundError is returned when a run targets a node that does not exist.
type NotFoundError struct {
	NodeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %q not found", e.NodeID)
}

// ConfigError is a precondition failure in the console configuration
// (missing settings, missing API key). Detected before any external call;
// nothing is mutated.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// ValidationError is a precondition failure in the user's input (empty
// prompt, missing file, nothing to post). Detected before dispatch; nothing
// is mutated.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// UnsupportedOperationError is returned for AI operations that have no
// executor behind them yet.
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %q is not supported yet", e.Operation)
}
