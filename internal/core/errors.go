package core

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when an actor lacks the role an operation
// requires. It is raised at the contract boundary, before any store call.
var ErrForbidden = errors.New("operation not permitted for role")

// ValidationError reports a precondition failure detected before any write
// was attempted. Field names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError reports a backend write failure. The caller owns any retry;
// no write in this system retries automatically.
type StoreError struct {
	Op         string // "create", "update", "delete", "decrement"
	Collection string
	Cause      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Collection, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// WorkflowError reports a saga step that failed after earlier steps had
// already committed. Compensated tells whether the compensating delete of
// the partially written state succeeded; when it is false, SaleID points at
// the orphaned record an operator must repair.
type WorkflowError struct {
	Step        string
	SaleID      string
	Compensated bool
	Cause       error
}

func (e *WorkflowError) Error() string {
	if e.Compensated {
		return fmt.Sprintf("sale workflow failed at %s (compensated): %v", e.Step, e.Cause)
	}
	return fmt.Sprintf("sale workflow failed at %s, sale %s left orphaned: %v", e.Step, e.SaleID, e.Cause)
}

func (e *WorkflowError) Unwrap() error { return e.Cause }
