package tools

import "fmt"

// NotFoundError indicates tools/call named a tool that is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// InvalidParamsError indicates tool arguments that fail validation or
// decoding.
type InvalidParamsError struct {
	Reason string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid parameters: %s", e.Reason)
}

// AutomationError wraps a browser-automation collaborator failure. The
// wrapped error keeps enough detail for diagnostics without handing the
// peer raw internals.
type AutomationError struct {
	Err error
}

func (e *AutomationError) Error() string {
	return fmt.Sprintf("automation error: %v", e.Err)
}

func (e *AutomationError) Unwrap() error { return e.Err }
