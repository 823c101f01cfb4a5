package element

import "fmt"

// Error is a named framework error raised by construction and registration
// paths. Soft conditions (idempotent removes, unbinding an unset slot) are
// logged instead, never raised.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is matches errors by name, so callers can compare against the exported
// prototypes below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Name == e.Name
}

// Error prototypes for errors.Is comparisons.
var (
	ErrElementCreation = &Error{Name: "ElementCreationError"}
	ErrDuplicateHandle = &Error{Name: "DuplicateHandleError"}
	ErrInvalidCallback = &Error{Name: "InvalidCallbackError"}
	ErrNotContainer    = &Error{Name: "NotContainerError"}
	ErrTreeCycle       = &Error{Name: "TreeCycleError"}
)

// errElementCreation creates an ElementCreationError.
func errElementCreation(format string, args ...any) *Error {
	return &Error{Name: "ElementCreationError", Message: fmt.Sprintf(format, args...)}
}

// errDuplicateHandle creates a DuplicateHandleError.
func errDuplicateHandle(format string, args ...any) *Error {
	return &Error{Name: "DuplicateHandleError", Message: fmt.Sprintf(format, args...)}
}

// errInvalidCallback creates an InvalidCallbackError.
func errInvalidCallback(format string, args ...any) *Error {
	return &Error{Name: "InvalidCallbackError", Message: fmt.Sprintf(format, args...)}
}

// errNotContainer creates a NotContainerError.
func errNotContainer(format string, args ...any) *Error {
	return &Error{Name: "NotContainerError", Message: fmt.Sprintf(format, args...)}
}

// errTreeCycle creates a TreeCycleError.
func errTreeCycle(format string, args ...any) *Error {
	return &Error{Name: "TreeCycleError", Message: fmt.Sprintf(format, args...)}
}
