package attrcallbacks

import (
	"errors"
	"fmt"
)

var (
	// ErrSaveRejected is matched by every veto raised by a before hook.
	ErrSaveRejected = errors.New("save rejected by before hook")

	// ErrHookFailed is joined with the error a hook returned.
	ErrHookFailed = errors.New("hook failed")

	// ErrNilRecord is returned when a lifecycle operation receives a nil record.
	ErrNilRecord = errors.New("record must not be nil")

	// ErrNilRegistry is returned when an interceptor is built without a registry.
	ErrNilRegistry = errors.New("hook registry must not be nil")

	ErrEmptyAttributeName   = errors.New("attribute name must not be empty")
	ErrNilHook              = errors.New("hook func must not be nil")
	ErrInvalidHookSignature = errors.New("hook method has an invalid signature")
	ErrRecordTypeMismatch   = errors.New("record type does not match the type the hooks were registered for")

	// ErrNotCollection is returned when a value cannot be converted to a sequence of elements.
	ErrNotCollection = errors.New("value is not collection-like")
)

// VetoError is returned when a before hook vetoes a save. It matches ErrSaveRejected.
type VetoError struct {
	Attribute string
	Hook      string
}

func (e *VetoError) Error() string {
	return fmt.Sprintf("%s: %s returned false for attribute %q", ErrSaveRejected, e.Hook, e.Attribute)
}

// Is reports whether target is ErrSaveRejected.
func (e *VetoError) Is(target error) bool {
	return target == ErrSaveRejected
}

// HookError wraps the error returned by a single hook invocation.
type HookError struct {
	Attribute string
	Hook      string
	Err       error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s for attribute %q: %v", e.Hook, e.Attribute, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// hookFault builds the error returned for a hook that failed; the hook's own error stays matchable.
func hookFault(kind HookKind, attribute string, err error) error {
	return errors.Join(ErrHookFailed, &HookError{Attribute: attribute, Hook: HookName(kind, attribute), Err: err})
}
