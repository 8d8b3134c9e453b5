package feature

import (
	"errors"
	"fmt"
)

var (
	// ErrMisuse is the class of programmer errors: operating a cursor in a
	// state that does not allow the call. It is never caused by data or by
	// the backing store.
	ErrMisuse = errors.New("cursor misuse")

	// ErrCursorClosed is returned by any operation on a closed cursor.
	ErrCursorClosed = fmt.Errorf("%w: cursor is closed", ErrMisuse)

	// ErrNoRecord is returned by Next when no preceding HasNext reported a record.
	ErrNoRecord = fmt.Errorf("%w: next called without a pending record", ErrMisuse)

	// ErrNotPositioned is returned by Write or Remove before Next produced a record.
	ErrNotPositioned = fmt.Errorf("%w: cursor is not positioned on a record", ErrMisuse)
)

// StoreError reports a backing-store connectivity or protocol failure.
// The driver error is available via errors.Unwrap.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a StoreError; nil stays nil and an existing
// StoreError is returned unchanged.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// MappingError reports a record that cannot be encoded into, or decoded from,
// the store's native document form.
type MappingError struct {
	ID  string
	Err error
}

func (e *MappingError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("mapping: %v", e.Err)
	}
	return fmt.Sprintf("mapping %q: %v", e.ID, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// IsStoreError reports whether err is, or wraps, a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsMappingError reports whether err is, or wraps, a MappingError.
func IsMappingError(err error) bool {
	var me *MappingError
	return errors.As(err, &me)
}
