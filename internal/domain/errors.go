package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
	ErrStorage           = errors.New("storage failure")
)

// StorageError wraps a backend failure. errors.Is(err, ErrStorage) holds and
// the driver error stays reachable through Unwrap.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// StorageErr returns nil for a nil err so it can wrap call results directly.
func StorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
