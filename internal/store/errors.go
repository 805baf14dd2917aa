package store

import (
	"errors"
	"fmt"
)

var (
	ErrStorage  = errors.New("storage failure")
	ErrNotFound = errors.New("article not found")

	// errCorrupt marks a stored blob that no longer decodes. Writers treat
	// it as empty and overwrite it.
	errCorrupt = errors.New("corrupt blob")
)

// StorageError wraps a backend or (de)serialization failure.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
