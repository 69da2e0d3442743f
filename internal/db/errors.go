package db

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op identifies the store operation that failed.
type Op string

// Store operations.
const (
	OpGet  Op = "get"
	OpSet  Op = "set"
	OpPing Op = "ping"
)

// Error wraps a store failure with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("db: %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }
