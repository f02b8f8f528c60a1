package graphtx

import "fmt"

type ErrorCode int

const (
	Unknown ErrorCode = iota
	// ErrInvariantViolation is returned by Commit when applying the write-set
	// would break an invariant on any touched node. Nothing gets applied.
	ErrInvariantViolation
	// ErrTransactionCompleted is returned when a committed or rolled back
	// transaction handle is used again.
	ErrTransactionCompleted
)

// Engine custom error.
type Error[T any] struct {
	Code     ErrorCode
	Err      error
	UserData T
}

func (e Error[T]) Error() string {
	return fmt.Sprintf("Error %d: %v, user data: %v", e.Code, e.Err, e.UserData)
}

func (e Error[T]) Unwrap() error {
	return e.Err
}
