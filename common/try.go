package common

import (
	"fmt"
	"runtime/debug"
)

// InternalError is a panic recovered by Try.
type InternalError struct {
	Value any
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Value)
}

func (e *InternalError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func Try[T any](f func() T) (result T, err error, stack string) {
	defer func() {
		if r := recover(); r != nil {
			err = &InternalError{Value: r}
			stack = string(debug.Stack())
		}
	}()
	return f(), nil, ""
}
