package check

import (
	"fmt"

	"github.com/garciat/kinfer/tree"
)

type TypeMismatchError struct {
	Expected tree.Type
	Found    tree.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %v, found %v", e.Expected, e.Found)
}

// InfiniteTypeError is the occurs-check failure, e.g. T = List<T>.
type InfiniteTypeError struct {
	Var  *tree.TypeVar
	Type tree.Type
}

func (e *InfiniteTypeError) Error() string {
	return fmt.Sprintf("infinite type: %v = %v", e.Var, e.Type)
}

type BoundViolationError struct {
	Var   *tree.TypeVar
	Type  tree.Type
	Bound tree.Type
}

func (e *BoundViolationError) Error() string {
	return fmt.Sprintf("type argument %v for %v is not within its bound %v", e.Type, e.Var.Hint, e.Bound)
}
