package symbols

import (
	"errors"
	"fmt"
	"strings"

	. "github.com/garciat/kinfer/common"
)

var ErrFrozen = errors.New("symbol table is frozen")

type DuplicateSymbolError struct {
	Symbol   *Symbol
	Existing *Symbol
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("conflicting declarations: %v and %v", e.Symbol, e.Existing)
}

type CyclicInheritanceError struct {
	Cycle []Identifier
}

func (e *CyclicInheritanceError) Error() string {
	return fmt.Sprintf("cyclic inheritance: %s", strings.Join(MapSlice(e.Cycle, Identifier.String), " -> "))
}

type UnresolvedImportError struct {
	Path FqName
}

func (e *UnresolvedImportError) Error() string {
	return fmt.Sprintf("unresolved import: %v", e.Path)
}
