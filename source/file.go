package source

import (
	"github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
)

// FileDef is one compilation unit as handed over by the parser.
type FileDef struct {
	Path    string
	Text    string
	Package common.FqName
	Imports []*tree.ImportDecl
	Decls   []tree.Decl
}
