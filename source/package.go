package source

import (
	. "github.com/garciat/kinfer/common"
)

// Package groups the files that share a package header. Top-level
// declarations of all its files live in one package scope.
type Package struct {
	Name         FqName
	Dependencies map[FqName]struct{}
	Files        []*FileDef
}

func NewPackage(name FqName) *Package {
	return &Package{
		Name:         name,
		Dependencies: make(map[FqName]struct{}),
		Files:        nil,
	}
}

func (p *Package) AddFile(file *FileDef) {
	p.Files = append(p.Files, file)
	for _, imp := range file.Imports {
		dep := imp.Path
		if !imp.All {
			dep = imp.Path.Parent()
		}
		if dep != p.Name {
			p.AddDependency(dep)
		}
	}
}

func (p *Package) AddDependency(name FqName) {
	p.Dependencies[name] = struct{}{}
}
