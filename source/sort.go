package source

import (
	"github.com/garciat/kinfer/algos"
	"github.com/garciat/kinfer/common"
)

// TopologicalSort orders packages so that imported packages come first.
func TopologicalSort(packages map[common.FqName]*Package) []*Package {
	return algos.TopologicalSort(packages, func(pkg *Package) map[common.FqName]struct{} {
		return pkg.Dependencies
	})
}

// FindImportCycle returns the package names along an import cycle, or nil.
func FindImportCycle(packages map[common.FqName]*Package) []common.FqName {
	return algos.FindCycle(packages, func(pkg *Package) map[common.FqName]struct{} {
		return pkg.Dependencies
	})
}
