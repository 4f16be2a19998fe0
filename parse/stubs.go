package parse

import (
	"fmt"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/source"
	"gopkg.in/yaml.v3"
)

// StubFile lists declarations without bodies, grouped by package:
//
//	packages:
//	  - package: kotlin
//	    declarations:
//	      - class Array<T> { fun iterator(): Iterator<T> }
type StubFile struct {
	Packages []StubPackage `yaml:"packages"`
}

type StubPackage struct {
	Name         string      `yaml:"package"`
	Imports      []string    `yaml:"imports"`
	Declarations []yaml.Node `yaml:"declarations"`
}

// DecodeStubs parses a stub file into one compilation unit per package.
// Errors point at the line of the offending declaration.
func DecodeStubs(path string, data []byte) ([]*source.FileDef, error) {
	var stubs StubFile
	if err := yaml.Unmarshal(data, &stubs); err != nil {
		return nil, fmt.Errorf("failed to decode stubs %v: %w", path, err)
	}

	var out []*source.FileDef
	for _, pkg := range stubs.Packages {
		if pkg.Name == "" {
			return nil, fmt.Errorf("%v: stub package without a name", path)
		}
		file := &source.FileDef{
			Path:    fmt.Sprintf("%s[%s]", path, pkg.Name),
			Package: FqName(pkg.Name),
		}
		for _, imp := range pkg.Imports {
			decl, err := ParseImport(file.Path, imp)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", path, err)
			}
			file.Imports = append(file.Imports, decl)
		}
		for _, node := range pkg.Declarations {
			if node.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%v:%d: declaration must be a string", path, node.Line)
			}
			decl, err := ParseDecl(file.Path, node.Value)
			if err != nil {
				return nil, fmt.Errorf("%v:%d: %w", path, node.Line, err)
			}
			file.Decls = append(file.Decls, decl)
		}
		out = append(out, file)
	}
	return out, nil
}
