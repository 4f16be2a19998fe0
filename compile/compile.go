package compile

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/garciat/kinfer/check"
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/files"
	"github.com/garciat/kinfer/parse"
	"github.com/garciat/kinfer/prelude"
	"github.com/garciat/kinfer/source"
	"github.com/garciat/kinfer/symbols"
)

// CompilationUnit is one checking session: a set of source files checked
// against the prelude and optional extra stubs. Its symbol table lives only
// as long as the unit.
type CompilationUnit struct {
	finder  files.Finder
	parser  parse.Parser
	Workers int
	Stubs   []*source.FileDef
	Files   []*source.FileDef
}

func NewCompilationUnit(workers int) *CompilationUnit {
	return &CompilationUnit{
		finder:  files.NewFinder(),
		parser:  parse.NewParser(),
		Workers: max(workers, 1),
	}
}

// AddPaths adds files and the source files found under directories.
func (u *CompilationUnit) AddPaths(paths ...string) error {
	found, err := u.finder.Find(paths...)
	if err != nil {
		return err
	}
	for _, path := range found {
		if err := u.AddFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (u *CompilationUnit) AddFile(path string) error {
	file, err := u.parser.ParseFile(path)
	if err != nil {
		return err
	}
	u.LoadFile(file)
	return nil
}

func (u *CompilationUnit) AddSource(path, text string) error {
	file, err := u.parser.ParseSource(path, text)
	if err != nil {
		return err
	}
	u.LoadFile(file)
	return nil
}

func (u *CompilationUnit) LoadFile(file *source.FileDef) {
	check.CheckerPrintf("loading file %v\n", file.Path)
	u.Files = append(u.Files, file)
}

// AddStubs layers a stub file over the prelude.
func (u *CompilationUnit) AddStubs(path string) error {
	stubs, err := prelude.ReadStubs(path)
	if err != nil {
		return err
	}
	u.Stubs = append(u.Stubs, stubs...)
	return nil
}

// FileResult holds the diagnostics of one file in emission order:
// declaration diagnostics first, then those of the bodies. Err is set when
// checking the file failed internally; Stack has the trace.
type FileResult struct {
	File        *source.FileDef
	Diagnostics []diag.Diagnostic
	Err         error
	Stack       string
}

func (r *FileResult) HasErrors() bool {
	return r.Err != nil || diag.HasErrors(r.Diagnostics)
}

// Compile runs the declaration pass on a single goroutine, freezes the
// table and then checks the files in parallel. Results follow the order in
// which files were added.
func (u *CompilationUnit) Compile(ctx context.Context) ([]*FileResult, error) {
	table, err := prelude.NewTable(u.Stubs...)
	if err != nil {
		return nil, err
	}

	check.CheckerPrintf("=== Declarations ===\n")
	defs, err := check.NewDefiner(table).DefineFiles(u.DeclarationOrder())
	if err != nil {
		return nil, fmt.Errorf("declaration pass failed: %w", err)
	}
	table.Freeze()

	check.CheckerPrintf("=== Bodies ===\n")
	results := make([]*FileResult, len(u.Files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.Workers)
	for i, file := range u.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(table, defs, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(table *symbols.Table, defs *check.Definitions, file *source.FileDef) *FileResult {
	reporter := diag.NewReporter()
	reporter.ReportAll(defs.Diagnostics[file])

	_, err, stack := Try(func() int {
		check.NewChecker(table, defs.FileScopes[file], reporter).CheckFile(file, defs)
		return 0
	})
	return &FileResult{
		File:        file,
		Diagnostics: reporter.Drain(),
		Err:         err,
		Stack:       stack,
	}
}

// DeclarationOrder puts the files of imported packages first. Packages that
// import each other keep the order of their names.
func (u *CompilationUnit) DeclarationOrder() []*source.FileDef {
	packages := map[FqName]*source.Package{}
	for _, file := range u.Files {
		pkg, ok := packages[file.Package]
		if !ok {
			pkg = source.NewPackage(file.Package)
			packages[file.Package] = pkg
		}
		pkg.AddFile(file)
	}

	var ordered []*source.Package
	if cycle := source.FindImportCycle(packages); cycle != nil {
		check.CheckerPrintf("import cycle %v, ordering packages by name\n", cycle)
		for _, pkg := range packages {
			ordered = append(ordered, pkg)
		}
		slices.SortFunc(ordered, func(a, b *source.Package) int {
			return cmp.Compare(a.Name, b.Name)
		})
	} else {
		ordered = source.TopologicalSort(packages)
	}

	var out []*source.FileDef
	for _, pkg := range ordered {
		out = append(out, pkg.Files...)
	}
	return out
}
