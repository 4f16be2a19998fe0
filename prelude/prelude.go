// Package prelude holds the declarations every compilation unit sees without
// importing them: the kotlin, kotlin.collections and java.lang stubs.
package prelude

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/garciat/kinfer/check"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/parse"
	"github.com/garciat/kinfer/source"
	"github.com/garciat/kinfer/symbols"
)

const stubsPath = "<prelude>"

//go:embed stubs.yaml
var stubsData []byte

var (
	parseOnce sync.Once
	parsed    []*source.FileDef
	parseErr  error
)

// Files returns the decoded prelude. Decoding happens once per process and
// the result is shared read-only by every table built from it.
func Files() ([]*source.FileDef, error) {
	parseOnce.Do(func() {
		parsed, parseErr = parse.DecodeStubs(stubsPath, stubsData)
	})
	return parsed, parseErr
}

// ReadStubs decodes an extra stub file to be layered over the prelude.
func ReadStubs(path string) ([]*source.FileDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stubs: %w", err)
	}
	return parse.DecodeStubs(path, data)
}

// Load registers the prelude and the extra stub files into table. Stub
// declarations must not produce diagnostics.
func Load(table *symbols.Table, extra ...*source.FileDef) error {
	base, err := Files()
	if err != nil {
		return err
	}
	all := append(append([]*source.FileDef(nil), base...), extra...)

	defs, err := check.NewDefiner(table).DefineFiles(all)
	if err != nil {
		return fmt.Errorf("failed to load prelude: %w", err)
	}
	for _, file := range all {
		if ds := defs.Diagnostics[file]; diag.HasErrors(ds) {
			return fmt.Errorf("invalid stub declaration: %v", ds[0])
		}
	}
	return nil
}

// NewTable returns a writable table that already holds the prelude.
func NewTable(extra ...*source.FileDef) (*symbols.Table, error) {
	table := symbols.NewTable()
	if err := Load(table, extra...); err != nil {
		return nil, err
	}
	return table, nil
}
