package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/garciat/kinfer/compile"
	"github.com/garciat/kinfer/diag"
	"github.com/garciat/kinfer/files"
	"github.com/garciat/kinfer/fixture"
)

// Runs every fixture under the testdata directory (or the directories given
// as arguments). A fixture passes when its diagnostics match its
// annotations and its name prefix agrees with the outcome: pass_ files must
// have no errors, fail_ files at least one.
func main() {
	dirs := os.Args[1:]
	if len(dirs) == 0 {
		dirs = []string{"testdata"}
	}

	paths, err := files.NewFinder().Find(dirs...)
	if err != nil {
		panic(err)
	}

	failures := 0
	for _, path := range paths {
		if err := testFile(path); err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failures++
			continue
		}
		fmt.Printf("ok   %s\n", path)
	}

	if failures > 0 {
		fmt.Printf("%d of %d fixtures failed\n", failures, len(paths))
		os.Exit(1)
	}
}

func testFile(path string) error {
	annotated, err := files.ReadSource(path)
	if err != nil {
		return err
	}
	text, expected, err := fixture.Parse(annotated)
	if err != nil {
		return fmt.Errorf("bad annotations: %w", err)
	}

	unit := compile.NewCompilationUnit(1)
	if err := unit.AddSource(path, text); err != nil {
		return err
	}
	results, err := unit.Compile(context.Background())
	if err != nil {
		return err
	}
	result := results[0]
	if result.Err != nil {
		return fmt.Errorf("unexpected error:\n%v\n%s", result.Err, dropStacks(result.Stack, 3))
	}

	actual := fixture.FromDiagnostics(result.Diagnostics)
	if diff := fixture.Diff(expected, actual); diff != "" {
		var sb strings.Builder
		diag.NewFormatter(&sb, diag.ColorNever).FormatAll(result.Diagnostics)
		return fmt.Errorf("diagnostics mismatch (-want +got):\n%s\n%s", diff, sb.String())
	}

	name := filepath.Base(path)
	switch {
	case strings.HasPrefix(name, "fail_"):
		if !result.HasErrors() {
			return fmt.Errorf("expected errors")
		}
	case strings.HasPrefix(name, "pass_"):
		if result.HasErrors() {
			return fmt.Errorf("expected no errors")
		}
	default:
		return fmt.Errorf("unexpected file %s", name)
	}
	return nil
}

func dropStacks(stack string, n int) string {
	lines := strings.Split(stack, "\n")
	if len(lines) <= 1+n*2 {
		return stack
	}
	return strings.Join(lines[1+n*2:], "\n")
}
