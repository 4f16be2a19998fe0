package check

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

var (
	DebugUnify   = false
	DebugResolve = false
	DebugChecker = false

	DebugWriter io.Writer = os.Stderr

	debugMu sync.Mutex
)

// SetDebug enables the named categories: unify, resolve, checker or all.
func SetDebug(categories ...string) error {
	for _, category := range categories {
		switch strings.TrimSpace(category) {
		case "":
		case "all":
			DebugUnify, DebugResolve, DebugChecker = true, true, true
		case "unify":
			DebugUnify = true
		case "resolve":
			DebugResolve = true
		case "checker":
			DebugChecker = true
		default:
			return fmt.Errorf("unknown debug category: %q", category)
		}
	}
	return nil
}

func debugPrintf(enabled bool, format string, args ...interface{}) {
	if !enabled {
		return
	}
	debugMu.Lock()
	defer debugMu.Unlock()
	_, err := fmt.Fprintf(DebugWriter, format, args...)
	if err != nil {
		panic(err)
	}
}

func UnifyPrintf(format string, args ...interface{}) {
	debugPrintf(DebugUnify, format, args...)
}

func ResolvePrintf(format string, args ...interface{}) {
	debugPrintf(DebugResolve, format, args...)
}

func CheckerPrintf(format string, args ...interface{}) {
	debugPrintf(DebugChecker, format, args...)
}

func DebugDump(values ...interface{}) {
	if !DebugChecker {
		return
	}
	debugMu.Lock()
	defer debugMu.Unlock()
	spew.Fdump(DebugWriter, values...)
}
