package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// Formatter prints diagnostics as `file:line:col: severity: KIND: message`
// followed by the offending source line and a caret marker.
type Formatter struct {
	w       io.Writer
	color   bool
	sources map[string]string
}

func NewFormatter(w io.Writer, mode ColorMode) *Formatter {
	return &Formatter{
		w:       w,
		color:   useColor(w, mode),
		sources: map[string]string{},
	}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// AddSource registers file text so that snippets can be shown.
func (f *Formatter) AddSource(path, text string) {
	f.sources[path] = text
}

func (f *Formatter) Format(d Diagnostic) {
	sevColor := ansiRed
	if d.Severity == SeverityWarning {
		sevColor = ansiYellow
	}
	fmt.Fprintf(f.w, "%s: %s: %s\n",
		f.paint(ansiBold, d.Span.String()),
		f.paint(sevColor, string(d.Severity)),
		f.paint(ansiBold, fmt.Sprintf("%s: %s", d.Kind, d.Message)))

	if line, col, ok := f.sourceLine(d); ok {
		fmt.Fprintf(f.w, "    %s\n", line)
		width := d.Span.End - d.Span.Start
		if width < 1 {
			width = 1
		}
		if col+width > len(line) {
			width = max(1, len(line)-col)
		}
		fmt.Fprintf(f.w, "    %s%s\n", strings.Repeat(" ", col), f.paint(sevColor, strings.Repeat("^", width)))
	}

	for _, note := range d.Notes {
		fmt.Fprintf(f.w, "    %s %s\n", f.paint(ansiCyan, "note:"), note)
	}
}

func (f *Formatter) FormatAll(ds []Diagnostic) {
	for _, d := range ds {
		f.Format(d)
	}
}

func (f *Formatter) sourceLine(d Diagnostic) (string, int, bool) {
	text, ok := f.sources[d.Span.File]
	if !ok || !d.Span.IsValid() {
		return "", 0, false
	}
	lines := strings.Split(text, "\n")
	if d.Span.Line > len(lines) {
		return "", 0, false
	}
	line := strings.TrimRight(lines[d.Span.Line-1], "\r")
	col := d.Span.Column - 1
	if col > len(line) {
		return "", 0, false
	}
	return line, col, true
}

func (f *Formatter) paint(code, s string) string {
	if !f.color {
		return s
	}
	return code + s + ansiReset
}
