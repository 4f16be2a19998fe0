package common

import "fmt"

// Span is a half-open byte range [Start, End) in a source file, with the
// 1-based line and column of Start.
type Span struct {
	File   string
	Start  int
	End    int
	Line   int
	Column int
}

var NoSpan = Span{}

func (s Span) IsValid() bool {
	return s.Line > 0
}

// To returns the span covering s through other.
func (s Span) To(other Span) Span {
	out := s
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

func (s Span) String() string {
	if s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}
