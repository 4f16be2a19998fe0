package parse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	. "github.com/garciat/kinfer/common"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenInt
	TokenLong
	TokenDouble
	TokenString
	TokenChar
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of file"
	case TokenIdent:
		return "identifier"
	case TokenInt, TokenLong, TokenDouble:
		return "number"
	case TokenString:
		return "string"
	case TokenChar:
		return "char"
	case TokenPunct:
		return "punctuation"
	default:
		panic("unreachable")
	}
}

type Token struct {
	Kind TokenKind
	// Text is the source text, or the unescaped value of string and char
	// literals.
	Text string
	Span Span
	// NewlineBefore is set when a line break separates this token from the
	// previous one.
	NewlineBefore bool
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%q", t.Text)
}

type SyntaxError struct {
	Span    Span
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: syntax error: %s", e.Span, e.Message)
}

// Multi-character punctuation, longest first.
var puncts = []string{"?.", "!!", "->", "::", "&&", "||", "==", "!=", "<=", ">="}

type lexer struct {
	file string
	text string
	pos  int
	line int
	col  int
}

func Lex(file, text string) ([]Token, error) {
	l := &lexer{file: file, text: text, line: 1, col: 1}
	var tokens []Token
	for {
		newline, err := l.skipSpace()
		if err != nil {
			return nil, err
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tok.NewlineBefore = newline
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) peekRune(offset int) rune {
	if l.pos+offset >= len(l.text) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.text[l.pos+offset:])
	return r
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.text); {
		r, size := utf8.DecodeRuneInString(l.text[l.pos:])
		l.pos += size
		i += size
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col += size
		}
	}
}

func (l *lexer) span(start, line, col int) Span {
	return Span{File: l.file, Start: start, End: l.pos, Line: line, Column: col}
}

func (l *lexer) errorf(format string, args ...interface{}) error {
	return &SyntaxError{
		Span:    Span{File: l.file, Start: l.pos, End: l.pos, Line: l.line, Column: l.col},
		Message: fmt.Sprintf(format, args...),
	}
}

func (l *lexer) skipSpace() (newline bool, err error) {
	for l.pos < len(l.text) {
		rest := l.text[l.pos:]
		switch {
		case rest[0] == '\n':
			newline = true
			l.advance(1)
		case rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\r':
			l.advance(1)
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end == -1 {
				end = len(rest)
			}
			l.advance(end)
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end == -1 {
				return newline, l.errorf("unterminated comment")
			}
			if strings.Contains(rest[:end+4], "\n") {
				newline = true
			}
			l.advance(end + 4)
		default:
			return newline, nil
		}
	}
	return newline, nil
}

func (l *lexer) next() (Token, error) {
	start, line, col := l.pos, l.line, l.col
	if l.pos >= len(l.text) {
		return Token{Kind: TokenEOF, Span: l.span(start, line, col)}, nil
	}

	r := l.peekRune(0)
	switch {
	case r == '_' || unicode.IsLetter(r):
		for r := l.peekRune(0); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r); r = l.peekRune(0) {
			l.advance(utf8.RuneLen(r))
		}
		return Token{Kind: TokenIdent, Text: l.text[start:l.pos], Span: l.span(start, line, col)}, nil
	case r == '`':
		end := strings.IndexByte(l.text[l.pos+1:], '`')
		if end == -1 {
			return Token{}, l.errorf("unterminated quoted identifier")
		}
		l.advance(end + 2)
		return Token{Kind: TokenIdent, Text: l.text[start+1 : l.pos-1], Span: l.span(start, line, col)}, nil
	case unicode.IsDigit(r):
		return l.number(start, line, col), nil
	case r == '"':
		text, err := l.quoted('"')
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenString, Text: text, Span: l.span(start, line, col)}, nil
	case r == '\'':
		text, err := l.quoted('\'')
		if err != nil {
			return Token{}, err
		}
		if utf8.RuneCountInString(text) != 1 {
			return Token{}, l.errorf("invalid character literal")
		}
		return Token{Kind: TokenChar, Text: text, Span: l.span(start, line, col)}, nil
	}

	for _, p := range puncts {
		if strings.HasPrefix(l.text[l.pos:], p) {
			l.advance(len(p))
			return Token{Kind: TokenPunct, Text: p, Span: l.span(start, line, col)}, nil
		}
	}
	if strings.ContainsRune("(){}[]<>,.:;?!=@*+-/%&|", r) {
		l.advance(1)
		return Token{Kind: TokenPunct, Text: string(r), Span: l.span(start, line, col)}, nil
	}
	return Token{}, l.errorf("unexpected character %q", r)
}

func (l *lexer) number(start, line, col int) Token {
	kind := TokenInt
	for unicode.IsDigit(l.peekRune(0)) || l.peekRune(0) == '_' {
		l.advance(1)
	}
	if l.peekRune(0) == '.' && unicode.IsDigit(l.peekRune(1)) {
		kind = TokenDouble
		l.advance(1)
		for unicode.IsDigit(l.peekRune(0)) {
			l.advance(1)
		}
	}
	switch l.peekRune(0) {
	case 'L':
		kind = TokenLong
		l.advance(1)
	case 'f', 'F':
		kind = TokenDouble
		l.advance(1)
	}
	return Token{Kind: kind, Text: l.text[start:l.pos], Span: l.span(start, line, col)}
}

func (l *lexer) quoted(quote rune) (string, error) {
	l.advance(1)
	var sb strings.Builder
	for {
		r := l.peekRune(0)
		switch {
		case l.pos >= len(l.text) || r == '\n':
			return "", l.errorf("unterminated literal")
		case r == quote:
			l.advance(1)
			return sb.String(), nil
		case r == '\\':
			l.advance(1)
			esc := l.peekRune(0)
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '\\', '\'', '"', '$':
				sb.WriteRune(esc)
			default:
				return "", l.errorf("invalid escape \\%c", esc)
			}
			l.advance(utf8.RuneLen(esc))
		default:
			sb.WriteRune(r)
			l.advance(utf8.RuneLen(r))
		}
	}
}
