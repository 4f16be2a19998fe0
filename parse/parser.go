package parse

import (
	"fmt"
	"slices"
	"strings"

	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/source"
	"github.com/garciat/kinfer/tree"
)

var modifiers = NewSet(
	"public", "private", "protected", "internal", "open", "native", "inline",
	"override", "abstract", "final", "data", "external", "operator", "infix",
	"vararg", "out", "in", "reified",
)

var declKeywords = NewSet("fun", "val", "var", "class", "trait", "interface", "object")

// ParseSource parses one compilation unit.
func ParseSource(path, text string) (file *source.FileDef, err error) {
	tokens, err := Lex(path, text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	defer p.recover(&err)
	return p.parseFile(path, text), nil
}

// ParseDecl parses a single declaration, e.g. a stub signature.
func ParseDecl(path, text string) (decl tree.Decl, err error) {
	tokens, err := Lex(path, text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	defer p.recover(&err)
	decl = p.parseDecl()
	p.expectEOF()
	return decl, nil
}

// ParseImport parses the path of an import directive.
func ParseImport(path, text string) (imp *tree.ImportDecl, err error) {
	tokens, err := Lex(path, text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	defer p.recover(&err)
	imp = p.parseImport()
	p.expectEOF()
	return imp, nil
}

// ParseType parses a type such as `Map<K, V>?` or `((Int) -> Unit)?`.
func ParseType(text string) (ty tree.TypeExpr, err error) {
	tokens, err := Lex("", text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	defer p.recover(&err)
	ty = p.parseType()
	p.expectEOF()
	return ty, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) recover(err *error) {
	if r := recover(); r != nil {
		if syntaxErr, ok := r.(*SyntaxError); ok {
			*err = syntaxErr
			return
		}
		panic(r)
	}
}

func (p *parser) fail(tok Token, format string, args ...interface{}) {
	panic(&SyntaxError{Span: tok.Span, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) prev() Token {
	return p.tokens[p.pos-1]
}

func (p *parser) is(text string) bool {
	tok := p.peek()
	return (tok.Kind == TokenPunct || tok.Kind == TokenIdent) && tok.Text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(text string) Token {
	if !p.is(text) {
		p.fail(p.peek(), "expected %q, found %v", text, p.peek())
	}
	return p.advance()
}

func (p *parser) expectIdent() Token {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		p.fail(tok, "expected identifier, found %v", tok)
	}
	return p.advance()
}

func (p *parser) expectEOF() {
	p.skipSemis()
	if p.peek().Kind != TokenEOF {
		p.fail(p.peek(), "unexpected %v", p.peek())
	}
}

func (p *parser) skipSemis() {
	for p.accept(";") {
	}
}

// try runs f and rewinds when it fails with a syntax error.
func (p *parser) try(f func()) (ok bool) {
	saved := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, isSyntax := r.(*SyntaxError); !isSyntax {
				panic(r)
			}
			p.pos = saved
			ok = false
		}
	}()
	f()
	return true
}

func ident(tok Token) Identifier {
	return NewIdentifier(tok.Text)
}

func spanFrom(start Token, end Token) Span {
	return start.Span.To(end.Span)
}

// ========================

func (p *parser) parseFile(path, text string) *source.FileDef {
	file := &source.FileDef{Path: path, Text: text}

	p.skipAnnotations()
	if p.accept("package") {
		file.Package = p.parseFqName()
	}
	p.skipSemis()

	for p.is("import") {
		p.advance()
		file.Imports = append(file.Imports, p.parseImport())
		p.skipSemis()
	}

	for {
		p.skipSemis()
		if p.peek().Kind == TokenEOF {
			return file
		}
		file.Decls = append(file.Decls, p.parseDecl())
	}
}

// parseImport reads `a.b.C`, `a.b.*` or `a.b.C as D`.
func (p *parser) parseImport() *tree.ImportDecl {
	start := p.peek()
	imp := &tree.ImportDecl{}
	segments := []string{p.expectIdent().Text}
	for p.is(".") {
		p.advance()
		if p.accept("*") {
			imp.All = true
			break
		}
		segments = append(segments, p.expectIdent().Text)
	}
	imp.Path = FqName(strings.Join(segments, "."))
	if p.accept("as") {
		imp.Alias = ident(p.expectIdent())
	}
	imp.Span = spanFrom(start, p.prev())
	return imp
}

func (p *parser) parseFqName() FqName {
	segments := []string{p.expectIdent().Text}
	for p.is(".") && p.peekAt(1).Kind == TokenIdent {
		p.advance()
		segments = append(segments, p.advance().Text)
	}
	return FqName(strings.Join(segments, "."))
}

// skipAnnotations drops `@Name(...)` and bare `name(...)` annotations in
// front of declarations.
func (p *parser) skipAnnotations() {
	for {
		tok := p.peek()
		switch {
		case p.is("@"):
			p.advance()
			p.parseFqName()
		case tok.Kind == TokenIdent && !declKeywords.Contains(tok.Text) && !modifiers.Contains(tok.Text) &&
			tok.Text != "package" && tok.Text != "import" && p.startsDeclAfterAnnotation():
			p.advance()
		default:
			return
		}
		if p.is("(") {
			p.skipBalanced("(", ")")
		}
	}
}

// startsDeclAfterAnnotation looks past `name(...)` for a declaration keyword
// or modifier.
func (p *parser) startsDeclAfterAnnotation() bool {
	i := p.pos + 1
	if i < len(p.tokens) && p.tokens[i].Text == "(" && p.tokens[i].Kind == TokenPunct {
		depth := 0
		for ; i < len(p.tokens); i++ {
			if p.tokens[i].Kind != TokenPunct {
				continue
			}
			if p.tokens[i].Text == "(" {
				depth++
			} else if p.tokens[i].Text == ")" {
				depth--
				if depth == 0 {
					i++
					break
				}
			}
		}
	}
	if i >= len(p.tokens) {
		return false
	}
	next := p.tokens[i]
	return next.Kind == TokenIdent && (declKeywords.Contains(next.Text) || modifiers.Contains(next.Text) || next.Text == "package")
}

func (p *parser) skipBalanced(open, close string) {
	depth := 0
	for {
		tok := p.advance()
		switch {
		case tok.Kind == TokenEOF:
			p.fail(tok, "unbalanced %q", open)
		case tok.Kind == TokenPunct && tok.Text == open:
			depth++
		case tok.Kind == TokenPunct && tok.Text == close:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *parser) skipModifiers() {
	for {
		p.skipAnnotations()
		tok := p.peek()
		if tok.Kind != TokenIdent || !modifiers.Contains(tok.Text) {
			return
		}
		// `in` and `out` are only modifiers when something follows them on
		// the same declaration.
		if next := p.peekAt(1); next.Kind != TokenIdent {
			return
		}
		p.advance()
	}
}

func (p *parser) parseDecl() tree.Decl {
	p.skipModifiers()
	tok := p.peek()
	switch {
	case p.is("fun"):
		return p.parseFun()
	case p.is("val"), p.is("var"):
		return p.parseProperty()
	case p.is("class"), p.is("trait"), p.is("interface"):
		return p.parseClass()
	default:
		p.fail(tok, "expected declaration, found %v", tok)
		panic("unreachable")
	}
}

func (p *parser) parseTypeParams() []*tree.TypeParamDecl {
	if !p.is("<") {
		return nil
	}
	p.advance()
	var params []*tree.TypeParamDecl
	for {
		p.skipModifiers()
		name := p.expectIdent()
		param := &tree.TypeParamDecl{Name: ident(name)}
		if p.accept(":") {
			param.Bound = p.parseType()
		}
		param.Span = spanFrom(name, p.prev())
		params = append(params, param)
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return params
}

// parseReceiverAndName reads `Name`, `Receiver.name` or
// `Qualified.Receiver<Args>?.name`. The name is the identifier followed by
// one of stops.
func (p *parser) parseReceiverAndName(stops ...string) (tree.TypeExpr, Token) {
	isStop := func(tok Token) bool {
		if tok.Kind == TokenEOF || tok.NewlineBefore {
			return slices.Contains(stops, "\n")
		}
		return tok.Kind == TokenPunct && slices.Contains(stops, tok.Text)
	}

	if p.is("(") {
		receiver := p.parseType()
		if p.receiverDot() {
			receiver = nullableTypeExpr(receiver)
		}
		return receiver, p.expectIdent()
	}

	first := p.expectIdent()
	if isStop(p.peek()) {
		return nil, first
	}

	segments := []Token{first}
	for p.is(".") && p.peekAt(1).Kind == TokenIdent && !isStop(p.peekAt(2)) {
		p.advance()
		segments = append(segments, p.advance())
	}
	names := MapSlice(segments, func(t Token) string { return t.Text })
	receiver := &tree.TypeName{Name: NewIdentifier(strings.Join(names, "."))}
	if p.is("<") {
		receiver.Args = p.parseTypeArgs()
	}
	receiver.Span = spanFrom(first, p.prev())
	receiver.Nullable = p.receiverDot()
	return receiver, p.expectIdent()
}

// receiverDot consumes the dot after a receiver type. The lexer reads `?.`
// as one token, so a nullable receiver ends in it.
func (p *parser) receiverDot() (nullable bool) {
	if p.accept("?.") {
		return true
	}
	p.expect(".")
	return false
}

func nullableTypeExpr(expr tree.TypeExpr) tree.TypeExpr {
	switch expr := expr.(type) {
	case *tree.FunctionTypeExpr:
		expr.Nullable = true
	case *tree.TypeName:
		expr.Nullable = true
	}
	return expr
}

func (p *parser) parseFun() tree.Decl {
	start := p.expect("fun")
	decl := &tree.FunDecl{}
	decl.TypeParams = p.parseTypeParams()

	var name Token
	decl.Receiver, name = p.parseReceiverAndName("(")
	decl.Name, decl.NameSpan = ident(name), name.Span

	decl.Params = p.parseParams()
	if p.accept(":") {
		decl.Return = p.parseType()
	}

	switch {
	case p.accept("="):
		decl.ExprBody = p.parseExpr()
	case p.is("{"):
		decl.HasBlock = true
		decl.Body, decl.BodyEnd = p.parseBlock()
	}
	decl.Span = spanFrom(start, p.prev())
	return decl
}

func (p *parser) parseParams() []*tree.ParamDecl {
	p.expect("(")
	var params []*tree.ParamDecl
	for !p.is(")") {
		p.skipModifiers()
		if p.is("val") || p.is("var") {
			p.advance()
		}
		name := p.expectIdent()
		p.expect(":")
		param := &tree.ParamDecl{Name: ident(name), Type: p.parseType()}
		if p.accept("=") {
			param.Default = p.parseExpr()
		}
		param.Span = spanFrom(name, p.prev())
		params = append(params, param)
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return params
}

func (p *parser) parseProperty() tree.Decl {
	start := p.advance()
	decl := &tree.PropertyDecl{Mutable: start.Text == "var"}
	decl.TypeParams = p.parseTypeParams()

	var name Token
	decl.Receiver, name = p.parseReceiverAndName(":", "=", ";", "}", "\n")
	decl.Name, decl.NameSpan = ident(name), name.Span

	if p.accept(":") {
		decl.Type = p.parseType()
	}
	if p.accept("=") {
		decl.Init = p.parseExpr()
	}
	decl.Span = spanFrom(start, p.prev())
	return decl
}

func (p *parser) parseClass() tree.Decl {
	start := p.advance()
	decl := &tree.ClassDecl{Kind: tree.ClassKindClass}
	if start.Text != "class" {
		decl.Kind = tree.ClassKindTrait
	}

	name := p.expectIdent()
	decl.Name, decl.NameSpan = ident(name), name.Span
	decl.TypeParams = p.parseTypeParams()

	if p.is("(") {
		decl.HasCtor = true
		decl.CtorParams = p.parseParams()
	}

	if p.accept(":") {
		for {
			decl.Supertypes = append(decl.Supertypes, p.parseType())
			if p.is("(") {
				p.skipBalanced("(", ")")
			}
			if !p.accept(",") {
				break
			}
		}
	}

	if p.is("{") {
		p.advance()
		for {
			p.skipSemis()
			if p.accept("}") {
				break
			}
			if p.peek().Kind == TokenEOF {
				p.fail(p.peek(), "expected \"}\", found %v", p.peek())
			}
			decl.Members = append(decl.Members, p.parseDecl())
		}
	}
	decl.Span = spanFrom(start, p.prev())
	return decl
}

// ========================

func (p *parser) parseType() tree.TypeExpr {
	start := p.peek()
	if p.accept("(") {
		var params []tree.TypeExpr
		for !p.is(")") {
			params = append(params, p.parseType())
			if !p.accept(",") {
				break
			}
		}
		p.expect(")")

		if p.accept("->") {
			fn := &tree.FunctionTypeExpr{Params: params, Return: p.parseType()}
			fn.Span = spanFrom(start, p.prev())
			return fn
		}
		if len(params) != 1 {
			p.fail(start, "expected function type")
		}
		if p.accept("?") {
			return nullableTypeExpr(params[0])
		}
		return params[0]
	}

	name := p.expectIdent()
	segments := []string{name.Text}
	for p.is(".") && p.peekAt(1).Kind == TokenIdent && !p.peekAt(1).NewlineBefore {
		p.advance()
		segments = append(segments, p.advance().Text)
	}
	ty := &tree.TypeName{Name: NewIdentifier(strings.Join(segments, "."))}
	if p.is("<") {
		ty.Args = p.parseTypeArgs()
	}
	if p.is("?") && !p.peek().NewlineBefore {
		p.advance()
		ty.Nullable = true
	}
	ty.Span = spanFrom(name, p.prev())
	return ty
}

func (p *parser) parseTypeArgs() []tree.TypeExpr {
	p.expect("<")
	var args []tree.TypeExpr
	for {
		p.skipModifiers()
		if p.is("*") {
			star := p.advance()
			arg := &tree.TypeName{Name: NewIdentifier("Any"), Nullable: true}
			arg.Span = star.Span
			args = append(args, arg)
		} else {
			args = append(args, p.parseType())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return args
}
