package parse

import (
	. "github.com/garciat/kinfer/common"
	"github.com/garciat/kinfer/tree"
)

func (p *parser) parseBlock() ([]tree.Stmt, Span) {
	p.expect("{")
	stmts := p.parseStmtsUntil("}")
	end := p.expect("}")
	return stmts, end.Span
}

func (p *parser) parseStmtsUntil(end string) []tree.Stmt {
	var stmts []tree.Stmt
	for {
		p.skipSemis()
		if p.is(end) || p.peek().Kind == TokenEOF {
			return stmts
		}
		stmts = append(stmts, p.parseStmt())
	}
}

func (p *parser) parseStmt() tree.Stmt {
	start := p.peek()
	switch {
	case p.is("val"), p.is("var"):
		p.advance()
		name := p.expectIdent()
		stmt := &tree.ValStmt{Name: ident(name), Mutable: start.Text == "var"}
		if p.accept(":") {
			stmt.Type = p.parseType()
		}
		if p.accept("=") {
			stmt.Init = p.parseExpr()
		}
		stmt.Span = spanFrom(start, p.prev())
		return stmt
	case p.is("return"):
		p.advance()
		stmt := &tree.ReturnStmt{}
		next := p.peek()
		if !next.NewlineBefore && next.Kind != TokenEOF && !p.is("}") && !p.is(";") {
			stmt.Value = p.parseExpr()
		}
		stmt.Span = spanFrom(start, p.prev())
		return stmt
	default:
		expr := p.parseExpr()
		stmt := &tree.ExprStmt{Expr: expr}
		stmt.Span = expr.Pos()
		return stmt
	}
}

// ========================

func (p *parser) parseExpr() tree.Expr {
	expr := p.parsePrimary()
	for {
		tok := p.peek()
		switch {
		case p.is(".") || p.is("?."):
			dot := p.advance()
			kind := tree.DotPlain
			if dot.Text == "?." {
				kind = tree.DotSafe
			}
			name := p.expectIdent()
			if typeArgs, args, ok := p.parseCallSuffix(); ok {
				call := &tree.CallExpr{
					Receiver: expr,
					Dot:      kind,
					DotSpan:  dot.Span,
					Name:     ident(name),
					NameSpan: name.Span,
					TypeArgs: typeArgs,
					Args:     args,
				}
				call.Span = expr.Pos().To(p.prev().Span)
				expr = call
				continue
			}
			member := &tree.MemberExpr{
				Receiver: expr,
				Dot:      kind,
				DotSpan:  dot.Span,
				Name:     ident(name),
				NameSpan: name.Span,
			}
			member.Span = expr.Pos().To(name.Span)
			expr = member
		case p.is("!!") && !tok.NewlineBefore:
			end := p.advance()
			notNull := &tree.NotNullExpr{Expr: expr}
			notNull.Span = expr.Pos().To(end.Span)
			expr = notNull
		default:
			return expr
		}
	}
}

// parseCallSuffix reads `<T>(args) { lambda }` after a callee name. It
// consumes nothing and reports false when no call follows.
func (p *parser) parseCallSuffix() ([]tree.TypeExpr, []*tree.Argument, bool) {
	var typeArgs []tree.TypeExpr
	if p.is("<") && !p.peek().NewlineBefore {
		ok := p.try(func() {
			typeArgs = p.parseTypeArgs()
			if !(p.is("(") || p.is("{")) || p.peek().NewlineBefore {
				p.fail(p.peek(), "not a call")
			}
		})
		if !ok {
			return nil, nil, false
		}
	}

	var args []*tree.Argument
	called := false
	if p.is("(") && !p.peek().NewlineBefore {
		called = true
		p.advance()
		for !p.is(")") {
			arg := &tree.Argument{}
			if p.peek().Kind == TokenIdent && p.peekAt(1).Kind == TokenPunct && p.peekAt(1).Text == "=" {
				arg.Name = ident(p.advance())
				p.advance()
			}
			arg.Value = p.parseExpr()
			args = append(args, arg)
			if !p.accept(",") {
				break
			}
		}
		p.expect(")")
	}
	if p.is("{") && !p.peek().NewlineBefore {
		called = true
		args = append(args, &tree.Argument{Value: p.parseLambda()})
	}
	if !called && typeArgs == nil {
		return nil, nil, false
	}
	return typeArgs, args, true
}

func (p *parser) parsePrimary() tree.Expr {
	tok := p.peek()
	switch tok.Kind {
	case TokenInt:
		return p.literal(tree.LiteralInt)
	case TokenLong:
		return p.literal(tree.LiteralLong)
	case TokenDouble:
		return p.literal(tree.LiteralDouble)
	case TokenString:
		return p.literal(tree.LiteralString)
	case TokenChar:
		return p.literal(tree.LiteralChar)
	case TokenIdent:
		switch tok.Text {
		case "null":
			return p.literal(tree.LiteralNull)
		case "true", "false":
			return p.literal(tree.LiteralBool)
		case "this":
			p.advance()
			this := &tree.ThisExpr{}
			this.Span = tok.Span
			return this
		case "for":
			return p.parseFor()
		}
		p.advance()
		if typeArgs, args, ok := p.parseCallSuffix(); ok {
			call := &tree.CallExpr{
				Name:     ident(tok),
				NameSpan: tok.Span,
				TypeArgs: typeArgs,
				Args:     args,
			}
			call.Span = spanFrom(tok, p.prev())
			return call
		}
		name := &tree.NameExpr{Name: ident(tok)}
		name.Span = tok.Span
		return name
	case TokenPunct:
		switch tok.Text {
		case "(":
			p.advance()
			inner := p.parseExpr()
			end := p.expect(")")
			paren := &tree.ParenExpr{Expr: inner}
			paren.Span = spanFrom(tok, end)
			return paren
		case "{":
			return p.parseLambda()
		}
	}
	p.fail(tok, "expected expression, found %v", tok)
	panic("unreachable")
}

func (p *parser) literal(kind tree.LiteralKind) tree.Expr {
	tok := p.advance()
	lit := &tree.LiteralExpr{Kind: kind, Value: tok.Text}
	lit.Span = tok.Span
	return lit
}

func (p *parser) parseFor() tree.Expr {
	start := p.expect("for")
	p.expect("(")
	name := p.expectIdent()
	if p.accept(":") {
		p.parseType()
	}
	p.expect("in")
	expr := &tree.ForExpr{Var: ident(name), VarSpan: name.Span}
	expr.Iterable = p.parseExpr()
	p.expect(")")
	if p.is("{") {
		expr.Body, _ = p.parseBlock()
	} else {
		expr.Body = []tree.Stmt{p.parseStmt()}
	}
	expr.Span = spanFrom(start, p.prev())
	return expr
}

// parseLambda reads a function literal. Parameters may be written as
// `a, b: T ->` or in parentheses with an optional return type,
// `(a: T): R ->`.
func (p *parser) parseLambda() *tree.LambdaExpr {
	start := p.expect("{")
	lam := &tree.LambdaExpr{}

	var params []*tree.LambdaParam
	var returnType tree.TypeExpr
	if p.try(func() { params, returnType = p.parseLambdaHeader() }) {
		lam.HasParamList = true
		lam.Params = params
		lam.ReturnType = returnType
	}

	lam.Body = p.parseStmtsUntil("}")
	end := p.expect("}")
	lam.Span = spanFrom(start, end)
	return lam
}

func (p *parser) parseLambdaHeader() ([]*tree.LambdaParam, tree.TypeExpr) {
	if p.accept("->") {
		return nil, nil
	}

	parenthesized := p.accept("(")
	var params []*tree.LambdaParam
	for {
		name := p.expectIdent()
		param := &tree.LambdaParam{Name: ident(name)}
		if p.accept(":") {
			param.Type = p.parseType()
		}
		param.Span = spanFrom(name, p.prev())
		params = append(params, param)
		if !p.accept(",") {
			break
		}
	}

	var returnType tree.TypeExpr
	if parenthesized {
		p.expect(")")
		if p.accept(":") {
			returnType = p.parseType()
		}
	}
	p.expect("->")
	return params, returnType
}
