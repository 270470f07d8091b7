// parser.go is a hand-written recursive-descent parser. vslc drives a
// goyacc-generated parser from its concurrent lexer (frontend/tree.go);
// this module's grammar is small enough that generating a table-driven
// parser is more machinery than the problem warrants, so the substitute
// here is a small hand-written parser calling the synchronous lexer
// directly -- the same node-construction responsibility as vslc's
// nodeInit, just invoked from parser methods instead of grammar actions.
package frontend

import (
	"fmt"

	"minic/internal/diag"
	"minic/internal/ir"
)

// Parser turns a token stream into a syntax tree, pre-populating variable
// and array declarations into the symbol table as it encounters them.
// Function and parameter symbols are left for the analyzer, which has the
// full signature in hand by the time it registers them.
type Parser struct {
	lex    *lexer
	cur    token
	diags  *diag.Bag
	sym    *ir.SymTab
	scope  string // "global" or the name of the function currently being parsed.
}

// NewParser returns a Parser reading src, reporting into diags and
// populating sym as declarations are encountered.
func NewParser(src string, sym *ir.SymTab, diags *diag.Bag) *Parser {
	p := &Parser{lex: newLexer(src), sym: sym, diags: diags, scope: ir.GlobalScope}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.lex.nextToken()
}

func (p *Parser) at(t tokenType) bool {
	return p.cur.typ == t
}

func (p *Parser) expect(t tokenType) token {
	if !p.at(t) {
		p.diags.Report(p.cur.line, "expected %s, got %s %q", t, p.cur.typ, p.cur.val)
		tok := p.cur
		p.advance()
		return tok
	}
	tok := p.cur
	p.advance()
	return tok
}

// Parse parses the whole program and returns its root PROGRAM node.
func (p *Parser) Parse() *ir.Node {
	line := p.cur.line
	var decls []*ir.Node
	for !p.at(tEOF) {
		if n := p.topLevelDecl(); n != nil {
			decls = append(decls, n)
		}
	}
	return ir.New(ir.PROGRAM, line, nil, decls...)
}

// topLevelDecl parses one of: "int x;", "int x[N];", a function
// declaration/definition, or -- since source files are not required to
// wrap their top-level code in a "main" function -- a bare statement,
// which becomes part of the program's implicit entry point.
func (p *Parser) topLevelDecl() *ir.Node {
	switch {
	case p.at(tInt), p.at(tVoid):
		typTok := p.cur
		p.advance()
		nameTok := p.expect(tIdentifier)

		if p.at(tLParen) {
			return p.functionRest(typTok, nameTok)
		}

		if typTok.typ == tVoid {
			p.diags.Report(typTok.line, "void is not a valid variable type")
		}
		return p.variableRest(nameTok, ir.TypeInt)
	default:
		return p.statement()
	}
}

// variableRest parses the tail of a scalar or array variable declaration,
// after the type and name have been consumed, and registers it in the
// symbol table at the parser's current scope.
func (p *Parser) variableRest(nameTok token, typ ir.DataType) *ir.Node {
	if p.at(tLBracket) {
		p.advance()
		sizeTok := p.expect(tInteger)
		p.expect(tRBracket)
		p.expect(tSemi)
		size := parseIntLiteral(sizeTok.val)
		if !p.sym.AddArray(nameTok.val, typ, size, nameTok.line, p.scope) {
			p.diags.Report(nameTok.line, "redeclaration of array %q", nameTok.val)
		}
		return ir.New(ir.ARRAY_DECL, nameTok.line, nameTok.val)
	}
	p.expect(tSemi)
	if !p.sym.AddVariable(nameTok.val, typ, nameTok.line, p.scope) {
		p.diags.Report(nameTok.line, "redeclaration of variable %q", nameTok.val)
	}
	return ir.New(ir.VAR_DECL, nameTok.line, nameTok.val)
}

// functionRest parses the parameter list and either a trailing ";"
// (declaration only) or a block (definition), after "(" has been seen.
func (p *Parser) functionRest(typTok, nameTok token) *ir.Node {
	p.expect(tLParen)
	params := p.paramList()
	p.expect(tRParen)

	retType := ir.TypeInt
	if typTok.typ == tVoid {
		retType = ir.TypeVoid
	}
	paramList := ir.New(ir.PARAM_LIST, nameTok.line, nil, params...)

	if p.at(tSemi) {
		p.advance()
		return ir.New(ir.FUNC_DECL, nameTok.line, nameTok.val,
			ir.New(ir.IDENTIFIER, nameTok.line, nameTok.val), paramList)
	}

	prevScope := p.scope
	p.scope = nameTok.val
	body := p.block()
	p.scope = prevScope

	_ = retType
	return ir.New(ir.FUNC_DEF, nameTok.line, nameTok.val,
		ir.New(ir.IDENTIFIER, nameTok.line, nameTok.val), paramList, body,
		ir.New(ir.IDENTIFIER, nameTok.line, retTypeName(retType)))
}

func retTypeName(t ir.DataType) string {
	if t == ir.TypeVoid {
		return "void"
	}
	return "int"
}

// paramList parses a (possibly empty) comma separated "int name" list.
func (p *Parser) paramList() []*ir.Node {
	var params []*ir.Node
	if p.at(tRParen) {
		return params
	}
	for {
		p.expect(tInt)
		nameTok := p.expect(tIdentifier)
		params = append(params, ir.New(ir.PARAM, nameTok.line, nameTok.val))
		if p.at(tComma) {
			p.advance()
			continue
		}
		break
	}
	return params
}

// block parses "{" stmt* "}".
func (p *Parser) block() *ir.Node {
	line := p.cur.line
	p.expect(tLBrace)
	var stmts []*ir.Node
	for !p.at(tRBrace) && !p.at(tEOF) {
		if s := p.statement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(tRBrace)
	return ir.New(ir.STATEMENT_LIST, line, nil, stmts...)
}

// statement parses a single statement.
func (p *Parser) statement() *ir.Node {
	switch {
	case p.at(tInt):
		typTok := p.cur
		p.advance()
		nameTok := p.expect(tIdentifier)
		return p.variableRest(nameTok, func() ir.DataType {
			_ = typTok
			return ir.TypeInt
		}())
	case p.at(tLBrace):
		return p.block()
	case p.at(tPrint):
		return p.printStatement()
	case p.at(tWhile):
		return p.whileStatement()
	case p.at(tIf):
		return p.ifStatement()
	case p.at(tFor):
		return p.forStatement()
	case p.at(tDo):
		return p.doWhileStatement()
	case p.at(tReturn):
		return p.returnStatement()
	case p.at(tSemi):
		p.advance()
		return nil
	case p.at(tIdentifier):
		return p.identifierLedStatement()
	default:
		p.diags.Report(p.cur.line, "unexpected token %s %q in statement", p.cur.typ, p.cur.val)
		p.advance()
		return nil
	}
}

// identifierLedStatement disambiguates "x = e;", "x[i] = e;" and a
// function-call-as-statement "f(args);".
func (p *Parser) identifierLedStatement() *ir.Node {
	nameTok := p.cur
	p.advance()

	if p.at(tLBracket) {
		p.advance()
		idx := p.expression()
		p.expect(tRBracket)
		p.expect(tAssign)
		val := p.expression()
		p.expect(tSemi)
		return ir.New(ir.ARRAY_STORE_STMT, nameTok.line, nameTok.val,
			ir.New(ir.IDENTIFIER, nameTok.line, nameTok.val), idx, val)
	}

	if p.at(tLParen) {
		call := p.callRest(nameTok)
		p.expect(tSemi)
		return call
	}

	p.expect(tAssign)
	val := p.expression()
	p.expect(tSemi)
	return ir.New(ir.ASSIGN_STMT, nameTok.line, nameTok.val,
		ir.New(ir.IDENTIFIER, nameTok.line, nameTok.val), val)
}

func (p *Parser) printStatement() *ir.Node {
	line := p.cur.line
	p.expect(tPrint)
	p.expect(tLParen)
	e := p.expression()
	p.expect(tRParen)
	p.expect(tSemi)
	return ir.New(ir.PRINT_STMT, line, nil, e)
}

func (p *Parser) whileStatement() *ir.Node {
	line := p.cur.line
	p.expect(tWhile)
	p.expect(tLParen)
	cond := p.condition()
	p.expect(tRParen)
	body := p.block()
	return ir.New(ir.WHILE_STMT, line, nil, cond, body)
}

func (p *Parser) ifStatement() *ir.Node {
	line := p.cur.line
	p.expect(tIf)
	p.expect(tLParen)
	cond := p.condition()
	p.expect(tRParen)
	then := p.block()
	if p.at(tElse) {
		p.advance()
		els := p.block()
		return ir.New(ir.IF_STMT, line, nil, cond, then, els)
	}
	return ir.New(ir.IF_STMT, line, nil, cond, then)
}

func (p *Parser) forStatement() *ir.Node {
	line := p.cur.line
	p.expect(tFor)
	p.expect(tLParen)
	init := p.identifierLedStatementNoTerminator()
	p.expect(tSemi)
	cond := p.condition()
	p.expect(tSemi)
	step := p.forStepAssign()
	p.expect(tRParen)
	body := p.block()
	return ir.New(ir.FOR_STMT, line, nil, init, cond, step, body)
}

// identifierLedStatementNoTerminator parses a for-loop init clause of the
// form "x = e" without consuming a trailing ";" (the caller does).
func (p *Parser) identifierLedStatementNoTerminator() *ir.Node {
	nameTok := p.expect(tIdentifier)
	p.expect(tAssign)
	val := p.expression()
	return ir.New(ir.ASSIGN_STMT, nameTok.line, nameTok.val,
		ir.New(ir.IDENTIFIER, nameTok.line, nameTok.val), val)
}

// forStepAssign parses a for-loop step clause "x = e" without a terminator.
func (p *Parser) forStepAssign() *ir.Node {
	return p.identifierLedStatementNoTerminator()
}

func (p *Parser) doWhileStatement() *ir.Node {
	line := p.cur.line
	p.expect(tDo)
	body := p.block()
	p.expect(tWhile)
	p.expect(tLParen)
	cond := p.condition()
	p.expect(tRParen)
	p.expect(tSemi)
	return ir.New(ir.DO_WHILE_STMT, line, nil, body, cond)
}

func (p *Parser) returnStatement() *ir.Node {
	line := p.cur.line
	p.expect(tReturn)
	if p.at(tSemi) {
		p.advance()
		return ir.New(ir.RETURN_STMT, line, nil)
	}
	e := p.expression()
	p.expect(tSemi)
	return ir.New(ir.RETURN_STMT, line, nil, e)
}

// condition parses a relational expression: expr relop expr.
func (p *Parser) condition() *ir.Node {
	left := p.expression()
	line := p.cur.line
	op, ok := p.relOp()
	if !ok {
		p.diags.Report(line, "expected relational operator, got %s %q", p.cur.typ, p.cur.val)
		return ir.New(ir.RELATION_EXPR, line, "==", left, left)
	}
	right := p.expression()
	return ir.New(ir.RELATION_EXPR, line, op, left, right)
}

func (p *Parser) relOp() (string, bool) {
	var op string
	switch p.cur.typ {
	case tLt:
		op = "<"
	case tGt:
		op = ">"
	case tLe:
		op = "<="
	case tGe:
		op = ">="
	case tEq:
		op = "=="
	case tNe:
		op = "!="
	default:
		return "", false
	}
	p.advance()
	return op, true
}

// expression parses additive-precedence arithmetic: term (("+"|"-") term)*.
func (p *Parser) expression() *ir.Node {
	left := p.term()
	for p.at(tPlus) || p.at(tMinus) {
		opTok := p.cur
		op := "+"
		if opTok.typ == tMinus {
			op = "-"
		}
		p.advance()
		right := p.term()
		left = ir.New(ir.BINARY_EXPR, opTok.line, op, left, right)
	}
	return left
}

// term parses multiplicative-precedence arithmetic: unary (("*"|"/"|"%") unary)*.
func (p *Parser) term() *ir.Node {
	left := p.unary()
	for p.at(tStar) || p.at(tSlash) || p.at(tPercent) {
		opTok := p.cur
		var op string
		switch opTok.typ {
		case tStar:
			op = "*"
		case tSlash:
			op = "/"
		case tPercent:
			op = "%"
		}
		p.advance()
		right := p.unary()
		left = ir.New(ir.BINARY_EXPR, opTok.line, op, left, right)
	}
	return left
}

// unary parses an optional leading "-" followed by a primary.
func (p *Parser) unary() *ir.Node {
	if p.at(tMinus) {
		line := p.cur.line
		p.advance()
		operand := p.unary()
		zero := ir.New(ir.INT_LITERAL, line, 0)
		return ir.New(ir.BINARY_EXPR, line, "-", zero, operand)
	}
	return p.primary()
}

// primary parses a literal, identifier reference, array access, function
// call, or parenthesized expression.
func (p *Parser) primary() *ir.Node {
	switch {
	case p.at(tInteger):
		tok := p.cur
		p.advance()
		return ir.New(ir.INT_LITERAL, tok.line, parseIntLiteral(tok.val))
	case p.at(tLParen):
		p.advance()
		e := p.expression()
		p.expect(tRParen)
		return e
	case p.at(tIdentifier):
		nameTok := p.cur
		p.advance()
		if p.at(tLBracket) {
			p.advance()
			idx := p.expression()
			p.expect(tRBracket)
			return ir.New(ir.ARRAY_ACCESS, nameTok.line, nameTok.val,
				ir.New(ir.IDENTIFIER, nameTok.line, nameTok.val), idx)
		}
		if p.at(tLParen) {
			return p.callRest(nameTok)
		}
		return ir.New(ir.IDENTIFIER, nameTok.line, nameTok.val)
	default:
		p.diags.Report(p.cur.line, "unexpected token %s %q in expression", p.cur.typ, p.cur.val)
		tok := p.cur
		p.advance()
		return ir.New(ir.INT_LITERAL, tok.line, 0)
	}
}

// callRest parses the argument list of a call, "(" already seen pending.
func (p *Parser) callRest(nameTok token) *ir.Node {
	p.expect(tLParen)
	var args []*ir.Node
	if !p.at(tRParen) {
		for {
			args = append(args, p.expression())
			if p.at(tComma) {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(tRParen)
	argList := ir.New(ir.ARG_LIST, nameTok.line, nil, args...)
	return ir.New(ir.FUNC_CALL, nameTok.line, nameTok.val,
		ir.New(ir.IDENTIFIER, nameTok.line, nameTok.val), argList)
}

func parseIntLiteral(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// TokenStream lexes src and returns a human readable token listing, used by
// the "--tokens" driver flag to let callers inspect lexing independent of
// parsing, following vslc's frontend.TokenStream.
func TokenStream(src string) string {
	l := newLexer(src)
	var out string
	for {
		t := l.nextToken()
		out += fmt.Sprintf("%-12s %-10q line %d\n", t.typ, t.val, t.line)
		if t.typ == tEOF || t.typ == tError {
			break
		}
	}
	return out
}
