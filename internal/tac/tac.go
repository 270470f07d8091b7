// Package tac lowers a validated syntax tree into a flat three-address-code
// instruction stream. Grounded in shape on vslc's backend code generators
// (riscv.GenRiscv/genFunction walking the tree instruction by instruction),
// but the instruction model itself is vslc's lir.Value SSA graph replaced
// by a much simpler flat, string-keyed {Op, Result, Op1, Op2, Label} record
// -- the register-allocating virtual-register IR in ir/lir is more
// machinery than a memory-only emitter needs.
package tac

import (
	"fmt"

	"minic/internal/ir"
	"minic/internal/util"
)

// Op is a TAC opcode.
type Op int

const (
	LOAD_CONST Op = iota
	ASSIGN
	ADD
	SUB
	MUL
	DIV
	MOD
	RELOP
	PRINT
	LABEL
	GOTO
	IF_FALSE
	ARRAY_LOAD
	ARRAY_STORE
	FUNCTION_LABEL
	PARAM
	CALL
	RETURN
	RETURN_VOID
)

var opNames = [...]string{
	"LOAD_CONST", "ASSIGN", "ADD", "SUB", "MUL", "DIV", "MOD", "RELOP",
	"PRINT", "LABEL", "GOTO", "IF_FALSE", "ARRAY_LOAD", "ARRAY_STORE",
	"FUNCTION_LABEL", "PARAM", "CALL", "RETURN", "RETURN_VOID",
}

func (o Op) String() string {
	if int(o) < 0 || int(o) >= len(opNames) {
		return "UNKNOWN"
	}
	return opNames[o]
}

// Instr is a single three-address-code instruction: an opcode plus up to
// three string operands and an auxiliary label field, reused for
// relational operator text and call targets.
type Instr struct {
	Op     Op
	Result string
	Op1    string
	Op2    string
	Label  string
}

func (i Instr) String() string {
	return fmt.Sprintf("%s %s, %s, %s, %s", i.Op, i.Result, i.Op1, i.Op2, i.Label)
}

var binOp = map[string]Op{
	"+": ADD,
	"-": SUB,
	"*": MUL,
	"/": DIV,
	"%": MOD,
}

// Generator lowers a tree into an Instr stream, allocating fresh
// temporaries and labels as it goes.
type Generator struct {
	gen  *util.Gen
	code []Instr
}

// Generate lowers tree into a linear instruction list. It never fails;
// well-formedness is the analyzer's responsibility.
func Generate(tree *ir.Node) []Instr {
	g := &Generator{gen: util.NewGen()}
	g.program(tree)
	return g.code
}

func (g *Generator) emit(i Instr) {
	g.code = append(g.code, i)
}

func (g *Generator) program(n *ir.Node) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		g.topLevel(c)
	}
}

// topLevel lowers a top-level declaration or function. Scalar/array
// declarations carry no runtime instructions; storage for them is the
// emitter's concern.
func (g *Generator) topLevel(n *ir.Node) {
	switch n.Typ {
	case ir.VAR_DECL, ir.ARRAY_DECL, ir.FUNC_DECL:
		return
	case ir.FUNC_DEF:
		g.funcDef(n)
	default:
		g.statement(n)
	}
}

func (g *Generator) funcDef(n *ir.Node) {
	name, _ := n.Data.(string)
	g.emit(Instr{Op: FUNCTION_LABEL, Label: name})
	g.block(n.Children[2])

	retTypeText, _ := n.Children[3].Data.(string)
	if retTypeText == "void" {
		if len(g.code) == 0 || g.code[len(g.code)-1].Op != RETURN_VOID {
			g.emit(Instr{Op: RETURN_VOID})
		}
	}
}

func (g *Generator) block(n *ir.Node) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		g.statement(c)
	}
}

func (g *Generator) statement(n *ir.Node) {
	switch n.Typ {
	case ir.VAR_DECL, ir.ARRAY_DECL:
		// No runtime effect; storage is reserved by the emitter.

	case ir.ASSIGN_STMT:
		lhs, _ := n.Children[0].Data.(string)
		val := g.expr(n.Children[1])
		g.emit(Instr{Op: ASSIGN, Result: lhs, Op1: val})

	case ir.ARRAY_STORE_STMT:
		name, _ := n.Children[0].Data.(string)
		idx := g.expr(n.Children[1])
		val := g.expr(n.Children[2])
		g.emit(Instr{Op: ARRAY_STORE, Result: name, Op1: idx, Op2: val})

	case ir.PRINT_STMT:
		val := g.expr(n.Children[0])
		g.emit(Instr{Op: PRINT, Op1: val})

	case ir.STATEMENT_LIST:
		g.block(n)

	case ir.WHILE_STMT:
		g.whileStmt(n.Children[0], n.Children[1])

	case ir.IF_STMT:
		g.ifStmt(n)

	case ir.FOR_STMT:
		g.forStmt(n)

	case ir.DO_WHILE_STMT:
		g.doWhileStmt(n)

	case ir.FUNC_CALL:
		g.expr(n)

	case ir.RETURN_STMT:
		if len(n.Children) > 0 {
			val := g.expr(n.Children[0])
			g.emit(Instr{Op: RETURN, Op1: val})
		} else {
			g.emit(Instr{Op: RETURN_VOID})
		}

	case ir.FUNC_DEF:
		g.funcDef(n)
	}
}

// whileStmt lowers "while (C) { B }": allocate Lstart, Lend; LABEL
// Lstart; lower C; IF_FALSE c goto Lend; lower B; GOTO Lstart; LABEL
// Lend.
func (g *Generator) whileStmt(cond, body *ir.Node) {
	lstart := g.gen.NewLabel()
	lend := g.gen.NewLabel()
	g.emit(Instr{Op: LABEL, Label: lstart})
	c := g.expr(cond)
	g.emit(Instr{Op: IF_FALSE, Op1: c, Label: lend})
	g.block(body)
	g.emit(Instr{Op: GOTO, Label: lstart})
	g.emit(Instr{Op: LABEL, Label: lend})
}

func (g *Generator) ifStmt(n *ir.Node) {
	cond := n.Children[0]
	then := n.Children[1]
	if len(n.Children) == 2 {
		lend := g.gen.NewLabel()
		c := g.expr(cond)
		g.emit(Instr{Op: IF_FALSE, Op1: c, Label: lend})
		g.block(then)
		g.emit(Instr{Op: LABEL, Label: lend})
		return
	}
	els := n.Children[2]
	lelse := g.gen.NewLabel()
	lend := g.gen.NewLabel()
	c := g.expr(cond)
	g.emit(Instr{Op: IF_FALSE, Op1: c, Label: lelse})
	g.block(then)
	g.emit(Instr{Op: GOTO, Label: lend})
	g.emit(Instr{Op: LABEL, Label: lelse})
	g.block(els)
	g.emit(Instr{Op: LABEL, Label: lend})
}

// forStmt lowers "for (init; C; step) B" as "init; while (C) { B; step }".
func (g *Generator) forStmt(n *ir.Node) {
	init, cond, step, body := n.Children[0], n.Children[1], n.Children[2], n.Children[3]
	g.statement(init)

	lstart := g.gen.NewLabel()
	lend := g.gen.NewLabel()
	g.emit(Instr{Op: LABEL, Label: lstart})
	c := g.expr(cond)
	g.emit(Instr{Op: IF_FALSE, Op1: c, Label: lend})
	g.block(body)
	g.statement(step)
	g.emit(Instr{Op: GOTO, Label: lstart})
	g.emit(Instr{Op: LABEL, Label: lend})
}

// doWhileStmt lowers "do B while (C)" with two labels and a direct
// fallthrough: LABEL Lstart; B; c = C; IF_FALSE c GOTO Lend; GOTO Lstart;
// LABEL Lend. Body runs at least once and repeats while C holds.
func (g *Generator) doWhileStmt(n *ir.Node) {
	body, cond := n.Children[0], n.Children[1]
	lstart := g.gen.NewLabel()
	lend := g.gen.NewLabel()
	g.emit(Instr{Op: LABEL, Label: lstart})
	g.block(body)
	c := g.expr(cond)
	g.emit(Instr{Op: IF_FALSE, Op1: c, Label: lend})
	g.emit(Instr{Op: GOTO, Label: lstart})
	g.emit(Instr{Op: LABEL, Label: lend})
}

// expr lowers an expression and returns the name of the storage cell
// holding its value.
func (g *Generator) expr(n *ir.Node) string {
	switch n.Typ {
	case ir.INT_LITERAL:
		t := g.gen.NewTemp()
		lit := fmt.Sprintf("%v", n.Data)
		g.emit(Instr{Op: LOAD_CONST, Result: t, Op1: lit})
		return t

	case ir.IDENTIFIER:
		name, _ := n.Data.(string)
		return name

	case ir.BINARY_EXPR:
		opText, _ := n.Data.(string)
		left := g.expr(n.Children[0])
		right := g.expr(n.Children[1])
		t := g.gen.NewTemp()
		g.emit(Instr{Op: binOp[opText], Result: t, Op1: left, Op2: right})
		return t

	case ir.RELATION_EXPR:
		opText, _ := n.Data.(string)
		left := g.expr(n.Children[0])
		right := g.expr(n.Children[1])
		t := g.gen.NewTemp()
		g.emit(Instr{Op: RELOP, Result: t, Op1: left, Op2: right, Label: opText})
		return t

	case ir.ARRAY_ACCESS:
		name, _ := n.Children[0].Data.(string)
		idx := g.expr(n.Children[1])
		t := g.gen.NewTemp()
		g.emit(Instr{Op: ARRAY_LOAD, Result: t, Op1: name, Op2: idx})
		return t

	case ir.FUNC_CALL:
		return g.funcCall(n)

	default:
		t := g.gen.NewTemp()
		g.emit(Instr{Op: LOAD_CONST, Result: t, Op1: "0"})
		return t
	}
}

// funcCall lowers arguments in source order, emitting one PARAM per
// argument before the CALL.
func (g *Generator) funcCall(n *ir.Node) string {
	name, _ := n.Children[0].Data.(string)
	argListNode := n.Children[1]

	argNames := make([]string, 0, len(argListNode.Children))
	for _, arg := range argListNode.Children {
		argNames = append(argNames, g.expr(arg))
	}
	for _, a := range argNames {
		g.emit(Instr{Op: PARAM, Op1: a})
	}

	t := g.gen.NewTemp()
	g.emit(Instr{Op: CALL, Result: t, Op1: fmt.Sprintf("%d", len(argNames)), Label: name})
	return t
}
