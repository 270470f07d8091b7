// Package analysis walks a syntax tree and validates it against the symbol
// table, filling in function signatures and initialization flags as it
// goes. Grounded on vslc's ir/validate.go (validateTree/validateExpr/
// validateAssign family of methods on *Node), generalized from VSL's
// int/float lattice down to minic's integer-only types and with the
// parallel/sequential sync.WaitGroup split removed: analysis here always
// runs as one sequential tree walk.
package analysis

import (
	"minic/internal/diag"
	"minic/internal/ir"
)

// Analyzer holds the state of a single analysis run: the symbol table being
// filled in/consulted, the diagnostic sink, and the scope currently in
// effect.
type Analyzer struct {
	sym   *ir.SymTab
	diags *diag.Bag
	scope string
}

// Analyze walks tree, validating it against table and reporting problems
// into diags. It returns the number of diagnostics reported; zero means
// the program is well-formed and the pipeline may proceed.
func Analyze(tree *ir.Node, table *ir.SymTab, diags *diag.Bag) int {
	a := &Analyzer{sym: table, diags: diags, scope: ir.GlobalScope}
	a.walkProgram(tree)
	return diags.Len()
}

func (a *Analyzer) walkProgram(n *ir.Node) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		a.statement(c)
	}
}

// statement dispatches on n's NodeType and performs the checks and symbol
// table updates appropriate for that kind of statement.
func (a *Analyzer) statement(n *ir.Node) {
	if n == nil {
		return
	}
	switch n.Typ {
	case ir.VAR_DECL, ir.ARRAY_DECL:
		// Pre-populated by the parser; re-confirm presence only.
		name, _ := n.Data.(string)
		if _, ok := a.sym.LookupInScope(name, a.scope); !ok {
			a.diags.Report(n.Line, "internal error: declaration of %q missing from symbol table", name)
		}

	case ir.ASSIGN_STMT:
		a.assignStmt(n)

	case ir.ARRAY_STORE_STMT:
		a.arrayStoreStmt(n)

	case ir.PRINT_STMT:
		a.typeOf(n.Children[0])

	case ir.WHILE_STMT:
		a.condition(n.Children[0])
		a.walkBlock(n.Children[1])

	case ir.IF_STMT:
		a.condition(n.Children[0])
		a.walkBlock(n.Children[1])
		if len(n.Children) > 2 {
			a.walkBlock(n.Children[2])
		}

	case ir.FOR_STMT:
		a.statement(n.Children[0])
		a.condition(n.Children[1])
		a.statement(n.Children[2])
		a.walkBlock(n.Children[3])

	case ir.DO_WHILE_STMT:
		a.walkBlock(n.Children[0])
		a.condition(n.Children[1])

	case ir.FUNC_DECL:
		a.registerFunction(n, nil)

	case ir.FUNC_DEF:
		a.funcDef(n)

	case ir.FUNC_CALL:
		a.typeOf(n)

	case ir.RETURN_STMT:
		if len(n.Children) > 0 {
			a.typeOf(n.Children[0])
		}

	case ir.STATEMENT_LIST:
		a.walkBlock(n)

	default:
		a.diags.Report(n.Line, "internal error: unexpected statement node %s", n.Type())
	}
}

// walkBlock walks the statements of a STATEMENT_LIST. Loop and branch
// bodies do not introduce a new scope.
func (a *Analyzer) walkBlock(n *ir.Node) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		a.statement(c)
	}
}

// condition types a relational expression used as a loop or branch guard.
func (a *Analyzer) condition(n *ir.Node) {
	a.typeOf(n)
}

func (a *Analyzer) assignStmt(n *ir.Node) {
	lhsNode := n.Children[0]
	name, _ := lhsNode.Data.(string)
	sym, ok := a.sym.LookupInScope(name, a.scope)
	if !ok {
		a.diags.Report(n.Line, "assignment to undeclared variable %q", name)
		a.typeOf(n.Children[1])
		return
	}
	rhsType := a.typeOf(n.Children[1])
	if rhsType != ir.TypeUnknown && sym.Type != rhsType {
		a.diags.Report(n.Line, "type mismatch in assignment to %q: expected %s, got %s", name, sym.Type, rhsType)
	}
	a.sym.MarkInitialized(name, a.scope)
}

func (a *Analyzer) arrayStoreStmt(n *ir.Node) {
	nameNode := n.Children[0]
	name, _ := nameNode.Data.(string)
	idxNode := n.Children[1]
	valNode := n.Children[2]

	sym, ok := a.sym.LookupInScope(name, a.scope)
	switch {
	case !ok:
		a.diags.Report(n.Line, "assignment to undeclared array %q", name)
	case !sym.IsArray:
		a.diags.Report(n.Line, "%q is not an array", name)
	}

	idxType := a.typeOf(idxNode)
	if idxType != ir.TypeUnknown && idxType != ir.TypeInt {
		a.diags.Report(idxNode.Line, "array index must be int, got %s", idxType)
	}

	valType := a.typeOf(valNode)
	if ok && sym.IsArray && valType != ir.TypeUnknown && valType != sym.Type {
		a.diags.Report(n.Line, "type mismatch storing into %q: expected %s, got %s", name, sym.Type, valType)
	}
}

// registerFunction computes the function's signature from its tree and
// registers it (and its parameters) in the symbol table if not already
// present. Shared by FUNC_DECL and FUNC_DEF.
func (a *Analyzer) registerFunction(n *ir.Node, returnTypeOverride *ir.DataType) (name string, retType ir.DataType) {
	nameNode := n.Children[0]
	name, _ = nameNode.Data.(string)
	paramListNode := n.Children[1]

	paramTypes := make([]ir.DataType, 0, len(paramListNode.Children))
	paramNames := make([]string, 0, len(paramListNode.Children))
	for _, p := range paramListNode.Children {
		pname, _ := p.Data.(string)
		paramNames = append(paramNames, pname)
		paramTypes = append(paramTypes, ir.TypeInt)
	}

	retType = ir.TypeInt
	if returnTypeOverride != nil {
		retType = *returnTypeOverride
	}

	if _, exists := a.sym.Lookup(name); !exists {
		a.sym.AddFunction(name, retType, paramTypes, paramNames, n.Line)
	}

	for i, pname := range paramNames {
		a.sym.AddParameter(pname, paramTypes[i], n.Line, name)
	}
	return name, retType
}

func (a *Analyzer) funcDef(n *ir.Node) {
	retTypeNode := n.Children[3]
	retTypeText, _ := retTypeNode.Data.(string)
	retType := ir.TypeInt
	if retTypeText == "void" {
		retType = ir.TypeVoid
	}

	name, _ := a.registerFunction(n, &retType)

	prevScope := a.scope
	a.scope = name
	a.walkBlock(n.Children[2])
	a.scope = prevScope
}

// typeOf types an expression node, reporting any semantic errors it finds,
// and returns its result type. Binary, relational and array-access
// expressions return ir.TypeUnknown whenever an operand or index already
// produced unknown, so enclosing operators do not re-report the same
// mismatch. A call to a known function types as its declared return type
// regardless of its arguments' types.
func (a *Analyzer) typeOf(n *ir.Node) ir.DataType {
	if n == nil {
		return ir.TypeUnknown
	}
	switch n.Typ {
	case ir.INT_LITERAL:
		return ir.TypeInt

	case ir.IDENTIFIER:
		name, _ := n.Data.(string)
		sym, ok := a.sym.LookupInScope(name, a.scope)
		if !ok {
			a.diags.Report(n.Line, "use of undeclared identifier %q", name)
			return ir.TypeUnknown
		}
		if sym.Kind == ir.KindVariable && !sym.IsArray && !sym.IsInitialized {
			a.diags.Report(n.Line, "use of %q before initialization", name)
		}
		return sym.Type

	case ir.ARRAY_ACCESS:
		name, _ := n.Data.(string)
		sym, ok := a.sym.LookupInScope(name, a.scope)
		idxType := a.typeOf(n.Children[1])
		if idxType != ir.TypeUnknown && idxType != ir.TypeInt {
			a.diags.Report(n.Children[1].Line, "array index must be int, got %s", idxType)
		}
		if !ok {
			a.diags.Report(n.Line, "use of undeclared array %q", name)
			return ir.TypeUnknown
		}
		if !sym.IsArray {
			a.diags.Report(n.Line, "%q is not an array", name)
			return ir.TypeUnknown
		}
		if idxType != ir.TypeInt {
			return ir.TypeUnknown
		}
		return sym.Type

	case ir.BINARY_EXPR:
		lt := a.typeOf(n.Children[0])
		rt := a.typeOf(n.Children[1])
		if lt == ir.TypeUnknown || rt == ir.TypeUnknown {
			return ir.TypeUnknown
		}
		if lt != ir.TypeInt || rt != ir.TypeInt {
			a.diags.Report(n.Line, "type mismatch in binary operation %q: %s vs %s", n.Data, lt, rt)
			return ir.TypeUnknown
		}
		return ir.TypeInt

	case ir.RELATION_EXPR:
		lt := a.typeOf(n.Children[0])
		rt := a.typeOf(n.Children[1])
		if lt == ir.TypeUnknown || rt == ir.TypeUnknown {
			return ir.TypeUnknown
		}
		if lt != ir.TypeInt || rt != ir.TypeInt {
			a.diags.Report(n.Line, "type mismatch in condition: %s vs %s", lt, rt)
			return ir.TypeUnknown
		}
		return ir.TypeInt

	case ir.FUNC_CALL:
		return a.funcCall(n)

	default:
		a.diags.Report(n.Line, "internal error: unexpected expression node %s", n.Type())
		return ir.TypeUnknown
	}
}

func (a *Analyzer) funcCall(n *ir.Node) ir.DataType {
	name, _ := n.Children[0].Data.(string)
	argListNode := n.Children[1]

	sym, ok := a.sym.Lookup(name)
	if !ok {
		a.diags.Report(n.Line, "call to undeclared function %q", name)
		for _, arg := range argListNode.Children {
			a.typeOf(arg)
		}
		return ir.TypeUnknown
	}
	if sym.Kind != ir.KindFunction {
		a.diags.Report(n.Line, "calling %q, which is not a function", name)
		for _, arg := range argListNode.Children {
			a.typeOf(arg)
		}
		return ir.TypeUnknown
	}

	if len(argListNode.Children) != sym.ParamCount {
		a.diags.Report(n.Line, "%q expects %d argument(s), got %d", name, sym.ParamCount, len(argListNode.Children))
	}

	for i, arg := range argListNode.Children {
		argType := a.typeOf(arg)
		if i < len(sym.ParamTypes) && argType != ir.TypeUnknown && argType != sym.ParamTypes[i] {
			a.diags.Report(arg.Line, "argument %d to %q: expected %s, got %s", i+1, name, sym.ParamTypes[i], argType)
		}
	}

	return sym.ReturnType
}
