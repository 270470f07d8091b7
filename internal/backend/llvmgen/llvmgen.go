// Package llvmgen is an alternate code generation backend, selected with
// "--emit llvm", that lowers the same TAC stream the native x86_64 emitter
// in internal/backend consumes into LLVM IR text instead of hand-rolled
// assembly mnemonics. It plays the role vslc's ir/llvm/transform.go plays
// for that compiler, but is built on github.com/llir/llvm's pure-Go IR
// builder rather than cgo bindings to a real libLLVM: see DESIGN.md for
// why that substitution was made.
//
// Every named operand keeps the same memory-only discipline the native
// backend uses: each variable, array, and fixed temporary is a global i64
// (or [N x i64]) value, loaded before use and stored after every
// computation, rather than promoted to an SSA register. This keeps the
// two backends' storage models -- and therefore their "what does the
// emitter own" story -- identical; only the instruction syntax differs.
package llvmgen

import (
	"fmt"
	"io"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	myir "minic/internal/ir"
	"minic/internal/tac"
)

// Options configures a single LLVM IR emission run.
type Options struct {
	Out     io.Writer
	BuildID string
}

const tempPoolSize = 100

var icmpPred = map[string]enum.IPred{
	"<":  enum.IPredSLT,
	">":  enum.IPredSGT,
	"<=": enum.IPredSLE,
	">=": enum.IPredSGE,
	"==": enum.IPredEQ,
	"!=": enum.IPredNE,
}

// Emit builds an LLVM module for code and writes its textual form to
// opt.Out.
func Emit(sym *myir.SymTab, code []tac.Instr, opt Options) error {
	m := ir.NewModule()
	m.SourceFilename = fmt.Sprintf("minic build %s", opt.BuildID)

	g := newGen(m, sym)
	g.declareGlobals()
	printf := g.declarePrintf()

	functions, entry, hasUserMain := splitFunctions(code)

	// Declare every function before lowering any body, so a call to a
	// function defined later in the source (or to main itself) still
	// resolves via calleeOf.
	var mainFunc *ir.Func
	if !hasUserMain {
		mainFunc = m.NewFunc("main", types.I32)
	}
	funcs := make([]*ir.Func, len(functions))
	for i, fn := range functions {
		funcs[i] = m.NewFunc(fn.name, types.I32)
	}

	if !hasUserMain {
		g.emitFunctionBody(mainFunc, myir.GlobalScope, entry, printf)
	}
	for i, fn := range functions {
		g.emitFunctionBody(funcs[i], fn.name, fn.body, printf)
	}

	_, err := io.WriteString(opt.Out, m.String())
	return err
}

// gen holds module-wide state shared across every function lowered from
// the TAC stream: the global value table and the symbol table used to
// resolve bare names to scoped globals.
type gen struct {
	m       *ir.Module
	sym     *myir.SymTab
	globals map[string]*ir.Global
	fmtStr  *ir.Global

	// pendingArgs accumulates the values lowered by consecutive PARAM
	// instructions until the CALL that follows them consumes and resets
	// it; spec's ordering guarantee (PARAM instructions for one call are
	// contiguous and immediately precede its CALL) makes a single
	// module-wide slot safe even across nested calls in argument position.
	pendingArgs []value.Value
}

func newGen(m *ir.Module, sym *myir.SymTab) *gen {
	return &gen{m: m, sym: sym, globals: map[string]*ir.Global{}}
}

func (g *gen) declareGlobals() {
	for _, s := range g.sym.Iterate() {
		if s.Kind != myir.KindVariable {
			continue
		}
		name := globalName(s.Name, s.Scope)
		if s.IsArray {
			arrType := types.NewArray(uint64(s.ArraySize), types.I64)
			g.globals[name] = g.m.NewGlobalDef(name, constant.NewZeroInitializer(arrType))
		} else {
			g.globals[name] = g.m.NewGlobalDef(name, constant.NewInt(types.I64, 0))
		}
	}
	for i := 0; i < tempPoolSize; i++ {
		name := fmt.Sprintf("t%d", i)
		g.globals[name] = g.m.NewGlobalDef(name, constant.NewInt(types.I64, 0))
	}
}

func (g *gen) declarePrintf() *ir.Func {
	param := ir.NewParam("", types.NewPointer(types.I8))
	f := g.m.NewFunc("printf", types.I32, param)
	f.Sig.Variadic = true
	return f
}

func globalName(name, scope string) string {
	if scope == "" || scope == myir.GlobalScope {
		return name
	}
	return fmt.Sprintf("%s__%s", scope, name)
}

// resolve returns the global backing a bare TAC operand name under scope,
// mirroring SymTab.LookupInScope; unqualified temporaries resolve to the
// shared pool.
func (g *gen) resolve(name, scope string) *ir.Global {
	if name == "" {
		return nil
	}
	if s, ok := g.sym.LookupInScope(name, scope); ok {
		return g.globals[globalName(s.Name, s.Scope)]
	}
	return g.globals[name]
}

type functionBody struct {
	name string
	body []tac.Instr
}

// splitFunctions mirrors internal/backend's split: instructions before the
// first FUNCTION_LABEL form the implicit entry point, and each
// FUNCTION_LABEL opens a new named function.
func splitFunctions(code []tac.Instr) (functions []functionBody, entry []tac.Instr, hasUserMain bool) {
	var cur *functionBody
	for _, in := range code {
		if in.Op == tac.FUNCTION_LABEL {
			if cur != nil {
				functions = append(functions, *cur)
			}
			cur = &functionBody{name: in.Label}
			if in.Label == "main" {
				hasUserMain = true
			}
			continue
		}
		if cur == nil {
			entry = append(entry, in)
			continue
		}
		cur.body = append(cur.body, in)
	}
	if cur != nil {
		functions = append(functions, *cur)
	}
	return functions, entry, hasUserMain
}

// emitFunctionBody lowers one FUNCTION_LABEL-delimited (or implicit-entry)
// instruction run into basic blocks, one per LABEL, wiring branches
// between them as GOTO/IF_FALSE direct.
func (g *gen) emitFunctionBody(f *ir.Func, scope string, body []tac.Instr, printf *ir.Func) {
	blocks := map[string]*ir.Block{"entry": f.NewBlock("entry")}
	labelOf := func(name string) *ir.Block {
		if b, ok := blocks[name]; ok {
			return b
		}
		b := f.NewBlock(name)
		blocks[name] = b
		return b
	}
	// Pre-create every labeled block so forward branches resolve.
	for _, in := range body {
		if in.Op == tac.LABEL {
			labelOf(in.Label)
		}
	}

	cur := blocks["entry"]
	for _, in := range body {
		switch in.Op {
		case tac.LABEL:
			target := labelOf(in.Label)
			if cur.Term == nil {
				cur.NewBr(target)
			}
			cur = target

		case tac.GOTO:
			cur.NewBr(labelOf(in.Label))

		case tac.IF_FALSE:
			v := g.load(cur, in.Op1, scope)
			zero := constant.NewInt(types.I64, 0)
			cond := cur.NewICmp(enum.IPredNE, v, zero)
			next := f.NewBlock("")
			cur.NewCondBr(cond, next, labelOf(in.Label))
			cur = next

		default:
			g.lowerStraightLine(cur, scope, in, printf)
		}
	}
	if cur.Term == nil {
		cur.NewRet(constant.NewInt(types.I32, 0))
	}
}

// lowerStraightLine emits the instructions with no control-flow effect:
// arithmetic, memory, calls and returns.
func (g *gen) lowerStraightLine(b *ir.Block, scope string, in tac.Instr, printf *ir.Func) {
	switch in.Op {
	case tac.LOAD_CONST:
		n := parseDecimal(in.Op1)
		b.NewStore(constant.NewInt(types.I64, int64(n)), g.resolve(in.Result, scope))

	case tac.ASSIGN:
		v := g.load(b, in.Op1, scope)
		b.NewStore(v, g.resolve(in.Result, scope))

	case tac.ADD, tac.SUB, tac.MUL, tac.DIV, tac.MOD:
		l := g.load(b, in.Op1, scope)
		r := g.load(b, in.Op2, scope)
		var res value.Value
		switch in.Op {
		case tac.ADD:
			res = b.NewAdd(l, r)
		case tac.SUB:
			res = b.NewSub(l, r)
		case tac.MUL:
			res = b.NewMul(l, r)
		case tac.DIV:
			res = b.NewSDiv(l, r)
		case tac.MOD:
			res = b.NewSRem(l, r)
		}
		b.NewStore(res, g.resolve(in.Result, scope))

	case tac.RELOP:
		l := g.load(b, in.Op1, scope)
		r := g.load(b, in.Op2, scope)
		cmp := b.NewICmp(icmpPred[in.Label], l, r)
		ext := b.NewZExt(cmp, types.I64)
		b.NewStore(ext, g.resolve(in.Result, scope))

	case tac.ARRAY_LOAD:
		idx := g.load(b, in.Op2, scope)
		gv := g.resolve(in.Op1, scope)
		ptr := b.NewGetElementPtr(gv.ContentType, gv, constant.NewInt(types.I64, 0), idx)
		v := b.NewLoad(types.I64, ptr)
		b.NewStore(v, g.resolve(in.Result, scope))

	case tac.ARRAY_STORE:
		idx := g.load(b, in.Op1, scope)
		v := g.load(b, in.Op2, scope)
		gv := g.resolve(in.Result, scope)
		ptr := b.NewGetElementPtr(gv.ContentType, gv, constant.NewInt(types.I64, 0), idx)
		b.NewStore(v, ptr)

	case tac.PRINT:
		v := g.load(b, in.Op1, scope)
		fmtPtr := b.NewGetElementPtr(g.fmtGlobal().ContentType, g.fmtGlobal(), constant.NewInt(types.I64, 0), constant.NewInt(types.I64, 0))
		b.NewCall(printf, fmtPtr, v)

	case tac.PARAM:
		g.pendingArgs = append(g.pendingArgs, g.load(b, in.Op1, scope))

	case tac.CALL:
		args := g.pendingArgs
		g.pendingArgs = nil
		callee, ok := calleeOf(g.m, in.Label)
		if ok {
			g.bindParams(b, in.Label, args)
			res := b.NewCall(callee)
			b.NewStore(res, g.resolve(in.Result, scope))
		}

	case tac.RETURN:
		v := g.load(b, in.Op1, scope)
		trunc := b.NewTrunc(v, types.I32)
		b.NewRet(trunc)

	case tac.RETURN_VOID:
		b.NewRet(constant.NewInt(types.I32, 0))
	}
}

// bindParams stores each argument value (in declaration order) into the
// callee's parameter globals before the call executes, since every
// parameter here is a scope-qualified global rather than an LLVM formal
// argument -- the same memory-only discipline every other operand uses.
func (g *gen) bindParams(b *ir.Block, callee string, args []value.Value) {
	sym, ok := g.sym.Lookup(callee)
	if !ok {
		return
	}
	for i, v := range args {
		if i >= len(sym.ParamNames) {
			break
		}
		dst := g.resolve(sym.ParamNames[i], callee)
		if dst == nil {
			continue
		}
		b.NewStore(v, dst)
	}
}

func (g *gen) load(b *ir.Block, name, scope string) value.Value {
	gv := g.resolve(name, scope)
	return b.NewLoad(types.I64, gv)
}

func calleeOf(m *ir.Module, name string) (*ir.Func, bool) {
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// fmtGlobal lazily defines (and caches) the module's single format-string
// constant, mirroring the native backend's read-only "fmt_int" region.
func (g *gen) fmtGlobal() *ir.Global {
	if g.fmtStr != nil {
		return g.fmtStr
	}
	data := constant.NewCharArrayFromString("%d\n\x00")
	g.fmtStr = g.m.NewGlobalDef("fmt_int", data)
	return g.fmtStr
}

func parseDecimal(s string) int {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return -n
	}
	return n
}
