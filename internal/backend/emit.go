// Package backend walks a TAC instruction stream and prints a complete
// textual x86_64 assembly module: data/bss layout for every declared
// variable and temporary, function prologues/epilogues, and System-V
// style argument passing. Grounded on vslc's backend/riscv package
// (GenRiscv's section-by-section emission shape and genFunction's
// prologue/epilogue), but the register-allocating registerFile model
// (backend/riscv/riscv.go) is not carried over: every operand stays in
// memory and is reloaded aggressively rather than tracked live in a
// register between instructions.
package backend

import (
	"fmt"

	"minic/internal/ir"
	"minic/internal/tac"
	"minic/internal/util"
)

// tempPoolSize is the fixed number of reserved temporary cells, independent
// of how many the generator actually produced.
const tempPoolSize = 100

const wordSize = 8

// fmtLabel names the single read-only format-string constant used by the
// print runtime call.
const fmtLabel = "fmt_int"

// localFrameSize is the small fixed local area reserved in every function
// prologue. minic keeps every live value in global storage, so this space
// is never addressed; it exists so the frame shape matches what a System-V
// caller expects to see reserved.
const localFrameSize = 64

// Emit writes a complete assembly module for code to opt.Out, using sym to
// lay out storage for every declared variable and array.
func Emit(sym *ir.SymTab, code []tac.Instr, opt Options) error {
	w := util.NewWriter(opt.Out)

	w.Write("# minic build %s target %s\n", opt.BuildID, opt.Target)
	w.Write("\t.section .note.GNU-stack,\"\",@progbits\n\n")

	emitData(w)
	emitBSS(w, sym)

	functions, entry, hasUserMain := splitFunctions(code)

	w.Write("\t.text\n")
	w.Write("\t.globl main\n")
	w.Write("\t.extern printf\n\n")

	if !hasUserMain {
		emitSyntheticMain(w, entry, makeResolver(sym, ir.GlobalScope))
	}
	for _, fn := range functions {
		emitFunction(w, fn, paramNames(sym, fn.name), makeResolver(sym, fn.name))
	}

	return w.Err()
}

// paramNames returns name's declared parameters in declaration order, or
// nil if name is not a registered function (the implicit entry point has
// none). Used by emitFunction to fetch each parameter's pushed stack slot
// into its bss cell at function entry.
func paramNames(sym *ir.SymTab, name string) []string {
	s, ok := sym.Lookup(name)
	if !ok || s.Kind != ir.KindFunction {
		return nil
	}
	return s.ParamNames
}

// makeResolver returns the function an emitFunction/emitSyntheticMain pass
// uses to turn a bare TAC operand name into its assembly label. It mirrors
// SymTab.LookupInScope: names local to scope win, everything else (global
// variables, function-pool temporaries) resolves unqualified.
func makeResolver(sym *ir.SymTab, scope string) func(string) string {
	return func(name string) string {
		if name == "" {
			return name
		}
		if s, ok := sym.LookupInScope(name, scope); ok {
			return symbolLabel(s.Name, s.Scope)
		}
		return name
	}
}

// emitData writes the read-only data region: a single format string
// constant printing a signed decimal integer followed by newline.
func emitData(w *util.Writer) {
	w.Write("\t.section .rodata\n")
	w.Write("%s:\n", fmtLabel)
	w.Write("\t.string \"%%d\\n\"\n\n")
}

// emitBSS writes the uninitialized-data region: one word per variable
// symbol, array_size words per array, then the fixed t0..t99 pool.
func emitBSS(w *util.Writer, sym *ir.SymTab) {
	w.Write("\t.bss\n")
	for _, s := range sym.Iterate() {
		if s.Kind != ir.KindVariable {
			continue
		}
		size := wordSize
		if s.IsArray {
			size = s.ArraySize * wordSize
		}
		w.Write("%s:\n\t.zero %d\n", symbolLabel(s.Name, s.Scope), size)
	}
	for i := 0; i < tempPoolSize; i++ {
		w.Write("t%d:\n\t.zero %d\n", i, wordSize)
	}
	w.Write("\n")
}

// symbolLabel renders a (name, scope) pair as a unique assembly label.
// Global symbols keep their bare name; per-function symbols (parameters,
// function-local variables) are qualified so two functions' locals never
// collide in the flat bss namespace.
func symbolLabel(name, scope string) string {
	if scope == "" || scope == ir.GlobalScope {
		return name
	}
	return fmt.Sprintf("%s__%s", scope, name)
}

// splitFunctions partitions a flat instruction stream into the
// instructions preceding the first FUNCTION_LABEL (the implicit program
// entry) and one functionBody per FUNCTION_LABEL-delimited region. If one
// of those functions is literally named "main", it satisfies the module's
// entry-point contract directly and no synthetic main is emitted.
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

type functionBody struct {
	name string
	body []tac.Instr
}
