package backend

import (
	"fmt"

	"minic/internal/tac"
	"minic/internal/util"
)

// emitSyntheticMain wraps entry -- every top-level instruction that
// precedes the first user function -- in the standard prologue/epilogue
// pair used for the program's entry point.
func emitSyntheticMain(w *util.Writer, entry []tac.Instr, resolve func(string) string) {
	w.Label("main")
	prologue(w)
	for _, in := range entry {
		emitInstr(w, in, resolve)
	}
	w.Ins2("movl", "%eax", "$0")
	epilogue(w)
	w.Write("\n")
}

// emitFunction emits one FUNCTION_LABEL-delimited region with its own
// prologue; RETURN/RETURN_VOID instructions inside the body each emit
// their own teardown.
func emitFunction(w *util.Writer, fn functionBody, params []string, resolve func(string) string) {
	w.Label(fn.name)
	prologue(w)
	loadParams(w, params, resolve)
	for _, in := range fn.body {
		emitInstr(w, in, resolve)
	}
	// A function whose body falls through without an explicit return
	// still needs a teardown; the TAC generator appends RETURN_VOID for
	// void functions, so this only guards against a malformed stream.
	if len(fn.body) == 0 || fn.body[len(fn.body)-1].Op != tac.RETURN && fn.body[len(fn.body)-1].Op != tac.RETURN_VOID {
		epilogue(w)
	}
	w.Write("\n")
}

// loadParams copies each caller-pushed argument off the stack into its
// parameter's bss cell. PARAM pushes arguments in source order, so the
// callee sees them in reverse on top of stack (spec's CALL/PARAM
// convention): the most recently pushed argument (the last one in source
// order) sits nearest the return address at 16(%rbp), and each earlier
// argument sits one word further out. When this function's own parameter
// count is odd, the CALL site (instr.go) pushed one extra padding word
// immediately before calling to keep %rsp 16-byte aligned; that word lands
// between the return address and the arguments, so every offset shifts out
// by one fixed word to match.
func loadParams(w *util.Writer, params []string, resolve func(string) string) {
	n := len(params)
	pad := 0
	if n%2 == 1 {
		pad = wordSize
	}
	for i, name := range params {
		offset := 16 + pad + (n-1-i)*wordSize
		w.Ins2("movq", "%rax", fmt.Sprintf("%d(%%rbp)", offset))
		w.Ins2("movq", resolve(name)+"(%rip)", "%rax")
	}
}

func prologue(w *util.Writer) {
	w.Ins1("pushq", "%rbp")
	w.Ins2("movq", "%rbp", "%rsp")
	w.Ins2("subq", "%rsp", fmt.Sprintf("$%d", localFrameSize))
}

func epilogue(w *util.Writer) {
	w.Write("\tleave\n")
	w.Write("\tret\n")
}
