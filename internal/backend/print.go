package backend

import (
	"minic/internal/tac"
	"minic/internal/util"
)

// emitPrint lowers PRINT _,a into a call to the external, C-style print
// routine: format-string address into the first integer-argument
// register, the value into the second, %eax zeroed for the vector-count
// convention variadic calls expect. Grounded on vslc's backend/riscv
// print.go genPrint, which instead emits raw syscalls with a hand-rolled
// integer-to-decimal routine; minic's target emitter assumes a libc
// printf is linked in.
func emitPrint(w *util.Writer, resolve func(string) string, in tac.Instr) {
	w.Ins2("leaq", "%rdi", fmtLabel+"(%rip)")
	w.Ins2("movq", "%rsi", resolve(in.Op1)+"(%rip)")
	w.Ins2("movl", "%eax", "$0")
	w.Ins1("call", "printf")
}
