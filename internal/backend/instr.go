package backend

import (
	"fmt"

	"minic/internal/tac"
	"minic/internal/util"
)

// relopSuffix maps the operator text RELOP carries in its Label field to
// the x86 condition-code suffix used by the set-byte instruction.
var relopSuffix = map[string]string{
	"<":  "l",
	">":  "g",
	"<=": "le",
	">=": "ge",
	"==": "e",
	"!=": "ne",
}

// emitInstr lowers one TAC instruction to its memory-only x86_64
// rendering: every operand round-trips through its bss cell, resolved
// through resolve; no value survives between instructions in a register.
func emitInstr(w *util.Writer, in tac.Instr, resolve func(string) string) {
	switch in.Op {
	case tac.LOAD_CONST:
		w.Ins2("movq", "%rax", "$"+in.Op1)
		w.Ins2("movq", resolve(in.Result)+"(%rip)", "%rax")

	case tac.ASSIGN:
		w.Ins2("movq", "%rax", resolve(in.Op1)+"(%rip)")
		w.Ins2("movq", resolve(in.Result)+"(%rip)", "%rax")

	case tac.ADD:
		arith(w, resolve, "addq", in)
	case tac.SUB:
		arith(w, resolve, "subq", in)
	case tac.MUL:
		arith(w, resolve, "imulq", in)

	case tac.DIV, tac.MOD:
		w.Ins2("movq", "%rax", resolve(in.Op1)+"(%rip)")
		w.WriteString("\tcqto\n")
		w.Ins1("idivq", resolve(in.Op2)+"(%rip)")
		if in.Op == tac.DIV {
			w.Ins2("movq", resolve(in.Result)+"(%rip)", "%rax")
		} else {
			w.Ins2("movq", resolve(in.Result)+"(%rip)", "%rdx")
		}

	case tac.RELOP:
		suffix := relopSuffix[in.Label]
		w.Ins2("movq", "%rax", resolve(in.Op1)+"(%rip)")
		w.Ins2("cmpq", "%rax", resolve(in.Op2)+"(%rip)")
		w.Ins1("set"+suffix, "%al")
		w.Ins2("movzbq", "%rax", "%al")
		w.Ins2("movq", resolve(in.Result)+"(%rip)", "%rax")

	case tac.LABEL:
		w.Label(in.Label)

	case tac.GOTO:
		w.Ins1("jmp", in.Label)

	case tac.IF_FALSE:
		w.Ins2("movq", "%rax", resolve(in.Op1)+"(%rip)")
		w.Ins2("testq", "%rax", "%rax")
		w.Ins1("je", in.Label)

	case tac.ARRAY_LOAD:
		w.Ins2("movq", "%rax", resolve(in.Op2)+"(%rip)")
		w.Ins2("movq", "%rdx", fmt.Sprintf("%s(,%%rax,%d)", resolve(in.Op1), wordSize))
		w.Ins2("movq", resolve(in.Result)+"(%rip)", "%rdx")

	case tac.ARRAY_STORE:
		w.Ins2("movq", "%rax", resolve(in.Op1)+"(%rip)")
		w.Ins2("movq", "%rdx", resolve(in.Op2)+"(%rip)")
		w.Ins2("movq", fmt.Sprintf("%s(,%%rax,%d)", resolve(in.Result), wordSize), "%rdx")

	case tac.PARAM:
		w.Ins1("pushq", resolve(in.Op1)+"(%rip)")

	case tac.CALL:
		n := parseArgCount(in.Op1)
		// System V requires %rsp congruent to 0 mod 16 at the point CALL
		// executes. Entering this sequence %rsp is 16-aligned (the
		// invariant every prologue/epilogue and call site preserves), and
		// each PARAM push shifts it by 8, so an odd argument count leaves
		// it misaligned; push one more word of padding to restore
		// alignment rather than "and"-ing %rsp after the pushes, which
		// would insert a runtime-sized gap between the last argument and
		// the return address that function.go's fixed %rbp offsets can't
		// account for. Padding is the last thing pushed (nearest the
		// return address), so loadParams adds the same fixed 8 bytes back
		// whenever its own parameter count is odd.
		padded := n%2 == 1
		if padded {
			w.Ins2("subq", "%rsp", fmt.Sprintf("$%d", wordSize))
		}
		w.Ins1("call", in.Label)
		pop := n * wordSize
		if padded {
			pop += wordSize
		}
		if pop > 0 {
			w.Ins2("addq", "%rsp", fmt.Sprintf("$%d", pop))
		}
		w.Ins2("movq", resolve(in.Result)+"(%rip)", "%rax")

	case tac.RETURN:
		w.Ins2("movq", "%rax", resolve(in.Op1)+"(%rip)")
		epilogue(w)

	case tac.RETURN_VOID:
		epilogue(w)

	case tac.PRINT:
		emitPrint(w, resolve, in)

	case tac.FUNCTION_LABEL:
		// Handled by the caller; function bodies are split out in
		// splitFunctions before emitInstr ever sees one.
	}
}

func arith(w *util.Writer, resolve func(string) string, op string, in tac.Instr) {
	w.Ins2("movq", "%rax", resolve(in.Op1)+"(%rip)")
	w.Ins2(op, "%rax", resolve(in.Op2)+"(%rip)")
	w.Ins2("movq", resolve(in.Result)+"(%rip)", "%rax")
}

// parseArgCount reads the decimal argument count CALL carries in Op1.
func parseArgCount(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
