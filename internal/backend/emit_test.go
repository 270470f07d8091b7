package backend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"minic/internal/analysis"
	"minic/internal/diag"
	"minic/internal/frontend"
	"minic/internal/ir"
	"minic/internal/tac"
)

func compileToAsm(t *testing.T, src string) string {
	t.Helper()
	sym := ir.NewSymTab()
	diags := diag.NewBag()
	p := frontend.NewParser(src, sym, diags)
	tree := p.Parse()
	require.Zero(t, diags.Len())
	require.Zero(t, analysis.Analyze(tree, sym, diags))
	code := tac.Generate(tree)

	var buf bytes.Buffer
	err := Emit(sym, code, Options{Out: &buf, BuildID: "test-build", Target: "x86_64"})
	require.NoError(t, err)
	return buf.String()
}

func TestEmitDeclaresStorageForEveryVariable(t *testing.T) {
	out := compileToAsm(t, `int a; int arr[5]; a = 1; arr[0] = a; print(a);`)
	require.Contains(t, out, "a:\n\t.zero 8")
	require.Contains(t, out, "arr:\n\t.zero 40")
}

func TestEmitReservesFixedTemporaryPool(t *testing.T) {
	out := compileToAsm(t, `int a; a = 1 + 2; print(a);`)
	require.Contains(t, out, "t0:\n\t.zero 8")
	require.Contains(t, out, "t99:\n\t.zero 8")
}

func TestEmitMainHasPrologueAndEpilogue(t *testing.T) {
	out := compileToAsm(t, `int a; a = 1; print(a);`)
	require.Contains(t, out, "main:")
	require.Contains(t, out, "pushq\t%rbp")
	require.Contains(t, out, "leave")
	require.Contains(t, out, "ret")
}

func TestEmitUserMainSuppressesSyntheticEntry(t *testing.T) {
	out := compileToAsm(t, `
		int add(int a, int b) {
			return a + b;
		}
		int main() {
			print(add(5, 10));
			return 0;
		}
	`)
	require.Equal(t, 1, strings.Count(out, "main:"))
}

func TestEmitPrintCallsExternalPrintf(t *testing.T) {
	out := compileToAsm(t, `int a; a = 1; print(a);`)
	require.Contains(t, out, "\t.extern printf")
	require.Contains(t, out, "call\tprintf")
}

func TestEmitFunctionParametersGetScopedLabels(t *testing.T) {
	out := compileToAsm(t, `
		int add(int a, int b) {
			return a + b;
		}
		int r;
		r = add(1, 2);
	`)
	require.Contains(t, out, "add__a:")
	require.Contains(t, out, "add__b:")
}

func TestEmitFunctionLoadsParametersFromStack(t *testing.T) {
	out := compileToAsm(t, `
		int add(int a, int b) {
			return a + b;
		}
		int r;
		r = add(1, 2);
	`)
	require.Contains(t, out, "add:")
	addBody := out[strings.Index(out, "add:"):]
	require.Contains(t, addBody, "16(%rbp), %rax")
	require.Contains(t, addBody, "movq\t%rax, add__b(%rip)")
	require.Contains(t, addBody, "24(%rbp), %rax")
	require.Contains(t, addBody, "movq\t%rax, add__a(%rip)")
}

func TestEmitCallPadsOddArgumentCountToKeepStackAligned(t *testing.T) {
	out := compileToAsm(t, `
		int f(int a) {
			return a;
		}
		int r;
		r = f(1);
	`)
	// The call site pushes one arg (odd), so it must pad %rsp back to a
	// 16-byte boundary before the call and pop both the padding and the
	// argument afterward.
	callSite := out[strings.Index(out, "call\tf"):]
	before := out[:strings.Index(out, "call\tf")]
	require.Contains(t, before, "subq\t$8, %rsp")
	require.Contains(t, callSite, "addq\t$16, %rsp")

	// f has one parameter, so loadParams must account for the caller's
	// padding word sitting between the return address and the argument.
	fBody := out[strings.Index(out, "f:"):]
	require.Contains(t, fBody, "24(%rbp), %rax")
	require.Contains(t, fBody, "movq\t%rax, f__a(%rip)")
}

func TestEmitCallLeavesEvenArgumentCountUnpadded(t *testing.T) {
	out := compileToAsm(t, `
		int add(int a, int b) {
			return a + b;
		}
		int r;
		r = add(1, 2);
	`)
	require.NotContains(t, out, "subq\t$8, %rsp")
	require.Contains(t, out, "addq\t$16, %rsp")
}

func TestEmitRelopUsesConditionSuffix(t *testing.T) {
	out := compileToAsm(t, `
		int a;
		a = 1;
		while (a < 3) {
			a = a + 1;
		}
	`)
	require.Contains(t, out, "setl\t%al")
}
