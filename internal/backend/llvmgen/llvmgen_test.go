package llvmgen

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

func compileToLLVM(t *testing.T, src string) string {
	t.Helper()
	sym := ir.NewSymTab()
	diags := diag.NewBag()
	p := frontend.NewParser(src, sym, diags)
	tree := p.Parse()
	require.Zero(t, diags.Len())
	require.Zero(t, analysis.Analyze(tree, sym, diags))
	code := tac.Generate(tree)

	var buf bytes.Buffer
	err := Emit(sym, code, Options{Out: &buf, BuildID: "test-build"})
	require.NoError(t, err)
	return buf.String()
}

func TestEmitDeclaresGlobalForEveryVariable(t *testing.T) {
	out := compileToLLVM(t, `int a; int arr[5]; a = 1; arr[0] = a; print(a);`)
	require.Contains(t, out, "@a = ")
	require.Contains(t, out, "@arr = ")
}

func TestEmitReservesFixedTemporaryPool(t *testing.T) {
	out := compileToLLVM(t, `int a; a = 1 + 2; print(a);`)
	require.Contains(t, out, "@t0 = ")
	require.Contains(t, out, "@t99 = ")
}

func TestEmitUserMainSuppressesSyntheticEntry(t *testing.T) {
	out := compileToLLVM(t, `
		int add(int a, int b) {
			return a + b;
		}
		int main() {
			print(add(5, 10));
			return 0;
		}
	`)
	require.Equal(t, 1, countSubstr(out, "define i32 @main"))
}

func TestEmitBindsCallArgumentsIntoCalleeParameterGlobals(t *testing.T) {
	out := compileToLLVM(t, `
		int add(int a, int b) {
			return a + b;
		}
		int r;
		r = add(1, 2);
	`)
	require.Contains(t, out, "@add__a = ")
	require.Contains(t, out, "@add__b = ")
	// The call site must store both argument values into the callee's
	// parameter globals before invoking it; this is what distinguishes a
	// wired call from one that drops its arguments on the floor.
	mainBody := out[strings.Index(out, "define i32 @main"):]
	callSite := strings.Index(mainBody, "@add(")
	require.GreaterOrEqual(t, callSite, 0)
	before := mainBody[:callSite]
	require.Contains(t, before, "@add__a")
	require.Contains(t, before, "@add__b")
}

func countSubstr(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
