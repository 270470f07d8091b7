package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"minic/internal/diag"
	"minic/internal/frontend"
	"minic/internal/ir"
)

func parse(t *testing.T, src string) (*ir.Node, *ir.SymTab, *diag.Bag) {
	t.Helper()
	sym := ir.NewSymTab()
	diags := diag.NewBag()
	p := frontend.NewParser(src, sym, diags)
	tree := p.Parse()
	require.Zero(t, diags.Len(), "source must parse cleanly for this test")
	return tree, sym, diags
}

func TestAnalyzeWellFormedProgramReportsNoErrors(t *testing.T) {
	tree, sym, diags := parse(t, `
		int a;
		a = 2 + 3 * 4;
		print(a);
	`)
	require.Zero(t, Analyze(tree, sym, diags))
}

func TestAnalyzeUndeclaredIdentifier(t *testing.T) {
	tree, sym, diags := parse(t, `
		int x;
		x = y + 1;
	`)
	n := Analyze(tree, sym, diags)
	require.Equal(t, 1, n)
	require.Contains(t, diags.All()[0].Message, "y")
}

func TestAnalyzeUseBeforeInitialization(t *testing.T) {
	tree, sym, diags := parse(t, `
		int x;
		int y;
		y = x;
	`)
	n := Analyze(tree, sym, diags)
	require.Equal(t, 1, n)
	require.Contains(t, diags.All()[0].Message, "initialization")
}

func TestAnalyzeAssignmentAnywhereMarksInitialized(t *testing.T) {
	// Conservative rule: an assignment anywhere in the tree (even one inside
	// a loop body that might never run) marks the variable initialized for
	// every read the walk reaches after it, since analysis is a single,
	// non-branch-sensitive tree walk.
	tree, sym, diags := parse(t, `
		int x;
		int y;
		int c;
		c = 0;
		while (c < 1) {
			x = 0;
			c = 1;
		}
		y = x;
	`)
	n := Analyze(tree, sym, diags)
	require.Zero(t, n)
}

func TestAnalyzeArraysArePreInitialized(t *testing.T) {
	tree, sym, diags := parse(t, `
		int arr[4];
		int i;
		i = arr[0];
	`)
	require.Zero(t, Analyze(tree, sym, diags))
}

func TestAnalyzeNonArrayIndexing(t *testing.T) {
	tree, sym, diags := parse(t, `
		int x;
		int i;
		x = 1;
		i = x[0];
	`)
	n := Analyze(tree, sym, diags)
	require.Equal(t, 1, n)
}

func TestAnalyzeFunctionArityAndArgTypes(t *testing.T) {
	tree, sym, diags := parse(t, `
		int add(int a, int b) {
			return a + b;
		}
		int r;
		r = add(1, 2, 3);
	`)
	n := Analyze(tree, sym, diags)
	require.Equal(t, 1, n)
	require.Contains(t, diags.All()[0].Message, "argument")
}

func TestAnalyzeCallingNonFunction(t *testing.T) {
	tree, sym, diags := parse(t, `
		int x;
		int r;
		x = 1;
		r = x(1);
	`)
	n := Analyze(tree, sym, diags)
	require.Equal(t, 1, n)
}

func TestAnalyzeCascadeSuppression(t *testing.T) {
	// y is undeclared; the enclosing binary expression must not pile on a
	// second, redundant "type mismatch" diagnostic.
	tree, sym, diags := parse(t, `
		int x;
		x = (y + 1) * 2;
	`)
	n := Analyze(tree, sym, diags)
	require.Equal(t, 1, n)
}

func TestAnalyzeParametersArePreInitialized(t *testing.T) {
	tree, sym, diags := parse(t, `
		int id(int a) {
			return a;
		}
	`)
	require.Zero(t, Analyze(tree, sym, diags))
}
