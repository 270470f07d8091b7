package tac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"minic/internal/analysis"
	"minic/internal/diag"
	"minic/internal/frontend"
	"minic/internal/ir"
)

func generate(t *testing.T, src string) []Instr {
	t.Helper()
	sym := ir.NewSymTab()
	diags := diag.NewBag()
	p := frontend.NewParser(src, sym, diags)
	tree := p.Parse()
	require.Zero(t, diags.Len())
	require.Zero(t, analysis.Analyze(tree, sym, diags))
	return Generate(tree)
}

func opSeq(code []Instr) []Op {
	ops := make([]Op, len(code))
	for i, in := range code {
		ops[i] = in.Op
	}
	return ops
}

func TestGenerateArithmeticPrecedence(t *testing.T) {
	code := generate(t, `int a; a = 2 + 3 * 4; print(a);`)
	require.Equal(t, []Op{LOAD_CONST, LOAD_CONST, LOAD_CONST, MUL, ADD, ASSIGN, PRINT}, opSeq(code))
}

func TestGenerateWhileLoopLabelsAreUnique(t *testing.T) {
	code := generate(t, `
		int i;
		i = 0;
		while (i < 3) {
			print(i);
			i = i + 1;
		}
	`)
	labels := map[string]int{}
	for _, in := range code {
		if in.Op == LABEL {
			labels[in.Label]++
		}
	}
	for l, n := range labels {
		require.Equal(t, 1, n, "label %s should appear exactly once", l)
	}
}

func TestGenerateNestedForInWhileDoesNotReuseLabels(t *testing.T) {
	code := generate(t, `
		int i;
		int j;
		i = 0;
		while (i < 2) {
			for (j = 0; j < 2; j = j + 1) {
				print(j);
			}
			i = i + 1;
		}
	`)
	seen := map[string]bool{}
	for _, in := range code {
		if in.Op != LABEL {
			continue
		}
		require.False(t, seen[in.Label], "label %s reused", in.Label)
		seen[in.Label] = true
	}
	require.True(t, len(seen) >= 4, "expected at least 2 loops worth of labels, got %d", len(seen))
}

func TestGenerateEveryGotoAndIfFalseTargetsALabel(t *testing.T) {
	code := generate(t, `
		int i;
		i = 0;
		do {
			i = i + 1;
		} while (i < 5);
		if (i < 10) {
			print(i);
		} else {
			print(0);
		}
	`)
	declared := map[string]bool{}
	for _, in := range code {
		if in.Op == LABEL {
			declared[in.Label] = true
		}
	}
	for _, in := range code {
		if in.Op == GOTO || in.Op == IF_FALSE {
			require.True(t, declared[in.Label], "branch to undeclared label %s", in.Label)
		}
	}
}

func TestGenerateFunctionCallArgOrderAndCount(t *testing.T) {
	code := generate(t, `
		int add(int a, int b) {
			return a + b;
		}
		int r;
		r = add(5, 10);
	`)
	var params []Instr
	var call Instr
	consts := map[string]string{}
	for _, in := range code {
		switch in.Op {
		case LOAD_CONST:
			consts[in.Result] = in.Op1
		case PARAM:
			params = append(params, in)
		case CALL:
			call = in
		}
	}
	require.Len(t, params, 2)
	require.Equal(t, "5", consts[params[0].Op1])
	require.Equal(t, "10", consts[params[1].Op1])
	require.Equal(t, "add", call.Label)
	require.Equal(t, "2", call.Op1)
}

func TestGenerateZeroParamFunctionEmitsNoParam(t *testing.T) {
	code := generate(t, `
		int zero() {
			return 0;
		}
		int r;
		r = zero();
	`)
	for _, in := range code {
		require.NotEqual(t, PARAM, in.Op, "zero-arg call must not emit PARAM")
	}
}

func TestGenerateEmptyBodyProducesEmptyTAC(t *testing.T) {
	code := generate(t, ``)
	require.Empty(t, code)
}

func TestGenerateIfWithoutElseHasExactlyOneSyntheticLabel(t *testing.T) {
	code := generate(t, `
		int x;
		x = 1;
		if (x < 5) {
			print(x);
		}
	`)
	labels := 0
	for _, in := range code {
		if in.Op == LABEL {
			labels++
		}
	}
	require.Equal(t, 1, labels)
}

func TestGenerateCountersResetAcrossRuns(t *testing.T) {
	src := `int a; a = 1 + 2; print(a);`
	first := generate(t, src)
	second := generate(t, src)
	require.Equal(t, first, second)
}
