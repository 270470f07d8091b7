package compiler

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func runSrc(t *testing.T, src string, opt Options) (string, error) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "minic-*.mc")
	require.NoError(t, err)
	_, err = f.WriteString(src)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var buf bytes.Buffer
	opt.Src = f.Name()
	opt.Out = &buf
	err = Run(opt)
	return buf.String(), err
}

func TestEndToEndArithmeticPrecedence(t *testing.T) {
	out, err := runSrc(t, `int a; a = 2 + 3 * 4; print(a);`, Options{})
	require.NoError(t, err)
	require.Contains(t, out, "main:")
}

func TestEndToEndParenthesizedArithmetic(t *testing.T) {
	_, err := runSrc(t, `int a; a = (10 - 2) * (3 + 2); print(a);`, Options{})
	require.NoError(t, err)
}

func TestEndToEndWhileLoop(t *testing.T) {
	out, err := runSrc(t, `int i; i = 0; while (i < 3) { print(i); i = i + 1; }`, Options{})
	require.NoError(t, err)
	require.Contains(t, out, "call\tprintf")
}

func TestEndToEndArraySum(t *testing.T) {
	src := `
		int arr[5]; int i; int s;
		arr[0]=10; arr[1]=20; arr[2]=30; arr[3]=40; arr[4]=50;
		s=0; i=0;
		while (i<5) { s = s + arr[i]; i = i + 1; }
		print(s);
	`
	_, err := runSrc(t, src, Options{})
	require.NoError(t, err)
}

func TestEndToEndFunctionCallWithParams(t *testing.T) {
	src := `
		int add(int a, int b) { return a + b; }
		int main() { print(add(5, 10)); return 0; }
	`
	out, err := runSrc(t, src, Options{})
	require.NoError(t, err)
	require.Contains(t, out, "add:")
}

func TestEndToEndUndeclaredIdentifierHaltsBeforeEmission(t *testing.T) {
	out, err := runSrc(t, `int x; x = y + 1;`, Options{})
	require.Error(t, err)
	require.Empty(t, out)
}

func TestEndToEndLLVMBackendSelectable(t *testing.T) {
	out, err := runSrc(t, `int a; a = 1; print(a);`, Options{Emit: "llvm"})
	require.NoError(t, err)
	require.Contains(t, out, "define")
}

func TestEndToEndTokenStream(t *testing.T) {
	out, err := runSrc(t, `int a;`, Options{Tokens: true})
	require.NoError(t, err)
	require.Contains(t, out, "int")
}
