// Package compiler wires the four core phases and the front end into the
// single linear pipeline the driver invokes. Grounded on vslc's
// src/main.go run(opt) function, which performs the same
// read -> parse -> symtab -> validate -> generate sequence; the
// concurrency setup around it (ListenWrite/ListenLabel/perror goroutines,
// sync.WaitGroup) is dropped since this pipeline is single-threaded
// throughout, and the Optimise step is dropped entirely (out of scope; see
// DESIGN.md).
package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"minic/internal/analysis"
	"minic/internal/backend"
	"minic/internal/backend/llvmgen"
	"minic/internal/diag"
	"minic/internal/frontend"
	"minic/internal/ir"
	"minic/internal/tac"
)

// Options configures one end-to-end compilation.
type Options struct {
	Src     string // source file path, or "" to read stdin.
	Out     io.Writer
	Target  string
	Emit    string // "asm" (default) or "llvm".
	Tokens  bool   // print the token stream and stop.
	Verbose bool   // print the syntax tree and TAC to stderr.
}

// Run executes the whole pipeline: read source, lex+parse, analyze,
// generate TAC, emit. It returns a non-nil error wrapped with the phase
// that failed; semantic errors and I/O failures are both reported this
// way.
func Run(opt Options) error {
	src, err := readSource(opt.Src)
	if err != nil {
		return errors.Wrap(err, "reading source")
	}

	if opt.Tokens {
		_, err := io.WriteString(opt.Out, frontend.TokenStream(src))
		return errors.Wrap(err, "writing token stream")
	}

	diags := diag.NewBag()
	sym := ir.NewSymTab()
	p := frontend.NewParser(src, sym, diags)
	tree := p.Parse()

	if diags.Len() > 0 {
		reportAll(diags)
		return errors.Errorf("%d parse error(s)", diags.Len())
	}

	if opt.Verbose {
		tree.Print(0)
	}

	if n := analysis.Analyze(tree, sym, diags); n > 0 {
		reportAll(diags)
		return errors.Errorf("%d semantic error(s)", n)
	}

	code := tac.Generate(tree)

	if opt.Verbose {
		for _, in := range code {
			fmt.Fprintln(os.Stderr, in.String())
		}
	}

	buildID := uuid.NewString()

	switch opt.Emit {
	case "llvm":
		err := llvmgen.Emit(sym, code, llvmgen.Options{Out: opt.Out, BuildID: buildID})
		return errors.Wrap(err, "emitting llvm ir")
	default:
		err := backend.Emit(sym, code, backend.Options{Out: opt.Out, BuildID: buildID, Target: opt.Target})
		return errors.Wrap(err, "emitting assembly")
	}
}

func reportAll(diags *diag.Bag) {
	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

// readSource reads the whole of path, or stdin when path is empty.
// Grounded on vslc's util/io.go ReadSource, simplified: vslc reads stdin
// with a 500ms goroutine-backed timeout to detect an interactive terminal
// with nothing piped in; that protection has no bearing on this
// synchronous, single-threaded pipeline, so this reads stdin directly.
func readSource(path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
