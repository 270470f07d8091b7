// Command minic compiles a single source file into target assembly (or,
// with --emit llvm, LLVM IR text). Grounded on vslc's src/main.go driver,
// with argument parsing rebuilt on cobra/pflag instead of vslc's
// hand-rolled util/args.go flag loop.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minic/internal/compiler"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		out     string
		target  string
		emit    string
		tokens  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "minic [source]",
		Short: "compile a minic source file to assembly",
		Long: "minic is a whole-program compiler for a small imperative language\n" +
			"(integer scalars and 1-D arrays, arithmetic and relational\n" +
			"expressions, control flow, and functions). It writes a linearly\n" +
			"assemblable assembly module, or LLVM IR text with --emit llvm.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ""
			if len(args) == 1 {
				src = args[0]
			}

			sink := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				return compiler.Run(compiler.Options{
					Src:     src,
					Out:     f,
					Target:  target,
					Emit:    emit,
					Tokens:  tokens,
					Verbose: verbose,
				})
			}

			return compiler.Run(compiler.Options{
				Src:     src,
				Out:     sink,
				Target:  target,
				Emit:    emit,
				Tokens:  tokens,
				Verbose: verbose,
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default stdout)")
	cmd.Flags().StringVar(&target, "target", "x86_64", "target architecture (only x86_64 is supported)")
	cmd.Flags().StringVar(&emit, "emit", "asm", "code generation backend: asm or llvm")
	cmd.Flags().BoolVar(&tokens, "tokens", false, "print the token stream and exit")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the syntax tree and TAC to stderr")

	return cmd
}
