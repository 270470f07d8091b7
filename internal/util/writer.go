// Package util provides small shared helpers used across compiler phases:
// fresh temporary/label name generation and the assembly Writer. Grounded
// on vslc's util package of the same responsibilities, with the
// concurrency machinery stripped: the whole pipeline is single-threaded,
// so there is nothing here for a mutex or a channel to protect.
package util

import (
	"fmt"
	"io"
)

// Writer writes assembly text straight to an io.Writer the driver owns,
// with no buffering of its own. Grounded on vslc's util/io.go Writer type
// (Ins1/Ins2/Label helpers over a strings.Builder drained by a listener
// goroutine), with the channel-backed listener removed: the core writes
// its output stream directly and never closes it, so there is nothing left
// for a listener goroutine to do. vslc's Ins3 (three-operand forms) has no
// counterpart here: the x86_64 mnemonics minic emits are all zero-, one-,
// or two-operand, so every one- or two-operand instruction goes through
// Ins1 or Ins2; zero-operand lines, labels and data directives use Write or
// WriteString.
type Writer struct {
	out io.Writer
	err error
}

// NewWriter returns a Writer that appends every write to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Write formats and appends a line of assembly text.
func (w *Writer) Write(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, err := fmt.Fprintf(w.out, format, args...)
	if err != nil {
		w.err = err
	}
}

// WriteString appends s verbatim, without a trailing newline.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	_, err := io.WriteString(w.out, s)
	if err != nil {
		w.err = err
	}
}

// Label emits a "name:" line.
func (w *Writer) Label(name string) {
	w.Write("%s:\n", name)
}

// Ins1 emits a one-operand instruction line, indented like the rest of a
// function body.
func (w *Writer) Ins1(op, rs1 string) {
	w.Write("\t%s\t%s\n", op, rs1)
}

// Ins2 emits a two-operand instruction line.
func (w *Writer) Ins2(op, dst, src string) {
	w.Write("\t%s\t%s, %s\n", op, src, dst)
}

// Err returns the first write error encountered, if any. The emitter
// checks this once at the end rather than after every line.
func (w *Writer) Err() error {
	return w.err
}
