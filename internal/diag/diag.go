// Package diag provides the diagnostic sink used by the semantic analyzer.
// It follows the shape of vslc's util.perror but drops the
// goroutine/channel machinery that type used to serve parallel worker
// threads: this pipeline is single-threaded and synchronous throughout, so
// the bag is a plain append-only slice behind a few methods.
package diag

import "fmt"

// Diagnostic is a single reported error: a source line and a message.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Bag accumulates diagnostics across a single analysis run. Errors are
// accumulated, not thrown: analysis continues after each one so that a
// single run can surface as many as possible.
type Bag struct {
	items []Diagnostic
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag {
	return &Bag{}
}

// Report appends a new diagnostic at line with a formatted message.
func (b *Bag) Report(line int, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...)})
}

// Len returns the number of diagnostics reported so far; this is the error
// count the analyzer's contract returns to gate the rest of the pipeline.
func (b *Bag) Len() int {
	return len(b.items)
}

// All returns every diagnostic reported, in report order.
func (b *Bag) All() []Diagnostic {
	return b.items
}
