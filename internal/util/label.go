package util

import "fmt"

// Gen allocates fresh temporary and label names during TAC generation.
// Mirrors vslc's util/label.go NewLabel/ListenLabel idiom, but the two
// counters live on a plain struct reset at the start of each compilation
// rather than a channel-backed listener goroutine -- there is exactly one
// TAC generator running at a time, so there is no concurrent access to
// synchronize.
type Gen struct {
	tempSeq  int
	labelSeq int
}

// NewGen returns a generator with both counters at zero.
func NewGen() *Gen {
	return &Gen{}
}

// NewTemp returns the next fresh temporary name, "t0", "t1", ...
func (g *Gen) NewTemp() string {
	name := fmt.Sprintf("t%d", g.tempSeq)
	g.tempSeq++
	return name
}

// NewLabel returns the next fresh label name, "L0", "L1", ...
func (g *Gen) NewLabel() string {
	name := fmt.Sprintf("L%d", g.labelSeq)
	g.labelSeq++
	return name
}

