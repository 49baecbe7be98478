package dockstream

import "strings"

// Accumulator maintains the running concatenation of content deltas and
// the count of content-bearing chunks. Concatenation is strict append: no
// deduplication, no trimming. The transport contract guarantees deltas
// arrive in application order.
//
// The zero value is ready to use. Accumulator is not safe for concurrent
// use; the controller serializes access under its own lock.
type Accumulator struct {
	buf    strings.Builder
	chunks int
}

// Append appends one content delta and increments the chunk count.
func (a *Accumulator) Append(text string) {
	a.buf.WriteString(text)
	a.chunks++
}

// Content returns the concatenation of all deltas appended so far.
func (a *Accumulator) Content() string {
	return a.buf.String()
}

// Chunks returns the number of content-bearing chunks appended.
func (a *Accumulator) Chunks() int {
	return a.chunks
}

// VerifyLength checks the accumulated content against the byte-length
// hint from a done chunk. A mismatch is diagnostic only: the caller logs
// it and keeps the accumulated content as-is.
func (a *Accumulator) VerifyLength(hint int) bool {
	return a.buf.Len() == hint
}
