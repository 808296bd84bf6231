// Package proofsink defines the external proof-file collaborator: the
// orchestrator emits ordered clause-lifecycle records, and a Sink turns
// them into bytes. Byte-level framing is explicitly out of scope for the
// core (spec.md §1); this package only carries the contract plus one
// reference implementation so the repository still compiles end to end.
package proofsink

import (
	"bufio"
	"fmt"
	"io"
)

// Sink receives proof records in the order the coordinator produces them.
// A Sink must tolerate being driven from a single goroutine only; the core
// never calls it concurrently with itself (spec.md §5).
type Sink interface {
	Orig(id int64, lits []int)
	Add(id int64, lits []int)
	Del(id int64, lits []int)
	FinalCl(id int64, lits []int)
	// Fin terminates the current record stream, per the `fin` separator
	// token described in spec.md §6.
	Fin()
}

// WriterSink is a reference Sink writing the FRAT-like token stream
// described in spec.md §6: {orig, add, del, finalcl, ID, lits..., 0} lines,
// terminated by a `fin` line. Comment lines are never emitted by this
// writer, but a reader built against the same grammar must tolerate them.
type WriterSink struct {
	w   *bufio.Writer
	err error
}

// NewWriterSink wraps w for buffered record output.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

func (s *WriterSink) record(op string, id int64, lits []int) {
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.w, "%s %d", op, id); err != nil {
		s.err = err
		return
	}
	for _, l := range lits {
		if _, err := fmt.Fprintf(s.w, " %d", l); err != nil {
			s.err = err
			return
		}
	}
	_, s.err = fmt.Fprint(s.w, " 0\n")
}

func (s *WriterSink) Orig(id int64, lits []int)    { s.record("orig", id, lits) }
func (s *WriterSink) Add(id int64, lits []int)     { s.record("add", id, lits) }
func (s *WriterSink) Del(id int64, lits []int)     { s.record("del", id, lits) }
func (s *WriterSink) FinalCl(id int64, lits []int) { s.record("finalcl", id, lits) }

// Fin writes the terminating separator and flushes the buffer.
func (s *WriterSink) Fin() {
	if s.err == nil {
		_, s.err = fmt.Fprint(s.w, "fin\n")
	}
	if s.err == nil {
		s.err = s.w.Flush()
	}
}

// Err returns the first write error encountered, if any.
func (s *WriterSink) Err() error { return s.err }
