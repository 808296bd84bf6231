// Package searcher defines the Searcher contract the orchestrator treats
// as an assumed primitive (spec.md §1): the inner CDCL decision / propagate
// / backtrack loop. The contract is deliberately narrow - add clauses,
// assume, bounded solve, read back values, a conflict, interrupt and
// best-effort stats - so any CDCL core could sit behind it. The reference
// implementation wraps github.com/go-air/gini, the same constraint-solving
// backend operator-framework's operator-lifecycle-manager embeds rather
// than writing its own.
package searcher

import (
	"math"
	"sync"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
)

// Var is a searcher-space variable: dense from 0, opaque to the caller
// beyond that.
type Var int32

// Lit is a searcher-space literal: sign in the low bit, variable index in
// the high bits - the same convention the orchestrator's InterLit uses.
// Conversion to gini's z.Lit goes through DIMACS integers (see toZLit).
type Lit int32

// Lit returns the positive literal for v.
func (v Var) Lit() Lit { return Lit(v * 2) }

// Var returns the variable of l.
func (l Lit) Var() Var { return Var(l / 2) }

// IsPositive reports whether l is unnegated.
func (l Lit) IsPositive() bool { return l%2 == 0 }

// Negation flips l's sign.
func (l Lit) Negation() Lit { return l ^ 1 }

// Result is the outcome of a Solve or GoSolve call.
type Result byte

const (
	Undef Result = iota
	Sat
	Unsat
)

// Stats is the subset of a Searcher's running counters the orchestrator can
// surface through §4.12's StatsRow without reaching into the core's
// internals. What a given backend can report is necessarily limited by what
// its own public API exposes; see GiniSearcher.Stats for gini's case.
type Stats struct {
	// Conflicts counts terminal Unsat results: each one is backed by at
	// least one real conflict, a true lower bound rather than an exact
	// per-conflict tally.
	Conflicts int64
	// Restarts counts budgeted solves that came back Undef, the boundary
	// at which the orchestrator's outer loop actually restarts.
	Restarts int64
	// Learned counts every clause handed to AddClause, original formula
	// and orchestrator-pushed lemmas alike - gini gives no way to isolate
	// clauses its own conflict analysis derived internally.
	Learned int64
}

// Searcher is the inner CDCL engine contract. Every method operates purely
// in searcher-space variables/literals; the orchestrator's InterVar/InterLit
// values never cross this boundary directly, only through the translation
// the adapter performs.
type Searcher interface {
	NewVar() Var
	MaxVar() Var

	// AddClause adds lits as a single clause. An empty slice adds the
	// empty clause (immediate UNSAT).
	AddClause(lits []Lit)

	// Assume records lits as assumptions for the next Solve call only.
	Assume(lits ...Lit)

	// SolveWithBudget runs the core until a terminal result or until
	// budget is exhausted, returning Undef in the latter case. budget <= 0
	// means run to completion.
	SolveWithBudget(budget int64) Result

	// Value returns l's value in the last SAT result.
	Value(l Lit) bool

	// Why returns the subset of the last assumption set that explains an
	// UNSAT result, for get_conflict.
	Why() []Lit

	// Interrupt asks the core to stop as soon as possible, even mid-Solve.
	Interrupt()

	// Stats reports the core's running counters, best-effort per backend.
	Stats() Stats
}

// GiniSearcher adapts a *gini.Gini instance to the Searcher contract.
type GiniSearcher struct {
	g *gini.Gini

	mu      sync.Mutex
	current inter.Solve

	conflicts int64
	restarts  int64
	learned   int64
}

// New returns a Searcher backed by a fresh gini instance.
func New() *GiniSearcher {
	return &GiniSearcher{g: gini.New()}
}

// budgetTick is the wall-clock translation applied to a conflict-shaped
// budget before handing it to gini's GoSolve().Try: gini's public API
// (github.com/go-air/gini, confirmed against inter.Solve) exposes only a
// duration-based cutoff, never a conflict-counted one, so a budget unit is
// treated as this much solving time rather than a literal conflict count.
const budgetTick = 50 * time.Microsecond

func toZVar(v Var) z.Var { return z.Var(v) }

func fromZVar(v z.Var) Var { return Var(v) }

func toZLit(l Lit) z.Lit {
	d := Lit(l).dimacs()
	return z.Dimacs2Lit(d)
}

func fromZLit(l z.Lit) Lit {
	return fromDimacs(l.Dimacs())
}

// dimacs converts a searcher.Lit to a nonzero signed int the way
// OutsideLit.Int does, so translation goes through gini's own documented
// entry point (z.Dimacs2Lit) rather than relying on encoding identity.
func (l Lit) dimacs() int {
	sign := l&1 == 1
	res := int(l/2) + 1
	if sign {
		return -res
	}
	return res
}

func fromDimacs(d int) Lit {
	if d < 0 {
		return Lit(2*(-d-1) + 1)
	}
	return Lit(2 * (d - 1))
}

// NewVar allocates a fresh variable in the underlying gini instance.
func (s *GiniSearcher) NewVar() Var {
	return fromZVar(s.g.Lit().Var())
}

// MaxVar returns the highest variable allocated so far.
func (s *GiniSearcher) MaxVar() Var {
	return fromZVar(s.g.MaxVar())
}

// AddClause adds lits terminated implicitly, following inter.Adder's
// explicit-zero convention.
func (s *GiniSearcher) AddClause(lits []Lit) {
	var a inter.Adder = s.g
	for _, l := range lits {
		a.Add(toZLit(l))
	}
	a.Add(z.LitNull)
	s.learned++
}

// Assume records assumptions for the next Solve.
func (s *GiniSearcher) Assume(lits ...Lit) {
	zlits := make([]z.Lit, len(lits))
	for i, l := range lits {
		zlits[i] = toZLit(l)
	}
	var a inter.Assumable = s.g
	a.Assume(zlits...)
}

// SolveWithBudget runs gini for at most budget ticks (budgetTick each) via
// GoSolve().Try; budget <= 0 asks for no timeout at all. Always going
// through GoSolve, even for an unbounded solve, keeps a live handle in
// s.current so Interrupt can Stop it regardless of whether the caller gave
// a budget.
func (s *GiniSearcher) SolveWithBudget(budget int64) Result {
	c := s.g.GoSolve()
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()

	timeout := time.Duration(math.MaxInt64)
	if budget > 0 {
		timeout = time.Duration(budget) * budgetTick
	}
	r := c.Try(timeout)

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	return s.resultOf(r)
}

func (s *GiniSearcher) resultOf(code int) Result {
	switch code {
	case 1:
		return Sat
	case -1:
		s.conflicts++
		return Unsat
	default:
		s.restarts++
		return Undef
	}
}

// Value reports l's value after a Sat result.
func (s *GiniSearcher) Value(l Lit) bool {
	var m inter.Model = s.g
	return m.Value(toZLit(l))
}

// Why returns the assumptions implicated in the last UNSAT result.
func (s *GiniSearcher) Why() []Lit {
	var a inter.Assumable = s.g
	why := a.Why(nil)
	out := make([]Lit, len(why))
	for i, zl := range why {
		out[i] = fromZLit(zl)
	}
	return out
}

// Interrupt stops the in-flight SolveWithBudget call immediately via the
// GoSolve handle's Stop, per inter.Solve (confirmed against
// _examples/go-air-gini/inter/net/netsolve.go's ToSolve wrapper). A call
// with nothing in flight, or one racing a budget that has already
// returned, is a silent no-op, matching Stop's own documented contract.
func (s *GiniSearcher) Interrupt() {
	s.mu.Lock()
	c := s.current
	s.mu.Unlock()
	if c != nil {
		c.Stop()
	}
}

// Stats reports the counters accumulated since the last call to Stats, then
// resets them - the same reset-on-read convention gini's own internal/xo.S
// documents for ReadStats (_examples/go-air-gini/internal/xo/s.go:456:
// "the solver values are reset if they are cumulative"), so a caller
// summing successive Stats() calls gets the running total without this
// adapter needing to track one itself. What is and isn't derivable from
// gini's public surface is explained on the Stats type's own fields; the
// richer ReadStats underneath isn't reachable from here since internal/
// packages aren't importable outside gini's own module.
func (s *GiniSearcher) Stats() Stats {
	st := Stats{Conflicts: s.conflicts, Restarts: s.restarts, Learned: s.learned}
	s.conflicts, s.restarts, s.learned = 0, 0, 0
	return st
}
