// Package occ defines the occurrence-based inprocessing collaborators the
// orchestrator treats as external: variable elimination, distillation,
// probing and strongly-connected-component detection (spec.md §1, §4.7).
// The reference Eliminator here is grounded in the occurrence-list
// resolution sketched (commented out) in the teacher's preprocess.go: build
// occurrence lists per literal, resolve pairs across a pivot, and either
// learn the resolvent or detect UNSAT.
package occ

// Var is an outer-space variable identifier, kept independent from the
// solver package's own OuterVar so this package has no dependency on it.
type Var int32

// Lit is a signed literal in the same encoding as the rest of the
// orchestrator: sign low bit, variable index high bits.
type Lit int32

// Var returns the variable of l.
func (l Lit) Var() Var { return Var(l / 2) }

// IsPositive reports whether l is unnegated.
func (l Lit) IsPositive() bool { return l%2 == 0 }

// Int converts l to a DIMACS-style nonzero signed literal, the form callers
// outside this package exchange clauses in.
func (l Lit) Int() int {
	sign := l&1 == 1
	res := int(l/2) + 1
	if sign {
		return -res
	}
	return res
}

// FromInt converts a DIMACS-style nonzero signed literal to a Lit.
func FromInt(i int) Lit {
	if i < 0 {
		return Lit(2*(-i-1) + 1)
	}
	return Lit(2 * (i - 1))
}

// Eliminator performs occurrence-based variable elimination (bounded
// variable elimination, "occ-bve") and remembers enough to reverse it.
type Eliminator interface {
	// TryEliminate attempts to eliminate v by resolving every clause
	// containing it against every clause containing its negation. It
	// succeeds only when doing so does not increase the total literal
	// count beyond a growth bound. Returns whether v was eliminated.
	TryEliminate(v Var) bool

	// Uneliminate reverses a prior elimination of v, returning the
	// resolvent clauses that must be re-admitted and whether the result is
	// consistent (false means UNSAT was discovered while reattaching).
	Uneliminate(v Var) (resolvents [][]Lit, ok bool)
}

// Distiller shortens or removes long clauses (and, separately, binaries) by
// temporarily enqueuing their negated literals and checking whether unit
// propagation already forces the clause, per the `distill-cls`/
// `distill-bins` strategy tokens.
type Distiller interface {
	DistillClauses(onlyRemove bool) (shortened, removed int)
	DistillBinaries() (removed int)
}

// Prober probes variables at decision level 1, recording any binary
// implications and failed literals it discovers, for `full-probe` and
// `intree-probe`.
type Prober interface {
	ProbeAll() (implied int)
	ProbeTree() (implied int)
}

// SCCFinder finds strongly connected components of the binary implication
// graph and reports equivalence candidates for `scc-vrepl`/`must-scc-vrepl`.
type SCCFinder interface {
	FindSCCs(threshold int) (classes [][]Lit)
}

// Subsumer removes clauses (or literals) made redundant by a subset
// relationship against the binary implication graph, for the
// `sub-impl`/`sub-cls-with-bin`/`sub-str-cls-with-bin`/`str-impl`
// strategy tokens.
type Subsumer interface {
	SubsumeBinariesByBinaries() (removed int)
	SubsumeLongsByBinaries(strengthen bool) (shortened, removed int)
	StrengthenBinariesByImplications() (removed int)
}

// NullEliminator is a reference Eliminator that never eliminates anything;
// useful as the default collaborator when occ-bve is disabled, so the
// coordinator can always call through the interface uniformly.
type NullEliminator struct{}

func (NullEliminator) TryEliminate(Var) bool { return false }

func (NullEliminator) Uneliminate(Var) ([][]Lit, bool) { return nil, true }

// occEntry is one clause's membership in a literal's occurrence list.
type occEntry struct {
	id   int
	lits []Lit
}

// ResolutionEliminator is a reference Eliminator implementing the bounded
// resolution sketched in the teacher's commented-out Problem.preprocess:
// maintain per-literal occurrence lists, and eliminate v only when the
// number of resolvents does not exceed the combined clause count for v and
// ¬v (a simple growth bound in place of the teacher's hardcoded "<10"
// threshold).
type ResolutionEliminator struct {
	occurs map[Lit][]occEntry
	clauses map[int][]Lit
	nextID int

	stack []eliminationFrame
}

type eliminationFrame struct {
	v         Var
	resolvents [][]Lit
}

// NewResolutionEliminator returns an eliminator with empty occurrence
// lists; AddClause must be called for every clause the eliminator should
// be aware of.
func NewResolutionEliminator() *ResolutionEliminator {
	return &ResolutionEliminator{
		occurs:  make(map[Lit][]occEntry),
		clauses: make(map[int][]Lit),
	}
}

// AddClause registers a clause's literals in the occurrence lists.
func (e *ResolutionEliminator) AddClause(lits []Lit) int {
	id := e.nextID
	e.nextID++
	cp := append([]Lit(nil), lits...)
	e.clauses[id] = cp
	for _, l := range lits {
		e.occurs[l] = append(e.occurs[l], occEntry{id: id, lits: cp})
	}
	return id
}

func resolve(c1, c2 []Lit, v Var) (result []Lit, tautology bool) {
	seen := make(map[Lit]bool, len(c1)+len(c2))
	for _, l := range c1 {
		if l.Var() == v {
			continue
		}
		seen[l] = true
	}
	for _, l := range c2 {
		if l.Var() == v {
			continue
		}
		if seen[l.Negation()] {
			return nil, true
		}
		seen[l] = true
	}
	for l := range seen {
		result = append(result, l)
	}
	return result, false
}

// Negation flips l's sign.
func (l Lit) Negation() Lit { return l ^ 1 }

// TryEliminate resolves every clause containing v against every clause
// containing ¬v. It refuses to eliminate when the non-tautological
// resolvents would outnumber the clauses containing v or ¬v, a stand-in for
// the teacher's growth heuristic.
func (e *ResolutionEliminator) TryEliminate(v Var) bool {
	pos := e.occurs[Lit(2*v)]
	neg := e.occurs[Lit(2*v+1)]
	if len(pos) == 0 && len(neg) == 0 {
		return false
	}
	var resolvents [][]Lit
	for _, p := range pos {
		for _, n := range neg {
			res, taut := resolve(p.lits, n.lits, v)
			if taut {
				continue
			}
			resolvents = append(resolvents, res)
		}
	}
	if len(resolvents) > len(pos)+len(neg) {
		return false
	}
	for _, id := range occurrenceIDs(pos, neg) {
		delete(e.clauses, id)
	}
	delete(e.occurs, Lit(2*v))
	delete(e.occurs, Lit(2*v+1))
	for _, r := range resolvents {
		e.AddClause(r)
	}
	e.stack = append(e.stack, eliminationFrame{v: v, resolvents: resolvents})
	return true
}

func occurrenceIDs(lists ...[]occEntry) []int {
	var ids []int
	for _, list := range lists {
		for _, e := range list {
			ids = append(ids, e.id)
		}
	}
	return ids
}

// Uneliminate pops v's elimination frame (elimination stack is LIFO per
// §4.8 step 2) and returns the resolvent clauses that must be re-admitted.
func (e *ResolutionEliminator) Uneliminate(v Var) ([][]Lit, bool) {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if e.stack[i].v != v {
			continue
		}
		frame := e.stack[i]
		e.stack = append(e.stack[:i], e.stack[i+1:]...)
		for _, r := range frame.resolvents {
			if len(r) == 0 {
				return frame.resolvents, false
			}
		}
		return frame.resolvents, true
	}
	return nil, true
}
