package solver

// XorClause is a parity constraint: the XOR of its variables (in outer
// space, so it survives renumbering without rewriting through a second
// map) equals RHS. The store owns XorClause objects exclusively; watchlists
// may hold only the non-owning index into Xors.
type XorClause struct {
	vars []OuterVar
	rhs  bool

	attached bool // true once matched into the CNF watch layer, §4.4
	removed  bool
}

// BnnClause is a threshold (linear) constraint: sum of true literals >= k,
// optionally equivalent to an output literal rather than merely asserted.
type BnnClause struct {
	lits   []OuterLit
	cutoff int

	out    OuterLit
	hasOut bool // false means "set": the constraint itself must hold
	removed bool
}

// XorBnnStore holds every parity and threshold constraint, each addressed
// by a stable vector position (its "xor-index"/"bnn-index" in watcher
// entries).
type XorBnnStore struct {
	xors []*XorClause
	bnns []*BnnClause

	updated bool // set whenever an XOR is added/removed; drives §4.11
}

// NewXorBnnStore returns an empty store.
func NewXorBnnStore() *XorBnnStore { return &XorBnnStore{} }

// AddXor appends a new XOR and marks the store updated, triggering matrix
// re-initialization on the next outer-loop iteration.
func (s *XorBnnStore) AddXor(vars []OuterVar, rhs bool) int {
	idx := len(s.xors)
	s.xors = append(s.xors, &XorClause{vars: vars, rhs: rhs})
	s.updated = true
	return idx
}

// Xor returns the XOR at idx.
func (s *XorBnnStore) Xor(idx int) *XorClause { return s.xors[idx] }

// Xors returns every XOR in the store, including those marked removed.
func (s *XorBnnStore) Xors() []*XorClause { return s.xors }

// RemoveXor marks idx removed (e.g. because a CNF detachment or Gaussian
// elimination subsumed it) and flags the store updated.
func (s *XorBnnStore) RemoveXor(idx int) {
	s.xors[idx].removed = true
	s.updated = true
}

// Updated reports the "XOR set changed" flag consumed by matrix
// initialization (§4.11); ClearUpdated resets it.
func (s *XorBnnStore) Updated() bool { return s.updated }

// ClearUpdated resets the flag after matrix initialization has run.
func (s *XorBnnStore) ClearUpdated() { s.updated = false }

// BnnConvertibleToCNF reports whether a threshold constraint of the given
// cutoff and size must instead be admitted as plain clauses (§4.4): cutoff
// == 1 (an OR), cutoff == size (an AND), or the cutoff=2/size=3 special
// case with a compact 3-clause encoding.
func BnnConvertibleToCNF(cutoff, size int) bool {
	return cutoff == 1 || cutoff == size || (cutoff == 2 && size == 3)
}

// CNFEncodingOr returns the clausal encoding of an "at least 1" BNN: a
// single clause over the literals, asserted true.
func CNFEncodingOr(lits []OuterLit) [][]OuterLit {
	return [][]OuterLit{append([]OuterLit(nil), lits...)}
}

// CNFEncodingAnd returns the clausal encoding of an "all must be true" BNN:
// one unit clause per literal.
func CNFEncodingAnd(lits []OuterLit) [][]OuterLit {
	out := make([][]OuterLit, len(lits))
	for i, l := range lits {
		out[i] = []OuterLit{l}
	}
	return out
}

// CNFEncodingAtLeast2Of3 returns the clausal encoding of "at least 2 of
// exactly 3" literals: every pair must have at least one true, i.e. the
// three 2-clauses obtained by dropping each literal in turn.
func CNFEncodingAtLeast2Of3(lits []OuterLit) [][]OuterLit {
	if len(lits) != 3 {
		panic("xorbnn: at-least-2-of-3 encoding requires exactly 3 literals")
	}
	return [][]OuterLit{
		{lits[0], lits[1]},
		{lits[0], lits[2]},
		{lits[1], lits[2]},
	}
}

// AddBnn appends a threshold constraint. Callers must have already checked
// BnnConvertibleToCNF and handled that case at admission instead.
func (s *XorBnnStore) AddBnn(lits []OuterLit, cutoff int, out OuterLit, hasOut bool) int {
	idx := len(s.bnns)
	s.bnns = append(s.bnns, &BnnClause{lits: lits, cutoff: cutoff, out: out, hasOut: hasOut})
	return idx
}

// Bnn returns the BNN at idx.
func (s *XorBnnStore) Bnn(idx int) *BnnClause { return s.bnns[idx] }

// Bnns returns every BNN in the store, including those marked removed.
func (s *XorBnnStore) Bnns() []*BnnClause { return s.bnns }

// BnnEvalResult is the outcome of evaluating a BNN against the current
// (possibly partial) assignment at decision level 0.
type BnnEvalResult byte

const (
	BnnUndef BnnEvalResult = iota
	BnnTrue
	BnnFalse
)

// Eval evaluates b against value, a function from outer var to (val, ok).
// It returns BnnTrue/BnnFalse only when the outcome is forced regardless of
// how the remaining literals resolve; with an output literal, BnnTrue also
// forces out and BnnFalse forces ¬out. When the threshold is still undecided
// but has no slack left, it returns BnnUndef with every unknown literal
// forced true, provided there is no output literal or out is already true.
func (b *BnnClause) Eval(value func(OuterVar) (bool, bool)) (res BnnEvalResult, forced []OuterLit) {
	nbTrue, nbUnknown := 0, 0
	var unknown []OuterLit
	for _, l := range b.lits {
		v, ok := value(l.Var())
		if !ok {
			nbUnknown++
			unknown = append(unknown, l)
			continue
		}
		if v == l.IsPositive() {
			nbTrue++
		}
	}
	switch {
	case nbTrue >= b.cutoff:
		if b.hasOut {
			return BnnTrue, []OuterLit{b.out}
		}
		return BnnTrue, nil
	case nbTrue+nbUnknown < b.cutoff:
		if b.hasOut {
			return BnnFalse, []OuterLit{b.out.Negation()}
		}
		return BnnFalse, nil
	case nbTrue+nbUnknown == b.cutoff:
		// Every remaining unknown literal must become true to reach the
		// threshold. They are forced only when the threshold must be
		// reached: no output literal, or out already true.
		if b.hasOut {
			if v, ok := value(b.out.Var()); !ok || v != b.out.IsPositive() {
				return BnnUndef, nil
			}
		}
		forced = append(forced, unknown...)
		return BnnUndef, forced
	default:
		return BnnUndef, nil
	}
}

// PermuteOuter rewrites every XOR's variable set and every BNN's literals
// and output through a fresh outer permutation. This is distinct from the
// inter-space permutation the watch index and trail undergo: XORs/BNNs are
// stored in outer space, so renumbering step 3 applies here directly.
func (s *XorBnnStore) PermuteOuter(remap func(OuterVar) OuterVar) {
	for _, x := range s.xors {
		for i, v := range x.vars {
			x.vars[i] = remap(v)
		}
	}
	for _, b := range s.bnns {
		for i, l := range b.lits {
			b.lits[i] = remap(l.Var()).SignedLit(!l.IsPositive())
		}
		if b.hasOut {
			b.out = remap(b.out.Var()).SignedLit(!b.out.IsPositive())
		}
	}
}
