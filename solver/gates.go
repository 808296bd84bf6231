package solver

// RecoveredXor is one parity constraint currently tracked by the XOR/BNN
// store, expressed over outside variables (get_recovered_xors).
type RecoveredXor struct {
	Vars []int
	Rhs  bool
}

// OrGate is a recovered "o <-> i1 \/ ... \/ ik" structural gate
// (get_recovered_or_gates), expressed over outside literals.
type OrGate struct {
	Out    int
	Inputs []int
}

// IteGate is a recovered "o <-> (cond ? then : else)" structural gate
// (get_recovered_ite_gates), expressed over outside literals.
type IteGate struct {
	Out, Cond, Then, Else int
}

// GetRecoveredXors returns every live XOR constraint the solver currently
// tracks, translated to outside-variable space. Variables with no outside
// name (introduced by bounded variable addition) are omitted from Vars,
// same as every other outside-facing inspection call.
func (s *Solver) GetRecoveredXors() []RecoveredXor {
	var out []RecoveredXor
	for _, x := range s.xb.Xors() {
		if x.removed {
			continue
		}
		vars := make([]int, 0, len(x.vars))
		for _, v := range x.vars {
			if s.identity.OutsideOf(v) == NoOutsideVar {
				continue
			}
			vars = append(vars, int(s.identity.OutsideOf(v)))
		}
		out = append(out, RecoveredXor{Vars: vars, Rhs: x.rhs})
	}
	return out
}

// interLitToOutside translates an inter-space literal to outside space,
// reporting false when the underlying variable has no outside name.
func (s *Solver) interLitToOutside(l InterLit) (int, bool) {
	outer := s.identity.InterToOuterLit(l)
	if s.identity.OutsideOf(outer.Var()) == NoOutsideVar {
		return 0, false
	}
	return int(s.identity.OuterToOutsideLit(outer).Int()), true
}

func canonPair(a, b InterLit) [2]InterLit {
	if a < b {
		return [2]InterLit{a, b}
	}
	return [2]InterLit{b, a}
}

// collectBinaryPairs indexes every binary clause currently attached to the
// watch layer, keyed so {a,b} and {b,a} hash identically.
func (s *Solver) collectBinaryPairs() map[[2]InterLit]bool {
	out := make(map[[2]InterLit]bool)
	for lit, list := range s.watch.lists {
		for _, w := range list {
			if w.kind == watchBinary {
				out[canonPair(InterLit(lit), w.other)] = true
			}
		}
	}
	return out
}

// GetRecoveredOrGates scans the irredundant long-clause database for the
// standard CNF encoding of an OR gate: one clause (i1 \/ ... \/ ik \/ ¬o)
// together with one binary clause (¬i_j \/ o) per input, implementation
// hinted by the same structural-hashing approach the parity-shadowing check
// uses (§4.4's "hash by variable set, confirm by literal walk").
func (s *Solver) GetRecoveredOrGates() []OrGate {
	binaries := s.collectBinaryPairs()
	var out []OrGate
	for _, ref := range s.arena.Irredundant() {
		c := s.arena.Get(ref)
		if c.Len() < 3 {
			continue
		}
		lits := make([]InterLit, c.Len())
		for i := 0; i < c.Len(); i++ {
			lits[i] = c.Get(i)
		}
		for outIdx := range lits {
			gate, ok := s.tryOrGateAt(lits, outIdx, binaries)
			if ok {
				out = append(out, gate)
			}
		}
	}
	return out
}

func (s *Solver) tryOrGateAt(lits []InterLit, outIdx int, binaries map[[2]InterLit]bool) (OrGate, bool) {
	negO := lits[outIdx]
	o := negO.Negation()
	inputs := make([]int, 0, len(lits)-1)
	for j, l := range lits {
		if j == outIdx {
			continue
		}
		if !binaries[canonPair(l.Negation(), o)] {
			return OrGate{}, false
		}
		in, ok := s.interLitToOutside(l)
		if !ok {
			return OrGate{}, false
		}
		inputs = append(inputs, in)
	}
	oOut, ok := s.interLitToOutside(o)
	if !ok {
		return OrGate{}, false
	}
	return OrGate{Out: oOut, Inputs: inputs}, true
}

// ternaryIndex maps an unordered pair of literals to every third literal
// seen alongside them in a ternary irredundant clause, the lookup structure
// the ITE-gate search needs to find a clause's "missing" partner.
type ternaryIndex map[[2]InterLit][]InterLit

func (idx ternaryIndex) add(a, b, c InterLit) {
	idx[canonPair(a, b)] = append(idx[canonPair(a, b)], c)
}

func (s *Solver) buildTernaryIndex() ([][3]InterLit, ternaryIndex) {
	var clauses [][3]InterLit
	idx := make(ternaryIndex)
	for _, ref := range s.arena.Irredundant() {
		c := s.arena.Get(ref)
		if c.Len() != 3 {
			continue
		}
		l0, l1, l2 := c.Get(0), c.Get(1), c.Get(2)
		clauses = append(clauses, [3]InterLit{l0, l1, l2})
		idx.add(l0, l1, l2)
		idx.add(l0, l2, l1)
		idx.add(l1, l2, l0)
	}
	return clauses, idx
}

func (idx ternaryIndex) has(a, b, c InterLit) bool {
	for _, third := range idx[canonPair(a, b)] {
		if third == c {
			return true
		}
	}
	return false
}

// GetRecoveredIteGates scans the ternary irredundant clauses for the
// standard 4-clause ITE-gate encoding:
//
//	(¬o, ¬c, t)  (¬o, c, e)  (o, ¬c, ¬t)  (o, c, ¬e)
//
// Every rotation of a candidate defining clause is tried as the (¬o, ¬c, t)
// role; the other three required clauses are looked up directly rather than
// rescanned.
func (s *Solver) GetRecoveredIteGates() []IteGate {
	clauses, idx := s.buildTernaryIndex()
	seen := make(map[[4]InterLit]bool)
	var out []IteGate

	for _, cl := range clauses {
		for i := 0; i < 3; i++ {
			negO := cl[i]
			negC := cl[(i+1)%3]
			t := cl[(i+2)%3]
			o := negO.Negation()
			c := negC.Negation()

			for _, e := range idx[canonPair(negO, c)] {
				if e.Var() == o.Var() || e.Var() == c.Var() || e.Var() == t.Var() {
					continue
				}
				if !idx.has(o, negC, t.Negation()) {
					continue
				}
				if !idx.has(o, c, e.Negation()) {
					continue
				}
				gate, key, ok := s.canonicalIteGate(o, c, t, e)
				if ok && !seen[key] {
					seen[key] = true
					out = append(out, gate)
				}
			}
		}
	}
	return out
}

// canonicalIteGate normalizes ITE(c,t,e) == ITE(¬c,e,t) to a single
// representation before translating to outside space, so both rotations a
// single gate is found under collapse into one report.
func (s *Solver) canonicalIteGate(o, c, t, e InterLit) (IteGate, [4]InterLit, bool) {
	if !c.IsPositive() {
		c, t, e = c.Negation(), e, t
	}
	key := [4]InterLit{o, c, t, e}
	oOut, ok1 := s.interLitToOutside(o)
	cOut, ok2 := s.interLitToOutside(c)
	tOut, ok3 := s.interLitToOutside(t)
	eOut, ok4 := s.interLitToOutside(e)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return IteGate{}, key, false
	}
	return IteGate{Out: oOut, Cond: cOut, Then: tOut, Else: eOut}, key, true
}
