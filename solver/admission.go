package solver

// admissionResult is what stage 6 (sort & clean) leaves behind for stage 7
// to dispatch on.
type admissionResult struct {
	lits     []InterLit
	mustSet  []OuterVar // must-set-on-model-extension, from opposite-literal tautologies
	wasUnsat bool
}

// AddClauseOutside is the add_clause_outside pipeline (§4.1): accept a
// clause over outside literals and reconcile it with the current solver
// state. red marks the clause as derivable-and-droppable rather than part
// of the original formula.
func (s *Solver) AddClauseOutside(lits []OutsideLit, red bool) {
	if !s.ok {
		return
	}
	// Stage 1: validate.
	if len(lits) > MaxLits {
		raiseContract(codeClauseTooLong, "clause has %d literals, limit is %d", len(lits), MaxLits)
	}
	if s.eliminationBlocked {
		raiseContract(codeAddAfterBlocking, "cannot add clauses after elimination-based blocking began")
	}
	for _, l := range lits {
		if int(l.Var()) < 0 {
			raiseContract(codeVarOutOfRange, "negative variable index in clause")
		}
	}

	outer := make([]OuterLit, len(lits))
	for i, l := range lits {
		// Stage 3: introduce new variables for literals outside the known
		// outside space.
		for int(l.Var()) >= s.identity.NbOutsideVars() {
			s.NewVar()
		}
		outer[i] = s.identity.OutsideToOuterLit(l)
	}

	// Stage 2: follow replacements. A replacement that maps every literal
	// to itself is the identity pass §4.1 says emits no proof event on its
	// own; anything it actually rewrites makes this admission no longer
	// the original clause's own-shape event.
	changed := false
	for i, l := range outer {
		repl := s.vrepl.ReplacedWithOuter(l)
		if repl != l {
			changed = true
		}
		outer[i] = repl
	}

	// Stage 4: renumber to inter space.
	inter := make([]InterLit, len(outer))
	for i, l := range outer {
		inter[i] = s.identity.OuterToInterLit(l)
	}

	// Stage 5: uneliminate.
	for i, l := range inter {
		outerVar := s.identity.OuterOfInter(l.Var())
		if s.identity.RemovedTag(outerVar) == RemovedEliminated {
			changed = true
			if !s.uneliminate(outerVar) {
				s.setUnsat(s.emitter.Add(lits))
				return
			}
			inter[i] = s.identity.OuterToInterLit(s.vrepl.ReplacedWithOuter(outer[i]))
		}
	}

	res := s.sortAndClean(inter)
	if res.lits != nil && len(res.lits) != len(inter) {
		changed = true // sortAndClean dropped a level-0-false literal or a duplicate.
	}
	s.dispatchClause(res, lits, red, changed)
}

// sortAndClean implements §4.1 stage 6: drop level-0-false literals, detect
// tautologies (both as a true literal present, and as x/¬x both present in
// a non-redundant clause, which additionally marks a must-set variable),
// and remove duplicates.
func (s *Solver) sortAndClean(lits []InterLit) admissionResult {
	seen := make(map[InterLit]bool, len(lits))
	seenVar := make(map[InterVar]InterLit, len(lits))
	out := make([]InterLit, 0, len(lits))
	var mustSet []OuterVar

	for _, l := range lits {
		if val, ok := s.trail.LitValue(l); ok {
			if val {
				return admissionResult{lits: nil} // satisfied: caller discards
			}
			continue // false at level 0: drop
		}
		if prior, ok := seenVar[l.Var()]; ok {
			if prior == l {
				continue // duplicate
			}
			// x and ¬x both present: tautology, mark must-set.
			outerVar := s.identity.OuterOfInter(l.Var())
			mustSet = append(mustSet, outerVar)
			return admissionResult{lits: nil, mustSet: mustSet}
		}
		seenVar[l.Var()] = l
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return admissionResult{lits: out, mustSet: mustSet}
}

// dispatchClause implements §4.1 stage 7.
func (s *Solver) dispatchClause(res admissionResult, outsideLits []OutsideLit, red, changed bool) {
	if !red {
		for _, v := range res.mustSet {
			s.mustSet[v] = true
		}
	}
	if res.lits == nil && res.mustSet != nil {
		// Tautology via opposite literals: discarded, no proof event for an
		// identity pass, but this one changed the literal set, so the new
		// (absent) clause and old are accounted by emitting nothing - the
		// clause simply never existed in admitted form.
		return
	}
	if res.lits == nil {
		return // satisfied at level 0: tautology via a true literal.
	}

	switch len(res.lits) {
	case 0:
		// The empty clause is always recorded as an add; the trailer
		// closes it with its finalcl.
		id := s.admitID(outsideLits, res.lits, changed, true)
		s.setUnsat(id)
	case 1:
		l := res.lits[0]
		id := s.admitID(outsideLits, res.lits, changed, red)
		s.enqueueUnit(l, id)
		s.emitter.Del(id, s.interLitsToOutside(res.lits)) // doubled-unit convention, §4.1
	case 2:
		id := s.admitID(outsideLits, res.lits, changed, red)
		s.watch.AttachBinary(res.lits[0], res.lits[1], red, id)
	default:
		id := s.admitID(outsideLits, res.lits, changed, red)
		c := newLongClause(res.lits, red, id)
		ref := s.arena.Alloc(c)
		s.watch.AttachLong(ref, c.Get(0), c.Get(1))
	}
}

// admitID records an admitted clause's provenance per §4.9's distinct
// orig_cl/add event types: an unmodified irredundant clause is orig_cl
// (§4.1's identity pass emits no separate add event at all), while a red
// clause or one normalization actually rewrote is an add. A changed
// original still gets its orig_cl recorded for provenance, but immediately
// deleted - the submitted literal set never actually lives in the clause
// database, only the normalized one dispatchClause goes on to store under
// the id this returns.
func (s *Solver) admitID(outsideLits []OutsideLit, interLits []InterLit, changed, red bool) ProofID {
	if !changed && !red {
		return s.emitter.Orig(outsideLits)
	}
	if changed {
		origID := s.emitter.Orig(outsideLits)
		s.emitter.Del(origID, outsideLits)
	}
	return s.emitter.Add(s.interLitsToOutside(interLits))
}

// enqueueUnit binds l true at level 0 and propagates; propagation itself is
// delegated to the searcher once search resumes, but level-0 units are
// recorded on the trail immediately so admission-time conflicts are caught
// without needing a searcher round-trip.
func (s *Solver) enqueueUnit(l InterLit, id ProofID) {
	if val, ok := s.trail.LitValue(l); ok {
		if !val {
			s.setUnsat(id)
		}
		return
	}
	s.trail.Enqueue(l, id)
}

// setUnsat implements the kind-1 recoverable failure: set ok := false and
// record the witnessing proof ID, per §7.
func (s *Solver) setUnsat(id ProofID) {
	if s.ok {
		s.ok = false
		s.emitter.MarkUnsat(id)
	}
}

// AddXorClauseOutside admits a parity constraint over outside variables
// (§6 add_xor_clause). Variables are renamed to outer space exactly like a
// normal clause's literals, but the constraint is stored in the XOR/BNN
// store rather than the arena/watch layer.
func (s *Solver) AddXorClauseOutside(vars []OutsideVar, rhs bool) {
	if !s.ok {
		return
	}
	outer := make([]OuterVar, 0, len(vars))
	for _, v := range vars {
		for int(v) >= s.identity.NbOutsideVars() {
			s.NewVar()
		}
		ov := s.identity.OuterOf(v)
		repl := s.vrepl.ReplacedWithOuter(ov.Lit())
		rhs = rhs != !repl.IsPositive()
		outer = append(outer, repl.Var())
	}
	s.xb.AddXor(outer, rhs)
}

// AddBnnClauseOutside admits a threshold constraint over outside literals
// (§6 add_bnn_clause), converting to plain CNF first when the cutoff/size
// combination makes that exact (§4.4).
func (s *Solver) AddBnnClauseOutside(lits []OutsideLit, cutoff int, out OutsideLit, hasOut bool) {
	if !s.ok {
		return
	}
	outer := make([]OuterLit, len(lits))
	for i, l := range lits {
		for int(l.Var()) >= s.identity.NbOutsideVars() {
			s.NewVar()
		}
		outer[i] = s.identity.OutsideToOuterLit(l)
	}
	if BnnConvertibleToCNF(cutoff, len(lits)) {
		var clauses [][]OuterLit
		switch {
		case cutoff == 1:
			clauses = CNFEncodingOr(outer)
		case cutoff == len(lits):
			clauses = CNFEncodingAnd(outer)
		default:
			clauses = CNFEncodingAtLeast2Of3(outer)
		}
		for _, cl := range clauses {
			outsideCl := make([]OutsideLit, len(cl))
			for i, l := range cl {
				outsideCl[i] = s.identity.OuterToOutsideLit(l)
			}
			s.AddClauseOutside(outsideCl, false)
		}
		return
	}
	var outOuter OuterLit
	if hasOut {
		for int(out.Var()) >= s.identity.NbOutsideVars() {
			s.NewVar()
		}
		outOuter = s.identity.OutsideToOuterLit(out)
	}
	s.xb.AddBnn(outer, cutoff, outOuter, hasOut)
}
