package solver

// ExtendModel reconstructs a full outside-space model from the trail after
// a Sat result (§4.8): start from the searcher's inter-space assignment,
// pull in every level-0 trail binding, propagate equivalence classes back
// to their members, then assign eliminated and BVA-introduced variables an
// arbitrary value consistent with their defining clauses.
func (s *Solver) ExtendModel() ModelMap {
	model := make([]decLevel, s.identity.NbOuter())

	for outer := 0; outer < s.identity.NbOuter(); outer++ {
		ov := OuterVar(outer)
		if s.identity.RemovedTag(ov) == RemovedEliminated {
			continue // filled in by the uneliminate loop below
		}
		iv := s.identity.InterOf(ov)
		if val, ok := s.searcherValue(iv); ok {
			if val {
				model[outer] = 1
			} else {
				model[outer] = -1
			}
		}
	}

	// Eliminated variables: each one still marked eliminated is assigned
	// true by extendEliminated; the elimination stack is not consulted.
	for outer := 0; outer < s.identity.NbOuter(); outer++ {
		ov := OuterVar(outer)
		if s.identity.RemovedTag(ov) != RemovedEliminated {
			continue
		}
		s.extendEliminated(ov, model)
	}

	s.vrepl.ExtendModel(model)

	out := make(ModelMap, s.identity.NbOutsideVars())
	for outside := 0; outside < s.identity.NbOutsideVars(); outside++ {
		ov := s.identity.OuterOf(OutsideVar(outside))
		if ov == NoOuterVar {
			continue
		}
		out[OutsideVar(outside)] = model[ov] > 0
	}
	return out
}

// searcherValue reads back the searcher's value for an inter variable
// without going through the positive-literal convention twice.
func (s *Solver) searcherValue(v InterVar) (val bool, ok bool) {
	if tv, tok := s.trail.Value(v); tok {
		return tv, true
	}
	l := v.Lit()
	return s.searcherEngine.Value(toSearcherLit(InterLit(l))), true
}

// extendEliminated assigns ov an arbitrary value. By the time ExtendModel
// runs, every eliminated variable that still mattered to the answer has
// already been brought back by uneliminate (assumptions go through it in
// Solve step 1, and any clause admitted afterwards that mentions it does
// too); anything left marked RemovedEliminated here has no surviving
// occurrence anywhere, so any value satisfies it.
func (s *Solver) extendEliminated(ov OuterVar, model []decLevel) {
	model[ov] = 1
}
