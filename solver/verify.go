package solver

// verify checks the structural invariants from §8 that are cheap enough to
// run between strategy tokens in a debug build (Verbosity > 2). It panics
// on the first violation found, since every one of these is a kind-3
// programmer contract violation rather than a reachable runtime state.
func (s *Solver) verify() {
	s.verifyWatchSymmetry()
	s.verifyTrailConsistency()
	s.verifyVarReplacerAcyclic()
	s.verifyArenaLiveness()
}

// verifyWatchSymmetry checks invariant 3: every binary watcher entry has a
// matching entry in its partner's list with the same red flag and ID.
func (s *Solver) verifyWatchSymmetry() {
	for lit := 0; lit < 2*s.identity.NbOuter(); lit++ {
		l := InterLit(lit)
		for _, e := range s.watch.List(l) {
			if e.kind != watchBinary {
				continue
			}
			found := false
			for _, back := range s.watch.List(e.other) {
				if back.kind == watchBinary && back.other == l && back.red == e.red && back.id == e.id {
					found = true
					break
				}
			}
			if !found {
				raiseContract(codeVarOutOfRange, "watch: binary (%d,%d) missing symmetric entry", l, e.other)
			}
		}
	}
}

// verifyTrailConsistency checks that the trail's per-level bookkeeping is
// internally coherent: trailLim is non-decreasing and within bounds, and
// every bound variable's unit proof ID is either NoProofID or was allocated
// before the current emitter position.
func (s *Solver) verifyTrailConsistency() {
	prev := int32(0)
	for _, lim := range s.trail.trailLim {
		if lim < prev || int(lim) > s.trail.Len() {
			raiseContract(codeVarOutOfRange, "trail: trailLim out of order or out of range")
		}
		prev = lim
	}
	for _, l := range s.trail.Seq() {
		if id := s.trail.UnitProofID(l.Var()); id != NoProofID && id >= s.emitter.nextID {
			raiseContract(codeVarOutOfRange, "trail: unit proof ID %d not yet allocated", id)
		}
	}
}

// verifyVarReplacerAcyclic checks that following every variable's
// representative terminates in a root within a bound proportional to the
// variable space; a cycle would mean Union's path compression broke.
func (s *Solver) verifyVarReplacerAcyclic() {
	limit := s.identity.NbOuter() + 1
	for v := 0; v < len(s.vrepl.rep); v++ {
		cur := OuterVar(v)
		steps := 0
		for s.vrepl.rep[cur].set {
			cur = s.vrepl.rep[cur].to
			steps++
			if steps > limit {
				raiseContract(codeVarOutOfRange, "vrepl: cycle detected rooted near variable %d", v)
			}
		}
	}
}

// verifyArenaLiveness checks that every ClauseRef reachable from a watcher
// entry or a tier vector still points at a live slot.
func (s *Solver) verifyArenaLiveness() {
	checkAll := func(refs []ClauseRef) {
		for _, ref := range refs {
			_ = s.arena.Get(ref) // panics on a stale handle
		}
	}
	checkAll(s.arena.Irredundant())
	for t := Tier0; t <= Tier2; t++ {
		checkAll(s.arena.Redundant(t))
	}
	for _, list := range s.watch.lists {
		for _, w := range list {
			if w.kind == watchLong {
				_ = s.arena.Get(w.long)
			}
		}
	}
}
