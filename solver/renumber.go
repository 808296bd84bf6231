package solver

import (
	"github.com/cdclsolver/cdclsolver/internal/occ"
	"github.com/cdclsolver/cdclsolver/internal/searcher"
)

// ShouldRenumber reports whether the dead-variable fraction exceeds the
// configured threshold, the policy trigger named in §4.5.
func (s *Solver) ShouldRenumber() bool {
	if s.identity.NbOuter() == 0 {
		return false
	}
	dead := 0
	for v := 0; v < s.identity.NbOuter(); v++ {
		if s.identity.RemovedTag(OuterVar(v)) != RemovedNone {
			dead++
		}
	}
	frac := float64(dead) / float64(s.identity.NbOuter())
	return frac > s.cfg.RenumberDeadVarFraction
}

// Renumber runs the algorithm from §4.5. It must only be called at decision
// level 0 with the trail's current assignments safely captured beforehand,
// since active-variable dense-prefixing invalidates raw inter indices.
func (s *Solver) Renumber() {
	if s.trail.DecisionLevel() != 0 {
		raiseContract(codeVarOutOfRange, "renumber requires decision level 0")
	}

	nbOuter := s.identity.NbOuter()
	active := make([]OuterVar, 0, nbOuter)
	inactive := make([]OuterVar, 0, nbOuter)
	for v := 0; v < nbOuter; v++ {
		ov := OuterVar(v)
		_, bound := s.trail.Value(s.identity.InterOf(ov))
		if s.identity.RemovedTag(ov) == RemovedNone && !bound {
			active = append(active, ov)
		} else {
			inactive = append(inactive, ov)
		}
	}

	// Step 1: dense positions, active first.
	newOuterToInter := make([]InterVar, nbOuter)
	for i, ov := range active {
		newOuterToInter[ov] = InterVar(i)
	}
	for i, ov := range inactive {
		newOuterToInter[ov] = InterVar(len(active) + i)
	}

	oldOuterToInter := make([]InterVar, nbOuter)
	copy(oldOuterToInter, s.outerToInterSnapshot())
	oldInterToNew := make([]InterVar, nbOuter)
	for ov := 0; ov < nbOuter; ov++ {
		oldInterToNew[oldOuterToInter[ov]] = newOuterToInter[ov]
	}

	// Step 2/3: rewrite long clauses and XOR/BNN through the new map.
	s.rewriteLongClauses(oldInterToNew)
	s.xb.PermuteOuter(func(ov OuterVar) OuterVar { return ov }) // outer ids unchanged, only inter moves

	// Step 4: ask every subsystem holding per-var inter indices to follow.
	s.watch.Permute(oldInterVarRemap(oldInterToNew), nbOuter)
	s.trail.Permute(oldInterVarRemap(oldInterToNew), nbOuter)
	s.identity.Rebuild(newOuterToInter)
	if s.dataSync != nil {
		s.dataSync.Permute(oldInterToNew)
	}
	s.rebuildSearcher(nbOuter)

	// Step 5: invalidate the decision heap; rebuilt on next Searcher entry.
	s.heapStale = true

	s.stats.NbRenumbers++

	// Step 6: verify active/inactive split.
	s.verifyRenumbering(len(active))
}

func oldInterVarRemap(oldInterToNew []InterVar) []InterVar {
	// oldInterToNew is already indexed by old InterVar, which is what the
	// watch/trail Permute helpers expect, so it is passed through as is.
	return oldInterToNew
}

func (s *Solver) outerToInterSnapshot() []InterVar {
	out := make([]InterVar, s.identity.NbOuter())
	for v := range out {
		out[v] = s.identity.InterOf(OuterVar(v))
	}
	return out
}

func (s *Solver) rewriteLongClauses(remap []InterVar) {
	rewriteOne := func(ref ClauseRef) {
		c := s.arena.Get(ref)
		for i := 0; i < c.Len(); i++ {
			l := c.Get(i)
			c.Set(i, remap[l.Var()].SignedLit(!l.IsPositive()))
		}
	}
	for _, ref := range s.arena.Irredundant() {
		rewriteOne(ref)
	}
	for t := Tier0; t <= Tier2; t++ {
		for _, ref := range s.arena.Redundant(t) {
			rewriteOne(ref)
		}
	}
}

func (s *Solver) verifyRenumbering(nbActive int) {
	for v := 0; v < s.identity.NbOuter(); v++ {
		inter := s.identity.InterOf(OuterVar(v))
		isActive := int(inter) < nbActive
		wantActive := s.identity.RemovedTag(OuterVar(v)) == RemovedNone
		if isActive != wantActive {
			// A bound-but-not-removed variable is legitimately inactive too;
			// this only catches the case the invariant actually forbids.
			_, bound := s.trail.Value(inter)
			if wantActive && !bound && !isActive {
				panic("renumber: active variable placed after inactive prefix")
			}
		}
	}
}

// rebuildSearcher replays every live clause into a fresh Searcher instance
// numbered through the permutation Renumber just installed. The Searcher
// contract (internal/searcher) has no in-place remap primitive - gini's own
// clause database only ever grows - so "ask the Searcher to update in
// place through the same map" (spec.md §4.5 step 4) is realized here as a
// full replay rather than a live rename, which a fresh instance makes
// trivially correct: every clause is re-added under the numbering the rest
// of the coordinator already committed to in steps 2-4 above.
func (s *Solver) rebuildSearcher(nbOuter int) {
	fresh := searcher.New()
	for i := 0; i < nbOuter; i++ {
		fresh.NewVar()
	}

	replay := func(ref ClauseRef) {
		c := s.arena.Get(ref)
		if c.Removed() {
			return
		}
		lits := make([]searcher.Lit, c.Len())
		for i := 0; i < c.Len(); i++ {
			lits[i] = toSearcherLit(c.Get(i))
		}
		fresh.AddClause(lits)
	}
	for _, ref := range s.arena.Irredundant() {
		replay(ref)
	}
	for t := Tier0; t <= Tier2; t++ {
		for _, ref := range s.arena.Redundant(t) {
			replay(ref)
		}
	}

	for lit, list := range s.watch.lists {
		for _, w := range list {
			if w.kind == watchBinary && InterLit(lit) < w.other {
				fresh.AddClause([]searcher.Lit{toSearcherLit(InterLit(lit)), toSearcherLit(w.other)})
			}
		}
	}

	for i := 0; i < s.trail.Len(); i++ {
		if s.trail.LevelAt(i) != 0 {
			continue
		}
		fresh.AddClause([]searcher.Lit{toSearcherLit(s.trail.Seq()[i])})
	}

	s.searcherEngine = fresh
}

// dataSyncClient is the optional collaborator exchanging learned units and
// binaries between solver instances (§5); it too must follow renumbering.
type dataSyncClient interface {
	Permute(oldOuterInterToNew []InterVar)
}

// Uneliminate reattaches resolvents for an eliminated variable via the OCC
// simplifier's elimination stack, restoring clause membership. Returns
// false if doing so proves UNSAT.
func (s *Solver) uneliminate(v OuterVar) bool {
	if s.eliminator == nil {
		s.identity.SetRemoved(v, RemovedNone)
		return true
	}
	resolvents, ok := s.eliminator.Uneliminate(occ.Var(v))
	if !ok {
		return false
	}
	for _, cl := range resolvents {
		lits := make([]OutsideLit, len(cl))
		for i, l := range cl {
			lits[i] = IntToOutsideLit(l.Int())
		}
		s.AddClauseOutside(lits, false)
		if !s.ok {
			return false
		}
	}
	s.identity.SetRemoved(v, RemovedNone)
	return true
}
