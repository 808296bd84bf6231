package solver

import (
	"math"
	"time"

	"github.com/cdclsolver/cdclsolver/internal/searcher"
)

// Solve is the outer solve loop entry point (§4.6). assumptions are outside
// literals demanded true for this call only.
func (s *Solver) Solve(assumptions []OutsideLit) Status {
	if !s.ok {
		s.finalizeOnce()
		return Unsat
	}
	start := s.now()

	// Step 1: copy assumptions into outer space, validate/uneliminate.
	outerAssumps := make([]OuterLit, len(assumptions))
	for i, l := range assumptions {
		for int(l.Var()) >= s.identity.NbOutsideVars() {
			s.NewVar()
		}
		ol := s.identity.OutsideToOuterLit(l)
		outerVar := ol.Var()
		if s.identity.RemovedTag(outerVar) == RemovedEliminated {
			if !s.uneliminate(outerVar) {
				s.finalizeOnce()
				return Unsat
			}
		}
		outerAssumps[i] = s.vrepl.ReplacedWithOuter(ol)
	}

	// Step 2: assumption mark set.
	s.assumptions = outerAssumps

	// Step 3: reset per-solve counters.
	s.stats.NbOuterLoopIters = 0
	s.mustInterrupt.Store(false)

	// Step 4: startup strategy on first call (or if always-on).
	if !s.startupDone || s.cfg.SimplifierEnabled("always_startup") {
		NewStrategyInterpreter(s).Run(s.cfg.StartupSchedule)
		s.startupDone = true
	}

	status := Indet
	for {
		if !s.ok {
			status = Unsat
			break
		}
		if s.mustInterrupt.Load() {
			status = Indet
			break
		}
		if s.timeExceeded(start) {
			status = Indet
			break
		}

		budget := s.nextConflictBudget()
		if budget <= 0 {
			status = Indet
			break
		}

		s.initGaussMatrices()
		if !s.ok {
			status = Unsat
			break
		}
		s.propagateBnnConstraints()
		if !s.ok {
			status = Unsat
			break
		}

		result := s.runSearcher(outerAssumps, budget)
		s.stats.NbOuterLoopIters++
		s.pushStatsRow(start)

		switch result {
		case searcher.Sat:
			status = Sat
		case searcher.Unsat:
			status = Unsat
		default:
			status = Indet
		}
		if status != Indet {
			break
		}

		s.adjustMinimization()

		if s.timeExceeded(start) || s.mustInterrupt.Load() {
			break
		}
		NewStrategyInterpreter(s).Run(s.cfg.NonStartupSchedule)
	}

	switch status {
	case Sat:
		s.lastModel = s.ExtendModel()
	case Unsat:
		s.lastConflict = s.translateConflictToOutside()
	}

	s.finalizeOnce()
	return status
}

// finalizeOnce writes the proof trailer exactly once per solver lifetime
// (invariant 7: every allocated proof ID is matched by exactly one delete
// or finalization), no matter which of Solve's several exit points gets
// there first - including entry with ok already false, e.g. an empty
// clause admitted before Solve was ever called (§8 scenario 1).
func (s *Solver) finalizeOnce() {
	if s.finalized {
		return
	}
	s.finalized = true
	s.emitter.WriteTrailer(s.finalizationStages())
}

// nextConflictBudget computes B_i per §4.6 step 5: min(confl_inc^min(i,100)
// * B0, Bmax), clipped by the remaining global budget.
func (s *Solver) nextConflictBudget() int64 {
	i := s.stats.NbOuterLoopIters
	if i > 100 {
		i = 100
	}
	b := float64(s.cfg.ConflBudgetBase) * math.Pow(s.cfg.ConflBudgetInc, float64(i))
	if b > float64(s.cfg.ConflBudgetMax) {
		b = float64(s.cfg.ConflBudgetMax)
	}
	budget := int64(b)
	if s.cfg.MaxConflicts >= 0 {
		remaining := s.cfg.MaxConflicts - s.stats.NbConflicts
		if remaining <= 0 {
			return 0
		}
		if budget > remaining {
			budget = remaining
		}
	}
	return budget
}

// runSearcher hands the current inter-space problem to the Searcher
// adapter for up to budget conflicts and returns its verdict. Translating
// every clause on every call would be wasteful; a real orchestrator keeps
// the Searcher instance warm and only pushes deltas, which is why AddClause
// calls from admission and learning forward to s.searcherEngine directly rather
// than being replayed here.
func (s *Solver) runSearcher(outerAssumps []OuterLit, budget int64) searcher.Result {
	interAssumps := make([]searcher.Lit, len(outerAssumps))
	for i, l := range outerAssumps {
		il := s.identity.OuterToInterLit(l)
		interAssumps[i] = toSearcherLit(il)
	}
	s.searcherEngine.Assume(interAssumps...)
	return s.searcherEngine.SolveWithBudget(budget)
}

func toSearcherLit(l InterLit) searcher.Lit { return searcher.Lit(l) }
func fromSearcherLit(l searcher.Lit) InterLit { return InterLit(l) }

// adjustMinimization checks recursive/extended minimization effectiveness
// and adjusts or disables it when gains fall below threshold, per §4.6
// step 5. The reference coordinator has no independent minimization pass
// of its own (that lives inside the Searcher), so this tracks the signal
// for future strategy decisions (e.g. glue cutoff adjustment) only.
// NbConflicts/NbLearned are pulled fresh from the Searcher by pushStatsRow
// on every iteration before this runs, so the ratio reflects real search
// activity rather than being permanently gated on zero.
func (s *Solver) adjustMinimization() {
	if s.stats.NbConflicts == 0 {
		return
	}
	ratio := float64(s.stats.NbLearned) / float64(s.stats.NbConflicts)
	if ratio > 0.98 && s.cfg.GlueCutoffStart < s.cfg.GlueCutoffMax {
		s.cfg.GlueCutoffStart++
	}
}

func (s *Solver) timeExceeded(start time.Time) bool {
	if s.cfg.TimeBudgetSecs < 0 {
		return false
	}
	return s.now().Sub(start) > time.Duration(s.cfg.TimeBudgetSecs)*time.Second
}

func (s *Solver) now() time.Time { return time.Now() }

// initGaussMatrices runs §4.11 when the XOR set is marked updated, then
// asks every live matrix for level-0 consequences (step 6). The propagation
// half runs every iteration, not only on rebuild: a unit learned by search
// since the last rebuild can make a row newly informative without touching
// the XOR set itself, so s.matrices must be re-asked every time the outer
// loop comes back around, not just when xb.Updated() fires.
func (s *Solver) initGaussMatrices() {
	if s.gaussFinder != nil && s.xb.Updated() {
		s.detachCNFShadowedByXors()
		s.matrices = nil
		var constraints []gaussConstraint
		for _, x := range s.xb.Xors() {
			if x.removed {
				continue
			}
			constraints = append(constraints, gaussConstraint{vars: x.vars, rhs: x.rhs})
		}
		s.buildMatrices(constraints)
		s.xb.ClearUpdated()
	}
	s.propagateGaussMatrices()
}

// propagateGaussMatrices asks every disjoint-variable group for forced
// level-0 literals or a conflict (§4.11 step 6, §8 scenario 5) and applies
// either outcome to the trail. Without this, a Gaussian elimination group
// with no CNF shadow - a pure XOR never resolved into clauses - is tracked
// but never actually enforced.
func (s *Solver) propagateGaussMatrices() {
	for _, m := range s.matrices {
		forced, conflict := m.PropagateLevelZero()
		if conflict {
			s.setUnsat(s.emitter.Add(nil))
			return
		}
		for _, xl := range forced {
			s.enqueueGaussUnit(OuterVar(xl.V), xl.Val)
			if !s.ok {
				return
			}
		}
	}
}

// enqueueGaussUnit binds ov to val (a literal forced by matrix reduction),
// following ov's replacement class exactly as outerVarValue reads it.
func (s *Solver) enqueueGaussUnit(ov OuterVar, val bool) {
	lit := s.vrepl.ReplacedWithOuter(ov.Lit())
	if !val {
		lit = lit.Negation()
	}
	s.enqueueForcedOuterLit(lit)
}

// propagateBnnConstraints evaluates every live threshold constraint against
// the current trail and enforces the result (§8 scenario 6): a constraint
// without an output literal that evaluates false is a genuine conflict,
// since there is no literal left to blame; otherwise any literals Eval
// forces (the output, or every remaining literal when slack has run out)
// are enqueued. Without this, a BNN whose cutoff falls outside the cases
// §4.4 converts to CNF is stored but never actually checked.
func (s *Solver) propagateBnnConstraints() {
	for _, b := range s.xb.Bnns() {
		if b.removed {
			continue
		}
		res, forced := b.Eval(s.outerVarValue)
		if res == BnnFalse && !b.hasOut {
			s.setUnsat(s.emitter.Add(nil))
			return
		}
		for _, l := range forced {
			s.enqueueBnnUnit(l)
			if !s.ok {
				return
			}
		}
	}
}

// outerVarValue reads ov's current truth value through its replacement
// class, for BnnClause.Eval's value callback. OuterToInterLit preserves the
// replacement literal's sign, so LitValue already answers "is ov true"
// without any separate sign bookkeeping here.
func (s *Solver) outerVarValue(ov OuterVar) (bool, bool) {
	repl := s.vrepl.ReplacedWithOuter(ov.Lit())
	return s.trail.LitValue(s.identity.OuterToInterLit(repl))
}

// enqueueBnnUnit binds l (already a forced literal out of Eval) through its
// replacement class, mirroring enqueueGaussUnit's treatment of a var/val
// pair for the literal-shaped case.
func (s *Solver) enqueueBnnUnit(l OuterLit) {
	lit := s.vrepl.ReplacedWithOuter(l.Var().Lit())
	if !l.IsPositive() {
		lit = lit.Negation()
	}
	s.enqueueForcedOuterLit(lit)
}

// enqueueForcedOuterLit enqueues lit as true at decision level 0 and keeps
// the Searcher in sync, for literals forced outside the normal admission
// pipeline (gauss and BNN propagation). A literal already true is left
// alone; setUnsat fires through enqueueUnit on a genuine conflict.
func (s *Solver) enqueueForcedOuterLit(lit OuterLit) {
	inter := s.identity.OuterToInterLit(lit)
	if val, ok := s.trail.LitValue(inter); ok && val {
		return
	}
	var outside []OutsideLit
	if s.identity.OutsideOf(lit.Var()) != NoOutsideVar {
		outside = []OutsideLit{s.identity.OuterToOutsideLit(lit)}
	}
	id := s.emitter.Add(outside)
	s.enqueueUnit(inter, id)
	if s.ok {
		s.pushUnitToSearcher(inter)
	}
}

// pushUnitToSearcher tells the Searcher about a unit clause learned outside
// the normal AddClause path, so gini's own database stays consistent with
// the trail (the Searcher never consults the trail directly).
func (s *Solver) pushUnitToSearcher(l InterLit) {
	s.searcherEngine.AddClause([]searcher.Lit{toSearcherLit(l)})
}

type gaussConstraint struct {
	vars []OuterVar
	rhs  bool
}

// detachCNFShadowedByXors removes clauses exactly represented by an XOR, as
// described in §4.11: hash by (size, rhs, sorted-variable-set), confirm by
// literal walk, drop all 2^(|X|-1) such clauses.
func (s *Solver) detachCNFShadowedByXors() {
	type bucketKey struct {
		size int
		rhs  bool
		hash uint64
	}
	buckets := make(map[bucketKey][]OuterVar)
	for _, x := range s.xb.Xors() {
		if x.removed || x.attached {
			continue
		}
		buckets[bucketKey{size: len(x.vars), rhs: x.rhs, hash: hashVarSet(x.vars)}] = x.vars
	}
	if len(buckets) == 0 {
		return
	}
	dropRef := func(ref ClauseRef) bool {
		c := s.arena.Get(ref)
		if c.Removed() || c.Red() {
			return false
		}
		vars := make([]OuterVar, c.Len())
		negCount := 0
		for i := 0; i < c.Len(); i++ {
			l := c.Get(i)
			ov := s.identity.OuterOfInter(l.Var())
			vars[i] = ov
			if !l.IsPositive() {
				negCount++
			}
		}
		key := bucketKey{size: len(vars), hash: hashVarSet(vars)}
		for _, rhs := range [2]bool{false, true} {
			key.rhs = rhs
			target, ok := buckets[key]
			if !ok || len(target) != len(vars) {
				continue
			}
			if sameVarSet(target, vars) && (negCount%2 == 1) == (!rhs) {
				return true
			}
		}
		return false
	}
	for _, ref := range s.arena.Irredundant() {
		if dropRef(ref) {
			s.arena.Get(ref).markRemoved()
		}
	}
}

func hashVarSet(vars []OuterVar) uint64 {
	sorted := append([]OuterVar(nil), vars...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	var h uint64 = 14695981039346656037
	for _, v := range sorted {
		h ^= uint64(v)
		h *= 1099511628211
	}
	return h
}

func sameVarSet(a, b []OuterVar) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]OuterVar(nil), a...)
	sb := append([]OuterVar(nil), b...)
	sortOuterVars(sa)
	sortOuterVars(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func sortOuterVars(s []OuterVar) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func (s *Solver) buildMatrices(constraints []gaussConstraint) {
	// Delegated entirely to the gauss.MatrixFinder collaborator; the
	// coordinator only owns sequencing (§4.11 steps 3-5).
	converted := make([]gaussXor, len(constraints))
	for i, c := range constraints {
		converted[i] = gaussXor{vars: c.vars, rhs: c.rhs}
	}
	s.matrices = s.findAndInitMatrices(converted)
}

type gaussXor struct {
	vars []OuterVar
	rhs  bool
}
