package solver

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cdclsolver/cdclsolver/internal/bdd"
	"github.com/cdclsolver/cdclsolver/internal/config"
	"github.com/cdclsolver/cdclsolver/internal/gauss"
	"github.com/cdclsolver/cdclsolver/internal/occ"
	"github.com/cdclsolver/cdclsolver/internal/proofsink"
	"github.com/cdclsolver/cdclsolver/internal/searcher"
	"github.com/cdclsolver/cdclsolver/internal/statsink"
)

// Solver is the single coordinator object from §9 "Global solver state":
// it owns every subsystem, and no subsystem holds a reference back to it,
// so there is no cyclic ownership; the coordinator passes subsystems to
// one another where needed.
type Solver struct {
	identity *IdentityMap
	arena    *Arena
	watch    *WatchIndex
	trail    *Trail
	vrepl    *VarReplacer
	xb       *XorBnnStore
	emitter  *ProofEmitter

	searcherEngine searcher.Searcher

	cfg *config.Config

	ok                  bool
	eliminationBlocked  bool
	mustInterrupt       atomic.Bool
	startupDone         bool
	heapStale           bool
	finalized           bool

	mustSet []bool // indexed by OuterVar

	assumptions  []OuterLit
	lastModel    ModelMap
	lastConflict []OutsideLit

	stats   Stats
	metrics *metrics
	logger  *logrus.Logger

	solveID  int64
	statSink statsink.Sink

	eliminator  occ.Eliminator
	distiller   occ.Distiller
	prober      occ.Prober
	sccFinder   occ.SCCFinder
	subsumer    occ.Subsumer
	gaussFinder gauss.MatrixFinder
	matrices    []gauss.Matrix
	bddEngine   bdd.Engine

	dataSync dataSyncClient
}

// ModelMap associates every outside variable with its binding, keyed by
// OutsideVar; the name follows the teacher's ModelMap.
type ModelMap map[OutsideVar]bool

// New returns a Solver with no variables yet, configured by cfg (Default()
// if nil).
func New(cfg *config.Config) *Solver {
	if cfg == nil {
		cfg = config.Default()
	}
	var sink proofsink.Sink
	if cfg.ProofPath != "" {
		// Deliberately left to the caller: opening a file is an I/O detail
		// the core has no business doing on the caller's behalf; use
		// WithProofSink instead. ProofPath is consulted by cmd/cdclsolver.
		sink = nil
	}
	s := &Solver{
		identity: NewIdentityMap(),
		arena:    NewArena(),
		watch:    NewWatchIndex(0),
		trail:    NewTrail(0),
		vrepl:    NewVarReplacer(0),
		xb:       NewXorBnnStore(),
		emitter:  NewProofEmitter(sink),
		ok:       true,
		cfg:      cfg,
		logger:   logrus.New(),

		eliminator:  occ.NewResolutionEliminator(),
		gaussFinder: gauss.DenseMatrixFinder{},
	}
	s.logger.SetLevel(verbosityToLevel(cfg.Verbosity))
	s.searcherEngine = searcher.New()
	return s
}

func verbosityToLevel(v int) logrus.Level {
	switch {
	case v <= 0:
		return logrus.WarnLevel
	case v == 1:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// WithProofSink attaches a proof Sink. Must be called before the first
// AddClause/Solve call.
func (s *Solver) WithProofSink(sink proofsink.Sink) *Solver {
	s.emitter = NewProofEmitter(sink)
	return s
}

// WithStatSink attaches a statistics Sink receiving one StatsRow per
// outer-loop iteration (SPEC_FULL.md §4.12).
func (s *Solver) WithStatSink(sink statsink.Sink, solveID int64) *Solver {
	s.statSink = sink
	s.solveID = solveID
	return s
}

// WithMetrics registers prometheus collectors against reg.
func (s *Solver) WithMetrics(reg prometheus.Registerer) *Solver {
	s.metrics = newMetrics(reg)
	return s
}

// NewVar extends all three variable spaces by one fresh variable.
func (s *Solver) NewVar() OutsideVar {
	v := s.identity.NewOutsideVar()
	s.growSubsystems()
	return v
}

// NewVars extends the variable space by n fresh variables and returns
// them in order.
func (s *Solver) NewVars(n int) []OutsideVar {
	out := make([]OutsideVar, n)
	for i := 0; i < n; i++ {
		out[i] = s.NewVar()
	}
	return out
}

func (s *Solver) growSubsystems() {
	nbOuter := s.identity.NbOuter()
	s.watch.Grow(nbOuter)
	s.trail.Grow(nbOuter)
	s.vrepl.Grow(nbOuter)
	for len(s.mustSet) < nbOuter {
		s.mustSet = append(s.mustSet, false)
	}
	s.searcherEngine.NewVar()
}

// AddClause admits a clause over outside literals (§4.1, §6 add_clause).
func (s *Solver) AddClause(lits []int, red bool) {
	outside := make([]OutsideLit, len(lits))
	for i, l := range lits {
		outside[i] = IntToOutsideLit(l)
	}
	s.AddClauseOutside(outside, red)
	if s.ok {
		s.pushClauseToSearcher(outside)
	}
}

func (s *Solver) pushClauseToSearcher(outside []OutsideLit) {
	lits := make([]searcher.Lit, len(outside))
	for i, l := range outside {
		inter := s.identity.OuterToInterLit(s.vrepl.ReplacedWithOuter(s.identity.OutsideToOuterLit(l)))
		lits[i] = toSearcherLit(inter)
	}
	s.searcherEngine.AddClause(lits)
}

// AddXorClause admits a parity constraint (§6 add_xor_clause).
func (s *Solver) AddXorClause(vars []int, rhs bool) {
	outside := make([]OutsideVar, len(vars))
	for i, v := range vars {
		outside[i] = OutsideVar(v)
	}
	s.AddXorClauseOutside(outside, rhs)
}

// AddBnnClause admits a threshold constraint (§6 add_bnn_clause). If out is
// nil the constraint is asserted ("set"); otherwise *out is the equivalence
// output literal.
func (s *Solver) AddBnnClause(lits []int, cutoff int, out *int) {
	outside := make([]OutsideLit, len(lits))
	for i, l := range lits {
		outside[i] = IntToOutsideLit(l)
	}
	if out == nil {
		s.AddBnnClauseOutside(outside, cutoff, 0, false)
		return
	}
	s.AddBnnClauseOutside(outside, cutoff, IntToOutsideLit(*out), true)
}

// Simplify runs an explicit inprocessing pass outside of Solve, per §6
// simplify(strategy?).
func (s *Solver) Simplify(strategy string) Status {
	if !s.ok {
		return Unsat
	}
	if strategy == "" {
		strategy = s.cfg.NonStartupSchedule
	}
	NewStrategyInterpreter(s).Run(strategy)
	s.stats.NbSimplifyRounds++
	if !s.ok {
		return Unsat
	}
	return Indet
}

// GetModel returns the last satisfying model found, valid only after Solve
// returned Sat (§6 get_model).
func (s *Solver) GetModel() ModelMap { return s.lastModel }

// GetConflict returns the conflict core under assumptions, valid only
// after Solve returned Unsat with assumptions in force (§6 get_conflict).
func (s *Solver) GetConflict() []OutsideLit { return s.lastConflict }

func (s *Solver) translateConflictToOutside() []OutsideLit {
	why := s.searcherEngine.Why()
	out := make([]OutsideLit, 0, len(why))
	for _, l := range why {
		inter := fromSearcherLit(l)
		outerVar := s.identity.OuterOfInter(inter.Var())
		outsideVar := s.identity.OutsideOf(outerVar)
		if outsideVar == NoOutsideVar {
			continue
		}
		out = append(out, outsideVar.SignedLit(!inter.IsPositive()))
	}
	return out
}

// ImpliedBy binds the given additional assumptions on a fresh decision
// level, transactionally undone afterwards (§6 implied_by), and returns the
// assumption literals that were not already bound. It runs no unit
// propagation, so literals that the clauses would force in turn are not
// reported. It returns nil if an assumption is already false.
func (s *Solver) ImpliedBy(lits []int) []int {
	if !s.ok {
		return nil
	}
	before := s.trail.Len()
	level := s.trail.DecisionLevel()
	s.trail.PushLevel()

	var forced []int
	conflict := false
	for _, raw := range lits {
		ol := IntToOutsideLit(raw)
		for int(ol.Var()) >= s.identity.NbOutsideVars() {
			s.NewVar()
		}
		outer := s.vrepl.ReplacedWithOuter(s.identity.OutsideToOuterLit(ol))
		inter := s.identity.OuterToInterLit(outer)
		val, ok := s.trail.LitValue(inter)
		if ok {
			if !val {
				conflict = true
				break
			}
			continue
		}
		s.trail.Enqueue(inter, NoProofID)
	}

	if !conflict {
		for i := before; i < s.trail.Len(); i++ {
			l := s.trail.Seq()[i]
			outerVar := s.identity.OuterOfInter(l.Var())
			outsideVar := s.identity.OutsideOf(outerVar)
			if outsideVar == NoOutsideVar {
				continue
			}
			forced = append(forced, outsideVar.SignedLit(!l.IsPositive()).Int())
		}
	}

	s.trail.CancelUntil(level)
	return forced
}

// MinimizeClause attempts a one-shot distillation-style shortening of
// clause (§6 minimize_clause): literals implied false by the rest of the
// clause under assumption are dropped.
func (s *Solver) MinimizeClause(clause []int) []int {
	if len(clause) == 0 {
		return clause
	}
	kept := make([]int, 0, len(clause))
	for i, lit := range clause {
		assumeNeg := make([]int, 0, len(clause)-1)
		for _, other := range kept {
			assumeNeg = append(assumeNeg, -other)
		}
		for _, other := range clause[i+1:] {
			assumeNeg = append(assumeNeg, -other)
		}
		implied := s.ImpliedBy(assumeNeg)
		redundant := false
		for _, f := range implied {
			if f == -lit {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, lit)
		}
	}
	if len(kept) == 0 {
		return clause
	}
	return kept
}

// GetZeroAssignedLits returns every literal forced true at decision level
// 0 (§6 get_zero_assigned_lits).
func (s *Solver) GetZeroAssignedLits() []int {
	var out []int
	for i := 0; i < s.trail.Len(); i++ {
		if s.trail.LevelAt(i) != 0 {
			continue
		}
		l := s.trail.Seq()[i]
		outerVar := s.identity.OuterOfInter(l.Var())
		outsideVar := s.identity.OutsideOf(outerVar)
		if outsideVar == NoOutsideVar {
			continue
		}
		out = append(out, outsideVar.SignedLit(!l.IsPositive()).Int())
	}
	return out
}

// GetAllBinaryXors returns every equivalence currently recorded (§6
// get_all_binary_xors).
func (s *Solver) GetAllBinaryXors() []BinaryXor { return s.vrepl.AllBinaryXors() }

// smallClauseIterator backs start/get_next/end_small_clauses (§6): a
// streaming export of clauses up to a bounded size, so callers need not
// materialize the whole irredundant set.
type smallClauseIterator struct {
	s       *Solver
	refs    []ClauseRef
	pos     int
	maxSize int
}

// StartSmallClauses begins a streaming export of the arena's irredundant
// long clauses with at most maxSize literals. Binary and unit clauses are
// not exported, nor are clauses that mention a variable with no outside
// name.
func (s *Solver) StartSmallClauses(maxSize int) *smallClauseIterator {
	return &smallClauseIterator{s: s, refs: s.arena.Irredundant(), maxSize: maxSize}
}

// GetNext returns the next small clause as outside literals, or nil, false
// once exhausted.
func (it *smallClauseIterator) GetNext() ([]int, bool) {
	for it.pos < len(it.refs) {
		ref := it.refs[it.pos]
		it.pos++
		c := it.s.arena.Get(ref)
		if c.Removed() || c.Len() > it.maxSize {
			continue
		}
		out := make([]int, c.Len())
		for i := 0; i < c.Len(); i++ {
			l := c.Get(i)
			outerVar := it.s.identity.OuterOfInter(l.Var())
			outsideVar := it.s.identity.OutsideOf(outerVar)
			if outsideVar == NoOutsideVar {
				out = nil
				break
			}
			out[i] = outsideVar.SignedLit(!l.IsPositive()).Int()
		}
		if out == nil {
			continue
		}
		return out, true
	}
	return nil, false
}

// EndSmallClauses is a no-op for this reference iterator; kept so callers
// following the start/get_next/end protocol exactly have something to call.
func (it *smallClauseIterator) EndSmallClauses() {}

// SetMaxConfl sets the global conflict budget (§6 set_max_confl).
func (s *Solver) SetMaxConfl(n int64) { s.cfg.MaxConflicts = n }

// SetTimeoutAllCalls sets the wall-clock budget in seconds (§6
// set_timeout_all_calls).
func (s *Solver) SetTimeoutAllCalls(secs int64) { s.cfg.TimeBudgetSecs = secs }

// SetVerbosity adjusts logging verbosity (§6 set_verbosity).
func (s *Solver) SetVerbosity(v int) {
	s.cfg.Verbosity = v
	s.logger.SetLevel(verbosityToLevel(v))
}

// SetSharedData installs the optional data-sync collaborator (§5).
func (s *Solver) SetSharedData(sync dataSyncClient) { s.dataSync = sync }

// InterruptASAP sets the must-interrupt flag and asks the Searcher to stop
// immediately (§6 interrupt_asap, §5): the flag alone only gets noticed at
// the outer loop's own decision boundaries between Searcher calls, which
// never arrive if the in-flight SolveWithBudget call is itself unbounded or
// simply hasn't hit its budget yet, so the Searcher also needs telling
// directly.
func (s *Solver) InterruptASAP() {
	s.mustInterrupt.Store(true)
	s.searcherEngine.Interrupt()
}

// Ok reports the solver's current ok bit.
func (s *Solver) Ok() bool { return s.ok }

// interLitsToOutside translates inter literals to outside space for a proof
// finalization record, following the same rule GetZeroAssignedLits and
// smallClauseIterator.GetNext already apply: a clause touching a
// BVA-introduced variable has no outside name, so it finalizes
// content-free (nil) rather than dropping or mistranslating a literal.
func (s *Solver) interLitsToOutside(lits []InterLit) []OutsideLit {
	out := make([]OutsideLit, len(lits))
	for i, l := range lits {
		outerVar := s.identity.OuterOfInter(l.Var())
		outsideVar := s.identity.OutsideOf(outerVar)
		if outsideVar == NoOutsideVar {
			return nil
		}
		out[i] = outsideVar.SignedLit(!l.IsPositive())
	}
	return out
}

// clauseInterLits copies a long clause's current literals out for
// translation; the arena's Get/Len accessors are the clause's only public
// surface.
func clauseInterLits(c *LongClause) []InterLit {
	lits := make([]InterLit, c.Len())
	for i := range lits {
		lits[i] = c.Get(i)
	}
	return lits
}

func (s *Solver) findAndInitMatrices(xors []gaussXor) []gauss.Matrix {
	constraints := make([]gauss.XorConstraint, len(xors))
	for i, x := range xors {
		vars := make([]gauss.Var, len(x.vars))
		for j, v := range x.vars {
			vars[j] = gauss.Var(v)
		}
		constraints[i] = gauss.XorConstraint{Vars: vars, RHS: x.rhs}
	}
	all := s.gaussFinder.Partition(constraints)
	kept := make([]gauss.Matrix, 0, len(all))
	for _, m := range all {
		if m.FullInit() {
			kept = append(kept, m)
		}
	}
	return kept
}

func (s *Solver) finalizationStages() map[FinalizationOrder]func() {
	return map[FinalizationOrder]func(){
		FinalizeVarReplacer:    func() { s.vrepl.DeleteFratCls(s.emitter) },
		FinalizeGaussResiduals: func() { s.matrices = nil },
		FinalizeFreeBDDs: func() {
			if s.bddEngine != nil {
				s.bddEngine.Done()
			}
		},
		FinalizeUnits: func() {
			for i := 0; i < s.trail.Len(); i++ {
				if s.trail.LevelAt(i) != 0 {
					continue
				}
				l := s.trail.Seq()[i]
				id := s.trail.UnitProofID(l.Var())
				if id == NoProofID {
					continue
				}
				s.emitter.FinalCl(id, s.interLitsToOutside([]InterLit{l}))
			}
		},
		FinalizeBinaries: func() {
			red, irred := s.watch.CountBinaries()
			s.stats.NbLearnedBin = int64(red)
			_ = irred
			for lit, list := range s.watch.lists {
				l := InterLit(lit)
				for _, w := range list {
					if w.kind != watchBinary || l >= w.other {
						continue // canonical direction only: finalize each pair once.
					}
					s.emitter.FinalCl(w.id, s.interLitsToOutside([]InterLit{l, w.other}))
				}
			}
		},
		FinalizeLongRed: func() {
			for t := Tier0; t <= Tier2; t++ {
				for _, ref := range s.arena.Redundant(t) {
					c := s.arena.Get(ref)
					if !c.Removed() {
						s.emitter.FinalCl(c.proofID, s.interLitsToOutside(clauseInterLits(c)))
					}
				}
			}
		},
		FinalizeLongIrred: func() {
			for _, ref := range s.arena.Irredundant() {
				c := s.arena.Get(ref)
				if !c.Removed() {
					s.emitter.FinalCl(c.proofID, s.interLitsToOutside(clauseInterLits(c)))
				}
			}
		},
	}
}

// pullSearcherStats copies the Searcher's own running counters into
// s.stats, the only place those counters are ever written: the Searcher
// itself is the sole observer of its internal conflicts/restarts/learned
// clauses, so every consumer (pushStatsRow, adjustMinimization, prometheus)
// reads through s.stats rather than calling Stats() independently.
func (s *Solver) pullSearcherStats() {
	st := s.searcherEngine.Stats() // delta since the last pull; Stats resets on read.
	s.stats.NbConflicts += st.Conflicts
	s.stats.NbRestarts += st.Restarts
	s.stats.NbLearned += st.Learned
	if s.metrics != nil {
		s.metrics.conflicts.Add(float64(st.Conflicts))
		s.metrics.restarts.Add(float64(st.Restarts))
		s.metrics.learned.Add(float64(st.Learned))
	}
}

// pushStatsRow emits one StatsRow to the attached statsink, if any, and
// updates the prometheus iteration histogram, per SPEC_FULL.md §4.12.
// Decisions/Propagations stay at zero: gini's public API has no way to
// surface them (internal/searcher.Stats documents why), so this reports
// exactly what the Searcher adapter can actually observe rather than a
// fabricated count.
func (s *Solver) pushStatsRow(start time.Time) {
	s.pullSearcherStats()
	elapsed := s.now().Sub(start).Seconds()
	if s.metrics != nil {
		s.metrics.iterTime.Observe(elapsed)
	}
	if s.statSink == nil {
		return
	}
	s.statSink.Push(statsink.Row{
		SolveID:      s.solveID,
		Iteration:    s.stats.NbOuterLoopIters,
		Restarts:     s.stats.NbRestarts,
		Conflicts:    s.stats.NbConflicts,
		Decisions:    s.stats.NbDecisions,
		Propagations: s.stats.NbPropagated,
		LearnedUnits: s.stats.NbLearnedUnit,
		LearnedBins:  s.stats.NbLearnedBin,
		LearnedLongs: s.stats.NbLearnedLong,
		ElapsedSecs:  elapsed,
		MemEstimate:  int64(s.arena.NbLive()),
	})
}
