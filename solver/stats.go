package solver

import "github.com/prometheus/client_golang/prometheus"

// Stats aggregates per-solve counters, mirroring the teacher's solver.Stats
// but widened with the orchestrator-level figures (renumbers, proof
// records) the inner searcher has no visibility into.
type Stats struct {
	NbConflicts   int64
	NbDecisions   int64
	NbPropagated  int64
	NbRestarts    int64
	NbLearned     int64
	NbLearnedUnit int64
	NbLearnedBin  int64
	NbLearnedLong int64

	NbRenumbers      int64
	NbSimplifyRounds int64
	NbOuterLoopIters int64

	NbOrigClauses int64
	NbProofAdds   int64
	NbProofDels   int64

	ElapsedSecs float64
}

// metrics bundles the prometheus collectors a Solver updates as it runs.
// Registered lazily so a Solver created without a registry never touches
// the default one.
type metrics struct {
	conflicts  prometheus.Counter
	decisions  prometheus.Counter
	propagated prometheus.Counter
	restarts   prometheus.Counter
	learned    prometheus.Counter
	renumbers  prometheus.Counter
	simplifies prometheus.Counter
	iterTime   prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cdclsolver_conflicts_total",
			Help: "Total number of conflicts encountered by the searcher.",
		}),
		decisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cdclsolver_decisions_total",
			Help: "Total number of decisions made by the searcher.",
		}),
		propagated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cdclsolver_propagated_total",
			Help: "Total number of literals propagated.",
		}),
		restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cdclsolver_restarts_total",
			Help: "Total number of restarts.",
		}),
		learned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cdclsolver_learned_clauses_total",
			Help: "Total number of clauses learned.",
		}),
		renumbers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cdclsolver_renumbers_total",
			Help: "Total number of variable renumbering passes.",
		}),
		simplifies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cdclsolver_simplify_rounds_total",
			Help: "Total number of inprocessing simplify rounds run.",
		}),
		iterTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "cdclsolver_outer_loop_iteration_seconds",
			Help: "Wall-clock time spent per outer-loop iteration.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.conflicts, m.decisions, m.propagated, m.restarts,
			m.learned, m.renumbers, m.simplifies, m.iterTime)
	}
	return m
}

// StatsRow is the row-shaped view of Stats pushed to an external SQL
// statistics sink after each outer-loop iteration, per SPEC_FULL.md §4.12.
type StatsRow struct {
	SolveID      int64
	Iteration    int64
	Restarts     int64
	Conflicts    int64
	Decisions    int64
	Propagations int64
	LearnedUnits int64
	LearnedBins  int64
	LearnedLongs int64
	ElapsedSecs  float64
	MemEstimate  int64
}
