package solver

import "github.com/cdclsolver/cdclsolver/internal/proofsink"

// ProofID is a monotonically increasing clause identifier assigned by the
// emitter. Every clause, unit included, gets exactly one for its lifetime;
// invariant 7 requires each add to be matched by exactly one delete or
// finalization.
type ProofID int64

// NoProofID marks the absence of a proof identity: no UNSAT witness
// recorded yet, or a trail binding (such as a decision) that no clause
// justifies. IDs are allocated whether or not proof mode is on.
const NoProofID ProofID = -1

// ProofEmitter tracks ID allocation and forwards records to an external
// Sink. The emitter itself never touches bytes; serialization is the
// sink's concern, kept out of scope per the purpose statement.
type ProofEmitter struct {
	sink   proofsink.Sink
	nextID ProofID
	active bool

	unsatID ProofID // id of the clause that proved UNSAT, or NoProofID
}

// NewProofEmitter returns an emitter. A nil sink makes every method a
// no-op except ID allocation, so callers can always ask for IDs uniformly
// whether or not proof mode is on.
func NewProofEmitter(sink proofsink.Sink) *ProofEmitter {
	return &ProofEmitter{sink: sink, unsatID: NoProofID}
}

// Enabled reports whether a sink is attached.
func (p *ProofEmitter) Enabled() bool { return p.sink != nil }

// allocID returns the next monotonic ID, whether or not proof mode is on -
// other subsystems (e.g. clause bookkeeping) key off IDs even without a
// sink attached.
func (p *ProofEmitter) allocID() ProofID {
	id := p.nextID
	p.nextID++
	return id
}

// Orig records an original admitted clause for provenance and returns its
// ID.
func (p *ProofEmitter) Orig(lits []OutsideLit) ProofID {
	id := p.allocID()
	if p.sink != nil {
		p.sink.Orig(int64(id), toInts(lits))
	}
	return id
}

// Add records a derived clause and returns its ID.
func (p *ProofEmitter) Add(lits []OutsideLit) ProofID {
	id := p.allocID()
	if p.sink != nil {
		p.sink.Add(int64(id), toInts(lits))
	}
	return id
}

// Del retracts a previously added clause by ID.
func (p *ProofEmitter) Del(id ProofID, lits []OutsideLit) {
	if p.sink != nil {
		p.sink.Del(int64(id), toInts(lits))
	}
}

// FinalCl declares the final state of a clause still live at solve end.
func (p *ProofEmitter) FinalCl(id ProofID, lits []OutsideLit) {
	if p.sink != nil {
		p.sink.FinalCl(int64(id), toInts(lits))
	}
}

// MarkUnsat records the ID of the clause (possibly the empty one) that
// witnessed unsatisfiability, so the trailer can emit its finalcl exactly
// once per the open-question resolution in SPEC_FULL.md/spec.md §9: the
// caller never emits that finalcl itself, the trailer does it.
func (p *ProofEmitter) MarkUnsat(id ProofID) {
	if p.unsatID == NoProofID {
		p.unsatID = id
	}
}

// FinalizationOrder is the fixed sequence of categories finalized once, at
// solve end, when proof mode is on (§4.9).
type FinalizationOrder int

const (
	FinalizeVarReplacer FinalizationOrder = iota
	FinalizeGaussResiduals
	FinalizeFreeBDDs
	FinalizeEmptyClause
	FinalizeUnits
	FinalizeBinaries
	FinalizeLongRed
	FinalizeLongIrred
)

// WriteTrailer runs the finalization sequence. Each stage is supplied by
// the coordinator as a thunk so the emitter stays ignorant of solver
// internals; it only enforces ordering and the empty-clause special case.
func (p *ProofEmitter) WriteTrailer(stages map[FinalizationOrder]func()) {
	order := []FinalizationOrder{
		FinalizeVarReplacer, FinalizeGaussResiduals, FinalizeFreeBDDs,
		FinalizeEmptyClause, FinalizeUnits, FinalizeBinaries,
		FinalizeLongRed, FinalizeLongIrred,
	}
	for _, stage := range order {
		if stage == FinalizeEmptyClause {
			if p.unsatID != NoProofID {
				p.FinalCl(p.unsatID, nil)
			}
			continue
		}
		if fn, ok := stages[stage]; ok && fn != nil {
			fn()
		}
	}
	if p.sink != nil {
		p.sink.Fin()
	}
}

func toInts(lits []OutsideLit) []int {
	out := make([]int, len(lits))
	for i, l := range lits {
		out[i] = l.Int()
	}
	return out
}
