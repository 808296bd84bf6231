package solver

// Trail owns the per-variable value cell and the ordered sequence of
// assignments, marked by decision level. Every other subsystem holds only
// read views of the values it exposes, per the resource-ownership rules in
// §5.
type Trail struct {
	// value[v] is 0 (unbound), +(level+1) (bound true at that level) or
	// -(level+1) (bound false at that level) - the same packed encoding
	// the teacher's Problem.Model uses.
	value []decLevel

	seq   []InterLit // assignment order
	level []int32    // level at which seq[i] was assigned

	// trailLim marks, for each decision level, the index in seq where that
	// level's assignments begin.
	trailLim []int32

	unitProof []ProofID // indexed by InterVar, the proof id of its unit
}

// NewTrail returns an empty trail sized for nbVars variables.
func NewTrail(nbVars int) *Trail {
	return &Trail{
		value:     make([]decLevel, nbVars),
		unitProof: make([]ProofID, nbVars),
	}
}

// Grow extends the trail to cover newNbVars variables.
func (t *Trail) Grow(newNbVars int) {
	for len(t.value) < newNbVars {
		t.value = append(t.value, 0)
		t.unitProof = append(t.unitProof, NoProofID)
	}
}

// DecisionLevel returns the current decision level (0 at the root).
func (t *Trail) DecisionLevel() int32 { return int32(len(t.trailLim)) }

// Value reports the current binding of v: true/false once bound, and ok
// false while unbound.
func (t *Trail) Value(v InterVar) (val bool, ok bool) {
	d := t.value[v]
	if d == 0 {
		return false, false
	}
	return d > 0, true
}

// LitValue reports the current binding of a literal, accounting for sign.
func (t *Trail) LitValue(l InterLit) (val bool, ok bool) {
	v, ok := t.Value(l.Var())
	if !ok {
		return false, false
	}
	return v == l.IsPositive(), true
}

// PushLevel opens a new decision level.
func (t *Trail) PushLevel() {
	t.trailLim = append(t.trailLim, int32(len(t.seq)))
}

// Enqueue records l as true at the current decision level, with id as the
// proof identity of whatever forced it (NoProofID for a decision).
func (t *Trail) Enqueue(l InterLit, id ProofID) {
	v := l.Var()
	if l.IsPositive() {
		t.value[v] = decLevel(t.DecisionLevel() + 1)
	} else {
		t.value[v] = -decLevel(t.DecisionLevel() + 1)
	}
	t.unitProof[v] = id
	t.seq = append(t.seq, l)
	t.level = append(t.level, t.DecisionLevel())
}

// UnitProofID returns the proof ID that justified v's binding, valid only
// once v has been forced at decision level 0.
func (t *Trail) UnitProofID(v InterVar) ProofID { return t.unitProof[v] }

// CancelUntil rewinds the trail back to targetLevel, unbinding every
// variable assigned above it; assignments made at targetLevel itself
// (level-0 units included) are kept. The caller (the Searcher adapter, or
// the coordinator itself when restoring a transactional implied_by probe)
// is responsible for any heap/activity bookkeeping this implies.
func (t *Trail) CancelUntil(targetLevel int32) {
	if targetLevel >= t.DecisionLevel() {
		return
	}
	from := t.trailLim[targetLevel]
	for i := len(t.seq) - 1; i >= int(from); i-- {
		v := t.seq[i].Var()
		t.value[v] = 0
		t.unitProof[v] = NoProofID
	}
	t.seq = t.seq[:from]
	t.level = t.level[:from]
	t.trailLim = t.trailLim[:targetLevel]
}

// Seq returns the full assignment sequence, oldest first.
func (t *Trail) Seq() []InterLit { return t.seq }

// LevelAt returns the decision level at which seq position i was assigned.
func (t *Trail) LevelAt(i int) int32 { return t.level[i] }

// Len returns how many variables are currently bound.
func (t *Trail) Len() int { return len(t.seq) }

// Permute rewrites the trail (values, unit proof IDs and the level-0
// assignment sequence) through a fresh inter permutation. Only legal at
// decision level 0, which the renumberer's own precondition already
// guarantees; if violated this is a programmer contract violation.
func (t *Trail) Permute(oldToNew []InterVar, nbNewVars int) {
	if t.DecisionLevel() != 0 {
		panic("trail: cannot permute while assignments are pending")
	}
	for i, l := range t.seq {
		t.seq[i] = oldToNew[l.Var()].SignedLit(!l.IsPositive())
	}
	newValue := make([]decLevel, nbNewVars)
	newProof := make([]ProofID, nbNewVars)
	for i := range newProof {
		newProof[i] = NoProofID
	}
	for oldV, d := range t.value {
		if d == 0 {
			continue
		}
		newV := oldToNew[oldV]
		newValue[newV] = d
		newProof[newV] = t.unitProof[oldV]
	}
	t.value = newValue
	t.unitProof = newProof
}
