package solver

import "fmt"

// Tier buckets a learned long clause by glue (GLOSSARY "Tier"), as set by
// SetGlue. Tiers only select which redundant vector holds the clause;
// nothing demotes a clause between tiers or reclaims it by tier.
type Tier byte

const (
	// Tier0 holds clauses with glue <= 2, and every clause whose glue was
	// never set.
	Tier0 Tier = iota
	// Tier1 holds clauses with glue 3..6.
	Tier1
	// Tier2 holds clauses with glue > 6.
	Tier2
)

// LongClause is a clause of size >= 3 as stored in the arena. Arena-index
// handles (not pointers) are what the rest of the orchestrator holds onto,
// so relocation during consolidation never invalidates a live reference.
type LongClause struct {
	lits []InterLit

	red     bool // derivable from the original formula; may be dropped
	removed bool
	tier    Tier

	proofID   ProofID
	glue      int32 // number of distinct decision levels, i.e. LBD
	activity  float32
	lastTouch int64 // conflict counter at last bump
}

// newLongClause returns a clause over the given literals. lits is taken by
// reference; callers must not reuse the slice afterwards.
func newLongClause(lits []InterLit, red bool, id ProofID) *LongClause {
	return &LongClause{lits: lits, red: red, proofID: id}
}

// Len returns the number of literals still in the clause.
func (c *LongClause) Len() int { return len(c.lits) }

// Get returns the ith literal.
func (c *LongClause) Get(i int) InterLit { return c.lits[i] }

// Set overwrites the ith literal, used when watched-literal bookkeeping
// swaps positions rather than rotating the whole slice.
func (c *LongClause) Set(i int, l InterLit) { c.lits[i] = l }

func (c *LongClause) swap(i, j int) { c.lits[i], c.lits[j] = c.lits[j], c.lits[i] }

// Shrink drops literals from position newLen onward; used by distillation
// and level-0 cleanup. The caller must emit the matching proof add/del pair.
func (c *LongClause) Shrink(newLen int) { c.lits = c.lits[:newLen] }

// Red reports whether the clause is redundant (learned, not original).
func (c *LongClause) Red() bool { return c.red }

// Removed reports whether the clause has been marked dead, pending
// reclamation by the next consolidation pass.
func (c *LongClause) Removed() bool { return c.removed }

// markRemoved flags the clause as dead without yet freeing its bytes.
func (c *LongClause) markRemoved() { c.removed = true }

// Glue returns the clause's glue (LBD) value, used to pick its tier.
func (c *LongClause) Glue() int32 { return c.glue }

// SetGlue updates glue and reclassifies the clause's tier accordingly,
// mirroring the teacher's lbd-driven reduceLearned policy but bucketed
// instead of sorted, per the tiering scheme in SPEC_FULL.md §4.13.
func (c *LongClause) SetGlue(glue int32) {
	c.glue = glue
	switch {
	case glue <= 2:
		c.tier = Tier0
	case glue <= 6:
		c.tier = Tier1
	default:
		c.tier = Tier2
	}
}

// BumpActivity increases the clause's activity score and records the
// conflict at which it was last touched.
func (c *LongClause) BumpActivity(amount float32, conflict int64) {
	c.activity += amount
	c.lastTouch = conflict
}

// CNF renders the clause's raw inter-literal encodings (2*var+sign), space
// separated and 0-terminated, for diagnostics; it is not DIMACS numbering.
func (c *LongClause) CNF() string {
	res := ""
	for _, lit := range c.lits {
		res += fmt.Sprintf("%d ", lit)
	}
	return fmt.Sprintf("%s0", res)
}
