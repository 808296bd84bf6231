package solver

import (
	"testing"

	"github.com/cdclsolver/cdclsolver/internal/config"
)

// TestXorTriangleConflictIsUnsat covers SPEC_FULL.md §8 scenario 5: three
// XORs over a shared variable set (x1^x2^x3=1, x1^x2=0, x3=0) are
// contradictory by substitution alone, with no CNF shadow for Gaussian
// elimination to ride on. Before propagateGaussMatrices existed, nothing
// ever asked the matrix for its consequences and this returned Indet/Sat
// instead.
func TestXorTriangleConflictIsUnsat(t *testing.T) {
	s := New(config.Default())
	s.NewVars(3)
	s.AddXorClauseOutside([]OutsideVar{0, 1, 2}, true)
	s.AddXorClauseOutside([]OutsideVar{0, 1}, false)
	s.AddXorClauseOutside([]OutsideVar{2}, false)

	status := s.Solve(nil)
	if status != Unsat {
		t.Fatalf("expected the XOR triangle to be unsat, got %v", status)
	}
}

// TestGaussPropagationForcesUnitFromParityAlone is a narrower check on the
// same collaborator: an XOR of a single variable is a unit row from parity
// structure alone (no trail lookup involved), which propagateGaussMatrices
// must enqueue directly.
func TestGaussPropagationForcesUnitFromParityAlone(t *testing.T) {
	s := New(config.Default())
	s.NewVars(1)
	s.AddXorClauseOutside([]OutsideVar{0}, true) // x0 = true

	s.initGaussMatrices()
	if !s.ok {
		t.Fatalf("expected a single-variable XOR to be satisfiable")
	}

	iv := s.identity.InterOf(s.identity.OuterOf(OutsideVar(0)))
	val, ok := s.trail.Value(iv)
	if !ok || !val {
		t.Fatalf("expected x0 forced true at level 0, got ok=%v val=%v", ok, val)
	}
}

// TestBnnThresholdPropagatesForcedLiterals covers SPEC_FULL.md §8 scenario
// 6: a "3 of 4" threshold constraint with one literal already false has
// exactly enough slack left that every remaining literal is forced true.
// Before propagateBnnConstraints existed, BnnClause.Eval was never called
// from anywhere, so this constraint was stored but never enforced.
func TestBnnThresholdPropagatesForcedLiterals(t *testing.T) {
	s := New(config.Default())
	vars := s.NewVars(4)
	lits := make([]OutsideLit, len(vars))
	for i, v := range vars {
		lits[i] = v.Lit()
	}

	s.AddClauseOutside([]OutsideLit{lits[0].Negation()}, false) // x0 = false
	s.AddBnnClauseOutside(lits, 3, OutsideLit(0), false)         // at least 3 of 4

	s.propagateBnnConstraints()
	if !s.ok {
		t.Fatalf("expected the threshold constraint to remain satisfiable, not conflict")
	}

	for i := 1; i < 4; i++ {
		iv := s.identity.InterOf(s.identity.OuterOf(vars[i]))
		val, ok := s.trail.Value(iv)
		if !ok || !val {
			t.Fatalf("expected var %d forced true by the exhausted-slack case, got ok=%v val=%v", i, ok, val)
		}
	}
}

// TestBnnThresholdUnreachableIsConflict covers the complementary half of
// scenario 6: when too many literals are already false for the threshold
// to be reachable at all, and the constraint has no output literal to take
// the blame instead, evaluating it must set ok = false directly.
func TestBnnThresholdUnreachableIsConflict(t *testing.T) {
	s := New(config.Default())
	vars := s.NewVars(4)
	lits := make([]OutsideLit, len(vars))
	for i, v := range vars {
		lits[i] = v.Lit()
	}

	s.AddClauseOutside([]OutsideLit{lits[0].Negation()}, false)
	s.AddClauseOutside([]OutsideLit{lits[1].Negation()}, false)
	s.AddBnnClauseOutside(lits, 3, OutsideLit(0), false) // at least 3 of 4, only 2 left

	s.propagateBnnConstraints()
	if s.ok {
		t.Fatalf("expected an unreachable threshold with no output literal to set ok = false")
	}
}
