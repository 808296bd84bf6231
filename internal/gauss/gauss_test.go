package gauss

import "testing"

func TestDenseMatrixFinderPartitionsByDisjointVariables(t *testing.T) {
	xors := []XorConstraint{
		{Vars: []Var{0, 1}, RHS: true},
		{Vars: []Var{1, 2}, RHS: false},
		{Vars: []Var{5, 6}, RHS: true},
	}
	matrices := DenseMatrixFinder{}.Partition(xors)
	if len(matrices) != 2 {
		t.Fatalf("expected 2 disjoint groups, got %d", len(matrices))
	}
}

func TestDenseMatrixFullInitDetectsUnitRow(t *testing.T) {
	m := newDenseMatrix([]XorConstraint{{Vars: []Var{0}, RHS: true}})
	if !m.FullInit() {
		t.Fatalf("expected a single-variable XOR to be informative")
	}
	forced, conflict := m.PropagateLevelZero()
	if conflict {
		t.Fatalf("did not expect a conflict from a single consistent unit row")
	}
	if len(forced) != 1 || forced[0].V != Var(0) || !forced[0].Val {
		t.Fatalf("expected var 0 forced true, got %+v", forced)
	}
}

func TestDenseMatrixFullInitDetectsConflict(t *testing.T) {
	m := newDenseMatrix([]XorConstraint{
		{Vars: []Var{0, 1}, RHS: true},
		{Vars: []Var{0, 1}, RHS: false},
	})
	m.FullInit()
	_, conflict := m.PropagateLevelZero()
	if !conflict {
		t.Fatalf("expected two contradictory XORs over the same variables to conflict")
	}
}
