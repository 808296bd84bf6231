package solver

import "testing"

func TestNewOutsideVarGrowsAllThreeSpaces(t *testing.T) {
	im := NewIdentityMap()
	a := im.NewOutsideVar()
	b := im.NewOutsideVar()
	if a == b {
		t.Fatalf("expected distinct outside vars, got %d and %d", a, b)
	}
	if im.NbOutsideVars() != 2 || im.NbOuter() != 2 {
		t.Fatalf("expected 2 outside and 2 outer vars, got %d/%d", im.NbOutsideVars(), im.NbOuter())
	}
	oa := im.OuterOf(a)
	ob := im.OuterOf(b)
	if oa == NoOuterVar || ob == NoOuterVar {
		t.Fatalf("expected both vars to have an outer counterpart")
	}
	if im.OutsideOf(oa) != a || im.OutsideOf(ob) != b {
		t.Fatalf("OutsideOf did not invert OuterOf")
	}
}

func TestNewOuterVarBVAHasNoOutsideName(t *testing.T) {
	im := NewIdentityMap()
	bva := im.NewOuterVarBVA()
	if im.OutsideOf(bva) != NoOutsideVar {
		t.Fatalf("expected a BVA-introduced variable to have no outside name")
	}
}

func TestOuterToOutsideLitPanicsForBVAVar(t *testing.T) {
	im := NewIdentityMap()
	bva := im.NewOuterVarBVA()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic translating a BVA variable's literal to outside space")
		}
	}()
	im.OuterToOutsideLit(bva.Lit())
}

func TestRebuildPreservesTranslation(t *testing.T) {
	im := NewIdentityMap()
	a := im.NewOutsideVar()
	b := im.NewOutsideVar()
	oa, ob := im.OuterOf(a), im.OuterOf(b)

	// Swap the two outer variables' inter slots.
	im.Rebuild([]InterVar{im.InterOf(ob), im.InterOf(oa)})

	if im.InterOf(oa) != 1 || im.InterOf(ob) != 0 {
		t.Fatalf("Rebuild did not install the requested permutation")
	}
	if im.OuterOfInter(0) != ob || im.OuterOfInter(1) != oa {
		t.Fatalf("Rebuild left interToOuter inconsistent with outerToInter")
	}
}
