package solver

import "testing"

func TestVarReplacerUnionAndFind(t *testing.T) {
	r := NewVarReplacer(4)
	if !r.Union(OuterVar(2), OuterVar(0), true, ProofID(1)) {
		t.Fatalf("expected first union to succeed")
	}
	l := OuterVar(2).Lit() // positive literal of var 2
	repl := r.ReplacedWithOuter(l)
	if repl.Var() != OuterVar(0) {
		t.Fatalf("expected var 2 to be replaced by var 0, got %d", repl.Var())
	}
	if repl.IsPositive() {
		t.Fatalf("expected the sign to flip since the union was recorded with sign=true")
	}
}

func TestVarReplacerUnionContradiction(t *testing.T) {
	r := NewVarReplacer(4)
	if !r.Union(OuterVar(0), OuterVar(1), false, ProofID(1)) {
		t.Fatalf("expected first union to succeed")
	}
	if r.Union(OuterVar(0), OuterVar(1), true, ProofID(2)) {
		t.Fatalf("expected a contradictory union (opposite sign) to fail")
	}
}

func TestVarReplacerExtendModel(t *testing.T) {
	r := NewVarReplacer(2)
	r.Union(OuterVar(1), OuterVar(0), true, ProofID(1)) // var1 = !var0
	model := []decLevel{1, 0}                          // var0 bound true, var1 unbound
	r.ExtendModel(model)
	if model[1] != -1 {
		t.Fatalf("expected var1 to be forced false, got %d", model[1])
	}
}

func TestVarReplacerIsRoot(t *testing.T) {
	r := NewVarReplacer(2)
	if !r.IsRoot(OuterVar(0)) || !r.IsRoot(OuterVar(1)) {
		t.Fatalf("expected every variable to be its own root before any union")
	}
	r.Union(OuterVar(1), OuterVar(0), false, ProofID(1))
	if r.IsRoot(OuterVar(1)) {
		t.Fatalf("expected var1 to no longer be a root after being replaced")
	}
}
