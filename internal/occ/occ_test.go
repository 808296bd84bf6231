package occ

import "testing"

func TestLitIntRoundTrip(t *testing.T) {
	for _, i := range []int{1, -1, 5, -5} {
		l := FromInt(i)
		if got := l.Int(); got != i {
			t.Errorf("FromInt(%d).Int() = %d, want %d", i, got, i)
		}
	}
}

func TestResolutionEliminatorTryEliminatePureVariable(t *testing.T) {
	e := NewResolutionEliminator()
	// Variable 0 appears only positively across two clauses: eliminating it
	// should succeed since there are no resolvents at all (no opposite
	// occurrence to resolve against).
	e.AddClause([]Lit{FromInt(1), FromInt(2)})
	e.AddClause([]Lit{FromInt(1), FromInt(3)})
	if !e.TryEliminate(Var(0)) {
		t.Fatalf("expected elimination of a pure variable to succeed")
	}
}

func TestResolutionEliminatorUneliminateRestoresResolvents(t *testing.T) {
	e := NewResolutionEliminator()
	e.AddClause([]Lit{FromInt(1), FromInt(2)})
	e.AddClause([]Lit{FromInt(-1), FromInt(3)})
	if !e.TryEliminate(Var(0)) {
		t.Fatalf("expected elimination to succeed")
	}
	resolvents, ok := e.Uneliminate(Var(0))
	if !ok {
		t.Fatalf("expected uneliminate to report satisfiable resolvents")
	}
	if len(resolvents) == 0 {
		t.Fatalf("expected at least one resolvent clause to be replayed")
	}
}
