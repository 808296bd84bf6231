package solver

import "testing"

func litsOf(vals ...int) []InterLit {
	lits := make([]InterLit, len(vals))
	for i, v := range vals {
		lits[i] = InterLit(v)
	}
	return lits
}

func TestArenaAllocAndGet(t *testing.T) {
	a := NewArena()
	c := newLongClause(litsOf(0, 2, 4), false, ProofID(1))
	ref := a.Alloc(c)
	if ref == NoClauseRef {
		t.Fatalf("expected a non-zero handle from Alloc")
	}
	if got := a.Get(ref); got != c {
		t.Fatalf("Get did not return the clause that was allocated")
	}
	if a.NbLive() != 1 {
		t.Fatalf("expected 1 live clause, got %d", a.NbLive())
	}
	if len(a.Irredundant()) != 1 {
		t.Fatalf("expected the clause to be registered as irredundant")
	}
}

func TestArenaFreeThenGetPanics(t *testing.T) {
	a := NewArena()
	ref := a.Alloc(newLongClause(litsOf(0, 2), false, ProofID(1)))
	a.Free(ref)
	if a.NbLive() != 0 {
		t.Fatalf("expected 0 live clauses after Free, got %d", a.NbLive())
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Get on a freed handle to panic")
		}
	}()
	a.Get(ref)
}

func TestArenaFreeSlotIsReused(t *testing.T) {
	a := NewArena()
	ref1 := a.Alloc(newLongClause(litsOf(0, 2), false, ProofID(1)))
	a.Free(ref1)
	ref2 := a.Alloc(newLongClause(litsOf(4, 6), false, ProofID(2)))
	if ref2 != ref1 {
		t.Fatalf("expected the freed slot to be reused, got new ref %d vs freed %d", ref2, ref1)
	}
}

func TestArenaConsolidateDropsFreedAndRewritesHandles(t *testing.T) {
	a := NewArena()
	ref1 := a.Alloc(newLongClause(litsOf(0, 2), false, ProofID(1)))
	ref2 := a.Alloc(newLongClause(litsOf(4, 6), false, ProofID(2)))
	a.Free(ref1)

	w := NewWatchIndex(8)
	a.Consolidate(w)

	if a.NbLive() != 1 {
		t.Fatalf("expected 1 live clause after consolidation, got %d", a.NbLive())
	}
	if len(a.Irredundant()) != 1 {
		t.Fatalf("expected exactly 1 irredundant handle after consolidation")
	}
	_ = ref2
}
