package solver

import "testing"

func TestAttachBinaryIsSymmetric(t *testing.T) {
	w := NewWatchIndex(4)
	a, b := InterLit(0), InterLit(2)
	w.AttachBinary(a, b, false, ProofID(1))

	la, lb := w.List(a), w.List(b)
	if len(la) != 1 || la[0].other != b {
		t.Fatalf("expected a's watchlist to contain b, got %+v", la)
	}
	if len(lb) != 1 || lb[0].other != a {
		t.Fatalf("expected b's watchlist to contain a, got %+v", lb)
	}
}

func TestDetachBinaryRemovesBothSides(t *testing.T) {
	w := NewWatchIndex(4)
	a, b := InterLit(0), InterLit(2)
	w.AttachBinary(a, b, false, ProofID(1))
	w.DetachBinary(a, b)
	if len(w.List(a)) != 0 || len(w.List(b)) != 0 {
		t.Fatalf("expected both watchlists empty after detach")
	}
}

func TestDetachBinaryMissingPartnerPanics(t *testing.T) {
	w := NewWatchIndex(4)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected detaching a never-attached pair to panic")
		}
	}()
	w.DetachBinary(InterLit(0), InterLit(2))
}

func TestRewriteClauseRefUpdatesLongWatchers(t *testing.T) {
	w := NewWatchIndex(4)
	l0, l1 := InterLit(0), InterLit(2)
	w.AttachLong(ClauseRef(5), l0, l1)
	w.RewriteClauseRef(ClauseRef(5), ClauseRef(9))

	for _, e := range w.List(l0) {
		if e.kind == watchLong && e.long != ClauseRef(9) {
			t.Fatalf("expected long ref rewritten to 9, got %d", e.long)
		}
	}
}

func TestPermuteRewritesBinaryPartnerLiterals(t *testing.T) {
	w := NewWatchIndex(2)
	v0, v1 := InterVar(0), InterVar(1)
	w.AttachBinary(v0.Lit(), v1.Lit(), false, ProofID(1))

	// Swap var0 and var1's identities.
	oldToNew := []InterVar{1, 0}
	w.Permute(oldToNew, 2)

	newList := w.List(v1.Lit())
	if len(newList) != 1 || newList[0].other != v0.Lit() {
		t.Fatalf("expected the permuted binary entry to land on var1's list pointing at var0, got %+v", newList)
	}
}
