package solver

// watchKind tags what a single watcher entry points at, mirroring the
// teacher's watcher{other Lit; clause *Clause} but widened to the four
// shapes the orchestrator's clause database can produce.
type watchKind byte

const (
	watchBinary watchKind = iota
	watchLong
	watchXor
	watchBnn
)

// watcher is one entry of a literal's watchlist: when the owning literal
// becomes false, every watcher attached to it must be inspected.
type watcher struct {
	kind watchKind

	// watchBinary: other is the binary partner, long/xorIdx/bnnIdx unused.
	other InterLit
	red   bool
	id    ProofID

	// watchLong: long is the clause's arena handle.
	long ClauseRef

	// watchXor / watchBnn: index into the XOR or BNN vector.
	xorIdx int
	bnnIdx int
}

// WatchIndex is, per literal, the list of binary partners, long-clause
// offsets, XOR indices and BNN indices that need inspection when that
// literal is falsified. Entry order within a list is not semantically
// significant but is deterministic, since it is only ever appended to or
// filtered in place.
type WatchIndex struct {
	lists [][]watcher
}

// NewWatchIndex returns an index sized for nbVars variables (2*nbVars
// literal slots).
func NewWatchIndex(nbVars int) *WatchIndex {
	return &WatchIndex{lists: make([][]watcher, 2*nbVars)}
}

// Grow extends the index to cover newNbVars variables; existing lists are
// preserved.
func (w *WatchIndex) Grow(newNbVars int) {
	need := 2 * newNbVars
	if need <= len(w.lists) {
		return
	}
	grown := make([][]watcher, need)
	copy(grown, w.lists)
	w.lists = grown
}

// List returns the watcher list for l, indexable/iterable in place.
func (w *WatchIndex) List(l InterLit) []watcher { return w.lists[l] }

// AttachBinary records a binary clause (a,b) in both endpoints' watchlists,
// maintaining invariant 3: each list gets the other literal exactly once,
// with identical red flag and ID.
func (w *WatchIndex) AttachBinary(a, b InterLit, red bool, id ProofID) {
	w.lists[a] = append(w.lists[a], watcher{kind: watchBinary, other: b, red: red, id: id})
	w.lists[b] = append(w.lists[b], watcher{kind: watchBinary, other: a, red: red, id: id})
}

// DetachBinary removes the (a,b) pair symmetrically. Both sides are walked;
// a missing partner is a consistency bug (kind 3), not tolerated silently.
func (w *WatchIndex) DetachBinary(a, b InterLit) {
	w.detachOne(a, b)
	w.detachOne(b, a)
}

func (w *WatchIndex) detachOne(owner, partner InterLit) {
	list := w.lists[owner]
	for i, e := range list {
		if e.kind == watchBinary && e.other == partner {
			list[i] = list[len(list)-1]
			w.lists[owner] = list[:len(list)-1]
			return
		}
	}
	panic("watch: binary partner missing from symmetric watchlist")
}

// AttachLong watches a long clause's first two literals, satisfying
// invariant 2.
func (w *WatchIndex) AttachLong(ref ClauseRef, first, second InterLit) {
	w.lists[first] = append(w.lists[first], watcher{kind: watchLong, long: ref})
	w.lists[second] = append(w.lists[second], watcher{kind: watchLong, long: ref})
}

// DetachLong removes ref from both of its watched literals' lists.
func (w *WatchIndex) DetachLong(ref ClauseRef, first, second InterLit) {
	w.detachLongOne(first, ref)
	w.detachLongOne(second, ref)
}

func (w *WatchIndex) detachLongOne(owner InterLit, ref ClauseRef) {
	list := w.lists[owner]
	for i, e := range list {
		if e.kind == watchLong && e.long == ref {
			list[i] = list[len(list)-1]
			w.lists[owner] = list[:len(list)-1]
			return
		}
	}
}

// AttachXor watches an XOR constraint on the smallest-numbered variable
// involved, only when it has been matched into the CNF layer (§4.4); it is
// otherwise reachable solely through the xor vector.
func (w *WatchIndex) AttachXor(l InterLit, idx int) {
	w.lists[l] = append(w.lists[l], watcher{kind: watchXor, xorIdx: idx})
}

// AttachBnn watches a BNN constraint on one of its literals.
func (w *WatchIndex) AttachBnn(l InterLit, idx int) {
	w.lists[l] = append(w.lists[l], watcher{kind: watchBnn, bnnIdx: idx})
}

// RewriteClauseRef satisfies the arena's rewriteHandle contract: every
// watcher caching the old handle is updated to the new one in place.
func (w *WatchIndex) RewriteClauseRef(old, new ClauseRef) {
	for _, list := range w.lists {
		for i := range list {
			if list[i].kind == watchLong && list[i].long == old {
				list[i].long = new
			}
		}
	}
}

// CountBinaries returns the number of red and irredundant binary watcher
// entries, for the invariant |redBinaries| = (sum of red entries)/2 check.
func (w *WatchIndex) CountBinaries() (red, irred int) {
	for _, list := range w.lists {
		for _, e := range list {
			if e.kind != watchBinary {
				continue
			}
			if e.red {
				red++
			} else {
				irred++
			}
		}
	}
	return red, irred
}

// Permute rewrites every watchlist (and the literals cached inside binary
// entries) through a fresh inter-space permutation, as the renumberer
// requires. oldToNew is indexed by old InterVar.
func (w *WatchIndex) Permute(oldToNew []InterVar, nbNewVars int) {
	newLists := make([][]watcher, 2*nbNewVars)
	for oldLit, list := range w.lists {
		l := InterLit(oldLit)
		newVar := oldToNew[l.Var()]
		newLit := newVar.SignedLit(!l.IsPositive())
		for _, e := range list {
			if e.kind == watchBinary {
				ov := e.other.Var()
				e.other = oldToNew[ov].SignedLit(!e.other.IsPositive())
			}
			newLists[newLit] = append(newLists[newLit], e)
		}
	}
	w.lists = newLists
}
