package solver

// ClauseRef is a stable handle to a long clause: a slot index into the
// arena's slot table (see clauseSlot). Unlike the teacher's GC-backed []*Clause slice,
// offsets survive consolidation without needing every holder to be a
// pointer the garbage collector can see - consolidation rewrites the few
// places that cache a ClauseRef instead (watchlists, the tier vectors),
// per the "arena-index handles" redesign note.
type ClauseRef uint32

// NoClauseRef is the zero value, reserved so a zeroed ClauseRef field reads
// as "absent" rather than "offset zero".
const NoClauseRef ClauseRef = 0

// clauseSlot is what actually lives at an offset. The arena is logically a
// []clauseSlot; "byte offset" in the spec's sense is realized here as a
// slot index, which is the Go-idiomatic analogue (the teacher's own
// clause_alloc.go bump-allocates into a flat []Lit pool the same way).
type clauseSlot struct {
	clause *LongClause
	live   bool
}

// Arena owns every long clause's storage. Watchlists and the per-tier
// vectors hold non-owning ClauseRef handles only.
type Arena struct {
	slots []clauseSlot
	free  []ClauseRef // slots vacated by Free, ready for reuse; cleared by Consolidate

	irred []ClauseRef
	red   [3][]ClauseRef // indexed by Tier

	nbLive int
}

// NewArena returns an empty arena. Slot 0 is burned so NoClauseRef is never
// a valid handle.
func NewArena() *Arena {
	return &Arena{slots: []clauseSlot{{}}}
}

// Alloc stores c and returns its handle, registering it in the irredundant
// or the appropriate tier's redundant vector.
func (a *Arena) Alloc(c *LongClause) ClauseRef {
	var ref ClauseRef
	if n := len(a.free); n > 0 {
		ref = a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[ref] = clauseSlot{clause: c, live: true}
	} else {
		ref = ClauseRef(len(a.slots))
		a.slots = append(a.slots, clauseSlot{clause: c, live: true})
	}
	a.nbLive++
	if c.Red() {
		a.red[c.tier] = append(a.red[c.tier], ref)
	} else {
		a.irred = append(a.irred, ref)
	}
	return ref
}

// Get dereferences a handle. Panics on a stale or zero handle, since that
// is always a programmer contract violation (kind 3 per the error model),
// never a reachable runtime state.
func (a *Arena) Get(ref ClauseRef) *LongClause {
	slot := a.slots[ref]
	if !slot.live {
		panic("arena: dereferencing a freed clause handle")
	}
	return slot.clause
}

// Free marks a handle's slot dead without compacting anything: the slot
// drops its *LongClause at once and is queued for reuse by the next Alloc.
func (a *Arena) Free(ref ClauseRef) {
	slot := &a.slots[ref]
	if !slot.live {
		return
	}
	slot.live = false
	slot.clause = nil
	a.free = append(a.free, ref)
	a.nbLive--
}

// NbLive returns the number of clauses currently allocated and not freed.
func (a *Arena) NbLive() int { return a.nbLive }

// Irredundant returns the current irredundant-clause handle vector. The
// returned slice is owned by the arena; callers must not retain it across a
// Consolidate.
func (a *Arena) Irredundant() []ClauseRef { return a.irred }

// Redundant returns the handle vector for a given tier.
func (a *Arena) Redundant(t Tier) []ClauseRef { return a.red[t] }

// rewriteHandle is satisfied by anything that owns cached ClauseRefs and
// needs to follow along when Consolidate relocates live clauses - the
// WatchIndex is the chief example.
type rewriteHandle interface {
	RewriteClauseRef(old, new ClauseRef)
}

// Consolidate copies every live clause into a fresh slot table, in live
// order, discarding the holes left by freed clauses, then asks every
// registered handle holder to rewrite its cached offsets through the
// returned remap. This is the fixed-point pass the arena-handle design
// note calls for: one rewrite pass, not a chase of aliasing pointers.
func (a *Arena) Consolidate(holders ...rewriteHandle) {
	newSlots := make([]clauseSlot, 1, len(a.slots))
	remap := make(map[ClauseRef]ClauseRef, a.nbLive)

	relocate := func(refs []ClauseRef) []ClauseRef {
		out := refs[:0]
		for _, ref := range refs {
			slot := a.slots[ref]
			if !slot.live {
				continue
			}
			newRef := ClauseRef(len(newSlots))
			newSlots = append(newSlots, slot)
			remap[ref] = newRef
			out = append(out, newRef)
		}
		return out
	}

	a.irred = relocate(a.irred)
	for t := range a.red {
		a.red[t] = relocate(a.red[t])
	}

	a.slots = newSlots
	a.free = nil

	for _, h := range holders {
		for old, new := range remap {
			h.RewriteClauseRef(old, new)
		}
	}
}
