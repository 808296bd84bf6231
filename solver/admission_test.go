package solver

import (
	"testing"

	"github.com/cdclsolver/cdclsolver/internal/config"
)

func TestAddClauseOutsideUnitPropagatesAtLevelZero(t *testing.T) {
	s := New(config.Default())
	s.NewVars(2)
	s.AddClauseOutside([]OutsideLit{IntToOutsideLit(1)}, false)
	if !s.ok {
		t.Fatalf("expected a single unit clause to remain satisfiable")
	}
	iv := s.identity.InterOf(s.identity.OuterOf(OutsideVar(0)))
	val, ok := s.trail.Value(iv)
	if !ok || !val {
		t.Fatalf("expected var 0 bound true at level 0 after the unit clause")
	}
}

func TestAddClauseOutsideConflictingUnitsSetsUnsat(t *testing.T) {
	s := New(config.Default())
	s.NewVars(1)
	s.AddClauseOutside([]OutsideLit{IntToOutsideLit(1)}, false)
	s.AddClauseOutside([]OutsideLit{IntToOutsideLit(-1)}, false)
	if s.ok {
		t.Fatalf("expected contradictory unit clauses to set ok = false")
	}
}

func TestAddClauseOutsideBinaryAttachesWatchers(t *testing.T) {
	s := New(config.Default())
	s.NewVars(2)
	s.AddClauseOutside([]OutsideLit{IntToOutsideLit(1), IntToOutsideLit(2)}, false)
	if !s.ok {
		t.Fatalf("expected admission of a simple binary clause to succeed")
	}
	l0 := s.identity.OuterToInterLit(s.identity.OutsideToOuterLit(IntToOutsideLit(1)))
	found := false
	for _, w := range s.watch.List(l0) {
		if w.kind == watchBinary {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a binary watcher entry on the first literal")
	}
}

func TestAddClauseOutsideLongClauseGoesToArena(t *testing.T) {
	s := New(config.Default())
	s.NewVars(3)
	before := s.arena.NbLive()
	s.AddClauseOutside([]OutsideLit{IntToOutsideLit(1), IntToOutsideLit(2), IntToOutsideLit(3)}, false)
	if s.arena.NbLive() != before+1 {
		t.Fatalf("expected exactly one new clause in the arena, got %d -> %d", before, s.arena.NbLive())
	}
}

func TestAddClauseOutsideTautologyIsDiscarded(t *testing.T) {
	s := New(config.Default())
	s.NewVars(1)
	before := s.arena.NbLive()
	s.AddClauseOutside([]OutsideLit{IntToOutsideLit(1), IntToOutsideLit(-1)}, false)
	if !s.ok {
		t.Fatalf("a tautological clause must never cause unsat")
	}
	if s.arena.NbLive() != before {
		t.Fatalf("a tautological clause must not be stored")
	}
}
