package solver

import (
	"testing"

	"github.com/cdclsolver/cdclsolver/internal/config"
)

func TestGetRecoveredXorsReportsOutsideVars(t *testing.T) {
	s := New(config.Default())
	s.NewVars(2)
	s.AddXorClauseOutside([]OutsideVar{0, 1}, true)

	xors := s.GetRecoveredXors()
	if len(xors) != 1 {
		t.Fatalf("expected 1 recovered XOR, got %d", len(xors))
	}
	if !xors[0].Rhs {
		t.Fatalf("expected the recovered XOR's RHS to be true")
	}
	if len(xors[0].Vars) != 2 {
		t.Fatalf("expected 2 variables in the recovered XOR, got %+v", xors[0].Vars)
	}
}

func TestGetRecoveredOrGatesDetectsCanonicalEncoding(t *testing.T) {
	s := New(config.Default())
	s.NewVars(3) // var0 = i1, var1 = i2, var2 = o

	i1p := InterVar(0).Lit()
	i2p := InterVar(1).Lit()
	op := InterVar(2).Lit()

	s.arena.Alloc(newLongClause([]InterLit{i1p, i2p, op.Negation()}, false, ProofID(1)))
	s.watch.AttachBinary(i1p.Negation(), op, false, ProofID(2))
	s.watch.AttachBinary(i2p.Negation(), op, false, ProofID(3))

	gates := s.GetRecoveredOrGates()
	if len(gates) == 0 {
		t.Fatalf("expected at least one OR gate to be recovered")
	}
	found := false
	for _, g := range gates {
		if g.Out == 3 && len(g.Inputs) == 2 {
			has1, has2 := false, false
			for _, in := range g.Inputs {
				if in == 1 {
					has1 = true
				}
				if in == 2 {
					has2 = true
				}
			}
			if has1 && has2 {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected a gate with out=3 and inputs {1,2}, got %+v", gates)
	}
}

func TestGetRecoveredIteGatesDetectsCanonicalEncoding(t *testing.T) {
	s := New(config.Default())
	s.NewVars(4) // var0=c, var1=t, var2=e, var3=o

	c := InterVar(0).Lit()
	tt := InterVar(1).Lit()
	e := InterVar(2).Lit()
	o := InterVar(3).Lit()

	s.arena.Alloc(newLongClause([]InterLit{o.Negation(), c.Negation(), tt}, false, ProofID(1)))
	s.arena.Alloc(newLongClause([]InterLit{o.Negation(), c, e}, false, ProofID(2)))
	s.arena.Alloc(newLongClause([]InterLit{o, c.Negation(), tt.Negation()}, false, ProofID(3)))
	s.arena.Alloc(newLongClause([]InterLit{o, c, e.Negation()}, false, ProofID(4)))

	gates := s.GetRecoveredIteGates()
	if len(gates) == 0 {
		t.Fatalf("expected at least one ITE gate to be recovered")
	}
	found := false
	for _, g := range gates {
		if g.Out == 4 && g.Cond == 1 && g.Then == 2 && g.Else == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected gate out=4 cond=1 then=2 else=3, got %+v", gates)
	}
}
