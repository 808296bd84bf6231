package solver

import "testing"

func TestIntToOutsideLitRoundTrip(t *testing.T) {
	for _, i := range []int{1, -1, 2, -2, 37, -37} {
		l := IntToOutsideLit(i)
		if got := l.Int(); got != i {
			t.Errorf("IntToOutsideLit(%d).Int() = %d, want %d", i, got, i)
		}
	}
}

func TestOutsideLitSign(t *testing.T) {
	v := OutsideVar(3)
	pos := v.SignedLit(false)
	neg := v.SignedLit(true)
	if !pos.IsPositive() {
		t.Errorf("expected positive literal for SignedLit(false)")
	}
	if neg.IsPositive() {
		t.Errorf("expected negative literal for SignedLit(true)")
	}
	if pos.Var() != v || neg.Var() != v {
		t.Errorf("SignedLit changed the variable: got %d/%d, want %d", pos.Var(), neg.Var(), v)
	}
	if pos.Negation() != neg {
		t.Errorf("pos.Negation() = %d, want %d", pos.Negation(), neg)
	}
}

func TestOuterInterLitShareEncoding(t *testing.T) {
	ov := OuterVar(5)
	iv := InterVar(5)
	if ov.SignedLit(true) != OuterLit(iv.SignedLit(true)) {
		t.Errorf("outer and inter literal encodings diverged for the same index")
	}
}
