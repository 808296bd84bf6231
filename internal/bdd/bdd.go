// Package bdd defines the XOR/BDD proof-integration collaborator from
// spec.md §9: an opaque engine with create_xor_bdd/finalize/done/error_hook
// methods, bracketed by solve-start and the proof trailer. The reference
// Engine wraps github.com/dalzilio/rudd, a pure-Go BDD library.
package bdd

import "github.com/dalzilio/rudd"

// Handle is an opaque reference to a built XOR BDD, threaded back through
// the XOR store so proof emission can reference it without this package
// leaking rudd types into the solver package.
type Handle struct {
	node rudd.Node
}

// Engine is the collaborator contract. When BDD-backed XOR proofs are
// disabled, callers skip it entirely rather than constructing a no-op
// implementation, since the collaborator's lifetime is meant to be
// bracketed by an actual solve.
type Engine interface {
	CreateXorBDD(vars []int, rhs bool) (Handle, error)
	Finalize() error
	Done() error
	ErrorHook(fn func(error))
}

// RuddEngine is the reference Engine implementation.
type RuddEngine struct {
	b       *rudd.BDD
	varnum  int
	onError func(error)
}

// NewRuddEngine allocates a BDD universe over varnum variables.
func NewRuddEngine(varnum int) (*RuddEngine, error) {
	b, err := rudd.New(varnum)
	if err != nil {
		return nil, err
	}
	return &RuddEngine{b: b, varnum: varnum}, nil
}

// CreateXorBDD builds the BDD for the parity function over vars equal to
// rhs, as a left fold of rudd's Apply with OPxor over each variable's
// node, negated when rhs is false.
func (e *RuddEngine) CreateXorBDD(vars []int, rhs bool) (Handle, error) {
	if len(vars) == 0 {
		return Handle{}, errEngine("xor bdd requires at least one variable")
	}
	acc := e.b.Ithvar(vars[0])
	for _, v := range vars[1:] {
		acc = e.b.Apply(acc, e.b.Ithvar(v), rudd.OPxor)
	}
	if !rhs {
		acc = e.b.Not(acc)
	}
	if e.b.Error() != "" {
		return Handle{}, errEngine(e.b.Error())
	}
	return Handle{node: acc}, nil
}

// Finalize writes any residual BDD-backed clauses still needed at proof
// finalization. The reference engine keeps no residual state beyond the
// nodes already built, so this is a no-op beyond reporting errors.
func (e *RuddEngine) Finalize() error {
	if msg := e.b.Error(); msg != "" {
		return errEngine(msg)
	}
	return nil
}

// Done ends the engine's bracketed lifetime. The reference engine holds
// nothing to release explicitly, so this is a no-op.
func (e *RuddEngine) Done() error { return nil }

// ErrorHook stores a callback for BDD errors. The reference engine never
// invokes it: errors are reported only through the error results of
// CreateXorBDD and Finalize.
func (e *RuddEngine) ErrorHook(fn func(error)) { e.onError = fn }

type errEngine string

func (e errEngine) Error() string { return string(e) }
