/*
Package solver is the outer coordination layer of a CDCL SAT orchestrator:
variable identity management across three namespaces, a clause arena,
watch-list maintenance, clause admission, an equivalence table, an XOR/BNN
constraint store, a dense-renumbering pass, an inprocessing strategy
interpreter, the outer search/simplify loop, proof emission and model
extension.

The inner CDCL decision/propagate/backtrack loop, occurrence-based
inprocessing algorithms, Gaussian elimination over XOR matrices, BDD-backed
XOR proof integration, proof-file serialization, and an external SQL
statistics sink are all treated as collaborators reachable only through the
internal/searcher, internal/occ, internal/gauss, internal/bdd,
internal/proofsink and internal/statsink package interfaces; this package
never implements any of them directly.

Building a problem

Variables are introduced with NewVar/NewVars, which return OutsideVar
identifiers the caller uses for every subsequent call:

    s := solver.New(config.Default())
    vars := s.NewVars(3)
    s.AddClause([]int{1, 2, 3}, false)
    s.AddClause([]int{-1, -2}, false)

Clauses, XOR constraints and BNN constraints are all admitted through the
Outside-literal surface (AddClause/AddXorClause/AddBnnClause); internally
every admitted constraint is translated down through outer and inter space
by the identity map, following any recorded variable equivalences on the
way.

Solving

    status := s.Solve(nil)
    switch status {
    case solver.Sat:
        model := s.GetModel()
    case solver.Unsat:
        conflict := s.GetConflict()
    }

Solve runs the outer search/simplify loop described in SPEC_FULL.md §4.6:
a startup inprocessing pass on first call, then alternating bounded search
rounds (delegated to the Searcher collaborator) and non-startup
inprocessing passes, until the budget is exhausted or a terminal result is
reached.
*/
package solver
