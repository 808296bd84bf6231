// Package gauss defines the Gaussian-elimination collaborator over XOR
// matrices (spec.md §1, §4.11). The core asks a MatrixFinder to partition
// XORs into disjoint-variable groups and turn each into a Matrix; Gaussian
// elimination itself (row reduction during search) is out of scope and
// lives entirely behind this contract.
package gauss

// Var is an outer-space variable identifier.
type Var int32

// XorConstraint is the input shape a MatrixFinder groups: a variable set
// plus a right-hand-side bit, independent of the solver package's own
// XorClause type.
type XorConstraint struct {
	Vars []Var
	RHS  bool
}

// Matrix is one disjoint-variable group's Gaussian elimination state.
type Matrix interface {
	// FullInit runs the initial row reduction. It returns false when the
	// group is trivial or redundant and should be discarded rather than
	// tracked (§4.11 step 4).
	FullInit() bool

	// Vars returns the variable set this matrix covers.
	Vars() []Var

	// PropagateLevelZero returns any literals forced at decision level 0
	// by the current row-reduced state, or reports a conflict.
	PropagateLevelZero() (forced []XorLit, conflict bool)
}

// XorLit is a forced literal from matrix propagation.
type XorLit struct {
	V   Var
	Val bool
}

// MatrixFinder partitions a set of XORs into disjoint-variable groups and
// builds a Matrix for each.
type MatrixFinder interface {
	Partition(xors []XorConstraint) []Matrix
}

// DenseMatrixFinder is a reference MatrixFinder doing straightforward
// union-find grouping by shared variables, then dense-row-reduction per
// group - adequate for the XOR group sizes inprocessing produces, even
// though a production Gaussian elimination engine would use sparse rows.
type DenseMatrixFinder struct{}

// Partition groups xors that share at least one variable, transitively,
// then wraps each group in a DenseMatrix.
func (DenseMatrixFinder) Partition(xors []XorConstraint) []Matrix {
	parent := make(map[Var]Var)
	var find func(v Var) Var
	find = func(v Var) Var {
		p, ok := parent[v]
		if !ok {
			parent[v] = v
			return v
		}
		if p == v {
			return v
		}
		root := find(p)
		parent[v] = root
		return root
	}
	union := func(a, b Var) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for _, x := range xors {
		if len(x.Vars) == 0 {
			continue
		}
		if _, ok := parent[x.Vars[0]]; !ok {
			parent[x.Vars[0]] = x.Vars[0]
		}
		for _, v := range x.Vars[1:] {
			if _, ok := parent[v]; !ok {
				parent[v] = v
			}
			union(x.Vars[0], v)
		}
	}

	groups := make(map[Var][]XorConstraint)
	for _, x := range xors {
		if len(x.Vars) == 0 {
			continue
		}
		root := find(x.Vars[0])
		groups[root] = append(groups[root], x)
	}

	matrices := make([]Matrix, 0, len(groups))
	for _, g := range groups {
		matrices = append(matrices, newDenseMatrix(g))
	}
	return matrices
}

// DenseMatrix performs plain Gauss-Jordan elimination over GF(2) rows, one
// row per XOR, one column per variable in the group.
type DenseMatrix struct {
	vars    []Var
	varIdx  map[Var]int
	rows    [][]bool // each row has len(vars)+1 bits, last is RHS
	reduced bool
}

func newDenseMatrix(xors []XorConstraint) *DenseMatrix {
	varIdx := make(map[Var]int)
	var vars []Var
	for _, x := range xors {
		for _, v := range x.Vars {
			if _, ok := varIdx[v]; !ok {
				varIdx[v] = len(vars)
				vars = append(vars, v)
			}
		}
	}
	rows := make([][]bool, len(xors))
	for i, x := range xors {
		row := make([]bool, len(vars)+1)
		for _, v := range x.Vars {
			row[varIdx[v]] = !row[varIdx[v]]
		}
		row[len(vars)] = x.RHS
		rows[i] = row
	}
	return &DenseMatrix{vars: vars, varIdx: varIdx, rows: rows}
}

// FullInit row-reduces the matrix and reports whether it contains any
// informative constraint (a row with more than zero variable bits set, or
// a contradictory empty row).
func (m *DenseMatrix) FullInit() bool {
	nbCols := len(m.vars)
	pivotRow := 0
	for col := 0; col < nbCols && pivotRow < len(m.rows); col++ {
		sel := -1
		for r := pivotRow; r < len(m.rows); r++ {
			if m.rows[r][col] {
				sel = r
				break
			}
		}
		if sel == -1 {
			continue
		}
		m.rows[pivotRow], m.rows[sel] = m.rows[sel], m.rows[pivotRow]
		for r := 0; r < len(m.rows); r++ {
			if r != pivotRow && m.rows[r][col] {
				xorRows(m.rows[r], m.rows[pivotRow])
			}
		}
		pivotRow++
	}
	m.reduced = true
	informative := false
	for _, row := range m.rows {
		for _, bit := range row {
			if bit {
				informative = true
				break
			}
		}
		if informative {
			break
		}
	}
	return informative
}

func xorRows(dst, src []bool) {
	for i := range dst {
		dst[i] = dst[i] != src[i]
	}
}

// Vars returns this matrix's variable set.
func (m *DenseMatrix) Vars() []Var { return m.vars }

// PropagateLevelZero scans reduced rows for unit rows (exactly one
// variable bit set) and reports them as forced; an all-zero row with a set
// RHS bit is a conflict.
func (m *DenseMatrix) PropagateLevelZero() (forced []XorLit, conflict bool) {
	if !m.reduced {
		m.FullInit()
	}
	for _, row := range m.rows {
		nbSet, idx := 0, -1
		for i := 0; i < len(m.vars); i++ {
			if row[i] {
				nbSet++
				idx = i
			}
		}
		if nbSet == 0 {
			if row[len(m.vars)] {
				return forced, true
			}
			continue
		}
		if nbSet == 1 {
			forced = append(forced, XorLit{V: m.vars[idx], Val: row[len(m.vars)]})
		}
	}
	return forced, false
}
