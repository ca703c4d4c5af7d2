// Package mip solves small mixed-integer linear programs by
// branch-and-bound over the simplex LP relaxation from gonum.
package mip

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Status reports the outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	default:
		return "Failed"
	}
}

// Problem is a minimization program
//
//	minimize  Cᵀx
//	subject to G·x ≤ H,  x ≥ 0
//
// with x[i] restricted to integers where Integer[i] is true.
type Problem struct {
	C       []float64
	G       *mat.Dense
	H       []float64
	Integer []bool
}

// Solution holds the solver outcome. X is only meaningful when Status
// is StatusOptimal.
type Solution struct {
	Status    Status
	X         []float64
	Objective float64
}

const (
	simplexTol = 1e-7
	intTol     = 1e-6
	// maxNodes bounds the branch-and-bound tree. The allocation models
	// this package serves stay far below it.
	maxNodes = 200000
)

// solveRelaxation points to the LP routine so tests can simulate
// solver failures.
var solveRelaxation = simplexSolve

// Solve runs branch-and-bound on the problem. Variables whose column
// in G is entirely zero are fixed before solving: gonum's simplex
// rejects zero columns, and with a non-negative cost such a variable
// is zero in any optimum.
func Solve(p Problem) Solution {
	n := len(p.C)
	if n == 0 {
		return Solution{Status: StatusOptimal}
	}
	if len(p.Integer) != n {
		return Solution{Status: StatusFailed}
	}

	active, fixed := splitZeroColumns(p)
	for _, i := range fixed {
		if p.C[i] < 0 {
			// Unconstrained variable with negative cost.
			return Solution{Status: StatusUnbounded}
		}
	}
	if len(active) == 0 {
		return Solution{Status: StatusOptimal, X: make([]float64, n)}
	}

	sub := reduceProblem(p, active)
	sol := branchAndBound(sub)
	if sol.Status != StatusOptimal {
		return Solution{Status: sol.Status}
	}

	x := make([]float64, n)
	for j, i := range active {
		v := sol.X[j]
		if p.Integer[i] {
			v = math.Round(v)
		}
		if v < 0 {
			v = 0
		}
		x[i] = v
	}
	return Solution{Status: StatusOptimal, X: x, Objective: sol.Objective}
}

// splitZeroColumns partitions variable indices into those appearing in
// at least one constraint row and those appearing in none.
func splitZeroColumns(p Problem) (active, fixed []int) {
	n := len(p.C)
	rows := len(p.H)
	for i := 0; i < n; i++ {
		nonzero := false
		for r := 0; r < rows; r++ {
			if p.G.At(r, i) != 0 {
				nonzero = true
				break
			}
		}
		if nonzero {
			active = append(active, i)
		} else {
			fixed = append(fixed, i)
		}
	}
	return active, fixed
}

func reduceProblem(p Problem, active []int) Problem {
	rows := len(p.H)
	c := make([]float64, len(active))
	integer := make([]bool, len(active))
	g := mat.NewDense(rows, len(active), nil)
	for j, i := range active {
		c[j] = p.C[i]
		integer[j] = p.Integer[i]
		for r := 0; r < rows; r++ {
			g.Set(r, j, p.G.At(r, i))
		}
	}
	h := make([]float64, rows)
	copy(h, p.H)
	return Problem{C: c, G: g, H: h, Integer: integer}
}

type node struct {
	lower []float64
	upper []float64 // math.Inf(1) when unbounded above
}

func branchAndBound(p Problem) Solution {
	n := len(p.C)
	root := node{lower: make([]float64, n), upper: make([]float64, n)}
	for i := range root.upper {
		root.upper[i] = math.Inf(1)
	}

	best := math.Inf(1)
	var bestX []float64
	stack := []node{root}
	explored := 0

	for len(stack) > 0 {
		if explored >= maxNodes {
			return Solution{Status: StatusFailed}
		}
		explored++
		atRoot := explored == 1
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		obj, x, err := solveRelaxation(p, nd)
		if err != nil {
			switch {
			case errors.Is(err, lp.ErrInfeasible):
				if atRoot {
					return Solution{Status: StatusInfeasible}
				}
				continue
			case errors.Is(err, lp.ErrUnbounded):
				return Solution{Status: StatusUnbounded}
			default:
				return Solution{Status: StatusFailed}
			}
		}
		if obj >= best-1e-9 {
			continue
		}

		frac := mostFractional(x, p.Integer)
		if frac < 0 {
			best = obj
			bestX = x
			continue
		}

		v := x[frac]
		// Explore the floor branch first: push it last.
		up := cloneNode(nd)
		up.lower[frac] = math.Ceil(v)
		down := cloneNode(nd)
		down.upper[frac] = math.Floor(v)
		stack = append(stack, up, down)
	}

	if bestX == nil {
		return Solution{Status: StatusInfeasible}
	}
	return Solution{Status: StatusOptimal, X: bestX, Objective: best}
}

func cloneNode(nd node) node {
	lo := make([]float64, len(nd.lower))
	hi := make([]float64, len(nd.upper))
	copy(lo, nd.lower)
	copy(hi, nd.upper)
	return node{lower: lo, upper: hi}
}

// mostFractional returns the integer variable furthest from an integer
// value, or -1 when the point is integral.
func mostFractional(x []float64, integer []bool) int {
	idx := -1
	bestDist := intTol
	for i, v := range x {
		if !integer[i] {
			continue
		}
		f := v - math.Floor(v)
		d := math.Min(f, 1-f)
		if d > bestDist {
			bestDist = d
			idx = i
		}
	}
	return idx
}

// simplexSolve converts the node-bounded relaxation to standard form
// and runs gonum's simplex. Bound rows are appended to the base
// inequality system; slack variables complete the equality form.
func simplexSolve(p Problem, nd node) (float64, []float64, error) {
	n := len(p.C)
	baseRows := len(p.H)

	type bound struct {
		idx   int
		coeff float64
		rhs   float64
	}
	var bounds []bound
	for i := 0; i < n; i++ {
		if nd.lower[i] > 0 {
			bounds = append(bounds, bound{idx: i, coeff: -1, rhs: -nd.lower[i]})
		}
		if !math.IsInf(nd.upper[i], 1) {
			bounds = append(bounds, bound{idx: i, coeff: 1, rhs: nd.upper[i]})
		}
	}

	rows := baseRows + len(bounds)
	cols := n + rows
	c := make([]float64, cols)
	copy(c, p.C)

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for r := 0; r < baseRows; r++ {
		for j := 0; j < n; j++ {
			a.Set(r, j, p.G.At(r, j))
		}
		b[r] = p.H[r]
	}
	for k, bd := range bounds {
		r := baseRows + k
		a.Set(r, bd.idx, bd.coeff)
		b[r] = bd.rhs
	}
	for r := 0; r < rows; r++ {
		a.Set(r, n+r, 1)
	}

	obj, x, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		return 0, nil, err
	}
	return obj, x[:n], nil
}
