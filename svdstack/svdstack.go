// Package svdstack implements the UDV stack: a sequence of SVD factorizations
// representing a long product of propagator matrices ... A_2 * A_1 * A_0,
// kept numerically stable by separating singular values from mixing rotations
// at every multiplication.
package svdstack

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/linalg"
)

type factor struct {
	u     *mat.Dense
	sigma []float64
	v     *mat.Dense
}

// Stack is an append/pop stack of SVD factorizations of a cumulative
// matrix product. Its capacity is fixed at construction.
type Stack struct {
	n     int
	cap   int
	stack []factor
	len   int
}

// New allocates a stack for n x n matrices with maximum depth l.
func New(n, l int) *Stack {
	return &Stack{n: n, cap: l, stack: make([]factor, l)}
}

// Empty reports whether the stack holds no factorizations.
func (s *Stack) Empty() bool { return s.len == 0 }

// Len returns the current depth of the stack.
func (s *Stack) Len() int { return s.len }

// Push prepends m to the decomposition: the new top becomes svd(m) if the
// stack was empty, or svd(m * U_top * diag(Sigma_top)) otherwise. Pushing
// past capacity is a programming error and panics.
func (s *Stack) Push(m *mat.Dense) {
	r, c := m.Dims()
	if r != s.n || c != s.n {
		panic(errors.Errorf("dimension mismatch: got %dx%d, want %dx%d", r, c, s.n, s.n))
	}
	if s.len >= s.cap {
		panic(errors.Errorf("push past capacity %d", s.cap))
	}

	var src mat.Matrix = m
	if s.len > 0 {
		top := s.stack[s.len-1]
		// Mind the order of multiplication: avoid confusing the
		// accumulated singular-value scale with the new rotation.
		src = linalg.Mul(linalg.Mul(m, top.u), linalg.DiagFromVector(top.sigma))
	}

	u, sigma, v := linalg.SVDFull(src)
	s.stack[s.len] = factor{u: u, sigma: sigma, v: v}
	s.len++
}

// Pop discards the top factorization.
func (s *Stack) Pop() {
	if s.len == 0 {
		panic(errors.Errorf("pop from empty stack"))
	}
	s.len--
}

// Clear resets the stack to empty without deallocating.
func (s *Stack) Clear() { s.len = 0 }

// Resize reallocates the stack for n x n matrices with maximum depth l,
// discarding all prior content.
func (s *Stack) Resize(n, l int) {
	*s = *New(n, l)
}

// SingularValues returns the top factorization's singular values.
func (s *Stack) SingularValues() []float64 {
	if s.len == 0 {
		panic(errors.Errorf("empty stack"))
	}
	return s.stack[s.len-1].sigma
}

// MatrixU returns the top factorization's U.
func (s *Stack) MatrixU() *mat.Dense {
	if s.len == 0 {
		panic(errors.Errorf("empty stack"))
	}
	return s.stack[s.len-1].u
}

// MatrixV returns the cumulative product V_0 * V_1 * ... * V_top, computed
// on demand.
func (s *Stack) MatrixV() *mat.Dense {
	if s.len == 0 {
		panic(errors.Errorf("empty stack"))
	}
	r := s.stack[0].v
	for i := 1; i < s.len; i++ {
		r = linalg.Mul(r, s.stack[i].v)
	}
	return mat.DenseCopyOf(r)
}
