// Package greens builds the equal-time and time-displaced Green's functions
// from a pair of UDV stacks, using the balanced large/small singular-value
// split that keeps the inner inversion well-conditioned regardless of how
// ill-conditioned the individual propagator products have become. The
// factorization follows from the operator identities
//
//	X (1+YX)^-1 = (1+XY)^-1 X
//	Y (1+XY)^-1 = (1+YX)^-1 Y
//
// applied to G(tau,tau) = [1 + L R^T]^-1, G(tau,0) = [L^-1 + R^T]^-1 and
// G(0,tau) = -[R^-T + L]^-1, with L = stackLeft's product and R^T the
// transpose of stackRight's product.
package greens

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/linalg"
	"github.com/JefferyWangSH/DQMC-HubbardModel/svdstack"
)

// udv is a stack's top factorization, or the identity if the stack is empty
// (the state of the "untouched" side at the start of a sweep).
func udv(s *svdstack.Stack, n int) (u *mat.Dense, sigma []float64, v *mat.Dense) {
	if s.Empty() {
		ones := make([]float64, n)
		for i := range ones {
			ones[i] = 1
		}
		return linalg.Identity(n), ones, linalg.Identity(n)
	}
	return s.MatrixU(), s.SingularValues(), s.MatrixV()
}

// split factors sigma elementwise into sigma = big*small with big = max(sigma,1)
// and small = sigma/big, so big >= 1 and small <= 1.
func split(sigma []float64) (big, small []float64) {
	big = make([]float64, len(sigma))
	small = make([]float64, len(sigma))
	for i, v := range sigma {
		if v > 1 {
			big[i] = v
			small[i] = 1
		} else {
			big[i] = 1
			small[i] = v
		}
	}
	return big, small
}

// pivot computes the well-conditioned inner matrix shared by the equal-time
// and G(tau,0) builders:
//
//	Cmid = diag(1/dlBig) * N * diag(1/drBig) + diag(dlSmall) * M * diag(drSmall)
//
// where N = Ul^T*Ur and M = Vl^T*Vr.
func pivot(ul, vl *mat.Dense, dlBig, dlSmall []float64, ur, vr *mat.Dense, drBig, drSmall []float64) *mat.Dense {
	n := mat.NewDense(ul.RawMatrix().Cols, ur.RawMatrix().Cols, nil)
	n.Mul(ul.T(), ur)
	m := mat.NewDense(vl.RawMatrix().Cols, vr.RawMatrix().Cols, nil)
	m.Mul(vl.T(), vr)

	left := mat.DenseCopyOf(n)
	linalg.ScaleRows(left, linalg.Reciprocal(dlBig))
	linalg.ScaleCols(left, linalg.Reciprocal(drBig))

	right := mat.DenseCopyOf(m)
	linalg.ScaleRows(right, dlSmall)
	linalg.ScaleCols(right, drSmall)

	cmid := mat.NewDense(left.RawMatrix().Rows, left.RawMatrix().Cols, nil)
	cmid.Add(left, right)
	return cmid
}

// EqualTime computes G(tau,tau) = [1 + L*R^T]^-1 where L is the product
// represented by left and R^T is the transpose of the product represented
// by right. n is the common dimension, used when either stack is empty.
func EqualTime(n int, left, right *svdstack.Stack) *mat.Dense {
	ul, sl, vl := udv(left, n)
	ur, sr, vr := udv(right, n)
	dlBig, dlSmall := split(sl)
	drBig, drSmall := split(sr)

	cmid := pivot(ul, vl, dlBig, dlSmall, ur, vr, drBig, drSmall)
	cmidInv, err := linalg.Inverse(cmid)
	if err != nil {
		panic(errors.Wrap(err, "greens: equal-time pivot is singular"))
	}

	left1 := mat.DenseCopyOf(ur)
	linalg.ScaleCols(left1, linalg.Reciprocal(drBig))
	g := linalg.Mul(left1, cmidInv)
	linalg.ScaleCols(g, linalg.Reciprocal(dlBig))
	return linalg.Mul(g, ul.T())
}

// Displaced computes the time-displaced Green's functions G(tau,0) and
// G(0,tau) from the same pair of stacks used by EqualTime, via
//
//	G(tau,0) = [L^-1 + R^T]^-1
//	G(0,tau) = -[R^-T + L]^-1
func Displaced(n int, left, right *svdstack.Stack) (gt0, g0t *mat.Dense) {
	ul, sl, vl := udv(left, n)
	ur, sr, vr := udv(right, n)
	dlBig, dlSmall := split(sl)
	drBig, drSmall := split(sr)

	cmid := pivot(ul, vl, dlBig, dlSmall, ur, vr, drBig, drSmall)
	cmidInv, err := linalg.Inverse(cmid)
	if err != nil {
		panic(errors.Wrap(err, "greens: displaced pivot is singular"))
	}

	left1 := mat.DenseCopyOf(ur)
	linalg.ScaleCols(left1, linalg.Reciprocal(drBig))
	gt0Partial := linalg.Mul(left1, cmidInv)
	linalg.ScaleCols(gt0Partial, dlSmall)
	gt0 = linalg.Mul(gt0Partial, vl.T())

	n3 := mat.NewDense(ur.RawMatrix().Cols, ul.RawMatrix().Cols, nil)
	n3.Mul(ur.T(), ul) // N^T = Ur^T*Ul
	m3 := mat.NewDense(vr.RawMatrix().Cols, vl.RawMatrix().Cols, nil)
	m3.Mul(vr.T(), vl) // M^T = Vr^T*Vl

	left3 := mat.DenseCopyOf(m3)
	linalg.ScaleRows(left3, linalg.Reciprocal(drBig))
	linalg.ScaleCols(left3, linalg.Reciprocal(dlBig))

	right3 := mat.DenseCopyOf(n3)
	linalg.ScaleRows(right3, drSmall)
	linalg.ScaleCols(right3, dlSmall)

	cmid3 := mat.NewDense(left3.RawMatrix().Rows, left3.RawMatrix().Cols, nil)
	cmid3.Add(left3, right3)
	cmid3Inv, err := linalg.Inverse(cmid3)
	if err != nil {
		panic(errors.Wrap(err, "greens: displaced transpose pivot is singular"))
	}

	left0 := mat.DenseCopyOf(vl)
	linalg.ScaleCols(left0, linalg.Reciprocal(dlBig))
	g0tPartial := linalg.Mul(left0, cmid3Inv)
	linalg.ScaleCols(g0tPartial, drSmall)
	g0t = linalg.Mul(g0tPartial, ur.T())
	g0t.Scale(-1, g0t)
	return gt0, g0t
}

// WrapError returns the maximum absolute entrywise difference between a
// Green's function rebuilt from scratch and one propagated through a chain
// of wrap_north/wrap_south updates, for tracking numerical drift between
// stabilization checkpoints.
func WrapError(fresh, wrapped mat.Matrix) float64 {
	return linalg.MaxAbsDiff(fresh, wrapped)
}
