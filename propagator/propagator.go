// Package propagator implements the per-time-slice evolution operator B_l
// and its left/right/inverse/transpose actions on a dense matrix, for the
// two-dimensional periodic square lattice.
package propagator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/linalg"
)

// SpinUp and SpinDown select the auxiliary-field coupling sign in the
// repulsive channel. In the attractive channel (U < 0) both spins couple
// with the same sign, folded into Diag below.
const (
	SpinUp   = +1
	SpinDown = -1
)

// Set holds the precomputed kinetic factors and per-model scalars needed to
// apply B_l^sigma = exp(-dtau*K) * exp(sigma*alpha*diag(s(.,l-1)) + dtau*mu*I)
// from either side, in its direct, inverse, or transposed form.
type Set struct {
	LL          int
	LS          int
	Dtau        float64
	T           float64
	Mu          float64
	Alpha       float64
	AttractiveU bool

	expK    *mat.Dense // exp(-dtau*K)
	expKInv *mat.Dense // exp(+dtau*K)
}

// New builds the hopping matrix K for an ll x ll periodic square lattice
// with nearest-neighbor hopping t, and precomputes exp(+-dtau*K) once.
func New(ll int, dtau, t, mu, alpha float64, attractiveU bool) *Set {
	ls := ll * ll
	k := hoppingMatrix(ll, t)

	s := &Set{LL: ll, LS: ls, Dtau: dtau, T: t, Mu: mu, Alpha: alpha, AttractiveU: attractiveU}

	negDtauK := mat.NewDense(ls, ls, nil)
	negDtauK.Scale(-dtau, k)
	s.expK = mat.NewDense(ls, ls, nil)
	s.expK.Exp(negDtauK)

	posDtauK := mat.NewDense(ls, ls, nil)
	posDtauK.Scale(dtau, k)
	s.expKInv = mat.NewDense(ls, ls, nil)
	s.expKInv.Exp(posDtauK)

	return s
}

// hoppingMatrix builds the ls x ls symmetric hopping matrix of a 2D
// periodic square lattice: entries -t between nearest neighbors, 0 elsewhere.
func hoppingMatrix(ll int, t float64) *mat.Dense {
	ls := ll * ll
	k := mat.NewDense(ls, ls, nil)
	idx := func(x, y int) int { return x + ll*y }
	for y := 0; y < ll; y++ {
		for x := 0; x < ll; x++ {
			i := idx(x, y)
			right := idx((x+1)%ll, y)
			up := idx(x, (y+1)%ll)

			k.Set(i, right, k.At(i, right)-t)
			k.Set(right, i, k.At(right, i)-t)
			k.Set(i, up, k.At(i, up)-t)
			k.Set(up, i, k.At(up, i)-t)
		}
	}
	return k
}

// effectiveSign folds the attractive-U rule: both spin channels couple
// with the same sign when U < 0.
func (s *Set) effectiveSign(spin int) float64 {
	if s.AttractiveU && spin == SpinDown {
		return +1
	}
	return float64(spin)
}

// Diag returns the diagonal entries of exp(sigma*alpha*diag(s(.,tau)) + dtau*mu*I)
// for the given spin channel and field column s(., tau).
func (s *Set) Diag(spin int, sCol []float64) []float64 {
	sign := s.effectiveSign(spin)
	d := make([]float64, len(sCol))
	for i, si := range sCol {
		d[i] = math.Exp(sign*s.Alpha*si + s.Dtau*s.Mu)
	}
	return d
}

// MultBFromLeft sets m <- B_l^sigma * m in place, where sCol is s(., tau=l-1).
func (s *Set) MultBFromLeft(m *mat.Dense, spin int, sCol []float64) {
	d := s.Diag(spin, sCol)
	linalg.ScaleRows(m, d)
	tmp := linalg.Mul(s.expK, m)
	m.Copy(tmp)
}

// MultBFromRight sets m <- m * B_l^sigma in place.
func (s *Set) MultBFromRight(m *mat.Dense, spin int, sCol []float64) {
	d := s.Diag(spin, sCol)
	tmp := linalg.Mul(m, s.expK)
	linalg.ScaleCols(tmp, d)
	m.Copy(tmp)
}

// MultInvBFromLeft sets m <- (B_l^sigma)^{-1} * m in place.
func (s *Set) MultInvBFromLeft(m *mat.Dense, spin int, sCol []float64) {
	d := s.Diag(spin, sCol)
	tmp := linalg.Mul(s.expKInv, m)
	linalg.ScaleRows(tmp, linalg.Reciprocal(d))
	m.Copy(tmp)
}

// MultInvBFromRight sets m <- m * (B_l^sigma)^{-1} in place.
func (s *Set) MultInvBFromRight(m *mat.Dense, spin int, sCol []float64) {
	d := s.Diag(spin, sCol)
	scaled := mat.DenseCopyOf(m)
	linalg.ScaleCols(scaled, linalg.Reciprocal(d))
	tmp := linalg.Mul(scaled, s.expKInv)
	m.Copy(tmp)
}

// MultTransBFromLeft sets m <- (B_l^sigma)^T * m in place. K and therefore
// exp(-dtau*K) are symmetric, so (B_l^sigma)^T = diag(d) * exp(-dtau*K).
func (s *Set) MultTransBFromLeft(m *mat.Dense, spin int, sCol []float64) {
	d := s.Diag(spin, sCol)
	tmp := linalg.Mul(s.expK, m)
	linalg.ScaleRows(tmp, d)
	m.Copy(tmp)
}
