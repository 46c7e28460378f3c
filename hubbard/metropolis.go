package hubbard

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/propagator"
)

// MetropolisUpdate sweeps every site at slice l, proposing a flip of the
// auxiliary field and accepting it with probability min(1, |p|), applying a
// rank-one update to both spin channels' equal-time Green's functions on
// accept.
func (m *Model) MetropolisUpdate(l int) {
	if l < 0 || l > m.LT {
		panic(errors.Errorf("metropolis_update: l=%d out of range [0, %d]", l, m.LT))
	}
	if m.CurrentTau != l {
		panic(errors.Errorf("metropolis_update: current_tau=%d, expected %d", m.CurrentTau, l))
	}

	tau := l - 1
	if l == 0 {
		tau = m.LT - 1
	}

	for i := 0; i < m.LS; i++ {
		si := m.Field.At(i, tau)
		guUp := m.GreenTTUp.At(i, i)
		guDn := m.GreenTTDn.At(i, i)

		var p float64
		if !m.AttractiveU {
			p = (1 + (1-guUp)*(math.Exp(-2*m.Alpha*si)-1)) * (1 + (1-guDn)*(math.Exp(2*m.Alpha*si)-1))
		} else {
			p = math.Exp(2*m.Alpha*si) * (1 + (1-guUp)*(math.Exp(-2*m.Alpha*si)-1)) * (1 + (1-guDn)*(math.Exp(-2*m.Alpha*si)-1))
		}

		if m.rng.Float64() >= math.Min(1, math.Abs(p)) {
			continue
		}

		factorUp := (math.Exp(-2*m.Alpha*si) - 1) / (1 + (1-guUp)*(math.Exp(-2*m.Alpha*si)-1))
		rankOneUpdate(m.GreenTTUp, i, factorUp)

		var factorDn float64
		if !m.AttractiveU {
			factorDn = (math.Exp(2*m.Alpha*si) - 1) / (1 + (1-guDn)*(math.Exp(2*m.Alpha*si)-1))
		} else {
			factorDn = factorUp
		}
		rankOneUpdate(m.GreenTTDn, i, factorDn)

		m.Field.Set(i, tau, -si)

		if p < 0 {
			m.ConfigSign = -m.ConfigSign
		}
	}

	m.VecGreenTTUp[tau] = mat.DenseCopyOf(m.GreenTTUp)
	m.VecGreenTTDn[tau] = mat.DenseCopyOf(m.GreenTTDn)
}

// rankOneUpdate applies G <- G - factor * G[:,i] * (e_i^T - G[i,:]) in
// place, the Sherman-Morrison update that keeps G consistent with a single
// flipped field entry in O(ls^2) rather than rebuilding it from scratch.
func rankOneUpdate(g *mat.Dense, i int, factor float64) {
	n, _ := g.Dims()
	col := mat.Col(nil, i, g)
	row := mat.Row(nil, i, g)

	for r := 0; r < n; r++ {
		gr := g.RawRowView(r)
		coef := factor * col[r]
		for c := 0; c < n; c++ {
			e := 0.0
			if c == i {
				e = 1
			}
			gr[c] -= coef * (e - row[c])
		}
	}
}

// WrapNorth advances the equal-time Green's functions from slice l to l+1
// via G <- B_{l+1} * G * B_{l+1}^{-1}.
func (m *Model) WrapNorth(l int) {
	tau := l + 1
	if l == m.LT {
		tau = 1
	}
	sCol := m.Field.Column(tau - 1)

	m.prop.MultBFromLeft(m.GreenTTUp, propagator.SpinUp, sCol)
	m.prop.MultInvBFromRight(m.GreenTTUp, propagator.SpinUp, sCol)
	m.prop.MultBFromLeft(m.GreenTTDn, propagator.SpinDown, sCol)
	m.prop.MultInvBFromRight(m.GreenTTDn, propagator.SpinDown, sCol)
}

// WrapSouth retreats the equal-time Green's functions from slice l to l-1
// via G <- B_l^{-1} * G * B_l.
func (m *Model) WrapSouth(l int) {
	tau := l
	if l == 0 {
		tau = m.LT
	}
	sCol := m.Field.Column(tau - 1)

	m.prop.MultBFromRight(m.GreenTTUp, propagator.SpinUp, sCol)
	m.prop.MultInvBFromLeft(m.GreenTTUp, propagator.SpinUp, sCol)
	m.prop.MultBFromRight(m.GreenTTDn, propagator.SpinDown, sCol)
	m.prop.MultInvBFromLeft(m.GreenTTDn, propagator.SpinDown, sCol)
}
