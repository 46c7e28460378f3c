package hubbard

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/greens"
	"github.com/JefferyWangSH/DQMC-HubbardModel/linalg"
	"github.com/JefferyWangSH/DQMC-HubbardModel/propagator"
)

// SweepZeroToBeta advances the auxiliary field and equal-time Green's
// functions from slice 0 to slice lt, one Metropolis pass per slice,
// rebuilding the Green's functions from the UDV stacks every Nwrap slices.
// Precondition: left stacks empty, right stacks hold the full decomposition
// built by InitStacks or the matching SweepBetaToZero call.
func (m *Model) SweepZeroToBeta() {
	m.CurrentTau++
	if m.CurrentTau != 1 {
		panic(errors.Errorf("sweep_0_to_beta: current_tau=%d, expected 1", m.CurrentTau))
	}

	tmpU := linalg.Identity(m.LS)
	tmpD := linalg.Identity(m.LS)

	for l := 1; l <= m.LT; l++ {
		m.WrapNorth(l - 1)
		m.MetropolisUpdate(l)

		sCol := m.Field.Column(l - 1)
		m.prop.MultBFromLeft(tmpU, propagator.SpinUp, sCol)
		m.prop.MultBFromLeft(tmpD, propagator.SpinDown, sCol)

		if l%m.Nwrap == 0 || l == m.LT {
			m.StackRightU.Pop()
			m.StackRightD.Pop()
			m.StackLeftU.Push(tmpU)
			m.StackLeftD.Push(tmpD)

			freshUp := greens.EqualTime(m.LS, m.StackLeftU, m.StackRightU)
			freshDn := greens.EqualTime(m.LS, m.StackLeftD, m.StackRightD)
			m.MaxWrapErrorEqual = math.Max(m.MaxWrapErrorEqual, math.Max(
				greens.WrapError(freshUp, m.GreenTTUp), greens.WrapError(freshDn, m.GreenTTDn)))

			m.GreenTTUp, m.GreenTTDn = freshUp, freshDn

			tmpU = linalg.Identity(m.LS)
			tmpD = linalg.Identity(m.LS)
		}

		m.CurrentTau++
	}

	m.VecGreenTTUp[m.LT-1] = mat.DenseCopyOf(m.GreenTTUp)
	m.VecGreenTTDn[m.LT-1] = mat.DenseCopyOf(m.GreenTTDn)
}

// SweepBetaToZero retreats from slice lt to slice 0, symmetric to
// SweepZeroToBeta but stabilizing before the update/wrap at each boundary
// and with a final pop/push/rebuild at l=0. Precondition: right stacks
// empty, left stacks hold the full forward decomposition.
func (m *Model) SweepBetaToZero() {
	m.CurrentTau--
	if m.CurrentTau != m.LT {
		panic(errors.Errorf("sweep_beta_to_0: current_tau=%d, expected %d", m.CurrentTau, m.LT))
	}

	tmpU := linalg.Identity(m.LS)
	tmpD := linalg.Identity(m.LS)

	for l := m.LT; l >= 1; l-- {
		if l%m.Nwrap == 0 && l != m.LT {
			m.StackLeftU.Pop()
			m.StackLeftD.Pop()
			m.StackRightU.Push(tmpU)
			m.StackRightD.Push(tmpD)

			freshUp := greens.EqualTime(m.LS, m.StackLeftU, m.StackRightU)
			freshDn := greens.EqualTime(m.LS, m.StackLeftD, m.StackRightD)
			m.MaxWrapErrorEqual = math.Max(m.MaxWrapErrorEqual, math.Max(
				greens.WrapError(freshUp, m.GreenTTUp), greens.WrapError(freshDn, m.GreenTTDn)))

			m.GreenTTUp, m.GreenTTDn = freshUp, freshDn

			tmpU = linalg.Identity(m.LS)
			tmpD = linalg.Identity(m.LS)
		}

		m.MetropolisUpdate(l)

		sCol := m.Field.Column(l - 1)
		m.prop.MultTransBFromLeft(tmpU, propagator.SpinUp, sCol)
		m.prop.MultTransBFromLeft(tmpD, propagator.SpinDown, sCol)

		m.WrapSouth(l)

		m.CurrentTau--
	}

	m.StackLeftU.Pop()
	m.StackLeftD.Pop()
	m.StackRightU.Push(tmpU)
	m.StackRightD.Push(tmpD)

	m.GreenTTUp = greens.EqualTime(m.LS, m.StackLeftU, m.StackRightU)
	m.GreenTTDn = greens.EqualTime(m.LS, m.StackLeftD, m.StackRightD)

	m.VecGreenTTUp[m.LT-1] = mat.DenseCopyOf(m.GreenTTUp)
	m.VecGreenTTDn[m.LT-1] = mat.DenseCopyOf(m.GreenTTDn)
}

// resetDisplaced sets the initial condition G(tau,0)=G(0,0), G(0,tau)=G(0,0)-I
// at tau=0, the invariant the displaced Green's functions must reduce to at
// the start of every forward-displaced sweep.
func (m *Model) resetDisplaced() {
	m.GreenT0Up = mat.DenseCopyOf(m.GreenTTUp)
	m.GreenT0Dn = mat.DenseCopyOf(m.GreenTTDn)
	m.Green0TUp = mat.DenseCopyOf(m.GreenTTUp)
	m.Green0TUp.Sub(m.Green0TUp, linalg.Identity(m.LS))
	m.Green0TDn = mat.DenseCopyOf(m.GreenTTDn)
	m.Green0TDn.Sub(m.Green0TDn, linalg.Identity(m.LS))
}

// SweepZeroToBetaDisplaced computes the time-displaced Green's functions
// G(tau,0) and G(0,tau) across every slice without touching the auxiliary
// field, using the same stack management as SweepZeroToBeta. There is no
// backward-displaced counterpart: a single forward pass already yields
// G(tau,0) and G(0,tau) at every slice the measurement code needs.
func (m *Model) SweepZeroToBetaDisplaced() {
	m.CurrentTau++
	if m.CurrentTau != 1 {
		panic(errors.Errorf("sweep_0_to_beta_displaced: current_tau=%d, expected 1", m.CurrentTau))
	}

	m.resetDisplaced()

	tmpU := linalg.Identity(m.LS)
	tmpD := linalg.Identity(m.LS)

	for l := 1; l <= m.LT; l++ {
		sCol := m.Field.Column(l - 1)

		m.prop.MultBFromLeft(m.GreenT0Up, propagator.SpinUp, sCol)
		m.prop.MultBFromLeft(m.GreenT0Dn, propagator.SpinDown, sCol)
		m.VecGreenT0Up[l-1] = mat.DenseCopyOf(m.GreenT0Up)
		m.VecGreenT0Dn[l-1] = mat.DenseCopyOf(m.GreenT0Dn)

		m.prop.MultInvBFromRight(m.Green0TUp, propagator.SpinUp, sCol)
		m.prop.MultInvBFromRight(m.Green0TDn, propagator.SpinDown, sCol)
		m.VecGreen0TUp[l-1] = mat.DenseCopyOf(m.Green0TUp)
		m.VecGreen0TDn[l-1] = mat.DenseCopyOf(m.Green0TDn)

		m.prop.MultBFromLeft(tmpU, propagator.SpinUp, sCol)
		m.prop.MultBFromLeft(tmpD, propagator.SpinDown, sCol)

		if l%m.Nwrap == 0 || l == m.LT {
			m.StackRightU.Pop()
			m.StackRightD.Pop()
			m.StackLeftU.Push(tmpU)
			m.StackLeftD.Push(tmpD)

			freshT0Up, fresh0TUp := greens.Displaced(m.LS, m.StackLeftU, m.StackRightU)
			freshT0Dn, fresh0TDn := greens.Displaced(m.LS, m.StackLeftD, m.StackRightD)

			werr := math.Max(
				math.Max(greens.WrapError(freshT0Up, m.GreenT0Up), greens.WrapError(freshT0Dn, m.GreenT0Dn)),
				math.Max(greens.WrapError(fresh0TUp, m.Green0TUp), greens.WrapError(fresh0TDn, m.Green0TDn)),
			)
			m.MaxWrapErrorDisplaced = math.Max(m.MaxWrapErrorDisplaced, werr)

			m.GreenT0Up, m.GreenT0Dn = freshT0Up, freshT0Dn
			m.Green0TUp, m.Green0TDn = fresh0TUp, fresh0TDn

			m.VecGreenT0Up[l-1] = mat.DenseCopyOf(m.GreenT0Up)
			m.VecGreenT0Dn[l-1] = mat.DenseCopyOf(m.GreenT0Dn)
			m.VecGreen0TUp[l-1] = mat.DenseCopyOf(m.Green0TUp)
			m.VecGreen0TDn[l-1] = mat.DenseCopyOf(m.Green0TDn)

			tmpU = linalg.Identity(m.LS)
			tmpD = linalg.Identity(m.LS)
		}

		m.CurrentTau++
	}
}

// SweepBackAndForth runs one forward sweep (displaced if dynamic, plain
// otherwise) followed by one backward sweep, invoking the supplied
// measurement callbacks at the points where the Green's functions are
// ready for them: the displaced measurement after the forward displaced
// sweep, and the equal-time measurement after each of the forward and
// backward sweeps.
func (m *Model) SweepBackAndForth(measureEqtime, measureDynamic bool, eqtime, dynamic func(*Model)) {
	if measureDynamic {
		m.SweepZeroToBetaDisplaced()
		if dynamic != nil {
			dynamic(m)
		}
	} else {
		m.SweepZeroToBeta()
	}
	if measureEqtime && eqtime != nil {
		eqtime(m)
	}

	m.SweepBetaToZero()
	if measureEqtime && eqtime != nil {
		eqtime(m)
	}
}
