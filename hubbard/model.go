// Package hubbard implements the auxiliary-field state and sweep engine of
// a determinant Quantum Monte Carlo simulation of the two-dimensional
// square-lattice Hubbard model: Metropolis updates of the auxiliary field,
// wrap propagation of the equal-time and time-displaced Green's functions,
// and periodic stabilization against the UDV stacks.
package hubbard

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/greens"
	"github.com/JefferyWangSH/DQMC-HubbardModel/linalg"
	"github.com/JefferyWangSH/DQMC-HubbardModel/propagator"
	"github.com/JefferyWangSH/DQMC-HubbardModel/svdstack"
)

// Model owns the auxiliary field, both spin channels' equal-time and
// time-displaced Green's functions, and the four UDV stacks that keep their
// propagation numerically stable across beta.
type Model struct {
	LL, LS, LT  int
	Beta, Dtau  float64
	T, Uint, Mu float64
	Alpha       float64
	AttractiveU bool
	Nwrap       int

	Field *Field

	GreenTTUp, GreenTTDn *mat.Dense
	GreenT0Up, GreenT0Dn *mat.Dense
	Green0TUp, Green0TDn *mat.Dense

	VecGreenTTUp, VecGreenTTDn []*mat.Dense
	VecGreenT0Up, VecGreenT0Dn []*mat.Dense
	VecGreen0TUp, VecGreen0TDn []*mat.Dense

	StackLeftU, StackLeftD   *svdstack.Stack
	StackRightU, StackRightD *svdstack.Stack

	ConfigSign float64

	MaxWrapErrorEqual     float64
	MaxWrapErrorDisplaced float64

	CurrentTau int

	prop *propagator.Set
	rng  *rand.Rand
}

// stackDepth returns the maximum number of SVD factorizations a stack must
// hold: one per stabilization interval (ceil(lt/nwrap), counting a partial
// final interval), plus one spare slot.
func stackDepth(lt, nwrap int) int {
	n := lt / nwrap
	if lt%nwrap != 0 {
		n++
	}
	return n + 1
}

// New builds a model for an ll x ll periodic square lattice with lt
// imaginary-time slices, draws a random initial field, and builds the
// initial UDV stacks and Green's functions. seed makes the run reproducible:
// two models built with the same seed and parameters follow identical
// Markov chains.
func New(ll, lt int, beta, t, u, mu float64, nwrap int, seed uint64) *Model {
	if lt <= 0 || nwrap <= 0 {
		panic(errors.Errorf("invalid dimensions: lt=%d nwrap=%d", lt, nwrap))
	}

	ls := ll * ll
	dtau := beta / float64(lt)
	attractiveU := u < 0
	alpha := math.Acosh(math.Exp(0.5 * dtau * math.Abs(u)))

	m := &Model{
		LL: ll, LS: ls, LT: lt,
		Beta: beta, Dtau: dtau,
		T: t, Uint: u, Mu: mu,
		Alpha: alpha, AttractiveU: attractiveU,
		Nwrap: nwrap,

		Field: NewField(ls, lt),

		VecGreenTTUp: make([]*mat.Dense, lt), VecGreenTTDn: make([]*mat.Dense, lt),
		VecGreenT0Up: make([]*mat.Dense, lt), VecGreenT0Dn: make([]*mat.Dense, lt),
		VecGreen0TUp: make([]*mat.Dense, lt), VecGreen0TDn: make([]*mat.Dense, lt),

		prop: propagator.New(ll, dtau, t, mu, alpha, attractiveU),
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}

	depth := stackDepth(lt, nwrap)
	m.StackLeftU = svdstack.New(ls, depth)
	m.StackLeftD = svdstack.New(ls, depth)
	m.StackRightU = svdstack.New(ls, depth)
	m.StackRightD = svdstack.New(ls, depth)

	m.Field.Randomize(m.rng)
	m.InitStacks()
	m.ConfigSign = SignFromGreens(m.GreenTTUp, m.GreenTTDn)
	return m
}

// SignFromGreens returns the sign of det(gUp)*det(gDn), the rule the
// reference uses to derive config_sign from a freshly built pair of
// equal-time Green's functions (at construction and after a field reload).
func SignFromGreens(gUp, gDn *mat.Dense) float64 {
	if linalg.Determinant(gUp)*linalg.Determinant(gDn) >= 0 {
		return +1
	}
	return -1
}

// InitStacks builds the full right-hand UDV decomposition of
// B_{lt-1}^T...B_0^T from scratch, leaving the left stacks empty, and
// derives the equal-time Green's functions at slice 0 from the result. It
// is also the routine fileio.LoadAuxField uses to re-derive consistent state
// after a field is overwritten from a file.
func (m *Model) InitStacks() {
	if !m.StackLeftU.Empty() || !m.StackLeftD.Empty() || !m.StackRightU.Empty() || !m.StackRightD.Empty() {
		panic(errors.Errorf("init_stacks called with non-empty stacks"))
	}

	tmpU := linalg.Identity(m.LS)
	tmpD := linalg.Identity(m.LS)
	for l := m.LT; l >= 1; l-- {
		sCol := m.Field.Column(l - 1)
		m.prop.MultTransBFromLeft(tmpU, propagator.SpinUp, sCol)
		m.prop.MultTransBFromLeft(tmpD, propagator.SpinDown, sCol)

		if (l-1)%m.Nwrap == 0 {
			m.StackRightU.Push(tmpU)
			m.StackRightD.Push(tmpD)
			tmpU = linalg.Identity(m.LS)
			tmpD = linalg.Identity(m.LS)
		}
	}

	m.GreenTTUp = greens.EqualTime(m.LS, m.StackLeftU, m.StackRightU)
	m.GreenTTDn = greens.EqualTime(m.LS, m.StackLeftD, m.StackRightD)
}

// ResetStacks clears all four stacks, for callers (fileio.LoadAuxField) that
// need to rebuild state from a freshly loaded field.
func (m *Model) ResetStacks() {
	m.StackLeftU.Clear()
	m.StackLeftD.Clear()
	m.StackRightU.Clear()
	m.StackRightD.Clear()
}

// SetRNG replaces the model's random source. The constructor already seeds
// one deterministically; this exists for tests that need to pin the
// Metropolis accept/reject outcome and for checkpoint restore.
func (m *Model) SetRNG(rng *rand.Rand) { m.rng = rng }
