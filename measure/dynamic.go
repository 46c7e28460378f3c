package measure

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/hubbard"
)

// DynamicAccumulator collects the time-displaced observables of every
// forward-displaced sweep measured within one bin: the momentum-space
// projection of G(tau,0) up at each slice, and the ingredients of the
// helicity modulus rho_s taken at slice lt/2.
type DynamicAccumulator struct {
	NDynamic int

	GKT      []float64 // per-slice accumulator, length lt
	LDOS     []float64 // per-slice local density of states, length lt
	KineticX float64   // <-K_x>, x-direction bond kinetic energy at slice lt/2
	LambdaXX float64   // current-current correlator at q=0, tau=lt/2
	Sign     float64
}

// NewDynamicAccumulator allocates the per-slice GKT/LDOS accumulators for
// an lt slice model.
func NewDynamicAccumulator(lt int) *DynamicAccumulator {
	return &DynamicAccumulator{GKT: make([]float64, lt), LDOS: make([]float64, lt)}
}

// Clear resets the accumulator for the next bin.
func (a *DynamicAccumulator) Clear() {
	for i := range a.GKT {
		a.GKT[i] = 0
	}
	for i := range a.LDOS {
		a.LDOS[i] = 0
	}
	a.NDynamic, a.KineticX, a.LambdaXX, a.Sign = 0, 0, 0, 0
}

// Measure adds one completed forward-displaced sweep's contribution.
// qx, qy are the wave vector in radians. g_kt is the momentum-space
// projection of G(tau,0) up at wave vector q; the helicity modulus
// follows as rho_s = (1/4)*[<-K_x> - Lambda_xx(q=0,tau=lt/2)].
func (a *DynamicAccumulator) Measure(m *hubbard.Model, qx, qy float64) {
	for tau := 0; tau < m.LT; tau++ {
		a.GKT[tau] += m.ConfigSign * fourierSum2(m.LL, func(i, j int) float64 {
			return m.VecGreenT0Up[tau].At(j, i)
		}, qx, qy) / float64(m.LS)

		a.LDOS[tau] += m.ConfigSign * 0.5 / float64(m.LS) *
			(trace(m.VecGreenT0Up[tau]) + trace(m.VecGreenT0Dn[tau]))
	}

	mid := m.LT / 2
	a.KineticX += m.ConfigSign * kineticX(m.LL, m.VecGreenTTUp[mid], m.VecGreenTTDn[mid], m.T)
	a.LambdaXX += m.ConfigSign * lambdaXX(m.LL,
		m.VecGreenT0Up[mid], m.VecGreen0TUp[mid],
		m.VecGreenT0Dn[mid], m.VecGreen0TDn[mid], m.T)
	a.Sign += m.ConfigSign
	a.NDynamic++
}

// Normalize divides every accumulated observable by its prefactor: g_kt
// and the x-bond kinetic energy are intensive per-site quantities, so
// both are divided by n*average_sign (g_kt already carries its own 1/ls
// from Measure; KineticX still needs it).
func (a *DynamicAccumulator) Normalize(ls int) {
	n := float64(a.NDynamic)
	a.Sign /= n
	sign := a.Sign

	for i := range a.GKT {
		a.GKT[i] /= n * sign
	}
	for i := range a.LDOS {
		a.LDOS[i] /= n * sign
	}
	a.KineticX /= float64(ls) * n * sign
	a.LambdaXX /= n * sign
}

// trace sums the diagonal of a square matrix.
func trace(g *mat.Dense) float64 {
	n, _ := g.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += g.At(i, i)
	}
	return sum
}

// RhoS returns the helicity modulus implied by the accumulator's current
// (normalized) KineticX and LambdaXX.
func (a *DynamicAccumulator) RhoS() float64 {
	return 0.25 * (a.KineticX - a.LambdaXX)
}

// kineticX sums the x-direction bond kinetic energy -K_x over the
// lattice and both spin channels, the same convention measureKineticEnergy
// uses but restricted to a single bond direction.
func kineticX(ll int, gu, gd *mat.Dense, t float64) float64 {
	sum := 0.0
	for x := 0; x < ll; x++ {
		for y := 0; y < ll; y++ {
			i := x + ll*y
			right := (x+1)%ll + ll*y
			sum += t * (gu.At(i, right) + gu.At(right, i) + gd.At(i, right) + gd.At(right, i))
		}
	}
	return sum
}

// lambdaXX computes the q=0 x-direction bond-current-current correlator
// at a fixed imaginary-time offset from the dynamical Green's functions,
// via Wick's theorem on the bond current j_x(i) = i*t*(c^+_i c_{i+x} -
// c^+_{i+x} c_i): the four-term bubble below is the standard leading
// (disconnected-vertex) contribution used for the superfluid-stiffness
// estimator in square-lattice Hubbard-model DQMC.
func lambdaXX(ll int, gt0u, g0tu, gt0d, g0td *mat.Dense, t float64) float64 {
	ls := ll * ll
	bubble := func(gt0, g0t *mat.Dense, i, iX, j, jX int) float64 {
		return g0t.At(j, i)*gt0.At(iX, jX) - g0t.At(jX, i)*gt0.At(iX, j) -
			g0t.At(j, iX)*gt0.At(i, jX) + g0t.At(jX, iX)*gt0.At(i, j)
	}

	sum := 0.0
	for xi := 0; xi < ll; xi++ {
		for yi := 0; yi < ll; yi++ {
			i := xi + ll*yi
			iX := (xi+1)%ll + ll*yi
			for xj := 0; xj < ll; xj++ {
				for yj := 0; yj < ll; yj++ {
					j := xj + ll*yj
					jX := (xj+1)%ll + ll*yj
					sum += t * t * (bubble(gt0u, g0tu, i, iX, j, jX) + bubble(gt0d, g0td, i, iX, j, jX))
				}
			}
		}
	}
	return sum / float64(ls)
}

// DynamicBins holds nbin completed, normalized time-displaced
// observables: g_kt at every slice, plus the scalar helicity-modulus and
// sign bins.
type DynamicBins struct {
	Nbin, LT int

	GKT  [][]float64 // GKT[bin][tau]
	LDOS [][]float64 // LDOS[bin][tau]
	RhoS []float64
	Sign []float64
}

// NewDynamicBins allocates storage for nbin completed bins of an lt
// slice model.
func NewDynamicBins(nbin, lt int) *DynamicBins {
	b := &DynamicBins{Nbin: nbin, LT: lt, RhoS: make([]float64, nbin), Sign: make([]float64, nbin)}
	b.GKT = make([][]float64, nbin)
	b.LDOS = make([][]float64, nbin)
	for i := range b.GKT {
		b.GKT[i] = make([]float64, lt)
		b.LDOS[i] = make([]float64, lt)
	}
	return b
}

// Set stores a's normalized values into bin.
func (b *DynamicBins) Set(bin int, a *DynamicAccumulator) {
	copy(b.GKT[bin], a.GKT)
	copy(b.LDOS[bin], a.LDOS)
	b.RhoS[bin] = a.RhoS()
	b.Sign[bin] = a.Sign
}

// DynamicStats is the bin-averaged result of DynamicBins.
type DynamicStats struct {
	GKT  []Stat // one per slice, length lt
	RhoS Stat
	Sign Stat
}

// AnalyseDynamic reduces every field of b to a mean and standard error,
// g_kt column by column across bins.
func AnalyseDynamic(b *DynamicBins) *DynamicStats {
	s := &DynamicStats{GKT: make([]Stat, b.LT)}
	col := make([]float64, b.Nbin)
	for tau := 0; tau < b.LT; tau++ {
		for bin := 0; bin < b.Nbin; bin++ {
			col[bin] = b.GKT[bin][tau]
		}
		s.GKT[tau] = Analyse(col)
	}
	s.RhoS = Analyse(b.RhoS)
	s.Sign = Analyse(b.Sign)
	return s
}

// RelErr returns s.StdErr/|s.Mean|, the relative-error column the
// dynamic statistics file reports alongside the mean and standard error.
func RelErr(s Stat) float64 {
	if s.Mean == 0 {
		return math.Inf(1)
	}
	return s.StdErr / math.Abs(s.Mean)
}
