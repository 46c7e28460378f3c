// Package measure accumulates equal-time and time-displaced observables
// from a hubbard.Model's per-slice Green's functions into per-bin
// statistics.
package measure

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/hubbard"
)

// Stat is a bin-averaged observable with its jackknife-free standard
// error: stderr = sqrt((E[x^2] - E[x]^2) / (nbin - 1)).
type Stat struct {
	Mean   float64
	StdErr float64
}

// Analyse reduces nbin independent bin values to a Stat.
func Analyse(bins []float64) Stat {
	nbin := len(bins)
	var mean, meanSq float64
	for _, x := range bins {
		mean += x
		meanSq += x * x
	}
	mean /= float64(nbin)
	meanSq /= float64(nbin)

	variance := meanSq - mean*mean
	if variance < 0 {
		variance = 0
	}
	return Stat{Mean: mean, StdErr: math.Sqrt(variance / float64(nbin-1))}
}

// EqtimeAccumulator collects the equal-time observables contributed by
// every sweep measured within one bin, before normalization.
type EqtimeAccumulator struct {
	NEqualTime int

	DoubleOccu    float64
	KineticEnergy float64
	StructFactor  float64
	MomentumDist  float64
	LocalSpinCorr float64
	AverageSign   float64
}

// Clear resets the accumulator for the next bin.
func (a *EqtimeAccumulator) Clear() { *a = EqtimeAccumulator{} }

// Measure adds one completed sweep's contribution, summing every
// observable over all lt slices of the model's per-slice equal-time
// Green's functions. qx, qy are the wave vector already in radians
// (pi times the input multiple).
func (a *EqtimeAccumulator) Measure(m *hubbard.Model, qx, qy float64) {
	for t := 0; t < m.LT; t++ {
		gu := m.VecGreenTTUp[t]
		gd := m.VecGreenTTDn[t]

		a.DoubleOccu += m.ConfigSign * measureDoubleOccu(gu, gd)
		a.KineticEnergy += m.ConfigSign * measureKineticEnergy(m.LL, gu, gd, m.T)
		a.StructFactor += m.ConfigSign * measureStructFactor(m.LL, gu, gd, qx, qy)
		a.MomentumDist += m.ConfigSign * measureMomentumDist(m.LL, gu, gd, qx, qy)
		a.LocalSpinCorr += m.ConfigSign * measureLocalSpinCorr(gu, gd)
	}
	a.AverageSign += m.ConfigSign
	a.NEqualTime++
}

// Normalize divides every accumulated observable by its prefactor:
// extensive quantities by ls*lt*n*average_sign, intensive ones by
// lt*n*average_sign, and the structure factor (quadratic in site count)
// by ls^2*lt*n*average_sign.
func (a *EqtimeAccumulator) Normalize(ls, lt int) {
	n := float64(a.NEqualTime)
	a.AverageSign /= n
	sign := a.AverageSign

	a.DoubleOccu /= float64(ls) * float64(lt) * n * sign
	a.KineticEnergy /= float64(ls) * float64(lt) * n * sign
	a.StructFactor /= float64(ls) * float64(ls) * float64(lt) * n * sign
	a.MomentumDist /= float64(lt) * n * sign
	a.LocalSpinCorr /= float64(lt) * n * sign
}

func measureDoubleOccu(gu, gd *mat.Dense) float64 {
	n, _ := gu.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += (1 - gu.At(i, i)) * (1 - gd.At(i, i))
	}
	return sum
}

// measureKineticEnergy sums the bond kinetic energy over both
// nearest-neighbor directions of a periodic ll x ll lattice, the same
// site indexing propagator.hoppingMatrix uses.
func measureKineticEnergy(ll int, gu, gd *mat.Dense, t float64) float64 {
	sum := 0.0
	for x := 0; x < ll; x++ {
		for y := 0; y < ll; y++ {
			i := x + ll*y
			right := (x+1)%ll + ll*y
			up := x + ll*((y+1)%ll)
			sum += 2 * t * (gu.At(i, right) + gu.At(i, up))
			sum += 2 * t * (gd.At(i, right) + gd.At(i, up))
		}
	}
	return sum
}

func measureMomentumDist(ll int, gu, gd *mat.Dense, qx, qy float64) float64 {
	ls := ll * ll
	tmpfourier := fourierSum2(ll, func(i, j int) float64 { return gu.At(j, i) + gd.At(j, i) }, qx, qy)
	return 1 - 0.5*tmpfourier/float64(ls)
}

func measureLocalSpinCorr(gu, gd *mat.Dense) float64 {
	n, _ := gu.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += gu.At(i, i) + gd.At(i, i) - 2*gu.At(i, i)*gd.At(i, i)
	}
	return sum / float64(n)
}

// measureStructFactor builds the hole-channel complements
// G^c_sigma = I - G_sigma^T and sums the four-Green combination over every
// site pair, weighted by the Fourier phase.
func measureStructFactor(ll int, gu, gd *mat.Dense, qx, qy float64) float64 {
	ls := ll * ll
	guc := complement(gu, ls)
	gdc := complement(gd, ls)

	sum := fourierSum2(ll, func(i, j int) float64 {
		return guc.At(i, i)*guc.At(j, j) + guc.At(i, j)*gu.At(i, j) +
			gdc.At(i, i)*gdc.At(j, j) + gdc.At(i, j)*gd.At(i, j) -
			gdc.At(i, i)*guc.At(j, j) - guc.At(i, i)*gdc.At(j, j)
	}, qx, qy)
	return sum / 4
}

// complement returns I - g^T so that complement(g)(j,i) = delta(i,j) - g(i,j).
func complement(g *mat.Dense, ls int) *mat.Dense {
	c := mat.NewDense(ls, ls, nil)
	c.Copy(g.T())
	c.Scale(-1, c)
	for i := 0; i < ls; i++ {
		c.Set(i, i, c.At(i, i)+1)
	}
	return c
}

// fourierSum2 sums f(i, j) weighted by cos(-(r_i - r_j).q) over every
// ordered pair of sites of an ll x ll lattice.
func fourierSum2(ll int, f func(i, j int) float64, qx, qy float64) float64 {
	sum := 0.0
	for xi := 0; xi < ll; xi++ {
		for yi := 0; yi < ll; yi++ {
			for xj := 0; xj < ll; xj++ {
				for yj := 0; yj < ll; yj++ {
					i := xi + ll*yi
					j := xj + ll*yj
					rx, ry := float64(xi-xj), float64(yi-yj)
					cosRQ := math.Cos(-(rx*qx + ry*qy))
					sum += cosRQ * f(i, j)
				}
			}
		}
	}
	return sum
}

// EqtimeBins holds nbin completed, normalized equal-time observables per
// field.
type EqtimeBins struct {
	Nbin int

	DoubleOccu    []float64
	KineticEnergy []float64
	StructFactor  []float64
	MomentumDist  []float64
	LocalSpinCorr []float64
	AverageSign   []float64
}

// NewEqtimeBins allocates storage for nbin completed bins.
func NewEqtimeBins(nbin int) *EqtimeBins {
	return &EqtimeBins{
		Nbin:          nbin,
		DoubleOccu:    make([]float64, nbin),
		KineticEnergy: make([]float64, nbin),
		StructFactor:  make([]float64, nbin),
		MomentumDist:  make([]float64, nbin),
		LocalSpinCorr: make([]float64, nbin),
		AverageSign:   make([]float64, nbin),
	}
}

// Set stores a's normalized values into bin.
func (b *EqtimeBins) Set(bin int, a *EqtimeAccumulator) {
	b.DoubleOccu[bin] = a.DoubleOccu
	b.KineticEnergy[bin] = a.KineticEnergy
	b.StructFactor[bin] = a.StructFactor
	b.MomentumDist[bin] = a.MomentumDist
	b.LocalSpinCorr[bin] = a.LocalSpinCorr
	b.AverageSign[bin] = a.AverageSign
}

// EqtimeStats is the bin-averaged result of EqtimeBins, one Stat per
// observable.
type EqtimeStats struct {
	DoubleOccu    Stat
	KineticEnergy Stat
	StructFactor  Stat
	MomentumDist  Stat
	LocalSpinCorr Stat
	AverageSign   Stat
}

// AnalyseEqtime reduces every field of b to a mean and standard error.
func AnalyseEqtime(b *EqtimeBins) *EqtimeStats {
	return &EqtimeStats{
		DoubleOccu:    Analyse(b.DoubleOccu),
		KineticEnergy: Analyse(b.KineticEnergy),
		StructFactor:  Analyse(b.StructFactor),
		MomentumDist:  Analyse(b.MomentumDist),
		LocalSpinCorr: Analyse(b.LocalSpinCorr),
		AverageSign:   Analyse(b.AverageSign),
	}
}
