package measure

import (
	"math"
	"testing"

	"github.com/JefferyWangSH/DQMC-HubbardModel/hubbard"
)

func buildModel(seed uint64) *hubbard.Model {
	m := hubbard.New(2, 8, 2.0, 1.0, 2.0, 0.0, 4, seed)
	m.SweepZeroToBeta()
	m.SweepBetaToZero()
	return m
}

func TestAnalyseMatchesHandComputedMeanAndStdErr(t *testing.T) {
	t.Parallel()
	bins := []float64{1, 2, 3, 4, 5}
	s := Analyse(bins)

	wantMean := 3.0
	if math.Abs(s.Mean-wantMean) > 1e-12 {
		t.Fatalf("mean=%v, want %v", s.Mean, wantMean)
	}

	var meanSq float64
	for _, x := range bins {
		meanSq += x * x
	}
	meanSq /= float64(len(bins))
	wantVariance := meanSq - wantMean*wantMean
	wantStdErr := math.Sqrt(wantVariance / float64(len(bins)-1))
	if math.Abs(s.StdErr-wantStdErr) > 1e-12 {
		t.Fatalf("stderr=%v, want %v", s.StdErr, wantStdErr)
	}
}

func TestAnalyseConstantBinsHaveZeroStdErr(t *testing.T) {
	t.Parallel()
	s := Analyse([]float64{7, 7, 7, 7})
	if s.Mean != 7 {
		t.Fatalf("mean=%v, want 7", s.Mean)
	}
	if s.StdErr != 0 {
		t.Fatalf("stderr=%v, want 0", s.StdErr)
	}
}

func TestEqtimeAccumulatorDoubleOccuStaysInSaneRange(t *testing.T) {
	t.Parallel()
	m := buildModel(1)

	a := &EqtimeAccumulator{}
	a.Measure(m, 0, 0)
	a.Normalize(m.LS, m.LT)

	if a.DoubleOccu < -1.5 || a.DoubleOccu > 1.5 {
		t.Fatalf("double_occupancy=%v out of a physically sane range", a.DoubleOccu)
	}
	if math.Abs(a.AverageSign) != 1 {
		t.Fatalf("average_sign=%v, expected +-1 after a single measurement", a.AverageSign)
	}
}

func TestEqtimeAccumulatorClearZeroesEveryField(t *testing.T) {
	t.Parallel()
	m := buildModel(2)

	a := &EqtimeAccumulator{}
	a.Measure(m, 0, 0)
	a.Clear()

	zero := EqtimeAccumulator{}
	if *a != zero {
		t.Fatalf("accumulator not zero after Clear: %+v", a)
	}
}

func TestEqtimeBinsSetAndAnalyseRoundTrip(t *testing.T) {
	t.Parallel()
	nbin := 6
	bins := NewEqtimeBins(nbin)

	for bin := 0; bin < nbin; bin++ {
		m := buildModel(uint64(100 + bin))
		a := &EqtimeAccumulator{}
		a.Measure(m, 0, 0)
		a.Normalize(m.LS, m.LT)
		bins.Set(bin, a)
	}

	stats := AnalyseEqtime(bins)
	if math.IsNaN(stats.DoubleOccu.Mean) || math.IsNaN(stats.DoubleOccu.StdErr) {
		t.Fatalf("double_occupancy stats are NaN: %+v", stats.DoubleOccu)
	}
	if math.Abs(stats.AverageSign.Mean) > 1 {
		t.Fatalf("average_sign mean=%v, expected magnitude <= 1", stats.AverageSign.Mean)
	}
}

func TestMomentumDistAtZeroMomentumMatchesDirectSum(t *testing.T) {
	t.Parallel()
	m := buildModel(3)

	gu := m.VecGreenTTUp[0]
	gd := m.VecGreenTTDn[0]
	got := measureMomentumDist(m.LL, gu, gd, 0, 0)

	// At q=0 every Fourier phase is 1, so the sum collapses to a plain
	// double sum over every site pair of (Gup(j,i) + Gdn(j,i)).
	var sum float64
	for i := 0; i < m.LS; i++ {
		for j := 0; j < m.LS; j++ {
			sum += gu.At(j, i) + gd.At(j, i)
		}
	}
	want := 1 - 0.5*sum/float64(m.LS)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("momentum_distribution(q=0)=%v, want %v", got, want)
	}
}
