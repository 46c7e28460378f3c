package measure

import (
	"math"
	"testing"

	"github.com/JefferyWangSH/DQMC-HubbardModel/hubbard"
)

func buildDisplacedModel(seed uint64) *hubbard.Model {
	m := buildModel(seed)
	m.SweepZeroToBetaDisplaced()
	return m
}

func TestDynamicAccumulatorClearZeroesEveryField(t *testing.T) {
	t.Parallel()
	m := buildDisplacedModel(10)

	a := NewDynamicAccumulator(m.LT)
	a.Measure(m, 0, 0)
	a.Clear()

	for tau, v := range a.GKT {
		if v != 0 {
			t.Fatalf("GKT[%d]=%v after Clear, want 0", tau, v)
		}
	}
	for tau, v := range a.LDOS {
		if v != 0 {
			t.Fatalf("LDOS[%d]=%v after Clear, want 0", tau, v)
		}
	}
	if a.NDynamic != 0 || a.KineticX != 0 || a.LambdaXX != 0 || a.Sign != 0 {
		t.Fatalf("accumulator not zero after Clear: %+v", a)
	}
}

func TestDynamicAccumulatorNormalizeProducesFiniteRhoS(t *testing.T) {
	t.Parallel()
	m := buildDisplacedModel(11)

	a := NewDynamicAccumulator(m.LT)
	a.Measure(m, 0, 0)
	a.Normalize(m.LS)

	rho := a.RhoS()
	if math.IsNaN(rho) || math.IsInf(rho, 0) {
		t.Fatalf("rho_s=%v, expected finite", rho)
	}
}

func TestDynamicBinsSetAndAnalyseRoundTrip(t *testing.T) {
	t.Parallel()
	nbin := 4
	m := buildDisplacedModel(12)
	bins := NewDynamicBins(nbin, m.LT)

	for bin := 0; bin < nbin; bin++ {
		mm := buildDisplacedModel(uint64(200 + bin))
		a := NewDynamicAccumulator(mm.LT)
		a.Measure(mm, 0, 0)
		a.Normalize(mm.LS)
		bins.Set(bin, a)
	}

	stats := AnalyseDynamic(bins)
	if len(stats.GKT) != m.LT {
		t.Fatalf("len(GKT)=%d, want %d", len(stats.GKT), m.LT)
	}
	for tau, s := range stats.GKT {
		if math.IsNaN(s.Mean) || math.IsNaN(s.StdErr) {
			t.Fatalf("GKT[%d] stats are NaN: %+v", tau, s)
		}
	}
}

func TestRelErrMatchesStdErrOverMean(t *testing.T) {
	t.Parallel()
	s := Stat{Mean: 2, StdErr: 0.5}
	if got, want := RelErr(s), 0.25; math.Abs(got-want) > 1e-12 {
		t.Fatalf("RelErr=%v, want %v", got, want)
	}
}

func TestRelErrAtZeroMeanIsInfinite(t *testing.T) {
	t.Parallel()
	s := Stat{Mean: 0, StdErr: 1}
	if got := RelErr(s); !math.IsInf(got, 1) {
		t.Fatalf("RelErr=%v, want +Inf", got)
	}
}

func TestLambdaXXIsSymmetricUnderSpinExchange(t *testing.T) {
	t.Parallel()
	m := buildDisplacedModel(13)
	mid := m.LT / 2

	// Swapping the up and down snapshots leaves the sum unchanged since
	// lambdaXX treats both spin channels identically.
	a := lambdaXX(m.LL, m.VecGreenT0Up[mid], m.VecGreen0TUp[mid], m.VecGreenT0Dn[mid], m.VecGreen0TDn[mid], m.T)
	b := lambdaXX(m.LL, m.VecGreenT0Dn[mid], m.VecGreen0TDn[mid], m.VecGreenT0Up[mid], m.VecGreen0TUp[mid], m.T)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("lambdaXX not spin-symmetric: %v vs %v", a, b)
	}
}
