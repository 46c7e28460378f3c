package hubbard

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/JefferyWangSH/DQMC-HubbardModel/linalg"
)

// maxSource is a math/rand/v2 Source that always returns the largest
// possible draw, pushing Float64() arbitrarily close to (but never over) 1.
// Used to force every Metropolis proposal below to be rejected, since every
// acceptance probability in this model is strictly less than 1 in the
// generic case.
type maxSource struct{}

func (maxSource) Uint64() uint64 { return math.MaxUint64 }

func TestFieldStaysInDomain(t *testing.T) {
	t.Parallel()
	m := New(2, 8, 2.0, 1.0, 2.0, 0.0, 4, 1)
	m.SweepZeroToBeta()
	m.SweepBetaToZero()

	for i := 0; i < m.LS; i++ {
		for l := 0; l < m.LT; l++ {
			v := m.Field.At(i, l)
			if v != 1 && v != -1 {
				t.Fatalf("s(%d,%d)=%f out of domain", i, l, v)
			}
		}
	}
}

func TestConfigSignStaysUnit(t *testing.T) {
	t.Parallel()
	m := New(2, 8, 2.0, 1.0, 2.0, 0.0, 4, 2)
	for sw := 0; sw < 3; sw++ {
		m.SweepZeroToBeta()
		if math.Abs(m.ConfigSign) != 1 {
			t.Fatalf("config_sign=%f after forward sweep %d", m.ConfigSign, sw)
		}
		m.SweepBetaToZero()
		if math.Abs(m.ConfigSign) != 1 {
			t.Fatalf("config_sign=%f after backward sweep %d", m.ConfigSign, sw)
		}
	}
}

func TestWrapErrorStaysSmall(t *testing.T) {
	t.Parallel()
	m := New(2, 40, 4.0, 1.0, 4.0, 0.0, 10, 3)
	for sw := 0; sw < 2; sw++ {
		m.SweepZeroToBeta()
		m.SweepBetaToZero()
	}
	if m.MaxWrapErrorEqual > 1e-6 {
		t.Fatalf("max_wrap_error_equal=%e, expected < 1e-6", m.MaxWrapErrorEqual)
	}
}

func TestDisplacedReducesToEqualTimeAtOrigin(t *testing.T) {
	t.Parallel()
	m := New(2, 8, 2.0, 1.0, 2.0, 0.0, 4, 4)
	m.resetDisplaced()

	if d := linalg.MaxAbsDiff(m.GreenT0Up, m.GreenTTUp); d > 1e-12 {
		t.Fatalf("G(tau,0) at tau=0 should equal G(0,0), diff %e", d)
	}

	iMinus := linalg.Identity(m.LS)
	iMinus.Sub(m.GreenTTUp, iMinus)
	if d := linalg.MaxAbsDiff(m.Green0TUp, iMinus); d > 1e-12 {
		t.Fatalf("G(0,tau) at tau=0 should equal G(0,0)-I, diff %e", d)
	}
}

func TestSignAfterInitMatchesDeterminant(t *testing.T) {
	t.Parallel()
	// Scenario S4: a degenerate all-+1 field's config_sign matches the sign
	// of det(G_up)*det(G_dn) computed directly from the Green's functions
	// InitStacks produced.
	m := New(2, 8, 2.0, 1.0, 4.0, 0.0, 4, 5)
	for i := 0; i < m.LS; i++ {
		for l := 0; l < m.LT; l++ {
			m.Field.Set(i, l, 1)
		}
	}
	m.ResetStacks()
	m.InitStacks()

	got := SignFromGreens(m.GreenTTUp, m.GreenTTDn)
	detProduct := linalg.Determinant(m.GreenTTUp) * linalg.Determinant(m.GreenTTDn)
	wantPositive := detProduct >= 0
	gotPositive := got == 1
	if wantPositive != gotPositive {
		t.Fatalf("config_sign %f disagrees with det(Gup)*det(Gdn)=%e", got, detProduct)
	}
}

func TestSweepPairIsIdempotentWhenAllMovesRejected(t *testing.T) {
	t.Parallel()
	m := New(2, 8, 2.0, 1.0, 2.0, 0.0, 4, 6)
	m.SetRNG(rand.New(maxSource{}))

	before := mat.DenseCopyOf(m.GreenTTUp)
	m.SweepZeroToBeta()
	m.SweepBetaToZero()

	if d := linalg.MaxAbsDiff(m.GreenTTUp, before); d > 1e-9 {
		t.Fatalf("sweep pair with all moves rejected should be idempotent, diff %e", d)
	}

	for i := 0; i < m.LS; i++ {
		for l := 0; l < m.LT; l++ {
			if m.Field.At(i, l) == 0 {
				t.Fatalf("field entry unset at (%d,%d)", i, l)
			}
		}
	}
}

func TestIdenticalSeedsProduceIdenticalFields(t *testing.T) {
	t.Parallel()
	a := New(2, 8, 2.0, 1.0, 2.0, 0.0, 4, 42)
	b := New(2, 8, 2.0, 1.0, 2.0, 0.0, 4, 42)

	a.SweepZeroToBeta()
	b.SweepZeroToBeta()

	for i := 0; i < a.LS; i++ {
		for l := 0; l < a.LT; l++ {
			if a.Field.At(i, l) != b.Field.At(i, l) {
				t.Fatalf("seeded runs diverged at (%d,%d)", i, l)
			}
		}
	}
}

func TestAttractiveUChannelSharesFactor(t *testing.T) {
	t.Parallel()
	m := New(2, 8, 2.0, 1.0, -4.0, 0.0, 4, 7)
	if !m.AttractiveU {
		t.Fatalf("expected attractive channel for U<0")
	}
	m.SweepZeroToBeta()
	m.SweepBetaToZero()
	// still a valid probability distribution: sign stays unit even with the
	// attractive-channel factor-sharing rule exercised throughout.
	if math.Abs(m.ConfigSign) != 1 {
		t.Fatalf("config_sign=%f, expected +-1", m.ConfigSign)
	}
}
