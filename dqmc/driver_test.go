package dqmc

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	d := New()
	d.SetModelParams(2, 8, 2.0, 1.0, 2.0, 0.0, 4, 7)
	d.SetMonteCarloParams(4, 3, 4, 0)
	d.SetControllingParams(true, true, true)
	d.SetLatticeMomentum(0, 0)
	return d
}

func TestRunQMCProducesNbinBinsForBothMeasurements(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)
	if err := d.RunQMC(false); err != nil {
		t.Fatalf("%+v", err)
	}

	if d.EqtimeBins == nil || d.EqtimeBins.Nbin != d.Nbin {
		t.Fatalf("EqtimeBins missing or wrong size: %+v", d.EqtimeBins)
	}
	if d.DynamicBins == nil || d.DynamicBins.Nbin != d.Nbin {
		t.Fatalf("DynamicBins missing or wrong size: %+v", d.DynamicBins)
	}
	for bin := 0; bin < d.Nbin; bin++ {
		if math.Abs(d.EqtimeBins.AverageSign[bin]) == 0 {
			t.Fatalf("bin %d has zero average sign, expected +-1ish value", bin)
		}
	}
}

func TestAnalyseAfterRunProducesFiniteStats(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)
	if err := d.RunQMC(false); err != nil {
		t.Fatalf("%+v", err)
	}
	d.Analyse()

	if d.EqtimeStats == nil {
		t.Fatalf("EqtimeStats not populated")
	}
	if math.IsNaN(d.EqtimeStats.DoubleOccu.Mean) || math.IsInf(d.EqtimeStats.DoubleOccu.Mean, 0) {
		t.Fatalf("double occupancy mean is not finite: %v", d.EqtimeStats.DoubleOccu.Mean)
	}
	if d.DynamicStats == nil {
		t.Fatalf("DynamicStats not populated")
	}
	if len(d.DynamicStats.GKT) != d.Model.LT {
		t.Fatalf("GKT has %d entries, want %d", len(d.DynamicStats.GKT), d.Model.LT)
	}
}

func TestRunQMCWithoutModelParamsErrors(t *testing.T) {
	t.Parallel()
	d := New()
	if err := d.RunQMC(false); err == nil {
		t.Fatalf("expected error when no model has been set up")
	}
}

func TestWriteOutputsRoundTripAfterAnalyse(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)
	if err := d.RunQMC(false); err != nil {
		t.Fatalf("%+v", err)
	}
	d.Analyse()

	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	if err := d.WriteTauAxis(filepath.Join(dir, "tau.txt")); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := d.WriteEqtimeStats(filepath.Join(dir, "eqtime.txt")); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := d.WriteDynamicStats(filepath.Join(dir, "dynamic.txt")); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := d.WriteBinCorrelation(filepath.Join(dir, "corr.txt")); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := d.WriteLDOSBins(filepath.Join(dir, "ldos.txt")); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestAuxFieldSaveLoadRoundTripThroughDriver(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)
	if err := d.RunQMC(false); err != nil {
		t.Fatalf("%+v", err)
	}

	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "field.txt")

	if err := d.SaveAuxField(path); err != nil {
		t.Fatalf("%+v", err)
	}

	d2 := New()
	d2.SetModelParams(2, 8, 2.0, 1.0, 2.0, 0.0, 4, 99)
	if err := d2.LoadAuxField(path); err != nil {
		t.Fatalf("%+v", err)
	}

	for i := 0; i < d.Model.LS; i++ {
		for l := 0; l < d.Model.LT; l++ {
			if got, want := d2.Model.Field.At(i, l), d.Model.Field.At(i, l); got != want {
				t.Fatalf("field(%d,%d)=%v, want %v", i, l, got, want)
			}
		}
	}
}

func TestBinStorePersistsAcrossRun(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	dir, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer os.RemoveAll(dir)

	if err := d.OpenBinStore(filepath.Join(dir, "bins.sqlite")); err != nil {
		t.Fatalf("%+v", err)
	}
	defer d.Close()

	if err := d.RunQMC(false); err != nil {
		t.Fatalf("%+v", err)
	}

	has, err := d.Store.Has("DoubleOccu", 0)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !has {
		t.Fatalf("expected bin 0 of DoubleOccu to be persisted")
	}
}

func TestWarnIfSignBadLogsBelowThreshold(t *testing.T) {
	t.Parallel()
	d := New()
	d.SignThreshold = 0.5
	if err := d.warnIfSignBad(0.1, 0); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := d.warnIfSignBad(0.9, 0); err != nil {
		t.Fatalf("%+v", err)
	}
}
