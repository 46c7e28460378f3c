// Package dqmc drives a hubbard.Model through warm-up and measuring
// sweeps, accumulating equal-time and time-displaced observable bins and
// reducing them to final statistics.
package dqmc

import (
	"math"

	"github.com/pkg/errors"

	"github.com/JefferyWangSH/DQMC-HubbardModel/fileio"
	"github.com/JefferyWangSH/DQMC-HubbardModel/hubbard"
	"github.com/JefferyWangSH/DQMC-HubbardModel/measure"
)

// DefaultSignThreshold is the |<sign>| floor below which RunQMC's caller
// should distrust the run's statistics.
const DefaultSignThreshold = 0.1

// Driver owns one hubbard.Model plus the Monte Carlo and measurement
// parameters needed to run it. Model parameters (ll, lt, beta, t, u, mu,
// nwrap) live on Model itself, not duplicated here, so the driver and
// its model can never drift out of sync.
type Driver struct {
	Model *hubbard.Model

	Nwarm, Nbin, Nsweep, NBetweenBins int

	warmUp                        bool
	MeasureEqtime, MeasureDynamic bool

	Qx, Qy float64 // wave vector in units of pi, as set by SetLatticeMomentum

	SignThreshold float64

	EqtimeBins  *measure.EqtimeBins
	DynamicBins *measure.DynamicBins

	EqtimeStats  *measure.EqtimeStats
	DynamicStats *measure.DynamicStats

	Store *measure.BinStore
}

// New returns a Driver with the sign-problem diagnostic threshold set to
// its default. Call SetModelParams before building a model.
func New() *Driver {
	return &Driver{SignThreshold: DefaultSignThreshold}
}

// SetModelParams (re)builds the underlying model, discarding any prior
// state. seed makes the run reproducible.
func (d *Driver) SetModelParams(ll, lt int, beta, t, u, mu float64, nwrap int, seed uint64) {
	d.Model = hubbard.New(ll, lt, beta, t, u, mu, nwrap, seed)
}

// SetMonteCarloParams records the warm-up, binning, and sweep-count
// parameters.
func (d *Driver) SetMonteCarloParams(nwarm, nbin, nsweep, nBetweenBins int) {
	d.Nwarm, d.Nbin, d.Nsweep, d.NBetweenBins = nwarm, nbin, nsweep, nBetweenBins
}

// SetControllingParams toggles which measurements RunQMC accumulates.
// warmUp lets a caller skip warm-up entirely on a resumed run.
func (d *Driver) SetControllingParams(warmUp, measureEqtime, measureDynamic bool) {
	d.warmUp = warmUp
	d.MeasureEqtime = measureEqtime
	d.MeasureDynamic = measureDynamic
}

// SetLatticeMomentum records the wave vector in units of pi. The value is
// stored as given; qRadians converts it to radians for each measurement.
func (d *Driver) SetLatticeMomentum(qx, qy float64) {
	d.Qx, d.Qy = qx, qy
}

// qRadians returns the driver's wave vector in radians, the unit
// measure.EqtimeAccumulator.Measure/DynamicAccumulator.Measure expect.
func (d *Driver) qRadians() (float64, float64) {
	return math.Pi * d.Qx, math.Pi * d.Qy
}

// InitMeasure allocates fresh bin storage for Nbin bins, discarding any
// prior accumulated statistics.
func (d *Driver) InitMeasure() {
	if d.MeasureEqtime {
		d.EqtimeBins = measure.NewEqtimeBins(d.Nbin)
	} else {
		d.EqtimeBins = nil
	}
	if d.MeasureDynamic {
		d.DynamicBins = measure.NewDynamicBins(d.Nbin, d.Model.LT)
	} else {
		d.DynamicBins = nil
	}
}

// LoadAuxField reads a saved auxiliary-field configuration into the
// driver's model, replacing its current field and re-deriving consistent
// Green's functions and stacks. SetModelParams must already have built
// the model with matching lt/ls.
func (d *Driver) LoadAuxField(path string) error {
	if d.Model == nil {
		return errors.Errorf("LoadAuxField: no model; call SetModelParams first")
	}
	return errors.Wrap(fileio.LoadAuxField(path, d.Model), "")
}

// SaveAuxField writes the driver's current auxiliary-field configuration.
func (d *Driver) SaveAuxField(path string) error {
	return errors.Wrap(fileio.SaveAuxField(path, d.Model), "")
}

// OpenBinStore opens a sqlite-backed store at path and attaches it to the
// driver, so RunQMC persists every completed bin as soon as it closes.
func (d *Driver) OpenBinStore(path string) error {
	s, err := measure.OpenBinStore(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	d.Store = s
	return nil
}

// Close releases the driver's bin store, if one was opened.
func (d *Driver) Close() error {
	if d.Store == nil {
		return nil
	}
	return errors.Wrap(d.Store.Close(), "")
}
