package dqmc

import (
	"github.com/pkg/errors"

	"github.com/JefferyWangSH/DQMC-HubbardModel/fileio"
)

// WriteTauAxis writes the imaginary-time axis file for the driver's
// current lt/beta.
func (d *Driver) WriteTauAxis(path string) error {
	return errors.Wrap(fileio.WriteTauAxis(path, d.Model.LT, d.Model.Beta), "")
}

// WriteEqtimeStats writes the equal-time statistics record. Requires
// Analyse to have run first.
func (d *Driver) WriteEqtimeStats(path string) error {
	if d.EqtimeStats == nil {
		return errors.Errorf("WriteEqtimeStats: no analyzed equal-time stats; call Analyse first")
	}
	return errors.Wrap(fileio.WriteEqtimeStats(path, d.Model.Uint/d.Model.T, d.Model.Beta, d.EqtimeStats, d.Qx, d.Qy), "")
}

// WriteDynamicStats writes the time-displaced statistics record. Requires
// Analyse to have run first.
func (d *Driver) WriteDynamicStats(path string) error {
	if d.DynamicStats == nil {
		return errors.Errorf("WriteDynamicStats: no analyzed dynamic stats; call Analyse first")
	}
	return errors.Wrap(fileio.WriteDynamicStats(path, d.DynamicStats, d.Qx, d.Qy), "")
}

// WriteBinCorrelation writes the per-bin g_kt series.
func (d *Driver) WriteBinCorrelation(path string) error {
	if d.DynamicBins == nil {
		return errors.Errorf("WriteBinCorrelation: no dynamic bins; run RunQMC with MeasureDynamic first")
	}
	return errors.Wrap(fileio.WriteBinCorrelation(path, d.DynamicBins), "")
}

// WriteLDOSBins writes the per-bin LDOS series.
func (d *Driver) WriteLDOSBins(path string) error {
	if d.DynamicBins == nil {
		return errors.Errorf("WriteLDOSBins: no dynamic bins; run RunQMC with MeasureDynamic first")
	}
	return errors.Wrap(fileio.WriteLDOSBins(path, d.DynamicBins), "")
}
