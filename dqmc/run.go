package dqmc

import (
	"log"

	"github.com/pkg/errors"

	"github.com/JefferyWangSH/DQMC-HubbardModel/hubbard"
	"github.com/JefferyWangSH/DQMC-HubbardModel/measure"
)

// RunQMC thermalizes the model (if Nwarm > 0 and warmUp was set true via
// SetControllingParams), then runs Nbin measuring bins of Nsweep/2
// back-and-forth sweep pairs each, normalizing and storing one bin's
// statistics at the end of every bin and discarding NBetweenBins
// decorrelation sweep pairs before the next. display turns on periodic
// log.Printf progress lines.
func (d *Driver) RunQMC(display bool) error {
	if d.Model == nil {
		return errors.Errorf("RunQMC: no model; call SetModelParams first")
	}

	d.InitMeasure()

	if d.warmUp && d.Nwarm > 0 {
		for nwm := 1; nwm <= d.Nwarm/2; nwm++ {
			d.sweepBackAndForth(false, false)
			if display && nwm%10 == 0 {
				log.Printf("warm-up progress: %d/%d", nwm, d.Nwarm/2)
			}
		}
	}

	if d.MeasureEqtime || d.MeasureDynamic {
		for bin := 0; bin < d.Nbin; bin++ {
			var eqAcc *measure.EqtimeAccumulator
			var dynAcc *measure.DynamicAccumulator
			if d.MeasureEqtime {
				eqAcc = &measure.EqtimeAccumulator{}
			}
			if d.MeasureDynamic {
				dynAcc = measure.NewDynamicAccumulator(d.Model.LT)
			}

			for nsw := 1; nsw <= d.Nsweep/2; nsw++ {
				d.sweepBackAndForthMeasuring(eqAcc, dynAcc)
				if display && nsw%10 == 0 {
					log.Printf("measuring progress: bin %d/%d sweep %d/%d", bin+1, d.Nbin, nsw, d.Nsweep/2)
				}
			}

			if eqAcc != nil {
				eqAcc.Normalize(d.Model.LS, d.Model.LT)
				d.EqtimeBins.Set(bin, eqAcc)
				if err := d.warnIfSignBad(eqAcc.AverageSign, bin); err != nil {
					return err
				}
			}
			if dynAcc != nil {
				dynAcc.Normalize(d.Model.LS)
				d.DynamicBins.Set(bin, dynAcc)
				if err := d.warnIfSignBad(dynAcc.Sign, bin); err != nil {
					return err
				}
			}
			if d.Store != nil {
				if eqAcc != nil {
					if err := d.Store.PutEqtime(bin, eqAcc); err != nil {
						return errors.Wrap(err, "")
					}
				}
				if dynAcc != nil {
					if err := d.Store.PutDynamic(bin, dynAcc); err != nil {
						return errors.Wrap(err, "")
					}
				}
			}

			for n := 0; n < d.NBetweenBins; n++ {
				d.sweepBackAndForth(false, false)
			}
		}
	}

	log.Printf("maximum wrap error (equal-time): %g", d.Model.MaxWrapErrorEqual)
	log.Printf("maximum wrap error (time-displaced): %g", d.Model.MaxWrapErrorDisplaced)
	return nil
}

// warnIfSignBad logs a warning when the bin's average sign magnitude
// drops below SignThreshold. Not an error: just a log line a caller can
// grep for.
func (d *Driver) warnIfSignBad(sign float64, bin int) error {
	threshold := d.SignThreshold
	if threshold <= 0 {
		threshold = DefaultSignThreshold
	}
	if absf(sign) < threshold {
		log.Printf("warning: bin %d average sign %g below threshold %g (sign problem)", bin, sign, threshold)
	}
	return nil
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// sweepBackAndForth runs one undisplaced or displaced forward sweep
// (depending on measureDynamic) followed by one backward sweep, without
// feeding any measurement callback. Used for warm-up and decorrelation
// passes between bins.
func (d *Driver) sweepBackAndForth(measureEqtime, measureDynamic bool) {
	d.Model.SweepBackAndForth(measureEqtime, measureDynamic, nil, nil)
}

// sweepBackAndForthMeasuring runs one sweep pair, feeding eqAcc/dynAcc
// (if non-nil) to the per-pass measurement callbacks
// hubbard.Model.SweepBackAndForth invokes.
func (d *Driver) sweepBackAndForthMeasuring(eqAcc *measure.EqtimeAccumulator, dynAcc *measure.DynamicAccumulator) {
	qx, qy := d.qRadians()

	d.Model.SweepBackAndForth(
		eqAcc != nil, dynAcc != nil,
		func(m *hubbard.Model) { eqAcc.Measure(m, qx, qy) },
		func(m *hubbard.Model) { dynAcc.Measure(m, qx, qy) },
	)
}
