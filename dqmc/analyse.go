package dqmc

import (
	"log"

	"github.com/JefferyWangSH/DQMC-HubbardModel/measure"
)

// Analyse reduces the driver's accumulated bins to final statistics,
// storing them on EqtimeStats/DynamicStats.
func (d *Driver) Analyse() {
	if d.MeasureEqtime && d.EqtimeBins != nil {
		d.EqtimeStats = measure.AnalyseEqtime(d.EqtimeBins)
	}
	if d.MeasureDynamic && d.DynamicBins != nil {
		d.DynamicStats = measure.AnalyseDynamic(d.DynamicBins)
	}
}

// PrintParams logs the driver's current model and controlling parameters.
func (d *Driver) PrintParams() {
	log.Printf("simulation parameters:")
	log.Printf("  ll:    %d", d.Model.LL)
	log.Printf("  lt:    %d", d.Model.LT)
	log.Printf("  beta:  %g", d.Model.Beta)
	log.Printf("  U/t:   %g", d.Model.Uint/d.Model.T)
	log.Printf("  mu:    %g", d.Model.Mu)
	log.Printf("  q:     %g pi, %g pi", d.Qx, d.Qy)
	log.Printf("  nwrap: %d", d.Model.Nwrap)
}

// PrintStats logs the analyzed observable means and standard errors.
func (d *Driver) PrintStats() {
	if d.MeasureEqtime && d.EqtimeStats != nil {
		s := d.EqtimeStats
		log.Printf("equal-time measurements:")
		log.Printf("  double occupancy:       %.8g  err: %.8g", s.DoubleOccu.Mean, s.DoubleOccu.StdErr)
		log.Printf("  kinetic energy:         %.8g  err: %.8g", s.KineticEnergy.Mean, s.KineticEnergy.StdErr)
		log.Printf("  momentum distribution:  %.8g  err: %.8g", s.MomentumDist.Mean, s.MomentumDist.StdErr)
		log.Printf("  local spin correlation: %.8g  err: %.8g", s.LocalSpinCorr.Mean, s.LocalSpinCorr.StdErr)
		log.Printf("  structure factor:       %.8g  err: %.8g", s.StructFactor.Mean, s.StructFactor.StdErr)
		log.Printf("  average sign (abs):     %.8g  err: %.8g", absf(s.AverageSign.Mean), s.AverageSign.StdErr)
	}
	if d.MeasureDynamic && d.DynamicStats != nil {
		s := d.DynamicStats
		mid := d.Model.LT / 2
		log.Printf("time-displaced measurements:")
		log.Printf("  dynamical correlation in momentum space: see output file")
		log.Printf("  correlation g(k, beta/2): %.8g  err: %.8g", s.GKT[mid].Mean, s.GKT[mid].StdErr)
		log.Printf("  helicity modulus rho_s:   %.8g  err: %.8g", s.RhoS.Mean, s.RhoS.StdErr)
		log.Printf("  average sign (abs):       %.8g  err: %.8g", absf(s.Sign.Mean), s.Sign.StdErr)
	}
}
