package fileio

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/JefferyWangSH/DQMC-HubbardModel/measure"
)

// WriteEqtimeStats writes one record of 14 right-aligned, 15-wide fields:
// U/t, beta, the five equal-time observable means, their five standard
// errors (same order), then qx, qy. qx, qy are the wave vector in units
// of pi, as originally set (not the internal radians value).
func WriteEqtimeStats(path string, uOverT, beta float64, stats *measure.EqtimeStats, qx, qy float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	_, err = fmt.Fprintf(w, "%15g%15g%15g%15g%15g%15g%15g%15g%15g%15g%15g%15g%15g%15g\n",
		uOverT, beta,
		stats.DoubleOccu.Mean, stats.KineticEnergy.Mean, stats.StructFactor.Mean,
		stats.MomentumDist.Mean, stats.LocalSpinCorr.Mean,
		stats.DoubleOccu.StdErr, stats.KineticEnergy.StdErr, stats.StructFactor.StdErr,
		stats.MomentumDist.StdErr, stats.LocalSpinCorr.StdErr,
		qx, qy)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
