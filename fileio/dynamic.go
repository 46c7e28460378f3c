package fileio

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/JefferyWangSH/DQMC-HubbardModel/measure"
)

// tauShift reindexes slice l to (l-1+lt)%lt, the relative lag convention
// the written g_kt series uses.
func tauShift(l, lt int) int { return (l - 1 + lt) % lt }

// WriteDynamicStats writes the header "Momentum k: <qx> pi, <qy> pi",
// then lt lines of "<l> <mean g_kt> <stderr> <relerr>", then a final
// line "<mean rho_s> <stderr> <relerr>". qx, qy are in units of pi.
func WriteDynamicStats(path string, stats *measure.DynamicStats, qx, qy float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "Momentum k: %g pi, %g pi\n", qx, qy); err != nil {
		return errors.Wrap(err, "")
	}

	lt := len(stats.GKT)
	for l := 0; l < lt; l++ {
		s := stats.GKT[tauShift(l, lt)]
		if _, err := fmt.Fprintf(w, "%15d%15g%15g%15g\n", l, s.Mean, s.StdErr, measure.RelErr(s)); err != nil {
			return errors.Wrap(err, "")
		}
	}

	if _, err := fmt.Fprintf(w, "%15g%15g%15g\n", stats.RhoS.Mean, stats.RhoS.StdErr, measure.RelErr(stats.RhoS)); err != nil {
		return errors.Wrap(err, "")
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// WriteBinCorrelation writes the g_kt bin-correlation file: nbin, then
// for each bin "<bin>" followed by lt values of g_kt[(l-1+lt) mod lt].
func WriteBinCorrelation(path string, bins *measure.DynamicBins) error {
	return writeBinSeries(path, bins.Nbin, bins.LT, func(bin, l int) float64 {
		return bins.GKT[bin][tauShift(l, bins.LT)]
	})
}

// WriteLDOSBins writes the LDOS-bin file: same nbin/bin layout as
// WriteBinCorrelation, with value 0.5/ls*trace(G_t0_up + G_t0_dn) per
// slice, already accumulated into bins.LDOS by DynamicAccumulator.
func WriteLDOSBins(path string, bins *measure.DynamicBins) error {
	return writeBinSeries(path, bins.Nbin, bins.LT, func(bin, l int) float64 {
		return bins.LDOS[bin][tauShift(l, bins.LT)]
	})
}

func writeBinSeries(path string, nbin, lt int, value func(bin, l int) float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%10d\n", nbin); err != nil {
		return errors.Wrap(err, "")
	}
	for bin := 0; bin < nbin; bin++ {
		if _, err := fmt.Fprintf(w, "%20d\n", bin); err != nil {
			return errors.Wrap(err, "")
		}
		for l := 0; l < lt; l++ {
			if _, err := fmt.Fprintf(w, "%20.15g\n", value(bin, l)); err != nil {
				return errors.Wrap(err, "")
			}
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
