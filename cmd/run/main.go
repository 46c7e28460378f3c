package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/JefferyWangSH/DQMC-HubbardModel/dqmc"
)

const (
	fnameAuxField = "aux_field.txt"
	fnameTau      = "tau.txt"
	fnameEqtime   = "stats_eqtime.txt"
	fnameDynamic  = "stats_dynamic.txt"
	fnameBinCorr  = "bin_corr.txt"
	fnameBinLDOS  = "bin_ldos.txt"
	fnameBinStore = "bins.sqlite"
)

var (
	runDir = flag.String("d", filepath.Join("runs", "hubbard"), "run directory")

	ll    = flag.Int("ll", 4, "linear lattice size")
	lt    = flag.Int("lt", 80, "number of imaginary-time slices")
	beta  = flag.Float64("beta", 4, "inverse temperature")
	t     = flag.Float64("t", 1, "hopping amplitude")
	uint_ = flag.Float64("u", 4, "on-site interaction U")
	mu    = flag.Float64("mu", 0, "chemical potential")
	nwrap = flag.Int("nwrap", 10, "slices between numerical stabilizations")
	seed  = flag.Uint64("seed", 1, "random seed")

	nwarm         = flag.Int("nwarm", 400, "number of warm-up sweeps (run as nwarm/2 sweep pairs)")
	nbin          = flag.Int("nbin", 20, "number of measuring bins")
	nsweep        = flag.Int("nsweep", 20, "sweeps measured per bin (run as nsweep/2 sweep pairs)")
	nBetweenBins  = flag.Int("n-between-bins", 4, "decorrelation sweep pairs between bins")
	measureEqtime = flag.Bool("measure-eqtime", true, "measure equal-time observables")
	measureDyn    = flag.Bool("measure-dynamic", false, "measure time-displaced observables")

	qx = flag.Float64("qx", 0, "lattice momentum qx, in units of pi")
	qy = flag.Float64("qy", 0, "lattice momentum qy, in units of pi")

	display  = flag.Bool("display", true, "log periodic progress lines")
	auxField = flag.String("aux-field", "", "path to a saved auxiliary-field configuration to resume from")
	persist  = flag.Bool("persist-bins", true, "persist completed bins to a sqlite store as they close")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	d := dqmc.New()
	d.SetModelParams(*ll, *lt, *beta, *t, *uint_, *mu, *nwrap, *seed)
	d.SetMonteCarloParams(*nwarm, *nbin, *nsweep, *nBetweenBins)
	d.SetControllingParams(*nwarm > 0, *measureEqtime, *measureDyn)
	d.SetLatticeMomentum(*qx, *qy)

	if *auxField != "" {
		if err := d.LoadAuxField(*auxField); err != nil {
			return errors.Wrap(err, "")
		}
	}

	if *persist {
		if err := d.OpenBinStore(filepath.Join(*runDir, fnameBinStore)); err != nil {
			return errors.Wrap(err, "")
		}
		defer d.Close()
	}

	d.PrintParams()

	if err := d.RunQMC(*display); err != nil {
		return errors.Wrap(err, "")
	}
	d.Analyse()
	d.PrintStats()

	if err := d.SaveAuxField(filepath.Join(*runDir, fnameAuxField)); err != nil {
		return errors.Wrap(err, "")
	}
	if err := d.WriteTauAxis(filepath.Join(*runDir, fnameTau)); err != nil {
		return errors.Wrap(err, "")
	}
	if *measureEqtime {
		if err := d.WriteEqtimeStats(filepath.Join(*runDir, fnameEqtime)); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if *measureDyn {
		if err := d.WriteDynamicStats(filepath.Join(*runDir, fnameDynamic)); err != nil {
			return errors.Wrap(err, "")
		}
		if err := d.WriteBinCorrelation(filepath.Join(*runDir, fnameBinCorr)); err != nil {
			return errors.Wrap(err, "")
		}
		if err := d.WriteLDOSBins(filepath.Join(*runDir, fnameBinLDOS)); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}
