package fileio

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// WriteTauAxis writes the imaginary-time axis file: a first line
// "<lt> <beta>", then lt lines each containing l*dtau.
func WriteTauAxis(path string, lt int, beta float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%7d%7g\n", lt, beta); err != nil {
		return errors.Wrap(err, "")
	}

	dtau := beta / float64(lt)
	for l := 0; l < lt; l++ {
		if _, err := fmt.Fprintf(w, "%15g\n", float64(l)*dtau); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
