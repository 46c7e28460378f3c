// Package fileio implements the persisted file formats of a determinant
// Quantum Monte Carlo run: the auxiliary-field configuration, the
// imaginary-time axis, and the equal-time/time-displaced statistics and
// bin-correlation files.
package fileio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/JefferyWangSH/DQMC-HubbardModel/hubbard"
)

// LoadAuxField reads a whitespace-separated "<l> <i> <s>" auxiliary-field
// file into m's field, verifies the maximum l and i match m's lt-1 and
// ls-1, and re-initializes m's stacks and Green's functions from the
// loaded configuration. Model parameters (ll, lt, beta, ...) must already
// be set on m.
func LoadAuxField(path string, m *hubbard.Model) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	maxL, maxI := -1, -1
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return errors.Errorf("%s:%d: expected 3 fields, got %d", path, lineNo, len(fields))
		}

		l, err := strconv.Atoi(fields[0])
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s:%d", path, lineNo))
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s:%d", path, lineNo))
		}
		s, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s:%d", path, lineNo))
		}
		if l < 0 || l >= m.LT || i < 0 || i >= m.LS {
			return errors.Errorf("%s:%d: (l=%d, i=%d) out of range for lt=%d, ls=%d", path, lineNo, l, i, m.LT, m.LS)
		}

		m.Field.Set(i, l, s)
		if l > maxL {
			maxL = l
		}
		if i > maxI {
			maxI = i
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "")
	}

	if maxL != m.LT-1 {
		return errors.Errorf("%s: max l=%d, expected %d", path, maxL, m.LT-1)
	}
	if maxI != m.LS-1 {
		return errors.Errorf("%s: max i=%d, expected %d", path, maxI, m.LS-1)
	}

	m.ResetStacks()
	m.InitStacks()
	m.ConfigSign = hubbard.SignFromGreens(m.GreenTTUp, m.GreenTTDn)
	return nil
}

// SaveAuxField writes m's field as whitespace-separated "<l> <i> <s>"
// records, one per site-time pair, ordered by l then i.
func SaveAuxField(path string, m *hubbard.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for l := 0; l < m.LT; l++ {
		for i := 0; i < m.LS; i++ {
			if _, err := fmt.Fprintf(w, "%15d%15d%15.1f\n", l, i, m.Field.At(i, l)); err != nil {
				return errors.Wrap(err, "")
			}
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
