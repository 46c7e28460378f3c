package measure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const tableBins = "bins"

// BinStore persists completed observable bins to disk as soon as they
// close, keyed by (name, bin, tau), so a long run survives a crash
// between bins. The file is never deleted on Close.
type BinStore struct {
	Path string
	db   *sql.DB
}

// OpenBinStore opens (or creates) a sqlite database at path holding one
// row per (observable name, bin, tau) triple.
func OpenBinStore(path string) (*BinStore, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	s := &BinStore{Path: path, db: db}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return s, nil
}

func (s *BinStore) prepare() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT, bin INTEGER, tau INTEGER, value REAL, PRIMARY KEY (name, bin, tau)) STRICT`, tableBins)
	if _, err := s.db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Put upserts a single (name, bin, tau) value.
func (s *BinStore) Put(name string, bin, tau int, value float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (name, bin, tau, value) VALUES (?, ?, ?, ?)`, tableBins)
	if _, err := s.db.ExecContext(ctx, sqlStr, name, bin, tau, value); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s name=%s bin=%d tau=%d", sqlStr, name, bin, tau))
	}
	return nil
}

// Get reads back a single value, reporting false if it was never stored.
func (s *BinStore) Get(name string, bin, tau int) (float64, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT value FROM %s WHERE name=? AND bin=? AND tau=?`, tableBins)
	var v float64
	err := s.db.QueryRowContext(ctx, sqlStr, name, bin, tau).Scan(&v)
	switch {
	case err == sql.ErrNoRows:
		return 0, false, nil
	case err != nil:
		return 0, false, errors.Wrap(err, "")
	default:
		return v, true, nil
	}
}

// Has reports whether bin was already persisted for name, by looking up
// its tau=0 entry.
func (s *BinStore) Has(name string, bin int) (bool, error) {
	_, ok, err := s.Get(name, bin, 0)
	return ok, err
}

// PutEqtime persists one completed, normalized equal-time bin.
func (s *BinStore) PutEqtime(bin int, a *EqtimeAccumulator) error {
	vals := map[string]float64{
		"DoubleOccu":    a.DoubleOccu,
		"KineticEnergy": a.KineticEnergy,
		"StructFactor":  a.StructFactor,
		"MomentumDist":  a.MomentumDist,
		"LocalSpinCorr": a.LocalSpinCorr,
		"AverageSign":   a.AverageSign,
	}
	for name, v := range vals {
		if err := s.Put(name, bin, 0, v); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

// PutDynamic persists one completed, normalized dynamic bin: g_kt and
// the LDOS trace at every slice, plus the scalar helicity-modulus
// ingredients.
func (s *BinStore) PutDynamic(bin int, a *DynamicAccumulator) error {
	for tau, v := range a.GKT {
		if err := s.Put("GKT", bin, tau, v); err != nil {
			return errors.Wrap(err, "")
		}
	}
	for tau, v := range a.LDOS {
		if err := s.Put("LDOS", bin, tau, v); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := s.Put("RhoS", bin, 0, a.RhoS()); err != nil {
		return errors.Wrap(err, "")
	}
	if err := s.Put("DynamicSign", bin, 0, a.Sign); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Close closes the underlying database handle without removing the file.
func (s *BinStore) Close() error {
	return s.db.Close()
}
