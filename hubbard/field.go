package hubbard

import "math/rand/v2"

// Field holds the ls x lt auxiliary Ising field s(i,l) in row-major storage,
// one row per site.
type Field struct {
	ls, lt int
	s      []float64
}

// NewField allocates an ls x lt field with all entries zero; callers should
// call Randomize before using it as Markov chain state.
func NewField(ls, lt int) *Field {
	return &Field{ls: ls, lt: lt, s: make([]float64, ls*lt)}
}

func (f *Field) index(i, l int) int { return i*f.lt + l }

// At returns s(i,l).
func (f *Field) At(i, l int) float64 { return f.s[f.index(i, l)] }

// Set assigns s(i,l).
func (f *Field) Set(i, l int, v float64) { f.s[f.index(i, l)] = v }

// Column returns a freshly allocated copy of s(., l), the slice of field
// values propagator.Set.Diag expects.
func (f *Field) Column(l int) []float64 {
	col := make([]float64, f.ls)
	for i := 0; i < f.ls; i++ {
		col[i] = f.At(i, l)
	}
	return col
}

// Randomize draws each s(i,l) independently and uniformly from {+1,-1}.
func (f *Field) Randomize(rng *rand.Rand) {
	for idx := range f.s {
		if rng.Float64() < 0.5 {
			f.s[idx] = +1
		} else {
			f.s[idx] = -1
		}
	}
}

// LS and LT report the field's dimensions.
func (f *Field) LS() int { return f.ls }
func (f *Field) LT() int { return f.lt }
