package linalg

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestDeterminant(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m    *mat.Dense
		want float64
	}{
		{m: Identity(3), want: 1},
		{m: mat.NewDense(2, 2, []float64{2, 0, 0, 3}), want: 6},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			got := Determinant(test.m)
			if math.Abs(got-test.want) > 1e-9 {
				t.Fatalf("%f, expected %f", got, test.want)
			}
		})
	}
}

func TestSVDFullReconstructs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m *mat.Dense
	}{
		{m: mat.NewDense(3, 3, []float64{4, 1, 0, 1, 3, 1, 0, 1, 2})},
		{m: mat.NewDense(2, 2, []float64{1e8, 0, 0, 1e-8})},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			u, sigma, v := SVDFull(test.m)
			recon := Mul(Mul(u, DiagFromVector(sigma)), v.T())
			if MaxAbsDiff(recon, test.m) > 1e-6 {
				t.Fatalf("reconstruction %v, expected %v", mat.Formatted(recon), mat.Formatted(test.m))
			}
		})
	}
}

func TestMaxAbsDiff(t *testing.T) {
	t.Parallel()
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{1, 2, 3, 4.5})
	if got := MaxAbsDiff(a, b); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("%f, expected 0.5", got)
	}
}
