package basis

import (
	"math"
)

// Simplex2DP evaluates the 2D orthonormal polynomial of order (i,j) on the
// bi-unit triangle at (R,S)
func Simplex2DP(R, S []float64, i, j int) []float64 {
	a, b := RStoAB(R, S)

	Np := len(R)
	h1 := JacobiP(a, 0, 0, i)
	h2 := JacobiP(b, float64(2*i+1), 0, j)

	P := make([]float64, Np)
	for ii := range h1 {
		P[ii] = math.Sqrt2 * h1[ii] * h2[ii] * pow(1-b[ii], i)
	}
	return P
}

// Simplex3DP evaluates the 3D orthonormal polynomial of order (i,j,k) on the
// bi-unit tetrahedron at (R,S,T)
func Simplex3DP(R, S, T []float64, i, j, k int) []float64 {
	a, b, c := RSTtoABC(R, S, T)

	Np := len(R)
	h1 := JacobiP(a, 0, 0, i)
	h2 := JacobiP(b, float64(2*i+1), 0, j)
	h3 := JacobiP(c, float64(2*(i+j)+2), 0, k)

	P := make([]float64, Np)
	for n := range P {
		P[n] = 2 * math.Sqrt2 * h1[n] * h2[n] * pow(1-b[n], i) *
			h3[n] * pow(1-c[n], i+j)
	}
	return P
}

// RStoAB converts from (r,s) to the collapsed (a,b) coordinates
func RStoAB(R, S []float64) (a, b []float64) {
	Np := len(R)
	a = make([]float64, Np)
	b = make([]float64, Np)

	for n := 0; n < Np; n++ {
		if S[n] != 1 {
			a[n] = 2*(1+R[n])/(1-S[n]) - 1
		} else {
			a[n] = -1
		}
		b[n] = S[n]
	}
	return
}

// RSTtoABC converts from (r,s,t) to the collapsed (a,b,c) coordinates
func RSTtoABC(R, S, T []float64) (a, b, c []float64) {
	Np := len(R)
	a = make([]float64, Np)
	b = make([]float64, Np)
	c = make([]float64, Np)

	for n := 0; n < Np; n++ {
		if S[n]+T[n] != 0 {
			a[n] = 2*(1+R[n])/(-S[n]-T[n]) - 1
		} else {
			a[n] = -1
		}
		if T[n] != 1 {
			b[n] = 2*(1+S[n])/(1-T[n]) - 1
		} else {
			b[n] = -1
		}
		c[n] = T[n]
	}
	return
}

// pow computes x^n for integer n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
