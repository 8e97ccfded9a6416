package basis

import (
	"gonum.org/v1/gonum/mat"
)

// All Vandermonde matrices below follow V_{ij} = phi_j(x_i): one row per
// point, one column per mode. Points are in bi-unit reference coordinates.

// Vandermonde1D builds the Legendre Vandermonde matrix of order N on [-1,1]
func Vandermonde1D(N int, R []float64) *mat.Dense {
	V1D := mat.NewDense(len(R), N+1, nil)
	for j := 0; j <= N; j++ {
		V1D.SetCol(j, JacobiP(R, 0, 0, j))
	}
	return V1D
}

// Vandermonde2D initializes the triangle Vandermonde matrix of order N
func Vandermonde2D(N int, R, S []float64) *mat.Dense {
	Np := (N + 1) * (N + 2) / 2
	V2D := mat.NewDense(len(R), Np, nil)

	sk := 0
	for i := 0; i <= N; i++ {
		for j := 0; j <= N-i; j++ {
			V2D.SetCol(sk, Simplex2DP(R, S, i, j))
			sk++
		}
	}
	return V2D
}

// Vandermonde3D initializes the tetrahedron Vandermonde matrix of order N
func Vandermonde3D(N int, R, S, T []float64) *mat.Dense {
	Ncol := (N + 1) * (N + 2) * (N + 3) / 6
	V3D := mat.NewDense(len(R), Ncol, nil)

	sk := 0
	for i := 0; i <= N; i++ {
		for j := 0; j <= N-i; j++ {
			for k := 0; k <= N-i-j; k++ {
				V3D.SetCol(sk, Simplex3DP(R, S, T, i, j, k))
				sk++
			}
		}
	}
	return V3D
}

// VandermondeQuad builds the tensor Legendre Vandermonde matrix on [-1,1]^2
func VandermondeQuad(N int, R, S []float64) *mat.Dense {
	Np := len(R)
	V := mat.NewDense(Np, (N+1)*(N+1), nil)
	col := make([]float64, Np)

	sk := 0
	for i := 0; i <= N; i++ {
		pr := JacobiP(R, 0, 0, i)
		for j := 0; j <= N; j++ {
			ps := JacobiP(S, 0, 0, j)
			for n := range col {
				col[n] = pr[n] * ps[n]
			}
			V.SetCol(sk, col)
			sk++
		}
	}
	return V
}

// VandermondeHex builds the tensor Legendre Vandermonde matrix on [-1,1]^3
func VandermondeHex(N int, R, S, T []float64) *mat.Dense {
	Np := len(R)
	V := mat.NewDense(Np, (N+1)*(N+1)*(N+1), nil)
	col := make([]float64, Np)

	sk := 0
	for i := 0; i <= N; i++ {
		pr := JacobiP(R, 0, 0, i)
		for j := 0; j <= N; j++ {
			ps := JacobiP(S, 0, 0, j)
			for k := 0; k <= N; k++ {
				pt := JacobiP(T, 0, 0, k)
				for n := range col {
					col[n] = pr[n] * ps[n] * pt[n]
				}
				V.SetCol(sk, col)
				sk++
			}
		}
	}
	return V
}

// VandermondePrism builds the Vandermonde matrix of a triangle x line
// prism: (R,S) on the bi-unit triangle, T on [-1,1]
func VandermondePrism(N int, R, S, T []float64) *mat.Dense {
	Np := len(R)
	V := mat.NewDense(Np, (N+1)*(N+2)/2*(N+1), nil)
	col := make([]float64, Np)

	sk := 0
	for i := 0; i <= N; i++ {
		for j := 0; j <= N-i; j++ {
			ptri := Simplex2DP(R, S, i, j)
			for k := 0; k <= N; k++ {
				pt := JacobiP(T, 0, 0, k)
				for n := range col {
					col[n] = ptri[n] * pt[n]
				}
				V.SetCol(sk, col)
				sk++
			}
		}
	}
	return V
}
