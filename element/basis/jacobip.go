package basis

import (
	"math"
)

// JacobiP evaluates the normalized Jacobi polynomial of type (alpha,beta) at points x for order n
func JacobiP(x []float64, alpha, beta float64, n int) []float64 {
	Np := len(x)
	P := make([]float64, Np)

	// Initial values P_0(x) and P_1(x)
	gamma0 := math.Pow(2, alpha+beta+1) / (alpha + beta + 1) *
		math.Gamma(alpha+1) * math.Gamma(beta+1) / math.Gamma(alpha+beta+1)

	for i := range P {
		P[i] = 1.0 / math.Sqrt(gamma0)
	}

	if n == 0 {
		return P
	}

	gamma1 := (alpha + 1) * (beta + 1) / (alpha + beta + 3) * gamma0
	Pold := P
	P = make([]float64, Np)
	for i := range P {
		P[i] = ((alpha+beta+2)*x[i]/2 + (alpha-beta)/2) / math.Sqrt(gamma1)
	}

	if n == 1 {
		return P
	}

	// Three term recurrence for higher orders
	aold := 2.0 / (2.0 + alpha + beta) * math.Sqrt((alpha+1)*(beta+1)/(alpha+beta+3))

	for i := 1; i < n; i++ {
		fi := float64(i)
		h1 := 2*fi + alpha + beta
		anew := 2.0 / (h1 + 2) * math.Sqrt((fi+1)*(fi+1+alpha+beta)*
			(fi+1+alpha)*(fi+1+beta)/(h1+1)/(h1+3))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2)

		Pnew := make([]float64, Np)
		for j := range Pnew {
			Pnew[j] = 1 / anew * (-aold*Pold[j] + (x[j]-bnew)*P[j])
		}

		Pold, P = P, Pnew
		aold = anew
	}

	return P
}

// JacobiPSingle evaluates Jacobi polynomial at a single point
func JacobiPSingle(x, alpha, beta float64, n int) float64 {
	xArr := []float64{x}
	result := JacobiP(xArr, alpha, beta, n)
	return result[0]
}
