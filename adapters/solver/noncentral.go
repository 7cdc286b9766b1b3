package solver

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// Noncentral t and F cumulative distribution functions. gonum ships only
// the central forms, so these are built on its regularized incomplete
// beta. The t CDF follows Lenth's series (algorithm AS 243), the F CDF
// the Poisson-weighted mixture of incomplete beta terms.

const (
	nctErrMax  = 1e-12
	nctMaxIter = 1000
)

func lnBeta(a, b float64) float64 {
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	return la + lb - lab
}

// noncentralTCDF returns P(T <= t) for a noncentral t distribution with
// df degrees of freedom and noncentrality parameter delta.
func noncentralTCDF(t, df, delta float64) float64 {
	if df <= 0 {
		return math.NaN()
	}
	tt, del := t, delta
	negdel := false
	if t < 0 {
		negdel = true
		tt, del = -t, -delta
	}

	var tnc float64
	x := tt * tt / (tt*tt + df)
	if x > 0 {
		lambda := del * del
		p := 0.5 * math.Exp(-0.5*lambda)
		q := math.Sqrt(2/math.Pi) * p * del
		s := 0.5 - p
		if s < 1e-7 {
			s = -0.5 * math.Expm1(-0.5*lambda)
		}
		a := 0.5
		b := 0.5 * df
		rxb := math.Pow(1-x, b)
		albeta := lnBeta(a, b)
		xodd := mathext.RegIncBeta(a, b, x)
		godd := 2 * rxb * math.Exp(a*math.Log(x)-albeta)
		xeven := 1 - rxb
		geven := b * x * rxb
		tnc = p*xodd + q*xeven

		for it := 1; it <= nctMaxIter; it++ {
			a++
			xodd -= godd
			xeven -= geven
			godd *= x * (a + b - 1) / a
			geven *= x * (a + b - 0.5) / (a + 0.5)
			p *= lambda / (2 * float64(it))
			q *= lambda / (2*float64(it) + 1)
			s -= p
			tnc += p*xodd + q*xeven
			if errbd := 2 * s * (xodd - godd); errbd <= nctErrMax {
				break
			}
		}
	}

	tnc += normalCDF(-del)
	if negdel {
		tnc = 1 - tnc
	}
	return clamp01(tnc)
}

// noncentralFCDF returns P(F <= x) for a noncentral F distribution with
// df1/df2 degrees of freedom and noncentrality parameter lambda.
func noncentralFCDF(x, df1, df2, lambda float64) float64 {
	if x <= 0 {
		return 0
	}
	if lambda < 1e-12 {
		return distuv.F{D1: df1, D2: df2}.CDF(x)
	}
	half := lambda / 2
	if half > 700 {
		// Poisson weights underflow; fall back to Patnaik's central-F
		// approximation, adequate at these noncentralities.
		h := (df1 + lambda) * (df1 + lambda) / (df1 + 2*lambda)
		return clamp01(fCDF(x*df1/(df1+lambda), h, df2))
	}

	y := df1 * x / (df1*x + df2)
	w := math.Exp(-half)
	sum := 0.0
	cum := 0.0
	for j := 0; j < nctMaxIter*10; j++ {
		if j > 0 {
			w *= half / float64(j)
		}
		sum += w * mathext.RegIncBeta(df1/2+float64(j), df2/2, y)
		cum += w
		if 1-cum < nctErrMax && float64(j) > half {
			break
		}
	}
	return clamp01(sum)
}
