package solver

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution helpers over gonum. These provide the unified access point
// for every quantile/CDF the solvers need, so the inversion code never
// constructs distributions inline.

// normalCDF is the standard normal cumulative distribution function.
func normalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// normalQuantile is the standard normal inverse CDF.
func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// tQuantile is the central Student's t inverse CDF.
func tQuantile(p, df float64) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p)
}

// fQuantile is the central F inverse CDF.
func fQuantile(p, df1, df2 float64) float64 {
	return distuv.F{D1: df1, D2: df2}.Quantile(p)
}

// fCDF is the central F cumulative distribution function.
func fCDF(x, df1, df2 float64) float64 {
	return distuv.F{D1: df1, D2: df2}.CDF(x)
}

func clamp01(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}
