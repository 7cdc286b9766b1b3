package solver

import (
	"math"

	"gopower/domain/core"
	"gopower/domain/power"
)

// DesignEffect computes the cluster-randomization inflation factor
// DEFF = 1 + (m-1)*ICC.
func DesignEffect(icc float64, clusterSize int) (float64, error) {
	if icc < 0 || icc >= 1 {
		return 0, core.NewDomainError("icc", icc, "intraclass correlation must be in [0, 1)")
	}
	if clusterSize < 2 {
		return 0, core.NewDomainError("cluster_size", float64(clusterSize), "cluster size must be at least 2")
	}
	return 1 + float64(clusterSize-1)*icc, nil
}

// ClusterTwoSample inflates the individual-level two-sample t solver by
// the design effect and converts subjects to whole clusters per arm.
type ClusterTwoSample struct {
	delegate *TTest
}

// NewClusterTwoSample creates the cluster-randomized adapter.
func NewClusterTwoSample() *ClusterTwoSample {
	return &ClusterTwoSample{delegate: NewTTest(TwoSampleT)}
}

func (s *ClusterTwoSample) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	return s.delegate.ResolveEffectSize(p)
}

func (s *ClusterTwoSample) deff(p power.StudyParameters) (float64, error) {
	if p.ICC == nil {
		return 0, core.NewMissingParameterError("icc")
	}
	return DesignEffect(*p.ICC, p.ClusterSize)
}

func (s *ClusterTwoSample) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
	deff, err := s.deff(p)
	if err != nil {
		return nil, err
	}

	switch mode {
	case power.ModeN:
		sol, err := s.delegate.Solve(power.ModeN, p, effect)
		if err != nil {
			return nil, err
		}
		sol.N1 *= deff
		sol.N2 *= deff
		sol.TotalN = sol.N1 + sol.N2
		sol.Clusters = int(math.Ceil(sol.N1/float64(p.ClusterSize) - roundEps))
		return sol, nil

	case power.ModePower:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		// Clustering shrinks the effective independent sample.
		pw, err := s.delegate.PowerAtN(p, effect, float64(*p.N1)/deff)
		if err != nil {
			return nil, err
		}
		sol := &power.Solution{
			N1:     float64(*p.N1),
			N2:     float64(*p.N1) * p.AllocationRatio(),
			Power:  pw,
			Effect: effect,
		}
		sol.TotalN = sol.N1 + sol.N2
		sol.Clusters = int(math.Ceil(sol.N1/float64(p.ClusterSize) - roundEps))
		return sol, nil

	case power.ModeMDES:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		scaled := p
		eff := int(math.Floor(float64(*p.N1) / deff))
		if eff < 2 {
			eff = 2
		}
		scaled.N1 = &eff
		sol, err := s.delegate.Solve(power.ModeMDES, scaled, effect)
		if err != nil {
			return nil, err
		}
		sol.N1 = float64(*p.N1)
		sol.N2 = sol.N1 * p.AllocationRatio()
		sol.TotalN = sol.N1 + sol.N2
		sol.Clusters = int(math.Ceil(sol.N1/float64(p.ClusterSize) - roundEps))
		return sol, nil
	}
	return nil, core.ErrUnknownMode
}
