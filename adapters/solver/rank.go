package solver

import (
	"fmt"
	"math"

	"gopower/domain/core"
	"gopower/domain/power"
	"gopower/ports"
)

// rankDelegate is the parametric counterpart a rank adapter rescales.
type rankDelegate interface {
	ports.FamilySolver
	ports.ContinuousPower
}

// RankAdapter rescales a parametric solver by the fixed asymptotic
// relative efficiency constant. Solving for N divides the parametric N by
// the constant; solving for power deflates effective N by it first. The
// constant is owned by the registry and deliberately not recomputed.
type RankAdapter struct {
	name     string
	delegate rankDelegate

	// twoArm delegates report a comparison group sized by the
	// allocation ratio.
	twoArm bool
	// multiGroup delegates take a total N in PowerAtN and report
	// per-group N1 with TotalN = N1 * groups.
	multiGroup bool
}

// NewMannWhitney creates the Mann-Whitney U adapter over the two-sample t solver.
func NewMannWhitney() *RankAdapter {
	return &RankAdapter{name: "mann_whitney", delegate: NewTTest(TwoSampleT), twoArm: true}
}

// NewWilcoxon creates the Wilcoxon signed-rank adapter over the paired t solver.
func NewWilcoxon() *RankAdapter {
	return &RankAdapter{name: "wilcoxon", delegate: NewTTest(PairedT)}
}

// NewKruskalWallis creates the Kruskal-Wallis adapter over the ANOVA solver.
func NewKruskalWallis() *RankAdapter {
	return &RankAdapter{name: "kruskal_wallis", delegate: NewANOVA(), multiGroup: true}
}

func (s *RankAdapter) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	return s.delegate.ResolveEffectSize(p)
}

func (s *RankAdapter) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
	switch mode {
	case power.ModeN:
		sol, err := s.delegate.Solve(power.ModeN, p, effect)
		if err != nil {
			return nil, err
		}
		// Inflate the rounded parametric N by 1/ARE.
		switch {
		case sol.N2 > 0:
			sol.N1 = float64(ceilN(sol.N1)) / power.AREFactor
			sol.N2 = float64(ceilN(sol.N2)) / power.AREFactor
			sol.TotalN = sol.N1 + sol.N2
		case s.multiGroup:
			groups := sol.TotalN / sol.N1
			sol.N1 = float64(ceilN(sol.N1)) / power.AREFactor
			sol.TotalN = sol.N1 * groups
		default:
			sol.N1 = float64(ceilN(sol.N1)) / power.AREFactor
			sol.TotalN = sol.N1
		}
		s.flagSmallSample(sol, sol.N1)
		return sol, nil

	case power.ModePower:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		effective := float64(*p.N1) * power.AREFactor
		if s.multiGroup {
			// The delegate's power evaluation runs on the total across groups.
			effective *= float64(p.Groups)
		}
		pw, err := s.delegate.PowerAtN(p, effect, effective)
		if err != nil {
			return nil, err
		}
		sol := s.solution(p, float64(*p.N1), pw, effect)
		s.flagSmallSample(sol, float64(*p.N1))
		return sol, nil

	case power.ModeMDES:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		// Deflate effective N before the parametric MDES search, the
		// conservative direction for rank tests.
		scaled := p
		eff := int(math.Floor(float64(*p.N1) * power.AREFactor))
		if eff < 2 {
			eff = 2
		}
		scaled.N1 = &eff
		sol, err := s.delegate.Solve(power.ModeMDES, scaled, effect)
		if err != nil {
			return nil, err
		}
		s.flagSmallSample(sol, float64(*p.N1))
		return sol, nil
	}
	return nil, core.ErrUnknownMode
}

// solution shapes the result for the adapter's design without another
// pass through the delegate.
func (s *RankAdapter) solution(p power.StudyParameters, n1, pw float64, effect power.EffectSize) *power.Solution {
	sol := &power.Solution{N1: n1, TotalN: n1, Power: pw, Effect: effect}
	switch {
	case s.twoArm:
		sol.N2 = n1 * p.AllocationRatio()
		sol.TotalN = sol.N1 + sol.N2
	case s.multiGroup:
		sol.TotalN = n1 * float64(p.Groups)
	}
	return sol
}

// flagSmallSample surfaces the accuracy limit of the ARE rescaling.
func (s *RankAdapter) flagSmallSample(sol *power.Solution, n float64) {
	if n < power.SmallSampleThreshold {
		sol.AddDiagnostic(power.WarningSmallSampleApprox,
			fmt.Sprintf("%s approximation degrades below %d subjects per group", s.name, power.SmallSampleThreshold))
	}
}

// ExactTable reuses the two-proportion normal-approximation solver for
// the exact 2x2-table test and applies the fixed heuristic multipliers.
// Results are labelled as heuristic approximations, never silently.
type ExactTable struct {
	delegate *TwoProportion
}

// NewExactTable creates the exact 2x2-table adapter.
func NewExactTable() *ExactTable {
	return &ExactTable{delegate: NewTwoProportion()}
}

func (s *ExactTable) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	return s.delegate.ResolveEffectSize(p)
}

func (s *ExactTable) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
	switch mode {
	case power.ModeN:
		sol, err := s.delegate.Solve(power.ModeN, p, effect)
		if err != nil {
			return nil, err
		}
		sol.N1 *= power.ExactTestNFactor
		sol.N2 *= power.ExactTestNFactor
		sol.TotalN = sol.N1 + sol.N2
		s.flagHeuristic(sol)
		return sol, nil

	case power.ModePower:
		sol, err := s.delegate.Solve(power.ModePower, p, effect)
		if err != nil {
			return nil, err
		}
		sol.Power = clamp01(sol.Power * power.ExactTestPowerFactor)
		s.flagHeuristic(sol)
		return sol, nil

	case power.ModeMDES:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		// Apply the N multiplier in reverse so the detectable effect
		// stays on the conservative side.
		scaled := p
		eff := int(math.Floor(float64(*p.N1) / power.ExactTestNFactor))
		if eff < 2 {
			eff = 2
		}
		scaled.N1 = &eff
		sol, err := s.delegate.Solve(power.ModeMDES, scaled, effect)
		if err != nil {
			return nil, err
		}
		s.flagHeuristic(sol)
		return sol, nil
	}
	return nil, core.ErrUnknownMode
}

func (s *ExactTable) flagHeuristic(sol *power.Solution) {
	sol.AddDiagnostic(power.WarningHeuristic,
		fmt.Sprintf("exact-test results use fixed heuristic multipliers (n x%.2f, power x%.2f)",
			power.ExactTestNFactor, power.ExactTestPowerFactor))
}
