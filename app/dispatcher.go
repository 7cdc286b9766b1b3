package app

import (
	"fmt"
	"math"

	"gopower/adapters/solver"
	"gopower/domain/core"
	"gopower/domain/power"
	"gopower/ports"
)

// SolveRequest is the single engine boundary: a test identifier, the
// quantity to solve for, and the study parameters.
type SolveRequest struct {
	TestID     power.TestID          `json:"test_id"`
	Mode       power.Mode            `json:"mode"`
	Parameters power.StudyParameters `json:"parameters"`
}

// Dispatcher validates requests against the registry, resolves effect
// sizes, invokes the solver chain, rounds and inflates sample sizes, and
// packages diagnostics. It holds no mutable state; solves are pure.
type Dispatcher struct {
	registry power.Registry
	solvers  map[power.TestID]ports.FamilySolver
}

// NewDispatcher wires the closed solver set, one variant per catalog
// entry. The assurance defaults supply the Monte Carlo draw count and
// base seed used when a request omits them.
func NewDispatcher(assurance solver.AssuranceDefaults) *Dispatcher {
	return &Dispatcher{
		registry: power.NewRegistry(),
		solvers: map[power.TestID]ports.FamilySolver{
			power.TestTwoSampleT:     solver.NewTTest(solver.TwoSampleT),
			power.TestOneSampleT:     solver.NewTTest(solver.OneSampleT),
			power.TestPairedT:        solver.NewTTest(solver.PairedT),
			power.TestOneWayANOVA:    solver.NewANOVA(),
			power.TestTwoProportionZ: solver.NewTwoProportion(),
			power.TestOneProportionZ: solver.NewOneProportion(),
			power.TestMannWhitney:    solver.NewMannWhitney(),
			power.TestWilcoxon:       solver.NewWilcoxon(),
			power.TestKruskalWallis:  solver.NewKruskalWallis(),
			power.TestFishersExact:   solver.NewExactTable(),
			power.TestLogRank:        solver.NewLogRank(),
			power.TestClusterT:       solver.NewClusterTwoSample(),
			power.TestRepeatedANOVA:  solver.NewRepeatedMeasures(),
			power.TestAssurance:      solver.NewAssurance(assurance),
		},
	}
}

// Registry exposes the read-only catalog for presentation layers.
func (d *Dispatcher) Registry() power.Registry {
	return d.registry
}

// Solve runs one calculation end to end.
func (d *Dispatcher) Solve(req SolveRequest) (*power.CalculationResult, error) {
	spec, err := d.registry.Lookup(req.TestID)
	if err != nil {
		return nil, err
	}
	mode, err := power.ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	fam, ok := d.solvers[req.TestID]
	if !ok {
		return nil, fmt.Errorf("%w: no solver bound for %q", core.ErrUnknownTest, req.TestID)
	}

	p := req.Parameters
	diags, err := validateParameters(mode, p)
	if err != nil {
		return nil, err
	}

	var effect power.EffectSize
	if mode != power.ModeMDES {
		effect, err = fam.ResolveEffectSize(p)
		if err != nil {
			return nil, err
		}
	}

	sol, err := fam.Solve(mode, p, effect)
	if err != nil {
		return nil, err
	}

	result := d.assemble(spec, mode, p, sol)
	result.Diagnostics = append(diags, result.Diagnostics...)
	d.cellCountDiagnostics(spec, p, result)

	if err := result.RangeCheck(); err != nil {
		return nil, err
	}
	return result, nil
}

// validateParameters enforces the mode-independent invariants and the
// presence of the fixed quantities the mode requires.
func validateParameters(mode power.Mode, p power.StudyParameters) ([]power.Diagnostic, error) {
	var diags []power.Diagnostic

	if p.Alpha <= 0 || p.Alpha >= 1 {
		return nil, core.NewDomainError("alpha", p.Alpha, "significance level must be strictly between 0 and 1")
	}
	if p.Alpha < 0.001 || p.Alpha > 0.20 {
		diags = append(diags, power.Diagnostic{
			Code:    power.WarningUnusualAlpha,
			Message: fmt.Sprintf("alpha %g is outside the conventional [0.001, 0.20] range", p.Alpha),
		})
	}
	if p.Ratio < 0 {
		return nil, core.NewDomainError("ratio", p.Ratio, "allocation ratio must be positive")
	}
	if p.Dropout < 0 || p.Dropout >= 1 {
		return nil, core.NewDomainError("dropout", p.Dropout, "dropout rate must be in [0, 1)")
	}
	if p.Dropout > 0.5 {
		diags = append(diags, power.Diagnostic{
			Code:    power.WarningHighDropout,
			Message: fmt.Sprintf("dropout rate %g inflates the sample substantially; confirm the assumption", p.Dropout),
		})
	}

	if p.Power != nil && (*p.Power <= 0 || *p.Power >= 1) {
		return nil, core.NewDomainError("power", *p.Power, "power must be strictly between 0 and 1")
	}
	if p.N1 != nil && *p.N1 < 2 {
		return nil, core.NewDomainError("n1", float64(*p.N1), "sample size must be at least 2")
	}

	switch mode {
	case power.ModeN:
		if p.Power == nil {
			return nil, core.NewMissingParameterError("power")
		}
	case power.ModePower:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
	case power.ModeMDES:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		if p.Power == nil {
			return nil, core.NewMissingParameterError("power")
		}
	}

	if p.Objective == power.NonInferiority || p.Objective == power.Equivalence {
		diags = append(diags, power.Diagnostic{
			Code:    power.WarningObjectiveOneSided,
			Message: fmt.Sprintf("%s objective tested one-sided at alpha %g", p.Objective, p.Alpha),
		})
	}
	if p.Objective == power.Equivalence {
		diags = append(diags, power.Diagnostic{
			Code:    power.WarningEquivalenceApprox,
			Message: "equivalence power uses the symmetric two-one-sided-tests approximation",
		})
	}
	return diags, nil
}

// assemble rounds the continuous solution up to whole subjects and
// applies dropout inflation.
func (d *Dispatcher) assemble(spec power.TestSpec, mode power.Mode, p power.StudyParameters, sol *power.Solution) *power.CalculationResult {
	result := &power.CalculationResult{
		ID:          core.NewID(),
		TestID:      spec.ID,
		Mode:        mode,
		Power:       sol.Power,
		EffectSize:  sol.Effect,
		Diagnostics: sol.Diagnostics,
		Clusters:    sol.Clusters,
		Echo:        p,
	}

	switch {
	case spec.TwoArm:
		result.N1 = ceilN(sol.N1)
		result.N2 = ceilN(sol.N2)
		result.TotalN = result.N1 + result.N2
	case sol.N1 > 0 && sol.TotalN > sol.N1:
		// ANOVA-family: per-group convention, total is a whole multiple.
		result.N1 = ceilN(sol.N1)
		result.TotalN = result.N1 * int(math.Round(sol.TotalN/sol.N1))
	default:
		result.N1 = ceilN(sol.TotalN)
		result.TotalN = result.N1
	}

	if p.Dropout > 0 {
		result.AdjustedN = ceilN(float64(result.TotalN) / (1 - p.Dropout))
	}
	return result
}

// cellCountDiagnostics attaches the expected-cell-count warnings for
// proportion-based tests at the 5 and 10 thresholds.
func (d *Dispatcher) cellCountDiagnostics(spec power.TestSpec, p power.StudyParameters, result *power.CalculationResult) {
	if spec.Measure != power.MeasureCohenH || p.P1 == nil || p.P2 == nil {
		return
	}
	n1, n2 := float64(result.N1), float64(result.N2)
	cells := []float64{
		n1 * *p.P1, n1 * (1 - *p.P1),
	}
	if spec.TwoArm {
		cells = append(cells, n2**p.P2, n2*(1-*p.P2))
	} else {
		cells = append(cells, n1**p.P2, n1*(1-*p.P2))
	}

	minCell := math.Inf(1)
	for _, c := range cells {
		if c < minCell {
			minCell = c
		}
	}
	switch {
	case minCell < power.CellCountSerious:
		result.Diagnostics = append(result.Diagnostics, power.Diagnostic{
			Code:    power.WarningLowExpectedCell5,
			Message: fmt.Sprintf("smallest expected cell count %.1f is below %d; the normal approximation is unreliable", minCell, power.CellCountSerious),
		})
	case minCell < power.CellCountMild:
		result.Diagnostics = append(result.Diagnostics, power.Diagnostic{
			Code:    power.WarningLowExpectedCell10,
			Message: fmt.Sprintf("smallest expected cell count %.1f is below %d; interpret with caution", minCell, power.CellCountMild),
		})
	}
}

func ceilN(x float64) int {
	return int(math.Ceil(x - 1e-9))
}
