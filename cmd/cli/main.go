package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gopower/adapters/solver"
	"gopower/app"
	"gopower/domain/power"
	"gopower/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gopower-cli",
		Short: "Power and sample-size solver for the supported test families",
	}

	rootCmd.AddCommand(
		newTestsCmd(),
		newSolveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newDispatcher builds the engine with the environment's assurance
// defaults, so CLI solves honor the same configuration as the server.
func newDispatcher() (*app.Dispatcher, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.NewDispatcher(solver.AssuranceDefaults{
		Draws: cfg.Solver.DefaultDraws,
		Seed:  cfg.Solver.BaseSeed,
	}), nil
}

func newTestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tests",
		Short: "List the test catalog with effect-size benchmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatcher, err := newDispatcher()
			if err != nil {
				return err
			}
			for _, spec := range dispatcher.Registry().Specs() {
				fmt.Printf("%-26s %-10s %s\n", spec.ID, spec.Family, spec.Description)
				fmt.Printf("%-26s %-10s effect (%s): small %g, medium %g, large %g\n",
					"", "", spec.Measure,
					spec.Benchmarks.Small, spec.Benchmarks.Medium, spec.Benchmarks.Large)
			}
			return nil
		},
	}
}

func newSolveCmd() *cobra.Command {
	var (
		mode     string
		alpha    float64
		sided    string
		targetPw float64
		n1       int
		ratio    float64
		effect   float64
		paramsIn string
	)

	cmd := &cobra.Command{
		Use:   "solve [test-id]",
		Short: "Solve for sample size, power, or minimum detectable effect",
		Long: `Solve one power calculation and print the result as JSON.

Simple studies can be described with flags; designs needing more fields
(proportions, survival, cluster, assurance) accept a JSON parameter
object via --params.

Example: gopower-cli solve two_sample_t --mode n --effect 0.5 --power 0.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := power.StudyParameters{}
			if paramsIn != "" {
				if err := json.Unmarshal([]byte(paramsIn), &params); err != nil {
					return fmt.Errorf("invalid --params JSON: %w", err)
				}
			}
			if alpha != 0 {
				params.Alpha = alpha
			}
			if params.Alpha == 0 {
				params.Alpha = 0.05
			}
			if sided == "one" {
				params.Sidedness = power.OneSided
			}
			if targetPw != 0 {
				params.Power = &targetPw
			}
			if n1 != 0 {
				params.N1 = &n1
			}
			if ratio != 0 {
				params.Ratio = ratio
			}
			if effect != 0 {
				params.Effect = &effect
			}

			dispatcher, err := newDispatcher()
			if err != nil {
				return err
			}
			result, err := dispatcher.Solve(app.SolveRequest{
				TestID:     power.TestID(args[0]),
				Mode:       power.Mode(mode),
				Parameters: params,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "n", "Quantity to solve for: n, power, or mdes")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "Significance level (default 0.05)")
	cmd.Flags().StringVar(&sided, "sided", "two", "Sidedness: two or one")
	cmd.Flags().Float64Var(&targetPw, "power", 0, "Target power for n/mdes modes")
	cmd.Flags().IntVar(&n1, "n1", 0, "Group 1 sample size for power/mdes modes")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "Allocation ratio n2/n1 (default 1)")
	cmd.Flags().Float64Var(&effect, "effect", 0, "Standardized effect size")
	cmd.Flags().StringVar(&paramsIn, "params", "", "Full StudyParameters JSON object")

	return cmd
}
