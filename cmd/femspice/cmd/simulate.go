package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/edp1096/femspice/pkg/diagram"
	"github.com/edp1096/femspice/pkg/netlist"
	"github.com/edp1096/femspice/pkg/simulation"
)

var (
	simMode    string
	simStep    string
	simEnd     string
	simJSON    bool
	simPlot    string
	simTimeout time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <diagram>",
	Short: "Translate and simulate a circuit diagram",
	Long: `Resolve the wires of a diagram into nets, name the components, and solve
the circuit. Diagrams are JSON (.json) or YAML (.yaml, .yml).

Times accept SPICE suffixes: 50u, 50us, 30m, 1.5meg.

Examples:
  femspice simulate divider.json
  femspice simulate rc.yaml --mode transient --step 10u --end 5m --plot rc.png
  femspice simulate divider.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simMode, "mode", "m", "dc", "analysis: dc or transient")
	simulateCmd.Flags().StringVar(&simStep, "step", "", "transient step time (default from config, 50u)")
	simulateCmd.Flags().StringVar(&simEnd, "end", "", "transient end time (default from config, 30m)")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "print the result as JSON")
	simulateCmd.Flags().StringVar(&simPlot, "plot", "", "write a transient plot (.png, .svg, .pdf)")
	simulateCmd.Flags().DurationVar(&simTimeout, "timeout", 0, "solver time limit (default from config, 10s)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	d, err := diagram.Load(args[0])
	if err != nil {
		return err
	}

	mode, err := simulation.ParseMode(simMode)
	if err != nil {
		return err
	}
	step, err := optionalTime("step", simStep)
	if err != nil {
		return err
	}
	end, err := optionalTime("end", simEnd)
	if err != nil {
		return err
	}

	orch, err := newOrchestrator(simulation.WithTimeout(simTimeout))
	if err != nil {
		return err
	}

	out, err := orch.SimulateDiagram(cmd.Context(), d, simulation.Request{Mode: mode, Step: step, End: end})
	if err != nil {
		return err
	}

	return report(cmd, out, simJSON, simPlot, args[0])
}

// optionalTime parses a time flag; empty means unset.
func optionalTime(name, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	v, err := netlist.ParseValue(value)
	if err != nil || v <= 0 {
		return 0, badUsage("--%s %q: must be a positive time such as 50u", name, value)
	}
	return v, nil
}
