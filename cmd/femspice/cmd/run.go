package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/femspice/internal/logger"
	"github.com/edp1096/femspice/pkg/netlist"
	"github.com/edp1096/femspice/pkg/simulation"
)

var (
	runJSON bool
	runPlot string
)

var runCmd = &cobra.Command{
	Use:   "run <request.json|deck.cir>",
	Short: "Simulate a pre-translated netlist",
	Long: `Simulate a netlist that is already named and node-resolved: either a JSON
request with mode, components and optional step_time/end_time (seconds), or a
SPICE deck (.cir, .sp, .net) with an .op or .tran card.

Examples:
  femspice run request.json
  femspice run rc.cir --plot rc.png`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the result as JSON")
	runCmd.Flags().StringVar(&runPlot, "plot", "", "write a transient plot (.png, .svg, .pdf)")
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]

	req, err := readRequest(path)
	if err != nil {
		return err
	}

	orch, err := newOrchestrator()
	if err != nil {
		return err
	}
	out, err := orch.Run(cmd.Context(), *req)
	if err != nil {
		return err
	}

	return report(cmd, out, runJSON, runPlot, path)
}

func readRequest(path string) (*simulation.SimulationRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return simulation.DecodeRequest(f)

	case ".cir", ".sp", ".net", ".spice":
		deck, err := netlist.ParseDeck(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", netlist.ErrInvalidNetlist, path, err)
		}
		logger.Info("deck %q: %d elements", deck.Title, len(deck.Elements))

		req := &simulation.SimulationRequest{
			Mode:       simulation.ModeDC,
			Components: netlist.FromEngine(deck.Elements),
		}
		if deck.Analysis.Mode == netlist.AnalysisTran {
			req.Mode = simulation.ModeTransient
			req.StepTime = deck.Analysis.Step
			req.EndTime = deck.Analysis.End
		}
		return req, nil
	}

	return nil, badUsage("%s: unknown request format (want .json or a .cir deck)", path)
}
