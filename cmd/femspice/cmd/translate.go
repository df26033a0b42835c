package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/edp1096/femspice/pkg/diagram"
	"github.com/edp1096/femspice/pkg/netlist"
	"github.com/edp1096/femspice/pkg/simulation"
)

var (
	transJSON bool
	transMode string
	transStep string
	transEnd  string
)

var translateCmd = &cobra.Command{
	Use:   "translate <diagram>",
	Short: "Print the netlist a diagram translates to",
	Long: `Resolve nets and component names without simulating, then print the
pin to net map, the component names and the SPICE deck.

Examples:
  femspice translate divider.json
  femspice translate rc.yaml --mode transient --end 5m > rc.cir
  femspice translate divider.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().BoolVar(&transJSON, "json", false, "print the translation as JSON")
	translateCmd.Flags().StringVarP(&transMode, "mode", "m", "dc", "analysis card: dc or transient")
	translateCmd.Flags().StringVar(&transStep, "step", "", "transient step time for the .tran card")
	translateCmd.Flags().StringVar(&transEnd, "end", "", "transient end time for the .tran card")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	d, err := diagram.Load(args[0])
	if err != nil {
		return err
	}

	orch, err := newOrchestrator()
	if err != nil {
		return err
	}
	tr, err := orch.Translate(d)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if transJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tr)
	}

	an, err := deckAnalysis()
	if err != nil {
		return err
	}
	units, err := cfg.UnitTable()
	if err != nil {
		return err
	}
	elements, err := netlist.NewAssembler(units).Assemble(tr.Elements)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Nets:")
	pins := make([]string, 0, len(tr.Nets))
	for pin := range tr.Nets {
		pins = append(pins, pin)
	}
	sort.Strings(pins)
	for _, pin := range pins {
		fmt.Fprintf(w, "  %-20s -> %s\n", pin, tr.Nets[pin])
	}

	fmt.Fprintln(w, "\nComponents:")
	ids := make([]string, 0, len(tr.Names))
	for id := range tr.Names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %-20s -> %s\n", id, tr.Names[id])
	}
	for _, s := range tr.Skipped {
		fmt.Fprintf(w, "  %-20s -> (skipped, type %s)\n", s.ComponentID, s.Type)
	}

	fmt.Fprintln(w, "\nDeck:")
	return netlist.WriteDeck(w, filepath.Base(args[0]), elements, an)
}

func deckAnalysis() (netlist.Analysis, error) {
	mode, err := simulation.ParseMode(transMode)
	if err != nil {
		return netlist.Analysis{}, err
	}
	if mode == simulation.ModeDC {
		return netlist.Analysis{Mode: netlist.AnalysisOP}, nil
	}

	defStep, defEnd, err := cfg.Window()
	if err != nil {
		return netlist.Analysis{}, err
	}
	step, err := optionalTime("step", transStep)
	if err != nil {
		return netlist.Analysis{}, err
	}
	end, err := optionalTime("end", transEnd)
	if err != nil {
		return netlist.Analysis{}, err
	}
	if step == 0 {
		step = defStep
	}
	if end == 0 {
		end = defEnd
	}
	return netlist.Analysis{Mode: netlist.AnalysisTran, Step: step, End: end}, nil
}
