package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/edp1096/femspice/internal/logger"
	"github.com/edp1096/femspice/pkg/engine"
	"github.com/edp1096/femspice/pkg/engine/mna"
	"github.com/edp1096/femspice/pkg/render"
	"github.com/edp1096/femspice/pkg/result"
	"github.com/edp1096/femspice/pkg/simulation"
	"github.com/edp1096/femspice/pkg/util"
)

// engineFactory is replaced in tests.
var engineFactory = func() engine.Engine { return mna.New() }

// report prints out and writes the optional plot.
func report(cmd *cobra.Command, out *simulation.Outcome, asJSON bool, plotPath, source string) error {
	w := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		switch {
		case out.DC != nil:
			printDC(w, out.DC)
		case out.Transient != nil:
			printTransient(w, out.Transient)
		}
		if tr := out.Translation; tr != nil {
			for _, s := range tr.Skipped {
				fmt.Fprintf(w, "\nSkipped %s (unsupported type %s)\n", s.ComponentID, s.Type)
			}
		}
	}

	if plotPath == "" {
		return nil
	}
	if out.Transient == nil {
		logger.Warn("--plot ignored: %s analysis has no time series", out.Mode)
		return nil
	}
	return writePlot(plotPath, out.Transient, filepath.Base(source))
}

func writePlot(path string, tr *result.Transient, title string) error {
	format, err := render.FormatFromPath(path)
	if err != nil {
		return badUsage("--plot %s: %v", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Transient(f, tr, render.Options{Title: title, Format: format}); err != nil {
		f.Close()
		return fmt.Errorf("render plot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("plot written to %s", path)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printDC(w io.Writer, dc *result.DC) {
	fmt.Fprintln(w, "Operating point:")
	fmt.Fprintln(w, "================")

	fmt.Fprintln(w, "\nNode voltages:")
	for _, name := range sortedKeys(dc.NodeVoltages) {
		fmt.Fprintf(w, "V(%s) = %s\n", name, util.FormatValueFactor(dc.NodeVoltages[name], "V"))
	}

	fmt.Fprintln(w, "\nComponent currents:")
	for _, name := range sortedKeys(dc.ComponentCurrents) {
		fmt.Fprintf(w, "I(%s) = %s\n", name, util.FormatOptional(dc.ComponentCurrents[name], "A"))
	}
}

func printTransient(w io.Writer, tr *result.Transient) {
	fmt.Fprintf(w, "Transient analysis (%d time points, step %s, end %s):\n",
		tr.Metadata.NumPoints,
		util.FormatValueFactor(tr.Metadata.StepTimeUS*1e-6, "s"),
		util.FormatValueFactor(tr.Metadata.EndTimeUS*1e-6, "s"))
	fmt.Fprintln(w, "Time        Node voltages")
	fmt.Fprintln(w, "------------------------------------------------")

	nodes := tr.Nodes()
	for i, t := range tr.Time {
		fmt.Fprintf(w, "%9s  ", util.FormatValueFactor(t, "s"))
		for _, node := range nodes {
			fmt.Fprintf(w, "V(%s)=%s  ", node, util.FormatValueFactor(tr.Voltages[node][i], "V"))
		}
		fmt.Fprintln(w)
	}
}
