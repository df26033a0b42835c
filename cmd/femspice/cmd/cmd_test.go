package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/femspice/internal/config"
	"github.com/edp1096/femspice/internal/logger"
	"github.com/edp1096/femspice/pkg/netlist"
	"github.com/edp1096/femspice/pkg/simulation"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with no ambient config file.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	home := t.TempDir()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)

	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	}()

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "femspice version test-version-1.0.0")
}

func TestSimulateCmd_RequiresExactlyOneArg(t *testing.T) {
	_, _, err := execute(t, "simulate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSimulateCmd_Flags(t *testing.T) {
	flag := simulateCmd.Flags().Lookup("mode")
	require.NotNil(t, flag)
	assert.Equal(t, "m", flag.Shorthand)
	assert.Equal(t, "dc", flag.DefValue)

	for _, name := range []string{"step", "end", "json", "plot", "timeout"} {
		assert.NotNil(t, simulateCmd.Flags().Lookup(name), name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().ShorthandLookup("v"))
}

func TestSimulateCmd_VoltageDivider(t *testing.T) {
	out, _, err := execute(t, "simulate", "testdata/divider.json")
	require.NoError(t, err)

	assert.Contains(t, out, "V(N1) = 10.000 V")
	assert.Contains(t, out, "V(N2) = 5.000 V")
	assert.Contains(t, out, "I(R1) = 5.000 mA")
	assert.Contains(t, out, "I(R2) = 5.000 mA")
	assert.Contains(t, out, "I(V1) = 5.000 mA")
}

func TestSimulateCmd_JSON(t *testing.T) {
	out, _, err := execute(t, "simulate", "testdata/divider.json", "--json")
	require.NoError(t, err)

	var got simulation.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.DC)
	assert.InDelta(t, 5.0, got.DC.NodeVoltages["N2"], 1e-9)
	require.NotNil(t, got.Translation)
	assert.Equal(t, "R1", got.Translation.Names["ra"])
	assert.Equal(t, "0", got.Translation.Nets["g:top"])
	assert.NotEmpty(t, got.RequestID)
}

func TestSimulateCmd_MissingGround(t *testing.T) {
	_, _, err := execute(t, "simulate", "testdata/noground.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, netlist.ErrMissingGround)
	assert.Equal(t, ExitClientError, exitCode(err))
}

func TestSimulateCmd_TransientWithPlot(t *testing.T) {
	plot := filepath.Join(t.TempDir(), "rc.png")

	out, _, err := execute(t, "simulate", "testdata/rc.yaml",
		"--mode", "transient", "--step", "100us", "--end", "2ms", "--plot", plot)
	require.NoError(t, err)

	assert.Contains(t, out, "Transient analysis (21 time points")
	assert.Contains(t, out, "V(N2)=")

	data, err := os.ReadFile(plot)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestSimulateCmd_PlotIgnoredForDC(t *testing.T) {
	plot := filepath.Join(t.TempDir(), "dc.png")

	_, errOut, err := execute(t, "simulate", "testdata/divider.json", "--plot", plot)
	require.NoError(t, err)
	assert.Contains(t, errOut, "--plot ignored")
	assert.NoFileExists(t, plot)
}

func TestSimulateCmd_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad step", []string{"--mode", "transient", "--step", "fast"}},
		{"negative end", []string{"--mode", "transient", "--end", "-1m"}},
		{"unknown mode", []string{"--mode", "ac"}},
		{"step beyond end", []string{"--mode", "transient", "--step", "1", "--end", "1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"simulate", "testdata/divider.json"}, tt.args...)
			_, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitClientError, exitCode(err))
		})
	}
}

func TestSimulateCmd_MissingFile(t *testing.T) {
	_, _, err := execute(t, "simulate", "testdata/absent.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, exitCode(err))
}

func TestSimulateCmd_ConfigSkipsUnknown(t *testing.T) {
	dir := t.TempDir()

	src, err := os.ReadFile("testdata/divider.json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(src, &doc))
	doc["components"] = append(doc["components"].([]any), map[string]any{
		"id": "d1", "type": "diode", "value": 0,
		"connections": map[string]any{"anode": []any{}, "cathode": []any{}},
	})
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	diagramPath := filepath.Join(dir, "diode.json")
	require.NoError(t, os.WriteFile(diagramPath, data, 0644))

	_, _, err = execute(t, "simulate", diagramPath)
	var unsupported *netlist.UnsupportedComponentTypeError
	require.ErrorAs(t, err, &unsupported)

	configFile := filepath.Join(dir, "femspice.toml")
	require.NoError(t, os.WriteFile(configFile, []byte("[translation]\nunknown_components = \"skip\"\n"), 0644))

	out, _, err := execute(t, "--config", configFile, "simulate", diagramPath)
	require.NoError(t, err)
	assert.Contains(t, out, "V(N2) = 5.000 V")
	assert.Contains(t, out, "Skipped d1")
}

func TestTranslateCmd(t *testing.T) {
	out, _, err := execute(t, "translate", "testdata/divider.json")
	require.NoError(t, err)

	assert.Contains(t, out, "vs:top")
	assert.Contains(t, out, fmt.Sprintf("%-20s -> %s", "g:top", "0"))
	assert.Contains(t, out, fmt.Sprintf("%-20s -> %s", "ra", "R1"))
	assert.Contains(t, out, "* divider.json\n")
	assert.Contains(t, out, "V1 N1 0 DC 10\n")
	assert.Contains(t, out, "R1 N1 N2 1k\n")
	assert.Contains(t, out, "R2 N2 0 1k\n")
	assert.Contains(t, out, ".op\n.end\n")
}

func TestTranslateCmd_TransientCard(t *testing.T) {
	out, _, err := execute(t, "translate", "testdata/rc.yaml", "--mode", "transient", "--end", "5m")
	require.NoError(t, err)
	assert.Contains(t, out, "PV1 N1 0 PULSE(0 5 0 0 0 10m 20m)\n")
	assert.Contains(t, out, "C1 N2 0 1u\n")
	assert.Contains(t, out, ".tran 50u 5m\n")
}

func TestTranslateCmd_JSON(t *testing.T) {
	out, _, err := execute(t, "translate", "testdata/divider.json", "--json")
	require.NoError(t, err)

	var got simulation.Translation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{"vs": "V1", "ra": "R1", "rb": "R2"}, got.Names)
	assert.Len(t, got.Elements, 3)
}

func TestRunCmd_Request(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/request.json")
	require.NoError(t, err)
	assert.Contains(t, out, "V(N2) = 5.000 V")
}

func TestRunCmd_Deck(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/rc.cir", "--json")
	require.NoError(t, err)

	var got simulation.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Transient)
	assert.Equal(t, simulation.ModeTransient, got.Mode)
	assert.Equal(t, 21, got.Transient.Metadata.NumPoints)
	assert.InDelta(t, 100.0, got.Transient.Metadata.StepTimeUS, 1e-9)
	require.Contains(t, got.Transient.Voltages, "N2")
}

func TestRunCmd_SingularDeck(t *testing.T) {
	_, _, err := execute(t, "run", "testdata/singular.cir")
	require.Error(t, err)
	assert.ErrorIs(t, err, simulation.ErrEngine)
	assert.Equal(t, ExitClientError, exitCode(err))
}

func TestRunCmd_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.txt")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, _, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitClientError, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, exitCode(errors.New("disk full")))
	assert.Equal(t, ExitFailure, exitCode(&simulation.TimeoutError{Op: "transient", After: time.Second}))
	assert.Equal(t, ExitClientError, exitCode(&netlist.MissingGroundError{}))
	assert.Equal(t, ExitClientError, exitCode(badUsage("bad flag")))
}
