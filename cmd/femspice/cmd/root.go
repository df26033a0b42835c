package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/femspice/internal/config"
	"github.com/edp1096/femspice/internal/logger"
	"github.com/edp1096/femspice/pkg/simulation"
)

// Exit codes
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitClientError = 2
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "femspice",
	Short: "Schematic diagram to SPICE netlist translator and simulator",
	Long: `Translate a drawn circuit diagram (components plus wires) into a SPICE
netlist, solve its DC operating point or transient response, and print the
node voltages and component currents.

Examples:
  femspice simulate divider.json                      # DC operating point
  femspice simulate rc.yaml --mode transient --end 5m # Transient response
  femspice translate divider.json                     # Nets, names and deck
  femspice run request.json                           # Pre-translated request
  femspice run rc.cir --plot rc.png                   # SPICE deck`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitCode(err)
	}
	return ExitOK
}

func exitCode(err error) int {
	var usage *usageError
	if simulation.IsClientError(err) || errors.As(err, &usage) {
		return ExitClientError
	}
	return ExitFailure
}

// usageError marks bad flag values.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func badUsage(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $FEMSPICE_CONFIG, ./femspice.toml, ~/.config/femspice/config.toml)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var (
		err  error
		path string
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetVerbose(verbose || cfg.Log.Verbose)
	if path != "" {
		logger.Debug("config: %s", path)
	}
	return nil
}

// newOrchestrator builds an orchestrator from the loaded config.
func newOrchestrator(extra ...simulation.Option) (*simulation.Orchestrator, error) {
	opts, err := cfg.Options(logger.Default())
	if err != nil {
		return nil, err
	}
	return simulation.New(engineFactory(), append(opts, extra...)...), nil
}
