// Package config loads femspice settings from a TOML file.
//
// Config file locations (priority order):
//  1. $FEMSPICE_CONFIG
//  2. ./femspice.toml
//  3. ~/.config/femspice/config.toml
//
// Every key is optional. Missing keys keep their defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/edp1096/femspice/internal/consts"
	"github.com/edp1096/femspice/internal/logger"
	"github.com/edp1096/femspice/pkg/netlist"
	"github.com/edp1096/femspice/pkg/simulation"
)

type Config struct {
	Simulation  SimulationConfig  `toml:"simulation"`
	Translation TranslationConfig `toml:"translation"`
	Units       UnitsConfig       `toml:"units"`
	Log         LogConfig         `toml:"log"`
}

type SimulationConfig struct {
	StepTime    string  `toml:"step_time"` // SPICE value, e.g. "50us"
	EndTime     string  `toml:"end_time"`
	Timeout     string  `toml:"timeout"` // Go duration, e.g. "10s"
	Temperature float64 `toml:"temperature"`
}

type TranslationConfig struct {
	UnknownComponents string `toml:"unknown_components"` // reject or skip
}

type UnitsConfig struct {
	ExtraPrefixes map[string]float64 `toml:"extra_prefixes"`
}

type LogConfig struct {
	Verbose bool `toml:"verbose"`
}

// Load finds and loads the config file, or returns defaults if none is found.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes a TOML document over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			StepTime:    "50u",
			EndTime:     "30m",
			Timeout:     simulation.DefaultTimeout.String(),
			Temperature: consts.TEMP_C,
		},
		Translation: TranslationConfig{UnknownComponents: string(netlist.RejectUnknown)},
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Simulation.StepTime == "" {
		c.Simulation.StepTime = def.Simulation.StepTime
	}
	if c.Simulation.EndTime == "" {
		c.Simulation.EndTime = def.Simulation.EndTime
	}
	if c.Simulation.Timeout == "" {
		c.Simulation.Timeout = def.Simulation.Timeout
	}
	if c.Translation.UnknownComponents == "" {
		c.Translation.UnknownComponents = def.Translation.UnknownComponents
	}
}

// Validate resolves every value once so errors surface at load time.
func (c *Config) Validate() error {
	if _, _, err := c.Window(); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.UnknownPolicy(); err != nil {
		return err
	}
	if _, err := c.UnitTable(); err != nil {
		return err
	}
	return nil
}

// Window returns the default transient step and end time in seconds.
func (c *Config) Window() (float64, float64, error) {
	step, err := netlist.ParseValue(c.Simulation.StepTime)
	if err != nil || step <= 0 {
		return 0, 0, fmt.Errorf("config simulation.step_time %q: must be a positive time", c.Simulation.StepTime)
	}
	end, err := netlist.ParseValue(c.Simulation.EndTime)
	if err != nil || end <= 0 {
		return 0, 0, fmt.Errorf("config simulation.end_time %q: must be a positive time", c.Simulation.EndTime)
	}
	if step > end {
		return 0, 0, fmt.Errorf("config simulation.step_time %s exceeds end_time %s", c.Simulation.StepTime, c.Simulation.EndTime)
	}
	return step, end, nil
}

func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Simulation.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config simulation.timeout %q: must be a positive duration", c.Simulation.Timeout)
	}
	return d, nil
}

func (c *Config) UnknownPolicy() (netlist.UnknownPolicy, error) {
	p, err := netlist.ParsePolicy(c.Translation.UnknownComponents)
	if err != nil {
		return "", fmt.Errorf("config translation.unknown_components: %w", err)
	}
	return p, nil
}

// UnitTable returns the default table extended with units.extra_prefixes.
func (c *Config) UnitTable() (netlist.UnitTable, error) {
	table := netlist.DefaultUnits()
	for symbol, m := range c.Units.ExtraPrefixes {
		if m <= 0 {
			return netlist.UnitTable{}, fmt.Errorf("config units.extra_prefixes.%s: multiplier must be positive", symbol)
		}
		table = table.WithPrefix(symbol, m)
	}
	return table, nil
}

// Options translates the config into orchestrator options.
func (c *Config) Options(log *logger.Logger) ([]simulation.Option, error) {
	step, end, err := c.Window()
	if err != nil {
		return nil, err
	}
	timeout, err := c.Timeout()
	if err != nil {
		return nil, err
	}
	policy, err := c.UnknownPolicy()
	if err != nil {
		return nil, err
	}
	units, err := c.UnitTable()
	if err != nil {
		return nil, err
	}

	return []simulation.Option{
		simulation.WithLogger(log),
		simulation.WithTimeout(timeout),
		simulation.WithDefaultWindow(step, end),
		simulation.WithUnknownComponents(policy),
		simulation.WithUnits(units),
		simulation.WithTemperature(c.Simulation.Temperature, consts.TNOM_C),
	}, nil
}
