package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/femspice/internal/logger"
	"github.com/edp1096/femspice/pkg/netlist"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	step, end, err := cfg.Window()
	require.NoError(t, err)
	assert.InDelta(t, 50e-6, step, 1e-18)
	assert.InDelta(t, 30e-3, end, 1e-15)

	timeout, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)

	policy, err := cfg.UnknownPolicy()
	require.NoError(t, err)
	assert.Equal(t, netlist.RejectUnknown, policy)
	assert.Equal(t, 25.0, cfg.Simulation.Temperature)
	assert.False(t, cfg.Log.Verbose)
}

func TestParse(t *testing.T) {
	doc := `
[simulation]
step_time = "10us"
end_time = "5ms"
timeout = "2s"
temperature = 0.0

[translation]
unknown_components = "skip"

[units.extra_prefixes]
T = 1e12

[log]
verbose = true
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	step, end, err := cfg.Window()
	require.NoError(t, err)
	assert.InEpsilon(t, 10e-6, step, 1e-12)
	assert.InEpsilon(t, 5e-3, end, 1e-12)

	timeout, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)
	assert.Equal(t, 0.0, cfg.Simulation.Temperature)
	assert.True(t, cfg.Log.Verbose)

	policy, err := cfg.UnknownPolicy()
	require.NoError(t, err)
	assert.Equal(t, netlist.SkipUnknown, policy)

	table, err := cfg.UnitTable()
	require.NoError(t, err)
	m, ok := table.Multiplier("T")
	require.True(t, ok)
	assert.Equal(t, 1e12, m)

	_, ok = netlist.DefaultUnits().Multiplier("T")
	assert.False(t, ok, "defaults stay untouched")

	opts, err := cfg.Options(logger.Discard())
	require.NoError(t, err)
	assert.Len(t, opts, 6)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("[simulation]\ntimeout = \"1m\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "50u", cfg.Simulation.StepTime)
	assert.Equal(t, "30m", cfg.Simulation.EndTime)
	assert.Equal(t, 25.0, cfg.Simulation.Temperature)

	timeout, err := cfg.Timeout()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, timeout)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "[simulation\n"},
		{"unknown key", "[simulation]\nstep = \"1u\"\n"},
		{"bad step", "[simulation]\nstep_time = \"fast\"\n"},
		{"negative end", "[simulation]\nend_time = \"-1m\"\n"},
		{"step beyond end", "[simulation]\nstep_time = \"1\"\nend_time = \"1m\"\n"},
		{"bad timeout", "[simulation]\ntimeout = \"soon\"\n"},
		{"zero timeout", "[simulation]\ntimeout = \"0s\"\n"},
		{"bad policy", "[translation]\nunknown_components = \"guess\"\n"},
		{"bad prefix", "[units.extra_prefixes]\nX = 0.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "femspice.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nverbose = true\n"), 0644))

	cfg, got, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.True(t, cfg.Log.Verbose)

	_, _, err = LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EnvironmentFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[translation]\nunknown_components = \"skip\"\n"), 0644))
	t.Setenv(EnvConfigPath, path)

	cfg, got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "skip", cfg.Translation.UnknownComponents)
}

func TestLoad_NoFileGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	cfg, path, err := Load()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFindConfigPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(t.TempDir())

	path := filepath.Join(dir, ConfigDirName, "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))

	assert.Equal(t, path, FindConfigPath())
}
