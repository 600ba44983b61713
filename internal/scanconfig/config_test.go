package scanconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikelab/optionscan/internal/contracts"
)

const validYAML = `
meta:
  scan_id: test_scan
  version: "1"
  timezone: America/New_York
dte_windows:
  standard: {min: 30, max: 60, target: 45}
  leap: {min: 180, max: 730, target: 365}
  calendar_front: {min: 20, max: 45, target: 30}
  calendar_back: {min: 50, max: 120, target: 60}
sampling:
  atm_band_pct: 0.05
  min_open_interest: 1
  good_ratio: 0.6
  marginal_ratio: 0.3
liquidity:
  min_open_interest: 10
  max_spread_pct: 0.25
legs:
  delta_target: 0.30
  delta_band: 0.15
  min_strike_width: 1.0
  max_width_to_spot_pct: 0.10
  strangle_otm_pct: 0.05
  condor_wing_width: 5.0
  pmcc_long_delta: 0.70
promotion:
  poor_open_interest: 25
  marginal_open_interest: 100
  min_vega: 0.01
`

func writeParams(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, raw, err := Load(writeParams(t, validYAML))
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	assert.Equal(t, "test_scan", cfg.Meta.ScanID)
	assert.Equal(t, 45, cfg.Windows.Standard.Target)
	assert.Equal(t, 0.05, cfg.Sampling.ATMBandPct)
	assert.Equal(t, int64(10), cfg.Liquidity.MinOpenInterest)
	assert.Equal(t, 0.70, cfg.Legs.PMCCLongDelta)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	yaml := validYAML + "\nextra_section:\n  oops: true\n"
	_, _, err := Load(writeParams(t, yaml))
	require.Error(t, err, "unknown fields must fail the load")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Meta.ScanID)

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Meta.ScanID)

	cfg, err = LoadOrDefault(writeParams(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, "test_scan", cfg.Meta.ScanID)
}

func TestHash(t *testing.T) {
	cfg := Default()

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	hash2, err := Hash(cfg)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2, "hash must be deterministic")

	cfg.Sampling.ATMBandPct = 0.07
	hash3, err := Hash(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash3, "parameter change must change the hash")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "missing scan id",
			mutate: func(c *Config) { c.Meta.ScanID = "" },
			field:  "meta.scan_id",
		},
		{
			name:   "inverted window",
			mutate: func(c *Config) { c.Windows.Standard = contracts.DTEWindow{Min: 60, Max: 30, Target: 45} },
			field:  "dte_windows.standard",
		},
		{
			name:   "target outside window",
			mutate: func(c *Config) { c.Windows.Leap.Target = 1000 },
			field:  "dte_windows.leap",
		},
		{
			name:   "calendar windows overlap",
			mutate: func(c *Config) { c.Windows.CalendarFront.Max = 80 },
			field:  "dte_windows",
		},
		{
			name:   "band too wide",
			mutate: func(c *Config) { c.Sampling.ATMBandPct = 0.9 },
			field:  "sampling.atm_band_pct",
		},
		{
			name:   "grade ratios inverted",
			mutate: func(c *Config) { c.Sampling.MarginalRatio = 0.9 },
			field:  "sampling",
		},
		{
			name:   "spread cap out of range",
			mutate: func(c *Config) { c.Liquidity.MaxSpreadPct = 1.5 },
			field:  "liquidity.max_spread_pct",
		},
		{
			name:   "promotion thresholds inverted",
			mutate: func(c *Config) { c.Promotion.MarginalOpenInterest = 5 },
			field:  "promotion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestWindows_ForStrategy(t *testing.T) {
	w := Default().Windows

	assert.Equal(t, w.Standard, w.ForStrategy(contracts.StrategyLongCall))
	assert.Equal(t, w.Standard, w.ForStrategy(contracts.StrategyIronCondor))
	assert.Equal(t, w.Leap, w.ForStrategy(contracts.StrategyLeapCall))
	assert.Equal(t, w.Leap, w.ForStrategy(contracts.StrategyLeapPut))
	assert.Equal(t, w.CalendarFront, w.ForStrategy(contracts.StrategyCalendar))
	assert.Equal(t, w.CalendarFront, w.ForStrategy(contracts.StrategyPMCC))
}
