package scanconfig

import (
	"github.com/strikelab/optionscan/internal/contracts"
)

// Config is the full scan parameter set, loaded from YAML.
// Every numeric threshold the pipeline applies lives here so runs are
// reproducible from (worklist, params, as-of date) alone.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Windows   Windows   `yaml:"dte_windows" json:"dte_windows"`
	Sampling  Sampling  `yaml:"sampling" json:"sampling"`
	Liquidity Liquidity `yaml:"liquidity" json:"liquidity"`
	Legs      Legs      `yaml:"legs" json:"legs"`
	Promotion Promotion `yaml:"promotion" json:"promotion"`
}

// Meta identifies the parameter set
type Meta struct {
	ScanID   string `yaml:"scan_id" json:"scan_id"`
	Version  string `yaml:"version" json:"version"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// Windows holds the DTE policy per strategy class
type Windows struct {
	// Standard near-term window for most strategies
	Standard contracts.DTEWindow `yaml:"standard" json:"standard"`

	// Leap window for long-dated strategies (min typically >= 180)
	Leap contracts.DTEWindow `yaml:"leap" json:"leap"`

	// Calendar front/back windows for two-expiration strategies
	CalendarFront contracts.DTEWindow `yaml:"calendar_front" json:"calendar_front"`
	CalendarBack  contracts.DTEWindow `yaml:"calendar_back" json:"calendar_back"`
}

// ForStrategy returns the primary DTE window for a strategy
func (w Windows) ForStrategy(s contracts.StrategyType) contracts.DTEWindow {
	switch {
	case s.IsLEAP():
		return w.Leap
	case s.Family() == contracts.FamilyCalendar:
		// Preflight and sampling key off the front expiration;
		// the back window applies only during deep exploration
		return w.CalendarFront
	default:
		return w.Standard
	}
}

// Sampling holds Phase 1 parameters.
// The single-expiration sample is a deliberate precision/speed
// trade-off; its false-negative rate is unmeasured upstream, so the
// band is configurable rather than hard-coded.
type Sampling struct {
	// ATMBandPct is the band around spot a strike must fall in
	ATMBandPct float64 `yaml:"atm_band_pct" json:"atm_band_pct"`

	// MinOpenInterest for the basic liquidity check
	MinOpenInterest int64 `yaml:"min_open_interest" json:"min_open_interest"`

	// Grade cutoffs: share of in-band strikes passing liquidity
	GoodRatio     float64 `yaml:"good_ratio" json:"good_ratio"`
	MarginalRatio float64 `yaml:"marginal_ratio" json:"marginal_ratio"`
}

// Liquidity holds the Phase 2 candidate floor
type Liquidity struct {
	MinOpenInterest int64   `yaml:"min_open_interest" json:"min_open_interest"`
	MaxSpreadPct    float64 `yaml:"max_spread_pct" json:"max_spread_pct"`
}

// Legs holds the per-family structural parameters
type Legs struct {
	// DeltaTarget and DeltaBand bound single-leg candidate strikes
	DeltaTarget float64 `yaml:"delta_target" json:"delta_target"`
	DeltaBand   float64 `yaml:"delta_band" json:"delta_band"`

	// Vertical spread constraints
	MinStrikeWidth    float64 `yaml:"min_strike_width" json:"min_strike_width"`
	MaxWidthToSpotPct float64 `yaml:"max_width_to_spot_pct" json:"max_width_to_spot_pct"`

	// StrangleOTMPct is the symmetric OTM band for strangles
	StrangleOTMPct float64 `yaml:"strangle_otm_pct" json:"strangle_otm_pct"`

	// CondorWingWidth is the protective wing distance in strikes
	CondorWingWidth float64 `yaml:"condor_wing_width" json:"condor_wing_width"`

	// PMCCLongDelta is the minimum delta of the long LEAP leg
	PMCCLongDelta float64 `yaml:"pmcc_long_delta" json:"pmcc_long_delta"`
}

// Promotion holds selection grading thresholds
type Promotion struct {
	// Selections with min open interest below this are graded poor
	PoorOpenInterest int64 `yaml:"poor_open_interest" json:"poor_open_interest"`

	// Selections with min open interest below this are graded marginal
	MarginalOpenInterest int64 `yaml:"marginal_open_interest" json:"marginal_open_interest"`

	// MinVega floor for volatility strategies
	MinVega float64 `yaml:"min_vega" json:"min_vega"`
}

// Default returns the baseline parameter set used when no YAML file
// is supplied
func Default() *Config {
	return &Config{
		Meta: Meta{
			ScanID:   "default",
			Version:  "1",
			Timezone: "America/New_York",
		},
		Windows: Windows{
			Standard:      contracts.DTEWindow{Min: 30, Max: 60, Target: 45},
			Leap:          contracts.DTEWindow{Min: 180, Max: 730, Target: 365},
			CalendarFront: contracts.DTEWindow{Min: 20, Max: 45, Target: 30},
			CalendarBack:  contracts.DTEWindow{Min: 50, Max: 120, Target: 60},
		},
		Sampling: Sampling{
			ATMBandPct:      0.05,
			MinOpenInterest: 1,
			GoodRatio:       0.6,
			MarginalRatio:   0.3,
		},
		Liquidity: Liquidity{
			MinOpenInterest: 10,
			MaxSpreadPct:    0.25,
		},
		Legs: Legs{
			DeltaTarget:       0.30,
			DeltaBand:         0.15,
			MinStrikeWidth:    1.0,
			MaxWidthToSpotPct: 0.10,
			StrangleOTMPct:    0.05,
			CondorWingWidth:   5.0,
			PMCCLongDelta:     0.70,
		},
		Promotion: Promotion{
			PoorOpenInterest:     25,
			MarginalOpenInterest: 100,
			MinVega:              0.01,
		},
	}
}
