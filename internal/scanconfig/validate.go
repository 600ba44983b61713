package scanconfig

import (
	"fmt"

	"github.com/strikelab/optionscan/internal/contracts"
)

// ValidationError marks a parameter file the scan must not run with
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if cfg.Meta.ScanID == "" {
		return ValidationError{"meta.scan_id", "required"}
	}

	if err := validateWindow("dte_windows.standard", cfg.Windows.Standard); err != nil {
		return err
	}
	if err := validateWindow("dte_windows.leap", cfg.Windows.Leap); err != nil {
		return err
	}
	if err := validateWindow("dte_windows.calendar_front", cfg.Windows.CalendarFront); err != nil {
		return err
	}
	if err := validateWindow("dte_windows.calendar_back", cfg.Windows.CalendarBack); err != nil {
		return err
	}
	if cfg.Windows.CalendarFront.Max >= cfg.Windows.CalendarBack.Min {
		return ValidationError{"dte_windows", "calendar front window must end before back window starts"}
	}

	if cfg.Sampling.ATMBandPct <= 0 || cfg.Sampling.ATMBandPct > 0.5 {
		return ValidationError{"sampling.atm_band_pct", "must be in (0, 0.5]"}
	}
	if cfg.Sampling.GoodRatio <= cfg.Sampling.MarginalRatio {
		return ValidationError{"sampling", "good_ratio must exceed marginal_ratio"}
	}

	if cfg.Liquidity.MinOpenInterest < 0 {
		return ValidationError{"liquidity.min_open_interest", "must be >= 0"}
	}
	if cfg.Liquidity.MaxSpreadPct <= 0 || cfg.Liquidity.MaxSpreadPct > 1 {
		return ValidationError{"liquidity.max_spread_pct", "must be in (0, 1]"}
	}

	if cfg.Legs.DeltaTarget <= 0 || cfg.Legs.DeltaTarget >= 1 {
		return ValidationError{"legs.delta_target", "must be in (0, 1)"}
	}
	if cfg.Legs.DeltaBand <= 0 {
		return ValidationError{"legs.delta_band", "must be > 0"}
	}
	if cfg.Legs.MinStrikeWidth <= 0 {
		return ValidationError{"legs.min_strike_width", "must be > 0"}
	}
	if cfg.Legs.MaxWidthToSpotPct <= 0 || cfg.Legs.MaxWidthToSpotPct > 1 {
		return ValidationError{"legs.max_width_to_spot_pct", "must be in (0, 1]"}
	}

	if cfg.Promotion.MarginalOpenInterest < cfg.Promotion.PoorOpenInterest {
		return ValidationError{"promotion", "marginal_open_interest must be >= poor_open_interest"}
	}

	return nil
}

func validateWindow(field string, w contracts.DTEWindow) error {
	if w.Min < 0 {
		return ValidationError{field, "min must be >= 0"}
	}
	if w.Max <= w.Min {
		return ValidationError{field, "max must be > min"}
	}
	if w.Target < w.Min || w.Target > w.Max {
		return ValidationError{field, "target must lie inside [min, max]"}
	}
	return nil
}
