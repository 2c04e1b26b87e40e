package indicators

import "fmt"

var _ Indicator = (*EMA)(nil)

// EMAConfig holds configuration for an exponential moving average.
type EMAConfig struct {
	IndicatorConfig
	Readiness Readiness
}

// EMA is an incrementally updated exponential moving average.
//
// The first price seeds the average directly (there is no SMA warm-up window);
// every later price applies ema = price*α + ema*(1-α) with α = 2/(period+1).
// EMA is a plain value: copying it snapshots its state.
type EMA struct {
	config     EMAConfig
	multiplier float64
	value      float64
	count      int
}

// NewEMA creates an EMA for the given config.
func NewEMA(config EMAConfig) (EMA, error) {
	if config.Period <= 0 {
		return EMA{}, fmt.Errorf("EMA period must be positive, got %d", config.Period)
	}
	return EMA{
		config:     config,
		multiplier: 2.0 / float64(config.Period+1),
	}, nil
}

// Name returns the name of the indicator
func (e *EMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.config.Period)
}

// Update incorporates one closing price.
func (e *EMA) Update(price float64) {
	if e.count == 0 {
		e.value = price
	} else {
		e.value = price*e.multiplier + e.value*(1.0-e.multiplier)
	}
	e.count++
}

// Value returns the current smoothed value, 0 before the first update.
func (e *EMA) Value() float64 { return e.value }

// IsReady reports readiness under the configured policy.
func (e *EMA) IsReady() bool {
	if e.config.Readiness == ReadyAfterFullPeriod {
		return e.count >= e.config.Period
	}
	return e.count >= 1
}

// Period returns the configured period.
func (e *EMA) Period() int { return e.config.Period }

// Count returns the number of prices seen.
func (e *EMA) Count() int { return e.count }

// Multiplier returns the smoothing factor α.
func (e *EMA) Multiplier() float64 { return e.multiplier }

// Reset clears the EMA state for reuse.
func (e *EMA) Reset() {
	e.value = 0
	e.count = 0
}
