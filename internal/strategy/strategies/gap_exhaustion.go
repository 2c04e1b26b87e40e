package strategies

import (
	"fmt"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/strategy/indicators"
)

var _ SignalDetector = (*GapExhaustion)(nil)

// GapExhaustionConfig holds parameters for the two-candle gap exhaustion pattern.
type GapExhaustionConfig struct {
	ShortEMAPeriod int                  // Display-only EMA, e.g. 3
	LongEMAPeriod  int                  // Gating EMA, e.g. 5
	GapThreshold   float64              // Minimum gap-up over the previous close, e.g. 0.03 for 3%
	Readiness      indicators.Readiness // When the gating EMA starts counting as ready
}

// DefaultGapExhaustionConfig returns the standard parameters.
func DefaultGapExhaustionConfig() GapExhaustionConfig {
	return GapExhaustionConfig{
		ShortEMAPeriod: 3,
		LongEMAPeriod:  5,
		GapThreshold:   0.03,
		Readiness:      indicators.ReadyAfterFirstUpdate,
	}
}

// Validate checks the configuration values.
func (c GapExhaustionConfig) Validate() error {
	if c.ShortEMAPeriod <= 0 || c.LongEMAPeriod <= 0 {
		return fmt.Errorf("EMA periods must be positive (short=%d, long=%d)", c.ShortEMAPeriod, c.LongEMAPeriod)
	}
	if c.GapThreshold < 0 {
		return fmt.Errorf("gap threshold cannot be negative, got %f", c.GapThreshold)
	}
	return nil
}

// GapExhaustion detects a gap-up candle that holds above the long EMA (the
// anchor) followed by a candle that breaks the anchor's low. The breakdown
// candle produces a short entry signal.
//
// Only the first anchor found governs: while armed, later qualifying candles
// never replace it. GapExhaustion is a plain value; copying it snapshots the
// detector together with its EMAs.
type GapExhaustion struct {
	config           GapExhaustionConfig
	previousDayClose float64
	state            DetectorState
	anchor           domain.Candle
	shortEMA         indicators.EMA
	longEMA          indicators.EMA
}

// NewGapExhaustion creates a detector for a session that closed at
// previousDayClose the day before.
func NewGapExhaustion(config GapExhaustionConfig, previousDayClose float64) (GapExhaustion, error) {
	if err := config.Validate(); err != nil {
		return GapExhaustion{}, err
	}
	shortEMA, err := indicators.NewEMA(indicators.EMAConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: config.ShortEMAPeriod},
		Readiness:       config.Readiness,
	})
	if err != nil {
		return GapExhaustion{}, fmt.Errorf("short EMA: %w", err)
	}
	longEMA, err := indicators.NewEMA(indicators.EMAConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: config.LongEMAPeriod},
		Readiness:       config.Readiness,
	})
	if err != nil {
		return GapExhaustion{}, fmt.Errorf("long EMA: %w", err)
	}
	return GapExhaustion{
		config:           config,
		previousDayClose: previousDayClose,
		state:            SeekingFirstCandle,
		shortEMA:         shortEMA,
		longEMA:          longEMA,
	}, nil
}

// Name returns the name of the strategy
func (g *GapExhaustion) Name() string {
	return "TwoCandleGapExhaustion"
}

// Process feeds one candle through the indicators and the state machine and
// reports whether it is the breakdown candle of the pattern.
func (g *GapExhaustion) Process(candle domain.Candle) bool {
	g.shortEMA.Update(candle.Close)
	g.longEMA.Update(candle.Close)

	if !g.longEMA.IsReady() {
		return false
	}

	switch g.state {
	case SeekingFirstCandle:
		if g.isGapUp(candle) && candle.Low > g.longEMA.Value() {
			g.anchor = candle
			g.state = Armed
		}
		return false
	case Armed:
		if candle.Low < g.anchor.Low {
			g.state = SeekingFirstCandle
			g.anchor = domain.Candle{}
			return true
		}
	}
	return false
}

func (g *GapExhaustion) isGapUp(candle domain.Candle) bool {
	return candle.Open >= g.previousDayClose*(1.0+g.config.GapThreshold)
}

// Ready reports whether the gating EMA is ready.
func (g *GapExhaustion) Ready() bool { return g.longEMA.IsReady() }

// State returns the current state of the pattern state machine.
func (g *GapExhaustion) State() DetectorState { return g.state }

// Anchor returns the anchor candle while armed.
func (g *GapExhaustion) Anchor() (domain.Candle, bool) {
	return g.anchor, g.state == Armed
}

// ShortEMA returns the display EMA value.
func (g *GapExhaustion) ShortEMA() float64 { return g.shortEMA.Value() }

// LongEMA returns the gating EMA value.
func (g *GapExhaustion) LongEMA() float64 { return g.longEMA.Value() }

// Config returns the detector configuration.
func (g *GapExhaustion) Config() GapExhaustionConfig { return g.config }
