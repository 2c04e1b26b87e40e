package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// RiskConfig holds configuration for risk management
type RiskConfig struct {
	StopLossPercent   float64 // fraction of initial capital
	TakeProfitPercent float64 // fraction of initial capital
	MaxDailyTrades    int
}

// DefaultRiskConfig returns the stock 2% stop / 7% target / 2 trades a day policy.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		StopLossPercent:   0.02,
		TakeProfitPercent: 0.07,
		MaxDailyTrades:    2,
	}
}

// Validate reports every invalid field at once.
func (c RiskConfig) Validate() error {
	var errs []error
	if c.StopLossPercent <= 0 {
		errs = append(errs, fmt.Errorf("stop loss percent must be positive, got %f", c.StopLossPercent))
	}
	if c.TakeProfitPercent <= 0 {
		errs = append(errs, fmt.Errorf("take profit percent must be positive, got %f", c.TakeProfitPercent))
	}
	if c.MaxDailyTrades <= 0 {
		errs = append(errs, fmt.Errorf("max daily trades must be positive, got %d", c.MaxDailyTrades))
	}
	return errors.Join(errs...)
}

// RiskStats holds risk management statistics
type RiskStats struct {
	DailyTrades    int
	CurrentCapital float64
	RealizedPnL    float64
}

// RiskManager sizes positions and decides stop-loss / take-profit exits.
// Thresholds are fixed at construction as a fraction of the initial capital.
// It is a value type: copying it snapshots the counters.
type RiskManager struct {
	config           RiskConfig
	initialCapital   float64
	stopLossAmount   float64
	takeProfitAmount float64
	stats            RiskStats
}

// NewRiskManager creates a new risk manager instance
func NewRiskManager(config RiskConfig, initialCapital float64) (RiskManager, error) {
	if err := config.Validate(); err != nil {
		return RiskManager{}, fmt.Errorf("invalid risk config: %w", err)
	}
	if initialCapital <= 0 {
		return RiskManager{}, fmt.Errorf("initial capital must be positive, got %f", initialCapital)
	}
	return RiskManager{
		config:           config,
		initialCapital:   initialCapital,
		stopLossAmount:   fractionOf(initialCapital, config.StopLossPercent),
		takeProfitAmount: fractionOf(initialCapital, config.TakeProfitPercent),
		stats:            RiskStats{CurrentCapital: initialCapital},
	}, nil
}

// fractionOf multiplies in decimal so 100000 * 0.07 is exactly 7000.
func fractionOf(amount, fraction float64) float64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(fraction)).InexactFloat64()
}

// CalculatePositionSize returns how many whole units the current capital buys at price.
func (r *RiskManager) CalculatePositionSize(price float64) int {
	if price <= 0 {
		return 0
	}
	size := math.Floor(r.stats.CurrentCapital / price)
	if size <= 0 || math.IsNaN(size) {
		return 0
	}
	if size >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(size)
}

// CanTrade reports whether the daily trade cap still allows an entry.
func (r *RiskManager) CanTrade() bool {
	return r.stats.DailyTrades < r.config.MaxDailyTrades
}

// RecordTrade counts one entry against the daily cap.
func (r *RiskManager) RecordTrade() {
	r.stats.DailyTrades++
}

// IsStopLossHit is inclusive of the threshold.
func (r *RiskManager) IsStopLossHit(unrealizedPnL float64) bool {
	return unrealizedPnL <= -r.stopLossAmount
}

// IsTakeProfitHit is inclusive of the threshold.
func (r *RiskManager) IsTakeProfitHit(unrealizedPnL float64) bool {
	return unrealizedPnL >= r.takeProfitAmount
}

// UpdateCapital books the realized PnL of one closed trade.
func (r *RiskManager) UpdateCapital(pnl float64) {
	r.stats.CurrentCapital += pnl
	r.stats.RealizedPnL += pnl
}

// CurrentCapital is the initial capital plus every realized PnL so far.
func (r *RiskManager) CurrentCapital() float64 { return r.stats.CurrentCapital }

// InitialCapital is the capital the session started with.
func (r *RiskManager) InitialCapital() float64 { return r.initialCapital }

// StopLossAmount is the loss, in currency, that closes a position.
func (r *RiskManager) StopLossAmount() float64 { return r.stopLossAmount }

// TakeProfitAmount is the gain, in currency, that closes a position.
func (r *RiskManager) TakeProfitAmount() float64 { return r.takeProfitAmount }

// TradesCount returns the entries recorded against the daily cap.
func (r *RiskManager) TradesCount() int { return r.stats.DailyTrades }

// Config returns the configuration the manager was built with.
func (r *RiskManager) Config() RiskConfig { return r.config }

// TotalPnL is current minus initial capital.
func (r *RiskManager) TotalPnL() float64 {
	return r.stats.CurrentCapital - r.initialCapital
}

// TotalPnLPercent expresses TotalPnL as a percentage of initial capital.
func (r *RiskManager) TotalPnLPercent() float64 {
	return r.TotalPnL() / r.initialCapital * 100
}

// GetStats returns the current risk management statistics
func (r *RiskManager) GetStats() RiskStats {
	return r.stats
}
