package optimization

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/strategy/analytics"
	"gapFadeBot/internal/strategy/backtesting"
)

// Parameter names understood by the optimizer.
const (
	ParamGapThreshold   = "gap_threshold"
	ParamStopLossPct    = "stop_loss_pct"
	ParamTakeProfitPct  = "take_profit_pct"
	ParamShortEMAPeriod = "short_ema_period"
	ParamLongEMAPeriod  = "long_ema_period"
	ParamMaxDailyTrades = "max_daily_trades"
)

// ParameterRange defines a range for a parameter to optimize
type ParameterRange struct {
	Name  string
	Min   float64
	Max   float64
	Step  float64
	IsInt bool
}

// OptimizationResult holds the results of a parameter optimization
type OptimizationResult struct {
	Parameters map[string]float64
	Config     backtesting.Config
	Summary    *backtesting.Summary
	Metrics    *analytics.PerformanceMetrics
	Score      float64
}

// OptimizerConfig holds configuration for the optimizer
type OptimizerConfig struct {
	ParameterRanges []ParameterRange
	BaseConfig      backtesting.Config // values not covered by a range
	MaxWorkers      int                // 0 means runtime.NumCPU()
	ScoreFunction   func(*analytics.PerformanceMetrics) float64
}

// Optimizer runs one independent engine per parameter combination.
type Optimizer struct {
	config OptimizerConfig
	logger ports.Logger
}

// NewOptimizer creates a new optimizer instance
func NewOptimizer(config OptimizerConfig, logger ports.Logger) (*Optimizer, error) {
	for _, r := range config.ParameterRanges {
		if !knownParameter(r.Name) {
			return nil, fmt.Errorf("%w: unknown parameter %q", ports.ErrConfigurationError, r.Name)
		}
		if r.Step <= 0 || r.Max < r.Min {
			return nil, fmt.Errorf("%w: bad range for %s", ports.ErrConfigurationError, r.Name)
		}
	}
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Optimizer{config: config, logger: logger}, nil
}

// Optimize runs every parameter combination against the session and returns
// the results best first. Combinations that form an invalid configuration are
// skipped.
func (o *Optimizer) Optimize(ctx context.Context, session *domain.MarketSession) ([]OptimizationResult, error) {
	if err := backtesting.ValidateSession(session); err != nil {
		return nil, err
	}

	combinations := o.generateParameterCombinations()
	results := make([]OptimizationResult, 0, len(combinations))

	resultChan := make(chan OptimizationResult, len(combinations))
	sem := make(chan struct{}, o.config.MaxWorkers)
	var wg sync.WaitGroup

	for _, params := range combinations {
		wg.Add(1)
		go func(params map[string]float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cfg, err := ApplyParameters(o.config.BaseConfig, params)
			if err != nil {
				o.logger.Debug(ctx, "Skipping parameter combination", map[string]interface{}{
					"params": formatParams(params),
					"reason": err.Error(),
				})
				return
			}
			engine, err := backtesting.NewEngine(cfg, nil)
			if err != nil {
				o.logger.Debug(ctx, "Skipping parameter combination", map[string]interface{}{
					"params": formatParams(params),
					"reason": err.Error(),
				})
				return
			}

			result, err := engine.Run(ctx, session)
			if err != nil {
				o.logger.Warn(ctx, "Simulation failed during optimization", map[string]interface{}{
					"params": formatParams(params),
					"error":  err.Error(),
				})
				return
			}

			metrics := analytics.AnalyzePerformance(result.Summary.Trades, session.Capital)
			resultChan <- OptimizationResult{
				Parameters: params,
				Config:     cfg,
				Summary:    result.Summary,
				Metrics:    metrics,
				Score:      o.config.ScoreFunction(metrics),
			}
		}(params)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		results = append(results, result)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
	}

	sortResultsByScore(results)

	o.logger.Info(ctx, "Optimization finished", map[string]interface{}{
		"combinations": len(combinations),
		"results":      len(results),
	})
	return results, nil
}

// ApplyParameters overlays params on base.
func ApplyParameters(base backtesting.Config, params map[string]float64) (backtesting.Config, error) {
	cfg := base
	for name, v := range params {
		switch name {
		case ParamGapThreshold:
			cfg.Strategy.GapThreshold = v
		case ParamStopLossPct:
			cfg.Risk.StopLossPercent = v
		case ParamTakeProfitPct:
			cfg.Risk.TakeProfitPercent = v
		case ParamShortEMAPeriod:
			cfg.Strategy.ShortEMAPeriod = int(math.Round(v))
		case ParamLongEMAPeriod:
			cfg.Strategy.LongEMAPeriod = int(math.Round(v))
		case ParamMaxDailyTrades:
			cfg.Risk.MaxDailyTrades = int(math.Round(v))
		default:
			return base, fmt.Errorf("unknown parameter %q", name)
		}
	}
	return cfg, cfg.Validate()
}

func knownParameter(name string) bool {
	switch name {
	case ParamGapThreshold, ParamStopLossPct, ParamTakeProfitPct,
		ParamShortEMAPeriod, ParamLongEMAPeriod, ParamMaxDailyTrades:
		return true
	}
	return false
}

// generateParameterCombinations generates all possible parameter combinations
func (o *Optimizer) generateParameterCombinations() []map[string]float64 {
	var combinations []map[string]float64
	currentCombination := make(map[string]float64)

	var generate func(int)
	generate = func(paramIndex int) {
		if paramIndex == len(o.config.ParameterRanges) {
			combination := make(map[string]float64, len(currentCombination))
			for k, v := range currentCombination {
				combination[k] = v
			}
			combinations = append(combinations, combination)
			return
		}

		param := o.config.ParameterRanges[paramIndex]
		// Index based stepping avoids accumulating float error.
		steps := int(math.Floor((param.Max-param.Min)/param.Step + 1e-9))
		for i := 0; i <= steps; i++ {
			value := param.Min + float64(i)*param.Step
			if param.IsInt {
				value = math.Round(value)
			}
			currentCombination[param.Name] = value
			generate(paramIndex + 1)
		}
	}

	generate(0)
	return combinations
}

// formatParams renders params with sorted keys so equal maps give equal strings.
func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, ",")
}

// sortResultsByScore orders results by score, best first. Ties are broken by
// the parameter set so the order does not depend on goroutine scheduling.
func sortResultsByScore(results []OptimizationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return formatParams(results[i].Parameters) < formatParams(results[j].Parameters)
	})
}

// DefaultScoreFunction provides a default scoring function for optimization
func DefaultScoreFunction(metrics *analytics.PerformanceMetrics) float64 {
	score := 0.0

	score += metrics.WinRate * 0.3
	score += metrics.ProfitFactor * 0.2
	score += (1 - metrics.MaxDrawdown) * 0.2
	score += metrics.ReturnOnInvestment * 0.2
	score += metrics.RiskRewardRatio * 0.1

	return score
}
