package optimization

import (
	"context"
	"errors"
	"testing"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/strategy/analytics"
	"gapFadeBot/internal/strategy/backtesting"
)

func testSession() *domain.MarketSession {
	return &domain.MarketSession{
		Instrument:       "TEST",
		PreviousDayClose: 100,
		Capital:          100000,
		Candles: []domain.Candle{
			{Timestamp: "09:15", Open: 104, High: 106, Low: 102, Close: 101},
			{Timestamp: "09:20", Open: 101, High: 102, Low: 100, Close: 100},
			{Timestamp: "09:25", Open: 100, High: 100, Low: 96, Close: 96},
			{Timestamp: "09:30", Open: 96, High: 97, Low: 94, Close: 95},
		},
	}
}

func TestOptimizer(t *testing.T) {
	config := OptimizerConfig{
		ParameterRanges: []ParameterRange{
			{Name: ParamGapThreshold, Min: 0.01, Max: 0.05, Step: 0.02},
			{Name: ParamTakeProfitPct, Min: 0.03, Max: 0.07, Step: 0.02},
		},
		BaseConfig: backtesting.DefaultConfig(),
		MaxWorkers: 2,
	}

	optimizer, err := NewOptimizer(config, nil)
	if err != nil {
		t.Fatalf("NewOptimizer failed: %v", err)
	}

	results, err := optimizer.Optimize(context.Background(), testSession())
	if err != nil {
		t.Fatalf("Optimization failed: %v", err)
	}

	expectedCombinations := 9
	if len(results) != expectedCombinations {
		t.Errorf("Expected %d parameter combinations, got %d", expectedCombinations, len(results))
	}

	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Error("Results are not sorted by score in descending order")
		}
	}

	// A 5% gap threshold needs an open of 105; the 104 gap never anchors.
	for _, r := range results {
		if r.Parameters[ParamGapThreshold] > 0.045 && len(r.Summary.Trades) != 0 {
			t.Errorf("Expected no trades for gap threshold %f, got %d", r.Parameters[ParamGapThreshold], len(r.Summary.Trades))
		}
		if r.Config.Strategy.GapThreshold != r.Parameters[ParamGapThreshold] {
			t.Errorf("Config does not carry gap threshold %f", r.Parameters[ParamGapThreshold])
		}
	}
}

func TestOptimizerIsDeterministic(t *testing.T) {
	config := OptimizerConfig{
		ParameterRanges: []ParameterRange{
			{Name: ParamStopLossPct, Min: 0.01, Max: 0.03, Step: 0.01},
			{Name: ParamLongEMAPeriod, Min: 3, Max: 5, Step: 1, IsInt: true},
		},
		BaseConfig: backtesting.DefaultConfig(),
	}
	optimizer, err := NewOptimizer(config, nil)
	if err != nil {
		t.Fatalf("NewOptimizer failed: %v", err)
	}

	first, err := optimizer.Optimize(context.Background(), testSession())
	if err != nil {
		t.Fatalf("Optimization failed: %v", err)
	}
	second, err := optimizer.Optimize(context.Background(), testSession())
	if err != nil {
		t.Fatalf("Optimization failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if formatParams(first[i].Parameters) != formatParams(second[i].Parameters) {
			t.Errorf("Result %d differs: %s vs %s", i, formatParams(first[i].Parameters), formatParams(second[i].Parameters))
		}
	}
}

func TestOptimizerRejectsInvalidSession(t *testing.T) {
	optimizer, err := NewOptimizer(OptimizerConfig{BaseConfig: backtesting.DefaultConfig()}, nil)
	if err != nil {
		t.Fatalf("NewOptimizer failed: %v", err)
	}
	_, err = optimizer.Optimize(context.Background(), &domain.MarketSession{Capital: 100})
	if !errors.Is(err, ports.ErrInvalidSession) {
		t.Errorf("Expected ErrInvalidSession, got %v", err)
	}
}

func TestNewOptimizerRejectsUnknownParameter(t *testing.T) {
	_, err := NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{{Name: "leverage", Min: 1, Max: 2, Step: 1}},
	}, nil)
	if !errors.Is(err, ports.ErrConfigurationError) {
		t.Errorf("Expected ErrConfigurationError, got %v", err)
	}
}

func TestApplyParameters(t *testing.T) {
	cfg, err := ApplyParameters(backtesting.DefaultConfig(), map[string]float64{
		ParamShortEMAPeriod: 2,
		ParamMaxDailyTrades: 4,
		ParamStopLossPct:    0.01,
	})
	if err != nil {
		t.Fatalf("ApplyParameters failed: %v", err)
	}
	if cfg.Strategy.ShortEMAPeriod != 2 || cfg.Risk.MaxDailyTrades != 4 || cfg.Risk.StopLossPercent != 0.01 {
		t.Errorf("Parameters not applied: %+v", cfg)
	}

	if _, err := ApplyParameters(backtesting.DefaultConfig(), map[string]float64{ParamLongEMAPeriod: 0}); err == nil {
		t.Error("Expected error for zero EMA period")
	}
}

func TestGenerateParameterCombinations(t *testing.T) {
	config := OptimizerConfig{
		ParameterRanges: []ParameterRange{
			{Name: ParamMaxDailyTrades, Min: 1, Max: 2, Step: 1, IsInt: true},
			{Name: ParamGapThreshold, Min: 0.1, Max: 0.2, Step: 0.1},
		},
	}

	optimizer, err := NewOptimizer(config, nil)
	if err != nil {
		t.Fatalf("NewOptimizer failed: %v", err)
	}
	combinations := optimizer.generateParameterCombinations()

	expectedCombinations := 4
	if len(combinations) != expectedCombinations {
		t.Errorf("Expected %d parameter combinations, got %d", expectedCombinations, len(combinations))
	}

	expectedValues := map[string][]float64{
		ParamMaxDailyTrades: {1, 2},
		ParamGapThreshold:   {0.1, 0.2},
	}

	for _, combination := range combinations {
		for paramName, expectedValues := range expectedValues {
			value, exists := combination[paramName]
			if !exists {
				t.Errorf("Parameter %s not found in combination", paramName)
			}
			found := false
			for _, expectedValue := range expectedValues {
				if value == expectedValue {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Unexpected value %f for parameter %s", value, paramName)
			}
		}
	}
}

func TestDefaultScoreFunction(t *testing.T) {
	metrics := &analytics.PerformanceMetrics{
		WinRate:            0.6,
		ProfitFactor:       2.0,
		MaxDrawdown:        0.2,
		ReturnOnInvestment: 0.5,
		RiskRewardRatio:    2.0,
	}

	score := DefaultScoreFunction(metrics)

	expectedScore := 0.6*0.3 + 2.0*0.2 + 0.8*0.2 + 0.5*0.2 + 2.0*0.1
	if score != expectedScore {
		t.Errorf("Expected score %f, got %f", expectedScore, score)
	}
}
