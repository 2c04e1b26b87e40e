package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, capital float64) RiskManager {
	t.Helper()
	m, err := NewRiskManager(DefaultRiskConfig(), capital)
	require.NoError(t, err)
	return m
}

func TestRiskManager_Thresholds(t *testing.T) {
	m := newManager(t, 100000)

	assert.Equal(t, 2000.0, m.StopLossAmount())
	assert.Equal(t, 7000.0, m.TakeProfitAmount())

	assert.True(t, m.IsStopLossHit(-2000))
	assert.True(t, m.IsStopLossHit(-2500))
	assert.False(t, m.IsStopLossHit(-1999.99))

	assert.True(t, m.IsTakeProfitHit(7000))
	assert.False(t, m.IsTakeProfitHit(6999.99))
}

func TestRiskManager_ThresholdsFixedAfterCapitalChanges(t *testing.T) {
	m := newManager(t, 100000)
	m.UpdateCapital(-5000)

	assert.Equal(t, 2000.0, m.StopLossAmount())
	assert.Equal(t, 7000.0, m.TakeProfitAmount())
	assert.Equal(t, 95000.0, m.CurrentCapital())
	assert.Equal(t, 100000.0, m.InitialCapital())
	assert.Equal(t, -5000.0, m.TotalPnL())
	assert.InDelta(t, -5.0, m.TotalPnLPercent(), 1e-9)
}

func TestRiskManager_CalculatePositionSize(t *testing.T) {
	m := newManager(t, 100000)

	tests := []struct {
		name  string
		price float64
		want  int
	}{
		{"exact division", 100, 1000},
		{"floors fractional units", 101.8, 982},
		{"price above capital", 200000, 0},
		{"zero price", 0, 0},
		{"negative price", -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.CalculatePositionSize(tt.price))
		})
	}
}

func TestRiskManager_PositionSizeClampsHugeQuantities(t *testing.T) {
	m := newManager(t, 100000)
	assert.Equal(t, math.MaxInt, m.CalculatePositionSize(1e-300))
	assert.Equal(t, math.MaxInt, m.CalculatePositionSize(math.SmallestNonzeroFloat64))
	assert.Equal(t, 200000, m.CalculatePositionSize(0.5))
}

func TestRiskManager_PositionSizeMonotonic(t *testing.T) {
	m := newManager(t, 100000)
	prev := m.CalculatePositionSize(0.5)
	for price := 1.0; price < 5000; price *= 1.37 {
		size := m.CalculatePositionSize(price)
		assert.GreaterOrEqual(t, size, 0)
		assert.LessOrEqual(t, size, prev, "price %f", price)
		prev = size
	}
}

func TestRiskManager_SizingCompoundsWithCapital(t *testing.T) {
	m := newManager(t, 1000)
	assert.Equal(t, 10, m.CalculatePositionSize(100))

	m.UpdateCapital(500)
	assert.Equal(t, 15, m.CalculatePositionSize(100))

	m.UpdateCapital(-2000)
	assert.Equal(t, 0, m.CalculatePositionSize(100))
}

func TestRiskManager_DailyCap(t *testing.T) {
	m := newManager(t, 100000)
	assert.True(t, m.CanTrade())
	m.RecordTrade()
	assert.True(t, m.CanTrade())
	m.RecordTrade()
	assert.False(t, m.CanTrade())
	assert.Equal(t, 2, m.TradesCount())
	assert.Equal(t, 2, m.GetStats().DailyTrades)
}

func TestRiskManager_CopyIsSnapshot(t *testing.T) {
	m := newManager(t, 100000)
	snapshot := m
	m.RecordTrade()
	m.UpdateCapital(100)

	assert.Equal(t, 0, snapshot.TradesCount())
	assert.Equal(t, 100000.0, snapshot.CurrentCapital())
}

func TestNewRiskManager_Invalid(t *testing.T) {
	_, err := NewRiskManager(DefaultRiskConfig(), 0)
	assert.Error(t, err)

	_, err = NewRiskManager(RiskConfig{}, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop loss")
	assert.Contains(t, err.Error(), "take profit")
	assert.Contains(t, err.Error(), "max daily trades")
}
