package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/strategy/indicators"
)

func newDetector(t *testing.T, cfg GapExhaustionConfig) GapExhaustion {
	t.Helper()
	d, err := NewGapExhaustion(cfg, 100)
	require.NoError(t, err)
	return d
}

func candle(ts string, open, high, low, close float64) domain.Candle {
	return domain.Candle{Timestamp: ts, Open: open, High: high, Low: low, Close: close}
}

func TestGapExhaustion_ArmsAndFires(t *testing.T) {
	d := newDetector(t, DefaultGapExhaustionConfig())

	// Gap-up open 104 >= 103 and low 102 > EMA5 (seeded at close 101).
	assert.False(t, d.Process(candle("09:15", 104, 105, 102, 101)))
	assert.Equal(t, Armed, d.State())
	anchor, ok := d.Anchor()
	require.True(t, ok)
	assert.Equal(t, 102.0, anchor.Low)

	// Breakdown below the anchor low fires exactly once.
	assert.True(t, d.Process(candle("09:20", 101, 102, 101.5, 101.8)))
	assert.Equal(t, SeekingFirstCandle, d.State())
	_, ok = d.Anchor()
	assert.False(t, ok)

	assert.False(t, d.Process(candle("09:25", 101, 101, 100, 100.5)))
}

func TestGapExhaustion_HoldingCandleKeepsAnchor(t *testing.T) {
	d := newDetector(t, DefaultGapExhaustionConfig())

	d.Process(candle("09:15", 104, 105, 102, 101))
	require.Equal(t, Armed, d.State())

	// Qualifies as an anchor on its own (open 106, low 104 > EMA5) but must
	// not replace the first anchor.
	assert.False(t, d.Process(candle("09:20", 106, 107, 104, 105)))
	anchor, ok := d.Anchor()
	require.True(t, ok)
	assert.Equal(t, "09:15", anchor.Timestamp)

	// Below the would-be second anchor, above the real one: no signal.
	assert.False(t, d.Process(candle("09:25", 105, 105, 103, 104)))
	assert.Equal(t, Armed, d.State())

	assert.True(t, d.Process(candle("09:30", 103, 103, 101, 101.5)))
}

func TestGapExhaustion_RequiresGapAndStrength(t *testing.T) {
	tests := []struct {
		name   string
		candle domain.Candle
	}{
		{"gap too small", candle("09:15", 102.9, 104, 102.5, 102)},
		{"low at EMA", candle("09:15", 104, 105, 101, 101)},
		{"low below EMA", candle("09:15", 104, 105, 100, 101)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDetector(t, DefaultGapExhaustionConfig())
			assert.False(t, d.Process(tt.candle))
			assert.Equal(t, SeekingFirstCandle, d.State())
		})
	}
}

func TestGapExhaustion_RearmsAfterSignal(t *testing.T) {
	d := newDetector(t, DefaultGapExhaustionConfig())
	d.Process(candle("09:15", 104, 105, 102, 101))
	require.True(t, d.Process(candle("09:20", 101, 102, 101.5, 101.8)))

	// A fresh qualifying candle anchors again.
	d.Process(candle("09:25", 106, 108, 105, 107))
	assert.Equal(t, Armed, d.State())
	anchor, _ := d.Anchor()
	assert.Equal(t, "09:25", anchor.Timestamp)
}

func TestGapExhaustion_FullPeriodReadinessKeepsEarlyCandlesInert(t *testing.T) {
	cfg := DefaultGapExhaustionConfig()
	cfg.Readiness = indicators.ReadyAfterFullPeriod
	d := newDetector(t, cfg)

	for i := 0; i < 4; i++ {
		assert.False(t, d.Process(candle("09:15", 104, 105, 102, 101)))
		assert.False(t, d.Ready())
		assert.Equal(t, SeekingFirstCandle, d.State())
	}

	d.Process(candle("09:35", 104, 105, 102, 101))
	assert.True(t, d.Ready())
	assert.Equal(t, Armed, d.State())
}

func TestGapExhaustion_TracksBothEMAs(t *testing.T) {
	d := newDetector(t, DefaultGapExhaustionConfig())
	d.Process(candle("09:15", 100, 100, 100, 10))
	d.Process(candle("09:20", 100, 100, 100, 12))
	assert.InDelta(t, 11.0, d.ShortEMA(), 1e-9)
	assert.InDelta(t, 10.0+2.0/3.0, d.LongEMA(), 1e-9)
}

func TestGapExhaustion_CopyIsIndependent(t *testing.T) {
	d := newDetector(t, DefaultGapExhaustionConfig())
	d.Process(candle("09:15", 104, 105, 102, 101))
	snapshot := d

	d.Process(candle("09:20", 101, 102, 101.5, 101.8))
	assert.Equal(t, Armed, snapshot.State())
	assert.Equal(t, SeekingFirstCandle, d.State())
}

func TestGapExhaustionConfig_Validate(t *testing.T) {
	cfg := DefaultGapExhaustionConfig()
	assert.NoError(t, cfg.Validate())

	cfg.LongEMAPeriod = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultGapExhaustionConfig()
	cfg.GapThreshold = -0.1
	assert.Error(t, cfg.Validate())
}

func TestDetectorState_String(t *testing.T) {
	assert.Equal(t, "SEEKING_FIRST_CANDLE", SeekingFirstCandle.String())
	assert.Equal(t, "ARMED", Armed.String())
}
