package strategies

import "gapFadeBot/internal/domain"

// DetectorState is the state of a candle pattern detector.
type DetectorState int

const (
	// SeekingFirstCandle waits for a qualifying anchor candle.
	SeekingFirstCandle DetectorState = iota
	// Armed holds an anchor candle and waits for the breakdown candle.
	Armed
)

// String returns the name of the state.
func (s DetectorState) String() string {
	switch s {
	case SeekingFirstCandle:
		return "SEEKING_FIRST_CANDLE"
	case Armed:
		return "ARMED"
	default:
		return "UNKNOWN"
	}
}

// SignalDetector turns a stream of candles into entry signals.
type SignalDetector interface {
	// Process feeds one candle and reports whether it completes the pattern.
	Process(candle domain.Candle) bool

	// Ready reports whether the gating indicators have warmed up.
	Ready() bool

	// Name returns the name of the strategy
	Name() string
}
