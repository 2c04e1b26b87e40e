package domain

import (
	"fmt"
	"strconv"
)

// ClockLayout is the wall-clock format used for candle timestamps.
const ClockLayout = "15:04"

// Candle is one intraday OHLC bar. Timestamps are local wall-clock "HH:MM"
// strings; OHLC consistency is not enforced.
type Candle struct {
	Timestamp string
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// MinuteOfDay converts an "HH:MM" timestamp into minutes since midnight.
func MinuteOfDay(ts string) (int, error) {
	if len(ts) != 5 || ts[2] != ':' {
		return 0, fmt.Errorf("timestamp %q is not in HH:MM form", ts)
	}
	hours, err := strconv.Atoi(ts[:2])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q has invalid hours: %w", ts, err)
	}
	minutes, err := strconv.Atoi(ts[3:])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q has invalid minutes: %w", ts, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("timestamp %q is out of range", ts)
	}
	return hours*60 + minutes, nil
}

// MarketSession is the fully materialised input of one simulation run.
type MarketSession struct {
	Instrument       string
	PreviousDayClose float64
	Capital          float64
	Candles          []Candle
}

// LastCandle returns the final candle of the session.
func (s *MarketSession) LastCandle() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}
