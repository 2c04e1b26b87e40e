package domain

import "time"

// Kline is a time-stamped candlestick as delivered by an exchange, before it is
// folded into an intraday MarketSession.
type Kline struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string    // Trading symbol
	Interval  string    // Kline interval (e.g., "5m")
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// ToCandle converts the kline into a session candle stamped with its local
// wall-clock open time ("HH:MM") in loc.
func (k *Kline) ToCandle(loc *time.Location) Candle {
	return Candle{
		Timestamp: k.OpenTime.In(loc).Format(ClockLayout),
		Open:      k.Open,
		High:      k.High,
		Low:       k.Low,
		Close:     k.Close,
	}
}
