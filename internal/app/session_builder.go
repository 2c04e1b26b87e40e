package app

import (
	"context"
	"fmt"
	"time"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
)

// SessionRequest describes which trading day to materialise.
type SessionRequest struct {
	Symbol   string
	Interval string         // Kline interval, e.g. "5m"
	Day      time.Time      // Any instant on the wanted local date
	Location *time.Location // Local wall clock of the session, defaults to UTC
	Capital  float64
	From     string // First candle included ("HH:MM"), empty means midnight
	To       string // Last candle included ("HH:MM"), empty means end of day
}

// SessionBuilder turns exchange klines into a MarketSession. The previous
// day close is the close of the last kline of the prior local day.
type SessionBuilder struct {
	source ports.KlineSource
	logger ports.Logger
}

func NewSessionBuilder(source ports.KlineSource, logger ports.Logger) *SessionBuilder {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &SessionBuilder{source: source, logger: logger}
}

// Build fetches the requested day plus the day before it.
func (b *SessionBuilder) Build(ctx context.Context, req SessionRequest) (*domain.MarketSession, error) {
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}
	if req.Capital <= 0 {
		return nil, fmt.Errorf("%w: capital must be positive", ports.ErrInvalidRequest)
	}
	from, to, err := window(req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidRequest, err)
	}

	y, m, d := req.Day.In(loc).Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	prevStart := dayStart.AddDate(0, 0, -1)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)

	klines, err := b.source.GetKlinesRange(ctx, req.Symbol, req.Interval, prevStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines for %s: %w", req.Symbol, err)
	}

	session := &domain.MarketSession{
		Instrument: req.Symbol,
		Capital:    req.Capital,
	}
	havePrevious := false
	for _, k := range klines {
		open := k.OpenTime.In(loc)
		switch {
		case open.Before(prevStart) || open.After(dayEnd):
			continue
		case open.Before(dayStart):
			session.PreviousDayClose = k.Close
			havePrevious = true
		default:
			candle := k.ToCandle(loc)
			minute, _ := domain.MinuteOfDay(candle.Timestamp)
			if minute < from || minute > to {
				continue
			}
			session.Candles = append(session.Candles, candle)
		}
	}

	if !havePrevious {
		return nil, fmt.Errorf("%w: no klines for %s on %s", ports.ErrNoMarketData, req.Symbol, prevStart.Format(time.DateOnly))
	}
	if len(session.Candles) == 0 {
		return nil, fmt.Errorf("%w: no klines for %s on %s", ports.ErrNoMarketData, req.Symbol, dayStart.Format(time.DateOnly))
	}

	b.logger.Info(ctx, "Market session built", map[string]interface{}{
		"symbol":           req.Symbol,
		"day":              dayStart.Format(time.DateOnly),
		"candles":          len(session.Candles),
		"previousDayClose": session.PreviousDayClose,
	})
	return session, nil
}

func window(from, to string) (int, int, error) {
	start, end := 0, 24*60-1
	var err error
	if from != "" {
		if start, err = domain.MinuteOfDay(from); err != nil {
			return 0, 0, err
		}
	}
	if to != "" {
		if end, err = domain.MinuteOfDay(to); err != nil {
			return 0, 0, err
		}
	}
	if start > end {
		return 0, 0, fmt.Errorf("session window %s-%s is empty", from, to)
	}
	return start, end, nil
}
