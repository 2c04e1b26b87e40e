package app

import (
	"context"

	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/strategy/backtesting"
)

// LoggingSink writes every simulation event to a ports.Logger. Per-candle
// noise goes to Debug, trading decisions to Info.
type LoggingSink struct {
	logger ports.Logger
}

func NewLoggingSink(logger ports.Logger) *LoggingSink {
	return &LoggingSink{logger: logger}
}

func (s *LoggingSink) HandleEvent(ctx context.Context, e backtesting.Event) {
	fields := map[string]interface{}{
		"seq":  e.Seq,
		"kind": string(e.Kind),
	}
	if e.Timestamp != "" {
		fields["time"] = e.Timestamp
	}

	switch e.Kind {
	case backtesting.EventWarmup:
		fields["close"] = e.Candle.Close
		s.logger.Debug(ctx, "Indicators warming up", fields)
	case backtesting.EventIndicators:
		fields["close"] = e.Candle.Close
		fields["shortEma"] = e.ShortEMA
		fields["longEma"] = e.LongEMA
		s.logger.Debug(ctx, "Candle processed", fields)
	case backtesting.EventPositionMark:
		fields["unrealizedPnl"] = e.UnrealizedPnL
		s.logger.Debug(ctx, "Position marked", fields)
	case backtesting.EventSessionStarted:
		if e.Session != nil {
			fields["instrument"] = e.Session.Instrument
			fields["stopLoss"] = e.Session.StopLossAmount
			fields["takeProfit"] = e.Session.TakeProfitAmount
		}
		s.logger.Info(ctx, "Session started", fields)
	case backtesting.EventSignal:
		s.logger.Info(ctx, "Short signal", fields)
	case backtesting.EventSignalSkipped:
		fields["reason"] = string(e.SkipReason)
		s.logger.Info(ctx, "Signal skipped", fields)
	case backtesting.EventTradeExecuted:
		if e.Trade != nil {
			fields["side"] = string(e.Trade.Side)
			fields["price"] = e.Trade.Price
			fields["quantity"] = e.Trade.Quantity
		}
		s.logger.Info(ctx, "Trade executed", fields)
	case backtesting.EventTradeClosed:
		fields["reason"] = string(e.CloseReason)
		fields["pnl"] = e.PnL
		if e.Trade != nil {
			fields["price"] = e.Trade.Price
		}
		s.logger.Info(ctx, "Trade closed", fields)
	case backtesting.EventSessionEnded:
		s.logger.Info(ctx, "Market close reached", fields)
	case backtesting.EventSummary:
		if e.Summary != nil {
			fields["totalTrades"] = e.Summary.TotalTrades
			fields["finalCapital"] = e.Summary.FinalCapital
			fields["totalPnl"] = e.Summary.TotalPnL
		}
		s.logger.Info(ctx, "Session summary", fields)
	default:
		s.logger.Warn(ctx, "Unknown simulation event", fields)
	}
}
