package backtesting

import (
	"context"

	"gapFadeBot/internal/domain"
)

// EventKind identifies what happened during a simulation step.
type EventKind string

const (
	EventSessionStarted EventKind = "SESSION_STARTED"
	EventWarmup         EventKind = "WARMUP"     // Gating EMA not ready yet
	EventIndicators     EventKind = "INDICATORS" // Candle with both EMA values
	EventSignal         EventKind = "SIGNAL"
	EventSignalSkipped  EventKind = "SIGNAL_SKIPPED"
	EventTradeExecuted  EventKind = "TRADE_EXECUTED"
	EventTradeClosed    EventKind = "TRADE_CLOSED"
	EventPositionMark   EventKind = "POSITION_MARK"
	EventSessionEnded   EventKind = "SESSION_ENDED" // Market close cutoff reached
	EventSummary        EventKind = "SUMMARY"
)

// SkipReason explains why a signal did not produce an entry.
type SkipReason string

const (
	SkipTradeLimit          SkipReason = "Trade limit reached for the day"
	SkipPositionOpen        SkipReason = "Position already open - skipping signal"
	SkipInsufficientCapital SkipReason = "Insufficient capital for position"
)

// SessionInfo describes the run parameters announced at session start.
type SessionInfo struct {
	Instrument        string
	PreviousDayClose  float64
	InitialCapital    float64
	StopLossAmount    float64
	TakeProfitAmount  float64
	StopLossPercent   float64
	TakeProfitPercent float64
	ShortEMAPeriod    int
	LongEMAPeriod     int
	MarketClose       string
}

// Summary is the end of run report.
type Summary struct {
	Instrument       string
	TotalTrades      int
	InitialCapital   float64
	FinalCapital     float64
	TotalPnL         float64
	ReturnPercent    float64
	StopLossAmount   float64
	TakeProfitAmount float64
	CandlesProcessed int
	EndedAtCutoff    bool
	Trades           []domain.Trade
}

// Event is one discrete, ordered output of the simulation. Seq starts at 1
// and increases by one per event within a run.
type Event struct {
	Seq       int
	Kind      EventKind
	Timestamp string
	Candle    domain.Candle

	ShortEMA float64
	LongEMA  float64

	Trade         *domain.Trade
	CloseReason   domain.CloseReason
	SkipReason    SkipReason
	PnL           float64
	PnLPercent    float64 // of initial capital
	UnrealizedPnL float64

	Session *SessionInfo
	Summary *Summary
}

// EventSink consumes simulation events, e.g. a console presenter or a logger.
type EventSink interface {
	HandleEvent(ctx context.Context, event Event)
}

// EventSinkFunc adapts a plain function to EventSink.
type EventSinkFunc func(ctx context.Context, event Event)

func (f EventSinkFunc) HandleEvent(ctx context.Context, event Event) { f(ctx, event) }
