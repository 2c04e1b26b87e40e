package backtesting

import (
	"gapFadeBot/internal/domain"
)

// recorder stamps events with the next sequence number of the state.
type recorder struct {
	state  *State
	events []Event
}

func (r *recorder) emit(e Event) {
	r.state.seq++
	e.Seq = r.state.seq
	r.events = append(r.events, e)
}

func (r *recorder) emitAt(candle domain.Candle, e Event) {
	e.Timestamp = candle.Timestamp
	e.Candle = candle
	r.emit(e)
}

// Start announces the session. It is optional; Step works without it.
func Start(s State) (State, []Event) {
	rec := recorder{state: &s}
	info := s.info
	rec.emit(Event{Kind: EventSessionStarted, Session: &info})
	return s, rec.events
}

// Step advances the session by one candle:
//  1. the detector consumes the candle and may signal
//  2. an open position is checked for stop-loss, take-profit and market close
//  3. a signal opens a SELL position if the session is still active
//  4. an open position is marked to the candle close
//
// Candles given to an ended session are ignored.
func Step(s State, candle domain.Candle) (State, []Event) {
	if s.status != SessionActive || s.finished {
		return s, nil
	}
	rec := recorder{state: &s}

	signal := s.detector.Process(candle)
	s.candlesProcessed++
	s.lastCandle = candle

	if s.detector.Ready() {
		rec.emitAt(candle, Event{
			Kind:     EventIndicators,
			ShortEMA: s.detector.ShortEMA(),
			LongEMA:  s.detector.LongEMA(),
		})
	} else {
		rec.emitAt(candle, Event{Kind: EventWarmup})
	}

	s.checkExits(&rec, candle)

	if signal && s.status == SessionActive {
		rec.emitAt(candle, Event{Kind: EventSignal})
		s.enterShort(&rec, candle)
	}

	if s.ledger.HasOpenPosition() {
		rec.emitAt(candle, Event{
			Kind:          EventPositionMark,
			UnrealizedPnL: s.ledger.UnrealizedPnL(candle.Close),
		})
	}

	return s, rec.events
}

// Finish force closes an open position at the last processed candle and
// emits the summary. Calling it again is a no-op.
func Finish(s State) (State, []Event) {
	if s.finished {
		return s, nil
	}
	rec := recorder{state: &s}

	if s.ledger.HasOpenPosition() && s.candlesProcessed > 0 {
		s.closePosition(&rec, s.lastCandle, domain.CloseReasonEndOfData)
	}

	s.status = SessionEnded
	s.finished = true
	summary := s.Summary()
	rec.emit(Event{Kind: EventSummary, Timestamp: s.lastCandle.Timestamp, Summary: &summary})
	return s, rec.events
}

// checkExits applies at most one exit, in priority order.
func (s *State) checkExits(rec *recorder, candle domain.Candle) {
	if !s.ledger.HasOpenPosition() {
		return
	}
	pnl := s.ledger.UnrealizedPnL(candle.Close)

	switch {
	case s.risk.IsStopLossHit(pnl):
		s.closePosition(rec, candle, domain.CloseReasonStopLoss)
	case s.risk.IsTakeProfitHit(pnl):
		s.closePosition(rec, candle, domain.CloseReasonTakeProfit)
	case s.isPastMarketClose(candle):
		s.closePosition(rec, candle, domain.CloseReasonMarketClose)
		s.status = SessionEnded
		s.endedAtCutoff = true
		rec.emitAt(candle, Event{Kind: EventSessionEnded, CloseReason: domain.CloseReasonMarketClose})
	}
}

func (s *State) isPastMarketClose(candle domain.Candle) bool {
	minute, err := domain.MinuteOfDay(candle.Timestamp)
	if err != nil {
		return false
	}
	return minute >= s.cutoffMinute
}

func (s *State) closePosition(rec *recorder, candle domain.Candle, reason domain.CloseReason) {
	trade, err := s.ledger.Exit(candle, reason)
	if err != nil {
		return
	}
	s.risk.UpdateCapital(trade.PNL)
	rec.emitAt(candle, Event{
		Kind:        EventTradeClosed,
		Trade:       &trade,
		CloseReason: reason,
		PnL:         trade.PNL,
		PnLPercent:  trade.PNL / s.risk.InitialCapital() * 100,
	})
}

func (s *State) enterShort(rec *recorder, candle domain.Candle) {
	if !s.risk.CanTrade() {
		rec.emitAt(candle, Event{Kind: EventSignalSkipped, SkipReason: SkipTradeLimit})
		return
	}
	if s.ledger.HasOpenPosition() {
		rec.emitAt(candle, Event{Kind: EventSignalSkipped, SkipReason: SkipPositionOpen})
		return
	}
	quantity := s.risk.CalculatePositionSize(candle.Close)
	if quantity <= 0 {
		rec.emitAt(candle, Event{Kind: EventSignalSkipped, SkipReason: SkipInsufficientCapital})
		return
	}

	trade, err := s.ledger.Enter(domain.Sell, candle, quantity)
	if err != nil {
		return
	}
	s.risk.RecordTrade()
	rec.emitAt(candle, Event{Kind: EventTradeExecuted, Trade: &trade})
}
