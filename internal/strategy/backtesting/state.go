package backtesting

import (
	"fmt"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/risk"
	"gapFadeBot/internal/strategy/strategies"
)

// SessionStatus is the lifecycle of a simulated trading session.
type SessionStatus int

const (
	SessionActive SessionStatus = iota
	SessionEnded
)

func (s SessionStatus) String() string {
	if s == SessionEnded {
		return "ENDED"
	}
	return "ACTIVE"
}

// State is everything a run carries from one candle to the next. Every
// component is held by value, so a State returned from Step never shares
// mutable data with the State passed in.
type State struct {
	config       Config
	info         SessionInfo
	cutoffMinute int

	detector strategies.GapExhaustion
	risk     risk.RiskManager
	ledger   Ledger

	status           SessionStatus
	endedAtCutoff    bool
	finished         bool
	candlesProcessed int
	lastCandle       domain.Candle
	seq              int
}

// NewState builds the initial state of a run. The session must already have
// passed ValidateSession.
func NewState(config Config, session *domain.MarketSession) (State, error) {
	if err := config.Validate(); err != nil {
		return State{}, err
	}
	cutoff, err := domain.MinuteOfDay(config.MarketClose)
	if err != nil {
		return State{}, fmt.Errorf("invalid market close: %w", err)
	}
	detector, err := strategies.NewGapExhaustion(config.Strategy, session.PreviousDayClose)
	if err != nil {
		return State{}, err
	}
	rm, err := risk.NewRiskManager(config.Risk, session.Capital)
	if err != nil {
		return State{}, err
	}

	return State{
		config: config,
		info: SessionInfo{
			Instrument:        session.Instrument,
			PreviousDayClose:  session.PreviousDayClose,
			InitialCapital:    rm.InitialCapital(),
			StopLossAmount:    rm.StopLossAmount(),
			TakeProfitAmount:  rm.TakeProfitAmount(),
			StopLossPercent:   config.Risk.StopLossPercent,
			TakeProfitPercent: config.Risk.TakeProfitPercent,
			ShortEMAPeriod:    config.Strategy.ShortEMAPeriod,
			LongEMAPeriod:     config.Strategy.LongEMAPeriod,
			MarketClose:       config.MarketClose,
		},
		cutoffMinute: cutoff,
		detector:     detector,
		risk:         rm,
		status:       SessionActive,
	}, nil
}

func (s State) Status() SessionStatus              { return s.status }
func (s State) Finished() bool                     { return s.finished }
func (s State) CandlesProcessed() int              { return s.candlesProcessed }
func (s State) Position() domain.Position          { return s.ledger.Position() }
func (s State) Trades() []domain.Trade             { return s.ledger.Trades() }
func (s State) Detector() strategies.GapExhaustion { return s.detector }
func (s State) Risk() risk.RiskManager             { return s.risk }
func (s State) Info() SessionInfo                  { return s.info }

// Summary reports the run so far. After Finish it is the final summary.
func (s State) Summary() Summary {
	return Summary{
		Instrument:       s.info.Instrument,
		TotalTrades:      s.risk.TradesCount(),
		InitialCapital:   s.risk.InitialCapital(),
		FinalCapital:     s.risk.CurrentCapital(),
		TotalPnL:         s.risk.TotalPnL(),
		ReturnPercent:    s.risk.TotalPnLPercent(),
		StopLossAmount:   s.risk.StopLossAmount(),
		TakeProfitAmount: s.risk.TakeProfitAmount(),
		CandlesProcessed: s.candlesProcessed,
		EndedAtCutoff:    s.endedAtCutoff,
		Trades:           s.ledger.Trades(),
	}
}
