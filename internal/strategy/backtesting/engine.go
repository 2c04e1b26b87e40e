package backtesting

import (
	"context"
	"errors"
	"fmt"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/risk"
	"gapFadeBot/internal/strategy/strategies"
)

// DefaultMarketClose is the wall-clock time after which an open position is
// closed and the session ends.
const DefaultMarketClose = "15:00"

// Config holds configuration for a simulation run
type Config struct {
	Strategy    strategies.GapExhaustionConfig
	Risk        risk.RiskConfig
	MarketClose string // "HH:MM"
}

// DefaultConfig returns the stock gap-fade parameters.
func DefaultConfig() Config {
	return Config{
		Strategy:    strategies.DefaultGapExhaustionConfig(),
		Risk:        risk.DefaultRiskConfig(),
		MarketClose: DefaultMarketClose,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Strategy.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Risk.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := domain.MinuteOfDay(c.MarketClose); err != nil {
		errs = append(errs, fmt.Errorf("market close: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ports.ErrConfigurationError, errors.Join(errs...))
	}
	return nil
}

// Outcome is the logical completion status of a run.
type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomeValidationFailed Outcome = "validation-failed"
	OutcomeAborted          Outcome = "aborted"
)

// Result holds the results of a simulation run
type Result struct {
	Outcome Outcome
	Summary *Summary // nil unless Outcome is completed
	Events  []Event
}

// ValidateSession checks the input before any candle is processed. Candle
// ordering, OHLC consistency and the previous day close are passed through
// as given.
func ValidateSession(session *domain.MarketSession) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ports.ErrInvalidSession)
	}

	var errs []error
	if len(session.Candles) == 0 {
		errs = append(errs, errors.New("no candles in session"))
	}
	if session.Capital <= 0 {
		errs = append(errs, fmt.Errorf("capital must be positive, got %.2f", session.Capital))
	}
	for i, c := range session.Candles {
		if _, err := domain.MinuteOfDay(c.Timestamp); err != nil {
			errs = append(errs, fmt.Errorf("candle %d: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ports.ErrInvalidSession, errors.Join(errs...))
	}
	return nil
}

// Engine drives market sessions through Step and Finish and fans the
// resulting events out to its sinks. An Engine holds no per-run state, so
// one Engine may run many sessions, including concurrently.
type Engine struct {
	config Config
	logger ports.Logger
	sinks  []EventSink
}

// NewEngine creates a new simulation engine
func NewEngine(config Config, logger ports.Logger, sinks ...EventSink) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Engine{
		config: config,
		logger: logger,
		sinks:  sinks,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Run simulates the whole session. Cancellation is honoured between candles.
func (e *Engine) Run(ctx context.Context, session *domain.MarketSession) (*Result, error) {
	if err := ValidateSession(session); err != nil {
		e.logger.Error(ctx, err, "Market session rejected")
		return &Result{Outcome: OutcomeValidationFailed}, err
	}

	state, err := NewState(e.config, session)
	if err != nil {
		e.logger.Error(ctx, err, "Failed to initialise simulation state")
		return &Result{Outcome: OutcomeValidationFailed}, fmt.Errorf("%w: %w", ports.ErrInvalidSession, err)
	}

	e.logger.Info(ctx, "Simulation started", map[string]interface{}{
		"instrument": session.Instrument,
		"candles":    len(session.Candles),
		"capital":    session.Capital,
	})

	result := &Result{}
	var events []Event
	state, events = Start(state)
	result.Events = e.dispatch(ctx, result.Events, events)

	for _, candle := range session.Candles {
		if state.Status() == SessionEnded {
			break
		}
		if err := ctx.Err(); err != nil {
			e.logger.Warn(ctx, "Simulation aborted", map[string]interface{}{
				"candlesProcessed": state.CandlesProcessed(),
			})
			result.Outcome = OutcomeAborted
			return result, fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
		}
		state, events = Step(state, candle)
		result.Events = e.dispatch(ctx, result.Events, events)
	}

	state, events = Finish(state)
	result.Events = e.dispatch(ctx, result.Events, events)

	summary := state.Summary()
	result.Outcome = OutcomeCompleted
	result.Summary = &summary

	e.logger.Info(ctx, "Simulation completed", map[string]interface{}{
		"instrument":   summary.Instrument,
		"totalTrades":  summary.TotalTrades,
		"finalCapital": summary.FinalCapital,
		"totalPnL":     summary.TotalPnL,
	})
	return result, nil
}

func (e *Engine) dispatch(ctx context.Context, all, events []Event) []Event {
	for _, ev := range events {
		for _, sink := range e.sinks {
			sink.HandleEvent(ctx, ev)
		}
	}
	return append(all, events...)
}
