package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gapFadeBot/config"
	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/strategy/analytics"
	"gapFadeBot/internal/strategy/backtesting"
	"gapFadeBot/internal/utils"
)

// RunReport is everything produced by one simulation run.
type RunReport struct {
	RunID   string
	Result  *backtesting.Result
	Metrics *analytics.PerformanceMetrics
}

// SimulationService orchestrates a single-session backtest: load, simulate,
// analyse, journal and export.
type SimulationService struct {
	cfg    *config.Config
	logger ports.Logger
	loader ports.SessionLoader
	repo   ports.RunRepository // Optional
	sinks  []backtesting.EventSink

	now   func() time.Time
	newID func() string
}

// NewSimulationService creates a new application service instance. repo may
// be nil, in which case runs are not journaled.
func NewSimulationService(
	cfg *config.Config,
	logger ports.Logger,
	loader ports.SessionLoader,
	repo ports.RunRepository,
	sinks ...backtesting.EventSink,
) (*SimulationService, error) {
	if cfg == nil || logger == nil || loader == nil {
		return nil, fmt.Errorf("missing required dependencies for SimulationService")
	}
	if err := cfg.EngineConfig().Validate(); err != nil {
		return nil, err
	}

	return &SimulationService{
		cfg:    cfg,
		logger: logger,
		loader: loader,
		repo:   repo,
		sinks:  sinks,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// Run loads the session from source and simulates it.
func (s *SimulationService) Run(ctx context.Context, source string) (*RunReport, error) {
	session, err := s.loader.Load(ctx, source)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load market session", map[string]interface{}{"source": source})
		return nil, err
	}
	return s.Simulate(ctx, session)
}

// Simulate runs the engine on an already loaded session. A report is returned
// even when the run fails so callers can inspect the outcome.
func (s *SimulationService) Simulate(ctx context.Context, session *domain.MarketSession) (*RunReport, error) {
	report := &RunReport{RunID: s.newID()}

	sinks := append([]backtesting.EventSink{NewLoggingSink(s.logger)}, s.sinks...)
	engine, err := backtesting.NewEngine(s.cfg.EngineConfig(), s.logger, sinks...)
	if err != nil {
		return nil, err
	}

	result, err := engine.Run(ctx, session)
	report.Result = result
	if err != nil {
		return report, err
	}

	summary := result.Summary
	report.Metrics = analytics.AnalyzePerformance(summary.Trades, summary.InitialCapital)

	if s.repo != nil {
		if err := s.journal(ctx, report.RunID, session, summary); err != nil {
			return report, err
		}
	}

	if s.cfg.TradesCSVPath != "" {
		if err := utils.WriteTradesToCSV(summary.Trades, s.cfg.TradesCSVPath); err != nil {
			s.logger.Error(ctx, err, "Failed to export trade log", map[string]interface{}{"path": s.cfg.TradesCSVPath})
			return report, fmt.Errorf("failed to export trade log: %w", err)
		}
		s.logger.Info(ctx, "Trade log exported", map[string]interface{}{
			"path":   s.cfg.TradesCSVPath,
			"trades": len(summary.Trades),
		})
	}

	s.logger.Info(ctx, "Run finished", map[string]interface{}{
		"runId":      report.RunID,
		"roundTrips": report.Metrics.TotalTrades,
		"winRate":    report.Metrics.WinRate,
		"maxDD":      report.Metrics.MaxDrawdown,
	})
	return report, nil
}

func (s *SimulationService) journal(ctx context.Context, runID string, session *domain.MarketSession, summary *backtesting.Summary) error {
	record := &domain.RunRecord{
		ID:               runID,
		Instrument:       summary.Instrument,
		CreatedAt:        s.now().UTC(),
		PreviousDayClose: session.PreviousDayClose,
		InitialCapital:   summary.InitialCapital,
		FinalCapital:     summary.FinalCapital,
		TotalPnL:         summary.TotalPnL,
		ReturnPercent:    summary.ReturnPercent,
		TotalTrades:      summary.TotalTrades,
		EndedAtCutoff:    summary.EndedAtCutoff,
		Trades:           summary.Trades,
	}
	if err := s.repo.SaveRun(ctx, record); err != nil {
		s.logger.Error(ctx, err, "Failed to journal run", map[string]interface{}{"runId": runID})
		return fmt.Errorf("failed to journal run %s: %w", runID, err)
	}
	s.logger.Info(ctx, "Run journaled", map[string]interface{}{"runId": runID})
	return nil
}
