package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapFadeBot/config"
	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/strategy/backtesting"
	"gapFadeBot/internal/strategy/indicators"
	"gapFadeBot/internal/utils"
)

// Mock implementations
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

type mockLoader struct {
	session *domain.MarketSession
	err     error
	sources []string
}

func (m *mockLoader) Load(ctx context.Context, source string) (*domain.MarketSession, error) {
	m.sources = append(m.sources, source)
	return m.session, m.err
}

type mockRunRepository struct {
	saved   []*domain.RunRecord
	saveErr error
}

func (m *mockRunRepository) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, run)
	return nil
}

func (m *mockRunRepository) FindRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	for _, r := range m.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRunRepository) ListRuns(ctx context.Context, instrument string, limit int) ([]*domain.RunRecord, error) {
	return m.saved, nil
}

// Helper functions
func testConfig() *config.Config {
	return &config.Config{
		ShortEMAPeriod: 3,
		LongEMAPeriod:  5,
		GapThreshold:   0.03,
		EMAReadiness:   indicators.ReadyAfterFirstUpdate,
		StopLossPct:    0.02,
		TakeProfitPct:  0.07,
		MaxDailyTrades: 2,
		MarketClose:    "15:00",
	}
}

func testSession() *domain.MarketSession {
	return &domain.MarketSession{
		Instrument:       "NIFTY",
		PreviousDayClose: 100,
		Capital:          100000,
		Candles: []domain.Candle{
			{Timestamp: "09:15", Open: 104, High: 106, Low: 102, Close: 101},
			{Timestamp: "09:20", Open: 101, High: 102, Low: 100, Close: 100},
			{Timestamp: "09:25", Open: 100, High: 100.5, Low: 98.5, Close: 99},
		},
	}
}

func newTestService(t *testing.T, cfg *config.Config, loader ports.SessionLoader, repo ports.RunRepository, sinks ...backtesting.EventSink) (*SimulationService, *mockLogger) {
	t.Helper()
	log := &mockLogger{}
	svc, err := NewSimulationService(cfg, log, loader, repo, sinks...)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "run-1" }
	return svc, log
}

func TestNewSimulationService(t *testing.T) {
	t.Run("missing dependencies", func(t *testing.T) {
		_, err := NewSimulationService(nil, &mockLogger{}, &mockLoader{}, nil)
		assert.Error(t, err)
		_, err = NewSimulationService(testConfig(), &mockLogger{}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("invalid engine config", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxDailyTrades = 0
		_, err := NewSimulationService(cfg, &mockLogger{}, &mockLoader{}, nil)
		assert.ErrorIs(t, err, ports.ErrConfigurationError)
	})

	t.Run("default id generator", func(t *testing.T) {
		svc, err := NewSimulationService(testConfig(), &mockLogger{}, &mockLoader{}, nil)
		require.NoError(t, err)
		assert.Len(t, svc.newID(), 36)
		assert.NotEqual(t, svc.newID(), svc.newID())
	})
}

func TestSimulationService_Run(t *testing.T) {
	loader := &mockLoader{session: testSession()}
	repo := &mockRunRepository{}
	var seen []backtesting.EventKind
	sink := backtesting.EventSinkFunc(func(ctx context.Context, e backtesting.Event) {
		seen = append(seen, e.Kind)
	})

	svc, log := newTestService(t, testConfig(), loader, repo, sink)
	report, err := svc.Run(context.Background(), "market_data.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"market_data.json"}, loader.sources)
	assert.Equal(t, "run-1", report.RunID)
	require.NotNil(t, report.Result.Summary)
	assert.Equal(t, backtesting.OutcomeCompleted, report.Result.Outcome)
	assert.Equal(t, 1000.0, report.Result.Summary.TotalPnL)
	assert.Len(t, seen, len(report.Result.Events))

	require.NotNil(t, report.Metrics)
	assert.Equal(t, 1, report.Metrics.TotalTrades)
	assert.Equal(t, 1, report.Metrics.WinningTrades)

	require.Len(t, repo.saved, 1)
	run := repo.saved[0]
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "NIFTY", run.Instrument)
	assert.Equal(t, 100.0, run.PreviousDayClose)
	assert.Equal(t, 101000.0, run.FinalCapital)
	assert.Equal(t, 1, run.TotalTrades)
	assert.Len(t, run.Trades, 2)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), run.CreatedAt)

	assert.Contains(t, log.infoMsgs, "Trade executed")
	assert.Contains(t, log.infoMsgs, "Trade closed")
	assert.Contains(t, log.infoMsgs, "Run journaled")
	assert.Contains(t, log.debugMsgs, "Candle processed")
	assert.Empty(t, log.errorMsgs)
}

func TestSimulationService_LoadFailure(t *testing.T) {
	loader := &mockLoader{err: ports.ErrInvalidSession}
	repo := &mockRunRepository{}
	svc, log := newTestService(t, testConfig(), loader, repo)

	report, err := svc.Run(context.Background(), "missing.json")
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ports.ErrInvalidSession)
	assert.Empty(t, repo.saved)
	assert.Contains(t, log.errorMsgs, "Failed to load market session")
}

func TestSimulationService_ValidationFailure(t *testing.T) {
	session := testSession()
	session.Candles = nil
	repo := &mockRunRepository{}
	svc, _ := newTestService(t, testConfig(), &mockLoader{}, repo)

	report, err := svc.Simulate(context.Background(), session)
	assert.ErrorIs(t, err, ports.ErrInvalidSession)
	require.NotNil(t, report)
	assert.Equal(t, backtesting.OutcomeValidationFailed, report.Result.Outcome)
	assert.Nil(t, report.Metrics)
	assert.Empty(t, repo.saved, "failed runs are not journaled")
}

func TestSimulationService_JournalFailure(t *testing.T) {
	repo := &mockRunRepository{saveErr: ports.ErrDuplicateEntry}
	svc, log := newTestService(t, testConfig(), &mockLoader{}, repo)

	report, err := svc.Simulate(context.Background(), testSession())
	assert.ErrorIs(t, err, ports.ErrDuplicateEntry)
	require.NotNil(t, report)
	assert.Equal(t, backtesting.OutcomeCompleted, report.Result.Outcome)
	assert.Contains(t, log.errorMsgs, "Failed to journal run")
}

func TestSimulationService_NoRepository(t *testing.T) {
	svc, log := newTestService(t, testConfig(), &mockLoader{}, nil)

	_, err := svc.Simulate(context.Background(), testSession())
	require.NoError(t, err)
	assert.NotContains(t, log.infoMsgs, "Run journaled")
}

func TestSimulationService_ExportsTradeLog(t *testing.T) {
	cfg := testConfig()
	cfg.TradesCSVPath = filepath.Join(t.TempDir(), "trades.csv")
	svc, _ := newTestService(t, cfg, &mockLoader{}, nil)

	report, err := svc.Simulate(context.Background(), testSession())
	require.NoError(t, err)

	trades, err := utils.ReadTradesFromCSV(cfg.TradesCSVPath)
	require.NoError(t, err)
	assert.Equal(t, report.Result.Summary.Trades, trades)
}

func TestSimulationService_ExportFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	cfg := testConfig()
	cfg.TradesCSVPath = filepath.Join(blocker, "trades.csv")
	svc, _ := newTestService(t, cfg, &mockLoader{}, nil)

	_, err := svc.Simulate(context.Background(), testSession())
	assert.Error(t, err)
}

func TestSimulationService_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc, _ := newTestService(t, testConfig(), &mockLoader{}, nil)

	report, err := svc.Simulate(ctx, testSession())
	assert.True(t, errors.Is(err, ports.ErrContextCanceled))
	assert.Equal(t, backtesting.OutcomeAborted, report.Result.Outcome)
}
