package ports

import (
	"context"
	"time"

	"gapFadeBot/internal/domain"
)

// RunRepository defines the interface for journaling completed simulation runs.
// Runs are written once and never fed back into later simulations.
type RunRepository interface {
	// SaveRun stores a run and its full trade log.
	SaveRun(ctx context.Context, run *domain.RunRecord) error
	// FindRun retrieves a run (including trades) by ID.
	// Returns nil, nil if not found.
	FindRun(ctx context.Context, id string) (*domain.RunRecord, error)
	// ListRuns retrieves the most recent runs, newest first. An empty
	// instrument matches every instrument. Trades are not loaded.
	ListRuns(ctx context.Context, instrument string, limit int) ([]*domain.RunRecord, error)
}

// SessionLoader loads a fully materialised market session from some source.
type SessionLoader interface {
	Load(ctx context.Context, source string) (*domain.MarketSession, error)
}

// KlineSource provides historical candlesticks for session building.
type KlineSource interface {
	// GetKlinesRange fetches all klines for symbol/interval between start and end.
	GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error)
}
