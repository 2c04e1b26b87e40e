package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"

	"github.com/mattn/go-sqlite3" // SQLite driver
)

var _ ports.RunRepository = (*Repository)(nil)

// Repository implements the ports.RunRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/gap_fade_runs.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		instrument TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		previous_day_close REAL NOT NULL,
		initial_capital REAL NOT NULL,
		final_capital REAL NOT NULL,
		total_pnl REAL NOT NULL,
		return_percent REAL NOT NULL,
		total_trades INTEGER NOT NULL,
		ended_at_cutoff INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS run_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		ts TEXT NOT NULL,
		side TEXT NOT NULL,
		type TEXT NOT NULL,
		price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		pnl REAL NOT NULL,
		close_reason TEXT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_instrument_created ON runs (instrument, created_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_run_trades_run_seq ON run_trades (run_id, seq);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveRun stores the run row and every trade in one transaction.
func (r *Repository) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run must have an ID: %w", ports.ErrInvalidRequest)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for run %s: %w: %w", run.ID, ports.ErrQueryFailed, err)
	}
	defer tx.Rollback() // no-op after commit

	const runQuery = `
	INSERT INTO runs (id, instrument, created_at, previous_day_close, initial_capital,
	                  final_capital, total_pnl, return_percent, total_trades, ended_at_cutoff)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, runQuery,
		run.ID, run.Instrument, run.CreatedAt.UTC(), run.PreviousDayClose, run.InitialCapital,
		run.FinalCapital, run.TotalPnL, run.ReturnPercent, run.TotalTrades, run.EndedAtCutoff)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("run %s already stored: %w", run.ID, ports.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert run %s: %w: %w", run.ID, ports.ErrQueryFailed, err)
	}

	const tradeQuery = `
	INSERT INTO run_trades (run_id, seq, ts, side, type, price, quantity, pnl, close_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, tradeQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare trade insert: %w: %w", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for i, t := range run.Trades {
		var closeReason sql.NullString
		if t.CloseReason != "" {
			closeReason = sql.NullString{String: string(t.CloseReason), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, t.Timestamp, string(t.Side), string(t.Type),
			t.Price, t.Quantity, t.PNL, closeReason); err != nil {
			return fmt.Errorf("failed to insert trade %d of run %s: %w: %w", i, run.ID, ports.ErrQueryFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w: %w", run.ID, ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Run stored", map[string]interface{}{"runID": run.ID, "trades": len(run.Trades)})
	return nil
}

// FindRun retrieves a run by its ID together with its trades.
func (r *Repository) FindRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	const query = `
	SELECT id, instrument, created_at, previous_day_close, initial_capital, final_capital,
	       total_pnl, return_percent, total_trades, ended_at_cutoff
	FROM runs
	WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Run not found by ID", map[string]interface{}{"runID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query run %s: %w: %w", id, ports.ErrQueryFailed, err)
	}

	trades, err := r.findTrades(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Trades = trades
	return run, nil
}

func (r *Repository) findTrades(ctx context.Context, runID string) ([]domain.Trade, error) {
	const query = `
	SELECT ts, side, type, price, quantity, pnl, close_reason
	FROM run_trades
	WHERE run_id = ? ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades of run %s: %w: %w", runID, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade of run %s: %w", runID, err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// ListRuns retrieves the most recent runs without their trades.
func (r *Repository) ListRuns(ctx context.Context, instrument string, limit int) ([]*domain.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
	SELECT id, instrument, created_at, previous_day_close, initial_capital, final_capital,
	       total_pnl, return_percent, total_trades, ended_at_cutoff
	FROM runs
	WHERE (? = '' OR instrument = ?)
	ORDER BY created_at DESC, id
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, instrument, instrument, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	runs := make([]*domain.RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run during ListRuns: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

// GetTotalPnL sums the PnL of every stored run for instrument ("" for all).
func (r *Repository) GetTotalPnL(ctx context.Context, instrument string) (float64, error) {
	const query = `SELECT COALESCE(SUM(total_pnl), 0) FROM runs WHERE (? = '' OR instrument = ?)`
	var total float64
	if err := r.db.QueryRowContext(ctx, query, instrument, instrument).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to calculate total PnL: %w: %w", ports.ErrQueryFailed, err)
	}
	return total, nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*domain.RunRecord, error) {
	run := &domain.RunRecord{}
	err := s.Scan(
		&run.ID, &run.Instrument, &run.CreatedAt, &run.PreviousDayClose, &run.InitialCapital,
		&run.FinalCapital, &run.TotalPnL, &run.ReturnPercent, &run.TotalTrades, &run.EndedAtCutoff)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	return run, nil
}

func scanTrade(s scanner) (domain.Trade, error) {
	var t domain.Trade
	var side, typ string
	var closeReason sql.NullString
	if err := s.Scan(&t.Timestamp, &side, &typ, &t.Price, &t.Quantity, &t.PNL, &closeReason); err != nil {
		return domain.Trade{}, err
	}
	t.Side = domain.OrderSide(side)
	t.Type = domain.TradeType(typ)
	if closeReason.Valid {
		t.CloseReason = domain.CloseReason(closeReason.String)
	}
	return t, nil
}
