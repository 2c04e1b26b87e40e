// Package sessionfile reads and writes market sessions as JSON documents:
//
//	{
//	  "instrument": "RELIANCE",
//	  "previous_day_close": 2450.5,
//	  "capital": 100000,
//	  "candles": [{"timestamp": "09:15", "open": 2530, "high": 2545, "low": 2525, "close": 2540}]
//	}
//
// Unknown keys are ignored.
package sessionfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
)

// DefaultPath is used when no session file is given.
const DefaultPath = "market_data.json"

var _ ports.SessionLoader = (*Loader)(nil)

type candleDoc struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

type sessionDoc struct {
	Instrument       string      `json:"instrument"`
	PreviousDayClose float64     `json:"previous_day_close"`
	Capital          float64     `json:"capital"`
	Candles          []candleDoc `json:"candles"`
}

// Loader loads sessions from files on disk.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a file based session loader.
func NewLoader(logger ports.Logger) *Loader {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Loader{logger: logger}
}

// Load reads the session file at path. It does not validate the session.
func (l *Loader) Load(ctx context.Context, path string) (*domain.MarketSession, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open session file %s: %w", path, err)
	}
	defer f.Close()

	session, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("session file %s: %w", path, err)
	}
	l.logger.Info(ctx, "Market data loaded", map[string]interface{}{
		"path":       path,
		"instrument": session.Instrument,
		"candles":    len(session.Candles),
	})
	return session, nil
}

// Decode parses one session document.
func Decode(r io.Reader) (*domain.MarketSession, error) {
	var doc sessionDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidSession, err)
	}

	session := &domain.MarketSession{
		Instrument:       doc.Instrument,
		PreviousDayClose: doc.PreviousDayClose,
		Capital:          doc.Capital,
		Candles:          make([]domain.Candle, len(doc.Candles)),
	}
	for i, c := range doc.Candles {
		session.Candles[i] = domain.Candle(c)
	}
	return session, nil
}

// Encode writes session as an indented document.
func Encode(w io.Writer, session *domain.MarketSession) error {
	doc := sessionDoc{
		Instrument:       session.Instrument,
		PreviousDayClose: session.PreviousDayClose,
		Capital:          session.Capital,
		Candles:          make([]candleDoc, len(session.Candles)),
	}
	for i, c := range session.Candles {
		doc.Candles[i] = candleDoc(c)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Save writes session to path, creating parent directories.
func Save(path string, session *domain.MarketSession) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, session); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return f.Close()
}
