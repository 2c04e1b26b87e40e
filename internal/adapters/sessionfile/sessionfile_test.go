package sessionfile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "instrument": "RELIANCE",
  "previous_day_close": 2450.5,
  "capital": 100000,
  "exchange": "NSE",
  "candles": [
    {"timestamp": "09:15", "open": 2530, "high": 2545, "low": 2525, "close": 2540},
    {"timestamp": "09:20", "open": 2540, "high": 2541, "low": 2510, "close": 2512.35}
  ]
}`

func TestDecode(t *testing.T) {
	session, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "RELIANCE", session.Instrument)
	assert.Equal(t, 2450.5, session.PreviousDayClose)
	assert.Equal(t, 100000.0, session.Capital)
	require.Len(t, session.Candles, 2)
	assert.Equal(t, domain.Candle{Timestamp: "09:20", Open: 2540, High: 2541, Low: 2510, Close: 2512.35}, session.Candles[1])
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"instrument": "X", "candles": [`))
	assert.ErrorIs(t, err, ports.ErrInvalidSession)

	_, err = Decode(strings.NewReader(`{"capital": "lots"}`))
	assert.ErrorIs(t, err, ports.ErrInvalidSession)
}

func TestSaveAndLoad(t *testing.T) {
	session, err := Decode(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "session.json")
	require.NoError(t, Save(path, session))

	loaded, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(ports.NopLogger{}).Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "cannot open session file")
}
