package backtesting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
)

func TestLedger_EnterAndExit(t *testing.T) {
	var l Ledger

	entry, err := l.Enter(domain.Sell, domain.Candle{Timestamp: "09:20", Close: 100}, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.Entry, entry.Type)
	assert.Equal(t, 0.0, entry.PNL)
	assert.True(t, l.HasOpenPosition())
	assert.Equal(t, 30.0, l.UnrealizedPnL(97))

	exit, err := l.Exit(domain.Candle{Timestamp: "09:25", Close: 97}, domain.CloseReasonTakeProfit)
	require.NoError(t, err)
	assert.Equal(t, domain.Exit, exit.Type)
	assert.Equal(t, domain.Sell, exit.Side)
	assert.Equal(t, 10, exit.Quantity)
	assert.Equal(t, 30.0, exit.PNL)
	assert.Equal(t, domain.CloseReasonTakeProfit, exit.CloseReason)

	assert.False(t, l.HasOpenPosition())
	assert.Equal(t, domain.Position{}, l.Position())
	assert.Len(t, l.Trades(), 2)
}

func TestLedger_SinglePositionDiscipline(t *testing.T) {
	var l Ledger
	_, err := l.Enter(domain.Sell, domain.Candle{Timestamp: "09:20", Close: 100}, 10)
	require.NoError(t, err)

	_, err = l.Enter(domain.Sell, domain.Candle{Timestamp: "09:25", Close: 99}, 5)
	assert.ErrorIs(t, err, ports.ErrPositionAlreadyOpen)
	assert.Len(t, l.Trades(), 1)
	assert.Equal(t, 100.0, l.Position().EntryPrice)
}

func TestLedger_RejectsInvalidQuantity(t *testing.T) {
	var l Ledger
	_, err := l.Enter(domain.Sell, domain.Candle{Timestamp: "09:20", Close: 100}, 0)
	assert.ErrorIs(t, err, ports.ErrInvalidQuantity)
	assert.False(t, l.HasOpenPosition())
	assert.Empty(t, l.Trades())
}

func TestLedger_ExitWithoutPosition(t *testing.T) {
	var l Ledger
	_, err := l.Exit(domain.Candle{Timestamp: "09:20", Close: 100}, domain.CloseReasonStopLoss)
	assert.ErrorIs(t, err, ports.ErrNoOpenPosition)
	assert.Empty(t, l.Trades())
}

func TestLedger_CopyDoesNotAlias(t *testing.T) {
	var l Ledger
	_, err := l.Enter(domain.Sell, domain.Candle{Timestamp: "09:20", Close: 100}, 10)
	require.NoError(t, err)

	snapshot := l
	_, err = l.Exit(domain.Candle{Timestamp: "09:25", Close: 101}, domain.CloseReasonStopLoss)
	require.NoError(t, err)
	_, err = snapshot.Exit(domain.Candle{Timestamp: "09:30", Close: 90}, domain.CloseReasonEndOfData)
	require.NoError(t, err)

	require.Len(t, l.Trades(), 2)
	require.Len(t, snapshot.Trades(), 2)
	assert.Equal(t, domain.CloseReasonStopLoss, l.Trades()[1].CloseReason)
	assert.Equal(t, domain.CloseReasonEndOfData, snapshot.Trades()[1].CloseReason)
}
