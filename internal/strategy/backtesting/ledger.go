package backtesting

import (
	"fmt"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
)

// Ledger holds the single position and the append-only trade log. It is a
// value type; appends never write into a backing array shared with an older
// copy, so a copied Ledger is a stable snapshot.
type Ledger struct {
	position domain.Position
	trades   []domain.Trade
}

// Enter opens a position at the candle close and records the ENTRY trade.
func (l *Ledger) Enter(side domain.OrderSide, candle domain.Candle, quantity int) (domain.Trade, error) {
	if l.position.IsOpen {
		return domain.Trade{}, fmt.Errorf("enter at %s: %w", candle.Timestamp, ports.ErrPositionAlreadyOpen)
	}
	if quantity <= 0 {
		return domain.Trade{}, fmt.Errorf("enter at %s with quantity %d: %w", candle.Timestamp, quantity, ports.ErrInvalidQuantity)
	}

	l.position.Open(side, candle.Close, quantity, candle.Timestamp)
	trade := domain.Trade{
		Timestamp: candle.Timestamp,
		Side:      side,
		Type:      domain.Entry,
		Price:     candle.Close,
		Quantity:  quantity,
	}
	l.appendTrade(trade)
	return trade, nil
}

// Exit closes the open position at the candle close and records the EXIT
// trade carrying the realised PnL.
func (l *Ledger) Exit(candle domain.Candle, reason domain.CloseReason) (domain.Trade, error) {
	if !l.position.IsOpen {
		return domain.Trade{}, fmt.Errorf("exit at %s: %w", candle.Timestamp, ports.ErrNoOpenPosition)
	}

	trade := domain.Trade{
		Timestamp:   candle.Timestamp,
		Side:        l.position.Side,
		Type:        domain.Exit,
		Price:       candle.Close,
		Quantity:    l.position.Quantity,
		PNL:         l.position.UnrealizedPnL(candle.Close),
		CloseReason: reason,
	}
	l.appendTrade(trade)
	l.position.Close()
	return trade, nil
}

func (l *Ledger) appendTrade(t domain.Trade) {
	n := len(l.trades)
	l.trades = append(l.trades[:n:n], t)
}

// Position returns a copy of the current position.
func (l *Ledger) Position() domain.Position { return l.position }

// HasOpenPosition reports whether a position is open.
func (l *Ledger) HasOpenPosition() bool { return l.position.IsOpen }

// UnrealizedPnL marks the open position to price.
func (l *Ledger) UnrealizedPnL(price float64) float64 {
	return l.position.UnrealizedPnL(price)
}

// Trades returns a copy of the trade log.
func (l *Ledger) Trades() []domain.Trade {
	out := make([]domain.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}
