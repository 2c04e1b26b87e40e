package domain

// Position is the single position the simulator may hold. The zero value is a
// flat (closed) position.
type Position struct {
	IsOpen         bool
	Side           OrderSide
	EntryPrice     float64
	Quantity       int
	EntryTimestamp string
}

// Open populates the position with a new entry.
func (p *Position) Open(side OrderSide, price float64, quantity int, ts string) {
	p.IsOpen = true
	p.Side = side
	p.EntryPrice = price
	p.Quantity = quantity
	p.EntryTimestamp = ts
}

// Close resets every field back to the flat state. It does not record a trade.
func (p *Position) Close() {
	*p = Position{}
}

// UnrealizedPnL marks the position to currentPrice. A flat position is worth 0.
func (p *Position) UnrealizedPnL(currentPrice float64) float64 {
	if !p.IsOpen {
		return 0
	}
	if p.Side == Buy {
		return (currentPrice - p.EntryPrice) * float64(p.Quantity)
	}
	return (p.EntryPrice - currentPrice) * float64(p.Quantity)
}
