package domain

// Trade is an immutable record of a single execution, either the entry that
// opened a position or the exit that closed it.
type Trade struct {
	Timestamp   string      // Candle timestamp of the execution ("HH:MM")
	Side        OrderSide   // Side of the position the execution belongs to
	Type        TradeType   // ENTRY or EXIT
	Price       float64     // Execution price (the candle close)
	Quantity    int         // Shares/contracts
	PNL         float64     // Realised profit and loss, zero for entries
	CloseReason CloseReason // Set on exits only
}

// IsEntry reports whether the trade opened a position.
func (t Trade) IsEntry() bool {
	return t.Type == Entry
}

// IsExit reports whether the trade closed a position.
func (t Trade) IsExit() bool {
	return t.Type == Exit
}
