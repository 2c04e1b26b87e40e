package domain

// OrderSide represents the side of a trade (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// TradeType distinguishes opening executions from closing ones.
type TradeType string

const (
	Entry TradeType = "ENTRY"
	Exit  TradeType = "EXIT"
)

// CloseReason indicates why a position was closed.
type CloseReason string

const (
	CloseReasonStopLoss    CloseReason = "SL"
	CloseReasonTakeProfit  CloseReason = "TP"
	CloseReasonMarketClose CloseReason = "MARKET_CLOSE" // Session cutoff time reached
	CloseReasonEndOfData   CloseReason = "END_OF_DATA"  // Candle stream exhausted with a position open
)

// Description returns the human readable label of a close reason.
func (r CloseReason) Description() string {
	switch r {
	case CloseReasonStopLoss:
		return "Stop Loss Hit"
	case CloseReasonTakeProfit:
		return "Take Profit Hit"
	case CloseReasonMarketClose:
		return "Market Close"
	case CloseReasonEndOfData:
		return "End of Market Data"
	default:
		return string(r)
	}
}
