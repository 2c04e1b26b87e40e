package analytics

import (
	"math"

	"gapFadeBot/internal/domain"
)

// PerformanceMetrics holds comprehensive performance metrics for a strategy
type PerformanceMetrics struct {
	// Basic Metrics
	TotalTrades        int // completed round trips
	WinningTrades      int
	LosingTrades       int
	WinRate            float64
	TotalProfit        float64
	MaxDrawdown        float64
	ProfitFactor       float64
	AverageWin         float64
	AverageLoss        float64
	FinalBalance       float64
	ReturnOnInvestment float64

	// Advanced Metrics
	MaxConsecutiveWins    int
	MaxConsecutiveLosses  int
	AverageHoldingMinutes float64
	RecoveryFactor        float64
	Expectancy            float64
	RiskRewardRatio       float64
	CloseReasons          map[domain.CloseReason]int
	Drawdowns             []Drawdown
	EquityCurve           []EquityPoint
	RoundTrips            []RoundTrip
}

// RoundTrip is one ENTRY paired with the EXIT that closed it.
type RoundTrip struct {
	Entry domain.Trade
	Exit  domain.Trade
}

// PNL returns the realised profit of the round trip.
func (r RoundTrip) PNL() float64 { return r.Exit.PNL }

// HoldingMinutes is the wall-clock time between entry and exit. It is 0 when
// either timestamp cannot be parsed.
func (r RoundTrip) HoldingMinutes() int {
	entry, err := domain.MinuteOfDay(r.Entry.Timestamp)
	if err != nil {
		return 0
	}
	exit, err := domain.MinuteOfDay(r.Exit.Timestamp)
	if err != nil {
		return 0
	}
	return exit - entry
}

// Drawdown represents a drawdown period
type Drawdown struct {
	Start      string
	End        string
	StartValue float64
	EndValue   float64
	Depth      float64
}

// EquityPoint represents a point on the equity curve
type EquityPoint struct {
	Timestamp string
	Value     float64
	Drawdown  float64
}

// PairRoundTrips walks the trade log and matches every EXIT with the ENTRY
// before it. An ENTRY that is never closed is ignored, as is an EXIT with no
// preceding ENTRY.
func PairRoundTrips(trades []domain.Trade) []RoundTrip {
	var trips []RoundTrip
	var pending *domain.Trade
	for i := range trades {
		t := trades[i]
		switch {
		case t.IsEntry():
			pending = &t
		case t.IsExit() && pending != nil:
			trips = append(trips, RoundTrip{Entry: *pending, Exit: t})
			pending = nil
		}
	}
	return trips
}

// AnalyzePerformance calculates comprehensive performance metrics from a trade log
func AnalyzePerformance(trades []domain.Trade, initialBalance float64) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		FinalBalance: initialBalance,
		CloseReasons: make(map[domain.CloseReason]int),
		Drawdowns:    make([]Drawdown, 0),
		EquityCurve:  make([]EquityPoint, 0),
	}

	trips := PairRoundTrips(trades)
	metrics.RoundTrips = trips
	if len(trips) == 0 {
		return metrics
	}

	var currentBalance = initialBalance
	var peakBalance = initialBalance
	var currentDrawdown *Drawdown
	var consecutiveWins, consecutiveLosses int
	var grossProfit, grossLoss float64
	var totalMinutes int

	for _, trip := range trips {
		pnl := trip.PNL()
		metrics.TotalTrades++
		metrics.CloseReasons[trip.Exit.CloseReason]++
		totalMinutes += trip.HoldingMinutes()

		if pnl > 0 {
			metrics.WinningTrades++
			grossProfit += pnl
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			metrics.LosingTrades++
			grossLoss += pnl
			consecutiveLosses++
			consecutiveWins = 0
		}
		metrics.MaxConsecutiveWins = max(metrics.MaxConsecutiveWins, consecutiveWins)
		metrics.MaxConsecutiveLosses = max(metrics.MaxConsecutiveLosses, consecutiveLosses)

		currentBalance += pnl
		metrics.TotalProfit += pnl
		metrics.FinalBalance = currentBalance

		ts := trip.Exit.Timestamp
		if currentBalance > peakBalance {
			peakBalance = currentBalance
			if currentDrawdown != nil {
				currentDrawdown.End = ts
				currentDrawdown.EndValue = currentBalance
				metrics.Drawdowns = append(metrics.Drawdowns, *currentDrawdown)
				currentDrawdown = nil
			}
		} else if currentBalance < peakBalance {
			drawdown := (peakBalance - currentBalance) / peakBalance
			if currentDrawdown == nil {
				currentDrawdown = &Drawdown{
					Start:      ts,
					StartValue: peakBalance,
					Depth:      drawdown,
				}
			} else {
				currentDrawdown.Depth = math.Max(currentDrawdown.Depth, drawdown)
			}
			metrics.MaxDrawdown = math.Max(metrics.MaxDrawdown, drawdown)
		}

		metrics.EquityCurve = append(metrics.EquityCurve, EquityPoint{
			Timestamp: ts,
			Value:     currentBalance,
			Drawdown:  (peakBalance - currentBalance) / peakBalance,
		})
	}

	// Close any open drawdown
	if currentDrawdown != nil {
		currentDrawdown.End = trips[len(trips)-1].Exit.Timestamp
		currentDrawdown.EndValue = currentBalance
		metrics.Drawdowns = append(metrics.Drawdowns, *currentDrawdown)
	}

	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	if metrics.WinningTrades > 0 {
		metrics.AverageWin = grossProfit / float64(metrics.WinningTrades)
	}
	if metrics.LosingTrades > 0 {
		metrics.AverageLoss = grossLoss / float64(metrics.LosingTrades)
	}
	if grossLoss != 0 {
		metrics.ProfitFactor = grossProfit / -grossLoss
	}
	if metrics.AverageLoss != 0 {
		metrics.RiskRewardRatio = metrics.AverageWin / -metrics.AverageLoss
	}
	metrics.ReturnOnInvestment = (metrics.FinalBalance - initialBalance) / initialBalance
	metrics.AverageHoldingMinutes = float64(totalMinutes) / float64(metrics.TotalTrades)
	if metrics.MaxDrawdown > 0 {
		metrics.RecoveryFactor = metrics.TotalProfit / (initialBalance * metrics.MaxDrawdown)
	}
	metrics.Expectancy = (metrics.WinRate * metrics.AverageWin) + ((1 - metrics.WinRate) * metrics.AverageLoss)

	return metrics
}
