package domain

import "time"

// RunRecord is the journal entry of one completed simulation run.
type RunRecord struct {
	ID               string    // Unique run identifier
	Instrument       string    // Instrument the session belonged to
	CreatedAt        time.Time // Wall-clock time the run was recorded
	PreviousDayClose float64
	InitialCapital   float64
	FinalCapital     float64
	TotalPnL         float64
	ReturnPercent    float64
	TotalTrades      int  // Entries executed during the session
	EndedAtCutoff    bool // Session stopped at the market close cutoff
	Trades           []Trade
}
