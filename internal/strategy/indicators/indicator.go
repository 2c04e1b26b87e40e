package indicators

// Indicator represents a technical indicator fed incrementally, one closing
// price at a time.
type Indicator interface {
	// Update incorporates one new closing price.
	Update(price float64)

	// Value returns the current indicator value.
	Value() float64

	// IsReady reports whether Value is meaningful under the indicator's readiness policy.
	IsReady() bool

	// Name returns the name of the indicator
	Name() string
}

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// Readiness decides when an incremental indicator starts reporting ready.
type Readiness int

const (
	// ReadyAfterFirstUpdate reports ready as soon as one price has been seen.
	ReadyAfterFirstUpdate Readiness = iota
	// ReadyAfterFullPeriod waits until Period prices have been seen.
	ReadyAfterFullPeriod
)

// String returns the config-file spelling of the policy.
func (r Readiness) String() string {
	switch r {
	case ReadyAfterFullPeriod:
		return "period"
	default:
		return "first"
	}
}

// ParseReadiness converts "first" or "period" into a Readiness.
func ParseReadiness(s string) (Readiness, bool) {
	switch s {
	case "", "first":
		return ReadyAfterFirstUpdate, true
	case "period":
		return ReadyAfterFullPeriod, true
	default:
		return ReadyAfterFirstUpdate, false
	}
}
