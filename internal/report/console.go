// Package report renders simulation events for people.
package report

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/strategy/backtesting"
)

const (
	ruleHeavy = "════════════════════════════════════════════════════════════════"
	ruleLight = "------------------------------------------------------------"
)

var _ backtesting.EventSink = (*ConsolePresenter)(nil)

// ConsolePresenter writes a human readable run log. Amounts are rounded to
// two decimals and grouped by thousands.
type ConsolePresenter struct {
	mu       sync.Mutex
	out      io.Writer
	printer  *message.Printer
	currency string

	session backtesting.SessionInfo
}

// PresenterOption customises a ConsolePresenter.
type PresenterOption func(*ConsolePresenter)

// WithCurrency sets the symbol printed before amounts.
func WithCurrency(symbol string) PresenterOption {
	return func(p *ConsolePresenter) { p.currency = symbol }
}

// WithLanguage selects the number formatting locale.
func WithLanguage(tag language.Tag) PresenterOption {
	return func(p *ConsolePresenter) { p.printer = message.NewPrinter(tag) }
}

// NewConsolePresenter creates a presenter writing to out.
func NewConsolePresenter(out io.Writer, opts ...PresenterOption) *ConsolePresenter {
	p := &ConsolePresenter{
		out:      out,
		printer:  message.NewPrinter(language.English),
		currency: "₹",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleEvent implements backtesting.EventSink.
func (p *ConsolePresenter) HandleEvent(_ context.Context, e backtesting.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case backtesting.EventSessionStarted:
		if e.Session != nil {
			p.session = *e.Session
		}
		p.header()
	case backtesting.EventWarmup:
		p.printf("\n[%s] Warming up indicators...\n", e.Timestamp)
	case backtesting.EventIndicators:
		c := e.Candle
		p.printf("\n[%s] O:%s H:%s L:%s C:%s | EMA%d:%s EMA%d:%s\n",
			e.Timestamp, p.num(c.Open), p.num(c.High), p.num(c.Low), p.num(c.Close),
			p.session.ShortEMAPeriod, p.num(e.ShortEMA), p.session.LongEMAPeriod, p.num(e.LongEMA))
	case backtesting.EventSignal:
		p.printf("\n*** SIGNAL DETECTED: Two-Candle Pattern Breakdown ***\n")
	case backtesting.EventSignalSkipped:
		p.printf("[INFO] %s\n", e.SkipReason)
	case backtesting.EventTradeExecuted:
		if t := e.Trade; t != nil {
			p.printf(">>> [TRADE EXECUTED] %s | %s %d @ %s at %s\n",
				t.Type, t.Side, t.Quantity, p.num(t.Price), t.Timestamp)
		}
	case backtesting.EventTradeClosed:
		p.printf("<<< [TRADE CLOSED] %s | P&L: %s (%s) at %s\n",
			e.CloseReason.Description(), p.money(e.PnL), p.percent(e.PnLPercent), e.Timestamp)
	case backtesting.EventPositionMark:
		p.printf("    [Position] OPEN | Unrealized P&L: %s\n", p.money(e.UnrealizedPnL))
	case backtesting.EventSessionEnded:
		p.printf("[INFO] Market close (%s) reached, session ended\n", p.session.MarketClose)
	case backtesting.EventSummary:
		if e.Summary != nil {
			p.summary(*e.Summary)
		}
	}
}

func (p *ConsolePresenter) header() {
	s := p.session
	p.printf("\n╔%s╗\n", ruleHeavy)
	p.printf("║%-64s║\n", "          GAP FADE BACKTEST ENGINE")
	p.printf("║%-64s║\n", "          Intraday Mean-Reversion Strategy Simulator")
	p.printf("╚%s╝\n", ruleHeavy)
	p.printf("\n%s\n", ruleHeavy)
	p.printf("Starting Trading Session for %s\n", s.Instrument)
	p.printf("Previous Day Close: %s\n", p.money(s.PreviousDayClose))
	p.printf("Initial Capital: %s\n", p.money(s.InitialCapital))
	p.printf("Stop Loss: %s (%s of capital)\n", p.money(s.StopLossAmount), p.fraction(s.StopLossPercent))
	p.printf("Take Profit: %s (%s of capital)\n", p.money(s.TakeProfitAmount), p.fraction(s.TakeProfitPercent))
	p.printf("%s\n", ruleHeavy)
}

func (p *ConsolePresenter) summary(s backtesting.Summary) {
	mark := "✗"
	if s.TotalPnL >= 0 {
		mark = "✓"
	}
	p.printf("\n%s\n", ruleHeavy)
	p.printf("%s\n", "                    END OF DAY SUMMARY")
	p.printf("%s\n", ruleHeavy)
	p.printf("Instrument:          %s\n", s.Instrument)
	p.printf("Total Trades:        %d\n", s.TotalTrades)
	p.printf("Initial Capital:     %s\n", p.money(s.InitialCapital))
	p.printf("Final Capital:       %s\n", p.money(s.FinalCapital))
	p.printf("Total P&L:           %s %s\n", p.money(s.TotalPnL), mark)
	p.printf("Return:              %s%%\n", p.num(s.ReturnPercent))
	p.printf("%s\n", ruleHeavy)

	if len(s.Trades) == 0 {
		return
	}
	p.printf("\nTrade Log:\n%s\n", ruleLight)
	tw := tabwriter.NewWriter(p.out, 0, 0, 1, ' ', 0)
	for _, t := range s.Trades {
		line := fmt.Sprintf("%s\t| %s\t| %s\t| %d @ %s", t.Timestamp, t.Type, t.Side, t.Quantity, p.money(t.Price))
		if t.Type == domain.Exit {
			line += "\t| P&L: " + p.money(t.PNL)
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
	p.printf("%s\n", ruleLight)
}

func (p *ConsolePresenter) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func (p *ConsolePresenter) num(v float64) string {
	return p.printer.Sprintf("%.2f", round2(v))
}

// money puts the sign ahead of the currency symbol: -₹5.00.
func (p *ConsolePresenter) money(v float64) string {
	r := round2(v)
	if r == 0 {
		r = 0 // drop negative zero
	}
	if r < 0 {
		return "-" + p.currency + p.num(-r)
	}
	return p.currency + p.num(r)
}

func (p *ConsolePresenter) percent(v float64) string {
	s := p.num(v) + "%"
	if v >= 0 {
		return "+" + s
	}
	return s
}

// fraction renders 0.02 as "2%" and 0.075 as "7.5%".
func (p *ConsolePresenter) fraction(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).Round(2).String() + "%"
}
