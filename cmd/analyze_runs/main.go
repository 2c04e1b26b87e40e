package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"gapFadeBot/config"
	"gapFadeBot/internal/adapters/logger"
	"gapFadeBot/internal/adapters/sqlite"
	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/strategy/analytics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	instrument := flag.String("instrument", "", "only show runs for this instrument")
	limit := flag.Int("limit", 20, "number of runs to show")
	detail := flag.String("run", "", "print the trade log and analytics of one run")
	flag.Parse()

	if cfg.DBPath == "" {
		log.Fatalf("DB_PATH is not set; nothing to analyse")
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("Error opening run journal: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if *detail != "" {
		if err := printRun(ctx, os.Stdout, repo, *detail); err != nil {
			log.Fatalf("Error showing run: %v", err)
		}
		return
	}

	runs, err := repo.ListRuns(ctx, *instrument, *limit)
	if err != nil {
		log.Fatalf("Error listing runs: %v", err)
	}
	if len(runs) == 0 {
		log.Println("No runs journaled yet. Run the simulator with DB_PATH set first.")
		return
	}

	// Create a tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Run\tCreated\tInstrument\tTrades\tCapital\tFinal\tPnL\tReturn%\tCutoff\t")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%t\t\n",
			shortID(r.ID),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Instrument,
			r.TotalTrades,
			r.InitialCapital,
			r.FinalCapital,
			r.TotalPnL,
			r.ReturnPercent,
			r.EndedAtCutoff,
		)
	}
	w.Flush()

	total, err := repo.GetTotalPnL(ctx, *instrument)
	if err != nil {
		log.Fatalf("Error summing PnL: %v", err)
	}
	fmt.Printf("\nTotal PnL across journaled runs: %.2f\n", total)
}

// printRun writes the trade log and analytics of one journaled run.
func printRun(ctx context.Context, out io.Writer, repo ports.RunRepository, id string) error {
	run, err := repo.FindRun(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s: %w", id, ports.ErrNotFound)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Time\tType\tSide\tPrice\tQty\tPnL\tReason\t")
	for _, t := range run.Trades {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%.2f\t%s\t\n", t.Timestamp, t.Type, t.Side, t.Price, t.Quantity, t.PNL, t.CloseReason)
	}
	w.Flush()

	m := analytics.AnalyzePerformance(run.Trades, run.InitialCapital)
	fmt.Fprintf(out, "\nRound trips: %d  Win rate: %.2f%%  Profit factor: %.2f  Expectancy: %.2f  Max drawdown: %.2f\n",
		m.TotalTrades, m.WinRate*100, m.ProfitFactor, m.Expectancy, m.MaxDrawdown)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
