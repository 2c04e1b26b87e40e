package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"text/tabwriter"

	"gapFadeBot/config"
	"gapFadeBot/internal/adapters/logger"
	"gapFadeBot/internal/adapters/sessionfile"
	"gapFadeBot/internal/strategy/optimization"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	sessionPath := flag.String("session", cfg.SessionFile, "session file to optimise against")
	workers := flag.Int("workers", runtime.NumCPU(), "concurrent simulations")
	top := flag.Int("top", 10, "number of results to print")
	flag.Parse()

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	// 2. Load the session once; every combination replays the same candles
	session, err := sessionfile.NewLoader(appLogger).Load(ctx, *sessionPath)
	if err != nil {
		log.Fatalf("Error loading session: %v", err)
	}

	// 3. Define the parameter grid
	optimizer, err := optimization.NewOptimizer(optimization.OptimizerConfig{
		ParameterRanges: []optimization.ParameterRange{
			{Name: optimization.ParamGapThreshold, Min: 0.01, Max: 0.05, Step: 0.01},
			{Name: optimization.ParamStopLossPct, Min: 0.01, Max: 0.03, Step: 0.005},
			{Name: optimization.ParamTakeProfitPct, Min: 0.03, Max: 0.09, Step: 0.02},
			{Name: optimization.ParamLongEMAPeriod, Min: 3, Max: 9, Step: 2, IsInt: true},
		},
		BaseConfig: cfg.EngineConfig(),
		MaxWorkers: *workers,
	}, appLogger)
	if err != nil {
		log.Fatalf("Error creating optimizer: %v", err)
	}

	results, err := optimizer.Optimize(ctx, session)
	if err != nil {
		log.Fatalf("Error running optimization: %v", err)
	}

	// 4. Print the best combinations
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Rank\tGap%\tSL%\tTP%\tLongEMA\tTrades\tWinRate\tPnL\tMaxDD\tScore\t")
	for i, r := range results {
		if i >= *top {
			break
		}
		fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.4f\t\n",
			i+1,
			r.Config.Strategy.GapThreshold*100,
			r.Config.Risk.StopLossPercent*100,
			r.Config.Risk.TakeProfitPercent*100,
			r.Config.Strategy.LongEMAPeriod,
			r.Summary.TotalTrades,
			r.Metrics.WinRate*100,
			r.Summary.TotalPnL,
			r.Metrics.MaxDrawdown,
			r.Score,
		)
	}
	w.Flush()
	fmt.Printf("\n%d combinations evaluated on %s (%d candles)\n", len(results), session.Instrument, len(session.Candles))
}
