package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"gapFadeBot/config"
	"gapFadeBot/internal/adapters/binanceclient"
	"gapFadeBot/internal/adapters/logger"
	"gapFadeBot/internal/adapters/sessionfile"
	"gapFadeBot/internal/app"
	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/utils"
)

// recordingSource keeps the raw klines so they can be archived as CSV.
type recordingSource struct {
	ports.KlineSource
	klines []*domain.Kline
}

func (r *recordingSource) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	klines, err := r.KlineSource.GetKlinesRange(ctx, symbol, interval, start, end)
	r.klines = klines
	return klines, err
}

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	yesterday := time.Now().In(cfg.FetchTimezone).AddDate(0, 0, -1).Format(time.DateOnly)
	date := flag.String("date", yesterday, "trading day to fetch (YYYY-MM-DD, local to FETCH_TIMEZONE)")
	from := flag.String("from", "", "first candle of the session (HH:MM)")
	to := flag.String("to", "", "last candle of the session (HH:MM)")
	out := flag.String("out", cfg.SessionFile, "session file to write")
	klinesCSV := flag.String("klines-csv", "", "optionally archive the raw klines as CSV")
	flag.Parse()

	day, err := time.ParseInLocation(time.DateOnly, *date, cfg.FetchTimezone)
	if err != nil {
		log.Fatalf("FATAL: Invalid -date %q: %v", *date, err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
		RetryDelay: cfg.ReconnectDelay,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	if err := binanceClient.Ping(ctx); err != nil {
		appLogger.Error(ctx, err, "FATAL: Binance is unreachable")
		log.Fatalf("FATAL: Binance is unreachable: %v", err)
	}

	// 4. Build the session
	source := &recordingSource{KlineSource: binanceClient}
	builder := app.NewSessionBuilder(source, appLogger)

	fmt.Printf("Fetching %s %s klines for %s...\n", cfg.FetchSymbol, cfg.FetchInterval, *date)
	session, err := builder.Build(ctx, app.SessionRequest{
		Symbol:   cfg.FetchSymbol,
		Interval: cfg.FetchInterval,
		Day:      day,
		Location: cfg.FetchTimezone,
		Capital:  cfg.FetchCapital,
		From:     *from,
		To:       *to,
	})
	if err != nil {
		appLogger.Error(ctx, err, "Error building session")
		log.Fatalf("Error building session: %v", err)
	}

	if err := sessionfile.Save(*out, session); err != nil {
		appLogger.Error(ctx, err, "Error writing session file")
		log.Fatalf("Error writing session file: %v", err)
	}
	appLogger.Info(ctx, "Saved session", map[string]interface{}{"filename": *out, "candles": len(session.Candles)})

	if *klinesCSV != "" {
		if err := utils.WriteKlinesToCSV(source.klines, *klinesCSV); err != nil {
			appLogger.Error(ctx, err, "Error writing CSV")
			log.Fatalf("Error writing CSV: %v", err)
		}
		appLogger.Info(ctx, "Saved klines", map[string]interface{}{"filename": *klinesCSV, "count": len(source.klines)})
	}
}
