package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"gapFadeBot/config"
	"gapFadeBot/internal/adapters/logger"
	"gapFadeBot/internal/adapters/sessionfile"
	"gapFadeBot/internal/adapters/sqlite"
	"gapFadeBot/internal/app"
	"gapFadeBot/internal/ports"
	"gapFadeBot/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
		return 1
	}

	source := cfg.SessionFile
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	// 2. Initialize Logger
	appLogger := newLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Initialize Run Journal (optional)
	var repo ports.RunRepository
	if cfg.DBPath != "" {
		sqliteRepo, err := sqlite.NewRepository(sqlite.Config{
			DBPath: cfg.DBPath,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
			return 1
		}
		defer func() {
			if err := sqliteRepo.Close(); err != nil {
				appLogger.Error(ctx, err, "Error closing database repository")
			}
		}()
		repo = sqliteRepo
		appLogger.Info(ctx, "Database repository initialized", map[string]interface{}{"path": cfg.DBPath})
	}

	// 4. Initialize Application Service
	service, err := app.NewSimulationService(
		cfg,
		appLogger,
		sessionfile.NewLoader(appLogger),
		repo,
		report.NewConsolePresenter(os.Stdout),
	)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize simulation service")
		return 1
	}

	// 5. Run the Session
	if _, err := service.Run(ctx, source); err != nil {
		appLogger.Error(ctx, err, "Simulation failed", map[string]interface{}{"source": source})
		return 1
	}

	appLogger.Info(ctx, "Application finished gracefully.")
	return 0
}

func newLogger(cfg *config.Config) ports.Logger {
	if cfg.LogFormat == "json" {
		return logger.NewZapLogger(cfg.LogLevel)
	}
	return logger.NewStdLogger(cfg.LogLevel)
}
