package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // FETCH_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"

	"gapFadeBot/internal/adapters/logger" // Import the logger package for LogLevel
	"gapFadeBot/internal/domain"
	"gapFadeBot/internal/risk"
	"gapFadeBot/internal/strategy/backtesting"
	"gapFadeBot/internal/strategy/indicators"
	"gapFadeBot/internal/strategy/strategies"
)

// Config holds all application configuration.
type Config struct {
	// Input / output
	SessionFile   string
	DBPath        string // Empty disables the run journal
	TradesCSVPath string // Empty disables the CSV export

	// Strategy Parameters
	ShortEMAPeriod int
	LongEMAPeriod  int
	GapThreshold   float64 // e.g., 0.03 for a 3% gap-up
	EMAReadiness   indicators.Readiness

	// Risk Parameters
	StopLossPct    float64 // Fraction of initial capital
	TakeProfitPct  float64 // Fraction of initial capital
	MaxDailyTrades int
	MarketClose    string // "HH:MM"

	// Logging
	LogLevel  logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat string          // "text" or "json"

	// Session fetcher (Binance)
	APIKey         string
	SecretKey      string
	IsTestnet      bool
	FetchSymbol    string
	FetchInterval  string
	FetchTimezone  *time.Location
	FetchCapital   float64
	ReconnectDelay time.Duration
	MaxRetries     int
}

// LoadConfig loads configuration from environment variables. The given env
// files (default ".env") are read first; variables already set win.
func LoadConfig(envFiles ...string) (*Config, error) {
	// Don't fail if the file doesn't exist (allow pure env vars)
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.SessionFile = getEnv("SESSION_FILE", "market_data.json")
	cfg.DBPath = os.Getenv("DB_PATH")
	cfg.TradesCSVPath = os.Getenv("TRADES_CSV_PATH")

	// Strategy Parameters
	cfg.ShortEMAPeriod, err = getEnvAsIntRequired("SHORT_EMA_PERIOD", 3)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SHORT_EMA_PERIOD: %v", err))
	} else if cfg.ShortEMAPeriod <= 0 {
		errs = append(errs, "SHORT_EMA_PERIOD must be positive")
	}

	cfg.LongEMAPeriod, err = getEnvAsIntRequired("LONG_EMA_PERIOD", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LONG_EMA_PERIOD: %v", err))
	} else if cfg.LongEMAPeriod <= 0 {
		errs = append(errs, "LONG_EMA_PERIOD must be positive")
	}

	cfg.GapThreshold, err = getEnvAsFloatRequired("GAP_THRESHOLD", 0.03)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid GAP_THRESHOLD: %v", err))
	} else if cfg.GapThreshold < 0 {
		errs = append(errs, "GAP_THRESHOLD cannot be negative")
	}

	readiness, ok := indicators.ParseReadiness(getEnv("EMA_READINESS", "first"))
	if !ok {
		errs = append(errs, "EMA_READINESS must be 'first' or 'period'")
	}
	cfg.EMAReadiness = readiness

	// Risk Parameters
	cfg.StopLossPct, err = getEnvAsFloatRequired("STOP_LOSS_PCT", 0.02)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_LOSS_PCT: %v", err))
	} else if cfg.StopLossPct <= 0 || cfg.StopLossPct >= 1.0 {
		errs = append(errs, "STOP_LOSS_PCT must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.TakeProfitPct, err = getEnvAsFloatRequired("TAKE_PROFIT_PCT", 0.07)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TAKE_PROFIT_PCT: %v", err))
	} else if cfg.TakeProfitPct <= 0 {
		errs = append(errs, "TAKE_PROFIT_PCT must be positive")
	}

	cfg.MaxDailyTrades, err = getEnvAsIntRequired("MAX_DAILY_TRADES", 2)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_DAILY_TRADES: %v", err))
	} else if cfg.MaxDailyTrades <= 0 {
		errs = append(errs, "MAX_DAILY_TRADES must be positive")
	}

	cfg.MarketClose = getEnv("MARKET_CLOSE", backtesting.DefaultMarketClose)
	if _, err := domain.MinuteOfDay(cfg.MarketClose); err != nil {
		errs = append(errs, fmt.Sprintf("invalid MARKET_CLOSE: %v", err))
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, "LOG_FORMAT must be 'text' or 'json'")
	}

	// Session fetcher
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	cfg.FetchSymbol = getEnv("FETCH_SYMBOL", "BTCUSDT")
	cfg.FetchInterval = getEnv("FETCH_INTERVAL", "5m")

	tz := getEnv("FETCH_TIMEZONE", "UTC")
	cfg.FetchTimezone, err = time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FETCH_TIMEZONE %q: %v", tz, err))
	}

	cfg.FetchCapital, err = getEnvAsFloatRequired("FETCH_CAPITAL", 100000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FETCH_CAPITAL: %v", err))
	} else if cfg.FetchCapital <= 0 {
		errs = append(errs, "FETCH_CAPITAL must be positive")
	}

	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxRetries = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 3)
	if cfg.MaxRetries < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// EngineConfig maps the loaded values onto a simulation configuration.
func (c *Config) EngineConfig() backtesting.Config {
	return backtesting.Config{
		Strategy: strategies.GapExhaustionConfig{
			ShortEMAPeriod: c.ShortEMAPeriod,
			LongEMAPeriod:  c.LongEMAPeriod,
			GapThreshold:   c.GapThreshold,
			Readiness:      c.EMAReadiness,
		},
		Risk: risk.RiskConfig{
			StopLossPercent:   c.StopLossPct,
			TakeProfitPercent: c.TakeProfitPct,
			MaxDailyTrades:    c.MaxDailyTrades,
		},
		MarketClose: c.MarketClose,
	}
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
