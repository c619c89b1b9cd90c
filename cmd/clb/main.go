package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rangeworks/clb/internal/backtest"
	"github.com/rangeworks/clb/internal/config"
	"github.com/rangeworks/clb/internal/datafetcher"
	"github.com/rangeworks/clb/internal/logger"
	"github.com/rangeworks/clb/internal/position"
	"github.com/rangeworks/clb/internal/protocol"
	"github.com/rangeworks/clb/internal/report"
	"github.com/rangeworks/clb/internal/state"
	"github.com/rangeworks/clb/internal/types"
	"github.com/rangeworks/clb/internal/web"
)

// main is the entry point for the CLB backtester.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("CLB Backtester Starting...")

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	params, err := config.LoadParameters()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load backtest parameters")
	}

	preset, err := protocol.ByName(config.Protocol)
	if err != nil {
		log.Fatal().Err(err).Strs("known", protocol.Names()).Msg("Unknown protocol preset")
	}

	pair := config.Token0Symbol + "-" + config.Token1Symbol

	// --- 2. Load Snapshot Series ---
	var snapshots []types.PoolSnapshot
	if config.DataFile != "" {
		snapshots, err = datafetcher.LoadSnapshotsCSV(config.DataFile)
	} else {
		snapshots, err = datafetcher.FetchSnapshots(config.DataURL, pair, params.Granularity, 0)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load snapshot series")
	}
	log.Info().Str("pair", pair).Int("snapshots", len(snapshots)).Msg("Snapshot series loaded")

	// --- 3. Build Position and Run Backtest ---
	pos, err := preset.NewPosition(position.Config{
		Token0:        types.Token{Symbol: config.Token0Symbol, Decimals: preset.Decimals0},
		Token1:        types.Token{Symbol: config.Token1Symbol, Decimals: preset.Decimals1},
		InvestmentUSD: params.InvestmentUSD,
		RangeType:     params.RangeType,
		RangeWidthPct: params.RangeWidthPct,
		Granularity:   params.Granularity,
		APRMode:       params.APRMode,
		Initial:       snapshots[0],
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open position")
	}

	runner := backtest.NewRunner(params.GasPerRebalanceUSD, params.Granularity)
	result, err := runner.Run(pos, snapshots, backtest.FromParameters(params))
	if err != nil {
		log.Fatal().Err(err).Msg("Backtest failed")
	}

	// --- 4. Render Reports ---
	if csvPath := os.Getenv("CLB_REPORT_CSV"); csvPath != "" {
		if err := report.WriteCSVFile(csvPath, result.Statuses); err != nil {
			log.Error().Err(err).Str("path", csvPath).Msg("Failed to write CSV report")
		} else {
			log.Info().Str("path", csvPath).Msg("CSV report written")
		}
	}
	if err := report.RenderMarkdown(os.Stdout, pair, preset.Name, params, result); err != nil {
		log.Error().Err(err).Msg("Failed to render summary report")
	}

	// --- 5. Optional Persistence and Dashboard ---
	if strings.EqualFold(os.Getenv("CLB_PERSIST"), "true") {
		dbCfg := state.DBConfig{
			Host: envOr("DB_HOST", "localhost"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
			User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
			DBName: os.Getenv("DB_NAME"), SSLMode: envOr("DB_SSLMODE", "disable"),
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}

		runID, err := state.SaveRun(pair, preset.Name, params, result)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to save run")
		}
		log.Info().Int64("runID", runID).Msg("Run persisted")

		if strings.EqualFold(os.Getenv("CLB_SERVE"), "true") {
			webPort := envOr("WEB_PORT", "8080")
			webServer := web.NewWebServer(webPort)
			log.Info().Str("url", "http://localhost:"+webPort).Msg("Starting CLB web dashboard")
			if err := webServer.Start(); err != nil {
				log.Fatal().Err(err).Msg("Web server failed")
			}
		}
	}
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
