// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS backtest_runs (
			run_id SERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			pair VARCHAR(64) NOT NULL,
			protocol VARCHAR(64) NOT NULL,
			granularity VARCHAR(16) NOT NULL,
			range_type VARCHAR(32) NOT NULL,
			range_width_pct DECIMAL(10, 4) NOT NULL,
			investment_usd DECIMAL(20, 8) NOT NULL,
			apr_mode VARCHAR(32) NOT NULL,
			gas_per_rebalance_usd DECIMAL(20, 8) NOT NULL,

			data_points INTEGER NOT NULL,
			rebalances INTEGER NOT NULL,
			rebalance_steps INTEGER[],
			annualized_volatility DECIMAL(10, 4),

			final_value_usd DECIMAL(20, 8) NOT NULL,
			return_usd DECIMAL(20, 8) NOT NULL,
			return_pct DECIMAL(10, 4) NOT NULL,
			apr_pct DECIMAL(10, 4) NOT NULL,
			fees_usd DECIMAL(20, 8) NOT NULL,
			net_fees_usd DECIMAL(20, 8) NOT NULL,
			gas_usd DECIMAL(20, 8) NOT NULL,
			net_gain_vs_hold_usd DECIMAL(20, 8) NOT NULL,
			impermanent_loss_pct DECIMAL(10, 4) NOT NULL,
			max_drawdown_pct DECIMAL(10, 4) NOT NULL,
			max_gain_pct DECIMAL(10, 4) NOT NULL,
			time_in_range_pct DECIMAL(10, 4) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_backtest_runs_created ON backtest_runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_backtest_runs_pair ON backtest_runs(pair);

		CREATE TABLE IF NOT EXISTS run_steps (
			step_id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES backtest_runs(run_id) ON DELETE CASCADE,
			step_index INTEGER NOT NULL,
			step_timestamp TIMESTAMPTZ NOT NULL,
			status JSONB NOT NULL,
			CONSTRAINT uq_run_steps_run_index UNIQUE (run_id, step_index)
		);
		CREATE INDEX IF NOT EXISTS idx_run_steps_run ON run_steps(run_id, step_index);

		CREATE TABLE IF NOT EXISTS sub_positions (
			sub_id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES backtest_runs(run_id) ON DELETE CASCADE,
			sub_index INTEGER NOT NULL,
			data_points INTEGER NOT NULL,
			fees_usd DECIMAL(20, 8) NOT NULL,
			gas_usd DECIMAL(20, 8) NOT NULL,
			start_capital_usd DECIMAL(20, 8) NOT NULL,
			CONSTRAINT uq_sub_positions_run_index UNIQUE (run_id, sub_index)
		);
		CREATE INDEX IF NOT EXISTS idx_sub_positions_run ON sub_positions(run_id, sub_index);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
