package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLiteDB wraps the database connection.
type SQLiteDB struct {
	db   *sql.DB
	path string
}

// NewSQLiteDB opens (and migrates) a SQLite database.
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	// WAL mode with a busy timeout keeps reads cheap while a run is
	// being written.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sqliteDB := &SQLiteDB{
		db:   db,
		path: dbPath,
	}

	if err := sqliteDB.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("SQLite database initialized")
	return sqliteDB, nil
}

// DB returns the underlying sql.DB.
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteDB) migrate() error {
	migrations := []string{
		// Completed backtest runs
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			inverse_symbol TEXT,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			initial_capital REAL NOT NULL,
			final_equity REAL NOT NULL,
			total_return_pct REAL NOT NULL,
			cagr REAL NOT NULL,
			sharpe_ratio REAL NOT NULL,
			max_drawdown REAL NOT NULL,
			total_trades INTEGER NOT NULL,
			win_rate REAL NOT NULL,
			params_json TEXT NOT NULL,
			execution_ms INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_backtest_runs_symbol_time
		 ON backtest_runs(symbol, created_at DESC)`,

		// Trades belonging to a run
		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			entry_date DATETIME NOT NULL,
			entry_price REAL NOT NULL,
			exit_date DATETIME NOT NULL,
			exit_price REAL NOT NULL,
			quantity REAL NOT NULL,
			side TEXT NOT NULL,
			pnl REAL NOT NULL,
			pnl_pct REAL NOT NULL,
			holding_days INTEGER NOT NULL,
			exit_reason TEXT,
			FOREIGN KEY(run_id) REFERENCES backtest_runs(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_backtest_trades_run
		 ON backtest_trades(run_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
