package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tqqq-trading/internal/backtest"
	"github.com/tqqq-trading/internal/config"
	"github.com/tqqq-trading/internal/market"
)

// RunSummary is the stored header of a completed backtest run.
type RunSummary struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	InitialCapital float64   `json:"initial_capital"`
	FinalEquity    float64   `json:"final_equity"`
	TotalReturnPct float64   `json:"total_return_pct"`
	CAGR           float64   `json:"cagr"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	TotalTrades    int       `json:"total_trades"`
	WinRate        float64   `json:"win_rate"`
	ExecutionMS    int64     `json:"execution_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// BacktestRepository persists completed runs and their trades.
type BacktestRepository struct {
	db *SQLiteDB
}

// NewBacktestRepository creates a repository over the given database.
func NewBacktestRepository(db *SQLiteDB) *BacktestRepository {
	return &BacktestRepository{db: db}
}

// SaveResult stores a run with its trades and returns the new run ID.
func (r *BacktestRepository) SaveResult(params *config.Parameters, result *backtest.Result) (string, error) {
	runID := uuid.New().String()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode parameters: %w", err)
	}

	tx, err := r.db.DB().Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO backtest_runs
		(id, symbol, inverse_symbol, start_date, end_date, initial_capital,
		 final_equity, total_return_pct, cagr, sharpe_ratio, max_drawdown,
		 total_trades, win_rate, params_json, execution_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, params.Symbol, params.InverseSymbol,
		result.StartDate, result.EndDate, result.InitialCapital,
		result.FinalEquity, result.Metrics.TotalReturnPct, result.Metrics.CAGR,
		result.Metrics.SharpeRatio, result.Metrics.MaxDrawdown,
		result.Metrics.TotalTrades, result.Metrics.WinRate,
		string(paramsJSON), result.ExecutionTimeMS,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO backtest_trades
		(run_id, entry_date, entry_price, exit_date, exit_price, quantity,
		 side, pnl, pnl_pct, holding_days, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare trade insert: %w", err)
	}
	defer stmt.Close()

	for _, trade := range result.Trades {
		_, err = stmt.Exec(runID,
			trade.EntryDate, trade.EntryPrice, trade.ExitDate, trade.ExitPrice,
			trade.Quantity, trade.Side.String(), trade.PnL, trade.PnLPct,
			trade.HoldingDays, trade.ExitReason,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	log.Info().
		Str("runID", runID).
		Str("symbol", params.Symbol).
		Int("trades", len(result.Trades)).
		Msg("Backtest run saved")

	return runID, nil
}

// ListRuns returns the most recent run summaries.
func (r *BacktestRepository) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.DB().Query(`SELECT id, symbol, start_date, end_date,
		initial_capital, final_equity, total_return_pct, cagr, sharpe_ratio,
		max_drawdown, total_trades, win_rate, execution_ms, created_at
		FROM backtest_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		err := rows.Scan(&run.ID, &run.Symbol, &run.StartDate, &run.EndDate,
			&run.InitialCapital, &run.FinalEquity, &run.TotalReturnPct,
			&run.CAGR, &run.SharpeRatio, &run.MaxDrawdown, &run.TotalTrades,
			&run.WinRate, &run.ExecutionMS, &run.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run summary with its trades.
func (r *BacktestRepository) GetRun(id string) (*RunSummary, []market.Trade, error) {
	var run RunSummary
	err := r.db.DB().QueryRow(`SELECT id, symbol, start_date, end_date,
		initial_capital, final_equity, total_return_pct, cagr, sharpe_ratio,
		max_drawdown, total_trades, win_rate, execution_ms, created_at
		FROM backtest_runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Symbol, &run.StartDate, &run.EndDate,
			&run.InitialCapital, &run.FinalEquity, &run.TotalReturnPct,
			&run.CAGR, &run.SharpeRatio, &run.MaxDrawdown, &run.TotalTrades,
			&run.WinRate, &run.ExecutionMS, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("backtest run not found: %s", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := r.db.DB().Query(`SELECT entry_date, entry_price, exit_date,
		exit_price, quantity, side, pnl, pnl_pct, holding_days, exit_reason
		FROM backtest_trades WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []market.Trade
	for rows.Next() {
		var trade market.Trade
		var side string
		err := rows.Scan(&trade.EntryDate, &trade.EntryPrice, &trade.ExitDate,
			&trade.ExitPrice, &trade.Quantity, &side, &trade.PnL,
			&trade.PnLPct, &trade.HoldingDays, &trade.ExitReason)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trade.Side = parseSide(side)
		trades = append(trades, trade)
	}

	return &run, trades, rows.Err()
}

// parseSide maps a stored side string back to its enum value.
func parseSide(s string) market.Side {
	switch s {
	case "buy":
		return market.SideBuy
	case "short":
		return market.SideShort
	case "cover":
		return market.SideCover
	case "hedge_buy":
		return market.SideHedgeBuy
	case "hedge_sell":
		return market.SideHedgeSell
	default:
		return market.SideSell
	}
}
