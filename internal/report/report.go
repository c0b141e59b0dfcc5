package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tqqq-trading/internal/backtest"
	"github.com/tqqq-trading/internal/config"
)

// Summary renders a human-readable report of a backtest run.
func Summary(result *backtest.Result, params *config.Parameters) string {
	m := result.Metrics

	var b strings.Builder

	fmt.Fprintf(&b, `
Backtest Results for %s
=======================
Period: %s to %s
Initial Capital: $%.2f
Final Equity: $%.2f
Total Return: $%.2f (%.2f%%)
CAGR: %.2f%%
Execution Time: %dms

Risk Metrics:
- Volatility: %.2f%%
- Sharpe Ratio: %.2f
- Sortino Ratio: %s
- Max Drawdown: %.2f%% (%d days)
- Calmar Ratio: %.2f
- Exposure: %.1f%%

Trade Statistics:
- Total Trades: %d
- Winning Trades: %d (%.1f%%)
- Losing Trades: %d
- Average Win: $%.2f
- Average Loss: $%.2f
- Profit Factor: %s
- Expectancy: $%.2f
- Avg Duration: %.1f days
- Best Trade: $%.2f
- Worst Trade: $%.2f
`,
		params.Symbol,
		result.StartDate.Format("2006-01-02"),
		result.EndDate.Format("2006-01-02"),
		result.InitialCapital,
		result.FinalEquity,
		m.TotalReturn, m.TotalReturnPct,
		m.CAGR,
		result.ExecutionTimeMS,
		m.Volatility,
		m.SharpeRatio,
		formatRatio(m.SortinoRatio),
		m.MaxDrawdown, m.MaxDrawdownDurationDays,
		m.CalmarRatio,
		m.ExposurePct,
		m.TotalTrades,
		m.WinningTrades, m.WinRate,
		m.LosingTrades,
		m.AvgWin,
		m.AvgLoss,
		formatRatio(m.ProfitFactor),
		m.Expectancy,
		m.AvgTradeDurationDays,
		m.BestTrade,
		m.WorstTrade,
	)

	if len(result.Trades) == 0 {
		b.WriteString("\nNo trades executed.\n")
		return b.String()
	}

	b.WriteString("\nAll Trades:\n")
	fmt.Fprintf(&b, "%-4s %-12s %-12s %-10s %-10s %-10s %-12s %-8s %-10s %-24s\n",
		"#", "Entry", "Exit", "EntryPx", "ExitPx", "Quantity", "P&L", "P&L%", "Days", "Reason")
	fmt.Fprintf(&b, "%-4s %-12s %-12s %-10s %-10s %-10s %-12s %-8s %-10s %-24s\n",
		"---", "------------", "------------", "----------", "----------", "----------", "------------", "--------", "----------", "------------------------")

	for i, trade := range result.Trades {
		fmt.Fprintf(&b, "%-4d %-12s %-12s %10.2f %10.2f %10.2f %12.2f %8.2f %10d %-24s\n",
			i+1,
			trade.EntryDate.Format("2006-01-02"),
			trade.ExitDate.Format("2006-01-02"),
			trade.EntryPrice,
			trade.ExitPrice,
			trade.Quantity,
			trade.PnL,
			trade.PnLPct,
			trade.HoldingDays,
			trade.ExitReason,
		)
	}

	return b.String()
}

// WriteJSON writes the result as JSON. Non-finite metric values are
// emitted as null by the metrics marshaler.
func WriteJSON(w io.Writer, result *backtest.Result, pretty bool) error {
	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(result)
}

// formatRatio renders possibly-infinite ratios.
func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}
