package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tqqq-trading/internal/api"
	"github.com/tqqq-trading/internal/backtest"
	"github.com/tqqq-trading/internal/config"
	"github.com/tqqq-trading/internal/data"
	"github.com/tqqq-trading/internal/logging"
	"github.com/tqqq-trading/internal/market"
	"github.com/tqqq-trading/internal/report"
	"github.com/tqqq-trading/internal/storage"
)

func main() {
	// .env is optional; flags and config.yaml win.
	_ = godotenv.Load()

	var (
		configPath   = flag.String("config", "", "path to YAML parameter file")
		days         = flag.Int("days", 252, "number of synthetic days to backtest")
		capital      = flag.Float64("capital", 0, "initial capital (overrides config)")
		dataFile     = flag.String("data-file", "", "CSV/JSON bar file; synthetic data when empty")
		hedgeFile    = flag.String("hedge-file", "", "CSV/JSON bar file for the inverse instrument")
		symbol       = flag.String("symbol", "", "symbol to trade (overrides config)")
		rsiOversold  = flag.Float64("rsi-oversold", 0, "RSI oversold threshold (overrides config)")
		rsiOverbght  = flag.Float64("rsi-overbought", 0, "RSI overbought threshold (overrides config)")
		smaPeriod    = flag.Int("sma-period", 0, "SMA period (overrides config)")
		stopLoss     = flag.Float64("stop-loss", -1, "stop loss fraction, e.g. 0.05 (overrides config)")
		positionSize = flag.Float64("position-size", 0, "position size fraction (overrides config)")
		shortOff     = flag.Bool("no-short", false, "disable the inverse-instrument hedge leg")
		noVWAP       = flag.Bool("no-vwap-filter", false, "disable the VWAP entry filter")
		realistic    = flag.Bool("realistic", false, "enable realistic execution simulation")
		pessimistic  = flag.Bool("pessimistic", false, "enable pessimistic execution simulation")
		seed         = flag.Int64("seed", 0, "RNG seed for execution and synthetic data (0 keeps the configured execution seed, clock-based when unset; synthetic data is generated from this value as given)")
		initialPrice = flag.Float64("initial-price", 50, "initial price for synthetic data")
		output       = flag.String("output", "text", "output format: text or json")
		pretty       = flag.Bool("pretty", false, "pretty-print JSON output")
		dbPath       = flag.String("db", "", "SQLite path to persist the run")
		serve        = flag.Bool("serve", false, "serve the HTTP API instead of running once")
		addr         = flag.String("addr", ":8080", "API listen address")
		logLevel     = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logging.Setup(logging.Config{Level: *logLevel, Pretty: true})

	params := loadParameters(*configPath)
	applyOverrides(params, overrides{
		capital:      *capital,
		symbol:       *symbol,
		rsiOversold:  *rsiOversold,
		rsiOverbght:  *rsiOverbght,
		smaPeriod:    *smaPeriod,
		stopLoss:     *stopLoss,
		positionSize: *positionSize,
		shortOff:     *shortOff,
		noVWAP:       *noVWAP,
	})

	switch {
	case *pessimistic:
		log.Info().Msg("Using pessimistic execution simulation")
		params.Execution = config.PessimisticExecution()
	case *realistic:
		log.Info().Msg("Using realistic execution simulation")
		params.Execution = config.RealisticExecution()
	}
	if *seed != 0 {
		params.Execution.Seed = *seed
	}

	if err := params.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid parameters")
	}

	var repo *storage.BacktestRepository
	if *dbPath != "" {
		db, err := storage.NewSQLiteDB(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer db.Close()
		repo = storage.NewBacktestRepository(db)
	}

	if *serve {
		server := api.NewServer(repo)
		if err := server.Start(*addr); err != nil {
			log.Fatal().Err(err).Msg("API server stopped")
		}
		return
	}

	bars, hedgeBars := loadBars(params, *dataFile, *hedgeFile, *days, *initialPrice, *seed)

	engine := backtest.New(params)
	result := engine.Run(bars, hedgeBars)

	if repo != nil {
		if id, err := repo.SaveResult(params, result); err != nil {
			log.Error().Err(err).Msg("Failed to save run")
		} else {
			log.Info().Str("runID", id).Msg("Run saved")
		}
	}

	switch *output {
	case "json":
		if err := report.WriteJSON(os.Stdout, result, *pretty); err != nil {
			log.Fatal().Err(err).Msg("Failed to write JSON output")
		}
	default:
		os.Stdout.WriteString(report.Summary(result, params))
	}
}

type overrides struct {
	capital      float64
	symbol       string
	rsiOversold  float64
	rsiOverbght  float64
	smaPeriod    int
	stopLoss     float64
	positionSize float64
	shortOff     bool
	noVWAP       bool
}

func loadParameters(path string) *config.Parameters {
	if path == "" {
		if envPath := os.Getenv("BACKTEST_CONFIG"); envPath != "" {
			path = envPath
		}
	}
	if path == "" {
		return config.DefaultParameters()
	}

	params, err := config.Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load config, using defaults")
		return config.DefaultParameters()
	}
	return params
}

func applyOverrides(params *config.Parameters, o overrides) {
	if o.capital > 0 {
		params.InitialCapital = o.capital
	}
	if o.symbol != "" {
		params.Symbol = o.symbol
	}
	if o.rsiOversold > 0 {
		params.RSIOversold = o.rsiOversold
	}
	if o.rsiOverbght > 0 {
		params.RSIOverbought = o.rsiOverbght
	}
	if o.smaPeriod > 0 {
		params.SMAPeriod = o.smaPeriod
	}
	if o.stopLoss >= 0 {
		params.StopLossPct = o.stopLoss
	}
	if o.positionSize > 0 {
		params.PositionSizePct = o.positionSize
	}
	if o.shortOff {
		params.ShortEnabled = false
	}
	if o.noVWAP {
		params.VWAPFilterEnabled = false
	}
}

func loadBars(params *config.Parameters, dataFile, hedgeFile string, days int, initialPrice float64, seed int64) ([]market.Bar, []market.Bar) {
	var bars, hedgeBars []market.Bar
	var err error

	if dataFile != "" {
		bars, err = data.LoadFile(dataFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", dataFile).Msg("Failed to load bar data")
		}
		log.Info().Int("bars", len(bars)).Str("file", dataFile).Msg("Loaded bar data")
	} else {
		bars = data.GenerateSyntheticBars(days, initialPrice, seed)
		log.Info().Int("bars", len(bars)).Msg("Generated synthetic bar data")
	}

	if hedgeFile != "" {
		hedgeBars, err = data.LoadFile(hedgeFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", hedgeFile).Msg("Failed to load hedge bar data")
		}
	} else if params.ShortEnabled && params.UseInverseETF {
		hedgeBars = data.GenerateInverseBars(bars, initialPrice/2)
	}

	return bars, hedgeBars
}
