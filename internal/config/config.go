package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tqqq-trading/internal/market"
)

// Parameters holds all backtest parameters.
type Parameters struct {
	// Symbols
	Symbol        string `yaml:"symbol"`
	InverseSymbol string `yaml:"inverseSymbol"`

	// RSI
	RSIPeriod     int     `yaml:"rsiPeriod"`
	RSIOversold   float64 `yaml:"rsiOversold"`
	RSIOverbought float64 `yaml:"rsiOverbought"`

	// SMA
	SMAPeriod int `yaml:"smaPeriod"`

	// Risk management
	StopLossPct     float64 `yaml:"stopLossPct"`
	PositionSizePct float64 `yaml:"positionSizePct"`
	CashReservePct  float64 `yaml:"cashReservePct"`

	// Entry filters
	VWAPFilterEnabled   bool    `yaml:"vwapFilterEnabled"`
	VWAPEntryBelow      bool    `yaml:"vwapEntryBelow"`
	BBFilterEnabled     bool    `yaml:"bbFilterEnabled"`
	BBPeriod            int     `yaml:"bbPeriod"`
	BBStdDev            float64 `yaml:"bbStdDev"`
	VolumeFilterEnabled bool    `yaml:"volumeFilterEnabled"`
	VolumeMinRatio      float64 `yaml:"volumeMinRatio"`

	// Inverse-instrument hedge leg
	ShortEnabled         bool    `yaml:"shortEnabled"`
	UseInverseETF        bool    `yaml:"useInverseEtf"`
	RSIOverboughtShort   float64 `yaml:"rsiOverboughtShort"`
	RSIOversoldShort     float64 `yaml:"rsiOversoldShort"`
	ShortStopLossPct     float64 `yaml:"shortStopLossPct"`
	ShortPositionSizePct float64 `yaml:"shortPositionSizePct"`

	// Backtest settings
	InitialCapital float64 `yaml:"initialCapital"`
	Commission     float64 `yaml:"commission"`
	SlippagePct    float64 `yaml:"slippagePct"`

	// Realistic execution simulation
	Execution ExecutionConfig `yaml:"execution"`
}

// ExecutionConfig holds realistic execution simulation settings. When
// Enabled is false the simulator fills at the bar close with no
// adjustments.
type ExecutionConfig struct {
	Enabled bool `yaml:"enabled"`

	// Slippage
	SlippageMinPct             float64 `yaml:"slippageMinPct"` // negative allows favorable fills
	SlippageMaxPct             float64 `yaml:"slippageMaxPct"`
	SlippageAdverseProbability float64 `yaml:"slippageAdverseProbability"`

	// Spread
	SpreadEnabled              bool    `yaml:"spreadEnabled"`
	SpreadBasePct              float64 `yaml:"spreadBasePct"`
	SpreadVolatilityMultiplier float64 `yaml:"spreadVolatilityMultiplier"`

	// Volume constraints
	VolumeLimitEnabled         bool    `yaml:"volumeLimitEnabled"`
	VolumeParticipationMaxPct  float64 `yaml:"volumeParticipationMaxPct"`
	PartialFillEnabled         bool    `yaml:"partialFillEnabled"`

	// Latency: number of bars to delay entry execution (0 = same bar)
	LatencyBars int `yaml:"latencyBars"`

	// Market impact
	MarketImpactEnabled bool    `yaml:"marketImpactEnabled"`
	MarketImpactFactor  float64 `yaml:"marketImpactFactor"`

	// Random order rejection
	RejectionEnabled              bool    `yaml:"rejectionEnabled"`
	RejectionBaseProbability      float64 `yaml:"rejectionBaseProbability"`
	RejectionVolatilityMultiplier float64 `yaml:"rejectionVolatilityMultiplier"`

	// RNG seed for reproducible runs; 0 derives a seed from the clock.
	Seed int64 `yaml:"seed"`
}

// DefaultExecutionConfig returns the execution defaults (simulation
// disabled).
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		Enabled: false,

		SlippageMinPct:             -0.001,
		SlippageMaxPct:             0.002,
		SlippageAdverseProbability: 0.7,

		SpreadEnabled:              true,
		SpreadBasePct:              0.0005,
		SpreadVolatilityMultiplier: 2.0,

		VolumeLimitEnabled:        true,
		VolumeParticipationMaxPct: 0.02,
		PartialFillEnabled:        true,

		LatencyBars: 0,

		MarketImpactEnabled: true,
		MarketImpactFactor:  0.001,

		RejectionEnabled:              false,
		RejectionBaseProbability:      0.005,
		RejectionVolatilityMultiplier: 2.0,
	}
}

// RealisticExecution returns the conservative simulation preset.
func RealisticExecution() ExecutionConfig {
	cfg := DefaultExecutionConfig()
	cfg.Enabled = true
	return cfg
}

// PessimisticExecution returns the worst-case simulation preset.
func PessimisticExecution() ExecutionConfig {
	cfg := DefaultExecutionConfig()
	cfg.Enabled = true
	cfg.SlippageMinPct = 0.0
	cfg.SlippageMaxPct = 0.005
	cfg.SlippageAdverseProbability = 0.9
	cfg.SpreadBasePct = 0.001
	cfg.SpreadVolatilityMultiplier = 3.0
	cfg.VolumeParticipationMaxPct = 0.01
	cfg.MarketImpactFactor = 0.002
	cfg.RejectionEnabled = true
	cfg.RejectionBaseProbability = 0.01
	return cfg
}

// DefaultParameters returns the full default parameter set.
func DefaultParameters() *Parameters {
	return &Parameters{
		Symbol:        "TQQQ",
		InverseSymbol: "SQQQ",

		RSIPeriod:     2,
		RSIOversold:   30,
		RSIOverbought: 75,

		SMAPeriod: 20,

		StopLossPct:     0.05,
		PositionSizePct: 0.90,
		CashReservePct:  0.10,

		VWAPFilterEnabled:   true,
		VWAPEntryBelow:      true,
		BBFilterEnabled:     false,
		BBPeriod:            20,
		BBStdDev:            2.0,
		VolumeFilterEnabled: false,
		VolumeMinRatio:      1.0,

		ShortEnabled:         true,
		UseInverseETF:        true,
		RSIOverboughtShort:   90,
		RSIOversoldShort:     60,
		ShortStopLossPct:     0.05,
		ShortPositionSizePct: 0.30,

		InitialCapital: 10000,
		Commission:     0,
		SlippagePct:    0.001,

		Execution: DefaultExecutionConfig(),
	}
}

// Load reads parameters from a YAML file. Fields absent from the file
// keep their defaults.
func Load(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	params := DefaultParameters()
	if err := yaml.Unmarshal(data, params); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return params, nil
}

// Save writes parameters to a YAML file.
func (p *Parameters) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the parameter set for values the engine cannot run
// with.
func (p *Parameters) Validate() error {
	if p.RSIPeriod <= 0 {
		return &market.InvalidParameterError{Msg: "rsiPeriod must be positive"}
	}
	if p.SMAPeriod <= 0 {
		return &market.InvalidParameterError{Msg: "smaPeriod must be positive"}
	}
	if p.BBPeriod <= 0 {
		return &market.InvalidParameterError{Msg: "bbPeriod must be positive"}
	}
	if p.InitialCapital <= 0 {
		return &market.InvalidParameterError{Msg: "initialCapital must be positive"}
	}
	if p.PositionSizePct <= 0 || p.PositionSizePct > 1 {
		return &market.InvalidParameterError{Msg: "positionSizePct must be in (0, 1]"}
	}
	if p.CashReservePct < 0 || p.CashReservePct >= 1 {
		return &market.InvalidParameterError{Msg: "cashReservePct must be in [0, 1)"}
	}
	return nil
}
