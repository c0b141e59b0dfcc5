package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParameters(t *testing.T) {
	t.Parallel()
	p := DefaultParameters()

	assert.Equal(t, "TQQQ", p.Symbol)
	assert.Equal(t, "SQQQ", p.InverseSymbol)
	assert.Equal(t, 2, p.RSIPeriod)
	assert.Equal(t, 30.0, p.RSIOversold)
	assert.Equal(t, 75.0, p.RSIOverbought)
	assert.Equal(t, 20, p.SMAPeriod)
	assert.Equal(t, 0.05, p.StopLossPct)
	assert.Equal(t, 0.90, p.PositionSizePct)
	assert.Equal(t, 0.10, p.CashReservePct)
	assert.True(t, p.VWAPFilterEnabled)
	assert.True(t, p.VWAPEntryBelow)
	assert.False(t, p.BBFilterEnabled)
	assert.Equal(t, 20, p.BBPeriod)
	assert.Equal(t, 2.0, p.BBStdDev)
	assert.True(t, p.ShortEnabled)
	assert.Equal(t, 90.0, p.RSIOverboughtShort)
	assert.Equal(t, 60.0, p.RSIOversoldShort)
	assert.Equal(t, 0.30, p.ShortPositionSizePct)
	assert.Equal(t, 10000.0, p.InitialCapital)
	assert.Zero(t, p.Commission)
	assert.Equal(t, 0.001, p.SlippagePct)
	assert.False(t, p.Execution.Enabled)
}

func TestDefaultExecutionConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultExecutionConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, -0.001, cfg.SlippageMinPct)
	assert.Equal(t, 0.002, cfg.SlippageMaxPct)
	assert.Equal(t, 0.7, cfg.SlippageAdverseProbability)
	assert.True(t, cfg.SpreadEnabled)
	assert.Equal(t, 0.0005, cfg.SpreadBasePct)
	assert.True(t, cfg.VolumeLimitEnabled)
	assert.Equal(t, 0.02, cfg.VolumeParticipationMaxPct)
	assert.True(t, cfg.PartialFillEnabled)
	assert.Zero(t, cfg.LatencyBars)
	assert.True(t, cfg.MarketImpactEnabled)
	assert.Equal(t, 0.001, cfg.MarketImpactFactor)
	assert.False(t, cfg.RejectionEnabled)
}

func TestExecutionPresets(t *testing.T) {
	t.Parallel()

	realistic := RealisticExecution()
	assert.True(t, realistic.Enabled)
	assert.Equal(t, DefaultExecutionConfig().SlippageMaxPct, realistic.SlippageMaxPct)

	pessimistic := PessimisticExecution()
	assert.True(t, pessimistic.Enabled)
	assert.Equal(t, 0.0, pessimistic.SlippageMinPct)
	assert.Equal(t, 0.005, pessimistic.SlippageMaxPct)
	assert.Equal(t, 0.9, pessimistic.SlippageAdverseProbability)
	assert.Equal(t, 0.001, pessimistic.SpreadBasePct)
	assert.Equal(t, 0.01, pessimistic.VolumeParticipationMaxPct)
	assert.Equal(t, 0.002, pessimistic.MarketImpactFactor)
	assert.True(t, pessimistic.RejectionEnabled)
	assert.Equal(t, 0.01, pessimistic.RejectionBaseProbability)
}

func TestLoadKeepsDefaultsForAbsentFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "params.yaml")
	content := "rsiOversold: 25\nvwapFilterEnabled: false\nexecution:\n  enabled: true\n  latencyBars: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25.0, p.RSIOversold)
	assert.False(t, p.VWAPFilterEnabled)
	assert.True(t, p.Execution.Enabled)
	assert.Equal(t, 2, p.Execution.LatencyBars)

	// Untouched fields keep their defaults, including default-true
	// booleans.
	assert.Equal(t, "TQQQ", p.Symbol)
	assert.Equal(t, 75.0, p.RSIOverbought)
	assert.True(t, p.VWAPEntryBelow)
	assert.True(t, p.ShortEnabled)
	assert.True(t, p.Execution.SpreadEnabled)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "params.yaml")
	p := DefaultParameters()
	p.RSIOversold = 28
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultParameters().Validate())

	p := DefaultParameters()
	p.RSIPeriod = 0
	assert.Error(t, p.Validate())

	p = DefaultParameters()
	p.InitialCapital = -1
	assert.Error(t, p.Validate())

	p = DefaultParameters()
	p.PositionSizePct = 1.5
	assert.Error(t, p.Validate())

	p = DefaultParameters()
	p.CashReservePct = 1
	assert.Error(t, p.Validate())
}
