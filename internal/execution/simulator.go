package execution

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tqqq-trading/internal/config"
	"github.com/tqqq-trading/internal/market"
)

// defaultVolatility substitutes for a missing volatility estimate.
const defaultVolatility = 0.02

// Result describes the outcome of one execution attempt.
type Result struct {
	// Executed reports whether the order filled at all.
	Executed bool
	// FillPrice is the final price after slippage, spread and impact.
	FillPrice float64
	// FillQuantity may be less than requested under volume constraints.
	FillQuantity      float64
	RequestedQuantity float64
	// Adjustments breaks the fill price down into its components.
	Adjustments PriceAdjustments
	// Notes carries rejection and partial-fill explanations.
	Notes []string
}

// PriceAdjustments is the breakdown of price adjustments applied to the
// base price.
type PriceAdjustments struct {
	BasePrice       float64
	Slippage        float64
	Spread          float64
	MarketImpact    float64
	TotalAdjustment float64
}

// PendingOrder is an entry order waiting out its latency delay.
type PendingOrder struct {
	ID                string
	Symbol            string
	Side              market.Side
	Quantity          float64
	SignalBarIndex    int
	ExecuteAtBarIndex int
}

// Simulator models order execution under configurable microstructure
// assumptions: biased random slippage, volatility-widened spread,
// volume participation caps with partial fills, quadratic market
// impact, random rejection, and bar-latency queueing. It owns its RNG;
// a fixed seed makes runs reproducible.
type Simulator struct {
	cfg     config.ExecutionConfig
	pending []PendingOrder
	rng     *rand.Rand
}

// NewSimulator creates an execution simulator. A zero seed in the
// config derives one from the clock.
func NewSimulator(cfg config.ExecutionConfig) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Enabled reports whether realistic execution is on.
func (s *Simulator) Enabled() bool {
	return s.cfg.Enabled
}

// HasLatency reports whether entry orders must be queued.
func (s *Simulator) HasLatency() bool {
	return s.cfg.Enabled && s.cfg.LatencyBars > 0
}

// Simulate runs one order through the execution pipeline against the
// given bar. Volatility is the annualized log-return deviation at the
// current bar; a non-positive value falls back to the default estimate.
func (s *Simulator) Simulate(bar market.Bar, side market.Side, quantity float64, volatility float64) Result {
	if !s.cfg.Enabled {
		// Trivial execution at the close.
		return Result{
			Executed:          true,
			FillPrice:         bar.Close,
			FillQuantity:      quantity,
			RequestedQuantity: quantity,
			Adjustments:       PriceAdjustments{BasePrice: bar.Close},
		}
	}

	if volatility <= 0 {
		volatility = defaultVolatility
	}

	var notes []string

	// 1. Random rejection.
	if s.shouldRejectOrder(volatility) {
		return Result{
			RequestedQuantity: quantity,
			Notes:             []string{"Order rejected due to market conditions"},
		}
	}

	// 2. Volume-constrained fill quantity.
	fillQuantity, notes := s.calculateFillQuantity(bar, quantity, notes)
	if fillQuantity <= 0 {
		return Result{
			RequestedQuantity: quantity,
			Notes:             notes,
		}
	}

	// 3. Base price: VWAP when the bar carries one, else the close.
	basePrice := bar.Close
	if bar.VWAP != nil {
		basePrice = *bar.VWAP
	}

	// 4-6. Price adjustments.
	slippage := s.calculateSlippage(basePrice, side)
	spread := s.calculateSpread(basePrice, side, volatility)
	impact := s.calculateMarketImpact(basePrice, side, fillQuantity, bar.Volume)

	total := slippage + spread + impact

	// 7. The fill cannot escape the bar's range.
	fillPrice := math.Min(math.Max(basePrice+total, bar.Low), bar.High)

	return Result{
		Executed:          true,
		FillPrice:         fillPrice,
		FillQuantity:      fillQuantity,
		RequestedQuantity: quantity,
		Adjustments: PriceAdjustments{
			BasePrice:       basePrice,
			Slippage:        slippage,
			Spread:          spread,
			MarketImpact:    impact,
			TotalAdjustment: total,
		},
		Notes: notes,
	}
}

// calculateSlippage draws slippage with an adverse probability bias.
// Adverse means paying more on a buy and receiving less on a sell.
func (s *Simulator) calculateSlippage(price float64, side market.Side) float64 {
	isAdverse := s.rng.Float64() < s.cfg.SlippageAdverseProbability

	var slippagePct float64
	if isAdverse {
		if max := math.Abs(s.cfg.SlippageMaxPct); max > 0 {
			slippagePct = s.rng.Float64() * max
		}
	} else {
		if min := s.cfg.SlippageMinPct; min < 0 {
			slippagePct = min + s.rng.Float64()*(-min)
		}
	}

	slippage := price * slippagePct

	if side.IsBuy() {
		return slippage
	}
	return -slippage
}

// calculateSpread charges half the bid/ask spread, widened by
// volatility. Buys pay the ask, sells receive the bid.
func (s *Simulator) calculateSpread(price float64, side market.Side, volatility float64) float64 {
	if !s.cfg.SpreadEnabled {
		return 0
	}

	volatilityFactor := 1 + volatility*s.cfg.SpreadVolatilityMultiplier
	halfSpread := price * s.cfg.SpreadBasePct * volatilityFactor

	if side.IsBuy() {
		return halfSpread
	}
	return -halfSpread
}

// calculateMarketImpact models the price moved by the order itself,
// quadratic in the volume participation rate.
func (s *Simulator) calculateMarketImpact(price float64, side market.Side, quantity float64, barVolume uint64) float64 {
	if !s.cfg.MarketImpactEnabled || barVolume == 0 {
		return 0
	}

	orderValue := quantity * price
	participation := orderValue / (float64(barVolume) * price)

	impactPct := s.cfg.MarketImpactFactor * participation * participation * 100
	impact := price * impactPct

	if side.IsBuy() {
		return impact
	}
	return -impact
}

// calculateFillQuantity caps the fill at the configured share of bar
// volume, partially filling or rejecting oversized orders.
func (s *Simulator) calculateFillQuantity(bar market.Bar, quantity float64, notes []string) (float64, []string) {
	if !s.cfg.VolumeLimitEnabled {
		return quantity, notes
	}

	maxQuantityByVolume := float64(bar.Volume) * s.cfg.VolumeParticipationMaxPct / bar.Close

	if quantity <= maxQuantityByVolume {
		return quantity, notes
	}

	if s.cfg.PartialFillEnabled {
		notes = append(notes, fmt.Sprintf(
			"Partial fill: %.2f of %.2f shares due to volume constraints",
			maxQuantityByVolume, quantity))
		return math.Max(math.Floor(maxQuantityByVolume), 0), notes
	}

	notes = append(notes, "Order rejected: exceeds volume participation limit")
	return 0, notes
}

// shouldRejectOrder draws the random rejection, more likely in
// volatile conditions.
func (s *Simulator) shouldRejectOrder(volatility float64) bool {
	if !s.cfg.RejectionEnabled {
		return false
	}

	rejectionProb := s.cfg.RejectionBaseProbability + volatility*s.cfg.RejectionVolatilityMultiplier
	return s.rng.Float64() < rejectionProb
}

// QueueOrder enqueues an entry order for delayed execution.
func (s *Simulator) QueueOrder(symbol string, side market.Side, quantity float64, currentBarIndex int) {
	order := PendingOrder{
		ID:                uuid.New().String(),
		Symbol:            symbol,
		Side:              side,
		Quantity:          quantity,
		SignalBarIndex:    currentBarIndex,
		ExecuteAtBarIndex: currentBarIndex + s.cfg.LatencyBars,
	}
	s.pending = append(s.pending, order)

	log.Debug().
		Str("orderID", order.ID).
		Str("symbol", symbol).
		Str("side", side.String()).
		Float64("quantity", quantity).
		Int("executeAt", order.ExecuteAtBarIndex).
		Msg("Order queued")
}

// ExecutableOrders removes and returns all pending orders whose delay
// has elapsed at the current bar.
func (s *Simulator) ExecutableOrders(currentBarIndex int) []PendingOrder {
	var ready, pending []PendingOrder
	for _, order := range s.pending {
		if order.ExecuteAtBarIndex <= currentBarIndex {
			ready = append(ready, order)
		} else {
			pending = append(pending, order)
		}
	}
	s.pending = pending
	return ready
}

// PendingCount returns the number of queued orders.
func (s *Simulator) PendingCount() int {
	return len(s.pending)
}

// ClearPending drops all queued orders.
func (s *Simulator) ClearPending() {
	s.pending = nil
}
