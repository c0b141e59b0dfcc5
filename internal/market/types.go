package market

import "encoding/json"

// Side represents the side of an order or fill.
type Side int

const (
	SideBuy Side = iota
	SideSell
	SideShort
	SideCover
	SideHedgeBuy
	SideHedgeSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	case SideShort:
		return "short"
	case SideCover:
		return "cover"
	case SideHedgeBuy:
		return "hedge_buy"
	case SideHedgeSell:
		return "hedge_sell"
	default:
		return "unknown"
	}
}

// IsBuy reports whether the side adds exposure (pays the ask).
func (s Side) IsBuy() bool {
	return s == SideBuy || s == SideHedgeBuy || s == SideCover
}

// MarshalJSON implements json.Marshaler for Side.
func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Side.
func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "buy":
		*s = SideBuy
	case "sell":
		*s = SideSell
	case "short":
		*s = SideShort
	case "cover":
		*s = SideCover
	case "hedge_buy":
		*s = SideHedgeBuy
	case "hedge_sell":
		*s = SideHedgeSell
	default:
		*s = SideBuy
	}
	return nil
}

// SignalType represents the kind of signal the generator emits.
type SignalType int

const (
	SignalHold SignalType = iota
	SignalBuy
	SignalSell
	SignalShort
	SignalCover
	SignalHedgeBuy
	SignalHedgeSell
)

func (st SignalType) String() string {
	switch st {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	case SignalShort:
		return "short"
	case SignalCover:
		return "cover"
	case SignalHedgeBuy:
		return "hedge_buy"
	case SignalHedgeSell:
		return "hedge_sell"
	default:
		return "hold"
	}
}

// MarshalJSON implements json.Marshaler for SignalType.
func (st SignalType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + st.String() + `"`), nil
}

// PositionSide represents the direction of an open position.
type PositionSide int

const (
	PositionLong PositionSide = iota
	PositionShort
	PositionHedge
)

func (ps PositionSide) String() string {
	switch ps {
	case PositionShort:
		return "short"
	case PositionHedge:
		return "hedge"
	default:
		return "long"
	}
}

// MarshalJSON implements json.Marshaler for PositionSide.
func (ps PositionSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ps.String() + `"`), nil
}
