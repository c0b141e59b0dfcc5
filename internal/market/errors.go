package market

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPositionToClose is returned when a close targets an empty slot.
	ErrNoPositionToClose = errors.New("no position to close")
)

// InsufficientCashError is returned when an open would overdraw cash.
type InsufficientCashError struct {
	Required  float64
	Available float64
}

func (e *InsufficientCashError) Error() string {
	return fmt.Sprintf("insufficient cash: need $%.2f, have $%.2f", e.Required, e.Available)
}

// PositionAlreadyExistsError is returned when an open targets an
// occupied slot.
type PositionAlreadyExistsError struct {
	Symbol string
}

func (e *PositionAlreadyExistsError) Error() string {
	return fmt.Sprintf("position already exists for %s", e.Symbol)
}

// InvalidParameterError is returned by parameter validation.
type InvalidParameterError struct {
	Msg string
}

func (e *InvalidParameterError) Error() string {
	return "invalid parameter: " + e.Msg
}
