// Package pricing maps a resolved action onto an arithmetic price transform.
package pricing

import (
	"errors"
	"fmt"

	"github.com/hyperengineering/boxoffice/internal/semantic"
)

var (
	// ErrUnknownAction is returned for actions with no price transform.
	ErrUnknownAction = errors.New("unknown action")
	// ErrMissingOperand is returned when the action requires a number the
	// query did not supply.
	ErrMissingOperand = errors.New("missing numeric operand")
	// ErrZeroDivisor is returned for a divide action with a zero operand.
	ErrZeroDivisor = errors.New("cannot divide by zero")
)

// wordMultipliers are multiply aliases that carry their own factor.
var wordMultipliers = map[string]float64{
	"double":    2,
	"triple":    3,
	"quadruple": 4,
}

// CalculateNewPrice computes the proposed price for (action, matchedAction)
// applied to currentPrice with the optional operand. It is pure and does not
// clamp: callers must reject a negative result before applying it.
func CalculateNewPrice(action semantic.ActionKind, matchedAction string, currentPrice float64, operand *float64) (float64, error) {
	switch action {
	case semantic.ActionMultiply:
		if factor, ok := wordMultipliers[matchedAction]; ok {
			return currentPrice * factor, nil
		}
		if operand == nil {
			return 0, fmt.Errorf("calculate new price: %w", ErrMissingOperand)
		}
		return currentPrice * *operand, nil

	case semantic.ActionDivide:
		if matchedAction == "half" || matchedAction == "halve" {
			return currentPrice / 2, nil
		}
		if operand == nil {
			return 0, fmt.Errorf("calculate new price: %w", ErrMissingOperand)
		}
		if *operand == 0 {
			return 0, fmt.Errorf("calculate new price: %w", ErrZeroDivisor)
		}
		return currentPrice / *operand, nil

	case semantic.ActionIncrease:
		if operand == nil {
			return 0, fmt.Errorf("calculate new price: %w", ErrMissingOperand)
		}
		return currentPrice + *operand, nil

	case semantic.ActionDecrease:
		if operand == nil {
			return 0, fmt.Errorf("calculate new price: %w", ErrMissingOperand)
		}
		return currentPrice - *operand, nil

	case semantic.ActionChange:
		// Absolute set, not relative.
		if operand == nil {
			return 0, fmt.Errorf("calculate new price: %w", ErrMissingOperand)
		}
		return *operand, nil
	}

	return 0, fmt.Errorf("calculate new price: %w: %q", ErrUnknownAction, action)
}
