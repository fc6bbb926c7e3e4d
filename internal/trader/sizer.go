package trader

import (
	"errors"
	"math"
)

// ErrInsufficientFunds is returned when the pot cannot cover a single share.
var ErrInsufficientFunds = errors.New("insufficient funds for one share")

// PositionPlan is the sized entry for one trade: how many shares to buy and
// the price thresholds that will close the position.
type PositionPlan struct {
	Quantity        int64
	StopLossPrice   float64
	TakeProfitPrice float64
}

// PlanPosition converts the available pot and an entry price into a whole
// number of shares and the derived exit thresholds. It is a pure function;
// the quantity is the floor of pot/entryPrice and a zero quantity means the
// capital is below the cost of one share.
func PlanPosition(pot, entryPrice, stopLossPct, takeProfitPct float64) (PositionPlan, error) {
	quantity := int64(math.Floor(pot / entryPrice))
	if quantity == 0 {
		return PositionPlan{}, ErrInsufficientFunds
	}

	return PositionPlan{
		Quantity:        quantity,
		StopLossPrice:   entryPrice * (1 - stopLossPct),
		TakeProfitPrice: entryPrice * (1 + takeProfitPct),
	}, nil
}
