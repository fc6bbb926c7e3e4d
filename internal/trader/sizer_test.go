package trader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanPosition_QuantityIsFloorOfPotOverPrice(t *testing.T) {
	plan, err := PlanPosition(1000, 50, 0.10, 0.10)

	assert.NoError(t, err)
	assert.Equal(t, int64(20), plan.Quantity)
}

func TestPlanPosition_FractionalShareIsFloored(t *testing.T) {
	plan, err := PlanPosition(1000, 333, 0.10, 0.10)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), plan.Quantity)
}

func TestPlanPosition_InsufficientFunds(t *testing.T) {
	// Pot below the price of one share yields no position.
	_, err := PlanPosition(40, 50, 0.10, 0.10)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestPlanPosition_ExactlyOneShare(t *testing.T) {
	plan, err := PlanPosition(50, 50, 0.10, 0.10)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), plan.Quantity)
}

func TestPlanPosition_Thresholds(t *testing.T) {
	plan, err := PlanPosition(1000, 50, 0.10, 0.10)

	assert.NoError(t, err)
	assert.InDelta(t, 45.0, plan.StopLossPrice, 1e-9)
	assert.InDelta(t, 55.0, plan.TakeProfitPrice, 1e-9)
}

func TestPlanPosition_ThresholdsBracketEntryPrice(t *testing.T) {
	for _, pct := range []float64{0.01, 0.10, 0.50, 0.99} {
		plan, err := PlanPosition(10000, 123.45, pct, pct)

		assert.NoError(t, err)
		assert.Less(t, plan.StopLossPrice, 123.45)
		assert.Greater(t, plan.TakeProfitPrice, 123.45)
	}
}
