package trader

import (
	"context"
	"errors"
	"testing"
	"time"

	"alpaca-trade-bot-go/internal/alpaca"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testPosition() Position {
	// pot=1000 at entry 50 with 10% thresholds.
	return Position{
		Symbol:          "AAPL",
		EntryPrice:      50,
		Quantity:        20,
		StopLossPrice:   45,
		TakeProfitPrice: 55,
	}
}

func TestMonitor_StopLossExit(t *testing.T) {
	// Arrange: price drifts down through the stop.
	mockClient := new(MockClient)
	mockClient.On("GetLatestTradePrice", "AAPL").Return(50.0, nil).Once()
	mockClient.On("GetLatestTradePrice", "AAPL").Return(48.0, nil).Once()
	mockClient.On("GetLatestTradePrice", "AAPL").Return(44.0, nil).Once()
	mockClient.On("SubmitMarketOrder", "AAPL", int64(20), alpaca.OrderSideSell).
		Return(&alpaca.Order{ID: "1"}, nil)

	monitor := NewMonitor(mockClient, zap.NewNop(), time.Millisecond)

	// Act
	outcome, err := monitor.Watch(context.Background(), testPosition())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, ExitStopLoss, outcome.ExitReason)
	assert.Equal(t, 44.0, outcome.ExitPrice)
	assert.InDelta(t, -120.0, outcome.Profit, 1e-9)
	mockClient.AssertExpectations(t)
}

func TestMonitor_TakeProfitExit(t *testing.T) {
	// Arrange: price drifts up through the target.
	mockClient := new(MockClient)
	mockClient.On("GetLatestTradePrice", "AAPL").Return(50.0, nil).Once()
	mockClient.On("GetLatestTradePrice", "AAPL").Return(52.0, nil).Once()
	mockClient.On("GetLatestTradePrice", "AAPL").Return(56.0, nil).Once()
	mockClient.On("SubmitMarketOrder", "AAPL", int64(20), alpaca.OrderSideSell).
		Return(&alpaca.Order{ID: "1"}, nil)

	monitor := NewMonitor(mockClient, zap.NewNop(), time.Millisecond)

	// Act
	outcome, err := monitor.Watch(context.Background(), testPosition())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, ExitTakeProfit, outcome.ExitReason)
	assert.Equal(t, 56.0, outcome.ExitPrice)
	assert.InDelta(t, 120.0, outcome.Profit, 1e-9)
}

func TestMonitor_StopLossCheckedBeforeTakeProfit(t *testing.T) {
	// Arrange: a degenerate position where both thresholds hold at once.
	mockClient := new(MockClient)
	mockClient.On("GetLatestTradePrice", "AAPL").Return(50.0, nil).Once()
	mockClient.On("SubmitMarketOrder", "AAPL", int64(20), alpaca.OrderSideSell).
		Return(&alpaca.Order{ID: "1"}, nil)

	pos := testPosition()
	pos.StopLossPrice = 50
	pos.TakeProfitPrice = 50

	monitor := NewMonitor(mockClient, zap.NewNop(), time.Millisecond)

	// Act
	outcome, err := monitor.Watch(context.Background(), pos)

	// Assert: stop-loss wins on the same tick.
	assert.NoError(t, err)
	assert.Equal(t, ExitStopLoss, outcome.ExitReason)
}

func TestMonitor_FailedReadIsRetried(t *testing.T) {
	// Arrange: the first two reads fail, the third triggers the stop.
	mockClient := new(MockClient)
	mockClient.On("GetLatestTradePrice", "AAPL").Return(0.0, errors.New("timeout")).Twice()
	mockClient.On("GetLatestTradePrice", "AAPL").Return(44.0, nil).Once()
	mockClient.On("SubmitMarketOrder", "AAPL", int64(20), alpaca.OrderSideSell).
		Return(&alpaca.Order{ID: "1"}, nil)

	monitor := NewMonitor(mockClient, zap.NewNop(), time.Millisecond)

	// Act
	outcome, err := monitor.Watch(context.Background(), testPosition())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, ExitStopLoss, outcome.ExitReason)
	mockClient.AssertExpectations(t)
}

func TestMonitor_CancellationStopsPolling(t *testing.T) {
	// Arrange: price never breaches a threshold.
	mockClient := new(MockClient)
	mockClient.On("GetLatestTradePrice", "AAPL").Return(50.0, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	monitor := NewMonitor(mockClient, zap.NewNop(), time.Millisecond)

	// Act
	outcome, err := monitor.Watch(ctx, testPosition())

	// Assert: the poll loop honored the context instead of spinning forever.
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	mockClient.AssertNotCalled(t, "SubmitMarketOrder", "AAPL", int64(20), alpaca.OrderSideSell)
}

func TestMonitor_SellFailureAbortsCycle(t *testing.T) {
	// Arrange
	mockClient := new(MockClient)
	mockClient.On("GetLatestTradePrice", "AAPL").Return(44.0, nil).Once()
	mockClient.On("SubmitMarketOrder", "AAPL", int64(20), alpaca.OrderSideSell).
		Return(&alpaca.Order{}, errors.New("rejected"))

	monitor := NewMonitor(mockClient, zap.NewNop(), time.Millisecond)

	// Act
	outcome, err := monitor.Watch(context.Background(), testPosition())

	// Assert
	assert.Nil(t, outcome)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}
