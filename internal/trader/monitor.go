package trader

import (
	"context"
	"fmt"
	"time"

	"alpaca-trade-bot-go/internal/alpaca"
	"go.uber.org/zap"
)

// Exit reasons reported in a TradeOutcome.
const (
	ExitStopLoss   = "stop_loss"
	ExitTakeProfit = "take_profit"
)

// Position is an open position under supervision. It is created after a
// confirmed buy fill and discarded once the monitor closes it.
type Position struct {
	Symbol          string
	EntryPrice      float64
	Quantity        int64
	StopLossPrice   float64
	TakeProfitPrice float64
}

// TradeOutcome is the result of one closed position: the realized P&L and
// the threshold that triggered the exit.
type TradeOutcome struct {
	Symbol     string
	EntryPrice float64
	ExitPrice  float64
	Quantity   int64
	Profit     float64
	ExitReason string
}

// Monitor supervises an open position, polling the latest price at a fixed
// cadence until a stop-loss or take-profit threshold fires.
type Monitor struct {
	client   alpaca.ClientInterface
	logger   *zap.Logger
	interval time.Duration
}

// NewMonitor creates a new Monitor polling at the given interval.
func NewMonitor(client alpaca.ClientInterface, logger *zap.Logger, interval time.Duration) *Monitor {
	return &Monitor{
		client:   client,
		logger:   logger,
		interval: interval,
	}
}

// Watch polls the position's price until an exit threshold is breached, then
// submits a market sell for the full quantity and returns the outcome.
//
// The stop-loss check runs before the take-profit check on every poll. A
// failed price read is logged and treated as a no-op poll; the loop never
// gives up on its own. Cancellation is honored on every iteration, so an
// in-progress monitor stops within one interval of ctx being cancelled.
//
// Realized P&L is computed from the price that triggered the exit, not the
// sell order's actual fill price. A failed sell aborts the cycle with the
// position still open.
func (m *Monitor) Watch(ctx context.Context, pos Position) (*TradeOutcome, error) {
	l := m.logger.With(zap.String("symbol", pos.Symbol))
	l.Info("Monitoring position",
		zap.Float64("entry_price", pos.EntryPrice),
		zap.Int64("quantity", pos.Quantity),
		zap.Float64("stop_loss", pos.StopLossPrice),
		zap.Float64("take_profit", pos.TakeProfitPrice),
	)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		currentPrice, err := m.client.GetLatestTradePrice(pos.Symbol)
		switch {
		case err != nil:
			// Retry at the next tick, never abort on a bad read.
			l.Warn("Failed to read price, will retry", zap.Error(err))

		case currentPrice <= pos.StopLossPrice:
			l.Warn("Stop loss triggered", zap.Float64("price", currentPrice))
			return m.closePosition(pos, currentPrice, ExitStopLoss, l)

		case currentPrice >= pos.TakeProfitPrice:
			l.Info("Take profit triggered", zap.Float64("price", currentPrice))
			return m.closePosition(pos, currentPrice, ExitTakeProfit, l)
		}

		select {
		case <-ctx.Done():
			l.Info("Monitoring cancelled")
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// closePosition sells the full quantity and computes the realized P&L from
// the observed trigger price.
func (m *Monitor) closePosition(pos Position, exitPrice float64, reason string, l *zap.Logger) (*TradeOutcome, error) {
	if _, err := m.client.SubmitMarketOrder(pos.Symbol, pos.Quantity, alpaca.OrderSideSell); err != nil {
		l.Error("Sell order failed, position remains open",
			zap.Int64("quantity", pos.Quantity), zap.Error(err))
		return nil, fmt.Errorf("sell order for %s: %w", pos.Symbol, err)
	}

	outcome := &TradeOutcome{
		Symbol:     pos.Symbol,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   pos.Quantity,
		Profit:     (exitPrice - pos.EntryPrice) * float64(pos.Quantity),
		ExitReason: reason,
	}

	l.Info("Position closed",
		zap.String("exit_reason", reason),
		zap.Float64("exit_price", exitPrice),
		zap.Float64("profit", outcome.Profit),
	)
	return outcome, nil
}
