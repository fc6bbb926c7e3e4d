package trader

import (
	"context"
	"errors"
	"fmt"

	"alpaca-trade-bot-go/internal/alpaca"
	"go.uber.org/zap"
)

// ErrPriceOutOfRange is returned when the entry price falls outside the
// configured min/max stock price band.
var ErrPriceOutOfRange = errors.New("entry price outside configured price band")

// runCycle executes one complete trade cycle: select a symbol, size the
// position, buy, monitor to exit. Each step is a hard precondition for the
// next; any failure aborts the cycle with an error the run loop treats as
// recoverable. Account state is not touched here; the outcome is handed
// back to the run loop.
func (c *Controller) runCycle(ctx context.Context, pot float64) (*TradeOutcome, error) {
	candidate, err := c.selector.SelectSymbol()
	if err != nil {
		return nil, fmt.Errorf("symbol selection: %w", err)
	}
	l := c.logger.With(zap.String("symbol", candidate.Symbol))

	entryPrice, err := c.client.GetLatestTradePrice(candidate.Symbol)
	if err != nil {
		return nil, fmt.Errorf("entry price for %s: %w", candidate.Symbol, err)
	}

	if entryPrice < c.params.MinStockPrice || entryPrice > c.params.MaxStockPrice {
		l.Warn("Entry price outside configured band, skipping",
			zap.Float64("price", entryPrice),
			zap.Float64("min", c.params.MinStockPrice),
			zap.Float64("max", c.params.MaxStockPrice),
		)
		return nil, fmt.Errorf("%s at %.2f: %w", candidate.Symbol, entryPrice, ErrPriceOutOfRange)
	}

	plan, err := PlanPosition(pot, entryPrice, c.params.StopLossPct, c.params.TakeProfitPct)
	if err != nil {
		return nil, fmt.Errorf("sizing %s at %.2f with pot %.2f: %w", candidate.Symbol, entryPrice, pot, err)
	}

	l.Info("Entering position",
		zap.Int64("quantity", plan.Quantity),
		zap.Float64("entry_price", entryPrice),
		zap.Float64("stop_loss", plan.StopLossPrice),
		zap.Float64("take_profit", plan.TakeProfitPrice),
	)

	if _, err := c.client.SubmitMarketOrder(candidate.Symbol, plan.Quantity, alpaca.OrderSideBuy); err != nil {
		return nil, fmt.Errorf("buy order for %s: %w", candidate.Symbol, err)
	}

	// Give the market order a moment to fill before monitoring.
	if err := wait(ctx, c.params.SettleDelay); err != nil {
		return nil, err
	}

	return c.monitor.Watch(ctx, Position{
		Symbol:          candidate.Symbol,
		EntryPrice:      entryPrice,
		Quantity:        plan.Quantity,
		StopLossPrice:   plan.StopLossPrice,
		TakeProfitPrice: plan.TakeProfitPrice,
	})
}
