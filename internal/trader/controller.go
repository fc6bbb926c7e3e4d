package trader

import (
	"context"
	"errors"
	"sync"
	"time"

	"alpaca-trade-bot-go/internal/alpaca"
	"go.uber.org/zap"
)

// Controller run states, reported by the status API.
const (
	StatusRunning  = "running"
	StatusCooldown = "cooldown"
	StatusStopped  = "stopped"
)

// AccountState holds the bot's financial counters. It is owned exclusively
// by the Controller and mutated only between cycles.
type AccountState struct {
	Pot               float64
	TotalProfit       float64
	TradesCompleted   int
	ConsecutiveLosses int
}

// Controller owns the trade loop: it repeats trade cycles until the
// cumulative profit target is reached or the context is cancelled, applying
// each outcome to the account state and recovering from failed cycles with
// a cooldown.
type Controller struct {
	logger   *zap.Logger
	client   alpaca.ClientInterface
	params   Params
	selector *Selector
	monitor  *Monitor

	mu        sync.RWMutex
	state     AccountState
	status    string
	startTime time.Time
}

// NewController creates a new Controller with its selector and monitor.
func NewController(client alpaca.ClientInterface, logger *zap.Logger, params Params) *Controller {
	return &Controller{
		logger:   logger,
		client:   client,
		params:   params,
		selector: NewSelector(client, logger, params.ScanLimit),
		monitor:  NewMonitor(client, logger, params.CheckInterval),
		state:    AccountState{Pot: params.InitialPot},
		status:   StatusRunning,
	}
}

// Run executes trade cycles until the profit target is reached or ctx is
// cancelled. A failed cycle is reported and retried after a cooldown; only
// cancellation and the profit target stop the loop.
func (c *Controller) Run(ctx context.Context) {
	c.mu.Lock()
	c.startTime = time.Now()
	c.mu.Unlock()

	c.logger.Info("Trading bot started",
		zap.Float64("initial_pot", c.params.InitialPot),
		zap.Float64("profit_target", c.params.ProfitTarget),
		zap.Float64("stop_loss_pct", c.params.StopLossPct),
		zap.Float64("take_profit_pct", c.params.TakeProfitPct),
	)

	for {
		if ctx.Err() != nil {
			c.stop("Bot stopped by cancellation")
			return
		}
		c.setStatus(StatusRunning)

		state := c.Snapshot()
		c.logger.Info("Starting trade cycle",
			zap.Int("cycle", state.TradesCompleted+1),
			zap.Float64("pot", state.Pot),
			zap.Float64("total_profit", state.TotalProfit),
		)

		outcome, err := c.runCycle(ctx, state.Pot)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.stop("Bot stopped by cancellation")
				return
			}
			c.logger.Warn("Trade cycle failed, waiting before retry", zap.Error(err))
			c.setStatus(StatusCooldown)
			if wait(ctx, c.params.Cooldown) != nil {
				c.stop("Bot stopped by cancellation")
				return
			}
			continue
		}

		state = c.applyOutcome(outcome)
		c.logger.Info("Trade cycle completed",
			zap.String("exit_reason", outcome.ExitReason),
			zap.Float64("result", outcome.Profit),
			zap.Float64("pot", state.Pot),
			zap.Float64("total_profit", state.TotalProfit),
			zap.Int("trades_completed", state.TradesCompleted),
		)

		if state.TotalProfit >= c.params.ProfitTarget {
			c.stop("Profit target reached")
			return
		}

		if c.params.MaxConsecutiveLosses > 0 && state.ConsecutiveLosses >= c.params.MaxConsecutiveLosses {
			c.logger.Warn("Consecutive loss limit hit, pausing",
				zap.Int("consecutive_losses", state.ConsecutiveLosses),
				zap.Duration("pause", c.params.LossPause),
			)
			c.setStatus(StatusCooldown)
			if wait(ctx, c.params.LossPause) != nil {
				c.stop("Bot stopped by cancellation")
				return
			}
			c.resetConsecutiveLosses()
			continue
		}

		if wait(ctx, c.params.TradeInterval) != nil {
			c.stop("Bot stopped by cancellation")
			return
		}
	}
}

// Snapshot returns a copy of the current account state.
func (c *Controller) Snapshot() AccountState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Status returns the controller's run state and start time.
func (c *Controller) Status() (string, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status, c.startTime
}

// applyOutcome folds one trade outcome into the account state and returns
// the updated copy.
func (c *Controller) applyOutcome(outcome *TradeOutcome) AccountState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Pot += outcome.Profit
	c.state.TotalProfit += outcome.Profit
	c.state.TradesCompleted++
	if outcome.Profit < 0 {
		c.state.ConsecutiveLosses++
	} else {
		c.state.ConsecutiveLosses = 0
	}
	return c.state
}

func (c *Controller) resetConsecutiveLosses() {
	c.mu.Lock()
	c.state.ConsecutiveLosses = 0
	c.mu.Unlock()
}

func (c *Controller) setStatus(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// stop records the terminal state and logs the final metrics.
func (c *Controller) stop(reason string) {
	c.setStatus(StatusStopped)
	state := c.Snapshot()
	c.logger.Info(reason,
		zap.Float64("total_profit", state.TotalProfit),
		zap.Float64("final_pot", state.Pot),
		zap.Int("trades_completed", state.TradesCompleted),
	)
}

// wait blocks for the given duration or until ctx is cancelled, in which
// case it returns the context's error.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
