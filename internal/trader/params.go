package trader

import (
	"time"

	"alpaca-trade-bot-go/internal/config"
)

// Params carries the trading parameters the core loop runs on, with all
// intervals resolved to durations. It is immutable for the process lifetime.
type Params struct {
	InitialPot           float64
	ProfitTarget         float64
	StopLossPct          float64
	TakeProfitPct        float64
	CheckInterval        time.Duration
	TradeInterval        time.Duration
	Cooldown             time.Duration
	SettleDelay          time.Duration
	MaxConsecutiveLosses int
	LossPause            time.Duration
	MinStockPrice        float64
	MaxStockPrice        float64
	ScanLimit            int
}

// ParamsFromConfig resolves the validated configuration into Params.
func ParamsFromConfig(cfg *config.Trading) Params {
	return Params{
		InitialPot:           cfg.InitialPot,
		ProfitTarget:         cfg.ProfitTarget,
		StopLossPct:          cfg.StopLossPct,
		TakeProfitPct:        cfg.TakeProfitPct,
		CheckInterval:        time.Duration(cfg.CheckInterval) * time.Second,
		TradeInterval:        time.Duration(cfg.TradeInterval) * time.Second,
		Cooldown:             time.Duration(cfg.Cooldown) * time.Second,
		SettleDelay:          time.Duration(cfg.SettleDelay) * time.Second,
		MaxConsecutiveLosses: cfg.MaxConsecutiveLosses,
		LossPause:            time.Duration(cfg.LossPause) * time.Second,
		MinStockPrice:        cfg.MinStockPrice,
		MaxStockPrice:        cfg.MaxStockPrice,
		ScanLimit:            cfg.ScanLimit,
	}
}
