package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	placeholderAPIKey    = "YOUR_ALPACA_API_KEY_HERE"
	placeholderSecretKey = "YOUR_ALPACA_SECRET_KEY_HERE"
)

// Config holds all configuration for the application.
type Config struct {
	Alpaca  Alpaca  `mapstructure:"alpaca"`
	Trading Trading `mapstructure:"trading"`
	Logger  Logger  `mapstructure:"logger"`
	Server  Server  `mapstructure:"server"`
}

// Alpaca holds the configuration for the Alpaca API.
type Alpaca struct {
	ApiKey         string  `mapstructure:"api_key"`
	SecretKey      string  `mapstructure:"secret_key"`
	BaseURL        string  `mapstructure:"base_url"`
	DataURL        string  `mapstructure:"data_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the status API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Trading holds the configuration for the trading logic.
// Interval and delay values are in seconds.
type Trading struct {
	InitialPot           float64 `mapstructure:"initial_pot"`
	ProfitTarget         float64 `mapstructure:"profit_target"`
	StopLossPct          float64 `mapstructure:"stop_loss_pct"`
	TakeProfitPct        float64 `mapstructure:"take_profit_pct"`
	CheckInterval        int     `mapstructure:"check_interval"`
	TradeInterval        int     `mapstructure:"trade_interval"`
	Cooldown             int     `mapstructure:"cooldown"`
	SettleDelay          int     `mapstructure:"settle_delay"`
	MaxConsecutiveLosses int     `mapstructure:"max_consecutive_losses"`
	LossPause            int     `mapstructure:"loss_pause"`
	MinStockPrice        float64 `mapstructure:"min_stock_price"`
	MaxStockPrice        float64 `mapstructure:"max_stock_price"`
	ScanLimit            int     `mapstructure:"scan_limit"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("alpaca.base_url", "https://paper-api.alpaca.markets")
	viper.SetDefault("alpaca.data_url", "https://data.alpaca.markets")
	viper.SetDefault("alpaca.rate_limit", 3) // requests per second
	viper.SetDefault("alpaca.rate_limit_burst", 5)
	viper.SetDefault("trading.initial_pot", 1000.0)
	viper.SetDefault("trading.profit_target", 500.0)
	viper.SetDefault("trading.stop_loss_pct", 0.10)
	viper.SetDefault("trading.take_profit_pct", 0.10)
	viper.SetDefault("trading.check_interval", 30)
	viper.SetDefault("trading.trade_interval", 60)
	viper.SetDefault("trading.cooldown", 60)
	viper.SetDefault("trading.settle_delay", 5)
	viper.SetDefault("trading.max_consecutive_losses", 3)
	viper.SetDefault("trading.loss_pause", 300)
	viper.SetDefault("trading.min_stock_price", 5.0)
	viper.SetDefault("trading.max_stock_price", 500.0)
	viper.SetDefault("trading.scan_limit", 100)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

// Validate checks the configuration for values that would make trading
// unsafe or impossible. It is called once at startup; any error here is
// fatal and the process must not begin trading.
func (c *Config) Validate() error {
	if c.Alpaca.ApiKey == "" || c.Alpaca.ApiKey == placeholderAPIKey {
		return fmt.Errorf("alpaca api_key is not set: provide it in the config file or via the ALPACA_API_KEY environment variable")
	}
	if c.Alpaca.SecretKey == "" || c.Alpaca.SecretKey == placeholderSecretKey {
		return fmt.Errorf("alpaca secret_key is not set: provide it in the config file or via the ALPACA_SECRET_KEY environment variable")
	}
	if c.Trading.InitialPot <= 0 {
		return fmt.Errorf("initial_pot must be greater than 0, got %.2f", c.Trading.InitialPot)
	}
	if c.Trading.ProfitTarget <= 0 {
		return fmt.Errorf("profit_target must be greater than 0, got %.2f", c.Trading.ProfitTarget)
	}
	if c.Trading.StopLossPct <= 0 || c.Trading.StopLossPct >= 1 {
		return fmt.Errorf("stop_loss_pct must be between 0 and 1 exclusive, got %.4f", c.Trading.StopLossPct)
	}
	if c.Trading.TakeProfitPct <= 0 || c.Trading.TakeProfitPct >= 1 {
		return fmt.Errorf("take_profit_pct must be between 0 and 1 exclusive, got %.4f", c.Trading.TakeProfitPct)
	}
	if c.Trading.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be greater than 0, got %d", c.Trading.CheckInterval)
	}
	if c.Trading.TradeInterval < 0 {
		return fmt.Errorf("trade_interval must not be negative, got %d", c.Trading.TradeInterval)
	}
	if c.Trading.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %d", c.Trading.Cooldown)
	}
	if c.Trading.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must not be negative, got %d", c.Trading.SettleDelay)
	}
	if c.Trading.ScanLimit <= 0 {
		return fmt.Errorf("scan_limit must be greater than 0, got %d", c.Trading.ScanLimit)
	}
	if c.Trading.MinStockPrice > c.Trading.MaxStockPrice {
		return fmt.Errorf("min_stock_price %.2f exceeds max_stock_price %.2f",
			c.Trading.MinStockPrice, c.Trading.MaxStockPrice)
	}
	return nil
}
