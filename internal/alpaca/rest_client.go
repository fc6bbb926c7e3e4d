package alpaca

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"alpaca-trade-bot-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiVersion      = "/v2"
	OrderTypeMarket = "market"
	OrderSideBuy    = "buy"
	OrderSideSell   = "sell"
	TimeInForceDay  = "day"

	AssetStatusActive = "active"
	AssetClassUSEq    = "us_equity"
)

// ClientInterface defines the interface for the Alpaca REST API client.
// It covers both gateways the bot consumes: market data (assets, bars,
// latest trades) and order execution (market orders).
type ClientInterface interface {
	GetAccount() (*Account, error)
	ListAssets(status, assetClass string) ([]Asset, error)
	GetLatestDailyBar(symbol string) (*Bar, error)
	GetLatestTradePrice(symbol string) (float64, error)
	SubmitMarketOrder(symbol string, qty int64, side string) (*Order, error)
}

// Client is a client for the Alpaca REST API.
// It implements the ClientInterface.
type Client struct {
	trading *resty.Client // trading API (account, assets, orders)
	data    *resty.Client // market data API (bars, latest trades)
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Alpaca REST API client.
func NewClient(cfg *config.Alpaca, logger *zap.Logger) *Client {
	if cfg.BaseURL == "https://paper-api.alpaca.markets" {
		logger.Warn("Using Alpaca paper trading endpoint")
	} else {
		logger.Info("Using Alpaca endpoint", zap.String("base_url", cfg.BaseURL))
	}

	newResty := func(baseURL string) *resty.Client {
		return resty.New().
			SetBaseURL(baseURL+apiVersion).
			SetHeader("APCA-API-KEY-ID", cfg.ApiKey).
			SetHeader("APCA-API-SECRET-KEY", cfg.SecretKey)
	}

	// One limiter shared by both API surfaces; Alpaca rate-limits per key.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		trading: newResty(cfg.BaseURL),
		data:    newResty(cfg.DataURL),
		logger:  logger,
		limiter: limiter,
	}
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	var lastStatus string
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			lastStatus = resp.Status()
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// HTTP-status failures leave err nil; report the last status instead.
	if err != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
	}
	return nil, fmt.Errorf("request failed after %d attempts, last status %s", maxRetries, lastStatus)
}

// Account represents the trading account as reported by Alpaca.
type Account struct {
	AccountNumber string `json:"account_number"`
	Status        string `json:"status"`
	Currency      string `json:"currency"`
	Cash          string `json:"cash"`
	BuyingPower   string `json:"buying_power"`
}

// GetAccount fetches the trading account.
// This is a good endpoint to test connectivity and credentials.
func (c *Client) GetAccount() (*Account, error) {
	req := c.trading.R().
		SetResult(&Account{})
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/account", req)
	if err != nil {
		c.logger.Error("Failed to get account", zap.Error(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return resp.Result().(*Account), nil
}

// Asset represents a single tradable asset listing.
type Asset struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Exchange  string `json:"exchange"`
	Status    string `json:"status"`
	Tradable  bool   `json:"tradable"`
	Shortable bool   `json:"shortable"`
}

// ListAssets fetches the asset listings matching the given status and class.
func (c *Client) ListAssets(status, assetClass string) ([]Asset, error) {
	var assets []Asset

	req := c.trading.R().
		SetResult(&assets).
		SetQueryParam("status", status).
		SetQueryParam("asset_class", assetClass)
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/assets", req)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return *resp.Result().(*[]Asset), nil
}

// Bar represents a single OHLCV bar.
type Bar struct {
	Timestamp string  `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    int64   `json:"v"`
}

// barsResponse is the envelope returned by the stock bars endpoint.
type barsResponse struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// GetLatestDailyBar fetches the most recent daily bar for a symbol.
// The bar's volume is what the selector ranks candidates by.
func (c *Client) GetLatestDailyBar(symbol string) (*Bar, error) {
	var result barsResponse

	req := c.data.R().
		SetResult(&result).
		SetQueryParam("timeframe", "1Day").
		SetQueryParam("limit", "1")
	ctx := context.Background()

	_, err := c.doRequest(ctx, "GET", "/stocks/"+symbol+"/bars", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily bar for %s: %w", symbol, err)
	}

	if len(result.Bars) == 0 {
		return nil, fmt.Errorf("no daily bar available for %s", symbol)
	}

	return &result.Bars[0], nil
}

// latestTradeResponse is the envelope returned by the latest trade endpoint.
type latestTradeResponse struct {
	Symbol string `json:"symbol"`
	Trade  struct {
		Price float64 `json:"p"`
		Size  int64   `json:"s"`
	} `json:"trade"`
}

// GetLatestTradePrice fetches the price of the most recent trade for a symbol.
func (c *Client) GetLatestTradePrice(symbol string) (float64, error) {
	var result latestTradeResponse

	req := c.data.R().
		SetResult(&result)
	ctx := context.Background()

	_, err := c.doRequest(ctx, "GET", "/stocks/"+symbol+"/trades/latest", req)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest trade for %s: %w", symbol, err)
	}

	if result.Trade.Price <= 0 {
		return 0, fmt.Errorf("latest trade for %s has no usable price", symbol)
	}

	return result.Trade.Price, nil
}

// Order represents the response from submitting a new order.
type Order struct {
	ID             string `json:"id"`
	ClientOrderID  string `json:"client_order_id"`
	Symbol         string `json:"symbol"`
	Qty            string `json:"qty"`
	FilledQty      string `json:"filled_qty"`
	FilledAvgPrice string `json:"filled_avg_price"`
	Side           string `json:"side"`
	Type           string `json:"type"`
	TimeInForce    string `json:"time_in_force"`
	Status         string `json:"status"`
}

// orderRequest is the body for the order submission endpoint.
type orderRequest struct {
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
}

// SubmitMarketOrder places a market order with day time-in-force.
func (c *Client) SubmitMarketOrder(symbol string, qty int64, side string) (*Order, error) {
	body := orderRequest{
		Symbol:      symbol,
		Qty:         strconv.FormatInt(qty, 10),
		Side:        side,
		Type:        OrderTypeMarket,
		TimeInForce: TimeInForceDay,
	}

	req := c.trading.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&Order{})
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "POST", "/orders", req)
	if err != nil {
		c.logger.Error("Failed to submit order",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("side", side),
			zap.Int64("qty", qty),
		)
		return nil, fmt.Errorf("failed to submit %s order: %w", side, err)
	}

	result := resp.Result().(*Order)
	c.logger.Info("Order submitted",
		zap.String("symbol", symbol),
		zap.String("side", side),
		zap.Int64("qty", qty),
		zap.String("order_id", result.ID),
	)
	return result, nil
}
