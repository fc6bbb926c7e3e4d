package trader

import (
	"time"

	"alpaca-trade-bot-go/internal/alpaca"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of the alpaca.ClientInterface.
type MockClient struct {
	mock.Mock
}

var _ alpaca.ClientInterface = (*MockClient)(nil)

func (m *MockClient) GetAccount() (*alpaca.Account, error) {
	args := m.Called()
	return args.Get(0).(*alpaca.Account), args.Error(1)
}

func (m *MockClient) ListAssets(status, assetClass string) ([]alpaca.Asset, error) {
	args := m.Called(status, assetClass)
	return args.Get(0).([]alpaca.Asset), args.Error(1)
}

func (m *MockClient) GetLatestDailyBar(symbol string) (*alpaca.Bar, error) {
	args := m.Called(symbol)
	return args.Get(0).(*alpaca.Bar), args.Error(1)
}

func (m *MockClient) GetLatestTradePrice(symbol string) (float64, error) {
	args := m.Called(symbol)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockClient) SubmitMarketOrder(symbol string, qty int64, side string) (*alpaca.Order, error) {
	args := m.Called(symbol, qty, side)
	return args.Get(0).(*alpaca.Order), args.Error(1)
}

// testParams returns trading parameters scaled down for fast tests.
func testParams() Params {
	return Params{
		InitialPot:           1000,
		ProfitTarget:         120,
		StopLossPct:          0.10,
		TakeProfitPct:        0.10,
		CheckInterval:        time.Millisecond,
		TradeInterval:        time.Millisecond,
		Cooldown:             time.Millisecond,
		SettleDelay:          0,
		MaxConsecutiveLosses: 3,
		LossPause:            time.Millisecond,
		MinStockPrice:        5,
		MaxStockPrice:        500,
		ScanLimit:            100,
	}
}
