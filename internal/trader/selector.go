package trader

import (
	"errors"
	"fmt"

	"alpaca-trade-bot-go/internal/alpaca"
	"go.uber.org/zap"
)

// ErrNoSymbol is returned when the scan yields no candidate with a volume reading.
var ErrNoSymbol = errors.New("no tradable symbol found")

// CandidateSymbol is a ticker together with the volume metric it was ranked by.
type CandidateSymbol struct {
	Symbol string
	Volume int64
}

// Selector picks the next symbol to trade by scanning a bounded prefix of the
// active asset list for the highest most-recent daily volume.
type Selector struct {
	client    alpaca.ClientInterface
	logger    *zap.Logger
	scanLimit int
}

// NewSelector creates a new Selector.
func NewSelector(client alpaca.ClientInterface, logger *zap.Logger, scanLimit int) *Selector {
	return &Selector{
		client:    client,
		logger:    logger,
		scanLimit: scanLimit,
	}
}

// SelectSymbol scans up to scanLimit active, tradable, shortable US equities
// and returns the one with the highest latest daily volume. The asset list is
// taken in the gateway's default order; volume is fetched lazily per symbol
// and a failed fetch skips that symbol rather than aborting the scan. Ties
// keep the first-seen symbol (strict > comparison).
func (s *Selector) SelectSymbol() (CandidateSymbol, error) {
	s.logger.Info("Searching for most traded stock...")

	assets, err := s.client.ListAssets(alpaca.AssetStatusActive, alpaca.AssetClassUSEq)
	if err != nil {
		return CandidateSymbol{}, fmt.Errorf("could not list assets: %w", err)
	}

	if len(assets) > s.scanLimit {
		assets = assets[:s.scanLimit]
	}

	var best CandidateSymbol
	found := false

	for _, asset := range assets {
		if !asset.Tradable || !asset.Shortable {
			continue
		}

		bar, err := s.client.GetLatestDailyBar(asset.Symbol)
		if err != nil {
			// One bad datapoint must not abort the whole scan.
			s.logger.Debug("Skipping symbol, no volume reading",
				zap.String("symbol", asset.Symbol), zap.Error(err))
			continue
		}

		if bar.Volume > best.Volume {
			best = CandidateSymbol{Symbol: asset.Symbol, Volume: bar.Volume}
			found = true
		}
	}

	if !found {
		return CandidateSymbol{}, ErrNoSymbol
	}

	s.logger.Info("Most traded stock selected",
		zap.String("symbol", best.Symbol),
		zap.Int64("volume", best.Volume),
	)
	return best, nil
}
