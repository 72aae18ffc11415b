package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Market Snapshot Types
// -----------------------------------------------------------------------------

// Window identifies a fixed price-change window reported with market data.
type Window string

const (
	Window1h  Window = "1h"
	Window24h Window = "24h"
	Window7d  Window = "7d"
)

// Instrument is one tracked coin and its market snapshot.
type Instrument struct {
	ID            string          // Provider id, unique within a batch (e.g., "bitcoin")
	Symbol        string          // Display symbol (e.g., "btc")
	Name          string          // Display name (e.g., "Bitcoin")
	Image         string          // Icon URL
	CurrentPrice  decimal.Decimal // USD
	TotalVolume   decimal.Decimal // USD, 24h
	MarketCap     decimal.Decimal // USD
	MarketCapRank int             // 1-based; 0 when the provider omits it

	// Price change percentages; nil when unknown.
	Change1h  *float64
	Change24h *float64
	Change7d  *float64

	// Recent prices, most-recent-last. Empty unless requested.
	Sparkline []decimal.Decimal

	LastUpdated time.Time
}

// Change returns the percentage change for a window and whether it is known.
func (i Instrument) Change(w Window) (float64, bool) {
	var p *float64
	switch w {
	case Window1h:
		p = i.Change1h
	case Window24h:
		p = i.Change24h
	case Window7d:
		p = i.Change7d
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Matches reports whether the name or symbol contains term, ignoring case.
// An empty term matches every instrument.
func (i Instrument) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(i.Name), term) ||
		strings.Contains(strings.ToLower(i.Symbol), term)
}

// Batch is one successfully fetched result set.
type Batch struct {
	ID          uuid.UUID    // Assigned by the store on success
	FetchedAt   time.Time    // When the fetch completed
	Instruments []Instrument // Provider order (market cap descending)
}

// -----------------------------------------------------------------------------
// Detail Types
// -----------------------------------------------------------------------------

// Links holds a coin's external references.
type Links struct {
	Homepage          []string
	SubredditURL      string
	TwitterScreenName string
	GitHubRepos       []string
}

// MarketData is the market section of a coin detail record.
type MarketData struct {
	CurrentPrice      decimal.Decimal
	MarketCap         decimal.Decimal
	TotalVolume       decimal.Decimal
	High24h           decimal.Decimal
	Low24h            decimal.Decimal
	CirculatingSupply *float64
	TotalSupply       *float64 // nil = unlimited
	MaxSupply         *float64 // nil = unlimited

	Change1h  *float64
	Change24h *float64
	Change7d  *float64
	Change14d *float64
	Change30d *float64
	Change1y  *float64

	Sparkline7d []decimal.Decimal
	LastUpdated time.Time
}

// CoinDetail is the full descriptive and market record for one coin.
type CoinDetail struct {
	ID            string
	Symbol        string
	Name          string
	Image         string // Large icon URL
	Description   string // English, may contain HTML
	GenesisDate   string
	MarketCapRank int
	Links         Links
	MarketData    MarketData
}

// ChangeFor returns the percentage change matching a timeframe name.
// Timeframes without a reported change (e.g., "max") return nil.
func (c *CoinDetail) ChangeFor(tf Timeframe) *float64 {
	md := c.MarketData
	switch tf.Name {
	case "1h":
		return md.Change1h
	case "24h":
		return md.Change24h
	case "7d":
		return md.Change7d
	case "14d":
		return md.Change14d
	case "30d":
		return md.Change30d
	case "1y":
		return md.Change1y
	}
	return nil
}

// -----------------------------------------------------------------------------
// Time-Series Types
// -----------------------------------------------------------------------------

// ChartPoint is a single sample in a market chart.
type ChartPoint struct {
	Time  time.Time
	Value decimal.Decimal
}

// MarketChart holds price, market cap and volume series for one coin.
type MarketChart struct {
	Prices       []ChartPoint
	MarketCaps   []ChartPoint
	TotalVolumes []ChartPoint
}

// Float64 returns a pointer to v. Handy for building change percentages.
func Float64(v float64) *float64 {
	return &v
}
