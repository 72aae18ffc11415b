package api

import "github.com/shopspring/decimal"

// MarketCoin is one element of GET /coins/markets.
type MarketCoin struct {
	ID            string              `json:"id"`
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	Image         string              `json:"image"`
	CurrentPrice  decimal.NullDecimal `json:"current_price"`
	MarketCap     decimal.NullDecimal `json:"market_cap"`
	MarketCapRank *int                `json:"market_cap_rank"`
	TotalVolume   decimal.NullDecimal `json:"total_volume"`

	// Always present.
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`

	// Present when price_change_percentage is requested.
	PriceChangePercentage1hInCurrency  *float64 `json:"price_change_percentage_1h_in_currency"`
	PriceChangePercentage24hInCurrency *float64 `json:"price_change_percentage_24h_in_currency"`
	PriceChangePercentage7dInCurrency  *float64 `json:"price_change_percentage_7d_in_currency"`

	SparklineIn7d *Sparkline `json:"sparkline_in_7d"`
	LastUpdated   string     `json:"last_updated"` // ISO 8601
}

// Sparkline is an embedded short price series.
type Sparkline struct {
	Price []decimal.Decimal `json:"price"`
}

// CoinResponse from GET /coins/{id}
type CoinResponse struct {
	ID            string            `json:"id"`
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	Description   map[string]string `json:"description"`
	Image         CoinImage         `json:"image"`
	GenesisDate   *string           `json:"genesis_date"`
	MarketCapRank *int              `json:"market_cap_rank"`
	Links         CoinLinks         `json:"links"`
	MarketData    *CoinMarketData   `json:"market_data"`

	// Set instead of the fields above by some not-found responses.
	Error string `json:"error,omitempty"`
}

// CoinImage holds icon URLs at several sizes.
type CoinImage struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// CoinLinks holds a coin's external references.
type CoinLinks struct {
	Homepage          []string `json:"homepage"`
	SubredditURL      string   `json:"subreddit_url"`
	TwitterScreenName string   `json:"twitter_screen_name"`
	ReposURL          struct {
		GitHub []string `json:"github"`
	} `json:"repos_url"`
}

// CoinMarketData is the market_data section of GET /coins/{id}.
// Currency-keyed maps are indexed by VsCurrency.
type CoinMarketData struct {
	CurrentPrice map[string]decimal.Decimal `json:"current_price"`
	MarketCap    map[string]decimal.Decimal `json:"market_cap"`
	TotalVolume  map[string]decimal.Decimal `json:"total_volume"`
	High24h      map[string]decimal.Decimal `json:"high_24h"`
	Low24h       map[string]decimal.Decimal `json:"low_24h"`

	PriceChangePercentage1hInCurrency map[string]*float64 `json:"price_change_percentage_1h_in_currency"`
	PriceChangePercentage24h          *float64            `json:"price_change_percentage_24h"`
	PriceChangePercentage7d           *float64            `json:"price_change_percentage_7d"`
	PriceChangePercentage14d          *float64            `json:"price_change_percentage_14d"`
	PriceChangePercentage30d          *float64            `json:"price_change_percentage_30d"`
	PriceChangePercentage1y           *float64            `json:"price_change_percentage_1y"`

	CirculatingSupply *float64 `json:"circulating_supply"`
	TotalSupply       *float64 `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`

	Sparkline7d *Sparkline `json:"sparkline_7d"`
	LastUpdated string     `json:"last_updated"`
}

// MarketChartResponse from GET /coins/{id}/market_chart
// Each sample is [unix_ms, value].
type MarketChartResponse struct {
	Prices       [][]decimal.Decimal `json:"prices"`
	MarketCaps   [][]decimal.Decimal `json:"market_caps"`
	TotalVolumes [][]decimal.Decimal `json:"total_volumes"`
}
