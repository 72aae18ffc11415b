package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/coin-tracker/internal/detail"
	"github.com/rickgao/coin-tracker/internal/format"
	"github.com/rickgao/coin-tracker/internal/model"
)

// coinJSON is the wire form of a model.Instrument.
type coinJSON struct {
	ID            string            `json:"id"`
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	Image         string            `json:"image"`
	CurrentPrice  decimal.Decimal   `json:"current_price"`
	MarketCap     decimal.Decimal   `json:"market_cap"`
	MarketCapRank int               `json:"market_cap_rank,omitempty"`
	TotalVolume   decimal.Decimal   `json:"total_volume"`
	Change1h      *float64          `json:"price_change_percentage_1h"`
	Change24h     *float64          `json:"price_change_percentage_24h"`
	Change7d      *float64          `json:"price_change_percentage_7d"`
	Sparkline     []decimal.Decimal `json:"sparkline,omitempty"`
	LastUpdated   *time.Time        `json:"last_updated,omitempty"`
	Favorite      bool              `json:"favorite"`
	Display       coinDisplay       `json:"display"`
}

// coinDisplay carries preformatted strings for clients that do not format.
type coinDisplay struct {
	Price     string `json:"price"`
	MarketCap string `json:"market_cap"`
	Volume    string `json:"volume"`
	Change24h string `json:"change_24h"`
	Arrow24h  string `json:"arrow_24h"`
}

func toCoinJSON(inst model.Instrument, favorite bool) coinJSON {
	c := coinJSON{
		ID:            inst.ID,
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		Image:         inst.Image,
		CurrentPrice:  inst.CurrentPrice,
		MarketCap:     inst.MarketCap,
		MarketCapRank: inst.MarketCapRank,
		TotalVolume:   inst.TotalVolume,
		Change1h:      inst.Change1h,
		Change24h:     inst.Change24h,
		Change7d:      inst.Change7d,
		Sparkline:     inst.Sparkline,
		Favorite:      favorite,
		Display: coinDisplay{
			Price:     format.USD(inst.CurrentPrice),
			MarketCap: format.CompactUSD(inst.MarketCap),
			Volume:    format.CompactUSD(inst.TotalVolume),
			Change24h: format.Percent(inst.Change24h),
			Arrow24h:  format.Arrow(inst.Change24h),
		},
	}
	if !inst.LastUpdated.IsZero() {
		t := inst.LastUpdated
		c.LastUpdated = &t
	}
	return c
}

// coinListJSON is the response of GET /api/coins.
type coinListJSON struct {
	Coins     []coinJSON `json:"coins"`
	Page      int        `json:"page"`
	PerPage   int        `json:"per_page"`
	Total     int        `json:"total"`
	Pages     int        `json:"pages"`
	Search    string     `json:"search"`
	stateJSON
}

// stateJSON is the store status shared by list, refresh and push messages.
type stateJSON struct {
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`
	ErrorKind string     `json:"error_kind,omitempty"`
	FetchID   *uuid.UUID `json:"fetch_id,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Count     int        `json:"count"`
}

// pushJSON is a websocket message.
type pushJSON struct {
	Type  string     `json:"type"`
	Coins []coinJSON `json:"coins"`
	stateJSON
}

// errorJSON is the body of every non-2xx API response.
type errorJSON struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// favoriteJSON is the response of PUT and DELETE /api/favorites/{id}.
type favoriteJSON struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

// pointJSON is one chart sample: unix milliseconds and value.
type pointJSON struct {
	T int64           `json:"t"`
	V decimal.Decimal `json:"v"`
}

func toPoints(in []model.ChartPoint) []pointJSON {
	out := make([]pointJSON, len(in))
	for i, p := range in {
		out[i] = pointJSON{T: p.Time.UnixMilli(), V: p.Value}
	}
	return out
}

// coinViewJSON is the response of GET /api/coins/{id}.
type coinViewJSON struct {
	ID            string      `json:"id"`
	Symbol        string      `json:"symbol"`
	Name          string      `json:"name"`
	Image         string      `json:"image"`
	Description   string      `json:"description"`
	GenesisDate   string      `json:"genesis_date,omitempty"`
	MarketCapRank int         `json:"market_cap_rank,omitempty"`
	Links         linksJSON   `json:"links"`
	Market        marketJSON  `json:"market_data"`
	Timeframe     string      `json:"timeframe"`
	Change        *float64    `json:"change"`
	ChangeDisplay string      `json:"change_display"`
	Prices        []pointJSON `json:"prices"`
	MarketCaps    []pointJSON `json:"market_caps"`
	TotalVolumes  []pointJSON `json:"total_volumes"`
	Favorite      bool        `json:"favorite"`
}

type linksJSON struct {
	Homepage          []string `json:"homepage,omitempty"`
	SubredditURL      string   `json:"subreddit_url,omitempty"`
	TwitterScreenName string   `json:"twitter_screen_name,omitempty"`
	GitHubRepos       []string `json:"github_repos,omitempty"`
}

type marketJSON struct {
	CurrentPrice      decimal.Decimal `json:"current_price"`
	MarketCap         decimal.Decimal `json:"market_cap"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	High24h           decimal.Decimal `json:"high_24h"`
	Low24h            decimal.Decimal `json:"low_24h"`
	CirculatingSupply *float64        `json:"circulating_supply"`
	TotalSupply       *float64        `json:"total_supply"`
	MaxSupply         *float64        `json:"max_supply"`
	Change1h          *float64        `json:"price_change_percentage_1h"`
	Change24h         *float64        `json:"price_change_percentage_24h"`
	Change7d          *float64        `json:"price_change_percentage_7d"`
	Change14d         *float64        `json:"price_change_percentage_14d"`
	Change30d         *float64        `json:"price_change_percentage_30d"`
	Change1y          *float64        `json:"price_change_percentage_1y"`
	Display           marketDisplay   `json:"display"`
}

type marketDisplay struct {
	Price             string `json:"price"`
	MarketCap         string `json:"market_cap"`
	Volume            string `json:"volume"`
	High24h           string `json:"high_24h"`
	Low24h            string `json:"low_24h"`
	CirculatingSupply string `json:"circulating_supply"`
	MaxSupply         string `json:"max_supply"`
}

func toCoinViewJSON(v *detail.View, favorite bool) coinViewJSON {
	c, md := v.Coin, v.Coin.MarketData
	return coinViewJSON{
		ID:            c.ID,
		Symbol:        c.Symbol,
		Name:          c.Name,
		Image:         c.Image,
		Description:   c.Description,
		GenesisDate:   c.GenesisDate,
		MarketCapRank: c.MarketCapRank,
		Links: linksJSON{
			Homepage:          c.Links.Homepage,
			SubredditURL:      c.Links.SubredditURL,
			TwitterScreenName: c.Links.TwitterScreenName,
			GitHubRepos:       c.Links.GitHubRepos,
		},
		Market: marketJSON{
			CurrentPrice:      md.CurrentPrice,
			MarketCap:         md.MarketCap,
			TotalVolume:       md.TotalVolume,
			High24h:           md.High24h,
			Low24h:            md.Low24h,
			CirculatingSupply: md.CirculatingSupply,
			TotalSupply:       md.TotalSupply,
			MaxSupply:         md.MaxSupply,
			Change1h:          md.Change1h,
			Change24h:         md.Change24h,
			Change7d:          md.Change7d,
			Change14d:         md.Change14d,
			Change30d:         md.Change30d,
			Change1y:          md.Change1y,
			Display: marketDisplay{
				Price:             format.USD(md.CurrentPrice),
				MarketCap:         format.CompactUSD(md.MarketCap),
				Volume:            format.CompactUSD(md.TotalVolume),
				High24h:           format.USD(md.High24h),
				Low24h:            format.USD(md.Low24h),
				CirculatingSupply: format.Supply(md.CirculatingSupply),
				MaxSupply:         format.Supply(md.MaxSupply),
			},
		},
		Timeframe:     v.Timeframe.Name,
		Change:        v.Change,
		ChangeDisplay: format.Percent(v.Change),
		Prices:        toPoints(v.Chart.Prices),
		MarketCaps:    toPoints(v.Chart.MarketCaps),
		TotalVolumes:  toPoints(v.Chart.TotalVolumes),
		Favorite:      favorite,
	}
}
