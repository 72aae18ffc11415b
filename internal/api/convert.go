package api

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/coin-tracker/internal/model"
)

// ParseTimestamp parses a provider ISO 8601 timestamp.
// Returns the zero time for empty or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t.UTC()
}

// ToModel converts a markets entry to a model.Instrument.
// The *_in_currency fields are preferred; the plain 24h field is the
// fallback when only the default columns were returned.
func (m *MarketCoin) ToModel() model.Instrument {
	inst := model.Instrument{
		ID:           m.ID,
		Symbol:       m.Symbol,
		Name:         m.Name,
		Image:        m.Image,
		CurrentPrice: m.CurrentPrice.Decimal,
		TotalVolume:  m.TotalVolume.Decimal,
		MarketCap:    m.MarketCap.Decimal,
		Change1h:     m.PriceChangePercentage1hInCurrency,
		Change24h:    m.PriceChangePercentage24hInCurrency,
		Change7d:     m.PriceChangePercentage7dInCurrency,
		LastUpdated:  ParseTimestamp(m.LastUpdated),
	}

	if inst.Change24h == nil {
		inst.Change24h = m.PriceChangePercentage24h
	}
	if m.MarketCapRank != nil {
		inst.MarketCapRank = *m.MarketCapRank
	}
	if m.SparklineIn7d != nil {
		inst.Sparkline = m.SparklineIn7d.Price
	}

	return inst
}

// ToModel converts a coin detail response to a model.CoinDetail.
func (r *CoinResponse) ToModel() *model.CoinDetail {
	d := &model.CoinDetail{
		ID:          r.ID,
		Symbol:      r.Symbol,
		Name:        r.Name,
		Image:       r.Image.Large,
		Description: r.Description["en"],
		Links: model.Links{
			Homepage:          nonEmpty(r.Links.Homepage),
			SubredditURL:      r.Links.SubredditURL,
			TwitterScreenName: r.Links.TwitterScreenName,
			GitHubRepos:       nonEmpty(r.Links.ReposURL.GitHub),
		},
	}

	if r.GenesisDate != nil {
		d.GenesisDate = *r.GenesisDate
	}
	if r.MarketCapRank != nil {
		d.MarketCapRank = *r.MarketCapRank
	}
	if r.MarketData != nil {
		d.MarketData = r.MarketData.toModel()
	}

	return d
}

func (md *CoinMarketData) toModel() model.MarketData {
	out := model.MarketData{
		CurrentPrice:      md.CurrentPrice[VsCurrency],
		MarketCap:         md.MarketCap[VsCurrency],
		TotalVolume:       md.TotalVolume[VsCurrency],
		High24h:           md.High24h[VsCurrency],
		Low24h:            md.Low24h[VsCurrency],
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
		MaxSupply:         md.MaxSupply,
		Change1h:          md.PriceChangePercentage1hInCurrency[VsCurrency],
		Change24h:         md.PriceChangePercentage24h,
		Change7d:          md.PriceChangePercentage7d,
		Change14d:         md.PriceChangePercentage14d,
		Change30d:         md.PriceChangePercentage30d,
		Change1y:          md.PriceChangePercentage1y,
		LastUpdated:       ParseTimestamp(md.LastUpdated),
	}
	if md.Sparkline7d != nil {
		out.Sparkline7d = md.Sparkline7d.Price
	}
	return out
}

// ToModel converts a market chart response, ordering each series by time.
func (r *MarketChartResponse) ToModel() *model.MarketChart {
	return &model.MarketChart{
		Prices:       toChartPoints(r.Prices),
		MarketCaps:   toChartPoints(r.MarketCaps),
		TotalVolumes: toChartPoints(r.TotalVolumes),
	}
}

// toChartPoints converts [unix_ms, value] pairs. Malformed samples are skipped.
func toChartPoints(samples [][]decimal.Decimal) []model.ChartPoint {
	points := make([]model.ChartPoint, 0, len(samples))
	for _, s := range samples {
		if len(s) < 2 {
			continue
		}
		points = append(points, model.ChartPoint{
			Time:  time.UnixMilli(s[0].IntPart()).UTC(),
			Value: s[1],
		})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
