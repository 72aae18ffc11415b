package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rickgao/coin-tracker/internal/model"
)

const (
	// MaxPerPage is the provider's page size limit.
	MaxPerPage     = 250
	DefaultPerPage = 100
	DefaultOrder   = "market_cap_desc"
)

// PriceChangeWindows are requested alongside every markets page so one
// round trip carries all change percentages.
var PriceChangeWindows = []model.Window{model.Window1h, model.Window24h, model.Window7d}

// MarketsOptions configures a GetMarkets request.
type MarketsOptions struct {
	Page      int    // 1-based (default: 1)
	PerPage   int    // 1..250 (default: 100)
	Order     string // default: market_cap_desc
	Sparkline bool   // embed the 7d price series
}

// normalize fills zero values with defaults and rejects out-of-range ones.
func (o MarketsOptions) normalize() (MarketsOptions, error) {
	if o.Page == 0 {
		o.Page = 1
	}
	if o.PerPage == 0 {
		o.PerPage = DefaultPerPage
	}
	if o.Order == "" {
		o.Order = DefaultOrder
	}

	if o.Page < 1 {
		return o, invalidArgument("page must be >= 1, got %d", o.Page)
	}
	if o.PerPage < 1 || o.PerPage > MaxPerPage {
		return o, invalidArgument("per_page must be between 1 and %d, got %d", MaxPerPage, o.PerPage)
	}
	return o, nil
}

func (o MarketsOptions) query() url.Values {
	windows := make([]string, len(PriceChangeWindows))
	for i, w := range PriceChangeWindows {
		windows[i] = string(w)
	}

	query := url.Values{}
	query.Set("vs_currency", VsCurrency)
	query.Set("order", o.Order)
	query.Set("per_page", strconv.Itoa(o.PerPage))
	query.Set("page", strconv.Itoa(o.Page))
	query.Set("sparkline", strconv.FormatBool(o.Sparkline))
	query.Set("price_change_percentage", strings.Join(windows, ","))
	return query
}

// GetMarkets fetches one page of coins sorted by market capitalization.
// Provider order is preserved and the result never exceeds PerPage items.
func (c *Client) GetMarkets(ctx context.Context, opts MarketsOptions) ([]model.Instrument, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	var resp []MarketCoin
	if err := c.get(ctx, "/coins/markets", opts.query(), &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	if len(resp) > opts.PerPage {
		resp = resp[:opts.PerPage]
	}

	instruments := make([]model.Instrument, 0, len(resp))
	for i := range resp {
		instruments = append(instruments, resp[i].ToModel())
	}

	return instruments, nil
}
