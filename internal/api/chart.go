package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rickgao/coin-tracker/internal/model"
)

// GetMarketChart fetches price, market cap and volume history for one coin.
// days is a number of days or "max"; interval is "5m", "hourly" or "daily"
// and may be empty to let the provider choose.
func (c *Client) GetMarketChart(ctx context.Context, id, days, interval string) (*model.MarketChart, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("get market chart: %w", invalidArgument("coin id is required"))
	}
	if days == "" {
		return nil, fmt.Errorf("get market chart %s: %w", id, invalidArgument("days is required"))
	}
	switch interval {
	case "", "5m", "hourly", "daily":
	default:
		return nil, fmt.Errorf("get market chart %s: %w", id, invalidArgument("unknown interval %q", interval))
	}

	query := url.Values{}
	query.Set("vs_currency", VsCurrency)
	query.Set("days", days)
	if interval != "" {
		query.Set("interval", interval)
	}

	var resp MarketChartResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", query, &resp); err != nil {
		return nil, fmt.Errorf("get market chart %s: %w", id, err)
	}

	return resp.ToModel(), nil
}

// GetMarketChartForTimeframe fetches history for a named timeframe.
func (c *Client) GetMarketChartForTimeframe(ctx context.Context, id string, tf model.Timeframe) (*model.MarketChart, error) {
	return c.GetMarketChart(ctx, id, tf.Days, tf.Interval)
}
