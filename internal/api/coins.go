package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rickgao/coin-tracker/internal/model"
)

// GetCoin fetches descriptive and market data for one coin.
// An unknown id fails with KindNotFound.
func (c *Client) GetCoin(ctx context.Context, id string) (*model.CoinDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("get coin: %w", invalidArgument("coin id is required"))
	}

	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("market_data", "true")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")
	query.Set("sparkline", "true")

	var resp CoinResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(id), query, &resp); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Kind == KindRemote && apiErr.StatusCode == http.StatusNotFound {
			apiErr.Kind = KindNotFound
		}
		return nil, fmt.Errorf("get coin %s: %w", id, err)
	}

	if resp.ID == "" && resp.Error != "" {
		return nil, fmt.Errorf("get coin %s: %w", id, &Error{
			Kind:       KindNotFound,
			StatusCode: http.StatusNotFound,
			Message:    resp.Error,
			Attempts:   1,
		})
	}

	return resp.ToModel(), nil
}
