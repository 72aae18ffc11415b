package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"
)

// doRequest performs a single GET and classifies any failure.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: "create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Attempts: 1, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Attempts: 1, Err: err}
	}

	c.logger.Debug("coingecko request",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{
			Kind:       KindRateLimited,
			StatusCode: resp.StatusCode,
			Message:    providerMessage(body, resp.StatusCode),
			Attempts:   1,
			Body:       body,
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &Error{
			Kind:       KindRemote,
			StatusCode: resp.StatusCode,
			Message:    providerMessage(body, resp.StatusCode),
			Attempts:   1,
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request and, on a 429 only, waits retryDelay and
// repeats the identical request once. The second outcome is final.
func (c *Client) doWithRetry(ctx context.Context, path string, query url.Values) ([]byte, error) {
	body, err := c.doRequest(ctx, path, query)
	if err == nil {
		return body, nil
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
		return nil, err
	}

	c.logger.Warn("rate limited, retrying once",
		"path", path,
		"delay", c.retryDelay,
	)

	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, &Error{Kind: KindNetwork, Attempts: 1, Err: ctx.Err()}
	case <-timer.C:
	}

	body, err = c.doRequest(ctx, path, query)
	if err != nil {
		if errors.As(err, &apiErr) {
			apiErr.Attempts = 2
		}
		return nil, err
	}

	return body, nil
}

// get performs a GET request and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &Error{Kind: KindUnknown, Message: "unmarshal response", Body: body, Err: err}
	}

	return nil
}

// Ping checks that the provider is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		GeckoSays string `json:"gecko_says"`
	}
	return c.get(ctx, "/ping", nil, &resp)
}
