// Package api provides the CoinGecko market data client.
//
// REST endpoint:
//   - https://api.coingecko.com/api/v3 (public, no key required)
//
// Endpoints used: /coins/markets, /coins/{id}, /coins/{id}/market_chart, /ping
//
// Every request is denominated in USD. Failures are normalized into *Error
// with one of five kinds; a 429 is retried exactly once after a fixed delay.
package api
