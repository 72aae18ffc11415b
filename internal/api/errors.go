package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies every failure the client can return.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindRateLimited Kind = "rate_limited"
	KindRemote      Kind = "remote"
	KindNetwork     Kind = "network"
	KindNotFound    Kind = "not_found"
)

// ErrInvalidArgument marks requests rejected before reaching the provider.
var ErrInvalidArgument = errors.New("invalid argument")

// Error is the only error type returned by the client.
type Error struct {
	Kind       Kind
	StatusCode int    // HTTP status; 0 for network and unknown failures
	Message    string // Provider-supplied message when present
	Attempts   int    // Requests issued, 2 when the rate-limit retry ran
	Body       []byte
	Err        error // Underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRateLimited:
		if e.Attempts > 1 {
			return fmt.Sprintf("coingecko rate limited: retry exhausted after %d attempts", e.Attempts)
		}
		return "coingecko rate limited"
	case KindRemote, KindNotFound:
		return fmt.Sprintf("coingecko api error %d: %s", e.StatusCode, e.Message)
	case KindNetwork:
		if e.Err != nil {
			return "coingecko unreachable: " + e.Err.Error()
		}
		return "coingecko unreachable"
	}

	switch {
	case e.Message != "" && e.Err != nil:
		return "coingecko: " + e.Message + ": " + e.Err.Error()
	case e.Err != nil:
		return "coingecko: " + e.Err.Error()
	}
	return "coingecko: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error should trigger the rate-limit retry.
func (e *Error) IsRetryable() bool {
	return e.Kind == KindRateLimited
}

// KindOf returns the kind of err. Errors not produced by the client are
// KindUnknown; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a not-found lookup.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// UserMessage renders err as a sentence suitable for an end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return "Failed to fetch cryptocurrencies."
	}

	switch apiErr.Kind {
	case KindRateLimited:
		return "Rate limit reached. Please wait a moment and try again."
	case KindRemote:
		if apiErr.Message != "" && apiErr.Message != http.StatusText(apiErr.StatusCode) {
			return fmt.Sprintf("Market data provider error (%d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Sprintf("Market data provider error (%d).", apiErr.StatusCode)
	case KindNetwork:
		return "Unable to reach the market data provider. Check your connection."
	case KindNotFound:
		return "Coin not found."
	}
	return "Failed to fetch cryptocurrencies."
}

// invalidArgument builds a KindUnknown error for a rejected request.
func invalidArgument(format string, args ...any) *Error {
	return &Error{
		Kind:    KindUnknown,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrInvalidArgument,
	}
}

// providerMessage extracts the provider's error text from a response body.
// CoinGecko uses {"error": "..."} and {"status": {"error_message": "..."}}.
func providerMessage(body []byte, statusCode int) string {
	var payload struct {
		Error  string `json:"error"`
		Status struct {
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Status.ErrorMessage); msg != "" {
			return msg
		}
	}
	return http.StatusText(statusCode)
}
