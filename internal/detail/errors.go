package detail

import "errors"

// ErrUnknownTimeframe is returned by Load for a timeframe name that is not
// in model.Timeframes.
var ErrUnknownTimeframe = errors.New("unknown timeframe")
