package model

import "fmt"

// Timeframe is a named history span and sampling interval.
type Timeframe struct {
	Name     string // "24h"
	Days     string // Provider days parameter ("1", "365", "max")
	Interval string // Provider interval parameter ("5m", "hourly", "daily")
}

// Timeframes lists the supported history views in display order.
var Timeframes = []Timeframe{
	{Name: "1h", Days: "1", Interval: "5m"},
	{Name: "24h", Days: "1", Interval: "hourly"},
	{Name: "7d", Days: "7", Interval: "hourly"},
	{Name: "14d", Days: "14", Interval: "daily"},
	{Name: "30d", Days: "30", Interval: "daily"},
	{Name: "1y", Days: "365", Interval: "daily"},
	{Name: "max", Days: "max", Interval: "daily"},
}

// DefaultTimeframe is used when a request names none.
const DefaultTimeframe = "24h"

// ParseTimeframe looks up a timeframe by name. An empty name yields the default.
func ParseTimeframe(name string) (Timeframe, error) {
	if name == "" {
		name = DefaultTimeframe
	}
	for _, tf := range Timeframes {
		if tf.Name == name {
			return tf, nil
		}
	}
	return Timeframe{}, fmt.Errorf("unknown timeframe %q", name)
}
