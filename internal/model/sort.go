package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey selects the column used by SortInstruments.
type SortKey string

const (
	SortByRank      SortKey = "rank"
	SortByName      SortKey = "name"
	SortByPrice     SortKey = "price"
	SortByChange24h SortKey = "change_24h"
	SortByVolume    SortKey = "volume"
	SortByMarketCap SortKey = "market_cap"
)

// ParseSortKey validates a sort key. An empty key means provider order.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "", SortByRank, SortByName, SortByPrice, SortByChange24h, SortByVolume, SortByMarketCap:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// SortInstruments returns a sorted copy of list. The input is not modified.
// Unknown 24h changes and missing ranks always sort last. Ties keep
// provider order.
func SortInstruments(list []Instrument, key SortKey, descending bool) []Instrument {
	out := slices.Clone(list)
	if key == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b Instrument) int {
		switch key {
		case SortByRank:
			if c, ok := missingLast(a.MarketCapRank == 0, b.MarketCapRank == 0); ok {
				return c
			}
			return direction(compareInt(a.MarketCapRank, b.MarketCapRank), descending)
		case SortByName:
			return direction(strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), descending)
		case SortByPrice:
			return direction(compareDecimal(a.CurrentPrice, b.CurrentPrice), descending)
		case SortByChange24h:
			if c, ok := missingLast(a.Change24h == nil, b.Change24h == nil); ok {
				return c
			}
			return direction(compareFloat(*a.Change24h, *b.Change24h), descending)
		case SortByVolume:
			return direction(compareDecimal(a.TotalVolume, b.TotalVolume), descending)
		case SortByMarketCap:
			return direction(compareDecimal(a.MarketCap, b.MarketCap), descending)
		}
		return 0
	})
	return out
}

// missingLast orders absent values after present ones regardless of direction.
func missingLast(aMissing, bMissing bool) (int, bool) {
	switch {
	case aMissing && bMissing:
		return 0, true
	case aMissing:
		return 1, true
	case bMissing:
		return -1, true
	}
	return 0, false
}

func direction(c int, descending bool) int {
	if descending {
		return -c
	}
	return c
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareDecimal(a, b decimal.Decimal) int {
	return a.Cmp(b)
}
