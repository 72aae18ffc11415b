// Package format renders prices and percentage changes for display.
package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	ten      = decimal.NewFromInt(10)
	tenth    = decimal.New(1, -1)
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	trillion = decimal.NewFromInt(1_000_000_000_000)
)

// Percent renders a change as "+2.35%" or "-1.20%". Unknown is "n/a".
func Percent(p *float64) string {
	if p == nil {
		return "n/a"
	}
	v := *p
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// Arrow returns a direction marker for a change. Unknown yields "".
func Arrow(p *float64) string {
	switch {
	case p == nil:
		return ""
	case *p >= 0:
		return "▲"
	}
	return "▼"
}

// USD renders an amount with thousands separators and two decimals.
// Amounts below one dollar keep up to six significant digits.
func USD(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	var frac string
	if d.LessThan(decimal.NewFromInt(1)) && !d.IsZero() {
		frac = d.StringFixed(leadingZeros(d) + 6)
		frac = strings.TrimRight(frac, "0")
		if i := strings.IndexByte(frac, '.'); len(frac)-i-1 < 2 {
			frac = d.StringFixed(2)
		}
	} else {
		frac = d.StringFixed(2)
	}

	intPart, decPart, _ := strings.Cut(frac, ".")
	whole, err := decimal.NewFromString(intPart)
	if err != nil {
		return sign + "$" + frac
	}
	return sign + "$" + humanize.Comma(whole.IntPart()) + "." + decPart
}

// leadingZeros counts the zeros between the decimal point and the first
// significant digit of d, which must be in (0, 1).
func leadingZeros(d decimal.Decimal) int32 {
	var n int32
	for d.LessThan(tenth) {
		d = d.Mul(ten)
		n++
	}
	return n
}

// CompactUSD renders large amounts with a T, B or M suffix, e.g. "$1.23B".
// Smaller amounts fall back to USD.
func CompactUSD(d decimal.Decimal) string {
	abs := d.Abs()
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	switch {
	case abs.GreaterThanOrEqual(trillion):
		return sign + "$" + abs.Div(trillion).StringFixed(2) + "T"
	case abs.GreaterThanOrEqual(billion):
		return sign + "$" + abs.Div(billion).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(million):
		return sign + "$" + abs.Div(million).StringFixed(2) + "M"
	}
	return USD(d)
}

// Supply renders a circulating or max supply. nil means unlimited.
func Supply(p *float64) string {
	if p == nil {
		return "∞"
	}
	d := decimal.NewFromFloat(*p)
	if d.GreaterThanOrEqual(thousand) {
		return humanize.Comma(d.Round(0).IntPart())
	}
	return d.StringFixed(2)
}
