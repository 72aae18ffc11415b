package format

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rickgao/coin-tracker/internal/model"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{model.Float64(2.35), "+2.35%"},
		{model.Float64(-1.2), "-1.20%"},
		{model.Float64(0), "+0.00%"},
		{model.Float64(math.Copysign(0, -1)), "+0.00%"},
		{nil, "n/a"},
	}
	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArrow(t *testing.T) {
	if got := Arrow(model.Float64(1)); got != "▲" {
		t.Errorf("Arrow(+1) = %q", got)
	}
	if got := Arrow(model.Float64(-0.5)); got != "▼" {
		t.Errorf("Arrow(-0.5) = %q", got)
	}
	if got := Arrow(model.Float64(math.Copysign(0, -1))); got != "▲" {
		t.Errorf("Arrow(-0) = %q, want ▲ to match Percent", got)
	}
	if got := Arrow(nil); got != "" {
		t.Errorf("Arrow(nil) = %q, want empty", got)
	}
}

func TestUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.567", "$1,234.57"},
		{"43000", "$43,000.00"},
		{"1", "$1.00"},
		{"0", "$0.00"},
		{"0.5", "$0.50"},
		{"0.123456789", "$0.123457"},
		{"0.0123456789", "$0.0123457"},
		{"0.00001234", "$0.00001234"},
		{"0.000000123456789", "$0.000000123457"},
		{"0.00000000042", "$0.00000000042"},
		{"0.09999999", "$0.10"},
		{"-2500.1", "-$2,500.10"},
	}
	for _, tt := range tests {
		if got := USD(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("USD(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompactUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1230000000000", "$1.23T"},
		{"1234567890", "$1.23B"},
		{"45600000", "$45.60M"},
		{"999999", "$999,999.00"},
	}
	for _, tt := range tests {
		if got := CompactUSD(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("CompactUSD(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSupply(t *testing.T) {
	if got := Supply(nil); got != "∞" {
		t.Errorf("Supply(nil) = %q", got)
	}
	if got := Supply(model.Float64(19600000.4)); got != "19,600,000" {
		t.Errorf("Supply(19600000.4) = %q", got)
	}
}
