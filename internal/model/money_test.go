package model

import (
	"testing"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"whole number", "99.00", 9900},
		{"with cents", "123.45", 12345},
		{"zero", "0.00", 0},
		{"empty string", "", 0},
		{"no decimals", "100", 10000},
		{"one decimal", "99.9", 9990},
		{"small value", "0.01", 1},
		{"invalid string", "abc", 0},
		{"negative (unusual)", "-10.00", -1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCents(tt.input)
			if got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"plain", "8900", 8900},
		{"large", "123456", 123456},
		{"empty", "", 0},
		{"invalid", "x", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMinorUnits(tt.input)
			if got != tt.want {
				t.Errorf("ParseMinorUnits(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     string
	}{
		{"with currency", 9900, "USD", "99.00 USD"},
		{"sub-dollar", 5, "USD", "0.05 USD"},
		{"no currency", 12345, "", "123.45"},
		{"negative", -1050, "EUR", "-10.50 EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCents(tt.cents, tt.currency)
			if got != tt.want {
				t.Errorf("FormatCents(%d, %q) = %q, want %q", tt.cents, tt.currency, got, tt.want)
			}
		})
	}
}

func TestApplyDiscountPercent(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		percent float64
		want    int64
	}{
		{"ten percent", 20000, 10, 18000},
		{"rounds to nearest cent", 999, 15, 849}, // 849.15 → 849
		{"zero percent", 5000, 0, 5000},
		{"negative clamped", 5000, -10, 5000},
		{"full discount", 5000, 100, 0},
		{"over full clamped", 5000, 150, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyDiscountPercent(tt.amount, tt.percent)
			if got != tt.want {
				t.Errorf("ApplyDiscountPercent(%d, %v) = %d, want %d", tt.amount, tt.percent, got, tt.want)
			}
		})
	}
}
