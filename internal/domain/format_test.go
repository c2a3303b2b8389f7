package domain

import (
	"math"
	"testing"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{name: "integer price", price: 25, want: "Bs. 25.00"},
		{name: "fractional price", price: 12.5, want: "Bs. 12.50"},
		{name: "zero", price: 0, want: "Bs. 0.00"},
		{name: "NaN falls back to zero", price: math.NaN(), want: "Bs. 0.00"},
		{name: "Inf falls back to zero", price: math.Inf(1), want: "Bs. 0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrice(tt.price); got != tt.want {
				t.Errorf("FormatPrice(%v) = %q, want %q", tt.price, got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain number", input: "25.50", want: 25.50},
		{name: "with whitespace", input: "  10 ", want: 10},
		{name: "empty string", input: "", want: 0},
		{name: "garbage", input: "abc", want: 0},
		{name: "NaN literal", input: "NaN", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePrice(tt.input); got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCalculateMargin(t *testing.T) {
	cost := func(v float64) *float64 { return &v }

	t.Run("standard margin", func(t *testing.T) {
		got := CalculateMargin(100, cost(80))
		if got == nil {
			t.Fatal("CalculateMargin(100, 80) = nil, want 20.0")
		}
		if *got != 20.0 {
			t.Errorf("margin = %v, want 20.0", *got)
		}
	})

	t.Run("nil cost price yields no margin", func(t *testing.T) {
		if got := CalculateMargin(100, nil); got != nil {
			t.Errorf("margin = %v, want nil", *got)
		}
	})

	t.Run("zero unit price yields no margin", func(t *testing.T) {
		if got := CalculateMargin(0, cost(80)); got != nil {
			t.Errorf("margin = %v, want nil", *got)
		}
	})

	t.Run("negative unit price yields no margin", func(t *testing.T) {
		if got := CalculateMargin(-5, cost(2)); got != nil {
			t.Errorf("margin = %v, want nil", *got)
		}
	})

	t.Run("negative margin when cost exceeds price", func(t *testing.T) {
		got := CalculateMargin(80, cost(100))
		if got == nil {
			t.Fatal("CalculateMargin(80, 100) = nil, want -25.0")
		}
		if *got != -25.0 {
			t.Errorf("margin = %v, want -25.0", *got)
		}
	})
}
