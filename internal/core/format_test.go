package core

import (
	"math"
	"testing"
)

func TestFormatCompact(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "0"},
		{"zero", 0.0, "0"},
		{"nan", math.NaN(), "0"},
		{"blank string", " ", "0"},
		{"below thousand", 999.0, "999"},
		{"below thousand decimal", 41.34, "41.3"},
		{"thousands", 1500.0, "1.5K"},
		{"thousands trimmed", 2000.0, "2K"},
		{"millions", 2500000.0, "2.5M"},
		{"billions", 1000000000.0, "1B"},
		{"negative thousands", -1500.0, "-1.5K"},
		{"boundary thousand", 1000.0, "1K"},
		{"boundary just under million", 999900.0, "999.9K"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatCompact(tc.value); got != tc.want {
				t.Fatalf("FormatCompact(%v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestFormatCompactCurrency(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "$0"},
		{"zero", 0.0, "$0"},
		{"nan", math.NaN(), "$0"},
		{"plain", 450.0, "$450"},
		{"millions", 12500000.0, "$12.5M"},
		{"billions", 2300000000.0, "$2.3B"},
		{"negative", -1500000.0, "-$1.5M"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatCompactCurrency(tc.value); got != tc.want {
				t.Fatalf("FormatCompactCurrency(%v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestFormatGrouped(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{nil, "0"},
		{0.0, "0"},
		{-5.0, "0"},
		{999.0, "999"},
		{1000.0, "1,000"},
		{1234567.0, "1,234,567"},
		{35000.4, "35,000"},
	}
	for _, tc := range cases {
		if got := FormatGrouped(tc.value); got != tc.want {
			t.Fatalf("FormatGrouped(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestFormatMiles(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{nil, "0.0 mi"},
		{41.34, "41.3 mi"},
		{41.0, "41.0 mi"},
	}
	for _, tc := range cases {
		if got := FormatMiles(tc.value); got != tc.want {
			t.Fatalf("FormatMiles(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{nil, "0%"},
		{12.34, "12.3%"},
		{0.0, "0.0%"},
	}
	for _, tc := range cases {
		if got := FormatPercent(tc.value); got != tc.want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
