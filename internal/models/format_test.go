package models

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{599, "599"},
		{274.9166666, "274.92"},
		{873.9166666, "873.92"},
		{0.005, "0.01"},
		{100.004, "100"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := FormatMoney(tt.value); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatDifference(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "без изменений"},
		{0.004, "без изменений"},
		{12.5, "+12.50 ₽"},
		{-3, "-3 ₽"},
	}

	for _, tt := range tests {
		if got := FormatDifference(tt.value, "₽"); got != tt.want {
			t.Errorf("FormatDifference(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatDaysLeft(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "сегодня"},
		{-1, "сегодня"},
		{1, "через 1 день"},
		{2, "через 2 дня"},
		{5, "через 5 дней"},
		{11, "через 11 дней"},
		{21, "через 21 день"},
		{22, "через 22 дня"},
		{25, "через 25 дней"},
		{111, "через 111 дней"},
	}

	for _, tt := range tests {
		if got := FormatDaysLeft(tt.days); got != tt.want {
			t.Errorf("FormatDaysLeft(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
