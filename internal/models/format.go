package models

import (
	"fmt"
	"math"
	"strconv"
)

// FormatMoney renders an amount rounded to 2 decimals, trimming the
// fractional part entirely when it rounds to a whole number.
func FormatMoney(value float64) string {
	rounded := math.Round(value*100) / 100
	if rounded == math.Trunc(rounded) {
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	return strconv.FormatFloat(rounded, 'f', 2, 64)
}

// FormatDifference renders a signed amount with its currency, collapsing
// sub-kopeck differences to "без изменений".
func FormatDifference(value float64, currency string) string {
	if math.Abs(value) < 0.01 {
		return "без изменений"
	}
	sign := "-"
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%s %s", sign, FormatMoney(math.Abs(value)), currency)
}

// FormatDaysLeft renders a day countdown with Russian pluralization.
// Zero or negative means the payment is due today.
func FormatDaysLeft(days int) string {
	if days <= 0 {
		return "сегодня"
	}

	mod10 := days % 10
	mod100 := days % 100
	suffix := "дней"
	if mod10 == 1 && mod100 != 11 {
		suffix = "день"
	} else if mod10 >= 2 && mod10 <= 4 && (mod100 < 10 || mod100 >= 20) {
		suffix = "дня"
	}

	return fmt.Sprintf("через %d %s", days, suffix)
}
