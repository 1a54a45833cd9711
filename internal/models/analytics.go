package models

import "time"

// NextPayment is the projected next occurrence for one subscription.
// A nil *NextPayment in the snapshot means no projection is available
// (unparseable anchor date or the iteration cap was hit).
type NextPayment struct {
	Date     time.Time `json:"date"`
	DaysLeft int       `json:"daysLeft"`
}

// PeriodComparisonItem re-expresses a currency's totals across cadences
type PeriodComparisonItem struct {
	Currency    string  `json:"currency"`
	Month       float64 `json:"month"`
	Quarter     float64 `json:"quarter"`
	Year        float64 `json:"year"`
	QuarterDiff float64 `json:"quarterDiff"`
	YearDiff    float64 `json:"yearDiff"`
}

// UpcomingPayment is a subscription due within the next 30 days
type UpcomingPayment struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Currency string    `json:"currency"`
	Cost     float64   `json:"cost"`
	NextDate time.Time `json:"nextDate"`
	DaysLeft int       `json:"daysLeft"`
}

// ForecastMonth is one calendar-month bucket of the 6-month projection.
// Totals accumulate raw charge amounts per currency, not monthly equivalents.
type ForecastMonth struct {
	Key    string             `json:"key"`
	Date   time.Time          `json:"date"`
	Totals map[string]float64 `json:"totals"`
}

// MonthHighlight marks the most expensive forecast month for a currency
type MonthHighlight struct {
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
}

// FrequencyBucket groups subscriptions sharing a billing-cadence label
type FrequencyBucket struct {
	Label        string             `json:"label"`
	Count        int                `json:"count"`
	Totals       map[string]float64 `json:"totals"`
	MonthlyTotal float64            `json:"monthlyTotal"`
}

// CalendarItem identifies one charge contributing to a calendar entry
type CalendarItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Currency string  `json:"currency"`
	Cost     float64 `json:"cost"`
}

// CalendarEntry is one day of the 60-day payment calendar
type CalendarEntry struct {
	Date   time.Time          `json:"date"`
	Totals map[string]float64 `json:"totals"`
	Items  []CalendarItem     `json:"items"`
}

// TopSubscription pairs a subscription with its monthly-equivalent cost
// for ranking. The full sorted list is exposed; taking a prefix is a
// presentation concern.
type TopSubscription struct {
	Subscription Subscription `json:"subscription"`
	MonthlyCost  float64      `json:"monthlyCost"`
}

// Analytics is the immutable snapshot derived from a subscription list and a
// reference instant. It is rebuilt from scratch on every computation; nothing
// here is cached or mutated after construction.
type Analytics struct {
	Currencies                    []string                  `json:"currencies"`
	MonthlyTotals                 map[string]float64        `json:"monthlyTotals"`
	QuarterlyTotals               map[string]float64        `json:"quarterlyTotals"`
	YearlyTotals                  map[string]float64        `json:"yearlyTotals"`
	PeriodComparison              []PeriodComparisonItem    `json:"periodComparison"`
	MonthlyForecast               []ForecastMonth           `json:"monthlyForecast"`
	MaxTotalsByCurrency           map[string]float64        `json:"maxTotalsByCurrency"`
	HighestMonthByCurrency        map[string]MonthHighlight `json:"highestMonthByCurrency"`
	UpcomingPayments              []UpcomingPayment         `json:"upcomingPayments"`
	NextPaymentDetails            map[string]*NextPayment   `json:"nextPaymentDetails"`
	FrequencyDistribution         []FrequencyBucket         `json:"frequencyDistribution"`
	TopSubscriptions              []TopSubscription         `json:"topSubscriptions"`
	AverageMonthlyPerSubscription map[string]float64        `json:"averageMonthlyPerSubscription"`
	Calendar                      []CalendarEntry           `json:"calendar"`
	SubscriptionCountByCurrency   map[string]int            `json:"subscriptionCountByCurrency"`
}
