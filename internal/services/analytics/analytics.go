// Package analytics derives budget summaries, forecasts and reminders from a
// subscription list. Compute is a pure function of its inputs: it never
// mutates the list, holds no state between calls, and two calls with the
// same list and the same reference instant produce identical snapshots.
package analytics

import (
	"math"
	"sort"
	"time"

	"subkeeper/internal/models"
)

const (
	// forecastMonths is the monthly projection horizon
	forecastMonths = 6

	// calendarDays is the daily payment-calendar horizon
	calendarDays = 60

	// upcomingDays is the reminder window for upcoming payments
	upcomingDays = 30
)

// daysUntil converts the gap between now and a future occurrence into a
// whole-day countdown, rounding up and clamping at 0 so a payment earlier
// the same day still reads as "today", never negative.
func daysUntil(now, next time.Time) int {
	days := int(math.Ceil(next.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// Compute builds the full analytics snapshot for the given subscriptions
// relative to the reference instant now.
func Compute(subs []models.Subscription, now time.Time) *models.Analytics {
	monthlyTotals := make(map[string]float64)
	quarterlyTotals := make(map[string]float64)
	yearlyTotals := make(map[string]float64)
	countByCurrency := make(map[string]int)

	// Currency order is tracked explicitly: map iteration is randomized and
	// the snapshot must come out identical for identical inputs.
	var currencies []string
	seenCurrency := make(map[string]bool)

	var frequencyOrder []string
	frequencyBuckets := make(map[string]*models.FrequencyBucket)

	forecastStart := startOfMonth(now)
	forecastHorizon := startOfMonth(addMonths(forecastStart, forecastMonths))
	forecast := make([]*models.ForecastMonth, 0, forecastMonths)
	forecastByKey := make(map[string]*models.ForecastMonth)
	for i := 0; i < forecastMonths; i++ {
		monthDate := addMonths(forecastStart, i)
		bucket := &models.ForecastMonth{
			Key:    monthKey(monthDate),
			Date:   monthDate,
			Totals: make(map[string]float64),
		}
		forecast = append(forecast, bucket)
		forecastByKey[bucket.Key] = bucket
	}

	calendarHorizon := now.AddDate(0, 0, calendarDays)
	calendarByDate := make(map[string]*models.CalendarEntry)

	upcomingThreshold := now.AddDate(0, 0, upcomingDays)
	upcoming := []models.UpcomingPayment{}
	nextPaymentDetails := make(map[string]*models.NextPayment)
	top := make([]models.TopSubscription, 0, len(subs))

	for _, sub := range subs {
		monthlyCost := sub.MonthlyCost()
		monthlyTotals[sub.Currency] += monthlyCost
		quarterlyTotals[sub.Currency] += monthlyCost * 3
		yearlyTotals[sub.Currency] += monthlyCost * 12
		countByCurrency[sub.Currency]++

		if !seenCurrency[sub.Currency] {
			seenCurrency[sub.Currency] = true
			currencies = append(currencies, sub.Currency)
		}

		top = append(top, models.TopSubscription{Subscription: sub, MonthlyCost: monthlyCost})

		bucket := frequencyBuckets[sub.FrequencyLabel]
		if bucket == nil {
			bucket = &models.FrequencyBucket{
				Label:  sub.FrequencyLabel,
				Totals: make(map[string]float64),
			}
			frequencyBuckets[sub.FrequencyLabel] = bucket
			frequencyOrder = append(frequencyOrder, sub.FrequencyLabel)
		}
		bucket.Count++
		bucket.Totals[sub.Currency] += monthlyCost
		bucket.MonthlyTotal += monthlyCost

		if next, ok := NextOccurrence(sub, now); ok {
			daysLeft := daysUntil(now, next)
			nextPaymentDetails[sub.ID] = &models.NextPayment{Date: next, DaysLeft: daysLeft}
			if !next.After(upcomingThreshold) {
				upcoming = append(upcoming, models.UpcomingPayment{
					ID:       sub.ID,
					Name:     sub.Name,
					Currency: sub.Currency,
					Cost:     sub.Cost,
					NextDate: next,
					DaysLeft: daysLeft,
				})
			}
		} else {
			nextPaymentDetails[sub.ID] = nil
		}

		// Forecast enumeration restarts from the anchor; occurrences land in
		// the bucket of their calendar month and carry the raw charge amount.
		if date, ok := NextOccurrence(sub, forecastStart); ok {
			for date.Before(forecastHorizon) {
				if bucket, found := forecastByKey[monthKey(date)]; found {
					bucket.Totals[sub.Currency] += sub.Cost
				}
				var moved bool
				if date, moved = advance(date, sub.Months); !moved {
					break
				}
			}
		}

		if date, ok := NextOccurrence(sub, now); ok {
			for !date.After(calendarHorizon) {
				key := date.UTC().Format(models.DateLayout)
				entry := calendarByDate[key]
				if entry == nil {
					entry = &models.CalendarEntry{
						Date:   date,
						Totals: make(map[string]float64),
					}
					calendarByDate[key] = entry
				}
				entry.Totals[sub.Currency] += sub.Cost
				entry.Items = append(entry.Items, models.CalendarItem{
					ID:       sub.ID,
					Name:     sub.Name,
					Currency: sub.Currency,
					Cost:     sub.Cost,
				})
				var moved bool
				if date, moved = advance(date, sub.Months); !moved {
					break
				}
			}
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].NextDate.Before(upcoming[j].NextDate)
	})
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].MonthlyCost > top[j].MonthlyCost
	})

	if currencies == nil {
		currencies = []string{}
	}

	periodComparison := make([]models.PeriodComparisonItem, 0, len(currencies))
	for _, currency := range currencies {
		month := monthlyTotals[currency]
		quarter := quarterlyTotals[currency]
		year := yearlyTotals[currency]
		periodComparison = append(periodComparison, models.PeriodComparisonItem{
			Currency:    currency,
			Month:       month,
			Quarter:     quarter,
			Year:        year,
			QuarterDiff: quarter - month,
			YearDiff:    year - month,
		})
	}

	// Only months with at least one payment are surfaced
	monthlyForecast := []models.ForecastMonth{}
	for _, bucket := range forecast {
		hasPayments := false
		for _, total := range bucket.Totals {
			if total > 0 {
				hasPayments = true
				break
			}
		}
		if hasPayments {
			monthlyForecast = append(monthlyForecast, *bucket)
		}
	}

	// Max and highest-month views are derived from the surviving forecast
	// buckets, not recomputed from the subscription list.
	maxTotalsByCurrency := make(map[string]float64)
	highestMonthByCurrency := make(map[string]models.MonthHighlight)
	for _, bucket := range monthlyForecast {
		for currency, total := range bucket.Totals {
			if total <= 0 {
				continue
			}
			if total > maxTotalsByCurrency[currency] {
				maxTotalsByCurrency[currency] = total
			}
			current, ok := highestMonthByCurrency[currency]
			if !ok || total > current.Total {
				highestMonthByCurrency[currency] = models.MonthHighlight{Date: bucket.Date, Total: total}
			}
		}
	}

	frequencyDistribution := make([]models.FrequencyBucket, 0, len(frequencyOrder))
	for _, label := range frequencyOrder {
		frequencyDistribution = append(frequencyDistribution, *frequencyBuckets[label])
	}
	sort.SliceStable(frequencyDistribution, func(i, j int) bool {
		return frequencyDistribution[i].MonthlyTotal > frequencyDistribution[j].MonthlyTotal
	})

	averageMonthly := make(map[string]float64)
	for currency, count := range countByCurrency {
		if count > 0 {
			averageMonthly[currency] = monthlyTotals[currency] / float64(count)
		}
	}

	calendar := make([]models.CalendarEntry, 0, len(calendarByDate))
	for _, entry := range calendarByDate {
		calendar = append(calendar, *entry)
	}
	sort.SliceStable(calendar, func(i, j int) bool {
		return calendar[i].Date.Before(calendar[j].Date)
	})

	return &models.Analytics{
		Currencies:                    currencies,
		MonthlyTotals:                 monthlyTotals,
		QuarterlyTotals:               quarterlyTotals,
		YearlyTotals:                  yearlyTotals,
		PeriodComparison:              periodComparison,
		MonthlyForecast:               monthlyForecast,
		MaxTotalsByCurrency:           maxTotalsByCurrency,
		HighestMonthByCurrency:        highestMonthByCurrency,
		UpcomingPayments:              upcoming,
		NextPaymentDetails:            nextPaymentDetails,
		FrequencyDistribution:         frequencyDistribution,
		TopSubscriptions:              top,
		AverageMonthlyPerSubscription: averageMonthly,
		Calendar:                      calendar,
		SubscriptionCountByCurrency:   countByCurrency,
	}
}
