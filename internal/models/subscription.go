package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format for payment dates ("2006-01-02").
// All parsed dates are midnight UTC.
const DateLayout = "2006-01-02"

// Subscription represents a single recurring payment. Cost is charged once
// per Months-month billing interval, in Currency's units. The record is
// treated as read-only by every service; analytics never mutates it.
type Subscription struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Cost            float64 `json:"cost"`
	Currency        string  `json:"currency"`
	Months          int     `json:"months"`
	FrequencyLabel  string  `json:"frequencyLabel"`
	NextPaymentDate string  `json:"nextPaymentDate"`
	Category        string  `json:"category,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// MonthlyCost returns the monthly-equivalent cost (cost / months), the
// normalized figure every aggregate is built from. A non-positive interval
// yields 0 so a corrupt record can't poison totals with Inf/NaN.
func (s *Subscription) MonthlyCost() float64 {
	if s.Months <= 0 {
		return 0
	}
	return s.Cost / float64(s.Months)
}

// AnchorDate parses the stored payment date. The second return is false for
// an empty or malformed date; callers must treat that as "no projection".
func (s *Subscription) AnchorDate() (time.Time, bool) {
	t, err := time.Parse(DateLayout, s.NextPaymentDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Validate checks the fields a stored record must carry. Note that the
// payment date is deliberately not required to parse: an invalid date is a
// legal state that analytics reports as "no projection available".
func (s *Subscription) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("subscription is missing an id")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("subscription %s has an empty name", s.ID)
	}
	if strings.TrimSpace(s.Currency) == "" {
		return fmt.Errorf("subscription %q has an empty currency", s.Name)
	}
	if s.Cost <= 0 || math.IsInf(s.Cost, 0) || math.IsNaN(s.Cost) {
		return fmt.Errorf("subscription %q has invalid cost %v", s.Name, s.Cost)
	}
	if s.Months < 1 {
		return fmt.Errorf("subscription %q has invalid billing interval %d", s.Name, s.Months)
	}
	return nil
}

// FrequencyOption describes one entry of the billing cadence picker.
type FrequencyOption struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Months int    `json:"months"`
}

// Frequencies lists the supported billing cadences. Labels are opaque
// grouping keys used by the frequency distribution, fixed at creation time.
var Frequencies = []FrequencyOption{
	{Value: "monthly", Label: "Ежемесячно", Months: 1},
	{Value: "quarterly", Label: "Ежеквартально", Months: 3},
	{Value: "semiannual", Label: "Раз в полгода", Months: 6},
	{Value: "yearly", Label: "Ежегодно", Months: 12},
	{Value: "custom", Label: "Своя периодичность", Months: 1},
}

// FrequencyLabelForMonths returns the display label for a billing interval,
// falling back to the custom label for intervals without a named cadence.
func FrequencyLabelForMonths(months int) string {
	for _, f := range Frequencies {
		if f.Value != "custom" && f.Months == months {
			return f.Label
		}
	}
	return fmt.Sprintf("Каждые %d мес.", months)
}

// DefaultSubscriptions returns the seed list used when no saved data exists.
// Payment dates are anchored relative to now so the examples stay current.
func DefaultSubscriptions(now time.Time) []Subscription {
	date := func(days int) string {
		return now.UTC().AddDate(0, 0, days).Format(DateLayout)
	}
	return []Subscription{
		{
			ID:              "1",
			Name:            "Netflix Premium",
			Cost:            599,
			Currency:        "₽",
			Months:          1,
			FrequencyLabel:  "Ежемесячно",
			NextPaymentDate: date(8),
		},
		{
			ID:              "2",
			Name:            "Spotify Family",
			Cost:            269,
			Currency:        "₽",
			Months:          1,
			FrequencyLabel:  "Ежемесячно",
			NextPaymentDate: date(15),
		},
		{
			ID:              "3",
			Name:            "Adobe Creative Cloud",
			Cost:            3299,
			Currency:        "₽",
			Months:          12,
			FrequencyLabel:  "Ежегодно",
			NextPaymentDate: date(45),
		},
	}
}

// SubscriptionSet wraps a slice with filtering/aggregation methods
type SubscriptionSet struct {
	Subscriptions []Subscription
}

// NewSubscriptionSet creates a new SubscriptionSet from a slice
func NewSubscriptionSet(subs []Subscription) *SubscriptionSet {
	return &SubscriptionSet{Subscriptions: subs}
}

// Len returns the number of subscriptions
func (ss *SubscriptionSet) Len() int {
	return len(ss.Subscriptions)
}

// FilterByCurrency returns subscriptions billed in the given currency
func (ss *SubscriptionSet) FilterByCurrency(currency string) *SubscriptionSet {
	result := &SubscriptionSet{}
	for _, s := range ss.Subscriptions {
		if s.Currency == currency {
			result.Subscriptions = append(result.Subscriptions, s)
		}
	}
	return result
}

// FilterBySearch returns subscriptions whose name contains the search term
func (ss *SubscriptionSet) FilterBySearch(search string) *SubscriptionSet {
	result := &SubscriptionSet{}
	searchLower := strings.ToLower(search)
	for _, s := range ss.Subscriptions {
		if strings.Contains(strings.ToLower(s.Name), searchLower) {
			result.Subscriptions = append(result.Subscriptions, s)
		}
	}
	return result
}

// ByID returns the subscription with the given id, if present
func (ss *SubscriptionSet) ByID(id string) (Subscription, bool) {
	for _, s := range ss.Subscriptions {
		if s.ID == id {
			return s, true
		}
	}
	return Subscription{}, false
}

// Currencies returns the distinct currencies in first-seen order
func (ss *SubscriptionSet) Currencies() []string {
	seen := make(map[string]bool)
	var currencies []string
	for _, s := range ss.Subscriptions {
		if !seen[s.Currency] {
			seen[s.Currency] = true
			currencies = append(currencies, s.Currency)
		}
	}
	return currencies
}

// TotalMonthly returns the summed monthly-equivalent cost per currency
func (ss *SubscriptionSet) TotalMonthly() map[string]float64 {
	result := make(map[string]float64)
	for _, s := range ss.Subscriptions {
		result[s.Currency] += s.MonthlyCost()
	}
	return result
}

// SortByName sorts subscriptions alphabetically by name
func (ss *SubscriptionSet) SortByName() *SubscriptionSet {
	sorted := make([]Subscription, len(ss.Subscriptions))
	copy(sorted, ss.Subscriptions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return &SubscriptionSet{Subscriptions: sorted}
}

// SortByMonthlyCost sorts subscriptions by monthly-equivalent cost (descending)
func (ss *SubscriptionSet) SortByMonthlyCost() *SubscriptionSet {
	sorted := make([]Subscription, len(ss.Subscriptions))
	copy(sorted, ss.Subscriptions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MonthlyCost() > sorted[j].MonthlyCost()
	})
	return &SubscriptionSet{Subscriptions: sorted}
}

// Copy creates a shallow copy of the SubscriptionSet
func (ss *SubscriptionSet) Copy() *SubscriptionSet {
	copied := make([]Subscription, len(ss.Subscriptions))
	copy(copied, ss.Subscriptions)
	return &SubscriptionSet{Subscriptions: copied}
}
