package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/paytracker-backend/models"
	"github.com/fadhlanhapp/paytracker-backend/utils"
)

const day = 24 * time.Hour

// Entry is a payment with its date already parsed
type Entry struct {
	Name   string
	Amount decimal.Decimal
	Date   time.Time
}

// EntriesFromPayments parses the stored dates of payments. A date that cannot be
// parsed is a precondition violation for the accrual functions and is reported
// with the offending record rather than skipped.
func EntriesFromPayments(payments []models.Payment) ([]Entry, error) {
	entries := make([]Entry, 0, len(payments))
	for _, p := range payments {
		date, err := utils.ParseDate(p.Date)
		if err != nil {
			return nil, utils.NewInternalError("malformed payment date").
				WithDetails(fmt.Sprintf("payment %d: %v", p.ID, err))
		}
		entries = append(entries, Entry{Name: p.Name, Amount: p.Amount, Date: date})
	}
	return entries, nil
}

// TotalPaid sums the amounts paid by person
func TotalPaid(entries []Entry, person string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Name == person {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// FirstDay returns the earliest payment date. ok is false for no entries.
func FirstDay(entries []Entry) (first time.Time, ok bool) {
	for i, e := range entries {
		if i == 0 || e.Date.Before(first) {
			first = e.Date
		}
	}
	return first, len(entries) > 0
}

// DaysElapsed counts tracking days from first to now, inclusive of the first day
func DaysElapsed(first, now time.Time) int64 {
	elapsed := now.Sub(first)
	days := int64(elapsed / day)
	if elapsed%day < 0 {
		days--
	}
	return days + 1
}

// ExpectedAccrual is the pay accrued since the earliest entry at dailyRate.
// With no entries there is no start date and nothing has accrued.
func ExpectedAccrual(entries []Entry, dailyRate decimal.Decimal, now time.Time) decimal.Decimal {
	first, ok := FirstDay(entries)
	if !ok {
		return decimal.Zero
	}
	return dailyRate.Mul(decimal.NewFromInt(DaysElapsed(first, now)))
}

// AmountDue is the accrual not yet paid by person. Negative means credit.
func AmountDue(entries []Entry, dailyRate decimal.Decimal, now time.Time, person string) decimal.Decimal {
	return ExpectedAccrual(entries, dailyRate, now).Sub(TotalPaid(entries, person))
}

// MissedDays is the number of whole unpaid days, never negative
func MissedDays(entries []Entry, dailyRate decimal.Decimal, now time.Time, person string) int64 {
	return missedDays(AmountDue(entries, dailyRate, now, person), dailyRate)
}

func missedDays(due, dailyRate decimal.Decimal) int64 {
	if !due.IsPositive() {
		return 0
	}
	return due.Div(dailyRate).Floor().IntPart()
}

// Calculator derives per-person figures for a roster
type Calculator struct {
	DailyRate decimal.Decimal
	// Clock selects the accrual start date: utils.ClockShared starts every
	// payer at the earliest payment overall, utils.ClockPerPerson at their own.
	Clock string
}

// NewCalculator creates a calculator with the given rate and clock mode
func NewCalculator(dailyRate decimal.Decimal, clock string) *Calculator {
	return &Calculator{DailyRate: dailyRate, Clock: clock}
}

// Summarize computes the figures of every roster member as of now
func (c *Calculator) Summarize(entries []Entry, roster []string, now time.Time) []models.PersonSummary {
	people := make([]models.PersonSummary, 0, len(roster))
	for _, person := range roster {
		people = append(people, c.summarizePerson(entries, person, now))
	}
	return people
}

func (c *Calculator) summarizePerson(entries []Entry, person string, now time.Time) models.PersonSummary {
	clockEntries := entries
	if c.Clock == utils.ClockPerPerson {
		clockEntries = filterByName(entries, person)
	}

	paid := TotalPaid(entries, person)
	expected := ExpectedAccrual(clockEntries, c.DailyRate, now)
	due := expected.Sub(paid)

	summary := models.PersonSummary{
		Name:       person,
		TotalPaid:  paid,
		Expected:   expected,
		AmountDue:  due,
		MissedDays: missedDays(due, c.DailyRate),
	}
	if first, ok := FirstDay(clockEntries); ok {
		summary.Since = utils.FormatDate(first)
	}
	return summary
}

func filterByName(entries []Entry, person string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Name == person {
			out = append(out, e)
		}
	}
	return out
}
