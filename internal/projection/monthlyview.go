package projection

import (
	"fmt"
	"math"
	"time"

	"meubolso/internal/models"
)

// Entry is one materialized transaction occurrence in a monthly view.
// Installment occurrences are virtual rows: their IDs are synthesized
// from the parent plan and never exist in storage.
type Entry struct {
	ID                string  `json:"id"`
	ParentID          string  `json:"parent_id,omitempty"`
	Description       string  `json:"description"`
	Amount            float64 `json:"amount"`
	Type              string  `json:"type"`
	Date              string  `json:"date"`
	CategoryID        *string `json:"category_id"`
	InstallmentNumber int     `json:"installment_number,omitempty"`
	TotalInstallments int     `json:"total_installments,omitempty"`
}

// Summary aggregates a month's entries. All three figures are rounded
// to two decimals; individual entry amounts are not.
type Summary struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalExpense float64 `json:"totalExpense"`
	Balance      float64 `json:"balance"`
}

// MonthlyView is the full projection result for one calendar month.
type MonthlyView struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Transactions []Entry `json:"transactions"`
	Summary      Summary `json:"summary"`
}

// ComputeMonthlyView projects the given records onto (year, month).
// The function is pure: identical inputs always produce identical
// output, and input order is preserved in the entry list.
//
// Installment plans emit at most one occurrence in a month, due at the
// start date advanced by whole calendar months with the day clamped to
// the target month's length. Recurring entries emit on the anchor's day
// of month, clamped the same way, and only from the anchor onward.
// Amounts: installments carry total/count per occurrence, recurrences
// carry the full amount every month.
func ComputeMonthlyView(records []Record, year, month int) MonthlyView {
	entries := make([]Entry, 0, len(records))

	for _, rec := range records {
		switch rec.Kind {
		case KindInstallment:
			if e, ok := installmentEntry(rec, year, month); ok {
				entries = append(entries, e)
			}
		case KindRecurring:
			if e, ok := recurringEntry(rec, year, month); ok {
				entries = append(entries, e)
			}
		case KindSingle:
			if rec.Date.Year() == year && int(rec.Date.Month()) == month {
				entries = append(entries, baseEntry(rec, rec.Date))
			}
		}
	}

	return MonthlyView{
		Year:         year,
		Month:        month,
		Transactions: entries,
		Summary:      summarize(entries),
	}
}

func installmentEntry(rec Record, year, month int) (Entry, bool) {
	for i := 1; i <= rec.Total; i++ {
		due := addMonths(rec.Start, i-1)
		if due.Year() != year || int(due.Month()) != month {
			continue
		}
		e := baseEntry(rec, due)
		e.ID = fmt.Sprintf("%s_inst_%d", rec.ID, i)
		e.ParentID = rec.ID
		e.Description = fmt.Sprintf("%s (%d/%d)", rec.Description, i, rec.Total)
		e.Amount = rec.Amount / float64(rec.Total)
		e.InstallmentNumber = i
		e.TotalInstallments = rec.Total
		return e, true
	}
	return Entry{}, false
}

func recurringEntry(rec Record, year, month int) (Entry, bool) {
	day := rec.Start.Day()
	if last := daysIn(year, time.Month(month)); day > last {
		day = last
	}
	occurrence := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if occurrence.Before(rec.Start) {
		return Entry{}, false
	}
	return baseEntry(rec, occurrence), true
}

func baseEntry(rec Record, date time.Time) Entry {
	return Entry{
		ID:          rec.ID,
		Description: rec.Description,
		Amount:      rec.Amount,
		Type:        string(rec.Type),
		Date:        date.Format("2006-01-02"),
		CategoryID:  rec.CategoryID,
	}
}

func summarize(entries []Entry) Summary {
	var revenue, expense float64
	for _, e := range entries {
		switch e.Type {
		case string(models.TransactionTypeRevenue):
			revenue += e.Amount
		case string(models.TransactionTypeExpense):
			expense += e.Amount
		}
	}
	return Summary{
		TotalRevenue: round2(revenue),
		TotalExpense: round2(expense),
		Balance:      round2(revenue - expense),
	}
}

// addMonths advances a date by whole calendar months, clamping the day
// to the target month's length. This differs from time.AddDate, which
// normalizes overflow into the following month (Jan 31 + 1 month must
// be Feb 28/29, not Mar 2/3).
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := t.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// daysIn returns the number of days in the given month. Day zero of the
// following month is the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
