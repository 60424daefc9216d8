// Package projection materializes virtual transaction entries for a
// calendar month and summarizes installment plans. Stored transactions
// describe single entries, installment plans, or monthly recurrences;
// this package expands them into what actually falls due in a month.
package projection

import (
	"time"

	"meubolso/internal/models"
)

// Kind classifies how a transaction projects onto the calendar.
type Kind int

const (
	KindSingle Kind = iota
	KindInstallment
	KindRecurring
)

// Record is a normalized transaction ready for projection. Fallback
// chains across the raw columns and the embedded installment object are
// resolved once, here, so the projection functions never see partial data.
type Record struct {
	ID          string
	Description string
	Type        models.TransactionType
	CategoryID  *string
	Amount      float64
	Kind        Kind

	// Date is the calendar date for single entries.
	Date time.Time
	// Start is the first due date of an installment plan, or the
	// recurrence anchor for recurring entries.
	Start time.Time
	// Total is the number of installments in a plan (always > 1 for
	// KindInstallment).
	Total int
}

// FromTransaction normalizes a stored transaction into a Record.
// Returns false when the row cannot be projected (no resolvable date);
// such rows are tolerated and skipped, never treated as errors.
//
// Kind precedence: installment, then recurring, then single. A row
// counts as an installment plan when it is flagged as one or its
// embedded object reports more than one installment, and the resolved
// total is greater than one.
func FromTransaction(tx *models.Transaction) (Record, bool) {
	rec := Record{
		ID:          tx.ID,
		Description: tx.Description,
		Type:        tx.Type,
		CategoryID:  tx.CategoryID,
		Amount:      tx.Amount,
	}

	total := resolveTotal(tx)
	embedded := tx.Installments

	if (tx.IsInstallment || (embedded != nil && embedded.TotalInstallments > 1)) && total > 1 {
		start, ok := firstDate(
			ptrDate(tx.StartDate),
			dateOnly(tx.Date),
			embeddedDate(embedded),
		)
		if !ok {
			return Record{}, false
		}
		rec.Kind = KindInstallment
		rec.Start = start
		rec.Total = total
		return rec, true
	}

	if tx.IsRecurrent {
		anchor, ok := firstDate(
			ptrDate(tx.RecurrenceStartDate),
			embeddedDate(embedded),
		)
		if !ok {
			return Record{}, false
		}
		rec.Kind = KindRecurring
		rec.Start = anchor
		return rec, true
	}

	if tx.Date.IsZero() {
		return Record{}, false
	}
	rec.Kind = KindSingle
	rec.Date = dateOnly(tx.Date)
	return rec, true
}

// FromTransactions normalizes a batch, dropping rows that cannot be
// projected.
func FromTransactions(txs []models.Transaction) []Record {
	records := make([]Record, 0, len(txs))
	for i := range txs {
		if rec, ok := FromTransaction(&txs[i]); ok {
			records = append(records, rec)
		}
	}
	return records
}

// resolveTotal picks the installment count: embedded object first, then
// the column, then one. Zero values fall through.
func resolveTotal(tx *models.Transaction) int {
	if tx.Installments != nil && tx.Installments.TotalInstallments > 0 {
		return tx.Installments.TotalInstallments
	}
	if tx.TotalInstallments > 0 {
		return tx.TotalInstallments
	}
	return 1
}

// firstDate returns the first non-zero candidate date.
func firstDate(candidates ...time.Time) (time.Time, bool) {
	for _, c := range candidates {
		if !c.IsZero() {
			return c, true
		}
	}
	return time.Time{}, false
}

func ptrDate(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return dateOnly(*t)
}

// embeddedDate parses the startDate string carried by the embedded
// installment object. Unparseable values are treated as absent.
func embeddedDate(info *models.InstallmentInfo) time.Time {
	if info == nil || info.StartDate == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", info.StartDate); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, info.StartDate); err == nil {
		return dateOnly(t)
	}
	return time.Time{}
}

// dateOnly truncates a timestamp to its calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
