package projection

import (
	"math"
	"time"

	"meubolso/internal/models"
)

// Plan statuses, evaluated in order: completed wins over overdue, which
// wins over active.
const (
	PlanStatusActive    = "active"
	PlanStatusOverdue   = "overdue"
	PlanStatusCompleted = "completed"
)

// Plan summarizes one installment plan's progress.
type Plan struct {
	ID                    string  `json:"id"`
	Description           string  `json:"description"`
	TotalAmount           float64 `json:"totalAmount"`
	InstallmentAmount     float64 `json:"installmentAmount"`
	TotalInstallments     int     `json:"totalInstallments"`
	PaidInstallments      int     `json:"paidInstallments"`
	RemainingInstallments int     `json:"remainingInstallments"`
	StartDate             string  `json:"startDate"`
	Status                string  `json:"status"`
	Type                  string  `json:"type"`
	CategoryID            *string `json:"category_id"`
}

// ComputePlans summarizes installment plans as of the given instant.
// Callers prefilter the input to transactions with more than one
// installment.
//
// Paid count falls back from the embedded object to one less than the
// installment number, floored at zero; an embedded object carrying an
// explicit zero counts as zero paid, not as absent. A plan is overdue
// when more 30-day periods have elapsed since its start than
// installments were paid; the fixed 30-day bucket is a deliberate approximation of a
// month and drifts slightly over long plans.
func ComputePlans(txs []models.Transaction, asOf time.Time) []Plan {
	plans := make([]Plan, 0, len(txs))

	for i := range txs {
		tx := &txs[i]

		total := tx.TotalInstallments
		if total <= 0 && tx.Installments != nil {
			total = tx.Installments.TotalInstallments
		}
		if total <= 1 {
			continue
		}

		paid := 0
		if tx.Installments != nil && tx.Installments.PaidInstallments != nil {
			paid = *tx.Installments.PaidInstallments
		} else if tx.InstallmentNumber > 0 {
			paid = tx.InstallmentNumber - 1
		}
		if paid < 0 {
			paid = 0
		}

		remaining := total - paid
		if remaining < 0 {
			remaining = 0
		}

		start, ok := firstDate(
			embeddedDate(tx.Installments),
			ptrDate(tx.StartDate),
			dateOnly(tx.Date),
		)
		if !ok {
			continue
		}

		plans = append(plans, Plan{
			ID:                    tx.ID,
			Description:           tx.Description,
			TotalAmount:           tx.Amount,
			InstallmentAmount:     tx.Amount / float64(total),
			TotalInstallments:     total,
			PaidInstallments:      paid,
			RemainingInstallments: remaining,
			StartDate:             start.Format("2006-01-02"),
			Status:                planStatus(start, total, paid, asOf),
			Type:                  string(tx.Type),
			CategoryID:            tx.CategoryID,
		})
	}

	return plans
}

func planStatus(start time.Time, total, paid int, asOf time.Time) string {
	if paid >= total {
		return PlanStatusCompleted
	}
	elapsed := math.Floor(asOf.Sub(start).Hours() / (24 * 30))
	if elapsed > float64(paid) {
		return PlanStatusOverdue
	}
	return PlanStatusActive
}
