package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "meubolso/internal/errors"
	"meubolso/internal/services"
)

// SummaryHandler serves the derived financial views: the monthly
// projection and the installment plan summary.
type SummaryHandler struct {
	transactionService services.TransactionServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(transactionService services.TransactionServicer) *SummaryHandler {
	return &SummaryHandler{transactionService: transactionService}
}

// MonthlyViewQuery holds the required period parameters. The year range
// matches what the clients can select.
type MonthlyViewQuery struct {
	Year  int `form:"year" binding:"required,min=2020,max=2030"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// GetMonthlyView materializes the transactions and summary for a month
func (h *SummaryHandler) GetMonthlyView(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query MonthlyViewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "year (2020-2030) and month (1-12) are required"))
		return
	}

	view, err := h.transactionService.MonthlyView(userID, query.Year, query.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetInstallmentPlans summarizes the user's installment plans
func (h *SummaryHandler) GetInstallmentPlans(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	plans, err := h.transactionService.InstallmentPlans(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installmentPlans": plans})
}
