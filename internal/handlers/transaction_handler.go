package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "meubolso/internal/errors"
	"meubolso/internal/models"
	"meubolso/internal/pagination"
	"meubolso/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// InstallmentsRequest is the embedded installment sub-object of a
// transaction payload. Unlike the stored form, its keys are snake_case.
// PaidInstallments is a pointer so an explicit zero survives binding.
type InstallmentsRequest struct {
	TotalInstallments int     `json:"total_installments" binding:"omitempty,min=1"`
	PaidInstallments  *int    `json:"paid_installments" binding:"omitempty,min=0"`
	StartDate         *string `json:"start_date"`
}

// TransactionRequest represents the payload for creating or updating a
// transaction.
type TransactionRequest struct {
	CategoryID          *string                 `json:"category_id"`
	Type                models.TransactionType  `json:"type" binding:"required,transaction_type"`
	Amount              float64                 `json:"amount" binding:"required,gt=0"`
	Description         string                  `json:"description" binding:"required,max=500"`
	TransactionDate     *string                 `json:"transaction_date"`
	PaymentMethod       string                  `json:"payment_method" binding:"max=50"`
	IsInstallment       bool                    `json:"is_installment"`
	IsRecurrent         bool                    `json:"is_recurrent"`
	TotalInstallments   int                     `json:"total_installments" binding:"omitempty,min=1"`
	InstallmentNumber   int                     `json:"installment_number" binding:"omitempty,min=1"`
	StartDate           *string                 `json:"start_date"`
	RecurrenceStartDate *string                 `json:"recurrence_start_date"`
	Installments        *InstallmentsRequest    `json:"installments"`
}

// toInput converts a bound request into a service-layer input, parsing
// every date field.
func (req *TransactionRequest) toInput() (services.TransactionInput, error) {
	input := services.TransactionInput{
		CategoryID:        req.CategoryID,
		Type:              req.Type,
		Amount:            req.Amount,
		Description:       req.Description,
		PaymentMethod:     req.PaymentMethod,
		IsInstallment:     req.IsInstallment,
		IsRecurrent:       req.IsRecurrent,
		TotalInstallments: req.TotalInstallments,
		InstallmentNumber: req.InstallmentNumber,
	}

	parse := func(v *string) (*time.Time, error) {
		if v == nil || *v == "" {
			return nil, nil
		}
		t, err := parseFlexibleTime(*v)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		return &t, nil
	}

	txDate, err := parse(req.TransactionDate)
	if err != nil {
		return input, err
	}
	if txDate != nil {
		input.Date = *txDate
	}

	if input.StartDate, err = parse(req.StartDate); err != nil {
		return input, err
	}
	if input.RecurrenceStartDate, err = parse(req.RecurrenceStartDate); err != nil {
		return input, err
	}

	if req.Installments != nil {
		info := &models.InstallmentInfo{
			TotalInstallments: req.Installments.TotalInstallments,
			PaidInstallments:  req.Installments.PaidInstallments,
		}
		start, err := parse(req.Installments.StartDate)
		if err != nil {
			return input, err
		}
		if start != nil {
			info.StartDate = start.Format("2006-01-02")
		}
		input.Installments = info
	}

	return input, nil
}

// CreateTransaction handles the creation of a new transaction
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions handles the retrieval of the user's transactions
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeRevenue, models.TransactionTypeExpense:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be revenue or expense")
		}
	}

	if v := c.Query("category_id"); v != "" {
		catID := v
		filter.CategoryID = &catID
	}

	return filter, nil
}

// UpdateTransaction handles updating an existing transaction
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
