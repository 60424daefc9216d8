package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "meubolso/internal/errors"
	"meubolso/internal/models"
	"meubolso/internal/pagination"
	"meubolso/internal/projection"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// normalizeInput reconciles the kind flags, the installment columns, and
// the embedded installment object before a write. Every stored row ends
// up with a consistent embedded object so reads never have to guess.
func normalizeInput(input *TransactionInput) error {
	if input.IsInstallment && input.IsRecurrent {
		return apperrors.ErrConflictingKind
	}

	switch {
	case input.IsInstallment:
		if input.StartDate == nil {
			start := input.Date
			input.StartDate = &start
		}
		// Recurrence fields make no sense on a plan.
		input.RecurrenceStartDate = nil

		if input.TotalInstallments <= 0 {
			if input.Installments != nil && input.Installments.TotalInstallments > 0 {
				input.TotalInstallments = input.Installments.TotalInstallments
			} else {
				input.TotalInstallments = 1
			}
		}
		if input.InstallmentNumber <= 0 {
			input.InstallmentNumber = 1
		}
		paid := 0
		if input.Installments != nil && input.Installments.PaidInstallments != nil {
			paid = *input.Installments.PaidInstallments
		}
		input.Installments = &models.InstallmentInfo{
			TotalInstallments: input.TotalInstallments,
			PaidInstallments:  &paid,
			StartDate:         input.StartDate.Format("2006-01-02"),
		}

	case input.IsRecurrent:
		if input.RecurrenceStartDate == nil {
			anchor := input.Date
			input.RecurrenceStartDate = &anchor
		}
		input.StartDate = nil
		input.TotalInstallments = 1
		input.InstallmentNumber = 1
		paid := 1
		input.Installments = &models.InstallmentInfo{
			TotalInstallments: 1,
			PaidInstallments:  &paid,
			StartDate:         input.RecurrenceStartDate.Format("2006-01-02"),
		}

	default:
		input.RecurrenceStartDate = nil
		input.StartDate = nil
		input.TotalInstallments = 1
		input.InstallmentNumber = 1
		paid := 1
		input.Installments = &models.InstallmentInfo{
			TotalInstallments: 1,
			PaidInstallments:  &paid,
			StartDate:         input.Date.Format("2006-01-02"),
		}
	}

	return nil
}

// CreateTransaction creates a new transaction for a user
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Type != models.TransactionTypeRevenue && input.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	if err := normalizeInput(&input); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:              userID,
		CategoryID:          input.CategoryID,
		Type:                input.Type,
		Amount:              input.Amount,
		Description:         input.Description,
		Date:                input.Date,
		PaymentMethod:       input.PaymentMethod,
		IsInstallment:       input.IsInstallment,
		TotalInstallments:   input.TotalInstallments,
		InstallmentNumber:   input.InstallmentNumber,
		StartDate:           input.StartDate,
		Installments:        input.Installments,
		IsRecurrent:         input.IsRecurrent,
		RecurrenceStartDate: input.RecurrenceStartDate,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("transaction_date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transaction_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transaction_date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces a transaction's fields after re-normalizing
// the payload.
func (s *transactionService) UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Type != models.TransactionTypeRevenue && input.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Date.IsZero() {
		input.Date = transaction.Date
	}

	if err := normalizeInput(&input); err != nil {
		return nil, err
	}

	transaction.CategoryID = input.CategoryID
	transaction.Type = input.Type
	transaction.Amount = input.Amount
	transaction.Description = input.Description
	transaction.Date = input.Date
	transaction.PaymentMethod = input.PaymentMethod
	transaction.IsInstallment = input.IsInstallment
	transaction.TotalInstallments = input.TotalInstallments
	transaction.InstallmentNumber = input.InstallmentNumber
	transaction.StartDate = input.StartDate
	transaction.Installments = input.Installments
	transaction.IsRecurrent = input.IsRecurrent
	transaction.RecurrenceStartDate = input.RecurrenceStartDate

	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// DeleteTransaction deletes a transaction
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MonthlyCandidates fetches the coarse superset of transactions that can
// contribute entries to the given month: single transactions dated in the
// month, recurrences whose anchor is known and not after the month's end,
// and every installment plan. The projection narrows this set down.
func (s *transactionService) MonthlyCandidates(userID string, year, month int) ([]models.Transaction, error) {
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var transactions []models.Transaction
	err := s.db.
		Where("user_id = ?", userID).
		Where(
			s.db.Where("is_installment = ? AND is_recurrent = ? AND transaction_date >= ? AND transaction_date < ?",
				false, false, monthStart, nextMonth).
				Or("is_recurrent = ? AND recurrence_start_date IS NOT NULL AND recurrence_start_date < ?",
					true, nextMonth).
				Or("is_installment = ?", true),
		).
		Order("transaction_date ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// InstallmentTransactions fetches every multi-installment plan for a user.
func (s *transactionService) InstallmentTransactions(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.
		Where("user_id = ? AND total_installments > ?", userID, 1).
		Order("transaction_date ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// MonthlyView materializes the virtual entries and summary for a month.
func (s *transactionService) MonthlyView(userID string, year, month int) (*projection.MonthlyView, error) {
	transactions, err := s.MonthlyCandidates(userID, year, month)
	if err != nil {
		return nil, err
	}

	view := projection.ComputeMonthlyView(projection.FromTransactions(transactions), year, month)
	return &view, nil
}

// InstallmentPlans summarizes the user's installment plans as of now.
func (s *transactionService) InstallmentPlans(userID string) ([]projection.Plan, error) {
	transactions, err := s.InstallmentTransactions(userID)
	if err != nil {
		return nil, err
	}

	return projection.ComputePlans(transactions, time.Now()), nil
}
