package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/leoomartinelli/painel-financeiro-martinelli/internal/errors"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/pagination"
)

// transactionService handles ledger entries.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// normalize validates in and fills the defaults (date today, status paid).
func (in TransactionInput) normalize() (TransactionInput, error) {
	description, err := requireText(in.Description, "description")
	if err != nil {
		return in, err
	}
	in.Description = description

	in.Amount, err = positiveAmount(in.Amount)
	if err != nil {
		return in, err
	}

	if !in.Type.Valid() {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}

	if in.Status == "" {
		in.Status = models.TransactionStatusPaid
	}
	if !in.Status.Valid() {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be paid or pending")
	}

	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	in.Date = models.DateOnly(in.Date)

	if in.Note != nil {
		note := strings.TrimSpace(*in.Note)
		if note == "" {
			in.Note = nil
		} else {
			in.Note = &note
		}
	}
	return in, nil
}

// CreateTransaction records a new ledger entry for the owner.
func (s *transactionService) CreateTransaction(ctx context.Context, userID uint, in TransactionInput) (*models.Transaction, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := ensureCategoryVisible(db, userID, in.CategoryID); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Type:        in.Type,
		Status:      in.Status,
		CategoryID:  in.CategoryID,
		Note:        in.Note,
	}
	if err := db.Create(transaction).Error; err != nil {
		return nil, storageErr(err)
	}
	return transaction, nil
}

// UpdateTransaction replaces every mutable field of an owned transaction.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID uint, in TransactionInput) (*models.Transaction, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var transaction models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(userID)).Where("id = ?", transactionID).First(&transaction).Error; err != nil {
			return notFoundOr(err, apperrors.ErrTransactionNotFound)
		}
		if err := ensureCategoryVisible(tx, userID, in.CategoryID); err != nil {
			return err
		}

		// Map form so that nil category and note are written as NULL.
		updates := map[string]interface{}{
			"description": in.Description,
			"amount":      in.Amount,
			"date":        in.Date,
			"type":        in.Type,
			"status":      in.Status,
			"category_id": in.CategoryID,
			"note":        in.Note,
		}
		if err := tx.Model(&transaction).Updates(updates).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	transaction.Description = in.Description
	transaction.Amount = in.Amount
	transaction.Date = in.Date
	transaction.Type = in.Type
	transaction.Status = in.Status
	transaction.CategoryID = in.CategoryID
	transaction.Note = in.Note
	return &transaction, nil
}

// DeleteTransaction removes an owned transaction. Piggy bank balances are
// never adjusted, even for movement mirror entries.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID uint) error {
	result := s.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("id = ?", transactionID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return storageErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// GetTransactionByID retrieves an owned transaction with its category.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Scopes(ownedBy(userID)).
		Where("id = ?", transactionID).
		First(&transaction).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrTransactionNotFound)
	}
	return &transaction, nil
}

// ListTransactions returns the owner's transactions of one month, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, userID uint, filter TransactionFilter) ([]models.Transaction, error) {
	if err := validatePeriod(filter.Month, filter.Year); err != nil {
		return nil, err
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}

	start, end := models.MonthRange(filter.Month, filter.Year)
	q := s.db.WithContext(ctx).
		Preload("Category").
		Scopes(ownedBy(userID)).
		Where("date >= ? AND date < ?", start, end)
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}

	transactions := []models.Transaction{}
	if err := q.Order("date DESC").Order("id DESC").Find(&transactions).Error; err != nil {
		return nil, storageErr(err)
	}
	return transactions, nil
}

// ListCategoryTransactions returns one page of the owner's transactions in a
// category visible to them.
func (s *transactionService) ListCategoryTransactions(ctx context.Context, userID, categoryID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	db := s.db.WithContext(ctx)
	if err := ensureCategoryVisible(db, userID, &categoryID); err != nil {
		return nil, err
	}

	base := db.Model(&models.Transaction{}).Scopes(ownedBy(userID)).Where("category_id = ?", categoryID).
		Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storageErr(err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, storageErr(err)
	}

	result := pagination.NewPageResponse(transactions, page, totalItems)
	return &result, nil
}
