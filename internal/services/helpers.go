package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/leoomartinelli/painel-financeiro-martinelli/internal/errors"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/logger"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

// storageErr wraps a driver error, passing AppErrors through unchanged.
func storageErr(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrStorage, err)
}

// notFoundOr maps gorm.ErrRecordNotFound to sentinel and anything else to a
// storage error.
func notFoundOr(err error, sentinel *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return storageErr(err)
}

// ownedBy scopes a query to rows owned by userID.
func ownedBy(userID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// visibleTo scopes a category query to the owner's and the global categories.
func visibleTo(userID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_id = ? OR user_id IS NULL)", userID)
	}
}

// sumAmount returns COALESCE(SUM(amount), 0) for q, rounded to cents.
func sumAmount(q *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := q.Select("COALESCE(SUM(amount), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}

// overallBalance is the owner's all-time paid income minus paid expense.
func overallBalance(db *gorm.DB, userID uint) (decimal.Decimal, error) {
	income, err := sumAmount(db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ?", userID, models.TransactionTypeIncome, models.TransactionStatusPaid))
	if err != nil {
		return decimal.Zero, err
	}
	expense, err := sumAmount(db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ?", userID, models.TransactionTypeExpense, models.TransactionStatusPaid))
	if err != nil {
		return decimal.Zero, err
	}
	return income.Sub(expense), nil
}

// ensureCategoryVisible checks that categoryID, when set, is the owner's or global.
func ensureCategoryVisible(db *gorm.DB, userID uint, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := db.Model(&models.Category{}).
		Where("id = ?", *categoryID).
		Scopes(visibleTo(userID)).
		Count(&count).Error; err != nil {
		return storageErr(err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("month must be between 1 and 12, got %d", month))
	}
	if year < 1 || year > 9999 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("year must be between 1 and 9999, got %d", year))
	}
	return nil
}

// positiveAmount rounds amount to cents and rejects anything that does not
// stay above zero.
func positiveAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be at least 0.01")
	}
	return amount, nil
}

func requireText(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, field+" is required")
	}
	return value, nil
}

// publish sends event and logs, rather than returns, a delivery failure.
func publish(ctx context.Context, p events.Publisher, event events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.Get().Warnw("failed to publish event", "type", event.Type, "user_id", event.UserID, "error", err)
	}
}
