package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/leoomartinelli/painel-financeiro-martinelli/internal/errors"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

const (
	depositNote  = "Automatic transfer to piggy bank"
	withdrawNote = "Automatic transfer from piggy bank"
	refundNote   = "Remaining balance returned on piggy bank removal"
)

// piggyBankService moves money between the main ledger and piggy banks.
// Every balance change is paired with exactly one paid transaction in the
// same database transaction.
type piggyBankService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

// NewPiggyBankService creates a new PiggyBankServicer.
func NewPiggyBankService(db *gorm.DB, publisher events.Publisher) PiggyBankServicer {
	return &piggyBankService{db: db, publisher: publisher, now: time.Now}
}

// ListPiggyBanks returns the owner's piggy banks, newest first.
func (s *piggyBankService) ListPiggyBanks(ctx context.Context, userID uint) ([]models.PiggyBank, error) {
	banks := []models.PiggyBank{}
	if err := s.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Order("id DESC").
		Find(&banks).Error; err != nil {
		return nil, storageErr(err)
	}
	return banks, nil
}

// CreatePiggyBank creates an empty piggy bank.
func (s *piggyBankService) CreatePiggyBank(ctx context.Context, userID uint, name string, target decimal.Decimal, color string) (*models.PiggyBank, error) {
	name, err := requireText(name, "name")
	if err != nil {
		return nil, err
	}
	if target.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target must not be negative")
	}

	bank := &models.PiggyBank{
		UserID:  userID,
		Name:    name,
		Target:  target.Round(2),
		Balance: decimal.Zero,
		Color:   strings.TrimSpace(color),
	}
	if err := s.db.WithContext(ctx).Create(bank).Error; err != nil {
		return nil, storageErr(err)
	}
	return bank, nil
}

// MovePiggyBank deposits into or withdraws from a piggy bank and records the
// mirror transaction. It returns the bank with its new balance.
func (s *piggyBankService) MovePiggyBank(ctx context.Context, userID, piggyBankID uint, amount decimal.Decimal, direction models.MoveDirection) (*models.PiggyBank, error) {
	amount, err := positiveAmount(amount)
	if err != nil {
		return nil, err
	}

	var move func(tx *gorm.DB) (*models.PiggyBank, error)
	var eventType string
	switch direction {
	case models.MoveDeposit:
		move = func(tx *gorm.DB) (*models.PiggyBank, error) { return s.deposit(tx, userID, piggyBankID, amount) }
		eventType = events.PiggyBankDeposited
	case models.MoveWithdraw:
		move = func(tx *gorm.DB) (*models.PiggyBank, error) { return s.withdraw(tx, userID, piggyBankID, amount) }
		eventType = events.PiggyBankWithdrawn
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "direction must be deposit or withdraw")
	}

	var bank *models.PiggyBank
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		bank, err = move(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.New(eventType, userID, map[string]interface{}{
		"piggy_bank_id": bank.ID,
		"amount":        amount.StringFixed(2),
		"balance":       bank.Balance.StringFixed(2),
	}))
	return bank, nil
}

// deposit serializes the owner's deposits on the user row so two concurrent
// deposits cannot both pass the balance check.
func (s *piggyBankService) deposit(tx *gorm.DB, userID, piggyBankID uint, amount decimal.Decimal) (*models.PiggyBank, error) {
	var owner models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		First(&owner).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrUserNotFound)
	}

	bank, err := s.getOwned(tx, userID, piggyBankID, false)
	if err != nil {
		return nil, err
	}

	available, err := overallBalance(tx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	if available.LessThan(amount) {
		return nil, apperrors.WithMessage(apperrors.ErrInsufficientFunds,
			fmt.Sprintf("Insufficient funds in the main balance: available %s", available.StringFixed(2)))
	}

	if err := tx.Model(&models.PiggyBank{}).
		Scopes(ownedBy(userID)).
		Where("id = ?", bank.ID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return nil, storageErr(err)
	}

	if err := s.mirror(tx, userID, "Deposit: "+bank.Name, amount, models.TransactionTypeExpense, depositNote); err != nil {
		return nil, err
	}
	return s.getOwned(tx, userID, bank.ID, false)
}

// withdraw decrements the balance with a conditional update; if the bank
// holds less than amount no row matches and nothing is written.
func (s *piggyBankService) withdraw(tx *gorm.DB, userID, piggyBankID uint, amount decimal.Decimal) (*models.PiggyBank, error) {
	bank, err := s.getOwned(tx, userID, piggyBankID, false)
	if err != nil {
		return nil, err
	}

	result := tx.Model(&models.PiggyBank{}).
		Scopes(ownedBy(userID)).
		Where("id = ? AND balance >= ?", bank.ID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return nil, storageErr(result.Error)
	}
	if result.RowsAffected == 0 {
		current, err := s.getOwned(tx, userID, bank.ID, false)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.WithMessage(apperrors.ErrInsufficientBankFunds,
			fmt.Sprintf("Insufficient funds in the piggy bank: available %s", current.Balance.StringFixed(2)))
	}

	if err := s.mirror(tx, userID, "Withdrawal: "+bank.Name, amount, models.TransactionTypeIncome, withdrawNote); err != nil {
		return nil, err
	}
	return s.getOwned(tx, userID, bank.ID, false)
}

// UpdatePiggyBank changes a bank's name and target. The balance is never
// touched.
func (s *piggyBankService) UpdatePiggyBank(ctx context.Context, userID, piggyBankID uint, name string, target decimal.Decimal) (*models.PiggyBank, error) {
	name, err := requireText(name, "name")
	if err != nil {
		return nil, err
	}
	if target.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target must not be negative")
	}
	target = target.Round(2)

	var bank *models.PiggyBank
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if bank, err = s.getOwned(tx, userID, piggyBankID, false); err != nil {
			return err
		}
		if err := tx.Model(bank).Updates(map[string]interface{}{
			"name":   name,
			"target": target,
		}).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bank.Name = name
	bank.Target = target
	return bank, nil
}

// DeletePiggyBank removes a bank, first returning any remaining balance to
// the main ledger as a paid income.
func (s *piggyBankService) DeletePiggyBank(ctx context.Context, userID, piggyBankID uint) error {
	var refunded decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bank, err := s.getOwned(tx, userID, piggyBankID, true)
		if err != nil {
			return err
		}

		refunded = bank.Balance
		if bank.Balance.IsPositive() {
			if err := s.mirror(tx, userID, "Refund: "+bank.Name, bank.Balance, models.TransactionTypeIncome, refundNote); err != nil {
				return err
			}
		}

		if err := tx.Delete(bank).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	publish(ctx, s.publisher, events.New(events.PiggyBankDeleted, userID, map[string]interface{}{
		"piggy_bank_id": piggyBankID,
		"refunded":      refunded.StringFixed(2),
	}))
	return nil
}

func (s *piggyBankService) getOwned(tx *gorm.DB, userID, piggyBankID uint, lock bool) (*models.PiggyBank, error) {
	q := tx.Scopes(ownedBy(userID)).Where("id = ?", piggyBankID)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var bank models.PiggyBank
	if err := q.First(&bank).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrPiggyBankNotFound)
	}
	return &bank, nil
}

// mirror records the paid ledger entry paired with a bank movement.
func (s *piggyBankService) mirror(tx *gorm.DB, userID uint, description string, amount decimal.Decimal, kind models.TransactionType, note string) error {
	transaction := &models.Transaction{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		Date:        models.DateOnly(s.now()),
		Type:        kind,
		Status:      models.TransactionStatusPaid,
		Note:        &note,
	}
	if err := tx.Create(transaction).Error; err != nil {
		return storageErr(err)
	}
	return nil
}
