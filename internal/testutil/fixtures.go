package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, panicking on malformed test input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     "Test User",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category owned by userID.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestNamedCategory(t, db, &userID, fmt.Sprintf("Test Category %d", nextID()), categoryType)
}

// CreateTestNamedCategory creates a category with an explicit name. A nil
// userID creates a global category.
func CreateTestNamedCategory(t *testing.T, db *gorm.DB, userID *uint, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestCardCategory creates the owner's card category.
func CreateTestCardCategory(t *testing.T, db *gorm.DB, userID uint) *models.Category {
	t.Helper()
	return CreateTestNamedCategory(t, db, &userID, "Cartão de Crédito", models.CategoryTypeExpense)
}

// TxOpts customizes a fixture transaction.
type TxOpts struct {
	Status     models.TransactionStatus
	Date       time.Time
	CategoryID *uint
	RuleID     *uint
}

// CreateTestTransaction creates a paid transaction dated today.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, transactionType models.TransactionType, amount string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionWith(t, db, userID, transactionType, amount, TxOpts{})
}

// CreateTestTransactionWith creates a transaction with the given options;
// zero values default to paid and today.
func CreateTestTransactionWith(t *testing.T, db *gorm.DB, userID uint, transactionType models.TransactionType, amount string, opts TxOpts) *models.Transaction {
	t.Helper()

	if opts.Status == "" {
		opts.Status = models.TransactionStatusPaid
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:          userID,
		Description:     fmt.Sprintf("Test Transaction %d", nextID()),
		Amount:          Dec(amount),
		Date:            models.DateOnly(opts.Date),
		Type:            transactionType,
		Status:          opts.Status,
		CategoryID:      opts.CategoryID,
		RecurringRuleID: opts.RuleID,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestPiggyBank creates a piggy bank with the given balance written
// directly, bypassing the movement protocol.
func CreateTestPiggyBank(t *testing.T, db *gorm.DB, userID uint, balance string) *models.PiggyBank {
	t.Helper()

	bank := &models.PiggyBank{
		UserID:  userID,
		Name:    fmt.Sprintf("Test Piggy Bank %d", nextID()),
		Target:  Dec("1000"),
		Balance: Dec(balance),
	}
	if err := db.Create(bank).Error; err != nil {
		t.Fatalf("failed to create test piggy bank: %v", err)
	}
	return bank
}

// CreateTestRecurringRule creates an expense rule for the given day and
// optional parcel limit.
func CreateTestRecurringRule(t *testing.T, db *gorm.DB, userID uint, day int, limit *int) *models.RecurringRule {
	t.Helper()

	rule := &models.RecurringRule{
		UserID:      userID,
		Description: fmt.Sprintf("Test Rule %d", nextID()),
		Amount:      Dec("99.90"),
		DayOfMonth:  day,
		Type:        models.TransactionTypeExpense,
		ParcelLimit: limit,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test recurring rule: %v", err)
	}
	return rule
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// UintPtr returns a pointer to v.
func UintPtr(v uint) *uint { return &v }
