package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, name string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	SetShareLink(ctx context.Context, userID uint, link string) (*models.User, error)
	ListActiveUserIDs(ctx context.Context) ([]uint, error)
}

// TransactionInput carries the mutable fields of a transaction. Update
// replaces all of them.
type TransactionInput struct {
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Type        models.TransactionType
	Status      models.TransactionStatus
	CategoryID  *uint
	Note        *string
}

// TransactionFilter selects transactions of one calendar month, optionally
// narrowed to a kind.
type TransactionFilter struct {
	Month int
	Year  int
	Type  *models.TransactionType
}

// TransactionServicer defines the contract for the ledger store.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID uint, in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID uint, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID uint) error
	GetTransactionByID(ctx context.Context, userID, transactionID uint) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uint, filter TransactionFilter) ([]models.Transaction, error)
	ListCategoryTransactions(ctx context.Context, userID, categoryID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// CategoryServicer defines the contract for the category registry.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID uint, name string, categoryType models.CategoryType) (*models.Category, error)
	ListCategories(ctx context.Context, userID uint, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, userID, categoryID uint) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID uint, name string, categoryType models.CategoryType) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID uint) error
}

// Summary is the balance breakdown of one month.
type Summary struct {
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	IncomeRealized   decimal.Decimal `json:"income_realized"`
	IncomePending    decimal.Decimal `json:"income_pending"`
	ExpenseRealized  decimal.Decimal `json:"expense_realized"`
	ExpensePending   decimal.Decimal `json:"expense_pending"`
	CardPendingTotal decimal.Decimal `json:"card_pending_total"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
}

// MonthlyTotals holds the paid income and expense of one month.
type MonthlyTotals struct {
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Dashboard bundles everything the overview page renders.
type Dashboard struct {
	Summary      *Summary             `json:"summary"`
	Transactions []models.Transaction `json:"transactions"`
	Annual       []MonthlyTotals      `json:"annual"`
	Recurring    *ProcessReport       `json:"recurring,omitempty"`
}

// SummaryServicer defines the contract for the balance calculator.
type SummaryServicer interface {
	GetSummary(ctx context.Context, userID uint, month, year int) (*Summary, error)
	GetAnnualSeries(ctx context.Context, userID uint, year int) ([]MonthlyTotals, error)
	OverallBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
	GetDashboard(ctx context.Context, userID uint, month, year int) (*Dashboard, error)
}

// CardCategoryResolver finds the category whose pending transactions form
// the owner's card bucket. A nil id with a nil error means the owner has no
// card category.
type CardCategoryResolver interface {
	Resolve(db *gorm.DB, userID uint) (*uint, error)
}

// CardBucket is the open (pending) card balance.
type CardBucket struct {
	CategoryID *uint                `json:"category_id"`
	Total      decimal.Decimal      `json:"total"`
	Items      []models.Transaction `json:"items"`
}

// CardServicer defines the contract for reading and settling the card bucket.
type CardServicer interface {
	GetOpenBucket(ctx context.Context, userID uint) (*CardBucket, error)
	SettleBucket(ctx context.Context, userID uint) (int64, error)
}

// PiggyBankServicer defines the contract for the piggy-bank manager.
type PiggyBankServicer interface {
	ListPiggyBanks(ctx context.Context, userID uint) ([]models.PiggyBank, error)
	CreatePiggyBank(ctx context.Context, userID uint, name string, target decimal.Decimal, color string) (*models.PiggyBank, error)
	MovePiggyBank(ctx context.Context, userID, piggyBankID uint, amount decimal.Decimal, direction models.MoveDirection) (*models.PiggyBank, error)
	UpdatePiggyBank(ctx context.Context, userID, piggyBankID uint, name string, target decimal.Decimal) (*models.PiggyBank, error)
	DeletePiggyBank(ctx context.Context, userID, piggyBankID uint) error
}

// RecurringRuleInput carries the fields of a new recurring rule.
type RecurringRuleInput struct {
	Description string
	Amount      decimal.Decimal
	DayOfMonth  int
	Type        models.TransactionType
	CategoryID  *uint
	ParcelLimit *int
}

// RuleFailure records one rule that could not be processed.
type RuleFailure struct {
	RuleID uint   `json:"rule_id"`
	Error  string `json:"error"`
}

// ProcessReport summarizes one pass over an owner's recurring rules.
type ProcessReport struct {
	Created          int           `json:"created"`
	SkippedExisting  int           `json:"skipped_existing"`
	SkippedExhausted int           `json:"skipped_exhausted"`
	Failures         []RuleFailure `json:"failures"`
}

// RecurringServicer defines the contract for the recurring rule engine.
type RecurringServicer interface {
	ListRecurringRules(ctx context.Context, userID uint) ([]models.RecurringRule, error)
	CreateRecurringRule(ctx context.Context, userID uint, in RecurringRuleInput) (*models.RecurringRule, error)
	DeleteRecurringRule(ctx context.Context, userID, ruleID uint) error
	ProcessDueRules(ctx context.Context, userID uint, today time.Time) (*ProcessReport, error)
}
