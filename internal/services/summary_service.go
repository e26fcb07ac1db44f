package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/logger"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

// summaryService derives balances from transaction states.
type summaryService struct {
	db           *gorm.DB
	resolver     CardCategoryResolver
	transactions TransactionServicer
	recurring    RecurringServicer
	now          func() time.Time
}

// NewSummaryService creates a new SummaryServicer. transactions and recurring
// back the dashboard; recurring may be nil to skip rule processing there.
func NewSummaryService(db *gorm.DB, resolver CardCategoryResolver, transactions TransactionServicer, recurring RecurringServicer) SummaryServicer {
	return &summaryService{
		db:           db,
		resolver:     resolver,
		transactions: transactions,
		recurring:    recurring,
		now:          time.Now,
	}
}

// GetSummary computes the month's realized and pending figures and the
// derived balances. Every figure is read in one transaction; any failure
// fails the whole summary.
func (s *summaryService) GetSummary(ctx context.Context, userID uint, month, year int) (*Summary, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	start, end := models.MonthRange(month, year)

	summary := &Summary{Month: month, Year: year}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cardID, err := s.resolver.Resolve(tx, userID)
		if err != nil {
			return storageErr(err)
		}

		period := func(kind models.TransactionType, status models.TransactionStatus) *gorm.DB {
			return tx.Model(&models.Transaction{}).
				Scopes(ownedBy(userID)).
				Where("type = ? AND status = ?", kind, status).
				Where("date >= ? AND date < ?", start, end)
		}

		if summary.IncomeRealized, err = sumAmount(period(models.TransactionTypeIncome, models.TransactionStatusPaid)); err != nil {
			return storageErr(err)
		}
		if summary.IncomePending, err = sumAmount(period(models.TransactionTypeIncome, models.TransactionStatusPending)); err != nil {
			return storageErr(err)
		}
		if summary.ExpenseRealized, err = sumAmount(period(models.TransactionTypeExpense, models.TransactionStatusPaid)); err != nil {
			return storageErr(err)
		}

		expensePending := period(models.TransactionTypeExpense, models.TransactionStatusPending)
		if cardID != nil {
			// NULL category_id must still count, so the exclusion is explicit.
			expensePending = expensePending.Where("(category_id IS NULL OR category_id <> ?)", *cardID)
		}
		if summary.ExpensePending, err = sumAmount(expensePending); err != nil {
			return storageErr(err)
		}

		summary.CardPendingTotal = decimal.Zero
		if cardID != nil {
			card := tx.Model(&models.Transaction{}).
				Scopes(ownedBy(userID)).
				Where("category_id = ? AND status = ?", *cardID, models.TransactionStatusPending)
			if summary.CardPendingTotal, err = sumAmount(card); err != nil {
				return storageErr(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.CurrentBalance = summary.IncomeRealized.Sub(summary.ExpenseRealized)
	summary.ProjectedBalance = summary.CurrentBalance.
		Add(summary.IncomePending).
		Sub(summary.ExpensePending).
		Sub(summary.CardPendingTotal)
	return summary, nil
}

// GetAnnualSeries returns twelve buckets of paid income and expense, one per
// month, zero-filled.
func (s *summaryService) GetAnnualSeries(ctx context.Context, userID uint, year int) ([]MonthlyTotals, error) {
	if err := validatePeriod(1, year); err != nil {
		return nil, err
	}

	series := make([]MonthlyTotals, 12)
	for i := range series {
		series[i] = MonthlyTotals{Month: i + 1, Income: decimal.Zero, Expense: decimal.Zero}
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	// Bucketed here rather than with a dialect-specific month() in SQL.
	var rows []models.Transaction
	if err := s.db.WithContext(ctx).
		Select("date", "type", "amount").
		Scopes(ownedBy(userID)).
		Where("status = ?", models.TransactionStatusPaid).
		Where("date >= ? AND date < ?", start, end).
		Find(&rows).Error; err != nil {
		return nil, storageErr(err)
	}

	for _, row := range rows {
		bucket := &series[row.Date.UTC().Month()-1]
		switch row.Type {
		case models.TransactionTypeIncome:
			bucket.Income = bucket.Income.Add(row.Amount)
		case models.TransactionTypeExpense:
			bucket.Expense = bucket.Expense.Add(row.Amount)
		}
	}
	for i := range series {
		series[i].Income = series[i].Income.Round(2)
		series[i].Expense = series[i].Expense.Round(2)
	}
	return series, nil
}

// OverallBalance returns the owner's all-time realized balance.
func (s *summaryService) OverallBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	balance, err := overallBalance(s.db.WithContext(ctx), userID)
	if err != nil {
		return decimal.Zero, storageErr(err)
	}
	return balance, nil
}

// GetDashboard processes due recurring rules, then gathers the month's
// summary, transactions and the year's series. Rule processing failures are
// logged and never fail the dashboard.
func (s *summaryService) GetDashboard(ctx context.Context, userID uint, month, year int) (*Dashboard, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	dashboard := &Dashboard{}
	if s.recurring != nil {
		report, err := s.recurring.ProcessDueRules(ctx, userID, s.now())
		if err != nil {
			logger.Get().Warnw("recurring rule processing failed", "user_id", userID, "error", err)
		} else {
			dashboard.Recurring = report
		}
	}

	summary, err := s.GetSummary(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	dashboard.Summary = summary

	transactions, err := s.transactions.ListTransactions(ctx, userID, TransactionFilter{Month: month, Year: year})
	if err != nil {
		return nil, err
	}
	dashboard.Transactions = transactions

	annual, err := s.GetAnnualSeries(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	dashboard.Annual = annual
	return dashboard, nil
}
