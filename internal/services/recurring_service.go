package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/leoomartinelli/painel-financeiro-martinelli/internal/errors"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/logger"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

type ruleOutcome int

const (
	ruleCreated ruleOutcome = iota
	ruleAlreadyGenerated
	ruleExhausted
)

// recurringService manages recurring rules and instantiates them.
type recurringService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, publisher events.Publisher) RecurringServicer {
	return &recurringService{db: db, publisher: publisher}
}

// ListRecurringRules returns the owner's rules ordered by day of month.
func (s *recurringService) ListRecurringRules(ctx context.Context, userID uint) ([]models.RecurringRule, error) {
	rules := []models.RecurringRule{}
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Scopes(ownedBy(userID)).
		Order("day_of_month ASC").Order("id ASC").
		Find(&rules).Error; err != nil {
		return nil, storageErr(err)
	}
	return rules, nil
}

// CreateRecurringRule stores a new rule. Nothing is generated until the next
// processing pass.
func (s *recurringService) CreateRecurringRule(ctx context.Context, userID uint, in RecurringRuleInput) (*models.RecurringRule, error) {
	description, err := requireText(in.Description, "description")
	if err != nil {
		return nil, err
	}
	amount, err := positiveAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if in.DayOfMonth < 1 || in.DayOfMonth > 31 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "day_of_month must be between 1 and 31")
	}
	if !in.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}
	if in.ParcelLimit != nil && *in.ParcelLimit < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "parcel_limit must be at least 1")
	}

	db := s.db.WithContext(ctx)
	if err := ensureCategoryVisible(db, userID, in.CategoryID); err != nil {
		return nil, err
	}

	rule := &models.RecurringRule{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		DayOfMonth:  in.DayOfMonth,
		Type:        in.Type,
		CategoryID:  in.CategoryID,
		ParcelLimit: in.ParcelLimit,
	}
	if err := db.Create(rule).Error; err != nil {
		return nil, storageErr(err)
	}
	return rule, nil
}

// DeleteRecurringRule removes a rule. Transactions it generated stay in the
// ledger without the back-reference.
func (s *recurringService) DeleteRecurringRule(ctx context.Context, userID, ruleID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rule models.RecurringRule
		if err := tx.Scopes(ownedBy(userID)).Where("id = ?", ruleID).First(&rule).Error; err != nil {
			return notFoundOr(err, apperrors.ErrRecurringRuleNotFound)
		}

		if err := tx.Model(&models.Transaction{}).
			Scopes(ownedBy(userID)).
			Where("recurring_rule_id = ?", rule.ID).
			Update("recurring_rule_id", nil).Error; err != nil {
			return storageErr(err)
		}
		if err := tx.Delete(&rule).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
}

// ProcessDueRules instantiates, for each of the owner's rules, at most one
// pending transaction in the month of today. A rule that fails is recorded
// in the report and the pass moves on; only failing to load the rules is
// returned as an error.
func (s *recurringService) ProcessDueRules(ctx context.Context, userID uint, today time.Time) (*ProcessReport, error) {
	today = models.DateOnly(today)

	var rules []models.RecurringRule
	if err := s.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Order("id ASC").
		Find(&rules).Error; err != nil {
		return nil, storageErr(err)
	}

	report := &ProcessReport{Failures: []RuleFailure{}}
	for i := range rules {
		rule := &rules[i]
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, RuleFailure{RuleID: rule.ID, Error: err.Error()})
			continue
		}

		outcome, err := s.processRule(ctx, rule, today)
		if err != nil {
			logger.Get().Warnw("failed to process recurring rule",
				"rule_id", rule.ID,
				"user_id", userID,
				"error", err,
			)
			report.Failures = append(report.Failures, RuleFailure{RuleID: rule.ID, Error: err.Error()})
			continue
		}

		switch outcome {
		case ruleCreated:
			report.Created++
		case ruleAlreadyGenerated:
			report.SkippedExisting++
		case ruleExhausted:
			report.SkippedExhausted++
		}
	}

	if report.Created > 0 || len(report.Failures) > 0 {
		publish(ctx, s.publisher, events.New(events.RecurringProcessed, userID, map[string]interface{}{
			"created":  report.Created,
			"failures": len(report.Failures),
			"month":    int(today.Month()),
			"year":     today.Year(),
		}))
	}
	return report, nil
}

// processRule runs the check-and-insert for one rule in its own transaction.
// The rule row is locked so that concurrent passes cannot both insert.
func (s *recurringService) processRule(ctx context.Context, rule *models.RecurringRule, today time.Time) (ruleOutcome, error) {
	var outcome ruleOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.RecurringRule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", rule.ID, rule.UserID).
			First(&locked).Error; err != nil {
			return notFoundOr(err, apperrors.ErrRecurringRuleNotFound)
		}

		linked := func() *gorm.DB {
			return tx.Model(&models.Transaction{}).
				Where("user_id = ? AND recurring_rule_id = ?", locked.UserID, locked.ID)
		}

		var generated int64
		if err := linked().Count(&generated).Error; err != nil {
			return err
		}
		if locked.Exhausted(generated) {
			outcome = ruleExhausted
			return nil
		}

		start, end := models.MonthRange(int(today.Month()), today.Year())
		var thisMonth int64
		if err := linked().Where("date >= ? AND date < ?", start, end).Count(&thisMonth).Error; err != nil {
			return err
		}
		if thisMonth > 0 {
			outcome = ruleAlreadyGenerated
			return nil
		}

		description := locked.Description
		if locked.ParcelLimit != nil {
			description = fmt.Sprintf("%s (%d/%d)", description, generated+1, *locked.ParcelLimit)
		}

		ruleID := locked.ID
		transaction := &models.Transaction{
			UserID:          locked.UserID,
			Description:     description,
			Amount:          locked.Amount,
			Date:            locked.DueDate(today),
			Type:            locked.Type,
			Status:          models.TransactionStatusPending,
			CategoryID:      locked.CategoryID,
			RecurringRuleID: &ruleID,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}
		outcome = ruleCreated
		return nil
	})
	return outcome, err
}
