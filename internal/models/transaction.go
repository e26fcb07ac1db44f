package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// TransactionStatus distinguishes realized entries from pending ones
type TransactionStatus string

const (
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusPending TransactionStatus = "pending"
)

// Valid reports whether s is a known transaction status.
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPaid || s == TransactionStatusPending
}

// Transaction represents a single ledger entry owned by a user
type Transaction struct {
	Base
	UserID          uint              `gorm:"not null;index" json:"user_id"`
	Description     string            `gorm:"not null" json:"description"`
	Amount          decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`
	Date            time.Time         `gorm:"not null;index" json:"date"`
	Type            TransactionType   `gorm:"not null" json:"type"`
	Status          TransactionStatus `gorm:"not null;default:'paid'" json:"status"`
	CategoryID      *uint             `gorm:"index" json:"category_id,omitempty"`
	Note            *string           `json:"note,omitempty"`
	RecurringRuleID *uint             `gorm:"index" json:"recurring_rule_id,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
