package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPiggyBankColor is used when a piggy bank is created without a color.
const DefaultPiggyBankColor = "bg-blue-600"

// MoveDirection is the direction of a piggy bank movement
type MoveDirection string

const (
	MoveDeposit  MoveDirection = "deposit"
	MoveWithdraw MoveDirection = "withdraw"
)

// PiggyBank is a named sub-balance funded from the main ledger. Balance is only
// changed by movements; every movement is mirrored by one paid transaction.
type PiggyBank struct {
	Base
	UserID  uint            `gorm:"not null;index" json:"user_id"`
	Name    string          `gorm:"not null" json:"name"`
	Target  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"target"`
	Balance decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"`
	Color   string          `gorm:"not null" json:"color"`
}

// BeforeCreate hook fills presentation defaults
func (p *PiggyBank) BeforeCreate(tx *gorm.DB) error {
	if p.Color == "" {
		p.Color = DefaultPiggyBankColor
	}
	return nil
}
