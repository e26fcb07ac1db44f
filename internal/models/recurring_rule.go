package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringRule is a template that instantiates one pending transaction per
// calendar month. ParcelLimit caps the total number of instantiations.
type RecurringRule struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Description string          `gorm:"not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	DayOfMonth  int             `gorm:"not null" json:"day_of_month"`
	Type        TransactionType `gorm:"not null" json:"type"`
	CategoryID  *uint           `json:"category_id,omitempty"`
	ParcelLimit *int            `json:"parcel_limit,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// DueDate returns the rule's date within the month of ref, clamping the day
// to the month's last day.
func (r *RecurringRule) DueDate(ref time.Time) time.Time {
	lastDay := time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := r.DayOfMonth
	if day > lastDay {
		day = lastDay
	}
	return time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Exhausted reports whether the rule has produced all of its parcels.
func (r *RecurringRule) Exhausted(generated int64) bool {
	return r.ParcelLimit != nil && generated >= int64(*r.ParcelLimit)
}
