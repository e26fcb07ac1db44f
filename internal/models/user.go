package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Name        string     `json:"name"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	ShareLink   *string    `json:"share_link,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	PiggyBanks   []PiggyBank   `gorm:"foreignKey:UserID" json:"piggy_banks,omitempty"`
}
