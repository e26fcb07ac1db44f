package router

import (
	"gorm.io/gorm"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
)

// NewServices wires every service over db. cardMarker selects the card
// category by name; publisher receives post-commit domain events.
func NewServices(db *gorm.DB, cardMarker string, publisher events.Publisher) Services {
	resolver := services.NewNameMatchResolver(cardMarker)
	transactions := services.NewTransactionService(db)
	recurring := services.NewRecurringService(db, publisher)

	return Services{
		Users:        services.NewUserService(db),
		Transactions: transactions,
		Categories:   services.NewCategoryService(db),
		Summary:      services.NewSummaryService(db, resolver, transactions, recurring),
		Card:         services.NewCardService(db, resolver, publisher),
		PiggyBanks:   services.NewPiggyBankService(db, publisher),
		Recurring:    recurring,
	}
}
