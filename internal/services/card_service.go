package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/events"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

// DefaultCardMarker is the name fragment that identifies the card category.
const DefaultCardMarker = "Cartão"

// NameMatchResolver treats the category whose name contains Marker
// (case-insensitively) as the card category. An owner category wins over a
// global one; among equals the lowest id wins.
type NameMatchResolver struct {
	Marker string
}

// NewNameMatchResolver returns a resolver for marker, or for
// DefaultCardMarker when marker is blank.
func NewNameMatchResolver(marker string) NameMatchResolver {
	if strings.TrimSpace(marker) == "" {
		marker = DefaultCardMarker
	}
	return NameMatchResolver{Marker: marker}
}

// Resolve implements CardCategoryResolver. Names are case-folded in Go
// because SQLite's LOWER only folds ASCII.
func (r NameMatchResolver) Resolve(db *gorm.DB, userID uint) (*uint, error) {
	marker := strings.ToLower(strings.TrimSpace(r.Marker))

	var categories []models.Category
	err := db.Model(&models.Category{}).
		Select("id", "name", "user_id").
		Scopes(visibleTo(userID)).
		Order("CASE WHEN user_id IS NULL THEN 1 ELSE 0 END").
		Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		if strings.Contains(strings.ToLower(category.Name), marker) {
			id := category.ID
			return &id, nil
		}
	}
	return nil, nil
}

// cardService reads and settles the card bucket.
type cardService struct {
	db        *gorm.DB
	resolver  CardCategoryResolver
	publisher events.Publisher
}

// NewCardService creates a new CardServicer.
func NewCardService(db *gorm.DB, resolver CardCategoryResolver, publisher events.Publisher) CardServicer {
	return &cardService{db: db, resolver: resolver, publisher: publisher}
}

// GetOpenBucket lists every pending card transaction, oldest first, across
// all months.
func (s *cardService) GetOpenBucket(ctx context.Context, userID uint) (*CardBucket, error) {
	bucket := &CardBucket{Total: decimal.Zero, Items: []models.Transaction{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryID, err := s.resolver.Resolve(tx, userID)
		if err != nil {
			return storageErr(err)
		}
		if categoryID == nil {
			return nil
		}
		bucket.CategoryID = categoryID

		if err := tx.Scopes(ownedBy(userID)).
			Where("category_id = ? AND status = ?", *categoryID, models.TransactionStatusPending).
			Order("date ASC").Order("id ASC").
			Find(&bucket.Items).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, item := range bucket.Items {
		bucket.Total = bucket.Total.Add(item.Amount)
	}
	bucket.Total = bucket.Total.Round(2)
	return bucket, nil
}

// SettleBucket marks every pending card transaction as paid in one statement
// and returns how many were settled.
func (s *cardService) SettleBucket(ctx context.Context, userID uint) (int64, error) {
	var settled int64
	var categoryID *uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		categoryID, err = s.resolver.Resolve(tx, userID)
		if err != nil {
			return storageErr(err)
		}
		if categoryID == nil {
			return nil
		}

		result := tx.Model(&models.Transaction{}).
			Scopes(ownedBy(userID)).
			Where("category_id = ? AND status = ?", *categoryID, models.TransactionStatusPending).
			Update("status", models.TransactionStatusPaid)
		if result.Error != nil {
			return storageErr(result.Error)
		}
		settled = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	if settled > 0 {
		publish(ctx, s.publisher, events.New(events.CardSettled, userID, map[string]interface{}{
			"category_id": *categoryID,
			"settled":     settled,
		}))
	}
	return settled, nil
}
