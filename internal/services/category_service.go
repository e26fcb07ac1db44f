package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/leoomartinelli/painel-financeiro-martinelli/internal/errors"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category owned by userID.
func (s *categoryService) CreateCategory(ctx context.Context, userID uint, name string, categoryType models.CategoryType) (*models.Category, error) {
	name, err := requireText(name, "category name")
	if err != nil {
		return nil, err
	}
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureUniqueName(db, userID, 0, name, categoryType); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: &userID,
		Name:   name,
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		return nil, storageErr(err)
	}
	return category, nil
}

// ListCategories returns the owner's and the global categories ordered by name.
func (s *categoryService) ListCategories(ctx context.Context, userID uint, categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.WithContext(ctx).Scopes(visibleTo(userID))
	if categoryType != nil {
		if !categoryType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
		}
		q = q.Where("type = ?", *categoryType)
	}

	categories := []models.Category{}
	if err := q.Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, storageErr(err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category visible to the owner.
func (s *categoryService) GetCategoryByID(ctx context.Context, userID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).
		Scopes(visibleTo(userID)).
		Where("id = ?", categoryID).
		First(&category).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrCategoryNotFound)
	}
	return &category, nil
}

// UpdateCategory renames or retypes an owned category. Global categories
// cannot be modified by any owner.
func (s *categoryService) UpdateCategory(ctx context.Context, userID, categoryID uint, name string, categoryType models.CategoryType) (*models.Category, error) {
	name, err := requireText(name, "category name")
	if err != nil {
		return nil, err
	}
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}

	db := s.db.WithContext(ctx)
	category, err := s.getOwned(db, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(db, userID, category.ID, name, categoryType); err != nil {
		return nil, err
	}

	if err := db.Model(category).Updates(map[string]interface{}{
		"name": name,
		"type": categoryType,
	}).Error; err != nil {
		return nil, storageErr(err)
	}
	category.Name = name
	category.Type = categoryType
	return category, nil
}

// DeleteCategory removes an owned category. Transactions and recurring rules
// that referenced it keep existing with no category.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, categoryID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.getOwned(tx, userID, categoryID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return storageErr(err)
		}
		if err := tx.Model(&models.RecurringRule{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return storageErr(err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
}

func (s *categoryService) getOwned(db *gorm.DB, userID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := db.Scopes(ownedBy(userID)).Where("id = ?", categoryID).First(&category).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrCategoryNotFound)
	}
	return &category, nil
}

// ensureUniqueName rejects a second owned category with the same name and
// type, ignoring case. exceptID excludes the category being renamed.
func (s *categoryService) ensureUniqueName(db *gorm.DB, userID, exceptID uint, name string, categoryType models.CategoryType) error {
	q := db.Model(&models.Category{}).
		Scopes(ownedBy(userID)).
		Where("LOWER(name) = ? AND type = ?", strings.ToLower(name), categoryType)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return storageErr(err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}
