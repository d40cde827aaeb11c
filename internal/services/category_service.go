package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "hestia/internal/errors"
	"hestia/internal/models"
)

// categoryService handles category and subcategory business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category. When no display order is given the
// category is appended after the user's existing categories of the same
// expense type.
func (s *categoryService) CreateCategory(
	userID string,
	name string,
	icon string,
	color string,
	expenseType models.ExpenseType,
	displayOrder *int,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	order := 0
	if displayOrder != nil {
		order = *displayOrder
	} else {
		var existing int64
		if err := s.db.Model(&models.Category{}).
			Where("user_id = ? AND expense_type = ? AND is_active = ?", userID, expenseType, true).
			Count(&existing).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		order = int(existing)
	}

	category := &models.Category{
		UserID:       userID,
		Name:         name,
		Icon:         icon,
		Color:        color,
		ExpenseType:  expenseType,
		DisplayOrder: order,
		IsActive:     true,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves all active categories for a user with their
// active subcategories, ordered by display order.
func (s *categoryService) GetUserCategories(userID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("display_order")
		}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("display_order").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetUserCategoriesByType retrieves active categories of a single expense type.
func (s *categoryService) GetUserCategoriesByType(userID string, expenseType models.ExpenseType) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("display_order")
		}).
		Where("user_id = ? AND expense_type = ? AND is_active = ?", userID, expenseType, true).
		Order("display_order").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := s.db.
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("display_order")
		}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(
	userID string,
	categoryID string,
	name string,
	icon string,
	color string,
	expenseType models.ExpenseType,
	displayOrder *int,
) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         name,
		"icon":         icon,
		"color":        color,
		"expense_type": expenseType,
	}
	if displayOrder != nil {
		updates["display_order"] = *displayOrder
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// DeleteCategory soft-deletes a category by flipping its active flag.
// Historical expenses and budgets keep their reference to the row; the
// aggregation queries exclude inactive categories.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	if err := s.db.Model(category).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ReorderCategory moves a category to a new display position, shifting the
// other active categories of the same expense type to close the gap.
func (s *categoryService) ReorderCategory(userID, categoryID string, newOrder int) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	var sameType []models.Category
	if err := s.db.
		Where("user_id = ? AND expense_type = ? AND is_active = ?", userID, category.ExpenseType, true).
		Order("display_order").
		Find(&sameType).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	oldOrder := category.DisplayOrder

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range sameType {
			c := &sameType[i]
			current := c.DisplayOrder
			target := current

			switch {
			case c.ID == categoryID:
				target = newOrder
			case oldOrder < newOrder && current > oldOrder && current <= newOrder:
				target = current - 1
			case oldOrder > newOrder && current >= newOrder && current < oldOrder:
				target = current + 1
			}

			if target != current {
				if err := tx.Model(c).Update("display_order", target).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	category.DisplayOrder = newOrder
	return category, nil
}

// CreateSubCategory creates a subcategory under one of the user's categories.
func (s *categoryService) CreateSubCategory(
	userID string,
	categoryID string,
	name string,
	icon string,
	displayOrder *int,
	budgetLimit *decimal.Decimal,
	isMandatory bool,
	fixedAmount *decimal.Decimal,
) (*models.SubCategory, error) {
	if _, err := s.GetCategoryByID(userID, categoryID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.SubCategory{}).
		Where("category_id = ? AND LOWER(name) = LOWER(?)", categoryID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateSubCategory
	}

	order := 0
	if displayOrder != nil {
		order = *displayOrder
	}

	subCategory := &models.SubCategory{
		CategoryID:   categoryID,
		Name:         name,
		Icon:         icon,
		DisplayOrder: order,
		BudgetLimit:  budgetLimit,
		IsMandatory:  isMandatory,
		FixedAmount:  fixedAmount,
		IsActive:     true,
	}

	if err := s.db.Create(subCategory).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return subCategory, nil
}

// UpdateSubCategory updates an existing subcategory.
func (s *categoryService) UpdateSubCategory(
	userID string,
	subCategoryID string,
	name string,
	icon string,
	displayOrder *int,
	budgetLimit *decimal.Decimal,
	isMandatory bool,
	fixedAmount *decimal.Decimal,
) (*models.SubCategory, error) {
	subCategory, err := s.getOwnedSubCategory(userID, subCategoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         name,
		"icon":         icon,
		"budget_limit": budgetLimit,
		"is_mandatory": isMandatory,
		"fixed_amount": fixedAmount,
	}
	if displayOrder != nil {
		updates["display_order"] = *displayOrder
	}

	if err := s.db.Model(subCategory).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return subCategory, nil
}

// DeleteSubCategory soft-deletes a subcategory.
func (s *categoryService) DeleteSubCategory(userID, subCategoryID string) error {
	subCategory, err := s.getOwnedSubCategory(userID, subCategoryID)
	if err != nil {
		return err
	}

	if err := s.db.Model(subCategory).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// getOwnedSubCategory loads a subcategory and verifies the owning category
// belongs to the user.
func (s *categoryService) getOwnedSubCategory(userID, subCategoryID string) (*models.SubCategory, error) {
	var subCategory models.SubCategory
	err := s.db.
		Joins("JOIN categories ON categories.id = sub_categories.category_id").
		Where("sub_categories.id = ? AND categories.user_id = ?", subCategoryID, userID).
		First(&subCategory).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &subCategory, nil
}
