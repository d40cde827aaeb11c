package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "hestia/internal/errors"
	"hestia/internal/models"
	"hestia/internal/services"
)

// CategoryHandler handles category and subcategory requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	Icon         string `json:"icon" binding:"required,max=50"`
	Color        string `json:"color" binding:"required,hex_color"`
	ExpenseType  string `json:"expense_type" binding:"required,expense_type"`
	DisplayOrder *int   `json:"display_order" binding:"omitempty,min=0"`
}

// UpdateCategoryRequest represents the request payload for updating a category.
type UpdateCategoryRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	Icon         string `json:"icon" binding:"required,max=50"`
	Color        string `json:"color" binding:"required,hex_color"`
	ExpenseType  string `json:"expense_type" binding:"required,expense_type"`
	DisplayOrder *int   `json:"display_order" binding:"omitempty,min=0"`
}

// ReorderCategoryRequest represents the request payload for moving a category.
type ReorderCategoryRequest struct {
	DisplayOrder int `json:"display_order" binding:"min=0"`
}

// SubCategoryRequest represents the payload for creating or updating a subcategory.
type SubCategoryRequest struct {
	Name         string           `json:"name" binding:"required,min=1,max=100"`
	Icon         string           `json:"icon" binding:"max=50"`
	DisplayOrder *int             `json:"display_order" binding:"omitempty,min=0"`
	BudgetLimit  *decimal.Decimal `json:"budget_limit"`
	IsMandatory  bool             `json:"is_mandatory"`
	FixedAmount  *decimal.Decimal `json:"fixed_amount"`
}

// CreateCategory handles the creation of a new category.
// @Summary     Create a category
// @Description Create a new expense category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate category name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(
		userID, req.Name, req.Icon, req.Color, models.ExpenseType(req.ExpenseType), req.DisplayOrder,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategories handles listing the user's categories.
// @Summary     Get categories
// @Description Get the authenticated user's active categories with subcategories
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       expense_type query string false "Filter by expense type (monthly/annual)"
// @Success     200 {array} models.Category "Categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var categories []models.Category
	if v := c.Query("expense_type"); v != "" {
		expenseType := models.ExpenseType(v)
		if expenseType != models.ExpenseTypeMonthly && expenseType != models.ExpenseTypeAnnual {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense_type must be 'monthly' or 'annual'"))
			return
		}
		categories, err = h.categoryService.GetUserCategoriesByType(userID, expenseType)
	} else {
		categories, err = h.categoryService.GetUserCategories(userID)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory handles retrieving a specific category.
// @Summary     Get category by ID
// @Description Get a specific category with its subcategories
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category details"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles updating an existing category.
// @Summary     Update category
// @Description Update an existing category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Category ID"
// @Param       request body UpdateCategoryRequest true "Updated category details"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input or category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(
		userID, categoryID, req.Name, req.Icon, req.Color, models.ExpenseType(req.ExpenseType), req.DisplayOrder,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles soft-deleting a category.
// @Summary     Delete category
// @Description Deactivate a category; historical expenses are preserved
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     204 "Category deleted"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderCategory handles moving a category to a new display position.
// @Summary     Reorder category
// @Description Move a category to a new display position within its expense type
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Category ID"
// @Param       request body ReorderCategoryRequest true "Target display order"
// @Success     200 {object} models.Category "Reordered category"
// @Failure     400 {object} ErrorResponse "Invalid input or category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/reorder [put]
func (h *CategoryHandler) ReorderCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReorderCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.ReorderCategory(userID, categoryID, req.DisplayOrder)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateSubCategory handles creating a subcategory under a category.
// @Summary     Create a subcategory
// @Description Create a new subcategory under one of the user's categories
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Category ID"
// @Param       request body SubCategoryRequest true "Subcategory details"
// @Success     201 {object} models.SubCategory "Subcategory created"
// @Failure     400 {object} ErrorResponse "Invalid input or category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate subcategory name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id}/subcategories [post]
func (h *CategoryHandler) CreateSubCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subCategory, err := h.categoryService.CreateSubCategory(
		userID, categoryID, req.Name, req.Icon, req.DisplayOrder, req.BudgetLimit, req.IsMandatory, req.FixedAmount,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sub_category": subCategory})
}

// UpdateSubCategory handles updating an existing subcategory.
// @Summary     Update subcategory
// @Description Update an existing subcategory
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Subcategory ID"
// @Param       request body SubCategoryRequest true "Updated subcategory details"
// @Success     200 {object} models.SubCategory "Updated subcategory"
// @Failure     400 {object} ErrorResponse "Invalid input or subcategory ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subcategory not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subcategories/{id} [put]
func (h *CategoryHandler) UpdateSubCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subCategoryID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	subCategory, err := h.categoryService.UpdateSubCategory(
		userID, subCategoryID, req.Name, req.Icon, req.DisplayOrder, req.BudgetLimit, req.IsMandatory, req.FixedAmount,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sub_category": subCategory})
}

// DeleteSubCategory handles soft-deleting a subcategory.
// @Summary     Delete subcategory
// @Description Deactivate a subcategory; historical expenses are preserved
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subcategory ID"
// @Success     204 "Subcategory deleted"
// @Failure     400 {object} ErrorResponse "Invalid subcategory ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subcategory not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subcategories/{id} [delete]
func (h *CategoryHandler) DeleteSubCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subCategoryID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteSubCategory(userID, subCategoryID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
