package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pocketplan/pocketplan-backend/internal/domain"
	"github.com/pocketplan/pocketplan-backend/internal/middleware"
	"github.com/pocketplan/pocketplan-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	queryService  *service.BudgetQueryService
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(queryService *service.BudgetQueryService, budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		queryService:  queryService,
		budgetService: budgetService,
	}
}

// CreateBudgetRequest represents the create request body
type CreateBudgetRequest struct {
	Amount        string  `json:"amount"`
	Year          *int    `json:"year,omitempty"`
	Month         *int    `json:"month,omitempty"`
	CategoryID    *int32  `json:"categoryId,omitempty"`
	SubcategoryID *int32  `json:"subcategoryId,omitempty"`
	GroupID       *int32  `json:"groupId,omitempty"`
	CategoryIDs   []int32 `json:"categoryIds,omitempty"`
	IsRecurring   *bool   `json:"isRecurring,omitempty"`
}

// UpdateBudgetRequest represents the amount update request body
type UpdateBudgetRequest struct {
	Amount string `json:"amount"`
}

// BudgetResponse represents a single budget
type BudgetResponse struct {
	ID            int32   `json:"id"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Amount        string  `json:"amount"`
	CategoryID    *int32  `json:"categoryId,omitempty"`
	SubcategoryID *int32  `json:"subcategoryId,omitempty"`
	GroupID       *int32  `json:"groupId,omitempty"`
	IsRecurring   bool    `json:"isRecurring"`
	CategoryIDs   []int32 `json:"categoryIds,omitempty"`
}

// BudgetOverviewItemResponse represents a budget with its spend and status
type BudgetOverviewItemResponse struct {
	BudgetResponse
	DisplayName string `json:"displayName"`
	Spent       string `json:"spent"`
	Percentage  string `json:"percentage"`
	Status      string `json:"status"`
}

// BudgetOverviewResponse represents the budget overview for a month
type BudgetOverviewResponse struct {
	Year          int                           `json:"year"`
	Month         int                           `json:"month"`
	TotalBudgeted string                        `json:"totalBudgeted"`
	TotalSpent    string                        `json:"totalSpent"`
	Budgets       []*BudgetOverviewItemResponse `json:"budgets"`
}

// GetBudgets handles GET /api/v1/budgets/:year/:month
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month", nil)
	}

	overview, err := h.queryService.ListForPeriod(workspaceID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPeriod) {
			return NewValidationError(c, "Invalid period", nil)
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("year", year).Int("month", month).Msg("Failed to get budget overview")
		return NewInternalError(c, "Failed to get budget overview")
	}

	return c.JSON(http.StatusOK, toBudgetOverviewResponse(overview))
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{{Field: "amount", Message: "must be a decimal number"}})
	}

	input := service.CreateBudgetInput{
		Amount:        amount,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		GroupID:       req.GroupID,
		CategoryIDs:   req.CategoryIDs,
		IsRecurring:   req.IsRecurring,
	}
	if req.Year != nil && req.Month != nil {
		input.Period = &domain.Period{Year: *req.Year, Month: *req.Month}
	}

	budget, err := h.budgetService.CreateBudget(workspaceID, input)
	if err != nil {
		return h.mapBudgetError(c, err, workspaceID, "Failed to create budget")
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(budget, req.CategoryIDs))
}

// UpdateBudget handles PATCH /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return NewValidationError(c, "Invalid budget id", nil)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{{Field: "amount", Message: "must be a decimal number"}})
	}

	budget, err := h.budgetService.UpdateAmount(workspaceID, int32(id), amount)
	if err != nil {
		return h.mapBudgetError(c, err, workspaceID, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget, nil))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return NewValidationError(c, "Invalid budget id", nil)
	}

	if err := h.budgetService.DeleteBudget(workspaceID, int32(id)); err != nil {
		return h.mapBudgetError(c, err, workspaceID, "Failed to delete budget")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *BudgetHandler) mapBudgetError(c echo.Context, err error, workspaceID int32, logMsg string) error {
	switch {
	case errors.Is(err, domain.ErrBudgetAlreadyExists):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidScope),
		errors.Is(err, domain.ErrGroupWithSubcategory),
		errors.Is(err, domain.ErrGroupCategoriesRequired),
		errors.Is(err, domain.ErrCategoriesWithoutGroup):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrBudgetNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrSubcategoryNotFound),
		errors.Is(err, domain.ErrGroupNotFound):
		return NewNotFoundError(c, err.Error())
	default:
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg(logMsg)
		return NewInternalError(c, logMsg)
	}
}

func toBudgetResponse(b *domain.Budget, categoryIDs []int32) BudgetResponse {
	return BudgetResponse{
		ID:            b.ID,
		Year:          b.Period.Year,
		Month:         b.Period.Month,
		Amount:        b.Amount.StringFixed(2),
		CategoryID:    b.CategoryID,
		SubcategoryID: b.SubcategoryID,
		GroupID:       b.GroupID,
		IsRecurring:   b.IsRecurring,
		CategoryIDs:   categoryIDs,
	}
}

func toBudgetOverviewResponse(overview *service.BudgetOverview) BudgetOverviewResponse {
	items := make([]*BudgetOverviewItemResponse, len(overview.Budgets))
	for i, item := range overview.Budgets {
		items[i] = &BudgetOverviewItemResponse{
			BudgetResponse: toBudgetResponse(item.Budget, item.CategoryIDs),
			DisplayName:    item.DisplayName,
			Spent:          item.Spent.StringFixed(2),
			Percentage:     item.Percentage.StringFixed(2),
			Status:         string(item.Status),
		}
	}
	return BudgetOverviewResponse{
		Year:          overview.Period.Year,
		Month:         overview.Period.Month,
		TotalBudgeted: overview.TotalBudgeted.StringFixed(2),
		TotalSpent:    overview.TotalSpent.StringFixed(2),
		Budgets:       items,
	}
}
