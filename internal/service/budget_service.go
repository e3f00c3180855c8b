package service

import (
	"errors"
	"fmt"

	"github.com/pocketplan/pocketplan-backend/internal/domain"
	"github.com/pocketplan/pocketplan-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget mutations: create, amount update, delete.
// Every successful mutation invalidates the workspace's cached overviews
// before returning, so a subsequent read is guaranteed fresh.
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	subcategoryRepo domain.SubcategoryRepository
	groupRepo       domain.BudgetGroupRepository
	cache           OverviewCache
	eventPublisher  websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo domain.BudgetRepository,
	categoryRepo domain.CategoryRepository,
	subcategoryRepo domain.SubcategoryRepository,
	groupRepo domain.BudgetGroupRepository,
) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		subcategoryRepo: subcategoryRepo,
		groupRepo:       groupRepo,
	}
}

// SetCache installs the overview cache to invalidate on mutations
func (s *BudgetService) SetCache(cache OverviewCache) {
	s.cache = cache
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateBudgetInput holds the input for creating a budget. Period
// defaults to the current month when nil; later months are materialized
// on demand by propagation rather than eagerly.
type CreateBudgetInput struct {
	Period        *domain.Period
	Amount        decimal.Decimal
	CategoryID    *int32
	SubcategoryID *int32
	GroupID       *int32
	CategoryIDs   []int32
	IsRecurring   *bool
}

// CreateBudget creates a budget after validating the exactly-one-scope
// invariant, reference ownership and scope-key uniqueness in the target
// period. Grouped budgets persist their category links in the same
// transaction as the row itself.
func (s *BudgetService) CreateBudget(workspaceID int32, input CreateBudgetInput) (*domain.Budget, error) {
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	period := domain.CurrentPeriod()
	if input.Period != nil {
		p, err := domain.NewPeriod(input.Period.Year, input.Period.Month)
		if err != nil {
			return nil, err
		}
		period = p
	}

	isRecurring := true
	if input.IsRecurring != nil {
		isRecurring = *input.IsRecurring
	}

	budget := &domain.Budget{
		WorkspaceID:   workspaceID,
		Period:        period,
		Amount:        input.Amount,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		GroupID:       input.GroupID,
		IsRecurring:   isRecurring,
	}
	if err := budget.ValidateScope(); err != nil {
		return nil, err
	}
	if budget.GroupID == nil && len(input.CategoryIDs) > 0 {
		return nil, domain.ErrCategoriesWithoutGroup
	}

	if err := s.validateReferences(workspaceID, budget, input.CategoryIDs); err != nil {
		return nil, err
	}

	// Pre-check uniqueness for a friendly error; the database constraint
	// remains the backstop under concurrency.
	existing, err := s.budgetRepo.FindByScope(workspaceID, period, budget.Scope())
	if err != nil && !errors.Is(err, domain.ErrBudgetNotFound) {
		return nil, fmt.Errorf("check existing budget: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrBudgetAlreadyExists
	}

	created, err := s.budgetRepo.Create(&domain.BudgetDraft{Budget: budget, CategoryIDs: input.CategoryIDs})
	if err != nil {
		return nil, err
	}

	s.invalidate(workspaceID)
	s.publishEvent(workspaceID, websocket.BudgetCreated(created))
	return created, nil
}

// UpdateAmount changes a budget's ceiling. Only the amount is mutable;
// ownership is verified by scoping the lookup to the workspace.
func (s *BudgetService) UpdateAmount(workspaceID int32, id int32, amount decimal.Decimal) (*domain.Budget, error) {
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.budgetRepo.GetByID(workspaceID, id); err != nil {
		return nil, err
	}

	updated, err := s.budgetRepo.UpdateAmount(workspaceID, id, amount)
	if err != nil {
		return nil, err
	}

	s.invalidate(workspaceID)
	s.publishEvent(workspaceID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// DeleteBudget removes the single period's row only; copies materialized
// into other periods are independent rows and stay untouched.
func (s *BudgetService) DeleteBudget(workspaceID int32, id int32) error {
	budget, err := s.budgetRepo.GetByID(workspaceID, id)
	if err != nil {
		return err
	}

	if err := s.budgetRepo.Delete(workspaceID, id); err != nil {
		return err
	}

	s.invalidate(workspaceID)
	s.publishEvent(workspaceID, websocket.BudgetDeleted(budget))
	return nil
}

func (s *BudgetService) validateReferences(workspaceID int32, budget *domain.Budget, categoryIDs []int32) error {
	if budget.GroupID != nil {
		if _, err := s.groupRepo.GetByID(workspaceID, *budget.GroupID); err != nil {
			return err
		}
		if len(categoryIDs) == 0 {
			return domain.ErrGroupCategoriesRequired
		}
		for _, categoryID := range categoryIDs {
			if _, err := s.categoryRepo.GetByID(workspaceID, categoryID); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := s.categoryRepo.GetByID(workspaceID, *budget.CategoryID); err != nil {
		return err
	}
	if budget.SubcategoryID != nil {
		sub, err := s.subcategoryRepo.GetByID(workspaceID, *budget.SubcategoryID)
		if err != nil {
			return err
		}
		if sub.CategoryID != *budget.CategoryID {
			return domain.ErrSubcategoryNotFound
		}
	}
	return nil
}

func (s *BudgetService) invalidate(workspaceID int32) {
	if s.cache != nil {
		s.cache.InvalidateTags(BudgetCacheTag(workspaceID))
	}
}

func (s *BudgetService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}
