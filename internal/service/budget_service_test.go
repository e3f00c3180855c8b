package service

import (
	"errors"
	"testing"
	"time"

	"github.com/pocketplan/pocketplan-backend/internal/cache"
	"github.com/pocketplan/pocketplan-backend/internal/domain"
	"github.com/pocketplan/pocketplan-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

type budgetFixture struct {
	budgetRepo      *testutil.MockBudgetRepository
	categoryRepo    *testutil.MockCategoryRepository
	subcategoryRepo *testutil.MockSubcategoryRepository
	groupRepo       *testutil.MockBudgetGroupRepository
	publisher       *testutil.MockEventPublisher
	service         *BudgetService
}

func newBudgetFixture() *budgetFixture {
	f := &budgetFixture{
		budgetRepo:      testutil.NewMockBudgetRepository(),
		categoryRepo:    testutil.NewMockCategoryRepository(),
		subcategoryRepo: testutil.NewMockSubcategoryRepository(),
		groupRepo:       testutil.NewMockBudgetGroupRepository(),
		publisher:       &testutil.MockEventPublisher{},
	}
	f.service = NewBudgetService(f.budgetRepo, f.categoryRepo, f.subcategoryRepo, f.groupRepo)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func TestCreateBudget_Success_CategoryScope(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, WorkspaceID: workspaceID, Name: "Groceries"})

	budget, err := f.service.CreateBudget(workspaceID, CreateBudgetInput{
		Period:     &domain.Period{Year: 2026, Month: 3},
		Amount:     decimal.NewFromInt(500),
		CategoryID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if budget.ID == 0 {
		t.Error("Expected an assigned ID")
	}
	if !budget.IsRecurring {
		t.Error("Expected recurring to default to true")
	}
	if budget.WorkspaceID != workspaceID {
		t.Errorf("Expected workspace %d, got %d", workspaceID, budget.WorkspaceID)
	}

	if len(f.publisher.Events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(f.publisher.Events))
	}
	if f.publisher.Events[0].Event.Type != "budget.created" {
		t.Errorf("Expected budget.created event, got %s", f.publisher.Events[0].Event.Type)
	}
}

func TestCreateBudget_DefaultsToCurrentPeriod(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, WorkspaceID: workspaceID, Name: "Groceries"})

	budget, err := f.service.CreateBudget(workspaceID, CreateBudgetInput{
		Amount:     decimal.NewFromInt(500),
		CategoryID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if budget.Period != domain.CurrentPeriod() {
		t.Errorf("Expected current period, got %s", budget.Period)
	}
}

func TestCreateBudget_NegativeAmount(t *testing.T) {
	f := newBudgetFixture()

	_, err := f.service.CreateBudget(1, CreateBudgetInput{
		Amount:     decimal.NewFromInt(-10),
		CategoryID: int32Ptr(1),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreateBudget_InvalidPeriod(t *testing.T) {
	f := newBudgetFixture()

	_, err := f.service.CreateBudget(1, CreateBudgetInput{
		Period:     &domain.Period{Year: 2026, Month: 13},
		Amount:     decimal.NewFromInt(10),
		CategoryID: int32Ptr(1),
	})
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("Expected ErrInvalidPeriod, got %v", err)
	}
}

func TestCreateBudget_ScopeExclusivity(t *testing.T) {
	f := newBudgetFixture()

	_, err := f.service.CreateBudget(1, CreateBudgetInput{
		Amount:     decimal.NewFromInt(10),
		CategoryID: int32Ptr(1),
		GroupID:    int32Ptr(2),
	})
	if !errors.Is(err, domain.ErrInvalidScope) {
		t.Errorf("Expected ErrInvalidScope for category+group, got %v", err)
	}

	_, err = f.service.CreateBudget(1, CreateBudgetInput{
		Amount: decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrInvalidScope) {
		t.Errorf("Expected ErrInvalidScope for no scope, got %v", err)
	}

	_, err = f.service.CreateBudget(1, CreateBudgetInput{
		Amount:        decimal.NewFromInt(10),
		GroupID:       int32Ptr(2),
		SubcategoryID: int32Ptr(3),
	})
	if !errors.Is(err, domain.ErrGroupWithSubcategory) {
		t.Errorf("Expected ErrGroupWithSubcategory, got %v", err)
	}
}

func TestCreateBudget_CategoriesWithoutGroup(t *testing.T) {
	f := newBudgetFixture()
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, WorkspaceID: 1, Name: "Groceries"})

	_, err := f.service.CreateBudget(1, CreateBudgetInput{
		Amount:      decimal.NewFromInt(10),
		CategoryID:  int32Ptr(1),
		CategoryIDs: []int32{1, 2},
	})
	if !errors.Is(err, domain.ErrCategoriesWithoutGroup) {
		t.Errorf("Expected ErrCategoriesWithoutGroup, got %v", err)
	}
}

func TestCreateBudget_GroupRequiresCategories(t *testing.T) {
	f := newBudgetFixture()
	f.groupRepo.AddGroup(&domain.BudgetGroup{ID: 5, WorkspaceID: 1, Name: "Essentials"})

	_, err := f.service.CreateBudget(1, CreateBudgetInput{
		Amount:  decimal.NewFromInt(10),
		GroupID: int32Ptr(5),
	})
	if !errors.Is(err, domain.ErrGroupCategoriesRequired) {
		t.Errorf("Expected ErrGroupCategoriesRequired, got %v", err)
	}
}

func TestCreateBudget_UnknownReferences(t *testing.T) {
	f := newBudgetFixture()

	_, err := f.service.CreateBudget(1, CreateBudgetInput{
		Amount:     decimal.NewFromInt(10),
		CategoryID: int32Ptr(99),
	})
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound, got %v", err)
	}

	_, err = f.service.CreateBudget(1, CreateBudgetInput{
		Amount:      decimal.NewFromInt(10),
		GroupID:     int32Ptr(99),
		CategoryIDs: []int32{1},
	})
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("Expected ErrGroupNotFound, got %v", err)
	}
}

func TestCreateBudget_SubcategoryMustBelongToCategory(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, WorkspaceID: workspaceID, Name: "Food"})
	f.categoryRepo.AddCategory(&domain.Category{ID: 2, WorkspaceID: workspaceID, Name: "Travel"})
	// Subcategory 10 hangs off category 2, not 1
	f.subcategoryRepo.AddSubcategory(&domain.Subcategory{ID: 10, CategoryID: 2, Name: "Flights"}, workspaceID)

	_, err := f.service.CreateBudget(workspaceID, CreateBudgetInput{
		Amount:        decimal.NewFromInt(10),
		CategoryID:    int32Ptr(1),
		SubcategoryID: int32Ptr(10),
	})
	if !errors.Is(err, domain.ErrSubcategoryNotFound) {
		t.Errorf("Expected ErrSubcategoryNotFound, got %v", err)
	}
}

func TestCreateBudget_DuplicateScopeConflict(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, WorkspaceID: workspaceID, Name: "Groceries"})

	period := &domain.Period{Year: 2026, Month: 3}
	if _, err := f.service.CreateBudget(workspaceID, CreateBudgetInput{
		Period:     period,
		Amount:     decimal.NewFromInt(500),
		CategoryID: int32Ptr(1),
	}); err != nil {
		t.Fatalf("Expected first create to succeed, got %v", err)
	}

	_, err := f.service.CreateBudget(workspaceID, CreateBudgetInput{
		Period:     period,
		Amount:     decimal.NewFromInt(700),
		CategoryID: int32Ptr(1),
	})
	if !errors.Is(err, domain.ErrBudgetAlreadyExists) {
		t.Errorf("Expected ErrBudgetAlreadyExists, got %v", err)
	}
}

func TestCreateBudget_SameScopeDifferentPeriodsAllowed(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, WorkspaceID: workspaceID, Name: "Groceries"})

	for month := 1; month <= 2; month++ {
		if _, err := f.service.CreateBudget(workspaceID, CreateBudgetInput{
			Period:     &domain.Period{Year: 2026, Month: month},
			Amount:     decimal.NewFromInt(500),
			CategoryID: int32Ptr(1),
		}); err != nil {
			t.Fatalf("Expected create for month %d to succeed, got %v", month, err)
		}
	}
}

func TestCreateBudget_GroupedLinkFailureLeavesNoRow(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	f.groupRepo.AddGroup(&domain.BudgetGroup{ID: 5, WorkspaceID: workspaceID, Name: "Essentials"})
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, WorkspaceID: workspaceID, Name: "Groceries"})
	f.budgetRepo.FailOnLinks = errors.New("link insert failed")

	_, err := f.service.CreateBudget(workspaceID, CreateBudgetInput{
		Period:      &domain.Period{Year: 2026, Month: 3},
		Amount:      decimal.NewFromInt(500),
		GroupID:     int32Ptr(5),
		CategoryIDs: []int32{1},
	})
	if err == nil {
		t.Fatal("Expected error when link insert fails")
	}

	if len(f.budgetRepo.Budgets) != 0 {
		t.Errorf("Expected no budget row after rollback, got %d", len(f.budgetRepo.Budgets))
	}
	if len(f.publisher.Events) != 0 {
		t.Errorf("Expected no event after failed create, got %d", len(f.publisher.Events))
	}
}

func TestUpdateAmount_Success(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	created := f.budgetRepo.AddBudget(&domain.Budget{
		WorkspaceID: workspaceID,
		Period:      domain.Period{Year: 2026, Month: 3},
		Amount:      decimal.NewFromInt(500),
		CategoryID:  int32Ptr(1),
	})

	updated, err := f.service.UpdateAmount(workspaceID, created.ID, decimal.NewFromInt(750))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(750)) {
		t.Errorf("Expected amount 750, got %s", updated.Amount)
	}
	if len(f.publisher.Events) != 1 || f.publisher.Events[0].Event.Type != "budget.updated" {
		t.Errorf("Expected a budget.updated event, got %+v", f.publisher.Events)
	}
}

func TestUpdateAmount_NegativeAmount(t *testing.T) {
	f := newBudgetFixture()

	_, err := f.service.UpdateAmount(1, 1, decimal.NewFromInt(-5))
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestUpdateAmount_OtherWorkspaceBudget(t *testing.T) {
	f := newBudgetFixture()
	created := f.budgetRepo.AddBudget(&domain.Budget{
		WorkspaceID: 2,
		Period:      domain.Period{Year: 2026, Month: 3},
		Amount:      decimal.NewFromInt(500),
		CategoryID:  int32Ptr(1),
	})

	_, err := f.service.UpdateAmount(1, created.ID, decimal.NewFromInt(750))
	if !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("Expected ErrBudgetNotFound across workspaces, got %v", err)
	}
}

func TestDeleteBudget_Success(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	created := f.budgetRepo.AddBudget(&domain.Budget{
		WorkspaceID: workspaceID,
		Period:      domain.Period{Year: 2026, Month: 3},
		Amount:      decimal.NewFromInt(500),
		CategoryID:  int32Ptr(1),
	})

	if err := f.service.DeleteBudget(workspaceID, created.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(f.budgetRepo.Budgets) != 0 {
		t.Error("Expected the budget to be removed")
	}
	if len(f.publisher.Events) != 1 || f.publisher.Events[0].Event.Type != "budget.deleted" {
		t.Errorf("Expected a budget.deleted event, got %+v", f.publisher.Events)
	}
}

func TestDeleteBudget_LeavesOtherPeriodsIntact(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	mar := f.budgetRepo.AddBudget(&domain.Budget{
		WorkspaceID: workspaceID,
		Period:      domain.Period{Year: 2026, Month: 3},
		Amount:      decimal.NewFromInt(500),
		CategoryID:  int32Ptr(1),
		IsRecurring: true,
	})
	apr := f.budgetRepo.AddBudget(&domain.Budget{
		WorkspaceID: workspaceID,
		Period:      domain.Period{Year: 2026, Month: 4},
		Amount:      decimal.NewFromInt(500),
		CategoryID:  int32Ptr(1),
		IsRecurring: true,
	})

	if err := f.service.DeleteBudget(workspaceID, mar.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := f.budgetRepo.GetByID(workspaceID, apr.ID); err != nil {
		t.Errorf("Expected the April copy to survive, got %v", err)
	}
}

func TestDeleteBudget_NotFound(t *testing.T) {
	f := newBudgetFixture()

	if err := f.service.DeleteBudget(1, 99); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("Expected ErrBudgetNotFound, got %v", err)
	}
}

func TestMutations_InvalidateCachedOverviews(t *testing.T) {
	f := newBudgetFixture()
	workspaceID := int32(1)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, WorkspaceID: workspaceID, Name: "Groceries"})

	overviewCache := cache.NewTagged[*BudgetOverview](10, time.Minute)
	f.service.SetCache(overviewCache)

	period := domain.Period{Year: 2026, Month: 3}
	key := OverviewCacheKey(workspaceID, period)
	overviewCache.Set(key, &BudgetOverview{Period: period}, BudgetCacheTag(workspaceID))
	// A different workspace's cached view must survive
	otherKey := OverviewCacheKey(2, period)
	overviewCache.Set(otherKey, &BudgetOverview{Period: period}, BudgetCacheTag(2))

	if _, err := f.service.CreateBudget(workspaceID, CreateBudgetInput{
		Period:     &period,
		Amount:     decimal.NewFromInt(500),
		CategoryID: int32Ptr(1),
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := overviewCache.Get(key); ok {
		t.Error("Expected the workspace's cached overview to be invalidated")
	}
	if _, ok := overviewCache.Get(otherKey); !ok {
		t.Error("Expected the other workspace's cached overview to survive")
	}
}
