package testutil

import (
	"sort"
	"time"

	"github.com/pocketplan/pocketplan-backend/internal/domain"
	"github.com/pocketplan/pocketplan-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// MockBudgetRepository is a mock implementation of domain.BudgetRepository.
// It enforces the per-period scope uniqueness constraint the same way the
// database partial indexes do.
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	Links   map[int32][]int32
	NextID  int32

	// FailOnLinks makes inserts of grouped budgets fail after the budget
	// row would have been written, to exercise transactional rollback
	FailOnLinks error

	CreateFn              func(draft *domain.BudgetDraft) (*domain.Budget, error)
	InsertBatchFn         func(drafts []*domain.BudgetDraft) error
	ListRecurringBeforeFn func(workspaceID int32, period domain.Period) ([]*domain.Budget, error)
	ListByPeriodFn        func(workspaceID int32, period domain.Period) ([]*domain.Budget, error)

	InsertBatchCalls int
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		Links:   make(map[int32][]int32),
		NextID:  1,
	}
}

// AddBudget inserts a budget directly, bypassing uniqueness (helper for tests)
func (m *MockBudgetRepository) AddBudget(b *domain.Budget, categoryIDs ...int32) *domain.Budget {
	if b.ID == 0 {
		b.ID = m.NextID
		m.NextID++
	} else if b.ID >= m.NextID {
		m.NextID = b.ID + 1
	}
	m.Budgets[b.ID] = b
	if len(categoryIDs) > 0 {
		m.Links[b.ID] = categoryIDs
	}
	return b
}

func (m *MockBudgetRepository) scopeTaken(workspaceID int32, period domain.Period, scope domain.ScopeKey) bool {
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.Period == period && b.Scope() == scope {
			return true
		}
	}
	return false
}

// Create inserts the budget and its links, enforcing scope uniqueness
func (m *MockBudgetRepository) Create(draft *domain.BudgetDraft) (*domain.Budget, error) {
	if m.CreateFn != nil {
		return m.CreateFn(draft)
	}
	b := draft.Budget
	if m.scopeTaken(b.WorkspaceID, b.Period, b.Scope()) {
		return nil, domain.ErrBudgetAlreadyExists
	}
	if len(draft.CategoryIDs) > 0 && m.FailOnLinks != nil {
		return nil, m.FailOnLinks
	}
	b.ID = m.NextID
	m.NextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.Budgets[b.ID] = b
	if len(draft.CategoryIDs) > 0 {
		m.Links[b.ID] = draft.CategoryIDs
	}
	return b, nil
}

// GetByID retrieves a budget scoped to the workspace
func (m *MockBudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	b, ok := m.Budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return nil, domain.ErrBudgetNotFound
	}
	return b, nil
}

// FindByScope retrieves the budget occupying a scope key in a period
func (m *MockBudgetRepository) FindByScope(workspaceID int32, period domain.Period, scope domain.ScopeKey) (*domain.Budget, error) {
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.Period == period && b.Scope() == scope {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// ListByPeriod returns all budgets for the workspace and period
func (m *MockBudgetRepository) ListByPeriod(workspaceID int32, period domain.Period) ([]*domain.Budget, error) {
	if m.ListByPeriodFn != nil {
		return m.ListByPeriodFn(workspaceID, period)
	}
	var out []*domain.Budget
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.Period == period {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListRecurringBefore returns recurring budgets strictly before the
// period, most recent period first
func (m *MockBudgetRepository) ListRecurringBefore(workspaceID int32, period domain.Period) ([]*domain.Budget, error) {
	if m.ListRecurringBeforeFn != nil {
		return m.ListRecurringBeforeFn(workspaceID, period)
	}
	var out []*domain.Budget
	for _, b := range m.Budgets {
		if b.WorkspaceID == workspaceID && b.IsRecurring && b.Period.Before(period) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[j].Period.Before(out[i].Period)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// InsertBatch inserts all drafts atomically; on any conflict nothing is
// kept and ErrBudgetAlreadyExists is returned
func (m *MockBudgetRepository) InsertBatch(drafts []*domain.BudgetDraft) error {
	m.InsertBatchCalls++
	if m.InsertBatchFn != nil {
		return m.InsertBatchFn(drafts)
	}
	for _, d := range drafts {
		if m.scopeTaken(d.Budget.WorkspaceID, d.Budget.Period, d.Budget.Scope()) {
			return domain.ErrBudgetAlreadyExists
		}
		if len(d.CategoryIDs) > 0 && m.FailOnLinks != nil {
			return m.FailOnLinks
		}
	}
	for _, d := range drafts {
		b := d.Budget
		b.ID = m.NextID
		m.NextID++
		b.CreatedAt = time.Now()
		b.UpdatedAt = b.CreatedAt
		m.Budgets[b.ID] = b
		if len(d.CategoryIDs) > 0 {
			m.Links[b.ID] = d.CategoryIDs
		}
	}
	return nil
}

// ListLinks returns the category links for the given budget IDs
func (m *MockBudgetRepository) ListLinks(budgetIDs []int32) ([]*domain.BudgetCategoryLink, error) {
	var out []*domain.BudgetCategoryLink
	for _, id := range budgetIDs {
		for _, catID := range m.Links[id] {
			out = append(out, &domain.BudgetCategoryLink{BudgetID: id, CategoryID: catID})
		}
	}
	return out, nil
}

// UpdateAmount updates a budget's amount scoped to the workspace
func (m *MockBudgetRepository) UpdateAmount(workspaceID int32, id int32, amount decimal.Decimal) (*domain.Budget, error) {
	b, ok := m.Budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return nil, domain.ErrBudgetNotFound
	}
	b.Amount = amount
	b.UpdatedAt = time.Now()
	return b, nil
}

// Delete removes a budget scoped to the workspace
func (m *MockBudgetRepository) Delete(workspaceID int32, id int32) error {
	b, ok := m.Budgets[id]
	if !ok || b.WorkspaceID != workspaceID {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	delete(m.Links, id)
	return nil
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions []*domain.Transaction
	ListErr      error
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

// ListExpensesInRange returns expense transactions dated within [start, end]
func (m *MockTransactionRepository) ListExpensesInRange(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []*domain.Transaction
	for _, t := range m.Transactions {
		if t.WorkspaceID != workspaceID || t.Type != domain.TransactionTypeExpense {
			continue
		}
		if t.TransactionDate.Before(start) || t.TransactionDate.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[int32]*domain.Category)}
}

// AddCategory adds a category (helper for tests)
func (m *MockCategoryRepository) AddCategory(c *domain.Category) {
	m.Categories[c.ID] = c
}

// GetByID retrieves a category scoped to the workspace
func (m *MockCategoryRepository) GetByID(workspaceID int32, id int32) (*domain.Category, error) {
	c, ok := m.Categories[id]
	if !ok || c.WorkspaceID != workspaceID {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

// GetAllByWorkspace returns all categories for the workspace
func (m *MockCategoryRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range m.Categories {
		if c.WorkspaceID == workspaceID {
			out = append(out, c)
		}
	}
	return out, nil
}

// MockSubcategoryRepository is a mock implementation of domain.SubcategoryRepository
type MockSubcategoryRepository struct {
	Subcategories map[int32]*domain.Subcategory
	// CategoryWorkspaces maps category ID to workspace ID for scoping
	CategoryWorkspaces map[int32]int32
}

// NewMockSubcategoryRepository creates a new MockSubcategoryRepository
func NewMockSubcategoryRepository() *MockSubcategoryRepository {
	return &MockSubcategoryRepository{
		Subcategories:      make(map[int32]*domain.Subcategory),
		CategoryWorkspaces: make(map[int32]int32),
	}
}

// AddSubcategory adds a subcategory under a workspace's category (helper for tests)
func (m *MockSubcategoryRepository) AddSubcategory(s *domain.Subcategory, workspaceID int32) {
	m.Subcategories[s.ID] = s
	m.CategoryWorkspaces[s.CategoryID] = workspaceID
}

// GetByID retrieves a subcategory scoped through its parent category's workspace
func (m *MockSubcategoryRepository) GetByID(workspaceID int32, id int32) (*domain.Subcategory, error) {
	s, ok := m.Subcategories[id]
	if !ok || m.CategoryWorkspaces[s.CategoryID] != workspaceID {
		return nil, domain.ErrSubcategoryNotFound
	}
	return s, nil
}

// GetAllByWorkspace returns all subcategories for the workspace
func (m *MockSubcategoryRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Subcategory, error) {
	var out []*domain.Subcategory
	for _, s := range m.Subcategories {
		if m.CategoryWorkspaces[s.CategoryID] == workspaceID {
			out = append(out, s)
		}
	}
	return out, nil
}

// MockBudgetGroupRepository is a mock implementation of domain.BudgetGroupRepository
type MockBudgetGroupRepository struct {
	Groups map[int32]*domain.BudgetGroup
}

// NewMockBudgetGroupRepository creates a new MockBudgetGroupRepository
func NewMockBudgetGroupRepository() *MockBudgetGroupRepository {
	return &MockBudgetGroupRepository{Groups: make(map[int32]*domain.BudgetGroup)}
}

// AddGroup adds a budget group (helper for tests)
func (m *MockBudgetGroupRepository) AddGroup(g *domain.BudgetGroup) {
	m.Groups[g.ID] = g
}

// GetByID retrieves a group scoped to the workspace
func (m *MockBudgetGroupRepository) GetByID(workspaceID int32, id int32) (*domain.BudgetGroup, error) {
	g, ok := m.Groups[id]
	if !ok || g.WorkspaceID != workspaceID {
		return nil, domain.ErrGroupNotFound
	}
	return g, nil
}

// GetAllByWorkspace returns all groups for the workspace
func (m *MockBudgetGroupRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.BudgetGroup, error) {
	var out []*domain.BudgetGroup
	for _, g := range m.Groups {
		if g.WorkspaceID == workspaceID {
			out = append(out, g)
		}
	}
	return out, nil
}

// MockWorkspaceRepository is a mock implementation of domain.WorkspaceRepository
type MockWorkspaceRepository struct {
	Workspaces map[string]*domain.Workspace
}

// NewMockWorkspaceRepository creates a new MockWorkspaceRepository
func NewMockWorkspaceRepository() *MockWorkspaceRepository {
	return &MockWorkspaceRepository{Workspaces: make(map[string]*domain.Workspace)}
}

// GetByAuth0ID retrieves a workspace by Auth0 subject
func (m *MockWorkspaceRepository) GetByAuth0ID(auth0ID string) (*domain.Workspace, error) {
	if ws, ok := m.Workspaces[auth0ID]; ok {
		return ws, nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// PublishedEvent records one call to Publish
type PublishedEvent struct {
	WorkspaceID int32
	Event       websocket.Event
}

// MockEventPublisher captures published events for assertions
type MockEventPublisher struct {
	Events []PublishedEvent
}

// Publish records the event
func (m *MockEventPublisher) Publish(workspaceID int32, event websocket.Event) {
	m.Events = append(m.Events, PublishedEvent{WorkspaceID: workspaceID, Event: event})
}
