package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget commits a monetary ceiling to one scope for one calendar month.
// Exactly one of CategoryID (optionally narrowed by SubcategoryID) or
// GroupID is set. Recurring budgets act as templates that are propagated
// forward to later periods on demand.
type Budget struct {
	ID            int32           `json:"id"`
	WorkspaceID   int32           `json:"workspaceId"`
	Period        Period          `json:"period"`
	Amount        decimal.Decimal `json:"amount"`
	CategoryID    *int32          `json:"categoryId,omitempty"`
	SubcategoryID *int32          `json:"subcategoryId,omitempty"`
	GroupID       *int32          `json:"groupId,omitempty"`
	IsRecurring   bool            `json:"isRecurring"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ValidateScope enforces the exactly-one-scope invariant
func (b *Budget) ValidateScope() error {
	if b.GroupID != nil {
		if b.CategoryID != nil {
			return ErrInvalidScope
		}
		if b.SubcategoryID != nil {
			return ErrGroupWithSubcategory
		}
		return nil
	}
	if b.CategoryID == nil {
		return ErrInvalidScope
	}
	return nil
}

// Scope derives the canonical scope key. The budget must satisfy
// ValidateScope first.
func (b *Budget) Scope() ScopeKey {
	if b.GroupID != nil {
		return GroupScope(*b.GroupID)
	}
	if b.SubcategoryID != nil {
		return SubcategoryScope(*b.CategoryID, *b.SubcategoryID)
	}
	return CategoryScope(*b.CategoryID)
}

// BudgetCategoryLink records one category's membership in a grouped
// budget, captured at creation time
type BudgetCategoryLink struct {
	BudgetID   int32 `json:"budgetId"`
	CategoryID int32 `json:"categoryId"`
}

// BudgetDraft is a budget row to insert together with its category links
// (links only for grouped budgets)
type BudgetDraft struct {
	Budget      *Budget
	CategoryIDs []int32
}

type BudgetRepository interface {
	// Create inserts the budget and, for grouped budgets, its category
	// links in a single transaction. Returns ErrBudgetAlreadyExists when
	// the (workspace, period, scope) uniqueness constraint is violated.
	Create(draft *BudgetDraft) (*Budget, error)
	GetByID(workspaceID int32, id int32) (*Budget, error)
	FindByScope(workspaceID int32, period Period, scope ScopeKey) (*Budget, error)
	ListByPeriod(workspaceID int32, period Period) ([]*Budget, error)
	// ListRecurringBefore returns all recurring budgets with a period
	// strictly before the given one, most recent period first.
	ListRecurringBefore(workspaceID int32, period Period) ([]*Budget, error)
	// InsertBatch inserts all drafts and their links atomically.
	InsertBatch(drafts []*BudgetDraft) error
	ListLinks(budgetIDs []int32) ([]*BudgetCategoryLink, error)
	UpdateAmount(workspaceID int32, id int32, amount decimal.Decimal) (*Budget, error)
	Delete(workspaceID int32, id int32) error
}
