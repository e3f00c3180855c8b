package domain

import "time"

// Category is a spending category owned by a workspace. Category CRUD
// lives outside this service; budgets only read them.
type Category struct {
	ID          int32      `json:"id"`
	WorkspaceID int32      `json:"workspaceId"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Subcategory narrows a category
type Subcategory struct {
	ID         int32     `json:"id"`
	CategoryID int32     `json:"categoryId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BudgetGroup names a set of categories budgeted together
type BudgetGroup struct {
	ID          int32     `json:"id"`
	WorkspaceID int32     `json:"workspaceId"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CategoryRepository interface {
	GetByID(workspaceID int32, id int32) (*Category, error)
	GetAllByWorkspace(workspaceID int32) ([]*Category, error)
}

type SubcategoryRepository interface {
	// GetByID scopes the lookup through the parent category's workspace
	GetByID(workspaceID int32, id int32) (*Subcategory, error)
	GetAllByWorkspace(workspaceID int32) ([]*Subcategory, error)
}

type BudgetGroupRepository interface {
	GetByID(workspaceID int32, id int32) (*BudgetGroup, error)
	GetAllByWorkspace(workspaceID int32) ([]*BudgetGroup, error)
}

// Workspace is the tenant every budget and transaction belongs to
type Workspace struct {
	ID        int32     `json:"id"`
	Auth0ID   string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WorkspaceRepository interface {
	GetByAuth0ID(auth0ID string) (*Workspace, error)
}
