package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pocketplan/pocketplan-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// GetByID retrieves a category scoped to the workspace
func (r *CategoryRepository) GetByID(workspaceID int32, id int32) (*domain.Category, error) {
	ctx := context.Background()

	var c domain.Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, workspace_id, name, created_at, updated_at, deleted_at
		FROM categories
		WHERE workspace_id = $1 AND id = $2 AND deleted_at IS NULL`,
		workspaceID, id,
	).Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetAllByWorkspace retrieves all active categories for a workspace
func (r *CategoryRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Category, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT id, workspace_id, name, created_at, updated_at, deleted_at
		FROM categories
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY name`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// SubcategoryRepository implements domain.SubcategoryRepository using PostgreSQL
type SubcategoryRepository struct {
	pool *pgxpool.Pool
}

// NewSubcategoryRepository creates a new SubcategoryRepository
func NewSubcategoryRepository(pool *pgxpool.Pool) *SubcategoryRepository {
	return &SubcategoryRepository{pool: pool}
}

// GetByID retrieves a subcategory, scoping through the parent category's workspace
func (r *SubcategoryRepository) GetByID(workspaceID int32, id int32) (*domain.Subcategory, error) {
	ctx := context.Background()

	var sc domain.Subcategory
	err := r.pool.QueryRow(ctx, `
		SELECT s.id, s.category_id, s.name, s.created_at, s.updated_at
		FROM subcategories s
		JOIN categories c ON c.id = s.category_id
		WHERE c.workspace_id = $1 AND s.id = $2`,
		workspaceID, id,
	).Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSubcategoryNotFound
		}
		return nil, err
	}
	return &sc, nil
}

// GetAllByWorkspace retrieves all subcategories under a workspace's categories
func (r *SubcategoryRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.Subcategory, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.category_id, s.name, s.created_at, s.updated_at
		FROM subcategories s
		JOIN categories c ON c.id = s.category_id
		WHERE c.workspace_id = $1
		ORDER BY s.name`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subcategories []*domain.Subcategory
	for rows.Next() {
		var sc domain.Subcategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		subcategories = append(subcategories, &sc)
	}
	return subcategories, rows.Err()
}

// BudgetGroupRepository implements domain.BudgetGroupRepository using PostgreSQL
type BudgetGroupRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetGroupRepository creates a new BudgetGroupRepository
func NewBudgetGroupRepository(pool *pgxpool.Pool) *BudgetGroupRepository {
	return &BudgetGroupRepository{pool: pool}
}

// GetByID retrieves a budget group scoped to the workspace
func (r *BudgetGroupRepository) GetByID(workspaceID int32, id int32) (*domain.BudgetGroup, error) {
	ctx := context.Background()

	var g domain.BudgetGroup
	err := r.pool.QueryRow(ctx, `
		SELECT id, workspace_id, name, created_at, updated_at
		FROM budget_groups
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	).Scan(&g.ID, &g.WorkspaceID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// GetAllByWorkspace retrieves all budget groups for a workspace
func (r *BudgetGroupRepository) GetAllByWorkspace(workspaceID int32) ([]*domain.BudgetGroup, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT id, workspace_id, name, created_at, updated_at
		FROM budget_groups
		WHERE workspace_id = $1
		ORDER BY name`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.BudgetGroup
	for rows.Next() {
		var g domain.BudgetGroup
		if err := rows.Scan(&g.ID, &g.WorkspaceID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// GetByAuth0ID retrieves a workspace by its owner's Auth0 subject
func (r *WorkspaceRepository) GetByAuth0ID(auth0ID string) (*domain.Workspace, error) {
	ctx := context.Background()

	var ws domain.Workspace
	err := r.pool.QueryRow(ctx, `
		SELECT id, auth0_id, name, created_at, updated_at
		FROM workspaces
		WHERE auth0_id = $1`,
		auth0ID,
	).Scan(&ws.ID, &ws.Auth0ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &ws, nil
}
