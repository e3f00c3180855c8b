package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pocketplan/pocketplan-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL.
// The (workspace, period, scope key) uniqueness invariant is enforced by
// partial unique indexes on the budgets table; violations surface as
// domain.ErrBudgetAlreadyExists.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `id, workspace_id, period_year, period_month, amount, category_id, subcategory_id, group_id, is_recurring, created_at, updated_at`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var amount pgtype.Numeric
	err := row.Scan(
		&b.ID,
		&b.WorkspaceID,
		&b.Period.Year,
		&b.Period.Month,
		&amount,
		&b.CategoryID,
		&b.SubcategoryID,
		&b.GroupID,
		&b.IsRecurring,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Amount = pgNumericToDecimal(amount)
	return &b, nil
}

// Create inserts the budget and its category links in one transaction
func (r *BudgetRepository) Create(draft *domain.BudgetDraft) (*domain.Budget, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := insertBudget(ctx, tx, draft.Budget)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrBudgetAlreadyExists
		}
		return nil, err
	}

	if err := insertLinks(ctx, tx, created.ID, draft.CategoryIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// InsertBatch inserts all drafts and their links atomically
func (r *BudgetRepository) InsertBatch(drafts []*domain.BudgetDraft) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, draft := range drafts {
		created, err := insertBudget(ctx, tx, draft.Budget)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrBudgetAlreadyExists
			}
			return err
		}
		if err := insertLinks(ctx, tx, created.ID, draft.CategoryIDs); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertBudget(ctx context.Context, tx pgx.Tx, b *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(b.Amount)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO budgets (workspace_id, period_year, period_month, amount, category_id, subcategory_id, group_id, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+budgetColumns,
		b.WorkspaceID, b.Period.Year, b.Period.Month, amount, b.CategoryID, b.SubcategoryID, b.GroupID, b.IsRecurring,
	)
	return scanBudget(row)
}

func insertLinks(ctx context.Context, tx pgx.Tx, budgetID int32, categoryIDs []int32) error {
	for _, categoryID := range categoryIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO budget_category_links (budget_id, category_id)
			VALUES ($1, $2)`,
			budgetID, categoryID,
		)
		if err != nil {
			return fmt.Errorf("insert category link for budget %d: %w", budgetID, err)
		}
	}
	return nil
}

// GetByID retrieves a budget scoped to the workspace
func (r *BudgetRepository) GetByID(workspaceID int32, id int32) (*domain.Budget, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	b, err := scanBudget(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return b, nil
}

// FindByScope retrieves the budget for a scope key within a period
func (r *BudgetRepository) FindByScope(workspaceID int32, period domain.Period, scope domain.ScopeKey) (*domain.Budget, error) {
	ctx := context.Background()

	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE workspace_id = $1 AND period_year = $2 AND period_month = $3`
	args := []interface{}{workspaceID, period.Year, period.Month}

	switch scope.Kind {
	case domain.ScopeGroup:
		query += ` AND group_id = $4`
		args = append(args, scope.GroupID)
	case domain.ScopeSubcategory:
		query += ` AND category_id = $4 AND subcategory_id = $5`
		args = append(args, scope.CategoryID, scope.SubcategoryID)
	default:
		query += ` AND category_id = $4 AND subcategory_id IS NULL`
		args = append(args, scope.CategoryID)
	}

	b, err := scanBudget(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListByPeriod retrieves all budgets for a workspace at exactly the period
func (r *BudgetRepository) ListByPeriod(workspaceID int32, period domain.Period) ([]*domain.Budget, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE workspace_id = $1 AND period_year = $2 AND period_month = $3
		ORDER BY id`,
		workspaceID, period.Year, period.Month,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBudgets(rows)
}

// ListRecurringBefore retrieves recurring budgets strictly before the
// period, most recent period first
func (r *BudgetRepository) ListRecurringBefore(workspaceID int32, period domain.Period) ([]*domain.Budget, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE workspace_id = $1
		  AND is_recurring
		  AND (period_year, period_month) < ($2, $3)
		ORDER BY period_year DESC, period_month DESC, id`,
		workspaceID, period.Year, period.Month,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBudgets(rows)
}

func collectBudgets(rows pgx.Rows) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// ListLinks retrieves the category links for the given budget ids
func (r *BudgetRepository) ListLinks(budgetIDs []int32) ([]*domain.BudgetCategoryLink, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT budget_id, category_id
		FROM budget_category_links
		WHERE budget_id = ANY($1)
		ORDER BY budget_id, category_id`,
		budgetIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*domain.BudgetCategoryLink
	for rows.Next() {
		var link domain.BudgetCategoryLink
		if err := rows.Scan(&link.BudgetID, &link.CategoryID); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

// UpdateAmount updates a budget's amount
func (r *BudgetRepository) UpdateAmount(workspaceID int32, id int32, amount decimal.Decimal) (*domain.Budget, error) {
	ctx := context.Background()

	num, err := decimalToPgNumeric(amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE budgets
		SET amount = $3, updated_at = now()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+budgetColumns,
		workspaceID, id, num,
	)
	b, err := scanBudget(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return b, nil
}

// Delete removes a budget; links cascade at the database level
func (r *BudgetRepository) Delete(workspaceID int32, id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM budgets
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}
