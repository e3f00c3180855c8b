package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pocketplan/pocketplan-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL. Amounts are stored and returned in cleartext.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// ListExpensesInRange retrieves expense transactions dated in [start, end]
func (r *TransactionRepository) ListExpensesInRange(workspaceID int32, start, end time.Time) ([]*domain.Transaction, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT id, workspace_id, name, amount, type, category_id, subcategory_id, transaction_date
		FROM transactions
		WHERE workspace_id = $1
		  AND type = $2
		  AND transaction_date BETWEEN $3 AND $4
		ORDER BY transaction_date, id`,
		workspaceID, domain.TransactionTypeExpense, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var amount pgtype.Numeric
		err := rows.Scan(
			&tx.ID,
			&tx.WorkspaceID,
			&tx.Name,
			&amount,
			&tx.Type,
			&tx.CategoryID,
			&tx.SubcategoryID,
			&tx.TransactionDate,
		)
		if err != nil {
			return nil, err
		}
		tx.Amount = pgNumericToDecimal(amount)
		transactions = append(transactions, &tx)
	}
	return transactions, rows.Err()
}
