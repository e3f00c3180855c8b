package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction is the slice of the transaction record the budget engine
// needs: category placement and a cleartext amount. Transaction creation
// and amount decryption are the transaction service's concern.
type Transaction struct {
	ID              int32           `json:"id"`
	WorkspaceID     int32           `json:"workspaceId"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	CategoryID      *int32          `json:"categoryId,omitempty"`
	SubcategoryID   *int32          `json:"subcategoryId,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
}

type TransactionRepository interface {
	// ListExpensesInRange returns expense transactions with a date in
	// [start, end] for the workspace.
	ListExpensesInRange(workspaceID int32, start, end time.Time) ([]*Transaction, error)
}
