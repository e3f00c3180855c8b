package service

import (
	"fmt"

	"github.com/pocketplan/pocketplan-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SubcategoryKey addresses the per-(category, subcategory) totals map
type SubcategoryKey struct {
	CategoryID    int32
	SubcategoryID int32
}

// SpendTotals holds the aggregated expense amounts for one period. A
// transaction with a subcategory contributes to both maps: PerCategory
// answers "total in this category", PerSubcategory answers "total in this
// category narrowed to this subcategory".
type SpendTotals struct {
	PerCategory    map[int32]decimal.Decimal
	PerSubcategory map[SubcategoryKey]decimal.Decimal
}

// CategorySpend returns the total for a category, zero when absent
func (t *SpendTotals) CategorySpend(categoryID int32) decimal.Decimal {
	if amount, ok := t.PerCategory[categoryID]; ok {
		return amount
	}
	return decimal.Zero
}

// SubcategorySpend returns the total for a (category, subcategory) pair,
// zero when absent
func (t *SpendTotals) SubcategorySpend(categoryID, subcategoryID int32) decimal.Decimal {
	if amount, ok := t.PerSubcategory[SubcategoryKey{CategoryID: categoryID, SubcategoryID: subcategoryID}]; ok {
		return amount
	}
	return decimal.Zero
}

// SpendAggregationService sums expense transactions per category and per
// category/subcategory pair for a period
type SpendAggregationService struct {
	transactionRepo domain.TransactionRepository
}

// NewSpendAggregationService creates a new SpendAggregationService
func NewSpendAggregationService(transactionRepo domain.TransactionRepository) *SpendAggregationService {
	return &SpendAggregationService{transactionRepo: transactionRepo}
}

// AggregateForPeriod fetches the period's expenses and folds them into
// spend totals in a single pass. Expenses are normalized to positive
// magnitude regardless of stored sign; transactions without a category
// are ignored for budget purposes.
func (s *SpendAggregationService) AggregateForPeriod(workspaceID int32, period domain.Period) (*SpendTotals, error) {
	transactions, err := s.transactionRepo.ListExpensesInRange(workspaceID, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("aggregate spend for %s: %w", period, err)
	}

	totals := &SpendTotals{
		PerCategory:    make(map[int32]decimal.Decimal),
		PerSubcategory: make(map[SubcategoryKey]decimal.Decimal),
	}

	for _, tx := range transactions {
		if tx.CategoryID == nil {
			continue
		}
		amount := tx.Amount.Abs()

		categoryID := *tx.CategoryID
		totals.PerCategory[categoryID] = totals.PerCategory[categoryID].Add(amount)

		if tx.SubcategoryID != nil {
			key := SubcategoryKey{CategoryID: categoryID, SubcategoryID: *tx.SubcategoryID}
			totals.PerSubcategory[key] = totals.PerSubcategory[key].Add(amount)
		}
	}

	return totals, nil
}
