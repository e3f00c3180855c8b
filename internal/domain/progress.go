package domain

import "github.com/shopspring/decimal"

// BudgetStatus is the three-state health of a budget for a period
type BudgetStatus string

const (
	StatusOK      BudgetStatus = "ok"
	StatusWarning BudgetStatus = "warning"
	StatusOver    BudgetStatus = "over"
)

// WarningThresholdPercent marks the percentage at which a budget turns
// from ok to warning
var WarningThresholdPercent = decimal.NewFromInt(90)

var hundred = decimal.NewFromInt(100)

// BudgetProgress pairs the percentage of the ceiling consumed with the
// resulting status
type BudgetProgress struct {
	Percentage decimal.Decimal `json:"percentage"`
	Status     BudgetStatus    `json:"status"`
}

// CalculateProgress computes how much of a budget's ceiling the actual
// spend consumes. The over check runs before the warning threshold, so
// spend at exactly 100% reports "over" rather than "warning".
func CalculateProgress(amount, spent decimal.Decimal) BudgetProgress {
	percentage := decimal.Zero
	if amount.IsPositive() {
		percentage = spent.Div(amount).Mul(hundred)
	}

	status := StatusOK
	switch {
	case spent.GreaterThanOrEqual(amount):
		status = StatusOver
	case percentage.GreaterThanOrEqual(WarningThresholdPercent):
		status = StatusWarning
	}

	return BudgetProgress{Percentage: percentage, Status: status}
}
