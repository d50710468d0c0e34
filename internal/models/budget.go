package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget thresholds for the usage status and threshold alerts, in
// percent of the allocated amount.
const (
	BudgetWarningPercent  = 75
	BudgetCriticalPercent = 90
)

// Budget is the amount allocated to one category in one period,
// together with what has been spent from it so far.
type Budget struct {
	DefaultModel
	PeriodID   uuid.UUID       `json:"periodId" gorm:"uniqueIndex:budget_period_category"`     // Period the budget belongs to
	CategoryID uuid.UUID       `json:"categoryId" gorm:"uniqueIndex:budget_period_category"`   // Category the budget is for
	Category   Category        `json:"-"`                                                      // The category the budget is for
	Allocated  decimal.Decimal `json:"allocated" gorm:"type:DECIMAL(20,8)" example:"28000"`    // Amount allocated for the period
	Spent      decimal.Decimal `json:"spent" gorm:"type:DECIMAL(20,8)" example:"12000"`        // Amount spent so far
}

func (Budget) Self() string {
	return "Budget"
}

// Remaining returns the amount still available. It is negative when the
// budget is overspent.
func (b Budget) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Spent)
}

// PercentageUsed returns the spent share of the allocation in percent,
// rounded to one decimal place and clamped at 100. A budget without an
// allocation counts as fully used only when something was spent.
func (b Budget) PercentageUsed() decimal.Decimal {
	if !b.Allocated.IsPositive() {
		if b.Spent.IsPositive() {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}

	pct := b.Spent.Mul(decimal.NewFromInt(100)).Div(b.Allocated).Round(1)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}

	return pct
}

// Over reports whether more than the allocation has been spent.
func (b Budget) Over() bool {
	return b.Spent.GreaterThan(b.Allocated)
}

// Status returns the usage band of the budget. A fully used budget is
// already "over", spending the exact allocation leaves nothing.
func (b Budget) Status() string {
	switch {
	case b.RawPercentageUsed().GreaterThanOrEqual(decimal.NewFromInt(100)):
		return "over"
	case b.RawPercentageUsed().GreaterThanOrEqual(decimal.NewFromInt(BudgetCriticalPercent)):
		return "critical"
	case b.RawPercentageUsed().GreaterThanOrEqual(decimal.NewFromInt(BudgetWarningPercent)):
		return "warning"
	default:
		return "normal"
	}
}

// RawPercentageUsed returns the spent share of the allocation in
// percent without clamping. Used for threshold checks.
func (b Budget) RawPercentageUsed() decimal.Decimal {
	if !b.Allocated.IsPositive() {
		if b.Spent.IsPositive() {
			return decimal.NewFromInt(101)
		}
		return decimal.Zero
	}

	return b.Spent.Mul(decimal.NewFromInt(100)).Div(b.Allocated)
}

// PeriodBudgets returns the budgets of a period with their categories,
// ordered by category position.
func PeriodBudgets(db *gorm.DB, periodID uuid.UUID) ([]Budget, error) {
	var budgets []Budget
	err := db.
		Joins("Category").
		Where(&Budget{PeriodID: periodID}).
		Order("Category.position ASC").
		Find(&budgets).Error

	return budgets, err
}

// periodBudget returns the budget of one category in one period.
func periodBudget(db *gorm.DB, periodID, categoryID uuid.UUID) (Budget, error) {
	var budget Budget
	err := db.
		Where(&Budget{PeriodID: periodID, CategoryID: categoryID}).
		First(&budget).Error

	return budget, err
}
