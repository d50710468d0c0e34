// Package report builds the read models of the application: period
// totals, the financial context handed to the assistant, range
// aggregates and the JSON exports.
package report

import (
	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PeriodTotals are the aggregated amounts of one period, taken from the
// ledger and the budget rows.
type PeriodTotals struct {
	TotalIncome      decimal.Decimal `json:"total_income"`       // Sum of main income
	TotalExtraIncome decimal.Decimal `json:"total_extra_income"` // Sum of extra income
	TotalExpenses    decimal.Decimal `json:"total_expenses"`     // Sum of expenses
	TotalTithing     decimal.Decimal `json:"total_tithing"`      // Sum of tithing split off
	TotalSaving      decimal.Decimal `json:"total_saving"`       // Sum of saving split off
	TotalBudget      decimal.Decimal `json:"total_budget"`       // Sum of allocated amounts
	TotalSpent       decimal.Decimal `json:"total_spent"`        // Sum of spent amounts
}

// Remaining returns the unspent budget of the period.
func (t PeriodTotals) Remaining() decimal.Decimal {
	return t.TotalBudget.Sub(t.TotalSpent)
}

// Totals aggregates the ledger and budgets of one period.
func Totals(db *gorm.DB, periodID uuid.UUID) (PeriodTotals, error) {
	var totals PeriodTotals

	err := db.Raw(`SELECT
			COALESCE(SUM(CASE WHEN type = 'income_main' THEN amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN type = 'income_extra' THEN amount ELSE 0 END), 0) AS total_extra_income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expenses,
			COALESCE(SUM(tithing_paid), 0) AS total_tithing,
			COALESCE(SUM(saving_paid), 0) AS total_saving
		FROM transactions
		WHERE period_id = ?`, periodID).Scan(&totals).Error
	if err != nil {
		return PeriodTotals{}, err
	}

	err = db.Raw(`SELECT
			COALESCE(SUM(allocated), 0) AS total_budget,
			COALESCE(SUM(spent), 0) AS total_spent
		FROM budgets
		WHERE period_id = ?`, periodID).Scan(&totals).Error
	if err != nil {
		return PeriodTotals{}, err
	}

	return totals, nil
}

// PeriodSummary is the condensed view of one period used in recent
// period lists and the annual export.
type PeriodSummary struct {
	PeriodID         uuid.UUID       `json:"period_id"`
	StartDate        types.Date      `json:"start_date"`
	EndDate          types.Date      `json:"end_date"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExtraIncome decimal.Decimal `json:"total_extra_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TotalBudget      decimal.Decimal `json:"total_budget"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
}

// RecentPeriodSummaries returns condensed summaries of the most recent
// periods, newest first.
func RecentPeriodSummaries(db *gorm.DB, limit int) ([]PeriodSummary, error) {
	if limit <= 0 {
		limit = 6
	}

	periods, err := models.RecentPeriods(db, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]PeriodSummary, 0, len(periods))
	for _, period := range periods {
		totals, err := Totals(db, period.ID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, PeriodSummary{
			PeriodID:         period.ID,
			StartDate:        period.StartDate,
			EndDate:          period.EndDate,
			TotalIncome:      totals.TotalIncome,
			TotalExtraIncome: totals.TotalExtraIncome,
			TotalExpenses:    totals.TotalExpenses,
			TotalBudget:      totals.TotalBudget,
			TotalSpent:       totals.TotalSpent,
		})
	}

	return summaries, nil
}

// DatabaseOverview is the whole-database summary used when no period
// context is available and for the database_overview data request.
type DatabaseOverview struct {
	PeriodsCount          int64           `json:"periods_count"`
	CategoriesCount       int64           `json:"categories_count"`
	TransactionCount      int64           `json:"transaction_count"`
	TotalIncome           decimal.Decimal `json:"total_income"`
	TotalExtraIncome      decimal.Decimal `json:"total_extra_income"`
	TotalExpenses         decimal.Decimal `json:"total_expenses"`
	FirstTransactionDate  *types.Date     `json:"first_transaction_date"`
	LatestTransactionDate *types.Date     `json:"latest_transaction_date"`
}

// Overview aggregates the entire database.
func Overview(db *gorm.DB) (DatabaseOverview, error) {
	var overview DatabaseOverview

	err := db.Raw(`SELECT
			COALESCE(SUM(CASE WHEN type = 'income_main' THEN amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN type = 'income_extra' THEN amount ELSE 0 END), 0) AS total_extra_income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expenses,
			COUNT(*) AS transaction_count,
			MIN(date) AS first_transaction_date,
			MAX(date) AS latest_transaction_date
		FROM transactions`).Scan(&overview).Error
	if err != nil {
		return DatabaseOverview{}, err
	}

	err = db.Model(&models.Period{}).Count(&overview.PeriodsCount).Error
	if err != nil {
		return DatabaseOverview{}, err
	}

	err = db.Model(&models.Category{}).Count(&overview.CategoriesCount).Error
	if err != nil {
		return DatabaseOverview{}, err
	}

	return overview, nil
}
