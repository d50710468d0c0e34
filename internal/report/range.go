package report

import (
	"time"

	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RangeSummary aggregates the ledger over a date range, across period
// boundaries.
type RangeSummary struct {
	IncomeMain  decimal.Decimal `json:"income_main"`
	IncomeExtra decimal.Decimal `json:"income_extra"`
	Expense     decimal.Decimal `json:"expense"`
	Tithing     decimal.Decimal `json:"tithing"`
	Saving      decimal.Decimal `json:"saving"`
}

// DailyTotal is the expense total of one day.
type DailyTotal struct {
	Date    types.Date      `json:"date"`
	Expense decimal.Decimal `json:"expense"`
	Count   int64           `json:"count"`
}

// RangeReport is the analysis input for one date range. Both bounds are
// inclusive.
type RangeReport struct {
	Meta         Meta              `json:"meta"`
	Start        types.Date        `json:"start"`
	End          types.Date        `json:"end"`
	Periods      []PeriodSummary   `json:"periods"`
	Summary      RangeSummary      `json:"summary"`
	Daily        []DailyTotal      `json:"daily"`
	ByCategory   []CategoryStat    `json:"by_category"`
	Transactions []TransactionLine `json:"transactions"`
}

// Range aggregates all ledger activity between start and end inclusive.
func Range(db *gorm.DB, start, end types.Date, now time.Time) (RangeReport, error) {
	report := RangeReport{
		Meta:  Meta{GeneratedAt: now.UTC(), Scope: "range"},
		Start: start,
		End:   end,
	}

	err := db.Raw(`SELECT
			COALESCE(SUM(CASE WHEN type = 'income_main' THEN amount ELSE 0 END), 0) AS income_main,
			COALESCE(SUM(CASE WHEN type = 'income_extra' THEN amount ELSE 0 END), 0) AS income_extra,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense,
			COALESCE(SUM(tithing_paid), 0) AS tithing,
			COALESCE(SUM(saving_paid), 0) AS saving
		FROM transactions
		WHERE date >= ? AND date <= ?`, start, end).Scan(&report.Summary).Error
	if err != nil {
		return RangeReport{}, err
	}

	report.Periods, err = periodsTouching(db, start, end)
	if err != nil {
		return RangeReport{}, err
	}

	err = db.Raw(`SELECT date, COALESCE(SUM(amount), 0) AS expense, COUNT(*) AS count
		FROM transactions
		WHERE type = ? AND date >= ? AND date <= ?
		GROUP BY date
		ORDER BY date ASC`, models.TransactionTypeExpense, start, end).
		Scan(&report.Daily).Error
	if err != nil {
		return RangeReport{}, err
	}

	err = db.Raw(`SELECT
			categories.name AS category,
			categories.icon AS icon,
			categories.color AS color,
			COALESCE(SUM(transactions.amount), 0) AS total_spent,
			COUNT(transactions.id) AS transactions
		FROM transactions
		JOIN categories ON categories.id = transactions.category_id
		WHERE transactions.type = ? AND transactions.date >= ? AND transactions.date <= ?
		GROUP BY categories.id
		ORDER BY total_spent DESC`, models.TransactionTypeExpense, start, end).
		Scan(&report.ByCategory).Error
	if err != nil {
		return RangeReport{}, err
	}

	transactions, err := models.Transactions(db, models.TransactionFilter{From: start, Until: end})
	if err != nil {
		return RangeReport{}, err
	}

	categories, err := models.Categories(db)
	if err != nil {
		return RangeReport{}, err
	}
	report.Transactions = toLines(transactions, categoryNames(categories))

	return report, nil
}

// periodsTouching returns summaries of all periods overlapping the
// range, oldest first.
func periodsTouching(db *gorm.DB, start, end types.Date) ([]PeriodSummary, error) {
	var periods []models.Period
	err := db.Where("start_date <= ? AND end_date > ?", end, start).
		Order("start_date ASC").Find(&periods).Error
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
