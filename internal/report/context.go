package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Meta describes how and when a financial context was built.
type Meta struct {
	GeneratedAt time.Time `json:"generated_at"`
	Scope       string    `json:"scope"`                  // "period" or "overview"
	PeriodLabel string    `json:"period_label,omitempty"` // "2026-08-01 - 2026-09-01"
}

// ShareView is a category share with the category resolved to its name.
type ShareView struct {
	Category   string `json:"category"`
	Percentage int    `json:"percentage"`
}

// ParametersView is the parameter version of a period, flattened for
// serialization.
type ParametersView struct {
	Currency           string          `json:"currency"`
	DefaultIncome      decimal.Decimal `json:"default_income"`
	TithingPercent     int             `json:"tithing_percent"`
	MainSavingPercent  int             `json:"main_saving_percent"`
	ExtraSavingPercent int             `json:"extra_saving_percent"`
	Shares             []ShareView     `json:"shares"`
}

// Summary combines the period totals with the derived day-by-day
// figures.
type Summary struct {
	PeriodTotals
	Remaining   decimal.Decimal `json:"remaining"`
	SavingRate  decimal.Decimal `json:"saving_rate"`  // Saving as a percentage of all income, one decimal
	DaysLeft    int             `json:"days_left"`    // Including today
	DailyBudget decimal.Decimal `json:"daily_budget"` // Floor of remaining per day left
}

// BudgetLine is one budget with its category resolved and the derived
// usage figures included.
type BudgetLine struct {
	Category       string          `json:"category"`
	Icon           string          `json:"icon"`
	Color          string          `json:"color"`
	Allocated      decimal.Decimal `json:"allocated"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	Status         string          `json:"status"`
	Over           bool            `json:"over"`
}

// TransactionLine is one ledger entry with its category resolved.
type TransactionLine struct {
	Date         types.Date             `json:"date"`
	Type         models.TransactionType `json:"type"`
	Category     string                 `json:"category,omitempty"`
	Amount       decimal.Decimal        `json:"amount"`
	Description  string                 `json:"description"`
	Comment      string                 `json:"comment,omitempty"`
	TithingPaid  decimal.Decimal        `json:"tithing_paid"`
	SavingPaid   decimal.Decimal        `json:"saving_paid"`
	BalanceAfter decimal.Decimal        `json:"balance_after"`
}

// CategoryStat aggregates the expenses of one category.
type CategoryStat struct {
	Category     string          `json:"category"`
	Icon         string          `json:"icon"`
	Color        string          `json:"color"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	Transactions int64           `json:"transactions"`
}

// IncomeLine aggregates one income type.
type IncomeLine struct {
	Type  models.TransactionType `json:"type"`
	Total decimal.Decimal        `json:"total"`
	Count int64                  `json:"count"`
}

// FinancialContext is the complete financial picture handed to the
// assistant and embedded in exports. When no period is available only
// the database overview and the category list are filled.
type FinancialContext struct {
	Meta               Meta                    `json:"meta"`
	Period             *models.Period          `json:"period,omitempty"`
	Parameters         *ParametersView         `json:"parameters,omitempty"`
	Summary            *Summary                `json:"summary,omitempty"`
	Budgets            []BudgetLine            `json:"budgets"`
	RecentTransactions []TransactionLine       `json:"recent_transactions"`
	LargestExpenses    []TransactionLine       `json:"largest_expenses"`
	CategoryStats      []CategoryStat          `json:"category_stats"`
	IncomeSummary      []IncomeLine            `json:"income_summary"`
	Alerts             []models.Alert          `json:"alerts"`
	Habits             []models.Habit          `json:"habits"`
	Recommendations    []models.Recommendation `json:"recommendations"`
	Categories         []models.Category       `json:"categories"`
	Notifications      []models.Notification   `json:"notifications"`
	RecentPeriods      []PeriodSummary         `json:"recent_periods"`
	DatabaseOverview   DatabaseOverview        `json:"database_overview"`
}

// Context builds the financial context for a period. With periodID set
// to uuid.Nil the active period is used; without an active period a
// reduced overview-only context is returned instead of an error.
func Context(db *gorm.DB, periodID uuid.UUID, now time.Time) (FinancialContext, error) {
	ctx := FinancialContext{
		Meta: Meta{GeneratedAt: now.UTC(), Scope: "overview"},
	}

	var err error
	ctx.DatabaseOverview, err = Overview(db)
	if err != nil {
		return FinancialContext{}, err
	}

	ctx.Categories, err = models.Categories(db)
	if err != nil {
		return FinancialContext{}, err
	}

	ctx.RecentPeriods, err = RecentPeriodSummaries(db, 6)
	if err != nil {
		return FinancialContext{}, err
	}

	var period models.Period
	if periodID == uuid.Nil {
		period, err = models.ActivePeriod(db)
		if errors.Is(err, models.ErrNoActivePeriod) {
			return ctx, nil
		}
	} else {
		err = db.First(&period, periodID).Error
	}
	if err != nil {
		return FinancialContext{}, err
	}

	ctx.Meta.Scope = "period"
	ctx.Meta.PeriodLabel = period.StartDate.String() + " - " + period.EndDate.String()
	ctx.Period = &period

	if err := fillPeriodContext(db, &ctx, period, now); err != nil {
		return FinancialContext{}, err
	}

	return ctx, nil
}

func fillPeriodContext(db *gorm.DB, ctx *FinancialContext, period models.Period, now time.Time) error {
	var params models.Parameters
	err := db.First(&params, period.ParametersID).Error
	if err != nil {
		return err
	}

	shares, err := params.Shares(db)
	if err != nil {
		return err
	}

	view := ParametersView{
		Currency:           params.Currency,
		DefaultIncome:      params.DefaultIncome,
		TithingPercent:     params.TithingPercent,
		MainSavingPercent:  params.MainSavingPercent,
		ExtraSavingPercent: params.ExtraSavingPercent,
		Shares:             make([]ShareView, 0, len(shares)),
	}
	for _, share := range shares {
		view.Shares = append(view.Shares, ShareView{Category: share.Category.Name, Percentage: share.Percentage})
	}
	ctx.Parameters = &view

	totals, err := Totals(db, period.ID)
	if err != nil {
		return err
	}
	ctx.Summary = buildSummary(totals, period, now)

	budgets, err := models.PeriodBudgets(db, period.ID)
	if err != nil {
		return err
	}
	ctx.Budgets = make([]BudgetLine, 0, len(budgets))
	for _, budget := range budgets {
		ctx.Budgets = append(ctx.Budgets, BudgetLine{
			Category:       budget.Category.Name,
			Icon:           budget.Category.Icon,
			Color:          budget.Category.Color,
			Allocated:      budget.Allocated,
			Spent:          budget.Spent,
			Remaining:      budget.Remaining(),
			PercentageUsed: budget.PercentageUsed(),
			Status:         budget.Status(),
			Over:           budget.Over(),
		})
	}

	names := categoryNames(ctx.Categories)

	recent, err := models.Transactions(db, models.TransactionFilter{PeriodID: period.ID, Limit: 30})
	if err != nil {
		return err
	}
	ctx.RecentTransactions = toLines(recent, names)

	var largest []models.Transaction
	err = db.Where("period_id = ? AND type = ?", period.ID, models.TransactionTypeExpense).
		Order("amount DESC").Limit(10).Find(&largest).Error
	if err != nil {
		return err
	}
	ctx.LargestExpenses = toLines(largest, names)

	err = db.Raw(`SELECT
			categories.name AS category,
			categories.icon AS icon,
			categories.color AS color,
			COALESCE(SUM(transactions.amount), 0) AS total_spent,
			COUNT(transactions.id) AS transactions
		FROM transactions
		JOIN categories ON categories.id = transactions.category_id
		WHERE transactions.period_id = ? AND transactions.type = ?
		GROUP BY categories.id
		ORDER BY total_spent DESC`, period.ID, models.TransactionTypeExpense).
		Scan(&ctx.CategoryStats).Error
	if err != nil {
		return err
	}

	err = db.Raw(`SELECT type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		FROM transactions
		WHERE period_id = ? AND type IN (?, ?)
		GROUP BY type
		ORDER BY type`, period.ID, models.TransactionTypeIncomeMain, models.TransactionTypeIncomeExtra).
		Scan(&ctx.IncomeSummary).Error
	if err != nil {
		return err
	}

	ctx.Alerts, err = models.ActiveAlerts(db, period.ID, 20)
	if err != nil {
		return err
	}

	ctx.Habits, err = models.AnalyzeSpendingHabits(db, 3)
	if err != nil {
		return err
	}

	ctx.Recommendations, err = models.Recommendations(db)
	if err != nil {
		return err
	}

	ctx.Notifications, err = models.NotificationsOverlapping(db, period.StartDate, period.EndDate.AddDate(0, 0, -1))
	if err != nil {
		return err
	}

	return nil
}

func buildSummary(totals PeriodTotals, period models.Period, now time.Time) *Summary {
	summary := Summary{
		PeriodTotals: totals,
		Remaining:    totals.Remaining(),
		SavingRate:   savingRate(totals),
		DaysLeft:     period.DaysLeft(now),
	}

	if summary.DaysLeft > 0 {
		summary.DailyBudget = summary.Remaining.Div(decimal.NewFromInt(int64(summary.DaysLeft))).Floor()
	} else {
		summary.DailyBudget = decimal.Zero
	}

	return &summary
}

// savingRate is the saving share of all income in percent, rounded to
// one decimal. Zero income yields a zero rate.
func savingRate(totals PeriodTotals) decimal.Decimal {
	income := totals.TotalIncome.Add(totals.TotalExtraIncome)
	if !income.IsPositive() {
		return decimal.Zero
	}

	return totals.TotalSaving.Div(income).Mul(decimal.NewFromInt(100)).Round(1)
}

func categoryNames(categories []models.Category) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	return names
}

func toLines(transactions []models.Transaction, names map[uuid.UUID]string) []TransactionLine {
	lines := make([]TransactionLine, 0, len(transactions))
	for _, t := range transactions {
		line := TransactionLine{
			Date:         t.Date,
			Type:         t.Type,
			Amount:       t.Amount,
			Description:  t.Description,
			Comment:      t.Comment,
			TithingPaid:  t.TithingPaid,
			SavingPaid:   t.SavingPaid,
			BalanceAfter: t.BalanceAfter,
		}
		if t.CategoryID != nil {
			line.Category = names[*t.CategoryID]
		}

		lines = append(lines, line)
	}

	return lines
}
