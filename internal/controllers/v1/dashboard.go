package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richardsr020/maxim-advisor/internal/httputil"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/report"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
)

// statsSeriesPeriods is the number of recent periods shown in the
// dashboard statistics chart.
const statsSeriesPeriods = 6

// RegisterDashboardRoutes registers the routes for the dashboard with
// the RouterGroup that is passed.
func RegisterDashboardRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/budget-data", OptionsDashboard)
	r.GET("/budget-data", GetBudgetData)
	r.OPTIONS("/stats-series", OptionsDashboard)
	r.GET("/stats-series", GetStatsSeries)
}

// BudgetChartItem is one slice of the dashboard budget chart.
type BudgetChartItem struct {
	Category  string          `json:"category" example:"Food"`    // Name of the category
	Spent     decimal.Decimal `json:"spent" example:"12000"`      // Amount spent so far
	Allocated decimal.Decimal `json:"allocated" example:"28000"`  // Amount allocated for the period
	Color     string          `json:"color" example:"#22c55e"`    // Color of the category
}

// DailyExpense is the expense total of one day of the active period.
type DailyExpense struct {
	Date   types.Date      `json:"date" example:"2026-08-15"` // Day of the expenses
	Amount decimal.Decimal `json:"amount" example:"4500"`     // Total spent that day
}

type BudgetDataResponse struct {
	Budgets       []BudgetChartItem `json:"budgets"`       // Budgets of the active period
	DailyExpenses []DailyExpense    `json:"dailyExpenses"` // Expense totals by day
}

// StatsSeries are the dashboard chart series over recent periods,
// oldest first.
type StatsSeries struct {
	Income  []decimal.Decimal `json:"income"`  // Main plus extra income per period
	Expense []decimal.Decimal `json:"expense"` // Expenses per period
	Tithing []decimal.Decimal `json:"tithing"` // Tithing per period
	Saving  []decimal.Decimal `json:"saving"`  // Saving per period
}

type StatsSeriesResponse struct {
	Labels []string    `json:"labels"` // Period start dates formatted as day/month
	Series StatsSeries `json:"series"` // Chart series, one value per label
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Dashboard
// @Success		204
// @Router			/v1/dashboard/budget-data [options]
func OptionsDashboard(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Budget chart data
// @Description	Returns the budgets of the active period and its expense totals by day, for the dashboard charts
// @Tags			Dashboard
// @Produce		json
// @Success		200	{object}	BudgetDataResponse
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Router			/v1/dashboard/budget-data [get]
func GetBudgetData(c *gin.Context) {
	period, err := models.ActivePeriod(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	budgets, err := models.PeriodBudgets(models.DB, period.ID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	items := make([]BudgetChartItem, 0, len(budgets))
	for _, budget := range budgets {
		items = append(items, BudgetChartItem{
			Category:  budget.Category.Name,
			Spent:     budget.Spent,
			Allocated: budget.Allocated,
			Color:     budget.Category.Color,
		})
	}

	daily := make([]DailyExpense, 0)
	err = models.DB.Raw(`SELECT date, COALESCE(SUM(amount), 0) AS amount
		FROM transactions
		WHERE period_id = ? AND type = ?
		GROUP BY date
		ORDER BY date ASC`, period.ID, models.TransactionTypeExpense).
		Scan(&daily).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, BudgetDataResponse{Budgets: items, DailyExpenses: daily})
}

// @Summary		Statistics series
// @Description	Returns income, expense, tithing and saving totals over recent periods for the dashboard statistics chart
// @Tags			Dashboard
// @Produce		json
// @Success		200	{object}	StatsSeriesResponse
// @Failure		500	{object}	httpError
// @Router			/v1/dashboard/stats-series [get]
func GetStatsSeries(c *gin.Context) {
	periods, err := models.RecentPeriods(models.DB, statsSeriesPeriods)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	// RecentPeriods returns newest first, the chart wants oldest first
	response := StatsSeriesResponse{
		Labels: make([]string, 0, len(periods)),
		Series: StatsSeries{
			Income:  make([]decimal.Decimal, 0, len(periods)),
			Expense: make([]decimal.Decimal, 0, len(periods)),
			Tithing: make([]decimal.Decimal, 0, len(periods)),
			Saving:  make([]decimal.Decimal, 0, len(periods)),
		},
	}

	for i := len(periods) - 1; i >= 0; i-- {
		period := periods[i]

		totals, err := report.Totals(models.DB, period.ID)
		if err != nil {
			c.JSON(status(err), httpError{Error: err.Error()})
			return
		}

		response.Labels = append(response.Labels, time.Time(period.StartDate).Format("02/01"))
		response.Series.Income = append(response.Series.Income, totals.TotalIncome.Add(totals.TotalExtraIncome))
		response.Series.Expense = append(response.Series.Expense, totals.TotalExpenses)
		response.Series.Tithing = append(response.Series.Tithing, totals.TotalTithing)
		response.Series.Saving = append(response.Series.Saving, totals.TotalSaving)
	}

	c.JSON(http.StatusOK, response)
}
