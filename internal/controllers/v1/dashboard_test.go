package v1_test

import (
	"net/http"

	v1 "github.com/richardsr020/maxim-advisor/internal/controllers/v1"
	"github.com/richardsr020/maxim-advisor/internal/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestDashboardBudgetData() {
	_ = startTestPeriod(suite.T(), 100000)
	food := categoryID(suite.T(), "Food")

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{CategoryID: food, Amount: decimal.NewFromInt(4500)})
	_ = createTestExpense(suite.T(), v1.ExpenseEditable{CategoryID: food, Amount: decimal.NewFromInt(1500)})

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/dashboard/budget-data", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.BudgetDataResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	require.Len(suite.T(), response.Budgets, 3)
	assert.Equal(suite.T(), "Food", response.Budgets[0].Category)
	assert.True(suite.T(), decimal.NewFromInt(6000).Equal(response.Budgets[0].Spent), "spent is %s", response.Budgets[0].Spent)

	// Both expenses happened today
	require.Len(suite.T(), response.DailyExpenses, 1)
	assert.True(suite.T(), decimal.NewFromInt(6000).Equal(response.DailyExpenses[0].Amount), "daily total is %s", response.DailyExpenses[0].Amount)
}

func (suite *TestSuiteStandard) TestDashboardBudgetDataWithoutPeriod() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/dashboard/budget-data", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestDashboardStatsSeries() {
	_ = startTestPeriod(suite.T(), 100000)

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/dashboard/stats-series", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.StatsSeriesResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	require.Len(suite.T(), response.Labels, 1)
	require.Len(suite.T(), response.Series.Income, 1)
	assert.True(suite.T(), decimal.NewFromInt(100000).Equal(response.Series.Income[0]), "income is %s", response.Series.Income[0])
	assert.True(suite.T(), decimal.NewFromInt(10000).Equal(response.Series.Tithing[0]), "tithing is %s", response.Series.Tithing[0])
	assert.True(suite.T(), decimal.NewFromInt(20000).Equal(response.Series.Saving[0]), "saving is %s", response.Series.Saving[0])
}

func (suite *TestSuiteStandard) TestDashboardStatsSeriesEmpty() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/dashboard/stats-series", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.StatsSeriesResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Len(suite.T(), response.Labels, 0)
}
