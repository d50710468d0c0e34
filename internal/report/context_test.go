package report_test

import (
	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestContextForActivePeriod() {
	world := suite.createTestWorld()
	period := suite.createTestPeriod(decimal.NewFromInt(100000), testTime())
	suite.spend(world, 0, 4500, testTime().AddDate(0, 0, 3))

	ctx, err := report.Context(models.DB, uuid.Nil, testTime().AddDate(0, 0, 9))
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "period", ctx.Meta.Scope)
	assert.Equal(suite.T(), "2026-08-01 - 2026-09-01", ctx.Meta.PeriodLabel)
	require.NotNil(suite.T(), ctx.Period)
	assert.Equal(suite.T(), period.ID, ctx.Period.ID)

	require.NotNil(suite.T(), ctx.Parameters)
	assert.Equal(suite.T(), "FC", ctx.Parameters.Currency)
	require.Len(suite.T(), ctx.Parameters.Shares, 3)
	assert.Equal(suite.T(), "Food", ctx.Parameters.Shares[0].Category)
	assert.Equal(suite.T(), 40, ctx.Parameters.Shares[0].Percentage)

	require.NotNil(suite.T(), ctx.Summary)
	suite.assertDecimalEqual(100000, ctx.Summary.TotalIncome)
	suite.assertDecimalEqual(65500, ctx.Summary.Remaining)
	suite.assertDecimalEqual(20, ctx.Summary.SavingRate)
	assert.Equal(suite.T(), 22, ctx.Summary.DaysLeft)
	suite.assertDecimalEqual(2977, ctx.Summary.DailyBudget, "floor of 65500 / 22 days")

	require.Len(suite.T(), ctx.Budgets, 3)
	assert.Equal(suite.T(), "Food", ctx.Budgets[0].Category)
	suite.assertDecimalEqual(28000, ctx.Budgets[0].Allocated)
	suite.assertDecimalEqual(4500, ctx.Budgets[0].Spent)
	assert.Equal(suite.T(), "16.1", ctx.Budgets[0].PercentageUsed.String())
	assert.Equal(suite.T(), "normal", ctx.Budgets[0].Status)

	require.Len(suite.T(), ctx.RecentTransactions, 2)
	assert.Equal(suite.T(), models.TransactionTypeExpense, ctx.RecentTransactions[0].Type, "most recent entry comes first")
	assert.Equal(suite.T(), "Food", ctx.RecentTransactions[0].Category)

	require.Len(suite.T(), ctx.LargestExpenses, 1)
	suite.assertDecimalEqual(4500, ctx.LargestExpenses[0].Amount)

	require.Len(suite.T(), ctx.CategoryStats, 1)
	assert.Equal(suite.T(), "Food", ctx.CategoryStats[0].Category)
	suite.assertDecimalEqual(4500, ctx.CategoryStats[0].TotalSpent)
	assert.Equal(suite.T(), int64(1), ctx.CategoryStats[0].Transactions)

	require.Len(suite.T(), ctx.IncomeSummary, 1)
	assert.Equal(suite.T(), models.TransactionTypeIncomeMain, ctx.IncomeSummary[0].Type)
	suite.assertDecimalEqual(100000, ctx.IncomeSummary[0].Total)

	assert.Empty(suite.T(), ctx.Alerts)
	assert.Empty(suite.T(), ctx.Habits, "a single period is not enough for habit analysis")
	assert.Len(suite.T(), ctx.Categories, 3)
	assert.Len(suite.T(), ctx.RecentPeriods, 1)
	assert.Equal(suite.T(), int64(1), ctx.DatabaseOverview.PeriodsCount)
}

func (suite *TestSuiteStandard) TestContextWithoutActivePeriod() {
	suite.createTestWorld()

	ctx, err := report.Context(models.DB, uuid.Nil, testTime())
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "overview", ctx.Meta.Scope)
	assert.Nil(suite.T(), ctx.Period)
	assert.Nil(suite.T(), ctx.Summary)
	assert.Nil(suite.T(), ctx.Parameters)
	assert.Len(suite.T(), ctx.Categories, 3)
	assert.Empty(suite.T(), ctx.RecentPeriods)
}

func (suite *TestSuiteStandard) TestContextForExplicitPeriod() {
	suite.createTestWorld()
	first := suite.createTestPeriod(decimal.NewFromInt(100000), testTime().AddDate(0, -1, 0))
	suite.createTestPeriod(decimal.NewFromInt(120000), testTime())

	ctx, err := report.Context(models.DB, first.ID, testTime())
	require.NoError(suite.T(), err)

	require.NotNil(suite.T(), ctx.Period)
	assert.Equal(suite.T(), first.ID, ctx.Period.ID)
	assert.Equal(suite.T(), "2026-07-01 - 2026-08-01", ctx.Meta.PeriodLabel)
	suite.assertDecimalEqual(100000, ctx.Summary.TotalIncome)
	assert.Equal(suite.T(), 0, ctx.Summary.DaysLeft, "the period has already ended")
	suite.assertDecimalEqual(0, ctx.Summary.DailyBudget)
}

func (suite *TestSuiteStandard) TestContextUnknownPeriod() {
	suite.createTestWorld()

	_, err := report.Context(models.DB, uuid.New(), testTime())
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}
