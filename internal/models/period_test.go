package models_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestCreatePeriodSplitsIncome() {
	world := suite.createTestWorld()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	period := suite.createTestPeriod(decimal.NewFromInt(100000), now)

	assert.True(suite.T(), period.Active)
	assert.Equal(suite.T(), world.Params.ID, period.ParametersID)
	assert.Equal(suite.T(), "2026-08-01", period.StartDate.String())
	assert.Equal(suite.T(), "2026-09-01", period.EndDate.String())
	suite.assertDecimalEqual(10000, period.TithingAmount)
	suite.assertDecimalEqual(20000, period.SavingAmount)

	budgets, err := models.PeriodBudgets(models.DB, period.ID)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), budgets, 3)

	suite.assertDecimalEqual(28000, budgets[0].Allocated, "Food")
	suite.assertDecimalEqual(21000, budgets[1].Allocated, "Household")
	suite.assertDecimalEqual(21000, budgets[2].Allocated, "Transport")

	// The opening income is on the ledger
	transactions, err := models.Transactions(models.DB, models.TransactionFilter{PeriodID: period.ID})
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), transactions, 1)
	assert.Equal(suite.T(), models.TransactionTypeIncomeMain, transactions[0].Type)
	suite.assertDecimalEqual(70000, transactions[0].BalanceAfter)
}

func (suite *TestSuiteStandard) TestCreatePeriodDeactivatesPrevious() {
	suite.createTestWorld()

	first := suite.createTestPeriod(decimal.NewFromInt(100000), time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	second := suite.createTestPeriod(decimal.NewFromInt(100000), time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	active, err := models.ActivePeriod(models.DB)
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), second.ID, active.ID)

	var reloaded models.Period
	assert.Nil(suite.T(), models.DB.First(&reloaded, "id = ?", first.ID).Error)
	assert.False(suite.T(), reloaded.Active)
}

func (suite *TestSuiteStandard) TestCreatePeriodRequiresPositiveIncome() {
	suite.createTestWorld()

	_, err := models.CreatePeriod(models.DB, decimal.Zero, uuid.Nil, time.Now())
	assert.ErrorIs(suite.T(), err, models.ErrInvalidAmount)
}

func (suite *TestSuiteStandard) TestCreatePeriodWithoutParameters() {
	_, err := models.CreatePeriod(models.DB, decimal.NewFromInt(1000), uuid.Nil, time.Now())
	assert.ErrorIs(suite.T(), err, models.ErrNoParameters)
}

func (suite *TestSuiteStandard) TestCheckPeriodEndRollsOver() {
	suite.createTestWorld()
	start := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	period := suite.createTestPeriod(decimal.NewFromInt(100000), start)

	// The day before the end date is not a rollover
	rolled, err := models.CheckPeriodEnd(models.DB, time.Date(2026, 8, 14, 23, 0, 0, 0, time.UTC))
	assert.Nil(suite.T(), err)
	assert.False(suite.T(), rolled)

	active, err := models.ActivePeriod(models.DB)
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), period.ID, active.ID)

	// The end date itself triggers the rollover with the default income
	rolled, err = models.CheckPeriodEnd(models.DB, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), rolled)

	active, err = models.ActivePeriod(models.DB)
	assert.Nil(suite.T(), err)
	assert.NotEqual(suite.T(), period.ID, active.ID)
	suite.assertDecimalEqual(120000, active.InitialIncome)
	assert.Equal(suite.T(), "2026-08-15", active.StartDate.String())
}

func (suite *TestSuiteStandard) TestCheckPeriodEndWithoutActivePeriod() {
	suite.createTestWorld()

	rolled, err := models.CheckPeriodEnd(models.DB, time.Now())
	assert.Nil(suite.T(), err)
	assert.False(suite.T(), rolled)
}

func (suite *TestSuiteStandard) TestSynchronizeKeepsSpentAndZeroesRemoved() {
	world := suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	period := suite.createTestPeriod(decimal.NewFromInt(100000), now)

	// Spend on Food so we can verify spending survives the change
	_, err := models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[0].ID, decimal.NewFromInt(5000), "Groceries", "", now)
	assert.Nil(suite.T(), err)

	// New parameter version: Transport loses its share, Food takes 70
	newCategory := suite.createTestCategory(models.Category{Name: "Health", Position: 4})
	_ = suite.createTestParameters(models.Parameters{
		DefaultIncome:      decimal.NewFromInt(120000),
		Currency:           "FC",
		TithingPercent:     10,
		MainSavingPercent:  20,
		ExtraSavingPercent: 50,
	}, []models.CategoryShare{
		{CategoryID: world.Categories[0].ID, Percentage: 70},
		{CategoryID: world.Categories[1].ID, Percentage: 20},
		{CategoryID: newCategory.ID, Percentage: 10},
	})

	budgets, err := models.PeriodBudgets(models.DB, period.ID)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), budgets, 4)

	byCategory := map[uuid.UUID]models.Budget{}
	for _, budget := range budgets {
		byCategory[budget.CategoryID] = budget
	}

	// Income in the period is still 100000: tithing 10000, saving
	// 20000, spendable 70000 split 70/20/10
	suite.assertDecimalEqual(49000, byCategory[world.Categories[0].ID].Allocated)
	suite.assertDecimalEqual(5000, byCategory[world.Categories[0].ID].Spent)
	suite.assertDecimalEqual(14000, byCategory[world.Categories[1].ID].Allocated)
	suite.assertDecimalEqual(7000, byCategory[newCategory.ID].Allocated)

	// Transport lost its share: zeroed, not deleted
	suite.assertDecimalEqual(0, byCategory[world.Categories[2].ID].Allocated)

	active, err := models.ActivePeriod(models.DB)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(10000, active.TithingAmount)
	suite.assertDecimalEqual(20000, active.SavingAmount)
}

func (suite *TestSuiteStandard) TestSynchronizeWithoutActivePeriod() {
	suite.createTestWorld()

	// No active period: synchronization is a no-op, not an error
	assert.Nil(suite.T(), models.SynchronizeActivePeriod(models.DB, time.Now()))
}

func (suite *TestSuiteStandard) TestPeriodContains() {
	period := models.Period{
		StartDate: types.NewDate(2026, 8, 1),
		EndDate:   types.NewDate(2026, 9, 1),
	}

	assert.True(suite.T(), period.Contains(types.NewDate(2026, 8, 1)))
	assert.True(suite.T(), period.Contains(types.NewDate(2026, 8, 31)))
	assert.False(suite.T(), period.Contains(types.NewDate(2026, 9, 1)))
	assert.False(suite.T(), period.Contains(types.NewDate(2026, 7, 31)))
}

func (suite *TestSuiteStandard) TestPeriodElapsedFraction() {
	period := models.Period{
		StartDate: types.NewDate(2026, 8, 1),
		EndDate:   types.NewDate(2026, 8, 31),
	}

	assert.InDelta(suite.T(), 0.5, period.ElapsedFraction(time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)), 0.01)
	assert.Equal(suite.T(), 0.0, period.ElapsedFraction(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(suite.T(), 1.0, period.ElapsedFraction(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))
}
