package models_test

import (
	"time"

	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestRecordExpenseUpdatesBudget() {
	world := suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	period := suite.createTestPeriod(decimal.NewFromInt(100000), now)

	transaction, err := models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[0].ID, decimal.NewFromInt(4500), "Groceries", "", now)
	assert.Nil(suite.T(), err)

	assert.Equal(suite.T(), models.TransactionTypeExpense, transaction.Type)
	suite.assertDecimalEqual(23500, transaction.BalanceAfter, "Food had 28000 allocated")

	budgets, err := models.PeriodBudgets(models.DB, period.ID)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(4500, budgets[0].Spent)
}

func (suite *TestSuiteStandard) TestRecordExpenseSpentMatchesLedger() {
	world := suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	period := suite.createTestPeriod(decimal.NewFromInt(100000), now)

	for _, amount := range []int64{1200, 805, 7000} {
		_, err := models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[1].ID, decimal.NewFromInt(amount), "Stuff", "", now)
		assert.Nil(suite.T(), err)
	}

	var ledgerSum decimal.Decimal
	err := models.DB.Model(&models.Transaction{}).
		Where("period_id = ? AND category_id = ? AND type = ?", period.ID, world.Categories[1].ID, models.TransactionTypeExpense).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&ledgerSum).Error
	assert.Nil(suite.T(), err)

	budgets, err := models.PeriodBudgets(models.DB, period.ID)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), ledgerSum.Equal(budgets[1].Spent), "ledger %s, budget %s", ledgerSum, budgets[1].Spent)
	suite.assertDecimalEqual(9005, budgets[1].Spent)
}

func (suite *TestSuiteStandard) TestRecordExpenseSurvivesAlertFailure() {
	world := suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	period := suite.createTestPeriod(decimal.NewFromInt(100000), now)

	// Break the alert storage. The expense is committed before the
	// alert and habit checks run, so their failure must not surface to
	// the caller, a retry would record the expense twice.
	err := models.DB.Exec("DROP TABLE alerts").Error
	assert.Nil(suite.T(), err)

	transaction, err := models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[0].ID, decimal.NewFromInt(26000), "Groceries", "", now)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(2000, transaction.BalanceAfter)

	budgets, err := models.PeriodBudgets(models.DB, period.ID)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(26000, budgets[0].Spent)
}

func (suite *TestSuiteStandard) TestRecordExpenseOverBudget() {
	world := suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	suite.createTestPeriod(decimal.NewFromInt(100000), now)

	// Transport has 21000 allocated
	_, err := models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[2].ID, decimal.NewFromInt(21001), "Too much", "", now)
	assert.ErrorIs(suite.T(), err, models.ErrOverBudget)
	assert.Contains(suite.T(), err.Error(), "21000", "the error must carry the available amount")

	// Nothing may have been written
	active, err := models.ActivePeriod(models.DB)
	assert.Nil(suite.T(), err)
	budgets, err := models.PeriodBudgets(models.DB, active.ID)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(0, budgets[2].Spent)

	var count int64
	assert.Nil(suite.T(), models.DB.Model(&models.Transaction{}).Where("type = ?", models.TransactionTypeExpense).Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TestSuiteStandard) TestRecordExpenseCommentRequired() {
	suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	suite.createTestPeriod(decimal.NewFromInt(100000), now)

	unexpected := suite.createTestCategory(models.Category{Name: "Surprises", Position: 9, Unexpected: true})

	// The category has no budget yet, give it one by hand
	active, err := models.ActivePeriod(models.DB)
	assert.Nil(suite.T(), err)
	assert.Nil(suite.T(), models.DB.Create(&models.Budget{
		PeriodID:   active.ID,
		CategoryID: unexpected.ID,
		Allocated:  decimal.NewFromInt(5000),
	}).Error)

	_, err = models.RecordExpense(models.DB, models.DefaultHabitConfig(), unexpected.ID, decimal.NewFromInt(100), "Broken window", "", now)
	assert.ErrorIs(suite.T(), err, models.ErrCommentRequired)

	_, err = models.RecordExpense(models.DB, models.DefaultHabitConfig(), unexpected.ID, decimal.NewFromInt(100), "Broken window", "Storm damage", now)
	assert.Nil(suite.T(), err)
}

func (suite *TestSuiteStandard) TestRecordExpenseValidation() {
	world := suite.createTestWorld()
	suite.createTestPeriod(decimal.NewFromInt(100000), time.Now())

	_, err := models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[0].ID, decimal.Zero, "Nothing", "", time.Now())
	assert.ErrorIs(suite.T(), err, models.ErrInvalidAmount)

	_, err = models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[0].ID, decimal.NewFromInt(-5), "Negative", "", time.Now())
	assert.ErrorIs(suite.T(), err, models.ErrInvalidAmount)
}

func (suite *TestSuiteStandard) TestRecordExpenseWithoutActivePeriod() {
	world := suite.createTestWorld()

	_, err := models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[0].ID, decimal.NewFromInt(100), "Early", "", time.Now())
	assert.ErrorIs(suite.T(), err, models.ErrNoActivePeriod)
}

func (suite *TestSuiteStandard) TestRecordMainIncome() {
	suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	period := suite.createTestPeriod(decimal.NewFromInt(100000), now)

	transaction, err := models.RecordMainIncome(models.DB, decimal.NewFromInt(50000), "Salary advance", now)
	assert.Nil(suite.T(), err)

	// 10% tithing, 20% saving, 35000 spendable
	suite.assertDecimalEqual(5000, transaction.TithingPaid)
	suite.assertDecimalEqual(10000, transaction.SavingPaid)
	suite.assertDecimalEqual(35000, transaction.BalanceAfter)

	active, err := models.ActivePeriod(models.DB)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(15000, active.TithingAmount)
	suite.assertDecimalEqual(30000, active.SavingAmount)

	// 35000 split 40/30/30 on top of the opening allocation
	budgets, err := models.PeriodBudgets(models.DB, period.ID)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(28000+14000, budgets[0].Allocated)
	suite.assertDecimalEqual(21000+10500, budgets[1].Allocated)
	suite.assertDecimalEqual(21000+10500, budgets[2].Allocated)
}

func (suite *TestSuiteStandard) TestRecordExtraIncome() {
	suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	period := suite.createTestPeriod(decimal.NewFromInt(100000), now)

	transaction, err := models.RecordExtraIncome(models.DB, decimal.NewFromInt(22500), "Side job", now)
	assert.Nil(suite.T(), err)

	// 10% tithing (2250), 50% extra saving (11250), 9000 spendable
	suite.assertDecimalEqual(2250, transaction.TithingPaid)
	suite.assertDecimalEqual(11250, transaction.SavingPaid)

	// 9000 distributed proportionally over 28000/21000/21000
	budgets, err := models.PeriodBudgets(models.DB, period.ID)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(28000+3600, budgets[0].Allocated)
	suite.assertDecimalEqual(21000+2700, budgets[1].Allocated)
	suite.assertDecimalEqual(21000+2700, budgets[2].Allocated)

	// Extra income does not touch the period totals
	active, err := models.ActivePeriod(models.DB)
	assert.Nil(suite.T(), err)
	suite.assertDecimalEqual(10000, active.TithingAmount)
	suite.assertDecimalEqual(20000, active.SavingAmount)

	// The tithing share is deferred instead
	var deferred []models.DeferredTithing
	assert.Nil(suite.T(), models.DB.Find(&deferred).Error)
	assert.Len(suite.T(), deferred, 1)
	suite.assertDecimalEqual(2250, deferred[0].Amount)
	assert.Equal(suite.T(), period.ID, deferred[0].SourcePeriodID)
	assert.False(suite.T(), deferred[0].Paid)

	// Balance after is the full remaining amount of the period
	suite.assertDecimalEqual(70000+9000, transaction.BalanceAfter)
}

func (suite *TestSuiteStandard) TestTransactionFilter() {
	world := suite.createTestWorld()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	period := suite.createTestPeriod(decimal.NewFromInt(100000), now)

	_, err := models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[0].ID, decimal.NewFromInt(100), "One", "", now)
	assert.Nil(suite.T(), err)
	_, err = models.RecordExpense(models.DB, models.DefaultHabitConfig(), world.Categories[1].ID, decimal.NewFromInt(200), "Two", "", now.AddDate(0, 0, 3))
	assert.Nil(suite.T(), err)

	expenses, err := models.Transactions(models.DB, models.TransactionFilter{
		PeriodID: period.ID,
		Type:     models.TransactionTypeExpense,
	})
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), expenses, 2)

	filtered, err := models.Transactions(models.DB, models.TransactionFilter{
		PeriodID:   period.ID,
		CategoryID: world.Categories[0].ID,
	})
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), filtered, 1)
	assert.Equal(suite.T(), "One", filtered[0].Description)
}
