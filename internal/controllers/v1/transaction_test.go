package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/richardsr020/maxim-advisor/internal/controllers/v1"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// categoryID returns the ID of the category with the name that is
// passed.
func categoryID(t *testing.T, name string) uuid.UUID {
	recorder := test.Request(t, http.MethodGet, "http://example.com/v1/categories", "")
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var response v1.CategoryListResponse
	test.DecodeResponse(t, &recorder, &response)

	for _, category := range response.Data {
		if category.Name == name {
			return category.ID
		}
	}

	require.FailNow(t, "No category with name", name)
	return uuid.Nil
}

func createTestExpense(t *testing.T, e v1.ExpenseEditable, expectedStatus ...int) v1.TransactionResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/transactions/expense", e)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var transaction v1.TransactionResponse
	test.DecodeResponse(t, &r, &transaction)

	return transaction
}

func (suite *TestSuiteStandard) TestExpenseCreate() {
	_ = startTestPeriod(suite.T(), 100000)
	food := categoryID(suite.T(), "Food")

	transaction := createTestExpense(suite.T(), v1.ExpenseEditable{
		CategoryID:  food,
		Amount:      decimal.NewFromInt(4500),
		Description: "Groceries",
	})

	assert.Equal(suite.T(), models.TransactionTypeExpense, transaction.Data.Type)
	// 40% of the 70000 spendable = 28000 allocated, 4500 spent
	assert.True(suite.T(), decimal.NewFromInt(23500).Equal(transaction.Data.BalanceAfter), "balance is %s", transaction.Data.BalanceAfter)
}

func (suite *TestSuiteStandard) TestExpenseOverBudget() {
	_ = startTestPeriod(suite.T(), 100000)
	food := categoryID(suite.T(), "Food")

	// Food has 28000 allocated
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions/expense", v1.ExpenseEditable{
		CategoryID: food,
		Amount:     decimal.NewFromInt(30000),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response struct {
		Error string `json:"error"`
	}
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), response.Error, "28000 available")
}

func (suite *TestSuiteStandard) TestExpenseUnexpectedNeedsComment() {
	_ = startTestPeriod(suite.T(), 100000)
	unexpected := createTestCategory(suite.T(), v1.CategoryEditable{Name: "Emergencies", Position: 4, Unexpected: true})

	// The category was created after the period, give it a budget by
	// hand so the ceiling check does not trigger first
	period, err := models.ActivePeriod(models.DB)
	require.Nil(suite.T(), err)
	require.Nil(suite.T(), models.DB.Create(&models.Budget{
		PeriodID:   period.ID,
		CategoryID: unexpected.Data.ID,
		Allocated:  decimal.NewFromInt(5000),
		Spent:      decimal.Zero,
	}).Error)

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{
		CategoryID: unexpected.Data.ID,
		Amount:     decimal.NewFromInt(1000),
	}, http.StatusBadRequest)

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{
		CategoryID: unexpected.Data.ID,
		Amount:     decimal.NewFromInt(1000),
		Comment:    "Flat tire",
	})
}

func (suite *TestSuiteStandard) TestIncomeCreate() {
	_ = startTestPeriod(suite.T(), 100000)

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions/income", v1.IncomeEditable{
		Amount:      decimal.NewFromInt(50000),
		Description: "Bonus",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var transaction v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &transaction)

	assert.Equal(suite.T(), models.TransactionTypeIncomeMain, transaction.Data.Type)
	assert.True(suite.T(), decimal.NewFromInt(5000).Equal(transaction.Data.TithingPaid), "tithing is %s", transaction.Data.TithingPaid)
	assert.True(suite.T(), decimal.NewFromInt(10000).Equal(transaction.Data.SavingPaid), "saving is %s", transaction.Data.SavingPaid)
}

func (suite *TestSuiteStandard) TestExtraIncomeCreate() {
	_ = startTestPeriod(suite.T(), 100000)

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/transactions/extra-income", v1.IncomeEditable{
		Amount:      decimal.NewFromInt(10000),
		Description: "Side job",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var transaction v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &transaction)

	assert.Equal(suite.T(), models.TransactionTypeIncomeExtra, transaction.Data.Type)
	// 50% extra saving, 10% tithing deferred
	assert.True(suite.T(), decimal.NewFromInt(5000).Equal(transaction.Data.SavingPaid), "saving is %s", transaction.Data.SavingPaid)
	assert.True(suite.T(), decimal.NewFromInt(1000).Equal(transaction.Data.TithingPaid), "tithing is %s", transaction.Data.TithingPaid)
}

func (suite *TestSuiteStandard) TestTransactionsList() {
	period := startTestPeriod(suite.T(), 100000)
	food := categoryID(suite.T(), "Food")

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{CategoryID: food, Amount: decimal.NewFromInt(4500)})
	_ = createTestExpense(suite.T(), v1.ExpenseEditable{CategoryID: food, Amount: decimal.NewFromInt(1500)})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"All", "", 3}, // opening income + 2 expenses
		{"Expenses only", "?type=expense", 2},
		{"By period", fmt.Sprintf("?period_id=%s", period.Data.ID), 3},
		{"By category", fmt.Sprintf("?category_id=%s", food), 2},
		{"Limited", "?limit=1", 1},
		{"Unknown period", fmt.Sprintf("?period_id=%s", uuid.New()), 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions%s", tt.query), "")
			test.AssertHTTPStatus(t, &recorder, http.StatusOK)

			var response v1.TransactionListResponse
			test.DecodeResponse(t, &recorder, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsListInvalidFilter() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?period_id=not-a-uuid", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTransactionsListInvalidType() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?type=refund", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	var response struct {
		Error string `json:"error"`
	}
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Contains(suite.T(), response.Error, "income_main, income_extra or expense")
}

func (suite *TestSuiteStandard) TestExpenseWithoutActivePeriod() {
	createTestParameters(suite.T())
	food := categoryID(suite.T(), "Food")

	_ = createTestExpense(suite.T(), v1.ExpenseEditable{
		CategoryID: food,
		Amount:     decimal.NewFromInt(1000),
	}, http.StatusNotFound)
}
