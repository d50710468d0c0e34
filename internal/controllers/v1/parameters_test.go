package v1_test

import (
	"net/http"

	v1 "github.com/richardsr020/maxim-advisor/internal/controllers/v1"
	"github.com/richardsr020/maxim-advisor/internal/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestParametersCreateAndGet() {
	created := createTestParameters(suite.T())
	assert.True(suite.T(), created.Data.Active)
	assert.Len(suite.T(), created.Data.Shares, 3)

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/parameters", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.ParametersResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Equal(suite.T(), created.Data.ID, response.Data.ID)
	assert.Equal(suite.T(), "FC", response.Data.Currency)

	// Shares are ordered by category position, Food first
	assert.Equal(suite.T(), 40, response.Data.Shares[0].Percentage)
}

func (suite *TestSuiteStandard) TestParametersGetWithoutVersion() {
	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/parameters", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestParametersSharesMustSum100() {
	category := createTestCategory(suite.T(), v1.CategoryEditable{Name: "Food"})

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/parameters", v1.ParametersEditable{
		DefaultIncome:  decimal.NewFromInt(120000),
		TithingPercent: 10,
		Shares: []v1.ShareEditable{
			{CategoryID: category.Data.ID, Percentage: 70},
		},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestParametersHistory() {
	first := createTestParameters(suite.T())

	// A second version deactivates the first
	categories := first.Data.Shares
	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/parameters", v1.ParametersEditable{
		DefaultIncome:      decimal.NewFromInt(150000),
		Currency:           "FC",
		TithingPercent:     10,
		MainSavingPercent:  25,
		ExtraSavingPercent: 50,
		Shares: []v1.ShareEditable{
			{CategoryID: categories[0].CategoryID, Percentage: 50},
			{CategoryID: categories[1].CategoryID, Percentage: 25},
			{CategoryID: categories[2].CategoryID, Percentage: 25},
		},
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/parameters/history", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var history v1.ParametersListResponse
	test.DecodeResponse(suite.T(), &recorder, &history)

	if assert.Len(suite.T(), history.Data, 2) {
		assert.True(suite.T(), history.Data[0].Active)
		assert.False(suite.T(), history.Data[1].Active)
		assert.Equal(suite.T(), first.Data.ID, history.Data[1].ID)
	}
}
