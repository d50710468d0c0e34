package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/httputil"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// habitConfig is the spending habit detection configuration used for
// all expenses recorded through the API.
var habitConfig = models.DefaultHabitConfig()

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func RegisterTransactionRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsTransactionList)
	r.GET("", GetTransactions)
	r.OPTIONS("/expense", OptionsTransactionCreate)
	r.POST("/expense", CreateExpense)
	r.OPTIONS("/income", OptionsTransactionCreate)
	r.POST("/income", CreateIncome)
	r.OPTIONS("/extra-income", OptionsTransactionCreate)
	r.POST("/extra-income", CreateExtraIncome)
	r.OPTIONS("/:id", OptionsTransactionDetail)
	r.GET("/:id", GetTransaction)
}

// TransactionQueryFilter narrows down the transaction list.
type TransactionQueryFilter struct {
	PeriodID   string `form:"period_id"`   // Period the transactions belong to
	CategoryID string `form:"category_id"` // Category of the transactions
	Type       string `form:"type"`        // income_main, income_extra or expense
	From       string `form:"from"`        // Earliest date to include
	Until      string `form:"until"`       // Latest date to include
	Limit      int    `form:"limit"`       // Maximum number of transactions to return
}

func (f TransactionQueryFilter) model() (models.TransactionFilter, error) {
	if f.Type != "" {
		if !slices.Contains([]models.TransactionType{models.TransactionTypeIncomeMain, models.TransactionTypeIncomeExtra, models.TransactionTypeExpense}, models.TransactionType(f.Type)) {
			return models.TransactionFilter{}, errTransactionTypeInvalid
		}
	}

	filter := models.TransactionFilter{
		Type:  models.TransactionType(f.Type),
		Limit: f.Limit,
	}

	var err error
	if f.PeriodID != "" {
		filter.PeriodID, err = uuid.Parse(f.PeriodID)
		if err != nil {
			return models.TransactionFilter{}, err
		}
	}

	if f.CategoryID != "" {
		filter.CategoryID, err = uuid.Parse(f.CategoryID)
		if err != nil {
			return models.TransactionFilter{}, err
		}
	}

	if f.From != "" {
		filter.From, err = types.ParseDate(f.From)
		if err != nil {
			return models.TransactionFilter{}, err
		}
	}

	if f.Until != "" {
		filter.Until, err = types.ParseDate(f.Until)
		if err != nil {
			return models.TransactionFilter{}, err
		}
	}

	return filter, nil
}

// ExpenseEditable are the fields of a new expense.
type ExpenseEditable struct {
	CategoryID  uuid.UUID       `json:"categoryId" binding:"required"`              // Category the expense belongs to
	Amount      decimal.Decimal `json:"amount" binding:"required" example:"4500"`   // Amount of the expense
	Description string          `json:"description" example:"Groceries"`            // What the expense was for
	Comment     string          `json:"comment" example:""`                         // Justification, mandatory for unexpected categories
}

// IncomeEditable are the fields of a new income.
type IncomeEditable struct {
	Amount      decimal.Decimal `json:"amount" binding:"required" example:"120000"` // Amount of the income
	Description string          `json:"description" example:"Salary"`               // Where the income came from
}

type TransactionResponse struct {
	Data models.Transaction `json:"data"` // The transaction
}

type TransactionListResponse struct {
	Data []models.Transaction `json:"data"` // List of transactions
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/expense [options]
func OptionsTransactionCreate(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	err := models.DB.First(&models.Transaction{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		List transactions
// @Description	Returns ledger entries matching the filter, most recent first
// @Tags			Transactions
// @Produce		json
// @Success		200			{object}	TransactionListResponse
// @Failure		400			{object}	httpError
// @Failure		500			{object}	httpError
// @Param			period_id	query		string	false	"Filter by period ID"
// @Param			category_id	query		string	false	"Filter by category ID"
// @Param			type		query		string	false	"Filter by type"
// @Param			from		query		string	false	"Earliest date to include"
// @Param			until		query		string	false	"Latest date to include"
// @Param			limit		query		int		false	"Maximum number of transactions"
// @Router			/v1/transactions [get]
func GetTransactions(c *gin.Context) {
	var queryFilter TransactionQueryFilter
	if err := c.Bind(&queryFilter); err != nil {
		return
	}

	filter, err := queryFilter.model()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	transactions, err := models.Transactions(models.DB, filter)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: transactions})
}

// @Summary		Get transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [get]
func GetTransaction(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	var transaction models.Transaction
	err := models.DB.First(&transaction, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Data: transaction})
}

// @Summary		Record expense
// @Description	Appends an expense to the ledger and increments the spent amount of its budget. Expenses must not exceed the remaining budget of their category.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201		{object}	TransactionResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			expense	body		ExpenseEditable	true	"Expense"
// @Router			/v1/transactions/expense [post]
func CreateExpense(c *gin.Context) {
	var editable ExpenseEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	transaction, err := models.RecordExpense(models.DB, habitConfig, editable.CategoryID, editable.Amount, editable.Description, editable.Comment, time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Data: transaction})
}

// @Summary		Record income
// @Description	Adds a main income to the active period. Tithing and saving are split off and the spendable rest is allocated over the category shares.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201		{object}	TransactionResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			income	body		IncomeEditable	true	"Income"
// @Router			/v1/transactions/income [post]
func CreateIncome(c *gin.Context) {
	var editable IncomeEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	transaction, err := models.RecordMainIncome(models.DB, editable.Amount, editable.Description, time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Data: transaction})
}

// @Summary		Record extra income
// @Description	Adds an occasional income to the active period. The saving share uses the extra saving percentage, the spendable rest is distributed proportionally over the existing allocations and the tithing share is deferred.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201		{object}	TransactionResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			income	body		IncomeEditable	true	"Income"
// @Router			/v1/transactions/extra-income [post]
func CreateExtraIncome(c *gin.Context) {
	var editable IncomeEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	transaction, err := models.RecordExtraIncome(models.DB, editable.Amount, editable.Description, time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Data: transaction})
}
