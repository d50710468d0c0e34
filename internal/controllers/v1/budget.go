package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/httputil"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/shopspring/decimal"
)

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func RegisterBudgetRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsBudgetList)
	r.GET("", GetBudgets)
}

// BudgetObject is one budget with its derived values and category.
type BudgetObject struct {
	models.Budget
	CategoryName   string          `json:"categoryName" example:"Food"`    // Name of the category
	Icon           string          `json:"icon" example:"🍎"`              // Icon of the category
	Color          string          `json:"color" example:"#22c55e"`        // Color of the category
	Remaining      decimal.Decimal `json:"remaining" example:"16000"`      // Amount still available
	PercentageUsed decimal.Decimal `json:"percentageUsed" example:"42.9"`  // Spent share of the allocation in percent
	Status         string          `json:"status" example:"normal"`        // normal, warning, critical or over
	Over           bool            `json:"over" example:"false"`           // Has more than the allocation been spent?
}

type BudgetListResponse struct {
	Data []BudgetObject `json:"data"` // Budgets of the period
}

func newBudgetObject(budget models.Budget) BudgetObject {
	return BudgetObject{
		Budget:         budget,
		CategoryName:   budget.Category.Name,
		Icon:           budget.Category.Icon,
		Color:          budget.Category.Color,
		Remaining:      budget.Remaining(),
		PercentageUsed: budget.PercentageUsed(),
		Status:         budget.Status(),
		Over:           budget.Over(),
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets [options]
func OptionsBudgetList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		List budgets
// @Description	Returns the budgets of a period with their derived values, ordered by category position. Without a period_id, the active period is used.
// @Tags			Budgets
// @Produce		json
// @Success		200			{object}	BudgetListResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			period_id	query		string	false	"Period to list budgets for"
// @Router			/v1/budgets [get]
func GetBudgets(c *gin.Context) {
	periodID := uuid.Nil
	if raw, ok := c.GetQuery("period_id"); ok {
		var err error
		periodID, err = uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
			return
		}
	}

	if periodID == uuid.Nil {
		period, err := models.ActivePeriod(models.DB)
		if err != nil {
			c.JSON(status(err), httpError{Error: err.Error()})
			return
		}
		periodID = period.ID
	}

	budgets, err := models.PeriodBudgets(models.DB, periodID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	data := make([]BudgetObject, 0, len(budgets))
	for _, budget := range budgets {
		data = append(data, newBudgetObject(budget))
	}

	c.JSON(http.StatusOK, BudgetListResponse{Data: data})
}
