package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/httputil"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/shopspring/decimal"
)

// RegisterPeriodRoutes registers the routes for periods with
// the RouterGroup that is passed.
func RegisterPeriodRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsPeriodList)
	r.GET("", GetPeriods)
	r.POST("", CreatePeriod)
	r.OPTIONS("/active", OptionsPeriodActive)
	r.GET("/active", GetActivePeriod)
	r.OPTIONS("/check", OptionsPeriodCheck)
	r.GET("/check", CheckPeriod)
	r.OPTIONS("/:id", OptionsPeriodDetail)
	r.GET("/:id", GetPeriod)
}

// PeriodEditable are the fields used when a period is started manually.
type PeriodEditable struct {
	Income       decimal.Decimal `json:"income" binding:"required" example:"120000"` // Income the period starts with
	ParametersID uuid.UUID       `json:"parametersId"`                               // Parameter version to use, defaults to the active one
}

type PeriodResponse struct {
	Data models.Period `json:"data"` // The period
}

type PeriodListResponse struct {
	Data []models.Period `json:"data"` // List of periods
}

type PeriodCheckResponse struct {
	NewPeriod bool `json:"newPeriod" example:"true"` // Did the check start a new period?
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Periods
// @Success		204
// @Router			/v1/periods [options]
func OptionsPeriodList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Periods
// @Success		204
// @Router			/v1/periods/active [options]
func OptionsPeriodActive(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Periods
// @Success		204
// @Router			/v1/periods/check [options]
func OptionsPeriodCheck(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Periods
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/periods/{id} [options]
func OptionsPeriodDetail(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	err := models.DB.First(&models.Period{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		List periods
// @Description	Returns all periods, most recent first
// @Tags			Periods
// @Produce		json
// @Success		200	{object}	PeriodListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/periods [get]
func GetPeriods(c *gin.Context) {
	var periods []models.Period
	err := models.DB.Order("start_date DESC").Find(&periods).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, PeriodListResponse{Data: periods})
}

// @Summary		Active period
// @Description	Returns the period currently running
// @Tags			Periods
// @Produce		json
// @Success		200	{object}	PeriodResponse
// @Failure		404	{object}	httpError
// @Router			/v1/periods/active [get]
func GetActivePeriod(c *gin.Context) {
	period, err := models.ActivePeriod(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, PeriodResponse{Data: period})
}

// @Summary		Get period
// @Tags			Periods
// @Produce		json
// @Success		200	{object}	PeriodResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/periods/{id} [get]
func GetPeriod(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	var period models.Period
	err := models.DB.First(&period, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, PeriodResponse{Data: period})
}

// @Summary		Start period
// @Description	Starts a new period with the income that is passed. The previous active period is closed.
// @Tags			Periods
// @Accept			json
// @Produce		json
// @Success		201		{object}	PeriodResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			period	body		PeriodEditable	true	"Period"
// @Router			/v1/periods [post]
func CreatePeriod(c *gin.Context) {
	var editable PeriodEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	period, err := models.CreatePeriod(models.DB, editable.Income, editable.ParametersID, time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, PeriodResponse{Data: period})
}

// @Summary		Check period end
// @Description	Rolls the active period over when its end date has been reached and reports whether a new period was started
// @Tags			Periods
// @Produce		json
// @Success		200	{object}	PeriodCheckResponse
// @Failure		500	{object}	httpError
// @Router			/v1/periods/check [get]
func CheckPeriod(c *gin.Context) {
	rolled, err := models.CheckPeriodEnd(models.DB, time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, PeriodCheckResponse{NewPeriod: rolled})
}
