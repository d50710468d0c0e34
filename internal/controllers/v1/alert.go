package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richardsr020/maxim-advisor/internal/httputil"
	"github.com/richardsr020/maxim-advisor/internal/models"
)

// RegisterAlertRoutes registers the routes for alerts with
// the RouterGroup that is passed.
func RegisterAlertRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsAlertList)
	r.GET("", GetAlerts)
	r.OPTIONS("/:id/read", OptionsAlertRead)
	r.PATCH("/:id/read", ReadAlert)
}

type AlertListResponse struct {
	Data []models.Alert `json:"data"` // Unread alerts of the period
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Alerts
// @Success		204
// @Router			/v1/alerts [options]
func OptionsAlertList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Alerts
// @Success		204
// @Router			/v1/alerts/{id}/read [options]
func OptionsAlertRead(c *gin.Context) {
	httputil.OptionsPatch(c)
}

// @Summary		List alerts
// @Description	Returns the unread alerts of the active period, newest first
// @Tags			Alerts
// @Produce		json
// @Success		200		{object}	AlertListResponse
// @Failure		404		{object}	httpError
// @Param			limit	query		int	false	"Maximum number of alerts, defaults to 10"
// @Router			/v1/alerts [get]
func GetAlerts(c *gin.Context) {
	period, err := models.ActivePeriod(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.Bind(&query); err != nil {
		return
	}

	alerts, err := models.ActiveAlerts(models.DB, period.ID, query.Limit)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, AlertListResponse{Data: alerts})
}

// @Summary		Dismiss alert
// @Description	Marks an alert as read so that it no longer shows up
// @Tags			Alerts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/alerts/{id}/read [patch]
func ReadAlert(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	err := models.MarkAlertRead(models.DB, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
