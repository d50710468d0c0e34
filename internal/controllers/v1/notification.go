package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richardsr020/maxim-advisor/internal/httputil"
	"github.com/richardsr020/maxim-advisor/internal/models"
)

// RegisterNotificationRoutes registers the routes for notifications
// with the RouterGroup that is passed.
func RegisterNotificationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsNotificationList)
	r.GET("", GetNotifications)
	r.OPTIONS("/read-all", OptionsNotificationReadAll)
	r.PATCH("/read-all", ReadAllNotifications)
	r.OPTIONS("/:id/read", OptionsNotificationRead)
	r.PATCH("/:id/read", ReadNotification)
}

type NotificationListResponse struct {
	Data []models.Notification `json:"data"` // Notifications, newest range first
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Notifications
// @Success		204
// @Router			/v1/notifications [options]
func OptionsNotificationList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Notifications
// @Success		204
// @Router			/v1/notifications/{id}/read [options]
func OptionsNotificationRead(c *gin.Context) {
	httputil.OptionsPatch(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Notifications
// @Success		204
// @Router			/v1/notifications/read-all [options]
func OptionsNotificationReadAll(c *gin.Context) {
	httputil.OptionsPatch(c)
}

// @Summary		List notifications
// @Description	Returns the AI-generated periodic analyses, newest range first
// @Tags			Notifications
// @Produce		json
// @Success		200		{object}	NotificationListResponse
// @Failure		500		{object}	httpError
// @Param			limit	query		int	false	"Maximum number of notifications"
// @Router			/v1/notifications [get]
func GetNotifications(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.Bind(&query); err != nil {
		return
	}

	notifications, err := models.Notifications(models.DB, query.Limit)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, NotificationListResponse{Data: notifications})
}

// @Summary		Mark notification read
// @Tags			Notifications
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/notifications/{id}/read [patch]
func ReadNotification(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	err := models.MarkNotificationRead(models.DB, uri.ID.UUID)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Mark all notifications read
// @Tags			Notifications
// @Success		204
// @Failure		500	{object}	httpError
// @Router			/v1/notifications/read-all [patch]
func ReadAllNotifications(c *gin.Context) {
	err := models.MarkAllNotificationsRead(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
