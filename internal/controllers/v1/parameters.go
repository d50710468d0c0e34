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

// RegisterParametersRoutes registers the routes for parameters with
// the RouterGroup that is passed.
func RegisterParametersRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsParameters)
	r.GET("", GetParameters)
	r.POST("", CreateParameters)
	r.GET("/history", GetParametersHistory)
	r.OPTIONS("/history", OptionsParametersHistory)
}

// ShareEditable is one category share of a new parameter version.
type ShareEditable struct {
	CategoryID uuid.UUID `json:"categoryId" binding:"required"`              // Category receiving the share
	Percentage int       `json:"percentage" binding:"required" example:"40"` // Share of the spendable amount in percent
}

// ParametersEditable are the fields of a parameter version that can be
// set by the client. Creating parameters always creates a new version,
// existing versions are immutable.
type ParametersEditable struct {
	DefaultIncome      decimal.Decimal `json:"defaultIncome" example:"120000"`          // Income assumed on automatic rollover
	Currency           string          `json:"currency" example:"FC"`                   // Display currency code
	TithingPercent     int             `json:"tithingPercent" example:"10"`             // Percentage of income set aside as tithing
	MainSavingPercent  int             `json:"mainSavingPercent" example:"20"`          // Percentage of main income set aside as saving
	ExtraSavingPercent int             `json:"extraSavingPercent" example:"50"`         // Percentage of extra income set aside as saving
	Shares             []ShareEditable `json:"shares" binding:"required"`               // Category shares, must sum to 100
}

func (editable ParametersEditable) model() models.Parameters {
	return models.Parameters{
		DefaultIncome:      editable.DefaultIncome,
		Currency:           editable.Currency,
		TithingPercent:     editable.TithingPercent,
		MainSavingPercent:  editable.MainSavingPercent,
		ExtraSavingPercent: editable.ExtraSavingPercent,
	}
}

func (editable ParametersEditable) shares() []models.CategoryShare {
	shares := make([]models.CategoryShare, 0, len(editable.Shares))
	for _, share := range editable.Shares {
		shares = append(shares, models.CategoryShare{
			CategoryID: share.CategoryID,
			Percentage: share.Percentage,
		})
	}

	return shares
}

type ParametersObject struct {
	models.Parameters
	Shares []models.CategoryShare `json:"shares"` // Category shares of this version
}

type ParametersResponse struct {
	Data ParametersObject `json:"data"` // The parameter version
}

type ParametersListResponse struct {
	Data []models.Parameters `json:"data"` // All parameter versions, newest first
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Parameters
// @Success		204
// @Router			/v1/parameters [options]
func OptionsParameters(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Parameters
// @Success		204
// @Router			/v1/parameters/history [options]
func OptionsParametersHistory(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Active parameters
// @Description	Returns the parameter version currently in use including its category shares
// @Tags			Parameters
// @Produce		json
// @Success		200	{object}	ParametersResponse
// @Failure		404	{object}	httpError
// @Router			/v1/parameters [get]
func GetParameters(c *gin.Context) {
	params, err := models.ActiveParameters(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	shares, err := params.Shares(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ParametersResponse{Data: ParametersObject{Parameters: params, Shares: shares}})
}

// @Summary		Parameter history
// @Description	Returns all parameter versions, newest first
// @Tags			Parameters
// @Produce		json
// @Success		200	{object}	ParametersListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/parameters/history [get]
func GetParametersHistory(c *gin.Context) {
	var history []models.Parameters
	err := models.DB.Order("created_at DESC").Find(&history).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ParametersListResponse{Data: history})
}

// @Summary		Create parameters
// @Description	Creates a new parameter version, deactivates the previous one and synchronizes the active period with the new percentages
// @Tags			Parameters
// @Accept			json
// @Produce		json
// @Success		201			{object}	ParametersResponse
// @Failure		400			{object}	httpError
// @Failure		500			{object}	httpError
// @Param			parameters	body		ParametersEditable	true	"Parameters"
// @Router			/v1/parameters [post]
func CreateParameters(c *gin.Context) {
	var editable ParametersEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	params, err := models.CreateParameters(models.DB, editable.model(), editable.shares(), time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	shares, err := params.Shares(models.DB)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ParametersResponse{Data: ParametersObject{Parameters: params, Shares: shares}})
}
