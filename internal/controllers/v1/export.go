package v1

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/httputil"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/report"
)

// exportDir returns the directory export files are written to.
func exportDir() string {
	if dir := os.Getenv("EXPORT_DIR"); dir != "" {
		return dir
	}

	return "exports"
}

// RegisterExportRoutes registers the routes for exports with
// the RouterGroup that is passed.
func RegisterExportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/period", OptionsExportPeriod)
	r.POST("/period", CreatePeriodExport)
	r.OPTIONS("/year", OptionsExportYear)
	r.POST("/year", CreateYearExport)
	r.OPTIONS("/history", OptionsExportHistory)
	r.GET("/history", GetExportHistory)
}

// PeriodExportEditable selects the period to export.
type PeriodExportEditable struct {
	PeriodID uuid.UUID `json:"periodId"` // Period to export, defaults to the active one
}

// YearExportEditable selects the year to export.
type YearExportEditable struct {
	Year int `json:"year" binding:"required" example:"2026"` // Year to export
}

type ExportResponse struct {
	Data models.ExportRecord `json:"data"` // The export history entry
}

type ExportHistoryResponse struct {
	Data []models.ExportRecord `json:"data"` // Export history, newest first
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Exports
// @Success		204
// @Router			/v1/exports/period [options]
func OptionsExportPeriod(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Exports
// @Success		204
// @Router			/v1/exports/year [options]
func OptionsExportYear(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Exports
// @Success		204
// @Router			/v1/exports/history [options]
func OptionsExportHistory(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Export period
// @Description	Writes a JSON export of a period to the export directory and records it in the history. Without a periodId, the active period is exported.
// @Tags			Exports
// @Accept			json
// @Produce		json
// @Success		201		{object}	ExportResponse
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			export	body		PeriodExportEditable	true	"Export"
// @Router			/v1/exports/period [post]
func CreatePeriodExport(c *gin.Context) {
	var editable PeriodExportEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	record, err := report.WritePeriodExport(models.DB, exportDir(), editable.PeriodID, time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ExportResponse{Data: record})
}

// @Summary		Export year
// @Description	Writes a JSON export aggregating all periods of a year to the export directory and records it in the history
// @Tags			Exports
// @Accept			json
// @Produce		json
// @Success		201		{object}	ExportResponse
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			export	body		YearExportEditable	true	"Export"
// @Router			/v1/exports/year [post]
func CreateYearExport(c *gin.Context) {
	var editable YearExportEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	if editable.Year < 2000 || editable.Year > 2100 {
		c.JSON(http.StatusBadRequest, httpError{Error: errYearParameter.Error()})
		return
	}

	record, err := report.WriteYearExport(models.DB, exportDir(), editable.Year, time.Now())
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ExportResponse{Data: record})
}

// @Summary		Export history
// @Description	Returns the export history, newest first
// @Tags			Exports
// @Produce		json
// @Success		200		{object}	ExportHistoryResponse
// @Failure		500		{object}	httpError
// @Param			limit	query		int	false	"Maximum number of entries"
// @Router			/v1/exports/history [get]
func GetExportHistory(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.Bind(&query); err != nil {
		return
	}

	records, err := models.ExportRecords(models.DB, query.Limit)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ExportHistoryResponse{Data: records})
}
