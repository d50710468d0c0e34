// Package v1 implements the handlers for the v1 API.
package v1

import (
	"errors"
	"net/http"

	"github.com/richardsr020/maxim-advisor/internal/models"
	maxim_uuid "github.com/richardsr020/maxim-advisor/internal/uuid"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

type URIID struct {
	ID maxim_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

// status returns the appropriate HTTP status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) ||
		errors.Is(err, models.ErrNoActivePeriod) ||
		errors.Is(err, models.ErrNoParameters) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

// Cleanup errors
var errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")

// Transaction errors
var errTransactionTypeInvalid = errors.New("the type filter must be income_main, income_extra or expense")

// Chat errors
var errAssistantNotConfigured = errors.New("the assistant is not configured, set GEMINI_API_KEY to enable it")

// Export errors
var errYearParameter = errors.New("the year parameter must be set to a valid year")
