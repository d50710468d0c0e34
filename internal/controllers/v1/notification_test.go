package v1_test

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	v1 "github.com/richardsr020/maxim-advisor/internal/controllers/v1"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/test"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestNotification(suite *TestSuiteStandard, timeframe models.Timeframe, start, end types.Date) models.Notification {
	notification := models.Notification{
		Timeframe:    timeframe,
		RangeStart:   start,
		RangeEnd:     end,
		AnalysisHTML: "<p>All good.</p>",
	}
	require.Nil(suite.T(), models.DB.Create(&notification).Error)
	return notification
}

func (suite *TestSuiteStandard) TestNotificationsList() {
	_ = createTestNotification(suite, models.TimeframeWeek, types.NewDate(2026, 8, 3), types.NewDate(2026, 8, 9))
	_ = createTestNotification(suite, models.TimeframeWeek, types.NewDate(2026, 8, 10), types.NewDate(2026, 8, 16))

	recorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/notifications", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.NotificationListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	require.Len(suite.T(), response.Data, 2)
	// Newest range first
	assert.Equal(suite.T(), "2026-08-16", response.Data[0].RangeEnd.String())
}

func (suite *TestSuiteStandard) TestNotificationRead() {
	notification := createTestNotification(suite, models.TimeframeWeek, types.NewDate(2026, 8, 3), types.NewDate(2026, 8, 9))

	recorder := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/notifications/%s/read", notification.ID), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/notifications", "")
	var response v1.NotificationListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	require.Len(suite.T(), response.Data, 1)
	assert.True(suite.T(), response.Data[0].Read)
}

func (suite *TestSuiteStandard) TestNotificationReadUnknown() {
	recorder := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/notifications/%s/read", uuid.New()), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestNotificationsReadAll() {
	_ = createTestNotification(suite, models.TimeframeWeek, types.NewDate(2026, 8, 3), types.NewDate(2026, 8, 9))
	_ = createTestNotification(suite, models.TimeframeMonth, types.NewDate(2026, 7, 1), types.NewDate(2026, 7, 31))

	recorder := test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/notifications/read-all", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/notifications", "")
	var response v1.NotificationListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	for _, notification := range response.Data {
		assert.True(suite.T(), notification.Read)
	}
}
