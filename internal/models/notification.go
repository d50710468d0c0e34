package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"gorm.io/gorm"
)

// Timeframe is the window an AI notification covers.
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// Valid reports whether the timeframe is one of the known values.
func (t Timeframe) Valid() bool {
	return t == TimeframeWeek || t == TimeframeMonth || t == TimeframeYear
}

// Notification is one AI-generated periodic analysis. The unique index
// over timeframe and range makes the batch job idempotent: a rerun for
// the same range finds the existing row and skips generation.
type Notification struct {
	DefaultModel
	PeriodID     *uuid.UUID `json:"periodId"`                                                      // Period active when it was generated, if any
	Timeframe    Timeframe  `json:"timeframe" gorm:"uniqueIndex:notification_range" example:"week"` // week, month or year
	RangeStart   types.Date `json:"rangeStart" gorm:"uniqueIndex:notification_range"`              // First day of the analyzed range
	RangeEnd     types.Date `json:"rangeEnd" gorm:"uniqueIndex:notification_range"`                // Last day of the analyzed range
	ExportPath   string     `json:"exportPath"`                                                    // Data export file the analysis was based on
	AnalysisHTML string     `json:"analysisHtml"`                                                  // Sanitized analysis ready for display
	RawResponse  string     `json:"-"`                                                             // Unprocessed model output, kept for debugging
	Read         bool       `json:"read" example:"false"`                                          // Has the notification been opened?
}

func (Notification) Self() string {
	return "Notification"
}

// NotificationExists reports whether an analysis for the timeframe and
// range has already been generated.
func NotificationExists(db *gorm.DB, timeframe Timeframe, start, end types.Date) (bool, error) {
	var count int64
	err := db.Model(&Notification{}).
		Where("timeframe = ? AND range_start = ? AND range_end = ?", timeframe, start, end).
		Count(&count).Error

	return count > 0, err
}

// Notifications returns stored notifications, newest range first.
func Notifications(db *gorm.DB, limit int) ([]Notification, error) {
	query := db.Order("range_end DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var notifications []Notification
	err := query.Find(&notifications).Error
	return notifications, err
}

// NotificationsOverlapping returns notifications whose range overlaps
// the given window.
func NotificationsOverlapping(db *gorm.DB, start, end types.Date) ([]Notification, error) {
	var notifications []Notification
	err := db.
		Where("range_start <= ? AND range_end >= ?", end, start).
		Order("range_end DESC").
		Find(&notifications).Error

	return notifications, err
}

// MarkNotificationRead marks one notification as opened.
func MarkNotificationRead(db *gorm.DB, id uuid.UUID) error {
	result := db.Model(&Notification{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w notification matching your query", ErrResourceNotFound)
	}

	return nil
}

// MarkAllNotificationsRead marks every notification as opened.
func MarkAllNotificationsRead(db *gorm.DB) error {
	return db.Model(&Notification{}).Where("read = ?", false).Update("read", true).Error
}

// ExportRecord is one line of the export history.
type ExportRecord struct {
	DefaultModel
	Kind     string     `json:"kind" example:"period"` // period, year or range export
	Path     string     `json:"path"`                  // Where the file was written
	PeriodID *uuid.UUID `json:"periodId"`              // Exported period, if applicable
}

func (ExportRecord) Self() string {
	return "Export record"
}

// ExportRecords returns the export history, newest first.
func ExportRecords(db *gorm.DB, limit int) ([]ExportRecord, error) {
	query := db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []ExportRecord
	err := query.Find(&records).Error
	return records, err
}
