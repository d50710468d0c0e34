// Package notify generates the periodic AI analyses. It is driven by
// the notify command, typically from a cron job.
package notify

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/ai"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/render"
	"github.com/richardsr020/maxim-advisor/internal/report"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

//go:embed prompts/notify.md
var notifyPrompt string

const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 800
)

// ErrUnknownTimeframe is returned for timeframes other than week,
// month and year.
var ErrUnknownTimeframe = errors.New("the timeframe must be week, month or year")

// Options control a notification run.
type Options struct {
	DryRun bool // Write the export but skip the AI call and the notification
	Force  bool // Run even when the timeframe is not due today
}

// RangeFor returns the date range a timeframe covers when run at now.
// Both bounds are inclusive.
//
// The week range is the ISO week of yesterday up to yesterday, so a
// Monday run covers the full previous week. The month and year ranges
// cover the previous calendar month and year.
func RangeFor(timeframe models.Timeframe, now time.Time) (types.Date, types.Date, error) {
	switch timeframe {
	case models.TimeframeWeek:
		yesterday := now.AddDate(0, 0, -1)
		monday := yesterday
		for monday.Weekday() != time.Monday {
			monday = monday.AddDate(0, 0, -1)
		}
		return types.DateOf(monday), types.DateOf(yesterday), nil

	case models.TimeframeMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		last := first.AddDate(0, 1, -1)
		return types.DateOf(first), types.DateOf(last), nil

	case models.TimeframeYear:
		year := now.Year() - 1
		return types.NewDate(year, 1, 1), types.NewDate(year, 12, 31), nil
	}

	return types.Date{}, types.Date{}, ErrUnknownTimeframe
}

// Due reports whether a timeframe is scheduled to run at now: weekly
// analyses on Mondays, monthly on the first of the month, yearly on
// January 1st.
func Due(timeframe models.Timeframe, now time.Time) bool {
	switch timeframe {
	case models.TimeframeWeek:
		return now.Weekday() == time.Monday
	case models.TimeframeMonth:
		return now.Day() == 1
	case models.TimeframeYear:
		return now.Month() == time.January && now.Day() == 1
	}

	return false
}

// Run generates the analyses for the given timeframes. A failure in
// one timeframe is logged and does not stop the others.
func Run(ctx context.Context, db *gorm.DB, client ai.Client, dir string, timeframes []models.Timeframe, opts Options, now time.Time) {
	for _, timeframe := range timeframes {
		err := runTimeframe(ctx, db, client, dir, timeframe, opts, now)
		if err != nil {
			log.Error().Str("timeframe", string(timeframe)).Err(err).Msg("Notify")
		}
	}
}

func runTimeframe(ctx context.Context, db *gorm.DB, client ai.Client, dir string, timeframe models.Timeframe, opts Options, now time.Time) error {
	start, end, err := RangeFor(timeframe, now)
	if err != nil {
		return err
	}

	if !opts.Force && !Due(timeframe, now) {
		log.Info().Str("timeframe", string(timeframe)).Msg("Notify: not due today, skipping")
		return nil
	}

	// A notification for the same range already exists, the run is a
	// repeat
	exists, err := models.NotificationExists(db, timeframe, start, end)
	if err != nil {
		return err
	}
	if exists {
		log.Info().Str("timeframe", string(timeframe)).Stringer("start", start).Stringer("end", end).Msg("Notify: analysis already exists, skipping")
		return nil
	}

	path, err := report.WriteRangeExport(db, dir, timeframe, start, end, now)
	if err != nil {
		return err
	}
	log.Info().Str("timeframe", string(timeframe)).Str("path", path).Msg("Notify: export written")

	if opts.DryRun {
		return nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	answer, err := client.Generate(ctx, ai.Request{
		System:      notifyPrompt,
		Prompt:      fmt.Sprintf("Timeframe: %s\n\n%s", timeframe, payload),
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		return err
	}

	notification := models.Notification{
		PeriodID:     activePeriodID(db),
		Timeframe:    timeframe,
		RangeStart:   start,
		RangeEnd:     end,
		ExportPath:   path,
		AnalysisHTML: render.AssistantHTML(answer),
		RawResponse:  answer,
	}
	err = db.Create(&notification).Error
	if err != nil {
		return err
	}

	log.Info().Str("timeframe", string(timeframe)).Stringer("id", notification.ID).Msg("Notify: notification created")
	return nil
}

// activePeriodID returns the active period for annotation, nil when
// none is running.
func activePeriodID(db *gorm.DB) *uuid.UUID {
	period, err := models.ActivePeriod(db)
	if err != nil {
		return nil
	}

	return &period.ID
}
