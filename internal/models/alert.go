package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AlertType is the origin of an alert.
type AlertType string

// AlertLevel is the severity of an alert.
type AlertLevel string

const (
	AlertTypeThreshold AlertType = "threshold"
	AlertTypeHabit     AlertType = "habit"

	AlertLevelWarning AlertLevel = "warning"
	AlertLevelDanger  AlertLevel = "danger"
)

// Alert is a stored warning about budget usage or a spending habit.
type Alert struct {
	DefaultModel
	PeriodID uuid.UUID  `json:"periodId"`                                        // Period the alert belongs to
	Type     AlertType  `json:"type" example:"threshold"`                        // threshold or habit
	Level    AlertLevel `json:"level" example:"warning"`                         // warning or danger
	Message  string     `json:"message" example:"Household at 82.5% - Watch your budget"` // Human readable message
	Read     bool       `json:"read" example:"false"`                            // Has the alert been dismissed?
}

func (Alert) Self() string {
	return "Alert"
}

// HabitConfig configures the per-expense habit checks. Category
// references left at uuid.Nil disable the check that needs them.
type HabitConfig struct {
	// HouseholdCategoryID and ReferenceCategoryID are compared against
	// each other: household running more than GapPoints ahead raises an
	// alert.
	HouseholdCategoryID uuid.UUID
	ReferenceCategoryID uuid.UUID
	GapPoints           int

	// ContingencyCategoryID is watched for early usage: more than
	// EarlyUseSpentPercent used before EarlyUseTimePercent of the
	// period has elapsed raises an alert.
	ContingencyCategoryID uuid.UUID
	EarlyUseSpentPercent  int
	EarlyUseTimePercent   int

	// Expenses above LargeExpense within the first EarlyDays days of a
	// period raise an alert, except on the contingency category.
	LargeExpense decimal.Decimal
	EarlyDays    int
}

// DefaultHabitConfig returns the habit thresholds used when nothing is
// configured. The category references stay unset.
func DefaultHabitConfig() HabitConfig {
	return HabitConfig{
		GapPoints:            10,
		EarlyUseSpentPercent: 50,
		EarlyUseTimePercent:  50,
		LargeExpense:         decimal.NewFromInt(10000),
		EarlyDays:            3,
	}
}

// CheckBudgetAlerts compares the budget usage of a category against the
// warning, critical and overspend thresholds and inserts an alert for
// the band the usage falls into.
//
// Alerts are not de-duplicated: every check that finds a band inserts a
// new row, so repeated expenses in the same band produce repeated
// alerts.
func CheckBudgetAlerts(db *gorm.DB, periodID, categoryID uuid.UUID) error {
	budget, err := periodBudget(db, periodID, categoryID)
	if err != nil {
		return err
	}

	var category Category
	err = db.First(&category, "id = ?", categoryID).Error
	if err != nil {
		return err
	}

	pct := budget.PercentageUsed()
	full := decimal.NewFromInt(100)

	switch {
	case pct.GreaterThanOrEqual(full):
		return createAlert(db, periodID, AlertTypeThreshold, AlertLevelDanger,
			fmt.Sprintf("%s at %s%% - Budget exceeded!", category.Name, pct))
	case pct.GreaterThanOrEqual(decimal.NewFromInt(BudgetCriticalPercent)):
		return createAlert(db, periodID, AlertTypeThreshold, AlertLevelDanger,
			fmt.Sprintf("%s at %s%% - Critical!", category.Name, pct))
	case pct.GreaterThanOrEqual(decimal.NewFromInt(BudgetWarningPercent)):
		return createAlert(db, periodID, AlertTypeThreshold, AlertLevelWarning,
			fmt.Sprintf("%s at %s%% - Watch your budget", category.Name, pct))
	}

	return nil
}

// CheckExpenseHabits runs the per-expense habit heuristics for an
// expense that was just recorded.
func CheckExpenseHabits(db *gorm.DB, cfg HabitConfig, periodID, categoryID uuid.UUID, amount decimal.Decimal, now time.Time) error {
	period := Period{}
	err := db.First(&period, "id = ?", periodID).Error
	if err != nil {
		return err
	}

	// Household running ahead of the reference category
	if cfg.HouseholdCategoryID != uuid.Nil && cfg.ReferenceCategoryID != uuid.Nil {
		household, householdErr := periodBudget(db, periodID, cfg.HouseholdCategoryID)
		reference, referenceErr := periodBudget(db, periodID, cfg.ReferenceCategoryID)

		if householdErr == nil && referenceErr == nil {
			householdPct := household.PercentageUsed()
			referencePct := reference.PercentageUsed()

			if householdPct.GreaterThan(referencePct.Add(decimal.NewFromInt(int64(cfg.GapPoints)))) {
				names := map[uuid.UUID]string{}
				var categories []Category
				err = db.Where("id IN ?", []uuid.UUID{cfg.HouseholdCategoryID, cfg.ReferenceCategoryID}).Find(&categories).Error
				if err != nil {
					return err
				}
				for _, category := range categories {
					names[category.ID] = category.Name
				}

				err = createAlert(db, periodID, AlertTypeHabit, AlertLevelWarning,
					fmt.Sprintf("%s (%s%%) ahead of %s (%s%%) - Check your priorities",
						names[cfg.HouseholdCategoryID], householdPct, names[cfg.ReferenceCategoryID], referencePct))
				if err != nil {
					return err
				}
			}
		}
	}

	// Contingency budget racing ahead of elapsed time
	if cfg.ContingencyCategoryID != uuid.Nil && categoryID == cfg.ContingencyCategoryID {
		contingency, contingencyErr := periodBudget(db, periodID, cfg.ContingencyCategoryID)
		if contingencyErr == nil {
			timePct := decimal.NewFromFloat(period.ElapsedFraction(now) * 100).Round(1)
			usedPct := contingency.PercentageUsed()

			if usedPct.GreaterThan(decimal.NewFromInt(int64(cfg.EarlyUseSpentPercent))) &&
				timePct.LessThan(decimal.NewFromInt(int64(cfg.EarlyUseTimePercent))) {
				err = createAlert(db, periodID, AlertTypeHabit, AlertLevelDanger,
					fmt.Sprintf("Contingency used at %s%% while only %s%% of the period has elapsed", usedPct, timePct))
				if err != nil {
					return err
				}
			}
		}
	}

	// Large expenses right at the start of a period
	if categoryID != cfg.ContingencyCategoryID && cfg.LargeExpense.IsPositive() {
		daysSinceStart := period.StartDate.DaysUntil(types.DateOf(now))

		if daysSinceStart <= cfg.EarlyDays && amount.GreaterThan(cfg.LargeExpense) {
			err = createAlert(db, periodID, AlertTypeHabit, AlertLevelWarning,
				fmt.Sprintf("Large expense (%s) at the start of the period - Be careful", amount))
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func createAlert(db *gorm.DB, periodID uuid.UUID, alertType AlertType, level AlertLevel, message string) error {
	return db.Create(&Alert{
		PeriodID: periodID,
		Type:     alertType,
		Level:    level,
		Message:  message,
	}).Error
}

// ActiveAlerts returns the unread alerts of a period, newest first.
func ActiveAlerts(db *gorm.DB, periodID uuid.UUID, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 10
	}

	var alerts []Alert
	err := db.
		Where("period_id = ? AND read = ?", periodID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error

	return alerts, err
}

// MarkAlertRead marks one alert as dismissed.
func MarkAlertRead(db *gorm.DB, id uuid.UUID) error {
	result := db.Model(&Alert{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w alert matching your query", ErrResourceNotFound)
	}

	return nil
}
