package models

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HabitType classifies a detected spending habit.
type HabitType string

const (
	HabitPersistentOver  HabitType = "persistent_over"
	HabitIncreasingTrend HabitType = "increasing_trend"
)

// Habit is a spending pattern detected over several periods. Habits are
// computed on demand and never persisted.
type Habit struct {
	Type         HabitType `json:"type" example:"persistent_over"`                       // Kind of the habit
	Category     string    `json:"category" example:"Household"`                         // Name of the affected category
	Periods      int       `json:"periods,omitempty" example:"2"`                        // How many periods were over budget
	TrendPercent int       `json:"trendPercent,omitempty" example:"14"`                  // Normalized upward trend in percent
	Message      string    `json:"message" example:"Repeatedly over budget on Household (2 periods)"` // Human readable message
}

// Recommendation is advice derived from detected habits.
type Recommendation struct {
	Priority string `json:"priority" example:"high"` // high, medium or low
	Message  string `json:"message"`                 // What to change
	Action   string `json:"action"`                  // Concrete next step
}

// AnalyzeSpendingHabits looks for recurring patterns over the last
// periodsCount periods (default 3). With fewer than two periods there
// is not enough data and no habits are reported.
//
// Two patterns are detected: categories over budget in at least two of
// the periods, and per-category expense totals with an upward linear
// trend of more than 10% of their mean.
func AnalyzeSpendingHabits(db *gorm.DB, periodsCount int) ([]Habit, error) {
	if periodsCount <= 0 {
		periodsCount = 3
	}

	periods, err := RecentPeriods(db, periodsCount)
	if err != nil {
		return nil, err
	}

	if len(periods) < 2 {
		return []Habit{}, nil
	}

	// Analysis runs oldest to newest so that the trend direction is
	// meaningful
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].StartDate.Before(periods[j].StartDate)
	})

	overCounts := map[uuid.UUID]int{}
	names := map[uuid.UUID]string{}
	totalsByCategory := map[uuid.UUID][]float64{}

	for _, period := range periods {
		budgets, err := PeriodBudgets(db, period.ID)
		if err != nil {
			return nil, err
		}

		for _, budget := range budgets {
			names[budget.CategoryID] = budget.Category.Name
			if budget.Over() {
				overCounts[budget.CategoryID]++
			}
		}

		type categoryTotal struct {
			CategoryID uuid.UUID
			Name       string
			Total      decimal.Decimal
		}

		var totals []categoryTotal
		err = db.Model(&Transaction{}).
			Select("categories.id AS category_id, categories.name AS name, COALESCE(SUM(transactions.amount), 0) AS total").
			Joins("JOIN categories ON categories.id = transactions.category_id").
			Where("transactions.period_id = ? AND transactions.type = ?", period.ID, TransactionTypeExpense).
			Group("categories.id").
			Scan(&totals).Error
		if err != nil {
			return nil, err
		}

		for _, total := range totals {
			names[total.CategoryID] = total.Name
			totalsByCategory[total.CategoryID] = append(totalsByCategory[total.CategoryID], total.Total.InexactFloat64())
		}
	}

	habits := []Habit{}

	for categoryID, count := range overCounts {
		if count >= 2 {
			habits = append(habits, Habit{
				Type:     HabitPersistentOver,
				Category: names[categoryID],
				Periods:  count,
				Message:  fmt.Sprintf("Repeatedly over budget on %s (%d periods)", names[categoryID], count),
			})
		}
	}

	for categoryID, totals := range totalsByCategory {
		if len(totals) < 3 {
			continue
		}

		t := trend(totals)
		if t > 0.1 {
			pct := int(t * 100)
			habits = append(habits, Habit{
				Type:         HabitIncreasingTrend,
				Category:     names[categoryID],
				TrendPercent: pct,
				Message:      fmt.Sprintf("Upward spending trend on %s (+%d%%)", names[categoryID], pct),
			})
		}
	}

	// Stable output order for rendering and exports
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].Type != habits[j].Type {
			return habits[i].Type < habits[j].Type
		}
		return habits[i].Category < habits[j].Category
	})

	return habits, nil
}

// trend fits a linear regression over the values and returns the slope
// normalized by the mean. Zero when there is no usable signal.
func trend(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := float64(n)*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0
	}

	slope := (float64(n)*sumXY - sumX*sumY) / denominator

	average := sumY / float64(n)
	if average <= 0 {
		return 0
	}

	return slope / average
}

// Recommendations derives priority-sorted advice from the detected
// habits.
func Recommendations(db *gorm.DB) ([]Recommendation, error) {
	habits, err := AnalyzeSpendingHabits(db, 3)
	if err != nil {
		return nil, err
	}

	recommendations := []Recommendation{}
	for _, habit := range habits {
		switch habit.Type {
		case HabitPersistentOver:
			recommendations = append(recommendations, Recommendation{
				Priority: "high",
				Message:  fmt.Sprintf("Reduce spending on %s or raise its budget", habit.Category),
				Action:   fmt.Sprintf("Review the budget for %s", habit.Category),
			})
		case HabitIncreasingTrend:
			recommendations = append(recommendations, Recommendation{
				Priority: "medium",
				Message:  fmt.Sprintf("Spending on %s is rising steadily", habit.Category),
				Action:   "Look into what is driving the increase",
			})
		}
	}

	priorityOrder := map[string]int{"high": 3, "medium": 2, "low": 1}
	sort.SliceStable(recommendations, func(i, j int) bool {
		return priorityOrder[recommendations[i].Priority] > priorityOrder[recommendations[j].Priority]
	})

	return recommendations, nil
}
