package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/models"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Analysis bundles the detected habits and the recommendations derived
// from them.
type Analysis struct {
	Habits          []models.Habit          `json:"habits"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// PeriodExport is the complete snapshot of one period written to disk.
type PeriodExport struct {
	Meta          Meta                  `json:"meta"`
	Period        models.Period         `json:"period"`
	Parameters    ParametersView        `json:"parameters"`
	Summary       Summary               `json:"summary"`
	Budgets       []BudgetLine          `json:"budgets"`
	Transactions  []TransactionLine     `json:"transactions"`
	Notifications []models.Notification `json:"notifications"`
	Analysis      Analysis              `json:"analysis"`
}

// YearPeriod is the annual export entry for one period.
type YearPeriod struct {
	PeriodSummary
	TotalTithing decimal.Decimal `json:"total_tithing"`
	TotalSaving  decimal.Decimal `json:"total_saving"`
	SavingRate   decimal.Decimal `json:"saving_rate"`
}

// YearExport is the annual summary written to disk.
type YearExport struct {
	Meta              Meta            `json:"meta"`
	Year              int             `json:"year"`
	Periods           []YearPeriod    `json:"periods"`
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExtraIncome  decimal.Decimal `json:"total_extra_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	TotalTithing      decimal.Decimal `json:"total_tithing"`
	TotalSaving       decimal.Decimal `json:"total_saving"`
	AverageSavingRate decimal.Decimal `json:"average_saving_rate"`
}

// BuildPeriodExport assembles the export snapshot of one period without
// writing it.
func BuildPeriodExport(db *gorm.DB, periodID uuid.UUID, now time.Time) (PeriodExport, error) {
	ctx, err := Context(db, periodID, now)
	if err != nil {
		return PeriodExport{}, err
	}

	if ctx.Period == nil {
		return PeriodExport{}, models.ErrNoActivePeriod
	}

	// The context truncates the ledger, exports carry it whole.
	transactions, err := models.Transactions(db, models.TransactionFilter{PeriodID: ctx.Period.ID})
	if err != nil {
		return PeriodExport{}, err
	}

	export := PeriodExport{
		Meta:          Meta{GeneratedAt: now.UTC(), Scope: "period", PeriodLabel: ctx.Meta.PeriodLabel},
		Period:        *ctx.Period,
		Parameters:    *ctx.Parameters,
		Summary:       *ctx.Summary,
		Budgets:       ctx.Budgets,
		Transactions:  toLines(transactions, categoryNames(ctx.Categories)),
		Notifications: ctx.Notifications,
		Analysis: Analysis{
			Habits:          ctx.Habits,
			Recommendations: ctx.Recommendations,
		},
	}

	return export, nil
}

// WritePeriodExport writes the snapshot of one period into dir and
// records it in the export history.
func WritePeriodExport(db *gorm.DB, dir string, periodID uuid.UUID, now time.Time) (models.ExportRecord, error) {
	export, err := BuildPeriodExport(db, periodID, now)
	if err != nil {
		return models.ExportRecord{}, err
	}

	name := fmt.Sprintf("period_%s_%s.json", export.Period.ID, now.UTC().Format("20060102_150405"))
	path, err := writeJSON(dir, name, export)
	if err != nil {
		return models.ExportRecord{}, err
	}

	record := models.ExportRecord{Kind: "period", Path: path, PeriodID: &export.Period.ID}
	err = db.Create(&record).Error
	if err != nil {
		return models.ExportRecord{}, err
	}

	return record, nil
}

// BuildYearExport assembles the annual summary of all periods starting
// in the given year.
func BuildYearExport(db *gorm.DB, year int, now time.Time) (YearExport, error) {
	export := YearExport{
		Meta: Meta{GeneratedAt: now.UTC(), Scope: "year"},
		Year: year,
	}

	var periods []models.Period
	err := db.Where("start_date >= ? AND start_date < ?", types.NewDate(year, 1, 1), types.NewDate(year+1, 1, 1)).
		Order("start_date ASC").Find(&periods).Error
	if err != nil {
		return YearExport{}, err
	}

	rateSum := decimal.Zero
	for _, period := range periods {
		totals, err := Totals(db, period.ID)
		if err != nil {
			return YearExport{}, err
		}

		rate := savingRate(totals)
		export.Periods = append(export.Periods, YearPeriod{
			PeriodSummary: PeriodSummary{
				PeriodID:         period.ID,
				StartDate:        period.StartDate,
				EndDate:          period.EndDate,
				TotalIncome:      totals.TotalIncome,
				TotalExtraIncome: totals.TotalExtraIncome,
				TotalExpenses:    totals.TotalExpenses,
				TotalBudget:      totals.TotalBudget,
				TotalSpent:       totals.TotalSpent,
			},
			TotalTithing: totals.TotalTithing,
			TotalSaving:  totals.TotalSaving,
			SavingRate:   rate,
		})

		export.TotalIncome = export.TotalIncome.Add(totals.TotalIncome)
		export.TotalExtraIncome = export.TotalExtraIncome.Add(totals.TotalExtraIncome)
		export.TotalExpenses = export.TotalExpenses.Add(totals.TotalExpenses)
		export.TotalTithing = export.TotalTithing.Add(totals.TotalTithing)
		export.TotalSaving = export.TotalSaving.Add(totals.TotalSaving)
		rateSum = rateSum.Add(rate)
	}

	if len(export.Periods) > 0 {
		export.AverageSavingRate = rateSum.Div(decimal.NewFromInt(int64(len(export.Periods)))).Round(1)
	}

	return export, nil
}

// WriteYearExport writes the annual summary into dir and records it in
// the export history.
func WriteYearExport(db *gorm.DB, dir string, year int, now time.Time) (models.ExportRecord, error) {
	export, err := BuildYearExport(db, year, now)
	if err != nil {
		return models.ExportRecord{}, err
	}

	name := fmt.Sprintf("year_%d_%s.json", year, now.UTC().Format("20060102_150405"))
	path, err := writeJSON(dir, name, export)
	if err != nil {
		return models.ExportRecord{}, err
	}

	record := models.ExportRecord{Kind: "year", Path: path}
	err = db.Create(&record).Error
	if err != nil {
		return models.ExportRecord{}, err
	}

	return record, nil
}

// WriteRangeExport writes the analysis input for a notification run
// into dir. Range exports are transient analysis inputs and do not
// appear in the export history.
func WriteRangeExport(db *gorm.DB, dir string, timeframe models.Timeframe, start, end types.Date, now time.Time) (string, error) {
	report, err := Range(db, start, end, now)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("ai_%s_%s_%s.json", timeframe, start, end)
	return writeJSON(dir, name, report)
}

func writeJSON(dir, name string, data any) (string, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", err
	}

	marshaled, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	err = os.WriteFile(path, marshaled, 0o644)
	if err != nil {
		return "", err
	}

	return path, nil
}
