package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/allocation"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Period is one budgeting window, one month from its start date.
//
// At most one period is active. A period becomes inactive when the next
// one is created and is never modified afterwards, except through
// synchronization while it is still active.
type Period struct {
	DefaultModel
	StartDate     types.Date      `json:"startDate" example:"2026-08-01"`                        // First day of the period
	EndDate       types.Date      `json:"endDate" example:"2026-09-01"`                          // First day after the period
	ParametersID  uuid.UUID       `json:"parametersId"`                                          // Parameter version the period was computed with
	Parameters    Parameters      `json:"-"`                                                     // The parameter version the period was computed with
	InitialIncome decimal.Decimal `json:"initialIncome" gorm:"type:DECIMAL(20,8)"`               // Main income the period started with
	TithingAmount decimal.Decimal `json:"tithingAmount" gorm:"type:DECIMAL(20,8)" example:"12000"` // Tithing set aside for the period
	SavingAmount  decimal.Decimal `json:"savingAmount" gorm:"type:DECIMAL(20,8)" example:"24000"`  // Saving set aside for the period
	Active        bool            `json:"active" example:"true"`                                 // Is this the current period?
}

func (Period) Self() string {
	return "Period"
}

// Contains reports whether the date falls into the period. The end date
// is exclusive.
func (p Period) Contains(date types.Date) bool {
	return !date.Before(p.StartDate) && date.Before(p.EndDate)
}

// DaysLeft returns the number of days from now until the period ends,
// clamped at zero.
func (p Period) DaysLeft(now time.Time) int {
	days := types.DateOf(now).DaysUntil(p.EndDate)
	if days < 0 {
		return 0
	}
	return days
}

// TotalDays returns the length of the period in days.
func (p Period) TotalDays() int {
	return p.StartDate.DaysUntil(p.EndDate)
}

// ElapsedFraction returns how much of the period has passed as a value
// between 0 and 1.
func (p Period) ElapsedFraction(now time.Time) float64 {
	total := p.TotalDays()
	if total <= 0 {
		return 1
	}

	elapsed := p.StartDate.DaysUntil(types.DateOf(now))
	if elapsed < 0 {
		return 0
	}
	if elapsed > total {
		return 1
	}

	return float64(elapsed) / float64(total)
}

// ActivePeriod returns the currently active period.
func ActivePeriod(db *gorm.DB) (Period, error) {
	var p Period
	err := db.Where(&Period{Active: true}, "Active").First(&p).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return Period{}, ErrNoActivePeriod
		}
		return Period{}, err
	}

	return p, nil
}

// PeriodByDate returns the period containing the date, preferring the
// most recently started one when periods overlap.
func PeriodByDate(db *gorm.DB, date types.Date) (Period, error) {
	var p Period
	err := db.
		Where("start_date <= ? AND end_date > ?", date, date).
		Order("start_date DESC").
		First(&p).Error

	return p, err
}

// RecentPeriods returns up to limit periods, most recent first.
func RecentPeriods(db *gorm.DB, limit int) ([]Period, error) {
	var periods []Period
	err := db.Order("start_date DESC").Limit(limit).Find(&periods).Error
	return periods, err
}

// CreatePeriod starts a new budgeting period in one transaction: the
// previous active period is deactivated, tithing and saving are split
// off the income, the spendable rest is allocated over the category
// shares and the income is appended to the ledger.
//
// A nil parametersID selects the active parameter version.
func CreatePeriod(db *gorm.DB, income decimal.Decimal, parametersID uuid.UUID, now time.Time) (Period, error) {
	if !income.IsPositive() {
		return Period{}, ErrInvalidAmount
	}

	var period Period
	err := db.Transaction(func(tx *gorm.DB) error {
		var params Parameters
		var err error
		if parametersID == uuid.Nil {
			params, err = ActiveParameters(tx)
		} else {
			err = tx.First(&params, "id = ?", parametersID).Error
		}
		if err != nil {
			return err
		}

		err = tx.Model(&Period{}).Where("active = ?", true).Update("active", false).Error
		if err != nil {
			return err
		}

		tithing, saving, spendable := allocation.Split(income, params.TithingPercent, params.MainSavingPercent)

		start := types.DateOf(now)
		period = Period{
			StartDate:     start,
			EndDate:       start.AddDate(0, 1, 0),
			ParametersID:  params.ID,
			InitialIncome: income,
			TithingAmount: tithing,
			SavingAmount:  saving,
			Active:        true,
		}
		err = tx.Create(&period).Error
		if err != nil {
			return err
		}

		shares, err := params.Shares(tx)
		if err != nil {
			return err
		}

		for _, amount := range allocation.Allocate(spendable, toShares(shares)) {
			err = tx.Create(&Budget{
				PeriodID:   period.ID,
				CategoryID: amount.CategoryID,
				Allocated:  amount.Amount,
				Spent:      decimal.Zero,
			}).Error
			if err != nil {
				return err
			}
		}

		return tx.Create(&Transaction{
			PeriodID:     period.ID,
			Type:         TransactionTypeIncomeMain,
			Amount:       income,
			Description:  "Period opening income",
			Date:         start,
			TithingPaid:  tithing,
			SavingPaid:   saving,
			BalanceAfter: spendable,
		}).Error
	})
	if err != nil {
		return Period{}, err
	}

	return period, nil
}

// CheckPeriodEnd rolls the active period over when its end date has
// been reached, starting a new period with the default income of the
// active parameter version. It reports whether a new period was
// created. Without an active period it does nothing.
func CheckPeriodEnd(db *gorm.DB, now time.Time) (bool, error) {
	period, err := ActivePeriod(db)
	if err != nil {
		if errors.Is(err, ErrNoActivePeriod) {
			return false, nil
		}
		return false, err
	}

	if types.DateOf(now).Before(period.EndDate) {
		return false, nil
	}

	params, err := ActiveParameters(db)
	if err != nil {
		return false, err
	}

	_, err = CreatePeriod(db, params.DefaultIncome, params.ID, now)
	if err != nil {
		return false, err
	}

	return true, nil
}

// SynchronizeActivePeriod recomputes the active period from the income
// transactions already recorded in it, using the active parameter
// version. Without an active period it does nothing.
func SynchronizeActivePeriod(db *gorm.DB, now time.Time) error {
	params, err := ActiveParameters(db)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return synchronizeActivePeriod(tx, params, now)
	})
}

// synchronizeActivePeriod rebuilds the tithing, saving and budget
// allocations of the active period under the given parameter version.
//
// The amounts are derived from the income transactions of the period,
// not from its stored totals: tithing is taken over the total income,
// saving over main and extra income separately. Budget rows are updated
// or inserted, and rows for categories that lost their share are zeroed
// but never deleted, so recorded spending stays visible.
func synchronizeActivePeriod(tx *gorm.DB, params Parameters, now time.Time) error {
	period, err := ActivePeriod(tx)
	if err != nil {
		if errors.Is(err, ErrNoActivePeriod) {
			return nil
		}
		return err
	}

	var mainIncome, extraIncome decimal.Decimal
	err = tx.Model(&Transaction{}).
		Where(&Transaction{PeriodID: period.ID, Type: TransactionTypeIncomeMain}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&mainIncome).Error
	if err != nil {
		return err
	}

	err = tx.Model(&Transaction{}).
		Where(&Transaction{PeriodID: period.ID, Type: TransactionTypeIncomeExtra}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&extraIncome).Error
	if err != nil {
		return err
	}

	total := mainIncome.Add(extraIncome)
	tithing := percentFloor(total, params.TithingPercent)
	saving := percentFloor(mainIncome, params.MainSavingPercent).
		Add(percentFloor(extraIncome, params.ExtraSavingPercent))

	spendable := total.Sub(tithing).Sub(saving)
	if spendable.IsNegative() {
		spendable = decimal.Zero
	}

	err = tx.Model(&period).Select("ParametersID", "TithingAmount", "SavingAmount").Updates(Period{
		ParametersID:  params.ID,
		TithingAmount: tithing,
		SavingAmount:  saving,
	}).Error
	if err != nil {
		return err
	}

	shares, err := params.Shares(tx)
	if err != nil {
		return err
	}

	allocated := map[uuid.UUID]decimal.Decimal{}
	for _, amount := range allocation.Allocate(spendable, toShares(shares)) {
		allocated[amount.CategoryID] = amount.Amount
	}

	var budgets []Budget
	err = tx.Where(&Budget{PeriodID: period.ID}).Find(&budgets).Error
	if err != nil {
		return err
	}

	for _, budget := range budgets {
		target, ok := allocated[budget.CategoryID]
		if !ok {
			// The category lost its share, keep the row with its
			// spending but nothing allocated
			target = decimal.Zero
		}
		delete(allocated, budget.CategoryID)

		err = tx.Model(&budget).Update("allocated", target).Error
		if err != nil {
			return err
		}
	}

	for categoryID, amount := range allocated {
		err = tx.Create(&Budget{
			PeriodID:   period.ID,
			CategoryID: categoryID,
			Allocated:  amount,
			Spent:      decimal.Zero,
		}).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// toShares converts ordered category shares into allocation input.
func toShares(shares []CategoryShare) []allocation.Share {
	out := make([]allocation.Share, 0, len(shares))
	for _, share := range shares {
		out = append(out, allocation.Share{
			CategoryID: share.CategoryID,
			Percentage: share.Percentage,
		})
	}
	return out
}

// percentFloor applies a percentage and floors the result.
func percentFloor(amount decimal.Decimal, percent int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Floor()
}
