package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richardsr020/maxim-advisor/internal/allocation"
	"github.com/richardsr020/maxim-advisor/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType is the kind of a ledger entry.
type TransactionType string

const (
	TransactionTypeIncomeMain  TransactionType = "income_main"
	TransactionTypeIncomeExtra TransactionType = "income_extra"
	TransactionTypeExpense     TransactionType = "expense"
)

// Transaction is one append-only ledger entry. Transactions are never
// mutated after creation.
type Transaction struct {
	DefaultModel
	PeriodID     uuid.UUID       `json:"periodId"`                                              // Period the transaction belongs to
	Type         TransactionType `json:"type" example:"expense"`                                // income_main, income_extra or expense
	CategoryID   *uuid.UUID      `json:"categoryId"`                                            // Category for expenses, nil for income
	Category     Category        `json:"-"`                                                     // The category for expenses
	Amount       decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"4500"`       // Amount of the transaction
	Description  string          `json:"description" example:"Groceries"`                       // What the transaction was for
	Comment      string          `json:"comment" example:""`                                    // Justification, mandatory for unexpected categories
	Date         types.Date      `json:"date" example:"2026-08-15"`                             // Day the transaction happened
	TithingPaid  decimal.Decimal `json:"tithingPaid" gorm:"type:DECIMAL(20,8)" example:"0"`     // Tithing split off this income
	SavingPaid   decimal.Decimal `json:"savingPaid" gorm:"type:DECIMAL(20,8)" example:"0"`      // Saving split off this income
	BalanceAfter decimal.Decimal `json:"balanceAfter" gorm:"type:DECIMAL(20,8)" example:"23500"` // Remaining amount after the transaction
}

func (Transaction) Self() string {
	return "Transaction"
}

func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Description = strings.TrimSpace(t.Description)
	t.Comment = strings.TrimSpace(t.Comment)

	// Ensure that the category ID is nil and not a pointer to a nil
	// UUID when it is not set
	if t.CategoryID != nil && *t.CategoryID == uuid.Nil {
		t.CategoryID = nil
	}

	return nil
}

// DeferredTithing tracks the tithing share of an extra income that was
// not paid out immediately.
type DeferredTithing struct {
	DefaultModel
	Amount         decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"` // Deferred amount
	SourcePeriodID uuid.UUID       `json:"sourcePeriodId"`                   // Period the income was recorded in
	TargetPeriodID *uuid.UUID      `json:"targetPeriodId"`                   // Period the tithing is to be paid in, nil while open
	Paid           bool            `json:"paid" example:"false"`             // Has the deferred tithing been paid?
}

func (DeferredTithing) Self() string {
	return "Deferred tithing"
}

// RecordExpense validates and appends an expense to the ledger and
// increments the spent amount of its budget, both in one transaction.
//
// Expenses on unexpected categories require a non-empty comment. The
// amount must not exceed the remaining budget of the category; the
// returned error carries the available amount. After a successful
// write, threshold alerts and spending habit checks run for the
// category.
func RecordExpense(db *gorm.DB, cfg HabitConfig, categoryID uuid.UUID, amount decimal.Decimal, description, comment string, now time.Time) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	var transaction Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		period, err := ActivePeriod(tx)
		if err != nil {
			return err
		}

		var category Category
		err = tx.First(&category, "id = ?", categoryID).Error
		if err != nil {
			return err
		}

		if category.Unexpected && strings.TrimSpace(comment) == "" {
			return ErrCommentRequired
		}

		budget, err := periodBudget(tx, period.ID, categoryID)
		if err != nil {
			return err
		}

		available := budget.Remaining()
		if amount.GreaterThan(available) {
			return fmt.Errorf("%w: %s available", ErrOverBudget, available)
		}

		err = tx.Model(&budget).Update("spent", budget.Spent.Add(amount)).Error
		if err != nil {
			return err
		}

		transaction = Transaction{
			PeriodID:     period.ID,
			Type:         TransactionTypeExpense,
			CategoryID:   &category.ID,
			Amount:       amount,
			Description:  description,
			Comment:      comment,
			Date:         types.DateOf(now),
			BalanceAfter: available.Sub(amount),
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		return Transaction{}, err
	}

	// Alerts are informational, a failure here does not undo the
	// expense
	err = CheckBudgetAlerts(db, transaction.PeriodID, categoryID)
	if err != nil {
		log.Warn().Str("category", categoryID.String()).Err(err).Msg("budget alert check failed")
	}

	err = CheckExpenseHabits(db, cfg, transaction.PeriodID, categoryID, amount, now)
	if err != nil {
		log.Warn().Str("category", categoryID.String()).Err(err).Msg("spending habit check failed")
	}

	return transaction, nil
}

// RecordMainIncome adds a main income to the active period: tithing and
// saving are split off and added to the period totals, the spendable
// rest is allocated over the category shares and added to the budgets,
// and the income is appended to the ledger. One transaction.
func RecordMainIncome(db *gorm.DB, amount decimal.Decimal, description string, now time.Time) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	var transaction Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		period, err := ActivePeriod(tx)
		if err != nil {
			return err
		}

		params, err := ActiveParameters(tx)
		if err != nil {
			return err
		}

		tithing, saving, spendable := allocation.Split(amount, params.TithingPercent, params.MainSavingPercent)

		err = tx.Model(&period).Select("TithingAmount", "SavingAmount", "InitialIncome").Updates(Period{
			TithingAmount: period.TithingAmount.Add(tithing),
			SavingAmount:  period.SavingAmount.Add(saving),
			InitialIncome: amount,
		}).Error
		if err != nil {
			return err
		}

		shares, err := params.Shares(tx)
		if err != nil {
			return err
		}

		for _, additional := range allocation.Allocate(spendable, toShares(shares)) {
			err = addToBudget(tx, period.ID, additional.CategoryID, additional.Amount)
			if err != nil {
				return err
			}
		}

		transaction = Transaction{
			PeriodID:     period.ID,
			Type:         TransactionTypeIncomeMain,
			Amount:       amount,
			Description:  description,
			Date:         types.DateOf(now),
			TithingPaid:  tithing,
			SavingPaid:   saving,
			BalanceAfter: spendable,
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		return Transaction{}, err
	}

	return transaction, nil
}

// RecordExtraIncome adds an occasional income to the active period. The
// saving share uses the extra saving percentage, the spendable rest is
// distributed proportionally over the existing budget allocations and
// the tithing share is deferred instead of being added to the period
// totals.
func RecordExtraIncome(db *gorm.DB, amount decimal.Decimal, description string, now time.Time) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	var transaction Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		period, err := ActivePeriod(tx)
		if err != nil {
			return err
		}

		params, err := ActiveParameters(tx)
		if err != nil {
			return err
		}

		tithing, saving, spendable := allocation.Split(amount, params.TithingPercent, params.ExtraSavingPercent)

		budgets, err := PeriodBudgets(tx, period.ID)
		if err != nil {
			return err
		}

		current := make([]allocation.Amount, 0, len(budgets))
		for _, budget := range budgets {
			current = append(current, allocation.Amount{
				CategoryID: budget.CategoryID,
				Amount:     budget.Allocated,
			})
		}

		for _, additional := range allocation.DistributeProportional(spendable, current) {
			err = addToBudget(tx, period.ID, additional.CategoryID, additional.Amount)
			if err != nil {
				return err
			}
		}

		if tithing.IsPositive() {
			err = tx.Create(&DeferredTithing{
				Amount:         tithing,
				SourcePeriodID: period.ID,
			}).Error
			if err != nil {
				return err
			}
		}

		remaining, err := PeriodRemaining(tx, period.ID)
		if err != nil {
			return err
		}

		transaction = Transaction{
			PeriodID:     period.ID,
			Type:         TransactionTypeIncomeExtra,
			Amount:       amount,
			Description:  description,
			Date:         types.DateOf(now),
			TithingPaid:  tithing,
			SavingPaid:   saving,
			BalanceAfter: remaining,
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		return Transaction{}, err
	}

	return transaction, nil
}

// addToBudget increments the allocated amount of one budget row.
func addToBudget(tx *gorm.DB, periodID, categoryID uuid.UUID, amount decimal.Decimal) error {
	budget, err := periodBudget(tx, periodID, categoryID)
	if err != nil {
		return err
	}

	return tx.Model(&budget).Update("allocated", budget.Allocated.Add(amount)).Error
}

// PeriodRemaining returns the sum of the remaining amounts over all
// budgets of a period.
func PeriodRemaining(db *gorm.DB, periodID uuid.UUID) (decimal.Decimal, error) {
	var remaining decimal.Decimal
	err := db.Model(&Budget{}).
		Where(&Budget{PeriodID: periodID}).
		Select("COALESCE(SUM(allocated) - SUM(spent), 0)").
		Scan(&remaining).Error

	return remaining, err
}

// TransactionFilter narrows down transaction lists.
type TransactionFilter struct {
	PeriodID   uuid.UUID
	CategoryID uuid.UUID
	Type       TransactionType
	From       types.Date
	Until      types.Date
	Limit      int
}

// Transactions returns ledger entries matching the filter, most recent
// first.
func Transactions(db *gorm.DB, filter TransactionFilter) ([]Transaction, error) {
	query := db.Model(&Transaction{}).Order("date DESC, created_at DESC")

	if filter.PeriodID != uuid.Nil {
		query = query.Where("period_id = ?", filter.PeriodID)
	}

	if filter.CategoryID != uuid.Nil {
		query = query.Where("category_id = ?", filter.CategoryID)
	}

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	if !filter.From.IsZero() {
		query = query.Where("date >= ?", filter.From)
	}

	if !filter.Until.IsZero() {
		query = query.Where("date <= ?", filter.Until)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var transactions []Transaction
	err := query.Find(&transactions).Error
	return transactions, err
}
