package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Parameters is one immutable version of the budgeting configuration.
//
// Exactly one row is active at any time. Changing the configuration
// creates a new version and deactivates the previous one, so that past
// periods keep pointing at the parameters they were computed with.
type Parameters struct {
	DefaultModel
	DefaultIncome      decimal.Decimal `json:"defaultIncome" gorm:"type:DECIMAL(20,8)" example:"120000"` // Income assumed when a period rolls over automatically
	Currency           string          `json:"currency" example:"FC"`                                    // Display currency code
	TithingPercent     int             `json:"tithingPercent" example:"10"`                              // Percentage of income set aside as tithing
	MainSavingPercent  int             `json:"mainSavingPercent" example:"20"`                           // Percentage of main income set aside as saving
	ExtraSavingPercent int             `json:"extraSavingPercent" example:"50"`                          // Percentage of extra income set aside as saving
	Active             bool            `json:"active" example:"true"`                                    // Is this the version currently in use?
}

func (Parameters) Self() string {
	return "Parameters"
}

func (p *Parameters) BeforeSave(_ *gorm.DB) error {
	p.Currency = strings.TrimSpace(p.Currency)

	for name, pct := range map[string]int{
		"tithing":      p.TithingPercent,
		"main saving":  p.MainSavingPercent,
		"extra saving": p.ExtraSavingPercent,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("the %s percentage must be between 0 and 100", name)
		}
	}

	if p.DefaultIncome.IsNegative() {
		return fmt.Errorf("the default income must not be negative")
	}

	return nil
}

// CategoryShare is the percentage of the spendable amount that one
// category receives under a specific parameter version.
type CategoryShare struct {
	DefaultModel
	ParametersID uuid.UUID `json:"parametersId"`               // Parameter version this share belongs to
	CategoryID   uuid.UUID `json:"categoryId"`                 // Category receiving the share
	Percentage   int       `json:"percentage" example:"40"`    // Share of the spendable amount in percent
	Category     Category  `json:"-"`                          // The category receiving the share
}

func (CategoryShare) Self() string {
	return "Category share"
}

// ActiveParameters returns the parameter version currently in use.
func ActiveParameters(db *gorm.DB) (Parameters, error) {
	var p Parameters
	err := db.Where(&Parameters{Active: true}, "Active").First(&p).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return Parameters{}, ErrNoParameters
		}
		return Parameters{}, err
	}

	return p, nil
}

// Shares returns the category shares of this parameter version, ordered
// by the position of their categories. The first share in the returned
// slice receives the allocation remainder.
func (p Parameters) Shares(db *gorm.DB) ([]CategoryShare, error) {
	var shares []CategoryShare
	err := db.
		Joins("JOIN categories ON categories.id = category_shares.category_id").
		Where(&CategoryShare{ParametersID: p.ID}).
		Order("categories.position ASC").
		Find(&shares).Error

	return shares, err
}

// CreateParameters creates a new parameter version together with its
// category shares and makes it the active one. The shares must sum to
// exactly 100 percent. If a period is active, its budgets are
// synchronized to the new version afterwards.
func CreateParameters(db *gorm.DB, p Parameters, shares []CategoryShare, now time.Time) (Parameters, error) {
	var sum int
	for _, share := range shares {
		if share.Percentage < 0 {
			return Parameters{}, ErrSharesDoNotSum100
		}
		sum += share.Percentage
	}
	if sum != 100 {
		return Parameters{}, ErrSharesDoNotSum100
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Parameters{}).Where("active = ?", true).Update("active", false).Error
		if err != nil {
			return err
		}

		p.Active = true
		err = tx.Create(&p).Error
		if err != nil {
			return err
		}

		for i := range shares {
			shares[i].ParametersID = p.ID
			err = tx.Create(&shares[i]).Error
			if err != nil {
				return err
			}
		}

		return synchronizeActivePeriod(tx, p, now)
	})
	if err != nil {
		return Parameters{}, err
	}

	return p, nil
}
