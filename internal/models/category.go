package models

import (
	"strings"

	"gorm.io/gorm"
)

// Category represents a spending category.
type Category struct {
	DefaultModel
	Name       string `json:"name" gorm:"uniqueIndex" example:"Household"` // Name of the category
	Icon       string `json:"icon" example:"🏠"`                            // Icon shown in the UI
	Color      string `json:"color" example:"#2563eb"`                     // Display color
	Position   int    `json:"position" example:"1"`                        // Sort order; the lowest position receives the allocation remainder
	Unexpected bool   `json:"unexpected" example:"false"`                  // Expenses on unexpected categories require a comment
	Archived   bool   `json:"archived" example:"false"`                    // Archived categories are hidden from pickers
}

func (Category) Self() string {
	return "Category"
}

func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = strings.TrimSpace(c.Icon)
	c.Color = strings.TrimSpace(c.Color)
	return nil
}

// Categories returns all categories ordered by position.
func Categories(db *gorm.DB) ([]Category, error) {
	var categories []Category
	err := db.Order("position ASC, name ASC").Find(&categories).Error
	return categories, err
}
