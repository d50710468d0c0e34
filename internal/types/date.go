// Package types implements the special types the API uses.
package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Date is a calendar day without a time component.
type Date time.Time

// NewDate returns the Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a "YYYY-MM-DD" string and returns the Date it represents.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}

	return DateOf(t), nil
}

// String returns the date formatted as YYYY-MM-DD.
func (d Date) String() string {
	return time.Time(d).Format("2006-01-02")
}

// Time returns the date as a timestamp at midnight UTC.
func (d Date) Time() time.Time {
	return time.Time(d)
}

// IsZero reports if the date is the zero value.
func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

// AddDate returns the date shifted by the given years, months and days,
// normalized the same way time.Time.AddDate normalizes.
func (d Date) AddDate(years, months, days int) Date {
	return DateOf(time.Time(d).AddDate(years, months, days))
}

// DaysUntil returns the number of days from d to other. The result is
// negative when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(time.Time(other).Sub(time.Time(d)).Hours() / 24)
}

// Before reports if d is before other.
func (d Date) Before(other Date) bool {
	return time.Time(d).Before(time.Time(other))
}

// After reports if d is after other.
func (d Date) After(other Date) bool {
	return time.Time(d).After(time.Time(other))
}

// Equal reports if both dates are the same day.
func (d Date) Equal(other Date) bool {
	return time.Time(d).Equal(time.Time(other))
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. Plain dates
// and RFC3339 timestamps are both accepted, timestamps are truncated to
// their day.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%s is not a valid date", s)
	}
	s = s[1 : len(s)-1]

	parsed, err := ParseDate(s)
	if err == nil {
		*d = parsed
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("%q is not a valid date", s)
	}

	*d = DateOf(t)
	return nil
}

// Value implements the driver.Valuer interface. Dates are stored as
// YYYY-MM-DD strings so that lexicographic and chronological order match.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements the sql.Scanner interface.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a date", value)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		return nil
	}

	if len(s) > 10 {
		s = s[:10]
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// GormDataType implements the gorm migrator interface for the column type.
func (Date) GormDataType() string {
	return "date"
}
