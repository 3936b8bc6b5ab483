package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// ISODateFormat is the format the agent and tools exchange dates in.
	ISODateFormat = "2006-01-02"
	// DisplayDateFormat is the format stored in the data sheet.
	DisplayDateFormat = "02/01/2006"
)

// Currencies accepted by the record writer.
var AllowedCurrencies = []string{"USD", "PEN"}

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is one expense row as persisted in the data sheet.
	Record struct {
		Date        Date
		Description string
		Amount      Money
		Currency    string
		Category    string
		Wallet      string
		RefundTo    string
	}

	// Category is a reference-list entry from the categories sheet.
	Category struct {
		Name        string
		Description string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidDate     = errors.New("invalid date")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseISODate parses a YYYY-MM-DD date.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(ISODateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ParseDisplayDate parses a DD/MM/YYYY date as stored in the sheet.
func ParseDisplayDate(s string) (Date, error) {
	t, err := time.Parse(DisplayDateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Display renders the date in the sheet's DD/MM/YYYY format.
func (d Date) Display() string {
	return d.Format(DisplayDateFormat)
}

// ISO renders the date in YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(ISODateFormat)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ValidCurrency reports whether code belongs to the allowed set.
// Comparison is exact: normalization is the caller's concern.
func ValidCurrency(code string) bool {
	for _, c := range AllowedCurrencies {
		if code == c {
			return true
		}
	}
	return false
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if !ValidCurrency(r.Currency) {
		return ErrInvalidCurrency
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	return nil
}
