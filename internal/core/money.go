// Package core holds the expense domain: records, dates, money and the
// date-range summary used by the agent tools.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MoneyFromFloat converts a decimal amount to cents with half-up rounding.
func MoneyFromFloat(v float64) Money {
	if v < 0 {
		return Money{Cents: -int64(-v*100.0 + 0.5)}
	}
	return Money{Cents: int64(v*100.0 + 0.5)}
}

// Float returns the decimal value for writing to the sheet.
// Use cents for arithmetic; this is for output only.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Format renders the amount with two-decimal fixed-point formatting.
func (m Money) Format() string {
	return fmt.Sprintf("%.2f", m.Float())
}

// ParseAmountCents parses a sheet cell into cents. It accepts both dot and
// comma decimal separators. Returns false for cells that are not numbers;
// such rows are skipped by the aggregator rather than reported.
func ParseAmountCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return MoneyFromFloat(f).Cents, true
}
