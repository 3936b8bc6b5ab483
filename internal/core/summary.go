package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sentinels for rows with blank currency or category.
const (
	UnknownCurrency       = "UNKNOWN"
	UncategorizedCategory = "Uncategorized"
)

// weekdayOrder fixes the report ordering Monday through Sunday.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// weekdayNames maps weekdays to their Spanish display names.
var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// currencyTotals accumulates per-currency aggregations while scanning rows.
// Category and date insertion order is preserved so that equal-amount
// categories keep a stable first-seen ordering.
type currencyTotals struct {
	total    int64
	byCat    map[string]int64
	catOrder []string
	byDay    map[time.Weekday]int64
	byDate   map[string]int64
	dateKeys []Date
}

func newCurrencyTotals() *currencyTotals {
	return &currencyTotals{
		byCat:  map[string]int64{},
		byDay:  map[time.Weekday]int64{},
		byDate: map[string]int64{},
	}
}

// Summarize scans raw data-sheet rows (header already removed) and builds a
// per-currency report for the inclusive [startDate, endDate] range. Dates are
// YYYY-MM-DD. Validation failures come back as descriptive messages, never as
// errors: the agent relays them to the user as-is.
//
// Row layout follows the data sheet: date (DD/MM/YYYY), description, amount,
// currency, category, wallet, refund_to. Rows with fewer than five cells, an
// unparseable date or an unparseable amount are skipped silently.
func Summarize(rows [][]string, startDate, endDate string) string {
	start, errStart := ParseISODate(startDate)
	end, errEnd := ParseISODate(endDate)
	if errStart != nil || errEnd != nil {
		return "Invalid date format. Please use YYYY-MM-DD."
	}
	if start.After(end.Time) {
		return "Start date must be before end date."
	}

	groups := map[string]*currencyTotals{}
	validCount := 0

	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		day, err := ParseDisplayDate(row[0])
		if err != nil {
			continue
		}
		if day.Before(start.Time) || day.After(end.Time) {
			continue
		}
		cents, ok := ParseAmountCents(row[2])
		if !ok {
			continue
		}

		currency := strings.ToUpper(strings.TrimSpace(row[3]))
		if currency == "" {
			currency = UnknownCurrency
		}
		category := strings.TrimSpace(row[4])
		if category == "" {
			category = UncategorizedCategory
		}

		g := groups[currency]
		if g == nil {
			g = newCurrencyTotals()
			groups[currency] = g
		}
		g.total += cents
		if _, seen := g.byCat[category]; !seen {
			g.catOrder = append(g.catOrder, category)
		}
		g.byCat[category] += cents
		g.byDay[day.Weekday()] += cents
		dateKey := day.Display()
		if _, seen := g.byDate[dateKey]; !seen {
			g.dateKeys = append(g.dateKeys, day)
		}
		g.byDate[dateKey] += cents
		validCount++
	}

	if validCount == 0 {
		return fmt.Sprintf("No expenses found between %s and %s.", startDate, endDate)
	}

	currencies := make([]string, 0, len(groups))
	for c := range groups {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	lines := []string{fmt.Sprintf("Resumen de gastos del %s al %s\n", startDate, endDate)}
	for _, currency := range currencies {
		g := groups[currency]
		lines = append(lines,
			fmt.Sprintf("--- Moneda: %s ---", currency),
			fmt.Sprintf("Gasto Total: %s", Money{Cents: g.total}.Format()),
		)

		lines = append(lines, "\nTop 3 Categorías:")
		for _, cat := range topCategories(g, 3) {
			lines = append(lines, fmt.Sprintf("  - %s: %s", cat, Money{Cents: g.byCat[cat]}.Format()))
		}

		lines = append(lines, "\nPor Día de la Semana:")
		for _, wd := range weekdayOrder {
			cents, ok := g.byDay[wd]
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("  - %s: %s", weekdayNames[wd], Money{Cents: cents}.Format()))
		}

		lines = append(lines, "\nPor Fecha:")
		sort.Slice(g.dateKeys, func(i, j int) bool { return g.dateKeys[i].Before(g.dateKeys[j].Time) })
		for _, d := range g.dateKeys {
			key := d.Display()
			lines = append(lines, fmt.Sprintf("  - %s: %s", key, Money{Cents: g.byDate[key]}.Format()))
		}

		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// topCategories returns up to n category names ordered by amount descending.
// Equal amounts keep first-seen row order; there is no deeper tie-break rule.
func topCategories(g *currencyTotals, n int) []string {
	cats := append([]string(nil), g.catOrder...)
	sort.SliceStable(cats, func(i, j int) bool {
		return g.byCat[cats[i]] > g.byCat[cats[j]]
	})
	if len(cats) > n {
		cats = cats[:n]
	}
	return cats
}
