// Package report derives the dashboard views from a parsed statement:
// category breakdowns, daily series and transaction search. Everything here
// is a pure function over the immutable dataset.
package report

import (
	"sort"
	"strings"

	"github.com/dvloznov/statement-copilot/internal/domain"
)

// CategoryTotal is one slice of the expense breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// TopExpenseCategories sums expense transactions per category and returns
// the top n, ordered by descending total. Ties break alphabetically so the
// output is deterministic. n <= 0 returns all categories.
func TopExpenseCategories(txs []domain.Transaction, n int) []CategoryTotal {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != domain.TypeExpense {
			continue
		}
		totals[tx.Category] += tx.Amount
	}

	result := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, CategoryTotal{Category: category, Total: total})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Category < result[j].Category
	})

	if n > 0 && n < len(result) {
		result = result[:n]
	}
	return result
}

// DailyTotal is one point of the daily-amount time series.
type DailyTotal struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// DailyTotals aggregates transactions per calendar day, ascending by date.
func DailyTotals(txs []domain.Transaction) []DailyTotal {
	byDay := make(map[string]*DailyTotal)
	for _, tx := range txs {
		day := tx.Date.Format("2006-01-02")
		point, ok := byDay[day]
		if !ok {
			point = &DailyTotal{Date: day}
			byDay[day] = point
		}
		switch tx.Type {
		case domain.TypeIncome:
			point.Income += tx.Amount
		case domain.TypeExpense:
			point.Expenses += tx.Amount
		}
	}

	result := make([]DailyTotal, 0, len(byDay))
	for _, point := range byDay {
		result = append(result, *point)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

// Filter returns the transactions whose description or category contains
// the query, case-insensitively. An empty query matches everything.
// Document order is preserved.
func Filter(txs []domain.Transaction, query string) []domain.Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return txs
	}

	result := make([]domain.Transaction, 0)
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Description), q) ||
			strings.Contains(strings.ToLower(tx.Category), q) {
			result = append(result, tx)
		}
	}
	return result
}
