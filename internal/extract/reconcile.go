package extract

import (
	"fmt"
	"math"

	"github.com/dvloznov/statement-copilot/internal/domain"
)

// reconcileTolerance absorbs float accumulation noise when summing decimal
// magnitudes that arrived as JSON numbers.
const reconcileTolerance = 0.01

// ReconcileTotals cross-checks the model-reported totals against the summed
// transactions of each type. The source of the data is a language model, so
// the totals are not trusted blindly; a mismatch is reported as a non-fatal
// warning rather than an error, and the dataset is never mutated to "fix"
// it.
func ReconcileTotals(stmt *domain.ParsedStatement) []string {
	var income, expenses float64
	for _, tx := range stmt.Transactions {
		switch tx.Type {
		case domain.TypeIncome:
			income += tx.Amount
		case domain.TypeExpense:
			expenses += tx.Amount
		}
	}

	var warnings []string
	if math.Abs(income-stmt.Summary.TotalIncome) > reconcileTolerance {
		warnings = append(warnings, fmt.Sprintf(
			"reported total income %.2f differs from summed income transactions %.2f",
			stmt.Summary.TotalIncome, income))
	}
	if math.Abs(expenses-stmt.Summary.TotalExpenses) > reconcileTolerance {
		warnings = append(warnings, fmt.Sprintf(
			"reported total expenses %.2f differs from summed expense transactions %.2f",
			stmt.Summary.TotalExpenses, expenses))
	}
	return warnings
}
