package domain

import (
	"time"
)

// TransactionType classifies a transaction as money in or money out.
// Amounts are stored as non-negative magnitudes; the direction of the
// movement lives here, never in the sign of Amount.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// Transaction represents one statement line item produced by the model.
// Order within a ParsedStatement follows document order, which is not
// guaranteed to be chronological.
type Transaction struct {
	Date        time.Time       `json:"date"`        // parsed from "date" (YYYY-MM-DD)
	Description string          `json:"description"` // from "description"
	Amount      float64         `json:"amount"`      // magnitude, always >= 0
	Type        TransactionType `json:"type"`        // INCOME or EXPENSE
	Category    string          `json:"category"`    // free-text label from the model
}

// AccountSummary carries the statement header as extracted by the model.
// Monetary fields are decimal magnitudes in the statement currency.
type AccountSummary struct {
	AccountHolder   string  `json:"accountHolder"`
	AccountNumber   string  `json:"accountNumber"`
	StatementPeriod string  `json:"statementPeriod"`
	Currency        string  `json:"currency"`
	TotalIncome     float64 `json:"totalIncome"`
	TotalExpenses   float64 `json:"totalExpenses"`
	OpeningBalance  float64 `json:"openingBalance"`
	ClosingBalance  float64 `json:"closingBalance"`
}

// ParsedStatement is the typed dataset produced by one successful
// extraction. It is immutable after creation and replaced wholesale on
// reset or a new upload.
type ParsedStatement struct {
	Summary      AccountSummary `json:"summary"`
	Transactions []Transaction  `json:"transactions"`
	Insights     []string       `json:"insights"`
}
