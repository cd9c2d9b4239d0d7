package extract

import (
	"strings"
	"testing"

	"github.com/dvloznov/statement-copilot/internal/domain"
)

func validRaw() map[string]interface{} {
	return map[string]interface{}{
		"summary": map[string]interface{}{
			"accountHolder":   "Jane Doe",
			"accountNumber":   "****1234",
			"statementPeriod": "01 Jan 2025 - 31 Jan 2025",
			"currency":        "eur",
			"totalIncome":     2500.0,
			"totalExpenses":   180.0,
			"openingBalance":  400.0,
			"closingBalance":  2720.0,
		},
		"transactions": []interface{}{
			map[string]interface{}{
				"date":        "2025-01-03",
				"description": "Salary January",
				"amount":      2500.0,
				"type":        "INCOME",
				"category":    "Salary",
			},
			map[string]interface{}{
				"date":        "2025-01-05",
				"description": "Starbucks Coffee",
				"amount":      4.5,
				"type":        "EXPENSE",
				"category":    "Food",
			},
			map[string]interface{}{
				"date":        "2025-01-02",
				"description": "Monthly transit pass",
				"amount":      175.5,
				"type":        "EXPENSE",
				"category":    "Transport",
			},
		},
		"insights": []interface{}{
			"Income arrives at the start of the month.",
			"Transport is the largest expense category.",
			"Coffee spending is minimal.",
		},
	}
}

func TestTransformStatement_PreservesTransactionOrder(t *testing.T) {
	stmt, err := transformStatement(validRaw())
	if err != nil {
		t.Fatalf("transformStatement() error = %v", err)
	}

	if got, want := len(stmt.Transactions), 3; got != want {
		t.Fatalf("len(Transactions) = %d, want %d", got, want)
	}

	// Document order, not chronological order.
	wantDescriptions := []string{"Salary January", "Starbucks Coffee", "Monthly transit pass"}
	for i, want := range wantDescriptions {
		if got := stmt.Transactions[i].Description; got != want {
			t.Errorf("Transactions[%d].Description = %q, want %q", i, got, want)
		}
	}

	if stmt.Summary.Currency != "EUR" {
		t.Errorf("Summary.Currency = %q, want %q", stmt.Summary.Currency, "EUR")
	}
	if len(stmt.Insights) != 3 {
		t.Errorf("len(Insights) = %d, want 3", len(stmt.Insights))
	}
}

func TestTransformStatement_RejectsMalformedOutput(t *testing.T) {
	corrupt := func(mutate func(raw map[string]interface{})) map[string]interface{} {
		raw := validRaw()
		mutate(raw)
		return raw
	}
	firstTx := func(raw map[string]interface{}) map[string]interface{} {
		return raw["transactions"].([]interface{})[0].(map[string]interface{})
	}

	tests := []struct {
		name    string
		raw     map[string]interface{}
		wantMsg string
	}{
		{
			name:    "missing summary",
			raw:     corrupt(func(raw map[string]interface{}) { delete(raw, "summary") }),
			wantMsg: "summary",
		},
		{
			name:    "summary wrong type",
			raw:     corrupt(func(raw map[string]interface{}) { raw["summary"] = "not an object" }),
			wantMsg: "want object",
		},
		{
			name:    "missing transactions",
			raw:     corrupt(func(raw map[string]interface{}) { delete(raw, "transactions") }),
			wantMsg: "transactions",
		},
		{
			name:    "missing insights",
			raw:     corrupt(func(raw map[string]interface{}) { delete(raw, "insights") }),
			wantMsg: "insights",
		},
		{
			name:    "negative amount",
			raw:     corrupt(func(raw map[string]interface{}) { firstTx(raw)["amount"] = -20.0 }),
			wantMsg: "non-negative",
		},
		{
			name:    "unknown transaction type",
			raw:     corrupt(func(raw map[string]interface{}) { firstTx(raw)["type"] = "TRANSFER" }),
			wantMsg: "INCOME or EXPENSE",
		},
		{
			name:    "bad date",
			raw:     corrupt(func(raw map[string]interface{}) { firstTx(raw)["date"] = "03/01/2025" }),
			wantMsg: "invalid date",
		},
		{
			name:    "missing description",
			raw:     corrupt(func(raw map[string]interface{}) { delete(firstTx(raw), "description") }),
			wantMsg: "description",
		},
		{
			name:    "amount as string",
			raw:     corrupt(func(raw map[string]interface{}) { firstTx(raw)["amount"] = "2500" }),
			wantMsg: "want number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transformStatement(tt.raw)
			if err == nil {
				t.Fatal("transformStatement() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestTransformStatement_NormalizesTypeCase(t *testing.T) {
	raw := validRaw()
	raw["transactions"].([]interface{})[0].(map[string]interface{})["type"] = " income "

	stmt, err := transformStatement(raw)
	if err != nil {
		t.Fatalf("transformStatement() error = %v", err)
	}
	if stmt.Transactions[0].Type != domain.TypeIncome {
		t.Errorf("Type = %q, want %q", stmt.Transactions[0].Type, domain.TypeIncome)
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain object",
			raw:  `{"summary": {}}`,
			want: `{"summary": {}}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"summary\": {}}\n```",
			want: `{"summary": {}}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"summary\": {}}\n```",
			want: `{"summary": {}}`,
		},
		{
			name: "chatter around the object",
			raw:  "Here is the result:\n{\"summary\": {}}\nHope that helps!",
			want: `{"summary": {}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
