package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/statement-copilot/internal/domain"
)

// transformStatement converts the generically-unmarshalled model output
// into a domain.ParsedStatement. The response schema keeps the model honest
// most of the time, but nothing stops it from returning a negative amount
// or a value outside the enum, so every record is checked here before the
// dataset reaches the rest of the system.
func transformStatement(raw map[string]interface{}) (*domain.ParsedStatement, error) {
	summaryAny, ok := raw["summary"]
	if !ok {
		return nil, fmt.Errorf("missing 'summary' key in model output")
	}
	summaryObj, ok := summaryAny.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("'summary' is %T, want object", summaryAny)
	}

	summary, err := transformSummary(summaryObj)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	txAny, ok := raw["transactions"]
	if !ok {
		return nil, fmt.Errorf("missing 'transactions' key in model output")
	}
	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("'transactions' is %T, want array", txAny)
	}

	transactions := make([]domain.Transaction, 0, len(txSlice))
	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transaction %d is %T, want object", i, item)
		}
		tx, err := transformTransaction(obj)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		transactions = append(transactions, *tx)
	}

	insights, err := transformInsights(raw["insights"])
	if err != nil {
		return nil, err
	}

	return &domain.ParsedStatement{
		Summary:      *summary,
		Transactions: transactions,
		Insights:     insights,
	}, nil
}

func transformSummary(obj map[string]interface{}) (*domain.AccountSummary, error) {
	totalIncome, err := getFloat64Field(obj, "totalIncome", true)
	if err != nil {
		return nil, err
	}
	totalExpenses, err := getFloat64Field(obj, "totalExpenses", true)
	if err != nil {
		return nil, err
	}
	if totalIncome < 0 || totalExpenses < 0 {
		return nil, fmt.Errorf("totals must be non-negative magnitudes, got income %v expenses %v", totalIncome, totalExpenses)
	}

	openingBalance, err := getFloat64Field(obj, "openingBalance", false)
	if err != nil {
		return nil, err
	}
	closingBalance, err := getFloat64Field(obj, "closingBalance", false)
	if err != nil {
		return nil, err
	}

	accountHolder, err := getStringField(obj, "accountHolder", false)
	if err != nil {
		return nil, err
	}
	accountNumber, err := getStringField(obj, "accountNumber", false)
	if err != nil {
		return nil, err
	}
	statementPeriod, err := getStringField(obj, "statementPeriod", false)
	if err != nil {
		return nil, err
	}
	currency, err := getStringField(obj, "currency", false)
	if err != nil {
		return nil, err
	}

	return &domain.AccountSummary{
		AccountHolder:   accountHolder,
		AccountNumber:   accountNumber,
		StatementPeriod: statementPeriod,
		Currency:        strings.ToUpper(currency),
		TotalIncome:     totalIncome,
		TotalExpenses:   totalExpenses,
		OpeningBalance:  openingBalance,
		ClosingBalance:  closingBalance,
	}, nil
}

func transformTransaction(obj map[string]interface{}) (*domain.Transaction, error) {
	dateStr, err := getStringField(obj, "date", true)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return nil, err
	}
	category, err := getStringField(obj, "category", true)
	if err != nil {
		return nil, err
	}

	amount, err := getFloat64Field(obj, "amount", true)
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("amount must be a non-negative magnitude, got %v", amount)
	}

	typeStr, err := getStringField(obj, "type", true)
	if err != nil {
		return nil, err
	}
	txType := domain.TransactionType(strings.ToUpper(strings.TrimSpace(typeStr)))
	if txType != domain.TypeIncome && txType != domain.TypeExpense {
		return nil, fmt.Errorf("unknown transaction type %q, want INCOME or EXPENSE", typeStr)
	}

	return &domain.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Type:        txType,
		Category:    category,
	}, nil
}

func transformInsights(v interface{}) ([]string, error) {
	if v == nil {
		return nil, fmt.Errorf("missing 'insights' key in model output")
	}
	slice, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("'insights' is %T, want array of strings", v)
	}

	insights := make([]string, 0, len(slice))
	for i, item := range slice {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("insight %d is %T, want string", i, item)
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		insights = append(insights, s)
	}
	return insights, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getFloat64Field(m map[string]interface{}, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int: // unlikely from encoding/json, but harmless to support
		return float64(val), nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
