package extract

import (
	"google.golang.org/genai"
)

// statementSchema is the output-shape contract attached to every extraction
// request. It mirrors domain.ParsedStatement field for field, with the
// transaction type constrained to the two-value enum.
func statementSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"accountHolder":   {Type: genai.TypeString},
					"accountNumber":   {Type: genai.TypeString},
					"statementPeriod": {Type: genai.TypeString},
					"currency":        {Type: genai.TypeString, Description: "ISO 4217 code, e.g. EUR"},
					"totalIncome":     {Type: genai.TypeNumber},
					"totalExpenses":   {Type: genai.TypeNumber},
					"openingBalance":  {Type: genai.TypeNumber},
					"closingBalance":  {Type: genai.TypeNumber},
				},
				Required: []string{"totalIncome", "totalExpenses"},
			},
			"transactions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"date":        {Type: genai.TypeString, Description: "ISO date YYYY-MM-DD"},
						"description": {Type: genai.TypeString},
						"amount":      {Type: genai.TypeNumber, Description: "non-negative magnitude"},
						"type":        {Type: genai.TypeString, Enum: []string{"INCOME", "EXPENSE"}},
						"category":    {Type: genai.TypeString},
					},
					Required: []string{"date", "description", "amount", "type", "category"},
				},
			},
			"insights": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"summary", "transactions", "insights"},
	}
}
