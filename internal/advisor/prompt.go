package advisor

import (
	"strings"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

// SummarizeExpenses renders one line per expense.
func SummarizeExpenses(expenses []models.Expense) string {
	var b strings.Builder
	for i, e := range expenses {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(e.Date.String())
		b.WriteString(": ")
		b.WriteString(e.Description)
		b.WriteString(" (")
		b.WriteString(e.Amount.StringFixed(2))
		b.WriteString(") - [")
		b.WriteString(e.Category)
		b.WriteString("]")
	}
	return b.String()
}

// BuildPrompt asks for a driver-focused analysis of the expense list.
func BuildPrompt(expenses []models.Expense) string {
	parts := []string{
		"You are a financial advisor specialized in ride-hail drivers and delivery couriers.",
		"Analyze the following financial records of the user:",
		"",
		SummarizeExpenses(expenses),
		"",
		"Focus your analysis on:",
		"1. Real profitability: comment on maintenance and fuel costs relative to overall spending.",
		"2. Spending alerts: point out whether the user spends too much on food or non-essential items while working.",
		"3. Three strategic tips, such as the best times to refuel, preventive maintenance, or how to raise the margin per km driven.",
		"",
		"Answer in friendly, direct Markdown.",
	}
	return strings.Join(parts, "\n")
}
