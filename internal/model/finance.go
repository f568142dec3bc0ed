package model

import "time"

type FinanceType string

const (
	FinanceIncome  FinanceType = "income"
	FinanceExpense FinanceType = "expense"
)

type FinanceRecord struct {
	ID              string      `json:"id"`
	TeamID          string      `json:"team_id"`
	Type            FinanceType `json:"type" validate:"required,oneof=income expense"`
	Amount          float64     `json:"amount" validate:"gte=0"`
	Description     string      `json:"description" validate:"required"`
	Category        *string     `json:"category,omitempty"`
	ExpenseCategory *string     `json:"expense_category,omitempty"`
	IncomeSource    *string     `json:"income_source,omitempty"`
	Date            time.Time   `json:"date"`
	CreatedBy       string      `json:"created_by"`
}

// FinanceSummary is computed by summation only.
type FinanceSummary struct {
	TotalIncome  float64            `json:"total_income"`
	TotalExpense float64            `json:"total_expense"`
	Balance      float64            `json:"balance"`
	ByCategory   map[string]float64 `json:"by_category"`
}
