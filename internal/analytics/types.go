// Package analytics turns tag-filter queries into aggregate metrics over
// transactions, accounts, and budgets.
package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Resource types the engine can aggregate.
const (
	ResourceTransaction = "transaction"
	ResourceAccount     = "account"
	ResourceBudget      = "budget"
)

// EmptyMetricsMessage is the canonical message when no resources match.
const EmptyMetricsMessage = "No data found for the specified filters"

// Breakdown is one bucket of a secondary-dimension breakdown.
type Breakdown struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// TransactionMetrics aggregates matched transactions.
type TransactionMetrics struct {
	PeriodStart   *time.Time           `json:"period_start,omitempty"`
	PeriodEnd     *time.Time           `json:"period_end,omitempty"`
	ByType        map[string]Breakdown `json:"by_type"`
	ByCurrency    map[string]Breakdown `json:"by_currency"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	AverageAmount decimal.Decimal      `json:"average_amount"`
	MinAmount     decimal.Decimal      `json:"min_amount"`
	MaxAmount     decimal.Decimal      `json:"max_amount"`
}

// AccountMetrics aggregates matched accounts.
type AccountMetrics struct {
	ByAccountType  map[string]Breakdown `json:"by_account_type"`
	TotalBalance   decimal.Decimal      `json:"total_balance"`
	AverageBalance decimal.Decimal      `json:"average_balance"`
	ActiveCount    int                  `json:"active_count"`
}

// BudgetMetrics aggregates matched budgets.
type BudgetMetrics struct {
	TotalBudgetAmount     decimal.Decimal `json:"total_budget_amount"`
	TotalSpentAmount      decimal.Decimal `json:"total_spent_amount"`
	TotalRemaining        decimal.Decimal `json:"total_remaining"`
	UtilizationPercentage decimal.Decimal `json:"utilization_percentage"`
	ActiveCount           int             `json:"active_count"`
	OverBudgetCount       int             `json:"over_budget_count"`
}

// Metrics is the result of one tag-filter computation. Exactly one of the
// per-resource sections is set; an empty result carries only the count and
// message.
type Metrics struct {
	Transaction  *TransactionMetrics `json:"transaction,omitempty"`
	Account      *AccountMetrics     `json:"account,omitempty"`
	Budget       *BudgetMetrics      `json:"budget,omitempty"`
	ResourceType string              `json:"resource_type"`
	Message      string              `json:"message,omitempty"`
	TotalCount   int                 `json:"total_count"`
}

// emptyMetrics returns the canonical empty shape for a resource type.
func emptyMetrics(resourceType string) *Metrics {
	return &Metrics{
		ResourceType: resourceType,
		TotalCount:   0,
		Message:      EmptyMetricsMessage,
	}
}

// toMap flattens metrics to a JSON-shaped map for view persistence.
func (m *Metrics) toMap() (map[string]any, error) {
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}
	return out, nil
}

// SummaryEntry is one resource type's slot in a summary. A failed
// computation surfaces inline as Error with a zero count instead of
// aborting the other resource types.
type SummaryEntry struct {
	Metrics    *Metrics `json:"metrics,omitempty"`
	Error      string   `json:"error,omitempty"`
	TotalCount int      `json:"total_count"`
}

// Summary covers all three resource types under one filter set.
type Summary struct {
	Transactions SummaryEntry `json:"transaction"`
	Accounts     SummaryEntry `json:"account"`
	Budgets      SummaryEntry `json:"budget"`
}
