package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a financial account owned by a tenant.
type Account struct {
	CreatedAt  time.Time
	ID         string
	Name       string
	Type       string // e.g. checking, savings, credit
	Currency   string
	TenantID   string
	TenantType TenantType
	Balance    decimal.Decimal
	IsActive   bool
}

// Budget tracks planned versus actual spending for a period.
type Budget struct {
	CreatedAt   time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time
	ID          string
	Name        string
	Category    string
	TenantID    string
	TenantType  TenantType
	TotalAmount decimal.Decimal
	SpentAmount decimal.Decimal
	IsActive    bool
}

// Remaining returns the unspent portion of the budget. Negative when the
// budget is overspent.
func (b *Budget) Remaining() decimal.Decimal {
	return b.TotalAmount.Sub(b.SpentAmount)
}

// IsOverBudget reports whether spending has exceeded the planned amount.
func (b *Budget) IsOverBudget() bool {
	return b.SpentAmount.GreaterThan(b.TotalAmount)
}
