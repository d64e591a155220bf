// Package storage provides the data persistence layer for ledgertags.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mwhitfield/ledgertags/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidTag     = errors.New("invalid tag")
	ErrInvalidAccount = errors.New("invalid account")
	ErrInvalidBudget  = errors.New("invalid budget")
	ErrInvalidView    = errors.New("invalid analytics view")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTenant ensures a tenant scope is well formed.
func validateTenant(tenantType model.TenantType, tenantID string) error {
	if err := tenantType.Validate(); err != nil {
		return err
	}
	return validateString(tenantID, "tenantID")
}

// validateTag validates a tag prior to persistence.
func validateTag(tag *model.Tag) error {
	if tag == nil {
		return fmt.Errorf("%w: tag", ErrNilParameter)
	}
	if tag.Type == "" {
		return fmt.Errorf("%w: missing tag type", ErrInvalidTag)
	}
	if strings.TrimSpace(tag.Key) == "" {
		return fmt.Errorf("%w: missing tag key", ErrInvalidTag)
	}
	if strings.TrimSpace(tag.Value) == "" {
		return fmt.Errorf("%w: missing tag value", ErrInvalidTag)
	}
	if strings.TrimSpace(tag.ResourceType) == "" {
		return fmt.Errorf("%w: missing resource type", ErrInvalidTag)
	}
	if strings.TrimSpace(tag.ResourceID) == "" {
		return fmt.Errorf("%w: missing resource ID", ErrInvalidTag)
	}
	return validateTenant(tag.TenantType, tag.TenantID)
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction. An empty description
// is valid; missing identity or tenant scope is not.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return errors.New("invalid transaction: missing ID")
	}
	if txn.Date.IsZero() {
		return errors.New("invalid transaction: missing date")
	}
	if txn.Type == "" {
		return errors.New("invalid transaction: missing type")
	}
	return validateTenant(txn.TenantType, txn.TenantID)
}

// validateAccount validates an account.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if account.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	return validateTenant(account.TenantType, account.TenantID)
}

// validateBudget validates a budget.
func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if budget.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidBudget)
	}
	if strings.TrimSpace(budget.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBudget)
	}
	return validateTenant(budget.TenantType, budget.TenantID)
}

// validateView validates an analytics view prior to creation.
func validateView(view *model.AnalyticsView) error {
	if view == nil {
		return fmt.Errorf("%w: view", ErrNilParameter)
	}
	if view.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidView)
	}
	if strings.TrimSpace(view.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidView)
	}
	if len(view.ResourceTypes) == 0 {
		return fmt.Errorf("%w: missing resource types", ErrInvalidView)
	}
	return validateTenant(view.TenantType, view.TenantID)
}
