package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/service"
)

// SaveAccount inserts or replaces an account record.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, currency, balance, tenant_type, tenant_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			currency = excluded.currency,
			balance = excluded.balance,
			is_active = excluded.is_active`,
		account.ID, account.Name, account.Type, account.Currency,
		account.Balance.String(), account.TenantType, account.TenantID,
		boolToInt(account.IsActive))
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccountsByIDs loads accounts by ID within the tenant scope.
func (s *SQLiteStorage) GetAccountsByIDs(ctx context.Context, ids []string, window service.ResourceWindow) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTenant(window.TenantType, window.TenantID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+2)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, window.TenantType, window.TenantID)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name, type, currency, balance, tenant_type, tenant_id, is_active, created_at
		FROM accounts
		WHERE id IN (%s) AND tenant_type = ? AND tenant_id = ?
		ORDER BY name`, strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var acct model.Account
		var balance string
		var isActive int
		if err := rows.Scan(&acct.ID, &acct.Name, &acct.Type, &acct.Currency,
			&balance, &acct.TenantType, &acct.TenantID, &isActive, &acct.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		acct.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("stored balance %q is not a decimal: %w", balance, err)
		}
		acct.IsActive = isActive == 1
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
