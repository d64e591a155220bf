package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/service"
)

// SaveBudget inserts or replaces a budget record.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, name, category, total_amount, spent_amount,
			period_start, period_end, tenant_type, tenant_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			total_amount = excluded.total_amount,
			spent_amount = excluded.spent_amount,
			period_start = excluded.period_start,
			period_end = excluded.period_end,
			is_active = excluded.is_active`,
		budget.ID, budget.Name, budget.Category, budget.TotalAmount.String(),
		budget.SpentAmount.String(), nullableTime(budget.PeriodStart),
		nullableTime(budget.PeriodEnd), budget.TenantType, budget.TenantID,
		boolToInt(budget.IsActive))
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// GetBudgetsByIDs loads budgets by ID within the tenant scope.
func (s *SQLiteStorage) GetBudgetsByIDs(ctx context.Context, ids []string, window service.ResourceWindow) ([]model.Budget, error) {
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
		SELECT id, name, category, total_amount, spent_amount,
			period_start, period_end, tenant_type, tenant_id, is_active, created_at
		FROM budgets
		WHERE id IN (%s) AND tenant_type = ? AND tenant_id = ?
		ORDER BY name`, strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		var total, spent string
		var category sql.NullString
		var periodStart, periodEnd sql.NullTime
		var isActive int
		if err := rows.Scan(&b.ID, &b.Name, &category, &total, &spent,
			&periodStart, &periodEnd, &b.TenantType, &b.TenantID, &isActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.TotalAmount, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("stored total %q is not a decimal: %w", total, err)
		}
		b.SpentAmount, err = decimal.NewFromString(spent)
		if err != nil {
			return nil, fmt.Errorf("stored spent %q is not a decimal: %w", spent, err)
		}
		b.Category = category.String
		b.PeriodStart = periodStart.Time
		b.PeriodEnd = periodEnd.Time
		b.IsActive = isActive == 1
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}
