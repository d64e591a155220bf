package storage

import (
	"context"
	"fmt"

	"github.com/mwhitfield/ledgertags/internal/model"
)

// SaveUserRole records a role assignment for a user.
func (s *SQLiteStorage) SaveUserRole(ctx context.Context, userID string, role model.Role) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(role.ID, "role.ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id, role_name, is_active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, role_id) DO UPDATE SET
			role_name = excluded.role_name,
			is_active = excluded.is_active`,
		userID, role.ID, role.Name, boolToInt(role.IsActive))
	if err != nil {
		return fmt.Errorf("failed to save user role: %w", err)
	}
	return nil
}

// GetActiveRoles returns the roles a user currently holds. A user with no
// roles yields an empty list.
func (s *SQLiteStorage) GetActiveRoles(ctx context.Context, userID string) ([]model.Role, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role_id, role_name
		FROM user_roles
		WHERE user_id = ? AND is_active = 1
		ORDER BY role_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var roles []model.Role
	for rows.Next() {
		role := model.Role{IsActive: true}
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}
	return roles, nil
}
