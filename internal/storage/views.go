package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
)

// CreateAnalyticsView persists a new saved analysis in pending state.
func (s *SQLiteStorage) CreateAnalyticsView(ctx context.Context, view *model.AnalyticsView) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateView(view); err != nil {
		return err
	}

	filters, err := json.Marshal(view.TagFilters)
	if err != nil {
		return fmt.Errorf("failed to encode tag filters: %w", err)
	}
	resourceTypes, err := json.Marshal(view.ResourceTypes)
	if err != nil {
		return fmt.Errorf("failed to encode resource types: %w", err)
	}

	status := view.Status
	if status == "" {
		status = model.StatusPending
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analytics_views (id, name, tag_filters, resource_types, metrics,
			period_start, period_end, status, tenant_type, tenant_id)
		VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?)`,
		view.ID, view.Name, string(filters), string(resourceTypes),
		nullableTimePtr(view.PeriodStart), nullableTimePtr(view.PeriodEnd),
		status, view.TenantType, view.TenantID)
	if err != nil {
		return fmt.Errorf("failed to create analytics view: %w", err)
	}

	slog.Info("created analytics view", "view_id", view.ID, "name", view.Name)
	return nil
}

// GetAnalyticsView loads one saved view, or a not-found error naming the id.
func (s *SQLiteStorage) GetAnalyticsView(ctx context.Context, id string) (*model.AnalyticsView, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, tag_filters, resource_types, metrics,
			period_start, period_end, status, last_computed, tenant_type, tenant_id, created_at
		FROM analytics_views
		WHERE id = ?`, id)

	var view model.AnalyticsView
	var filters, resourceTypes string
	var metrics sql.NullString
	var periodStart, periodEnd, lastComputed sql.NullTime

	err := row.Scan(&view.ID, &view.Name, &filters, &resourceTypes, &metrics,
		&periodStart, &periodEnd, &view.Status, &lastComputed,
		&view.TenantType, &view.TenantID, &view.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("analytics view", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics view: %w", err)
	}

	if err := json.Unmarshal([]byte(filters), &view.TagFilters); err != nil {
		return nil, fmt.Errorf("failed to decode tag filters: %w", err)
	}
	if err := json.Unmarshal([]byte(resourceTypes), &view.ResourceTypes); err != nil {
		return nil, fmt.Errorf("failed to decode resource types: %w", err)
	}
	if metrics.Valid && metrics.String != "" {
		if err := json.Unmarshal([]byte(metrics.String), &view.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics: %w", err)
		}
	}
	if periodStart.Valid {
		t := periodStart.Time
		view.PeriodStart = &t
	}
	if periodEnd.Valid {
		t := periodEnd.Time
		view.PeriodEnd = &t
	}
	if lastComputed.Valid {
		view.LastComputed = lastComputed.Time
	}
	return &view, nil
}

// SetAnalyticsViewStatus updates only the computation status of a view.
func (s *SQLiteStorage) SetAnalyticsViewStatus(ctx context.Context, id string, status model.ComputationStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE analytics_views SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update view status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update: %w", err)
	}
	if affected == 0 {
		return common.NewNotFoundError("analytics view", id)
	}
	return nil
}

// CompleteAnalyticsView overwrites a view's metrics in full and marks it
// completed. Called only on a successful recompute; a failed refresh never
// reaches this method, so prior metrics survive failures untouched.
func (s *SQLiteStorage) CompleteAnalyticsView(ctx context.Context, id string, metrics map[string]any, computedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	encoded, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE analytics_views
		SET metrics = ?, status = ?, last_computed = ?
		WHERE id = ?`,
		string(encoded), model.StatusCompleted, computedAt, id)
	if err != nil {
		return fmt.Errorf("failed to complete analytics view: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check view completion: %w", err)
	}
	if affected == 0 {
		return common.NewNotFoundError("analytics view", id)
	}
	return nil
}

// nullableTimePtr maps a nil pointer to NULL.
func nullableTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
