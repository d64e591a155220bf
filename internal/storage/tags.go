package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitfield/ledgertags/internal/model"
)

// GetOrCreateTag inserts a tag, or returns the existing row when the
// (type, key, value, resource_type, resource_id) tuple is already present.
// The uniqueness check rides on the table's composite unique index, so two
// concurrent calls cannot both insert; the loser of the race reads the
// winner's row. An inactive existing tag is reactivated rather than
// duplicated. The returned bool reports whether a new row was created.
func (s *SQLiteStorage) GetOrCreateTag(ctx context.Context, tag *model.Tag) (*model.Tag, bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, false, err
	}
	if err := validateTag(tag); err != nil {
		return nil, false, err
	}

	id := tag.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := tag.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var metadata any
	if tag.Metadata != nil {
		encoded, err := json.Marshal(tag.Metadata)
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode tag metadata: %w", err)
		}
		metadata = string(encoded)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, tag_type, tag_key, tag_value, resource_type, resource_id,
			tenant_type, tenant_id, label, metadata, priority, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(tag_type, tag_key, tag_value, resource_type, resource_id) DO NOTHING`,
		id, tag.Type, tag.Key, tag.Value, tag.ResourceType, tag.ResourceID,
		tag.TenantType, tag.TenantID, tag.Label, metadata, tag.Priority, createdAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert tag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check tag insert result: %w", err)
	}

	if affected > 0 {
		created := *tag
		created.ID = id
		created.CreatedAt = createdAt
		created.IsActive = true
		slog.Debug("created tag",
			"tag_key", tag.Key,
			"tag_value", tag.Value,
			"resource_type", tag.ResourceType,
			"resource_id", tag.ResourceID)
		return &created, true, nil
	}

	existing, err := s.getTagByTuple(ctx, tag)
	if err != nil {
		return nil, false, err
	}
	if !existing.IsActive {
		if _, err := s.db.ExecContext(ctx, `UPDATE tags SET is_active = 1 WHERE id = ?`, existing.ID); err != nil {
			return nil, false, fmt.Errorf("failed to reactivate tag: %w", err)
		}
		existing.IsActive = true
		slog.Info("reactivated tag", "tag_id", existing.ID, "tag_key", existing.Key)
	}
	return existing, false, nil
}

// getTagByTuple loads the unique row for a tag's identifying 5-tuple.
func (s *SQLiteStorage) getTagByTuple(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tag_type, tag_key, tag_value, resource_type, resource_id,
			tenant_type, tenant_id, label, metadata, priority, is_active, created_at
		FROM tags
		WHERE tag_type = ? AND tag_key = ? AND tag_value = ? AND resource_type = ? AND resource_id = ?`,
		tag.Type, tag.Key, tag.Value, tag.ResourceType, tag.ResourceID)

	loaded, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag disappeared after conflicting insert: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load existing tag: %w", err)
	}
	return loaded, nil
}

// GetResourceTags returns all active tags for one resource, optionally
// restricted to a subset of tag types. A resource with no tags yields an
// empty list, not an error.
func (s *SQLiteStorage) GetResourceTags(ctx context.Context, resourceType, resourceID string, tenantType model.TenantType, tenantID string, tagTypes []model.TagType) ([]model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(resourceType, "resourceType"); err != nil {
		return nil, err
	}
	if err := validateString(resourceID, "resourceID"); err != nil {
		return nil, err
	}
	if err := validateTenant(tenantType, tenantID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, tag_type, tag_key, tag_value, resource_type, resource_id,
			tenant_type, tenant_id, label, metadata, priority, is_active, created_at
		FROM tags
		WHERE resource_type = ? AND resource_id = ? AND tenant_type = ? AND tenant_id = ?
			AND is_active = 1`
	args := []any{resourceType, resourceID, tenantType, tenantID}

	if len(tagTypes) > 0 {
		placeholders := make([]string, len(tagTypes))
		for i, tt := range tagTypes {
			placeholders[i] = "?"
			args = append(args, tt)
		}
		query += fmt.Sprintf(" AND tag_type IN (%s)", strings.Join(placeholders, ", "))
	}
	query += " ORDER BY priority DESC, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resource tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []model.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

// FindTaggedResources returns the IDs of resources of the given type that
// carry an active tag with the key/value pair, within the tenant scope.
func (s *SQLiteStorage) FindTaggedResources(ctx context.Context, resourceType string, tenantType model.TenantType, tenantID, tagKey, tagValue string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(resourceType, "resourceType"); err != nil {
		return nil, err
	}
	if err := validateTenant(tenantType, tenantID); err != nil {
		return nil, err
	}
	if err := validateString(tagKey, "tagKey"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT resource_id
		FROM tags
		WHERE tag_key = ? AND tag_value = ? AND resource_type = ?
			AND tenant_type = ? AND tenant_id = ? AND is_active = 1`,
		tagKey, tagValue, resourceType, tenantType, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tagged resources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan resource ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resource IDs: %w", err)
	}
	return ids, nil
}

// DeactivateTag soft-deletes a tag. Tags are never hard-deleted in the
// common path.
func (s *SQLiteStorage) DeactivateTag(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE tags SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate tag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tag %q not found", id)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanTag(row scanner) (*model.Tag, error) {
	var tag model.Tag
	var label, metadata sql.NullString
	var isActive int

	err := row.Scan(&tag.ID, &tag.Type, &tag.Key, &tag.Value, &tag.ResourceType,
		&tag.ResourceID, &tag.TenantType, &tag.TenantID, &label, &metadata,
		&tag.Priority, &isActive, &tag.CreatedAt)
	if err != nil {
		return nil, err
	}

	tag.Label = label.String
	tag.IsActive = isActive == 1
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &tag.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode tag metadata: %w", err)
		}
	}
	return &tag, nil
}
