// Package tags implements the tagging service: tag creation under the
// 5-tuple uniqueness invariant, per-resource tag lookup, and tag-filter
// intersection queries.
package tags

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/service"
)

// Store is the slice of the persistence layer the tagging service needs.
type Store interface {
	GetOrCreateTag(ctx context.Context, tag *model.Tag) (*model.Tag, bool, error)
	GetResourceTags(ctx context.Context, resourceType, resourceID string, tenantType model.TenantType, tenantID string, tagTypes []model.TagType) ([]model.Tag, error)
	FindTaggedResources(ctx context.Context, resourceType string, tenantType model.TenantType, tenantID, tagKey, tagValue string) ([]string, error)
}

// Service creates and queries tags. Duplicate creation follows the
// return-existing policy: creating a tag whose 5-tuple already exists
// returns the existing row instead of erroring, so callers can treat
// CreateTag as idempotent.
type Service struct {
	store Store
}

// NewService creates a tagging service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateTagParams describes one tag to create.
type CreateTagParams struct {
	Metadata     map[string]any
	Type         model.TagType
	Key          string
	Value        string
	ResourceType string
	ResourceID   string
	TenantID     string
	Label        string
	TenantType   model.TenantType
	Priority     int
}

// CreateTag creates a tag, or returns the existing one for the same
// 5-tuple.
func (s *Service) CreateTag(ctx context.Context, params CreateTagParams) (*model.Tag, error) {
	if err := params.TenantType.Validate(); err != nil {
		return nil, common.NewValidationError("tenant_type", err.Error())
	}

	tag := &model.Tag{
		Type:         params.Type,
		Key:          params.Key,
		Value:        params.Value,
		ResourceType: params.ResourceType,
		ResourceID:   params.ResourceID,
		TenantType:   params.TenantType,
		TenantID:     params.TenantID,
		Label:        params.Label,
		Metadata:     params.Metadata,
		Priority:     params.Priority,
		IsActive:     true,
	}

	created, isNew, err := s.store.GetOrCreateTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	if !isNew {
		slog.Debug("tag already exists, returning existing",
			"tag_key", params.Key,
			"tag_value", params.Value,
			"resource_id", params.ResourceID)
	}
	return created, nil
}

// CreateUserTag creates a USER/"user_id" tag for a resource.
func (s *Service) CreateUserTag(ctx context.Context, resourceType, resourceID string, tenantType model.TenantType, tenantID, userID, label string) (*model.Tag, error) {
	if label == "" {
		label = "User " + userID
	}
	return s.CreateTag(ctx, CreateTagParams{
		Type:         model.TagTypeUser,
		Key:          model.TagKeyUserID,
		Value:        userID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		TenantType:   tenantType,
		TenantID:     tenantID,
		Label:        label,
	})
}

// CreateOrganizationTag creates an ORGANIZATION/"org_id" tag for a resource.
func (s *Service) CreateOrganizationTag(ctx context.Context, resourceType, resourceID string, tenantType model.TenantType, tenantID, orgID, label string) (*model.Tag, error) {
	if label == "" {
		label = "Organization " + orgID
	}
	return s.CreateTag(ctx, CreateTagParams{
		Type:         model.TagTypeOrganization,
		Key:          model.TagKeyOrgID,
		Value:        orgID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		TenantType:   tenantType,
		TenantID:     tenantID,
		Label:        label,
	})
}

// CreateRoleTag creates a ROLE/"role_id" tag for a resource.
func (s *Service) CreateRoleTag(ctx context.Context, resourceType, resourceID string, tenantType model.TenantType, tenantID, roleID, label string) (*model.Tag, error) {
	if label == "" {
		label = "Role " + roleID
	}
	return s.CreateTag(ctx, CreateTagParams{
		Type:         model.TagTypeRole,
		Key:          model.TagKeyRoleID,
		Value:        roleID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		TenantType:   tenantType,
		TenantID:     tenantID,
		Label:        label,
	})
}

// ResourceTags returns all active tags for one resource, optionally
// filtered to a subset of tag types.
func (s *Service) ResourceTags(ctx context.Context, resourceType, resourceID string, tenantType model.TenantType, tenantID string, tagTypes ...model.TagType) ([]model.Tag, error) {
	return s.store.GetResourceTags(ctx, resourceType, resourceID, tenantType, tenantID, tagTypes)
}

// TaggedResources answers "which resources satisfy ALL of these tag
// filters": the intersection of the per-filter resource-id sets. An empty
// filter map yields an empty result, never "all resources", because no
// filter set is ever unioned into the accumulator.
func (s *Service) TaggedResources(ctx context.Context, filters service.TagFilters, resourceType string, tenantType model.TenantType, tenantID string) ([]string, error) {
	if err := tenantType.Validate(); err != nil {
		return nil, common.NewValidationError("tenant_type", err.Error())
	}

	var matched map[string]struct{}
	for key, value := range filters {
		ids, err := s.store.FindTaggedResources(ctx, resourceType, tenantType, tenantID, key, value)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve filter %s=%s: %w", key, value, err)
		}

		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}

		if matched == nil {
			matched = set
			continue
		}
		for id := range matched {
			if _, ok := set[id]; !ok {
				delete(matched, id)
			}
		}
		if len(matched) == 0 {
			break
		}
	}

	result := make([]string, 0, len(matched))
	for id := range matched {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}
