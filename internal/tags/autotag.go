package tags

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/rules"
	"github.com/mwhitfield/ledgertags/internal/service"
)

// AutoTagger creates the standard tag set for newly classified resources:
// a tenant-level tag, a distinct user tag when the acting user is not the
// tenant, and one role tag per active role the user holds.
type AutoTagger struct {
	tags       *Service
	roles      service.RoleProvider
	classifier *rules.Classifier
}

// NewAutoTagger creates an auto-tag orchestrator.
func NewAutoTagger(tagService *Service, roles service.RoleProvider, classifier *rules.Classifier) *AutoTagger {
	return &AutoTagger{tags: tagService, roles: roles, classifier: classifier}
}

// AutoTagResource creates the standard tag set for a resource. Returned
// tags include any that were no-ops under the uniqueness invariant.
func (a *AutoTagger) AutoTagResource(ctx context.Context, resourceType, resourceID string, tenantType model.TenantType, tenantID, userID string) ([]model.Tag, error) {
	if err := tenantType.Validate(); err != nil {
		return nil, common.NewValidationError("tenant_type", err.Error())
	}

	var created []model.Tag

	// Tenant-level tag.
	switch tenantType {
	case model.TenantTypeUser:
		tag, err := a.tags.CreateUserTag(ctx, resourceType, resourceID, tenantType, tenantID, tenantID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create tenant user tag: %w", err)
		}
		created = append(created, *tag)
	case model.TenantTypeOrganization:
		tag, err := a.tags.CreateOrganizationTag(ctx, resourceType, resourceID, tenantType, tenantID, tenantID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create tenant organization tag: %w", err)
		}
		created = append(created, *tag)
	}

	// Distinct acting-user tag.
	if userID != "" && userID != tenantID {
		tag, err := a.tags.CreateUserTag(ctx, resourceType, resourceID, tenantType, tenantID, userID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create user tag: %w", err)
		}
		created = append(created, *tag)
	}

	// One role tag per active role.
	if userID != "" && a.roles != nil {
		roles, err := a.roles.GetActiveRoles(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve roles for user %s: %w", userID, err)
		}
		for _, role := range roles {
			tag, err := a.tags.CreateRoleTag(ctx, resourceType, resourceID, tenantType, tenantID, role.ID, role.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to create role tag %s: %w", role.ID, err)
			}
			created = append(created, *tag)
		}
	}

	slog.Debug("auto-tagged resource",
		"resource_type", resourceType,
		"resource_id", resourceID,
		"tags_created", len(created))
	return created, nil
}

// ProcessTransaction classifies one transaction and, when createTags is
// set, persists the derived classification and category tags plus the
// standard tag set. The classification itself is ephemeral; only the tags
// survive.
func (a *AutoTagger) ProcessTransaction(ctx context.Context, txn *model.Transaction, userID string, createTags bool) (model.ClassificationResult, []model.Tag, error) {
	result, err := a.classifier.ClassifyAndCategorize(rules.InputFromTransaction(txn))
	if err != nil {
		return model.ClassificationResult{}, nil, err
	}

	if !createTags {
		return result, nil, nil
	}

	metadata := map[string]any{
		"auto_generated":     true,
		"classifier_version": rules.Version,
	}

	var created []model.Tag
	for _, derived := range []struct {
		key   string
		value string
	}{
		{model.TagKeyClassification, string(result.Classification)},
		{model.TagKeyCategory, string(result.Category)},
	} {
		tag, err := a.tags.CreateTag(ctx, CreateTagParams{
			Type:         model.TagTypeCategory,
			Key:          derived.key,
			Value:        derived.value,
			ResourceType: "transaction",
			ResourceID:   txn.ID,
			TenantType:   txn.TenantType,
			TenantID:     txn.TenantID,
			Metadata:     metadata,
		})
		if err != nil {
			return model.ClassificationResult{}, nil, fmt.Errorf("failed to create %s tag: %w", derived.key, err)
		}
		created = append(created, *tag)
	}

	standard, err := a.AutoTagResource(ctx, "transaction", txn.ID, txn.TenantType, txn.TenantID, userID)
	if err != nil {
		return model.ClassificationResult{}, nil, err
	}
	created = append(created, standard...)

	return result, created, nil
}
